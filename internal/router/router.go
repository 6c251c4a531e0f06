package router

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/account"
	"github.com/assist-by/helios/internal/bus"
	"github.com/assist-by/helios/internal/domain"
)

// Handler는 라우터가 디스패치하는 메시지 처리 인터페이스입니다
type Handler interface {
	// HandleSignal은 브로드캐스트 시그널을 처리합니다
	HandleSignal(ctx context.Context, signal domain.Signal) error

	// HandleOrder는 계정 전용 주문 메시지를 처리합니다
	HandleOrder(ctx context.Context, order domain.Order) error
}

// Subscriber는 버스 구독 인터페이스입니다
type Subscriber interface {
	Subscribe(ctx context.Context, topics ...string) (<-chan bus.Message, error)
}

// Router는 한 계정의 메시지 소비 루프입니다.
// signal 브로드캐스트 토픽과 계정 전용 order 토픽을 구독하고,
// 화이트리스트로 필터링한 뒤 토픽 종류별 핸들러로 디스패치합니다.
// 메시지 한 건의 실패는 해당 메시지에 국한되며 루프를 종료시키지 않습니다
type Router struct {
	alias      string
	whitelist  account.Whitelist
	subscriber Subscriber
	handler    Handler
}

// New는 새로운 라우터를 생성합니다
func New(alias string, whitelist account.Whitelist, subscriber Subscriber, handler Handler) *Router {
	return &Router{
		alias:      alias,
		whitelist:  whitelist,
		subscriber: subscriber,
		handler:    handler,
	}
}

// Run은 소비 루프를 실행합니다.
// 컨텍스트가 취소되거나 구독 채널이 닫힐 때까지 메시지를 순차 처리합니다
func (r *Router) Run(ctx context.Context) error {
	topics := []string{bus.TopicSignal, bus.OrderTopic(r.alias)}

	messages, err := r.subscriber.Subscribe(ctx, topics...)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"account": r.alias,
		"topics":  strings.Join(topics, ", "),
	}).Info("토픽 구독을 시작합니다")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			r.dispatch(ctx, msg)
		}
	}
}

// dispatch는 메시지 한 건을 처리합니다. 모든 에러는 여기서 소화됩니다
func (r *Router) dispatch(ctx context.Context, msg bus.Message) {
	log := logrus.WithFields(logrus.Fields{
		"account": r.alias,
		"topic":   msg.Topic,
	})

	// 화이트리스트 검사를 위해 티커만 먼저 확인합니다
	var envelope struct {
		Ticker string `json:"ticker"`
	}
	if err := json.Unmarshal(msg.Payload, &envelope); err != nil {
		log.WithError(err).Error("메시지 파싱에 실패해 건너뜁니다")
		return
	}

	if !r.whitelist.Allows(envelope.Ticker) {
		log.WithField("ticker", envelope.Ticker).Debug("화이트리스트에 없는 종목이므로 무시합니다")
		return
	}

	// 토픽 이름의 ':' 앞부분으로 핸들러를 선택합니다
	kind, _, _ := strings.Cut(msg.Topic, ":")

	var err error
	switch kind {
	case bus.TopicSignal:
		var signal domain.Signal
		if err = json.Unmarshal(msg.Payload, &signal); err != nil {
			log.WithError(err).Error("시그널 파싱에 실패해 건너뜁니다")
			return
		}
		err = r.handler.HandleSignal(ctx, signal)

	case bus.TopicOrderPrefix:
		var order domain.Order
		if err = json.Unmarshal(msg.Payload, &order); err != nil {
			log.WithError(err).Error("주문 파싱에 실패해 건너뜁니다")
			return
		}
		err = r.handler.HandleOrder(ctx, order)

	default:
		log.Error("핸들러가 등록되지 않은 토픽입니다")
		return
	}

	// 핸들러 에러는 해당 메시지에 국한됩니다
	if err != nil {
		log.WithError(err).Error("메시지 처리 중 에러가 발생했습니다")
	}
}
