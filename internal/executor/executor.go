package executor

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/balance"
	"github.com/assist-by/helios/internal/broker"
	"github.com/assist-by/helios/internal/domain"
	"github.com/assist-by/helios/internal/notification"
	"github.com/assist-by/helios/internal/pricing"
)

// ExecError는 주문 실행 에러를 확장한 구조체입니다
type ExecError struct {
	Account string
	Ticker  string
	Err     error
}

// Error는 error 인터페이스를 구현합니다
func (e *ExecError) Error() string {
	return fmt.Sprintf("주문 실행 에러 [계정: %s, 종목: %s]: %v", e.Account, e.Ticker, e.Err)
}

// Unwrap은 내부 에러를 반환합니다 (errors.Is/As 지원을 위함)
func (e *ExecError) Unwrap() error {
	return e.Err
}

// Executor는 주문 실행을 오케스트레이션합니다.
// 가격 조정, 증권사 제출, 잔고 캐시 무효화, 결과 통지를 담당합니다
type Executor struct {
	account  string
	client   broker.Client
	balance  *balance.Cache
	adjuster *pricing.Adjuster
	notifier notification.Notifier // nil이면 통지 생략
}

// New는 새로운 주문 실행기를 생성합니다
func New(account string, client broker.Client, cache *balance.Cache, adjuster *pricing.Adjuster, notifier notification.Notifier) *Executor {
	return &Executor{
		account:  account,
		client:   client,
		balance:  cache,
		adjuster: adjuster,
		notifier: notifier,
	}
}

// Execute는 주문을 실행합니다.
// 수량이 0이면 증권사 호출 없이 정상 종료합니다 (배분 한도가 없는 경우 등).
// 제출을 시도한 뒤에는 성공 여부와 관계없이 잔고 캐시를 무효화해
// 다음 수량 산출이 거래 이후 상태를 관찰하도록 합니다.
// 실패는 보고만 하며 자동 재시도하지 않습니다
func (e *Executor) Execute(ctx context.Context, order domain.Order) error {
	log := logrus.WithFields(logrus.Fields{
		"account": e.account,
		"action":  order.Action,
		"market":  order.Market,
		"ticker":  order.Ticker,
	})

	if err := order.Validate(); err != nil {
		return &ExecError{Account: e.account, Ticker: order.Ticker, Err: err}
	}

	// 수량 0은 유효한 무실행 결과입니다
	if order.Quantity == 0 {
		log.Info("주문 수량이 0이므로 제출하지 않습니다")
		return nil
	}

	method := order.Method
	if method == "" {
		method = domain.MethodMarket
	}

	price, err := e.adjuster.Adjust(order.Price, order.Action, order.Market, method)
	if err != nil {
		return &ExecError{Account: e.account, Ticker: order.Ticker, Err: err}
	}

	log = log.WithFields(logrus.Fields{
		"quantity":       order.Quantity,
		"referencePrice": order.Price,
		"price":          price,
		"method":         method,
	})
	log.Info("주문을 제출합니다")

	orderID, submitErr := e.client.SubmitOrder(ctx, order.Market, order.Ticker, order.Action, price, order.Quantity)

	// 제출 시도 후에는 결과와 무관하게 캐시를 무효화합니다
	e.balance.Invalidate()

	if submitErr != nil {
		log.WithError(submitErr).Error("주문 제출에 실패했습니다")
		if e.notifier != nil {
			if err := e.notifier.SendError(submitErr); err != nil {
				log.WithError(err).Warn("에러 알림 전송에 실패했습니다")
			}
		}
		return &ExecError{Account: e.account, Ticker: order.Ticker, Err: submitErr}
	}

	log.WithField("orderID", orderID).Info("주문이 제출되었습니다")

	if e.notifier != nil {
		info := notification.TradeInfo{
			Account:  e.account,
			Action:   order.Action,
			Market:   order.Market,
			Ticker:   order.Ticker,
			Quantity: order.Quantity,
			Price:    price,
			OrderID:  orderID,
			Comment:  order.Comment,
		}
		if err := e.notifier.SendTradeInfo(info); err != nil {
			log.WithError(err).Warn("거래 알림 전송에 실패했습니다")
		}
	}

	return nil
}
