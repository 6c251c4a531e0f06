package trading

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/account"
	"github.com/assist-by/helios/internal/domain"
	"github.com/assist-by/helios/internal/executor"
)

// Trader는 한 계정의 메시지 처리기입니다.
// 시그널은 수량을 산출해 주문으로 변환한 뒤 실행하고,
// 주문 메시지는 수량 산출 없이 그대로 실행합니다
type Trader struct {
	account  *account.Account
	executor *executor.Executor
}

// NewTrader는 새로운 트레이더를 생성합니다
func NewTrader(acct *account.Account, exec *executor.Executor) *Trader {
	return &Trader{account: acct, executor: exec}
}

// HandleSignal은 시그널로부터 주문을 구성해 실행합니다
func (t *Trader) HandleSignal(ctx context.Context, signal domain.Signal) error {
	if err := signal.Validate(); err != nil {
		return fmt.Errorf("시그널 검증 실패: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"account":  t.account.Alias,
		"action":   signal.Action,
		"ticker":   signal.Ticker,
		"strength": signal.Strength,
	}).Info("시그널을 수신했습니다")

	var (
		quantity int64
		err      error
	)
	switch signal.Action {
	case domain.Buy:
		quantity, err = t.account.Sizer.BuyQuantity(ctx, signal.Ticker, signal.Price, signal.Strength)
	case domain.Sell:
		quantity, err = t.account.Sizer.SellQuantity(ctx, signal.Ticker, signal.Price, signal.Strength)
	}
	if err != nil {
		return fmt.Errorf("수량 산출 실패 [%s]: %w", signal.Ticker, err)
	}

	order := domain.OrderFromSignal(t.account.Alias, signal, quantity)
	order.ID = uuid.NewString()

	return t.executor.Execute(ctx, order)
}

// HandleOrder는 수신한 주문을 수량 산출 없이 그대로 실행합니다
func (t *Trader) HandleOrder(ctx context.Context, order domain.Order) error {
	// 계정 전용 토픽이지만 메시지 내용도 한 번 더 확인합니다
	if order.Account != "" && order.Account != t.account.Alias {
		logrus.WithFields(logrus.Fields{
			"account": t.account.Alias,
			"target":  order.Account,
		}).Debug("다른 계정의 주문이므로 무시합니다")
		return nil
	}

	if order.ID == "" {
		order.ID = uuid.NewString()
	}

	return t.executor.Execute(ctx, order)
}
