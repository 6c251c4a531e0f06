package sizing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/balance"
	"github.com/assist-by/helios/internal/domain"
)

// DefaultMaxAllocationRatio는 한 종목에 허용되는 총 자산 대비 최대 비중입니다
var DefaultMaxAllocationRatio = decimal.NewFromFloat(0.1)

var ten = decimal.NewFromInt(10)

// Sizer는 시그널 강도와 잔고를 바탕으로 주문 수량을 산출합니다.
// 강도(0~10)는 허용된 배분 한도를 얼마나 사용할지 선형으로 조절합니다
type Sizer struct {
	balance  *balance.Cache
	maxRatio decimal.Decimal
}

// New는 새로운 포지션 사이저를 생성합니다.
// maxRatio가 (0,1) 범위를 벗어나면 기본값(0.1)을 사용합니다
func New(cache *balance.Cache, maxRatio decimal.Decimal) *Sizer {
	if !maxRatio.IsPositive() || maxRatio.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		maxRatio = DefaultMaxAllocationRatio
	}
	return &Sizer{balance: cache, maxRatio: maxRatio}
}

// BuyQuantity는 매수 수량을 산출합니다.
// 종목의 결제 통화 기준 총 자산의 maxRatio까지만 배분하며, 이미 보유한
// 금액을 차감한 잔여 한도와 가용 예수금 중 작은 쪽에 강도 비율을 곱해
// 주문 금액을 정합니다. 결과는 항상 0 이상입니다
func (s *Sizer) BuyQuantity(ctx context.Context, ticker string, price decimal.Decimal, strength int) (int64, error) {
	if err := validate(price, strength); err != nil {
		return 0, err
	}

	currency, err := domain.CurrencyForTicker(ticker)
	if err != nil {
		return 0, err
	}

	cash, err := s.balance.Cash(ctx, currency)
	if err != nil {
		return 0, err
	}
	totalAssets, err := s.balance.TotalAssets(ctx, currency)
	if err != nil {
		return 0, err
	}
	currentAmount, err := s.balance.Amount(ctx, ticker)
	if err != nil {
		return 0, err
	}

	maxAllocatable := totalAssets.Mul(s.maxRatio)
	remaining := decimal.Max(decimal.Zero, maxAllocatable.Sub(currentAmount))
	usableCash := decimal.Min(cash, remaining)
	allocated := usableCash.Mul(allocationFactor(strength))

	quantity := allocated.Div(price).Floor().IntPart()
	if quantity < 0 {
		quantity = 0
	}

	logrus.WithFields(logrus.Fields{
		"ticker":          ticker,
		"currency":        currency,
		"cash":            cash,
		"total_assets":    totalAssets,
		"max_allocatable": maxAllocatable,
		"usable_cash":     usableCash,
		"strength":        strength,
		"quantity":        quantity,
	}).Debug("매수 수량을 산출했습니다")

	return quantity, nil
}

// SellQuantity는 매도 수량을 산출합니다.
// 보유 수량이 없으면 0이며, 보유 평가 금액에 강도 비율을 곱한 금액을
// 가격으로 나눕니다. 결과는 보유 수량을 초과하지 않습니다
func (s *Sizer) SellQuantity(ctx context.Context, ticker string, price decimal.Decimal, strength int) (int64, error) {
	if err := validate(price, strength); err != nil {
		return 0, err
	}

	held, err := s.balance.QuantityHeld(ctx, ticker)
	if err != nil {
		return 0, err
	}
	if held.IsZero() {
		return 0, nil
	}

	amount, err := s.balance.Amount(ctx, ticker)
	if err != nil {
		return 0, err
	}

	allocated := amount.Mul(allocationFactor(strength))
	quantity := allocated.Div(price).Floor().IntPart()

	// 보유 수량을 초과해 매도할 수 없습니다
	if heldQty := held.Floor().IntPart(); quantity > heldQty {
		quantity = heldQty
	}
	if quantity < 0 {
		quantity = 0
	}

	logrus.WithFields(logrus.Fields{
		"ticker":   ticker,
		"held":     held,
		"amount":   amount,
		"strength": strength,
		"quantity": quantity,
	}).Debug("매도 수량을 산출했습니다")

	return quantity, nil
}

// allocationFactor는 강도를 0~1 사이 비율로 변환합니다
func allocationFactor(strength int) decimal.Decimal {
	return decimal.NewFromInt(int64(strength)).Div(ten)
}

func validate(price decimal.Decimal, strength int) error {
	if !price.IsPositive() {
		return fmt.Errorf("가격은 0보다 커야 합니다: %s", price)
	}
	if strength < 0 || strength > 10 {
		return fmt.Errorf("시그널 강도는 0 이상 10 이하이어야 합니다: %d", strength)
	}
	return nil
}
