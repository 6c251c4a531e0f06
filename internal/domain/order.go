package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Order는 수량과 가격이 확정된 주문을 표현합니다.
// 시그널에서 산출되거나 계정 전용 채널로 직접 수신됩니다
type Order struct {
	ID       string          `json:"id,omitempty"`       // 클라이언트 측 주문 참조 ID
	Account  string          `json:"account"`            // 계정 별칭
	Action   OrderAction     `json:"action"`             // 매수/매도
	Market   Market          `json:"exchange"`           // 시장
	Ticker   string          `json:"ticker"`             // 종목 코드
	Currency Currency        `json:"currency,omitempty"` // 결제 통화
	Price    decimal.Decimal `json:"price"`              // 기준 가격
	Quantity int64           `json:"quantity"`           // 주문 수량 (0 이상)
	Method   OrderMethod     `json:"method,omitempty"`   // 주문 방식
	Comment  string          `json:"comment,omitempty"`  // 주문 사유
}

// Validate는 주문이 유효한지 확인합니다
func (o Order) Validate() error {
	if !o.Action.IsValid() {
		return fmt.Errorf("잘못된 주문 방향입니다: %q", o.Action)
	}
	if _, ok := MarketCurrency(o.Market); !ok {
		return fmt.Errorf("지원하지 않는 시장입니다: %q", o.Market)
	}
	if o.Ticker == "" {
		return fmt.Errorf("티커가 비어 있습니다")
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("가격은 0보다 커야 합니다: %s", o.Price)
	}
	if o.Quantity < 0 {
		return fmt.Errorf("주문 수량은 음수일 수 없습니다: %d", o.Quantity)
	}
	return nil
}

// OrderFromSignal은 시그널과 산출된 수량으로 주문을 생성합니다.
// 시그널 기반 주문은 체결 가능성을 우선해 market 방식을 사용합니다
func OrderFromSignal(account string, signal Signal, quantity int64) Order {
	return Order{
		Account:  account,
		Action:   signal.Action,
		Market:   signal.Market,
		Ticker:   signal.Ticker,
		Currency: signal.Currency,
		Price:    signal.Price,
		Quantity: quantity,
		Method:   MethodMarket,
		Comment:  signal.Comment,
	}
}
