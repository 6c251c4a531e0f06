package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Signal은 외부에서 수신한 매매 시그널을 표현합니다.
// 수량과 집행 가격이 아직 결정되지 않은 상태의 거래 의도입니다
type Signal struct {
	Action   OrderAction     `json:"action"`   // 매수/매도
	Market   Market          `json:"exchange"` // 시장 (예: KRX)
	Ticker   string          `json:"ticker"`   // 종목 코드
	Currency Currency        `json:"currency"` // 결제 통화
	Price    decimal.Decimal `json:"price"`    // 기준 가격
	Strength int             `json:"strength"` // 시그널 강도 (0~10)
	Comment  string          `json:"comment"`  // 시그널 발생 사유
}

// Validate는 시그널이 유효한지 확인합니다
func (s Signal) Validate() error {
	if !s.Action.IsValid() {
		return fmt.Errorf("잘못된 주문 방향입니다: %q", s.Action)
	}
	if _, ok := MarketCurrency(s.Market); !ok {
		return fmt.Errorf("지원하지 않는 시장입니다: %q", s.Market)
	}
	if s.Ticker == "" {
		return fmt.Errorf("티커가 비어 있습니다")
	}
	if !s.Price.IsPositive() {
		return fmt.Errorf("가격은 0보다 커야 합니다: %s", s.Price)
	}
	if s.Strength < 0 || s.Strength > 10 {
		return fmt.Errorf("시그널 강도는 0 이상 10 이하이어야 합니다: %d", s.Strength)
	}
	return nil
}
