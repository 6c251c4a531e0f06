package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position은 보유 종목 한 건을 표현합니다
type Position struct {
	Symbol       string          // 종목 코드
	Market       Market          // 보유 시장
	Quantity     decimal.Decimal // 보유 수량
	AveragePrice decimal.Decimal // 평균 매입가
	CurrentPrice decimal.Decimal // 현재가
	Amount       decimal.Decimal // 평가 금액
}

// BalanceSnapshot은 특정 시점의 계정 잔고를 표현합니다.
// 조회 후에는 변경되지 않으며 갱신 시 통째로 교체됩니다
type BalanceSnapshot struct {
	Deposits  map[Currency]decimal.Decimal // 통화별 예수금
	Positions []Position                   // 보유 종목 목록
	FetchedAt time.Time                    // 조회 시각
}

// Cash는 특정 통화의 예수금을 반환합니다. 없으면 0입니다
func (s *BalanceSnapshot) Cash(currency Currency) decimal.Decimal {
	if deposit, ok := s.Deposits[currency]; ok {
		return deposit
	}
	return decimal.Zero
}

// Exposure는 특정 통화로 결제되는 보유 종목의 평가 금액 합계를 반환합니다
func (s *BalanceSnapshot) Exposure(currency Currency) decimal.Decimal {
	markets := MarketsForCurrency(currency)

	total := decimal.Zero
	for _, position := range s.Positions {
		if markets[position.Market] {
			total = total.Add(position.CurrentPrice.Mul(position.Quantity))
		}
	}
	return total
}

// TotalAssets는 특정 통화 기준 총 자산(예수금 + 평가 금액)을 반환합니다
func (s *BalanceSnapshot) TotalAssets(currency Currency) decimal.Decimal {
	return s.Cash(currency).Add(s.Exposure(currency))
}

// Amount는 특정 종목의 평가 금액 합계를 반환합니다
func (s *BalanceSnapshot) Amount(ticker string) decimal.Decimal {
	total := decimal.Zero
	for _, position := range s.Positions {
		if position.Symbol == ticker {
			total = total.Add(position.Amount)
		}
	}
	return total
}

// QuantityHeld는 특정 종목의 보유 수량 합계를 반환합니다
func (s *BalanceSnapshot) QuantityHeld(ticker string) decimal.Decimal {
	total := decimal.Zero
	for _, position := range s.Positions {
		if position.Symbol == ticker {
			total = total.Add(position.Quantity)
		}
	}
	return total
}
