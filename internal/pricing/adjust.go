package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/domain"
)

// DefaultSlippageRatio는 market 방식 주문의 기본 슬리피지 마진입니다 (1%)
var DefaultSlippageRatio = decimal.NewFromFloat(0.01)

// krxTickTable은 KRX 가격 구간별 호가 단위를 정의합니다
var krxTickTable = []struct {
	limit decimal.Decimal // 이 값 미만 구간
	tick  decimal.Decimal
}{
	{decimal.NewFromInt(1000), decimal.NewFromInt(1)},
	{decimal.NewFromInt(5000), decimal.NewFromInt(5)},
	{decimal.NewFromInt(10000), decimal.NewFromInt(10)},
	{decimal.NewFromInt(50000), decimal.NewFromInt(50)},
	{decimal.NewFromInt(100000), decimal.NewFromInt(100)},
	{decimal.NewFromInt(500000), decimal.NewFromInt(500)},
}

var krxMaxTick = decimal.NewFromInt(1000)

// nonKRXTick은 호가 구간이 없는 시장의 가격 단위입니다 (소수점 2자리)
var nonKRXTick = decimal.NewFromFloat(0.01)

// TickSize는 시장과 가격에 해당하는 호가 단위를 반환합니다
func TickSize(market domain.Market, price decimal.Decimal) decimal.Decimal {
	if !market.IsTickQuantized() {
		return nonKRXTick
	}

	for _, band := range krxTickTable {
		if price.LessThan(band.limit) {
			return band.tick
		}
	}
	return krxMaxTick
}

// Adjuster는 기준 가격을 집행 가격으로 변환합니다.
// 결정적이며 입출력 외의 상태를 갖지 않습니다
type Adjuster struct {
	slippage decimal.Decimal
}

// NewAdjuster는 새로운 가격 조정기를 생성합니다.
// slippage가 0 이하이면 기본값(1%)을 사용합니다
func NewAdjuster(slippage decimal.Decimal) *Adjuster {
	if !slippage.IsPositive() {
		slippage = DefaultSlippageRatio
	}
	return &Adjuster{slippage: slippage}
}

// Adjust는 기준 가격에 주문 방식별 조정을 적용한 집행 가격을 반환합니다.
//   - market: 체결 가능성을 위해 매수는 위로, 매도는 아래로 슬리피지 마진을
//     적용한 뒤 호가 단위로 내림합니다
//   - limit: 체결 우선순위를 위해 매수는 한 호가 위, 매도는 한 호가 아래로
//     조정합니다
//
// 결과는 시장의 법정 소수점 자릿수로 절사되며 항상 0보다 커야 합니다
func (a *Adjuster) Adjust(price decimal.Decimal, action domain.OrderAction, market domain.Market, method domain.OrderMethod) (decimal.Decimal, error) {
	if !price.IsPositive() {
		return decimal.Zero, fmt.Errorf("기준 가격은 0보다 커야 합니다: %s", price)
	}

	var adjusted decimal.Decimal

	switch method {
	case domain.MethodMarket:
		margin := price.Mul(a.slippage)
		if action == domain.Buy {
			adjusted = price.Add(margin)
		} else {
			adjusted = price.Sub(margin)
		}
		if market.IsTickQuantized() {
			adjusted = floorToTick(adjusted, TickSize(market, adjusted))
		}

	case domain.MethodLimit:
		tick := TickSize(market, price)
		if action == domain.Buy {
			adjusted = price.Add(tick)
		} else {
			adjusted = price.Sub(tick)
		}

	default:
		return decimal.Zero, fmt.Errorf("지원하지 않는 주문 방식입니다: %q", method)
	}

	adjusted = Quantize(adjusted, market)

	if !adjusted.IsPositive() {
		return decimal.Zero, fmt.Errorf("조정된 가격이 0 이하입니다: %s (기준가 %s)", adjusted, price)
	}

	return adjusted, nil
}

// Quantize는 가격을 시장의 법정 소수점 자릿수로 절사합니다.
// KRW 시장은 0자리, 그 외 시장은 2자리입니다
func Quantize(price decimal.Decimal, market domain.Market) decimal.Decimal {
	if market.IsTickQuantized() {
		return price.Truncate(0)
	}
	return price.Truncate(2)
}

// floorToTick은 가격을 호가 단위 경계로 내림합니다
func floorToTick(price, tick decimal.Decimal) decimal.Decimal {
	return price.Div(tick).Floor().Mul(tick)
}
