package domain

import (
	"errors"
	"regexp"
	"strings"
)

// OrderAction은 주문 방향을 정의합니다
type OrderAction string

const (
	Buy  OrderAction = "buy"
	Sell OrderAction = "sell"
)

// IsValid는 주문 방향이 유효한지 확인합니다
func (a OrderAction) IsValid() bool {
	return a == Buy || a == Sell
}

// Market은 거래 시장(거래소)을 정의합니다
type Market string

const (
	KRX    Market = "KRX"
	NASDAQ Market = "NASDAQ"
	NYSE   Market = "NYSE"
	AMEX   Market = "AMEX"
	TYO    Market = "TYO"
	HKEX   Market = "HKEX"
)

// Currency는 결제 통화를 정의합니다
type Currency string

const (
	KRW Currency = "KRW"
	USD Currency = "USD"
	JPY Currency = "JPY"
	HKD Currency = "HKD"
)

// OrderMethod는 주문 방식을 정의합니다
type OrderMethod string

const (
	// MethodMarket은 체결 가능성을 우선하는 주문입니다 (슬리피지 마진 적용)
	MethodMarket OrderMethod = "market"
	// MethodLimit은 한 호가 우선 지정가 주문입니다
	MethodLimit OrderMethod = "limit"
)

// marketCurrencyMap은 시장별 결제 통화를 정의합니다
var marketCurrencyMap = map[Market]Currency{
	KRX:    KRW,
	NASDAQ: USD,
	NYSE:   USD,
	AMEX:   USD,
	TYO:    JPY,
	HKEX:   HKD,
}

// MarketCurrency는 시장의 결제 통화를 반환합니다
func MarketCurrency(market Market) (Currency, bool) {
	currency, ok := marketCurrencyMap[market]
	return currency, ok
}

// MarketsForCurrency는 특정 통화로 결제되는 시장 집합을 반환합니다
func MarketsForCurrency(currency Currency) map[Market]bool {
	markets := make(map[Market]bool)
	for market, cur := range marketCurrencyMap {
		if cur == currency {
			markets[market] = true
		}
	}
	return markets
}

// IsTickQuantized는 가격 구간별 호가 단위가 적용되는 시장인지 확인합니다
func (m Market) IsTickQuantized() bool {
	return m == KRX
}

// ErrUnknownCurrency는 티커의 통화를 분류할 수 없을 때 반환됩니다
var ErrUnknownCurrency = errors.New("티커의 통화를 판별할 수 없습니다")

var (
	usTickerPattern  = regexp.MustCompile(`^[A-Z]{1,5}$`)
	krxTickerPattern = regexp.MustCompile(`^\d{6}$`)
)

// CurrencyForTicker는 티커 심볼로부터 결제 통화를 추론합니다.
// 알파벳 1~5자는 USD, 숫자 6자리는 KRW, ".T" 접미사는 JPY,
// ".HK" 접미사는 HKD로 분류합니다
func CurrencyForTicker(ticker string) (Currency, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	switch {
	case usTickerPattern.MatchString(ticker):
		return USD, nil
	case krxTickerPattern.MatchString(ticker):
		return KRW, nil
	case strings.HasSuffix(ticker, ".T"):
		return JPY, nil
	case strings.HasSuffix(ticker, ".HK"):
		return HKD, nil
	default:
		return "", ErrUnknownCurrency
	}
}

// MarketForTicker는 티커 형식으로부터 기본 시장을 추론합니다.
// 숫자 6자리는 KRX, 그 외에는 AMEX로 간주합니다 (수동 주문 발행용)
func MarketForTicker(ticker string) Market {
	if krxTickerPattern.MatchString(strings.TrimSpace(ticker)) {
		return KRX
	}
	return AMEX
}
