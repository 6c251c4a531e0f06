package kis

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/domain"
)

// tokenResponse는 접근 토큰 발급 응답입니다
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// hashkeyResponse는 해시키 발급 응답입니다
type hashkeyResponse struct {
	Hash string `json:"HASH"`
}

// apiHeader는 모든 거래 API 응답에 공통으로 포함되는 필드입니다
type apiHeader struct {
	ReturnCode string `json:"rt_cd"`  // "0"이면 성공
	MessageCd  string `json:"msg_cd"` // 응답 코드
	Message    string `json:"msg1"`   // 응답 메시지
}

// domesticPriceResponse는 국내 주식 현재가 조회 응답입니다
type domesticPriceResponse struct {
	apiHeader
	Output struct {
		Price string `json:"stck_prpr"` // 주식 현재가
	} `json:"output"`
}

// overseasPriceResponse는 해외 주식 현재가 조회 응답입니다
type overseasPriceResponse struct {
	apiHeader
	Output struct {
		Last string `json:"last"` // 현재가
	} `json:"output"`
}

// domesticBalanceResponse는 국내 주식 잔고 조회 응답입니다
type domesticBalanceResponse struct {
	apiHeader
	Output1 []struct {
		Symbol       string `json:"pdno"`          // 종목 코드
		Quantity     string `json:"hldg_qty"`      // 보유 수량
		AveragePrice string `json:"pchs_avg_pric"` // 매입 평균가
		CurrentPrice string `json:"prpr"`          // 현재가
		Amount       string `json:"evlu_amt"`      // 평가 금액
	} `json:"output1"`
	Output2 []struct {
		Deposit string `json:"dnca_tot_amt"` // 예수금 총액
	} `json:"output2"`
}

// overseasBalanceResponse는 해외 주식 잔고 조회 응답입니다
type overseasBalanceResponse struct {
	apiHeader
	Output1 []struct {
		Symbol       string `json:"ovrs_pdno"`          // 종목 코드
		Exchange     string `json:"ovrs_excg_cd"`       // 거래소 코드
		Quantity     string `json:"ovrs_cblc_qty"`      // 보유 수량
		AveragePrice string `json:"pchs_avg_pric"`      // 매입 평균가
		CurrentPrice string `json:"now_pric2"`          // 현재가
		Amount       string `json:"ovrs_stck_evlu_amt"` // 평가 금액
	} `json:"output1"`
	Output2 struct {
		Deposit string `json:"frcr_dncl_amt1"` // 외화 예수금
	} `json:"output2"`
}

// orderResponse는 주문 제출 응답입니다
type orderResponse struct {
	apiHeader
	Output struct {
		OrderNo string `json:"ODNO"` // 주문 번호
	} `json:"output"`
}

// ok는 API 응답이 성공인지 확인합니다
func (h apiHeader) ok() bool {
	return h.ReturnCode == "0"
}

// quoteExchangeCodes는 해외 시세 조회용 거래소 코드입니다
var quoteExchangeCodes = map[domain.Market]string{
	domain.NASDAQ: "NAS",
	domain.NYSE:   "NYS",
	domain.AMEX:   "AMS",
	domain.TYO:    "TSE",
	domain.HKEX:   "HKS",
}

// orderExchangeCodes는 해외 주문용 거래소 코드입니다
var orderExchangeCodes = map[domain.Market]string{
	domain.NASDAQ: "NASD",
	domain.NYSE:   "NYSE",
	domain.AMEX:   "AMEX",
	domain.TYO:    "TKSE",
	domain.HKEX:   "SEHK",
}

// marketsByOrderExchange는 잔고 응답의 거래소 코드를 시장으로 되돌립니다
var marketsByOrderExchange = map[string]domain.Market{
	"NASD": domain.NASDAQ,
	"NYSE": domain.NYSE,
	"AMEX": domain.AMEX,
	"TKSE": domain.TYO,
	"SEHK": domain.HKEX,
}

// parseDecimal은 API 응답의 숫자 문자열을 파싱합니다. 빈 문자열은 0입니다
func parseDecimal(field, value string) (decimal.Decimal, error) {
	if value == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s 파싱 실패: %w", field, err)
	}
	return d, nil
}
