package kis

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/broker"
	"github.com/assist-by/helios/internal/domain"
)

// Quote는 종목의 현재가를 조회합니다
func (c *Client) Quote(ctx context.Context, market domain.Market, ticker string) (decimal.Decimal, error) {
	if market == domain.KRX {
		return c.domesticQuote(ctx, ticker)
	}
	return c.overseasQuote(ctx, market, ticker)
}

// domesticQuote는 국내 주식 현재가를 조회합니다
func (c *Client) domesticQuote(ctx context.Context, ticker string) (decimal.Decimal, error) {
	req, err := c.newRequest(ctx, "FHKST01010100")
	if err != nil {
		return decimal.Zero, err
	}

	var result domesticPriceResponse
	resp, err := req.
		SetQueryParams(map[string]string{
			"FID_COND_MRKT_DIV_CODE": "J",
			"FID_INPUT_ISCD":         ticker,
		}).
		SetResult(&result).
		Get("/uapi/domestic-stock/v1/quotations/inquire-price")
	if err != nil {
		return decimal.Zero, broker.NewError("quote", "", "", err)
	}
	if resp.IsError() || !result.ok() {
		return decimal.Zero, broker.NewError("quote", result.MessageCd, result.Message, nil)
	}

	return parseDecimal("stck_prpr", result.Output.Price)
}

// overseasQuote는 해외 주식 현재가를 조회합니다
func (c *Client) overseasQuote(ctx context.Context, market domain.Market, ticker string) (decimal.Decimal, error) {
	excd, ok := quoteExchangeCodes[market]
	if !ok {
		return decimal.Zero, fmt.Errorf("시세 조회를 지원하지 않는 시장입니다: %q", market)
	}

	req, err := c.newRequest(ctx, "HHDFS00000300")
	if err != nil {
		return decimal.Zero, err
	}

	var result overseasPriceResponse
	resp, err := req.
		SetQueryParams(map[string]string{
			"AUTH": "",
			"EXCD": excd,
			"SYMB": ticker,
		}).
		SetResult(&result).
		Get("/uapi/overseas-price/v1/quotations/price")
	if err != nil {
		return decimal.Zero, broker.NewError("quote", "", "", err)
	}
	if resp.IsError() || !result.ok() {
		return decimal.Zero, broker.NewError("quote", result.MessageCd, result.Message, nil)
	}

	return parseDecimal("last", result.Output.Last)
}
