package kis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/broker"
	"github.com/assist-by/helios/internal/domain"
)

// SubmitOrder는 주문을 제출하고 주문 번호를 반환합니다
func (c *Client) SubmitOrder(ctx context.Context, market domain.Market, ticker string, action domain.OrderAction, price decimal.Decimal, quantity int64) (string, error) {
	if quantity <= 0 {
		return "", fmt.Errorf("주문 수량은 0보다 커야 합니다: %d", quantity)
	}

	if market == domain.KRX {
		return c.domesticOrder(ctx, ticker, action, price, quantity)
	}
	return c.overseasOrder(ctx, market, ticker, action, price, quantity)
}

// domesticOrder는 국내 주식 현금 주문을 제출합니다
func (c *Client) domesticOrder(ctx context.Context, ticker string, action domain.OrderAction, price decimal.Decimal, quantity int64) (string, error) {
	trID := "TTTC0801U" // 매도
	if action == domain.Buy {
		trID = "TTTC0802U" // 매수
	}

	body := map[string]string{
		"CANO":         c.cano,
		"ACNT_PRDT_CD": c.productCode,
		"PDNO":         ticker,
		"ORD_DVSN":     "00", // 지정가
		"ORD_QTY":      strconv.FormatInt(quantity, 10),
		"ORD_UNPR":     price.StringFixed(0),
	}

	return c.submit(ctx, trID, "/uapi/domestic-stock/v1/trading/order-cash", body)
}

// overseasOrder는 해외 주식 주문을 제출합니다
func (c *Client) overseasOrder(ctx context.Context, market domain.Market, ticker string, action domain.OrderAction, price decimal.Decimal, quantity int64) (string, error) {
	excg, ok := orderExchangeCodes[market]
	if !ok {
		return "", fmt.Errorf("주문을 지원하지 않는 시장입니다: %q", market)
	}

	trID := "TTTT1006U" // 미국 매도
	if action == domain.Buy {
		trID = "TTTT1002U" // 미국 매수
	}

	body := map[string]string{
		"CANO":            c.cano,
		"ACNT_PRDT_CD":    c.productCode,
		"OVRS_EXCG_CD":    excg,
		"PDNO":            ticker,
		"ORD_QTY":         strconv.FormatInt(quantity, 10),
		"OVRS_ORD_UNPR":   price.StringFixed(2),
		"ORD_SVR_DVSN_CD": "0",
		"ORD_DVSN":        "00", // 지정가
	}

	return c.submit(ctx, trID, "/uapi/overseas-stock/v1/trading/order", body)
}

// submit은 해시키를 발급받아 주문 요청을 전송합니다
func (c *Client) submit(ctx context.Context, trID, path string, body map[string]string) (string, error) {
	hash, err := c.hashkey(ctx, body)
	if err != nil {
		return "", err
	}

	req, err := c.newRequest(ctx, trID)
	if err != nil {
		return "", err
	}

	var result orderResponse
	resp, err := req.
		SetHeader("hashkey", hash).
		SetBody(body).
		SetResult(&result).
		Post(path)
	if err != nil {
		return "", broker.NewError("order", "", "", err)
	}
	if resp.IsError() || !result.ok() {
		return "", broker.NewError("order", result.MessageCd, result.Message, nil)
	}

	return result.Output.OrderNo, nil
}
