package kis

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/broker"
	"github.com/assist-by/helios/internal/domain"
)

// Balance는 국내와 해외 잔고를 조회해 하나의 스냅샷으로 합칩니다
func (c *Client) Balance(ctx context.Context) (*domain.BalanceSnapshot, error) {
	snapshot := &domain.BalanceSnapshot{
		Deposits:  make(map[domain.Currency]decimal.Decimal),
		FetchedAt: time.Now(),
	}

	if err := c.domesticBalance(ctx, snapshot); err != nil {
		return nil, err
	}
	if err := c.overseasBalance(ctx, snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// domesticBalance는 국내 주식 잔고를 조회해 스냅샷에 반영합니다
func (c *Client) domesticBalance(ctx context.Context, snapshot *domain.BalanceSnapshot) error {
	req, err := c.newRequest(ctx, "TTTC8434R")
	if err != nil {
		return err
	}

	var result domesticBalanceResponse
	resp, err := req.
		SetQueryParams(map[string]string{
			"CANO":                  c.cano,
			"ACNT_PRDT_CD":          c.productCode,
			"AFHR_FLPR_YN":          "N",
			"OFL_YN":                "",
			"INQR_DVSN":             "02",
			"UNPR_DVSN":             "01",
			"FUND_STTL_ICLD_YN":     "N",
			"FNCG_AMT_AUTO_RDPT_YN": "N",
			"PRCS_DVSN":             "00",
			"CTX_AREA_FK100":        "",
			"CTX_AREA_NK100":        "",
		}).
		SetResult(&result).
		Get("/uapi/domestic-stock/v1/trading/inquire-balance")
	if err != nil {
		return broker.NewError("balance", "", "", err)
	}
	if resp.IsError() || !result.ok() {
		return broker.NewError("balance", result.MessageCd, result.Message, nil)
	}

	for _, row := range result.Output1 {
		position, err := parseDomesticPosition(row.Symbol, row.Quantity, row.AveragePrice, row.CurrentPrice, row.Amount)
		if err != nil {
			return err
		}
		if position.Quantity.IsZero() {
			continue
		}
		snapshot.Positions = append(snapshot.Positions, position)
	}

	if len(result.Output2) > 0 {
		deposit, err := parseDecimal("dnca_tot_amt", result.Output2[0].Deposit)
		if err != nil {
			return err
		}
		snapshot.Deposits[domain.KRW] = deposit
	}

	return nil
}

// overseasBalance는 해외(미국) 주식 잔고를 조회해 스냅샷에 반영합니다
func (c *Client) overseasBalance(ctx context.Context, snapshot *domain.BalanceSnapshot) error {
	req, err := c.newRequest(ctx, "TTTS3012R")
	if err != nil {
		return err
	}

	var result overseasBalanceResponse
	resp, err := req.
		SetQueryParams(map[string]string{
			"CANO":           c.cano,
			"ACNT_PRDT_CD":   c.productCode,
			"OVRS_EXCG_CD":   "NASD",
			"TR_CRCY_CD":     "USD",
			"CTX_AREA_FK200": "",
			"CTX_AREA_NK200": "",
		}).
		SetResult(&result).
		Get("/uapi/overseas-stock/v1/trading/inquire-balance")
	if err != nil {
		return broker.NewError("balance", "", "", err)
	}
	if resp.IsError() || !result.ok() {
		return broker.NewError("balance", result.MessageCd, result.Message, nil)
	}

	for _, row := range result.Output1 {
		market, ok := marketsByOrderExchange[row.Exchange]
		if !ok {
			market = domain.NASDAQ
		}

		position, err := parseOverseasPosition(market, row.Symbol, row.Quantity, row.AveragePrice, row.CurrentPrice, row.Amount)
		if err != nil {
			return err
		}
		if position.Quantity.IsZero() {
			continue
		}
		snapshot.Positions = append(snapshot.Positions, position)
	}

	deposit, err := parseDecimal("frcr_dncl_amt1", result.Output2.Deposit)
	if err != nil {
		return err
	}
	snapshot.Deposits[domain.USD] = deposit

	return nil
}

// parseDomesticPosition은 국내 잔고 응답 한 행을 포지션으로 변환합니다
func parseDomesticPosition(symbol, quantity, averagePrice, currentPrice, amount string) (domain.Position, error) {
	return parsePosition(domain.KRX, symbol, quantity, averagePrice, currentPrice, amount)
}

// parseOverseasPosition은 해외 잔고 응답 한 행을 포지션으로 변환합니다
func parseOverseasPosition(market domain.Market, symbol, quantity, averagePrice, currentPrice, amount string) (domain.Position, error) {
	return parsePosition(market, symbol, quantity, averagePrice, currentPrice, amount)
}

func parsePosition(market domain.Market, symbol, quantity, averagePrice, currentPrice, amount string) (domain.Position, error) {
	qty, err := parseDecimal("quantity", quantity)
	if err != nil {
		return domain.Position{}, err
	}
	avg, err := parseDecimal("average_price", averagePrice)
	if err != nil {
		return domain.Position{}, err
	}
	cur, err := parseDecimal("current_price", currentPrice)
	if err != nil {
		return domain.Position{}, err
	}
	amt, err := parseDecimal("amount", amount)
	if err != nil {
		return domain.Position{}, err
	}

	return domain.Position{
		Symbol:       symbol,
		Market:       market,
		Quantity:     qty,
		AveragePrice: avg,
		CurrentPrice: cur,
		Amount:       amt,
	}, nil
}
