package kis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/domain"
)

// newTestServer는 토큰, 해시키, 주문 엔드포인트를 흉내내는 서버를 생성합니다
func newTestServer(t *testing.T, onOrder func(r *http.Request, body map[string]string)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		switch r.URL.Path {
		case "/oauth2/tokenP":
			json.NewEncoder(w).Encode(map[string]any{
				"access_token": "test-token",
				"token_type":   "Bearer",
				"expires_in":   86400,
			})

		case "/uapi/hashkey":
			json.NewEncoder(w).Encode(map[string]string{"HASH": "test-hash"})

		default:
			var body map[string]string
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("주문 본문 파싱 실패: %v", err)
			}
			if onOrder != nil {
				onOrder(r, body)
			}
			json.NewEncoder(w).Encode(map[string]any{
				"rt_cd":  "0",
				"msg_cd": "APBK0013",
				"msg1":   "정상처리 되었습니다",
				"output": map[string]string{"ODNO": "0000117057"},
			})
		}
	}))
}

func newTestClient(t *testing.T, server *httptest.Server, virtual bool) *Client {
	t.Helper()

	client, err := NewClient(Credential{
		AppKey:        "k",
		AppSecret:     "s",
		AccountNumber: "12345678-01",
		Virtual:       virtual,
	}, WithBaseURL(server.URL))
	if err != nil {
		t.Fatal(err)
	}
	return client
}

func TestSubmitOrderDomestic(t *testing.T) {
	var gotTrID string
	var gotBody map[string]string

	server := newTestServer(t, func(r *http.Request, body map[string]string) {
		gotTrID = r.Header.Get("tr_id")
		gotBody = body

		if r.Header.Get("hashkey") != "test-hash" {
			t.Errorf("hashkey 헤더 = %q, 기대값 test-hash", r.Header.Get("hashkey"))
		}
		if r.Header.Get("authorization") != "Bearer test-token" {
			t.Errorf("authorization 헤더 = %q", r.Header.Get("authorization"))
		}
		if r.URL.Path != "/uapi/domestic-stock/v1/trading/order-cash" {
			t.Errorf("주문 경로 = %q", r.URL.Path)
		}
	})
	defer server.Close()

	client := newTestClient(t, server, false)

	orderNo, err := client.SubmitOrder(context.Background(),
		domain.KRX, "005930", domain.Buy, decimal.NewFromInt(70700), 10)
	if err != nil {
		t.Fatalf("SubmitOrder 실패: %v", err)
	}

	if orderNo != "0000117057" {
		t.Errorf("주문 번호 = %q, 기대값 0000117057", orderNo)
	}
	if gotTrID != "TTTC0802U" {
		t.Errorf("국내 매수 TR ID = %q, 기대값 TTTC0802U", gotTrID)
	}
	if gotBody["PDNO"] != "005930" || gotBody["ORD_QTY"] != "10" || gotBody["ORD_UNPR"] != "70700" {
		t.Errorf("주문 본문이 올바르지 않습니다: %v", gotBody)
	}
}

func TestSubmitOrderDomesticSell(t *testing.T) {
	var gotTrID string
	server := newTestServer(t, func(r *http.Request, body map[string]string) {
		gotTrID = r.Header.Get("tr_id")
	})
	defer server.Close()

	client := newTestClient(t, server, false)

	if _, err := client.SubmitOrder(context.Background(),
		domain.KRX, "005930", domain.Sell, decimal.NewFromInt(69300), 5); err != nil {
		t.Fatalf("SubmitOrder 실패: %v", err)
	}
	if gotTrID != "TTTC0801U" {
		t.Errorf("국내 매도 TR ID = %q, 기대값 TTTC0801U", gotTrID)
	}
}

func TestSubmitOrderOverseas(t *testing.T) {
	var gotTrID string
	var gotBody map[string]string

	server := newTestServer(t, func(r *http.Request, body map[string]string) {
		gotTrID = r.Header.Get("tr_id")
		gotBody = body

		if r.URL.Path != "/uapi/overseas-stock/v1/trading/order" {
			t.Errorf("주문 경로 = %q", r.URL.Path)
		}
	})
	defer server.Close()

	client := newTestClient(t, server, false)

	if _, err := client.SubmitOrder(context.Background(),
		domain.NASDAQ, "AAPL", domain.Buy, decimal.RequireFromString("151.50"), 13); err != nil {
		t.Fatalf("SubmitOrder 실패: %v", err)
	}

	if gotTrID != "TTTT1002U" {
		t.Errorf("해외 매수 TR ID = %q, 기대값 TTTT1002U", gotTrID)
	}
	if gotBody["OVRS_EXCG_CD"] != "NASD" || gotBody["OVRS_ORD_UNPR"] != "151.50" {
		t.Errorf("주문 본문이 올바르지 않습니다: %v", gotBody)
	}
}

// 모의투자는 실전 TR ID의 첫 글자를 V로 교체해야 합니다
func TestSubmitOrderVirtualTrID(t *testing.T) {
	var gotTrID string
	server := newTestServer(t, func(r *http.Request, body map[string]string) {
		gotTrID = r.Header.Get("tr_id")
	})
	defer server.Close()

	client := newTestClient(t, server, true)

	if _, err := client.SubmitOrder(context.Background(),
		domain.KRX, "005930", domain.Buy, decimal.NewFromInt(70700), 10); err != nil {
		t.Fatalf("SubmitOrder 실패: %v", err)
	}
	if gotTrID != "VTTC0802U" {
		t.Errorf("모의투자 TR ID = %q, 기대값 VTTC0802U", gotTrID)
	}
}

func TestSubmitOrderRejectsZeroQuantity(t *testing.T) {
	server := newTestServer(t, nil)
	defer server.Close()

	client := newTestClient(t, server, false)

	if _, err := client.SubmitOrder(context.Background(),
		domain.KRX, "005930", domain.Buy, decimal.NewFromInt(70700), 0); err == nil {
		t.Error("수량 0 주문은 거부되어야 합니다")
	}
}

func TestSubmitOrderAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth2/tokenP":
			json.NewEncoder(w).Encode(map[string]any{"access_token": "t", "expires_in": 86400})
		case "/uapi/hashkey":
			json.NewEncoder(w).Encode(map[string]string{"HASH": "h"})
		default:
			json.NewEncoder(w).Encode(map[string]any{
				"rt_cd":  "1",
				"msg_cd": "APBK0919",
				"msg1":   "주문가능금액을 초과했습니다",
			})
		}
	}))
	defer server.Close()

	client := newTestClient(t, server, false)

	_, err := client.SubmitOrder(context.Background(),
		domain.KRX, "005930", domain.Buy, decimal.NewFromInt(70700), 10)
	if err == nil {
		t.Fatal("API 거부 응답은 에러를 반환해야 합니다")
	}
}
