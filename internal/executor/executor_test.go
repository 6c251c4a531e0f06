package executor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/balance"
	"github.com/assist-by/helios/internal/domain"
	"github.com/assist-by/helios/internal/notification"
	"github.com/assist-by/helios/internal/pricing"
)

// fakeBroker는 주문 제출을 기록하는 테스트용 증권사 클라이언트입니다
type fakeBroker struct {
	balanceCalls int
	submitted    []submission
	submitErr    error
}

type submission struct {
	market   domain.Market
	ticker   string
	action   domain.OrderAction
	price    decimal.Decimal
	quantity int64
}

func (f *fakeBroker) Quote(ctx context.Context, market domain.Market, ticker string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("미구현")
}

func (f *fakeBroker) Balance(ctx context.Context) (*domain.BalanceSnapshot, error) {
	f.balanceCalls++
	return &domain.BalanceSnapshot{FetchedAt: time.Now()}, nil
}

func (f *fakeBroker) SubmitOrder(ctx context.Context, market domain.Market, ticker string, action domain.OrderAction, price decimal.Decimal, quantity int64) (string, error) {
	f.submitted = append(f.submitted, submission{market, ticker, action, price, quantity})
	if f.submitErr != nil {
		return "", f.submitErr
	}
	return "ORD0001", nil
}

// fakeNotifier는 전송된 알림을 기록합니다
type fakeNotifier struct {
	trades []notification.TradeInfo
	errs   []error
}

func (f *fakeNotifier) SendSignal(signal domain.Signal) error { return nil }
func (f *fakeNotifier) SendTradeInfo(info notification.TradeInfo) error {
	f.trades = append(f.trades, info)
	return nil
}
func (f *fakeNotifier) SendError(err error) error {
	f.errs = append(f.errs, err)
	return nil
}
func (f *fakeNotifier) SendInfo(message string) error { return nil }

func newExecutor(client *fakeBroker, notifier notification.Notifier) (*Executor, *balance.Cache) {
	cache := balance.New(client, 300*time.Second)
	adjuster := pricing.NewAdjuster(decimal.NewFromFloat(0.01))
	return New("main", client, cache, adjuster, notifier), cache
}

func testOrder(quantity int64) domain.Order {
	return domain.Order{
		ID:       "test-ref",
		Account:  "main",
		Action:   domain.Buy,
		Market:   domain.KRX,
		Ticker:   "005930",
		Currency: domain.KRW,
		Price:    decimal.NewFromInt(70000),
		Quantity: quantity,
		Method:   domain.MethodMarket,
	}
}

func TestExecuteSubmitsAdjustedPrice(t *testing.T) {
	client := &fakeBroker{}
	notifier := &fakeNotifier{}
	exec, _ := newExecutor(client, notifier)

	if err := exec.Execute(context.Background(), testOrder(10)); err != nil {
		t.Fatalf("Execute 실패: %v", err)
	}

	if len(client.submitted) != 1 {
		t.Fatalf("제출 횟수 = %d, 기대값 1", len(client.submitted))
	}

	// 70000 * 1.01 = 70700 → 호가 단위 100으로 내림
	got := client.submitted[0]
	if !got.price.Equal(decimal.NewFromInt(70700)) {
		t.Errorf("제출 가격 = %s, 기대값 70700", got.price)
	}
	if got.quantity != 10 {
		t.Errorf("제출 수량 = %d, 기대값 10", got.quantity)
	}

	if len(notifier.trades) != 1 || notifier.trades[0].OrderID != "ORD0001" {
		t.Errorf("거래 알림이 전송되지 않았습니다: %+v", notifier.trades)
	}
}

func TestExecuteZeroQuantity(t *testing.T) {
	client := &fakeBroker{}
	exec, _ := newExecutor(client, nil)

	// 수량 0은 증권사 호출 없이 정상 종료해야 합니다
	if err := exec.Execute(context.Background(), testOrder(0)); err != nil {
		t.Fatalf("수량 0 주문이 에러를 반환했습니다: %v", err)
	}
	if len(client.submitted) != 0 {
		t.Errorf("수량 0 주문이 제출되었습니다: %d건", len(client.submitted))
	}
}

func TestExecuteInvalidatesCache(t *testing.T) {
	client := &fakeBroker{}
	exec, cache := newExecutor(client, nil)
	ctx := context.Background()

	// 캐시를 미리 채워둡니다
	if _, err := cache.Positions(ctx); err != nil {
		t.Fatal(err)
	}
	if client.balanceCalls != 1 {
		t.Fatalf("잔고 조회 횟수 = %d, 기대값 1", client.balanceCalls)
	}

	if err := exec.Execute(ctx, testOrder(10)); err != nil {
		t.Fatalf("Execute 실패: %v", err)
	}

	// 제출 후 첫 조회는 캐시 무효화로 인해 재조회해야 합니다
	if _, err := cache.Positions(ctx); err != nil {
		t.Fatal(err)
	}
	if client.balanceCalls != 2 {
		t.Errorf("제출 후 잔고 조회 횟수 = %d, 기대값 2", client.balanceCalls)
	}
}

func TestExecuteInvalidatesCacheOnFailure(t *testing.T) {
	client := &fakeBroker{submitErr: errors.New("주문 거부")}
	notifier := &fakeNotifier{}
	exec, cache := newExecutor(client, notifier)
	ctx := context.Background()

	if _, err := cache.Positions(ctx); err != nil {
		t.Fatal(err)
	}

	err := exec.Execute(ctx, testOrder(10))
	if err == nil {
		t.Fatal("제출 실패가 전파되어야 합니다")
	}

	var execErr *ExecError
	if !errors.As(err, &execErr) {
		t.Errorf("에러 타입이 *ExecError가 아닙니다: %T", err)
	}

	// 실패한 제출도 체결되었을 수 있으므로 캐시를 무효화해야 합니다
	if _, err := cache.Positions(ctx); err != nil {
		t.Fatal(err)
	}
	if client.balanceCalls != 2 {
		t.Errorf("실패 후 잔고 조회 횟수 = %d, 기대값 2", client.balanceCalls)
	}

	if len(notifier.errs) != 1 {
		t.Errorf("에러 알림이 전송되지 않았습니다: %d건", len(notifier.errs))
	}
}

func TestExecuteInvalidOrder(t *testing.T) {
	client := &fakeBroker{}
	exec, _ := newExecutor(client, nil)

	order := testOrder(10)
	order.Price = decimal.Zero

	if err := exec.Execute(context.Background(), order); err == nil {
		t.Error("잘못된 주문이 통과되었습니다")
	}
	if len(client.submitted) != 0 {
		t.Error("잘못된 주문이 제출되었습니다")
	}
}

func TestExecuteDefaultsToMarketMethod(t *testing.T) {
	client := &fakeBroker{}
	exec, _ := newExecutor(client, nil)

	order := testOrder(5)
	order.Method = ""

	if err := exec.Execute(context.Background(), order); err != nil {
		t.Fatalf("Execute 실패: %v", err)
	}
	// market 방식 기본값이 적용되어 슬리피지 조정 가격으로 제출되어야 합니다
	if !client.submitted[0].price.Equal(decimal.NewFromInt(70700)) {
		t.Errorf("제출 가격 = %s, 기대값 70700", client.submitted[0].price)
	}
}
