package balance

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/assist-by/helios/internal/domain"
)

// fakeClient는 잔고 조회만 구현하는 테스트용 증권사 클라이언트입니다
type fakeClient struct {
	mu       sync.Mutex
	snapshot *domain.BalanceSnapshot
	err      error
	calls    int
}

func (f *fakeClient) Quote(ctx context.Context, market domain.Market, ticker string) (decimal.Decimal, error) {
	return decimal.Zero, errors.New("미구현")
}

func (f *fakeClient) Balance(ctx context.Context) (*domain.BalanceSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	// 호출마다 복사본을 반환해 스냅샷 교체를 흉내냅니다
	snapshot := *f.snapshot
	return &snapshot, nil
}

func (f *fakeClient) SubmitOrder(ctx context.Context, market domain.Market, ticker string, action domain.OrderAction, price decimal.Decimal, quantity int64) (string, error) {
	return "", errors.New("미구현")
}

func newSnapshot(fetchedAt time.Time) *domain.BalanceSnapshot {
	return &domain.BalanceSnapshot{
		Deposits: map[domain.Currency]decimal.Decimal{
			domain.KRW: decimal.NewFromInt(100_000_000),
		},
		Positions: []domain.Position{
			{
				Symbol:       "005930",
				Market:       domain.KRX,
				Quantity:     decimal.NewFromInt(100),
				CurrentPrice: decimal.NewFromInt(70000),
				Amount:       decimal.NewFromInt(7_000_000),
			},
		},
		FetchedAt: fetchedAt,
	}
}

func TestCacheReusesFreshSnapshot(t *testing.T) {
	base := time.Now()
	client := &fakeClient{snapshot: newSnapshot(base)}
	cache := New(client, 300*time.Second)
	cache.now = func() time.Time { return base }

	ctx := context.Background()

	// TTL 내 반복 조회는 증권사를 한 번만 호출해야 합니다
	for i := 0; i < 5; i++ {
		cash, err := cache.Cash(ctx, domain.KRW)
		require.NoError(t, err)
		require.True(t, cash.Equal(decimal.NewFromInt(100_000_000)))
	}
	require.Equal(t, 1, client.calls, "TTL 내에서는 한 번만 조회해야 합니다")
}

func TestCacheRefreshesAfterTTL(t *testing.T) {
	base := time.Now()
	client := &fakeClient{snapshot: newSnapshot(base)}
	cache := New(client, 300*time.Second)

	current := base
	cache.now = func() time.Time { return current }

	ctx := context.Background()

	_, err := cache.Cash(ctx, domain.KRW)
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	// TTL 경과 후 조회는 갱신을 유발해야 합니다
	current = base.Add(301 * time.Second)
	client.snapshot = newSnapshot(current)

	_, err = cache.Cash(ctx, domain.KRW)
	require.NoError(t, err)
	require.Equal(t, 2, client.calls, "TTL 경과 후에는 갱신해야 합니다")
}

func TestCacheInvalidate(t *testing.T) {
	base := time.Now()
	client := &fakeClient{snapshot: newSnapshot(base)}
	cache := New(client, 300*time.Second)
	cache.now = func() time.Time { return base }

	ctx := context.Background()

	_, err := cache.Positions(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, client.calls)

	// 무효화 후에는 TTL과 무관하게 갱신해야 합니다
	cache.Invalidate()

	_, err = cache.Positions(ctx)
	require.NoError(t, err)
	require.Equal(t, 2, client.calls, "무효화 후에는 즉시 갱신해야 합니다")
}

func TestCacheRefreshFailure(t *testing.T) {
	base := time.Now()
	client := &fakeClient{snapshot: newSnapshot(base)}
	cache := New(client, 300*time.Second)

	current := base
	cache.now = func() time.Time { return current }

	ctx := context.Background()

	_, err := cache.Cash(ctx, domain.KRW)
	require.NoError(t, err)

	// 만료 후 갱신이 실패하면 에러가 전파되어야 합니다
	current = base.Add(301 * time.Second)
	client.err = errors.New("연결 실패")

	_, err = cache.Cash(ctx, domain.KRW)
	require.Error(t, err, "갱신 실패는 호출자에게 전파되어야 합니다")

	// 다음 접근에서 다시 갱신을 시도하고, 성공하면 복구되어야 합니다
	client.err = nil
	client.snapshot = newSnapshot(current)

	cash, err := cache.Cash(ctx, domain.KRW)
	require.NoError(t, err)
	require.True(t, cash.Equal(decimal.NewFromInt(100_000_000)))
}

// 다른 고루틴의 Invalidate와 경합해도 접근자는 nil 스냅샷을 만나지 않아야 합니다
func TestCacheConcurrentInvalidate(t *testing.T) {
	client := &fakeClient{snapshot: newSnapshot(time.Now())}
	// 매 접근이 갱신을 유발하도록 TTL을 최소로 둡니다
	cache := New(client, time.Nanosecond)

	ctx := context.Background()
	done := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					cache.Invalidate()
				}
			}
		}()
	}

	deadline := time.Now().Add(200 * time.Millisecond)
	for time.Now().Before(deadline) {
		deposits, err := cache.Deposits(ctx)
		require.NoError(t, err)
		require.NotNil(t, deposits)
		require.True(t, deposits[domain.KRW].Equal(decimal.NewFromInt(100_000_000)))

		positions, err := cache.Positions(ctx)
		require.NoError(t, err)
		require.Len(t, positions, 1)
	}

	close(done)
	wg.Wait()
}

func TestCacheDerivedValues(t *testing.T) {
	base := time.Now()
	client := &fakeClient{snapshot: newSnapshot(base)}
	cache := New(client, 300*time.Second)
	cache.now = func() time.Time { return base }

	ctx := context.Background()

	exposure, err := cache.Exposure(ctx, domain.KRW)
	require.NoError(t, err)
	require.True(t, exposure.Equal(decimal.NewFromInt(7_000_000)), "평가 금액 = 70000 * 100")

	total, err := cache.TotalAssets(ctx, domain.KRW)
	require.NoError(t, err)
	require.True(t, total.Equal(decimal.NewFromInt(107_000_000)))

	held, err := cache.QuantityHeld(ctx, "005930")
	require.NoError(t, err)
	require.True(t, held.Equal(decimal.NewFromInt(100)))

	amount, err := cache.Amount(ctx, "없는종목")
	require.NoError(t, err)
	require.True(t, amount.IsZero())

	// USD 예수금은 없으므로 0
	usd, err := cache.Cash(ctx, domain.USD)
	require.NoError(t, err)
	require.True(t, usd.IsZero())
}
