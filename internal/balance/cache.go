package balance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/broker"
	"github.com/assist-by/helios/internal/domain"
)

// DefaultTTL은 잔고 캐시의 기본 유효 시간입니다
const DefaultTTL = 300 * time.Second

// Cache는 증권사 잔고 조회를 TTL 기반으로 캐싱합니다.
// 조회 시점에 캐시가 만료되어 있으면 투명하게 갱신합니다.
// 갱신 실패 시 마지막 정상 스냅샷을 유지하며, 다음 만료 후 접근에서
// 다시 갱신을 시도합니다 (TTL을 조용히 연장하지 않습니다)
type Cache struct {
	client broker.Client
	ttl    time.Duration

	mu       sync.Mutex
	snapshot *domain.BalanceSnapshot

	now func() time.Time // 테스트에서 교체
}

// New는 새로운 잔고 캐시를 생성합니다. ttl이 0 이하이면 기본값을 사용합니다
func New(client broker.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
}

// Refresh는 증권사에서 잔고를 조회해 스냅샷을 통째로 교체합니다
func (c *Cache) Refresh(ctx context.Context) error {
	_, err := c.refresh(ctx)
	return err
}

// refresh는 잔고를 조회해 캐시를 교체하고 방금 받은 스냅샷을 반환합니다
func (c *Cache) refresh(ctx context.Context) (*domain.BalanceSnapshot, error) {
	snapshot, err := c.client.Balance(ctx)
	if err != nil {
		return nil, fmt.Errorf("잔고 갱신 실패: %w", err)
	}

	c.mu.Lock()
	// FetchedAt은 계정별로 단조 증가해야 합니다
	if c.snapshot != nil && snapshot.FetchedAt.Before(c.snapshot.FetchedAt) {
		snapshot.FetchedAt = c.snapshot.FetchedAt
	}
	c.snapshot = snapshot
	c.mu.Unlock()

	logrus.WithField("positions", len(snapshot.Positions)).Debug("잔고 캐시를 갱신했습니다")
	return snapshot, nil
}

// Invalidate는 다음 조회에서 무조건 갱신하도록 캐시를 무효화합니다
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.snapshot = nil
	c.mu.Unlock()
}

// current는 유효한 스냅샷을 반환하며 만료 시 갱신을 시도합니다.
// 갱신 직후 다른 고루틴의 Invalidate가 끼어들어도 방금 받은 스냅샷을
// 그대로 반환하므로 nil 스냅샷이 호출자에게 전달되지 않습니다
func (c *Cache) current(ctx context.Context) (*domain.BalanceSnapshot, error) {
	c.mu.Lock()
	snapshot := c.snapshot
	c.mu.Unlock()

	if snapshot != nil && c.now().Sub(snapshot.FetchedAt) <= c.ttl {
		return snapshot, nil
	}

	return c.refresh(ctx)
}

// Deposits는 통화별 예수금을 반환합니다
func (c *Cache) Deposits(ctx context.Context) (map[domain.Currency]decimal.Decimal, error) {
	snapshot, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Deposits, nil
}

// Positions는 보유 종목 목록을 반환합니다
func (c *Cache) Positions(ctx context.Context) ([]domain.Position, error) {
	snapshot, err := c.current(ctx)
	if err != nil {
		return nil, err
	}
	return snapshot.Positions, nil
}

// Cash는 특정 통화의 예수금을 반환합니다
func (c *Cache) Cash(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	snapshot, err := c.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.Cash(currency), nil
}

// Exposure는 특정 통화로 결제되는 보유 종목의 평가 금액 합계를 반환합니다
func (c *Cache) Exposure(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	snapshot, err := c.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.Exposure(currency), nil
}

// TotalAssets는 특정 통화 기준 총 자산을 반환합니다
func (c *Cache) TotalAssets(ctx context.Context, currency domain.Currency) (decimal.Decimal, error) {
	snapshot, err := c.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.TotalAssets(currency), nil
}

// Amount는 특정 종목의 평가 금액 합계를 반환합니다
func (c *Cache) Amount(ctx context.Context, ticker string) (decimal.Decimal, error) {
	snapshot, err := c.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.Amount(ticker), nil
}

// QuantityHeld는 특정 종목의 보유 수량을 반환합니다
func (c *Cache) QuantityHeld(ctx context.Context, ticker string) (decimal.Decimal, error) {
	snapshot, err := c.current(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return snapshot.QuantityHeld(ticker), nil
}
