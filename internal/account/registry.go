package account

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/balance"
	"github.com/assist-by/helios/internal/broker"
	"github.com/assist-by/helios/internal/sizing"
)

// Wildcard는 모든 티커를 허용하는 화이트리스트 항목입니다
const Wildcard = "*"

// Whitelist는 계정별 자동 매매 허용 종목 목록입니다
type Whitelist []string

// Allows는 티커가 화이트리스트에 포함되는지 확인합니다.
// "*" 항목이 있으면 모든 티커를 허용합니다
func (w Whitelist) Allows(ticker string) bool {
	for _, entry := range w {
		if entry == Wildcard || entry == ticker {
			return true
		}
	}
	return false
}

// Account는 프로세스 시작 시 구성되는 불변 계정 디스크립터입니다.
// 각 계정은 자신만의 증권사 클라이언트, 잔고 캐시, 사이저를 소유하며
// 계정 간에 가변 상태를 공유하지 않습니다
type Account struct {
	Alias     string
	Whitelist Whitelist
	Broker    broker.Client
	Balance   *balance.Cache
	Sizer     *sizing.Sizer
}

// BrokerFactory는 계정 인증 파일로부터 증권사 클라이언트를 생성합니다
type BrokerFactory func(authPath string) (broker.Client, error)

// Options는 계정 구성 옵션을 정의합니다
type Options struct {
	BalanceTTL         time.Duration   // 잔고 캐시 유효 시간
	MaxAllocationRatio decimal.Decimal // 종목당 최대 배분 비율
}

// Registry는 시작 시 한 번 구성되는 계정 레지스트리입니다
type Registry struct {
	accounts map[string]*Account
}

// Load는 계정 디렉토리를 순회해 레지스트리를 구성합니다.
// 각 하위 디렉토리가 하나의 계정이며 auth.json(필수)과
// tickers.txt(없으면 빈 화이트리스트)를 읽습니다.
// 파일 시스템 접근은 이 부트스트랩 단계에서만 일어납니다
func Load(dir string, factory BrokerFactory, opts Options) (*Registry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("계정 디렉토리 읽기 실패: %w", err)
	}

	registry := &Registry{accounts: make(map[string]*Account)}

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		alias := entry.Name()

		account, err := load(dir, alias, factory, opts)
		if err != nil {
			return nil, fmt.Errorf("계정 로드 실패 [%s]: %w", alias, err)
		}

		registry.accounts[alias] = account
		logrus.WithFields(logrus.Fields{
			"account":   alias,
			"whitelist": len(account.Whitelist),
		}).Info("계정을 로드했습니다")
	}

	if len(registry.accounts) == 0 {
		return nil, fmt.Errorf("로드된 계정이 없습니다: %s", dir)
	}

	return registry, nil
}

// load는 계정 하나를 구성합니다
func load(dir, alias string, factory BrokerFactory, opts Options) (*Account, error) {
	accountDir := filepath.Join(dir, alias)

	whitelist, err := readWhitelist(filepath.Join(accountDir, "tickers.txt"))
	if err != nil {
		return nil, err
	}

	client, err := factory(filepath.Join(accountDir, "auth.json"))
	if err != nil {
		return nil, err
	}

	cache := balance.New(client, opts.BalanceTTL)

	return &Account{
		Alias:     alias,
		Whitelist: whitelist,
		Broker:    client,
		Balance:   cache,
		Sizer:     sizing.New(cache, opts.MaxAllocationRatio),
	}, nil
}

// readWhitelist는 tickers.txt를 읽습니다. 파일이 없으면 빈 목록입니다
func readWhitelist(path string) (Whitelist, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Whitelist{}, nil
		}
		return nil, fmt.Errorf("화이트리스트 읽기 실패: %w", err)
	}
	defer file.Close()

	var whitelist Whitelist
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			whitelist = append(whitelist, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("화이트리스트 읽기 실패: %w", err)
	}

	return whitelist, nil
}

// Get은 별칭으로 계정을 조회합니다
func (r *Registry) Get(alias string) (*Account, bool) {
	account, ok := r.accounts[alias]
	return account, ok
}

// All은 별칭 순으로 정렬된 전체 계정 목록을 반환합니다
func (r *Registry) All() []*Account {
	accounts := make([]*Account, 0, len(r.accounts))
	for _, account := range r.accounts {
		accounts = append(accounts, account)
	}
	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Alias < accounts[j].Alias
	})
	return accounts
}
