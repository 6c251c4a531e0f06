package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// 메시지 버스 설정
	Redis struct {
		URL string `envconfig:"REDIS_URL" default:"redis://localhost:6379/0"`
	}

	// 계정 부트스트랩 설정
	Accounts struct {
		Dir string `envconfig:"ACCOUNTS_DIR" default:"accounts"`
	}

	// 웹훅 수신 설정
	Webhook struct {
		Secret string `envconfig:"WEBHOOK_SECRET"`
		Addr   string `envconfig:"WEBHOOK_ADDR" default:":8000"`
	}

	// 거래 설정
	Trading struct {
		BalanceCacheTTL    time.Duration `envconfig:"BALANCE_CACHE_TTL" default:"300s"`
		MaxAllocationRatio float64       `envconfig:"MAX_ALLOCATION_RATIO" default:"0.1"`
		SlippageRatio      float64       `envconfig:"SLIPPAGE_RATIO" default:"0.01"`
		SnapshotInterval   time.Duration `envconfig:"SNAPSHOT_INTERVAL" default:"24h"`
	}

	// 디스코드 웹훅 설정 (비워두면 알림을 전송하지 않습니다)
	Discord struct {
		TradeWebhook string `envconfig:"DISCORD_TRADE_WEBHOOK"`
		ErrorWebhook string `envconfig:"DISCORD_ERROR_WEBHOOK"`
		InfoWebhook  string `envconfig:"DISCORD_INFO_WEBHOOK"`
	}

	// 로그 설정
	Log struct {
		Level string `envconfig:"LOG_LEVEL" default:"info"`
		File  string `envconfig:"LOG_FILE"`
	}
}

// ValidateConfig는 설정이 유효한지 확인합니다.
func ValidateConfig(cfg *Config) error {
	if cfg.Trading.MaxAllocationRatio <= 0 || cfg.Trading.MaxAllocationRatio >= 1 {
		return fmt.Errorf("MAX_ALLOCATION_RATIO는 0보다 크고 1보다 작아야 합니다")
	}

	if cfg.Trading.SlippageRatio <= 0 || cfg.Trading.SlippageRatio >= 1 {
		return fmt.Errorf("SLIPPAGE_RATIO는 0보다 크고 1보다 작아야 합니다")
	}

	if cfg.Trading.BalanceCacheTTL < 1*time.Second {
		return fmt.Errorf("BALANCE_CACHE_TTL은 1초 이상이어야 합니다")
	}

	if cfg.Trading.SnapshotInterval < 1*time.Minute {
		return fmt.Errorf("SNAPSHOT_INTERVAL은 1분 이상이어야 합니다")
	}

	return nil
}

// LoadConfig는 환경변수에서 설정을 로드합니다.
func LoadConfig() (*Config, error) {
	// .env 파일은 없어도 됩니다 (환경변수만으로 실행 가능)
	_ = godotenv.Load()

	var cfg Config
	// 환경변수를 구조체로 파싱
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("환경변수 처리 실패: %w", err)
	}

	// 설정값 검증
	if err := ValidateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("설정값 검증 실패: %w", err)
	}

	return &cfg, nil
}
