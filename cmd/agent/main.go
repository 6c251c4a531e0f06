package main

import (
	"context"
	"errors"
	"os"
	osSignal "os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/account"
	"github.com/assist-by/helios/internal/broker"
	"github.com/assist-by/helios/internal/broker/kis"
	"github.com/assist-by/helios/internal/bus"
	"github.com/assist-by/helios/internal/config"
	"github.com/assist-by/helios/internal/executor"
	"github.com/assist-by/helios/internal/logging"
	"github.com/assist-by/helios/internal/notification/discord"
	"github.com/assist-by/helios/internal/pricing"
	"github.com/assist-by/helios/internal/router"
	"github.com/assist-by/helios/internal/scheduler"
	"github.com/assist-by/helios/internal/trading"
)

func main() {
	// 종료 시그널 수신 시 컨텍스트 취소
	ctx, stop := osSignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 설정 로드
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("설정 로드 실패: %v", err)
	}

	// 로그 설정
	if err := logging.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		logrus.Fatalf("로그 설정 실패: %v", err)
	}
	logrus.Info("트레이딩 에이전트 시작...")

	// Discord 클라이언트 생성
	discordClient := discord.NewClient(
		cfg.Discord.TradeWebhook,
		cfg.Discord.ErrorWebhook,
		cfg.Discord.InfoWebhook,
		discord.WithTimeout(10*time.Second),
	)

	// 메시지 버스 연결
	msgBus, err := bus.New(cfg.Redis.URL)
	if err != nil {
		logrus.Fatalf("메시지 버스 생성 실패: %v", err)
	}
	defer msgBus.Close()

	if err := msgBus.Ping(ctx); err != nil {
		logrus.Fatalf("메시지 버스 연결 실패: %v", err)
	}

	// 계정 레지스트리 구성
	factory := func(authPath string) (broker.Client, error) {
		cred, err := kis.LoadCredential(authPath)
		if err != nil {
			return nil, err
		}
		return kis.NewClient(cred, kis.WithTimeout(10*time.Second))
	}

	registry, err := account.Load(cfg.Accounts.Dir, factory, account.Options{
		BalanceTTL:         cfg.Trading.BalanceCacheTTL,
		MaxAllocationRatio: decimal.NewFromFloat(cfg.Trading.MaxAllocationRatio),
	})
	if err != nil {
		logrus.Fatalf("계정 로드 실패: %v", err)
	}

	// 시작 알림 전송
	if err := discordClient.SendInfo("🚀 트레이딩 에이전트가 시작되었습니다."); err != nil {
		logrus.WithError(err).Warn("시작 알림 전송 실패")
	}

	adjuster := pricing.NewAdjuster(decimal.NewFromFloat(cfg.Trading.SlippageRatio))

	// 계정별 소비 루프 실행. 계정 간에는 어떤 가변 상태도 공유하지 않습니다
	var wg sync.WaitGroup
	for _, acct := range registry.All() {
		exec := executor.New(acct.Alias, acct.Broker, acct.Balance, adjuster, discordClient)
		trader := trading.NewTrader(acct, exec)
		r := router.New(acct.Alias, acct.Whitelist, msgBus, trader)

		wg.Add(1)
		go func(alias string) {
			defer wg.Done()
			if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logrus.WithField("account", alias).WithError(err).Error("소비 루프가 종료되었습니다")
			}
		}(acct.Alias)
	}

	// 잔고 보고 스케줄러 실행
	snapshotTask := scheduler.NewSnapshotTask(registry, discordClient)
	sched := scheduler.NewScheduler(cfg.Trading.SnapshotInterval, snapshotTask)
	go func() {
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logrus.WithError(err).Error("스케줄러가 종료되었습니다")
		}
	}()

	// 종료 대기
	<-ctx.Done()
	logrus.Info("종료 시그널을 수신했습니다. 정리 중...")

	sched.Stop()
	wg.Wait()

	if err := discordClient.SendInfo("🛑 트레이딩 에이전트가 종료되었습니다."); err != nil {
		logrus.WithError(err).Warn("종료 알림 전송 실패")
	}

	logrus.Info("트레이딩 에이전트 종료")
	os.Exit(0)
}
