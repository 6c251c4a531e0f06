package main

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	osSignal "os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/bus"
	"github.com/assist-by/helios/internal/config"
	"github.com/assist-by/helios/internal/domain"
	"github.com/assist-by/helios/internal/logging"
	"github.com/assist-by/helios/internal/notification/discord"
)

// webhookPayload는 외부 시그널 소스(예: TradingView)가 전송하는 본문입니다.
// 공유 비밀키는 본문 필드로 전달됩니다
type webhookPayload struct {
	Action   domain.OrderAction `json:"action"`
	Exchange domain.Market      `json:"exchange"`
	Ticker   string             `json:"ticker"`
	Price    decimal.Decimal    `json:"price"`
	Strength int                `json:"strength"`
	Comment  string             `json:"comment"`
	Secret   string             `json:"secret"`
}

func main() {
	ctx, stop := osSignal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("설정 로드 실패: %v", err)
	}

	if err := logging.Setup(cfg.Log.Level, cfg.Log.File); err != nil {
		logrus.Fatalf("로그 설정 실패: %v", err)
	}

	if cfg.Webhook.Secret == "" {
		logrus.Fatal("WEBHOOK_SECRET이 설정되지 않았습니다")
	}

	// Discord 클라이언트 생성
	discordClient := discord.NewClient(
		cfg.Discord.TradeWebhook,
		cfg.Discord.ErrorWebhook,
		cfg.Discord.InfoWebhook,
		discord.WithTimeout(10*time.Second),
	)

	msgBus, err := bus.New(cfg.Redis.URL)
	if err != nil {
		logrus.Fatalf("메시지 버스 생성 실패: %v", err)
	}
	defer msgBus.Close()

	if err := msgBus.Ping(ctx); err != nil {
		logrus.Fatalf("메시지 버스 연결 실패: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.POST("/webhook", func(c *gin.Context) {
		var payload webhookPayload
		if err := c.ShouldBindJSON(&payload); err != nil {
			logrus.WithError(err).Warn("웹훅 본문 파싱 실패")
			c.JSON(http.StatusBadRequest, gin.H{"error": "잘못된 요청 본문입니다"})
			return
		}

		if subtle.ConstantTimeCompare([]byte(payload.Secret), []byte(cfg.Webhook.Secret)) != 1 {
			logrus.WithField("ticker", payload.Ticker).Warn("잘못된 비밀키로 웹훅이 거부되었습니다")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "비밀키가 일치하지 않습니다"})
			return
		}

		currency, err := domain.CurrencyForTicker(payload.Ticker)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		signal := domain.Signal{
			Action:   payload.Action,
			Market:   payload.Exchange,
			Ticker:   payload.Ticker,
			Currency: currency,
			Price:    payload.Price,
			Strength: payload.Strength,
			Comment:  payload.Comment,
		}
		if err := signal.Validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if err := msgBus.Publish(c.Request.Context(), bus.TopicSignal, signal); err != nil {
			logrus.WithError(err).Error("시그널 발행 실패")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "시그널 발행에 실패했습니다"})
			return
		}

		logrus.WithFields(logrus.Fields{
			"action":   signal.Action,
			"ticker":   signal.Ticker,
			"strength": signal.Strength,
		}).Info("시그널을 발행했습니다")

		if err := discordClient.SendSignal(signal); err != nil {
			logrus.WithError(err).Warn("시그널 알림 전송 실패")
		}

		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	server := &http.Server{
		Addr:              cfg.Webhook.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logrus.WithField("addr", cfg.Webhook.Addr).Info("웹훅 서버 시작...")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("웹훅 서버 실행 실패: %v", err)
		}
	}()

	<-ctx.Done()
	logrus.Info("종료 시그널을 수신했습니다. 정리 중...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("웹훅 서버 종료 실패")
	}

	logrus.Info("웹훅 서버 종료")
}
