package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/broker/kis"
	"github.com/assist-by/helios/internal/bus"
	"github.com/assist-by/helios/internal/config"
	"github.com/assist-by/helios/internal/domain"
)

func usage() {
	fmt.Fprintf(os.Stderr, "사용법: %s <계정> <시장>\n", os.Args[0])
	fmt.Fprintln(os.Stderr, "지정한 시장의 모든 보유 종목에 대해 전량 매도 주문을 발행합니다")
	os.Exit(2)
}

// 특정 시장의 보유 종목 전체를 청산하는 CLI입니다.
// 잔고를 직접 조회해 보유 수량만큼의 매도 주문을 계정 전용 토픽으로 발행합니다
func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 2 {
		usage()
	}
	alias := args[0]
	market := domain.Market(args[1])

	if _, ok := domain.MarketCurrency(market); !ok {
		logrus.Fatalf("지원하지 않는 시장입니다: %q", market)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("설정 로드 실패: %v", err)
	}

	cred, err := kis.LoadCredential(filepath.Join(cfg.Accounts.Dir, alias, "auth.json"))
	if err != nil {
		logrus.Fatalf("인증 정보 로드 실패: %v", err)
	}
	client, err := kis.NewClient(cred, kis.WithTimeout(10*time.Second))
	if err != nil {
		logrus.Fatalf("증권사 클라이언트 생성 실패: %v", err)
	}

	msgBus, err := bus.New(cfg.Redis.URL)
	if err != nil {
		logrus.Fatalf("메시지 버스 생성 실패: %v", err)
	}
	defer msgBus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	snapshot, err := client.Balance(ctx)
	if err != nil {
		logrus.Fatalf("잔고 조회 실패: %v", err)
	}

	topic := bus.OrderTopic(alias)
	var published int
	for _, position := range snapshot.Positions {
		if position.Market != market || !position.Quantity.IsPositive() {
			continue
		}

		currency, _ := domain.MarketCurrency(market)
		order := domain.Order{
			ID:       uuid.NewString(),
			Account:  alias,
			Action:   domain.Sell,
			Market:   market,
			Ticker:   position.Symbol,
			Currency: currency,
			Price:    position.CurrentPrice,
			Quantity: position.Quantity.IntPart(),
			Method:   domain.MethodMarket,
			Comment:  "전량 청산",
		}

		if err := msgBus.Publish(ctx, topic, order); err != nil {
			logrus.Fatalf("주문 발행 실패 [%s]: %v", order.Ticker, err)
		}

		fmt.Printf("발행 완료: %s:%s %d주 @%s\n", market, order.Ticker, order.Quantity, order.Price)
		published++
	}

	if published == 0 {
		fmt.Printf("%s 시장에 매도할 보유 종목이 없습니다\n", market)
	}
}
