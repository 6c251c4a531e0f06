package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/bus"
	"github.com/assist-by/helios/internal/config"
	"github.com/assist-by/helios/internal/domain"
)

func usage() {
	fmt.Fprintf(os.Stderr, "사용법: %s <buy|sell> <계정> <티커> <수량> <가격>\n", os.Args[0])
	flag.PrintDefaults()
	os.Exit(2)
}

// 수동 주문을 계정 전용 토픽으로 발행하는 CLI입니다.
// 수량 산출을 거치지 않고 지정한 수량 그대로 실행됩니다
func main() {
	method := flag.String("method", string(domain.MethodMarket), "주문 방식 (market 또는 limit)")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) != 5 {
		usage()
	}

	action := domain.OrderAction(args[0])
	account := args[1]
	ticker := args[2]

	quantity, err := strconv.ParseInt(args[3], 10, 64)
	if err != nil {
		logrus.Fatalf("잘못된 수량입니다: %v", err)
	}

	price, err := decimal.NewFromString(args[4])
	if err != nil {
		logrus.Fatalf("잘못된 가격입니다: %v", err)
	}

	market := domain.MarketForTicker(ticker)
	currency, err := domain.CurrencyForTicker(ticker)
	if err != nil {
		logrus.Fatalf("통화 판별 실패: %v", err)
	}

	order := domain.Order{
		ID:       uuid.NewString(),
		Account:  account,
		Action:   action,
		Market:   market,
		Ticker:   ticker,
		Currency: currency,
		Price:    price,
		Quantity: quantity,
		Method:   domain.OrderMethod(*method),
	}
	if err := order.Validate(); err != nil {
		logrus.Fatalf("주문 검증 실패: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("설정 로드 실패: %v", err)
	}

	msgBus, err := bus.New(cfg.Redis.URL)
	if err != nil {
		logrus.Fatalf("메시지 버스 생성 실패: %v", err)
	}
	defer msgBus.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	topic := bus.OrderTopic(account)
	if err := msgBus.Publish(ctx, topic, order); err != nil {
		logrus.Fatalf("주문 발행 실패: %v", err)
	}

	fmt.Printf("발행 완료 [%s]: %s %s %d주 @%s\n", topic, order.Action, order.Ticker, order.Quantity, order.Price)
}
