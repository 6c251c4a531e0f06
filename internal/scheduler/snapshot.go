package scheduler

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/assist-by/helios/internal/account"
	"github.com/assist-by/helios/internal/domain"
	"github.com/assist-by/helios/internal/notification"
)

// SnapshotTask는 전체 계정의 잔고 현황을 주기적으로 보고하는 작업입니다
type SnapshotTask struct {
	registry *account.Registry
	notifier notification.Notifier
}

// NewSnapshotTask는 새로운 잔고 보고 작업을 생성합니다
func NewSnapshotTask(registry *account.Registry, notifier notification.Notifier) *SnapshotTask {
	return &SnapshotTask{
		registry: registry,
		notifier: notifier,
	}
}

// Execute는 계정별 잔고를 조회해 알림으로 전송합니다.
// 한 계정의 조회 실패는 다른 계정의 보고를 막지 않습니다
func (t *SnapshotTask) Execute(ctx context.Context) error {
	var report strings.Builder
	report.WriteString("**잔고 현황 보고**\n")

	var failed int
	for _, acct := range t.registry.All() {
		if err := t.appendAccount(ctx, &report, acct); err != nil {
			failed++
			logrus.WithFields(logrus.Fields{
				"account": acct.Alias,
			}).WithError(err).Error("잔고 보고용 조회에 실패했습니다")
			fmt.Fprintf(&report, "\n__%s__\n잔고 조회 실패: %v\n", acct.Alias, err)
		}
	}

	if t.notifier != nil {
		if err := t.notifier.SendInfo(report.String()); err != nil {
			return fmt.Errorf("잔고 보고 전송 실패: %w", err)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d개 계정의 잔고 조회에 실패했습니다", failed)
	}
	return nil
}

// appendAccount는 계정 하나의 현황을 보고서에 추가합니다
func (t *SnapshotTask) appendAccount(ctx context.Context, report *strings.Builder, acct *account.Account) error {
	deposits, err := acct.Balance.Deposits(ctx)
	if err != nil {
		return err
	}
	positions, err := acct.Balance.Positions(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(report, "\n__%s__\n", acct.Alias)

	for _, currency := range []domain.Currency{domain.KRW, domain.USD, domain.JPY, domain.HKD} {
		deposit, ok := deposits[currency]
		if !ok || deposit.IsZero() {
			continue
		}
		fmt.Fprintf(report, "예수금 %s: %s\n", currency, deposit.StringFixed(0))
	}

	for _, position := range positions {
		fmt.Fprintf(report, "%s: %s주 (평가 %s)\n",
			position.Symbol, position.Quantity.StringFixed(0), position.Amount.StringFixed(0))
	}
	if len(positions) == 0 {
		report.WriteString("보유 종목 없음\n")
	}

	return nil
}
