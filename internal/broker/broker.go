package broker

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/domain"
)

// Client는 증권사 API와의 상호작용을 위한 인터페이스입니다.
// 핵심 파이프라인은 이 추상화에만 의존합니다
type Client interface {
	// Quote는 종목의 현재가를 조회합니다
	Quote(ctx context.Context, market domain.Market, ticker string) (decimal.Decimal, error)

	// Balance는 계정의 예수금과 보유 종목을 조회합니다
	Balance(ctx context.Context) (*domain.BalanceSnapshot, error)

	// SubmitOrder는 주문을 제출하고 주문 번호를 반환합니다
	SubmitOrder(ctx context.Context, market domain.Market, ticker string, action domain.OrderAction, price decimal.Decimal, quantity int64) (string, error)
}

// Error는 증권사 API 호출 실패를 표현합니다
type Error struct {
	Op      string // 실패한 작업 (예: "order", "balance")
	Code    string // 증권사 응답 코드
	Message string // 증권사 응답 메시지
	Err     error
}

// Error는 error 인터페이스를 구현합니다
func (e *Error) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("증권사 에러 [작업: %s, 코드: %s]: %s", e.Op, e.Code, e.Message)
	}
	return fmt.Sprintf("증권사 에러 [작업: %s]: %v", e.Op, e.Err)
}

// Unwrap은 내부 에러를 반환합니다 (errors.Is/As 지원을 위함)
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError는 새로운 증권사 에러를 생성합니다
func NewError(op, code, message string, err error) *Error {
	return &Error{Op: op, Code: code, Message: message, Err: err}
}
