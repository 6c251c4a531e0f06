package notification

import (
	"github.com/shopspring/decimal"

	"github.com/assist-by/helios/internal/domain"
)

// 임베드 색상 상수
const (
	ColorSuccess = 0x00FF00 // 녹색
	ColorError   = 0xFF0000 // 빨간색
	ColorInfo    = 0x0000FF // 파란색
	ColorWarning = 0xFFA500 // 주황색
)

// Notifier는 알림 전송 인터페이스를 정의합니다
type Notifier interface {
	// SendSignal은 수신한 시그널 알림을 전송합니다
	SendSignal(signal domain.Signal) error

	// SendTradeInfo는 주문 제출 결과를 전송합니다
	SendTradeInfo(info TradeInfo) error

	// SendError는 에러 알림을 전송합니다
	SendError(err error) error

	// SendInfo는 일반 정보 알림을 전송합니다
	SendInfo(message string) error
}

// TradeInfo는 제출된 주문의 실행 정보를 정의합니다
type TradeInfo struct {
	Account  string             // 계정 별칭
	Action   domain.OrderAction // 매수/매도
	Market   domain.Market      // 시장
	Ticker   string             // 종목 코드
	Quantity int64              // 주문 수량
	Price    decimal.Decimal    // 집행 가격
	OrderID  string             // 증권사 주문 번호
	Comment  string             // 주문 사유
}

// GetColorForAction은 주문 방향에 따른 색상을 반환합니다
func GetColorForAction(action domain.OrderAction) int {
	if action == domain.Buy {
		return ColorSuccess
	}
	return ColorError
}
