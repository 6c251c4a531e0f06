package discord

import (
	"fmt"
	"time"

	"github.com/assist-by/helios/internal/domain"
	"github.com/assist-by/helios/internal/notification"
)

const footerText = "Helios Trading Agent"

// 컴파일 타임 인터페이스 구현 확인
var _ notification.Notifier = (*Client)(nil)

// SendSignal은 수신한 시그널 알림을 전송합니다
func (c *Client) SendSignal(signal domain.Signal) error {
	embed := NewEmbed().
		SetTitle(fmt.Sprintf("시그널 수신: %s", signal.Ticker)).
		SetDescription(fmt.Sprintf("**방향**: %s\n**시장**: %s\n**가격**: %s\n**강도**: %d/10\n**사유**: %s",
			signal.Action, signal.Market, signal.Price, signal.Strength, signal.Comment)).
		SetColor(notification.GetColorForAction(signal.Action)).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.tradeWebhook, msg)
}

// SendTradeInfo는 주문 제출 결과를 전송합니다
func (c *Client) SendTradeInfo(info notification.TradeInfo) error {
	embed := NewEmbed().
		SetTitle(fmt.Sprintf("주문 제출: %s:%s", info.Market, info.Ticker)).
		SetDescription(fmt.Sprintf(
			"**계정**: %s\n**방향**: %s\n**수량**: %d\n**가격**: %s\n**주문번호**: %s",
			info.Account, info.Action, info.Quantity, info.Price, info.OrderID,
		)).
		SetColor(notification.GetColorForAction(info.Action)).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	if info.Comment != "" {
		embed.AddField("사유", info.Comment, false)
	}

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.tradeWebhook, msg)
}

// SendError는 에러 알림을 전송합니다
func (c *Client) SendError(err error) error {
	embed := NewEmbed().
		SetTitle("에러 발생").
		SetDescription(fmt.Sprintf("```%v```", err)).
		SetColor(notification.ColorError).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.errorWebhook, msg)
}

// SendInfo는 일반 정보 알림을 전송합니다
func (c *Client) SendInfo(message string) error {
	embed := NewEmbed().
		SetDescription(message).
		SetColor(notification.ColorInfo).
		SetFooter(footerText).
		SetTimestamp(time.Now())

	msg := WebhookMessage{
		Embeds: []Embed{*embed},
	}

	return c.sendToWebhook(c.infoWebhook, msg)
}
