package vonage

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
)

const messagesPath = "/v0.1/messages"

type smsEndpoint struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type smsContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type sendMessageRequest struct {
	To      smsEndpoint `json:"to"`
	From    smsEndpoint `json:"from"`
	Message struct {
		Content smsContent `json:"content"`
	} `json:"message"`
}

// SendSMS sends a text message through the messages API.
func (c *Client) SendSMS(ctx context.Context, to, from, text string) error {
	body := sendMessageRequest{
		To:   smsEndpoint{Type: "sms", Number: to},
		From: smsEndpoint{Type: "sms", Number: from},
	}
	body.Message.Content = smsContent{Type: "text", Text: text}

	return c.do(ctx, "send_sms", ErrRemoteWrite, func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(body).Post(messagesPath)
	})
}

// SMSSender sends a text message
type SMSSender interface {
	SendSMS(ctx context.Context, to, from, text string) error
}

// OrderNotifier texts the kitchen about new orders.
type OrderNotifier struct {
	sender    SMSSender
	recipient string
	senderID  string
}

// NewOrderNotifier creates a notifier sending from senderID to recipient.
func NewOrderNotifier(sender SMSSender, recipient, senderID string) *OrderNotifier {
	return &OrderNotifier{sender: sender, recipient: recipient, senderID: senderID}
}

// NotifyOrder sends the kitchen a message for one pizza.
func (n *OrderNotifier) NotifyOrder(ctx context.Context, pizza string) error {
	return n.sender.SendSMS(ctx, n.recipient, n.senderID, fmt.Sprintf("New order! We need a %s pizza", pizza))
}
