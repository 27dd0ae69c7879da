package mailer

import (
	"context"
	"errors"
	"time"

	mg "github.com/mailgun/mailgun-go/v4"
)

// ErrNoRecipient is returned by Send when to is empty.
var ErrNoRecipient = errors.New("mailer: no recipient")

// Mailgun delivers rendered emails through the Mailgun HTTP API.
type Mailgun struct {
	Sender  string
	Timeout time.Duration
	client  *mg.MailgunImpl
}

func NewMailgun(domain, apiKey, sender string) *Mailgun {
	return &Mailgun{Sender: sender, Timeout: 10 * time.Second, client: mg.NewMailgun(domain, apiKey)}
}

// Send delivers one message. html is optional; text is always sent as the plain part.
func (m *Mailgun) Send(ctx context.Context, to, subject, text, html string) error {
	if to == "" {
		return ErrNoRecipient
	}
	msg := m.client.NewMessage(m.Sender, subject, text, to)
	if html != "" {
		msg.SetHtml(html)
	}
	c, cancel := context.WithTimeout(ctx, m.Timeout)
	defer cancel()
	_, _, err := m.client.Send(c, msg)
	return err
}
