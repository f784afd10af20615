package notifications

import (
	"context"
	"errors"
	"fmt"

	resend "github.com/resend/resend-go/v2"
)

type resendNotifier struct {
	client *resend.Client
	from   string
}

// NewResendNotifier отправляет письма через Resend от указанного адреса.
func NewResendNotifier(apiKey, from string) (Notifier, error) {
	if apiKey == "" || from == "" {
		return nil, errors.New("resend api key and from address are required")
	}
	return &resendNotifier{client: resend.NewClient(apiKey), from: from}, nil
}

func (n *resendNotifier) Send(ctx context.Context, to, subject, body string) error {
	params := &resend.SendEmailRequest{
		From:    n.from,
		To:      []string{to},
		Subject: subject,
		Text:    body,
	}

	if _, err := n.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send mail to %s: %w", to, err)
	}
	return nil
}
