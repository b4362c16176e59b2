// Package notify is the boundary to the external notification sink used
// for password-reset and email-verification mail. Delivery mechanics
// live outside this service.
package notify

import (
	"context"
	"log/slog"
)

type Notifier interface {
	Send(ctx context.Context, recipient, link, subject, body string) error
}

// LogNotifier records outbound notifications instead of delivering
// them; the default until a real sink is wired in deployment.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, recipient, link, subject, body string) error {
	slog.Info("notification dispatched",
		"recipient", recipient,
		"subject", subject,
		"link", link,
	)
	return nil
}
