package notifications

import (
	"context"
	"log/slog"
)

type noopNotifier struct {
	logger *slog.Logger
}

// NewNoopNotifier логирует письма вместо отправки. Используется, когда
// ключ Resend не сконфигурирован (локальная разработка, тесты).
func NewNoopNotifier(logger *slog.Logger) Notifier {
	return &noopNotifier{logger: logger}
}

func (n *noopNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.logger.Info("mail delivery skipped (no notifier configured)",
		slog.String("to", to), slog.String("subject", subject))
	return nil
}
