package notifications

import "context"

// Notifier доставляет письма организаторам и капитанам. Планировщик
// напоминаний не знает, какой транспорт за этим стоит.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
