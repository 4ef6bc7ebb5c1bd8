package notify

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/onlinestore/product-store/internal/core/domain"
)

// LogNotifier writes notifications to the log. It is used when no mail
// provider is configured.
type LogNotifier struct {
	log zerolog.Logger
}

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n domain.OrderNotification) error {
	subject, _ := render(n)
	l.log.Info().
		Str("order_number", n.OrderNumber).
		Str("email", n.Email).
		Str("status", string(n.Status)).
		Msg(subject)
	return nil
}
