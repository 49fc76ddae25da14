// Package logmail is a development Mailer that writes each message to the
// structured log instead of sending it.
package logmail

import (
	"context"
	"log/slog"
	"sort"

	"github.com/nordweb/portal/pkg/mail"
	"github.com/nordweb/portal/pkg/observability"
)

// Mailer logs messages at INFO.
type Mailer struct {
	logger *slog.Logger
}

// New returns a Mailer that logs through logger, or slog.Default when nil.
func New(logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Mailer{logger: logger}
}

// Send logs the message and never fails.
func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	attrs := []any{
		"template", msg.TemplateID,
		"to", msg.To,
		"reply_to", msg.ReplyTo,
	}
	keys := make([]string, 0, len(msg.Params))
	for k := range msg.Params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		attrs = append(attrs, "param."+k, msg.Params[k])
	}

	m.logger.InfoContext(ctx, "mail not sent (log mailer)", attrs...)
	observability.MailRequestsTotal.WithLabelValues("log", "logged").Inc()
	return nil
}
