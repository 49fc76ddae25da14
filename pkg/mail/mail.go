// Package mail defines the transactional email port used by the contact
// form. Adapters live in subpackages: httpapi talks to an EmailJS-style
// REST endpoint, logmail writes messages to the log for development.
package mail

import (
	"context"
	"errors"
	"fmt"
)

// Message is one templated email. The provider renders the template with
// Params; To and ReplyTo are passed along as template parameters too.
type Message struct {
	TemplateID string
	To         string
	ReplyTo    string
	Params     map[string]string
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// ErrRejected marks a message the provider refused. Use errors.Is.
var ErrRejected = errors.New("mail rejected by provider")

// ProviderError carries the provider's status and response text.
type ProviderError struct {
	StatusCode int
	Body       string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("mail provider returned HTTP %d: %s", e.StatusCode, e.Body)
}

// Unwrap lets callers match ProviderError with errors.Is(err, ErrRejected).
func (e *ProviderError) Unwrap() error {
	return ErrRejected
}
