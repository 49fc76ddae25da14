// Package contact handles submissions from the public contact form. A
// submission is rate-limited per remote address, validated, stored, and
// then forwarded to the agency inbox through the transactional mailer.
package contact

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nordweb/portal/pkg/api"
	"github.com/nordweb/portal/pkg/auth"
	"github.com/nordweb/portal/pkg/debug"
	"github.com/nordweb/portal/pkg/mail"
	"github.com/nordweb/portal/pkg/observability"
	"github.com/nordweb/portal/pkg/storage"
)

// Submission outcomes recorded in metrics.
const (
	outcomeDelivered   = "delivered"
	outcomeMailFailed  = "mail_failed"
	outcomeInvalid     = "invalid"
	outcomeSpam        = "spam"
	outcomeRateLimited = "rate_limited"
)

// DefaultSendTimeout bounds a single mail delivery.
const DefaultSendTimeout = 15 * time.Second

// Config controls where messages go.
type Config struct {
	// Recipient is the agency inbox.
	Recipient string

	// TemplateID selects the provider template. Empty uses the mailer default.
	TemplateID string

	SendTimeout time.Duration
}

// Service accepts contact form submissions.
type Service struct {
	store   storage.ContactStore
	mailer  mail.Mailer
	limiter auth.RateLimiter
	cfg     Config
	now     func() time.Time
}

// New creates a contact service. limiter may be nil to disable limiting.
func New(store storage.ContactStore, mailer mail.Mailer, limiter auth.RateLimiter, cfg Config) *Service {
	if cfg.SendTimeout == 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}
	return &Service{
		store:   store,
		mailer:  mailer,
		limiter: limiter,
		cfg:     cfg,
		now:     time.Now,
	}
}

// Submit processes one form submission from remoteAddr. A filled honeypot
// returns (nil, nil): the caller reports success and nothing is stored.
// When the mail cannot be sent the message stays stored undelivered and an
// upstream error is returned.
func (s *Service) Submit(ctx context.Context, form api.ContactForm, remoteAddr string) (*api.ContactMessage, error) {
	if s.limiter != nil {
		if err := s.limiter.Allow(ctx, "contact:"+remoteAddr); err != nil {
			observability.ContactSubmissionsTotal.WithLabelValues(outcomeRateLimited).Inc()
			return nil, api.NewTooManyRequestsError("too many messages, please try again later")
		}
	}

	if strings.TrimSpace(form.Website) != "" {
		debug.Log("transport", "contact honeypot triggered", "remote_addr", remoteAddr)
		observability.ContactSubmissionsTotal.WithLabelValues(outcomeSpam).Inc()
		return nil, nil
	}

	if apiErr := api.ValidateContactForm(&form); apiErr != nil {
		observability.ContactSubmissionsTotal.WithLabelValues(outcomeInvalid).Inc()
		return nil, apiErr
	}

	msg := &api.ContactMessage{
		ID:         api.NewID(api.PrefixMessage),
		Name:       strings.TrimSpace(form.Name),
		Email:      strings.TrimSpace(form.Email),
		Phone:      strings.TrimSpace(form.Phone),
		Company:    strings.TrimSpace(form.Company),
		Subject:    strings.TrimSpace(form.Subject),
		Message:    strings.TrimSpace(form.Message),
		RemoteAddr: remoteAddr,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.store.CreateContactMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("storing contact message: %w", err)
	}

	// The visitor may close the page right after submitting; delivery
	// should not be cut short by that.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.SendTimeout)
	defer cancel()

	if err := s.mailer.Send(sendCtx, s.mailFor(msg)); err != nil {
		slog.Error("contact mail delivery failed", "message_id", msg.ID, "error", err)
		observability.ContactSubmissionsTotal.WithLabelValues(outcomeMailFailed).Inc()
		return msg, api.NewUpstreamError("your message was saved but could not be delivered right now")
	}

	if err := s.store.MarkContactDelivered(context.WithoutCancel(ctx), msg.ID); err != nil {
		slog.Warn("marking contact message delivered", "message_id", msg.ID, "error", err)
	} else {
		msg.Delivered = true
	}

	observability.ContactSubmissionsTotal.WithLabelValues(outcomeDelivered).Inc()
	slog.Info("contact message received", "message_id", msg.ID)
	return msg, nil
}

func (s *Service) mailFor(msg *api.ContactMessage) mail.Message {
	subject := msg.Subject
	if subject == "" {
		subject = "New enquiry from " + msg.Name
	}
	return mail.Message{
		TemplateID: s.cfg.TemplateID,
		To:         s.cfg.Recipient,
		ReplyTo:    msg.Email,
		Params: map[string]string{
			"message_id": msg.ID,
			"from_name":  msg.Name,
			"from_email": msg.Email,
			"phone":      msg.Phone,
			"company":    msg.Company,
			"subject":    subject,
			"message":    msg.Message,
		},
	}
}
