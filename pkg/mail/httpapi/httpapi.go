// Package httpapi sends mail through an EmailJS-style REST endpoint. The
// request is a JSON POST carrying the service, template and account
// identifiers together with the template parameters; credentials stay on
// the server.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nordweb/portal/pkg/debug"
	"github.com/nordweb/portal/pkg/mail"
	"github.com/nordweb/portal/pkg/observability"
)

// providerLabel is the metrics label for this adapter.
const providerLabel = "httpapi"

// DefaultEndpoint is the public EmailJS send endpoint.
const DefaultEndpoint = "https://api.emailjs.com/api/v1.0/email/send"

// Config holds the provider credentials.
type Config struct {
	Endpoint   string
	ServiceID  string
	TemplateID string // used when a message has no TemplateID
	PublicKey  string // sent as user_id
	PrivateKey string // sent as accessToken
	Timeout    time.Duration

	// HTTPClient allows injecting a custom HTTP client (useful for testing).
	HTTPClient *http.Client
}

// Mailer posts messages to the provider.
type Mailer struct {
	cfg    Config
	client *http.Client
}

// New creates a Mailer. ServiceID and PublicKey are required.
func New(cfg Config) (*Mailer, error) {
	if cfg.ServiceID == "" || cfg.PublicKey == "" {
		return nil, errors.New("httpapi mailer requires service id and public key")
	}
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &Mailer{cfg: cfg, client: client}, nil
}

// sendRequest is the provider's request body.
type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts one message and succeeds on any 2xx status.
func (m *Mailer) Send(ctx context.Context, msg mail.Message) error {
	templateID := msg.TemplateID
	if templateID == "" {
		templateID = m.cfg.TemplateID
	}
	if templateID == "" {
		return errors.New("no mail template configured")
	}

	params := make(map[string]string, len(msg.Params)+2)
	for k, v := range msg.Params {
		params[k] = v
	}
	if msg.To != "" {
		params["to_email"] = msg.To
	}
	if msg.ReplyTo != "" {
		params["reply_to"] = msg.ReplyTo
	}

	body, err := json.Marshal(sendRequest{
		ServiceID:      m.cfg.ServiceID,
		TemplateID:     templateID,
		UserID:         m.cfg.PublicKey,
		AccessToken:    m.cfg.PrivateKey,
		TemplateParams: params,
	})
	if err != nil {
		return fmt.Errorf("marshal mail request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.cfg.Endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if debug.Enabled("mail") {
		attrs := []any{"template", templateID, "endpoint", m.cfg.Endpoint}
		for k, v := range params {
			attrs = append(attrs, "param."+k, debug.Truncate(v, 200))
		}
		debug.Trace("mail", "mail request", attrs...)
	}

	start := time.Now()
	resp, err := m.client.Do(req)
	observability.MailLatency.WithLabelValues(providerLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		observability.MailRequestsTotal.WithLabelValues(providerLabel, "error").Inc()
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	observability.MailRequestsTotal.WithLabelValues(providerLabel, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		debug.Trace("mail", "provider rejected mail", "status", resp.StatusCode,
			"body", debug.Truncate(string(text), 200))
		return &mail.ProviderError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(text)),
		}
	}

	debug.Log("mail", "mail sent", "template", templateID, "status", resp.StatusCode,
		"duration", time.Since(start))
	return nil
}
