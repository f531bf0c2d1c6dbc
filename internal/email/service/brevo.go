package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/dillanmilo/railcore/internal/config"
	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// Ensure Brevo implements domain.Mailer
var _ edomain.Mailer = (*Brevo)(nil)

type Brevo struct {
	cfg      config.Config
	settings sdomain.Service
	http     *http.Client
}

func NewBrevo(settings sdomain.Service, cfg config.Config) *Brevo {
	return &Brevo{settings: settings, cfg: cfg, http: &http.Client{Timeout: 10 * time.Second}}
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoAttachment struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type brevoEmail struct {
	To          []brevoAddress    `json:"to"`
	Sender      brevoAddress      `json:"sender"`
	Subject     string            `json:"subject"`
	HTMLContent string            `json:"htmlContent"`
	Attachment  []brevoAttachment `json:"attachment,omitempty"`
}

func (b *Brevo) credentials(ctx context.Context, orgID uuid.UUID) (apiKey, sender string) {
	apiKey, _ = b.settings.GetString(ctx, sdomain.KeyBrevoAPIKey, &orgID, b.cfg.BrevoAPIKey)
	sender, _ = b.settings.GetString(ctx, sdomain.KeyBrevoSender, &orgID, b.cfg.BrevoSender)
	return apiKey, sender
}

func (b *Brevo) Configured(ctx context.Context, orgID uuid.UUID) bool {
	apiKey, sender := b.credentials(ctx, orgID)
	return apiKey != "" && sender != ""
}

func (b *Brevo) Send(ctx context.Context, orgID uuid.UUID, msg edomain.Message) error {
	apiKey, sender := b.credentials(ctx, orgID)
	if apiKey == "" || sender == "" {
		return ErrNotConfigured
	}
	payload := brevoEmail{
		Sender:      brevoAddress{Email: sender},
		Subject:     msg.Subject,
		HTMLContent: msg.HTML,
	}
	for _, to := range msg.To {
		payload.To = append(payload.To, brevoAddress{Email: to})
	}
	for _, a := range msg.Attachments {
		payload.Attachment = append(payload.Attachment, brevoAttachment{
			Name:    a.Filename,
			Content: base64.StdEncoding.EncodeToString(a.Content),
		})
	}
	buf, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoEndpoint, bytes.NewReader(buf))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", apiKey)
	resp, err := b.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed: %s", resp.Status)
	}
	return nil
}
