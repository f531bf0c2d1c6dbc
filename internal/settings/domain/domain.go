package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service provides typed access to settings with per-organization override.
type Service interface {
	GetString(ctx context.Context, key string, orgID *uuid.UUID, def string) (string, error)
	GetDuration(ctx context.Context, key string, orgID *uuid.UUID, def time.Duration) (time.Duration, error)
	GetInt(ctx context.Context, key string, orgID *uuid.UUID, def int) (int, error)
}

// Repository abstracts storage of settings.
type Repository interface {
	// Get returns (value, found, err) for a key, preferring the org row over the global one.
	Get(ctx context.Context, key string, orgID *uuid.UUID) (string, bool, error)
	Upsert(ctx context.Context, key string, orgID *uuid.UUID, value string, secret bool) error
}

const (
	KeyEmailProvider = "email.provider"
	KeySMTPHost      = "email.smtp.host"
	KeySMTPPort      = "email.smtp.port"
	KeySMTPUsername  = "email.smtp.username"
	KeySMTPPassword  = "email.smtp.password"
	KeySMTPFrom      = "email.smtp.from"
	KeyBrevoAPIKey   = "email.brevo.api_key"
	KeyBrevoSender   = "email.brevo.sender"

	// KeyDispatchTimeout overrides the per-send timeout (Go duration string).
	KeyDispatchTimeout = "email.dispatch_timeout"
	// KeyReportSubject replaces the "Daily Report" subject prefix.
	KeyReportSubject = "reports.email_subject"

	// Export rate limits, optional org overrides.
	KeyRLExportLimit  = "reports.ratelimit.export.limit"
	KeyRLExportWindow = "reports.ratelimit.export.window"
)
