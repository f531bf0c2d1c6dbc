package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/dillanmilo/railcore/internal/config"
	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
)

// Ensure Router implements domain.Mailer
var _ edomain.Mailer = (*Router)(nil)

// Router picks the transport for an org from the email.provider setting.
type Router struct {
	cfg      config.Config
	settings sdomain.Service
	smtp     edomain.Mailer
	brevo    edomain.Mailer
}

func NewRouter(settings sdomain.Service, cfg config.Config) *Router {
	return &Router{cfg: cfg, settings: settings, smtp: NewSMTP(settings, cfg), brevo: NewBrevo(settings, cfg)}
}

func (r *Router) pick(ctx context.Context, orgID uuid.UUID) edomain.Mailer {
	prov, _ := r.settings.GetString(ctx, sdomain.KeyEmailProvider, &orgID, r.cfg.EmailProvider)
	switch strings.ToLower(prov) {
	case "brevo":
		return r.brevo
	default:
		return r.smtp
	}
}

func (r *Router) Configured(ctx context.Context, orgID uuid.UUID) bool {
	return r.pick(ctx, orgID).Configured(ctx, orgID)
}

func (r *Router) Send(ctx context.Context, orgID uuid.UUID, msg edomain.Message) error {
	return r.pick(ctx, orgID).Send(ctx, orgID, msg)
}
