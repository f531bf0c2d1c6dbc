package reports

import (
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/dillanmilo/railcore/internal/auth/middleware"
	"github.com/dillanmilo/railcore/internal/config"
	"github.com/dillanmilo/railcore/internal/document"
	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	emailsvc "github.com/dillanmilo/railcore/internal/email/service"
	evdomain "github.com/dillanmilo/railcore/internal/events/domain"
	"github.com/dillanmilo/railcore/internal/logger"
	"github.com/dillanmilo/railcore/internal/platform/ratelimit"
	ctrl "github.com/dillanmilo/railcore/internal/reports/controller"
	"github.com/dillanmilo/railcore/internal/reports/domain"
	svc "github.com/dillanmilo/railcore/internal/reports/service"
	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
	"github.com/dillanmilo/railcore/internal/storage"
)

// Deps are the collaborators the reports module is built from.
type Deps struct {
	Config    config.Config
	Log       zerolog.Logger
	Store     domain.Store
	Blobs     storage.Store
	Settings  sdomain.Service
	Mailer    edomain.Mailer
	Publisher evdomain.Publisher
	// RateLimit is a shared counter store; nil keeps counters in process.
	RateLimit ratelimit.Store
}

// Register wires the reports module, registers HTTP routes and returns the
// service for other callers such as the scheduler.
func Register(e *echo.Echo, d Deps) *svc.Service {
	renderer := document.New(document.Options{
		Location:     d.Config.Location(),
		Uncompressed: !d.Config.PDFCompress,
	})
	notifier := emailsvc.NewNotifier(d.Mailer, d.Config.DispatchTimeout, logger.For(d.Log, "dispatch"))
	if d.Publisher != nil {
		notifier.WithPublisher(d.Publisher)
	}
	s := svc.New(d.Store, renderer, d.Blobs, notifier).
		WithSettings(d.Settings).
		WithLogger(logger.For(d.Log, "reports")).
		WithBaseURL(d.Config.PublicBaseURL + "/api/v1")
	if d.Publisher != nil {
		s.WithPublisher(d.Publisher)
	}

	c := ctrl.New(s).
		WithLogger(logger.For(d.Log, "reports_http")).
		WithSettings(d.Settings).
		WithRateLimit(d.RateLimit, d.Config.ExportRateLimit, d.Config.ExportRateWindow)
	if d.Config.AuthEnabled {
		c.WithAuth(middleware.NewJWT(d.Config.JWTSigningKey))
	}
	c.Register(e)
	return s
}
