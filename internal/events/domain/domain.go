package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event types emitted by the reporting pipeline.
const (
	TypeDocumentExported = "document.exported"
	TypeReportGenerated  = "report.generated"
	TypeReportDispatched = "report.dispatched"
	TypeReportLogged     = "report.dispatch.logged"
	TypeDispatchFailed   = "report.dispatch.failed"
)

// Event is an audit record. Meta carries kind, recipients count, filename and similar.
type Event struct {
	Type      string
	OrgID     uuid.UUID
	ProjectID uuid.UUID
	Meta      map[string]string
	Time      time.Time
}

// Publisher publishes events to an external system (log, queue, etc.).
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}
