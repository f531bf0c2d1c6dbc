package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/dillanmilo/railcore/internal/events/domain"
)

// Logger is a Publisher that writes events to the audit log stream.
type Logger struct{ log zerolog.Logger }

func NewLogger(l zerolog.Logger) *Logger {
	return &Logger{log: l.With().Str("stream", "audit").Logger()}
}

func (l *Logger) Publish(ctx context.Context, e domain.Event) error {
	ts := e.Time
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	l.log.Info().
		Str("type", e.Type).
		Str("org_id", e.OrgID.String()).
		Str("project_id", e.ProjectID.String()).
		Fields(map[string]any{"meta": e.Meta}).
		Time("ts", ts).
		Msg("event")
	return nil
}

// Recorder keeps published events in memory; tests use it to assert on the audit trail.
type Recorder struct {
	mu     sync.Mutex
	Events []domain.Event
}

func (r *Recorder) Publish(ctx context.Context, e domain.Event) error {
	r.mu.Lock()
	r.Events = append(r.Events, e)
	r.mu.Unlock()
	return nil
}

// Types lists recorded event types in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Events))
	for _, e := range r.Events {
		out = append(out, e.Type)
	}
	return out
}
