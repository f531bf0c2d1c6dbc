package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	evdomain "github.com/dillanmilo/railcore/internal/events/domain"
	evsvc "github.com/dillanmilo/railcore/internal/events/service"
)

type fakeMailer struct {
	configured bool
	err        error
	delay      time.Duration
	panicMsg   string
	calls      int
	lastMsg    edomain.Message
}

func (f *fakeMailer) Configured(ctx context.Context, orgID uuid.UUID) bool { return f.configured }

func (f *fakeMailer) Send(ctx context.Context, orgID uuid.UUID, msg edomain.Message) error {
	f.calls++
	f.lastMsg = msg
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func pdfAttachment() []edomain.Attachment {
	return []edomain.Attachment{{Filename: "daily-report.pdf", Content: []byte("%PDF-1.3"), ContentType: "application/pdf"}}
}

func TestNotifier_UnconfiguredLogsAndSucceeds(t *testing.T) {
	m := &fakeMailer{}
	var logs strings.Builder
	rec := &evsvc.Recorder{}
	n := NewNotifier(m, time.Second, zerolog.New(&logs)).WithPublisher(rec)

	ok := n.Notify(context.Background(), uuid.Nil, []string{"pm@example.com"}, "Daily Report", "<p>x</p>", pdfAttachment())
	require.True(t, ok)
	require.Zero(t, m.calls)
	require.Contains(t, logs.String(), "pm@example.com")
	require.Contains(t, logs.String(), "daily-report.pdf")
	require.Equal(t, []string{evdomain.TypeReportLogged}, rec.Types())
}

func TestNotifier_SendsWhenConfigured(t *testing.T) {
	m := &fakeMailer{configured: true}
	rec := &evsvc.Recorder{}
	n := NewNotifier(m, time.Second, zerolog.Nop()).WithPublisher(rec)

	ok := n.Notify(context.Background(), uuid.New(), []string{"a@example.com", "b@example.com"}, "S", "<p>x</p>", pdfAttachment())
	require.True(t, ok)
	require.Equal(t, 1, m.calls)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, m.lastMsg.To)
	require.Equal(t, "S", m.lastMsg.Subject)
	require.Equal(t, []string{"daily-report.pdf"}, m.lastMsg.Filenames())
	require.Equal(t, []string{evdomain.TypeReportDispatched}, rec.Types())
	require.Equal(t, "2", rec.Events[0].Meta["recipients"])
}

func TestNotifier_TransportErrorReturnsFalse(t *testing.T) {
	m := &fakeMailer{configured: true, err: errors.New("connection refused")}
	rec := &evsvc.Recorder{}
	n := NewNotifier(m, time.Second, zerolog.Nop()).WithPublisher(rec)

	require.False(t, n.Notify(context.Background(), uuid.Nil, []string{"a@example.com"}, "S", "", nil))
	require.Equal(t, []string{evdomain.TypeDispatchFailed}, rec.Types())
	require.Equal(t, "failed", rec.Events[0].Meta["result"])
	require.Equal(t, "connection refused", rec.Events[0].Meta["error"])
}

func TestNotifier_TimeoutReturnsFalse(t *testing.T) {
	m := &fakeMailer{configured: true, delay: 2 * time.Second}
	rec := &evsvc.Recorder{}
	n := NewNotifier(m, 20*time.Millisecond, zerolog.Nop()).WithPublisher(rec)

	start := time.Now()
	require.False(t, n.Notify(context.Background(), uuid.Nil, []string{"a@example.com"}, "S", "", nil))
	require.Less(t, time.Since(start), time.Second)
	require.Equal(t, "timeout", rec.Events[0].Meta["result"])
}

func TestNotifier_PanicReturnsFalse(t *testing.T) {
	m := &fakeMailer{configured: true, panicMsg: "boom"}
	n := NewNotifier(m, time.Second, zerolog.Nop())
	require.False(t, n.Notify(context.Background(), uuid.Nil, []string{"a@example.com"}, "S", "", nil))
}

func TestNotifier_DefaultTimeout(t *testing.T) {
	n := NewNotifier(&fakeMailer{}, 0, zerolog.Nop())
	require.Equal(t, 5*time.Second, n.timeout)
}

func TestDailyReportEmailHTML_Escapes(t *testing.T) {
	body := DailyReportEmailHTML("Main <Line>", "March 15, 2024", "Smith & Co")
	require.Contains(t, body, "Main &lt;Line&gt;")
	require.Contains(t, body, "March 15, 2024")
	require.Contains(t, body, "Smith &amp; Co")
	require.NotContains(t, body, "<Line>")
	require.Equal(t, "Daily Report - Main Line - March 15, 2024", DailyReportSubject("", "Main Line", "March 15, 2024"))
	require.Equal(t, "Site Log - Main Line - March 15, 2024", DailyReportSubject("Site Log", "Main Line", "March 15, 2024"))
}
