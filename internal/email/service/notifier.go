package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	evdomain "github.com/dillanmilo/railcore/internal/events/domain"
	"github.com/dillanmilo/railcore/internal/metrics"
)

// Notifier delivers a message and reports a boolean outcome. Send failures
// are logged and become false.
type Notifier struct {
	mailer  edomain.Mailer
	timeout time.Duration
	log     zerolog.Logger
	pub     evdomain.Publisher
	now     func() time.Time
}

func NewNotifier(mailer edomain.Mailer, timeout time.Duration, log zerolog.Logger) *Notifier {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Notifier{mailer: mailer, timeout: timeout, log: log, now: time.Now}
}

// WithPublisher injects an audit event publisher.
func (n *Notifier) WithPublisher(p evdomain.Publisher) *Notifier { n.pub = p; return n }

// Notify sends subject, HTML body and attachments to recipients.
//
// With no transport configured for the org it only logs the intended send
// and returns true.
func (n *Notifier) Notify(ctx context.Context, orgID uuid.UUID, recipients []string, subject, html string, attachments []edomain.Attachment) (ok bool) {
	msg := edomain.Message{To: recipients, Subject: subject, HTML: html, Attachments: attachments}
	defer func() {
		if r := recover(); r != nil {
			n.log.Error().Interface("panic", r).Str("subject", subject).Msg("email dispatch panicked")
			n.record(ctx, orgID, msg, "failed", fmt.Errorf("panic: %v", r))
			ok = false
		}
	}()

	if !n.mailer.Configured(ctx, orgID) {
		n.log.Info().
			Strs("recipients", recipients).
			Str("subject", subject).
			Strs("attachments", msg.Filenames()).
			Msg("email delivery not configured; logging instead of sending")
		n.record(ctx, orgID, msg, "logged", nil)
		return true
	}

	sendCtx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic: %v", r)
			}
		}()
		done <- n.mailer.Send(sendCtx, orgID, msg)
	}()

	var err error
	select {
	case err = <-done:
	case <-sendCtx.Done():
		err = sendCtx.Err()
	}
	if err != nil {
		result := "failed"
		if errors.Is(err, context.DeadlineExceeded) {
			result = "timeout"
		}
		n.log.Error().Err(err).
			Int("recipients", len(recipients)).
			Str("subject", subject).
			Dur("timeout", n.timeout).
			Msg("email dispatch failed")
		n.record(ctx, orgID, msg, result, err)
		return false
	}
	n.log.Info().Int("recipients", len(recipients)).Str("subject", subject).Msg("email sent")
	n.record(ctx, orgID, msg, "sent", nil)
	return true
}

func (n *Notifier) record(ctx context.Context, orgID uuid.UUID, msg edomain.Message, result string, err error) {
	metrics.IncDispatchOutcome(result)
	if n.pub == nil {
		return
	}
	typ := evdomain.TypeReportDispatched
	switch result {
	case "logged":
		typ = evdomain.TypeReportLogged
	case "failed", "timeout":
		typ = evdomain.TypeDispatchFailed
	}
	meta := map[string]string{
		"result":      result,
		"recipients":  strconv.Itoa(len(msg.To)),
		"attachments": strings.Join(msg.Filenames(), ","),
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	_ = n.pub.Publish(ctx, evdomain.Event{Type: typ, OrgID: orgID, Meta: meta, Time: n.now().UTC()})
}
