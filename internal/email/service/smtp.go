package service

import (
	"bytes"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dillanmilo/railcore/internal/config"
	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	sdomain "github.com/dillanmilo/railcore/internal/settings/domain"
)

var ErrNotConfigured = errors.New("email transport not configured")

// Ensure SMTP implements domain.Mailer
var _ edomain.Mailer = (*SMTP)(nil)

type SMTP struct {
	cfg      config.Config
	settings sdomain.Service
}

func NewSMTP(settings sdomain.Service, cfg config.Config) *SMTP {
	return &SMTP{settings: settings, cfg: cfg}
}

type smtpSettings struct {
	host, from, username, password string
	port                           int
}

func (s *SMTP) resolve(ctx context.Context, orgID uuid.UUID) smtpSettings {
	var ss smtpSettings
	ss.host, _ = s.settings.GetString(ctx, sdomain.KeySMTPHost, &orgID, s.cfg.SMTPHost)
	ss.from, _ = s.settings.GetString(ctx, sdomain.KeySMTPFrom, &orgID, s.cfg.SMTPFrom)
	ss.username, _ = s.settings.GetString(ctx, sdomain.KeySMTPUsername, &orgID, s.cfg.SMTPUsername)
	ss.password, _ = s.settings.GetString(ctx, sdomain.KeySMTPPassword, &orgID, s.cfg.SMTPPassword)
	ss.port, _ = s.settings.GetInt(ctx, sdomain.KeySMTPPort, &orgID, s.cfg.SMTPPort)
	return ss
}

func (s *SMTP) Configured(ctx context.Context, orgID uuid.UUID) bool {
	return s.resolve(ctx, orgID).host != ""
}

func (s *SMTP) Send(ctx context.Context, orgID uuid.UUID, msg edomain.Message) error {
	ss := s.resolve(ctx, orgID)
	if ss.host == "" {
		return ErrNotConfigured
	}
	body, err := buildMIME(ss.from, msg)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(ss.host, strconv.Itoa(ss.port))
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("smtp dial %s: %w", addr, err)
	}
	if dl, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(dl)
	}
	c, err := smtp.NewClient(conn, ss.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("smtp client: %w", err)
	}
	defer func() { _ = c.Close() }()

	if ok, _ := c.Extension("STARTTLS"); ok {
		if err := c.StartTLS(&tls.Config{ServerName: ss.host}); err != nil {
			return fmt.Errorf("smtp starttls: %w", err)
		}
	}
	if ss.username != "" {
		if err := c.Auth(smtp.PlainAuth("", ss.username, ss.password, ss.host)); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}
	if err := c.Mail(ss.from); err != nil {
		return fmt.Errorf("smtp mail from: %w", err)
	}
	for _, rcpt := range msg.To {
		if err := c.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(body); err != nil {
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp data close: %w", err)
	}
	return c.Quit()
}

// buildMIME assembles a multipart/mixed message: the HTML body first, then
// each attachment base64 encoded.
func buildMIME(from string, msg edomain.Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	var head bytes.Buffer
	fmt.Fprintf(&head, "From: %s\r\n", from)
	fmt.Fprintf(&head, "To: %s\r\n", strings.Join(msg.To, ", "))
	fmt.Fprintf(&head, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&head, "Message-ID: <%s@railcore>\r\n", randomID())
	head.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&head, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	hp, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/html; charset=utf-8"},
		"Content-Transfer-Encoding": {"base64"},
	})
	if err != nil {
		return nil, err
	}
	if err := writeBase64(hp, []byte(msg.HTML)); err != nil {
		return nil, err
	}

	for _, a := range msg.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		ap, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {mime.FormatMediaType(ct, map[string]string{"name": a.Filename})},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": a.Filename})},
			"Content-Transfer-Encoding": {"base64"},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64(ap, a.Content); err != nil {
			return nil, err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return append(head.Bytes(), buf.Bytes()...), nil
}

// writeBase64 writes data base64 encoded in 76 character lines.
func writeBase64(w io.Writer, data []byte) error {
	enc := base64.StdEncoding.EncodeToString(data)
	for len(enc) > 76 {
		if _, err := w.Write([]byte(enc[:76] + "\r\n")); err != nil {
			return err
		}
		enc = enc[76:]
	}
	_, err := w.Write([]byte(enc + "\r\n"))
	return err
}

func randomID() string {
	b := make([]byte, 12)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
