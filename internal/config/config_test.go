package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORE", "")
	t.Setenv("SMTP_HOST", "")
	t.Setenv("DISPATCH_TIMEOUT", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.Store)
	assert.Equal(t, "", cfg.SMTPHost)
	assert.Equal(t, 5*time.Second, cfg.DispatchTimeout)
	assert.True(t, cfg.PDFCompress)
	assert.Equal(t, "smtp", cfg.EmailProvider)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORE", "POSTGRES")
	t.Setenv("DISPATCH_TIMEOUT", "2s")
	t.Setenv("PDF_COMPRESS", "false")
	t.Setenv("EMAIL_PROVIDER", "Brevo")
	t.Setenv("PUBLIC_BASE_URL", "https://reports.example.com/")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store)
	assert.Equal(t, 2*time.Second, cfg.DispatchTimeout)
	assert.False(t, cfg.PDFCompress)
	assert.Equal(t, "brevo", cfg.EmailProvider)
	assert.Equal(t, "https://reports.example.com", cfg.PublicBaseURL)
}

func TestLoad_InvalidStore(t *testing.T) {
	t.Setenv("STORE", "sqlite")
	_, err := Load()
	require.Error(t, err)
}

func TestLoad_NonPositiveTimeoutFallsBack(t *testing.T) {
	t.Setenv("DISPATCH_TIMEOUT", "-1s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, cfg.DispatchTimeout)
}

func TestSplitCSV(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, splitCSV(" a, ,b "))
	assert.Nil(t, splitCSV(" , "))
}

func TestLoad_DemoRecipients(t *testing.T) {
	t.Setenv("DEMO_RECIPIENTS", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Empty(t, cfg.DemoRecipients)

	t.Setenv("DEMO_RECIPIENTS", "pm@example.com, super@example.com")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"pm@example.com", "super@example.com"}, cfg.DemoRecipients)
}

func TestLoad_BlankCORSAllowsAll(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", " , ")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
}
