package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authmw "github.com/dillanmilo/railcore/internal/auth/middleware"
)

func TestIssue_TokenAcceptedByMiddleware(t *testing.T) {
	org, user := uuid.New(), uuid.New()
	res, err := issue("secret", org, user, time.Hour, time.Now())
	require.NoError(t, err)

	e := echo.New()
	var gotOrg uuid.UUID
	e.GET("/", func(c echo.Context) error {
		gotOrg, _ = authmw.OrgID(c)
		return c.NoContent(http.StatusNoContent)
	}, authmw.NewJWT("secret"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+res.Token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, org, gotOrg)
}

func TestIssue_RejectsNonPositiveTTL(t *testing.T) {
	_, err := issue("secret", uuid.New(), uuid.New(), 0, time.Now())
	assert.Error(t, err)
}

func TestPrintEnv_SortedKeys(t *testing.T) {
	now := time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)
	res, err := issue("secret", uuid.New(), uuid.New(), time.Hour, now)
	require.NoError(t, err)

	var buf bytes.Buffer
	printEnv(&buf, res)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "BOOTSTRAP_EXPIRES_AT=2024-03-16T10:00:00Z", lines[0])
	assert.True(t, strings.HasPrefix(lines[3], "RAILCORE_API_TOKEN="))
}
