package controller

import (
	"bytes"
	"context"
	"encoding/json"
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
	"github.com/dillanmilo/railcore/internal/document"
	edomain "github.com/dillanmilo/railcore/internal/email/domain"
	"github.com/dillanmilo/railcore/internal/platform/validation"
	"github.com/dillanmilo/railcore/internal/reports/domain"
	"github.com/dillanmilo/railcore/internal/reports/repository"
	rsvc "github.com/dillanmilo/railcore/internal/reports/service"
	"github.com/dillanmilo/railcore/internal/storage"
)

type stubDispatcher struct {
	ok    bool
	calls int
}

func (s *stubDispatcher) Notify(context.Context, uuid.UUID, []string, string, string, []edomain.Attachment) bool {
	s.calls++
	return s.ok
}

var now = time.Date(2024, 3, 16, 9, 30, 0, 0, time.UTC)

type env struct {
	e    *echo.Echo
	st   domain.Store
	disp *stubDispatcher
	seed repository.SeedResult
}

func setup(t *testing.T, recipients []string, configure func(*Controller)) env {
	t.Helper()
	st := repository.NewMemory().Store()
	seed, err := repository.Seed(context.Background(), st, now, recipients)
	require.NoError(t, err)
	disp := &stubDispatcher{ok: true}
	r := document.New(document.Options{Now: func() time.Time { return now }, Uncompressed: true})
	svc := rsvc.New(st, r, storage.NewMemory(time.Hour), disp).
		WithBaseURL("http://example.test/api/v1").
		WithClock(func() time.Time { return now })

	e := echo.New()
	e.Validator = validation.New()
	c := New(svc)
	if configure != nil {
		configure(c)
	}
	c.Register(e)
	return env{e: e, st: st, disp: disp, seed: seed}
}

func post(e *echo.Echo, path string, body any, header ...string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	s, _ := body["error"].(string)
	return s
}

func TestExportChecklist(t *testing.T) {
	env := setup(t, nil, nil)

	rec := post(env.e, "/checklists/export", map[string]string{"submissionId": env.seed.SubmissionID.String(), "projectName": "Main Line Extension"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get(echo.HeaderContentType))
	assert.Equal(t, `attachment; filename="checklist-track-safety-inspection-1710581400000.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = post(env.e, "/api/v1/checklists/export", map[string]string{"projectName": "P"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing required fields: submissionId", errorOf(t, rec))

	rec = post(env.e, "/checklists/export", map[string]string{"submissionId": "abc", "projectName": "P"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(env.e, "/checklists/export", map[string]string{"submissionId": uuid.NewString(), "projectName": "P"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportPunchList(t *testing.T) {
	env := setup(t, nil, nil)

	rec := post(env.e, "/punch/export", map[string]string{"projectId": env.seed.ProjectID.String()})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="Main Line Extension-punch-list.pdf"`, rec.Header().Get(echo.HeaderContentDisposition))

	rec = post(env.e, "/api/v1/punch/export", map[string]string{"projectId": env.seed.ProjectID.String(), "format": "xlsx"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.ContentTypeXLSX, rec.Header().Get(echo.HeaderContentType))

	rec = post(env.e, "/punch/export", map[string]string{"projectId": env.seed.ProjectID.String(), "format": "csv"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = post(env.e, "/punch/export", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateThenFetchAndSend(t *testing.T) {
	env := setup(t, []string{"pm@example.com"}, nil)

	rec := post(env.e, "/reports/generate", map[string]string{"reportId": env.seed.ReportIDs[0].String(), "projectName": "Main Line Extension"})
	require.Equal(t, http.StatusOK, rec.Code)
	var gen struct {
		PDFURL string `json:"pdfUrl"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &gen))
	require.True(t, strings.HasPrefix(gen.PDFURL, "http://example.test/api/v1/files/"))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+storage.KeyFromURL(gen.PDFURL), nil)
	frec := httptest.NewRecorder()
	env.e.ServeHTTP(frec, req)
	require.Equal(t, http.StatusOK, frec.Code)
	assert.True(t, bytes.HasPrefix(frec.Body.Bytes(), []byte("%PDF")))

	rec = post(env.e, "/reports/send", map[string]string{
		"projectId": env.seed.ProjectID.String(), "pdfUrl": gen.PDFURL, "reportDate": "2024-03-15", "crew": "Track Crew B",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())
	assert.Equal(t, 1, env.disp.calls)

	env.disp.ok = false
	rec = post(env.e, "/reports/send", map[string]string{
		"projectId": env.seed.ProjectID.String(), "pdfUrl": gen.PDFURL, "reportDate": "2024-03-15",
	})
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "failed to send report", errorOf(t, rec))
}

func TestSendReport_NoDistributionList(t *testing.T) {
	env := setup(t, nil, nil)
	rec := post(env.e, "/reports/send", map[string]string{
		"projectId": env.seed.ProjectID.String(), "pdfUrl": "http://example.test/files/x.pdf", "reportDate": "2024-03-15", "crew": "A",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "no distribution list configured", errorOf(t, rec))
	assert.Zero(t, env.disp.calls)
}

func TestGenerateReport_Errors(t *testing.T) {
	env := setup(t, nil, nil)
	rec := post(env.e, "/reports/generate", map[string]string{"reportId": uuid.NewString(), "projectName": "P"})
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/reports/generate", strings.NewReader("{not json"))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	r := httptest.NewRecorder()
	env.e.ServeHTTP(r, req)
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestGetFile_NotFound(t *testing.T) {
	env := setup(t, nil, nil)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/files/missing.pdf", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_RequireAuthWhenEnabled(t *testing.T) {
	const key = "k"
	env := setup(t, nil, func(c *Controller) { c.WithAuth(authmw.NewJWT(key)) })
	body := map[string]string{"projectId": env.seed.ProjectID.String()}

	rec := post(env.e, "/punch/export", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	tok, err := authmw.IssueToken(key, uuid.New(), repository.DemoOrgID, time.Hour, time.Now())
	require.NoError(t, err)
	rec = post(env.e, "/punch/export", body, "Authorization", "Bearer "+tok)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_OtherOrgTokenSeesNotFound(t *testing.T) {
	const key = "k"
	env := setup(t, nil, func(c *Controller) { c.WithAuth(authmw.NewJWT(key)) })
	tok, err := authmw.IssueToken(key, uuid.New(), uuid.New(), time.Hour, time.Now())
	require.NoError(t, err)
	bearer := "Bearer " + tok

	rec := post(env.e, "/punch/export", map[string]string{"projectId": env.seed.ProjectID.String()}, "Authorization", bearer)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", errorOf(t, rec))

	rec = post(env.e, "/checklists/export", map[string]string{"submissionId": env.seed.SubmissionID.String(), "projectName": "P"}, "Authorization", bearer)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRoutes_RateLimited(t *testing.T) {
	env := setup(t, nil, func(c *Controller) { c.WithRateLimit(nil, 2, time.Minute) })
	body := map[string]string{"projectId": env.seed.ProjectID.String()}

	assert.Equal(t, http.StatusOK, post(env.e, "/punch/export", body).Code)
	assert.Equal(t, http.StatusOK, post(env.e, "/api/v1/punch/export", body).Code)
	rec := post(env.e, "/punch/export", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
