package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testKey = "test-signing-key"

func newEcho() *echo.Echo {
	e := echo.New()
	e.GET("/p", func(c echo.Context) error {
		uid, _ := UserID(c)
		oid, _ := OrgID(c)
		return c.JSON(http.StatusOK, map[string]string{"user": uid.String(), "org": oid.String()})
	}, NewJWT(testKey))
	return e
}

func TestJWT_ValidBearer(t *testing.T) {
	user, org := uuid.New(), uuid.New()
	tok, err := IssueToken(testKey, user, org, time.Hour, time.Now())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	newEcho().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), user.String())
	assert.Contains(t, rec.Body.String(), org.String())
}

func TestJWT_Cookie(t *testing.T) {
	tok, err := IssueToken(testKey, uuid.New(), uuid.New(), time.Hour, time.Now())
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.AddCookie(&http.Cookie{Name: accessCookie, Value: tok})
	rec := httptest.NewRecorder()
	newEcho().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestJWT_Rejections(t *testing.T) {
	expired, err := IssueToken(testKey, uuid.New(), uuid.New(), time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	wrongKey, err := IssueToken("other", uuid.New(), uuid.New(), time.Hour, time.Now())
	require.NoError(t, err)

	cases := map[string]string{
		"missing":    "",
		"not bearer": "Basic abc",
		"expired":    "Bearer " + expired,
		"wrong key":  "Bearer " + wrongKey,
		"garbage":    "Bearer not.a.jwt",
	}
	for name, header := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/p", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			newEcho().ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestJWT_ScopesRequestContextToOrg(t *testing.T) {
	org := uuid.New()
	tok, err := IssueToken(testKey, uuid.New(), org, time.Hour, time.Now())
	require.NoError(t, err)

	var got uuid.UUID
	var ok bool
	e := echo.New()
	e.GET("/p", func(c echo.Context) error {
		got, ok = OrgFromContext(c.Request().Context())
		return c.NoContent(http.StatusNoContent)
	}, NewJWT(testKey))

	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, ok)
	assert.Equal(t, org, got)
}

func TestOrgFromContext_Unscoped(t *testing.T) {
	_, ok := OrgFromContext(httptest.NewRequest(http.MethodGet, "/", nil).Context())
	assert.False(t, ok)
}
