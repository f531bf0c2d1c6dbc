package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	ctxUserIDKey = "auth_user_id"
	ctxOrgIDKey  = "auth_org_id"

	accessCookie = "railcore_access_token"
)

// NewJWT returns an Echo middleware that validates HS256 access tokens and
// stores the user and org IDs in the context.
func NewJWT(signingKey string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")

			// Dashboard sessions carry the token in a cookie.
			if auth == "" {
				if cookie, err := c.Cookie(accessCookie); err == nil && cookie != nil && cookie.Value != "" {
					auth = "Bearer " + cookie.Value
				}
			}

			if auth == "" || !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing bearer token"})
			}
			tokStr := strings.TrimPrefix(auth, "Bearer ")

			tok, err := jwt.Parse(tokStr, func(token *jwt.Token) (any, error) {
				return []byte(signingKey), nil
			}, jwt.WithLeeway(30*time.Second), jwt.WithIssuedAt(), jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			claims, ok := tok.Claims.(jwt.MapClaims)
			if !ok {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid claims"})
			}
			sub, _ := claims["sub"].(string)
			org, _ := claims["org"].(string)
			uid, err1 := uuid.Parse(sub)
			oid, err2 := uuid.Parse(org)
			if err1 != nil || err2 != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid subject or org"})
			}

			c.Set(ctxUserIDKey, uid)
			c.Set(ctxOrgIDKey, oid)
			c.SetRequest(c.Request().WithContext(WithOrg(c.Request().Context(), oid)))
			return next(c)
		}
	}
}

// IssueToken signs an access token for userID in orgID.
func IssueToken(signingKey string, userID, orgID uuid.UUID, ttl time.Duration, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub": userID.String(),
		"org": orgID.String(),
		"iat": now.Unix(),
		"exp": now.Add(ttl).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
}

// UserID returns the authenticated user's ID from context.
func UserID(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(ctxUserIDKey)
	if v == nil {
		return uuid.UUID{}, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// OrgID returns the authenticated org's ID from context.
func OrgID(c echo.Context) (uuid.UUID, bool) {
	v := c.Get(ctxOrgIDKey)
	if v == nil {
		return uuid.UUID{}, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

type orgCtxKey struct{}

// WithOrg scopes ctx to an org. Services below the HTTP layer only see
// records the org owns.
func WithOrg(ctx context.Context, orgID uuid.UUID) context.Context {
	return context.WithValue(ctx, orgCtxKey{}, orgID)
}

// OrgFromContext returns the org ctx is scoped to. Unauthenticated calls and
// background jobs have none.
func OrgFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(orgCtxKey{}).(uuid.UUID)
	return id, ok
}
