package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	authmw "github.com/dillanmilo/railcore/internal/auth/middleware"
	"github.com/dillanmilo/railcore/internal/config"
	"github.com/dillanmilo/railcore/internal/reports/repository"
)

type bootstrapResult struct {
	OrgID     uuid.UUID `json:"org_id"`
	UserID    uuid.UUID `json:"user_id"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func main() {
	var (
		tokenTTL = flag.Duration("ttl", 15*time.Minute, "lifetime for the issued token")
		orgID    = flag.String("org-id", repository.DemoOrgID.String(), "organization the token is scoped to")
		userID   = flag.String("user-id", "", "subject user ID (random when empty)")
		output   = flag.String("output", "env", "output format: env or json")
	)
	flag.Parse()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	org, err := uuid.Parse(*orgID)
	if err != nil {
		log.Fatalf("invalid org-id: %v", err)
	}
	user := uuid.New()
	if *userID != "" {
		if user, err = uuid.Parse(*userID); err != nil {
			log.Fatalf("invalid user-id: %v", err)
		}
	}

	result, err := issue(cfg.JWTSigningKey, org, user, *tokenTTL, time.Now())
	if err != nil {
		log.Fatalf("failed to mint token: %v", err)
	}

	switch strings.ToLower(*output) {
	case "json":
		if err := encodeJSON(os.Stdout, result); err != nil {
			log.Fatalf("failed to encode JSON: %v", err)
		}
	case "env":
		printEnv(os.Stdout, result)
	default:
		log.Fatalf("unsupported output format: %s", *output)
	}
}

func issue(signingKey string, orgID, userID uuid.UUID, ttl time.Duration, now time.Time) (bootstrapResult, error) {
	if ttl <= 0 {
		return bootstrapResult{}, fmt.Errorf("ttl must be positive")
	}
	token, err := authmw.IssueToken(signingKey, userID, orgID, ttl, now)
	if err != nil {
		return bootstrapResult{}, err
	}
	return bootstrapResult{
		OrgID:     orgID,
		UserID:    userID,
		Token:     token,
		ExpiresAt: now.Add(ttl).UTC(),
	}, nil
}

func encodeJSON(w io.Writer, res bootstrapResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func printEnv(w io.Writer, res bootstrapResult) {
	vars := map[string]string{
		"RAILCORE_API_TOKEN":   res.Token,
		"BOOTSTRAP_EXPIRES_AT": res.ExpiresAt.Format(time.RFC3339),
		"BOOTSTRAP_ORG_ID":     res.OrgID.String(),
		"BOOTSTRAP_USER_ID":    res.UserID.String(),
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, vars[k])
	}
}
