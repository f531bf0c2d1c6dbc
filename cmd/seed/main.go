package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/dillanmilo/railcore/internal/config"
	"github.com/dillanmilo/railcore/internal/reports/domain"
	"github.com/dillanmilo/railcore/internal/reports/repository"
	rsvc "github.com/dillanmilo/railcore/internal/reports/service"
	srepo "github.com/dillanmilo/railcore/internal/settings/repository"
)

func main() {
	_ = godotenv.Load()
	ctx := context.Background()
	cfg, err := config.Load()
	if err != nil {
		fatalf("load config: %v", err)
	}
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	pgCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		fatalf("invalid DATABASE_URL: %v", err)
	}
	pgPool, err := pgxpool.NewWithConfig(ctx, pgCfg)
	if err != nil {
		fatalf("pg pool: %v", err)
	}
	defer pgPool.Close()

	store := repository.NewPG(pgPool).Store()
	settingsRepo := srepo.New(pgPool)

	sub := os.Args[1]
	switch sub {
	case "demo":
		fs := flag.NewFlagSet("demo", flag.ExitOnError)
		recipients := fs.String("recipients", envOr("DEMO_RECIPIENTS", ""), "comma-separated distribution list")
		_ = fs.Parse(os.Args[2:])

		res, created, err := ensureDemo(ctx, store, time.Now(), splitCSV(*recipients))
		if err != nil {
			fatalf("seed demo: %v", err)
		}
		if !created {
			stderr("demo project already present")
		}
		printEnv(os.Stdout, demoEnv(res))
	case "project":
		fs := flag.NewFlagSet("project", flag.ExitOnError)
		name := fs.String("name", envOr("PROJECT_NAME", ""), "project name")
		orgIDStr := fs.String("org-id", envOr("ORG_ID", repository.DemoOrgID.String()), "organization UUID")
		recipients := fs.String("recipients", os.Getenv("RECIPIENTS"), "comma-separated distribution list")
		auto := fs.Bool("auto-distribute", envOrBool("AUTO_DISTRIBUTE", false), "include in the scheduled daily send")
		_ = fs.Parse(os.Args[2:])

		if strings.TrimSpace(*name) == "" {
			fatalf("name is required")
		}
		orgID, err := uuid.Parse(*orgIDStr)
		if err != nil {
			fatalf("invalid org-id: %v", err)
		}
		p := domain.Project{
			ID:               uuid.New(),
			OrgID:            orgID,
			Name:             strings.TrimSpace(*name),
			DistributionList: splitCSV(*recipients),
			AutoDistribute:   *auto,
			CreatedAt:        time.Now().UTC(),
		}
		if err := store.Projects.Create(ctx, p); err != nil {
			fatalf("project create: %v", err)
		}
		printEnv(os.Stdout, map[string]string{"PROJECT_ID": p.ID.String()})
	case "report":
		fs := flag.NewFlagSet("report", flag.ExitOnError)
		projectIDStr := fs.String("project-id", os.Getenv("PROJECT_ID"), "project UUID")
		date := fs.String("date", time.Now().AddDate(0, 0, -1).Format("2006-01-02"), "report date (YYYY-MM-DD)")
		crew := fs.String("crew", envOr("CREW", ""), "crew name")
		activities := fs.String("activities", os.Getenv("ACTIVITIES"), "activities, one per line (use \\n)")
		quantities := fs.String("quantities", "", "quantities")
		blockers := fs.String("blockers", "", "blockers")
		_ = fs.Parse(os.Args[2:])

		projectID, err := uuid.Parse(*projectIDStr)
		if err != nil {
			fatalf("invalid project-id: %v", err)
		}
		d, err := time.Parse("2006-01-02", *date)
		if err != nil {
			fatalf("invalid date: %v", err)
		}
		r, err := rsvc.New(store, nil, nil, nil).CreateDailyReport(ctx, domain.DailyReport{
			ProjectID:  projectID,
			ReportDate: d,
			Crew:       *crew,
			Activities: strings.ReplaceAll(*activities, `\n`, "\n"),
			Quantities: *quantities,
			Blockers:   *blockers,
		})
		if err != nil {
			fatalf("report create: %v", err)
		}
		printEnv(os.Stdout, map[string]string{"REPORT_ID": r.ID.String()})
	case "setting":
		fs := flag.NewFlagSet("setting", flag.ExitOnError)
		key := fs.String("key", "", "setting key, e.g. email.provider")
		value := fs.String("value", "", "setting value")
		orgIDStr := fs.String("org-id", "", "organization UUID (global when empty)")
		secret := fs.Bool("secret", false, "mark the value as secret")
		_ = fs.Parse(os.Args[2:])

		if *key == "" {
			fatalf("key is required")
		}
		var orgID *uuid.UUID
		if *orgIDStr != "" {
			id, err := uuid.Parse(*orgIDStr)
			if err != nil {
				fatalf("invalid org-id: %v", err)
			}
			orgID = &id
		}
		if err := settingsRepo.Upsert(ctx, *key, orgID, *value, *secret); err != nil {
			fatalf("setting upsert: %v", err)
		}
		stderr("setting %s updated", *key)
	default:
		usage()
		os.Exit(2)
	}
}

// ensureDemo seeds the demo project unless it already exists.
func ensureDemo(ctx context.Context, st domain.Store, now time.Time, recipients []string) (repository.SeedResult, bool, error) {
	_, err := st.Projects.GetByID(ctx, repository.DemoProjectID)
	switch {
	case err == nil:
		return repository.SeedResult{
			ProjectID:    repository.DemoProjectID,
			TemplateID:   repository.DemoTemplateID,
			SubmissionID: repository.DemoSubmissionID,
		}, false, nil
	case !errors.Is(err, domain.ErrNotFound):
		return repository.SeedResult{}, false, err
	}
	res, err := repository.Seed(ctx, st, now, recipients)
	if err != nil {
		return repository.SeedResult{}, false, err
	}
	return res, true, nil
}

func demoEnv(res repository.SeedResult) map[string]string {
	env := map[string]string{
		"ORG_ID":        repository.DemoOrgID.String(),
		"PROJECT_ID":    res.ProjectID.String(),
		"TEMPLATE_ID":   res.TemplateID.String(),
		"SUBMISSION_ID": res.SubmissionID.String(),
	}
	if len(res.ReportIDs) > 0 {
		env["REPORT_ID"] = res.ReportIDs[0].String()
	}
	return env
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  seed demo [--recipients a@x,b@y]")
	fmt.Fprintln(os.Stderr, "  seed project --name NAME [--org-id UUID] [--recipients ...] [--auto-distribute]")
	fmt.Fprintln(os.Stderr, "  seed report --project-id UUID [--date YYYY-MM-DD] --activities TEXT [--crew NAME]")
	fmt.Fprintln(os.Stderr, "  seed setting --key KEY --value VALUE [--org-id UUID] [--secret]")
}

func splitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envOrBool(k string, def bool) bool {
	switch strings.ToLower(os.Getenv(k)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return def
}

func printEnv(w io.Writer, kv map[string]string) {
	keys := make([]string, 0, len(kv))
	for k := range kv {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, kv[k])
	}
}

func fatalf(f string, a ...any) {
	stderr(f, a...)
	os.Exit(1)
}

func stderr(f string, a ...any) {
	fmt.Fprintf(os.Stderr, f+"\n", a...)
}
