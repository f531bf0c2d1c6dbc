package main

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dillanmilo/railcore/internal/config"
	"github.com/dillanmilo/railcore/migrations"
)

const (
	exitOK      = 0
	exitUsage   = 2
	exitConfig  = 3
	exitMigrate = 4
)

var (
	migrateRunner = realMigrateRunner
	osExit        = os.Exit
	cliOut        io.Writer = os.Stdout
	cliErr        io.Writer = os.Stderr
)

// migrateAction runs one goose command against the embedded migrations.
type migrateAction struct {
	help  string
	nargs int
	run   func(db *sql.DB, args []string) error
}

var migrateActions = map[string]migrateAction{
	"up":      {help: "Apply all pending migrations", run: func(db *sql.DB, _ []string) error { return goose.Up(db, ".") }},
	"down":    {help: "Roll back one migration", run: func(db *sql.DB, _ []string) error { return goose.Down(db, ".") }},
	"redo":    {help: "Roll back and reapply the latest migration", run: func(db *sql.DB, _ []string) error { return goose.Redo(db, ".") }},
	"status":  {help: "Show migration status", run: func(db *sql.DB, _ []string) error { return goose.Status(db, ".") }},
	"version": {help: "Print the current schema version", run: func(db *sql.DB, _ []string) error { return goose.Version(db, ".") }},
	"up-to": {help: "Apply migrations up to VERSION", nargs: 1, run: func(db *sql.DB, args []string) error {
		v, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version %q", args[0])
		}
		return goose.UpTo(db, ".", v)
	}},
}

func handleCLICommand(args []string) bool {
	if len(args) == 0 {
		return false
	}
	switch args[0] {
	case "migrate":
		osExit(runMigrate(args[1:]))
		return true
	case "help", "-h", "--help":
		printHelp(cliOut)
		osExit(exitOK)
		return true
	}
	return false
}

func runMigrate(args []string) int {
	if len(args) == 0 {
		fmt.Fprintln(cliErr, "missing migrate subcommand, see 'railcore help'")
		return exitUsage
	}
	name, rest := args[0], args[1:]
	action, ok := migrateActions[name]
	if !ok {
		fmt.Fprintf(cliErr, "unknown migrate subcommand: %s\n", name)
		return exitUsage
	}
	if len(rest) != action.nargs {
		fmt.Fprintf(cliErr, "migrate %s takes %d argument(s), got %d\n", name, action.nargs, len(rest))
		return exitUsage
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(cliErr, "config error: %v\n", err)
		return exitConfig
	}

	run := migrateRunner
	if run == nil {
		run = realMigrateRunner
	}
	if err := run(name, cfg.DatabaseURL, rest...); err != nil {
		fmt.Fprintf(cliErr, "migrate %s failed: %v\n", name, err)
		return exitMigrate
	}
	return exitOK
}

func realMigrateRunner(name, databaseURL string, args ...string) error {
	action, ok := migrateActions[name]
	if !ok {
		return fmt.Errorf("unsupported migrate subcommand %q", name)
	}
	if databaseURL == "" {
		return errors.New("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return action.run(db, args)
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Railcore API")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %-34s%s\n", "railcore", "Start API server")

	names := make([]string, 0, len(migrateActions))
	for name := range migrateActions {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		usage := "railcore migrate " + name
		if migrateActions[name].nargs > 0 {
			usage += " VERSION"
		}
		fmt.Fprintf(w, "  %-34s%s\n", usage, migrateActions[name].help)
	}
}
