package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/bizdocs/backend/internal/infrastructure/config"
	"github.com/bizdocs/backend/internal/infrastructure/logger"
	"github.com/bizdocs/backend/internal/infrastructure/migration"
	"github.com/bizdocs/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = `bizdocs database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands needing a database:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (negative rolls back)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Mark a version as applied without running it

Offline commands:
  create <name> [desc]  Create a new migration file pair
  list                  List available migrations
  check                 Verify every up migration has a down migration

Flags:
  -path string          Read migrations from a directory (default: embedded set)
  -log-level string     Log level: debug, info, warn, error (default: info)

The database is read from BIZDOCS_DATABASE_* variables or config.toml.

Examples:
  migrate up
  migrate step -1
  migrate create add_receipt_reference "Store the bank reference of a receipt"`

var errUsage = errors.New("usage")

// invocation is one run of the CLI
type invocation struct {
	args  []string
	src   migration.Source
	files fs.FS
	log   *zap.Logger
}

// arg returns the i-th command argument or a usage error naming it
func (inv *invocation) arg(i int, name string) (string, error) {
	if len(inv.args) <= i {
		return "", fmt.Errorf("%w: %s %s required", errUsage, inv.args[0], name)
	}
	return inv.args[i], nil
}

type offlineCommand func(inv *invocation) error

type dbCommand func(inv *invocation, m *migration.Migrator) error

var offlineCommands = map[string]offlineCommand{
	"create": runCreate,
	"list":   runList,
	"check":  runCheck,
}

var dbCommands = map[string]dbCommand{
	"up":      func(_ *invocation, m *migration.Migrator) error { return m.Up() },
	"down":    func(_ *invocation, m *migration.Migrator) error { return m.Down() },
	"step":    runStep,
	"goto":    runGoto,
	"version": runVersion,
	"force":   runForce,
}

func main() {
	path := flag.String("path", "", "Read migrations from this directory instead of the embedded set")
	level := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Println(usage)
		os.Exit(2)
	}

	log, err := logger.New(&logger.Config{Level: *level, Format: "console", Output: "stdout", TimeFormat: "15:04:05"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	inv := &invocation{args: flag.Args(), src: migration.Source{FS: migrations.FS}, files: migrations.FS, log: log}
	if *path != "" {
		abs, err := filepath.Abs(*path)
		if err != nil {
			log.Fatal("Invalid migrations path", zap.Error(err))
		}
		inv.src.Dir = abs
		inv.files = os.DirFS(abs)
	}

	if err := run(inv); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, err)
			fmt.Println(usage)
			os.Exit(2)
		}
		log.Fatal("Migration command failed", zap.String("command", inv.args[0]), zap.Error(err))
	}
}

func run(inv *invocation) error {
	name := inv.args[0]
	inv.log.Debug("Migration CLI started", zap.String("command", name), zap.String("dir", inv.src.Dir))

	if cmd, ok := offlineCommands[name]; ok {
		return cmd(inv)
	}
	cmd, ok := dbCommands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	if cfg.Database.IsSQLite() {
		return errors.New("SQL migrations target postgres; sqlite databases are migrated by the server at startup")
	}
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	m, err := migration.New(db, inv.src, inv.log)
	if err != nil {
		return err
	}
	defer m.Close()
	return cmd(inv, m)
}

func runCreate(inv *invocation) error {
	name, err := inv.arg(1, "<name>")
	if err != nil {
		return err
	}
	dir := inv.src.Dir
	if dir == "" {
		dir = "migrations"
	}
	description := ""
	if len(inv.args) > 2 {
		description = inv.args[2]
	}
	mf, err := migration.CreateMigration(dir, name, description)
	if err != nil {
		return err
	}
	inv.log.Info("Migration created",
		zap.String("version", mf.Version),
		zap.String("up_file", mf.UpPath),
		zap.String("down_file", mf.DownPath),
	)
	return nil
}

func runList(inv *invocation) error {
	names, err := migration.ListMigrations(inv.files)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		inv.log.Info("No migrations found")
		return nil
	}
	for _, n := range names {
		fmt.Println(n)
	}
	return nil
}

func runCheck(inv *invocation) error {
	if err := migration.CheckPairs(inv.files); err != nil {
		return err
	}
	inv.log.Info("Every migration has an up and a down file")
	return nil
}

func runStep(inv *invocation, m *migration.Migrator) error {
	raw, err := inv.arg(1, "<n>")
	if err != nil {
		return err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid step count %q", raw)
	}
	return m.Steps(n)
}

func runGoto(inv *invocation, m *migration.Migrator) error {
	raw, err := inv.arg(1, "<version>")
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid version %q", raw)
	}
	return m.GoTo(uint(v))
}

func runVersion(inv *invocation, m *migration.Migrator) error {
	v, dirty, err := m.Version()
	if err != nil {
		return err
	}
	if v == 0 {
		inv.log.Info("No migrations applied")
		return nil
	}
	inv.log.Info("Current migration version", zap.Uint("version", v), zap.Bool("dirty", dirty))
	return nil
}

func runForce(inv *invocation, m *migration.Migrator) error {
	raw, err := inv.arg(1, "<version>")
	if err != nil {
		return err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid version %q", raw)
	}
	inv.log.Warn("Forcing migration version", zap.Int("version", v))
	return m.Force(v)
}
