package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/riskibarqy/battlecode-league/internal/config"
	"github.com/riskibarqy/battlecode-league/internal/infrastructure/repository/postgres"
	"github.com/riskibarqy/battlecode-league/internal/platform/logging"
)

var logger = logging.NewJSON(logging.LevelInfo).With("component", "migration")

var errUsage = errors.New("usage")

// migrator is the subset of *migrate.Migrate the commands drive.
type migrator interface {
	Up() error
	Steps(n int) error
	Version() (uint, bool, error)
	Force(version int) error
	Migrate(version uint) error
}

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fatal("load .env", "error", err)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	dbURL := strings.TrimSpace(os.Getenv("DB_URL"))
	if dbURL == "" {
		fatal("DB_URL is required")
	}
	dbURL = normalizeDBURL(dbURL)

	if strings.EqualFold(strings.TrimSpace(args[0]), "seed") {
		if err := seed(dbURL); err != nil {
			fatal("seed failed", "error", err)
		}
		return
	}

	migrationsDir, err := resolveMigrationsDir()
	if err != nil {
		fatal("resolve migrations dir", "error", err)
	}
	sourceURL := "file://" + filepath.ToSlash(migrationsDir)
	m, err := migrate.New(sourceURL, dbURL)
	if err != nil {
		fatal("create migrator", "error", err)
	}

	err = run(args, m, os.Stdout)
	closeMigrator(m)
	switch {
	case errors.Is(err, errUsage):
		printUsage(os.Stderr)
		os.Exit(2)
	case err != nil:
		fatal("migration failed", "command", args[0], "source", sourceURL, "error", err)
	}
}

// run executes one migration command. ErrNoChange is reported as success.
func run(args []string, m migrator, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}
	rest := args[1:]

	var err error
	switch cmd := strings.ToLower(strings.TrimSpace(args[0])); cmd {
	case "up":
		err = m.Up()
	case "down":
		var steps int
		if steps, err = parseSteps(rest); err == nil {
			err = m.Steps(-steps)
		}
	case "version":
		return printVersion(m, out)
	case "force":
		if len(rest) == 0 {
			return fmt.Errorf("%w: force requires a version", errUsage)
		}
		var version int
		if version, err = parseVersion(rest[0]); err == nil {
			err = m.Force(version)
		}
	case "goto", "migrate":
		if len(rest) == 0 {
			return fmt.Errorf("%w: %s requires a target version", errUsage, cmd)
		}
		var target uint
		if target, err = parseTarget(rest[0]); err == nil {
			err = m.Migrate(target)
		}
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migration changes", "command", args[0])
		return nil
	}
	if err != nil {
		return err
	}
	logger.Info("migration command done", "command", args[0])
	return nil
}

func printVersion(m migrator, out io.Writer) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		_, _ = fmt.Fprintln(out, "version: none\ndirty: false")
		return nil
	}
	if err != nil {
		return fmt.Errorf("read version: %w", err)
	}
	_, _ = fmt.Fprintf(out, "version: %d\ndirty: %t\n", version, dirty)
	return nil
}

// seed loads the demo leagues, teams and tournaments into an empty database.
func seed(dbURL string) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", dbURL)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if err := postgres.BootstrapSeed(ctx, db); err != nil {
		return err
	}
	logger.Info("bootstrap seed checked")
	return nil
}

func parseSteps(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	steps, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("invalid down steps %q: %w", args[0], err)
	}
	if steps <= 0 {
		return 0, fmt.Errorf("down steps must be > 0")
	}
	return steps, nil
}

func parseVersion(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid version %q: %w", raw, err)
	}
	if value < 0 {
		return 0, fmt.Errorf("version must be >= 0")
	}
	return value, nil
}

func parseTarget(raw string) (uint, error) {
	value, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 0)
	if err != nil {
		return 0, fmt.Errorf("invalid target version %q: %w", raw, err)
	}
	return uint(value), nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		logger.Warn("close migration source", "error", srcErr)
	}
	if dbErr != nil {
		logger.Warn("close migration db", "error", dbErr)
	}
}

var migrationDirEnvKeys = []string{"MIGRATIONS_DIR", "MIGRATIONS_PATH"}

var migrationDirFallbacks = []string{"./db/migrations", "/app/db/migrations"}

func resolveMigrationsDir() (string, error) {
	var candidates []string
	for _, key := range migrationDirEnvKeys {
		candidates = append(candidates, strings.TrimSpace(os.Getenv(key)))
	}
	candidates = append(candidates, migrationDirFallbacks...)

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		abs, err := filepath.Abs(candidate)
		if err != nil {
			continue
		}
		if info, err := os.Stat(abs); err == nil && info.IsDir() {
			return abs, nil
		}
	}

	return "", fmt.Errorf("migration directory not found (checked %s, %s)",
		strings.Join(migrationDirEnvKeys, ", "), strings.Join(migrationDirFallbacks, ", "))
}

// normalizeDBURL applies the same disable_prepared_binary_result default as
// the API so both binaries reach the database the same way.
func normalizeDBURL(raw string) string {
	if !envBool("DB_DISABLE_PREPARED_BINARY_RESULT", true) {
		return raw
	}
	if strings.Contains(raw, "disable_prepared_binary_result=") {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "disable_prepared_binary_result=yes"
}

func envBool(key string, fallback bool) bool {
	switch strings.TrimSpace(strings.ToLower(os.Getenv(key))) {
	case "":
		return fallback
	case "1", "true", "t", "yes", "y", "on":
		return true
	default:
		return false
	}
}

func fatal(msg string, args ...any) {
	logger.Error(msg, args...)
	_ = logger.Sync()
	os.Exit(1)
}

func printUsage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	_, _ = fmt.Fprintf(w, "usage: %s <up|down [n]|version|force <v>|goto <v>|seed>\n", name)
}
