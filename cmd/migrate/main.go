// migrate copies the studio dataset from one storage backend to another,
// e.g. from the JSON file used in development to Postgres.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"github.com/zenstudio/backend/internal/logging"
	"github.com/zenstudio/backend/internal/storage"
)

func main() {
	_ = godotenv.Load()

	if err := run(context.Background(), os.Args[1:], os.Stderr); err != nil {
		logging.Fatal("migrate failed", "error", err)
	}
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	var (
		from, to, logLevel string
		force              bool
	)
	flagSet := pflag.NewFlagSet("migrate", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&from, "from", "file:database.json", "source location")
	flagSet.StringVar(&to, "to", "", "target location (required)")
	flagSet.BoolVar(&force, "force", false, "overwrite a target that already holds data")
	flagSet.StringVar(&logLevel, "log-level", "INFO", "log level (DEBUG, INFO, WARN, ERROR)")
	flagSet.Usage = func() {
		fmt.Fprintf(stderr, `Usage: migrate --to <location> [--from <location>] [--force]

Locations:
  file:<path>          JSON file
  sqlite:<path>        SQLite database
  postgres://...       Postgres connection URL
  redis://...[#prefix] Redis URL, optional key prefix after '#'

Flags:
%s`, flagSet.FlagUsages())
	}
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	logging.Setup(logging.Options{Level: logLevel, Format: "text", Output: stderr})

	if to == "" {
		flagSet.Usage()
		return errors.New("--to is required")
	}
	srcCfg, err := parseLocation(from)
	if err != nil {
		return fmt.Errorf("--from: %w", err)
	}
	dstCfg, err := parseLocation(to)
	if err != nil {
		return fmt.Errorf("--to: %w", err)
	}

	src, err := storage.Open(ctx, srcCfg, nil)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := storage.Open(ctx, dstCfg, nil)
	if err != nil {
		return err
	}
	defer dst.Close()

	ds, err := src.Snapshot(ctx)
	if err != nil {
		return err
	}

	exists, err := dst.Exists(ctx)
	if err != nil {
		return fmt.Errorf("inspect target: %w", err)
	}
	if exists && !force {
		return fmt.Errorf("%s already holds a dataset; use --force to overwrite", dst.Location())
	}

	if err := dst.Save(ctx, ds); err != nil {
		return err
	}
	slog.Info("dataset copied",
		"from", src.Location(),
		"to", dst.Location(),
		"leads", len(ds.Leads),
		"matriculas", len(ds.Enrollments),
		"contatos", len(ds.Contacts),
	)
	return nil
}

// parseLocation turns a location string into a storage.Config.
func parseLocation(loc string) (storage.Config, error) {
	switch {
	case strings.HasPrefix(loc, "postgres://"), strings.HasPrefix(loc, "postgresql://"):
		return storage.Config{Driver: "postgres", PostgresURL: loc}, nil
	case strings.HasPrefix(loc, "redis://"), strings.HasPrefix(loc, "rediss://"):
		url, prefix, _ := strings.Cut(loc, "#")
		return storage.Config{Driver: "redis", RedisURL: url, RedisPrefix: prefix}, nil
	}

	driver, path, ok := strings.Cut(loc, ":")
	if !ok || path == "" {
		return storage.Config{}, fmt.Errorf("invalid location %q", loc)
	}
	switch driver {
	case "file":
		return storage.Config{Driver: "file", Path: path}, nil
	case "sqlite":
		return storage.Config{Driver: "sqlite", SQLitePath: path}, nil
	default:
		return storage.Config{}, fmt.Errorf("%w: %q", storage.ErrUnknownDriver, driver)
	}
}
