// studio-admin is the terminal back-office for the studio record API. It
// lists every collection, toggles record status, deletes records and can
// keep the dashboard refreshed.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/zenstudio/backend/internal/client"
	"github.com/zenstudio/backend/internal/console"
	"github.com/zenstudio/backend/internal/logging"
	"github.com/zenstudio/backend/internal/model"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	baseURL  string
	attempts int
	timeout  time.Duration
	interval time.Duration
	color    bool
	logLevel string
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var opts options
	flagSet := pflag.NewFlagSet("studio-admin", pflag.ContinueOnError)
	flagSet.SetOutput(stderr)
	flagSet.StringVar(&opts.baseURL, "base-url", envOr("STUDIO_ADMIN_URL", "http://localhost:3000"), "record API origin")
	flagSet.IntVar(&opts.attempts, "attempts", 3, "attempts per read before giving up")
	flagSet.DurationVar(&opts.timeout, "timeout", 10*time.Second, "per-request timeout")
	flagSet.DurationVar(&opts.interval, "interval", client.DefaultRefreshInterval, "refresh interval for watch")
	flagSet.BoolVar(&opts.color, "color", true, "colorize output")
	flagSet.StringVar(&opts.logLevel, "log-level", "WARN", "log level (DEBUG, INFO, WARN, ERROR)")
	flagSet.Usage = func() { printHelp(stderr, flagSet) }

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	logging.Setup(logging.Options{Level: opts.logLevel, Format: "text", Output: stderr})

	c := client.New(opts.baseURL,
		client.WithAttempts(opts.attempts),
		client.WithHTTPClient(&http.Client{Timeout: opts.timeout}),
	)
	dash := client.NewDashboard(c, console.New(stdout, opts.color))

	rest := flagSet.Args()
	if len(rest) == 0 {
		rest = []string{"list"}
	}
	cmd, cmdArgs := rest[0], rest[1:]

	switch cmd {
	case "list":
		if err := expectArgs(cmd, cmdArgs, 0); err != nil {
			return err
		}
		return dash.Init(ctx)

	case "toggle", "delete":
		if err := expectArgs(cmd, cmdArgs, 2); err != nil {
			return err
		}
		coll, ok := model.ParseCollection(cmdArgs[0])
		if !ok {
			return fmt.Errorf("unknown collection %q (want leads, matriculas or contatos)", cmdArgs[0])
		}
		if err := dash.Init(ctx); err != nil {
			return err
		}
		id, status, err := dash.Snapshot().Resolve(coll, cmdArgs[1])
		if err != nil {
			return err
		}
		if cmd == "toggle" {
			return dash.ToggleStatus(ctx, coll, id, status)
		}
		return dash.Remove(ctx, coll, id)

	case "watch":
		if err := expectArgs(cmd, cmdArgs, 0); err != nil {
			return err
		}
		// Offline at start is not fatal; the next tick retries.
		_ = dash.Init(ctx)
		dash.Watch(ctx, opts.interval)
		return nil

	default:
		printHelp(stderr, flagSet)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func expectArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s: expected %d argument(s), got %d", cmd, n, len(args))
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printHelp(w io.Writer, flagSet *pflag.FlagSet) {
	fmt.Fprintf(w, `studio-admin: terminal back-office for the studio record API.

Usage:
  studio-admin [flags] list
  studio-admin [flags] toggle <collection> <id>
  studio-admin [flags] delete <collection> <id>
  studio-admin [flags] watch

Collections: leads, matriculas, contatos. An id may be shortened to any
unique prefix.

Flags:
%s`, flagSet.FlagUsages())
}
