// Command check-jenkins-agent is a Nagios-compatible plugin that reports
// whether a host is attached to a Jenkins controller as an agent.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"

	"ozzus/check-jenkins-agent/internal/backend"
	"ozzus/check-jenkins-agent/internal/checks"
	"ozzus/check-jenkins-agent/internal/config"
	"ozzus/check-jenkins-agent/internal/domain"
	"ozzus/check-jenkins-agent/internal/lib/logger/slogpretty"
	"ozzus/check-jenkins-agent/internal/service"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: failed to load .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	os.Exit(code)
}

// run performs one check and returns the exit code. Exactly one line is
// written to stdout; logs go to stderr only with --verbose.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			fmt.Fprint(stderr, config.Usage())
		}
		return emit(stdout, configFailure(err))
	}

	log := setupLogger(cfg.Env, cfg.Verbose, stderr)

	log.Debug("starting check",
		"instance", cfg.Instance,
		"host", cfg.Host,
		"policy", cfg.Policy,
	)

	if !cfg.PolicyRecognized {
		log.Warn("unrecognized temp-offline-state, using default",
			"value", cfg.TempOfflineState,
			"default", domain.DefaultTempOfflinePolicy,
		)
	}

	client, err := backend.NewClient(cfg.Instance, cfg.User, cfg.Password, cfg.GetTimeout())
	if err != nil {
		log.Error("failed to initialize controller client", "error", err)
		return emit(stdout, domain.NewOutcome(domain.SeverityUnknown,
			"Unknown error while fetching %s computers: %v", cfg.Instance, err))
	}

	var checker checks.Checker = service.NewProbeService(client, log, service.Config{
		ControllerURL: cfg.Instance,
		Host:          cfg.Host,
		Policy:        cfg.Policy,
	})

	outcome := checker.Run(ctx)

	log.Debug("check finished", "severity", outcome.Severity.String())

	return emit(stdout, outcome)
}

func configFailure(err error) domain.CheckOutcome {
	switch {
	case errors.Is(err, config.ErrMissingInstance):
		// Historically an unconfigured instance is CRITICAL, not UNKNOWN.
		return domain.NewOutcome(domain.SeverityCritical, "Please provide a valid Jenkins URL!")
	case errors.Is(err, pflag.ErrHelp):
		return domain.NewOutcome(domain.SeverityUnknown, "usage requested")
	default:
		return domain.NewOutcome(domain.SeverityUnknown, "invalid configuration: %v", err)
	}
}

func emit(w io.Writer, outcome domain.CheckOutcome) int {
	fmt.Fprintln(w, outcome.Line())
	return outcome.Severity.ExitCode()
}

// setupLogger stays silent unless verbose: schedulers capture stderr together
// with the plugin line.
func setupLogger(env string, verbose bool, out io.Writer) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}

	switch env {
	case envLocal:
		return setupPrettySlog(opts, out)
	case envDev, envProd:
		return slog.New(slog.NewJSONHandler(out, opts))
	default:
		return setupPrettySlog(opts, out)
	}
}

func setupPrettySlog(opts *slog.HandlerOptions, out io.Writer) *slog.Logger {
	prettyOpts := slogpretty.PrettyHandlerOptions{
		SlogOpts: opts,
	}

	handler := prettyOpts.NewPrettyHandler(out)

	return slog.New(handler)
}
