package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"market-pulse/internal/app"
	"market-pulse/internal/config"
	"market-pulse/internal/observability/logging"
	pkgcfg "market-pulse/pkg/config"
)

// builder assembles the application for one command.
type builder func(ctx context.Context, logger *slog.Logger, loc *time.Location) (*app.App, error)

// defaultBuilder reads the environment the same way the worker does.
// Config fallback metrics are not registered: the CLI exits before any
// scrape could read them.
func defaultBuilder(ctx context.Context, logger *slog.Logger, loc *time.Location) (*app.App, error) {
	cfg, err := config.LoadAppConfig(logger, nil)
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, cfg, loc)
}

// cli carries the state shared by the subcommands.
type cli struct {
	out   io.Writer
	build builder

	jsonOut  bool
	logLevel string
	timezone string
	timeout  time.Duration

	loc    *time.Location
	logger *slog.Logger
	app    *app.App
}

// skipBuild marks commands that do not need the pipeline.
const skipBuild = "skip-build"

func newRootCmd(out io.Writer, build builder) *cobra.Command {
	c := &cli{out: out, build: build}

	root := &cobra.Command{
		Use:   "pulse",
		Short: "Indian market news sentiment pipeline",
		Long: `pulse fetches Indian financial news, scores its sentiment and reports
on the cached results. It reads the same environment variables as the worker.`,
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	root.SetOut(out)

	flags := root.PersistentFlags()
	flags.BoolVar(&c.jsonOut, "json", false, "print machine-readable JSON")
	flags.StringVar(&c.logLevel, "log-level", "", "log level override (debug, info, warn, error)")
	flags.StringVar(&c.timezone, "timezone", pkgcfg.GetEnvString("WORKER_TIMEZONE", "Asia/Kolkata"), "IANA timezone that defines \"today\"")
	flags.DurationVar(&c.timeout, "timeout", 30*time.Minute, "upper bound for the command")

	root.AddCommand(
		c.onceCmd(),
		c.reportCmd(),
		c.scoreCmd(),
		c.topCmd(),
		c.selfTestCmd(),
		versionCmd(),
	)
	return root
}

func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	if c.logLevel != "" {
		c.logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logging.ParseLevel(c.logLevel)}))
	} else {
		c.logger = logging.NewTextLogger()
	}
	slog.SetDefault(c.logger)

	if cmd.Annotations[skipBuild] != "" {
		return nil
	}

	loc, err := time.LoadLocation(c.timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.timezone, err)
	}
	c.loc = loc

	a, err := c.build(cmd.Context(), c.logger, loc)
	if err != nil {
		return err
	}
	c.app = a
	return nil
}

func (c *cli) teardown(*cobra.Command, []string) error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close()
	c.app = nil
	return err
}

// context bounds a command by --timeout.
func (c *cli) context(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithTimeout(ctx, c.timeout)
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipBuild: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "pulse %s (commit %s)\n", version, commit)
		},
	}
}
