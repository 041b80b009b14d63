// Package cli wires configuration, storage and the tracker service into the
// habitask command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/harrisonrobin/habitask/pkg/config"
	"github.com/harrisonrobin/habitask/pkg/store"
	"github.com/harrisonrobin/habitask/pkg/tracker"
)

type app struct {
	verbose bool
	jsonOut bool
	logger  *zap.Logger

	// clock is replaced in tests.
	clock tracker.Clock
}

// NewRootCmd builds the full command tree.
func NewRootCmd() *cobra.Command {
	a := &app{clock: tracker.SystemClock{}}
	return a.rootCmd()
}

// Execute runs the command tree against os.Args. An interrupt cancels the
// running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := NewRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "habitask",
		Short: "Eisenhower matrix tasks and daily routines",
		Long: `habitask keeps one-off tasks in an importance/urgency matrix and tracks
daily routines with streaks and completion rates. Tasks with a due date and
recent routine check-ins can be published to a Google Calendar.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			zcfg := zap.NewProductionConfig()
			if a.verbose {
				zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			}
			logger, err := zcfg.Build()
			if err != nil {
				return fmt.Errorf("failed to initialize logger: %w", err)
			}
			a.logger = logger
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print results as JSON")

	root.AddCommand(
		a.taskCmd(),
		a.matrixCmd(),
		a.reassignCmd(),
		a.routineCmd(),
		a.statsCmd(),
		a.todayCmd(),
		a.syncCmd(),
		a.sweepCmd(),
		a.authCmd(),
		a.configCmd(),
		a.importCmd(),
	)
	return root
}

// session is everything a command needs to talk to the tracker.
type session struct {
	cfg   *config.Config
	store store.Store
	svc   *tracker.Service
}

func (s *session) Close() error {
	return s.store.Close()
}

func (a *app) open(ctx context.Context) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	st, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	a.log().Debug("store opened", zap.String("backend", cfg.Store))

	svc := tracker.New(st,
		tracker.WithClock(a.clock),
		tracker.WithLocation(loc),
		tracker.WithMatrixConfig(cfg.MatrixConfig()),
		tracker.WithLogger(a.log()))
	return &session{cfg: cfg, store: st, svc: svc}, nil
}

func (a *app) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *app) out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
