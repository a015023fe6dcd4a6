package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/Dicklesworthstone/rktop/internal/config"
	"github.com/Dicklesworthstone/rktop/internal/logger"
	"github.com/Dicklesworthstone/rktop/internal/model"
	"github.com/Dicklesworthstone/rktop/internal/sampler"
	"github.com/Dicklesworthstone/rktop/internal/source"
	"github.com/Dicklesworthstone/rktop/internal/ui"
)

// Swapped out in tests.
var (
	newSet     = source.NewSet
	isTerminal = func() bool { return term.IsTerminal(int(os.Stdout.Fd())) }
)

var errNoTerminal = errors.New("stdout is not a terminal; use --json or --json-stream")

func run(ctx context.Context, cfg config.Config, out io.Writer) error {
	log, closeLog, err := logger.Open(cfg.LogFile, cfg.Debug)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	smp := sampler.New(cfg, newSet(cfg), log)
	log.Info("rktop starting", "version", version, "interval", cfg.Interval, "service", cfg.Service)

	switch {
	case cfg.JSON:
		return writeSnapshot(ctx, smp, out)
	case cfg.JSONStream:
		return streamSnapshots(ctx, smp, out)
	}
	if !isTerminal() {
		return errNoTerminal
	}
	return runDashboard(ctx, smp, log)
}

// writeSnapshot samples twice, one interval apart, so CPU load and network
// rates are real, and prints the second snapshot.
func writeSnapshot(ctx context.Context, smp *sampler.Sampler, out io.Writer) error {
	smp.Sample(ctx)
	t := time.NewTimer(smp.Interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(smp.Sample(ctx)); err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	return nil
}

// streamSnapshots writes one JSON line per tick until ctx is done.
func streamSnapshots(ctx context.Context, smp *sampler.Sampler, out io.Writer) error {
	enc := json.NewEncoder(out)
	for snap := range smp.Stream(ctx) {
		if err := enc.Encode(snap); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
	}
	return nil
}

// runDashboard runs the scheduler and the Bubble Tea program side by side.
// Quitting the program cancels sampling.
func runDashboard(ctx context.Context, smp *sampler.Sampler, log *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	snaps := make(chan model.Snapshot)
	sched := sampler.NewScheduler(smp, smp.Interval, log)
	g.Go(func() error {
		defer close(snaps)
		return sched.Run(gctx, func(s model.Snapshot) {
			select {
			case snaps <- s:
			case <-gctx.Done():
			}
		})
	})
	g.Go(func() error {
		defer cancel()
		return ui.Run(gctx, snaps)
	})

	err := g.Wait()
	log.Info("rktop stopped", "state", sched.State(), "error", err)
	return err
}
