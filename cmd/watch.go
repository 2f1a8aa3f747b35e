package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/agentic-research/tagsync/internal/control"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-import the tag file whenever it changes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer func() { _ = s.Close() }()

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		return watch(ctx, s, watchDebounce)
	},
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period after the last change before importing")
	rootCmd.AddCommand(watchCmd)
}

// watch watches the directory holding the tag file, since editors often
// replace files rather than write them in place.
func watch(ctx context.Context, s *session, debounce time.Duration) error {
	path := s.runner.CSVPath()
	dir, base := filepath.Dir(path), filepath.Base(path)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = w.Close() }()
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	s.logger.Info("watching tag file", slog.String("path", path))

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("watcher error", slog.Any("err", err))

		case <-timer.C:
			sum, err := s.runner.Import(ctx)
			switch {
			case errors.Is(err, control.ErrBusy):
				s.logger.Warn("import skipped", slog.Any("err", err))
			case err != nil:
				s.logger.Error("import failed", slog.Any("err", err))
			default:
				s.logger.Info("import finished", slog.Int("rows", sum.Rows), slog.Int("failed", sum.Failed()))
			}
		}
	}
}
