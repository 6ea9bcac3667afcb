package cli

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

const defaultDebounce = time.Second

func (r *root) newWatchCommand() *cobra.Command {
	flags := &batchFlags{}
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run batch whenever resumes in a directory change",
		Long: `watch runs batch once, then again each time supported files in --dir are
created, modified, renamed or removed. Bursts of changes are coalesced.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			services, closeFn, err := r.services()
			if err != nil {
				return err
			}
			defer closeFn()

			watcher, err := fsnotify.NewWatcher()
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			defer watcher.Close()
			if err := watcher.Add(flags.dir); err != nil {
				return fmt.Errorf("watch %s: %w", flags.dir, err)
			}

			req := r.request(flags)
			run := func() {
				if err := runBatch(cmd, services.Ingestor, req, cmd.OutOrStdout()); err != nil {
					r.logger.Error("watch_batch_failed", "dir", flags.dir, "error", err)
				}
			}
			relevant := func(name string) bool {
				base := filepath.Base(name)
				if strings.HasPrefix(base, ".") {
					return false
				}
				return services.Supported == nil || services.Supported(base)
			}

			run()
			printf(cmd.OutOrStdout(), "watching %s for changes\n", flags.dir)
			debounceLoop(cmd.Context(), watcher.Events, watcher.Errors, debounce, relevant, run, r.logger)
			return nil
		},
	}
	cmd.Flags().StringVar(&flags.dir, "dir", "", "directory containing resumes")
	cmd.Flags().StringVar(&flags.out, "out", "", "export path (default resume_data.<format> in the working directory)")
	cmd.Flags().StringVar(&flags.format, "format", "", "export format: xlsx, csv or json (default from config)")
	cmd.Flags().StringSliceVar(&flags.fields, "fields", nil, "export columns, comma separated (default all)")
	cmd.Flags().DurationVar(&debounce, "debounce", defaultDebounce, "quiet period before re-running")
	_ = cmd.MarkFlagRequired("dir")
	return cmd
}

// debounceLoop calls run once events for relevant files stop arriving for
// delay. It returns when ctx is done or either channel is closed.
func debounceLoop(
	ctx context.Context,
	events <-chan fsnotify.Event,
	errs <-chan error,
	delay time.Duration,
	relevant func(name string) bool,
	run func(),
	logger *slog.Logger,
) {
	const watched = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	timer := time.NewTimer(delay)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event.Op&watched == 0 || !relevant(event.Name) {
				continue
			}
			logger.Debug("watch_event", "file", event.Name, "op", event.Op.String())
			timer.Reset(delay)
		case err, ok := <-errs:
			if !ok {
				return
			}
			logger.Warn("watch_error", "error", err)
		case <-timer.C:
			run()
		}
	}
}
