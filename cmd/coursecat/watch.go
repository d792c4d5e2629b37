package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"course-catalog/internal/report"
	"course-catalog/internal/watch"
)

func newWatchCmd(a *app) *cobra.Command {
	var debounce time.Duration
	var limit int

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Rebuild the semester index whenever the cache file changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := report.New(cmd.OutOrStdout())
			rebuild := func(context.Context) error {
				idx, err := a.loadIndex()
				if err != nil {
					return err
				}
				p.SemesterSummary(idx, limit)
				return nil
			}

			if err := rebuild(cmd.Context()); err != nil {
				a.log.Warn("initial build skipped", "err", err)
			}

			w := &watch.Watcher{
				Path:     a.cfg.Cache.Path,
				Debounce: debounce,
				OnChange: rebuild,
				Log:      a.log,
			}
			return w.Run(cmd.Context())
		},
	}

	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before rebuilding")
	cmd.Flags().IntVar(&limit, "limit", 10, "semesters to show")
	return cmd
}
