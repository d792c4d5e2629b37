package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"course-catalog/internal/providers"
	"course-catalog/internal/providers/canvas"
	"course-catalog/internal/providers/jsonfile"
	"course-catalog/internal/report"
	"course-catalog/internal/snapshot"
)

func newFetchCmd(a *app) *cobra.Command {
	var maxPages int
	var limit int
	var from []string

	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Download the course list from Canvas into the cache",
		Long: "fetch downloads the course list from Canvas and replaces the cache.\n" +
			"With --from the courses are read from local snapshots instead (merged in order, first id wins).",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var provs []providers.CatalogProvider
			if len(from) > 0 {
				for _, path := range from {
					provs = append(provs, jsonfile.Provider{Store: a.store, Path: path, Log: a.log})
				}
			} else {
				if err := a.cfg.ValidateCanvas(); err != nil {
					return err
				}
				cc := a.cfg.Canvas
				if cmd.Flags().Changed("max-pages") {
					cc.MaxPages = maxPages
				}
				client := canvas.New(cc.URL, cc.Token, time.Duration(cc.TimeoutSeconds)*time.Second, a.log)
				provs = append(provs, canvas.Provider{C: client, Opts: canvas.ListOptions{
					PerPage:  cc.PerPage,
					MaxPages: cc.MaxPages,
					Include:  cc.Include,
					States:   cc.States,
				}})
			}

			recs, err := providers.FetchAll(cmd.Context(), provs, a.pool(), a.log)
			if err != nil {
				// A partial list would drop courses from the cache.
				return fmt.Errorf("fetch failed after %d courses, cache left untouched: %w", len(recs), err)
			}

			path := a.cfg.Cache.Path
			if prev, ok := a.store.LoadCourses(path); ok {
				d := snapshot.Diff(prev, recs)
				if d.Empty() {
					a.log.Info("snapshot unchanged", "courses", len(recs))
				} else {
					a.log.Info("snapshot diff", "added", len(d.Added), "removed", len(d.Removed), "changed", len(d.Changed), "rebuild", d.NeedsRebuild())
				}
			}
			if err := a.store.Save(path, recs); err != nil {
				return err
			}

			report.New(cmd.OutOrStdout()).CourseSummary("Fetched Courses", recs, limit)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = all)")
	cmd.Flags().IntVar(&limit, "limit", 10, "courses to show in the summary")
	cmd.Flags().StringSliceVar(&from, "from", nil, "read courses from these snapshot files instead of Canvas")
	return cmd
}
