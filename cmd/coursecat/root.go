package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"course-catalog/internal/concurrency"
	"course-catalog/internal/config"
	"course-catalog/internal/domain"
	"course-catalog/internal/jsonstore"
	"course-catalog/internal/logging"
	"course-catalog/internal/semester"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	cfgFile   string
	envFile   string
	cachePath string
	workers   int
	verbose   bool

	cfg      config.Config
	log      *slog.Logger
	closeLog func() error
	store    *jsonstore.Store
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "coursecat",
		Short:         "Fetch, index and export Canvas course catalogs by semester",
		Long:          "coursecat caches the Canvas course list, groups courses by the semester found in their names and exports per-semester views.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "config file (default ./"+config.FileName+")")
	pf.StringVar(&a.envFile, "env-file", "", "dotenv file (default ./.env when present)")
	pf.StringVar(&a.cachePath, "cache", "", "course snapshot path (overrides cache.path)")
	pf.IntVar(&a.workers, "workers", 0, "parallel workers (overrides workers)")
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		newFetchCmd(a),
		newParseCmd(a),
		newSemestersCmd(a),
		newMappingCmd(a),
		newStatsCmd(a),
		newShowCmd(a),
		newCountCmd(a),
		newDiffCmd(a),
		newExportCmd(a),
		newWatchCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{ConfigFile: a.cfgFile, EnvFile: a.envFile})
	if err != nil {
		return err
	}
	if a.cachePath != "" {
		cfg.Cache.Path = a.cachePath
	}
	if a.workers > 0 {
		cfg.Workers = a.workers
	}
	if a.verbose {
		cfg.Logging.Level = "debug"
	}

	logger, closeFn, err := logging.New(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger
	a.closeLog = closeFn
	a.store = jsonstore.New(logger)
	if cfg.File != "" {
		logger.Debug("config loaded", "file", cfg.File)
	}
	return nil
}

// close releases the log file. cobra skips post-run hooks when a command
// fails, so callers invoke it once Execute returns.
func (a *app) close() error {
	if a.closeLog == nil {
		return nil
	}
	err := a.closeLog()
	a.closeLog = nil
	return err
}

// execute runs the CLI with args and always releases the log file.
func execute(ctx context.Context, a *app, root *cobra.Command) error {
	err := root.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) pool() concurrency.ParallelOptions {
	return concurrency.ParallelOptions{MaxWorkers: a.cfg.Workers}
}

// loadSnapshot reads the cached course list.
func (a *app) loadSnapshot(path string) ([]domain.CourseRecord, error) {
	recs, ok := a.store.LoadCourses(path)
	if !ok {
		return nil, fmt.Errorf("no usable course snapshot at %s (run `coursecat fetch` first)", path)
	}
	return recs, nil
}

func (a *app) loadIndex() (*semester.Index, error) {
	recs, err := a.loadSnapshot(a.cfg.Cache.Path)
	if err != nil {
		return nil, err
	}
	idx := semester.Build(recs)
	a.log.Debug("index built", "courses", idx.Len(), "indexed", idx.Indexed(), "keys", len(idx.Keys()))
	return idx, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(v)
}
