package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"course-catalog/internal/coursename"
	"course-catalog/internal/devutil"
	"course-catalog/internal/domain"
	"course-catalog/internal/mappers"
	"course-catalog/internal/report"
	"course-catalog/internal/semester"
	"course-catalog/internal/snapshot"
)

type parseResult struct {
	Name        string `json:"name"`
	SemesterKey string `json:"semester_key,omitempty"`
	domain.ParsedTitle
}

func newParseCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "parse <course name>...",
		Short: "Show how course names are parsed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			results := make([]parseResult, 0, len(args))
			p := report.New(out)
			for _, name := range args {
				key, ok := coursename.SemesterKeyOf(name)
				pt := coursename.ParseTitle(name)
				if asJSON {
					results = append(results, parseResult{Name: name, SemesterKey: key.String(), ParsedTitle: pt})
					continue
				}
				p.Parsed(name, key, ok, pt)
			}
			if asJSON {
				return writeJSON(out, results)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func newSemestersCmd(a *app) *cobra.Command {
	var year, sem, outPath string
	var regex, unmatched bool
	var limit int

	cmd := &cobra.Command{
		Use:   "semesters",
		Short: "List semesters, or the courses of one semester",
		Long: "Without flags, lists every semester found in the cached course names.\n" +
			"With --year, lists that year's semesters; add --semester for a single one.\n" +
			"The lookup matches the semester's spelling exactly; --regex rescans all names\n" +
			"and ignores case. --unmatched lists courses whose names carry no semester.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if sem != "" && year == "" {
				return errors.New("--semester needs --year")
			}
			if regex && sem == "" {
				return errors.New("--regex needs --year and --semester")
			}
			idx, err := a.loadIndex()
			if err != nil {
				return err
			}
			p := report.New(cmd.OutOrStdout())

			var courses []domain.CourseRecord
			switch {
			case unmatched:
				courses = idx.Unmatched()
				p.CourseSummary("Courses Without a Semester", courses, limit)
			case year == "":
				p.SemesterSummary(idx, limit)
				return nil
			case sem == "":
				keys := idx.YearKeys(year)
				if len(keys) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "No semesters found for %s\n", year)
				}
				courses = []domain.CourseRecord{}
				for _, k := range keys {
					y, s := k.Split()
					inKey := idx.Lookup(y, s)
					p.CourseSummary(k.String()+" Courses", inKey, limit)
					courses = append(courses, inKey...)
				}
			case regex:
				courses = idx.FilterRegex(year, sem)
				p.CourseSummary(fmt.Sprintf("%s %s Courses", year, sem), courses, limit)
			default:
				courses = idx.Lookup(year, sem)
				p.CourseSummary(fmt.Sprintf("%s %s Courses", year, sem), courses, limit)
			}

			if outPath != "" {
				return a.store.Save(outPath, courses)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&year, "year", "", "four-digit year, e.g. 2025")
	f.StringVar(&sem, "semester", "", "semester word as written in course names, e.g. Fall")
	f.BoolVar(&regex, "regex", false, "case-insensitive rescan instead of the exact index lookup")
	f.StringVar(&outPath, "out", "", "also save the selected courses as JSON")
	f.BoolVar(&unmatched, "unmatched", false, "list courses whose names carry no semester")
	f.IntVar(&limit, "limit", 10, "rows to show")
	return cmd
}

func newMappingCmd(a *app) *cobra.Command {
	var year, sem string
	var save bool
	var limit int

	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Build the course id → title/year/semester mapping",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.loadSnapshot(a.cfg.Cache.Path)
			if err != nil {
				return err
			}
			m := mappers.BuildMapping(recs)
			if save {
				if err := a.store.Save(a.cfg.Cache.MappingPath, m); err != nil {
					return err
				}
			}
			if year != "" || sem != "" {
				m = m.FindByYearSemester(year, sem)
			}
			report.New(cmd.OutOrStdout()).MappingTable(m, limit)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&year, "year", "", "only courses whose parsed year is exactly this")
	f.StringVar(&sem, "semester", "", "only courses whose parsed semester is exactly this")
	f.BoolVar(&save, "save", false, "write the full mapping to cache.mapping_path")
	f.IntVar(&limit, "limit", 0, "rows to show (0 = all)")
	return cmd
}

type statsOutput struct {
	Index   semester.Stats     `json:"semester_index"`
	Mapping mappers.Statistics `json:"mapping"`
}

func newStatsCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Course counts per year and semester",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			recs, err := a.loadSnapshot(a.cfg.Cache.Path)
			if err != nil {
				return err
			}
			st := statsOutput{
				Index:   semester.Build(recs).Stats(),
				Mapping: mappers.BuildMapping(recs).Statistics(),
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			p := report.New(cmd.OutOrStdout())
			p.IndexStats(st.Index)
			p.MappingStats(st.Mapping)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

// courseView is what `show` prints: the raw record plus its parsed title.
type courseView struct {
	domain.CourseRecord
	domain.ParsedTitle
	SemesterKey string `json:"semester_key,omitempty"`
}

func newShowCmd(a *app) *cobra.Command {
	var fields []string

	cmd := &cobra.Command{
		Use:   "show <course id>",
		Short: "Print one cached course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.loadSnapshot(a.cfg.Cache.Path)
			if err != nil {
				return err
			}
			id := domain.CourseID(args[0])
			for _, rec := range recs {
				if rec.ID != id {
					continue
				}
				key, _ := coursename.SemesterKeyOf(rec.Name)
				view := courseView{CourseRecord: rec, ParsedTitle: coursename.ParseTitle(rec.Name), SemesterKey: key.String()}
				if len(fields) == 0 {
					return writeJSON(cmd.OutOrStdout(), view)
				}
				picked, missing := devutil.Pick(view, fields...)
				if len(missing) > 0 {
					a.log.Warn("unknown fields", "fields", missing, "available", devutil.Fields(view))
				}
				return writeJSON(cmd.OutOrStdout(), picked)
			}
			return fmt.Errorf("course %s not found in %s", id, a.cfg.Cache.Path)
		},
	}
	cmd.Flags().StringSliceVar(&fields, "fields", nil, "only print these JSON fields")
	return cmd
}

func newCountCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "count [file]",
		Short: "Count top-level entries of a JSON file (default: the cache)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.cfg.Cache.Path
			if len(args) == 1 {
				path = args[0]
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.store.Count(path))
			return nil
		},
	}
}

func newDiffCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "diff <old snapshot> [new snapshot]",
		Short: "Compare two course snapshots (new defaults to the cache)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			newPath := a.cfg.Cache.Path
			if len(args) == 2 {
				newPath = args[1]
			}
			prev, err := a.loadSnapshot(args[0])
			if err != nil {
				return err
			}
			cur, err := a.loadSnapshot(newPath)
			if err != nil {
				return err
			}

			d := snapshot.Diff(prev, cur)
			out := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(out, d)
			}
			fmt.Fprintf(out, "added: %d\nremoved: %d\nchanged: %d\nindex rebuild needed: %t\n",
				len(d.Added), len(d.Removed), len(d.Changed), d.NeedsRebuild())
			for _, c := range d.Changed {
				if !c.Renamed() {
					continue
				}
				fmt.Fprintf(out, "  %s: %q -> %q\n", c.ID, c.Old.Name, c.New.Name)
				if c.SemesterMoved() {
					fmt.Fprintf(out, "     semester: %s -> %s\n", semesterOf(c.Old), semesterOf(c.New))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	return cmd
}

func semesterOf(rec domain.CourseRecord) string {
	if key, ok := coursename.SemesterKeyOf(rec.Name); ok {
		return key.String()
	}
	return "none"
}
