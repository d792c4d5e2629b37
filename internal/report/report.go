// Package report renders human-readable summaries of courses, semesters and
// mappings for the terminal.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"course-catalog/internal/domain"
	"course-catalog/internal/mappers"
	"course-catalog/internal/semester"
)

// Printer writes styled reports. Colors are dropped automatically when w is
// not a terminal.
type Printer struct {
	w io.Writer

	title lipgloss.Style
	label lipgloss.Style
	value lipgloss.Style
	muted lipgloss.Style
}

func New(w io.Writer) *Printer {
	r := lipgloss.NewRenderer(w)
	return &Printer{
		w:     w,
		title: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		label: r.NewStyle().Foreground(lipgloss.Color("8")),
		value: r.NewStyle().Foreground(lipgloss.Color("10")),
		muted: r.NewStyle().Faint(true),
	}
}

func (p *Printer) heading(s string) {
	fmt.Fprintf(p.w, "\n%s\n", p.title.Render("=== "+s+" ==="))
}

func (p *Printer) more(n int, what string) {
	if n > 0 {
		fmt.Fprintf(p.w, "  %s\n", p.muted.Render(fmt.Sprintf("... and %d more %s", n, what)))
	}
}

func orNA(s string) string {
	if s == "" {
		return mappers.NoCode
	}
	return s
}

// CourseSummary lists the first limit courses with id and code.
func (p *Printer) CourseSummary(title string, courses []domain.CourseRecord, limit int) {
	p.heading(title)
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("Total courses:"), len(courses))
	if len(courses) == 0 {
		return
	}

	shown := courses
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	fmt.Fprintln(p.w, "\nSample courses:")
	for i, c := range shown {
		name := c.Name
		if name == "" {
			name = "No name"
		}
		fmt.Fprintf(p.w, "  %d. %s\n", i+1, p.value.Render(name))
		fmt.Fprintf(p.w, "     %s %s\n", p.label.Render("ID:"), c.ID)
		fmt.Fprintf(p.w, "     %s %s\n", p.label.Render("Code:"), orNA(c.CourseCode))
	}
	p.more(len(courses)-len(shown), "courses")
}

// SemesterSummary lists populated semester keys in sorted order with their
// course counts.
func (p *Printer) SemesterSummary(idx *semester.Index, limit int) {
	keys := idx.Keys()
	p.heading("Available Semesters")
	fmt.Fprintf(p.w, "%s %d\n", p.label.Render("Total semesters found:"), len(keys))

	shown := keys
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, k := range shown {
		fmt.Fprintf(p.w, "  %s: %d courses\n", p.value.Render(k.String()), idx.Count(k))
	}
	p.more(len(keys)-len(shown), "semesters")
}

// MappingTable prints id, code and a truncated title for each mapped course.
func (p *Printer) MappingTable(m *mappers.Mapping, limit int) {
	p.heading("Course Mapping")
	header := fmt.Sprintf("%-10s | %-20s | %-6s | %-8s | %s", "ID", "Course Code", "Year", "Semester", "Title")
	fmt.Fprintln(p.w, p.label.Render(header))
	fmt.Fprintln(p.w, strings.Repeat("-", 80))

	ids := m.IDs()
	shown := ids
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}
	for _, id := range shown {
		cm, _ := m.FindByID(id)
		fmt.Fprintf(p.w, "%-10s | %-20s | %-6s | %-8s | %s\n", id, cm.CourseCode, cm.Year, cm.Semester, truncate(cm.Title, 50))
	}
	p.more(len(ids)-len(shown), "courses")
	fmt.Fprintf(p.w, "\n%s %d\n", p.label.Render("Total courses:"), len(ids))
}

// IndexStats prints semester index statistics.
func (p *Printer) IndexStats(st semester.Stats) {
	p.heading("Semester Index")
	p.kv("Total courses", fmt.Sprint(st.TotalCourses))
	p.kv("Indexed courses", fmt.Sprint(st.IndexedCourses))
	p.kv("Semester keys", fmt.Sprint(st.Semesters))
	p.kv("Years", strings.Join(st.Years, ", "))
	p.kv("Semesters", strings.Join(st.SemesterNames, ", "))
	for _, y := range st.Years {
		p.kv("  "+y, fmt.Sprint(st.CoursesByYear[y]))
	}
	for _, s := range st.SemesterNames {
		p.kv("  "+s, fmt.Sprint(st.CoursesBySemester[s]))
	}
}

// MappingStats prints statistics over parsed titles.
func (p *Printer) MappingStats(st mappers.Statistics) {
	p.heading("Dataset Statistics")
	p.kv("Total courses", fmt.Sprint(st.TotalCourses))
	p.kv("Years available", strings.Join(st.Years, ", "))
	p.kv("Semesters available", strings.Join(st.Semesters, ", "))
	for _, y := range st.Years {
		p.kv("  "+y, fmt.Sprint(st.CoursesByYear[y]))
	}
	for _, s := range st.Semesters {
		p.kv("  "+s, fmt.Sprint(st.CoursesBySemester[s]))
	}
}

// Parsed prints both parser results for one course name.
func (p *Printer) Parsed(name string, key domain.SemesterKey, matched bool, pt domain.ParsedTitle) {
	fmt.Fprintln(p.w, p.title.Render(name))
	if matched {
		p.kv("  semester key", key.String())
	} else {
		p.kv("  semester key", p.muted.Render("(none)"))
	}
	p.kv("  title", pt.Title)
	p.kv("  year", pt.Year)
	p.kv("  semester", pt.Semester)
}

func (p *Printer) kv(k, v string) {
	fmt.Fprintf(p.w, "%s %s\n", p.label.Render(k+":"), v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
