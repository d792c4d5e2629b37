package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-catalog/internal/domain"
	"course-catalog/internal/jsonstore"
)

const snapshotJSON = `[
    {"id": 81929, "name": "Cross-Platform Development (2025 Fall full term)", "course_code": "ASE-456"},
    {"id": 2, "name": "Compilers (2025 Fall)"},
    {"id": 3, "name": "Networks (2024 Spring)"},
    {"id": 4, "name": "Data Structures Spring 2019"},
    {"id": 5, "name": "Operating Systems (2025 fall)"}
]`

// sandbox isolates config lookup and returns a cache path holding snapshotJSON.
func sandbox(t *testing.T) (dir, cache string) {
	t.Helper()
	dir = t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))
	t.Setenv("HOME", dir)
	for _, k := range []string{"API_URL", "API_KEY", "COURSECAT_CANVAS_URL", "COURSECAT_CANVAS_TOKEN", "COURSECAT_LOGGING_CONSOLE"} {
		t.Setenv(k, "")
	}
	cache = filepath.Join(dir, "data", "courses.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(cache), 0o755))
	require.NoError(t, os.WriteFile(cache, []byte(snapshotJSON), 0o644))
	return dir, cache
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	_, out, err := runApp(t, args...)
	return out, err
}

func runApp(t *testing.T, args ...string) (*app, string, error) {
	t.Helper()
	a := &app{}
	root := newRootCmd(a)
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := execute(context.Background(), a, root)
	return a, out.String(), err
}

func TestParseCommand(t *testing.T) {
	sandbox(t)

	out, err := run(t, "parse", "--json", "Compilers (2025 Fall)", "Machine Learning Spring 2024")
	require.NoError(t, err)

	var got []map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "2025 Fall", got[0]["semester_key"])
	assert.Equal(t, "Compilers", got[0]["title"])
	assert.NotContains(t, got[1], "semester_key")
	assert.Equal(t, "Spring", got[1]["semester"])
}

func TestSemestersSummary(t *testing.T) {
	sandbox(t)

	out, err := run(t, "semesters")
	require.NoError(t, err)
	assert.Contains(t, out, "Total semesters found: 3")
	assert.Contains(t, out, "2025 Fall: 2 courses")
	assert.Contains(t, out, "2025 fall: 1 courses")
}

func TestSemestersLookupAndRegex(t *testing.T) {
	dir, _ := sandbox(t)
	saved := filepath.Join(dir, "fall.json")

	out, err := run(t, "semesters", "--year", "2025", "--semester", "Fall", "--out", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "Total courses: 2")

	recs, ok := jsonstore.New(nil).LoadCourses(saved)
	require.True(t, ok)
	assert.Equal(t, []domain.CourseID{"81929", "2"}, []domain.CourseID{recs[0].ID, recs[1].ID})

	out, err = run(t, "semesters", "--year", "2025", "--semester", "fall", "--regex")
	require.NoError(t, err)
	assert.Contains(t, out, "Total courses: 3")

	_, err = run(t, "semesters", "--semester", "Fall")
	assert.Error(t, err)
}

func TestSemestersByYear(t *testing.T) {
	dir, _ := sandbox(t)
	saved := filepath.Join(dir, "2025.json")

	out, err := run(t, "semesters", "--year", "2025", "--out", saved)
	require.NoError(t, err)
	assert.Contains(t, out, "2025 Fall Courses")
	assert.Contains(t, out, "2025 fall Courses")
	assert.NotContains(t, out, "2024 Spring")
	assert.Equal(t, 3, jsonstore.New(nil).Count(saved))

	out, err = run(t, "semesters", "--year", "1999")
	require.NoError(t, err)
	assert.Contains(t, out, "No semesters found for 1999")

	out, err = run(t, "semesters", "--unmatched")
	require.NoError(t, err)
	assert.Contains(t, out, "Total courses: 1")
	assert.Contains(t, out, "Data Structures Spring 2019")

	_, err = run(t, "semesters", "--year", "2025", "--regex")
	assert.ErrorContains(t, err, "--regex needs")
}

func TestSemestersWithoutSnapshot(t *testing.T) {
	dir, _ := sandbox(t)
	_, err := run(t, "semesters", "--cache", filepath.Join(dir, "missing.json"))
	assert.ErrorContains(t, err, "coursecat fetch")
}

func TestMappingCommand(t *testing.T) {
	dir, _ := sandbox(t)

	out, err := run(t, "mapping", "--save", "--year", "2019", "--semester", "Spring")
	require.NoError(t, err)
	assert.Contains(t, out, "Total courses: 1")
	assert.Contains(t, out, "Data Structures")

	assert.Equal(t, 5, jsonstore.New(nil).Count(filepath.Join(dir, "data", "course_mapping.json")))
}

func TestStatsJSON(t *testing.T) {
	sandbox(t)

	out, err := run(t, "stats", "--json")
	require.NoError(t, err)

	var st statsOutput
	require.NoError(t, json.Unmarshal([]byte(out), &st))
	assert.Equal(t, 5, st.Index.TotalCourses)
	assert.Equal(t, 4, st.Index.IndexedCourses)
	assert.Equal(t, map[string]int{"2019": 1, "2024": 1, "2025": 3}, st.Mapping.CoursesByYear)
}

func TestShowCommand(t *testing.T) {
	sandbox(t)

	out, err := run(t, "show", "81929", "--fields", "id,title,semester_key")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id": 81929, "title": "Cross-Platform Development", "semester_key": "2025 Fall"}`, out)

	_, err = run(t, "show", "404")
	assert.ErrorContains(t, err, "not found")
}

func TestCountAndDiff(t *testing.T) {
	dir, cache := sandbox(t)

	out, err := run(t, "count")
	require.NoError(t, err)
	assert.Equal(t, "5\n", out)

	old := filepath.Join(dir, "old.json")
	require.NoError(t, os.WriteFile(old, []byte(`[{"id": 2, "name": "Compilers (2024 Fall)"}, {"id": 99, "name": "Gone"}]`), 0o644))

	out, err = run(t, "diff", old, cache)
	require.NoError(t, err)
	assert.Contains(t, out, "added: 4")
	assert.Contains(t, out, "removed: 1")
	assert.Contains(t, out, "changed: 1")
	assert.Contains(t, out, "index rebuild needed: true")
	assert.Contains(t, out, `2: "Compilers (2024 Fall)" -> "Compilers (2025 Fall)"`)
	assert.Contains(t, out, "semester: 2024 Fall -> 2025 Fall")
}

func TestExportCommand(t *testing.T) {
	dir, _ := sandbox(t)
	exportDir := filepath.Join(dir, "out")

	out, err := run(t, "export", "--dir", exportDir)
	require.NoError(t, err)
	for _, name := range []string{"course_mapping.csv", "2024_Spring_courses.json", "2025_Fall_courses.json", "2025_fall_courses.json"} {
		assert.Contains(t, out, filepath.Join(exportDir, name))
		assert.FileExists(t, filepath.Join(exportDir, name))
	}

	csv, err := os.ReadFile(filepath.Join(exportDir, "course_mapping.csv"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), "course_id,course_name,course_code,title,year,semester\n"))
}

func TestExportSFTPNeedsSettings(t *testing.T) {
	sandbox(t)
	_, err := run(t, "export", "--sftp")
	assert.ErrorContains(t, err, "sftp.host")
}

func TestFetchCommand(t *testing.T) {
	_, cache := sandbox(t)

	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer tok" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if r.URL.Query().Get("page") == "" {
			w.Header().Set("Link", fmt.Sprintf(`<%s/api/v1/courses?page=2>; rel="next"`, srv.URL))
			_, _ = w.Write([]byte(`[{"id": 10, "name": "Compilers (2026 Spring)"}]`))
			return
		}
		_, _ = w.Write([]byte(`[{"id": 11, "name": "Networks (2026 Spring)"}]`))
	}))
	defer srv.Close()

	t.Setenv("API_URL", srv.URL)
	t.Setenv("API_KEY", "tok")

	out, err := run(t, "fetch")
	require.NoError(t, err)
	assert.Contains(t, out, "Total courses: 2")

	recs, ok := jsonstore.New(nil).LoadCourses(cache)
	require.True(t, ok)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.CourseID("11"), recs[1].ID)

	t.Setenv("API_KEY", "wrong")
	_, err = run(t, "fetch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache left untouched")
	assert.Equal(t, 2, jsonstore.New(nil).Count(cache))
}

func TestFetchNeedsCredentials(t *testing.T) {
	sandbox(t)
	_, err := run(t, "fetch")
	assert.ErrorContains(t, err, "canvas.url")
}

func TestConfigInit(t *testing.T) {
	dir, _ := sandbox(t)

	out, err := run(t, "config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, "wrote coursecat.toml")
	assert.FileExists(t, filepath.Join(dir, "coursecat.toml"))

	_, err = run(t, "config", "init")
	assert.Error(t, err)
	_, err = run(t, "config", "init", "--force")
	assert.NoError(t, err)

}

func TestConfigShowHidesSecrets(t *testing.T) {
	sandbox(t)
	t.Setenv("API_KEY", "tok-s3cr3t-value")
	t.Setenv("COURSECAT_SFTP_PASS", "pw-s3cr3t")

	out, err := run(t, "config", "show")
	require.NoError(t, err)

	var got struct {
		Canvas struct{ Token string }
		SFTP   struct{ Pass string }
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, secretPlaceholder, got.Canvas.Token)
	assert.Equal(t, secretPlaceholder, got.SFTP.Pass)
	assert.NotContains(t, out, "s3cr3t")

	t.Setenv("API_KEY", "")
	t.Setenv("COURSECAT_SFTP_PASS", "")
	out, err = run(t, "config", "show")
	require.NoError(t, err)
	assert.NotContains(t, out, secretPlaceholder)
}

func TestFetchFromSnapshots(t *testing.T) {
	dir, cache := sandbox(t)

	first := filepath.Join(dir, "term1.json")
	second := filepath.Join(dir, "term2.json")
	require.NoError(t, os.WriteFile(first, []byte(`[
    {"id": 10, "name": "  Compilers (2026 Spring)  "},
    {"id": null, "name": "Orphan (2026 Spring)"}
]`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`{
    "10": {"name": "Compilers renamed (2026 Spring)"},
    "11": {"name": "Networks (2026 Spring)"}
}`), 0o644))

	out, err := run(t, "fetch", "--from", first, "--from", second)
	require.NoError(t, err)
	assert.Contains(t, out, "Total courses: 2")

	recs, ok := jsonstore.New(nil).LoadCourses(cache)
	require.True(t, ok)
	require.Len(t, recs, 2)
	assert.Equal(t, domain.CourseRecord{ID: "10", Name: "Compilers (2026 Spring)"}, recs[0])
	assert.Equal(t, domain.CourseID("11"), recs[1].ID)

	_, err = run(t, "fetch", "--from", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cache left untouched")
	assert.Equal(t, 2, jsonstore.New(nil).Count(cache))
}

func TestLogFileClosedWhenCommandFails(t *testing.T) {
	dir, _ := sandbox(t)
	logPath := filepath.Join(dir, "logs", "coursecat.log")
	t.Setenv("COURSECAT_LOGGING_FILE", logPath)

	a, _, err := runApp(t, "-v", "--cache", filepath.Join(dir, "missing.json"), "show", "1")
	require.Error(t, err)
	assert.Nil(t, a.closeLog)

	before, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(before), "json file not found")

	// Writes after close no longer reach the file.
	a.log.Info("after close")
	after, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}
