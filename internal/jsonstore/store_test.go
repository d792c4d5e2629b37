package jsonstore

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-catalog/internal/domain"
)

func TestSaveAndLoadCourses(t *testing.T) {
	s := New(nil)
	path := filepath.Join(t.TempDir(), "nested", "courses.json")

	in := []domain.CourseRecord{
		{ID: "81929", Name: "Cross-Platform Development (2025 Fall full term)", CourseCode: "ASE-456-001"},
		{ID: "sis-7", Name: "Café & Crème <intro>"},
	}
	require.NoError(t, s.Save(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n    {")
	assert.Contains(t, string(raw), `"id": 81929`)
	assert.Contains(t, string(raw), "Café & Crème <intro>")

	out, ok := s.LoadCourses(path)
	require.True(t, ok)
	assert.Equal(t, in, out)
}

func TestEmptyListRoundTrip(t *testing.T) {
	s := New(nil)
	path := filepath.Join(t.TempDir(), "empty.json")

	require.NoError(t, s.Save(path, []domain.CourseRecord{}))

	out, ok := s.LoadCourses(path)
	require.True(t, ok)
	assert.NotNil(t, out)
	assert.Empty(t, out)
	assert.Equal(t, 0, s.Count(path))
}

func TestLoadMissingFile(t *testing.T) {
	s := New(nil)
	path := filepath.Join(t.TempDir(), "missing.json")

	var v []domain.CourseRecord
	assert.False(t, s.Load(path, &v))

	out, ok := s.LoadCourses(path)
	assert.False(t, ok)
	assert.Nil(t, out)
	assert.Equal(t, 0, s.Count(path))
}

func TestLoadMalformedFile(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()

	for name, body := range map[string]string{
		"broken.json": `[{"id": 1, "name": `,
		"empty.json":  "",
		"scalar.json": `42`,
		"null.json":   `null`,
	} {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

		_, ok := s.LoadCourses(path)
		assert.False(t, ok, name)
	}

	path := filepath.Join(dir, "broken.json")
	var v any
	assert.False(t, s.Load(path, &v))
	assert.Equal(t, 0, s.Count(path))
}

func TestLoadCoursesKeyedObject(t *testing.T) {
	s := New(nil)
	path := filepath.Join(t.TempDir(), "by_id.json")
	body := `{
  "20": {"name": "Networks (2024 Spring)"},
  "10": {"id": 10, "name": "Compilers (2025 Fall)", "course_code": "CS-410"}
}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	out, ok := s.LoadCourses(path)
	require.True(t, ok)
	require.Len(t, out, 2)
	assert.Equal(t, domain.CourseID("10"), out[0].ID)
	assert.Equal(t, "CS-410", out[0].CourseCode)
	assert.Equal(t, domain.CourseID("20"), out[1].ID)
	assert.Equal(t, 2, s.Count(path))
}

func TestCompressedSnapshot(t *testing.T) {
	s := New(nil)
	path := filepath.Join(t.TempDir(), "courses.json.br")

	in := make([]domain.CourseRecord, 0, 50)
	for i := 0; i < 50; i++ {
		in = append(in, domain.CourseRecord{ID: domain.CourseID(strings.Repeat("1", i%5+1)), Name: "Repeated Course Name (2025 Fall)"})
	}
	require.NoError(t, s.Save(path, in))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	plain, err := encode(in)
	require.NoError(t, err)
	assert.Less(t, len(raw), len(plain)/4)

	out, ok := s.LoadCourses(path)
	require.True(t, ok)
	assert.Equal(t, in, out)
	assert.Equal(t, 50, s.Count(path))
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "out.json")

	require.NoError(t, s.Save(path, map[string]int{"a": 1}))
	require.NoError(t, s.Save(path, map[string]int{"a": 2}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "out.json", entries[0].Name())

	var got map[string]int
	require.True(t, s.Load(path, &got))
	assert.Equal(t, 2, got["a"])
}

func TestWriteFileIsAtomicAndVerbatim(t *testing.T) {
	s := New(nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "exports", "course_mapping.csv")

	require.NoError(t, s.WriteFile(path, []byte("course_id,course_name\n1,old\n")))
	require.NoError(t, s.WriteFile(path, []byte("course_id,course_name\n1,new\n")))

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "course_id,course_name\n1,new\n", string(got))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "course_mapping.csv", entries[0].Name())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestWriteFileIntoMissingParentFails(t *testing.T) {
	s := New(nil)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	err := s.WriteFile(filepath.Join(blocker, "out.csv"), []byte("x"))
	assert.ErrorContains(t, err, "jsonstore: mkdir")
}
