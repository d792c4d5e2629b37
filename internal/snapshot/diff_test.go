package snapshot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-catalog/internal/domain"
)

func TestDiff(t *testing.T) {
	old := []domain.CourseRecord{
		{ID: "1", Name: "Compilers (2025 Fall)", CourseCode: "CS-410"},
		{ID: "2", Name: "Networks (2024 Spring)", WorkflowState: "available"},
		{ID: "3", Name: "Databases (2024 Spring)"},
		{ID: "", Name: "No id"},
	}
	cur := []domain.CourseRecord{
		{ID: "4", Name: "Algorithms (2018 Fall)"},
		{ID: "1", Name: "Compilers (2025 Fall)", CourseCode: " cs-410 "},
		{ID: "2", Name: "Networks (2024 Spring)", WorkflowState: "completed"},
		{ID: "3", Name: "Databases (2025 Spring)"},
		{ID: "4", Name: "duplicate ignored"},
	}

	res := Diff(old, cur)

	require.Len(t, res.Added, 1)
	assert.Equal(t, domain.CourseID("4"), res.Added[0].ID)
	assert.Empty(t, res.Removed)

	require.Len(t, res.Changed, 2)
	assert.Equal(t, domain.CourseID("2"), res.Changed[0].ID)
	assert.Equal(t, []string{"workflow_state"}, res.Changed[0].Fields)
	assert.False(t, res.Changed[0].Renamed())

	assert.Equal(t, domain.CourseID("3"), res.Changed[1].ID)
	assert.Equal(t, []string{"name"}, res.Changed[1].Fields)
	assert.True(t, res.Changed[1].Renamed())
	assert.True(t, res.Changed[1].SemesterMoved())

	assert.False(t, res.Empty())
	assert.True(t, res.NeedsRebuild())
}

func TestDiffRemoved(t *testing.T) {
	old := []domain.CourseRecord{{ID: "1", Name: "A"}, {ID: "2", Name: "B"}}
	res := Diff(old, old[:1])

	assert.Equal(t, []domain.CourseRecord{{ID: "2", Name: "B"}}, res.Removed)
	assert.True(t, res.NeedsRebuild())
}

func TestDiffIdentical(t *testing.T) {
	recs := []domain.CourseRecord{{ID: "1", Name: "Compilers (2025 Fall)"}}
	res := Diff(recs, recs)

	assert.True(t, res.Empty())
	assert.False(t, res.NeedsRebuild())
	assert.NotNil(t, res.Added)
	assert.NotNil(t, res.Changed)
}

func TestMetadataChangesDoNotRebuild(t *testing.T) {
	old := []domain.CourseRecord{{ID: "1", Name: "Compilers (2025 Fall)", WorkflowState: "available"}}
	cur := []domain.CourseRecord{{ID: "1", Name: "Compilers (2025 Fall)", WorkflowState: "completed", EndAt: "2025-12-20T00:00:00Z"}}

	res := Diff(old, cur)
	require.Len(t, res.Changed, 1)
	assert.Equal(t, []string{"workflow_state", "dates"}, res.Changed[0].Fields)
	assert.False(t, res.NeedsRebuild())
}

func TestSemesterMovedCaseOnly(t *testing.T) {
	c := Change{
		Old: domain.CourseRecord{Name: "A (2025 Fall)"},
		New: domain.CourseRecord{Name: "A (2025 fall)"},
	}
	assert.True(t, c.Renamed())
	assert.True(t, c.SemesterMoved())

	c.New.Name = "A renamed (2025 Fall)"
	assert.False(t, c.SemesterMoved())

	c.New.Name = "A"
	assert.True(t, c.SemesterMoved())
}
