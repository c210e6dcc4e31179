package poller

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchpad-ai/launchpad-backend/internal/projects"
)

func readyCode() string {
	return "function AppDemo() { " + strings.Repeat("x", 120) + " }"
}

func project(id, code string) projects.Project {
	return projects.Project{ID: id, Name: "p-" + id, Code: code}
}

func TestCompare_NoChanges(t *testing.T) {
	known := []projects.Project{project("a", readyCode())}
	fetched := []projects.Project{project("a", readyCode())}

	diff := Compare(known, fetched)
	assert.False(t, diff.Replace)
	assert.Empty(t, diff.NewlyFinished)
}

func TestCompare_PendingProjectFinishes(t *testing.T) {
	known := []projects.Project{project("a", "stub")}
	fetched := []projects.Project{project("a", readyCode())}

	diff := Compare(known, fetched)
	assert.True(t, diff.Replace)
	require.Len(t, diff.NewlyFinished, 1)
	assert.Equal(t, "a", diff.NewlyFinished[0].ID)
}

func TestCompare_UnknownReadyProjectCountsAsFinished(t *testing.T) {
	known := []projects.Project{project("a", readyCode())}
	fetched := []projects.Project{project("a", readyCode()), project("b", readyCode())}

	diff := Compare(known, fetched)
	assert.True(t, diff.Replace)
	require.Len(t, diff.NewlyFinished, 1)
	assert.Equal(t, "b", diff.NewlyFinished[0].ID)
}

func TestCompare_GrowthWithoutReadyCodeStillReplaces(t *testing.T) {
	known := []projects.Project{project("a", readyCode())}
	fetched := []projects.Project{project("a", readyCode()), project("b", "stub")}

	diff := Compare(known, fetched)
	assert.True(t, diff.Replace)
	assert.Empty(t, diff.NewlyFinished)
}

func TestCompare_ShrinkingListIsNotReplaced(t *testing.T) {
	known := []projects.Project{project("a", readyCode()), project("b", readyCode())}
	fetched := []projects.Project{project("a", readyCode())}

	diff := Compare(known, fetched)
	assert.False(t, diff.Replace)
}

func TestCompare_PlaceholderIgnoredForCounting(t *testing.T) {
	placeholder := projects.NewPlaceholder("Synthesis in Progress", "prompt", "u1")
	known := []projects.Project{placeholder, project("a", readyCode())}
	fetched := []projects.Project{project("a", readyCode()), project("b", readyCode())}

	diff := Compare(known, fetched)
	assert.True(t, diff.Replace)
	require.Len(t, diff.NewlyFinished, 1)
	assert.Equal(t, "b", diff.NewlyFinished[0].ID)
}

func TestCompare_DoesNotMutateInputs(t *testing.T) {
	known := []projects.Project{project("a", "stub")}
	fetched := []projects.Project{project("a", readyCode())}
	Compare(known, fetched)
	assert.Equal(t, "stub", known[0].Code)
}
