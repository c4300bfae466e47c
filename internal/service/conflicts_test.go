package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/exam-planner-api/internal/models"
)

func TestBuildConflictGraphSymmetric(t *testing.T) {
	graph := buildConflictGraph([]string{"a", "b", "c"}, []models.ConflictPair{
		{CourseA: "a", CourseB: "b"},
	})

	require.Contains(t, graph["a"], "b")
	require.Contains(t, graph["b"], "a")
	assert.Empty(t, graph["c"])
}

func TestBuildConflictGraphSeedsIsolatedCourses(t *testing.T) {
	graph := buildConflictGraph([]string{"a", "b"}, nil)

	require.Len(t, graph, 2)
	assert.NotNil(t, graph["a"])
	assert.NotNil(t, graph["b"])
}

func TestBuildConflictGraphIgnoresForeignAndSelfPairs(t *testing.T) {
	graph := buildConflictGraph([]string{"a", "b"}, []models.ConflictPair{
		{CourseA: "a", CourseB: "a"},
		{CourseA: "a", CourseB: "zz"},
	})

	assert.Empty(t, graph["a"])
	assert.Empty(t, graph["b"])
}
