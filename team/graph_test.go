package team

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceedaragents/cyrus-sub010/classify"
)

func TestNewGraph_RejectsCycle(t *testing.T) {
	_, err := NewGraph([]Task{
		{ID: "a", BlockedBy: []string{"c"}},
		{ID: "b", BlockedBy: []string{"a"}},
		{ID: "c", BlockedBy: []string{"b"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestNewGraph_RejectsSelfDependency(t *testing.T) {
	_, err := NewGraph([]Task{{ID: "a", BlockedBy: []string{"a"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestNewGraph_RejectsUnknownDependency(t *testing.T) {
	_, err := NewGraph([]Task{{ID: "a", BlockedBy: []string{"ghost"}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost")
}

func TestNewGraph_RejectsDuplicateID(t *testing.T) {
	_, err := NewGraph([]Task{{ID: "a"}, {ID: "a"}})
	require.Error(t, err)
}

func TestNewGraph_PreservesOrder(t *testing.T) {
	g, err := NewGraph([]Task{{ID: "z"}, {ID: "a"}, {ID: "m"}})
	require.NoError(t, err)
	tasks := g.Tasks()
	require.Len(t, tasks, 3)
	assert.Equal(t, "z", tasks[0].ID)
	assert.Equal(t, "a", tasks[1].ID)
	assert.Equal(t, "m", tasks[2].ID)
}

func TestBuildGraph_Orchestration(t *testing.T) {
	g, err := BuildGraph(classify.ClassOrchestrator, "release v2", "ship it", 4)
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())

	integrate, ok := g.Task("integrate")
	require.True(t, ok)
	assert.ElementsMatch(t, []string{"work-1", "work-2"}, integrate.BlockedBy)

	work, ok := g.Task("work-1")
	require.True(t, ok)
	assert.Equal(t, []string{"plan"}, work.BlockedBy)
}

func TestBuildGraph_DebuggingIsAChain(t *testing.T) {
	g, err := BuildGraph(classify.ClassDebugger, "crash on start", "stack trace attached", 3)
	require.NoError(t, err)
	require.Equal(t, 4, g.Len())

	verify, ok := g.Task("verify")
	require.True(t, ok)
	assert.Equal(t, []string{"fix"}, verify.BlockedBy)
}

func TestBuildGraph_DevelopmentForksAfterImplement(t *testing.T) {
	g, err := BuildGraph(classify.ClassCode, "add pagination", "cursor-based", 2)
	require.NoError(t, err)

	testTask, ok := g.Task("test")
	require.True(t, ok)
	reviewTask, ok := g.Task("review")
	require.True(t, ok)
	assert.Equal(t, []string{"implement"}, testTask.BlockedBy)
	assert.Equal(t, []string{"implement"}, reviewTask.BlockedBy)
}

func TestBuildGraph_RejectsNonTeamClassification(t *testing.T) {
	_, err := BuildGraph(classify.ClassQuestion, "how does this work", "", 2)
	assert.Error(t, err)
}
