package team

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ceedaragents/cyrus-sub010/classify"
)

func TestScore_ZeroClassifications(t *testing.T) {
	for _, class := range []classify.Classification{
		classify.ClassQuestion,
		classify.ClassDocumentation,
		classify.ClassTransient,
	} {
		got := ScoreComplexity(class, strings.Repeat("refactor security performance ", 200))
		assert.Equal(t, 0, got.Score, "class %s", class)
		assert.False(t, got.UseTeam, "class %s", class)
	}
}

func TestScore_LongCodeDescriptionWithoutKeywords(t *testing.T) {
	desc := strings.Repeat("x", 2500)
	got := ScoreComplexity(classify.ClassCode, desc)
	assert.Equal(t, 40, got.Score)
	assert.False(t, got.UseTeam)
	assert.Equal(t, 2, got.SuggestedTeamSize)
}

func TestScore_LengthIncrements(t *testing.T) {
	assert.Equal(t, 0, ScoreComplexity(classify.ClassCode, strings.Repeat("x", 500)).Score)
	assert.Equal(t, 20, ScoreComplexity(classify.ClassCode, strings.Repeat("x", 1000)).Score)
	assert.Equal(t, 40, ScoreComplexity(classify.ClassCode, strings.Repeat("x", 3000)).Score)
}

func TestScore_OrchestratorGetsLargestTeam(t *testing.T) {
	got := ScoreComplexity(classify.ClassOrchestrator, "coordinate the release")
	assert.GreaterOrEqual(t, got.Score, 80)
	assert.True(t, got.UseTeam)
	assert.Equal(t, 4, got.SuggestedTeamSize)
}

func TestScore_KeywordsAreMonotonic(t *testing.T) {
	base := ScoreComplexity(classify.ClassDebugger, "fix the crash").Score
	one := ScoreComplexity(classify.ClassDebugger, "fix the performance crash").Score
	two := ScoreComplexity(classify.ClassDebugger, "fix the performance and security crash").Score
	assert.Equal(t, base+10, one)
	assert.Equal(t, base+20, two)
}

func TestScore_RepeatedKeywordCountsOnce(t *testing.T) {
	once := ScoreComplexity(classify.ClassDebugger, "security issue").Score
	thrice := ScoreComplexity(classify.ClassDebugger, "security security security issue").Score
	assert.Equal(t, once, thrice)
}

func TestScore_ClampedAtHundred(t *testing.T) {
	desc := strings.Join(DefaultKeywords, " ")
	got := ScoreComplexity(classify.ClassOrchestrator, desc)
	assert.Equal(t, 100, got.Score)
}

func TestScore_Deterministic(t *testing.T) {
	desc := "refactor the storage layer for performance"
	first := ScoreComplexity(classify.ClassCode, desc)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ScoreComplexity(classify.ClassCode, desc))
	}
}

func TestScore_CustomThresholdAndKeywords(t *testing.T) {
	s := NewScorer(func(o *ScorerOptions) {
		o.Threshold = 40
		o.Keywords = []string{"urgent"}
	})
	got := s.Score(classify.ClassDebugger, "urgent crash")
	assert.Equal(t, 50, got.Score)
	assert.True(t, got.UseTeam)
}
