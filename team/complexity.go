package team

import (
	"strings"

	"github.com/ceedaragents/cyrus-sub010/classify"
)

// DefaultThreshold is the minimum score at which work gets a team.
const DefaultThreshold = 60

// DefaultKeywords are the complexity markers scanned for in descriptions.
// Each distinct keyword found adds ten points, regardless of repetition.
var DefaultKeywords = []string{
	"refactor",
	"migrate",
	"architecture",
	"performance",
	"security",
	"concurrency",
}

// ComplexityScore is the outcome of scoring one unit of work.
type ComplexityScore struct {
	Score             int
	UseTeam           bool
	SuggestedTeamSize int
}

// ScorerOptions holds tunables for the complexity scorer.
type ScorerOptions struct {
	// Threshold is the minimum score for team decomposition.
	Threshold int
	// Keywords overrides the default complexity marker set.
	Keywords []string
}

// Scorer computes complexity scores. Scoring is pure: the same
// classification and description always produce the same score.
type Scorer struct {
	opts ScorerOptions
}

// NewScorer creates a Scorer with the given overrides.
func NewScorer(optFns ...func(o *ScorerOptions)) *Scorer {
	opts := ScorerOptions{
		Threshold: DefaultThreshold,
		Keywords:  DefaultKeywords,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Scorer{opts: opts}
}

// Score computes the complexity of one unit of work.
//
// Questions, documentation and transient work score zero outright. Otherwise
// the classification sets a base (orchestrator 80, debugger 40, code 0), long
// code descriptions add length increments (+40 over 2000 characters, else +20
// over 800), and each distinct keyword present adds 10. The result is clamped
// to 100.
func (s *Scorer) Score(class classify.Classification, description string) ComplexityScore {
	switch class {
	case classify.ClassQuestion, classify.ClassDocumentation, classify.ClassTransient:
		return ComplexityScore{Score: 0, UseTeam: false, SuggestedTeamSize: suggestedSize(0)}
	}

	score := 0
	switch class {
	case classify.ClassOrchestrator:
		score = 80
	case classify.ClassDebugger:
		score = 40
	case classify.ClassCode:
		if len(description) > 2000 {
			score += 40
		} else if len(description) > 800 {
			score += 20
		}
	}

	lower := strings.ToLower(description)
	for _, kw := range s.opts.Keywords {
		if strings.Contains(lower, kw) {
			score += 10
		}
	}
	if score > 100 {
		score = 100
	}

	return ComplexityScore{
		Score:             score,
		UseTeam:           score >= s.opts.Threshold,
		SuggestedTeamSize: suggestedSize(score),
	}
}

// ScoreComplexity scores with the default threshold and keyword set.
func ScoreComplexity(class classify.Classification, description string) ComplexityScore {
	return NewScorer().Score(class, description)
}

func suggestedSize(score int) int {
	switch {
	case score >= 80:
		return 4
	case score >= 60:
		return 3
	default:
		return 2
	}
}
