package team

import (
	"fmt"

	"github.com/ceedaragents/cyrus-sub010/classify"
)

// BuildGraph constructs the task graph for one classified issue. subject is
// the issue title, description its body, size the suggested team size from
// the complexity scorer. Classifications that never get a team return an
// error; callers are expected to check UseTeam first.
func BuildGraph(class classify.Classification, subject, description string, size int) (*Graph, error) {
	switch class {
	case classify.ClassOrchestrator:
		return buildOrchestration(subject, description, size)
	case classify.ClassDebugger:
		return buildDebugging(subject, description)
	case classify.ClassCode:
		return buildDevelopment(subject, description)
	}
	return nil, fmt.Errorf("classification %q does not decompose into a team", class)
}

// buildOrchestration fans a plan out to parallel workers and joins the
// results: plan, then size-2 workstreams blocked by it, then integration
// blocked by every workstream.
func buildOrchestration(subject, description string, size int) (*Graph, error) {
	if size < 3 {
		size = 3
	}
	tasks := []Task{{
		ID:          "plan",
		Subject:     "Plan: " + subject,
		Description: "Break the work into independent workstreams and write a short plan for each.\n\n" + description,
		AssignTo:    "planner",
	}}
	workers := size - 2
	var workIDs []string
	for i := 1; i <= workers; i++ {
		id := fmt.Sprintf("work-%d", i)
		workIDs = append(workIDs, id)
		tasks = append(tasks, Task{
			ID:          id,
			Subject:     fmt.Sprintf("Workstream %d: %s", i, subject),
			Description: fmt.Sprintf("Carry out workstream %d of the plan.\n\n%s", i, description),
			BlockedBy:   []string{"plan"},
			AssignTo:    "implementer",
		})
	}
	tasks = append(tasks, Task{
		ID:          "integrate",
		Subject:     "Integrate: " + subject,
		Description: "Merge the workstream results, resolve conflicts, and verify the combined change.",
		BlockedBy:   workIDs,
		AssignTo:    "integrator",
	})
	return NewGraph(tasks)
}

// buildDebugging is a strict chain: reproduce, diagnose, fix, verify.
func buildDebugging(subject, description string) (*Graph, error) {
	return NewGraph([]Task{
		{
			ID:          "reproduce",
			Subject:     "Reproduce: " + subject,
			Description: "Reproduce the reported failure and capture the exact failing behavior.\n\n" + description,
			AssignTo:    "investigator",
		},
		{
			ID:          "diagnose",
			Subject:     "Diagnose: " + subject,
			Description: "Find the root cause of the reproduced failure.",
			BlockedBy:   []string{"reproduce"},
			AssignTo:    "investigator",
		},
		{
			ID:          "fix",
			Subject:     "Fix: " + subject,
			Description: "Fix the diagnosed root cause.",
			BlockedBy:   []string{"diagnose"},
			AssignTo:    "implementer",
		},
		{
			ID:          "verify",
			Subject:     "Verify: " + subject,
			Description: "Verify the fix against the original reproduction and check for regressions.",
			BlockedBy:   []string{"fix"},
			AssignTo:    "reviewer",
		},
	})
}

// buildDevelopment implements then tests and reviews in parallel.
func buildDevelopment(subject, description string) (*Graph, error) {
	return NewGraph([]Task{
		{
			ID:          "implement",
			Subject:     "Implement: " + subject,
			Description: description,
			AssignTo:    "implementer",
		},
		{
			ID:          "test",
			Subject:     "Test: " + subject,
			Description: "Write and run tests covering the implemented change.",
			BlockedBy:   []string{"implement"},
			AssignTo:    "tester",
		},
		{
			ID:          "review",
			Subject:     "Review: " + subject,
			Description: "Review the implemented change for correctness and style.",
			BlockedBy:   []string{"implement"},
			AssignTo:    "reviewer",
		},
	})
}
