package team

import "fmt"

// Task is one unit of team work. BlockedBy lists the IDs of tasks that must
// succeed before this one may start.
type Task struct {
	ID          string
	Subject     string
	Description string
	BlockedBy   []string
	AssignTo    string
}

// Graph is a validated, acyclic set of tasks. Construct with NewGraph; a
// graph that validates never deadlocks during execution.
type Graph struct {
	tasks map[string]Task
	order []string
}

// NewGraph validates the task set: IDs must be nonempty and unique, every
// dependency must name an existing task, and the dependency relation must be
// acyclic. An invalid set is rejected here and never reaches execution.
func NewGraph(tasks []Task) (*Graph, error) {
	g := &Graph{tasks: make(map[string]Task, len(tasks))}
	for _, t := range tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("task %q has an empty id", t.Subject)
		}
		if _, dup := g.tasks[t.ID]; dup {
			return nil, fmt.Errorf("duplicate task id %q", t.ID)
		}
		g.tasks[t.ID] = t
		g.order = append(g.order, t.ID)
	}
	for _, t := range tasks {
		for _, dep := range t.BlockedBy {
			if _, ok := g.tasks[dep]; !ok {
				return nil, fmt.Errorf("task %q is blocked by unknown task %q", t.ID, dep)
			}
		}
	}
	if cycle := g.findCycle(); cycle != "" {
		return nil, fmt.Errorf("task graph contains a cycle through %q", cycle)
	}
	return g, nil
}

// Tasks returns every task in insertion order.
func (g *Graph) Tasks() []Task {
	out := make([]Task, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.tasks[id])
	}
	return out
}

// Task looks up one task by ID.
func (g *Graph) Task(id string) (Task, bool) {
	t, ok := g.tasks[id]
	return t, ok
}

// Len returns the number of tasks.
func (g *Graph) Len() int { return len(g.order) }

// findCycle runs a three-color depth-first search and returns the ID of a
// task on a dependency cycle, or "" if the graph is acyclic.
func (g *Graph) findCycle() string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(g.tasks))
	var visit func(id string) string
	visit = func(id string) string {
		color[id] = gray
		for _, dep := range g.tasks[id].BlockedBy {
			switch color[dep] {
			case gray:
				return dep
			case white:
				if hit := visit(dep); hit != "" {
					return hit
				}
			}
		}
		color[id] = black
		return ""
	}
	for _, id := range g.order {
		if color[id] == white {
			if hit := visit(id); hit != "" {
				return hit
			}
		}
	}
	return ""
}
