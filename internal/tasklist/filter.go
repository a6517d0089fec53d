package tasklist

import (
	"strings"

	"github.com/yukikurage/taskmanager/internal/dto"
)

// All disables the status or priority predicate.
const All = "all"

// Filter is the predicate set applied to the task collection. A task is
// visible when it passes every active predicate.
type Filter struct {
	// Query matches title or description, ignoring case. Empty matches everything.
	Query string
	// Status is a status name, All or empty.
	Status string
	// Priority is a priority name, All or empty.
	Priority string
}

func (f Filter) statusActive() bool {
	return f.Status != "" && f.Status != All
}

func (f Filter) priorityActive() bool {
	return f.Priority != "" && f.Priority != All
}

// Active reports whether any predicate is in effect.
func (f Filter) Active() bool {
	return f.Query != "" || f.statusActive() || f.priorityActive()
}

// Match reports whether t passes every active predicate.
func (f Filter) Match(t dto.Task) bool {
	if f.Query != "" && !matchesText(t, strings.ToLower(f.Query)) {
		return false
	}
	if f.statusActive() && string(t.Status) != f.Status {
		return false
	}
	if f.priorityActive() && string(t.Priority) != f.Priority {
		return false
	}
	return true
}

func matchesText(t dto.Task, query string) bool {
	if strings.Contains(strings.ToLower(t.Title), query) {
		return true
	}
	return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), query)
}

// Apply returns the tasks that match f, in their original order.
func Apply(tasks []dto.Task, f Filter) []dto.Task {
	out := make([]dto.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}
