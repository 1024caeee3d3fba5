// Package tasks models the shared markdown task-tracking file that every
// persona reads and rewrites. The file carries three sections (Completed,
// In Progress, Backlog); each item has a priority tier, optional owner, and
// free-text notes. Access is advisory single-writer: this package enforces
// the transition discipline when asked, but nothing prevents an external
// editor from rewriting the file.
package tasks

import (
	"github.com/pkg/errors"
)

// Status is the lifecycle state of a task.
type Status string

const (
	StatusBacklog    Status = "Backlog"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
)

// Priority determines the task's urgency tier.
type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityNormal   Priority = "normal"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

var (
	// ErrInvalidTransition is returned when a status change skips or
	// reverses the Backlog -> In Progress -> Completed order.
	ErrInvalidTransition = errors.New("invalid task transition")

	// ErrTaskNotFound is returned when no task with the given title exists.
	ErrTaskNotFound = errors.New("task not found")
)

// Task is one work item from the tracking file.
type Task struct {
	Title    string
	Status   Status
	Priority Priority
	Owner    string // acting agent, empty if unassigned
	Notes    string
}

// ValidStatus reports whether s is one of the three known states.
func ValidStatus(s Status) bool {
	switch s {
	case StatusBacklog, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority tier.
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}

// CanTransition reports whether moving a task from one status to the other
// follows the convention. Only Backlog -> In Progress and
// In Progress -> Completed are permitted; in particular a direct
// Backlog -> Completed jump is rejected. Abandonment and rollback are not
// modeled; the convention leaves them undefined.
func CanTransition(from, to Status) bool {
	switch {
	case from == StatusBacklog && to == StatusInProgress:
		return true
	case from == StatusInProgress && to == StatusCompleted:
		return true
	}
	return false
}

// Transition applies a status change to the task, enforcing the convention.
func (t *Task) Transition(to Status) error {
	if !ValidStatus(to) {
		return errors.Wrapf(ErrInvalidTransition, "unknown status %q", to)
	}
	if !CanTransition(t.Status, to) {
		return errors.Wrapf(ErrInvalidTransition, "%q -> %q for task %q", t.Status, to, t.Title)
	}
	t.Status = to
	return nil
}
