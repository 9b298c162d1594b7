// Package models defines the core domain types for Questline.
package models

import (
	"fmt"
	"time"
)

// DateLayout is the calendar date format used throughout the API and store.
const DateLayout = "2006-01-02"

// TimeLayout is the due-time-of-day format (24-hour local).
const TimeLayout = "15:04"

// GoalType classifies how a goal's timeline is generated.
type GoalType string

const (
	GoalShortTerm GoalType = "short_term"
	GoalLongTerm  GoalType = "long_term"
)

// ParseGoalType validates a goal type string from the boundary.
func ParseGoalType(s string) (GoalType, error) {
	switch GoalType(s) {
	case GoalShortTerm, GoalLongTerm:
		return GoalType(s), nil
	}
	return "", fmt.Errorf("invalid goal type %q", s)
}

// Priority represents task urgency.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// ParsePriority validates a priority string from the boundary.
func ParsePriority(s string) (Priority, error) {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return Priority(s), nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

// Goal represents a user-stated objective with a deadline. Immutable once
// created except for the completion fields.
type Goal struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Type        GoalType   `json:"type"`
	Deadline    string     `json:"deadline"` // YYYY-MM-DD
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// MilestoneTaskSpec is a generated milestone before it becomes a persisted
// Task. The timeline generator emits these; the store turns them into rows.
type MilestoneTaskSpec struct {
	Title         string
	Category      string
	Priority      Priority
	EstimatedTime int // minutes
	XPReward      int
	GemReward     int
	DueTime       string // HH:MM
	Date          string // YYYY-MM-DD
}

// Task is a dated unit of work, either generated from a goal or standalone.
// GoalID is a weak back-reference: a task survives its goal.
type Task struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	GoalID          string     `json:"goal_id,omitempty"`
	Title           string     `json:"title"`
	Category        string     `json:"category"`
	Priority        Priority   `json:"priority"`
	EstimatedTime   int        `json:"estimated_time,omitempty"`
	ExternalLinks   []string   `json:"external_links,omitempty"`
	XPReward        int        `json:"xp_reward"`
	GemReward       int        `json:"gem_reward"`
	DueTime         string     `json:"due_time,omitempty"` // HH:MM, empty = no due time
	Date            string     `json:"date"`               // the day this task belongs to
	Completed       bool       `json:"completed"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
	CompletedOnTime bool       `json:"completed_on_time"`
	CreatedAt       time.Time  `json:"created_at"`
}

// DueInstant combines the task's date and due time into an instant in loc.
// Returns ok=false when the task has no due time.
func (t Task) DueInstant(loc *time.Location) (time.Time, bool, error) {
	if t.DueTime == "" {
		return time.Time{}, false, nil
	}
	due, err := time.ParseInLocation(DateLayout+" "+TimeLayout, t.Date+" "+t.DueTime, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("combine due instant: %w", err)
	}
	return due, true, nil
}

// FocusSession is a timed work interval, optionally linked to a task.
type FocusSession struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id,omitempty"`
	Duration    int        `json:"duration"` // minutes
	Completed   bool       `json:"completed"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// User holds the progression state. Level is a cached derivation of XP and
// must be recomputed on every write; XP and gems only ever grow.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Level          int    `json:"level"`
	XP             int    `json:"xp"`
	Gems           int    `json:"gems"`
	Streak         int    `json:"streak"`
	LastActiveDate string `json:"last_active_date,omitempty"` // YYYY-MM-DD
}

// Achievement marks a milestone the user earned.
type Achievement struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Type        string    `json:"type"` // e.g. "level_up", "first_streak"
	Title       string    `json:"title"`
	Description string    `json:"description"`
	EarnedAt    time.Time `json:"earned_at"`
}

// Notification kinds emitted by the reminder loop.
const (
	NotificationDueSoon = "due_soon"
	NotificationOverdue = "overdue"
)

// Notification is a reminder emitted for a task, at most once per kind.
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	TaskID    string    `json:"task_id"`
	Kind      string    `json:"kind"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
