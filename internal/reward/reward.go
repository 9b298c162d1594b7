// Package reward computes the state deltas produced by completing tasks
// and focus sessions. All functions are pure: they take the current instant
// as a parameter and never touch storage, so any number of callers may
// invoke them concurrently. Persisting the results atomically is the
// caller's job.
package reward

import (
	"fmt"
	"time"

	"github.com/fentz26/questline/internal/models"
	"github.com/fentz26/questline/internal/progression"
)

// SessionXPDivisor converts focus minutes to XP: one point per five minutes.
const SessionXPDivisor = 5

// Delta is the reward produced by a completion.
type Delta struct {
	XP   int `json:"xp"`
	Gems int `json:"gems"`
}

// CompleteTask marks a task completed at now and returns the updated task
// plus the earned delta. Completing an already-completed task is a no-op
// with a zero delta, never a re-award. XP is always credited; gems only
// when the completion is on time (at or before the task's date + due time,
// evaluated in now's location). A task without a due time is always on time.
func CompleteTask(task models.Task, now time.Time) (models.Task, Delta, error) {
	if task.Completed {
		return task, Delta{}, nil
	}

	onTime := true
	due, ok, err := task.DueInstant(now.Location())
	if err != nil {
		return task, Delta{}, fmt.Errorf("complete task: %w", err)
	}
	if ok {
		onTime = !now.After(due)
	}

	task.Completed = true
	task.CompletedAt = &now
	task.CompletedOnTime = onTime

	d := Delta{XP: task.XPReward}
	if onTime {
		d.Gems = task.GemReward
	}
	return task, d, nil
}

// CompleteSession marks a focus session completed at now and returns the
// bonus XP. Sessions have no on-time concept. Idempotent like CompleteTask.
func CompleteSession(sess models.FocusSession, now time.Time) (models.FocusSession, int) {
	if sess.Completed {
		return sess, 0
	}
	sess.Completed = true
	sess.CompletedAt = &now
	return sess, sess.Duration / SessionXPDivisor
}

// ApplyDelta credits a delta to the user and re-derives the level. Level is
// never carried over from the stored value; it always follows the new XP.
func ApplyDelta(user models.User, d Delta) models.User {
	user.XP += d.XP
	user.Gems += d.Gems
	user.Level = progression.Level(user.XP)
	return user
}

// TouchStreak advances the user's daily streak for activity on today
// (YYYY-MM-DD). Consecutive days extend the streak, repeat activity on the
// same day holds it, and a gap resets it to 1.
func TouchStreak(user models.User, today string) models.User {
	if user.LastActiveDate == today {
		return user
	}

	yesterday := ""
	if d, err := time.Parse(models.DateLayout, today); err == nil {
		yesterday = d.AddDate(0, 0, -1).Format(models.DateLayout)
	}

	if user.LastActiveDate == yesterday && yesterday != "" {
		user.Streak++
	} else {
		user.Streak = 1
	}
	user.LastActiveDate = today
	return user
}
