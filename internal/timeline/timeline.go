// Package timeline turns a goal's deadline into a bounded sequence of
// dated milestone tasks. Generation is a pure function of the goal and the
// injected "today" instant: no wall-clock reads, no I/O.
package timeline

import (
	"fmt"
	"time"

	"github.com/fentz26/questline/internal/models"
)

// Milestone defaults. Short-term goals get daily-sized milestones,
// long-term goals get weekly checkpoints.
const (
	DefaultCategory = "personal"
	DefaultDueTime  = "18:00"

	maxShortTermTasks = 7

	shortTermEstimate = 60
	shortTermXP       = 30
	shortTermGems     = 2

	longTermEstimate = 120
	longTermXP       = 50
	longTermGems     = 3
)

// Generate produces the milestone specs for a goal, ordered by ascending
// date. A deadline at or before today yields an empty sequence: the goal is
// still valid, it simply receives no generated milestones.
//
// The span is a calendar-day count. Both endpoints are anchored at midnight
// UTC before subtracting, so a DST transition in today's location cannot
// stretch or shrink the difference by an hour.
func Generate(goal models.Goal, today time.Time) ([]models.MilestoneTaskSpec, error) {
	deadline, err := time.ParseInLocation(models.DateLayout, goal.Deadline, time.UTC)
	if err != nil {
		return nil, fmt.Errorf("parse deadline: %w", err)
	}

	base := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	totalDays := int(deadline.Sub(base).Hours() / 24)
	if totalDays <= 0 {
		return nil, nil
	}

	switch goal.Type {
	case models.GoalLongTerm:
		return generateWeekly(goal, base, deadline, totalDays), nil
	default:
		return generateDaily(goal, base, totalDays), nil
	}
}

// generateDaily spreads up to maxShortTermTasks milestones across the span
// using integer-floor spacing. When the span is short the rounding can land
// several milestones on the same date; that is accepted, not corrected.
func generateDaily(goal models.Goal, base time.Time, totalDays int) []models.MilestoneTaskSpec {
	taskCount := totalDays
	if taskCount > maxShortTermTasks {
		taskCount = maxShortTermTasks
	}

	specs := make([]models.MilestoneTaskSpec, 0, taskCount)
	for i := 0; i < taskCount; i++ {
		priority := models.PriorityMedium
		if i == taskCount-1 {
			priority = models.PriorityHigh
		}

		date := base.AddDate(0, 0, totalDays*i/taskCount)
		specs = append(specs, models.MilestoneTaskSpec{
			Title:         fmt.Sprintf("%s - Milestone %d", goal.Title, i+1),
			Category:      DefaultCategory,
			Priority:      priority,
			EstimatedTime: shortTermEstimate,
			XPReward:      shortTermXP,
			GemReward:     shortTermGems,
			DueTime:       DefaultDueTime,
			Date:          date.Format(models.DateLayout),
		})
	}
	return specs
}

// generateWeekly emits one checkpoint per week, skipping any that would
// land past the deadline.
func generateWeekly(goal models.Goal, base, deadline time.Time, totalDays int) []models.MilestoneTaskSpec {
	weekCount := (totalDays + 6) / 7

	specs := make([]models.MilestoneTaskSpec, 0, weekCount)
	for week := 0; week < weekCount; week++ {
		date := base.AddDate(0, 0, week*7)
		if date.After(deadline) {
			continue
		}

		priority := models.PriorityMedium
		if week == weekCount-1 {
			priority = models.PriorityHigh
		}

		specs = append(specs, models.MilestoneTaskSpec{
			Title:         fmt.Sprintf("%s - Week %d Progress", goal.Title, week+1),
			Category:      DefaultCategory,
			Priority:      priority,
			EstimatedTime: longTermEstimate,
			XPReward:      longTermXP,
			GemReward:     longTermGems,
			DueTime:       DefaultDueTime,
			Date:          date.Format(models.DateLayout),
		})
	}
	return specs
}
