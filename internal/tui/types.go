package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/fentz26/questline/internal/models"
)

var (
	priorityHigh   = lipgloss.NewStyle().Foreground(lipgloss.Color("1")) // Red
	priorityMedium = lipgloss.NewStyle().Foreground(lipgloss.Color("3")) // Yellow
	priorityLow    = lipgloss.NewStyle().Foreground(lipgloss.Color("4")) // Blue
	doneStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2")) // Green
)

// TaskItem implements list.Item for the milestone list.
type TaskItem struct {
	ID        string
	TaskTitle string
	Priority  models.Priority
	DueTime   string
	XPReward  int
	GemReward int
	Completed bool
}

func (i TaskItem) FilterValue() string { return i.TaskTitle }
func (i TaskItem) Title() string       { return i.TaskTitle }
func (i TaskItem) Description() string {
	if i.Completed {
		return doneStyle.Render("✓ done")
	}

	marker := formatPriority(i.Priority)
	reward := fmt.Sprintf("+%d xp, +%d gems", i.XPReward, i.GemReward)
	if i.DueTime != "" {
		return fmt.Sprintf("%s • due %s • %s", marker, i.DueTime, reward)
	}
	return fmt.Sprintf("%s • %s", marker, reward)
}

func priorityOf(s string) models.Priority {
	if p, err := models.ParsePriority(s); err == nil {
		return p
	}
	return models.PriorityMedium
}

func formatPriority(p models.Priority) string {
	switch p {
	case models.PriorityHigh:
		return priorityHigh.Render("● high")
	case models.PriorityMedium:
		return priorityMedium.Render("● medium")
	case models.PriorityLow:
		return priorityLow.Render("● low")
	default:
		return string(p)
	}
}

// Profile is the user state shown in the header.
type Profile struct {
	Username          string
	Level             int
	XP                int
	Gems              int
	Streak            int
	XPForNextLevel    int
	XPProgressPercent int
}

// Stats summarizes the day.
type Stats struct {
	ProgressPercentage int
	CompletedTasks     int
	TotalTasks         int
	EarnedXP           int
}

// DashboardData is the payload the dashboard screen renders.
type DashboardData struct {
	Profile Profile
	Tasks   []TaskItem
	Recent  []string
	Stats   Stats
}
