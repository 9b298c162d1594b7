package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show profile and today's progress",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/dashboard")
	if err != nil {
		return err
	}

	var dash struct {
		User struct {
			Username          string `json:"username"`
			Level             int    `json:"level"`
			XP                int    `json:"xp"`
			Gems              int    `json:"gems"`
			Streak            int    `json:"streak"`
			XPForNextLevel    int    `json:"xp_for_next_level"`
			XPProgressPercent int    `json:"xp_progress_percent"`
		} `json:"user"`
		Recent []struct {
			Title string `json:"title"`
		} `json:"recent_achievements"`
		Stats struct {
			ProgressPercentage int `json:"progress_percentage"`
			CompletedTasks     int `json:"completed_tasks"`
			TotalTasks         int `json:"total_tasks"`
			EarnedXP           int `json:"earned_xp"`
		} `json:"stats"`
	}
	if err := json.Unmarshal(resp, &dash); err != nil {
		return err
	}

	u := dash.User
	fmt.Printf("%s — level %d\n", u.Username, u.Level)
	fmt.Printf("XP:     %d (%d/100 to level %d)\n", u.XP, u.XPProgressPercent, u.Level+1)
	fmt.Printf("        [%s]\n", progressBar(u.XPProgressPercent, 30))
	fmt.Printf("Gems:   %d\n", u.Gems)
	fmt.Printf("Streak: %d days\n", u.Streak)

	s := dash.Stats
	fmt.Printf("\nToday:  %d/%d tasks done (%d%%), %d xp earned\n",
		s.CompletedTasks, s.TotalTasks, s.ProgressPercentage, s.EarnedXP)

	if len(dash.Recent) > 0 {
		fmt.Println("\nRecent achievements:")
		for _, a := range dash.Recent {
			fmt.Printf("  🏆 %s\n", a.Title)
		}
	}
	return nil
}

func progressBar(percent, width int) string {
	filled := percent * width / 100
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}
