package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Manage focus sessions",
}

var sessionStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a focus session",
	RunE:  runSessionStart,
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List focus sessions",
	RunE:  runSessionList,
}

var sessionCompleteCmd = &cobra.Command{
	Use:   "complete [session-id]",
	Short: "Complete a focus session and collect the bonus XP",
	Args:  cobra.ExactArgs(1),
	RunE:  runSessionComplete,
}

var (
	sessionDuration int
	sessionTaskID   string
)

func init() {
	sessionCmd.AddCommand(sessionStartCmd, sessionListCmd, sessionCompleteCmd)

	sessionStartCmd.Flags().IntVar(&sessionDuration, "duration", 25, "Session length in minutes")
	sessionStartCmd.Flags().StringVar(&sessionTaskID, "task", "", "Link to a task ID")
}

func runSessionStart(cmd *cobra.Command, args []string) error {
	body := map[string]interface{}{
		"duration": sessionDuration,
	}
	if sessionTaskID != "" {
		body["task_id"] = sessionTaskID
	}

	resp, err := apiPost("/sessions", body)
	if err != nil {
		return err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Started %d-minute session: %s\n", sessionDuration, result["id"])
	return nil
}

func runSessionList(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/sessions")
	if err != nil {
		return err
	}

	var sessions []map[string]interface{}
	if err := json.Unmarshal(resp, &sessions); err != nil {
		return err
	}

	if len(sessions) == 0 {
		fmt.Println("No sessions found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMINUTES\tSTARTED\tDONE")
	for _, s := range sessions {
		done := ""
		if completed, ok := s["completed"].(bool); ok && completed {
			done = "yes"
		}
		fmt.Fprintf(w, "%s\t%.0f\t%s\t%s\n",
			truncateID(s["id"].(string)), s["duration"].(float64), s["started_at"], done)
	}
	w.Flush()
	return nil
}

func runSessionComplete(cmd *cobra.Command, args []string) error {
	resp, err := apiPost("/sessions/"+args[0]+"/complete", nil)
	if err != nil {
		return err
	}

	var result struct {
		XP   int `json:"xp"`
		User struct {
			Level int `json:"level"`
			XP    int `json:"xp"`
		} `json:"user"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	if result.XP == 0 {
		fmt.Println("Session was already completed, nothing awarded")
		return nil
	}
	fmt.Printf("Session complete! +%d xp (level %d, %d xp total)\n",
		result.XP, result.User.Level, result.User.XP)
	return nil
}
