package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var goalCmd = &cobra.Command{
	Use:   "goal",
	Short: "Manage goals",
}

var goalAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a goal and generate its milestone timeline",
	RunE:  runGoalAdd,
}

var goalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List goals",
	RunE:  runGoalList,
}

var goalShowCmd = &cobra.Command{
	Use:   "show [goal-id]",
	Short: "Show a goal and its milestones",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalShow,
}

var goalCompleteCmd = &cobra.Command{
	Use:   "complete [goal-id]",
	Short: "Mark a goal completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalComplete,
}

var goalDeleteCmd = &cobra.Command{
	Use:   "delete [goal-id]",
	Short: "Delete a goal (milestone tasks are kept)",
	Args:  cobra.ExactArgs(1),
	RunE:  runGoalDelete,
}

var (
	goalTitle    string
	goalDesc     string
	goalType     string
	goalDeadline string
)

func init() {
	goalCmd.AddCommand(goalAddCmd, goalListCmd, goalShowCmd, goalCompleteCmd, goalDeleteCmd)

	goalAddCmd.Flags().StringVar(&goalTitle, "title", "", "Goal title (required)")
	goalAddCmd.Flags().StringVar(&goalDesc, "desc", "", "Goal description")
	goalAddCmd.Flags().StringVar(&goalType, "type", "short_term", "Goal type (short_term, long_term)")
	goalAddCmd.Flags().StringVar(&goalDeadline, "deadline", "", "Deadline as YYYY-MM-DD (required)")
	goalAddCmd.MarkFlagRequired("title")
	goalAddCmd.MarkFlagRequired("deadline")
}

func runGoalAdd(cmd *cobra.Command, args []string) error {
	body := map[string]string{
		"title":       goalTitle,
		"description": goalDesc,
		"type":        goalType,
		"deadline":    goalDeadline,
	}

	resp, err := apiPost("/goals", body)
	if err != nil {
		return err
	}

	var result struct {
		Goal  map[string]interface{}   `json:"goal"`
		Tasks []map[string]interface{} `json:"tasks"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Created goal: %s\n", result.Goal["id"])
	if len(result.Tasks) == 0 {
		fmt.Println("No milestones generated (deadline is not in the future)")
		return nil
	}

	fmt.Printf("Generated %d milestones:\n", len(result.Tasks))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTITLE\tPRIORITY\tREWARD")
	for _, t := range result.Tasks {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f xp, %.0f gems\n",
			t["date"], truncate(t["title"].(string), 40), t["priority"],
			t["xp_reward"].(float64), t["gem_reward"].(float64))
	}
	w.Flush()
	return nil
}

func runGoalList(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/goals")
	if err != nil {
		return err
	}

	var goals []map[string]interface{}
	if err := json.Unmarshal(resp, &goals); err != nil {
		return err
	}

	if len(goals) == 0 {
		fmt.Println("No goals found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tTYPE\tDEADLINE\tDONE")
	for _, g := range goals {
		done := ""
		if completed, ok := g["completed"].(bool); ok && completed {
			done = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			truncateID(g["id"].(string)), truncate(g["title"].(string), 40),
			g["type"], g["deadline"], done)
	}
	w.Flush()
	return nil
}

func runGoalShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/goals/" + args[0])
	if err != nil {
		return err
	}

	var result struct {
		Goal  map[string]interface{}   `json:"goal"`
		Tasks []map[string]interface{} `json:"tasks"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	g := result.Goal
	fmt.Printf("ID:       %s\n", g["id"])
	fmt.Printf("Title:    %s\n", g["title"])
	if desc, ok := g["description"].(string); ok && desc != "" {
		fmt.Printf("About:    %s\n", desc)
	}
	fmt.Printf("Type:     %s\n", g["type"])
	fmt.Printf("Deadline: %s\n", g["deadline"])
	if completed, ok := g["completed"].(bool); ok && completed {
		fmt.Println("Status:   completed")
	}

	if len(result.Tasks) == 0 {
		return nil
	}
	fmt.Println("\nMilestones:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tDONE")
	for _, t := range result.Tasks {
		done := ""
		if completed, ok := t["completed"].(bool); ok && completed {
			done = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			truncateID(t["id"].(string)), t["date"], truncate(t["title"].(string), 40), done)
	}
	w.Flush()
	return nil
}

func runGoalComplete(cmd *cobra.Command, args []string) error {
	_, err := apiPost("/goals/"+args[0]+"/complete", nil)
	if err != nil {
		return err
	}
	fmt.Printf("Completed goal %s\n", args[0])
	return nil
}

func runGoalDelete(cmd *cobra.Command, args []string) error {
	_, err := apiDelete("/goals/" + args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Deleted goal %s (milestone tasks kept)\n", args[0])
	return nil
}
