package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a standalone task",
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskEditCmd = &cobra.Command{
	Use:   "edit [task-id]",
	Short: "Edit a task's fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskEdit,
}

var taskCompleteCmd = &cobra.Command{
	Use:   "complete [task-id]",
	Short: "Complete a task and collect the reward",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskComplete,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var (
	taskTitle    string
	taskDate     string
	taskDue      string
	taskPriority string
	taskCategory string
	taskXP       int
	taskGems     int
	taskEstimate int
	taskGoalID   string
	listDate     string
	listGoalID   string
)

func init() {
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskShowCmd, taskEditCmd, taskCompleteCmd, taskDeleteCmd)

	taskAddCmd.Flags().StringVar(&taskTitle, "title", "", "Task title (required)")
	taskAddCmd.Flags().StringVar(&taskDate, "date", "", "Date as YYYY-MM-DD (required)")
	taskAddCmd.Flags().StringVar(&taskDue, "due", "", "Due time as HH:MM")
	taskAddCmd.Flags().StringVar(&taskPriority, "priority", "medium", "Priority (low, medium, high)")
	taskAddCmd.Flags().StringVar(&taskCategory, "category", "personal", "Category")
	taskAddCmd.Flags().IntVar(&taskXP, "xp", 20, "XP reward (5-100)")
	taskAddCmd.Flags().IntVar(&taskGems, "gems", 1, "Gem reward (1-10)")
	taskAddCmd.Flags().IntVar(&taskEstimate, "est", 0, "Estimated minutes (5-480)")
	taskAddCmd.Flags().StringVar(&taskGoalID, "goal", "", "Link to a goal ID")
	taskAddCmd.MarkFlagRequired("title")
	taskAddCmd.MarkFlagRequired("date")

	taskEditCmd.Flags().StringVar(&taskTitle, "title", "", "New title")
	taskEditCmd.Flags().StringVar(&taskDate, "date", "", "New date (YYYY-MM-DD)")
	taskEditCmd.Flags().StringVar(&taskDue, "due", "", "New due time (HH:MM)")
	taskEditCmd.Flags().StringVar(&taskPriority, "priority", "", "New priority (low, medium, high)")
	taskEditCmd.Flags().StringVar(&taskCategory, "category", "", "New category")
	taskEditCmd.Flags().IntVar(&taskXP, "xp", 0, "New XP reward (5-100)")
	taskEditCmd.Flags().IntVar(&taskGems, "gems", 0, "New gem reward (1-10)")
	taskEditCmd.Flags().IntVar(&taskEstimate, "est", 0, "New estimated minutes (5-480)")

	taskListCmd.Flags().StringVar(&listDate, "date", "", "Filter by date (YYYY-MM-DD)")
	taskListCmd.Flags().StringVar(&listGoalID, "goal", "", "Filter by goal ID")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	body := map[string]interface{}{
		"title":      taskTitle,
		"date":       taskDate,
		"priority":   taskPriority,
		"category":   taskCategory,
		"xp_reward":  taskXP,
		"gem_reward": taskGems,
	}
	if taskDue != "" {
		body["due_time"] = taskDue
	}
	if taskEstimate != 0 {
		body["estimated_time"] = taskEstimate
	}
	if taskGoalID != "" {
		body["goal_id"] = taskGoalID
	}

	resp, err := apiPost("/tasks", body)
	if err != nil {
		return err
	}

	var result map[string]interface{}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	fmt.Printf("Created task: %s\n", result["id"])
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	url := "/tasks"
	sep := "?"
	if listDate != "" {
		url += sep + "date=" + listDate
		sep = "&"
	}
	if listGoalID != "" {
		url += sep + "goal_id=" + listGoalID
	}

	resp, err := apiGet(url)
	if err != nil {
		return err
	}

	var tasks []map[string]interface{}
	if err := json.Unmarshal(resp, &tasks); err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tDUE\tTITLE\tPRIORITY\tREWARD\tDONE")
	for _, t := range tasks {
		due := ""
		if d, ok := t["due_time"].(string); ok {
			due = d
		}
		done := ""
		if completed, ok := t["completed"].(bool); ok && completed {
			done = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.0f xp, %.0f gems\t%s\n",
			truncateID(t["id"].(string)), t["date"], due,
			truncate(t["title"].(string), 40), t["priority"],
			t["xp_reward"].(float64), t["gem_reward"].(float64), done)
	}
	w.Flush()
	return nil
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	resp, err := apiGet("/tasks/" + args[0])
	if err != nil {
		return err
	}

	var task map[string]interface{}
	if err := json.Unmarshal(resp, &task); err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", task["id"])
	fmt.Printf("Title:    %s\n", task["title"])
	fmt.Printf("Date:     %s\n", task["date"])
	if due, ok := task["due_time"].(string); ok && due != "" {
		fmt.Printf("Due:      %s\n", due)
	}
	fmt.Printf("Priority: %s\n", task["priority"])
	fmt.Printf("Category: %s\n", task["category"])
	fmt.Printf("Reward:   %.0f xp, %.0f gems\n", task["xp_reward"].(float64), task["gem_reward"].(float64))
	if goalID, ok := task["goal_id"].(string); ok && goalID != "" {
		fmt.Printf("Goal:     %s\n", goalID)
	}
	if completed, ok := task["completed"].(bool); ok && completed {
		onTime := "late"
		if ot, ok := task["completed_on_time"].(bool); ok && ot {
			onTime = "on time"
		}
		fmt.Printf("Status:   completed (%s)\n", onTime)
	}
	return nil
}

func runTaskEdit(cmd *cobra.Command, args []string) error {
	// Send only the flags that were set; the API merges them.
	body := map[string]interface{}{}
	if cmd.Flags().Changed("title") {
		body["title"] = taskTitle
	}
	if cmd.Flags().Changed("date") {
		body["date"] = taskDate
	}
	if cmd.Flags().Changed("due") {
		body["due_time"] = taskDue
	}
	if cmd.Flags().Changed("priority") {
		body["priority"] = taskPriority
	}
	if cmd.Flags().Changed("category") {
		body["category"] = taskCategory
	}
	if cmd.Flags().Changed("xp") {
		body["xp_reward"] = taskXP
	}
	if cmd.Flags().Changed("gems") {
		body["gem_reward"] = taskGems
	}
	if cmd.Flags().Changed("est") {
		body["estimated_time"] = taskEstimate
	}
	if len(body) == 0 {
		return fmt.Errorf("nothing to edit, pass at least one flag")
	}

	_, err := apiPatch("/tasks/"+args[0], body)
	if err != nil {
		return err
	}
	fmt.Printf("Updated task %s\n", args[0])
	return nil
}

func runTaskComplete(cmd *cobra.Command, args []string) error {
	resp, err := apiPost("/tasks/"+args[0]+"/complete", nil)
	if err != nil {
		return err
	}

	var result struct {
		User struct {
			Level int `json:"level"`
			XP    int `json:"xp"`
			Gems  int `json:"gems"`
		} `json:"user"`
		Delta struct {
			XP   int `json:"xp"`
			Gems int `json:"gems"`
		} `json:"delta"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return err
	}

	if result.Delta.XP == 0 && result.Delta.Gems == 0 {
		fmt.Println("Task was already completed, nothing awarded")
		return nil
	}
	fmt.Printf("Completed! +%d xp, +%d gems (level %d, %d xp total)\n",
		result.Delta.XP, result.Delta.Gems, result.User.Level, result.User.XP)
	return nil
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	_, err := apiDelete("/tasks/" + args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Deleted task %s\n", args[0])
	return nil
}

// --- Helpers ---

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func truncateID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}
