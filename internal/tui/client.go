package tui

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultClientTimeout is the default timeout for API requests.
const DefaultClientTimeout = 10 * time.Second

// Client wraps HTTP calls to the Questline daemon.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new API client with timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultClientTimeout,
		},
	}
}

type profilePayload struct {
	Username          string `json:"username"`
	Level             int    `json:"level"`
	XP                int    `json:"xp"`
	Gems              int    `json:"gems"`
	Streak            int    `json:"streak"`
	XPForNextLevel    int    `json:"xp_for_next_level"`
	XPProgressPercent int    `json:"xp_progress_percent"`
}

type taskPayload struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Priority  string `json:"priority"`
	DueTime   string `json:"due_time"`
	XPReward  int    `json:"xp_reward"`
	GemReward int    `json:"gem_reward"`
	Completed bool   `json:"completed"`
}

func taskItems(tasks []taskPayload) []TaskItem {
	items := make([]TaskItem, len(tasks))
	for i, t := range tasks {
		items[i] = TaskItem{
			ID:        t.ID,
			TaskTitle: t.Title,
			Priority:  priorityOf(t.Priority),
			DueTime:   t.DueTime,
			XPReward:  t.XPReward,
			GemReward: t.GemReward,
			Completed: t.Completed,
		}
	}
	return items
}

func profileOf(p profilePayload) Profile {
	return Profile{
		Username:          p.Username,
		Level:             p.Level,
		XP:                p.XP,
		Gems:              p.Gems,
		Streak:            p.Streak,
		XPForNextLevel:    p.XPForNextLevel,
		XPProgressPercent: p.XPProgressPercent,
	}
}

// GetDashboard fetches the dashboard payload.
func (c *Client) GetDashboard() (*DashboardData, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/dashboard")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	var payload struct {
		User       profilePayload `json:"user"`
		TodayTasks []taskPayload  `json:"today_tasks"`
		Recent     []struct {
			Title string `json:"title"`
		} `json:"recent_achievements"`
		Stats struct {
			ProgressPercentage int `json:"progress_percentage"`
			CompletedTasks     int `json:"completed_tasks"`
			TotalTasks         int `json:"total_tasks"`
			EarnedXP           int `json:"earned_xp"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, err
	}

	recent := make([]string, len(payload.Recent))
	for i, a := range payload.Recent {
		recent[i] = a.Title
	}

	return &DashboardData{
		Profile: profileOf(payload.User),
		Tasks:   taskItems(payload.TodayTasks),
		Recent:  recent,
		Stats: Stats{
			ProgressPercentage: payload.Stats.ProgressPercentage,
			CompletedTasks:     payload.Stats.CompletedTasks,
			TotalTasks:         payload.Stats.TotalTasks,
			EarnedXP:           payload.Stats.EarnedXP,
		},
	}, nil
}

// ListTasks fetches tasks for a date. An empty date returns everything.
func (c *Client) ListTasks(date string) ([]TaskItem, error) {
	url := c.baseURL + "/tasks"
	if date != "" {
		url += "?date=" + date
	}

	resp, err := c.httpClient.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	var tasks []taskPayload
	if err := json.NewDecoder(resp.Body).Decode(&tasks); err != nil {
		return nil, err
	}
	return taskItems(tasks), nil
}

// CompleteTask completes a task and returns the refreshed profile plus
// the earned delta.
func (c *Client) CompleteTask(id string) (Profile, int, int, error) {
	resp, err := c.post("/tasks/"+id+"/complete", nil)
	if err != nil {
		return Profile{}, 0, 0, err
	}

	var result struct {
		User  profilePayload `json:"user"`
		Delta struct {
			XP   int `json:"xp"`
			Gems int `json:"gems"`
		} `json:"delta"`
	}
	if err := json.Unmarshal(resp, &result); err != nil {
		return Profile{}, 0, 0, err
	}
	return profileOf(result.User), result.Delta.XP, result.Delta.Gems, nil
}

func (c *Client) post(path string, data interface{}) ([]byte, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Post(c.baseURL+path, "application/json", bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("API error: %s", string(body))
	}

	return body, nil
}

// CheckHealth checks if the daemon is reachable.
func (c *Client) CheckHealth() (bool, error) {
	resp, err := c.httpClient.Get(c.baseURL + "/health")
	if err != nil {
		return false, err
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}
