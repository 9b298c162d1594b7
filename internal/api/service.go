// Package api provides the HTTP API and service layer for Questline.
package api

import (
	"fmt"
	"math"
	"time"

	"github.com/fentz26/questline/internal/journal"
	"github.com/fentz26/questline/internal/models"
	"github.com/fentz26/questline/internal/progression"
	"github.com/fentz26/questline/internal/reward"
	"github.com/fentz26/questline/internal/store"
)

// Service provides the Questline business logic on top of the store. The
// daemon serves a single local profile, so the owning user is fixed at
// construction.
type Service struct {
	store   *store.Store
	journal *journal.Writer
	userID  string

	// now is swappable for tests.
	now func() time.Time
}

// NewService creates a new service for the given user.
func NewService(s *store.Store, jw *journal.Writer, userID string) *Service {
	return &Service{
		store:   s,
		journal: jw,
		userID:  userID,
		now:     time.Now,
	}
}

// UserProfile is a user plus the progression values derived from XP.
type UserProfile struct {
	models.User
	XPForNextLevel    int `json:"xp_for_next_level"`
	XPProgressPercent int `json:"xp_progress_percent"`
}

func profileOf(u models.User) UserProfile {
	return UserProfile{
		User:              u,
		XPForNextLevel:    progression.XPForNextLevel(u.XP),
		XPProgressPercent: progression.XPProgressPercent(u.XP),
	}
}

// Profile returns the daemon user's profile with derived progression.
func (s *Service) Profile() (*UserProfile, error) {
	user, err := s.store.GetUser(s.userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, store.ErrUserNotFound
	}
	p := profileOf(*user)
	return &p, nil
}

// --- Goal Operations ---

// CreateGoal creates a goal and its generated milestone timeline.
func (s *Service) CreateGoal(title, description string, goalType models.GoalType, deadline string) (*models.Goal, []models.Task, error) {
	goal, tasks, err := s.store.CreateGoalWithTimeline(s.userID, title, description, goalType, deadline, s.now())
	if err != nil {
		return nil, nil, err
	}

	s.journal.Record("goal.create",
		map[string]interface{}{"title": title, "type": string(goalType), "deadline": deadline},
		"success", s.userID, fmt.Sprintf("%d milestones", len(tasks)))
	return goal, tasks, nil
}

// ListGoals returns the user's goals.
func (s *Service) ListGoals() ([]models.Goal, error) {
	return s.store.ListGoals(s.userID)
}

// GetGoal returns a goal together with its milestone tasks.
func (s *Service) GetGoal(id string) (*models.Goal, []models.Task, error) {
	goal, err := s.store.GetGoal(id)
	if err != nil {
		return nil, nil, err
	}
	if goal == nil {
		return nil, nil, store.ErrGoalNotFound
	}

	tasks, err := s.store.ListTasks(s.userID, "", id)
	if err != nil {
		return nil, nil, err
	}
	return goal, tasks, nil
}

// CompleteGoal marks a goal completed. Goal completion itself awards
// nothing; rewards flow through the milestone tasks.
func (s *Service) CompleteGoal(id string) (*models.Goal, error) {
	goal, err := s.store.CompleteGoal(id, s.now())
	if err != nil {
		return nil, err
	}
	s.journal.Record("goal.complete", map[string]string{"goal_id": id}, "success", s.userID, "")
	return goal, nil
}

// DeleteGoal removes a goal, detaching its tasks.
func (s *Service) DeleteGoal(id string) error {
	if err := s.store.DeleteGoal(id); err != nil {
		return err
	}
	s.journal.Record("goal.delete", map[string]string{"goal_id": id}, "success", s.userID, "")
	return nil
}

// --- Task Operations ---

// CreateTask creates a standalone task for the user.
func (s *Service) CreateTask(t models.Task) (*models.Task, error) {
	t.UserID = s.userID
	task, err := s.store.CreateTask(t)
	if err != nil {
		return nil, err
	}
	s.journal.Record("task.create", map[string]string{"title": task.Title, "date": task.Date}, "success", s.userID, "")
	return task, nil
}

// GetTask retrieves a task by ID.
func (s *Service) GetTask(id string) (*models.Task, error) {
	task, err := s.store.GetTask(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, store.ErrTaskNotFound
	}
	return task, nil
}

// ListTasks returns the user's tasks with optional date and goal filters.
func (s *Service) ListTasks(date, goalID string) ([]models.Task, error) {
	return s.store.ListTasks(s.userID, date, goalID)
}

// UpdateTask applies an edit to a task's editable fields.
func (s *Service) UpdateTask(t models.Task) (*models.Task, error) {
	task, err := s.store.UpdateTask(t)
	if err != nil {
		return nil, err
	}
	s.journal.Record("task.update", map[string]string{"task_id": t.ID}, "success", s.userID, "")
	return task, nil
}

// DeleteTask removes a task.
func (s *Service) DeleteTask(id string) error {
	if err := s.store.DeleteTask(id); err != nil {
		return err
	}
	s.journal.Record("task.delete", map[string]string{"task_id": id}, "success", s.userID, "")
	return nil
}

// CompleteTask completes a task, credits the reward, and records a level-up
// achievement when the new XP crosses a level boundary.
func (s *Service) CompleteTask(id string) (*models.Task, *models.User, reward.Delta, error) {
	task, user, delta, err := s.store.CompleteTaskTx(id, s.now())
	if err != nil {
		return nil, nil, reward.Delta{}, err
	}

	if delta.XP > 0 || delta.Gems > 0 {
		s.maybeAwardLevelUp(user, delta.XP)
		s.journal.Record("task.complete",
			map[string]interface{}{"task_id": id, "xp": delta.XP, "gems": delta.Gems},
			"success", s.userID, "")
	}
	return task, user, delta, nil
}

// --- Session Operations ---

// CreateSession starts a focus session, optionally linked to a task.
func (s *Service) CreateSession(taskID string, duration int) (*models.FocusSession, error) {
	sess, err := s.store.CreateSession(s.userID, taskID, duration)
	if err != nil {
		return nil, err
	}
	s.journal.Record("session.create", map[string]interface{}{"task_id": taskID, "duration": duration}, "success", s.userID, "")
	return sess, nil
}

// ListSessions returns the user's focus sessions.
func (s *Service) ListSessions() ([]models.FocusSession, error) {
	return s.store.ListSessions(s.userID)
}

// CompleteSession completes a focus session and credits the bonus XP.
func (s *Service) CompleteSession(id string) (*models.FocusSession, *models.User, int, error) {
	sess, user, xp, err := s.store.CompleteSessionTx(id, s.now())
	if err != nil {
		return nil, nil, 0, err
	}

	if xp > 0 {
		s.maybeAwardLevelUp(user, xp)
		s.journal.Record("session.complete",
			map[string]interface{}{"session_id": id, "xp": xp},
			"success", s.userID, "")
	}
	return sess, user, xp, nil
}

// maybeAwardLevelUp records a level-up achievement when the XP gained in
// this completion crossed a level boundary.
func (s *Service) maybeAwardLevelUp(user *models.User, gained int) {
	before := progression.Level(user.XP - gained)
	if user.Level <= before {
		return
	}
	s.store.CreateAchievement(user.ID, "level_up",
		fmt.Sprintf("Level %d Reached", user.Level),
		fmt.Sprintf("Earned enough XP to reach level %d", user.Level))
}

// --- Achievement / Notification Operations ---

// Achievements returns the user's achievements.
func (s *Service) Achievements() ([]models.Achievement, error) {
	return s.store.ListAchievements(s.userID)
}

// Notifications returns the user's reminder notifications.
func (s *Service) Notifications() ([]models.Notification, error) {
	return s.store.ListNotifications(s.userID)
}

// --- Dashboard ---

// DashboardStats summarizes today's progress.
type DashboardStats struct {
	ProgressPercentage int `json:"progress_percentage"`
	CompletedTasks     int `json:"completed_tasks"`
	TotalTasks         int `json:"total_tasks"`
	EarnedXP           int `json:"earned_xp"`
}

// Dashboard is the home-screen payload: profile, today's tasks, the two
// most recent achievements, and today's stats.
type Dashboard struct {
	User               UserProfile          `json:"user"`
	TodayTasks         []models.Task        `json:"today_tasks"`
	RecentAchievements []models.Achievement `json:"recent_achievements"`
	Stats              DashboardStats       `json:"stats"`
}

// GetDashboard assembles the dashboard for the current day.
func (s *Service) GetDashboard() (*Dashboard, error) {
	profile, err := s.Profile()
	if err != nil {
		return nil, err
	}

	today := s.now().Format(models.DateLayout)
	tasks, err := s.store.ListTasks(s.userID, today, "")
	if err != nil {
		return nil, err
	}

	achievements, err := s.store.ListAchievements(s.userID)
	if err != nil {
		return nil, err
	}
	// Latest two, newest first.
	recent := []models.Achievement{}
	for i := len(achievements) - 1; i >= 0 && len(recent) < 2; i-- {
		recent = append(recent, achievements[i])
	}

	stats := DashboardStats{TotalTasks: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			stats.CompletedTasks++
			stats.EarnedXP += t.XPReward
		}
	}
	if stats.TotalTasks > 0 {
		stats.ProgressPercentage = int(math.Round(float64(stats.CompletedTasks) / float64(stats.TotalTasks) * 100))
	}

	return &Dashboard{
		User:               *profile,
		TodayTasks:         tasks,
		RecentAchievements: recent,
		Stats:              stats,
	}, nil
}
