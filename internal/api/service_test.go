package api

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/questline/internal/journal"
	"github.com/fentz26/questline/internal/models"
	"github.com/fentz26/questline/internal/store"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *store.Store) {
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	user, err := s.EnsureUser("alex")
	if err != nil {
		t.Fatalf("Failed to ensure user: %v", err)
	}

	svc := NewService(s, journal.NewWriter(s), user.ID)
	svc.now = func() time.Time { return testNow }
	return svc, s
}

func TestCreateGoal_GeneratesTimeline(t *testing.T) {
	svc, _ := newTestService(t)

	goal, tasks, err := svc.CreateGoal("Learn Spanish", "", models.GoalShortTerm, "2025-03-20")
	if err != nil {
		t.Fatalf("CreateGoal failed: %v", err)
	}
	if len(tasks) != 7 {
		t.Errorf("Expected 7 milestones for a 10-day goal, got %d", len(tasks))
	}

	fetched, milestones, err := svc.GetGoal(goal.ID)
	if err != nil {
		t.Fatalf("GetGoal failed: %v", err)
	}
	if fetched.Title != "Learn Spanish" {
		t.Errorf("Title = %s", fetched.Title)
	}
	if len(milestones) != len(tasks) {
		t.Errorf("GetGoal returned %d milestones, want %d", len(milestones), len(tasks))
	}
}

func TestGetGoal_NotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, _, err := svc.GetGoal("nope")
	if !errors.Is(err, store.ErrGoalNotFound) {
		t.Errorf("Expected ErrGoalNotFound, got %v", err)
	}
}

func TestCompleteTask_AwardsLevelUp(t *testing.T) {
	svc, _ := newTestService(t)

	task, err := svc.CreateTask(models.Task{Title: "Big push", Date: "2025-03-10", XPReward: 100, GemReward: 1})
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	_, user, delta, err := svc.CompleteTask(task.ID)
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if delta.XP != 100 {
		t.Errorf("Delta XP = %d, want 100", delta.XP)
	}
	if user.Level != 2 {
		t.Errorf("Level = %d, want 2", user.Level)
	}

	achievements, err := svc.Achievements()
	if err != nil {
		t.Fatalf("Achievements failed: %v", err)
	}
	if len(achievements) != 1 {
		t.Fatalf("Expected 1 achievement, got %d", len(achievements))
	}
	if achievements[0].Type != "level_up" {
		t.Errorf("Type = %s, want level_up", achievements[0].Type)
	}
	if achievements[0].Title != "Level 2 Reached" {
		t.Errorf("Title = %s", achievements[0].Title)
	}
}

func TestCompleteTask_NoLevelUpBelowBoundary(t *testing.T) {
	svc, _ := newTestService(t)

	task, _ := svc.CreateTask(models.Task{Title: "Small chore", Date: "2025-03-10", XPReward: 20, GemReward: 1})

	if _, _, _, err := svc.CompleteTask(task.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	achievements, _ := svc.Achievements()
	if len(achievements) != 0 {
		t.Errorf("Expected no achievements, got %d", len(achievements))
	}
}

func TestCompleteTask_IdempotentNoDoubleAchievement(t *testing.T) {
	svc, _ := newTestService(t)

	task, _ := svc.CreateTask(models.Task{Title: "Big push", Date: "2025-03-10", XPReward: 100, GemReward: 1})

	svc.CompleteTask(task.ID)
	_, user, delta, err := svc.CompleteTask(task.ID)
	if err != nil {
		t.Fatalf("Second CompleteTask failed: %v", err)
	}
	if delta.XP != 0 || delta.Gems != 0 {
		t.Errorf("Second completion delta = %+v, want zero", delta)
	}
	if user.XP != 100 {
		t.Errorf("XP = %d, want 100", user.XP)
	}

	achievements, _ := svc.Achievements()
	if len(achievements) != 1 {
		t.Errorf("Expected 1 achievement after repeat completion, got %d", len(achievements))
	}
}

func TestCompleteSession_CreditsXP(t *testing.T) {
	svc, _ := newTestService(t)

	sess, err := svc.CreateSession("", 25)
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	_, user, xp, err := svc.CompleteSession(sess.ID)
	if err != nil {
		t.Fatalf("CompleteSession failed: %v", err)
	}
	if xp != 5 {
		t.Errorf("XP = %d, want 5", xp)
	}
	if user.XP != 5 {
		t.Errorf("User XP = %d, want 5", user.XP)
	}
}

func TestGetDashboard(t *testing.T) {
	svc, _ := newTestService(t)

	done, _ := svc.CreateTask(models.Task{Title: "Done today", Date: "2025-03-10", XPReward: 20, GemReward: 1})
	svc.CreateTask(models.Task{Title: "Still open", Date: "2025-03-10", XPReward: 20, GemReward: 1})
	svc.CreateTask(models.Task{Title: "Tomorrow", Date: "2025-03-11", XPReward: 20, GemReward: 1})
	svc.CompleteTask(done.ID)

	dash, err := svc.GetDashboard()
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}

	if len(dash.TodayTasks) != 2 {
		t.Errorf("TodayTasks = %d, want 2", len(dash.TodayTasks))
	}
	if dash.Stats.TotalTasks != 2 || dash.Stats.CompletedTasks != 1 {
		t.Errorf("Stats = %+v", dash.Stats)
	}
	if dash.Stats.ProgressPercentage != 50 {
		t.Errorf("ProgressPercentage = %d, want 50", dash.Stats.ProgressPercentage)
	}
	if dash.Stats.EarnedXP != 20 {
		t.Errorf("EarnedXP = %d, want 20", dash.Stats.EarnedXP)
	}
	if dash.User.XP != 20 {
		t.Errorf("User XP = %d, want 20", dash.User.XP)
	}
	if dash.User.XPForNextLevel != 100 {
		t.Errorf("XPForNextLevel = %d, want 100", dash.User.XPForNextLevel)
	}
}

func TestGetDashboard_RecentAchievementsNewestFirst(t *testing.T) {
	svc, s := newTestService(t)

	user, _ := s.GetUserByUsername("alex")
	s.CreateAchievement(user.ID, "level_up", "First", "")
	s.CreateAchievement(user.ID, "level_up", "Second", "")
	s.CreateAchievement(user.ID, "level_up", "Third", "")

	dash, err := svc.GetDashboard()
	if err != nil {
		t.Fatalf("GetDashboard failed: %v", err)
	}
	if len(dash.RecentAchievements) != 2 {
		t.Fatalf("RecentAchievements = %d, want 2", len(dash.RecentAchievements))
	}
	if dash.RecentAchievements[0].Title != "Third" || dash.RecentAchievements[1].Title != "Second" {
		t.Errorf("Recent = [%s, %s], want newest first", dash.RecentAchievements[0].Title, dash.RecentAchievements[1].Title)
	}
}
