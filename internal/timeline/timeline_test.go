package timeline

import (
	"testing"
	"time"

	"github.com/fentz26/questline/internal/models"
)

var today = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

func shortTermGoal(deadline string) models.Goal {
	return models.Goal{
		ID:       "goal-1",
		UserID:   "user-1",
		Title:    "Learn Go",
		Type:     models.GoalShortTerm,
		Deadline: deadline,
	}
}

func TestGenerate_DeadlineToday(t *testing.T) {
	specs, err := Generate(shortTermGoal("2025-03-10"), today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 0 {
		t.Errorf("Expected empty timeline for deadline == today, got %d specs", len(specs))
	}
}

func TestGenerate_DeadlinePast(t *testing.T) {
	specs, err := Generate(shortTermGoal("2025-03-01"), today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 0 {
		t.Errorf("Expected empty timeline for past deadline, got %d specs", len(specs))
	}
}

func TestGenerate_ShortTermTenDays(t *testing.T) {
	specs, err := Generate(shortTermGoal("2025-03-20"), today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 7 {
		t.Fatalf("Expected 7 milestones for a 10-day span, got %d", len(specs))
	}

	for i, s := range specs {
		want := models.PriorityMedium
		if i == 6 {
			want = models.PriorityHigh
		}
		if s.Priority != want {
			t.Errorf("Milestone %d priority = %s, want %s", i+1, s.Priority, want)
		}
		if s.XPReward != 30 || s.GemReward != 2 {
			t.Errorf("Milestone %d rewards = %d XP / %d gems, want 30/2", i+1, s.XPReward, s.GemReward)
		}
		if s.EstimatedTime != 60 {
			t.Errorf("Milestone %d estimate = %d, want 60", i+1, s.EstimatedTime)
		}
		if s.DueTime != "18:00" {
			t.Errorf("Milestone %d due time = %s, want 18:00", i+1, s.DueTime)
		}
		if s.Category != "personal" {
			t.Errorf("Milestone %d category = %s, want personal", i+1, s.Category)
		}
		if s.Date < "2025-03-10" || s.Date >= "2025-03-20" {
			t.Errorf("Milestone %d date %s outside [today, deadline)", i+1, s.Date)
		}
	}

	if specs[0].Title != "Learn Go - Milestone 1" {
		t.Errorf("Unexpected first title: %s", specs[0].Title)
	}
	if specs[6].Title != "Learn Go - Milestone 7" {
		t.Errorf("Unexpected last title: %s", specs[6].Title)
	}
}

func TestGenerate_ShortTermFewDays(t *testing.T) {
	// 3-day span yields one milestone per day.
	specs, err := Generate(shortTermGoal("2025-03-13"), today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("Expected 3 milestones, got %d", len(specs))
	}
	wantDates := []string{"2025-03-10", "2025-03-11", "2025-03-12"}
	for i, s := range specs {
		if s.Date != wantDates[i] {
			t.Errorf("Milestone %d date = %s, want %s", i+1, s.Date, wantDates[i])
		}
	}
}

func TestGenerate_Ordering(t *testing.T) {
	specs, err := Generate(shortTermGoal("2025-03-20"), today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	for i := 1; i < len(specs); i++ {
		if specs[i].Date < specs[i-1].Date {
			t.Errorf("Dates not ascending: %s before %s", specs[i-1].Date, specs[i].Date)
		}
	}
}

func TestGenerate_LongTermTwentyDays(t *testing.T) {
	goal := models.Goal{
		ID:       "goal-2",
		UserID:   "user-1",
		Title:    "Run a 10k",
		Type:     models.GoalLongTerm,
		Deadline: "2025-03-30",
	}

	specs, err := Generate(goal, today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("Expected 3 weekly checkpoints for a 20-day span, got %d", len(specs))
	}

	wantDates := []string{"2025-03-10", "2025-03-17", "2025-03-24"}
	for i, s := range specs {
		if s.Date != wantDates[i] {
			t.Errorf("Week %d date = %s, want %s", i+1, s.Date, wantDates[i])
		}
		if s.Date > "2025-03-30" {
			t.Errorf("Week %d dated past the deadline: %s", i+1, s.Date)
		}
		if s.XPReward != 50 || s.GemReward != 3 {
			t.Errorf("Week %d rewards = %d XP / %d gems, want 50/3", i+1, s.XPReward, s.GemReward)
		}
		if s.EstimatedTime != 120 {
			t.Errorf("Week %d estimate = %d, want 120", i+1, s.EstimatedTime)
		}
	}

	if specs[0].Title != "Run a 10k - Week 1 Progress" {
		t.Errorf("Unexpected first title: %s", specs[0].Title)
	}
	if specs[2].Priority != models.PriorityHigh {
		t.Errorf("Last checkpoint priority = %s, want high", specs[2].Priority)
	}
	if specs[0].Priority != models.PriorityMedium || specs[1].Priority != models.PriorityMedium {
		t.Error("Non-final checkpoints should be medium priority")
	}
}

func TestGenerate_ShortTermAcrossDSTFallBack(t *testing.T) {
	// Berlin leaves DST on 2025-10-26; that day has 25 wall-clock hours.
	// The span must still count calendar days, not elapsed hours.
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("Europe/Berlin not available: %v", err)
	}

	localToday := time.Date(2025, 10, 25, 9, 0, 0, 0, berlin)
	specs, err := Generate(shortTermGoal("2025-10-28"), localToday)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 3 {
		t.Fatalf("Expected 3 milestones for a 3-day span, got %d", len(specs))
	}

	wantDates := []string{"2025-10-25", "2025-10-26", "2025-10-27"}
	for i, s := range specs {
		if s.Date != wantDates[i] {
			t.Errorf("Milestone %d date = %s, want %s", i+1, s.Date, wantDates[i])
		}
		if s.Date >= "2025-10-28" {
			t.Errorf("Milestone %d dated on/after the deadline: %s", i+1, s.Date)
		}
	}
}

func TestGenerate_LongTermAcrossDSTFallBack(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	if err != nil {
		t.Skipf("Europe/Berlin not available: %v", err)
	}

	goal := models.Goal{
		ID:       "goal-3",
		UserID:   "user-1",
		Title:    "Run a 10k",
		Type:     models.GoalLongTerm,
		Deadline: "2025-11-08", // 14 calendar days, crossing Oct 26
	}

	localToday := time.Date(2025, 10, 25, 9, 0, 0, 0, berlin)
	specs, err := Generate(goal, localToday)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(specs) != 2 {
		t.Fatalf("Expected 2 weekly checkpoints for a 14-day span, got %d", len(specs))
	}
	wantDates := []string{"2025-10-25", "2025-11-01"}
	for i, s := range specs {
		if s.Date != wantDates[i] {
			t.Errorf("Week %d date = %s, want %s", i+1, s.Date, wantDates[i])
		}
	}
	if specs[1].Priority != models.PriorityHigh {
		t.Errorf("Final checkpoint priority = %s, want high", specs[1].Priority)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	goal := shortTermGoal("2025-03-20")
	a, err := Generate(goal, today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	b, err := Generate(goal, today)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("Generation is not deterministic: %d vs %d specs", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("Spec %d differs between identical calls", i)
		}
	}
}

func TestGenerate_BadDeadline(t *testing.T) {
	_, err := Generate(shortTermGoal("20-03-2025"), today)
	if err == nil {
		t.Error("Expected error for malformed deadline")
	}
}
