package reminder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/questline/internal/models"
	"github.com/fentz26/questline/internal/store"
)

func TestScan_DueSoon(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	user, _ := s.EnsureUser("alex")
	s.CreateTask(models.Task{UserID: user.ID, Title: "Soon", Date: "2025-03-10", DueTime: "12:30", XPReward: 20, GemReward: 1})
	s.CreateTask(models.Task{UserID: user.ID, Title: "Tomorrow", Date: "2025-03-11", DueTime: "18:00", XPReward: 20, GemReward: 1})

	r := New(s, &Config{Interval: time.Minute, Window: time.Hour})
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if err := r.Scan(now); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	notifications, _ := s.ListNotifications(user.ID)
	if len(notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Kind != models.NotificationDueSoon {
		t.Errorf("Kind = %s, want due_soon", notifications[0].Kind)
	}
}

func TestScan_Overdue(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	user, _ := s.EnsureUser("alex")
	s.CreateTask(models.Task{UserID: user.ID, Title: "Missed", Date: "2025-03-09", DueTime: "18:00", XPReward: 20, GemReward: 1})

	r := New(s, DefaultConfig())
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	if err := r.Scan(now); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	notifications, _ := s.ListNotifications(user.ID)
	if len(notifications) != 1 {
		t.Fatalf("Expected 1 notification, got %d", len(notifications))
	}
	if notifications[0].Kind != models.NotificationOverdue {
		t.Errorf("Kind = %s, want overdue", notifications[0].Kind)
	}
}

func TestScan_NoDuplicates(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	user, _ := s.EnsureUser("alex")
	s.CreateTask(models.Task{UserID: user.ID, Title: "Soon", Date: "2025-03-10", DueTime: "12:30", XPReward: 20, GemReward: 1})

	r := New(s, &Config{Interval: time.Minute, Window: time.Hour})
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		if err := r.Scan(now.Add(time.Duration(i) * time.Minute)); err != nil {
			t.Fatalf("Scan %d failed: %v", i, err)
		}
	}

	notifications, _ := s.ListNotifications(user.ID)
	if len(notifications) != 1 {
		t.Errorf("Expected 1 notification after repeated scans, got %d", len(notifications))
	}

	stats := r.Stats()
	if stats["scans"] != 3 {
		t.Errorf("Scans = %d, want 3", stats["scans"])
	}
	if stats["emitted"] != 1 {
		t.Errorf("Emitted = %d, want 1", stats["emitted"])
	}
}

func TestScan_CompletedTasksIgnored(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	user, _ := s.EnsureUser("alex")
	task, _ := s.CreateTask(models.Task{UserID: user.ID, Title: "Done", Date: "2025-03-10", DueTime: "12:30", XPReward: 20, GemReward: 1})
	s.CompleteTaskTx(task.ID, time.Date(2025, 3, 10, 11, 0, 0, 0, time.UTC))

	r := New(s, &Config{Interval: time.Minute, Window: time.Hour})
	if err := r.Scan(time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	notifications, _ := s.ListNotifications(user.ID)
	if len(notifications) != 0 {
		t.Errorf("Completed tasks should not trigger reminders, got %d", len(notifications))
	}
}

func newTestStore(t *testing.T) *store.Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := store.New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}
