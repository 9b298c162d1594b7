// Package reminder watches for approaching and overdue tasks.
package reminder

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/fentz26/questline/internal/models"
	"github.com/fentz26/questline/internal/store"
)

// Reminder runs a background loop that turns approaching due instants into
// notifications. The store dedupes per task and kind, so the loop can fire
// as often as it likes without spamming.
type Reminder struct {
	store  *store.Store
	config *Config

	mu      sync.Mutex
	scans   int
	emitted int

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// now is swappable for tests.
	now func() time.Time
}

// New creates a new reminder loop.
func New(s *store.Store, cfg *Config) *Reminder {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Reminder{
		store:  s,
		config: cfg,
		ctx:    ctx,
		cancel: cancel,
		now:    time.Now,
	}
}

// Start begins the reminder loop.
func (r *Reminder) Start() {
	r.wg.Add(1)
	go r.loop()
	log.Println("Reminder loop started")
}

// Stop gracefully stops the reminder loop.
func (r *Reminder) Stop() {
	r.cancel()
	r.wg.Wait()
	log.Println("Reminder loop stopped")
}

func (r *Reminder) loop() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if err := r.Scan(r.now()); err != nil {
				log.Printf("Reminder scan error: %v", err)
			}
		}
	}
}

// Scan performs one pass at the given instant: tasks whose due instant
// falls within the window become due-soon notifications, tasks already
// past due become overdue notifications.
func (r *Reminder) Scan(now time.Time) error {
	dueSoon, err := r.store.TasksDueBetween(now, now.Add(r.config.Window))
	if err != nil {
		return fmt.Errorf("scan due soon: %w", err)
	}
	for _, task := range dueSoon {
		msg := fmt.Sprintf("%q is due at %s", task.Title, task.DueTime)
		if err := r.notify(task, models.NotificationDueSoon, msg); err != nil {
			return err
		}
	}

	// Anything due in the past and still incomplete is overdue. The lower
	// bound only needs to predate every stored task date.
	overdue, err := r.store.TasksDueBetween(now.AddDate(-10, 0, 0), now)
	if err != nil {
		return fmt.Errorf("scan overdue: %w", err)
	}
	for _, task := range overdue {
		msg := fmt.Sprintf("%q was due %s %s", task.Title, task.Date, task.DueTime)
		if err := r.notify(task, models.NotificationOverdue, msg); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.scans++
	r.mu.Unlock()
	return nil
}

func (r *Reminder) notify(task models.Task, kind, msg string) error {
	created, err := r.store.CreateNotificationOnce(task.UserID, task.ID, kind, msg)
	if err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	if created {
		log.Printf("Notification (%s): %s", kind, msg)
		r.mu.Lock()
		r.emitted++
		r.mu.Unlock()
	}
	return nil
}

// Stats returns counters for the daemon's introspection endpoints.
func (r *Reminder) Stats() map[string]int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return map[string]int{
		"scans":   r.scans,
		"emitted": r.emitted,
	}
}
