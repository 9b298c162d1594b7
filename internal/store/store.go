// Package store provides SQLite-backed persistence for Questline.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fentz26/questline/internal/models"
	"github.com/fentz26/questline/internal/reward"
	"github.com/fentz26/questline/internal/timeline"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrTaskNotFound indicates a completion was requested for a missing task.
var ErrTaskNotFound = fmt.Errorf("task not found")

// ErrSessionNotFound indicates a completion was requested for a missing session.
var ErrSessionNotFound = fmt.Errorf("session not found")

// ErrGoalNotFound indicates the goal does not exist.
var ErrGoalNotFound = fmt.Errorf("goal not found")

// ErrUserNotFound indicates the user does not exist.
var ErrUserNotFound = fmt.Errorf("user not found")

// Store provides access to the Questline SQLite database.
type Store struct {
	db *sql.DB
}

// New creates a new Store and runs migrations.
func New(dbPath string) (*Store, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Open with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection is alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		level INTEGER NOT NULL DEFAULT 1,
		xp INTEGER NOT NULL DEFAULT 0,
		gems INTEGER NOT NULL DEFAULT 0,
		streak INTEGER NOT NULL DEFAULT 0,
		last_active_date TEXT
	);

	CREATE TABLE IF NOT EXISTS goals (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		type TEXT NOT NULL,
		deadline TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		goal_id TEXT,
		title TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT 'personal',
		priority TEXT NOT NULL DEFAULT 'medium',
		estimated_time INTEGER,
		external_links TEXT,
		xp_reward INTEGER NOT NULL DEFAULT 20,
		gem_reward INTEGER NOT NULL DEFAULT 1,
		due_time TEXT,
		date TEXT NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		completed_at DATETIME,
		completed_on_time INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		task_id TEXT,
		duration INTEGER NOT NULL,
		completed INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL,
		completed_at DATETIME,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT,
		earned_at DATETIME NOT NULL,
		FOREIGN KEY (user_id) REFERENCES users(id)
	);

	CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		message TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		UNIQUE (task_id, kind)
	);

	CREATE TABLE IF NOT EXISTS journal (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		inputs_hash TEXT NOT NULL,
		outcome TEXT NOT NULL,
		user_id TEXT,
		details TEXT,
		timestamp DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_goals_user_id ON goals(user_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_user_date ON tasks(user_id, date);
	CREATE INDEX IF NOT EXISTS idx_tasks_goal_id ON tasks(goal_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
	CREATE INDEX IF NOT EXISTS idx_achievements_user_id ON achievements(user_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// --- User Operations ---

// CreateUser inserts a new user with zeroed progression.
func (s *Store) CreateUser(username string) (*models.User, error) {
	user := &models.User{
		ID:       uuid.New().String(),
		Username: username,
		Level:    1,
	}

	_, err := s.db.Exec(
		`INSERT INTO users (id, username, level, xp, gems, streak) VALUES (?, ?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Level, user.XP, user.Gems, user.Streak,
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(id string) (*models.User, error) {
	return s.queryUser(`SELECT id, username, level, xp, gems, streak, last_active_date FROM users WHERE id = ?`, id)
}

// GetUserByUsername retrieves a user by username.
func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	return s.queryUser(`SELECT id, username, level, xp, gems, streak, last_active_date FROM users WHERE username = ?`, username)
}

func (s *Store) queryUser(query string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	var lastActive sql.NullString

	err := s.db.QueryRow(query, arg).
		Scan(&user.ID, &user.Username, &user.Level, &user.XP, &user.Gems, &user.Streak, &lastActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	user.LastActiveDate = lastActive.String
	return user, nil
}

// EnsureUser returns the user with the given username, creating it first
// if needed. The daemon uses this to provision the local profile.
func (s *Store) EnsureUser(username string) (*models.User, error) {
	user, err := s.GetUserByUsername(username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}
	return s.CreateUser(username)
}

// --- Goal Operations ---

// CreateGoalWithTimeline inserts a goal and its generated milestone tasks
// in a single transaction. A partial timeline would leave the goal
// inconsistent, so either everything lands or nothing does.
func (s *Store) CreateGoalWithTimeline(userID, title, description string, goalType models.GoalType, deadline string, today time.Time) (*models.Goal, []models.Task, error) {
	goal := models.Goal{
		ID:          uuid.New().String(),
		UserID:      userID,
		Title:       title,
		Description: description,
		Type:        goalType,
		Deadline:    deadline,
		CreatedAt:   time.Now().UTC(),
	}

	specs, err := timeline.Generate(goal, today)
	if err != nil {
		return nil, nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO goals (id, user_id, title, description, type, deadline, completed, created_at) VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
		goal.ID, goal.UserID, goal.Title, goal.Description, goal.Type, goal.Deadline, goal.CreatedAt,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("insert goal: %w", err)
	}

	tasks := make([]models.Task, 0, len(specs))
	for _, spec := range specs {
		task := models.Task{
			ID:            uuid.New().String(),
			UserID:        userID,
			GoalID:        goal.ID,
			Title:         spec.Title,
			Category:      spec.Category,
			Priority:      spec.Priority,
			EstimatedTime: spec.EstimatedTime,
			XPReward:      spec.XPReward,
			GemReward:     spec.GemReward,
			DueTime:       spec.DueTime,
			Date:          spec.Date,
			CreatedAt:     goal.CreatedAt,
		}

		_, err = tx.Exec(
			`INSERT INTO tasks (id, user_id, goal_id, title, category, priority, estimated_time, xp_reward, gem_reward, due_time, date, completed, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
			task.ID, task.UserID, task.GoalID, task.Title, task.Category, task.Priority,
			task.EstimatedTime, task.XPReward, task.GemReward, task.DueTime, task.Date, task.CreatedAt,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("insert milestone task: %w", err)
		}
		tasks = append(tasks, task)
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit transaction: %w", err)
	}

	return &goal, tasks, nil
}

// GetGoal retrieves a goal by ID.
func (s *Store) GetGoal(id string) (*models.Goal, error) {
	goal := &models.Goal{}
	var description sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRow(
		`SELECT id, user_id, title, description, type, deadline, completed, completed_at, created_at FROM goals WHERE id = ?`,
		id,
	).Scan(&goal.ID, &goal.UserID, &goal.Title, &description, &goal.Type, &goal.Deadline, &goal.Completed, &completedAt, &goal.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query goal: %w", err)
	}
	goal.Description = description.String
	if completedAt.Valid {
		goal.CompletedAt = &completedAt.Time
	}
	return goal, nil
}

// ListGoals returns all goals for a user, newest first.
func (s *Store) ListGoals(userID string) ([]models.Goal, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, title, description, type, deadline, completed, completed_at, created_at FROM goals WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var goals []models.Goal
	for rows.Next() {
		var goal models.Goal
		var description sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&goal.ID, &goal.UserID, &goal.Title, &description, &goal.Type, &goal.Deadline, &goal.Completed, &completedAt, &goal.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		goal.Description = description.String
		if completedAt.Valid {
			goal.CompletedAt = &completedAt.Time
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

// CompleteGoal marks a goal completed. Goal completion carries no reward;
// rewards flow through its milestone tasks.
func (s *Store) CompleteGoal(id string, now time.Time) (*models.Goal, error) {
	res, err := s.db.Exec(
		`UPDATE goals SET completed = 1, completed_at = ? WHERE id = ? AND completed = 0`,
		now, id,
	)
	if err != nil {
		return nil, fmt.Errorf("complete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// Either absent or already completed; distinguish via lookup.
		goal, err := s.GetGoal(id)
		if err != nil {
			return nil, err
		}
		if goal == nil {
			return nil, ErrGoalNotFound
		}
		return goal, nil
	}
	return s.GetGoal(id)
}

// DeleteGoal removes a goal and detaches its tasks. Tasks keep their rows:
// the goal reference is weak and must not cascade.
func (s *Store) DeleteGoal(id string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`UPDATE tasks SET goal_id = NULL WHERE goal_id = ?`, id); err != nil {
		return fmt.Errorf("detach tasks: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM goals WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrGoalNotFound
	}

	return tx.Commit()
}

// --- Task Operations ---

const taskColumns = `id, user_id, goal_id, title, category, priority, estimated_time, external_links, xp_reward, gem_reward, due_time, date, completed, completed_at, completed_on_time, created_at`

// CreateTask inserts a standalone task. Missing category defaults to
// "personal", missing priority to medium.
func (s *Store) CreateTask(t models.Task) (*models.Task, error) {
	t.ID = uuid.New().String()
	t.CreatedAt = time.Now().UTC()
	t.Completed = false
	t.CompletedAt = nil
	t.CompletedOnTime = false
	if t.Category == "" {
		t.Category = "personal"
	}
	if t.Priority == "" {
		t.Priority = models.PriorityMedium
	}

	links, err := encodeLinks(t.ExternalLinks)
	if err != nil {
		return nil, err
	}

	_, err = s.db.Exec(
		`INSERT INTO tasks (id, user_id, goal_id, title, category, priority, estimated_time, external_links, xp_reward, gem_reward, due_time, date, completed, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		t.ID, t.UserID, nullString(t.GoalID), t.Title, t.Category, t.Priority,
		t.EstimatedTime, links, t.XPReward, t.GemReward, t.DueTime, t.Date, t.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return &t, nil
}

// GetTask retrieves a task by ID.
func (s *Store) GetTask(id string) (*models.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query task: %w", err)
	}
	return task, nil
}

// ListTasks returns a user's tasks, optionally filtered by date and goal,
// ordered by date then due time.
func (s *Store) ListTasks(userID, date, goalID string) ([]models.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []interface{}{userID}

	if date != "" {
		query += ` AND date = ?`
		args = append(args, date)
	}
	if goalID != "" {
		query += ` AND goal_id = ?`
		args = append(args, goalID)
	}
	query += ` ORDER BY date ASC, due_time ASC, created_at ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// UpdateTask applies an explicit edit to a task's editable fields.
// Completion state is owned by CompleteTaskTx and is never touched here.
func (s *Store) UpdateTask(t models.Task) (*models.Task, error) {
	links, err := encodeLinks(t.ExternalLinks)
	if err != nil {
		return nil, err
	}

	res, err := s.db.Exec(
		`UPDATE tasks SET title = ?, category = ?, priority = ?, estimated_time = ?, external_links = ?, xp_reward = ?, gem_reward = ?, due_time = ?, date = ? WHERE id = ?`,
		t.Title, t.Category, t.Priority, t.EstimatedTime, links, t.XPReward, t.GemReward, t.DueTime, t.Date, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrTaskNotFound
	}
	return s.GetTask(t.ID)
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// CompleteTaskTx completes a task and applies the reward to its owner in a
// single transaction: {read task, read user, compute delta, write task,
// write user}. Two concurrent completions for the same user cannot lose an
// award. Completing an already-completed task commits nothing and returns
// a zero delta.
func (s *Store) CompleteTaskTx(id string, now time.Time) (*models.Task, *models.User, reward.Delta, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, reward.Delta{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil, reward.Delta{}, ErrTaskNotFound
	}
	if err != nil {
		return nil, nil, reward.Delta{}, fmt.Errorf("query task: %w", err)
	}

	user, err := queryUserTx(tx, task.UserID)
	if err != nil {
		return nil, nil, reward.Delta{}, err
	}
	if user == nil {
		return nil, nil, reward.Delta{}, ErrUserNotFound
	}

	if task.Completed {
		// Idempotent no-op: zero deltas, record unchanged.
		return task, user, reward.Delta{}, nil
	}

	updated, delta, err := reward.CompleteTask(*task, now)
	if err != nil {
		return nil, nil, reward.Delta{}, err
	}

	newUser := reward.ApplyDelta(*user, delta)
	newUser = reward.TouchStreak(newUser, now.Format(models.DateLayout))

	_, err = tx.Exec(
		`UPDATE tasks SET completed = 1, completed_at = ?, completed_on_time = ? WHERE id = ?`,
		updated.CompletedAt, updated.CompletedOnTime, updated.ID,
	)
	if err != nil {
		return nil, nil, reward.Delta{}, fmt.Errorf("update task: %w", err)
	}

	if err := updateUserTx(tx, newUser); err != nil {
		return nil, nil, reward.Delta{}, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, reward.Delta{}, fmt.Errorf("commit transaction: %w", err)
	}

	return &updated, &newUser, delta, nil
}

// --- Session Operations ---

// CreateSession starts a focus session.
func (s *Store) CreateSession(userID, taskID string, duration int) (*models.FocusSession, error) {
	sess := &models.FocusSession{
		ID:        uuid.New().String(),
		UserID:    userID,
		TaskID:    taskID,
		Duration:  duration,
		StartedAt: time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO sessions (id, user_id, task_id, duration, completed, started_at) VALUES (?, ?, ?, ?, 0, ?)`,
		sess.ID, sess.UserID, nullString(sess.TaskID), sess.Duration, sess.StartedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// GetSession retrieves a session by ID.
func (s *Store) GetSession(id string) (*models.FocusSession, error) {
	sess := &models.FocusSession{}
	var taskID sql.NullString
	var completedAt sql.NullTime

	err := s.db.QueryRow(
		`SELECT id, user_id, task_id, duration, completed, started_at, completed_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.UserID, &taskID, &sess.Duration, &sess.Completed, &sess.StartedAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	sess.TaskID = taskID.String
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	return sess, nil
}

// ListSessions returns a user's sessions, newest first.
func (s *Store) ListSessions(userID string) ([]models.FocusSession, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, task_id, duration, completed, started_at, completed_at FROM sessions WHERE user_id = ? ORDER BY started_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.FocusSession
	for rows.Next() {
		var sess models.FocusSession
		var taskID sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&sess.ID, &sess.UserID, &taskID, &sess.Duration, &sess.Completed, &sess.StartedAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sess.TaskID = taskID.String
		if completedAt.Valid {
			sess.CompletedAt = &completedAt.Time
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// CompleteSessionTx completes a focus session and credits the bonus XP to
// its owner in one transaction, mirroring CompleteTaskTx.
func (s *Store) CompleteSessionTx(id string, now time.Time) (*models.FocusSession, *models.User, int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, nil, 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	sess := models.FocusSession{}
	var taskID sql.NullString
	var completedAt sql.NullTime
	err = tx.QueryRow(
		`SELECT id, user_id, task_id, duration, completed, started_at, completed_at FROM sessions WHERE id = ?`,
		id,
	).Scan(&sess.ID, &sess.UserID, &taskID, &sess.Duration, &sess.Completed, &sess.StartedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, nil, 0, ErrSessionNotFound
	}
	if err != nil {
		return nil, nil, 0, fmt.Errorf("query session: %w", err)
	}
	sess.TaskID = taskID.String
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}

	user, err := queryUserTx(tx, sess.UserID)
	if err != nil {
		return nil, nil, 0, err
	}
	if user == nil {
		return nil, nil, 0, ErrUserNotFound
	}

	if sess.Completed {
		return &sess, user, 0, nil
	}

	updated, xp := reward.CompleteSession(sess, now)
	newUser := reward.ApplyDelta(*user, reward.Delta{XP: xp})

	_, err = tx.Exec(`UPDATE sessions SET completed = 1, completed_at = ? WHERE id = ?`, updated.CompletedAt, updated.ID)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("update session: %w", err)
	}

	if err := updateUserTx(tx, newUser); err != nil {
		return nil, nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, 0, fmt.Errorf("commit transaction: %w", err)
	}

	return &updated, &newUser, xp, nil
}

// --- Achievement Operations ---

// CreateAchievement records an earned achievement.
func (s *Store) CreateAchievement(userID, achType, title, description string) (*models.Achievement, error) {
	a := &models.Achievement{
		ID:          uuid.New().String(),
		UserID:      userID,
		Type:        achType,
		Title:       title,
		Description: description,
		EarnedAt:    time.Now().UTC(),
	}

	_, err := s.db.Exec(
		`INSERT INTO achievements (id, user_id, type, title, description, earned_at) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, a.UserID, a.Type, a.Title, a.Description, a.EarnedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert achievement: %w", err)
	}
	return a, nil
}

// ListAchievements returns a user's achievements, oldest first. rowid
// breaks ties between entries earned in the same instant.
func (s *Store) ListAchievements(userID string) ([]models.Achievement, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, type, title, description, earned_at FROM achievements WHERE user_id = ? ORDER BY earned_at ASC, rowid ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query achievements: %w", err)
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		var description sql.NullString
		if err := rows.Scan(&a.ID, &a.UserID, &a.Type, &a.Title, &description, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		a.Description = description.String
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

// --- Notification Operations ---

// CreateNotificationOnce inserts a notification unless one already exists
// for the same task and kind. Returns whether a row was created, letting
// the reminder loop run on a timer without duplicating alerts.
func (s *Store) CreateNotificationOnce(userID, taskID, kind, message string) (bool, error) {
	res, err := s.db.Exec(
		`INSERT INTO notifications (id, user_id, task_id, kind, message, created_at) VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (task_id, kind) DO NOTHING`,
		uuid.New().String(), userID, taskID, kind, message, time.Now().UTC(),
	)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check rows affected: %w", err)
	}
	return n > 0, nil
}

// ListNotifications returns a user's notifications, newest first.
func (s *Store) ListNotifications(userID string) ([]models.Notification, error) {
	rows, err := s.db.Query(
		`SELECT id, user_id, task_id, kind, message, created_at FROM notifications WHERE user_id = ? ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.TaskID, &n.Kind, &n.Message, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// TasksDueBetween returns incomplete tasks with a due time whose combined
// due instant falls in (after, until]. The date/due_time text formats sort
// lexicographically, so the comparison happens in SQL.
func (s *Store) TasksDueBetween(after, until time.Time) ([]models.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskColumns+` FROM tasks
		 WHERE completed = 0 AND due_time IS NOT NULL AND due_time != ''
		   AND date || ' ' || due_time > ? AND date || ' ' || due_time <= ?
		 ORDER BY date ASC, due_time ASC`,
		after.Format(models.DateLayout+" "+models.TimeLayout),
		until.Format(models.DateLayout+" "+models.TimeLayout),
	)
	if err != nil {
		return nil, fmt.Errorf("query due tasks: %w", err)
	}
	defer rows.Close()

	var tasks []models.Task
	for rows.Next() {
		task, err := scanTask(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// --- Journal Operations ---

// WriteJournal appends an entry to the reward journal.
func (s *Store) WriteJournal(action, inputsHash, outcome, userID, details string) error {
	_, err := s.db.Exec(
		`INSERT INTO journal (id, action, inputs_hash, outcome, user_id, details, timestamp) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		uuid.New().String(), action, inputsHash, outcome, userID, details, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert journal entry: %w", err)
	}
	return nil
}

// --- helpers ---

func queryUserTx(tx *sql.Tx, id string) (*models.User, error) {
	user := &models.User{}
	var lastActive sql.NullString

	err := tx.QueryRow(
		`SELECT id, username, level, xp, gems, streak, last_active_date FROM users WHERE id = ?`,
		id,
	).Scan(&user.ID, &user.Username, &user.Level, &user.XP, &user.Gems, &user.Streak, &lastActive)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	user.LastActiveDate = lastActive.String
	return user, nil
}

func updateUserTx(tx *sql.Tx, user models.User) error {
	_, err := tx.Exec(
		`UPDATE users SET level = ?, xp = ?, gems = ?, streak = ?, last_active_date = ? WHERE id = ?`,
		user.Level, user.XP, user.Gems, user.Streak, nullString(user.LastActiveDate), user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

// scanTask reads a task row given a Scan function, handling nullable columns.
func scanTask(scan func(...interface{}) error) (*models.Task, error) {
	task := &models.Task{}
	var goalID, links, dueTime sql.NullString
	var estimatedTime sql.NullInt64
	var completedAt sql.NullTime

	err := scan(&task.ID, &task.UserID, &goalID, &task.Title, &task.Category, &task.Priority,
		&estimatedTime, &links, &task.XPReward, &task.GemReward, &dueTime, &task.Date,
		&task.Completed, &completedAt, &task.CompletedOnTime, &task.CreatedAt)
	if err != nil {
		return nil, err
	}

	task.GoalID = goalID.String
	task.DueTime = dueTime.String
	if estimatedTime.Valid {
		task.EstimatedTime = int(estimatedTime.Int64)
	}
	if completedAt.Valid {
		task.CompletedAt = &completedAt.Time
	}
	if links.Valid && links.String != "" {
		if err := json.Unmarshal([]byte(links.String), &task.ExternalLinks); err != nil {
			return nil, fmt.Errorf("decode external links: %w", err)
		}
	}
	return task, nil
}

func encodeLinks(links []string) (string, error) {
	if len(links) == 0 {
		return "", nil
	}
	data, err := json.Marshal(links)
	if err != nil {
		return "", fmt.Errorf("encode external links: %w", err)
	}
	return string(data), nil
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
