package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fentz26/questline/internal/models"
	"github.com/fentz26/questline/internal/reward"
	"github.com/fentz26/questline/internal/store"
)

// Request validation bounds. The engine never re-validates, so these are
// enforced here and nowhere else.
const (
	minXPReward      = 5
	maxXPReward      = 100
	minGemReward     = 1
	maxGemReward     = 10
	minEstimatedTime = 5
	maxEstimatedTime = 480
	maxDuration      = 480
)

// Server provides the HTTP API for Questline.
type Server struct {
	service *Service
	addr    string
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(service *Service, addr string) *Server {
	return &Server{
		service: service,
		addr:    addr,
	}
}

// Handler builds the route table. Exposed so tests can drive the server
// through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/goals", s.handleGoals)
	mux.HandleFunc("/goals/", s.handleGoalByID)
	mux.HandleFunc("/tasks", s.handleTasks)
	mux.HandleFunc("/tasks/", s.handleTaskByID)
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionByID)
	mux.HandleFunc("/user", s.handleUser)
	mux.HandleFunc("/dashboard", s.handleDashboard)
	mux.HandleFunc("/achievements", s.handleAchievements)
	mux.HandleFunc("/notifications", s.handleNotifications)

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	return mux
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("Starting Questline daemon on %s", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), statusFor(err))
}

func statusFor(err error) int {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, store.ErrGoalNotFound),
		errors.Is(err, store.ErrSessionNotFound),
		errors.Is(err, store.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// --- Goal Handlers ---

// handleGoals handles POST /goals and GET /goals
func (s *Server) handleGoals(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createGoal(w, r)
	case http.MethodGet:
		s.listGoals(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleGoalByID handles /goals/{id} and /goals/{id}/complete
func (s *Server) handleGoalByID(w http.ResponseWriter, r *http.Request) {
	goalID, action := splitIDAction(r.URL.Path, "/goals/")
	if goalID == "" {
		http.Error(w, "goal id required", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getGoal(w, r, goalID)
	case action == "" && r.Method == http.MethodDelete:
		s.deleteGoal(w, r, goalID)
	case action == "complete" && r.Method == http.MethodPost:
		s.completeGoal(w, r, goalID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

type createGoalRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Type        string `json:"type"`
	Deadline    string `json:"deadline"`
}

type goalResponse struct {
	Goal  *models.Goal  `json:"goal"`
	Tasks []models.Task `json:"tasks"`
}

func (s *Server) createGoal(w http.ResponseWriter, r *http.Request) {
	var req createGoalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(req.Title) == "" {
		writeError(w, invalid("title", "must not be empty"))
		return
	}
	goalType, err := models.ParseGoalType(req.Type)
	if err != nil {
		writeError(w, invalid("type", "must be short_term or long_term"))
		return
	}
	if _, err := time.Parse(models.DateLayout, req.Deadline); err != nil {
		writeError(w, invalid("deadline", "must be YYYY-MM-DD"))
		return
	}

	goal, tasks, err := s.service.CreateGoal(req.Title, req.Description, goalType, req.Deadline)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusCreated, goalResponse{Goal: goal, Tasks: tasks})
}

func (s *Server) listGoals(w http.ResponseWriter, r *http.Request) {
	goals, err := s.service.ListGoals()
	if err != nil {
		writeError(w, err)
		return
	}
	if goals == nil {
		goals = []models.Goal{}
	}
	writeJSON(w, http.StatusOK, goals)
}

func (s *Server) getGoal(w http.ResponseWriter, r *http.Request, goalID string) {
	goal, tasks, err := s.service.GetGoal(goalID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, goalResponse{Goal: goal, Tasks: tasks})
}

func (s *Server) completeGoal(w http.ResponseWriter, r *http.Request, goalID string) {
	goal, err := s.service.CompleteGoal(goalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) deleteGoal(w http.ResponseWriter, r *http.Request, goalID string) {
	if err := s.service.DeleteGoal(goalID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"deleted"}`))
}

// --- Task Handlers ---

// handleTasks handles POST /tasks and GET /tasks
func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createTask(w, r)
	case http.MethodGet:
		s.listTasks(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleTaskByID handles /tasks/{id} and /tasks/{id}/complete
func (s *Server) handleTaskByID(w http.ResponseWriter, r *http.Request) {
	taskID, action := splitIDAction(r.URL.Path, "/tasks/")
	if taskID == "" {
		http.Error(w, "task id required", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodGet:
		s.getTask(w, r, taskID)
	case action == "" && r.Method == http.MethodPatch:
		s.updateTask(w, r, taskID)
	case action == "" && r.Method == http.MethodDelete:
		s.deleteTask(w, r, taskID)
	case action == "complete" && r.Method == http.MethodPost:
		s.completeTask(w, r, taskID)
	default:
		http.Error(w, "not found", http.StatusNotFound)
	}
}

type taskRequest struct {
	Title         *string   `json:"title"`
	GoalID        *string   `json:"goal_id"`
	Category      *string   `json:"category"`
	Priority      *string   `json:"priority"`
	EstimatedTime *int      `json:"estimated_time"`
	ExternalLinks *[]string `json:"external_links"`
	XPReward      *int      `json:"xp_reward"`
	GemReward     *int      `json:"gem_reward"`
	DueTime       *string   `json:"due_time"`
	Date          *string   `json:"date"`
}

// apply copies the provided fields onto a task. Absent fields are left
// alone so the same shape serves both create and partial update.
func (req taskRequest) apply(t *models.Task) error {
	if req.Title != nil {
		t.Title = *req.Title
	}
	if req.GoalID != nil {
		t.GoalID = *req.GoalID
	}
	if req.Category != nil {
		t.Category = *req.Category
	}
	if req.Priority != nil {
		p, err := models.ParsePriority(*req.Priority)
		if err != nil {
			return invalid("priority", "must be low, medium, or high")
		}
		t.Priority = p
	}
	if req.EstimatedTime != nil {
		t.EstimatedTime = *req.EstimatedTime
	}
	if req.ExternalLinks != nil {
		t.ExternalLinks = *req.ExternalLinks
	}
	if req.XPReward != nil {
		t.XPReward = *req.XPReward
	}
	if req.GemReward != nil {
		t.GemReward = *req.GemReward
	}
	if req.DueTime != nil {
		t.DueTime = *req.DueTime
	}
	if req.Date != nil {
		t.Date = *req.Date
	}
	return nil
}

func validateTask(t models.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return invalid("title", "must not be empty")
	}
	if _, err := time.Parse(models.DateLayout, t.Date); err != nil {
		return invalid("date", "must be YYYY-MM-DD")
	}
	if t.DueTime != "" {
		if _, err := time.Parse(models.TimeLayout, t.DueTime); err != nil {
			return invalid("due_time", "must be HH:MM")
		}
	}
	if t.XPReward < minXPReward || t.XPReward > maxXPReward {
		return invalid("xp_reward", "must be between 5 and 100")
	}
	if t.GemReward < minGemReward || t.GemReward > maxGemReward {
		return invalid("gem_reward", "must be between 1 and 10")
	}
	if t.EstimatedTime != 0 && (t.EstimatedTime < minEstimatedTime || t.EstimatedTime > maxEstimatedTime) {
		return invalid("estimated_time", "must be between 5 and 480 minutes")
	}
	return nil
}

func (s *Server) createTask(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	// Reward defaults for plain tasks, matching untimed personal errands.
	task := models.Task{XPReward: 20, GemReward: 1}
	if err := req.apply(&task); err != nil {
		writeError(w, err)
		return
	}
	if err := validateTask(task); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.service.CreateTask(task)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) listTasks(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	goalID := r.URL.Query().Get("goal_id")

	if date != "" {
		if _, err := time.Parse(models.DateLayout, date); err != nil {
			writeError(w, invalid("date", "must be YYYY-MM-DD"))
			return
		}
	}

	tasks, err := s.service.ListTasks(date, goalID)
	if err != nil {
		writeError(w, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) getTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, err := s.service.GetTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) updateTask(w http.ResponseWriter, r *http.Request, taskID string) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	task, err := s.service.GetTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	updated := *task
	if err := req.apply(&updated); err != nil {
		writeError(w, err)
		return
	}
	if err := validateTask(updated); err != nil {
		writeError(w, err)
		return
	}

	result, err := s.service.UpdateTask(updated)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) deleteTask(w http.ResponseWriter, r *http.Request, taskID string) {
	if err := s.service.DeleteTask(taskID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"deleted"}`))
}

type completeTaskResponse struct {
	Task  *models.Task `json:"task"`
	User  UserProfile  `json:"user"`
	Delta reward.Delta `json:"delta"`
}

func (s *Server) completeTask(w http.ResponseWriter, r *http.Request, taskID string) {
	task, user, delta, err := s.service.CompleteTask(taskID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completeTaskResponse{
		Task:  task,
		User:  profileOf(*user),
		Delta: delta,
	})
}

// --- Session Handlers ---

// handleSessions handles POST /sessions and GET /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createSession(w, r)
	case http.MethodGet:
		s.listSessions(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

// handleSessionByID handles /sessions/{id}/complete
func (s *Server) handleSessionByID(w http.ResponseWriter, r *http.Request) {
	sessionID, action := splitIDAction(r.URL.Path, "/sessions/")
	if sessionID == "" {
		http.Error(w, "session id required", http.StatusBadRequest)
		return
	}

	if action == "complete" && r.Method == http.MethodPost {
		s.completeSession(w, r, sessionID)
		return
	}
	http.Error(w, "not found", http.StatusNotFound)
}

type createSessionRequest struct {
	TaskID   string `json:"task_id"`
	Duration int    `json:"duration"`
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if req.Duration < 1 || req.Duration > maxDuration {
		writeError(w, invalid("duration", "must be between 1 and 480 minutes"))
		return
	}

	sess, err := s.service.CreateSession(req.TaskID, req.Duration)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, sess)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions()
	if err != nil {
		writeError(w, err)
		return
	}
	if sessions == nil {
		sessions = []models.FocusSession{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

type completeSessionResponse struct {
	Session *models.FocusSession `json:"session"`
	User    UserProfile          `json:"user"`
	XP      int                  `json:"xp"`
}

func (s *Server) completeSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, user, xp, err := s.service.CompleteSession(sessionID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, completeSessionResponse{
		Session: sess,
		User:    profileOf(*user),
		XP:      xp,
	})
}

// --- Profile / Dashboard Handlers ---

func (s *Server) handleUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	profile, err := s.service.Profile()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	dashboard, err := s.service.GetDashboard()
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	achievements, err := s.service.Achievements()
	if err != nil {
		writeError(w, err)
		return
	}
	if achievements == nil {
		achievements = []models.Achievement{}
	}
	writeJSON(w, http.StatusOK, achievements)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	notifications, err := s.service.Notifications()
	if err != nil {
		writeError(w, err)
		return
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	writeJSON(w, http.StatusOK, notifications)
}

// splitIDAction splits "/prefix/{id}/{action}" into its id and action.
func splitIDAction(path, prefix string) (string, string) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) == 0 {
		return "", ""
	}
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	return parts[0], action
}
