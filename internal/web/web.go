// Package web is the thin HTTP layer over the planner services. It parses
// requests, runs sessions and maps service errors onto statuses; no
// planner logic lives here.
package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"
	"github.com/gorilla/sessions"

	"task-planner/internal/service"
)

const sessionName = "task_planner_session"

// Response is the unified JSON envelope.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Message string      `json:"message,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Server aggregates the HTTP handlers with the services they delegate to.
type Server struct {
	logger       *log.Logger
	store        *sessions.CookieStore
	auth         *service.AuthService
	series       *service.SeriesService
	schedule     *service.ScheduleService
	verification *service.VerificationService
	export       *service.ExportService
}

// New builds the server. verification may be nil when mail is not
// configured; its routes then answer 503.
func New(logger *log.Logger, sessionSecret string, auth *service.AuthService, series *service.SeriesService, schedule *service.ScheduleService, verification *service.VerificationService, export *service.ExportService) *Server {
	store := sessions.NewCookieStore([]byte(sessionSecret))
	store.Options.HttpOnly = true
	store.Options.SameSite = http.SameSiteLaxMode

	return &Server{
		logger:       logger,
		store:        store,
		auth:         auth,
		series:       series,
		schedule:     schedule,
		verification: verification,
		export:       export,
	}
}

// Routes wires every endpoint onto a mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	public := func(f http.HandlerFunc) http.HandlerFunc {
		return s.recoverMiddleware(f)
	}
	private := func(f func(http.ResponseWriter, *http.Request, uint)) http.HandlerFunc {
		return s.recoverMiddleware(s.requireUser(f))
	}

	mux.HandleFunc("POST /api/register", public(s.handleRegister))
	mux.HandleFunc("POST /api/login", public(s.handleLogin))
	mux.HandleFunc("POST /api/logout", public(s.handleLogout))

	mux.HandleFunc("POST /api/profile", private(s.handleProfile))
	mux.HandleFunc("POST /api/verification/send", private(s.handleSendCode))
	mux.HandleFunc("POST /api/verification/email", private(s.handleVerifyEmail))
	mux.HandleFunc("POST /api/verification/password", private(s.handleVerifyPassword))

	mux.HandleFunc("POST /api/tasks", private(s.handleCreateTask))
	mux.HandleFunc("GET /api/tasks/{date}", private(s.handleDailyTasks))
	mux.HandleFunc("POST /api/tasks/{id}/toggle", private(s.handleToggleTask))
	mux.HandleFunc("POST /api/tasks/{id}/priority", private(s.handleUpdatePriority))
	mux.HandleFunc("POST /api/tasks/{id}/move-tomorrow", private(s.handleMoveTomorrow))
	mux.HandleFunc("DELETE /api/tasks/{id}/completely", private(s.handleDeleteCompletely))

	mux.HandleFunc("POST /api/events", private(s.handleCreateEvent))
	mux.HandleFunc("GET /api/schedule/week", private(s.handleWeek))
	mux.HandleFunc("GET /api/schedule/agenda", private(s.handleAgenda))
	mux.HandleFunc("GET /api/schedule/agenda.ics", private(s.handleAgendaICS))

	mux.HandleFunc("DELETE /api/occurrences/{id}", private(s.handleDeleteOccurrence))
	mux.HandleFunc("DELETE /api/occurrences/{id}/series", private(s.handleDeleteSeries))

	return mux
}

func (s *Server) recoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "err", rec, "path", r.URL.Path)
				s.writeJSON(w, http.StatusInternalServerError, Response{
					Success: false,
					Error:   &ErrorInfo{Code: "internal", Message: "internal server error"},
				})
			}
		}()
		next(w, r)
	}
}

// requireUser resolves the session and passes the user id through.
func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, uint)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.store.Get(r, sessionName)
		if err != nil {
			s.writeJSON(w, http.StatusUnauthorized, Response{
				Success: false,
				Error:   &ErrorInfo{Code: "unauthorized", Message: "login required"},
			})
			return
		}
		userID, ok := session.Values["user_id"].(uint)
		if !ok || userID == 0 {
			s.writeJSON(w, http.StatusUnauthorized, Response{
				Success: false,
				Error:   &ErrorInfo{Code: "unauthorized", Message: "login required"},
			})
			return
		}
		next(w, r, userID)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("encode response", "err", err)
	}
}

func (s *Server) writeData(w http.ResponseWriter, data interface{}) {
	s.writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func (s *Server) writeMessage(w http.ResponseWriter, msg string) {
	s.writeJSON(w, http.StatusOK, Response{Success: true, Message: msg})
}

// writeError maps the service taxonomy onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "validation", Message: err.Error()},
		})
	case errors.Is(err, service.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "not_found", Message: err.Error()},
		})
	case errors.Is(err, service.ErrForbidden):
		s.writeJSON(w, http.StatusForbidden, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "forbidden", Message: err.Error()},
		})
	case errors.Is(err, service.ErrInvalidCredentials):
		s.writeJSON(w, http.StatusUnauthorized, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "invalid_credentials", Message: err.Error()},
		})
	default:
		s.logger.Error("request failed", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "internal", Message: "internal server error"},
		})
	}
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.writeJSON(w, http.StatusBadRequest, Response{
			Success: false,
			Error:   &ErrorInfo{Code: "validation", Message: "invalid request body"},
		})
		return false
	}
	return true
}

func pathID(r *http.Request) (uint, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) badID(w http.ResponseWriter) {
	s.writeJSON(w, http.StatusBadRequest, Response{
		Success: false,
		Error:   &ErrorInfo{Code: "validation", Message: "invalid id"},
	})
}
