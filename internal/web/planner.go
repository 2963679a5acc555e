package web

import (
	"net/http"
	"time"

	"task-planner/internal/model"
	"task-planner/internal/service"
)

type createTaskRequest struct {
	Content    string `json:"content"`
	Date       string `json:"date"`
	Recurrence string `json:"recurrence"`
	Priority   int    `json:"priority"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request, userID uint) {
	var req createTaskRequest
	if !s.decode(w, r, &req) {
		return
	}

	anchor, generated, err := s.series.CreateSeries(r.Context(), userID, service.Draft{
		Kind:       model.KindTask,
		Content:    req.Content,
		Date:       req.Date,
		Recurrence: req.Recurrence,
		Priority:   req.Priority,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]interface{}{"task": anchor, "generated_count": len(generated)})
}

type createEventRequest struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	IsAllDay  bool   `json:"is_all_day"`
	Frequency string `json:"frequency"`
}

func (s *Server) handleCreateEvent(w http.ResponseWriter, r *http.Request, userID uint) {
	var req createEventRequest
	if !s.decode(w, r, &req) {
		return
	}

	anchor, generated, err := s.series.CreateSeries(r.Context(), userID, service.Draft{
		Kind:       model.KindEvent,
		Content:    req.Title,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		IsAllDay:   req.IsAllDay,
		Recurrence: req.Frequency,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]interface{}{"event": anchor, "generated_count": len(generated)})
}

func (s *Server) handleDailyTasks(w http.ResponseWriter, r *http.Request, userID uint) {
	day := parseDateOr(r.PathValue("date"), time.Now())
	tasks, err := s.schedule.DailyTasks(r.Context(), userID, day)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, tasks)
}

func (s *Server) handleWeek(w http.ResponseWriter, r *http.Request, userID uint) {
	ref := parseDateOr(r.URL.Query().Get("date"), time.Now())
	week, err := s.schedule.Week(r.Context(), userID, ref)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, week)
}

func (s *Server) handleAgenda(w http.ResponseWriter, r *http.Request, userID uint) {
	from := parseDateOr(r.URL.Query().Get("date"), time.Now())
	events, err := s.schedule.Agenda(r.Context(), userID, from)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, events)
}

func (s *Server) handleAgendaICS(w http.ResponseWriter, r *http.Request, userID uint) {
	from := parseDateOr(r.URL.Query().Get("date"), time.Now())
	feed, err := s.export.AgendaICS(r.Context(), userID, from)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="agenda.ics"`)
	_, _ = w.Write([]byte(feed))
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(r)
	if !ok {
		s.badID(w)
		return
	}
	task, err := s.series.ToggleCompleted(r.Context(), id, userID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]interface{}{"completed": task.Completed})
}

type priorityRequest struct {
	Priority int `json:"priority"`
}

func (s *Server) handleUpdatePriority(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(r)
	if !ok {
		s.badID(w)
		return
	}
	var req priorityRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.series.UpdatePriority(r.Context(), id, userID, req.Priority); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "priority updated")
}

func (s *Server) handleMoveTomorrow(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(r)
	if !ok {
		s.badID(w)
		return
	}
	task, err := s.series.MoveToTomorrow(r.Context(), id, userID, time.Now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeData(w, map[string]interface{}{"date": task.Date.Format("2006-01-02")})
}

func (s *Server) handleDeleteOccurrence(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(r)
	if !ok {
		s.badID(w)
		return
	}
	if err := s.series.DeleteOccurrence(r.Context(), id, userID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "occurrence deleted")
}

func (s *Server) handleDeleteSeries(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(r)
	if !ok {
		s.badID(w)
		return
	}
	if err := s.series.DeleteSeries(r.Context(), id, userID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "series deleted")
}

func (s *Server) handleDeleteCompletely(w http.ResponseWriter, r *http.Request, userID uint) {
	id, ok := pathID(r)
	if !ok {
		s.badID(w)
		return
	}
	if err := s.series.DeleteCompletedSeries(r.Context(), id, userID); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeMessage(w, "task deleted")
}

// parseDateOr parses "2006-01-02", falling back to the given time's date
// on any failure. View routes tolerate bad dates instead of erroring.
func parseDateOr(raw string, fallback time.Time) time.Time {
	if raw == "" {
		return fallback
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return fallback
	}
	return d
}
