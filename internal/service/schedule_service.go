package service

import (
	"context"
	"time"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// agendaWindowDays is the forward window the agenda view covers.
const agendaWindowDays = 30

// TimedEvent is a non-all-day event prepared for the week grid: clock
// labels plus a vertical offset and height on a one-pixel-per-minute
// timeline (60px per hour).
type TimedEvent struct {
	ID        uint    `json:"id"`
	Title     string  `json:"title"`
	StartTime string  `json:"start_time"`
	EndTime   string  `json:"end_time"`
	Top       float64 `json:"start_position"`
	Height    float64 `json:"duration"`
}

// Day is one column of the week view.
type Day struct {
	Name   string             `json:"name"`
	Date   time.Time          `json:"date"`
	AllDay []model.Occurrence `json:"all_day_events"`
	Timed  []TimedEvent       `json:"timed_events"`
}

// Week is the Sunday-to-Saturday window around a reference date.
type Week struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
	Days  []Day     `json:"days"`
}

// ScheduleService computes the read-side layouts: daily task list, week
// grid and agenda. It never mutates the arena.
type ScheduleService struct {
	occurrences *repository.OccurrenceRepository
}

func NewScheduleService(occurrences *repository.OccurrenceRepository) *ScheduleService {
	return &ScheduleService{occurrences: occurrences}
}

// DailyTasks lists the owner's tasks for one date.
func (s *ScheduleService) DailyTasks(ctx context.Context, ownerID uint, day time.Time) ([]model.Occurrence, error) {
	return s.occurrences.ListForDay(ctx, ownerID, model.KindTask, dateOf(day))
}

// DailyEvents lists the owner's events for one date.
func (s *ScheduleService) DailyEvents(ctx context.Context, ownerID uint, day time.Time) ([]model.Occurrence, error) {
	return s.occurrences.ListForDay(ctx, ownerID, model.KindEvent, dateOf(day))
}

// Week lays out the week containing ref. Weeks start on Sunday.
func (s *ScheduleService) Week(ctx context.Context, ownerID uint, ref time.Time) (*Week, error) {
	start := dateOf(ref).AddDate(0, 0, -int(ref.Weekday()))
	week := &Week{
		Start: start,
		End:   start.AddDate(0, 0, 6),
	}

	for i := 0; i < 7; i++ {
		dayDate := start.AddDate(0, 0, i)
		events, err := s.occurrences.ListForDay(ctx, ownerID, model.KindEvent, dayDate)
		if err != nil {
			return nil, err
		}

		day := Day{
			Name:   dayDate.Format("Mon"),
			Date:   dayDate,
			AllDay: []model.Occurrence{},
			Timed:  []TimedEvent{},
		}
		for _, ev := range events {
			if ev.IsAllDay {
				day.AllDay = append(day.AllDay, ev)
				continue
			}
			timed, err := layoutTimed(ev)
			if err != nil {
				// Rows are validated on the way in; an unparseable clock
				// here means hand-edited data. Skip the row.
				continue
			}
			day.Timed = append(day.Timed, timed)
		}
		week.Days = append(week.Days, day)
	}

	return week, nil
}

// Agenda lists the owner's events from the given date through the next
// thirty days, ordered by date and start time.
func (s *ScheduleService) Agenda(ctx context.Context, ownerID uint, from time.Time) ([]model.Occurrence, error) {
	start := dateOf(from)
	return s.occurrences.ListEventsBetween(ctx, ownerID, start, start.AddDate(0, 0, agendaWindowDays))
}

func layoutTimed(ev model.Occurrence) (TimedEvent, error) {
	startMin, err := parseClock(ev.StartTime)
	if err != nil {
		return TimedEvent{}, err
	}
	endMin, err := parseClock(ev.EndTime)
	if err != nil {
		return TimedEvent{}, err
	}
	return TimedEvent{
		ID:        ev.ID,
		Title:     ev.Content,
		StartTime: clockLabel(ev.StartTime),
		EndTime:   clockLabel(ev.EndTime),
		Top:       float64(startMin),
		Height:    float64(endMin - startMin),
	}, nil
}

// clockLabel renders "14:30" as "2:30 PM" with no leading zero.
func clockLabel(clock string) string {
	t, err := time.Parse(clockLayout, clock)
	if err != nil {
		return clock
	}
	return t.Format("3:04 PM")
}
