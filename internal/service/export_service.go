package service

import (
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"

	"task-planner/internal/repository"
)

// ExportService renders a user's upcoming events as an iCalendar feed so
// they can be pulled into external calendar clients.
type ExportService struct {
	occurrences *repository.OccurrenceRepository
}

func NewExportService(occurrences *repository.OccurrenceRepository) *ExportService {
	return &ExportService{occurrences: occurrences}
}

// AgendaICS serializes the owner's events in the agenda window starting at
// from.
func (s *ExportService) AgendaICS(ctx context.Context, ownerID uint, from time.Time) (string, error) {
	start := dateOf(from)
	events, err := s.occurrences.ListEventsBetween(ctx, ownerID, start, start.AddDate(0, 0, agendaWindowDays))
	if err != nil {
		return "", err
	}

	cal := ics.NewCalendar()

	now := time.Now()
	for _, occ := range events {
		ev := cal.AddEvent(fmt.Sprintf("occurrence-%d@task-planner", occ.ID))
		ev.SetDtStampTime(now)
		ev.SetSummary(occ.Content)

		if occ.IsAllDay {
			ev.SetAllDayStartAt(occ.Date)
			ev.SetAllDayEndAt(occ.Date.AddDate(0, 0, 1))
			continue
		}

		startAt, err := clockOn(occ.Date, occ.StartTime)
		if err != nil {
			continue
		}
		endAt, err := clockOn(occ.Date, occ.EndTime)
		if err != nil {
			continue
		}
		ev.SetStartAt(startAt)
		ev.SetEndAt(endAt)
	}

	return cal.Serialize(), nil
}

// clockOn combines a calendar date with a "15:04" wall-clock value.
func clockOn(day time.Time, clock string) (time.Time, error) {
	minutes, err := parseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return dateOf(day).Add(time.Duration(minutes) * time.Minute), nil
}
