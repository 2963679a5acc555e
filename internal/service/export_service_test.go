package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"task-planner/internal/repository"
)

func TestAgendaICS(t *testing.T) {
	db := newTestDB(t)
	occurrences := repository.NewOccurrenceRepository(db)
	series := NewSeriesService(occurrences)
	export := NewExportService(occurrences)
	ctx := context.Background()

	timed := eventDraft("dentist", "2024-06-12", "none")
	timed.StartTime = "10:30"
	timed.EndTime = "11:00"
	mustCreate(t, series, 1, timed)

	allDay := eventDraft("conference", "2024-06-15", "none")
	allDay.IsAllDay = true
	mustCreate(t, series, 1, allDay)

	mustCreate(t, series, 1, eventDraft("out of window", "2024-08-01", "none"))
	mustCreate(t, series, 2, eventDraft("other user", "2024-06-12", "none"))

	feed, err := export.AgendaICS(ctx, 1, time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("agenda ics: %v", err)
	}

	if !strings.Contains(feed, "BEGIN:VCALENDAR") || !strings.Contains(feed, "BEGIN:VEVENT") {
		t.Fatalf("feed is not an iCalendar document:\n%s", feed)
	}
	if !strings.Contains(feed, "SUMMARY:dentist") || !strings.Contains(feed, "SUMMARY:conference") {
		t.Errorf("feed is missing event summaries:\n%s", feed)
	}
	if strings.Contains(feed, "out of window") || strings.Contains(feed, "other user") {
		t.Errorf("feed leaked events outside the window or owner:\n%s", feed)
	}
	if got := strings.Count(feed, "BEGIN:VEVENT"); got != 2 {
		t.Errorf("feed has %d events, want 2", got)
	}
}
