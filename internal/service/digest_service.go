package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"task-planner/internal/mailer"
	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// DigestService builds and mails the daily agenda summary.
type DigestService struct {
	schedule *ScheduleService
	users    *repository.UserRepository
	sender   mailer.Sender
}

func NewDigestService(schedule *ScheduleService, users *repository.UserRepository, sender mailer.Sender) *DigestService {
	return &DigestService{schedule: schedule, users: users, sender: sender}
}

// DailyDigest renders one user's tasks and events for the day as plain
// text.
func (s *DigestService) DailyDigest(ctx context.Context, user model.User, now time.Time) (string, error) {
	day := dateOf(now)

	tasks, err := s.schedule.DailyTasks(ctx, user.ID, day)
	if err != nil {
		return "", err
	}
	events, err := s.schedule.DailyEvents(ctx, user.ID, day)
	if err != nil {
		return "", err
	}

	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Priority != tasks[j].Priority {
			return tasks[i].Priority < tasks[j].Priority
		}
		return tasks[i].ID < tasks[j].ID
	})

	var b strings.Builder
	fmt.Fprintf(&b, "Agenda for %s\n\n", day.Format("Monday, 02 Jan 2006"))

	b.WriteString("Tasks\n")
	if len(tasks) == 0 {
		b.WriteString("- nothing planned\n")
	} else {
		for _, task := range tasks {
			mark := " "
			if task.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "- [%s] %s (p%d)\n", mark, task.Content, task.Priority)
		}
	}

	b.WriteString("\nEvents\n")
	if len(events) == 0 {
		b.WriteString("- nothing scheduled\n")
	} else {
		for _, ev := range events {
			if ev.IsAllDay {
				fmt.Fprintf(&b, "- %s (all day)\n", ev.Content)
				continue
			}
			fmt.Fprintf(&b, "- %s  %s - %s\n", ev.Content, clockLabel(ev.StartTime), clockLabel(ev.EndTime))
		}
	}

	return b.String(), nil
}

// SendDailyDigests mails every registered user their digest. Failures for
// one user do not stop the rest; the first error is reported at the end.
func (s *DigestService) SendDailyDigests(ctx context.Context, now time.Time) error {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	for _, user := range users {
		digest, err := s.DailyDigest(ctx, user, now)
		if err == nil {
			err = s.sender.Send(user.Email, "Your daily agenda", digest)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("digest for user %d: %w", user.ID, err)
		}
	}
	return firstErr
}
