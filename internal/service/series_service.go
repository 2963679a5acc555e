package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-planner/internal/model"
	"task-planner/internal/recurrence"
	"task-planner/internal/repository"
)

// Draft carries the user-authored fields of a new occurrence, as handed
// over by the web layer. The service re-validates everything even though
// the caller is expected to have done so already.
type Draft struct {
	Kind       model.Kind
	Content    string
	Date       string // "2006-01-02"
	StartTime  string // "15:04", events only
	EndTime    string // "15:04", events only
	IsAllDay   bool
	Recurrence string
	Priority   int // tasks only; 0 means default
}

// SeriesService owns series lifecycle: atomic creation of an anchor plus
// its expanded occurrences, the three deletion shapes, and the
// single-occurrence mutations. Every id-addressed path runs the ownership
// guard after resolving the row.
type SeriesService struct {
	occurrences *repository.OccurrenceRepository
}

func NewSeriesService(occurrences *repository.OccurrenceRepository) *SeriesService {
	return &SeriesService{occurrences: occurrences}
}

// CreateSeries validates the draft, materializes the recurrence window and
// persists the anchor plus every generated occurrence as one unit. A
// failure anywhere leaves nothing behind.
func (s *SeriesService) CreateSeries(ctx context.Context, ownerID uint, draft Draft) (*model.Occurrence, []model.Occurrence, error) {
	anchor, err := buildAnchor(ownerID, draft)
	if err != nil {
		return nil, nil, err
	}

	dates := recurrence.Expand(anchor.Kind, anchor.Date, recurrence.Rule(anchor.Recurrence))

	generated, err := s.occurrences.CreateSeries(ctx, anchor, dates)
	if err != nil {
		return nil, nil, err
	}
	return anchor, generated, nil
}

// Get resolves an occurrence for its owner.
func (s *SeriesService) Get(ctx context.Context, id, requesterID uint) (*model.Occurrence, error) {
	occ, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(occ, requesterID); err != nil {
		return nil, err
	}
	return occ, nil
}

// DeleteOccurrence removes exactly one row, whatever its series
// membership. Used for "delete just this one".
func (s *SeriesService) DeleteOccurrence(ctx context.Context, id, requesterID uint) error {
	occ, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(occ, requesterID); err != nil {
		return err
	}
	return s.occurrences.DeleteByID(ctx, occ.ID)
}

// DeleteSeries removes the whole series the occurrence belongs to,
// resolving series identity through the anchor back-reference.
func (s *SeriesService) DeleteSeries(ctx context.Context, id, requesterID uint) error {
	occ, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(occ, requesterID); err != nil {
		return err
	}

	if occ.IsAnchor() {
		// Anchor: remove it and every generated member pointing at it.
		return s.occurrences.DeleteAnchoredSeries(ctx, occ.UserID, occ.ID)
	}
	// Generated member: the series filter matches the siblings but never
	// the anchor itself (its back-reference is nil), so the anchor is
	// removed by id alongside them.
	return s.occurrences.DeleteAnchoredSeries(ctx, occ.UserID, *occ.SeriesAnchorID)
}

// DeleteCompletedSeries is the task-only "delete completely" action. For a
// recurring task it removes every same-owner task with matching content
// dated on or after the target; a one-off task loses just its own row.
// Matching is by content text and date floor, not anchor linkage — a
// deliberately different net from DeleteSeries that can catch unlinked
// rows with the same text.
func (s *SeriesService) DeleteCompletedSeries(ctx context.Context, id, requesterID uint) error {
	occ, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(occ, requesterID); err != nil {
		return err
	}
	if occ.Kind != model.KindTask {
		return fmt.Errorf("%w: delete completely applies to tasks only", ErrValidation)
	}

	if occ.IsRecurring() {
		return s.occurrences.DeleteTasksByContentFrom(ctx, occ.UserID, occ.Content, occ.Date)
	}
	return s.occurrences.DeleteByID(ctx, occ.ID)
}

// ToggleCompleted flips a task's completion state and returns the updated
// row.
func (s *SeriesService) ToggleCompleted(ctx context.Context, id, requesterID uint) (*model.Occurrence, error) {
	occ, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(occ, requesterID); err != nil {
		return nil, err
	}
	if occ.Kind != model.KindTask {
		return nil, fmt.Errorf("%w: only tasks can be completed", ErrValidation)
	}

	occ.Completed = !occ.Completed
	if err := s.occurrences.Save(ctx, occ); err != nil {
		return nil, err
	}
	return occ, nil
}

// UpdatePriority sets a task's priority.
func (s *SeriesService) UpdatePriority(ctx context.Context, id, requesterID uint, priority int) error {
	occ, err := s.fetch(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(occ, requesterID); err != nil {
		return err
	}
	if occ.Kind != model.KindTask {
		return fmt.Errorf("%w: only tasks carry a priority", ErrValidation)
	}
	if priority < model.PriorityMin || priority > model.PriorityMax {
		return fmt.Errorf("%w: invalid priority %d", ErrValidation, priority)
	}

	occ.Priority = priority
	return s.occurrences.Save(ctx, occ)
}

// MoveToTomorrow reschedules a single task to the day after now,
// regardless of the date it currently sits on.
func (s *SeriesService) MoveToTomorrow(ctx context.Context, id, requesterID uint, now time.Time) (*model.Occurrence, error) {
	occ, err := s.fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(occ, requesterID); err != nil {
		return nil, err
	}
	if occ.Kind != model.KindTask {
		return nil, fmt.Errorf("%w: only tasks can be moved", ErrValidation)
	}

	occ.Date = dateOf(now).AddDate(0, 0, 1)
	if err := s.occurrences.Save(ctx, occ); err != nil {
		return nil, err
	}
	return occ, nil
}

func (s *SeriesService) fetch(ctx context.Context, id uint) (*model.Occurrence, error) {
	occ, err := s.occurrences.FindByID(ctx, id)
	switch {
	case err == nil:
		return occ, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("occurrence %d: %w", id, ErrNotFound)
	default:
		return nil, err
	}
}

// buildAnchor turns a draft into the anchor occurrence, rejecting it
// before anything touches storage.
func buildAnchor(ownerID uint, draft Draft) (*model.Occurrence, error) {
	if draft.Kind != model.KindTask && draft.Kind != model.KindEvent {
		return nil, fmt.Errorf("%w: unknown occurrence kind %q", ErrValidation, draft.Kind)
	}
	if draft.Content == "" {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}

	date, err := parseDate(draft.Date)
	if err != nil {
		return nil, err
	}

	rule := draft.Recurrence
	if rule == "" {
		rule = model.RecurrenceNone
	}

	occ := &model.Occurrence{
		UserID:     ownerID,
		Kind:       draft.Kind,
		Content:    draft.Content,
		Date:       date,
		Recurrence: rule,
		Priority:   model.PriorityDefault,
	}

	switch draft.Kind {
	case model.KindTask:
		if draft.Priority != 0 {
			if draft.Priority < model.PriorityMin || draft.Priority > model.PriorityMax {
				return nil, fmt.Errorf("%w: invalid priority %d", ErrValidation, draft.Priority)
			}
			occ.Priority = draft.Priority
		}
	case model.KindEvent:
		start, err := parseClock(draft.StartTime)
		if err != nil {
			return nil, err
		}
		end, err := parseClock(draft.EndTime)
		if err != nil {
			return nil, err
		}
		if !draft.IsAllDay && end < start {
			return nil, fmt.Errorf("%w: end time precedes start time", ErrValidation)
		}
		occ.StartTime = draft.StartTime
		occ.EndTime = draft.EndTime
		occ.IsAllDay = draft.IsAllDay
	}

	return occ, nil
}
