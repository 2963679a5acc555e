package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"task-planner/internal/model"
)

func TestCreateSeriesLinksGeneratedToAnchor(t *testing.T) {
	s, db := newSeriesService(t)

	anchor, generated, err := s.CreateSeries(context.Background(), 1, taskDraft("water plants", "2024-03-01", "weekly"))
	if err != nil {
		t.Fatalf("create series: %v", err)
	}

	if anchor.SeriesAnchorID != nil {
		t.Errorf("anchor carries a back-reference: %v", *anchor.SeriesAnchorID)
	}
	if len(generated) != 52 {
		t.Fatalf("expected 52 generated occurrences, got %d", len(generated))
	}
	for i, g := range generated {
		if g.SeriesAnchorID == nil || *g.SeriesAnchorID != anchor.ID {
			t.Errorf("generated %d does not reference the anchor", i)
		}
		if g.UserID != anchor.UserID || g.Content != anchor.Content || g.Recurrence != anchor.Recurrence {
			t.Errorf("generated %d diverges from the anchor's shared fields", i)
		}
		if !g.Date.After(anchor.Date) {
			t.Errorf("generated %d is not after the anchor date", i)
		}
	}
	if got := countOccurrences(t, db, ""); got != 53 {
		t.Errorf("persisted rows = %d, want 53", got)
	}
}

func TestCreateSeriesEventSharesTimeBounds(t *testing.T) {
	s, _ := newSeriesService(t)

	draft := eventDraft("standup", "2024-03-04", "weekday")
	draft.StartTime = "09:15"
	draft.EndTime = "09:30"
	anchor, generated := mustCreate(t, s, 7, draft)

	if len(generated) == 0 {
		t.Fatal("expected generated occurrences")
	}
	for i, g := range generated {
		if g.StartTime != anchor.StartTime || g.EndTime != anchor.EndTime || g.IsAllDay != anchor.IsAllDay {
			t.Errorf("generated %d does not share the anchor's time bounds", i)
		}
	}
}

func TestCreateSeriesRejectsInvalidDrafts(t *testing.T) {
	s, db := newSeriesService(t)

	badPriority := taskDraft("x", "2024-01-01", "none")
	badPriority.Priority = 4

	badTimes := eventDraft("x", "2024-01-01", "none")
	badTimes.StartTime = "14:00"
	badTimes.EndTime = "13:00"

	badClock := eventDraft("x", "2024-01-01", "none")
	badClock.StartTime = "9 o'clock"

	cases := []struct {
		name  string
		draft Draft
	}{
		{"bad date", taskDraft("x", "01/02/2024", "none")},
		{"empty content", taskDraft("", "2024-01-01", "none")},
		{"bad priority", badPriority},
		{"end before start", badTimes},
		{"bad clock", badClock},
		{"unknown kind", Draft{Kind: model.Kind("note"), Content: "x", Date: "2024-01-01"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := s.CreateSeries(context.Background(), 1, tc.draft)
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
	if got := countOccurrences(t, db, ""); got != 0 {
		t.Errorf("rejected drafts left %d rows behind", got)
	}
}

func TestCreateSeriesUnknownRuleIsNotAnError(t *testing.T) {
	s, db := newSeriesService(t)

	anchor, generated := mustCreate(t, s, 1, taskDraft("stretch", "2024-01-01", "fortnightly"))
	if len(generated) != 0 {
		t.Fatalf("unknown rule expanded to %d occurrences", len(generated))
	}
	if anchor.Recurrence != "fortnightly" {
		t.Errorf("rule stored as %q, want the submitted string", anchor.Recurrence)
	}
	if got := countOccurrences(t, db, ""); got != 1 {
		t.Errorf("persisted rows = %d, want 1", got)
	}
}

func TestCreateSeriesIsAtomic(t *testing.T) {
	s, db := newSeriesService(t)

	// Fail the batch insert of generated members after the anchor has
	// been written inside the transaction.
	err := db.Callback().Create().Before("gorm:create").Register("fail_batch", func(tx *gorm.DB) {
		if _, ok := tx.Statement.Dest.(*[]model.Occurrence); ok {
			tx.AddError(errors.New("forced failure"))
		}
	})
	if err != nil {
		t.Fatalf("register callback: %v", err)
	}

	if _, _, err := s.CreateSeries(context.Background(), 1, taskDraft("journal", "2024-01-01", "daily")); err == nil {
		t.Fatal("expected forced failure")
	}
	if got := countOccurrences(t, db, ""); got != 0 {
		t.Errorf("failed creation left %d rows behind, want 0", got)
	}
}

func TestDeleteOccurrenceRemovesExactlyOneRow(t *testing.T) {
	s, db := newSeriesService(t)

	_, generated := mustCreate(t, s, 1, eventDraft("gym", "2024-01-01", "weekly"))

	if err := s.DeleteOccurrence(context.Background(), generated[3].ID, 1); err != nil {
		t.Fatalf("delete occurrence: %v", err)
	}

	if got := countOccurrences(t, db, ""); got != 52 {
		t.Errorf("rows after single delete = %d, want 52", got)
	}
	if got := countOccurrences(t, db, "id = ?", generated[3].ID); got != 0 {
		t.Error("targeted row survived")
	}
}

func TestDeleteSeriesFromAnchor(t *testing.T) {
	s, db := newSeriesService(t)

	anchor, _ := mustCreate(t, s, 1, eventDraft("yoga", "2024-01-01", "weekly"))
	// Same content for another user; must be untouched.
	mustCreate(t, s, 2, eventDraft("yoga", "2024-01-01", "weekly"))

	if err := s.DeleteSeries(context.Background(), anchor.ID, 1); err != nil {
		t.Fatalf("delete series: %v", err)
	}

	if got := countOccurrences(t, db, "user_id = ?", 1); got != 0 {
		t.Errorf("owner rows after series delete = %d, want 0", got)
	}
	if got := countOccurrences(t, db, "user_id = ?", 2); got != 53 {
		t.Errorf("other user's rows = %d, want 53", got)
	}
}

func TestDeleteSeriesFromGeneratedMemberRemovesAnchorToo(t *testing.T) {
	s, db := newSeriesService(t)

	anchor, generated := mustCreate(t, s, 1, eventDraft("review", "2024-01-01", "weekly"))

	if err := s.DeleteSeries(context.Background(), generated[10].ID, 1); err != nil {
		t.Fatalf("delete series: %v", err)
	}

	if got := countOccurrences(t, db, ""); got != 0 {
		t.Errorf("rows after series delete = %d, want 0", got)
	}
	if got := countOccurrences(t, db, "id = ?", anchor.ID); got != 0 {
		t.Error("anchor row survived a delete issued from a generated member")
	}
}

func TestDeleteCompletedSeriesMatchesByContentAndDateFloor(t *testing.T) {
	s, db := newSeriesService(t)

	anchor, _ := mustCreate(t, s, 1, taskDraft("pay rent", "2024-06-01", "monthly"))
	// Unlinked task with the same content, dated after the anchor: caught
	// by the content net even though no anchor id ties it in.
	unlinked, _ := mustCreate(t, s, 1, taskDraft("pay rent", "2024-07-15", "none"))
	// Same content but dated before the floor: survives.
	earlier, _ := mustCreate(t, s, 1, taskDraft("pay rent", "2024-05-01", "none"))
	// Same content, different owner: survives.
	mustCreate(t, s, 2, taskDraft("pay rent", "2024-08-01", "none"))

	if err := s.DeleteCompletedSeries(context.Background(), anchor.ID, 1); err != nil {
		t.Fatalf("delete completely: %v", err)
	}

	if got := countOccurrences(t, db, "id = ?", unlinked.ID); got != 0 {
		t.Error("unlinked same-content row survived")
	}
	if got := countOccurrences(t, db, "id = ?", earlier.ID); got != 1 {
		t.Error("row dated before the floor was deleted")
	}
	if got := countOccurrences(t, db, "user_id = ?", 2); got != 1 {
		t.Error("another user's row was deleted")
	}
	if got := countOccurrences(t, db, "user_id = ? AND content = ? AND date >= ?", 1, "pay rent", anchor.Date); got != 0 {
		t.Errorf("same-owner rows past the floor remain: %d", got)
	}
}

func TestDeleteCompletedSeriesOnOneOffRemovesSingleRow(t *testing.T) {
	s, db := newSeriesService(t)

	target, _ := mustCreate(t, s, 1, taskDraft("call bank", "2024-06-01", "none"))
	other, _ := mustCreate(t, s, 1, taskDraft("call bank", "2024-06-02", "none"))

	if err := s.DeleteCompletedSeries(context.Background(), target.ID, 1); err != nil {
		t.Fatalf("delete completely: %v", err)
	}

	if got := countOccurrences(t, db, "id = ?", target.ID); got != 0 {
		t.Error("target row survived")
	}
	if got := countOccurrences(t, db, "id = ?", other.ID); got != 1 {
		t.Error("sibling one-off row was deleted")
	}
}

func TestDeleteCompletedSeriesRejectsEvents(t *testing.T) {
	s, _ := newSeriesService(t)

	anchor, _ := mustCreate(t, s, 1, eventDraft("party", "2024-06-01", "none"))
	if err := s.DeleteCompletedSeries(context.Background(), anchor.ID, 1); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestSingleOccurrenceMutations(t *testing.T) {
	s, _ := newSeriesService(t)
	ctx := context.Background()

	task, _ := mustCreate(t, s, 1, taskDraft("read", "2024-06-01", "none"))

	toggled, err := s.ToggleCompleted(ctx, task.ID, 1)
	if err != nil || !toggled.Completed {
		t.Fatalf("toggle on: completed=%v err=%v", toggled != nil && toggled.Completed, err)
	}
	toggled, err = s.ToggleCompleted(ctx, task.ID, 1)
	if err != nil || toggled.Completed {
		t.Fatalf("toggle off: err=%v", err)
	}

	if err := s.UpdatePriority(ctx, task.ID, 1, 0); !errors.Is(err, ErrValidation) {
		t.Errorf("priority 0: err = %v, want ErrValidation", err)
	}
	if err := s.UpdatePriority(ctx, task.ID, 1, 3); err != nil {
		t.Errorf("priority 3: %v", err)
	}

	now := time.Date(2024, time.June, 10, 15, 30, 0, 0, time.UTC)
	moved, err := s.MoveToTomorrow(ctx, task.ID, 1, now)
	if err != nil {
		t.Fatalf("move to tomorrow: %v", err)
	}
	if want := time.Date(2024, time.June, 11, 0, 0, 0, 0, time.UTC); !moved.Date.Equal(want) {
		t.Errorf("moved date = %v, want %v", moved.Date, want)
	}

	event, _ := mustCreate(t, s, 1, eventDraft("party", "2024-06-01", "none"))
	if _, err := s.ToggleCompleted(ctx, event.ID, 1); !errors.Is(err, ErrValidation) {
		t.Errorf("toggling an event: err = %v, want ErrValidation", err)
	}
}

func TestOwnershipGuardCoversEveryMutation(t *testing.T) {
	s, db := newSeriesService(t)
	ctx := context.Background()

	task, _ := mustCreate(t, s, 1, taskDraft("secret", "2024-06-01", "daily"))
	const intruder = 99

	ops := []struct {
		name string
		call func() error
	}{
		{"get", func() error { _, err := s.Get(ctx, task.ID, intruder); return err }},
		{"delete occurrence", func() error { return s.DeleteOccurrence(ctx, task.ID, intruder) }},
		{"delete series", func() error { return s.DeleteSeries(ctx, task.ID, intruder) }},
		{"delete completely", func() error { return s.DeleteCompletedSeries(ctx, task.ID, intruder) }},
		{"toggle", func() error { _, err := s.ToggleCompleted(ctx, task.ID, intruder); return err }},
		{"priority", func() error { return s.UpdatePriority(ctx, task.ID, intruder, 1) }},
		{"move", func() error { _, err := s.MoveToTomorrow(ctx, task.ID, intruder, time.Now()); return err }},
	}

	for _, op := range ops {
		t.Run(op.name, func(t *testing.T) {
			if err := op.call(); !errors.Is(err, ErrForbidden) {
				t.Fatalf("err = %v, want ErrForbidden", err)
			}
		})
	}
	if got := countOccurrences(t, db, "user_id = ?", 1); got != 366 {
		t.Errorf("rows after forbidden attempts = %d, want 366", got)
	}
}

func TestMissingIDIsNotFound(t *testing.T) {
	s, _ := newSeriesService(t)
	ctx := context.Background()

	if err := s.DeleteOccurrence(ctx, 12345, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete: err = %v, want ErrNotFound", err)
	}
	if err := s.DeleteSeries(ctx, 12345, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("delete series: err = %v, want ErrNotFound", err)
	}

	// Deleting an already-deleted id is not a quiet no-op.
	task, _ := mustCreate(t, s, 1, taskDraft("once", "2024-06-01", "none"))
	if err := s.DeleteOccurrence(ctx, task.ID, 1); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := s.DeleteOccurrence(ctx, task.ID, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: err = %v, want ErrNotFound", err)
	}
}
