package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"task-planner/internal/model"
)

// OccurrenceRepository handles the occurrence arena: every task and event
// row, anchors and generated series members alike.
type OccurrenceRepository struct {
	db *gorm.DB
}

func NewOccurrenceRepository(db *gorm.DB) *OccurrenceRepository {
	return &OccurrenceRepository{db: db}
}

// FindByID looks an occurrence up by id alone. Ownership is deliberately
// not part of the query: callers resolve the row first and run the
// ownership check on it, so a foreign id reads as forbidden rather than
// missing.
func (r *OccurrenceRepository) FindByID(ctx context.Context, id uint) (*model.Occurrence, error) {
	var occ model.Occurrence
	if err := r.db.WithContext(ctx).First(&occ, id).Error; err != nil {
		return nil, err
	}
	return &occ, nil
}

// CreateSeries persists the anchor plus one generated member per date in a
// single transaction. Generated members copy every non-date field from the
// anchor and point back at it. Either the whole series lands or none of it
// does.
func (r *OccurrenceRepository) CreateSeries(ctx context.Context, anchor *model.Occurrence, dates []time.Time) ([]model.Occurrence, error) {
	var generated []model.Occurrence
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(anchor).Error; err != nil {
			return fmt.Errorf("create anchor: %w", err)
		}
		if len(dates) == 0 {
			return nil
		}
		generated = make([]model.Occurrence, 0, len(dates))
		for _, d := range dates {
			member := *anchor
			member.ID = 0
			member.Date = d
			member.SeriesAnchorID = &anchor.ID
			member.CreatedAt = time.Time{}
			member.UpdatedAt = time.Time{}
			generated = append(generated, member)
		}
		if err := tx.Create(&generated).Error; err != nil {
			return fmt.Errorf("create series members: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return generated, nil
}

// Save writes back a single mutated row.
func (r *OccurrenceRepository) Save(ctx context.Context, occ *model.Occurrence) error {
	if err := r.db.WithContext(ctx).Save(occ).Error; err != nil {
		return fmt.Errorf("save occurrence: %w", err)
	}
	return nil
}

// DeleteByID removes exactly one row, regardless of series membership.
func (r *OccurrenceRepository) DeleteByID(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Occurrence{}, id).Error; err != nil {
		return fmt.Errorf("delete occurrence: %w", err)
	}
	return nil
}

// DeleteAnchoredSeries removes the anchor row and every member pointing at
// it, scoped to the owner. The anchor carries a nil back-reference, so it
// has to be matched by id alongside the series filter.
func (r *OccurrenceRepository) DeleteAnchoredSeries(ctx context.Context, ownerID, anchorID uint) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND (id = ? OR series_anchor_id = ?)", ownerID, anchorID, anchorID).
		Delete(&model.Occurrence{}).Error; err != nil {
		return fmt.Errorf("delete series: %w", err)
	}
	return nil
}

// DeleteTasksByContentFrom removes every task row for the owner whose
// content matches and whose date is on or after the floor. This matches by
// text, not by anchor linkage, and so can reach rows a series filter never
// would.
func (r *OccurrenceRepository) DeleteTasksByContentFrom(ctx context.Context, ownerID uint, content string, floor time.Time) error {
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND content = ? AND date >= ?", ownerID, model.KindTask, content, floor).
		Delete(&model.Occurrence{}).Error; err != nil {
		return fmt.Errorf("delete task run: %w", err)
	}
	return nil
}

// ListForDay returns the owner's occurrences of one kind on a single date.
func (r *OccurrenceRepository) ListForDay(ctx context.Context, ownerID uint, kind model.Kind, day time.Time) ([]model.Occurrence, error) {
	var occurrences []model.Occurrence
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND date = ?", ownerID, kind, day).
		Order("start_time ASC, id ASC").
		Find(&occurrences).Error; err != nil {
		return nil, err
	}
	return occurrences, nil
}

// ListEventsBetween returns the owner's events in the inclusive date
// window, ordered for agenda rendering.
func (r *OccurrenceRepository) ListEventsBetween(ctx context.Context, ownerID uint, from, to time.Time) ([]model.Occurrence, error) {
	var events []model.Occurrence
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ? AND date >= ? AND date <= ?", ownerID, model.KindEvent, from, to).
		Order("date ASC, start_time ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}
