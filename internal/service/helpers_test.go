package service

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"task-planner/internal/model"
	"task-planner/internal/repository"
)

// newTestDB opens a private in-memory database per test.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Occurrence{}, &model.VerificationCode{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func newSeriesService(t *testing.T) (*SeriesService, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	return NewSeriesService(repository.NewOccurrenceRepository(db)), db
}

func countOccurrences(t *testing.T, db *gorm.DB, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	tx := db.Model(&model.Occurrence{})
	if query != "" {
		tx = tx.Where(query, args...)
	}
	if err := tx.Count(&count).Error; err != nil {
		t.Fatalf("count occurrences: %v", err)
	}
	return count
}

func mustCreate(t *testing.T, s *SeriesService, ownerID uint, draft Draft) (*model.Occurrence, []model.Occurrence) {
	t.Helper()
	anchor, generated, err := s.CreateSeries(context.Background(), ownerID, draft)
	if err != nil {
		t.Fatalf("create series: %v", err)
	}
	return anchor, generated
}

func taskDraft(content, date, rule string) Draft {
	return Draft{Kind: model.KindTask, Content: content, Date: date, Recurrence: rule}
}

func eventDraft(title, date, rule string) Draft {
	return Draft{
		Kind:       model.KindEvent,
		Content:    title,
		Date:       date,
		StartTime:  "09:00",
		EndTime:    "10:00",
		Recurrence: rule,
	}
}
