package model

import "time"

// Kind distinguishes the two flavors of occurrence stored in the arena.
type Kind string

const (
	KindTask  Kind = "task"
	KindEvent Kind = "event"
)

// Task priority bounds. The zero draft value is replaced with the default.
const (
	PriorityMin     = 1
	PriorityDefault = 2
	PriorityMax     = 3
)

// RecurrenceNone marks a one-off occurrence.
const RecurrenceNone = "none"

// Occurrence is a single dated entry: a task or a calendar event.
// A recurring series is one anchor row (SeriesAnchorID nil, the row the
// user authored) plus every row generated from it, each carrying a
// back-reference to the anchor. Series membership never changes after
// creation.
type Occurrence struct {
	ID             uint `gorm:"primaryKey"`
	UserID         uint `gorm:"index"`
	Kind           Kind `gorm:"index"`
	Content        string
	Date           time.Time `gorm:"index"`
	Completed      bool      `gorm:"default:false"`
	Priority       int       `gorm:"default:2"`
	StartTime      string    // "15:04", events only
	EndTime        string    // "15:04", events only
	IsAllDay       bool
	Recurrence     string `gorm:"default:none"`
	SeriesAnchorID *uint  `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsRecurring reports whether the occurrence belongs to a recurring series.
func (o *Occurrence) IsRecurring() bool {
	return o.Recurrence != "" && o.Recurrence != RecurrenceNone
}

// IsAnchor reports whether this is the user-authored row of its series.
func (o *Occurrence) IsAnchor() bool {
	return o.SeriesAnchorID == nil
}
