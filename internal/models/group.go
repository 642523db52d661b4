package models

import (
	"time"

	"github.com/lib/pq"
)

// GroupStatus represents the lifecycle of a study group.
type GroupStatus string

const (
	GroupStatusActive   GroupStatus = "active"
	GroupStatusArchived GroupStatus = "archived"
)

// Group is a study group carrying its weekly recurrence pattern.
type Group struct {
	ID              string        `db:"id" json:"id"`
	Name            string        `db:"name" json:"name"`
	TeacherID       *string       `db:"teacher_id" json:"teacher_id,omitempty"`
	RoomID          *string       `db:"room_id" json:"room_id,omitempty"`
	Weekdays        pq.Int64Array `db:"weekdays" json:"weekdays"`
	StartTime       *string       `db:"start_time" json:"start_time,omitempty"`
	DurationMinutes *int          `db:"duration_minutes" json:"duration_minutes,omitempty"`
	StartDate       *time.Time    `db:"start_date" json:"start_date,omitempty"`
	EndDate         *time.Time    `db:"end_date" json:"end_date,omitempty"`
	Status          GroupStatus   `db:"status" json:"status"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time     `db:"updated_at" json:"updated_at"`
}

// WeekdayInts returns the configured weekdays as plain ints.
func (g *Group) WeekdayInts() []int {
	if g == nil {
		return nil
	}
	days := make([]int, 0, len(g.Weekdays))
	for _, d := range g.Weekdays {
		days = append(days, int(d))
	}
	return days
}
