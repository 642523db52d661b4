package models

import "time"

// LessonStatus tracks the lifecycle of a lesson instance.
type LessonStatus string

const (
	LessonStatusPlanned   LessonStatus = "planned"
	LessonStatusCompleted LessonStatus = "completed"
	LessonStatusCancelled LessonStatus = "cancelled"
)

// Valid reports whether the status is a known value.
func (s LessonStatus) Valid() bool {
	switch s {
	case LessonStatusPlanned, LessonStatusCompleted, LessonStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo reports whether a lesson may move from s to next.
// Only planned lessons move; completed and cancelled are terminal.
func (s LessonStatus) CanTransitionTo(next LessonStatus) bool {
	if s != LessonStatusPlanned {
		return false
	}
	return next == LessonStatusCompleted || next == LessonStatusCancelled
}

// Lesson is a single dated occurrence of a group's recurring schedule.
type Lesson struct {
	ID         string       `db:"id" json:"id"`
	GroupID    string       `db:"group_id" json:"group_id"`
	LessonDate time.Time    `db:"lesson_date" json:"lesson_date"`
	TeacherID  string       `db:"teacher_id" json:"teacher_id"`
	RoomID     *string      `db:"room_id" json:"room_id,omitempty"`
	Status     LessonStatus `db:"status" json:"status"`
	CreatedAt  time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time    `db:"updated_at" json:"updated_at"`
}

// LessonSlot is a lesson row joined with the owning group's time metadata.
type LessonSlot struct {
	Lesson
	GroupName       string  `db:"group_name" json:"group_name"`
	StartTime       *string `db:"start_time" json:"start_time,omitempty"`
	DurationMinutes *int    `db:"duration_minutes" json:"duration_minutes,omitempty"`
}
