package models

import (
	"time"

	"github.com/lib/pq"
)

// EnrollmentStatus represents the lifecycle of an enrollment.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive    EnrollmentStatus = "active"
	EnrollmentStatusInactive  EnrollmentStatus = "inactive"
	EnrollmentStatusCompleted EnrollmentStatus = "completed"
)

// Enrollment links a student to a group.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	StudentID string           `db:"student_id" json:"student_id"`
	GroupID   string           `db:"group_id" json:"group_id"`
	JoinedAt  time.Time        `db:"joined_at" json:"joined_at"`
	Status    EnrollmentStatus `db:"status" json:"status"`
}

// EnrolledGroup is an active enrollment joined with the enrolled group's recurrence pattern.
type EnrolledGroup struct {
	EnrollmentID    string        `db:"enrollment_id" json:"enrollment_id"`
	StudentID       string        `db:"student_id" json:"student_id"`
	GroupID         string        `db:"group_id" json:"group_id"`
	GroupName       string        `db:"group_name" json:"group_name"`
	Weekdays        pq.Int64Array `db:"weekdays" json:"weekdays"`
	StartTime       *string       `db:"start_time" json:"start_time,omitempty"`
	DurationMinutes *int          `db:"duration_minutes" json:"duration_minutes,omitempty"`
}
