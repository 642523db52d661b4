package models

import "time"

// ConflictType names the resource dimension along which two lessons collide.
type ConflictType string

const (
	ConflictTypeGroup   ConflictType = "group"
	ConflictTypeTeacher ConflictType = "teacher"
	ConflictTypeRoom    ConflictType = "room"
	ConflictTypeStudent ConflictType = "student"
)

// ConflictSeverity grades how a conflict affects a generation batch.
type ConflictSeverity string

const (
	ConflictSeverityError   ConflictSeverity = "error"
	ConflictSeverityWarning ConflictSeverity = "warning"
)

// ExistingLessonRef points at the persisted lesson a candidate collides with.
type ExistingLessonRef struct {
	LessonID  string `json:"lesson_id"`
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// Conflict describes one detected collision for a candidate date. It is never persisted.
type Conflict struct {
	Type      ConflictType      `json:"type"`
	Date      time.Time         `json:"date"`
	Message   string            `json:"message"`
	Severity  ConflictSeverity  `json:"severity"`
	Skippable bool              `json:"skippable"`
	Existing  ExistingLessonRef `json:"existing_lesson"`
	StudentID string            `json:"student_id,omitempty"`
}
