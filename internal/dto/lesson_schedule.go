package dto

import "github.com/noah-isme/edu-schedule-api/internal/models"

// GenerationStatus summarises the outcome of a generate call.
type GenerationStatus string

const (
	GenerationStatusGenerated         GenerationStatus = "generated"
	GenerationStatusNothingToGenerate GenerationStatus = "nothing_to_generate"
	GenerationStatusRejected          GenerationStatus = "rejected"
	GenerationStatusAllConflicting    GenerationStatus = "all_conflicting"
)

// GenerateLessonsRequest materialises a group's recurrence pattern into lessons.
// From and To default to the group's effective dates when omitted.
type GenerateLessonsRequest struct {
	GroupID              string   `json:"-" validate:"required"`
	From                 string   `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To                   string   `json:"to" validate:"omitempty,datetime=2006-01-02"`
	ExcludeDates         []string `json:"exclude_dates" validate:"omitempty,dive,datetime=2006-01-02"`
	SkipConflicts        bool     `json:"skip_conflicts"`
	Force                bool     `json:"force"`
	MaxLessons           int      `json:"max_lessons" validate:"omitempty,min=1,max=1000"`
	CheckGroupConflict   *bool    `json:"check_group_conflict"`
	CheckStudentConflict bool     `json:"check_student_conflict"`
	CompletePastLessons  bool     `json:"complete_past_lessons"`
}

// GenerateLessonsResult reports what a generate call created and skipped.
type GenerateLessonsResult struct {
	GroupID               string            `json:"group_id"`
	Status                GenerationStatus  `json:"status"`
	Message               string            `json:"message,omitempty"`
	From                  string            `json:"from"`
	To                    string            `json:"to"`
	RequestedCount        int               `json:"requested_count"`
	GeneratedCount        int               `json:"generated_count"`
	SkippedConflictCount  int               `json:"skipped_conflict_count"`
	SkippedExclusionCount int               `json:"skipped_exclusion_count"`
	SkippedExistingCount  int               `json:"skipped_existing_count"`
	Lessons               []models.Lesson   `json:"lessons"`
	Conflicts             []models.Conflict `json:"conflicts"`
	SkippedConflicts      []models.Conflict `json:"skipped_conflicts"`
}

// BulkGenerateLessonsRequest runs generation for several groups independently.
type BulkGenerateLessonsRequest struct {
	GroupIDs      []string `json:"group_ids" validate:"required,min=1,dive,required"`
	From          string   `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To            string   `json:"to" validate:"omitempty,datetime=2006-01-02"`
	ExcludeDates  []string `json:"exclude_dates" validate:"omitempty,dive,datetime=2006-01-02"`
	SkipConflicts bool     `json:"skip_conflicts"`
}

// BulkGroupError is the failure captured for a single group in a bulk run.
type BulkGroupError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// BulkGroupResult carries either a group's result or its failure.
type BulkGroupResult struct {
	GroupID string                 `json:"group_id"`
	Result  *GenerateLessonsResult `json:"result,omitempty"`
	Error   *BulkGroupError        `json:"error,omitempty"`
}

// BulkGenerateLessonsResult aggregates the per-group outcomes.
type BulkGenerateLessonsResult struct {
	Groups          []BulkGroupResult `json:"groups"`
	TotalGroups     int               `json:"total_groups"`
	SucceededGroups int               `json:"succeeded_groups"`
	RejectedGroups  int               `json:"rejected_groups"`
	FailedGroups    int               `json:"failed_groups"`
	TotalGenerated  int               `json:"total_generated"`
	TotalSkipped    int               `json:"total_skipped"`
}

// LessonRangeQuery selects a group's dates for read-only operations.
type LessonRangeQuery struct {
	GroupID              string   `validate:"required"`
	From                 string   `validate:"omitempty,datetime=2006-01-02"`
	To                   string   `validate:"omitempty,datetime=2006-01-02"`
	ExcludeDates         []string `validate:"omitempty,dive,datetime=2006-01-02"`
	CheckStudentConflict bool
}

// PreviewStatus classifies a candidate date.
type PreviewStatus string

const (
	PreviewStatusAvailable PreviewStatus = "available"
	PreviewStatusExisting  PreviewStatus = "existing"
	PreviewStatusConflict  PreviewStatus = "conflict"
)

// PreviewDate is one proposed lesson date.
type PreviewDate struct {
	Date             string            `json:"date"`
	Weekday          string            `json:"weekday"`
	StartTime        string            `json:"start_time"`
	EndTime          string            `json:"end_time"`
	Status           PreviewStatus     `json:"status"`
	ExistingLessonID string            `json:"existing_lesson_id,omitempty"`
	Conflicts        []models.Conflict `json:"conflicts,omitempty"`
}

// PreviewResult is the proposed schedule for a group.
type PreviewResult struct {
	GroupID        string        `json:"group_id"`
	From           string        `json:"from"`
	To             string        `json:"to"`
	Dates          []PreviewDate `json:"dates"`
	TotalCount     int           `json:"total_count"`
	AvailableCount int           `json:"available_count"`
	ExistingCount  int           `json:"existing_count"`
	ConflictCount  int           `json:"conflict_count"`
}

// AvailableDatesResult lists only conflict-free dates.
type AvailableDatesResult struct {
	GroupID string   `json:"group_id"`
	From    string   `json:"from"`
	To      string   `json:"to"`
	Dates   []string `json:"dates"`
	Count   int      `json:"count"`
}

// AvailabilityCheckRequest checks a proposed pattern that is not yet stored on a group.
// Weekdays accepts names (MONDAY, mon) or ISO numbers as strings ("1".."7").
type AvailabilityCheckRequest struct {
	Weekdays             []string `json:"weekdays" validate:"required,min=1,max=7,dive,required"`
	StartTime            string   `json:"start_time" validate:"required"`
	DurationMinutes      int      `json:"duration_minutes" validate:"required,min=1,max=1440"`
	TeacherID            string   `json:"teacher_id" validate:"required"`
	RoomID               string   `json:"room_id"`
	GroupID              string   `json:"group_id"`
	From                 string   `json:"from" validate:"required,datetime=2006-01-02"`
	To                   string   `json:"to" validate:"required,datetime=2006-01-02"`
	ExcludeDates         []string `json:"exclude_dates" validate:"omitempty,dive,datetime=2006-01-02"`
	CheckGroupConflict   *bool    `json:"check_group_conflict"`
	CheckStudentConflict bool     `json:"check_student_conflict"`
}

// AvailabilityCheckResult reports conflicts for a proposed pattern.
type AvailabilityCheckResult struct {
	Available         bool              `json:"available"`
	CandidateCount    int               `json:"candidate_count"`
	ConflictDateCount int               `json:"conflict_date_count"`
	AvailableDates    []string          `json:"available_dates"`
	Conflicts         []models.Conflict `json:"conflicts"`
}

// ClearLessonsRequest deletes a group's lessons in an inclusive range.
type ClearLessonsRequest struct {
	GroupID string `validate:"required"`
	From    string `validate:"required,datetime=2006-01-02"`
	To      string `validate:"required,datetime=2006-01-02"`
}

// ClearLessonsResult reports how many lessons were removed.
type ClearLessonsResult struct {
	GroupID      string `json:"group_id"`
	From         string `json:"from"`
	To           string `json:"to"`
	DeletedCount int64  `json:"deleted_count"`
}

// ExportLessonsQuery selects a group's lessons for CSV or PDF export.
type ExportLessonsQuery struct {
	GroupID string `validate:"required"`
	From    string `validate:"omitempty,datetime=2006-01-02"`
	To      string `validate:"omitempty,datetime=2006-01-02"`
	Format  string `validate:"omitempty,oneof=csv pdf"`
}

// ExportFile is a rendered export ready to be streamed.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}
