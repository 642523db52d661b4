package dto

// EnrollmentConflictRequest lists the students to be added to a group.
type EnrollmentConflictRequest struct {
	StudentIDs []string `json:"student_ids" validate:"required,min=1,max=500,dive,required"`
}

// PatternConflict is a weekly slot collision between two groups a student would attend.
type PatternConflict struct {
	GroupID        string   `json:"group_id"`
	GroupName      string   `json:"group_name"`
	SharedWeekdays []string `json:"shared_weekdays"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time"`
	OverlapMinutes int      `json:"overlap_minutes"`
}

// StudentEnrollmentCheck is the verdict for a single student.
type StudentEnrollmentCheck struct {
	StudentID  string            `json:"student_id"`
	CanBeAdded bool              `json:"can_be_added"`
	Conflicts  []PatternConflict `json:"conflicts"`
}

// EnrollmentConflictResult aggregates the per-student verdicts.
type EnrollmentConflictResult struct {
	GroupID          string                   `json:"group_id"`
	Students         []StudentEnrollmentCheck `json:"students"`
	ConflictingCount int                      `json:"conflicting_count"`
}
