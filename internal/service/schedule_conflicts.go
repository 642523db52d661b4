package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

// lessonReader is the read side of the lesson registry. Teacher, room and
// multi-group reads leave out cancelled lessons; the group read returns all.
type lessonReader interface {
	ListByGroupInRange(ctx context.Context, groupID string, from, to time.Time) ([]models.LessonSlot, error)
	ListByTeacherInRange(ctx context.Context, teacherID, excludeGroupID string, from, to time.Time) ([]models.LessonSlot, error)
	ListByRoomInRange(ctx context.Context, roomID, excludeGroupID string, from, to time.Time) ([]models.LessonSlot, error)
	ListByGroupsInRange(ctx context.Context, groupIDs []string, from, to time.Time) ([]models.LessonSlot, error)
}

type enrollmentReader interface {
	ListActiveByGroup(ctx context.Context, groupID string) ([]models.Enrollment, error)
	ListActiveGroupsByStudents(ctx context.Context, studentIDs []string) ([]models.EnrolledGroup, error)
}

// DetectionFlags toggles the conflict dimensions.
type DetectionFlags struct {
	CheckGroup    bool
	CheckTeacher  bool
	CheckRoom     bool
	CheckStudents bool
}

// DefaultDetectionFlags enables group, teacher and room checks.
func DefaultDetectionFlags() DetectionFlags {
	return DetectionFlags{CheckGroup: true, CheckTeacher: true, CheckRoom: true}
}

// DetectionInput describes the candidate lessons to check. GroupID may be empty
// for ad-hoc patterns, in which case group and student checks are skipped.
type DetectionInput struct {
	Dates     []time.Time
	Interval  Interval
	GroupID   string
	TeacherID string
	RoomID    string
	Flags     DetectionFlags
}

// DetectionReport carries the conflicts plus the group's own lessons keyed by
// date, which callers use to tell "already scheduled" apart from "available".
type DetectionReport struct {
	Conflicts []models.Conflict
	Existing  map[string]models.LessonSlot
}

// ConflictDates groups the conflicts by calendar date.
func (r *DetectionReport) ConflictDates() map[string][]models.Conflict {
	byDate := make(map[string][]models.Conflict)
	for _, c := range r.Conflicts {
		key := dateKey(c.Date)
		byDate[key] = append(byDate[key], c)
	}
	return byDate
}

// ConflictDetector classifies candidate dates along the group, teacher, room
// and student dimensions using one bounded read per dimension.
type ConflictDetector struct {
	lessons     lessonReader
	enrollments enrollmentReader
	logger      *zap.Logger
}

// NewConflictDetector constructs a detector.
func NewConflictDetector(lessons lessonReader, enrollments enrollmentReader, logger *zap.Logger) *ConflictDetector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConflictDetector{lessons: lessons, enrollments: enrollments, logger: logger}
}

// Detect returns every conflict for the candidate dates in a stable order.
func (d *ConflictDetector) Detect(ctx context.Context, in DetectionInput) ([]models.Conflict, error) {
	report, err := d.Analyze(ctx, in)
	if err != nil {
		return nil, err
	}
	return report.Conflicts, nil
}

// Analyze runs the detection and also returns the group's existing lessons.
func (d *ConflictDetector) Analyze(ctx context.Context, in DetectionInput) (*DetectionReport, error) {
	report := &DetectionReport{Existing: map[string]models.LessonSlot{}}
	if len(in.Dates) == 0 {
		return report, nil
	}
	dates := make([]time.Time, 0, len(in.Dates))
	seen := make(map[string]struct{}, len(in.Dates))
	for _, date := range in.Dates {
		date = truncateDate(date)
		if _, dup := seen[dateKey(date)]; dup {
			continue
		}
		seen[dateKey(date)] = struct{}{}
		dates = append(dates, date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	from, to := dates[0], dates[len(dates)-1]

	groupByDate, err := d.loadGroupLessons(ctx, in.GroupID, from, to)
	if err != nil {
		return nil, err
	}
	for key, slots := range groupByDate {
		report.Existing[key] = slots[0]
	}

	var teacherByDate, roomByDate map[string][]models.LessonSlot
	if in.Flags.CheckTeacher && in.TeacherID != "" {
		rows, err := d.lessons.ListByTeacherInRange(ctx, in.TeacherID, in.GroupID, from, to)
		if err != nil {
			return nil, fmt.Errorf("load teacher lessons: %w", err)
		}
		teacherByDate = groupSlotsByDate(rows)
	}
	if in.Flags.CheckRoom && in.RoomID != "" {
		rows, err := d.lessons.ListByRoomInRange(ctx, in.RoomID, in.GroupID, from, to)
		if err != nil {
			return nil, fmt.Errorf("load room lessons: %w", err)
		}
		roomByDate = groupSlotsByDate(rows)
	}
	var students *studentSchedules
	if in.Flags.CheckStudents && in.GroupID != "" && d.enrollments != nil {
		students, err = d.loadStudentSchedules(ctx, in.GroupID, from, to)
		if err != nil {
			return nil, err
		}
	}

	for _, date := range dates {
		key := dateKey(date)

		if in.Flags.CheckGroup {
			if own := groupByDate[key]; len(own) > 0 {
				for _, slot := range own {
					report.Conflicts = append(report.Conflicts, d.newConflict(models.ConflictTypeGroup, date, slot, "",
						fmt.Sprintf("group already has a lesson on %s", key)))
				}
				continue
			}
		}

		teacherHit := false
		for _, slot := range teacherByDate[key] {
			existing, ok := d.slotInterval(slot)
			if !ok || !Overlaps(in.Interval, existing) {
				continue
			}
			teacherHit = true
			report.Conflicts = append(report.Conflicts, d.newConflict(models.ConflictTypeTeacher, date, slot, "",
				fmt.Sprintf("teacher already teaches %s from %s to %s on %s", slot.GroupName, existing.Start, existing.End(), key)))
		}

		roomHit := false
		if !teacherHit {
			for _, slot := range roomByDate[key] {
				existing, ok := d.slotInterval(slot)
				if !ok || !Overlaps(in.Interval, existing) {
					continue
				}
				roomHit = true
				report.Conflicts = append(report.Conflicts, d.newConflict(models.ConflictTypeRoom, date, slot, "",
					fmt.Sprintf("room is occupied by %s from %s to %s on %s", slot.GroupName, existing.Start, existing.End(), key)))
			}
		}

		if students == nil || teacherHit || roomHit {
			continue
		}
		for _, slot := range students.byDate[key] {
			existing, ok := d.slotInterval(slot)
			if !ok || !Overlaps(in.Interval, existing) {
				continue
			}
			for _, studentID := range students.byGroup[slot.GroupID] {
				report.Conflicts = append(report.Conflicts, d.newConflict(models.ConflictTypeStudent, date, slot, studentID,
					fmt.Sprintf("student %s attends %s from %s to %s on %s", studentID, slot.GroupName, existing.Start, existing.End(), key)))
			}
		}
	}

	sortConflicts(report.Conflicts)
	return report, nil
}

func (d *ConflictDetector) loadGroupLessons(ctx context.Context, groupID string, from, to time.Time) (map[string][]models.LessonSlot, error) {
	if groupID == "" {
		return map[string][]models.LessonSlot{}, nil
	}
	rows, err := d.lessons.ListByGroupInRange(ctx, groupID, from, to)
	if err != nil {
		return nil, fmt.Errorf("load group lessons: %w", err)
	}
	return groupSlotsByDate(rows), nil
}

type studentSchedules struct {
	byGroup map[string][]string
	byDate  map[string][]models.LessonSlot
}

func (d *ConflictDetector) loadStudentSchedules(ctx context.Context, groupID string, from, to time.Time) (*studentSchedules, error) {
	enrollments, err := d.enrollments.ListActiveByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("load group enrollments: %w", err)
	}
	studentIDs := uniqueStudentIDs(enrollments)
	out := &studentSchedules{byGroup: map[string][]string{}, byDate: map[string][]models.LessonSlot{}}
	if len(studentIDs) == 0 {
		return out, nil
	}
	others, err := d.enrollments.ListActiveGroupsByStudents(ctx, studentIDs)
	if err != nil {
		return nil, fmt.Errorf("load student groups: %w", err)
	}
	for _, eg := range others {
		if eg.GroupID == groupID {
			continue
		}
		out.byGroup[eg.GroupID] = append(out.byGroup[eg.GroupID], eg.StudentID)
	}
	if len(out.byGroup) == 0 {
		return out, nil
	}
	groupIDs := make([]string, 0, len(out.byGroup))
	for id, students := range out.byGroup {
		sort.Strings(students)
		groupIDs = append(groupIDs, id)
	}
	sort.Strings(groupIDs)
	rows, err := d.lessons.ListByGroupsInRange(ctx, groupIDs, from, to)
	if err != nil {
		return nil, fmt.Errorf("load student lessons: %w", err)
	}
	out.byDate = groupSlotsByDate(rows)
	return out, nil
}

func (d *ConflictDetector) slotInterval(slot models.LessonSlot) (Interval, bool) {
	if slot.StartTime == nil || slot.DurationMinutes == nil {
		d.logger.Warn("lesson without group time metadata ignored",
			zap.String("lesson_id", slot.ID),
			zap.String("group_id", slot.GroupID))
		return Interval{}, false
	}
	interval, err := NewInterval(*slot.StartTime, *slot.DurationMinutes)
	if err != nil {
		d.logger.Warn("lesson with unparseable group time ignored",
			zap.String("lesson_id", slot.ID),
			zap.String("group_id", slot.GroupID),
			zap.Error(err))
		return Interval{}, false
	}
	return interval, true
}

func (d *ConflictDetector) newConflict(kind models.ConflictType, date time.Time, slot models.LessonSlot, studentID, message string) models.Conflict {
	ref := models.ExistingLessonRef{
		LessonID:  slot.ID,
		GroupID:   slot.GroupID,
		GroupName: slot.GroupName,
	}
	if slot.StartTime != nil && slot.DurationMinutes != nil {
		if interval, err := NewInterval(*slot.StartTime, *slot.DurationMinutes); err == nil {
			ref.StartTime = interval.Start.String()
			ref.EndTime = interval.End().String()
		}
	}
	severity := models.ConflictSeverityWarning
	if kind == models.ConflictTypeGroup {
		severity = models.ConflictSeverityError
	}
	return models.Conflict{
		Type:      kind,
		Date:      date,
		Message:   message,
		Severity:  severity,
		Skippable: kind != models.ConflictTypeGroup,
		Existing:  ref,
		StudentID: studentID,
	}
}

var conflictRank = map[models.ConflictType]int{
	models.ConflictTypeGroup:   0,
	models.ConflictTypeTeacher: 1,
	models.ConflictTypeRoom:    2,
	models.ConflictTypeStudent: 3,
}

func sortConflicts(conflicts []models.Conflict) {
	sort.SliceStable(conflicts, func(i, j int) bool {
		a, b := conflicts[i], conflicts[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if conflictRank[a.Type] != conflictRank[b.Type] {
			return conflictRank[a.Type] < conflictRank[b.Type]
		}
		if a.Existing.LessonID != b.Existing.LessonID {
			return a.Existing.LessonID < b.Existing.LessonID
		}
		return a.StudentID < b.StudentID
	})
}

func groupSlotsByDate(rows []models.LessonSlot) map[string][]models.LessonSlot {
	byDate := make(map[string][]models.LessonSlot)
	for _, row := range rows {
		key := dateKey(row.LessonDate)
		byDate[key] = append(byDate[key], row)
	}
	return byDate
}

func uniqueStudentIDs(enrollments []models.Enrollment) []string {
	seen := make(map[string]struct{}, len(enrollments))
	ids := make([]string, 0, len(enrollments))
	for _, e := range enrollments {
		if e.Status != models.EnrollmentStatusActive {
			continue
		}
		if _, ok := seen[e.StudentID]; ok {
			continue
		}
		seen[e.StudentID] = struct{}{}
		ids = append(ids, e.StudentID)
	}
	sort.Strings(ids)
	return ids
}

// hasBlockingConflict reports whether any conflict cannot be skipped.
func hasBlockingConflict(conflicts []models.Conflict) bool {
	for _, c := range conflicts {
		if !c.Skippable {
			return true
		}
	}
	return false
}
