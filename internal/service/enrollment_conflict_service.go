package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-schedule-api/internal/dto"
	"github.com/noah-isme/edu-schedule-api/internal/models"
	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
)

type studentGroupReader interface {
	ListActiveGroupsByStudents(ctx context.Context, studentIDs []string) ([]models.EnrolledGroup, error)
}

// EnrollmentConflictService checks whether students can join a group without
// their weekly timetable colliding with groups they already attend.
type EnrollmentConflictService struct {
	groups      groupReader
	enrollments studentGroupReader
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewEnrollmentConflictService constructs the service.
func NewEnrollmentConflictService(groups groupReader, enrollments studentGroupReader, validate *validator.Validate, logger *zap.Logger) *EnrollmentConflictService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentConflictService{groups: groups, enrollments: enrollments, validator: validate, logger: logger}
}

// CheckStudents compares the target group's weekly slot with every other
// active group of each student. All colliding groups are listed.
func (s *EnrollmentConflictService) CheckStudents(ctx context.Context, groupID string, req dto.EnrollmentConflictRequest) (*dto.EnrollmentConflictResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment conflict payload")
	}
	if strings.TrimSpace(groupID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group id is required")
	}

	group, err := s.groups.FindByID(ctx, groupID)
	if err != nil {
		return nil, mapLookupError(err, "group not found", "failed to load group")
	}
	targetDays, targetSlot, err := weeklySlot(group)
	if err != nil {
		return nil, err
	}

	studentIDs := uniqueStrings(req.StudentIDs)
	enrolled, err := s.enrollments.ListActiveGroupsByStudents(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student enrollments")
	}
	byStudent := make(map[string][]models.EnrolledGroup, len(studentIDs))
	for _, eg := range enrolled {
		byStudent[eg.StudentID] = append(byStudent[eg.StudentID], eg)
	}

	out := &dto.EnrollmentConflictResult{GroupID: group.ID, Students: make([]dto.StudentEnrollmentCheck, 0, len(studentIDs))}
	for _, studentID := range studentIDs {
		check := dto.StudentEnrollmentCheck{StudentID: studentID, Conflicts: []dto.PatternConflict{}}
		for _, other := range byStudent[studentID] {
			if other.GroupID == group.ID {
				continue
			}
			conflict, ok := s.compare(targetDays, targetSlot, other)
			if ok {
				check.Conflicts = append(check.Conflicts, conflict)
			}
		}
		check.CanBeAdded = len(check.Conflicts) == 0
		if !check.CanBeAdded {
			out.ConflictingCount++
		}
		out.Students = append(out.Students, check)
	}
	return out, nil
}

func (s *EnrollmentConflictService) compare(targetDays map[int]struct{}, target Interval, other models.EnrolledGroup) (dto.PatternConflict, bool) {
	var shared []string
	for _, day := range sortedWeekdays(int64sToInts(other.Weekdays)) {
		if _, ok := targetDays[day]; ok {
			shared = append(shared, WeekdayName(day))
		}
	}
	if len(shared) == 0 {
		return dto.PatternConflict{}, false
	}
	if other.StartTime == nil || other.DurationMinutes == nil {
		s.logger.Warn("enrolled group without time settings ignored", zap.String("group_id", other.GroupID))
		return dto.PatternConflict{}, false
	}
	slot, err := NewInterval(*other.StartTime, *other.DurationMinutes)
	if err != nil {
		s.logger.Warn("enrolled group with invalid time ignored", zap.String("group_id", other.GroupID), zap.Error(err))
		return dto.PatternConflict{}, false
	}
	overlap := OverlapMinutes(target, slot)
	if overlap == 0 {
		return dto.PatternConflict{}, false
	}
	return dto.PatternConflict{
		GroupID:        other.GroupID,
		GroupName:      other.GroupName,
		SharedWeekdays: shared,
		StartTime:      slot.Start.String(),
		EndTime:        slot.End().String(),
		OverlapMinutes: overlap,
	}, true
}

// weeklySlot validates the part of a group's pattern the enrollment check needs.
func weeklySlot(group *models.Group) (map[int]struct{}, Interval, error) {
	var missing []string
	if len(group.Weekdays) == 0 {
		missing = append(missing, "weekdays")
	}
	if group.StartTime == nil || strings.TrimSpace(*group.StartTime) == "" {
		missing = append(missing, "start_time")
	}
	if group.DurationMinutes == nil || *group.DurationMinutes <= 0 {
		missing = append(missing, "duration_minutes")
	}
	if len(missing) > 0 {
		return nil, Interval{}, appErrors.Clone(appErrors.ErrMissingSettings, "group schedule settings are incomplete: "+strings.Join(missing, ", ")).WithDetails(missing...)
	}
	days := group.WeekdayInts()
	if err := ValidateWeekdays(days); err != nil {
		return nil, Interval{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	slot, err := NewInterval(*group.StartTime, *group.DurationMinutes)
	if err != nil {
		return nil, Interval{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	set := make(map[int]struct{}, len(days))
	for _, day := range days {
		set[day] = struct{}{}
	}
	return set, slot, nil
}

func int64sToInts(values []int64) []int {
	out := make([]int, 0, len(values))
	for _, v := range values {
		out = append(out, int(v))
	}
	return out
}
