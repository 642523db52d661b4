package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-schedule-api/internal/dto"
	"github.com/noah-isme/edu-schedule-api/internal/models"
	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
	"github.com/noah-isme/edu-schedule-api/pkg/middleware/requestid"
)

type groupReader interface {
	FindByID(ctx context.Context, id string) (*models.Group, error)
}

type lessonWriter interface {
	BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, lessons []models.Lesson) error
	DeleteByGroupInRange(ctx context.Context, groupID string, from, to time.Time) (int64, error)
}

type txProvider interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

type conflictAnalyzer interface {
	Analyze(ctx context.Context, in DetectionInput) (*DetectionReport, error)
}

type generationMetrics interface {
	ObserveGeneration(outcome string, created int, conflicts []models.Conflict, duration time.Duration)
	ObserveLockWait(duration time.Duration)
	ObserveDBQuery(label string, duration time.Duration)
}

// LessonScheduleConfig governs range limits and the clock used for past lessons.
type LessonScheduleConfig struct {
	MaxRangeDays  int
	MaxBulkGroups int
	Location      *time.Location
	Now           func() time.Time
}

// LessonScheduleService expands group recurrence patterns into lessons,
// applies the conflict policy and materialises the result atomically.
type LessonScheduleService struct {
	groups    groupReader
	lessons   lessonWriter
	detector  conflictAnalyzer
	locker    resourceLocker
	tx        txProvider
	metrics   generationMetrics
	validator *validator.Validate
	logger    *zap.Logger
	cfg       LessonScheduleConfig
}

// NewLessonScheduleService wires scheduling dependencies.
func NewLessonScheduleService(
	groups groupReader,
	lessons lessonWriter,
	detector conflictAnalyzer,
	locker resourceLocker,
	tx txProvider,
	metrics generationMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg LessonScheduleConfig,
) *LessonScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if locker == nil {
		locker = noopLocker{}
	}
	if metrics == nil {
		metrics = (*MetricsService)(nil)
	}
	if cfg.MaxRangeDays <= 0 {
		cfg.MaxRangeDays = 366
	}
	if cfg.MaxBulkGroups <= 0 {
		cfg.MaxBulkGroups = 50
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &LessonScheduleService{
		groups:    groups,
		lessons:   lessons,
		detector:  detector,
		locker:    locker,
		tx:        tx,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// recurrence is a fully validated pattern ready for expansion.
type recurrence struct {
	weekdays  []int
	interval  Interval
	teacherID string
	roomID    string
}

// --- Generate ---

// Generate materialises the group's lessons in the requested range. Conflict
// rejection and partial success are reported through the result, not as errors.
func (s *LessonScheduleService) Generate(ctx context.Context, req dto.GenerateLessonsRequest) (*dto.GenerateLessonsResult, error) {
	started := time.Now()
	result, err := s.generate(ctx, req)

	outcome := "error"
	created := 0
	var conflicts []models.Conflict
	if result != nil {
		outcome = string(result.Status)
		created = result.GeneratedCount
		conflicts = result.Conflicts
	}
	s.metrics.ObserveGeneration(outcome, created, conflicts, time.Since(started))
	return result, err
}

func (s *LessonScheduleService) generate(ctx context.Context, req dto.GenerateLessonsRequest) (*dto.GenerateLessonsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson generation payload")
	}
	exclusions, err := parseDateList(req.ExcludeDates)
	if err != nil {
		return nil, err
	}

	group, err := s.loadGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	if group.Status == models.GroupStatusArchived {
		return nil, appErrors.Clone(appErrors.ErrValidation, "cannot generate lessons for an archived group")
	}
	pattern, err := groupRecurrence(group)
	if err != nil {
		return nil, err
	}
	from, to, err := resolveDateRange(req.From, req.To, group, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	logger := s.requestLogger(ctx).With(zap.String("group_id", group.ID))

	lockStarted := time.Now()
	release, err := s.locker.Acquire(ctx, scheduleLockKeys(group.ID, pattern.teacherID, pattern.roomID))
	s.metrics.ObserveLockWait(time.Since(lockStarted))
	if err != nil {
		if errors.Is(err, appErrors.ErrLockTimeout) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to acquire schedule locks")
	}
	defer release()

	unconstrained := ExpandDates(ExpandOptions{From: from, To: to, Weekdays: pattern.weekdays})
	candidates := ExpandDates(ExpandOptions{
		From:       from,
		To:         to,
		Weekdays:   pattern.weekdays,
		Exclusions: exclusions,
		MaxCount:   req.MaxLessons,
	})

	result := &dto.GenerateLessonsResult{
		GroupID:               group.ID,
		From:                  dateKey(from),
		To:                    dateKey(to),
		RequestedCount:        len(unconstrained),
		SkippedExclusionCount: countExcluded(unconstrained, exclusions),
		Lessons:               []models.Lesson{},
		Conflicts:             []models.Conflict{},
		SkippedConflicts:      []models.Conflict{},
	}
	if len(candidates) == 0 {
		result.Status = dto.GenerationStatusNothingToGenerate
		result.Message = "no candidate dates in range"
		if from.After(to) {
			result.Message = "requested range is outside the group's effective dates"
		}
		return result, nil
	}

	checkGroup := req.CheckGroupConflict == nil || *req.CheckGroupConflict
	report, err := s.detector.Analyze(ctx, DetectionInput{
		Dates:     candidates,
		Interval:  pattern.interval,
		GroupID:   group.ID,
		TeacherID: pattern.teacherID,
		RoomID:    pattern.roomID,
		Flags: DetectionFlags{
			CheckGroup:    checkGroup,
			CheckTeacher:  true,
			CheckRoom:     true,
			CheckStudents: req.CheckStudentConflict,
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detect schedule conflicts")
	}

	surviving := candidates
	if len(report.Conflicts) > 0 {
		result.Conflicts = report.Conflicts
		switch {
		case hasBlockingConflict(report.Conflicts):
			result.Status = dto.GenerationStatusRejected
			result.Message = "group already has lessons on some requested dates"
			logger.Info("lesson generation rejected", zap.Int("conflicts", len(report.Conflicts)), zap.Bool("blocking", true))
			return result, nil
		case req.SkipConflicts:
			byDate := report.ConflictDates()
			surviving = make([]time.Time, 0, len(candidates))
			for _, date := range candidates {
				if _, conflicted := byDate[dateKey(date)]; conflicted {
					continue
				}
				surviving = append(surviving, date)
			}
			result.SkippedConflicts = report.Conflicts
			result.SkippedConflictCount = len(byDate)
		case req.Force:
			logger.Warn("forcing lesson generation despite conflicts", zap.Int("conflicts", len(report.Conflicts)))
		default:
			result.Status = dto.GenerationStatusRejected
			result.Message = "conflicts detected; retry with skip_conflicts or force"
			logger.Info("lesson generation rejected", zap.Int("conflicts", len(report.Conflicts)))
			return result, nil
		}
	}

	if !checkGroup {
		kept := make([]time.Time, 0, len(surviving))
		for _, date := range surviving {
			if _, exists := report.Existing[dateKey(date)]; exists {
				result.SkippedExistingCount++
				continue
			}
			kept = append(kept, date)
		}
		surviving = kept
	}

	if len(surviving) == 0 {
		if result.SkippedConflictCount > 0 {
			result.Status = dto.GenerationStatusAllConflicting
			result.Message = "every candidate date conflicts; no lessons generated"
		} else {
			result.Status = dto.GenerationStatusNothingToGenerate
			result.Message = "every candidate date already has a lesson"
		}
		return result, nil
	}

	lessons := s.buildLessons(group.ID, pattern, surviving, req.CompletePastLessons)
	if err := s.persist(ctx, lessons); err != nil {
		logger.Error("lesson generation rolled back", zap.Error(err), zap.Int("lessons", len(lessons)))
		return nil, err
	}

	result.Status = dto.GenerationStatusGenerated
	result.Lessons = lessons
	result.GeneratedCount = len(lessons)
	logger.Info("lessons generated",
		zap.Int("requested", result.RequestedCount),
		zap.Int("generated", result.GeneratedCount),
		zap.Int("skipped_conflicts", result.SkippedConflictCount),
		zap.Int("skipped_exclusions", result.SkippedExclusionCount),
		zap.Int("skipped_existing", result.SkippedExistingCount))
	return result, nil
}

func (s *LessonScheduleService) buildLessons(groupID string, pattern *recurrence, dates []time.Time, completePast bool) []models.Lesson {
	today := truncateDate(s.cfg.Now().In(s.cfg.Location))
	var roomID *string
	if pattern.roomID != "" {
		room := pattern.roomID
		roomID = &room
	}
	lessons := make([]models.Lesson, 0, len(dates))
	for _, date := range dates {
		status := models.LessonStatusPlanned
		if completePast && date.Before(today) {
			status = models.LessonStatusCompleted
		}
		lessons = append(lessons, models.Lesson{
			GroupID:    groupID,
			LessonDate: date,
			TeacherID:  pattern.teacherID,
			RoomID:     roomID,
			Status:     status,
		})
	}
	return lessons
}

func (s *LessonScheduleService) persist(ctx context.Context, lessons []models.Lesson) (err error) {
	if s.tx == nil {
		return appErrors.Clone(appErrors.ErrInternal, "transaction provider missing")
	}
	started := time.Now()
	defer func() { s.metrics.ObserveDBQuery("lessons_bulk_insert", time.Since(started)) }()

	tx, err := s.tx.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to begin transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.lessons.BulkCreateWithTx(ctx, tx, lessons); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lessons")
		return err
	}
	if err = tx.Commit(); err != nil {
		err = appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to commit lessons")
		return err
	}
	return nil
}

// --- Bulk generate ---

// BulkGenerate runs Generate once per group. Each group commits or fails on
// its own; one group's failure never touches another's lessons.
func (s *LessonScheduleService) BulkGenerate(ctx context.Context, req dto.BulkGenerateLessonsRequest) (*dto.BulkGenerateLessonsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bulk generation payload")
	}
	groupIDs := uniqueStrings(req.GroupIDs)
	if len(groupIDs) > s.cfg.MaxBulkGroups {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("at most %d groups can be generated at once", s.cfg.MaxBulkGroups))
	}

	out := &dto.BulkGenerateLessonsResult{Groups: make([]dto.BulkGroupResult, 0, len(groupIDs)), TotalGroups: len(groupIDs)}
	for _, groupID := range groupIDs {
		entry := dto.BulkGroupResult{GroupID: groupID}
		result, err := s.Generate(ctx, dto.GenerateLessonsRequest{
			GroupID:       groupID,
			From:          req.From,
			To:            req.To,
			ExcludeDates:  req.ExcludeDates,
			SkipConflicts: req.SkipConflicts,
		})
		if err != nil {
			appErr := appErrors.FromError(err)
			entry.Error = &dto.BulkGroupError{Code: appErr.Code, Message: appErr.Message}
			out.FailedGroups++
			s.requestLogger(ctx).Warn("bulk generation failed for group", zap.String("group_id", groupID), zap.Error(err))
		} else {
			entry.Result = result
			if result.Status == dto.GenerationStatusRejected {
				out.RejectedGroups++
			} else {
				out.SucceededGroups++
			}
			out.TotalGenerated += result.GeneratedCount
			out.TotalSkipped += result.SkippedConflictCount + result.SkippedExclusionCount + result.SkippedExistingCount
		}
		out.Groups = append(out.Groups, entry)
	}
	return out, nil
}

// --- Read-only variants ---

type classification struct {
	group   *models.Group
	pattern *recurrence
	from    time.Time
	to      time.Time
	dates   []time.Time
	report  *DetectionReport
	byDate  map[string][]models.Conflict
}

func (s *LessonScheduleService) classify(ctx context.Context, query dto.LessonRangeQuery) (*classification, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson range query")
	}
	exclusions, err := parseDateList(query.ExcludeDates)
	if err != nil {
		return nil, err
	}
	group, err := s.loadGroup(ctx, query.GroupID)
	if err != nil {
		return nil, err
	}
	pattern, err := groupRecurrence(group)
	if err != nil {
		return nil, err
	}
	from, to, err := resolveDateRange(query.From, query.To, group, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	dates := ExpandDates(ExpandOptions{From: from, To: to, Weekdays: pattern.weekdays, Exclusions: exclusions})
	flags := DefaultDetectionFlags()
	flags.CheckStudents = query.CheckStudentConflict
	report, err := s.detector.Analyze(ctx, DetectionInput{
		Dates:     dates,
		Interval:  pattern.interval,
		GroupID:   group.ID,
		TeacherID: pattern.teacherID,
		RoomID:    pattern.roomID,
		Flags:     flags,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detect schedule conflicts")
	}
	return &classification{
		group:   group,
		pattern: pattern,
		from:    from,
		to:      to,
		dates:   dates,
		report:  report,
		byDate:  report.ConflictDates(),
	}, nil
}

// Preview returns the proposed schedule with a status per date. Nothing is written.
func (s *LessonScheduleService) Preview(ctx context.Context, query dto.LessonRangeQuery) (*dto.PreviewResult, error) {
	cls, err := s.classify(ctx, query)
	if err != nil {
		return nil, err
	}
	out := &dto.PreviewResult{
		GroupID: cls.group.ID,
		From:    dateKey(cls.from),
		To:      dateKey(cls.to),
		Dates:   make([]dto.PreviewDate, 0, len(cls.dates)),
	}
	for _, date := range cls.dates {
		key := dateKey(date)
		entry := dto.PreviewDate{
			Date:      key,
			Weekday:   WeekdayName(isoWeekday(date)),
			StartTime: cls.pattern.interval.Start.String(),
			EndTime:   cls.pattern.interval.End().String(),
			Status:    dto.PreviewStatusAvailable,
			Conflicts: cls.byDate[key],
		}
		if existing, ok := cls.report.Existing[key]; ok {
			entry.Status = dto.PreviewStatusExisting
			entry.ExistingLessonID = existing.ID
			out.ExistingCount++
		} else if len(entry.Conflicts) > 0 {
			entry.Status = dto.PreviewStatusConflict
			out.ConflictCount++
		} else {
			out.AvailableCount++
		}
		out.Dates = append(out.Dates, entry)
	}
	out.TotalCount = len(out.Dates)
	return out, nil
}

// AvailableDates lists the candidate dates with no conflict and no existing lesson.
func (s *LessonScheduleService) AvailableDates(ctx context.Context, query dto.LessonRangeQuery) (*dto.AvailableDatesResult, error) {
	cls, err := s.classify(ctx, query)
	if err != nil {
		return nil, err
	}
	out := &dto.AvailableDatesResult{
		GroupID: cls.group.ID,
		From:    dateKey(cls.from),
		To:      dateKey(cls.to),
		Dates:   []string{},
	}
	for _, date := range cls.dates {
		key := dateKey(date)
		if _, existing := cls.report.Existing[key]; existing {
			continue
		}
		if len(cls.byDate[key]) > 0 {
			continue
		}
		out.Dates = append(out.Dates, key)
	}
	out.Count = len(out.Dates)
	return out, nil
}

// CheckAvailability runs detection for an ad-hoc pattern that is not stored on a group.
func (s *LessonScheduleService) CheckAvailability(ctx context.Context, req dto.AvailabilityCheckRequest) (*dto.AvailabilityCheckResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability payload")
	}
	weekdays := make([]int, 0, len(req.Weekdays))
	for _, raw := range req.Weekdays {
		day, err := ParseWeekday(raw)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		weekdays = append(weekdays, day)
	}
	if err := ValidateWeekdays(weekdays); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	interval, err := NewInterval(req.StartTime, req.DurationMinutes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if interval.CrossesMidnight() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson must end by 24:00")
	}
	exclusions, err := parseDateList(req.ExcludeDates)
	if err != nil {
		return nil, err
	}
	from, to, err := resolveDateRange(req.From, req.To, nil, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}

	dates := ExpandDates(ExpandOptions{From: from, To: to, Weekdays: weekdays, Exclusions: exclusions})
	checkGroup := req.GroupID != "" && (req.CheckGroupConflict == nil || *req.CheckGroupConflict)
	report, err := s.detector.Analyze(ctx, DetectionInput{
		Dates:     dates,
		Interval:  interval,
		GroupID:   req.GroupID,
		TeacherID: req.TeacherID,
		RoomID:    req.RoomID,
		Flags: DetectionFlags{
			CheckGroup:    checkGroup,
			CheckTeacher:  true,
			CheckRoom:     true,
			CheckStudents: req.CheckStudentConflict && req.GroupID != "",
		},
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detect schedule conflicts")
	}

	byDate := report.ConflictDates()
	out := &dto.AvailabilityCheckResult{
		Available:         len(report.Conflicts) == 0,
		CandidateCount:    len(dates),
		ConflictDateCount: len(byDate),
		AvailableDates:    []string{},
		Conflicts:         report.Conflicts,
	}
	if out.Conflicts == nil {
		out.Conflicts = []models.Conflict{}
	}
	for _, date := range dates {
		if _, conflicted := byDate[dateKey(date)]; !conflicted {
			out.AvailableDates = append(out.AvailableDates, dateKey(date))
		}
	}
	return out, nil
}

// --- Clear ---

// Clear deletes the group's lessons dated within the range. No conflict check applies.
func (s *LessonScheduleService) Clear(ctx context.Context, req dto.ClearLessonsRequest) (*dto.ClearLessonsResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid clear lessons payload")
	}
	group, err := s.loadGroup(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}
	from, to, err := resolveDateRange(req.From, req.To, nil, s.cfg.MaxRangeDays)
	if err != nil {
		return nil, err
	}
	deleted, err := s.lessons.DeleteByGroupInRange(ctx, group.ID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to clear lessons")
	}
	s.requestLogger(ctx).Info("lessons cleared",
		zap.String("group_id", group.ID),
		zap.String("from", dateKey(from)),
		zap.String("to", dateKey(to)),
		zap.Int64("deleted", deleted))
	return &dto.ClearLessonsResult{GroupID: group.ID, From: dateKey(from), To: dateKey(to), DeletedCount: deleted}, nil
}

// --- Helpers ---

func (s *LessonScheduleService) loadGroup(ctx context.Context, id string) (*models.Group, error) {
	group, err := s.groups.FindByID(ctx, id)
	if err != nil {
		return nil, mapLookupError(err, "group not found", "failed to load group")
	}
	if group == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "group not found")
	}
	return group, nil
}

// mapLookupError turns sql.ErrNoRows into NOT_FOUND and anything else into INTERNAL_ERROR.
func mapLookupError(err error, notFound, internal string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, notFound)
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, internal)
}

// resolveDateRange parses the requested bounds, falling back to the group's
// effective dates, and enforces ordering and the maximum span. Explicit bounds
// are clipped to the group's effective window; a range entirely outside it
// comes back with from after to, which expands to no dates.
func resolveDateRange(fromRaw, toRaw string, group *models.Group, maxDays int) (time.Time, time.Time, error) {
	var from, to time.Time
	switch {
	case fromRaw != "":
		parsed, err := ParseDate(fromRaw)
		if err != nil {
			return from, to, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid from date")
		}
		from = parsed
	case group != nil && group.StartDate != nil:
		from = truncateDate(*group.StartDate)
	default:
		return from, to, appErrors.Clone(appErrors.ErrValidation, "from is required when the group has no start date")
	}
	switch {
	case toRaw != "":
		parsed, err := ParseDate(toRaw)
		if err != nil {
			return from, to, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid to date")
		}
		to = parsed
	case group != nil && group.EndDate != nil:
		to = truncateDate(*group.EndDate)
	default:
		return from, to, appErrors.Clone(appErrors.ErrValidation, "to is required when the group has no end date")
	}
	if from.After(to) {
		return from, to, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
	}
	if days := int(to.Sub(from).Hours()/24) + 1; days > maxDays {
		return from, to, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range spans %d days, the maximum is %d", days, maxDays))
	}
	if group != nil {
		if group.StartDate != nil && from.Before(truncateDate(*group.StartDate)) {
			from = truncateDate(*group.StartDate)
		}
		if group.EndDate != nil && to.After(truncateDate(*group.EndDate)) {
			to = truncateDate(*group.EndDate)
		}
	}
	return from, to, nil
}

func (s *LessonScheduleService) requestLogger(ctx context.Context) *zap.Logger {
	if id := requestid.FromContext(ctx); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

// groupRecurrence checks that the group carries a complete, valid pattern.
// Missing settings are reported together before any expansion happens.
func groupRecurrence(group *models.Group) (*recurrence, error) {
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
	if group.TeacherID == nil || strings.TrimSpace(*group.TeacherID) == "" {
		missing = append(missing, "teacher_id")
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrMissingSettings, "group schedule settings are incomplete: "+strings.Join(missing, ", ")).WithDetails(missing...)
	}

	weekdays := group.WeekdayInts()
	if err := ValidateWeekdays(weekdays); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	interval, err := NewInterval(*group.StartTime, *group.DurationMinutes)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if interval.CrossesMidnight() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("lesson starting at %s for %d minutes would end after 24:00", interval.Start, interval.Duration))
	}
	if group.StartDate != nil && group.EndDate != nil && group.StartDate.After(*group.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "group start date is after its end date")
	}

	pattern := &recurrence{
		weekdays:  sortedWeekdays(weekdays),
		interval:  interval,
		teacherID: strings.TrimSpace(*group.TeacherID),
	}
	if group.RoomID != nil {
		pattern.roomID = strings.TrimSpace(*group.RoomID)
	}
	return pattern, nil
}

func parseDateList(raw []string) ([]time.Time, error) {
	dates := make([]time.Time, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item) == "" {
			continue
		}
		date, err := ParseDate(item)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exclude date "+item)
		}
		dates = append(dates, date)
	}
	return dates, nil
}

func countExcluded(dates, exclusions []time.Time) int {
	if len(exclusions) == 0 {
		return 0
	}
	excluded := make(map[string]struct{}, len(exclusions))
	for _, ex := range exclusions {
		excluded[dateKey(ex)] = struct{}{}
	}
	count := 0
	for _, date := range dates {
		if _, ok := excluded[dateKey(date)]; ok {
			count++
		}
	}
	return count
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
