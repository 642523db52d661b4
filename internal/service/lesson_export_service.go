package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/edu-schedule-api/internal/dto"
	"github.com/noah-isme/edu-schedule-api/internal/models"
	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
	"github.com/noah-isme/edu-schedule-api/pkg/export"
)

type groupLessonLister interface {
	ListByGroupInRange(ctx context.Context, groupID string, from, to time.Time) ([]models.LessonSlot, error)
}

type tableRenderer interface {
	Render(table export.Table) ([]byte, error)
	ContentType() string
	Extension() string
}

// LessonExportService renders a group's lessons as CSV or PDF.
type LessonExportService struct {
	groups    groupReader
	lessons   groupLessonLister
	renderers map[string]tableRenderer
	validator *validator.Validate
	logger    *zap.Logger
	maxDays   int
}

// NewLessonExportService constructs the export service with CSV and PDF renderers.
func NewLessonExportService(groups groupReader, lessons groupLessonLister, validate *validator.Validate, logger *zap.Logger, maxRangeDays int) *LessonExportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 366
	}
	return &LessonExportService{
		groups:  groups,
		lessons: lessons,
		renderers: map[string]tableRenderer{
			"csv": export.NewCSVExporter(),
			"pdf": export.NewPDFExporter(),
		},
		validator: validate,
		logger:    logger,
		maxDays:   maxRangeDays,
	}
}

var lessonExportColumns = []export.Column{
	{Key: "date", Label: "Date", Width: 1.2},
	{Key: "weekday", Label: "Weekday", Width: 1.2},
	{Key: "start", Label: "Start", Width: 0.8},
	{Key: "end", Label: "End", Width: 0.8},
	{Key: "teacher", Label: "Teacher", Width: 2},
	{Key: "room", Label: "Room", Width: 1.4},
	{Key: "status", Label: "Status", Width: 1},
}

// Export renders the group's lessons in range. The range defaults to the group's effective dates.
func (s *LessonExportService) Export(ctx context.Context, query dto.ExportLessonsQuery) (*dto.ExportFile, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	format := query.Format
	if format == "" {
		format = "csv"
	}
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format "+format)
	}

	group, err := s.groups.FindByID(ctx, query.GroupID)
	if err != nil {
		return nil, mapLookupError(err, "group not found", "failed to load group")
	}
	from, to, err := resolveDateRange(query.From, query.To, group, s.maxDays)
	if err != nil {
		return nil, err
	}

	slots, err := s.lessons.ListByGroupInRange(ctx, group.ID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lessons")
	}

	table := export.Table{
		Title:    group.Name,
		Subtitle: fmt.Sprintf("Lessons %s to %s", dateKey(from), dateKey(to)),
		Columns:  lessonExportColumns,
		Rows:     make([]map[string]string, 0, len(slots)),
	}
	for _, slot := range slots {
		row := map[string]string{
			"date":    dateKey(slot.LessonDate),
			"weekday": WeekdayName(isoWeekday(slot.LessonDate)),
			"teacher": slot.TeacherID,
			"status":  string(slot.Status),
		}
		if slot.RoomID != nil {
			row["room"] = *slot.RoomID
		}
		if slot.StartTime != nil && slot.DurationMinutes != nil {
			if interval, err := NewInterval(*slot.StartTime, *slot.DurationMinutes); err == nil {
				row["start"] = interval.Start.String()
				row["end"] = interval.End().String()
			}
		}
		table.Rows = append(table.Rows, row)
	}

	body, err := renderer.Render(table)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Debug("lessons exported", zap.String("group_id", group.ID), zap.String("format", format), zap.Int("rows", len(slots)))
	return &dto.ExportFile{
		Filename:    fmt.Sprintf("lessons-%s-%s-%s.%s", group.ID, dateKey(from), dateKey(to), renderer.Extension()),
		ContentType: renderer.ContentType(),
		Body:        body,
	}, nil
}
