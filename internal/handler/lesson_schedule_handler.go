package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-schedule-api/internal/dto"
	"github.com/noah-isme/edu-schedule-api/internal/service"
	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
	"github.com/noah-isme/edu-schedule-api/pkg/response"
)

type lessonScheduler interface {
	Generate(ctx context.Context, req dto.GenerateLessonsRequest) (*dto.GenerateLessonsResult, error)
	BulkGenerate(ctx context.Context, req dto.BulkGenerateLessonsRequest) (*dto.BulkGenerateLessonsResult, error)
	Preview(ctx context.Context, query dto.LessonRangeQuery) (*dto.PreviewResult, error)
	AvailableDates(ctx context.Context, query dto.LessonRangeQuery) (*dto.AvailableDatesResult, error)
	CheckAvailability(ctx context.Context, req dto.AvailabilityCheckRequest) (*dto.AvailabilityCheckResult, error)
	Clear(ctx context.Context, req dto.ClearLessonsRequest) (*dto.ClearLessonsResult, error)
}

type lessonExporter interface {
	Export(ctx context.Context, query dto.ExportLessonsQuery) (*dto.ExportFile, error)
}

// LessonScheduleHandler exposes lesson generation and conflict endpoints.
type LessonScheduleHandler struct {
	service  lessonScheduler
	exporter lessonExporter
}

// NewLessonScheduleHandler constructs the handler.
func NewLessonScheduleHandler(svc *service.LessonScheduleService, exporter *service.LessonExportService) *LessonScheduleHandler {
	return &LessonScheduleHandler{service: svc, exporter: exporter}
}

// Generate godoc
// @Summary Generate lessons from the group's recurrence pattern
// @Description Rejected generations return 409 with the conflict report in data.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.GenerateLessonsRequest true "Generation options"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /groups/{id}/lessons/generate [post]
func (h *LessonScheduleHandler) Generate(c *gin.Context) {
	var req dto.GenerateLessonsRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid generate payload"))
		return
	}
	req.GroupID = c.Param("id")

	result, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	switch result.Status {
	case dto.GenerationStatusRejected:
		response.JSON(c, http.StatusConflict, result)
	case dto.GenerationStatusGenerated:
		response.Created(c, result)
	default:
		response.JSON(c, http.StatusOK, result)
	}
}

// BulkGenerate godoc
// @Summary Generate lessons for several groups
// @Description Each group is generated and committed independently.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.BulkGenerateLessonsRequest true "Bulk generation payload"
// @Success 200 {object} response.Envelope
// @Router /groups/lessons/bulk-generate [post]
func (h *LessonScheduleHandler) BulkGenerate(c *gin.Context) {
	var req dto.BulkGenerateLessonsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk generate payload"))
		return
	}
	result, err := h.service.BulkGenerate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{
		"succeeded": result.SucceededGroups,
		"rejected":  result.RejectedGroups,
		"failed":    result.FailedGroups,
	})
}

// Preview godoc
// @Summary Preview the lessons a generation would create
// @Tags Lessons
// @Produce json
// @Param id path string true "Group ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param exclude query string false "Comma separated dates to skip"
// @Param check_students query bool false "Include student conflicts"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/lessons/preview [get]
func (h *LessonScheduleHandler) Preview(c *gin.Context) {
	query, err := rangeQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Preview(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// AvailableDates godoc
// @Summary List conflict-free dates for the group's pattern
// @Tags Lessons
// @Produce json
// @Param id path string true "Group ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param exclude query string false "Comma separated dates to skip"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/lessons/available-dates [get]
func (h *LessonScheduleHandler) AvailableDates(c *gin.Context) {
	query, err := rangeQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.AvailableDates(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// CheckAvailability godoc
// @Summary Check an ad-hoc weekly pattern for conflicts
// @Tags Lessons
// @Accept json
// @Produce json
// @Param payload body dto.AvailabilityCheckRequest true "Pattern to check"
// @Success 200 {object} response.Envelope
// @Router /schedule/availability [post]
func (h *LessonScheduleHandler) CheckAvailability(c *gin.Context) {
	var req dto.AvailabilityCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid availability payload"))
		return
	}
	result, err := h.service.CheckAvailability(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Clear godoc
// @Summary Delete a group's lessons in a date range
// @Tags Lessons
// @Produce json
// @Param id path string true "Group ID"
// @Param from query string true "Start date (YYYY-MM-DD)"
// @Param to query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/lessons [delete]
func (h *LessonScheduleHandler) Clear(c *gin.Context) {
	result, err := h.service.Clear(c.Request.Context(), dto.ClearLessonsRequest{
		GroupID: c.Param("id"),
		From:    c.Query("from"),
		To:      c.Query("to"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Export godoc
// @Summary Export a group's lessons as CSV or PDF
// @Tags Lessons
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Group ID"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /groups/{id}/lessons/export [get]
func (h *LessonScheduleHandler) Export(c *gin.Context) {
	file, err := h.exporter.Export(c.Request.Context(), dto.ExportLessonsQuery{
		GroupID: c.Param("id"),
		From:    c.Query("from"),
		To:      c.Query("to"),
		Format:  strings.ToLower(c.Query("format")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func rangeQuery(c *gin.Context) (dto.LessonRangeQuery, error) {
	query := dto.LessonRangeQuery{
		GroupID:      c.Param("id"),
		From:         c.Query("from"),
		To:           c.Query("to"),
		ExcludeDates: splitList(c.Query("exclude")),
	}
	if raw := c.Query("check_students"); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			return query, appErrors.Clone(appErrors.ErrValidation, "check_students must be a boolean")
		}
		query.CheckStudentConflict = value
	}
	return query, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// bindOptionalJSON accepts an empty body as the zero request.
func bindOptionalJSON(c *gin.Context, dst interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(dst); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}
