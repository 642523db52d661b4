package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-schedule-api/internal/dto"
	"github.com/noah-isme/edu-schedule-api/internal/service"
	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
	"github.com/noah-isme/edu-schedule-api/pkg/response"
)

type enrollmentConflictChecker interface {
	CheckStudents(ctx context.Context, groupID string, req dto.EnrollmentConflictRequest) (*dto.EnrollmentConflictResult, error)
}

// EnrollmentConflictHandler checks bulk enrollments against students' timetables.
type EnrollmentConflictHandler struct {
	service enrollmentConflictChecker
}

// NewEnrollmentConflictHandler constructs the handler.
func NewEnrollmentConflictHandler(svc *service.EnrollmentConflictService) *EnrollmentConflictHandler {
	return &EnrollmentConflictHandler{service: svc}
}

// Check godoc
// @Summary Check whether students can join a group without timetable collisions
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Group ID"
// @Param payload body dto.EnrollmentConflictRequest true "Students to add"
// @Success 200 {object} response.Envelope
// @Router /groups/{id}/enrollments/conflicts [post]
func (h *EnrollmentConflictHandler) Check(c *gin.Context) {
	var req dto.EnrollmentConflictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment conflict payload"))
		return
	}
	result, err := h.service.CheckStudents(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"conflicting": result.ConflictingCount})
}
