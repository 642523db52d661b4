package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/edu-schedule-api/internal/middleware"
	"github.com/noah-isme/edu-schedule-api/internal/models"
)

// Handlers groups every HTTP handler mounted under the API prefix.
type Handlers struct {
	Lessons     *LessonScheduleHandler
	Enrollments *EnrollmentConflictHandler
}

// RegisterRoutes mounts the scheduling API on rg. Every route requires a
// valid token; mutations are limited to administrators.
func RegisterRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc, h Handlers) {
	admins := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin)
	readers := middleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleTeacher)

	secured := rg.Group("", auth)

	groups := secured.Group("/groups")
	groups.POST("/lessons/bulk-generate", admins, h.Lessons.BulkGenerate)
	groups.POST("/:id/lessons/generate", admins, h.Lessons.Generate)
	groups.DELETE("/:id/lessons", admins, h.Lessons.Clear)
	groups.GET("/:id/lessons/preview", readers, h.Lessons.Preview)
	groups.GET("/:id/lessons/available-dates", readers, h.Lessons.AvailableDates)
	groups.GET("/:id/lessons/export", readers, h.Lessons.Export)
	groups.POST("/:id/enrollments/conflicts", admins, h.Enrollments.Check)

	secured.POST("/schedule/availability", readers, h.Lessons.CheckAvailability)
}

// RegisterOpsRoutes mounts the unauthenticated health and metrics endpoints.
func RegisterOpsRoutes(r gin.IRoutes, h *MetricsHandler) {
	r.GET("/health", h.Health)
	r.GET("/ready", h.Ready)
	r.GET("/metrics", h.Prometheus)
	r.GET("/metrics/summary", h.Summary)
}
