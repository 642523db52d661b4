package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

// EnrollmentRepository reads student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs the repository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ListActiveByGroup returns active enrollments of a group.
func (r *EnrollmentRepository) ListActiveByGroup(ctx context.Context, groupID string) ([]models.Enrollment, error) {
	const query = `SELECT id, student_id, group_id, joined_at, status FROM enrollments WHERE group_id = $1 AND status = $2 ORDER BY student_id`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, query, groupID, models.EnrollmentStatusActive); err != nil {
		return nil, fmt.Errorf("list active enrollments by group: %w", err)
	}
	return enrollments, nil
}

// ListActiveGroupsByStudents returns, for each student, the active groups they
// are actively enrolled in together with each group's recurrence pattern.
func (r *EnrollmentRepository) ListActiveGroupsByStudents(ctx context.Context, studentIDs []string) ([]models.EnrolledGroup, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT e.id AS enrollment_id, e.student_id, g.id AS group_id, g.name AS group_name, g.weekdays, to_char(g.start_time, 'HH24:MI') AS start_time, g.duration_minutes FROM enrollments e JOIN groups g ON g.id = e.group_id WHERE e.student_id::text = ANY($1) AND e.status = $2 AND g.status = $3 ORDER BY e.student_id, g.name, g.id`
	var groups []models.EnrolledGroup
	if err := r.db.SelectContext(ctx, &groups, query, pq.Array(studentIDs), models.EnrollmentStatusActive, models.GroupStatusActive); err != nil {
		return nil, fmt.Errorf("list active groups by students: %w", err)
	}
	return groups, nil
}
