package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

const lessonSlotColumns = `l.id, l.group_id, l.lesson_date, l.teacher_id, l.room_id, l.status, l.created_at, l.updated_at, g.name AS group_name, to_char(g.start_time, 'HH24:MI') AS start_time, g.duration_minutes`

// LessonRepository persists dated lesson instances.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListByGroupInRange returns every lesson of the group in [from, to], any status.
func (r *LessonRepository) ListByGroupInRange(ctx context.Context, groupID string, from, to time.Time) ([]models.LessonSlot, error) {
	query := `SELECT ` + lessonSlotColumns + ` FROM lessons l JOIN groups g ON g.id = l.group_id WHERE l.group_id = $1 AND l.lesson_date BETWEEN $2 AND $3 ORDER BY l.lesson_date, l.id`
	var slots []models.LessonSlot
	if err := r.db.SelectContext(ctx, &slots, query, groupID, from, to); err != nil {
		return nil, fmt.Errorf("list lessons by group: %w", err)
	}
	return slots, nil
}

// ListByTeacherInRange returns the teacher's non-cancelled lessons of other groups.
func (r *LessonRepository) ListByTeacherInRange(ctx context.Context, teacherID, excludeGroupID string, from, to time.Time) ([]models.LessonSlot, error) {
	query := `SELECT ` + lessonSlotColumns + ` FROM lessons l JOIN groups g ON g.id = l.group_id WHERE l.teacher_id = $1 AND l.group_id::text <> $2 AND l.status <> $3 AND l.lesson_date BETWEEN $4 AND $5 ORDER BY l.lesson_date, l.id`
	var slots []models.LessonSlot
	if err := r.db.SelectContext(ctx, &slots, query, teacherID, excludeGroupID, models.LessonStatusCancelled, from, to); err != nil {
		return nil, fmt.Errorf("list lessons by teacher: %w", err)
	}
	return slots, nil
}

// ListByRoomInRange returns the room's non-cancelled lessons of other groups.
func (r *LessonRepository) ListByRoomInRange(ctx context.Context, roomID, excludeGroupID string, from, to time.Time) ([]models.LessonSlot, error) {
	query := `SELECT ` + lessonSlotColumns + ` FROM lessons l JOIN groups g ON g.id = l.group_id WHERE l.room_id = $1 AND l.group_id::text <> $2 AND l.status <> $3 AND l.lesson_date BETWEEN $4 AND $5 ORDER BY l.lesson_date, l.id`
	var slots []models.LessonSlot
	if err := r.db.SelectContext(ctx, &slots, query, roomID, excludeGroupID, models.LessonStatusCancelled, from, to); err != nil {
		return nil, fmt.Errorf("list lessons by room: %w", err)
	}
	return slots, nil
}

// ListByGroupsInRange returns non-cancelled lessons of any of the groups.
func (r *LessonRepository) ListByGroupsInRange(ctx context.Context, groupIDs []string, from, to time.Time) ([]models.LessonSlot, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	query := `SELECT ` + lessonSlotColumns + ` FROM lessons l JOIN groups g ON g.id = l.group_id WHERE l.group_id::text = ANY($1) AND l.status <> $2 AND l.lesson_date BETWEEN $3 AND $4 ORDER BY l.lesson_date, l.id`
	var slots []models.LessonSlot
	if err := r.db.SelectContext(ctx, &slots, query, pq.Array(groupIDs), models.LessonStatusCancelled, from, to); err != nil {
		return nil, fmt.Errorf("list lessons by groups: %w", err)
	}
	return slots, nil
}

// BulkCreateWithTx inserts lessons using an existing transaction.
func (r *LessonRepository) BulkCreateWithTx(ctx context.Context, tx *sqlx.Tx, lessons []models.Lesson) error {
	if tx == nil {
		return fmt.Errorf("nil transaction provided")
	}
	return r.bulkInsertLessons(ctx, tx, lessons)
}

func (r *LessonRepository) bulkInsertLessons(ctx context.Context, exec sqlx.ExtContext, lessons []models.Lesson) error {
	now := time.Now().UTC()
	for i := range lessons {
		payload := lessons[i]
		if payload.ID == "" {
			payload.ID = uuid.NewString()
		}
		if payload.Status == "" {
			payload.Status = models.LessonStatusPlanned
		}
		if payload.CreatedAt.IsZero() {
			payload.CreatedAt = now
		}
		payload.UpdatedAt = now

		if _, err := sqlx.NamedExecContext(ctx, exec, `INSERT INTO lessons (id, group_id, lesson_date, teacher_id, room_id, status, created_at, updated_at) VALUES (:id, :group_id, :lesson_date, :teacher_id, :room_id, :status, :created_at, :updated_at)`, &payload); err != nil {
			return fmt.Errorf("bulk insert lesson: %w", err)
		}
		lessons[i] = payload
	}
	return nil
}

// DeleteByGroupInRange removes the group's lessons dated within [from, to].
func (r *LessonRepository) DeleteByGroupInRange(ctx context.Context, groupID string, from, to time.Time) (int64, error) {
	const query = `DELETE FROM lessons WHERE group_id = $1 AND lesson_date BETWEEN $2 AND $3`
	res, err := r.db.ExecContext(ctx, query, groupID, from, to)
	if err != nil {
		return 0, fmt.Errorf("delete lessons: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete lessons rows affected: %w", err)
	}
	return affected, nil
}
