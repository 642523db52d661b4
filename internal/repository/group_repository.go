package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

// GroupRepository reads study groups and their recurrence settings.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new group repository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// FindByID returns a group by id.
func (r *GroupRepository) FindByID(ctx context.Context, id string) (*models.Group, error) {
	const query = `SELECT id, name, teacher_id, room_id, weekdays, to_char(start_time, 'HH24:MI') AS start_time, duration_minutes, start_date, end_date, status, created_at, updated_at FROM groups WHERE id = $1`
	var group models.Group
	if err := r.db.GetContext(ctx, &group, query, id); err != nil {
		return nil, err
	}
	return &group, nil
}
