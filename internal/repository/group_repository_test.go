package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroupRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	now := time.Now()
	start := time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "name", "teacher_id", "room_id", "weekdays", "start_time", "duration_minutes", "start_date", "end_date", "status", "created_at", "updated_at"}).
		AddRow("g-1", "Math A", "t-1", nil, "{1,3,5}", "09:00", 90, start, nil, "active", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM groups WHERE id = $1")).
		WithArgs("g-1").
		WillReturnRows(rows)

	group, err := repo.FindByID(context.Background(), "g-1")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 5}, group.WeekdayInts())
	require.NotNil(t, group.TeacherID)
	assert.Equal(t, "t-1", *group.TeacherID)
	assert.Nil(t, group.RoomID)
	assert.Nil(t, group.EndDate)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGroupRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewGroupRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM groups WHERE id = $1")).
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	require.NoError(t, mock.ExpectationsWereMet())
}
