package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

var lessonSlotCols = []string{"id", "group_id", "lesson_date", "teacher_id", "room_id", "status", "created_at", "updated_at", "group_name", "start_time", "duration_minutes"}

func TestLessonRepositoryListByGroupInRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 9, 15, 0, 0, 0, 0, time.UTC)
	now := time.Now()
	rows := sqlmock.NewRows(lessonSlotCols).
		AddRow("l-1", "g-1", from, "t-1", nil, "planned", now, now, "Math A", "09:00", 90)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lessons l JOIN groups g ON g.id = l.group_id WHERE l.group_id = $1 AND l.lesson_date BETWEEN $2 AND $3")).
		WithArgs("g-1", from, to).
		WillReturnRows(rows)

	slots, err := repo.ListByGroupInRange(context.Background(), "g-1", from, to)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "l-1", slots[0].ID)
	assert.Equal(t, "Math A", slots[0].GroupName)
	require.NotNil(t, slots[0].StartTime)
	assert.Equal(t, "09:00", *slots[0].StartTime)
	assert.Equal(t, 90, *slots[0].DurationMinutes)
	assert.Nil(t, slots[0].RoomID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListByTeacherExcludesGroupAndCancelled(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 13)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.teacher_id = $1 AND l.group_id::text <> $2 AND l.status <> $3")).
		WithArgs("t-1", "g-1", models.LessonStatusCancelled, from, to).
		WillReturnRows(sqlmock.NewRows(lessonSlotCols))

	slots, err := repo.ListByTeacherInRange(context.Background(), "t-1", "g-1", from, to)
	require.NoError(t, err)
	assert.Empty(t, slots)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListByRoomWrapsErrors(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.room_id = $1")).
		WillReturnError(errors.New("db down"))

	_, err := repo.ListByRoomInRange(context.Background(), "r-1", "g-1", from, from)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list lessons by room")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListByGroupsSkipsEmptyInput(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	slots, err := repo.ListByGroupsInRange(context.Background(), nil, time.Now(), time.Now())
	require.NoError(t, err)
	assert.Nil(t, slots)

	from := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE l.group_id::text = ANY($1)")).
		WithArgs(sqlmock.AnyArg(), models.LessonStatusCancelled, from, from).
		WillReturnRows(sqlmock.NewRows(lessonSlotCols))
	_, err = repo.ListByGroupsInRange(context.Background(), []string{"g-2", "g-3"}, from, from)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryBulkCreateWithTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO lessons").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO lessons").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	lessons := []models.Lesson{
		{GroupID: "g-1", TeacherID: "t-1", LessonDate: time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)},
		{GroupID: "g-1", TeacherID: "t-1", LessonDate: time.Date(2024, 9, 4, 0, 0, 0, 0, time.UTC), Status: models.LessonStatusCompleted},
	}
	require.NoError(t, repo.BulkCreateWithTx(context.Background(), tx, lessons))
	require.NoError(t, tx.Commit())

	for _, lesson := range lessons {
		assert.NotEmpty(t, lesson.ID)
		assert.False(t, lesson.CreatedAt.IsZero())
	}
	assert.Equal(t, models.LessonStatusPlanned, lessons[0].Status)
	assert.Equal(t, models.LessonStatusCompleted, lessons[1].Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryBulkCreateRequiresTx(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	err := repo.BulkCreateWithTx(context.Background(), nil, []models.Lesson{{GroupID: "g-1"}})
	require.Error(t, err)
}

func TestLessonRepositoryDeleteByGroupInRange(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	from := time.Date(2024, 9, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 9, 8, 0, 0, 0, 0, time.UTC)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE group_id = $1 AND lesson_date BETWEEN $2 AND $3")).
		WithArgs("g-1", from, to).
		WillReturnResult(sqlmock.NewResult(0, 3))

	deleted, err := repo.DeleteByGroupInRange(context.Background(), "g-1", from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
	require.NoError(t, mock.ExpectationsWereMet())
}
