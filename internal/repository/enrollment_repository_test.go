package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

func TestEnrollmentRepositoryListActiveByGroup(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "group_id", "joined_at", "status"}).
		AddRow("enr-1", "stu-1", "g-1", time.Now(), models.EnrollmentStatusActive)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, group_id, joined_at, status FROM enrollments WHERE group_id = $1 AND status = $2")).
		WithArgs("g-1", models.EnrollmentStatusActive).
		WillReturnRows(rows)

	enrollments, err := repo.ListActiveByGroup(context.Background(), "g-1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "stu-1", enrollments[0].StudentID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrollmentRepositoryListActiveGroupsByStudents(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEnrollmentRepository(db)

	rows := sqlmock.NewRows([]string{"enrollment_id", "student_id", "group_id", "group_name", "weekdays", "start_time", "duration_minutes"}).
		AddRow("enr-1", "stu-1", "g-2", "Physics", "{2,4}", "10:00", 60).
		AddRow("enr-2", "stu-2", "g-3", "Chemistry", "{1}", nil, nil)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE e.student_id::text = ANY($1) AND e.status = $2 AND g.status = $3")).
		WithArgs(sqlmock.AnyArg(), models.EnrollmentStatusActive, models.GroupStatusActive).
		WillReturnRows(rows)

	groups, err := repo.ListActiveGroupsByStudents(context.Background(), []string{"stu-1", "stu-2"})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "Physics", groups[0].GroupName)
	assert.Len(t, groups[0].Weekdays, 2)
	assert.Nil(t, groups[1].StartTime)
	require.NoError(t, mock.ExpectationsWereMet())

	empty, err := repo.ListActiveGroupsByStudents(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, empty)
}
