package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

// fakeRegistry is an in-memory stand-in for the group, lesson and enrollment
// repositories, with the same filtering rules as the SQL queries.
type fakeRegistry struct {
	groups      map[string]*models.Group
	lessons     []models.Lesson
	enrollments []models.Enrollment
	insertErr   error
	reads       map[string]int
	nextID      int
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{groups: map[string]*models.Group{}, reads: map[string]int{}}
}

func strPtr(v string) *string { return &v }
func intPtr(v int) *int       { return &v }

func (f *fakeRegistry) addGroup(id, teacherID, room string, weekdays []int64, start string, minutes int) *models.Group {
	g := &models.Group{
		ID:              id,
		Name:            "Group " + id,
		Weekdays:        pq.Int64Array(weekdays),
		StartTime:       strPtr(start),
		DurationMinutes: intPtr(minutes),
		Status:          models.GroupStatusActive,
	}
	if teacherID != "" {
		g.TeacherID = strPtr(teacherID)
	}
	if room != "" {
		g.RoomID = strPtr(room)
	}
	f.groups[id] = g
	return g
}

func (f *fakeRegistry) addLesson(groupID, date string, status models.LessonStatus) models.Lesson {
	g := f.groups[groupID]
	d, _ := time.Parse(dateLayout, date)
	f.nextID++
	lesson := models.Lesson{
		ID:         fmt.Sprintf("seed-%03d", f.nextID),
		GroupID:    groupID,
		LessonDate: d,
		Status:     status,
	}
	if g.TeacherID != nil {
		lesson.TeacherID = *g.TeacherID
	}
	lesson.RoomID = g.RoomID
	f.lessons = append(f.lessons, lesson)
	return lesson
}

func (f *fakeRegistry) enroll(studentID, groupID string, status models.EnrollmentStatus) {
	f.enrollments = append(f.enrollments, models.Enrollment{
		ID:        fmt.Sprintf("enr-%s-%s", studentID, groupID),
		StudentID: studentID,
		GroupID:   groupID,
		Status:    status,
	})
}

func (f *fakeRegistry) lessonsOf(groupID string) []models.Lesson {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.GroupID == groupID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LessonDate.Before(out[j].LessonDate) })
	return out
}

func (f *fakeRegistry) FindByID(_ context.Context, id string) (*models.Group, error) {
	f.reads["group"]++
	g, ok := f.groups[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *g
	return &clone, nil
}

func (f *fakeRegistry) slots(match func(models.Lesson) bool, from, to time.Time) []models.LessonSlot {
	var out []models.LessonSlot
	for _, l := range f.lessons {
		if l.LessonDate.Before(from) || l.LessonDate.After(to) || !match(l) {
			continue
		}
		g := f.groups[l.GroupID]
		out = append(out, models.LessonSlot{
			Lesson:          l,
			GroupName:       g.Name,
			StartTime:       g.StartTime,
			DurationMinutes: g.DurationMinutes,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LessonDate.Equal(out[j].LessonDate) {
			return out[i].LessonDate.Before(out[j].LessonDate)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (f *fakeRegistry) ListByGroupInRange(_ context.Context, groupID string, from, to time.Time) ([]models.LessonSlot, error) {
	f.reads["lessons_group"]++
	return f.slots(func(l models.Lesson) bool { return l.GroupID == groupID }, from, to), nil
}

func (f *fakeRegistry) ListByTeacherInRange(_ context.Context, teacherID, excludeGroupID string, from, to time.Time) ([]models.LessonSlot, error) {
	f.reads["lessons_teacher"]++
	return f.slots(func(l models.Lesson) bool {
		return l.TeacherID == teacherID && l.GroupID != excludeGroupID && l.Status != models.LessonStatusCancelled
	}, from, to), nil
}

func (f *fakeRegistry) ListByRoomInRange(_ context.Context, roomID, excludeGroupID string, from, to time.Time) ([]models.LessonSlot, error) {
	f.reads["lessons_room"]++
	return f.slots(func(l models.Lesson) bool {
		return l.RoomID != nil && *l.RoomID == roomID && l.GroupID != excludeGroupID && l.Status != models.LessonStatusCancelled
	}, from, to), nil
}

func (f *fakeRegistry) ListByGroupsInRange(_ context.Context, groupIDs []string, from, to time.Time) ([]models.LessonSlot, error) {
	f.reads["lessons_groups"]++
	wanted := map[string]bool{}
	for _, id := range groupIDs {
		wanted[id] = true
	}
	return f.slots(func(l models.Lesson) bool {
		return wanted[l.GroupID] && l.Status != models.LessonStatusCancelled
	}, from, to), nil
}

func (f *fakeRegistry) BulkCreateWithTx(_ context.Context, tx *sqlx.Tx, lessons []models.Lesson) error {
	if tx == nil {
		return errors.New("nil transaction provided")
	}
	if f.insertErr != nil {
		return f.insertErr
	}
	for _, l := range lessons {
		for _, existing := range f.lessons {
			if existing.GroupID == l.GroupID && existing.LessonDate.Equal(l.LessonDate) {
				return fmt.Errorf("duplicate lesson for group %s on %s", l.GroupID, dateKey(l.LessonDate))
			}
		}
	}
	for i := range lessons {
		f.nextID++
		lessons[i].ID = fmt.Sprintf("new-%03d", f.nextID)
		f.lessons = append(f.lessons, lessons[i])
	}
	return nil
}

func (f *fakeRegistry) DeleteByGroupInRange(_ context.Context, groupID string, from, to time.Time) (int64, error) {
	kept := f.lessons[:0]
	var deleted int64
	for _, l := range f.lessons {
		if l.GroupID == groupID && !l.LessonDate.Before(from) && !l.LessonDate.After(to) {
			deleted++
			continue
		}
		kept = append(kept, l)
	}
	f.lessons = kept
	return deleted, nil
}

func (f *fakeRegistry) ListActiveByGroup(_ context.Context, groupID string) ([]models.Enrollment, error) {
	f.reads["enrollments_group"]++
	var out []models.Enrollment
	for _, e := range f.enrollments {
		if e.GroupID == groupID && e.Status == models.EnrollmentStatusActive {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeRegistry) ListActiveGroupsByStudents(_ context.Context, studentIDs []string) ([]models.EnrolledGroup, error) {
	f.reads["enrollments_students"]++
	wanted := map[string]bool{}
	for _, id := range studentIDs {
		wanted[id] = true
	}
	var out []models.EnrolledGroup
	for _, e := range f.enrollments {
		g := f.groups[e.GroupID]
		if !wanted[e.StudentID] || e.Status != models.EnrollmentStatusActive || g == nil || g.Status != models.GroupStatusActive {
			continue
		}
		out = append(out, models.EnrolledGroup{
			EnrollmentID:    e.ID,
			StudentID:       e.StudentID,
			GroupID:         g.ID,
			GroupName:       g.Name,
			Weekdays:        g.Weekdays,
			StartTime:       g.StartTime,
			DurationMinutes: g.DurationMinutes,
		})
	}
	return out, nil
}

type txProviderMock struct {
	db   *sqlx.DB
	mock sqlmock.Sqlmock
}

func newTxProviderMock(t *testing.T) (*txProviderMock, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	t.Cleanup(func() { db.Close() })
	return &txProviderMock{db: sqlxdb, mock: mock}, mock
}

func (t *txProviderMock) BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error) {
	return t.db.BeginTxx(ctx, opts)
}
