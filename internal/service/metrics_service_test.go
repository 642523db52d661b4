package service

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/edu-schedule-api/internal/models"
)

func TestMetricsServiceObserveGeneration(t *testing.T) {
	m := NewMetricsService()
	m.ObserveGeneration("generated", 5, []models.Conflict{
		{Type: models.ConflictTypeTeacher},
		{Type: models.ConflictTypeTeacher},
		{Type: models.ConflictTypeRoom},
	}, 20*time.Millisecond)

	assert.Equal(t, float64(5), testutil.ToFloat64(m.lessonsGenerated))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.conflictsTotal.WithLabelValues("teacher")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.conflictsTotal.WithLabelValues("room")))

	snap := m.Snapshot()
	assert.Equal(t, uint64(1), snap.GenerationsTotal)
	assert.Equal(t, uint64(5), snap.LessonsGenerated)
	assert.Equal(t, uint64(3), snap.ConflictsDetected)
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	require.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.ObserveGeneration("rejected", 0, nil, time.Millisecond)
		m.ObserveLockWait(time.Millisecond)
		m.ObserveDBQuery("x", time.Millisecond)
	})
	assert.Equal(t, MetricsSnapshot{}, m.Snapshot())
}
