package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
)

func TestScheduleLockKeysSortedAndOptional(t *testing.T) {
	keys := scheduleLockKeys("g-1", "t-1", "")
	assert.Equal(t, []string{"schedule:lock:group:g-1", "schedule:lock:teacher:t-1"}, keys)

	keys = scheduleLockKeys("g-1", "t-1", "r-1")
	assert.Equal(t, []string{"schedule:lock:group:g-1", "schedule:lock:room:r-1", "schedule:lock:teacher:t-1"}, keys)
}

func TestLocalLockerTimesOutWhileHeld(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	release, err := locker.Acquire(context.Background(), []string{"a", "b"})
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), []string{"b"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrLockTimeout))

	release()
	release()

	again, err := locker.Acquire(context.Background(), []string{"b", "a"})
	require.NoError(t, err)
	again()
}

func TestLocalLockerAllOrNothing(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	holdB, err := locker.Acquire(context.Background(), []string{"b"})
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), []string{"a", "b"})
	require.Error(t, err)

	// "a" must have been released by the failed attempt.
	holdA, err := locker.Acquire(context.Background(), []string{"a"})
	require.NoError(t, err)
	holdA()
	holdB()
}

func (l *LocalLocker) slotCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}

func TestLocalLockerDropsIdleKeys(t *testing.T) {
	locker := NewLocalLocker(20 * time.Millisecond)
	for _, id := range []string{"g-1", "g-2", "g-3"} {
		release, err := locker.Acquire(context.Background(), scheduleLockKeys(id, "t-1", "r-"+id))
		require.NoError(t, err)
		release()
	}
	assert.Zero(t, locker.slotCount())

	hold, err := locker.Acquire(context.Background(), []string{"a"})
	require.NoError(t, err)
	_, err = locker.Acquire(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Equal(t, 1, locker.slotCount())

	hold()
	assert.Zero(t, locker.slotCount())
}

func TestLocalLockerHandsOverToWaiter(t *testing.T) {
	locker := NewLocalLocker(time.Second)
	hold, err := locker.Acquire(context.Background(), []string{"a"})
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		release, err := locker.Acquire(context.Background(), []string{"a"})
		if err == nil {
			acquired <- release
		}
		close(acquired)
	}()

	require.Eventually(t, func() bool {
		locker.mu.Lock()
		defer locker.mu.Unlock()
		slot, ok := locker.slots["a"]
		return ok && slot.refs == 2
	}, time.Second, time.Millisecond)
	hold()

	release, ok := <-acquired
	require.True(t, ok)
	assert.Equal(t, 1, locker.slotCount())
	release()
	assert.Zero(t, locker.slotCount())
}
