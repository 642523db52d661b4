package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	appErrors "github.com/noah-isme/edu-schedule-api/pkg/errors"
)

// resourceLocker serialises generation over the same group, teacher and room.
// Acquire takes every key or none; the returned func releases them.
type resourceLocker interface {
	Acquire(ctx context.Context, keys []string) (func(), error)
}

const lockKeyPrefix = "schedule:lock:"

// scheduleLockKeys builds the sorted, de-duplicated lock keys for a generation.
func scheduleLockKeys(groupID, teacherID, roomID string) []string {
	keys := []string{lockKeyPrefix + "group:" + groupID}
	if teacherID != "" {
		keys = append(keys, lockKeyPrefix+"teacher:"+teacherID)
	}
	if roomID != "" {
		keys = append(keys, lockKeyPrefix+"room:"+roomID)
	}
	sort.Strings(keys)
	return keys
}

// LocalLocker is an in-process keyed mutex used when Redis locks are disabled.
// It only serialises requests served by the same process. A key's entry lives
// only while someone holds or waits on it.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[string]*lockSlot
	wait  time.Duration
}

type lockSlot struct {
	ch   chan struct{}
	refs int
}

type heldSlot struct {
	key  string
	slot *lockSlot
}

// NewLocalLocker builds a keyed mutex; wait bounds how long Acquire blocks.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &LocalLocker{slots: make(map[string]*lockSlot), wait: wait}
}

func (l *LocalLocker) ref(key string) *lockSlot {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = &lockSlot{ch: make(chan struct{}, 1)}
		l.slots[key] = slot
	}
	slot.refs++
	return slot
}

func (l *LocalLocker) unref(key string, slot *lockSlot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot.refs--
	if slot.refs == 0 {
		delete(l.slots, key)
	}
}

// Acquire locks keys in sorted order, giving up after the configured wait.
func (l *LocalLocker) Acquire(ctx context.Context, keys []string) (func(), error) {
	sorted := append([]string(nil), keys...)
	sort.Strings(sorted)

	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	held := make([]heldSlot, 0, len(sorted))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			<-held[i].slot.ch
			l.unref(held[i].key, held[i].slot)
		}
	}
	for _, key := range sorted {
		slot := l.ref(key)
		select {
		case slot.ch <- struct{}{}:
			held = append(held, heldSlot{key: key, slot: slot})
		case <-timer.C:
			l.unref(key, slot)
			release()
			return nil, appErrors.Clone(appErrors.ErrLockTimeout, "timed out waiting for "+key)
		case <-ctx.Done():
			l.unref(key, slot)
			release()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return nil, appErrors.Wrap(ctx.Err(), appErrors.ErrLockTimeout.Code, appErrors.ErrLockTimeout.Status, "timed out waiting for "+key)
			}
			return nil, ctx.Err()
		}
	}
	var once sync.Once
	return func() { once.Do(release) }, nil
}

// noopLocker is used when locking is switched off entirely.
type noopLocker struct{}

func (noopLocker) Acquire(context.Context, []string) (func(), error) {
	return func() {}, nil
}
