package services

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type firedLog struct {
	mu  sync.Mutex
	ids []string
}

func (f *firedLog) record(sessionID, _ string) {
	f.mu.Lock()
	f.ids = append(f.ids, sessionID)
	f.mu.Unlock()
}

func (f *firedLog) snapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.ids))
	copy(out, f.ids)
	return out
}

func TestTimerScheduler_FiresDueEntries(t *testing.T) {
	fired := &firedLog{}
	s := NewTimerScheduler(fired.record, nil)
	defer s.Close()

	s.Schedule("s1", "f1", time.Now().Add(20*time.Millisecond))
	s.Schedule("s2", "f1", time.Now().Add(40*time.Millisecond))

	assert.Eventually(t, func() bool {
		return len(fired.snapshot()) == 2
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, []string{"s1", "s2"}, fired.snapshot(), "earliest resume fires first")
	assert.Equal(t, 0, s.Pending())
}

func TestTimerScheduler_OverdueFiresImmediately(t *testing.T) {
	fired := &firedLog{}
	s := NewTimerScheduler(fired.record, nil)
	defer s.Close()

	s.Schedule("late", "f1", time.Now().Add(-time.Minute))

	assert.Eventually(t, func() bool {
		return len(fired.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTimerScheduler_RescheduleReplaces(t *testing.T) {
	fired := &firedLog{}
	s := NewTimerScheduler(fired.record, nil)
	defer s.Close()

	s.Schedule("s1", "f1", time.Now().Add(time.Hour))
	require.Equal(t, 1, s.Pending())

	s.Schedule("s1", "f1", time.Now().Add(20*time.Millisecond))
	require.Equal(t, 1, s.Pending(), "rescheduling replaces, never duplicates")

	assert.Eventually(t, func() bool {
		return len(fired.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTimerScheduler_Cancel(t *testing.T) {
	fired := &firedLog{}
	s := NewTimerScheduler(fired.record, nil)
	defer s.Close()

	s.Schedule("s1", "f1", time.Now().Add(30*time.Millisecond))
	s.Cancel("s1")
	assert.Equal(t, 0, s.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, fired.snapshot())
}

func TestTimerScheduler_CancelFlow(t *testing.T) {
	fired := &firedLog{}
	s := NewTimerScheduler(fired.record, nil)
	defer s.Close()

	s.Schedule("s1", "bot-a", time.Now().Add(30*time.Millisecond))
	s.Schedule("s2", "bot-a", time.Now().Add(30*time.Millisecond))
	s.Schedule("s3", "bot-b", time.Now().Add(30*time.Millisecond))

	s.CancelFlow("bot-a")
	assert.Equal(t, 1, s.Pending())

	assert.Eventually(t, func() bool {
		return len(fired.snapshot()) == 1
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"s3"}, fired.snapshot())
}

func TestTimerScheduler_ScheduleAfterClose(t *testing.T) {
	fired := &firedLog{}
	s := NewTimerScheduler(fired.record, nil)
	require.NoError(t, s.Close())

	s.Schedule("s1", "f1", time.Now())
	assert.Equal(t, 0, s.Pending())
}
