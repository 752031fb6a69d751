// Package services provides the supporting services around the
// engine: the delay scheduler and the flow-from-description
// generator.
package services

import (
	"container/heap"
	"sync"
	"time"

	"go.uber.org/zap"
)

// FireFunc is invoked on the scheduler's goroutine when a session's
// resume time arrives. The handler builds a timer event and feeds it
// to the engine. The entry is already off the queue when the handler
// runs; a handler that fails must call Schedule again, and gets the
// flow ID back for that.
type FireFunc func(sessionID, flowID string)

// TimerScheduler arranges future resumes with a single goroutine and
// a min-heap timer queue. No goroutine sleeps per delay: the
// goroutine waits only until the earliest due entry.
type TimerScheduler struct {
	mu      sync.Mutex
	queue   timerQueue
	byID    map[string]*timerEntry
	fire    FireFunc
	wake    chan struct{}
	done    chan struct{}
	closed  bool
	once    sync.Once
	log     *zap.Logger
	nowFunc func() time.Time
}

type timerEntry struct {
	sessionID string
	flowID    string
	at        time.Time
	index     int // heap index, -1 when removed
}

// NewTimerScheduler creates and starts a scheduler. Close releases
// its goroutine.
func NewTimerScheduler(fire FireFunc, log *zap.Logger) *TimerScheduler {
	if log == nil {
		log = zap.NewNop()
	}
	s := &TimerScheduler{
		byID:    make(map[string]*timerEntry),
		fire:    fire,
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		log:     log,
		nowFunc: time.Now,
	}
	go s.loop()
	return s
}

// Schedule registers a resume for a session. Scheduling the same
// session again replaces its previous resume time.
func (s *TimerScheduler) Schedule(sessionID, flowID string, at time.Time) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if existing, ok := s.byID[sessionID]; ok {
		existing.at = at
		existing.flowID = flowID
		heap.Fix(&s.queue, existing.index)
	} else {
		entry := &timerEntry{sessionID: sessionID, flowID: flowID, at: at}
		heap.Push(&s.queue, entry)
		s.byID[sessionID] = entry
	}
	s.mu.Unlock()
	s.wakeup()
}

// Cancel drops a session's scheduled resume, if any.
func (s *TimerScheduler) Cancel(sessionID string) {
	s.mu.Lock()
	if entry, ok := s.byID[sessionID]; ok {
		heap.Remove(&s.queue, entry.index)
		delete(s.byID, sessionID)
	}
	s.mu.Unlock()
	s.wakeup()
}

// CancelFlow drops every scheduled resume belonging to a flow. Used
// when a chatbot is deactivated or deleted.
func (s *TimerScheduler) CancelFlow(flowID string) {
	s.mu.Lock()
	for id, entry := range s.byID {
		if entry.flowID == flowID {
			heap.Remove(&s.queue, entry.index)
			delete(s.byID, id)
		}
	}
	s.mu.Unlock()
	s.wakeup()
}

// Pending returns the number of scheduled resumes.
func (s *TimerScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Len()
}

// Close stops the scheduler goroutine. Pending entries are dropped.
func (s *TimerScheduler) Close() error {
	s.once.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()
		close(s.done)
	})
	return nil
}

func (s *TimerScheduler) wakeup() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *TimerScheduler) loop() {
	timer := time.NewTimer(time.Hour)
	defer timer.Stop()
	for {
		next, ok := s.popDue()
		if next != nil {
			s.fire(next.sessionID, next.flowID)
			continue
		}

		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		if ok {
			timer.Reset(s.waitFor())
			select {
			case <-timer.C:
			case <-s.wake:
			case <-s.done:
				return
			}
		} else {
			select {
			case <-s.wake:
			case <-s.done:
				return
			}
		}
	}
}

// popDue removes and returns one due entry. The bool reports whether
// any entry remains queued.
func (s *TimerScheduler) popDue() (*timerEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return nil, false
	}
	head := s.queue[0]
	if head.at.After(s.nowFunc()) {
		return nil, true
	}
	heap.Pop(&s.queue)
	delete(s.byID, head.sessionID)
	return head, s.queue.Len() > 0
}

func (s *TimerScheduler) waitFor() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.queue.Len() == 0 {
		return time.Hour
	}
	d := time.Until(s.queue[0].at)
	if d < time.Millisecond {
		d = time.Millisecond
	}
	return d
}

// timerQueue is a min-heap ordered by resume time.
type timerQueue []*timerEntry

func (q timerQueue) Len() int           { return len(q) }
func (q timerQueue) Less(i, j int) bool { return q[i].at.Before(q[j].at) }
func (q timerQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i]; q[i].index = i; q[j].index = j }
func (q *timerQueue) Push(x any)        { e := x.(*timerEntry); e.index = len(*q); *q = append(*q, e) }
func (q *timerQueue) Pop() any {
	old := *q
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	e.index = -1
	*q = old[:n-1]
	return e
}
