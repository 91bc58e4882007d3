package widget

import (
	"sort"
	"sync/atomic"
	"time"
)

// Task is a scheduled callback that can be cancelled before it runs.
type Task interface {
	// Cancel prevents the callback from running. It reports whether the
	// call stopped the task; false means it already ran or was cancelled.
	Cancel() bool
}

// Scheduler runs callbacks after a delay.
type Scheduler interface {
	Schedule(d time.Duration, fn func()) Task
}

// =============================================================================
// Timer Scheduler
// =============================================================================

const (
	taskPending int32 = iota
	taskCancelled
	taskFired
)

// TimerScheduler schedules with time.AfterFunc and hands due callbacks to
// post, which is expected to run them on the widget's event loop.
type TimerScheduler struct {
	post func(func())
}

// NewTimerScheduler returns a scheduler that delivers callbacks through
// post. It panics if post is nil: callbacks must never run on the timer's
// own goroutine.
func NewTimerScheduler(post func(func())) *TimerScheduler {
	if post == nil {
		panic("widget: NewTimerScheduler with nil post")
	}
	return &TimerScheduler{post: post}
}

type timerTask struct {
	state atomic.Int32
	timer *time.Timer
}

// Schedule arms a timer for fn.
func (s *TimerScheduler) Schedule(d time.Duration, fn func()) Task {
	t := &timerTask{}
	t.timer = time.AfterFunc(d, func() {
		s.post(func() {
			// A cancel that lands between the timer firing and the loop
			// picking up the callback still wins.
			if t.state.CompareAndSwap(taskPending, taskFired) {
				fn()
			}
		})
	})
	return t
}

func (t *timerTask) Cancel() bool {
	if !t.state.CompareAndSwap(taskPending, taskCancelled) {
		return false
	}
	t.timer.Stop()
	return true
}

// =============================================================================
// Manual Scheduler
// =============================================================================

// ManualScheduler is a deterministic scheduler driven by Advance. Callbacks
// run synchronously inside Advance, ordered by due time and then by
// scheduling order.
type ManualScheduler struct {
	now   time.Duration
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	due   time.Duration
	seq   int
	fn    func()
	state int32
}

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Schedule registers fn to run d after the current manual time.
func (s *ManualScheduler) Schedule(d time.Duration, fn func()) Task {
	s.seq++
	t := &manualTask{due: s.now + d, seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (t *manualTask) Cancel() bool {
	if t.state != taskPending {
		return false
	}
	t.state = taskCancelled
	return true
}

// Now returns the manual time elapsed since creation.
func (s *ManualScheduler) Now() time.Duration { return s.now }

// Pending returns the number of tasks that have neither run nor been
// cancelled.
func (s *ManualScheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if t.state == taskPending {
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, running every task that falls due.
// Tasks scheduled by a callback run in the same call if they fall due
// before the new time.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		s.compact()
		if len(s.tasks) == 0 || s.tasks[0].due > target {
			break
		}
		t := s.tasks[0]
		s.now = t.due
		t.state = taskFired
		t.fn()
	}
	s.now = target
}

// compact drops finished tasks and sorts the rest by due time.
func (s *ManualScheduler) compact() {
	live := s.tasks[:0]
	for _, t := range s.tasks {
		if t.state == taskPending {
			live = append(live, t)
		}
	}
	s.tasks = live
	sort.Slice(s.tasks, func(i, j int) bool {
		if s.tasks[i].due != s.tasks[j].due {
			return s.tasks[i].due < s.tasks[j].due
		}
		return s.tasks[i].seq < s.tasks[j].seq
	})
}
