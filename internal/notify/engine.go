package notify

import (
	"container/heap"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/KKM43/Habbit-AI-App/internal/logger"
)

type pending struct {
	handle  string
	title   string
	body    string
	payload map[string]string
	fireAt  time.Time
}

type fireQueue []*pending

func (q fireQueue) Len() int { return len(q) }

func (q fireQueue) Less(i, j int) bool {
	return q[i].fireAt.Before(q[j].fireAt)
}

func (q fireQueue) Swap(i, j int) {
	q[i], q[j] = q[j], q[i]
}

func (q *fireQueue) Push(x any) {
	*q = append(*q, x.(*pending))
}

func (q *fireQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[0 : n-1]
	return item
}

// Engine is an in-process implementation of Service: a timer loop over a
// min-heap of pending notifications. Fired notifications re-arm one day
// later until cancelled.
type Engine struct {
	sink Sink

	mu        sync.Mutex
	queue     fireQueue
	byHandle  map[string]*pending
	cancelled map[string]bool
	wakeup    chan struct{}
	stopCh    chan struct{}
	doneCh    chan struct{}
	started   bool
	stopped   bool
}

func NewEngine(sink Sink) *Engine {
	return &Engine{
		sink:      sink,
		queue:     make(fireQueue, 0),
		byHandle:  make(map[string]*pending),
		cancelled: make(map[string]bool),
		wakeup:    make(chan struct{}, 1),
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

func (e *Engine) Start() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return
	}
	e.started = true
	heap.Init(&e.queue)
	go e.loop()
}

func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.started || e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	close(e.stopCh)
	e.mu.Unlock()
	<-e.doneCh
}

// RequestPermission reports whether the delivery channel is usable.
func (e *Engine) RequestPermission() (bool, error) {
	return e.sink.Available(), nil
}

func (e *Engine) ScheduleDaily(title, body string, firstFireDelay time.Duration, payload map[string]string) (string, error) {
	if firstFireDelay <= 0 {
		return "", ErrInvalidDelay
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stopped {
		return "", ErrStopped
	}

	item := &pending{
		handle:  uuid.New().String(),
		title:   title,
		body:    body,
		payload: payload,
		fireAt:  time.Now().Add(firstFireDelay),
	}
	heap.Push(&e.queue, item)
	e.byHandle[item.handle] = item
	e.signalWakeup()
	return item.handle, nil
}

// Cancel removes a pending notification. Unknown handles, including handles
// for notifications already cancelled, yield ErrUnknownHandle.
func (e *Engine) Cancel(handle string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.byHandle[handle]; !ok {
		return ErrUnknownHandle
	}
	delete(e.byHandle, handle)
	// Lazy removal: the loop drops cancelled items when they surface
	e.cancelled[handle] = true
	e.signalWakeup()
	return nil
}

// Pending returns the number of live scheduled notifications.
func (e *Engine) Pending() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.byHandle)
}

func (e *Engine) loop() {
	defer close(e.doneCh)

	var timer *time.Timer
	for {
		next, hasNext := e.peek()
		if !hasNext {
			select {
			case <-e.wakeup:
				continue
			case <-e.stopCh:
				return
			}
		}

		wait := time.Until(next.fireAt)
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, item := range e.popDue(time.Now()) {
				if err := e.sink.Notify(item.title, item.body, item.payload); err != nil {
					logger.Warn("Notification delivery failed", "handle", item.handle, "error", err)
				}
			}
		case <-e.wakeup:
			continue
		case <-e.stopCh:
			if timer != nil {
				stopTimer(timer)
			}
			return
		}
	}
}

func (e *Engine) signalWakeup() {
	select {
	case e.wakeup <- struct{}{}:
	default:
	}
}

func (e *Engine) peek() (*pending, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for len(e.queue) > 0 {
		next := e.queue[0]
		if e.cancelled[next.handle] {
			heap.Pop(&e.queue)
			delete(e.cancelled, next.handle)
			continue
		}
		return next, true
	}
	return nil, false
}

// popDue pops every due notification and immediately re-arms it for the
// same time tomorrow. Cancelled items are dropped instead.
func (e *Engine) popDue(now time.Time) []*pending {
	e.mu.Lock()
	defer e.mu.Unlock()

	due := make([]*pending, 0)
	for len(e.queue) > 0 {
		next := e.queue[0]
		if e.cancelled[next.handle] {
			heap.Pop(&e.queue)
			delete(e.cancelled, next.handle)
			continue
		}
		if next.fireAt.After(now) {
			break
		}
		item := heap.Pop(&e.queue).(*pending)
		due = append(due, item)

		rearmed := *item
		rearmed.fireAt = item.fireAt.AddDate(0, 0, 1)
		heap.Push(&e.queue, &rearmed)
		e.byHandle[item.handle] = &rearmed
	}
	return due
}

func resetTimer(timer *time.Timer, d time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(d)
	}
	stopTimer(timer)
	timer.Reset(d)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}
