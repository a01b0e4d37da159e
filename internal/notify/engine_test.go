package notify

import (
	"sync"
	"testing"
	"time"
)

type recordingSink struct {
	mu        sync.Mutex
	delivered []string
	available bool
}

func (s *recordingSink) Notify(title, body string, payload map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delivered = append(s.delivered, body)
	return nil
}

func (s *recordingSink) Available() bool {
	return s.available
}

func (s *recordingSink) deliveredCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delivered)
}

func TestEngine_DeliversScheduledNotification(t *testing.T) {
	sink := &recordingSink{available: true}
	engine := NewEngine(sink)
	engine.Start()
	defer engine.Stop()

	handle, err := engine.ScheduleDaily("Habit Reminder", "Time to do: Read!", 10*time.Millisecond, nil)
	if err != nil {
		t.Fatalf("ScheduleDaily failed: %v", err)
	}
	if handle == "" {
		t.Fatal("expected non-empty handle")
	}

	deadline := time.Now().Add(2 * time.Second)
	for sink.deliveredCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if sink.deliveredCount() != 1 {
		t.Fatalf("delivered = %d, want 1", sink.deliveredCount())
	}

	// The notification re-arms for tomorrow instead of disappearing
	if engine.Pending() != 1 {
		t.Errorf("Pending = %d, want 1 (daily repeat)", engine.Pending())
	}
}

func TestEngine_CancelPreventsDelivery(t *testing.T) {
	sink := &recordingSink{available: true}
	engine := NewEngine(sink)
	engine.Start()
	defer engine.Stop()

	handle, err := engine.ScheduleDaily("Habit Reminder", "Time to do: Run!", time.Hour, nil)
	if err != nil {
		t.Fatalf("ScheduleDaily failed: %v", err)
	}

	if err := engine.Cancel(handle); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if engine.Pending() != 0 {
		t.Errorf("Pending = %d, want 0", engine.Pending())
	}
	if sink.deliveredCount() != 0 {
		t.Errorf("delivered = %d, want 0", sink.deliveredCount())
	}
}

func TestEngine_CancelUnknownHandle(t *testing.T) {
	engine := NewEngine(&recordingSink{available: true})
	engine.Start()
	defer engine.Stop()

	if err := engine.Cancel("no-such-handle"); err != ErrUnknownHandle {
		t.Errorf("Cancel = %v, want ErrUnknownHandle", err)
	}
}

func TestEngine_CancelTwiceReturnsUnknown(t *testing.T) {
	engine := NewEngine(&recordingSink{available: true})
	engine.Start()
	defer engine.Stop()

	handle, err := engine.ScheduleDaily("t", "b", time.Hour, nil)
	if err != nil {
		t.Fatalf("ScheduleDaily failed: %v", err)
	}
	if err := engine.Cancel(handle); err != nil {
		t.Fatalf("first Cancel failed: %v", err)
	}
	if err := engine.Cancel(handle); err != ErrUnknownHandle {
		t.Errorf("second Cancel = %v, want ErrUnknownHandle", err)
	}
}

func TestEngine_RejectsNonPositiveDelay(t *testing.T) {
	engine := NewEngine(&recordingSink{available: true})
	engine.Start()
	defer engine.Stop()

	if _, err := engine.ScheduleDaily("t", "b", 0, nil); err != ErrInvalidDelay {
		t.Errorf("ScheduleDaily(0) = %v, want ErrInvalidDelay", err)
	}
	if _, err := engine.ScheduleDaily("t", "b", -time.Second, nil); err != ErrInvalidDelay {
		t.Errorf("ScheduleDaily(-1s) = %v, want ErrInvalidDelay", err)
	}
}

func TestEngine_RequestPermissionReflectsSink(t *testing.T) {
	granted, err := NewEngine(&recordingSink{available: true}).RequestPermission()
	if err != nil || !granted {
		t.Errorf("RequestPermission = (%v, %v), want (true, nil)", granted, err)
	}
	granted, err = NewEngine(&recordingSink{available: false}).RequestPermission()
	if err != nil || granted {
		t.Errorf("RequestPermission = (%v, %v), want (false, nil)", granted, err)
	}
}

func TestEngine_ScheduleAfterStop(t *testing.T) {
	engine := NewEngine(&recordingSink{available: true})
	engine.Start()
	engine.Stop()

	if _, err := engine.ScheduleDaily("t", "b", time.Hour, nil); err != ErrStopped {
		t.Errorf("ScheduleDaily after Stop = %v, want ErrStopped", err)
	}
}
