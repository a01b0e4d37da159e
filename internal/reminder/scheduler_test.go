package reminder

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/clock"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/notify"
)

type fakeService struct {
	mu          sync.Mutex
	granted     bool
	scheduleErr error
	cancelErr   error
	nextHandle  int
	calls       []string
	delays      []time.Duration
	live        map[string]bool
}

func newFakeService() *fakeService {
	return &fakeService{granted: true, live: make(map[string]bool)}
}

func (f *fakeService) RequestPermission() (bool, error) {
	return f.granted, nil
}

func (f *fakeService) ScheduleDaily(title, body string, delay time.Duration, payload map[string]string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.scheduleErr != nil {
		return "", f.scheduleErr
	}
	f.nextHandle++
	handle := fmt.Sprintf("h%d", f.nextHandle)
	f.live[handle] = true
	f.calls = append(f.calls, "schedule:"+handle)
	f.delays = append(f.delays, delay)
	return handle, nil
}

func (f *fakeService) Cancel(handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "cancel:"+handle)
	if f.cancelErr != nil {
		return f.cancelErr
	}
	if !f.live[handle] {
		return notify.ErrUnknownHandle
	}
	delete(f.live, handle)
	return nil
}

type memBindings struct {
	mu       sync.Mutex
	bindings map[string]models.ReminderBinding
	saveErr  error
}

func newMemBindings() *memBindings {
	return &memBindings{bindings: make(map[string]models.ReminderBinding)}
}

func (m *memBindings) GetReminderBinding(habitID string) (*models.ReminderBinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.bindings[habitID]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *memBindings) SaveReminderBinding(binding models.ReminderBinding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	m.bindings[binding.HabitID] = binding
	return nil
}

func (m *memBindings) DeleteReminderBinding(habitID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.bindings, habitID)
	return nil
}

func (m *memBindings) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bindings)
}

var testNow = time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC)

func newTestScheduler() (*Scheduler, *fakeService, *memBindings) {
	svc := newFakeService()
	bindings := newMemBindings()
	return New(svc, bindings, clock.Fixed{T: testNow}), svc, bindings
}

func spec(habitID string) models.ReminderSpec {
	return models.ReminderSpec{HabitID: habitID, HabitName: "Read", Hour: 20, Minute: 0}
}

func TestSchedule_RejectsInvalidSpec(t *testing.T) {
	sched, svc, bindings := newTestScheduler()

	cases := []models.ReminderSpec{
		{HabitID: "", HabitName: "Read", Hour: 20, Minute: 0},
		{HabitID: "habit-1", HabitName: "Read", Hour: 24, Minute: 0},
		{HabitID: "habit-1", HabitName: "Read", Hour: -1, Minute: 0},
		{HabitID: "habit-1", HabitName: "Read", Hour: 20, Minute: 60},
	}
	for i, s := range cases {
		if _, err := sched.Schedule(s); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("case %d: err = %v, want ErrInvalidArgument", i, err)
		}
	}

	// Rejected before any side effect
	if len(svc.calls) != 0 {
		t.Errorf("capability calls = %v, want none", svc.calls)
	}
	if bindings.count() != 0 {
		t.Errorf("bindings = %d, want 0", bindings.count())
	}
}

func TestSchedule_FailsFastWithoutPermission(t *testing.T) {
	sched, svc, bindings := newTestScheduler()
	svc.granted = false

	if _, err := sched.Schedule(spec("habit-1")); !errors.Is(err, ErrPermissionDenied) {
		t.Errorf("err = %v, want ErrPermissionDenied", err)
	}
	if len(svc.calls) != 0 {
		t.Errorf("capability calls = %v, want none", svc.calls)
	}
	if bindings.count() != 0 {
		t.Errorf("bindings = %d, want 0", bindings.count())
	}
}

func TestSchedule_AtMostOneBinding(t *testing.T) {
	sched, svc, bindings := newTestScheduler()

	first, err := sched.Schedule(spec("habit-1"))
	if err != nil {
		t.Fatalf("first Schedule failed: %v", err)
	}
	second, err := sched.Schedule(spec("habit-1"))
	if err != nil {
		t.Fatalf("second Schedule failed: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct handles")
	}

	if bindings.count() != 1 {
		t.Fatalf("bindings = %d, want 1", bindings.count())
	}
	b, _ := bindings.GetReminderBinding("habit-1")
	if b.Handle != second {
		t.Errorf("persisted handle = %q, want %q", b.Handle, second)
	}

	// The old handle is cancelled before the new one is created
	want := []string{"schedule:" + first, "cancel:" + first, "schedule:" + second}
	if len(svc.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", svc.calls, want)
	}
	for i := range want {
		if svc.calls[i] != want[i] {
			t.Errorf("call %d = %q, want %q", i, svc.calls[i], want[i])
		}
	}
}

func TestSchedule_CapabilityFailureLeavesNoBinding(t *testing.T) {
	sched, svc, bindings := newTestScheduler()
	svc.scheduleErr = errors.New("channel down")

	_, err := sched.Schedule(spec("habit-1"))
	if !errors.Is(err, ErrSchedulingFailed) {
		t.Errorf("err = %v, want ErrSchedulingFailed", err)
	}
	if bindings.count() != 0 {
		t.Errorf("bindings = %d, want 0 (no stale binding)", bindings.count())
	}
}

func TestSchedule_PersistFailureCancelsOrphan(t *testing.T) {
	sched, svc, bindings := newTestScheduler()
	bindings.saveErr = errors.New("disk full")

	if _, err := sched.Schedule(spec("habit-1")); err == nil {
		t.Fatal("expected error")
	}
	// schedule then compensating cancel
	if len(svc.calls) != 2 || svc.calls[1] != "cancel:h1" {
		t.Errorf("calls = %v, want schedule then cancel of the orphan", svc.calls)
	}
}

func TestSchedule_NextDayRollover(t *testing.T) {
	// Clock reads 12:00; an 08:00 reminder must target tomorrow
	sched, svc, _ := newTestScheduler()

	if _, err := sched.Schedule(models.ReminderSpec{HabitID: "habit-1", HabitName: "Read", Hour: 8, Minute: 0}); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if got, want := svc.delays[0], 20*time.Hour; got != want {
		t.Errorf("delay = %v, want %v", got, want)
	}
}

func TestSchedule_SameDayLaterToday(t *testing.T) {
	sched, svc, _ := newTestScheduler()

	if _, err := sched.Schedule(models.ReminderSpec{HabitID: "habit-1", HabitName: "Read", Hour: 20, Minute: 30}); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if got, want := svc.delays[0], 8*time.Hour+30*time.Minute; got != want {
		t.Errorf("delay = %v, want %v", got, want)
	}
}

func TestSchedule_MinimumLeadFloor(t *testing.T) {
	// Target only 3 seconds out; the floor prevents a near-instant fire
	svc := newFakeService()
	bindings := newMemBindings()
	now := time.Date(2025, 11, 19, 19, 59, 57, 0, time.UTC)
	sched := New(svc, bindings, clock.Fixed{T: now})

	if _, err := sched.Schedule(spec("habit-1")); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if svc.delays[0] < 10*time.Second {
		t.Errorf("delay = %v, want at least the 10s floor", svc.delays[0])
	}
}

func TestNextTrigger(t *testing.T) {
	tests := []struct {
		name   string
		now    time.Time
		hour   int
		minute int
		want   time.Time
	}{
		{
			name: "later today",
			now:  time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC),
			hour: 20, minute: 0,
			want: time.Date(2025, 11, 19, 20, 0, 0, 0, time.UTC),
		},
		{
			name: "already passed rolls to tomorrow",
			now:  time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC),
			hour: 8, minute: 30,
			want: time.Date(2025, 11, 20, 8, 30, 0, 0, time.UTC),
		},
		{
			name: "exactly now rolls to tomorrow",
			now:  time.Date(2025, 11, 19, 12, 0, 0, 0, time.UTC),
			hour: 12, minute: 0,
			want: time.Date(2025, 11, 20, 12, 0, 0, 0, time.UTC),
		},
		{
			name: "month boundary",
			now:  time.Date(2025, 11, 30, 23, 0, 0, 0, time.UTC),
			hour: 9, minute: 0,
			want: time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextTrigger(tt.now, tt.hour, tt.minute); !got.Equal(tt.want) {
				t.Errorf("NextTrigger = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCancel_Idempotent(t *testing.T) {
	sched, _, bindings := newTestScheduler()

	// No binding at all: no-op success
	if err := sched.Cancel("habit-1"); err != nil {
		t.Errorf("Cancel with no binding = %v, want nil", err)
	}

	if _, err := sched.Schedule(spec("habit-1")); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	if err := sched.Cancel("habit-1"); err != nil {
		t.Errorf("first Cancel = %v, want nil", err)
	}
	if err := sched.Cancel("habit-1"); err != nil {
		t.Errorf("second Cancel = %v, want nil", err)
	}
	if bindings.count() != 0 {
		t.Errorf("bindings = %d, want 0", bindings.count())
	}
}

func TestCancel_UnknownHandleTreatedAsSuccess(t *testing.T) {
	sched, svc, bindings := newTestScheduler()

	handle, err := sched.Schedule(spec("habit-1"))
	if err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	// Simulate the notification having already fired and been forgotten
	svc.mu.Lock()
	delete(svc.live, handle)
	svc.mu.Unlock()

	if err := sched.Cancel("habit-1"); err != nil {
		t.Errorf("Cancel = %v, want nil for unknown handle", err)
	}
	if bindings.count() != 0 {
		t.Errorf("bindings = %d, want 0", bindings.count())
	}
}

func TestCancel_RemovesMappingEvenWhenCapabilityFails(t *testing.T) {
	sched, svc, bindings := newTestScheduler()

	if _, err := sched.Schedule(spec("habit-1")); err != nil {
		t.Fatalf("Schedule failed: %v", err)
	}
	svc.cancelErr = errors.New("service down")

	err := sched.Cancel("habit-1")
	if err == nil {
		t.Error("expected the capability failure to surface")
	}
	if bindings.count() != 0 {
		t.Errorf("bindings = %d, want 0 (mapping removed regardless)", bindings.count())
	}
}

func TestCancel_EmptyHabitID(t *testing.T) {
	sched, _, _ := newTestScheduler()
	if err := sched.Cancel(""); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestSchedule_ConcurrentSameHabit(t *testing.T) {
	sched, _, bindings := newTestScheduler()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := sched.Schedule(spec("habit-1")); err != nil {
				t.Errorf("Schedule failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if bindings.count() != 1 {
		t.Errorf("bindings = %d, want exactly 1 after concurrent scheduling", bindings.count())
	}
}
