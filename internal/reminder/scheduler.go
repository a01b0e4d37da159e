package reminder

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/KKM43/Habbit-AI-App/internal/clock"
	"github.com/KKM43/Habbit-AI-App/internal/constants"
	"github.com/KKM43/Habbit-AI-App/internal/logger"
	"github.com/KKM43/Habbit-AI-App/internal/models"
	"github.com/KKM43/Habbit-AI-App/internal/notify"
)

var (
	// ErrInvalidArgument marks malformed input rejected before any side
	// effect (missing habit id, out-of-range hour/minute).
	ErrInvalidArgument = errors.New("reminder: invalid argument")

	// ErrPermissionDenied means the notification channel is unavailable;
	// the caller is responsible for prompting the user.
	ErrPermissionDenied = errors.New("reminder: notification permission denied")

	// ErrSchedulingFailed wraps failures from the notification capability.
	ErrSchedulingFailed = errors.New("reminder: scheduling failed")
)

// BindingStore is the durable habit -> notification handle mapping. Get
// returns (nil, nil) when no binding exists.
type BindingStore interface {
	GetReminderBinding(habitID string) (*models.ReminderBinding, error)
	SaveReminderBinding(binding models.ReminderBinding) error
	DeleteReminderBinding(habitID string) error
}

// Scheduler maintains at most one scheduled notification per habit. All
// operations for the same habit are serialized through a per-habit lock;
// distinct habits proceed independently.
type Scheduler struct {
	svc      notify.Service
	bindings BindingStore
	clock    clock.Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func New(svc notify.Service, bindings BindingStore, clk clock.Clock) *Scheduler {
	if clk == nil {
		clk = clock.Real{}
	}
	return &Scheduler{
		svc:      svc,
		bindings: bindings,
		clock:    clk,
		locks:    make(map[string]*sync.Mutex),
	}
}

func (s *Scheduler) habitLock(habitID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[habitID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[habitID] = lock
	}
	return lock
}

// Schedule registers a daily reminder for the habit, replacing any existing
// one. The old binding is cancelled before the new notification is created,
// so at most one is ever live. Returns the new notification handle.
func (s *Scheduler) Schedule(spec models.ReminderSpec) (string, error) {
	if err := spec.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	lock := s.habitLock(spec.HabitID)
	lock.Lock()
	defer lock.Unlock()

	granted, err := s.svc.RequestPermission()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}
	if !granted {
		return "", ErrPermissionDenied
	}

	existing, err := s.bindings.GetReminderBinding(spec.HabitID)
	if err != nil {
		return "", fmt.Errorf("reading reminder binding: %w", err)
	}
	if existing != nil {
		// Best effort: a cancel failure must not block the reschedule
		if err := s.svc.Cancel(existing.Handle); err != nil && !errors.Is(err, notify.ErrUnknownHandle) {
			logger.Warn("Failed to cancel previous reminder", "habit", spec.HabitID, "handle", existing.Handle, "error", err)
		}
		if err := s.bindings.DeleteReminderBinding(spec.HabitID); err != nil {
			return "", fmt.Errorf("clearing reminder binding: %w", err)
		}
	}

	now := s.clock.Now()
	delay := NextTrigger(now, spec.Hour, spec.Minute).Sub(now)
	if delay < constants.MinReminderLead {
		delay = constants.MinReminderLead
	}

	body := fmt.Sprintf("Time to do: %s!", spec.HabitName)
	handle, err := s.svc.ScheduleDaily(constants.ReminderTitle, body, delay, map[string]string{"habit_id": spec.HabitID})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSchedulingFailed, err)
	}

	binding := models.ReminderBinding{
		HabitID:     spec.HabitID,
		Handle:      handle,
		ScheduledAt: now,
	}
	if err := s.bindings.SaveReminderBinding(binding); err != nil {
		// Don't leave an unbound live notification behind
		if cerr := s.svc.Cancel(handle); cerr != nil && !errors.Is(cerr, notify.ErrUnknownHandle) {
			logger.Warn("Failed to cancel orphaned reminder", "habit", spec.HabitID, "handle", handle, "error", cerr)
		}
		return "", fmt.Errorf("persisting reminder binding: %w", err)
	}

	logger.Debug("Scheduled reminder", "habit", spec.HabitID, "time", fmt.Sprintf("%02d:%02d", spec.Hour, spec.Minute), "delay", delay)
	return handle, nil
}

// Cancel removes the habit's reminder. It is idempotent: no binding is a
// no-op success, and an unknown handle at the capability counts as success
// because the desired end state already holds. The persisted mapping is
// removed regardless of the capability call outcome so stale bindings
// cannot leak.
func (s *Scheduler) Cancel(habitID string) error {
	if habitID == "" {
		return fmt.Errorf("%w: habit id is required", ErrInvalidArgument)
	}

	lock := s.habitLock(habitID)
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.bindings.GetReminderBinding(habitID)
	if err != nil {
		return fmt.Errorf("reading reminder binding: %w", err)
	}
	if existing == nil {
		return nil
	}

	cancelErr := s.svc.Cancel(existing.Handle)
	if errors.Is(cancelErr, notify.ErrUnknownHandle) {
		cancelErr = nil
	}

	if err := s.bindings.DeleteReminderBinding(habitID); err != nil {
		return fmt.Errorf("clearing reminder binding: %w", err)
	}
	if cancelErr != nil {
		return fmt.Errorf("cancelling reminder: %w", cancelErr)
	}
	return nil
}

// NextTrigger computes the first fire instant for a daily reminder: today at
// hour:minute, or the same time tomorrow when that is not strictly in the
// future.
func NextTrigger(now time.Time, hour, minute int) time.Time {
	target := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
	if !target.After(now) {
		target = target.AddDate(0, 0, 1)
	}
	return target
}
