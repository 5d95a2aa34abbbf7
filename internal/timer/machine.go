// Package timer implements the active-timer state machine: start, pause,
// resume, stop, pomodoro and break countdowns, and crash recovery from a
// periodically persisted snapshot.
package timer

import (
	"sync"
	"time"

	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/state"
	"github.com/sadopc/tempo/internal/store"
	"github.com/sadopc/tempo/internal/timeutil"
)

const (
	DefaultMinSession  = 60   // seconds under which a manual stop is discarded
	DefaultPomodoro    = 1500 // 25 minutes
	DefaultBreak       = 300  // 5 minutes
	maxSnapshotAge     = 24 * time.Hour
	snapshotEveryTicks = 2
)

// Completion describes a countdown that ran to zero.
type Completion struct {
	Type     model.SessionType
	Duration int // seconds, the configured countdown length
}

// snapshot is the recovery record persisted while a timer runs.
type snapshot struct {
	Target         string    `json:"target"`
	StartedAt      time.Time `json:"startedAt"`
	Paused         bool      `json:"paused"`
	PausedElapsed  int       `json:"pausedElapsed"`
	Countdown      bool      `json:"countdown"`
	CountdownTotal int       `json:"countdownTotal"`
	LastSeen       time.Time `json:"lastSeen"`
}

// Machine owns the single active timer. At most one timer runs at a time;
// starting a new one finalizes the old one first. The machine also owns its
// tick handle: installing a new ticker always cancels the previous one.
type Machine struct {
	mu    sync.Mutex
	store *store.Store
	st    *state.State

	now        func() time.Time
	autoTick   bool
	onComplete func(Completion)

	minSession      int
	pomodoroSeconds int
	pomodoroOn      bool

	target         string // project id, model.BreakProject, or "" when idle
	startedAt      time.Time
	paused         bool
	pausedElapsed  int
	countdown      bool
	countdownTotal int
	tickCount      int

	cancel chan struct{}
}

// Option configures a Machine.
type Option func(*Machine)

// WithClock injects the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// WithoutTicker disables the internal 1 Hz ticker; callers drive Tick
// themselves. Used in tests.
func WithoutTicker() Option {
	return func(m *Machine) { m.autoTick = false }
}

// New builds an idle machine persisting sessions into st and recovery
// snapshots into s.
func New(s *store.Store, st *state.State, opts ...Option) *Machine {
	m := &Machine{
		store:           s,
		st:              st,
		now:             time.Now,
		autoTick:        true,
		minSession:      DefaultMinSession,
		pomodoroSeconds: DefaultPomodoro,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// OnComplete registers the countdown-completion callback, invoked after the
// completion session has been persisted.
func (m *Machine) OnComplete(fn func(Completion)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onComplete = fn
}

// SetMinSession sets the minimum duration gate for manual stops.
func (m *Machine) SetMinSession(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.minSession = seconds
}

// SetPomodoro configures pomodoro mode for subsequent starts.
func (m *Machine) SetPomodoro(enabled bool, seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pomodoroOn = enabled
	if seconds > 0 {
		m.pomodoroSeconds = seconds
	}
}

// Start begins tracking projectID. Starting the paused target resumes it;
// starting over any other running timer discards that run.
func (m *Machine) Start(projectID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.target == projectID && m.paused {
		m.resumeLocked()
		return
	}
	if m.target != "" {
		m.stopLocked(false)
	}

	m.target = projectID
	m.startedAt = m.now()
	m.paused = false
	m.pausedElapsed = 0
	m.tickCount = 0
	m.countdown = m.pomodoroOn && m.pomodoroSeconds > 0
	m.countdownTotal = m.pomodoroSeconds
	m.startTickingLocked()
	m.saveSnapshotLocked()
}

// StartBreak stops any running timer (saving it, unless it is itself a
// break) and begins a break countdown of the given length.
func (m *Machine) StartBreak(seconds int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.target != "" {
		m.stopLocked(m.target != model.BreakProject)
	}

	m.target = model.BreakProject
	m.startedAt = m.now()
	m.paused = false
	m.pausedElapsed = 0
	m.tickCount = 0
	m.countdown = true
	m.countdownTotal = seconds
	m.startTickingLocked()
	m.saveSnapshotLocked()
}

// Pause freezes the running timer. No-op when idle or already paused.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.target == "" || m.paused {
		return
	}
	m.stopTickingLocked()
	m.pausedElapsed = m.elapsedLocked()
	m.paused = true
	m.saveSnapshotLocked()
}

// Resume continues a paused timer with elapsed time intact.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resumeLocked()
}

func (m *Machine) resumeLocked() {
	if m.target == "" || !m.paused {
		return
	}
	// Shift the start backwards so elapsed accounting is continuous
	// across the pause.
	m.startedAt = m.now().Add(-time.Duration(m.pausedElapsed) * time.Second)
	m.paused = false
	m.startTickingLocked()
	m.saveSnapshotLocked()
}

// Stop finalizes the active timer. With save, a session is recorded when the
// elapsed time clears the minimum-duration gate.
func (m *Machine) Stop(save bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked(save)
}

func (m *Machine) stopLocked(save bool) {
	if m.target == "" {
		return
	}
	m.stopTickingLocked()
	m.store.Delete(store.KeyRecovery)

	elapsed := m.elapsedLocked()
	if save && elapsed >= m.minSession {
		kind := model.TypeWork
		if m.target == model.BreakProject {
			kind = model.TypeBreak
		}
		now := m.now()
		m.st.AddSession(model.Session{
			ID:        model.NewID(),
			ProjectID: m.target,
			StartTime: m.startedAt,
			EndTime:   now,
			Duration:  elapsed,
			Date:      timeutil.DateOf(now),
			Type:      kind,
		})
	}
	m.resetLocked()
}

// Tick advances the machine one second of wall clock. Elapsed time is always
// recomputed from the clock, never accumulated.
func (m *Machine) Tick() {
	m.mu.Lock()

	if m.target == "" || m.paused {
		m.mu.Unlock()
		return
	}

	if m.countdown && m.countdownTotal-m.elapsedLocked() <= 0 {
		done, c := m.finishLocked()
		m.mu.Unlock()
		if done != nil {
			done(c)
		}
		return
	}

	m.tickCount++
	if m.tickCount%snapshotEveryTicks == 0 {
		m.saveSnapshotLocked()
	}
	m.mu.Unlock()
}

// finishLocked handles a countdown reaching zero. Completion sessions are
// recorded unconditionally, regardless of the minimum-duration gate. The
// callback is returned so the caller can invoke it outside the lock.
func (m *Machine) finishLocked() (func(Completion), Completion) {
	m.stopTickingLocked()
	m.store.Delete(store.KeyRecovery)

	kind := model.TypePomodoro
	if m.target == model.BreakProject {
		kind = model.TypeBreak
	}
	duration := m.countdownTotal
	now := m.now()
	m.st.AddSession(model.Session{
		ID:        model.NewID(),
		ProjectID: m.target,
		StartTime: m.startedAt,
		EndTime:   now,
		Duration:  duration,
		Date:      timeutil.DateOf(now),
		Type:      kind,
	})

	done := m.onComplete
	m.resetLocked()
	return done, Completion{Type: kind, Duration: duration}
}

func (m *Machine) resetLocked() {
	m.target = ""
	m.paused = false
	m.pausedElapsed = 0
	m.countdown = false
	m.countdownTotal = 0
	m.tickCount = 0
}

// Recover restores the active timer from the last snapshot, if one exists
// and is fresh enough to trust. A running snapshot resumes ticking with its
// original start time, so the away-time elapses as real wall clock.
func (m *Machine) Recover() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	var snap snapshot
	if !m.store.Load(store.KeyRecovery, &snap) {
		return false
	}
	if m.now().Sub(snap.LastSeen) > maxSnapshotAge {
		m.store.Delete(store.KeyRecovery)
		return false
	}

	m.target = snap.Target
	m.startedAt = snap.StartedAt
	m.paused = snap.Paused
	m.pausedElapsed = snap.PausedElapsed
	m.countdown = snap.Countdown
	m.countdownTotal = snap.CountdownTotal
	m.tickCount = 0

	if !m.paused {
		m.startTickingLocked()
	}
	return true
}

// Running reports whether a timer is active (running or paused).
func (m *Machine) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target != ""
}

// Paused reports whether the active timer is paused.
func (m *Machine) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target != "" && m.paused
}

// Target returns the active target id, or "" when idle.
func (m *Machine) Target() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target
}

// OnBreak reports whether the active timer is a break countdown.
func (m *Machine) OnBreak() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.target == model.BreakProject
}

// Elapsed returns whole seconds elapsed on the active timer.
func (m *Machine) Elapsed() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == "" {
		return 0
	}
	return m.elapsedLocked()
}

// Remaining returns countdown seconds left, floored at zero for display.
// The second result is false when no countdown is active.
func (m *Machine) Remaining() (int, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.target == "" || !m.countdown {
		return 0, false
	}
	r := m.countdownTotal - m.elapsedLocked()
	if r < 0 {
		r = 0
	}
	return r, true
}

func (m *Machine) elapsedLocked() int {
	if m.paused {
		return m.pausedElapsed
	}
	e := int(m.now().Sub(m.startedAt) / time.Second)
	if e < 0 {
		e = 0
	}
	return e
}

func (m *Machine) saveSnapshotLocked() {
	m.store.Save(store.KeyRecovery, snapshot{
		Target:         m.target,
		StartedAt:      m.startedAt,
		Paused:         m.paused,
		PausedElapsed:  m.pausedElapsed,
		Countdown:      m.countdown,
		CountdownTotal: m.countdownTotal,
		LastSeen:       m.now(),
	})
}

// startTickingLocked installs a fresh tick handle, cancelling any prior one
// so two tickers never race.
func (m *Machine) startTickingLocked() {
	m.stopTickingLocked()
	if !m.autoTick {
		return
	}
	cancel := make(chan struct{})
	m.cancel = cancel
	go m.runTicker(cancel)
}

func (m *Machine) stopTickingLocked() {
	if m.cancel != nil {
		close(m.cancel)
		m.cancel = nil
	}
}

func (m *Machine) runTicker(cancel chan struct{}) {
	t := time.NewTicker(time.Second)
	defer t.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-t.C:
			m.Tick()
		}
	}
}
