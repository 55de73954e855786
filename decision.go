package main

import (
	"time"

	"github.com/rafaelrc7/wayland-pipewire-idle-inhibit/utilities"
)

// Transition is the outcome of feeding one input into the decision engine.
// Changed is true only when the combined inhibit decision flipped; only then
// do backends get applied.
type Transition struct {
	Changed  bool
	Combined bool
	At       time.Time
}

// TimerEvent is delivered on TimerC when an armed debounce timer fires. The
// generation lets a fire that raced with a cancellation be detected and
// dropped instead of re-asserting a stale inhibition.
type TimerEvent struct {
	Gen uint64
}

// InhibitState is the debounce / decision engine. Playback edges move it
// through Idle -> PendingInhibit -> Inhibited; the manual override is an
// independent boolean OR-ed into the combined decision. All methods must be
// called from the owning event loop.
type InhibitState struct {
	minDuration time.Duration

	phase        Phase
	automatic    bool
	manual       bool
	combined     bool
	pendingSince time.Time

	timer    *time.Timer
	timerGen uint64
	fireC    chan TimerEvent
	fire     func(TimerEvent)

	now func() time.Time
}

func NewInhibitState(minDuration time.Duration) *InhibitState {
	fireC := make(chan TimerEvent, 1)
	return &InhibitState{
		minDuration: minDuration,
		phase:       PhaseIdle,
		fireC:       fireC,
		fire:        utilities.CreateNonBlockingSender(fireC),
		now:         time.Now,
	}
}

// TimerC delivers debounce timer expiries to the event loop.
func (s *InhibitState) TimerC() <-chan TimerEvent {
	return s.fireC
}

func (s *InhibitState) Automatic() bool { return s.automatic }
func (s *InhibitState) Manual() bool    { return s.manual }
func (s *InhibitState) Combined() bool  { return s.combined }

// PendingSince reports when qualifying playback started while the engine is
// waiting out the minimum duration.
func (s *InhibitState) PendingSince() (time.Time, bool) {
	return s.pendingSince, s.phase == PhasePending
}

// SetPlaying feeds a playback signal edge into the state machine.
func (s *InhibitState) SetPlaying(playing bool) Transition {
	if playing {
		if s.phase != PhaseIdle {
			return s.recompute()
		}
		if s.minDuration <= 0 {
			s.phase = PhaseInhibited
			s.automatic = true
			lg.Debug("playback started, inhibiting immediately")
			return s.recompute()
		}
		s.phase = PhasePending
		s.pendingSince = s.now()
		s.arm()
		lg.Debug("playback started, debouncing", "duration", s.minDuration.String())
		return s.recompute()
	}

	switch s.phase {
	case PhasePending:
		s.cancel()
		s.phase = PhaseIdle
		s.pendingSince = time.Time{}
		lg.Debug("playback stopped before minimum duration")
	case PhaseInhibited:
		s.phase = PhaseIdle
		s.automatic = false
		lg.Debug("playback stopped, releasing automatic inhibition")
	}
	return s.recompute()
}

// TimerFired completes a pending debounce. Events from a cancelled
// generation are no-ops.
func (s *InhibitState) TimerFired(ev TimerEvent) Transition {
	if ev.Gen != s.timerGen || s.phase != PhasePending {
		lg.Debug("stale debounce timer fire ignored", "gen", ev.Gen)
		return s.recompute()
	}
	s.phase = PhaseInhibited
	s.automatic = true
	s.pendingSince = time.Time{}
	lg.Debug("minimum duration elapsed, inhibiting")
	return s.recompute()
}

// SetManual sets the manual override, independent of the playback chain.
func (s *InhibitState) SetManual(manual bool) Transition {
	s.manual = manual
	return s.recompute()
}

// ToggleManual flips the manual override.
func (s *InhibitState) ToggleManual() Transition {
	s.manual = !s.manual
	return s.recompute()
}

func (s *InhibitState) arm() {
	s.timerGen++
	gen := s.timerGen
	s.timer = time.AfterFunc(s.minDuration, func() {
		s.fire(TimerEvent{Gen: gen})
	})
}

func (s *InhibitState) cancel() {
	// Bumping the generation makes any in-flight fire detectably stale.
	s.timerGen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

func (s *InhibitState) recompute() Transition {
	combined := s.automatic || s.manual
	if combined == s.combined {
		return Transition{Combined: combined}
	}
	s.combined = combined
	return Transition{Changed: true, Combined: combined, At: s.now()}
}
