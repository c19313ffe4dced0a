// Package motion animates a channel toward a target one degree at a time so it never
// snaps and never blocks the loop driving it
package motion

import (
	"time"

	"github.com/calvinmclean/novahead/firmware/channel"
)

// DefaultQuantum is the time between single-degree steps
const DefaultQuantum = 6 * time.Millisecond

// State is Idle when the channel is at its target and Converging otherwise
type State int

const (
	StateIdle State = iota
	StateConverging
)

func (s State) String() string {
	switch s {
	case StateConverging:
		return "Converging"
	default:
		fallthrough
	case StateIdle:
		return "Idle"
	}
}

// Interpolator owns the writes to one channel
type Interpolator struct {
	ch      *channel.Channel
	quantum time.Duration

	current  int
	target   int
	lastStep time.Time
}

// New creates an Interpolator resting at the channel's current angle. A zero quantum
// uses DefaultQuantum
func New(ch *channel.Channel, quantum time.Duration) *Interpolator {
	if quantum <= 0 {
		quantum = DefaultQuantum
	}
	return &Interpolator{
		ch:      ch,
		quantum: quantum,
		current: ch.Angle(),
		target:  ch.Angle(),
	}
}

// SetTarget redirects motion. It never writes to the channel
func (i *Interpolator) SetTarget(angle int) {
	i.target = i.ch.Clamp(angle)
}

// Tick moves one degree toward the target if at least one quantum passed since the
// last eligible tick. It reports whether a write happened
func (i *Interpolator) Tick(now time.Time) (bool, error) {
	if now.Sub(i.lastStep) < i.quantum {
		return false, nil
	}
	i.lastStep = now

	if i.current == i.target {
		return false, nil
	}

	next := i.current + 1
	if i.target < i.current {
		next = i.current - 1
	}

	if err := i.ch.Set(next); err != nil {
		return false, err
	}
	i.current = next

	return true, nil
}

func (i *Interpolator) State() State {
	if i.current == i.target {
		return StateIdle
	}
	return StateConverging
}

func (i *Interpolator) Current() int {
	return i.current
}

func (i *Interpolator) Target() int {
	return i.target
}

func (i *Interpolator) Quantum() time.Duration {
	return i.quantum
}
