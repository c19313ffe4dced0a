package motion

import (
	"testing"
	"time"

	"github.com/calvinmclean/novahead"
	"github.com/calvinmclean/novahead/firmware/channel"
	"github.com/google/go-cmp/cmp"
)

func newJaw(t *testing.T, start int) (*Interpolator, *channel.Recorder) {
	t.Helper()
	rec := &channel.Recorder{}
	ch := channel.New(novahead.ChannelJaw, rec)
	if err := ch.Init(start); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec.Reset()
	return New(ch, 6*time.Millisecond), rec
}

func tickN(t *testing.T, i *Interpolator, start time.Time, n int) time.Time {
	t.Helper()
	now := start
	for range n {
		now = now.Add(i.Quantum())
		if _, err := i.Tick(now); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	return now
}

func TestConverges(t *testing.T) {
	tests := []struct {
		name     string
		start    int
		target   int
		expected []int
	}{
		{"Up", 30, 34, []int{31, 32, 33, 34}},
		{"Down", 30, 27, []int{29, 28, 27}},
		{"AlreadyThere", 30, 30, nil},
		{"Clamped", 178, 500, []int{179, 180}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jaw, rec := newJaw(t, tt.start)
			jaw.SetTarget(tt.target)

			// extra ticks must not produce extra writes
			tickN(t, jaw, time.Unix(0, 0), len(tt.expected)+5)

			if diff := cmp.Diff(tt.expected, rec.Writes); diff != "" {
				t.Errorf("unexpected writes: got(-)/want(+):\n%s", diff)
			}
			if jaw.State() != StateIdle {
				t.Errorf("expected Idle, got %s", jaw.State())
			}
		})
	}
}

func TestTickRespectsQuantum(t *testing.T) {
	jaw, rec := newJaw(t, 30)
	jaw.SetTarget(40)

	start := time.Unix(100, 0)
	moved, _ := jaw.Tick(start)
	if !moved {
		t.Fatal("first tick should move")
	}

	for _, d := range []time.Duration{time.Millisecond, 3 * time.Millisecond, 5 * time.Millisecond} {
		moved, _ := jaw.Tick(start.Add(d))
		if moved {
			t.Errorf("tick after %s should not move", d)
		}
	}

	moved, _ = jaw.Tick(start.Add(6 * time.Millisecond))
	if !moved {
		t.Error("tick after a full quantum should move")
	}

	if diff := cmp.Diff([]int{31, 32}, rec.Writes); diff != "" {
		t.Errorf("unexpected writes: got(-)/want(+):\n%s", diff)
	}
}

func TestRedirectMidMotion(t *testing.T) {
	jaw, rec := newJaw(t, 30)
	jaw.SetTarget(60)
	now := tickN(t, jaw, time.Unix(0, 0), 5)

	if jaw.State() != StateConverging {
		t.Fatalf("expected Converging, got %s", jaw.State())
	}

	jaw.SetTarget(32)
	now = tickN(t, jaw, now, 1)

	if last, _ := rec.Last(); last != 34 {
		t.Errorf("next tick should head back toward the new target, got %d", last)
	}

	tickN(t, jaw, now, 10)
	expected := []int{31, 32, 33, 34, 35, 34, 33, 32}
	if diff := cmp.Diff(expected, rec.Writes); diff != "" {
		t.Errorf("unexpected writes: got(-)/want(+):\n%s", diff)
	}
}

func TestMonotonicSteps(t *testing.T) {
	jaw, rec := newJaw(t, 0)
	jaw.SetTarget(180)
	tickN(t, jaw, time.Unix(0, 0), 200)

	if len(rec.Writes) != 180 {
		t.Fatalf("expected 180 writes, got %d", len(rec.Writes))
	}
	prev := 0
	for _, w := range rec.Writes {
		if w-prev != 1 {
			t.Fatalf("step from %d to %d is not exactly one degree", prev, w)
		}
		prev = w
	}
}

func TestSetTargetDoesNotWrite(t *testing.T) {
	jaw, rec := newJaw(t, 30)
	jaw.SetTarget(90)
	jaw.SetTarget(10)
	if len(rec.Writes) != 0 {
		t.Errorf("SetTarget should not write, got %v", rec.Writes)
	}
	if jaw.Target() != 10 || jaw.Current() != 30 {
		t.Errorf("unexpected state current=%d target=%d", jaw.Current(), jaw.Target())
	}
}

func TestDefaultQuantum(t *testing.T) {
	ch := channel.New(novahead.ChannelJaw, &channel.Recorder{})
	jaw := New(ch, 0)
	if jaw.Quantum() != DefaultQuantum {
		t.Errorf("Quantum() = %s, want %s", jaw.Quantum(), DefaultQuantum)
	}
}
