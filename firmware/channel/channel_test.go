package channel

import (
	"errors"
	"testing"

	"github.com/calvinmclean/novahead"
	"github.com/google/go-cmp/cmp"
)

type failingOutput struct{}

func (failingOutput) SetAngle(int) error {
	return errors.New("pwm not configured")
}

func TestSetClamps(t *testing.T) {
	tests := []struct {
		name     string
		in       []int
		expected []int
	}{
		{"InRange", []int{0, 90, 180}, []int{0, 90, 180}},
		{"Negative", []int{-1, -500}, []int{0, 0}},
		{"TooLarge", []int{181, 999}, []int{180, 180}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &Recorder{}
			c := New(novahead.ChannelEye, rec)
			for _, a := range tt.in {
				if err := c.Set(a); err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
			}
			if diff := cmp.Diff(tt.expected, rec.Writes); diff != "" {
				t.Errorf("unexpected writes: got(-)/want(+):\n%s", diff)
			}
			if c.Angle() != tt.expected[len(tt.expected)-1] {
				t.Errorf("Angle() = %d, want %d", c.Angle(), tt.expected[len(tt.expected)-1])
			}
		})
	}
}

func TestWithRange(t *testing.T) {
	rec := &Recorder{}
	c := New(novahead.ChannelNeck, rec).WithRange(110, 30)

	min, max := c.Range()
	if min != 30 || max != 110 {
		t.Fatalf("Range() = %d, %d, want 30, 110", min, max)
	}

	_ = c.Set(10)
	_ = c.Set(150)
	if diff := cmp.Diff([]int{30, 110}, rec.Writes); diff != "" {
		t.Errorf("unexpected writes: got(-)/want(+):\n%s", diff)
	}

	c = New(novahead.ChannelNeck, rec).WithRange(-20, 400)
	min, max = c.Range()
	if min != novahead.MinAngle || max != novahead.MaxAngle {
		t.Errorf("range should not exceed global bounds, got %d, %d", min, max)
	}
}

func TestInit(t *testing.T) {
	rec := &Recorder{}
	c := New(novahead.ChannelJaw, rec)
	if err := c.Init(30); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if diff := cmp.Diff([]int{30}, rec.Writes); diff != "" {
		t.Errorf("unexpected writes: got(-)/want(+):\n%s", diff)
	}

	err := New(novahead.ChannelJaw, nil).Init(30)
	if err == nil {
		t.Error("expected error for unbound channel")
	}
}

func TestSetError(t *testing.T) {
	c := New(novahead.ChannelZ, failingOutput{})
	err := c.Set(45)
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "error setting z angle: pwm not configured" {
		t.Errorf("unexpected error: %v", err)
	}
	if c.Angle() != 0 {
		t.Errorf("angle should not change on failed write, got %d", c.Angle())
	}
}
