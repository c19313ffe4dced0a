// Package channel wraps a physical actuator output with a safety range so nothing
// outside that range is ever written to it
package channel

import (
	"errors"

	"github.com/calvinmclean/novahead"
)

// Output is a physical actuator that can be driven to an angle in degrees. It is
// satisfied by tinygo.org/x/drivers/servo.Servo
type Output interface {
	SetAngle(angle int) error
}

// Channel is one actuator role bound to its Output
type Channel struct {
	name novahead.Channel
	out  Output

	min, max int
	angle    int
}

// New creates a Channel with the default [novahead.MinAngle, novahead.MaxAngle] range. It
// does not write anything until Init is called
func New(name novahead.Channel, out Output) *Channel {
	return &Channel{
		name: name,
		out:  out,
		min:  novahead.MinAngle,
		max:  novahead.MaxAngle,
	}
}

// WithRange narrows the valid range. The range can never be widened past the global bounds
func (c *Channel) WithRange(min, max int) *Channel {
	if min > max {
		min, max = max, min
	}
	c.min = novahead.Clamp(min, novahead.MinAngle, novahead.MaxAngle)
	c.max = novahead.Clamp(max, novahead.MinAngle, novahead.MaxAngle)
	return c
}

// Init drives the channel to its startup angle
func (c *Channel) Init(start int) error {
	if c.out == nil {
		return errors.New("channel " + c.name.String() + " has no output")
	}
	return c.Set(start)
}

// Set clamps angle to the valid range and writes it to the output
func (c *Channel) Set(angle int) error {
	angle = c.Clamp(angle)
	err := c.out.SetAngle(angle)
	if err != nil {
		return errors.New("error setting " + c.name.String() + " angle: " + err.Error())
	}
	c.angle = angle
	return nil
}

// Clamp saturates angle to this channel's valid range
func (c *Channel) Clamp(angle int) int {
	return novahead.Clamp(angle, c.min, c.max)
}

// Angle returns the last angle written
func (c *Channel) Angle() int {
	return c.angle
}

// Range returns the valid range
func (c *Channel) Range() (int, int) {
	return c.min, c.max
}
