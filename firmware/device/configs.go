//go:build tinygo

package device

import (
	"machine"
	"time"

	"github.com/calvinmclean/novahead"
	"github.com/calvinmclean/novahead/firmware/loop"

	"tinygo.org/x/drivers/servo"
)

// ServoConfig binds one channel to a PWM pin
type ServoConfig struct {
	Channel novahead.Channel
	Pin     machine.Pin
	PWM     servo.PWM
}

// Config has device-level values for the head's outputs
type Config struct {
	Servos []ServoConfig
	LED    machine.Pin
	// ReadyPulse is how long the LED stays on once startup finishes
	ReadyPulse time.Duration
	Loop       loop.Config
}

// DefaultConfig is the Pico wiring. Each servo gets its own PWM slice
func DefaultConfig() Config {
	return Config{
		Servos: []ServoConfig{
			{Channel: novahead.ChannelNeck, Pin: machine.GP2, PWM: machine.PWM1},
			{Channel: novahead.ChannelJaw, Pin: machine.GP4, PWM: machine.PWM2},
			{Channel: novahead.ChannelEye, Pin: machine.GP6, PWM: machine.PWM3},
			{Channel: novahead.ChannelZ, Pin: machine.GP8, PWM: machine.PWM4},
		},
		LED:        machine.LED,
		ReadyPulse: 200 * time.Millisecond,
		Loop:       loop.DefaultConfig(),
	}
}
