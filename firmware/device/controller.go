//go:build tinygo

package device

import (
	"errors"
	"machine"
	"time"

	"github.com/calvinmclean/novahead"
	"github.com/calvinmclean/novahead/firmware/channel"

	"tinygo.org/x/drivers/servo"
)

// Device owns the head's servos, its status LED and the serial line to the host
type Device struct {
	servos map[novahead.Channel]servo.Servo
	pins   map[novahead.Channel]machine.Pin
	led    machine.Pin
	cfg    Config
}

// New configures every servo but does not move any of them
func New(cfg Config) (Device, error) {
	servos := map[novahead.Channel]servo.Servo{}
	pins := map[novahead.Channel]machine.Pin{}
	for _, sc := range cfg.Servos {
		s, err := servo.New(sc.PWM, sc.Pin)
		if err != nil {
			return Device{}, errors.New("error creating " + sc.Channel.String() + " servo: " + err.Error())
		}
		servos[sc.Channel] = s
		pins[sc.Channel] = sc.Pin
	}

	cfg.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})

	return Device{
		servos: servos,
		pins:   pins,
		led:    cfg.LED,
		cfg:    cfg,
	}, nil
}

// Outputs returns each servo as a channel.Output
func (d *Device) Outputs() map[novahead.Channel]channel.Output {
	outputs := make(map[novahead.Channel]channel.Output, len(d.servos))
	for name, s := range d.servos {
		outputs[name] = s
	}
	return outputs
}

// Pin returns the pin a channel is wired to
func (d *Device) Pin(name novahead.Channel) machine.Pin {
	return d.pins[name]
}

// SignalReady pulses the LED once. It only runs at startup, before the loop
func (d *Device) SignalReady() {
	d.led.High()
	time.Sleep(d.cfg.ReadyPulse)
	d.led.Low()
}

func (d *Device) Buffered() int {
	return machine.Serial.Buffered()
}

func (d *Device) ReadByte() (byte, error) {
	return machine.Serial.ReadByte()
}

func (d *Device) Write(p []byte) (int, error) {
	return machine.Serial.Write(p)
}
