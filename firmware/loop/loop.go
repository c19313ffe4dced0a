// Package loop drives the head: every iteration advances the jaw and dispatches at most
// one received command, and nothing in an iteration ever waits
package loop

import (
	"errors"
	"io"
	"time"

	"github.com/calvinmclean/novahead"
	"github.com/calvinmclean/novahead/firmware/channel"
	"github.com/calvinmclean/novahead/firmware/commands"
	"github.com/calvinmclean/novahead/firmware/linereader"
	"github.com/calvinmclean/novahead/firmware/motion"
)

var ack = []byte(novahead.AckToken + string(novahead.LineTerminator))

// Config has the fixed startup values
type Config struct {
	StartAngles map[novahead.Channel]int
	// Ranges optionally narrows a channel below the global bounds
	Ranges     map[novahead.Channel][2]int
	JawQuantum time.Duration
}

// DefaultConfig matches the head's mechanical rest pose
func DefaultConfig() Config {
	return Config{
		StartAngles: map[novahead.Channel]int{
			novahead.ChannelNeck: 80,
			novahead.ChannelJaw:  30,
			novahead.ChannelEye:  80,
			novahead.ChannelZ:    130,
		},
		JawQuantum: motion.DefaultQuantum,
	}
}

// Head owns every channel, the jaw interpolator and the input buffer. Only the loop
// touches them
type Head struct {
	channels   map[novahead.Channel]*channel.Channel
	jaw        *motion.Interpolator
	reader     linereader.Reader
	dispatcher *commands.Dispatcher

	in  linereader.Source
	out io.Writer

	lines uint64
}

var _ commands.Controller = &Head{}

// New binds each output to its channel and drives it to its startup angle
func New(outputs map[novahead.Channel]channel.Output, cfg Config, in linereader.Source, out io.Writer) (*Head, error) {
	h := &Head{
		channels:   map[novahead.Channel]*channel.Channel{},
		dispatcher: commands.NewDispatcher(),
		in:         in,
		out:        out,
	}

	for _, name := range novahead.Channels() {
		ch := channel.New(name, outputs[name])
		if r, ok := cfg.Ranges[name]; ok {
			ch.WithRange(r[0], r[1])
		}

		err := ch.Init(cfg.StartAngles[name])
		if err != nil {
			return nil, errors.New("error initializing channel: " + err.Error())
		}
		h.channels[name] = ch
	}

	h.jaw = motion.New(h.channels[novahead.ChannelJaw], cfg.JawQuantum)

	return h, nil
}

// Step runs one iteration: motion first so a busy command stream never delays an
// eligible jaw step, then at most one completed command
func (h *Head) Step(now time.Time) {
	_, err := h.jaw.Tick(now)
	if err != nil {
		println("error:", err.Error())
	}

	if !h.reader.Poll(h.in) {
		return
	}

	line, _ := h.reader.Take()
	h.lines++

	_, err = h.dispatcher.Dispatch(h, line)
	if err != nil {
		println("error:", err.Error())
	}

	_, err = h.out.Write(ack)
	if err != nil {
		println("error writing ack:", err.Error())
	}
}

// Run loops forever using now as the clock
func (h *Head) Run(now func() time.Time) {
	for {
		h.Step(now())
	}
}

// SetAngle implements commands.Controller. The jaw is only ever moved by its
// interpolator, so a direct jaw write becomes a target update
func (h *Head) SetAngle(name novahead.Channel, angle int) error {
	if name == novahead.ChannelJaw {
		h.SetJawTarget(angle)
		return nil
	}

	ch, ok := h.channels[name]
	if !ok {
		return errors.New("unknown channel: " + name.String())
	}
	return ch.Set(angle)
}

// SetJawTarget implements commands.Controller
func (h *Head) SetJawTarget(angle int) {
	h.jaw.SetTarget(angle)
}

// Channel returns the named channel or nil
func (h *Head) Channel(name novahead.Channel) *channel.Channel {
	return h.channels[name]
}

func (h *Head) Jaw() *motion.Interpolator {
	return h.jaw
}

// Lines returns how many command lines were received and acknowledged
func (h *Head) Lines() uint64 {
	return h.lines
}
