// Package commands parses "<channel> <angle>" lines and routes them to the actuators
package commands

import (
	"strings"

	"github.com/calvinmclean/novahead"
)

// Command routes a clamped angle for one channel
type Command struct {
	Channel     novahead.Channel
	Run         func(Controller, int) error
	Description string
}

// Controller is implemented by whatever owns the channels
type Controller interface {
	// SetAngle writes directly to a channel
	SetAngle(novahead.Channel, int) error
	// SetJawTarget only moves the jaw's target. The interpolator does the writing
	SetJawTarget(int)
}

func direct(ch novahead.Channel) func(Controller, int) error {
	return func(c Controller, angle int) error {
		return c.SetAngle(ch, angle)
	}
}

var (
	NeckCommand = &Command{
		Channel:     novahead.ChannelNeck,
		Run:         direct(novahead.ChannelNeck),
		Description: "Turn the head. Written immediately.",
	}
	JawCommand = &Command{
		Channel: novahead.ChannelJaw,
		Run: func(c Controller, angle int) error {
			c.SetJawTarget(angle)
			return nil
		},
		Description: "Set the jaw target. The jaw moves there one degree per quantum.",
	}
	EyeCommand = &Command{
		Channel:     novahead.ChannelEye,
		Run:         direct(novahead.ChannelEye),
		Description: "Move the eyes horizontally. Written immediately.",
	}
	TiltCommand = &Command{
		Channel:     novahead.ChannelZ,
		Run:         direct(novahead.ChannelZ),
		Description: "Tilt the eyes vertically. Written immediately.",
	}
)

var commands = []*Command{
	NeckCommand,
	JawCommand,
	EyeCommand,
	TiltCommand,
}

// Commands returns every routable command
func Commands() []*Command {
	return commands
}

// Usage lists every command as "<name> <angle>: <description>"
func Usage() []string {
	lines := make([]string, 0, len(commands))
	for _, cmd := range commands {
		lines = append(lines, cmd.Channel.String()+" <angle>: "+cmd.Description)
	}
	return lines
}

// Parsed is a line that had a separator. Channel may still be unknown
type Parsed struct {
	Channel novahead.Channel
	Name    string
	Angle   int
}

// Parse splits a line at its first space and clamps the angle. It returns false when
// there is no separator
func Parse(line string) (Parsed, bool) {
	line = strings.TrimSpace(line)

	idx := strings.IndexByte(line, ' ')
	if idx < 0 {
		return Parsed{}, false
	}

	name := line[:idx]
	angle := novahead.Clamp(ParseAngle(line[idx+1:]), novahead.MinAngle, novahead.MaxAngle)

	return Parsed{
		Channel: novahead.ParseChannel(name),
		Name:    name,
		Angle:   angle,
	}, true
}

// ParseAngle is a best-effort integer parse: leading whitespace and an optional sign
// followed by as many digits as are present. Anything without leading digits is 0.
// Magnitudes saturate instead of overflowing
func ParseAngle(s string) int {
	s = strings.TrimLeft(s, " \t")

	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}

	const limit = 1_000_000
	v := 0
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		if v < limit {
			v = v*10 + int(s[i]-'0')
		}
	}

	if neg {
		return -v
	}
	return v
}

// Dispatcher looks up commands by channel
type Dispatcher struct {
	cmdMap map[novahead.Channel]*Command
}

func NewDispatcher() *Dispatcher {
	cmdMap := map[novahead.Channel]*Command{}
	for _, cmd := range commands {
		cmdMap[cmd.Channel] = cmd
	}
	return &Dispatcher{cmdMap: cmdMap}
}

// Dispatch parses a line and runs the matching command. Malformed lines and unknown
// channels are dropped and report false. At most one write or target update happens
func (d *Dispatcher) Dispatch(c Controller, line string) (bool, error) {
	p, ok := Parse(line)
	if !ok {
		return false, nil
	}

	cmd, ok := d.cmdMap[p.Channel]
	if !ok {
		return false, nil
	}

	return true, cmd.Run(c, p.Angle)
}
