package novahead

import (
	"strconv"
	"strings"
)

const (
	// MinAngle and MaxAngle are the hard safety bounds applied to every angle before it
	// reaches an actuator
	MinAngle = 0
	MaxAngle = 180

	// AckToken is written back to the host once for every received command line
	AckToken = "K"

	LineTerminator = '\n'
)

// Channel is one independently controllable actuator role
type Channel int

const (
	ChannelUnknown Channel = iota
	ChannelNeck
	ChannelJaw
	ChannelEye
	// ChannelZ tilts the eyes vertically
	ChannelZ
)

// Channels returns all known channels in a stable order
func Channels() []Channel {
	return []Channel{ChannelNeck, ChannelJaw, ChannelEye, ChannelZ}
}

func (c Channel) String() string {
	switch c {
	case ChannelNeck:
		return "neck"
	case ChannelJaw:
		return "jaw"
	case ChannelEye:
		return "eye"
	case ChannelZ:
		return "z"
	default:
		fallthrough
	case ChannelUnknown:
		return "unknown"
	}
}

// ParseChannel matches a channel name case-insensitively. ChannelUnknown is returned
// for anything that is not one of the fixed names
func ParseChannel(name string) Channel {
	for _, c := range Channels() {
		if strings.EqualFold(name, c.String()) {
			return c
		}
	}
	return ChannelUnknown
}

// Clamp saturates angle to [lo, hi]
func Clamp(angle, lo, hi int) int {
	if angle < lo {
		return lo
	}
	if angle > hi {
		return hi
	}
	return angle
}

// FormatCommand builds the wire line for a command, including the terminator
func FormatCommand(c Channel, angle int) string {
	return c.String() + " " + strconv.Itoa(angle) + string(LineTerminator)
}
