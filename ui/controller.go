package ui

import (
	"fmt"
	"io"

	"github.com/calvinmclean/novahead"
)

// controllerWrapper turns UI actions into command lines for the controller
type controllerWrapper struct {
	writer io.Writer
}

func (c *controllerWrapper) Set(ch novahead.Channel, value float64) {
	fmt.Fprint(c.writer, novahead.FormatCommand(ch, int(value)))
}

// Pose sends every channel in a fixed order so the head settles predictably
func (c *controllerWrapper) Pose(angles map[novahead.Channel]int) {
	for _, ch := range novahead.Channels() {
		angle, ok := angles[ch]
		if !ok {
			continue
		}
		fmt.Fprint(c.writer, novahead.FormatCommand(ch, angle))
	}
}
