//go:build tinygo

package main

import (
	"time"

	"github.com/calvinmclean/novahead/firmware/device"
	"github.com/calvinmclean/novahead/firmware/loop"
)

func main() {
	cfg := device.DefaultConfig()

	d, err := device.New(cfg)
	if err != nil {
		panic(err)
	}

	head, err := loop.New(d.Outputs(), cfg.Loop, &d, &d)
	if err != nil {
		panic(err)
	}

	d.SignalReady()

	head.Run(time.Now)
}
