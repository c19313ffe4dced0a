//go:build tinygo

// Calibrate identifies which physical output drives which part of the head. It sweeps
// each output in turn and asks the operator to type what moved. It blocks on the
// operator and must never be flashed alongside the control loop
package main

import (
	"strconv"
	"time"

	"github.com/calvinmclean/novahead/firmware/channel"
	"github.com/calvinmclean/novahead/firmware/commands"
	"github.com/calvinmclean/novahead/firmware/device"
	"github.com/calvinmclean/novahead/firmware/linereader"
)

const (
	sweepLow    = 60
	sweepHigh   = 120
	sweepRest   = 90
	sweepRounds = 3
	sweepDelay  = 400 * time.Millisecond
	pollDelay   = 10 * time.Millisecond
)

func main() {
	// give the USB serial time to come up so the first prompt is not lost
	time.Sleep(2 * time.Second)

	cfg := device.DefaultConfig()
	d, err := device.New(cfg)
	if err != nil {
		panic(err)
	}
	outputs := d.Outputs()

	var reader linereader.Reader
	labels := make([]string, len(cfg.Servos))

	for i, sc := range cfg.Servos {
		out := outputs[sc.Channel]
		pin := "GP" + strconv.Itoa(int(d.Pin(sc.Channel)))

		println("[" + strconv.Itoa(i+1) + "/" + strconv.Itoa(len(cfg.Servos)) + "] sweeping " + pin + ", watch the head")
		for range sweepRounds {
			for _, angle := range []int{sweepLow, sweepHigh} {
				setAngle(out, angle)
				time.Sleep(sweepDelay)
			}
		}
		setAngle(out, sweepRest)

		println("what moved?")
		for _, usage := range commands.Usage() {
			println("  " + usage)
		}
		for !reader.Poll(&d) {
			time.Sleep(pollDelay)
		}
		labels[i], _ = reader.Take()
		println("ok:", labels[i])
	}

	println("mapping:")
	for i, sc := range cfg.Servos {
		println("  GP"+strconv.Itoa(int(d.Pin(sc.Channel))), "->", labels[i], "(configured as "+sc.Channel.String()+")")
	}
}

func setAngle(out channel.Output, angle int) {
	err := out.SetAngle(angle)
	if err != nil {
		println("error setting servo angle:", err.Error())
	}
}
