package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/calvinmclean/novahead/controller"
	"github.com/calvinmclean/novahead/firmware/commands"
	"github.com/calvinmclean/novahead/firmware/loop"
	"github.com/calvinmclean/novahead/simulator"
	"github.com/calvinmclean/novahead/ui"
)

func main() {
	var port, baudRate string
	var ackTimeout time.Duration
	var simulate, verbose, listCommands bool
	flag.StringVar(&port, "port", "", "Serial port of the head. Defaults to $SERIAL_PORT or the first USB serial port")
	flag.StringVar(&baudRate, "baud", "", "Baud rate. Defaults to $BAUD_RATE or 9600")
	flag.DurationVar(&ackTimeout, "ack-timeout", 0, "How long to wait for each ack. Defaults to $ACK_TIMEOUT or 1s")
	flag.BoolVar(&simulate, "simulate", false, "Run against a simulated head instead of hardware")
	flag.BoolVar(&verbose, "v", false, "Log simulator traffic")
	flag.BoolVar(&listCommands, "commands", false, "List the commands the head understands and exit")
	flag.Parse()

	if listCommands {
		for _, usage := range commands.Usage() {
			fmt.Println(usage)
		}
		return
	}

	cfg, err := controller.ConfigFromEnv()
	if err != nil {
		panic(err)
	}
	if port != "" {
		cfg.SerialPort = port
	}
	if baudRate != "" {
		cfg.BaudRate = baudRate
	}
	if ackTimeout > 0 {
		cfg.AckTimeout = ackTimeout
	}
	if simulate {
		cfg.SerialPort = controller.SerialPortNone
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if os.Getenv("ENABLE_UI") == "true" {
		runUI(ctx, cfg, verbose)
		return
	}

	runCLI(ctx, cfg, verbose)
}

// connect opens the configured port or starts a simulated head
func connect(ctx context.Context, cfg controller.Config, verbose bool) (*controller.Controller, error) {
	if cfg.SerialPort != controller.SerialPortNone {
		return controller.Open(cfg)
	}

	sim, conn, err := simulator.New(loop.DefaultConfig())
	if err != nil {
		return nil, fmt.Errorf("error starting simulator: %w", err)
	}
	sim.Verbose = verbose

	go func() {
		err := sim.Run(ctx)
		if err != nil {
			log.Printf("simulator stopped: %v", err)
		}
	}()

	return controller.New(conn, cfg), nil
}

func runUI(ctx context.Context, cfg controller.Config, verbose bool) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	headUI := ui.NewHeadUI()

	var c *controller.Controller
	headUI.Run(ctx, cfg, func(cfg controller.Config) (io.Writer, error) {
		var err error
		c, err = connect(ctx, cfg, verbose)
		if err != nil {
			return nil, err
		}

		r, w := io.Pipe()
		go func() {
			defer r.Close()
			err := c.Run(ctx, r, io.MultiWriter(os.Stdout, headUI))
			if err != nil {
				log.Printf("controller stopped: %v", err)
			}
		}()

		return w, nil
	})

	cancel()
	if c != nil {
		c.Close()
	}
}

func runCLI(ctx context.Context, cfg controller.Config, verbose bool) {
	c, err := connect(ctx, cfg, verbose)
	if err != nil {
		panic(err)
	}
	defer c.Close()

	err = c.Run(ctx, os.Stdin, os.Stdout)
	if err != nil {
		panic(err)
	}
}
