package controller

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"
)

const (
	// SerialPortNone runs against the built-in simulator instead of hardware
	SerialPortNone = "None"

	defaultBaudRate   = "9600"
	defaultAckTimeout = time.Second
)

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// Config selects the serial line to the head
type Config struct {
	SerialPort string
	BaudRate   string
	AckTimeout time.Duration
}

// ConfigFromEnv reads SERIAL_PORT, BAUD_RATE and ACK_TIMEOUT
func ConfigFromEnv() (Config, error) {
	cfg := Config{
		SerialPort: os.Getenv("SERIAL_PORT"),
		BaudRate:   os.Getenv("BAUD_RATE"),
		AckTimeout: defaultAckTimeout,
	}
	if cfg.BaudRate == "" {
		cfg.BaudRate = defaultBaudRate
	}

	if v := os.Getenv("ACK_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid ACK_TIMEOUT: %w", err)
		}
		cfg.AckTimeout = d
	}

	return cfg, nil
}

// NewFromEnv opens the serial port described by the environment. If no port is set,
// the first USB serial port is used
func NewFromEnv() (*Controller, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return Open(cfg)
}

// Open opens cfg.SerialPort
func Open(cfg Config) (*Controller, error) {
	baudRate, err := strconv.Atoi(cfg.BaudRate)
	if err != nil {
		return nil, fmt.Errorf("invalid baud rate %q: %w", cfg.BaudRate, err)
	}

	if cfg.SerialPort == "" {
		ports, err := GetSerialPorts()
		if err != nil {
			return nil, err
		}
		cfg.SerialPort = ports[0]
	}

	port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", cfg.SerialPort, err)
	}

	// opening the port resets most boards, so give the firmware time to start
	time.Sleep(2 * time.Second)

	err = port.ResetInputBuffer()
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("error resetting input buffer: %w", err)
	}

	return New(port, cfg), nil
}

// GetSerialPorts lists USB serial ports
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing ports: %w", err)
	}

	var result []string
	for _, p := range ports {
		if p.IsUSB {
			result = append(result, p.Name)
		}
	}

	if len(result) == 0 {
		return nil, ErrNoUSBSerial
	}

	return result, nil
}
