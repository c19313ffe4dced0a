package main_test

import (
	"os"
	"strings"
	"testing"
	"time"

	"go.bug.st/serial"
)

// These run against a flashed board, for example NOVAHEAD_PORT=/dev/cu.usbmodem2101
func openPort(t *testing.T) serial.Port {
	t.Helper()

	name := os.Getenv("NOVAHEAD_PORT")
	if name == "" {
		t.Skip("NOVAHEAD_PORT is not set")
	}

	port, err := serial.Open(name, &serial.Mode{BaudRate: 9600})
	if err != nil {
		t.Fatalf("unexpected error opening serial connection: %v", err)
	}
	t.Cleanup(func() { port.Close() })

	// opening the port resets the board
	time.Sleep(2 * time.Second)
	if err := port.ResetInputBuffer(); err != nil {
		t.Fatalf("unexpected error resetting input: %v", err)
	}

	return port
}

func sendSerial(t *testing.T, port serial.Port, in string, expectedLen int) string {
	t.Helper()

	_, err := port.Write([]byte(in))
	if err != nil {
		t.Errorf("unexpected error writing serial: %v", err)
		return ""
	}

	buf := make([]byte, 64)
	var out []byte
	port.SetReadTimeout(100 * time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(out) < expectedLen && time.Now().Before(deadline) {
		n, err := port.Read(buf)
		if err != nil {
			t.Errorf("unexpected error reading serial: %v", err)
			return ""
		}
		out = append(out, buf[:n]...)
	}
	return string(out)
}

func TestSerial(t *testing.T) {
	port := openPort(t)

	tests := []struct {
		name     string
		in       string
		expected string
	}{
		{"SingleCommand", "neck 90\n", "K\n"},
		{"JawTarget", "jaw 60\n", "K\n"},
		{"ClampedAngle", "eye 999\n", "K\n"},
		{"UnknownChannel", "foot 50\n", "K\n"},
		{"Malformed", "neckonly\n", "K\n"},
		{"Backlog", "neck 80\neye 80\nz 130\njaw 30\n", "K\nK\nK\nK\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := sendSerial(t, port, tt.in, len(tt.expected))
			clean := strings.ReplaceAll(strings.Trim(out, "\x00"), "\r\n", "\n")
			if clean != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, clean)
			}
		})
	}
}
