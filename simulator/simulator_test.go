package simulator

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/calvinmclean/novahead"
	"github.com/calvinmclean/novahead/firmware/loop"
)

func startSimulator(t *testing.T) (*Simulator, net.Conn, *bufio.Reader) {
	t.Helper()

	sim, conn, err := New(loop.DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- sim.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		conn.Close()
		if err := <-done; err != nil {
			t.Errorf("unexpected error from Run: %v", err)
		}
	})

	return sim, conn, bufio.NewReader(conn)
}

func sendLine(t *testing.T, conn net.Conn, r *bufio.Reader, line string) string {
	t.Helper()

	_ = conn.SetDeadline(time.Now().Add(time.Second))
	if _, err := conn.Write([]byte(line + "\n")); err != nil {
		t.Fatalf("unexpected error writing: %v", err)
	}
	ack, err := r.ReadString('\n')
	if err != nil {
		t.Fatalf("unexpected error reading ack: %v", err)
	}
	return ack
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestAcks(t *testing.T) {
	sim, conn, r := startSimulator(t)

	for _, line := range []string{"neck 90", "foot 50", "neckonly", ""} {
		ack := sendLine(t, conn, r, line)
		if ack != "K\n" {
			t.Errorf("line %q: expected ack, got %q", line, ack)
		}
	}

	if sim.Lines() != 4 {
		t.Errorf("expected 4 lines, got %d", sim.Lines())
	}
}

func TestDirectWrite(t *testing.T) {
	sim, conn, r := startSimulator(t)

	sendLine(t, conn, r, "eye 999")

	writes := sim.Writes(novahead.ChannelEye)
	// startup write plus the clamped command
	if len(writes) != 2 || writes[1] != 180 {
		t.Errorf("unexpected eye writes: %v", writes)
	}
}

func TestJawAnimates(t *testing.T) {
	sim, conn, r := startSimulator(t)
	start := sim.Angles()[novahead.ChannelJaw]

	sendLine(t, conn, r, "jaw 60")

	waitFor(t, func() bool {
		return sim.Angles()[novahead.ChannelJaw] == 60
	})

	writes := sim.Writes(novahead.ChannelJaw)[1:]
	if len(writes) != 60-start {
		t.Fatalf("expected %d steps, got %d: %v", 60-start, len(writes), writes)
	}
	for i, w := range writes {
		if w != start+i+1 {
			t.Fatalf("step %d = %d, want %d", i, w, start+i+1)
		}
	}
}
