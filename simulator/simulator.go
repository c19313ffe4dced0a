// Package simulator runs the real control loop on the host with recorded outputs in
// place of servos, speaking the wire protocol over a net.Pipe
package simulator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/calvinmclean/novahead"
	"github.com/calvinmclean/novahead/firmware/channel"
	"github.com/calvinmclean/novahead/firmware/loop"
	"golang.org/x/sync/errgroup"
)

// Discrete loop iteration period. The device spins much faster, but 1ms is well under
// the jaw quantum so every step still fires on time
const stepSize = time.Millisecond

type Simulator struct {
	conn io.ReadWriteCloser

	// inMu guards inbox, the only state shared between the reader and the loop
	inMu  sync.Mutex
	inbox []byte

	outbox chan []byte

	mu      sync.Mutex
	head    *loop.Head
	outputs map[novahead.Channel]*channel.Recorder

	Verbose bool
}

// New starts a head with cfg and returns the host end of its serial line
func New(cfg loop.Config) (*Simulator, net.Conn, error) {
	a, b := net.Pipe()
	s := &Simulator{
		conn:    a,
		outbox:  make(chan []byte, 64),
		outputs: map[novahead.Channel]*channel.Recorder{},
	}

	outputs := map[novahead.Channel]channel.Output{}
	for _, name := range novahead.Channels() {
		r := &channel.Recorder{}
		s.outputs[name] = r
		outputs[name] = r
	}

	head, err := loop.New(outputs, cfg, s, s)
	if err != nil {
		a.Close()
		b.Close()
		return nil, nil, fmt.Errorf("error creating head: %w", err)
	}
	s.head = head

	return s, b, nil
}

// Run steps the loop until ctx is done or the host closes its end
func (s *Simulator) Run(ctx context.Context) error {
	t := time.NewTicker(stepSize)
	defer t.Stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-ctx.Done()
		return s.conn.Close()
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case now := <-t.C:
				s.mu.Lock()
				s.head.Step(now)
				s.mu.Unlock()
			}
		}
	})
	g.Go(s.reader)
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case p := <-s.outbox:
				if s.Verbose {
					log.Printf("sim->host: %q", p)
				}
				if _, err := s.conn.Write(p); err != nil {
					return fmt.Errorf("writing port: %w", err)
				}
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
		return nil
	}
	return err
}

func (s *Simulator) reader() error {
	buf := make([]byte, 64)
	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			if s.Verbose {
				log.Printf("host->sim: %q", buf[:n])
			}
			s.inMu.Lock()
			s.inbox = append(s.inbox, buf[:n]...)
			s.inMu.Unlock()
		}
		if err != nil {
			return fmt.Errorf("reading port: %w", err)
		}
	}
}

// Buffered implements linereader.Source
func (s *Simulator) Buffered() int {
	s.inMu.Lock()
	defer s.inMu.Unlock()
	return len(s.inbox)
}

// ReadByte implements linereader.Source
func (s *Simulator) ReadByte() (byte, error) {
	s.inMu.Lock()
	defer s.inMu.Unlock()
	if len(s.inbox) == 0 {
		return 0, io.EOF
	}
	b := s.inbox[0]
	s.inbox = s.inbox[1:]
	return b, nil
}

// Write queues device output without ever blocking the loop. Output is dropped if the
// host stops reading
func (s *Simulator) Write(p []byte) (int, error) {
	cp := make([]byte, len(p))
	copy(cp, p)
	select {
	case s.outbox <- cp:
	default:
		log.Printf("sim: dropping %q, host is not reading", p)
	}
	return len(p), nil
}

// Angles returns the last written angle of every channel
func (s *Simulator) Angles() map[novahead.Channel]int {
	s.mu.Lock()
	defer s.mu.Unlock()

	angles := make(map[novahead.Channel]int, len(s.outputs))
	for name := range s.outputs {
		angles[name] = s.head.Channel(name).Angle()
	}
	return angles
}

// Writes returns a copy of every angle written to a channel since startup
func (s *Simulator) Writes(name novahead.Channel) []int {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.outputs[name]
	if !ok {
		return nil
	}
	return append([]int(nil), r.Writes...)
}

// Lines returns how many lines the head acknowledged
func (s *Simulator) Lines() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.head.Lines()
}
