// Package controller is the host end of the serial link. It queues command lines by
// priority and sends them one at a time, waiting for the head's ack before the next
package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/calvinmclean/novahead"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"
)

var (
	ErrBadAck     = errors.New("bad ack")
	ErrAckTimeout = errors.New("timed out waiting for ack")
	ErrClosed     = errors.New("connection closed")
)

var (
	okStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Controller sends commands to the head
type Controller struct {
	conn io.ReadWriteCloser
	cfg  Config

	queue *commandQueue
	lines chan string

	done      chan struct{}
	closeOnce sync.Once
	readDone  chan struct{}

	// sendMu keeps exactly one command in flight
	sendMu sync.Mutex
	// owed counts acks for timed out commands that may still arrive. Guarded by sendMu
	owed int

	sent    atomic.Uint64
	badAcks atomic.Uint64
}

// New wraps an already open connection. It starts reading lines from conn right away
func New(conn io.ReadWriteCloser, cfg Config) *Controller {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}

	c := &Controller{
		conn:  conn,
		cfg:   cfg,
		queue: newCommandQueue(),
		lines: make(chan string, 16),

		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
	go c.readLines()

	return c
}

func (c *Controller) readLines() {
	defer close(c.readDone)
	defer close(c.lines)

	scanner := bufio.NewScanner(c.conn)
	for scanner.Scan() {
		select {
		case c.lines <- strings.TrimSpace(scanner.Text()):
		case <-c.done:
			return
		}
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.ErrClosedPipe) {
		log.Printf("reading port: %v", err)
	}
}

// Close closes the underlying connection and stops the line reader
func (c *Controller) Close() error {
	c.closeOnce.Do(func() {
		close(c.done)
	})
	return c.conn.Close()
}

// Queue adds a raw command line to the send queue
func (c *Controller) Queue(p Priority, line string) {
	c.queue.push(p, strings.TrimRight(line, "\r\n"))
}

// Set queues an angle for a channel
func (c *Controller) Set(p Priority, ch novahead.Channel, angle int) {
	c.Queue(p, novahead.FormatCommand(ch, angle))
}

// Pending returns the number of queued commands
func (c *Controller) Pending() int {
	return c.queue.len()
}

// Stats returns how many commands were sent and how many got a bad ack
func (c *Controller) Stats() (uint64, uint64) {
	return c.sent.Load(), c.badAcks.Load()
}

// Send writes one line and waits for its ack. A bad or missing ack flushes whatever
// the head sent so the next command starts clean. Acks still owed for earlier timed
// out commands are consumed before the line is written
func (c *Controller) Send(ctx context.Context, line string) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	err := c.settleOwed(ctx)
	if err != nil {
		return err
	}
	c.drainStale()

	line = strings.TrimRight(line, "\r\n")
	_, err = io.WriteString(c.conn, line+string(novahead.LineTerminator))
	if err != nil {
		return fmt.Errorf("error writing command: %w", err)
	}
	c.sent.Add(1)

	timer := time.NewTimer(c.cfg.AckTimeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		c.owed++
		return ctx.Err()
	case <-timer.C:
		c.badAcks.Add(1)
		c.owed++
		c.resetInput()
		return ErrAckTimeout
	case ack, ok := <-c.lines:
		if !ok {
			return ErrClosed
		}
		if ack != novahead.AckToken {
			c.badAcks.Add(1)
			c.resetInput()
			return fmt.Errorf("%w: %q", ErrBadAck, ack)
		}
	}

	return nil
}

// settleOwed waits up to one ack timeout for the acks that timed out commands still
// owe. If the head stays silent the debt is forgiven and the input is flushed
func (c *Controller) settleOwed(ctx context.Context) error {
	if c.owed == 0 {
		return nil
	}

	timer := time.NewTimer(c.cfg.AckTimeout)
	defer timer.Stop()

	for c.owed > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			log.Printf("gave up waiting for %d late acks", c.owed)
			c.owed = 0
			c.resetInput()
			return nil
		case l, ok := <-c.lines:
			if !ok {
				return ErrClosed
			}
			if l == novahead.AckToken {
				c.owed--
				continue
			}
			log.Printf("device: %s", l)
		}
	}

	return nil
}

// drainStale logs anything the head printed outside of an ack exchange. Late acks
// pay off what is owed
func (c *Controller) drainStale() {
	for {
		select {
		case l, ok := <-c.lines:
			if !ok {
				return
			}
			if l == novahead.AckToken && c.owed > 0 {
				c.owed--
				continue
			}
			log.Printf("device: %s", l)
		default:
			return
		}
	}
}

func (c *Controller) resetInput() {
	if r, ok := c.conn.(interface{ ResetInputBuffer() error }); ok {
		err := r.ResetInputBuffer()
		if err != nil {
			log.Printf("error resetting input buffer: %v", err)
		}
	}
	c.drainStale()
}

// priorityFor sends jaw lines first since they follow speech
func priorityFor(line string) Priority {
	name, _, _ := strings.Cut(strings.TrimSpace(line), " ")
	if novahead.ParseChannel(name) == novahead.ChannelJaw {
		return PriorityHigh
	}
	return PriorityLow
}

// Run forwards every line read from in to the head and reports each result to out. It
// returns once in is exhausted and the queue is empty, or when ctx is done
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	inputDone := make(chan struct{})

	// not part of the group: a read from stdin cannot be interrupted
	go func() {
		defer close(inputDone)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			c.Queue(priorityFor(line), line)
		}
	}()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			line, ok := c.queue.pop()
			if !ok {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-c.queue.notify:
				case <-inputDone:
					if c.queue.len() == 0 {
						return nil
					}
				}
				continue
			}

			err := c.Send(ctx, line)
			switch {
			case err == nil:
				fmt.Fprintln(out, okStyle.Render(novahead.AckToken), line)
			case errors.Is(err, ErrBadAck), errors.Is(err, ErrAckTimeout):
				fmt.Fprintln(out, errStyle.Render("!"), line, dimStyle.Render(err.Error()))
			default:
				return fmt.Errorf("error sending %q: %w", line, err)
			}
		}
	})

	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
