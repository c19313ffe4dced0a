// Package linereader accumulates bytes from the host into newline-terminated lines
// without ever waiting for more input
package linereader

import "github.com/calvinmclean/novahead"

// MaxLineLength bounds the buffer. Longer lines are dropped whole
const MaxLineLength = 64

// Source is a non-blocking byte source such as machine.Serial
type Source interface {
	Buffered() int
	ReadByte() (byte, error)
}

// Reader holds the line currently being received
type Reader struct {
	buf      [MaxLineLength]byte
	n        int
	overflow bool

	line  string
	ready bool
}

// Feed appends one byte and returns true if it completed a line. The terminator is
// never part of the line. A '\r' before the terminator is dropped so CRLF hosts work.
// Bytes fed while a completed line has not been taken are ignored, so callers should
// stop feeding once Feed returns true
func (r *Reader) Feed(b byte) bool {
	if r.ready {
		return true
	}

	switch {
	case b == novahead.LineTerminator:
		if r.overflow {
			r.line = ""
		} else {
			r.line = string(r.buf[:r.n])
		}
		r.n = 0
		r.overflow = false
		r.ready = true
		return true
	case b == '\r':
		return false
	case r.overflow:
		return false
	case r.n == len(r.buf):
		r.overflow = true
		r.n = 0
		return false
	}

	r.buf[r.n] = b
	r.n++
	return false
}

// Poll feeds every byte that is already available from src, stopping as soon as a line
// completes so the rest stays queued in src for the next call
func (r *Reader) Poll(src Source) bool {
	for !r.ready && src.Buffered() > 0 {
		b, err := src.ReadByte()
		if err != nil {
			break
		}
		r.Feed(b)
	}
	return r.ready
}

// Ready reports whether a completed line is waiting
func (r *Reader) Ready() bool {
	return r.ready
}

// Take returns the completed line and clears the ready flag
func (r *Reader) Take() (string, bool) {
	if !r.ready {
		return "", false
	}
	line := r.line
	r.line = ""
	r.ready = false
	return line, true
}

// Pending returns how many bytes of an incomplete line are buffered
func (r *Reader) Pending() int {
	return r.n
}
