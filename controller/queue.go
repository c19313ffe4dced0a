package controller

import (
	"container/heap"
	"sync"
)

// Priority orders queued commands. Lower values are sent first
type Priority int

const (
	// PriorityHigh is for speech-driven jaw motion
	PriorityHigh Priority = iota + 1
	// PriorityLow is for idle gaze and manual pose changes
	PriorityLow
)

type queued struct {
	priority Priority
	seq      uint64
	line     string
}

type commandHeap []queued

func (h commandHeap) Len() int { return len(h) }

func (h commandHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	return h[i].seq < h[j].seq
}

func (h commandHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *commandHeap) Push(x any) { *h = append(*h, x.(queued)) }

func (h *commandHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// commandQueue is a priority queue that keeps FIFO order within a priority
type commandQueue struct {
	mu     sync.Mutex
	items  commandHeap
	seq    uint64
	notify chan struct{}
}

func newCommandQueue() *commandQueue {
	return &commandQueue{notify: make(chan struct{}, 1)}
}

func (q *commandQueue) push(p Priority, line string) {
	q.mu.Lock()
	q.seq++
	heap.Push(&q.items, queued{priority: p, seq: q.seq, line: line})
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *commandQueue) pop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.items.Len() == 0 {
		return "", false
	}
	return heap.Pop(&q.items).(queued).line, true
}

func (q *commandQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}
