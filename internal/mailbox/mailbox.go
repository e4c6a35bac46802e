// Package mailbox implements the per-user outbound queue that decouples
// the registry's broadcast operations from the network I/O a connection
// handler performs to deliver them.
//
// A teacher-style bounded Go channel (`send chan []byte`, drop-on-full)
// cannot express "enqueue never fails": Go channels have no unbounded
// variant, so Mailbox keeps its own growable queue behind a mutex and
// condition variable instead, following the registry's own pattern of a
// single-lock critical section rather than reaching for an unverified
// third-party "infinite channel" library.
package mailbox

import (
	"sync"

	"chatcore/internal/protocol"
)

// Mailbox is an unbounded, ordered FIFO of outbound messages for one user.
// Sender (via Enqueue) and a single owning receiver (via Dequeue) may be
// used concurrently from different goroutines; Dequeue must only ever be
// called from the one goroutine that owns the mailbox.
type Mailbox struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  []protocol.Outgoing
	closed bool
}

// New returns an empty, open Mailbox.
func New() *Mailbox {
	m := &Mailbox{}
	m.cond = sync.NewCond(&m.mu)
	return m
}

// Enqueue appends msg to the queue. It never blocks and never fails; if
// the mailbox has already been closed, msg is silently dropped (the
// owning connection is tearing down and will not read it).
func (m *Mailbox) Enqueue(msg protocol.Outgoing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.queue = append(m.queue, msg)
	m.cond.Signal()
}

// Dequeue blocks until a message is available or the mailbox is closed.
// It returns ok=false once the queue has been drained after Close.
func (m *Mailbox) Dequeue() (protocol.Outgoing, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for len(m.queue) == 0 && !m.closed {
		m.cond.Wait()
	}
	if len(m.queue) == 0 {
		return protocol.Outgoing{}, false
	}
	msg := m.queue[0]
	m.queue = m.queue[1:]
	return msg, true
}

// Close marks the mailbox closed. Pending messages are discarded; any
// blocked or future Dequeue call returns immediately with ok=false.
func (m *Mailbox) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	m.queue = nil
	m.cond.Broadcast()
}

// Depth reports the number of messages currently queued, for metrics.
func (m *Mailbox) Depth() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
