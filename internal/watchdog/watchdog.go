// Package watchdog implements the per-connection liveness timer: a
// background loop that watches how long it has been since the connection
// last heard from its peer and emits ping/timeout events for the
// connection handler to act on.
package watchdog

import (
	"sync"
	"time"
)

// Event is one liveness notification.
type Event int

const (
	// SendPing means the connection should emit PING on the wire.
	SendPing Event = iota
	// PongTimeout means no activity has been observed within the
	// timeout window; the connection should be torn down.
	PongTimeout
)

// Config pairs the ping interval and timeout so they can never be set
// independently, matching the contract that they are configurable only
// as a pair.
type Config struct {
	// Interval is how long without activity before a PING is sent.
	Interval time.Duration
	// Timeout is how long without activity before the connection is
	// considered dead. Must be greater than Interval.
	Timeout time.Duration
}

// DefaultConfig matches the 90s/180s thresholds.
func DefaultConfig() Config {
	return Config{Interval: 90 * time.Second, Timeout: 180 * time.Second}
}

// Watchdog tracks activity for one connection and emits Events on Events()
// until Stop is called.
type Watchdog struct {
	cfg    Config
	events chan Event
	stop   chan struct{}
	once   sync.Once

	mu           sync.Mutex
	lastActivity time.Time
}

// New starts a watchdog with the given config. Call Stop when the owning
// connection is done with it.
func New(cfg Config) *Watchdog {
	w := &Watchdog{
		cfg:          cfg,
		events:       make(chan Event, 1),
		stop:         make(chan struct{}),
		lastActivity: time.Now(),
	}
	go w.run()
	return w
}

// Events returns the channel on which SendPing and PongTimeout are
// delivered. The connection handler should select on it alongside its
// other event sources.
func (w *Watchdog) Events() <-chan Event {
	return w.events
}

// Touch records activity now, as if a PONG (or any other traffic) had
// just been observed. Safe to call concurrently with the watchdog's own
// goroutine.
func (w *Watchdog) Touch() {
	w.mu.Lock()
	w.lastActivity = time.Now()
	w.mu.Unlock()
}

// Stop halts the background loop. Safe to call more than once.
func (w *Watchdog) Stop() {
	w.once.Do(func() { close(w.stop) })
}

func (w *Watchdog) run() {
	ticker := time.NewTicker(w.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.mu.Lock()
			elapsed := time.Since(w.lastActivity)
			w.mu.Unlock()

			switch {
			case elapsed >= w.cfg.Timeout:
				w.emit(PongTimeout)
			case elapsed >= w.cfg.Interval:
				w.emit(SendPing)
			}
		}
	}
}

// emit delivers ev without blocking forever if the handler has stopped
// reading; a full buffer means a ping or timeout is already pending and
// a duplicate can be safely dropped.
func (w *Watchdog) emit(ev Event) {
	select {
	case w.events <- ev:
	case <-w.stop:
	default:
	}
}
