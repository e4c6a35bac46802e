// Package chatserver implements the connection handler and listener loop
// that sit atop the protocol, registry, mailbox, and watchdog packages: one
// Connection per accepted socket, multiplexing inbound frames, outbound
// mailbox messages, and liveness events the way the teacher's Client type
// multiplexed its readPump/writePump against a send channel, generalized
// here to a three-way select and a registration/active state machine.
package chatserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"time"

	"github.com/google/uuid"

	"chatcore/internal/config"
	"chatcore/internal/logging"
	"chatcore/internal/mailbox"
	"chatcore/internal/metrics"
	"chatcore/internal/protocol"
	"chatcore/internal/registry"
	"chatcore/internal/watchdog"
)

type connState int

const (
	stateGreeting connState = iota
	stateRegistering
	stateActive
	stateTearingDown
	stateClosed
)

// inboundEvent is what the read loop hands to the connection's select
// loop: either a parsed frame, a framing error, or termination (EOF/IO
// error/close).
type inboundEvent struct {
	action  protocol.ParsedAction
	tooLong bool
	closed  bool
	err     error
}

// Connection drives one accepted socket through Greeting -> Registering ->
// Active -> TearingDown -> Closed.
type Connection struct {
	id       string
	conn     net.Conn
	reg      *registry.Registry
	metrics  metrics.Collector
	logger   *slog.Logger
	maxLine  int
	wdConfig watchdog.Config

	name    string
	mailbox *mailbox.Mailbox
	wd      *watchdog.Watchdog

	in  chan inboundEvent
	out chan protocol.Outgoing
}

// NewConnection wraps an accepted socket. The connection's logger is
// pulled from ctx (see logging.WithContext), with conn_id attached. Run
// must be called to drive it.
func NewConnection(ctx context.Context, conn net.Conn, reg *registry.Registry, coll metrics.Collector, cfg config.Config) *Connection {
	id := uuid.NewString()
	return &Connection{
		id:       id,
		conn:     conn,
		reg:      reg,
		metrics:  coll,
		logger:   logging.FromContext(ctx).With(slog.String("conn_id", id)),
		maxLine:  cfg.MaxLineBytes,
		wdConfig: watchdog.Config{Interval: cfg.WatchdogInterval(), Timeout: cfg.WatchdogTimeout()},
		mailbox:  mailbox.New(),
		in:       make(chan inboundEvent, 1),
		out:      make(chan protocol.Outgoing, 1),
	}
}

// Run drives the connection to completion. It returns once the connection
// has been fully torn down; it never returns an error to the caller since
// all per-connection failures are isolated here.
func (c *Connection) Run() {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("connection handler panicked", slog.Any("panic", r))
		}
	}()

	c.metrics.ConnectionOpened()
	defer c.metrics.ConnectionClosed()
	defer c.conn.Close()

	c.wd = watchdog.New(c.wdConfig)
	defer c.wd.Stop()

	fr := newFrameReader(c.conn, c.maxLine)
	go c.readLoop(fr)

	go c.mailboxLoop()

	state := stateGreeting
	if c.write(protocol.Connected()) {
		state = stateRegistering
	} else {
		state = stateTearingDown
	}

	for state != stateClosed {
		switch state {
		case stateRegistering:
			state = c.runRegistering()
		case stateActive:
			state = c.runActive()
		case stateTearingDown:
			c.teardown()
			state = stateClosed
		default:
			state = stateClosed
		}
	}

	c.mailbox.Close()
	c.logger.Info("connection closed")
}

func (c *Connection) runRegistering() connState {
	for {
		select {
		case ev := <-c.wd.Events():
			switch ev {
			case watchdog.SendPing:
				if !c.write(protocol.Ping()) {
					return stateTearingDown
				}
			case watchdog.PongTimeout:
				c.logger.Info("pong timeout during registration")
				return stateTearingDown
			}

		case evt := <-c.in:
			if evt.closed {
				return stateClosed
			}
			if evt.err != nil {
				c.logger.Info("read error during registration", slog.String("error", evt.err.Error()))
				return stateClosed
			}
			if evt.tooLong {
				if !c.write(protocol.ErrorLine(protocol.MaxLengthErrorText)) {
					return stateTearingDown
				}
				continue
			}

			a := evt.action
			switch a.Kind {
			case protocol.ActionProcess:
				switch a.Message.Kind {
				case protocol.IncomingName:
					if err := c.reg.AddUser(a.Message.Name, c.mailbox); err != nil {
						if !c.write(protocol.ErrorLine(err.(*registry.Error).WireText())) {
							return stateTearingDown
						}
						continue
					}
					c.name = a.Message.Name
					c.metrics.UserRegistered()
					if !c.write(protocol.Registered()) {
						return stateTearingDown
					}
					c.logger.Info("user registered", slog.String("user", c.name))
					return stateActive
				case protocol.IncomingQuit:
					return stateClosed
				case protocol.IncomingPong:
					c.wd.Touch()
				default:
					// Not yet registered: every other command is ignored
					// silently to avoid leaking registry state.
				}
			case protocol.ActionError:
				if a.Command == protocol.CommandName {
					if !c.write(protocol.ErrorLine(a.Error.String())) {
						return stateTearingDown
					}
				}
				// Errors for other commands are suppressed pre-registration.
			case protocol.ActionIgnore:
			}
		}
	}
}

func (c *Connection) runActive() connState {
	for {
		select {
		case msg := <-c.out:
			if !c.write(msg) {
				return stateTearingDown
			}

		case ev := <-c.wd.Events():
			switch ev {
			case watchdog.SendPing:
				if !c.write(protocol.Ping()) {
					return stateTearingDown
				}
			case watchdog.PongTimeout:
				c.logger.Info("pong timeout", slog.String("user", c.name))
				return stateTearingDown
			}

		case evt := <-c.in:
			if evt.closed {
				return stateTearingDown
			}
			if evt.err != nil {
				c.logger.Info("read error", slog.String("user", c.name), slog.String("error", evt.err.Error()))
				return stateTearingDown
			}
			if evt.tooLong {
				if !c.write(protocol.ErrorLine(protocol.MaxLengthErrorText)) {
					return stateTearingDown
				}
				continue
			}

			quit, writeFailed := c.dispatch(evt.action)
			if quit || writeFailed {
				return stateTearingDown
			}
		}
	}
}

// dispatch applies one parsed action while Active. quit reports QUIT;
// writeFailed reports that a reply to the client could not be written, in
// which case the caller tears the connection down immediately regardless
// of quit.
func (c *Connection) dispatch(a protocol.ParsedAction) (quit, writeFailed bool) {
	switch a.Kind {
	case protocol.ActionIgnore:
		return false, false

	case protocol.ActionError:
		c.metrics.ParseErrorOccurred(a.Error.Label())
		return false, !c.write(protocol.ErrorLine(a.Error.String()))

	case protocol.ActionProcess:
		m := a.Message
		switch m.Kind {
		case protocol.IncomingName:
			c.metrics.CommandProcessed("NAME")
			if err := c.reg.Rename(c.name, m.Name); err != nil {
				return false, !c.write(protocol.ErrorLine(err.(*registry.Error).WireText()))
			}
			c.name = m.Name

		case protocol.IncomingJoin:
			c.metrics.CommandProcessed("JOIN")
			if err := c.reg.JoinRoom(m.Room, c.name); err != nil {
				return false, !c.write(protocol.ErrorLine(err.(*registry.Error).WireText()))
			}

		case protocol.IncomingLeave:
			c.metrics.CommandProcessed("LEAVE")
			if err := c.reg.LeaveRoom(m.Room, c.name); err != nil {
				return false, !c.write(protocol.ErrorLine(err.(*registry.Error).WireText()))
			}

		case protocol.IncomingSayRoom:
			c.metrics.CommandProcessed("SAY")
			if err := c.reg.SayToRoom(c.name, m.Target, m.Text); err != nil {
				return false, !c.write(protocol.ErrorLine(err.(*registry.Error).WireText()))
			}

		case protocol.IncomingSayUser:
			c.metrics.CommandProcessed("SAY")
			if err := c.reg.SayToUser(c.name, m.Target, m.Text); err != nil {
				return false, !c.write(protocol.ErrorLine(err.(*registry.Error).WireText()))
			}

		case protocol.IncomingRooms:
			c.metrics.CommandProcessed("ROOMS")
			for _, room := range c.reg.Rooms() {
				if !c.write(protocol.RoomLine(room)) {
					return false, true
				}
			}

		case protocol.IncomingUsers:
			c.metrics.CommandProcessed("USERS")
			users, err := c.reg.Users(m.Room)
			if err != nil {
				return false, !c.write(protocol.ErrorLine(err.(*registry.Error).WireText()))
			}
			for _, u := range users {
				if !c.write(protocol.UserLine(u)) {
					return false, true
				}
			}

		case protocol.IncomingPong:
			c.wd.Touch()

		case protocol.IncomingQuit:
			c.metrics.CommandProcessed("QUIT")
			return true, false
		}
	}
	return false, false
}

func (c *Connection) teardown() {
	if c.name != "" {
		if err := c.reg.RemoveUser(c.name); err != nil {
			c.logger.Warn("teardown: user already absent from registry", slog.String("user", c.name))
		} else {
			c.metrics.UserRemoved()
		}
	}
}

// readLoop owns the socket's read side; it runs until EOF/error and feeds
// c.in. It never touches c.out or the registry directly.
func (c *Connection) readLoop(fr *frameReader) {
	for {
		line, tooLong, err := fr.ReadLine()
		switch {
		case errors.Is(err, net.ErrClosed):
			c.in <- inboundEvent{closed: true}
			return
		case err != nil:
			if errors.Is(err, io.EOF) {
				c.in <- inboundEvent{closed: true}
			} else {
				c.in <- inboundEvent{err: err}
			}
			return
		case tooLong:
			c.in <- inboundEvent{tooLong: true}
		default:
			c.in <- inboundEvent{action: protocol.Parse(line)}
		}
	}
}

// mailboxLoop forwards dequeued outbound messages from the unbounded
// mailbox into c.out, where the select loop writes them to the socket.
func (c *Connection) mailboxLoop() {
	for {
		msg, ok := c.mailbox.Dequeue()
		if !ok {
			return
		}
		c.metrics.MailboxDepthObserved(c.mailbox.Depth())
		c.out <- msg
	}
}

// write sends msg to the client and reports whether it succeeded. A
// transport failure here is a write-side analog of readLoop's inboundEvent
// errors: the caller must treat it as fatal to the connection and move to
// TearingDown rather than keep selecting on a dead socket.
func (c *Connection) write(msg protocol.Outgoing) bool {
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if _, err := fmt.Fprintf(c.conn, "%s\n", msg.String()); err != nil {
		c.logger.Info("write failed", slog.String("error", err.Error()))
		return false
	}
	return true
}
