package chatserver

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"chatcore/internal/config"
	"chatcore/internal/logging"
	"chatcore/internal/metrics"
)

// testServer starts a Server on an ephemeral port and returns its address
// and a cancel func to shut it down.
func testServer(t *testing.T) (addr string, stop func()) {
	t.Helper()

	cfg := config.Default()
	cfg.Listen.Address = "127.0.0.1:0"
	cfg.Watchdog.Interval = "1h"
	cfg.Watchdog.Timeout = "2h"

	logger := logging.NewLogger("error")
	srv := New(cfg, logger, metrics.NoopCollector{})

	ln, err := net.Listen("tcp", cfg.Listen.Address)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv.listener = ln
	addr = ln.Addr().String()

	ctx := logging.WithContext(context.Background(), srv.logger)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			srv.wg.Add(1)
			go func() {
				defer srv.wg.Done()
				c := NewConnection(ctx, conn, srv.reg, srv.metrics, srv.cfg)
				c.Run()
			}()
		}
	}()

	return addr, func() {
		ln.Close()
	}
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn, bufio.NewReader(conn)
}

func expectLine(t *testing.T, r *bufio.Reader, want string) {
	t.Helper()
	line, err := readLineWithTimeout(r)
	if err != nil {
		t.Fatalf("read line: %v", err)
	}
	if line != want {
		t.Fatalf("got %q, want %q", line, want)
	}
}

func readLineWithTimeout(r *bufio.Reader) (string, error) {
	type result struct {
		line string
		err  error
	}
	ch := make(chan result, 1)
	go func() {
		line, err := r.ReadString('\n')
		ch <- result{line, err}
	}()
	select {
	case res := <-ch:
		if res.err != nil {
			return "", res.err
		}
		return trimNewline(res.line), nil
	case <-time.After(2 * time.Second):
		return "", context.DeadlineExceeded
	}
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

func TestHappyRegistrationAndPrivateMessage(t *testing.T) {
	addr, stop := testServer(t)
	defer stop()

	connA, readerA := dial(t, addr)
	defer connA.Close()
	expectLine(t, readerA, "CONNECTED")
	connA.Write([]byte("NAME @alice\n"))
	expectLine(t, readerA, "REGISTERED")

	connB, readerB := dial(t, addr)
	defer connB.Close()
	expectLine(t, readerB, "CONNECTED")
	connB.Write([]byte("NAME @bob\n"))
	expectLine(t, readerB, "REGISTERED")

	connA.Write([]byte("SAY @bob hello bob\n"))
	expectLine(t, readerB, "@alice SAID hello bob")
}

func TestDuplicateRegistration(t *testing.T) {
	addr, stop := testServer(t)
	defer stop()

	connA, readerA := dial(t, addr)
	defer connA.Close()
	expectLine(t, readerA, "CONNECTED")
	connA.Write([]byte("NAME @alice\n"))
	expectLine(t, readerA, "REGISTERED")

	connB, readerB := dial(t, addr)
	defer connB.Close()
	expectLine(t, readerB, "CONNECTED")
	connB.Write([]byte("NAME @alice\n"))
	expectLine(t, readerB, "ERROR user already exists @alice")

	connB.Write([]byte("NAME @alice2\n"))
	expectLine(t, readerB, "REGISTERED")
}

func TestRoomFanOutAndSelfSuppression(t *testing.T) {
	addr, stop := testServer(t)
	defer stop()

	names := []string{"@a", "@b", "@c"}
	conns := make([]net.Conn, 3)
	readers := make([]*bufio.Reader, 3)
	for i, n := range names {
		conns[i], readers[i] = dial(t, addr)
		defer conns[i].Close()
		expectLine(t, readers[i], "CONNECTED")
		conns[i].Write([]byte("NAME " + n + "\n"))
		expectLine(t, readers[i], "REGISTERED")
		conns[i].Write([]byte("JOIN #gen\n"))
	}

	// Drain JOINED notices delivered to earlier members.
	expectLine(t, readers[0], "#gen @b JOINED")
	expectLine(t, readers[0], "#gen @c JOINED")
	expectLine(t, readers[1], "#gen @c JOINED")

	conns[0].Write([]byte("SAY #gen hi all\n"))
	expectLine(t, readers[1], "#gen @a SAID hi all")
	expectLine(t, readers[2], "#gen @a SAID hi all")
	if line, err := readLineWithTimeout(readers[0]); err == nil {
		t.Fatalf("sender got %q, want no line", line)
	}
}

func TestBadInputRobustness(t *testing.T) {
	addr, stop := testServer(t)
	defer stop()

	conn, reader := dial(t, addr)
	defer conn.Close()
	expectLine(t, reader, "CONNECTED")
	conn.Write([]byte("NAME @robert\n"))
	expectLine(t, reader, "REGISTERED")

	conn.Write([]byte("SAY #no++ hi\n"))
	expectLine(t, reader, "ERROR bad room name format")

	conn.Write([]byte("NAME alice\n"))
	expectLine(t, reader, "ERROR bad name format")

	longLine := make([]byte, 2000)
	for i := range longLine {
		longLine[i] = 'x'
	}
	longLine = append(longLine, '\n')
	conn.Write(longLine)
	expectLine(t, reader, "ERROR max length reached")

	conn.Write([]byte("JOIN #stillworks\n"))
	conn.Write([]byte("ROOMS\n"))
	expectLine(t, reader, "ROOM #stillworks")
}

func TestDisconnectNotifiesRoomMembers(t *testing.T) {
	addr, stop := testServer(t)
	defer stop()

	connA, readerA := dial(t, addr)
	defer connA.Close()
	expectLine(t, readerA, "CONNECTED")
	connA.Write([]byte("NAME @a\n"))
	expectLine(t, readerA, "REGISTERED")
	connA.Write([]byte("JOIN #gen\n"))

	connB, readerB := dial(t, addr)
	expectLine(t, readerB, "CONNECTED")
	connB.Write([]byte("NAME @b\n"))
	expectLine(t, readerB, "REGISTERED")
	connB.Write([]byte("JOIN #gen\n"))
	expectLine(t, readerA, "#gen @b JOINED")

	connB.Close()
	expectLine(t, readerA, "#gen @b LEFT")
}
