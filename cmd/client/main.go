// chatcore-client is a trivial stdin<->socket bridge: it dials the
// server, copies stdin lines to the connection and connection lines to
// stdout. It understands nothing about the protocol beyond newlines; the
// user types raw commands (NAME @you, JOIN #room, SAY #room hi, ...) and
// reads raw server output.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"net"
	"os"
)

func main() {
	addr := flag.String("addr", "localhost:6667", "server address to connect to")
	flag.Parse()

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "dial %s: %v\n", *addr, err)
		os.Exit(1)
	}
	defer conn.Close()

	done := make(chan struct{})

	go func() {
		defer close(done)
		if _, err := io.Copy(os.Stdout, conn); err != nil {
			fmt.Fprintf(os.Stderr, "connection closed: %v\n", err)
		}
	}()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if _, err := fmt.Fprintf(conn, "%s\n", scanner.Text()); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			break
		}
	}

	conn.Close()
	<-done
}
