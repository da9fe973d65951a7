// Package tests exercises the engine end to end over a real TCP
// socket, rather than unit-testing its internal pieces in isolation.
package tests

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/octet-server/octet/core"
	"github.com/octet-server/octet/core/http"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func startEngine(t *testing.T, handler core.HandlerFunc) (addr string, stop func()) {
	t.Helper()
	addr = freeAddr(t)
	engine := core.NewEngine(addr, handler, core.WithWorkers(1))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- engine.Run(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err == nil {
			conn.Close()
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	return addr, func() {
		cancel()
		<-done
	}
}

func echoHandler(req *http.Request) (*http.Response, error) {
	resp := http.NewResponse(http.StatusOK)
	resp.SetBody([]byte("hello\n"))
	return resp, nil
}

// TestEngineRoundTrip sends a real GET over TCP and checks the engine
// answers with a 200 and closes the connection afterward, per the
// close-after-response policy: no keep-alive, no connection reuse.
func TestEngineRoundTrip(t *testing.T) {
	addr, stop := startEngine(t, echoHandler)
	defer stop()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "GET /hello HTTP/1.1\r\nHost: localhost\r\n\r\n"); err != nil {
		t.Fatalf("write request: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)

	statusLine, err := reader.ReadString('\n')
	if err != nil {
		t.Fatalf("read status line: %v", err)
	}
	if !strings.Contains(statusLine, "200") {
		t.Fatalf("expected 200 status, got %q", statusLine)
	}

	var body strings.Builder
	for {
		line, err := reader.ReadString('\n')
		body.WriteString(line)
		if err != nil {
			break
		}
	}
	if !strings.Contains(body.String(), "hello") {
		t.Fatalf("expected body to contain %q, got %q", "hello", body.String())
	}

	// The server closes after one response: a second read must observe EOF.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	buf := make([]byte, 1)
	if n, err := conn.Read(buf); err == nil {
		t.Fatalf("expected connection to be closed after response, read %d more bytes", n)
	}
}

// TestEngineConcurrentClients drives several connections at once
// through the same single-worker engine to exercise the connection
// table and pools under concurrency, not just one connection at a time.
func TestEngineConcurrentClients(t *testing.T) {
	const clients = 20

	addr, stop := startEngine(t, echoHandler)
	defer stop()

	var wg sync.WaitGroup
	errs := make(chan error, clients)

	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			conn, err := net.DialTimeout("tcp", addr, time.Second)
			if err != nil {
				errs <- fmt.Errorf("dial: %w", err)
				return
			}
			defer conn.Close()

			if _, err := fmt.Fprintf(conn, "GET / HTTP/1.1\r\nHost: localhost\r\n\r\n"); err != nil {
				errs <- fmt.Errorf("write: %w", err)
				return
			}

			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			reader := bufio.NewReader(conn)
			statusLine, err := reader.ReadString('\n')
			if err != nil {
				errs <- fmt.Errorf("read: %w", err)
				return
			}
			if !strings.Contains(statusLine, "200") {
				errs <- fmt.Errorf("expected 200, got %q", statusLine)
			}
		}()
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}

// TestEngineMalformedRequestCloses confirms a request the parser can't
// make sense of closes the connection rather than getting a synthesized
// error response.
func TestEngineMalformedRequestCloses(t *testing.T) {
	addr, stop := startEngine(t, echoHandler)
	defer stop()

	conn, err := net.DialTimeout("tcp", addr, time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := fmt.Fprintf(conn, "NOTAMETHOD ???\r\n\r\n"); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, err := conn.Read(buf)
	if err == nil && n > 0 {
		t.Fatalf("expected connection close with no response, got %d bytes: %q", n, buf[:n])
	}
}
