package http

import (
	"bytes"
	"strconv"
	"testing"
)

func TestParserSimpleGet(t *testing.T) {
	p := NewParser()
	raw := "GET /hello?name=world HTTP/1.1\r\nHost: example.com\r\nUser-Agent: test\r\n\r\n"

	if err := p.Parse([]byte(raw)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.IsComplete() {
		t.Fatalf("expected parser to be complete, state=%v", p.State())
	}

	req, err := p.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Method != GET {
		t.Fatalf("method = %v, want GET", req.Method)
	}
	if req.URI != "/hello?name=world" {
		t.Fatalf("uri = %q, want unmodified URI with query string", req.URI)
	}
	if req.Query["name"] != "world" {
		t.Fatalf("query[name] = %q, want world", req.Query["name"])
	}
	if host, ok := req.Header("Host"); !ok || host != "example.com" {
		t.Fatalf("header Host = %q, %v", host, ok)
	}
	if len(req.Body) != 0 {
		t.Fatalf("expected empty body, got %d bytes", len(req.Body))
	}
}

func TestParserPostWithBody(t *testing.T) {
	p := NewParser()
	body := "name=value&other=thing"
	raw := "POST /submit HTTP/1.1\r\nHost: example.com\r\nContent-Length: " +
		strconv.Itoa(len(body)) + "\r\n\r\n" + body

	if err := p.Parse([]byte(raw)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.IsComplete() {
		t.Fatalf("expected complete after single chunk containing full body")
	}

	req, err := p.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Method != POST {
		t.Fatalf("method = %v, want POST", req.Method)
	}
	if string(req.Body) != body {
		t.Fatalf("body = %q, want %q", req.Body, body)
	}
}

func TestParserBodyArrivesInSecondChunk(t *testing.T) {
	p := NewParser()
	head := "POST /submit HTTP/1.1\r\nContent-Length: 5\r\n\r\n"
	if err := p.Parse([]byte(head)); err != nil {
		t.Fatalf("parse head: %v", err)
	}
	if p.State() != StateBody {
		t.Fatalf("state = %v, want StateBody after headers with no body bytes yet", p.State())
	}

	if err := p.Parse([]byte("hello")); err != nil {
		t.Fatalf("parse body: %v", err)
	}
	if !p.IsComplete() {
		t.Fatalf("expected complete once body bytes arrive")
	}

	req, err := p.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if string(req.Body) != "hello" {
		t.Fatalf("body = %q, want hello", req.Body)
	}
}

func TestParserTruncatesExcessBody(t *testing.T) {
	p := NewParser()
	raw := "POST /x HTTP/1.1\r\nContent-Length: 3\r\n\r\nabcxyz"

	if err := p.Parse([]byte(raw)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	req, err := p.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if string(req.Body) != "abc" {
		t.Fatalf("body = %q, want truncated to content-length", req.Body)
	}
}

func TestParserResetIsIdempotent(t *testing.T) {
	p := NewParser()
	raw := "GET / HTTP/1.1\r\n\r\n"
	if err := p.Parse([]byte(raw)); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !p.IsComplete() {
		t.Fatalf("expected complete")
	}

	p.Reset()
	if p.State() != StateRequestLine {
		t.Fatalf("state after reset = %v, want StateRequestLine", p.State())
	}
	p.Reset()
	if p.State() != StateRequestLine {
		t.Fatalf("state after second reset = %v, want StateRequestLine", p.State())
	}

	// parsing a second, different request after completion must not see
	// any state left over from the first.
	if err := p.Parse([]byte("POST /again HTTP/1.1\r\nContent-Length: 2\r\n\r\nhi")); err != nil {
		t.Fatalf("parse second request: %v", err)
	}
	req, err := p.Request()
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if req.Method != POST || req.URI != "/again" || string(req.Body) != "hi" {
		t.Fatalf("leftover state from prior request: %+v", req)
	}
}

func TestParserRejectsMalformedRequestLine(t *testing.T) {
	p := NewParser()
	if err := p.Parse([]byte("GARBAGE\r\n\r\n")); err == nil {
		t.Fatal("expected error for malformed request line")
	}
}

func TestParserRejectsUnknownMethod(t *testing.T) {
	p := NewParser()
	if err := p.Parse([]byte("FROBNICATE / HTTP/1.1\r\n\r\n")); err == nil {
		t.Fatal("expected error for unknown method")
	}
}

func TestRequestNotCompleteBeforeParse(t *testing.T) {
	p := NewParser()
	if _, err := p.Request(); err == nil {
		t.Fatal("expected error requesting an incomplete parse")
	}
}

func TestResponseSerializeWireFormat(t *testing.T) {
	r := NewResponse(StatusOK)
	r.SetBody([]byte("hi"))

	out := r.Serialize(nil)
	if !bytes.HasPrefix(out, []byte("HTTP/1.1 200 OK\r\n")) {
		t.Fatalf("serialized response missing status line: %q", out)
	}
	if !bytes.Contains(out, []byte("Content-Length: 2\r\n")) {
		t.Fatalf("serialized response missing Content-Length: %q", out)
	}
	if !bytes.HasSuffix(out, []byte("\r\n\r\nhi")) {
		t.Fatalf("serialized response missing blank line + body: %q", out)
	}
}
