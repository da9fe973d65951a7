package http

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/octet-server/octet/core/errs"
)

// ParserState is one stage of the resumable request parser's state
// machine.
type ParserState uint8

const (
	StateRequestLine ParserState = iota
	StateHeaders
	StateBody
	StateComplete
)

// Parser incrementally parses one HTTP/1.1 request across repeated
// calls to Parse, each call handed whatever bytes the connection's
// read buffer currently holds. It is re-entrant: once Complete, the
// next Parse call resets and starts a fresh request, so a single
// Parser can be reused for the lifetime of a connection.
type Parser struct {
	state         ParserState
	method        Method
	methodSet     bool
	uri           string
	version       string
	headers       map[string]string
	body          []byte
	contentLength int
}

// NewParser returns a Parser ready to parse a request line.
func NewParser() *Parser {
	return &Parser{state: StateRequestLine, headers: make(map[string]string)}
}

// Reset clears all parsed state and returns the parser to
// StateRequestLine, ready for the next request.
func (p *Parser) Reset() {
	p.state = StateRequestLine
	p.methodSet = false
	p.uri = ""
	p.version = ""
	for k := range p.headers {
		delete(p.headers, k)
	}
	p.body = p.body[:0]
	p.contentLength = 0
}

// State reports the parser's current stage.
func (p *Parser) State() ParserState {
	return p.state
}

// IsComplete reports whether a full request has been parsed.
func (p *Parser) IsComplete() bool {
	return p.state == StateComplete
}

// Parse feeds data to the parser. If the parser was already Complete
// from a prior request, it resets first and begins a fresh one. Parse
// looks for the "\r\n\r\n" end-of-headers marker; once found it parses
// the request line and header lines in one pass, then consumes as much
// of the body as content-length requires. If no marker is present and
// the parser is already in StateBody, the entire chunk is treated as
// body bytes.
func (p *Parser) Parse(data []byte) error {
	if p.state == StateComplete {
		p.Reset()
	}

	if !utf8.Valid(data) {
		return errs.New(errs.HttpParse, "invalid UTF-8 in request data")
	}
	dataStr := string(data)

	if headersEnd := strings.Index(dataStr, "\r\n\r\n"); headersEnd != -1 {
		headersPart := dataStr[:headersEnd]
		lines := strings.Split(headersPart, "\r\n")
		if len(lines) == 0 {
			return nil
		}

		if p.state == StateRequestLine {
			if err := p.parseRequestLine(lines[0]); err != nil {
				return err
			}
			p.state = StateHeaders
		}

		if p.state == StateHeaders {
			for _, line := range lines[1:] {
				if line == "" {
					continue
				}
				if err := p.parseHeader(line); err != nil {
					return err
				}
			}

			if cl, ok := p.headers["content-length"]; ok {
				n, err := strconv.Atoi(cl)
				if err != nil {
					n = 0
				}
				p.contentLength = n
			}

			bodyStart := headersEnd + 4
			switch {
			case p.contentLength > 0 && bodyStart < len(data):
				p.body = append(p.body, data[bodyStart:]...)
				if len(p.body) >= p.contentLength {
					p.body = p.body[:p.contentLength]
					p.state = StateComplete
				} else {
					p.state = StateBody
				}
			case p.contentLength == 0:
				p.state = StateComplete
			default:
				p.state = StateBody
			}
		}
	} else if p.state == StateBody {
		p.body = append(p.body, data...)
		if len(p.body) >= p.contentLength {
			p.body = p.body[:p.contentLength]
			p.state = StateComplete
		}
	}

	return nil
}

func (p *Parser) parseRequestLine(line string) error {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return errs.New(errs.HttpParse, "invalid request line: %q", line)
	}

	method, err := ParseMethod(parts[0])
	if err != nil {
		return err
	}
	p.method = method
	p.methodSet = true
	p.uri = parts[1]
	p.version = parts[2]
	return nil
}

func (p *Parser) parseHeader(line string) error {
	colon := strings.IndexByte(line, ':')
	if colon == -1 {
		return errs.New(errs.HttpParse, "invalid header line: %q", line)
	}
	key := strings.ToLower(strings.TrimSpace(line[:colon]))
	value := strings.TrimSpace(line[colon+1:])
	p.headers[key] = value
	return nil
}

// Request materializes the completed parse into an immutable Request.
// It is an error to call Request before IsComplete reports true.
func (p *Parser) Request() (*Request, error) {
	if !p.IsComplete() {
		return nil, errs.New(errs.HttpParse, "request not complete")
	}
	if !p.methodSet {
		return nil, errs.New(errs.HttpParse, "method not set")
	}

	headers := make(map[string]string, len(p.headers))
	for k, v := range p.headers {
		headers[k] = v
	}

	body := make([]byte, len(p.body))
	copy(body, p.body)

	return &Request{
		Method:  p.method,
		URI:     p.uri,
		Headers: headers,
		Body:    body,
		Query:   parseQuery(p.uri),
	}, nil
}
