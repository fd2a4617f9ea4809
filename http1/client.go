package http1

import (
	"bytes"
	"io"
	"strings"
	"time"

	"github.com/stealthrocket/netkit/sockets"
)

const defaultPort = 80

// Client performs blocking request/response cycles against a single
// endpoint. Each request opens its own TCP connection and closes it before
// returning.
//
// Distinct clients may be used concurrently; a single client serves one
// request at a time.
type Client struct {
	host string
	port int
}

// NewClient returns a client with no endpoint configured. SetHost must be
// called before sending requests.
func NewClient() *Client {
	return new(Client)
}

// SetHost configures the target endpoint. The host may carry an "http://"
// scheme prefix, which is stripped; it is otherwise a host name or an IP
// literal. Port 0 selects the default port for the scheme (80).
func (c *Client) SetHost(host string, port int) {
	if l := strings.ToLower(host); strings.HasPrefix(l, "http://") {
		host = host[len("http://"):]
	}
	if port == 0 {
		port = defaultPort
	}
	c.host = host
	c.port = port
}

// Host returns the configured host, without scheme prefix.
func (c *Client) Host() string { return c.host }

// Port returns the effective port requests connect to.
func (c *Client) Port() int { return c.port }

// SendRequest performs one round-trip: connect, serialize and write the
// request (completing any missing mandatory header field), read the response
// until the server closes the connection, and parse it.
//
// Failures are encoded in the returned response rather than as errors: a
// connection, send, or receive problem yields StatusConnectionFailed, and a
// malformed response yields StatusInvalidResponse. A positive timeout bounds
// the connection attempt and every subsequent socket operation; zero relies
// on the operating system defaults.
//
// A nil request stands for the default GET of "/".
func (c *Client) SendRequest(req *Request, timeout time.Duration) *Response {
	if req == nil {
		req = NewRequest()
	}
	payload := req.encode(c.host, c.port)

	conn := sockets.NewTCPStream()
	if err := conn.Connect(c.host, c.port, timeout); err != nil {
		return connectionFailed()
	}
	defer conn.Close()

	if timeout > 0 {
		if err := conn.SetTimeout(timeout); err != nil {
			return connectionFailed()
		}
	}

	if err := conn.Send(payload); err != nil {
		return connectionFailed()
	}

	var received bytes.Buffer
	chunk := make([]byte, 4096)
	for {
		n, err := conn.Receive(chunk)
		received.Write(chunk[:n])
		if err == io.EOF {
			break
		}
		if err != nil {
			return connectionFailed()
		}
	}

	return parseResponse(received.Bytes())
}

func connectionFailed() *Response {
	return &Response{status: StatusConnectionFailed}
}
