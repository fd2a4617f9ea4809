// Package http1 implements a blocking HTTP/1.x client over raw TCP streams.
//
// Each request opens a fresh connection, performs one round-trip, and closes
// the connection; there is no keep-alive, TLS, redirect following, or cookie
// handling. Failures never surface as Go errors on the request path: they are
// encoded in the returned Response as the synthesized statuses
// StatusInvalidResponse and StatusConnectionFailed, so callers always inspect
// a response value.
package http1

// Method enumerates the request methods understood by the client.
type Method uint8

const (
	Get  Method = iota // retrieve the target resource
	Post               // send a body to the target resource
	Head               // retrieve the header block only
)

func (m Method) String() string {
	switch m {
	case Post:
		return "POST"
	case Head:
		return "HEAD"
	default:
		return "GET"
	}
}

// Status is a response status code. Codes below 1000 are produced by servers;
// the two synthesized codes represent local failure conditions and are never
// received off the wire.
type Status int

const (
	// 2xx: success
	StatusOK        Status = 200
	StatusCreated   Status = 201
	StatusAccepted  Status = 202
	StatusNoContent Status = 204

	// 3xx: redirection
	StatusMultipleChoices  Status = 300
	StatusMovedPermanently Status = 301
	StatusMovedTemporarily Status = 302
	StatusNotModified      Status = 304

	// 4xx: client error
	StatusBadRequest   Status = 400
	StatusUnauthorized Status = 401
	StatusForbidden    Status = 403
	StatusNotFound     Status = 404

	// 5xx: server error
	StatusInternalServerError Status = 500
	StatusNotImplemented      Status = 501
	StatusBadGateway          Status = 502
	StatusServiceNotAvailable Status = 503

	// Synthesized by the client, never received from a server.
	StatusInvalidResponse  Status = 1000
	StatusConnectionFailed Status = 1001
)

// Synthesized reports whether the status was generated by the client to
// represent a local failure rather than received from a server.
func (s Status) Synthesized() bool {
	return s == StatusInvalidResponse || s == StatusConnectionFailed
}
