package http1

import (
	"bytes"
	"fmt"
	"strings"

	"golang.org/x/net/http/httpguts"
)

const (
	defaultFrom      = "user@netkit"
	defaultUserAgent = "netkit-http/1.0"
)

// Request describes one HTTP request. The zero value is not usable; requests
// are created with NewRequest, which applies the protocol defaults (GET, the
// root URI, HTTP/1.0, no fields, empty body).
type Request struct {
	method Method
	uri    string
	major  int
	minor  int
	fields fieldMap
	body   []byte
}

// NewRequest returns a request with default values.
func NewRequest() *Request {
	return &Request{method: Get, uri: "/", major: 1, minor: 0}
}

// SetMethod sets the request method. The default is Get.
func (r *Request) SetMethod(m Method) { r.method = m }

// SetURI sets the path-and-query target of the request, relative to the
// host. A missing leading slash is prepended; an empty URI means the root.
func (r *Request) SetURI(uri string) {
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	r.uri = uri
}

// SetHTTPVersion sets the protocol version. The default is 1.0.
func (r *Request) SetHTTPVersion(major, minor int) {
	r.major = major
	r.minor = minor
}

// SetField sets the value of a header field, creating it if absent. Field
// names are case-insensitive; a later set overwrites the previous value. The
// value is stored verbatim. Sets with an invalid field name, or a value
// containing control bytes, are ignored.
func (r *Request) SetField(name, value string) {
	if !httpguts.ValidHeaderFieldName(name) {
		return
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		return
	}
	r.fields.set(name, value)
}

// Field returns the current value of a header field, or the empty string if
// the field is not set. Lookup is case-insensitive.
func (r *Request) Field(name string) string {
	value, _ := r.fields.get(name)
	return value
}

// SetBody sets the request body. A body only makes sense for POST requests,
// but it is serialized for every method; servers ignore it for GET and HEAD.
func (r *Request) SetBody(body []byte) {
	r.body = append(r.body[:0], body...)
}

// encode serializes the request for the given target host and port,
// completing any missing mandatory field. The caller-supplied fields are
// emitted first, in insertion order.
func (r *Request) encode(host string, port int) []byte {
	b := new(bytes.Buffer)
	uri := r.uri
	if !strings.HasPrefix(uri, "/") {
		uri = "/" + uri
	}
	fmt.Fprintf(b, "%s %s HTTP/%d.%d\r\n", r.method, uri, r.major, r.minor)

	for _, f := range r.fields.list {
		fmt.Fprintf(b, "%s: %s\r\n", f.Name, f.Value)
	}
	if !r.fields.has("From") {
		fmt.Fprintf(b, "From: %s\r\n", defaultFrom)
	}
	if !r.fields.has("User-Agent") {
		fmt.Fprintf(b, "User-Agent: %s\r\n", defaultUserAgent)
	}
	if !r.fields.has("Host") {
		if port != defaultPort {
			fmt.Fprintf(b, "Host: %s:%d\r\n", host, port)
		} else {
			fmt.Fprintf(b, "Host: %s\r\n", host)
		}
	}
	if r.method == Post && !r.fields.has("Content-Length") {
		fmt.Fprintf(b, "Content-Length: %d\r\n", len(r.body))
	}

	b.WriteString("\r\n")
	b.Write(r.body)
	return b.Bytes()
}
