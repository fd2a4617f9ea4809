package http1

import (
	"bytes"
	"strconv"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// Response is the immutable result of a round-trip. Accessors never mutate
// the response, and a response is never modified after it is returned.
type Response struct {
	status Status
	major  int
	minor  int
	fields fieldMap
	body   []byte
}

// Status returns the status code of the response: either the code received
// from the server, verbatim, or one of the synthesized codes.
func (r *Response) Status() Status { return r.status }

// Version returns the protocol version advertised by the server, or (0, 0)
// for synthesized responses.
func (r *Response) Version() (major, minor int) { return r.major, r.minor }

// Field returns the value of a header field, or the empty string if the
// field is absent. Lookup is case-insensitive.
func (r *Response) Field(name string) string {
	value, _ := r.fields.get(name)
	return value
}

// Fields returns the header fields in the order the server sent them.
func (r *Response) Fields() []Field { return r.fields.fields() }

// Body returns a copy of the response body, decoded from its transfer
// framing.
func (r *Response) Body() []byte { return append([]byte(nil), r.body...) }

var crlf = []byte("\r\n")

func splitLine(b []byte) (line, rest []byte, ok bool) {
	return bytes.Cut(b, crlf)
}

// parseResponse decodes the bytes received on a connection into a response.
// Any malformation yields StatusInvalidResponse carrying whatever header
// fields and partial body were decoded before the parse failed; the version
// stays (0, 0) on such responses.
func parseResponse(data []byte) *Response {
	res := &Response{status: StatusInvalidResponse}

	line, rest, ok := splitLine(data)
	if !ok {
		return res
	}
	major, minor, code, ok := parseStatusLine(line)
	if !ok {
		return res
	}

	for {
		line, rest, ok = splitLine(rest)
		if !ok {
			// EOF in the middle of the header block.
			return res
		}
		if len(line) == 0 {
			break
		}
		name, value, found := bytes.Cut(line, []byte(":"))
		if !found || !httpguts.ValidHeaderFieldName(string(name)) {
			return res
		}
		res.fields.set(string(name), string(bytes.TrimLeft(value, " \t")))
	}

	// Body framing, in priority order: chunked transfer encoding, declared
	// content length, then everything up to EOF.
	switch te, _ := res.fields.get("Transfer-Encoding"); {
	case strings.EqualFold(strings.TrimSpace(te), "chunked"):
		body, ok := decodeChunked(rest)
		res.body = body
		if !ok {
			return res
		}
	case res.fields.has("Content-Length"):
		cl, _ := res.fields.get("Content-Length")
		n, err := strconv.Atoi(strings.TrimSpace(cl))
		if err != nil || n < 0 {
			return res
		}
		if len(rest) < n {
			res.body = rest
			return res
		}
		res.body = rest[:n]
	default:
		res.body = rest
	}

	res.status = Status(code)
	res.major = major
	res.minor = minor
	return res
}

func parseStatusLine(line []byte) (major, minor, code int, ok bool) {
	const prefix = "HTTP/"
	if !bytes.HasPrefix(line, []byte(prefix)) {
		return 0, 0, 0, false
	}
	version, after, _ := bytes.Cut(line[len(prefix):], []byte(" "))
	majorPart, minorPart, found := bytes.Cut(version, []byte("."))
	if !found {
		return 0, 0, 0, false
	}
	major, err := strconv.Atoi(string(majorPart))
	if err != nil {
		return 0, 0, 0, false
	}
	minor, err = strconv.Atoi(string(minorPart))
	if err != nil {
		return 0, 0, 0, false
	}
	codePart, _, _ := bytes.Cut(after, []byte(" "))
	if len(codePart) != 3 {
		return 0, 0, 0, false
	}
	code, err = strconv.Atoi(string(codePart))
	if err != nil || code < 0 {
		return 0, 0, 0, false
	}
	return major, minor, code, true
}

// decodeChunked undoes the chunked transfer framing: a sequence of
// hex-length-prefixed chunks terminated by a zero-length chunk, followed by
// optional trailer fields and an empty line. On a framing inconsistency it
// returns the chunks decoded so far and ok=false.
func decodeChunked(data []byte) (body []byte, ok bool) {
	for {
		line, rest, found := splitLine(data)
		if !found {
			return body, false
		}
		sizeTok := line
		if i := bytes.IndexByte(sizeTok, ';'); i >= 0 {
			// Chunk extensions are tolerated and ignored.
			sizeTok = sizeTok[:i]
		}
		size, err := strconv.ParseUint(string(bytes.TrimSpace(sizeTok)), 16, 31)
		if err != nil {
			return body, false
		}
		data = rest

		if size == 0 {
			// Discard trailer fields up to the empty line.
			for {
				line, rest, found = splitLine(data)
				if !found {
					return body, false
				}
				data = rest
				if len(line) == 0 {
					return body, true
				}
			}
		}

		n := int(size)
		if len(data) < n+2 {
			if n > len(data) {
				n = len(data)
			}
			return append(body, data[:n]...), false
		}
		body = append(body, data[:n]...)
		if !bytes.Equal(data[n:n+2], crlf) {
			return body, false
		}
		data = data[n+2:]
	}
}
