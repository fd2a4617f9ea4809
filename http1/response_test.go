package http1

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stealthrocket/netkit/internal/assert"
)

func TestParseResponse(t *testing.T) {
	tests := []struct {
		scenario string
		function func(*testing.T)
	}{
		{
			scenario: "a content-length delimited response",
			function: testParseContentLength,
		},

		{
			scenario: "a chunked response",
			function: testParseChunked,
		},

		{
			scenario: "a chunked response with extensions and trailers",
			function: testParseChunkedTrailers,
		},

		{
			scenario: "a HTTP/1.0 response delimited by connection close",
			function: testParseReadToEOF,
		},

		{
			scenario: "a HTTP/1.1 response without explicit framing",
			function: testParseHTTP11ReadToEOF,
		},

		{
			scenario: "unknown status codes are preserved verbatim",
			function: testParseUnknownStatus,
		},

		{
			scenario: "header fields keep insertion order and fold duplicates",
			function: testParseHeaderFields,
		},

		{
			scenario: "mutating a returned body does not alter the response",
			function: testParseBodyCopied,
		},

		{
			scenario: "a malformed preamble",
			function: testParseMalformedPreamble,
		},

		{
			scenario: "EOF in the middle of the header block",
			function: testParseTruncatedHeaders,
		},

		{
			scenario: "a malformed header line",
			function: testParseMalformedHeader,
		},

		{
			scenario: "a content length larger than the received bytes",
			function: testParseTruncatedBody,
		},

		{
			scenario: "a chunk size which is not hexadecimal",
			function: testParseBadChunkSize,
		},

		{
			scenario: "a truncated chunked body",
			function: testParseTruncatedChunk,
		},
	}

	for _, test := range tests {
		t.Run(test.scenario, func(t *testing.T) { test.function(t) })
	}
}

func testParseContentLength(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"))
	assert.Equal(t, res.Status(), StatusOK)
	major, minor := res.Version()
	assert.Equal(t, major, 1)
	assert.Equal(t, minor, 1)
	assert.Equal(t, res.Field("Content-Length"), "5")
	assert.Equal(t, res.Field("content-length"), "5")
	assert.Equal(t, string(res.Body()), "hello")
}

func testParseChunked(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
		"5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n"))
	assert.Equal(t, res.Status(), StatusOK)
	assert.Equal(t, string(res.Body()), "hello world")
}

func testParseChunkedTrailers(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: Chunked\r\n\r\n" +
		"5;ext=1\r\nhello\r\n0\r\nExpires: never\r\n\r\n"))
	assert.Equal(t, res.Status(), StatusOK)
	assert.Equal(t, string(res.Body()), "hello")
	assert.Equal(t, res.Field("Expires"), "")
}

func testParseReadToEOF(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.0 200 OK\r\n\r\nabc"))
	assert.Equal(t, res.Status(), StatusOK)
	major, minor := res.Version()
	assert.Equal(t, major, 1)
	assert.Equal(t, minor, 0)
	assert.Equal(t, string(res.Body()), "abc")
}

func testParseHTTP11ReadToEOF(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nServer: test\r\n\r\ntail"))
	assert.Equal(t, res.Status(), StatusOK)
	assert.Equal(t, string(res.Body()), "tail")
}

func testParseUnknownStatus(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 299 Whatever\r\nContent-Length: 0\r\n\r\n"))
	assert.Equal(t, res.Status(), Status(299))
	assert.Equal(t, len(res.Body()), 0)
}

func testParseHeaderFields(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 204 No Content\r\n" +
		"Server: demo\r\nX-A: 1\r\nx-a: 2\r\nContent-Length: 0\r\n\r\n"))
	assert.Equal(t, res.Status(), StatusNoContent)

	want := []Field{
		{Name: "Server", Value: "demo"},
		{Name: "X-A", Value: "2"},
		{Name: "Content-Length", Value: "0"},
	}
	if diff := cmp.Diff(want, res.Fields()); diff != "" {
		t.Fatal("unexpected header fields:", diff)
	}
}

func testParseBodyCopied(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello"))
	body := res.Body()
	for i := range body {
		body[i] = 'x'
	}
	assert.Equal(t, string(res.Body()), "hello")
}

func testParseMalformedPreamble(t *testing.T) {
	res := parseResponse([]byte("GARBAGE\r\n"))
	assert.Equal(t, res.Status(), StatusInvalidResponse)
	major, minor := res.Version()
	assert.Equal(t, major, 0)
	assert.Equal(t, minor, 0)
	assert.Equal(t, len(res.Body()), 0)
}

func testParseTruncatedHeaders(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nServer: test\r\nHalf"))
	assert.Equal(t, res.Status(), StatusInvalidResponse)
	assert.Equal(t, res.Field("Server"), "test")
}

func testParseMalformedHeader(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nno colon here\r\n\r\n"))
	assert.Equal(t, res.Status(), StatusInvalidResponse)
}

func testParseTruncatedBody(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nabc"))
	assert.Equal(t, res.Status(), StatusInvalidResponse)
	assert.Equal(t, res.Field("Content-Length"), "10")
	assert.Equal(t, string(res.Body()), "abc")
}

func testParseBadChunkSize(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\n"))
	assert.Equal(t, res.Status(), StatusInvalidResponse)
}

func testParseTruncatedChunk(t *testing.T) {
	res := parseResponse([]byte("HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n10\r\nonly"))
	assert.Equal(t, res.Status(), StatusInvalidResponse)
	assert.Equal(t, string(res.Body()), "only")
}
