package protocol

import (
	"bytes"
	"unicode/utf8"

	"github.com/nczempin/httpd-go-uring/errors"
)

var (
	space = []byte(" ")
	crlf  = []byte("\r\n")
)

// ParseRequest decodes the request line at the start of buf.
// Anything after the first CRLF (headers, body) is ignored.
func ParseRequest(buf []byte) (HttpRequest, error) {
	if !utf8.Valid(buf) {
		return HttpRequest{}, errors.NewProtocolError(
			errors.ProtocolErrorEncoding,
			"request is not valid UTF-8",
		)
	}

	method, rest, found := bytes.Cut(buf, space)
	if !found || len(method) == 0 {
		return HttpRequest{}, errors.NewProtocolError(
			errors.ProtocolErrorMalformed,
			"missing request method",
		)
	}

	path, rest, found := bytes.Cut(rest, space)
	if !found {
		return HttpRequest{}, errors.NewProtocolError(
			errors.ProtocolErrorMalformed,
			"missing request path",
		)
	}

	version, _, found := bytes.Cut(rest, crlf)
	if !found {
		return HttpRequest{}, errors.NewProtocolError(
			errors.ProtocolErrorMalformed,
			"missing CRLF after request line",
		)
	}

	return HttpRequest{
		Method:  string(method),
		Path:    string(path),
		Version: string(version),
	}, nil
}
