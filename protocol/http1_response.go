package protocol

import (
	"bytes"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/nczempin/httpd-go-uring/errors"
)

var headerSeparator = []byte("\r\n\r\n")

// ContentTypeFor infers the content type from the extension of name.
// Unknown extensions map to ContentTypeNone.
func ContentTypeFor(name string) string {
	switch path.Ext(name) {
	case ".html":
		return ContentTypeHTML
	case ".css":
		return ContentTypeCSS
	default:
		return ContentTypeNone
	}
}

// NewFileResponse builds a 200 response carrying the raw file contents
func NewFileResponse(version, contentType string, contents []byte) HttpResponse {
	return HttpResponse{
		Version:     version,
		Status:      StatusOK,
		ContentType: contentType,
		Body:        contents,
	}
}

// NewRedirectResponse builds a 301 response pointing at dir/
func NewRedirectResponse(version, contentType, dir string) HttpResponse {
	return HttpResponse{
		Version:     version,
		Status:      StatusMovedPermanently,
		ContentType: contentType,
		Location:    dir + "/",
		Body:        []byte(MovedPermanentlyPage(dir + "/index.html")),
	}
}

// NewNotFoundResponse builds a 404 response
func NewNotFoundResponse(version string) HttpResponse {
	return HttpResponse{
		Version:     version,
		Status:      StatusNotFound,
		ContentType: ContentTypeHTML,
		Body:        []byte(NotFoundPage()),
	}
}

// NewMethodNotAllowedResponse builds a 405 response naming the rejected method
func NewMethodNotAllowedResponse(version, method string) HttpResponse {
	return HttpResponse{
		Version:     version,
		Status:      StatusMethodNotAllowed,
		ContentType: ContentTypeHTML,
		Body:        []byte(MethodNotAllowedPage(method)),
	}
}

// NewInternalErrorResponse builds a 500 response with the generic error page
func NewInternalErrorResponse(version string) HttpResponse {
	return HttpResponse{
		Version:     version,
		Status:      StatusInternalServerError,
		ContentType: ContentTypeHTML,
		Body:        []byte(InternalServerErrorPage()),
	}
}

// Header serializes the status line and headers, including the blank line.
// The reason phrase is followed by a single space before the CRLF.
func (r HttpResponse) Header() []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %d %s \r\n", r.Version, int(r.Status), r.Status.Reason())
	fmt.Fprintf(&buf, "Content-Type: %s\r\n", r.ContentType)
	if r.Location != "" {
		fmt.Fprintf(&buf, "Location: %s\r\n", r.Location)
	}
	buf.Write(crlf)
	return buf.Bytes()
}

// Bytes returns the complete wire form: header block followed by the body
func (r HttpResponse) Bytes() []byte {
	header := r.Header()
	out := make([]byte, 0, len(header)+len(r.Body))
	out = append(out, header...)
	return append(out, r.Body...)
}

// ParseResponseHeader decodes a header block produced by HttpResponse.Header.
// HeaderSize is the offset of the first body byte in buf.
func ParseResponseHeader(buf []byte) (HttpResponseHeader, error) {
	pos := bytes.Index(buf, headerSeparator)
	if pos < 0 {
		return HttpResponseHeader{}, errors.NewProtocolError(
			errors.ProtocolErrorMalformed,
			"no header terminator found",
		)
	}

	lines := strings.Split(string(buf[:pos]), "\r\n")

	// Status line: "HTTP/1.1 200 OK "
	statusParts := strings.SplitN(lines[0], " ", 3)
	if len(statusParts) < 2 {
		return HttpResponseHeader{}, errors.NewProtocolError(
			errors.ProtocolErrorMalformed,
			"invalid status line format",
		)
	}

	statusCode, err := strconv.Atoi(statusParts[1])
	if err != nil {
		return HttpResponseHeader{}, errors.NewProtocolError(
			errors.ProtocolErrorMalformed,
			fmt.Sprintf("invalid status code: %s", statusParts[1]),
		)
	}

	header := HttpResponseHeader{
		Version:    statusParts[0],
		StatusCode: statusCode,
		HeaderSize: pos + len(headerSeparator),
	}
	if len(statusParts) == 3 {
		header.Reason = strings.TrimSuffix(statusParts[2], " ")
	}

	for _, line := range lines[1:] {
		key, value, found := strings.Cut(line, ":")
		if !found {
			return HttpResponseHeader{}, errors.NewProtocolError(
				errors.ProtocolErrorMalformed,
				fmt.Sprintf("invalid header line: %q", line),
			)
		}
		value = strings.TrimSpace(value)

		switch {
		case strings.EqualFold(key, "Content-Type"):
			header.ContentType = value
		case strings.EqualFold(key, "Location"):
			header.Location = value
			header.HasLocation = true
		}
	}

	return header, nil
}
