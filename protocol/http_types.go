package protocol

import "fmt"

// DefaultVersion is used when the request line could not be decoded
const DefaultVersion = "HTTP/1.1"

// Content types the server knows how to label
const (
	ContentTypeNone = ""
	ContentTypeHTML = "text/html"
	ContentTypeCSS  = "text/css"
)

// HttpRequest is the decoded request line. Headers and body are not kept.
type HttpRequest struct {
	Method  string
	Path    string
	Version string
}

// String renders the request line without the trailing CRLF
func (r HttpRequest) String() string {
	return fmt.Sprintf("%s %s %s", r.Method, r.Path, r.Version)
}

// Status is one of the response codes the server can produce
type Status int

const (
	StatusOK                  Status = 200
	StatusMovedPermanently    Status = 301
	StatusNotFound            Status = 404
	StatusMethodNotAllowed    Status = 405
	StatusInternalServerError Status = 500
)

// Reason returns the fixed reason phrase for the status
func (s Status) Reason() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusMovedPermanently:
		return "Moved Permanently"
	case StatusNotFound:
		return "Not Found"
	case StatusMethodNotAllowed:
		return "Method Not Allowed"
	case StatusInternalServerError:
		return "Internal Server Error"
	default:
		return ""
	}
}

// HttpResponse is a terminal response. Values are built by the New*
// constructors and not modified afterwards.
type HttpResponse struct {
	Version     string
	Status      Status
	ContentType string
	Location    string
	Body        []byte
}

// HttpResponseHeader is the decoded form of a serialized header block
type HttpResponseHeader struct {
	Version     string
	StatusCode  int
	Reason      string
	ContentType string
	Location    string
	HasLocation bool
	HeaderSize  int
}
