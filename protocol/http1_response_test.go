package protocol

import (
	"bytes"
	"strings"
	"testing"
)

func TestContentTypeFor(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"www/index.html", ContentTypeHTML},
		{"www/base.css", ContentTypeCSS},
		{"file.json", ContentTypeNone},
		{"www/deep", ContentTypeNone},
		{"www/archive.tar.css", ContentTypeCSS},
		{"www/dir.html/readme", ContentTypeNone},
	}

	for _, tt := range tests {
		if got := ContentTypeFor(tt.name); got != tt.want {
			t.Errorf("ContentTypeFor(%q): expected %q, got %q", tt.name, tt.want, got)
		}
	}
}

func TestStatus_Reason(t *testing.T) {
	tests := map[Status]string{
		StatusOK:                  "OK",
		StatusMovedPermanently:    "Moved Permanently",
		StatusNotFound:            "Not Found",
		StatusMethodNotAllowed:    "Method Not Allowed",
		StatusInternalServerError: "Internal Server Error",
		Status(418):               "",
	}

	for status, want := range tests {
		if got := status.Reason(); got != want {
			t.Errorf("Status %d: expected %q, got %q", status, want, got)
		}
	}
}

func TestHttpResponse_Header_WireFormat(t *testing.T) {
	resp := NewFileResponse("HTTP/1.1", ContentTypeCSS, []byte("body{}"))

	want := "HTTP/1.1 200 OK \r\nContent-Type: text/css\r\n\r\n"
	if got := string(resp.Header()); got != want {
		t.Errorf("Expected header %q, got %q", want, got)
	}

	if got := string(resp.Bytes()); got != want+"body{}" {
		t.Errorf("Expected body appended to header, got %q", got)
	}
}

func TestHttpResponse_Header_Location(t *testing.T) {
	resp := NewRedirectResponse("HTTP/1.1", ContentTypeNone, "deep")

	want := "HTTP/1.1 301 Moved Permanently \r\nContent-Type: \r\nLocation: deep/\r\n\r\n"
	if got := string(resp.Header()); got != want {
		t.Errorf("Expected header %q, got %q", want, got)
	}

	if !strings.Contains(string(resp.Body), "deep/index.html") {
		t.Errorf("Expected redirect page to link deep/index.html, got %q", resp.Body)
	}
}

func TestHttpResponse_Header_NoLocationUnlessRedirect(t *testing.T) {
	responses := []HttpResponse{
		NewFileResponse("HTTP/1.1", ContentTypeHTML, nil),
		NewNotFoundResponse("HTTP/1.1"),
		NewMethodNotAllowedResponse("HTTP/1.1", "POST"),
		NewInternalErrorResponse("HTTP/1.1"),
	}

	for _, resp := range responses {
		if bytes.Contains(resp.Header(), []byte("Location:")) {
			t.Errorf("Status %d: unexpected Location header in %q", resp.Status, resp.Header())
		}
		if !bytes.HasSuffix(resp.Header(), headerSeparator) {
			t.Errorf("Status %d: header must end with a blank line", resp.Status)
		}
	}
}

func TestHttpResponse_ErrorPages(t *testing.T) {
	tests := []struct {
		resp        HttpResponse
		status      Status
		contentType string
		contains    string
	}{
		{NewNotFoundResponse("HTTP/1.1"), StatusNotFound, ContentTypeHTML, "404"},
		{NewMethodNotAllowedResponse("HTTP/1.1", "PUT"), StatusMethodNotAllowed, ContentTypeHTML, "PUT Method Not Allowed"},
		{NewInternalErrorResponse("HTTP/1.0"), StatusInternalServerError, ContentTypeHTML, "500 Internal Server Error"},
	}

	for _, tt := range tests {
		if tt.resp.Status != tt.status {
			t.Errorf("Expected status %d, got %d", tt.status, tt.resp.Status)
		}
		if tt.resp.ContentType != tt.contentType {
			t.Errorf("Status %d: expected content type %q, got %q", tt.status, tt.contentType, tt.resp.ContentType)
		}
		if !strings.Contains(string(tt.resp.Body), tt.contains) {
			t.Errorf("Status %d: expected body to contain %q", tt.status, tt.contains)
		}
	}
}

func TestMethodNotAllowedPage_EscapesMethod(t *testing.T) {
	page := MethodNotAllowedPage("<script>")
	if strings.Contains(page, "<script>") {
		t.Error("Expected method to be escaped")
	}
	if !strings.Contains(page, "&lt;script&gt;") {
		t.Errorf("Expected escaped method in page, got %q", page)
	}
}

func TestParseResponseHeader_RoundTrip(t *testing.T) {
	responses := []HttpResponse{
		NewFileResponse("HTTP/1.1", ContentTypeHTML, []byte("<p>hi</p>")),
		NewFileResponse("HTTP/1.1", ContentTypeNone, []byte(`{"a":1}`)),
		NewRedirectResponse("HTTP/1.0", ContentTypeNone, "deep"),
		NewNotFoundResponse("HTTP/1.1"),
		NewMethodNotAllowedResponse("HTTP/1.1", "POST"),
		NewInternalErrorResponse("HTTP/1.1"),
	}

	for _, resp := range responses {
		wire := resp.Bytes()

		header, err := ParseResponseHeader(wire)
		if err != nil {
			t.Fatalf("Status %d: ParseResponseHeader failed: %v", resp.Status, err)
		}

		if header.StatusCode != int(resp.Status) {
			t.Errorf("Expected status %d, got %d", resp.Status, header.StatusCode)
		}
		if header.Reason != resp.Status.Reason() {
			t.Errorf("Expected reason %q, got %q", resp.Status.Reason(), header.Reason)
		}
		if header.Version != resp.Version {
			t.Errorf("Expected version %q, got %q", resp.Version, header.Version)
		}
		if header.ContentType != resp.ContentType {
			t.Errorf("Expected content type %q, got %q", resp.ContentType, header.ContentType)
		}
		if header.Location != resp.Location || header.HasLocation != (resp.Location != "") {
			t.Errorf("Expected location %q, got %q (present=%v)", resp.Location, header.Location, header.HasLocation)
		}
		if !bytes.Equal(wire[header.HeaderSize:], resp.Body) {
			t.Errorf("Status %d: body offset does not point at the body", resp.Status)
		}
	}
}

func TestParseResponseHeader_Failure(t *testing.T) {
	inputs := []string{
		"HTTP/1.1 200 OK \r\nContent-Type: text/html\r\n",
		"HTTP/1.1\r\n\r\n",
		"HTTP/1.1 abc OK \r\n\r\n",
		"HTTP/1.1 200 OK \r\nno-colon-here\r\n\r\n",
	}

	for _, in := range inputs {
		if _, err := ParseResponseHeader([]byte(in)); err == nil {
			t.Errorf("Expected error for %q", in)
		}
	}
}
