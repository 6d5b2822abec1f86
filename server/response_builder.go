package server

import (
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/nczempin/httpd-go-uring/docroot"
	"github.com/nczempin/httpd-go-uring/errors"
	"github.com/nczempin/httpd-go-uring/protocol"
)

const (
	traversalMarker = "../"
	indexFile       = "index.html"
	allowedMethod   = "GET"
)

// ResponseBuilder maps a parsed request to exactly one terminal response.
// It holds no per-request state and is safe for concurrent use as long as
// its DocumentRoot is.
type ResponseBuilder struct {
	prefix string
	root   docroot.DocumentRoot
	logger zerolog.Logger
}

// NewResponseBuilder creates a builder serving files under prefix
func NewResponseBuilder(prefix string, root docroot.DocumentRoot, logger zerolog.Logger) *ResponseBuilder {
	return &ResponseBuilder{
		prefix: strings.TrimSuffix(prefix, "/"),
		root:   root,
		logger: logger,
	}
}

// Handle parses a raw request buffer and builds its response.
// Undecodable requests get the 500 response.
func (b *ResponseBuilder) Handle(buf []byte) protocol.HttpResponse {
	req, err := protocol.ParseRequest(buf)
	if err != nil {
		b.logger.Error().Err(err).Int("bytes", len(buf)).Msg("failed to parse request")
		return protocol.NewInternalErrorResponse(protocol.DefaultVersion)
	}

	b.logger.Debug().
		Str("method", req.Method).
		Str("path", req.Path).
		Str("version", req.Version).
		Msg("parsed request")

	return b.Build(req)
}

// Build decides the outcome for req. It never fails: every fault,
// including a panic, degrades to the 500 response.
func (b *ResponseBuilder) Build(req protocol.HttpRequest) (resp protocol.HttpResponse) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error().
				Str("path", req.Path).
				Str("panic", fmt.Sprint(r)).
				Msg("recovered while building response")
			resp = protocol.NewInternalErrorResponse(req.Version)
		}
	}()

	// Must run before the method check.
	if strings.Contains(req.Path, traversalMarker) {
		b.logger.Debug().Str("path", req.Path).Msg("rejected traversal attempt")
		return protocol.NewNotFoundResponse(req.Version)
	}

	if req.Method != allowedMethod {
		return protocol.NewMethodNotAllowedResponse(req.Version, req.Method)
	}

	name := b.prefix + req.Path
	if strings.HasSuffix(name, "/") {
		name += indexFile
	}
	contentType := protocol.ContentTypeFor(name)

	res := b.root.Resolve(name)
	switch res.Kind {
	case docroot.RegularFile:
		if !utf8.Valid(res.Contents) {
			return b.fault(req, name, errors.NewResourceError(
				errors.ResourceErrorEncoding,
				"file is not valid UTF-8 text",
				nil,
			))
		}
		return protocol.NewFileResponse(req.Version, contentType, res.Contents)

	case docroot.Directory:
		dir := path.Base(name)
		b.logger.Debug().Str("name", name).Str("location", dir+"/").Msg("redirecting directory")
		return protocol.NewRedirectResponse(req.Version, contentType, dir)

	case docroot.NotFound:
		return protocol.NewNotFoundResponse(req.Version)

	case docroot.Error:
		return b.fault(req, name, res.Err)

	default:
		return b.fault(req, name, errors.NewInvalidArgumentError(
			fmt.Sprintf("unexpected resolution kind %v", res.Kind),
		))
	}
}

// fault logs the detail server-side and returns the generic 500
func (b *ResponseBuilder) fault(req protocol.HttpRequest, name string, err error) protocol.HttpResponse {
	b.logger.Error().
		Err(err).
		Str("method", req.Method).
		Str("path", req.Path).
		Str("name", name).
		Msg("failed to serve resource")
	return protocol.NewInternalErrorResponse(req.Version)
}
