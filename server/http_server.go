package server

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/nczempin/httpd-go-uring/config"
	"github.com/nczempin/httpd-go-uring/docroot"
	"github.com/nczempin/httpd-go-uring/errors"
	"github.com/nczempin/httpd-go-uring/transport"
)

// Delay bounds between retries after a failed accept
const (
	minAcceptDelay = 5 * time.Millisecond
	maxAcceptDelay = time.Second
)

// HttpServer accepts connections and answers exactly one request on each
type HttpServer struct {
	listener   transport.Listener
	builder    *ResponseBuilder
	bufferSize int
	logger     zerolog.Logger

	mu        sync.Mutex
	stopping  bool
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewHttpServer creates a server answering requests on listener
func NewHttpServer(listener transport.Listener, builder *ResponseBuilder, bufferSize int, logger zerolog.Logger) *HttpServer {
	return &HttpServer{
		listener:   listener,
		builder:    builder,
		bufferSize: bufferSize,
		logger:     logger,
	}
}

// New wires a server from cfg: listener, filesystem document root and builder
func New(cfg config.Config, logger zerolog.Logger) (*HttpServer, error) {
	listener, err := NewListener(cfg)
	if err != nil {
		return nil, err
	}

	builder := NewResponseBuilder(cfg.DocumentRoot, docroot.NewDir(), logger)
	return NewHttpServer(listener, builder, cfg.ReadBufferSize, logger), nil
}

// NewListener opens the listener selected by cfg.Transport
func NewListener(cfg config.Config) (transport.Listener, error) {
	var (
		listener transport.Listener
		err      error
	)

	switch cfg.Transport {
	case config.TransportTcp:
		listener, err = transport.NewTcpListener(cfg.Host, cfg.Port)
	case config.TransportUring:
		listener, err = transport.NewUringTcpListener(cfg.Host, cfg.Port)
	case config.TransportUringV2:
		listener, err = transport.NewUringTcpListenerV2(cfg.Host, cfg.Port)
	case config.TransportUnix:
		listener, err = transport.NewUringUnixListener(cfg.SocketPath)
	default:
		err = errors.NewInvalidArgumentError("unknown transport " + cfg.Transport)
	}

	if err != nil {
		return nil, err
	}
	return listener, nil
}

// Addr returns the address the server is bound to
func (s *HttpServer) Addr() string {
	return s.listener.Addr()
}

// Serve accepts connections until ctx is cancelled or Shutdown is called.
// It returns nil on an orderly stop.
func (s *HttpServer) Serve(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.closeListener()
	})
	defer stop()

	s.logger.Info().Str("addr", s.listener.Addr()).Msg("serving")

	var delay time.Duration
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.IsTransport(err, errors.TransportErrorListenerClosed) {
				s.wg.Wait()
				s.logger.Info().Msg("listener closed")
				return nil
			}

			if delay == 0 {
				delay = minAcceptDelay
			} else {
				delay *= 2
			}
			if delay > maxAcceptDelay {
				delay = maxAcceptDelay
			}
			s.logger.Error().Err(err).Dur("retry", delay).Msg("failed to accept connection")

			// Cancellation closes the listener, so the next Accept reports it
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		delay = 0

		if !s.track() {
			conn.Close()
			continue
		}
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

// Shutdown stops accepting and waits for in-flight connections
func (s *HttpServer) Shutdown() error {
	s.mu.Lock()
	s.stopping = true
	s.mu.Unlock()

	err := s.closeListener()
	s.wg.Wait()
	return err
}

// track registers a connection unless Shutdown has begun
func (s *HttpServer) track() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopping {
		return false
	}
	s.wg.Add(1)
	return true
}

func (s *HttpServer) closeListener() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.listener.Close()
	})
	return err
}

// handleConnection reads once, answers once and closes
func (s *HttpServer) handleConnection(conn transport.Conn) {
	defer conn.Close()

	buf := make([]byte, s.bufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		if errors.IsTransport(err, errors.TransportErrorConnectionClosed) {
			s.logger.Debug().Msg("connection closed before request")
			return
		}
		s.logger.Error().Err(err).Msg("failed to read request")
		return
	}

	resp := s.builder.Handle(buf[:n])

	if _, err := conn.Write(resp.Bytes()); err != nil {
		s.logger.Error().Err(err).Msg("failed to write response")
		return
	}

	s.logger.Info().
		Int("status", int(resp.Status)).
		Int("bytes", len(resp.Body)).
		Msg("served")
}
