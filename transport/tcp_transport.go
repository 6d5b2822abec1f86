package transport

import (
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"syscall"

	"github.com/nczempin/httpd-go-uring/errors"
)

// TcpListener implements Listener using the net package
type TcpListener struct {
	listener net.Listener
}

// NewTcpListener binds a TCP listener on host:port
func NewTcpListener(host string, port int) (*TcpListener, error) {
	addr := net.JoinHostPort(host, fmt.Sprint(port))

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		// Classify resolution failures separately from bind failures
		var dnsErr *net.DNSError
		if stderrors.As(err, &dnsErr) {
			return nil, errors.NewTransportError(
				errors.TransportErrorDnsFailure,
				fmt.Sprintf("failed to resolve %s", addr),
				err,
			)
		}
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketBindFailure,
			fmt.Sprintf("failed to listen on %s", addr),
			err,
		)
	}

	return &TcpListener{listener: listener}, nil
}

// Accept waits for the next connection
func (l *TcpListener) Accept() (Conn, error) {
	conn, err := l.listener.Accept()
	if err != nil {
		if stderrors.Is(err, net.ErrClosed) {
			return nil, errors.NewTransportError(
				errors.TransportErrorListenerClosed,
				"listener closed",
				err,
			)
		}
		return nil, errors.NewTransportError(
			errors.TransportErrorSocketAcceptFailure,
			"accept failed",
			err,
		)
	}

	// Responses are written in one call; disable Nagle's algorithm
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		tcpConn.SetNoDelay(true)
	}

	return &TcpConn{conn: conn}, nil
}

// Addr returns the bound address
func (l *TcpListener) Addr() string {
	return l.listener.Addr().String()
}

// Close stops the listener
func (l *TcpListener) Close() error {
	if err := l.listener.Close(); err != nil && !stderrors.Is(err, net.ErrClosed) {
		return errors.NewTransportError(
			errors.TransportErrorListenerClosed,
			"failed to close listener",
			err,
		)
	}
	return nil
}

// TcpConn implements Conn over a net.Conn
type TcpConn struct {
	conn net.Conn
}

// Write sends data over the TCP connection
func (c *TcpConn) Write(buf []byte) (int, error) {
	if c.conn == nil {
		return 0, errors.NewTransportError(errors.TransportErrorConnectionClosed, "connection closed", nil)
	}

	n, err := c.conn.Write(buf)
	if err != nil {
		// Check for broken pipe or connection reset
		if stderrors.Is(err, syscall.EPIPE) || stderrors.Is(err, syscall.ECONNRESET) {
			return n, errors.NewTransportError(errors.TransportErrorConnectionClosed, "connection reset during write", err)
		}
		return n, errors.NewTransportError(errors.TransportErrorSocketWriteFailure, "write failed", err)
	}

	return n, nil
}

// Read receives data from the TCP connection
func (c *TcpConn) Read(buf []byte) (int, error) {
	if c.conn == nil {
		return 0, errors.NewTransportError(errors.TransportErrorConnectionClosed, "connection closed", nil)
	}

	n, err := c.conn.Read(buf)
	if err != nil {
		if stderrors.Is(err, io.EOF) || (n == 0 && len(buf) > 0) {
			return n, errors.NewTransportError(errors.TransportErrorConnectionClosed, "connection closed by peer", err)
		}
		return n, errors.NewTransportError(errors.TransportErrorSocketReadFailure, "read failed", err)
	}

	return n, nil
}

// Close closes the TCP connection
func (c *TcpConn) Close() error {
	if c.conn == nil {
		return nil // Idempotent close
	}

	err := c.conn.Close()
	c.conn = nil

	if err != nil {
		return errors.NewTransportError(errors.TransportErrorConnectionClosed, "failed to close socket", err)
	}

	return nil
}
