package transport

import (
	"os"
	"sync"
	"syscall"

	"github.com/godzie44/go-uring/uring"
	"github.com/nczempin/httpd-go-uring/errors"
)

// connRingEntries is the queue depth of each per-connection ring
const connRingEntries = 8

// UringListenerV2 implements Listener with a blocking accept and
// godzie44/go-uring for connection I/O. go-uring rings are not safe for
// concurrent use, so every connection owns its own ring.
type UringListenerV2 struct {
	fd   int
	addr string

	mu     sync.Mutex
	closed bool
}

// NewUringTcpListenerV2 binds a TCP listener on host:port
func NewUringTcpListenerV2(host string, port int) (*UringListenerV2, error) {
	family, sa, err := tcpSockaddr(host, port)
	if err != nil {
		return nil, err
	}

	fd, err := listenSocket(family, sa)
	if err != nil {
		return nil, err
	}

	return &UringListenerV2{
		fd:   fd,
		addr: socketAddr(fd),
	}, nil
}

// Accept blocks in accept(2) and sets up a ring for the new connection
func (l *UringListenerV2) Accept() (Conn, error) {
	for {
		fd, _, err := syscall.Accept4(l.fd, syscall.SOCK_CLOEXEC)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			l.mu.Lock()
			closed := l.closed
			l.mu.Unlock()

			if closed {
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

		ring, err := uring.New(connRingEntries)
		if err != nil {
			syscall.Close(fd)
			return nil, errors.NewTransportError(
				errors.TransportErrorIoUringInit,
				"failed to initialize io_uring",
				err,
			)
		}

		return &UringConnV2{
			ring: ring,
			fd:   fd,
			file: os.NewFile(uintptr(fd), "socket"),
		}, nil
	}
}

// Addr returns the bound address
func (l *UringListenerV2) Addr() string {
	return l.addr
}

// Close stops accepting and wakes a blocked Accept
func (l *UringListenerV2) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	return shutdownSocket(l.fd)
}

// UringConnV2 implements Conn using a private go-uring ring
type UringConnV2 struct {
	ring *uring.Ring
	fd   int
	file *os.File
}

// Write sends data over the connection using io_uring
func (c *UringConnV2) Write(buf []byte) (int, error) {
	if c.fd < 0 {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		// Queue write operation
		sqe := uring.Write(c.file.Fd(), buf[totalWritten:], 0)
		if err := c.ring.QueueSQE(sqe, 0, 0); err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorIoUringSubmit,
				"failed to queue write request",
				err,
			)
		}

		n, err := c.complete()
		if err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorSocketWriteFailure,
				"write operation failed",
				err,
			)
		}

		if n <= 0 {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorConnectionClosed,
				"connection closed during write",
				nil,
			)
		}

		totalWritten += n
	}

	return totalWritten, nil
}

// Read receives data from the connection using io_uring
func (c *UringConnV2) Read(buf []byte) (int, error) {
	if c.fd < 0 {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	// Queue read operation
	sqe := uring.Read(c.file.Fd(), buf, 0)
	if err := c.ring.QueueSQE(sqe, 0, 0); err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to queue read request",
			err,
		)
	}

	n, err := c.complete()
	if err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"read operation failed",
			err,
		)
	}

	if n == 0 && len(buf) > 0 {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed by peer",
			nil,
		)
	}

	return n, nil
}

// complete submits the queued entry and waits for its completion
func (c *UringConnV2) complete() (int, error) {
	if _, err := c.ring.Submit(); err != nil {
		return 0, err
	}

	cqe, err := c.ring.WaitCQEvents(1)
	if err != nil {
		return 0, err
	}
	defer c.ring.SeenCQE(cqe)

	if err := cqe.Error(); err != nil {
		return 0, err
	}

	return int(cqe.Res), nil
}

// Close closes the socket and the connection's ring
func (c *UringConnV2) Close() error {
	if c.fd < 0 {
		return nil
	}

	var err error
	if c.file != nil {
		err = c.file.Close()
		c.file = nil
	}
	c.fd = -1

	if c.ring != nil {
		c.ring.Close()
		c.ring = nil
	}

	if err != nil {
		return errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"failed to close socket",
			err,
		)
	}
	return nil
}
