package transport

import (
	"sync"
	"syscall"

	"github.com/iceber/iouring-go"
	"github.com/nczempin/httpd-go-uring/errors"
)

// ringEntries is the submission queue depth shared by a listener and
// all connections it accepts
const ringEntries = 32

// UringListener implements Listener using io_uring for accept, recv and
// send. One ring is shared by the listener and its connections and is
// torn down once the listener is closed and every connection is gone.
type UringListener struct {
	iour *iouring.IOURing
	fd   int
	addr string
	path string

	mu     sync.Mutex
	active int
	closed bool
}

// NewUringTcpListener binds a TCP listener on host:port backed by io_uring
func NewUringTcpListener(host string, port int) (*UringListener, error) {
	family, sa, err := tcpSockaddr(host, port)
	if err != nil {
		return nil, err
	}
	return newUringListener(family, sa, "")
}

func newUringListener(family int, sa syscall.Sockaddr, path string) (*UringListener, error) {
	iour, err := iouring.New(ringEntries)
	if err != nil {
		return nil, errors.NewTransportError(
			errors.TransportErrorIoUringInit,
			"failed to initialize io_uring",
			err,
		)
	}

	fd, err := listenSocket(family, sa)
	if err != nil {
		iour.Close()
		return nil, err
	}

	return &UringListener{
		iour: iour,
		fd:   fd,
		addr: socketAddr(fd),
		path: path,
	}, nil
}

// acquire registers a user of the ring; it fails once the listener is closed
func (l *UringListener) acquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	l.active++
	return true
}

// release drops a user of the ring and closes it when it was the last one
func (l *UringListener) release() {
	l.mu.Lock()
	l.active--
	done := l.closed && l.active == 0
	l.mu.Unlock()

	if done {
		l.iour.Close()
	}
}

func (l *UringListener) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

// Accept submits an accept request and waits for a client
func (l *UringListener) Accept() (Conn, error) {
	if !l.acquire() {
		return nil, errors.NewTransportError(
			errors.TransportErrorListenerClosed,
			"listener closed",
			nil,
		)
	}

	ch := make(chan iouring.Result, 1)
	if _, err := l.iour.SubmitRequest(iouring.Accept(l.fd), ch); err != nil {
		l.release()
		return nil, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to submit accept request",
			err,
		)
	}

	result := <-ch
	fd, err := result.ReturnInt()
	if err != nil || fd < 0 {
		l.release()
		if l.isClosed() {
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

	// The ring reference taken above is handed over to the connection.
	return &UringConn{listener: l, fd: fd}, nil
}

// Addr returns the bound address
func (l *UringListener) Addr() string {
	return l.addr
}

// Close stops accepting. Connections already accepted keep working.
func (l *UringListener) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	done := l.active == 0
	l.mu.Unlock()

	err := shutdownSocket(l.fd)
	if l.path != "" {
		syscall.Unlink(l.path)
	}
	if done {
		l.iour.Close()
	}
	return err
}

// UringConn implements Conn on an accepted socket using io_uring
type UringConn struct {
	listener *UringListener
	fd       int
	closed   bool
}

// Write sends data over the connection using io_uring
func (c *UringConn) Write(buf []byte) (int, error) {
	if c.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	totalWritten := 0
	for totalWritten < len(buf) {
		n, submitted, err := c.submit(iouring.Send(c.fd, buf[totalWritten:], 0))
		if !submitted {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorIoUringSubmit,
				"failed to submit write request",
				err,
			)
		}
		if err != nil {
			return totalWritten, errors.NewTransportError(
				errors.TransportErrorSocketWriteFailure,
				"write failed",
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
func (c *UringConn) Read(buf []byte) (int, error) {
	if c.closed {
		return 0, errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"connection closed",
			nil,
		)
	}

	n, submitted, err := c.submit(iouring.Recv(c.fd, buf, 0))
	if !submitted {
		return 0, errors.NewTransportError(
			errors.TransportErrorIoUringSubmit,
			"failed to submit read request",
			err,
		)
	}
	if err != nil {
		return 0, errors.NewTransportError(
			errors.TransportErrorSocketReadFailure,
			"read failed",
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

// submit runs one send or recv on the shared ring and waits for its
// completion. Send and Recv carry no result resolver, so the raw CQE
// result is the byte count and a negative value is -errno.
func (c *UringConn) submit(prepReq iouring.PrepRequest) (n int, submitted bool, err error) {
	ch := make(chan iouring.Result, 1)
	req, err := c.listener.iour.SubmitRequest(prepReq, ch)
	if err != nil {
		return 0, false, err
	}

	<-ch
	res, err := req.GetRes()
	if err != nil {
		return 0, true, err
	}
	if res < 0 {
		return 0, true, syscall.Errno(-res)
	}
	return res, true, nil
}

// Close closes the socket and releases the shared ring
func (c *UringConn) Close() error {
	if c.closed {
		return nil
	}

	c.closed = true
	err := syscall.Close(c.fd)
	c.listener.release()

	if err != nil {
		return errors.NewTransportError(
			errors.TransportErrorConnectionClosed,
			"failed to close socket",
			err,
		)
	}
	return nil
}
