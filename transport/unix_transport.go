package transport

import (
	"syscall"
)

// NewUringUnixListener binds a Unix domain socket at path backed by io_uring.
// A stale socket file at path is removed first and the file is removed
// again when the listener closes.
func NewUringUnixListener(path string) (*UringListener, error) {
	syscall.Unlink(path)

	sa := &syscall.SockaddrUnix{Name: path}
	return newUringListener(syscall.AF_UNIX, sa, path)
}
