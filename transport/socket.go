package transport

import (
	"fmt"
	"net"
	"strconv"
	"syscall"

	"github.com/nczempin/httpd-go-uring/errors"
)

// listenBacklog matches the kernel default cap
const listenBacklog = syscall.SOMAXCONN

// tcpSockaddr resolves host:port into a socket family and address
func tcpSockaddr(host string, port int) (int, syscall.Sockaddr, error) {
	addr := net.JoinHostPort(host, strconv.Itoa(port))
	tcpAddr, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		return 0, nil, errors.NewTransportError(
			errors.TransportErrorDnsFailure,
			fmt.Sprintf("failed to resolve %s", addr),
			err,
		)
	}

	// Convert to syscall.Sockaddr
	if ip4 := tcpAddr.IP.To4(); ip4 != nil || tcpAddr.IP == nil {
		sa4 := &syscall.SockaddrInet4{Port: tcpAddr.Port}
		copy(sa4.Addr[:], ip4)
		return syscall.AF_INET, sa4, nil
	}
	sa6 := &syscall.SockaddrInet6{Port: tcpAddr.Port}
	copy(sa6.Addr[:], tcpAddr.IP)
	return syscall.AF_INET6, sa6, nil
}

// listenSocket creates a bound, listening stream socket
func listenSocket(family int, sa syscall.Sockaddr) (int, error) {
	fd, err := syscall.Socket(family, syscall.SOCK_STREAM|syscall.SOCK_CLOEXEC, 0)
	if err != nil {
		return -1, errors.NewTransportError(
			errors.TransportErrorSocketCreateFailure,
			"failed to create socket",
			err,
		)
	}

	if family != syscall.AF_UNIX {
		if err := syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1); err != nil {
			syscall.Close(fd)
			return -1, errors.NewTransportError(
				errors.TransportErrorSocketCreateFailure,
				"failed to set SO_REUSEADDR",
				err,
			)
		}
	}

	if err := syscall.Bind(fd, sa); err != nil {
		syscall.Close(fd)
		return -1, errors.NewTransportError(
			errors.TransportErrorSocketBindFailure,
			"failed to bind socket",
			err,
		)
	}

	if err := syscall.Listen(fd, listenBacklog); err != nil {
		syscall.Close(fd)
		return -1, errors.NewTransportError(
			errors.TransportErrorSocketListenFailure,
			"failed to listen on socket",
			err,
		)
	}

	return fd, nil
}

// socketAddr formats the locally bound address of fd
func socketAddr(fd int) string {
	sa, err := syscall.Getsockname(fd)
	if err != nil {
		return ""
	}

	switch sa := sa.(type) {
	case *syscall.SockaddrInet4:
		return net.JoinHostPort(net.IP(sa.Addr[:]).String(), strconv.Itoa(sa.Port))
	case *syscall.SockaddrInet6:
		return net.JoinHostPort(net.IP(sa.Addr[:]).String(), strconv.Itoa(sa.Port))
	case *syscall.SockaddrUnix:
		return sa.Name
	default:
		return ""
	}
}

// shutdownSocket wakes any accept blocked on fd and closes it
func shutdownSocket(fd int) error {
	syscall.Shutdown(fd, syscall.SHUT_RDWR)
	if err := syscall.Close(fd); err != nil {
		return errors.NewTransportError(
			errors.TransportErrorListenerClosed,
			"failed to close listening socket",
			err,
		)
	}
	return nil
}
