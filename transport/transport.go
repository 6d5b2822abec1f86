package transport

// Conn is one accepted client connection
type Conn interface {
	// Read receives data from the peer
	// Returns the number of bytes read
	Read(buf []byte) (int, error)

	// Write sends data to the peer
	// Returns the number of bytes written
	Write(buf []byte) (int, error)

	// Close closes the connection
	Close() error
}

// Listener accepts connections on a bound socket
type Listener interface {
	// Accept blocks until a client connects
	Accept() (Conn, error)

	// Addr returns the bound address in host:port or socket path form
	Addr() string

	// Close stops accepting; a blocked Accept returns ListenerClosed
	Close() error
}
