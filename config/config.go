// Package config holds the settings the server is started with.
package config

import (
	"flag"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// Transport names accepted by the -transport flag
const (
	TransportTcp     = "tcp"
	TransportUring   = "uring"
	TransportUringV2 = "uring-v2"
	TransportUnix    = "unix"
)

const (
	HelpTextHost      = `Host or IP address the server binds to.`
	HelpTextPort      = `Port the server listens on.`
	HelpTextRoot      = `Document root; every request path is resolved under it.`
	HelpTextTransport = `Socket implementation: tcp, uring, uring-v2 or unix.`
	HelpTextSocket    = `Socket path used by the unix transport.`
	HelpTextBuffer    = `Size of the single read taken from each connection.`
	HelpTextLogLevel  = `Log level: trace, debug, info, warn or error.`
)

// Config is the complete server configuration
type Config struct {
	Host           string
	Port           int
	DocumentRoot   string
	Transport      string
	SocketPath     string
	ReadBufferSize int
	LogLevel       string
}

// Default returns the configuration used when no flags are given
func Default() Config {
	return Config{
		Host:           "localhost",
		Port:           8080,
		DocumentRoot:   "www",
		Transport:      TransportTcp,
		SocketPath:     "/tmp/httpd.sock",
		ReadBufferSize: 1024,
		LogLevel:       zerolog.LevelInfoValue,
	}
}

// RegisterFlags binds every field to a flag on fs, using the current
// values as defaults
func (c *Config) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.Host, "host", c.Host, HelpTextHost)
	fs.IntVar(&c.Port, "port", c.Port, HelpTextPort)
	fs.StringVar(&c.DocumentRoot, "root", c.DocumentRoot, HelpTextRoot)
	fs.StringVar(&c.Transport, "transport", c.Transport, HelpTextTransport)
	fs.StringVar(&c.SocketPath, "socket", c.SocketPath, HelpTextSocket)
	fs.IntVar(&c.ReadBufferSize, "buffer", c.ReadBufferSize, HelpTextBuffer)
	fs.StringVar(&c.LogLevel, "log-level", c.LogLevel, HelpTextLogLevel)
}

// Parse builds a Config from command line arguments
func Parse(name string, args []string) (Config, error) {
	cfg := Default()

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	cfg.RegisterFlags(fs)
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	switch c.Transport {
	case TransportTcp, TransportUring, TransportUringV2:
		if c.Port < 0 || c.Port > 65535 {
			return errors.Errorf("port %d out of range", c.Port)
		}
	case TransportUnix:
		if c.SocketPath == "" {
			return errors.New("unix transport requires a socket path")
		}
	default:
		return errors.Errorf("unknown transport %q", c.Transport)
	}

	if c.DocumentRoot == "" {
		return errors.New("document root must not be empty")
	}

	if c.ReadBufferSize <= 0 {
		return errors.Errorf("read buffer size must be positive, got %d", c.ReadBufferSize)
	}

	if _, err := c.Level(); err != nil {
		return err
	}

	return nil
}

// Level returns the parsed log level
func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return level, nil
}
