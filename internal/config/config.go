// Package config holds the explicit server configuration: the served root,
// the loopback address, and the optional devserve.yaml tunables.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"strconv"

	"github.com/Kush-Singh-26/devserve/internal/validator"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 8080
)

var ErrUsage = errors.New("usage: devserve <directory>")

// Config is fixed for the lifetime of a server. Nothing here is read from
// the process working directory after startup.
type Config struct {
	RootDir string `validate:"required,dir"`
	Host    string `validate:"required,ip"`
	Port    uint16
}

// FromArgs builds a Config from the command line arguments (without the
// program name). Exactly one positional argument, the directory to serve, is
// accepted.
func FromArgs(args []string) (*Config, error) {
	fs := flag.NewFlagSet("devserve", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() != 1 {
		return nil, ErrUsage
	}

	root, err := filepath.Abs(fs.Arg(0))
	if err != nil {
		return nil, fmt.Errorf("resolve root %q: %w", fs.Arg(0), err)
	}

	cfg := &Config{
		RootDir: root,
		Host:    DefaultHost,
		Port:    DefaultPort,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.Validator.Struct(c); err != nil {
		return fmt.Errorf("invalid config (root %q): %w", c.RootDir, err)
	}
	return nil
}

// Addr is the host:port the server binds to.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(int(c.Port)))
}
