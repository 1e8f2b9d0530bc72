package server

import (
	"net"
	"strconv"
	"strings"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Host is the interface the API binds to. Empty means all interfaces.
	Host string `mapstructure:"host" default:"0.0.0.0"`
	// Port is the port where the server will listen.
	Port int `mapstructure:"port" default:"3000"`
	// ApiKey is the secret key required to access the API. Empty disables the check.
	ApiKey string `mapstructure:"api_key" default:""`
	// BodyLimitBytes caps request bodies.
	BodyLimitBytes int `mapstructure:"body_limit_bytes" default:"65536"`
}

// Address returns the listen address in host:port form.
func (c Config) Address() string {
	return JoinHostPort(c.Host, c.Port)
}

// JoinHostPort formats a listen address. An empty host binds every interface.
func JoinHostPort(host string, port int) string {
	host = strings.TrimSuffix(strings.TrimPrefix(host, "["), "]")
	return net.JoinHostPort(host, strconv.Itoa(port))
}
