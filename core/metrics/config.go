package metrics

import "rank-api/core/server"

// Config holds configuration for the Prometheus endpoint.
type Config struct {
	// Enabled starts the metrics server next to the API.
	Enabled bool `mapstructure:"enabled" default:"true"`
	// Host is the interface the metrics server binds to.
	Host string `mapstructure:"host" default:"0.0.0.0"`
	// Port is the metrics server port.
	Port int `mapstructure:"port" default:"9000"`
	// Path is where the exposition is served, in addition to "/".
	Path string `mapstructure:"path" default:"/metrics"`
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"rank_api"`
}

// Address returns the metrics listen address in host:port form.
func (c Config) Address() string {
	return server.JoinHostPort(c.Host, c.Port)
}
