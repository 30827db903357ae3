package internal

import "io"

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	version   string
	logOutput io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithVersion sets the version reported to MCP clients.
func WithVersion(v string) Option {
	return func(a *application) {
		a.version = v
	}
}

// WithLogOutput redirects the JSON log stream. The MCP stdio transport
// owns stdout, so it logs to stderr.
func WithLogOutput(w io.Writer) Option {
	return func(a *application) {
		a.logOutput = w
	}
}
