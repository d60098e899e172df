package control

import (
	"net/http"

	"go.uber.org/zap"
)

// ServerBuilderOption is a functional option applied to a server during construction via NewServer.
type ServerBuilderOption func(*server)

// WithLogger sets the logger used for connection and request logging.
//
// Parameters:
//   - logger: the logger instance
//
// Returns:
//   - ServerBuilderOption: a function that applies the logger option to a server
func WithLogger(logger *zap.Logger) ServerBuilderOption {
	return func(s *server) {
		if logger != nil {
			s.logger = logger.Named("control")
		}
	}
}

// WithAddr sets the listen address.
//
// Parameters:
//   - addr: host:port
//
// Returns:
//   - ServerBuilderOption: a function that applies the address option to a server
func WithAddr(addr string) ServerBuilderOption {
	return func(s *server) {
		if addr != "" {
			s.addr = addr
		}
	}
}

// WithCheckOrigin sets the WebSocket origin check. By default only same-origin requests upgrade.
//
// Parameters:
//   - check: returns true if the request may upgrade
//
// Returns:
//   - ServerBuilderOption: a function that applies the origin check option to a server
func WithCheckOrigin(check func(r *http.Request) bool) ServerBuilderOption {
	return func(s *server) {
		s.upgrader.CheckOrigin = check
	}
}
