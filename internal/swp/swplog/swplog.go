// Package swplog centralizes how sessions construct and tag their
// *zap.Logger, the way internal/gateway/svc wires a single production
// logger through the service context and internal/gateway/middleware
// attaches structured fields per request (here: per session).
package swplog

import (
	"go.uber.org/zap"
)

// New builds a production logger (JSON encoding, info level, sampled) for
// long-running binaries: cmd/swp-sender, cmd/swp-receiver, swp-lossproxy.
func New() (*zap.Logger, error) {
	return zap.NewProduction()
}

// NewDevelopment builds a human-readable, unsampled logger for local runs
// and tests: console encoding, caller info, debug level enabled.
func NewDevelopment() (*zap.Logger, error) {
	return zap.NewDevelopment()
}

// WithSession returns a child logger carrying the session's correlation ID
// and local/remote endpoints on every subsequent log line, mirroring the
// request_id field middleware.LoggerMiddleware attaches to every HTTP log.
func WithSession(log *zap.Logger, sessionID, local, remote string) *zap.Logger {
	return log.With(
		zap.String("session_id", sessionID),
		zap.String("local_addr", local),
		zap.String("remote_addr", remote),
	)
}
