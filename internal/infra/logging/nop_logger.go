package logging

import "log/slog"

// NewNopLogger returns a logger that drops every record. GetLogger hands it
// out until Configure set an output, and for output "discard".
func NewNopLogger() Logger {
	return slog.New(slog.DiscardHandler)
}
