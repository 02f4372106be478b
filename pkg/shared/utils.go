package helpers

import (
	"io"
	"log/slog"
)

// CloseOrLog closes the closer and logs a warning when the close fails.
// Meant for defer sites where the error has nowhere better to go.
func CloseOrLog(closer io.Closer) {
	if err := closer.Close(); err != nil {
		slog.Warn("Failed to close", "error", err)
	}
}
