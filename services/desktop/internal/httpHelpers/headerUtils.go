package httpHelpers

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Timings maps a phase name to how long it took.
type Timings map[string]time.Duration

// WriteTimings renders the timings as a Server-Timing header, with
// durations in milliseconds.
func WriteTimings(w http.ResponseWriter, timings Timings) {
	entries := make([]string, 0, len(timings))
	for name, d := range timings {
		entries = append(entries, fmt.Sprintf("%s;dur=%.2f", name, d.Seconds()*1000.0))
	}
	w.Header().Set("Server-Timing", strings.Join(entries, ","))
}
