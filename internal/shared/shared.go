// package shared defines shared helpers
package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// ConfigureLogger applies the level named in [LogConfig], leaving the logger untouched when the name is empty or unknown.
func ConfigureLogger(l *log.Logger, cfg LogConfig) error {
	if cfg.Level == "" {
		return nil
	}
	ll, err := log.ParseLevel(cfg.Level)
	if err != nil {
		return fmt.Errorf("%w: log level %q", ErrInvalidConfig, cfg.Level)
	}
	SetLogLevel(l, ll)
	return nil
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// NormalizeQuery lower-cases a search query and collapses runs of whitespace.
func NormalizeQuery(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// FormatDuration renders a duration in seconds as m:ss, or "--:--" when unknown.
func FormatDuration(seconds *int) string {
	if seconds == nil || *seconds < 0 {
		return "--:--"
	}
	return fmt.Sprintf("%d:%02d", *seconds/60, *seconds%60)
}

// MarshalJSON encodes v, indenting with two spaces when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
