package log

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// Format represents the output format for logs
type Format int

const (
	// FormatText is logfmt-style key=value output
	FormatText Format = iota
	// FormatJSON is one JSON object per entry
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "text"
}

// ParseFormat maps a log.format setting to a Format; "console" means text
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "console":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return FormatText, errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown log format %q", s)).
		WithSuggestion("Use text or json")
}

// Output represents where logs should be written
type Output struct {
	writer io.Writer
}

// Writer returns the underlying io.Writer, stderr when unset
func (o Output) Writer() io.Writer {
	if o.writer == nil {
		return os.Stderr
	}
	return o.writer
}

// NewOutput creates an Output from an io.Writer
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// Config holds configuration for the logger
type Config struct {
	// Level is the minimum level written
	Level Level

	Format Format
	Output Output

	// ServiceName is attached to every entry as "service" when set
	ServiceName string

	// RedactKeys are attribute keys whose values are never written.
	// Nil means DefaultRedactKeys.
	RedactKeys []string
}

// DefaultRedactKeys covers the credentials that pass through rolegate
var DefaultRedactKeys = []string{"token", "access", "password", "authorization", "signing_key"}

// CLIConfig keeps command output clean: warnings and errors as text on
// stderr, which leaves stdout to the command itself.
func CLIConfig() Config {
	return Config{
		Level:  LevelWarn,
		Format: FormatText,
	}
}

// DiscardConfig drops every entry
func DiscardConfig() Config {
	return Config{
		Level:  LevelError,
		Format: FormatText,
		Output: NewOutput(io.Discard),
	}
}
