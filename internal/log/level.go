package log

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/felixgeelhaar/rolegate/internal/errors"
)

// Level is a logging threshold. Its names are the values accepted by the
// log.level setting and the --log-level flag.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = []string{"debug", "info", "warn", "error"}

func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return fmt.Sprintf("level(%d)", int(l))
	}
	return levelNames[l]
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ParseLevel maps a log.level setting to a Level. "warning" is accepted for
// warn; anything else unknown is a configuration error.
func ParseLevel(s string) (Level, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if name == "warning" {
		return LevelWarn, nil
	}
	for i, n := range levelNames {
		if n == name {
			return Level(i), nil
		}
	}
	return LevelInfo, errors.New(errors.ErrCodeConfigInvalid, fmt.Sprintf("unknown log level %q", s)).
		WithSuggestion("Use one of: " + strings.Join(levelNames, ", "))
}
