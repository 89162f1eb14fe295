package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/hashicorp/go-hclog"
)

// ParseLevel parses a log level name. The empty string means warn.
func ParseLevel(name string) (hclog.Level, error) {
	if strings.TrimSpace(name) == "" {
		return hclog.Warn, nil
	}
	level := hclog.LevelFromString(name)
	if level == hclog.NoLevel {
		return hclog.NoLevel, fmt.Errorf("unknown log level %q (valid levels: trace, debug, info, warn, error, off)", name)
	}
	return level, nil
}

// NewLogger builds a named logger writing to w. An unknown level falls back
// to warn. A nil writer or the off level yields a discarding logger.
func NewLogger(name string, w io.Writer, level string, json bool) hclog.Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		lvl = hclog.Warn
	}

	if w == nil || lvl == hclog.Off {
		return hclog.New(&hclog.LoggerOptions{
			Name:   name,
			Output: io.Discard,
			Level:  hclog.Off,
		})
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Output:     w,
		Level:      lvl,
		JSONFormat: json,
	})
}
