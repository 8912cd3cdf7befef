package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"botdrop/internal/config"
	"botdrop/internal/paths"
)

// LogFileName is the rotating log file inside the logs directory.
const LogFileName = "botdrop.log"

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New creates a zerolog logger from the log section of the configuration.
// With file logging enabled, entries go to a size-rotated file in the state
// logs directory; stderr additionally receives them when the file is disabled
// or the level is debug or lower. The returned closer should be closed when
// logging is no longer needed.
func New(cfg config.LogConfig, p paths.StatePaths, stderr io.Writer) (zerolog.Logger, io.Closer, error) {
	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level)))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	var (
		writers []io.Writer
		closer  io.Closer = nopCloser{}
	)

	if cfg.FileEnabled() {
		if err := os.MkdirAll(p.LogsDir, 0o755); err != nil {
			return zerolog.Nop(), nil, fmt.Errorf("ensure logs directory: %w", err)
		}
		file := &lumberjack.Logger{
			Filename:   filepath.Join(p.LogsDir, LogFileName),
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     28,
		}
		writers = append(writers, file)
		closer = file
	}

	if stderr != nil && (!cfg.FileEnabled() || level <= zerolog.DebugLevel) {
		writers = append(writers, consoleWriter(cfg.Format, stderr))
	}

	if len(writers) == 0 {
		return zerolog.Nop(), closer, nil
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, closer, nil
}

func consoleWriter(format string, w io.Writer) io.Writer {
	if format == "json" {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen, NoColor: !isTerminal(w)}
}
