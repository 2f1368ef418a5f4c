package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

var (
	loggers  sync.Map
	initOnce sync.Once
)

// Init configures the global logger. Verbosity counts up from 0
// (info) through 1 (debug) to 2+ (trace). When logFilePath is set,
// output is mirrored to a size-rotated file.
func Init(verbosity int, logFilePath string) error {
	var initErr error

	initOnce.Do(func() {
		switch {
		case verbosity == 1:
			logrus.SetLevel(logrus.DebugLevel)
		case verbosity > 1:
			logrus.SetLevel(logrus.TraceLevel)
		default:
			logrus.SetLevel(logrus.InfoLevel)
		}

		logrus.SetFormatter(&prefixed.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05",
			ForceFormatting: true,
		})

		if logFilePath != "" {
			// lumberjack opens lazily, so probe the path now to fail
			// at startup instead of on the first write.
			probe, err := os.OpenFile(logFilePath, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
			if err != nil {
				initErr = fmt.Errorf("open log file: %w", err)
				return
			}
			probe.Close()

			logrus.SetOutput(io.MultiWriter(os.Stderr, &lumberjack.Logger{
				Filename:   logFilePath,
				MaxSize:    10,
				MaxBackups: 5,
				MaxAge:     30,
			}))
		}
	})

	return initErr
}

// GetLogger returns a named log entry, reusing entries for the same prefix.
func GetLogger(prefix string) *logrus.Entry {
	if entry, ok := loggers.Load(prefix); ok {
		return entry.(*logrus.Entry)
	}

	entry := logrus.WithField("prefix", prefix)
	loggers.Store(prefix, entry)
	return entry
}
