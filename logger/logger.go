package logger

import (
	"io"
	"sync"

	prefixed "github.com/chappjc/logrus-prefix"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	globalLogger   *logrus.Logger
	getLoggerMutex sync.Mutex
)

// GetLogger returns a configured logger instance
func GetLogger(prefix string) *logrus.Entry {
	if prefix == "" {
		prefix = "<no prefix>"
	}
	getLoggerMutex.Lock()
	defer getLoggerMutex.Unlock()
	if globalLogger == nil {
		log := logrus.New()
		log.SetFormatter(&prefixed.TextFormatter{
			FullTimestamp: true,
		})
		globalLogger = log
	}
	return globalLogger.WithField("prefix", prefix)
}

// RotationConfig describes the rotating log file written by WithFile.
type RotationConfig struct {
	Filename   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

// WithFile logs to the specified file in addition to the existing output.
// The file is rotated by lumberjack.
func WithFile(log *logrus.Entry, rotation RotationConfig) io.Closer {
	w := &lumberjack.Logger{
		Filename:   rotation.Filename,
		MaxSize:    rotation.MaxSize,
		MaxBackups: rotation.MaxBackups,
		MaxAge:     rotation.MaxAge,
		Compress:   rotation.Compress,
	}
	log.Logger.AddHook(lfshook.NewHook(w, &logrus.TextFormatter{}))
	return w
}

// WithNoStdOutErr disables logging to stdout/stderr.
func WithNoStdOutErr(log *logrus.Entry) {
	log.Logger.SetOutput(io.Discard)
}

// SetLevel parses level and applies it to the shared logger.
func SetLevel(log *logrus.Entry, level string) error {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return err
	}
	log.Logger.SetLevel(lvl)
	return nil
}
