package device

import (
	"fmt"
	"io"

	"github.com/dza1/devseed/logger"
	"github.com/sirupsen/logrus"
)

var log = logger.GetLogger("plugins/device")

// InitLogger applies the level and, when a filename is set, adds a rotating
// log file next to stdout. With Quiet the file is the only output. The
// returned closer releases the file.
func InitLogger(loggingConfig LoggingConfig) (io.Closer, error) {
	return initLogger(log, loggingConfig)
}

func initLogger(entry *logrus.Entry, loggingConfig LoggingConfig) (io.Closer, error) {
	if err := logger.SetLevel(entry, loggingConfig.LogLevel); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	if loggingConfig.Filename == "" {
		return io.NopCloser(nil), nil
	}
	closer := logger.WithFile(entry, logger.RotationConfig{
		Filename:   loggingConfig.Filename,
		MaxSize:    loggingConfig.MaxSize,
		MaxBackups: loggingConfig.MaxBackups,
		MaxAge:     loggingConfig.MaxAge,
		Compress:   loggingConfig.Compress,
	})
	if loggingConfig.Quiet {
		logger.WithNoStdOutErr(entry)
	}
	return closer, nil
}

// SetLogLevel changes the level of the shared logger.
func SetLogLevel(level string) error {
	return logger.SetLevel(log, level)
}
