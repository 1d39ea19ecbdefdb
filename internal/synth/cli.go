package synth

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/licmaster/pkg/logger"
)

const logFilePermission = 0o600

// SetupLogging sends log output to console and, when logFile is set, to that
// file as well. The returned close function releases the file.
func SetupLogging(console io.Writer, logFile string) (func() error, error) {
	if logFile == "" {
		return func() error { return nil }, logger.InitWithWriter(console, logger.FormatText)
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(console, file), logger.FormatText); err != nil {
		_ = file.Close()
		return nil, err
	}
	return file.Close, nil
}
