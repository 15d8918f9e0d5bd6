package logger

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/spf13/afero"
)

// FileLogger writes timestamped messages to a log file it owns.
// The file is truncated when the logger is created, so every run starts
// with a fresh log.
type FileLogger struct {
	*StandardLogger
	file afero.File
	once sync.Once
}

// NewFileLogger creates (or truncates) the file at path on fs and returns a
// logger writing to it with the given stdlib log flags.
func NewFileLogger(fs afero.Fs, path string, flags int) (*FileLogger, error) {
	f, err := fs.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return &FileLogger{
		StandardLogger: NewStandardLogger(log.New(f, "", flags)),
		file:           f,
	}, nil
}

// Close closes the underlying file. Safe to call multiple times.
func (f *FileLogger) Close() error {
	var err error
	f.once.Do(func() {
		err = f.file.Close()
	})
	return err
}

var _ Logger = (*FileLogger)(nil)
