package server

import (
	"io"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFile configures a rotating log file.
type LogFile struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LogWriter returns w, teed into a rotating file when lf.Path is set. The
// returned closer releases the file and is never nil.
func LogWriter(w io.Writer, lf LogFile) (io.Writer, io.Closer) {
	if lf.Path == "" {
		return w, nopCloser{}
	}
	f := &lumberjack.Logger{
		Filename:   lf.Path,
		MaxSize:    lf.MaxSizeMB,
		MaxBackups: lf.MaxBackups,
		MaxAge:     lf.MaxAgeDays,
		Compress:   true,
	}
	return io.MultiWriter(w, f), f
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
