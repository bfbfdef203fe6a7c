package commands

import (
	"context"
	"io"
	"log/slog"

	glog "github.com/goliatone/go-logger/glog"
)

// stderrLogger adapts slog to the glog.Logger contract for --debug output.
type stderrLogger struct {
	logger *slog.Logger
}

func newStderrLogger(w io.Writer) glog.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	return stderrLogger{logger: slog.New(handler)}
}

func (l stderrLogger) Trace(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l stderrLogger) Debug(msg string, args ...any) { l.logger.Debug(msg, args...) }
func (l stderrLogger) Info(msg string, args ...any)  { l.logger.Info(msg, args...) }
func (l stderrLogger) Warn(msg string, args ...any)  { l.logger.Warn(msg, args...) }
func (l stderrLogger) Error(msg string, args ...any) { l.logger.Error(msg, args...) }
func (l stderrLogger) Fatal(msg string, args ...any) { l.logger.Error(msg, args...) }

func (l stderrLogger) WithContext(context.Context) glog.Logger {
	return l
}
