// Package log provides the leveled, component-named logger used across the server.
package log

import (
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const colorReset = "\033[0m"

// Logger writes Info, Warning and Error lines tagged with a coloured component name.
type Logger struct {
	sugar *zap.SugaredLogger
}

// New returns a console logger writing to w. The prefix names the component and
// is printed in color.
func New(prefix, color string, w io.Writer) (*Logger, error) {
	if w == nil {
		return nil, errors.New("log writer is required")
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05")
	encoderConfig.EncodeCaller = nil
	encoderConfig.StacktraceKey = ""

	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.AddSync(w), zapcore.DebugLevel)
	name := fmt.Sprintf("%s[%s]%s", color, prefix, colorReset)
	return &Logger{sugar: zap.New(core).Named(name).Sugar()}, nil
}

// NewNop returns a Logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Info(msg string) {
	l.sugar.Info(msg)
}

func (l *Logger) Warning(msg string) {
	l.sugar.Warn(msg)
}

func (l *Logger) Error(msg string) {
	l.sugar.Error(msg)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
