// Package log provides structured logging with scan context.
//
// Two logger variants are available:
//   - Logger: Non-sugared zap.Logger for the scan runtime (high performance, structured fields)
//   - SugaredLogger: Printf-style logging for CLI/debug surfaces (convenience over performance)
//
// Use Logger.Sugar() to obtain a SugaredLogger when needed.
package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/justapithecus/seam/types"
)

// Logger provides structured logging with scan context.
// Every entry carries the directory under scan, so interleaved logs from
// concurrent decodes stay attributable.
//
// Use this for runtime paths. For CLI/debug surfaces, use Sugar() to get
// a SugaredLogger.
type Logger struct {
	zap *zap.Logger
}

// SugaredLogger provides printf-style logging for CLI and debug surfaces.
// Wraps zap.SugaredLogger with scan context.
type SugaredLogger struct {
	sugar *zap.SugaredLogger
}

// NewLogger creates a new logger with scan context.
// Output defaults to os.Stderr.
func NewLogger(scanMeta *types.ScanMeta) *Logger {
	return newLoggerWithWriter(scanMeta, os.Stderr)
}

// WithOutput returns a new logger with a different output writer.
func (l *Logger) WithOutput(w io.Writer) *Logger {
	return &Logger{zap: l.zap.WithOptions(zap.WrapCore(func(zapcore.Core) zapcore.Core {
		return newCore(w)
	}))}
}

func newCore(w io.Writer) zapcore.Core {
	enc := zapcore.EncoderConfig{
		TimeKey:     "timestamp",
		LevelKey:    "level",
		MessageKey:  "message",
		EncodeTime:  zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	return zapcore.NewCore(zapcore.NewJSONEncoder(enc), zapcore.AddSync(w), zapcore.DebugLevel)
}

// newLoggerWithWriter creates a logger writing to the specified writer.
func newLoggerWithWriter(scanMeta *types.ScanMeta, w io.Writer) *Logger {
	ctx := []zap.Field{zap.String("dir", scanMeta.Dir)}
	if scanMeta.Output != "" {
		ctx = append(ctx, zap.String("output", scanMeta.Output))
	}
	return &Logger{zap: zap.New(newCore(w)).With(ctx...)}
}

// emit routes an entry through zap's Check path so disabled levels cost
// nothing beyond the check itself.
func (l *Logger) emit(level zapcore.Level, message string, fields map[string]any) {
	if ce := l.zap.Check(level, message); ce != nil {
		ce.Write(zap.Any("fields", fields))
	}
}

// Debug logs at debug level.
func (l *Logger) Debug(message string, fields map[string]any) {
	l.emit(zapcore.DebugLevel, message, fields)
}

// Info logs at info level.
func (l *Logger) Info(message string, fields map[string]any) {
	l.emit(zapcore.InfoLevel, message, fields)
}

// Warn logs at warn level.
func (l *Logger) Warn(message string, fields map[string]any) {
	l.emit(zapcore.WarnLevel, message, fields)
}

// Error logs at error level.
func (l *Logger) Error(message string, fields map[string]any) {
	l.emit(zapcore.ErrorLevel, message, fields)
}

// Sugar returns a SugaredLogger for printf-style logging.
// Use for CLI/debug surfaces where convenience matters more than performance.
func (l *Logger) Sugar() *SugaredLogger {
	return &SugaredLogger{sugar: l.zap.Sugar()}
}

func (s *SugaredLogger) Debugf(template string, args ...any) { s.sugar.Debugf(template, args...) }

func (s *SugaredLogger) Infof(template string, args ...any) { s.sugar.Infof(template, args...) }

func (s *SugaredLogger) Warnf(template string, args ...any) { s.sugar.Warnf(template, args...) }

func (s *SugaredLogger) Errorf(template string, args ...any) { s.sugar.Errorf(template, args...) }

// With returns a SugaredLogger with additional context fields.
func (s *SugaredLogger) With(args ...any) *SugaredLogger {
	return &SugaredLogger{sugar: s.sugar.With(args...)}
}
