package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger with additional functionality.
type Logger struct {
	*zap.Logger
}

// Option customizes the logger construction.
type Option func(*zap.Config)

// WithLevel sets the minimum log level.
func WithLevel(level zapcore.Level) Option {
	return func(cfg *zap.Config) {
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
}

// WithDevelopment switches to the human-readable development encoder.
func WithDevelopment() Option {
	return func(cfg *zap.Config) {
		devCfg := zap.NewDevelopmentConfig()
		cfg.Encoding = devCfg.Encoding
		cfg.EncoderConfig = devCfg.EncoderConfig
		cfg.Development = true
	}
}

// NewLogger creates a new logger instance with production configuration.
// Options may override the level or encoder.
func NewLogger(opts ...Option) (*Logger, error) {
	config := zap.NewProductionConfig()

	// Set the output to stdout
	config.OutputPaths = []string{"stdout"}

	// Set the error output to stderr
	config.ErrorOutputPaths = []string{"stderr"}

	// Set the log level
	config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)

	for _, opt := range opts {
		opt(&config)
	}

	// Create the logger
	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewNopLogger returns a logger that discards everything. Useful in tests.
func NewNopLogger() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Sync flushes any buffered log entries.
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
