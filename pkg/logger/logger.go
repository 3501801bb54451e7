package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var globalLogger = zerolog.New(io.Discard)

type Config struct {
	Level      string
	File       string
	Console    bool
	Pretty     bool
	MaxSize    int
	MaxAge     int
	MaxBackups int

	// Out receives console output. Defaults to stderr so that reports
	// printed on stdout stay clean.
	Out io.Writer
}

func Init(debug bool) {
	InitWithConfig(DefaultConfig(debug))
}

func DefaultConfig(debug bool) Config {
	cfg := Config{
		Level:      "info",
		Console:    true,
		Pretty:     true,
		MaxSize:    10, // megabytes
		MaxAge:     30, // days
		MaxBackups: 5,
	}

	if debug {
		cfg.Level = "debug"
	}

	return cfg
}

func InitWithConfig(cfg Config) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	out := cfg.Out
	if out == nil {
		out = os.Stderr
	}

	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, consoleWriter(out, cfg.Pretty))
	}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err != nil {
			fmt.Fprintf(out, "Failed to create log directory: %v\n", err)
		} else {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	var writer io.Writer
	switch len(writers) {
	case 0:
		writer = io.Discard
	case 1:
		writer = writers[0]
	default:
		writer = io.MultiWriter(writers...)
	}

	globalLogger = zerolog.New(writer).With().
		Timestamp().
		Logger()

	log.Logger = globalLogger
}

func consoleWriter(out io.Writer, pretty bool) zerolog.ConsoleWriter {
	return zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: "15:04:05",
		NoColor:    !pretty,
		FormatLevel: func(i interface{}) string {
			if !pretty {
				return fmt.Sprintf("[%s]", i)
			}

			s, _ := i.(string)
			switch s {
			case "trace":
				return "\033[35m🔍\033[0m"
			case "debug":
				return "\033[36m🐛\033[0m"
			case "info":
				return "\033[32mℹ️\033[0m"
			case "warn":
				return "\033[33m⚠️\033[0m"
			case "error":
				return "\033[31m❌\033[0m"
			case "fatal":
				return "\033[91m💀\033[0m"
			default:
				return "\033[37m📝\033[0m"
			}
		},
		FormatMessage: func(i interface{}) string {
			return fmt.Sprintf("%s", i)
		},
		FormatFieldName: func(i interface{}) string {
			if !pretty {
				return fmt.Sprintf("%s=", i)
			}
			return fmt.Sprintf("\033[36m%s\033[0m=", i)
		},
		FormatFieldValue: func(i interface{}) string {
			if !pretty {
				return fmt.Sprintf("%s", i)
			}
			return fmt.Sprintf("\033[37m%s\033[0m", i)
		},
	}
}

// Convenience functions
func Debug(msg string, keysAndValues ...interface{}) {
	event := globalLogger.Debug()
	addFields(event, keysAndValues...)
	event.Msg(msg)
}

func Info(msg string, keysAndValues ...interface{}) {
	event := globalLogger.Info()
	addFields(event, keysAndValues...)
	event.Msg(msg)
}

func Warn(msg string, keysAndValues ...interface{}) {
	event := globalLogger.Warn()
	addFields(event, keysAndValues...)
	event.Msg(msg)
}

func Error(msg string, keysAndValues ...interface{}) {
	event := globalLogger.Error()
	addFields(event, keysAndValues...)
	event.Msg(msg)
}

func addFields(event *zerolog.Event, keysAndValues ...interface{}) {
	for i := 0; i < len(keysAndValues); i += 2 {
		if i+1 < len(keysAndValues) {
			key, ok := keysAndValues[i].(string)
			if ok {
				value := keysAndValues[i+1]
				if err, isErr := value.(error); isErr {
					event.AnErr(key, err)
					continue
				}
				event.Interface(key, value)
			}
		}
	}
}

// Context-aware logging
type ContextLogger struct {
	fields map[string]interface{}
}

func WithContext(fields map[string]interface{}) *ContextLogger {
	return &ContextLogger{fields: fields}
}

// With returns a copy of the logger carrying the extra fields.
func (cl *ContextLogger) With(keysAndValues ...interface{}) *ContextLogger {
	fields := make(map[string]interface{}, len(cl.fields)+len(keysAndValues)/2)
	for key, value := range cl.fields {
		fields[key] = value
	}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = keysAndValues[i+1]
		}
	}
	return &ContextLogger{fields: fields}
}

func (cl *ContextLogger) Debug(msg string, keysAndValues ...interface{}) {
	cl.emit(globalLogger.Debug(), msg, keysAndValues...)
}

func (cl *ContextLogger) Info(msg string, keysAndValues ...interface{}) {
	cl.emit(globalLogger.Info(), msg, keysAndValues...)
}

func (cl *ContextLogger) Warn(msg string, keysAndValues ...interface{}) {
	cl.emit(globalLogger.Warn(), msg, keysAndValues...)
}

func (cl *ContextLogger) Error(msg string, keysAndValues ...interface{}) {
	cl.emit(globalLogger.Error(), msg, keysAndValues...)
}

// The global logger is read at emit time so component loggers created
// before Init still honour the final configuration.
func (cl *ContextLogger) emit(event *zerolog.Event, msg string, keysAndValues ...interface{}) {
	for key, value := range cl.fields {
		event.Interface(key, value)
	}
	addFields(event, keysAndValues...)
	event.Msg(msg)
}

// Structured logging helpers
func LogError(err error, msg string, keysAndValues ...interface{}) {
	event := globalLogger.Error().Err(err)
	addFields(event, keysAndValues...)
	event.Msg(msg)
}

// Performance logging
func LogDuration(name string, start time.Time, keysAndValues ...interface{}) {
	event := globalLogger.Debug().
		Str("operation", name).
		Dur("duration", time.Since(start))
	addFields(event, keysAndValues...)
	event.Msg("Operation completed")
}

// SetTestMode silences all logging.
func SetTestMode() {
	globalLogger = zerolog.New(io.Discard).Level(zerolog.Disabled)
	log.Logger = globalLogger
}

func SetLevel(level string) error {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(lvl)
	return nil
}

func GetLevel() string {
	return zerolog.GlobalLevel().String()
}

// Component logger for better organization
func Component(name string) *ContextLogger {
	return WithContext(map[string]interface{}{
		"component": name,
	})
}
