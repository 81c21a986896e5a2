// Package logging provides categorized loggers for rollcall.
// Every category is a named child of one zap logger built by Initialize.
// Until Initialize (or Use) is called all categories are no-ops, so library
// packages stay silent under test.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Category represents a log category/system
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup, config resolution
	CategoryRoster  Category = "roster"  // Roster load/replace/save
	CategoryMatch   Category = "match"   // Turbo matcher
	CategoryExtract Category = "extract" // AI extraction routing and cleaning
	CategoryAPI     Category = "api"     // Local and cloud backend calls
	CategoryReport  Category = "report"  // Report building
	CategoryRun     Category = "run"     // Reconciliation runs
	CategoryWatch   Category = "watch"   // File watching
)

// Options mirrors config.LoggingConfig to avoid an import cycle.
type Options struct {
	Level      string          // debug, info, warn, error
	Format     string          // console, json
	File       string          // optional extra sink
	Categories map[string]bool // nil enables every category
}

var (
	mu         sync.RWMutex
	base       = zap.NewNop()
	categories map[string]bool
	loggers    = make(map[Category]*Logger)
)

// Initialize builds the process logger from opts and installs it.
func Initialize(opts Options) error {
	level, err := parseLevel(opts.Level)
	if err != nil {
		return err
	}

	var cfg zap.Config
	if opts.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		cfg.OutputPaths = append(cfg.OutputPaths, opts.File)
	}

	logger, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}

	mu.Lock()
	categories = opts.Categories
	mu.Unlock()
	Use(logger)

	Get(CategoryBoot).Debug("logging initialized: level=%s format=%s file=%q", level, opts.Format, opts.File)
	return nil
}

func parseLevel(s string) (zapcore.Level, error) {
	switch s {
	case "", "info":
		return zapcore.InfoLevel, nil
	case "debug":
		return zapcore.DebugLevel, nil
	case "warn", "warning":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("unknown log level %q", s)
	}
}

// Use installs an already built zap logger. Tests use it with zaptest/observer.
func Use(logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}
	mu.Lock()
	defer mu.Unlock()
	base = logger
	loggers = make(map[Category]*Logger)
}

// Base returns the underlying zap logger.
func Base() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return base
}

// Sync flushes buffered entries.
func Sync() {
	_ = Base().Sync()
}

// IsCategoryEnabled returns whether a specific category is enabled
func IsCategoryEnabled(category Category) bool {
	mu.RLock()
	defer mu.RUnlock()
	if categories == nil {
		return true
	}
	enabled, exists := categories[string(category)]
	if !exists {
		return true
	}
	return enabled
}

// Logger is a printf-style logger bound to one category.
type Logger struct {
	category Category
	sugar    *zap.SugaredLogger
}

// Get returns (or creates) a logger for the given category.
func Get(category Category) *Logger {
	mu.RLock()
	l, ok := loggers[category]
	mu.RUnlock()
	if ok {
		return l
	}

	enabled := IsCategoryEnabled(category)

	mu.Lock()
	defer mu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}
	zl := zap.NewNop()
	if enabled {
		zl = base.Named(string(category))
	}
	l = &Logger{category: category, sugar: zl.Sugar()}
	loggers[category] = l
	return l
}

func (l *Logger) Debug(format string, args ...interface{}) { l.sugar.Debugf(format, args...) }
func (l *Logger) Info(format string, args ...interface{})  { l.sugar.Infof(format, args...) }
func (l *Logger) Warn(format string, args ...interface{})  { l.sugar.Warnf(format, args...) }
func (l *Logger) Error(format string, args ...interface{}) { l.sugar.Errorf(format, args...) }

// =============================================================================
// CATEGORY HELPERS
// =============================================================================

func Boot(format string, args ...interface{})      { Get(CategoryBoot).Info(format, args...) }
func BootDebug(format string, args ...interface{}) { Get(CategoryBoot).Debug(format, args...) }
func BootWarn(format string, args ...interface{})  { Get(CategoryBoot).Warn(format, args...) }

func Roster(format string, args ...interface{})      { Get(CategoryRoster).Info(format, args...) }
func RosterDebug(format string, args ...interface{}) { Get(CategoryRoster).Debug(format, args...) }
func RosterWarn(format string, args ...interface{})  { Get(CategoryRoster).Warn(format, args...) }
func RosterError(format string, args ...interface{}) { Get(CategoryRoster).Error(format, args...) }

func MatchDebug(format string, args ...interface{}) { Get(CategoryMatch).Debug(format, args...) }

func Extract(format string, args ...interface{})      { Get(CategoryExtract).Info(format, args...) }
func ExtractDebug(format string, args ...interface{}) { Get(CategoryExtract).Debug(format, args...) }
func ExtractWarn(format string, args ...interface{})  { Get(CategoryExtract).Warn(format, args...) }
func ExtractError(format string, args ...interface{}) { Get(CategoryExtract).Error(format, args...) }

func API(format string, args ...interface{})      { Get(CategoryAPI).Info(format, args...) }
func APIDebug(format string, args ...interface{}) { Get(CategoryAPI).Debug(format, args...) }
func APIWarn(format string, args ...interface{})  { Get(CategoryAPI).Warn(format, args...) }

func ReportDebug(format string, args ...interface{}) { Get(CategoryReport).Debug(format, args...) }

func Watch(format string, args ...interface{})      { Get(CategoryWatch).Info(format, args...) }
func WatchError(format string, args ...interface{}) { Get(CategoryWatch).Error(format, args...) }

// =============================================================================
// RUN-SCOPED LOGGING
// =============================================================================

// RequestLogger carries a correlation id on every entry.
type RequestLogger struct {
	sugar *zap.SugaredLogger
}

// WithRequestID creates a logger whose entries carry run_id.
func WithRequestID(category Category, requestID string) *RequestLogger {
	return &RequestLogger{sugar: Get(category).sugar.With("run_id", requestID)}
}

// WithField adds a structured field.
func (r *RequestLogger) WithField(key string, value interface{}) *RequestLogger {
	return &RequestLogger{sugar: r.sugar.With(key, value)}
}

func (r *RequestLogger) Debug(format string, args ...interface{}) { r.sugar.Debugf(format, args...) }
func (r *RequestLogger) Info(format string, args ...interface{})  { r.sugar.Infof(format, args...) }
func (r *RequestLogger) Warn(format string, args ...interface{})  { r.sugar.Warnf(format, args...) }
func (r *RequestLogger) Error(format string, args ...interface{}) { r.sugar.Errorf(format, args...) }

// =============================================================================
// TIMING HELPERS
// =============================================================================

// Timer helps measure operation duration
type Timer struct {
	category Category
	op       string
	start    time.Time
}

// StartTimer begins timing an operation
func StartTimer(category Category, operation string) *Timer {
	return &Timer{category: category, op: operation, start: time.Now()}
}

// Stop ends the timer and logs the duration
func (t *Timer) Stop() time.Duration {
	elapsed := time.Since(t.start)
	Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	return elapsed
}

// StopWithThreshold logs warning if duration exceeds threshold
func (t *Timer) StopWithThreshold(threshold time.Duration) time.Duration {
	elapsed := time.Since(t.start)
	if elapsed > threshold {
		Get(t.category).Warn("%s took %v (threshold: %v)", t.op, elapsed, threshold)
	} else {
		Get(t.category).Debug("%s completed in %v", t.op, elapsed)
	}
	return elapsed
}
