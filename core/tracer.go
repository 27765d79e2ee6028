package core

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// TraceLevel represents different levels of tracing
type TraceLevel int

const (
	TraceLevelOff TraceLevel = iota
	TraceLevelError
	TraceLevelWarn
	TraceLevelInfo
	TraceLevelDebug
	TraceLevelVerbose
)

// String returns the string representation of TraceLevel
func (tl TraceLevel) String() string {
	switch tl {
	case TraceLevelOff:
		return "OFF"
	case TraceLevelError:
		return "ERROR"
	case TraceLevelWarn:
		return "WARN"
	case TraceLevelInfo:
		return "INFO"
	case TraceLevelDebug:
		return "DEBUG"
	case TraceLevelVerbose:
		return "VERBOSE"
	default:
		return "UNKNOWN"
	}
}

// ParseTraceLevel maps a level name to its TraceLevel; unknown names are OFF
func ParseTraceLevel(name string) TraceLevel {
	for level := TraceLevelOff; level <= TraceLevelVerbose; level++ {
		if strings.EqualFold(level.String(), name) {
			return level
		}
	}
	return TraceLevelOff
}

// slogLevel maps a trace level onto the slog scale. VERBOSE sits below DEBUG.
func (tl TraceLevel) slogLevel() slog.Level {
	switch tl {
	case TraceLevelError:
		return slog.LevelError
	case TraceLevelWarn:
		return slog.LevelWarn
	case TraceLevelInfo:
		return slog.LevelInfo
	case TraceLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelDebug - 4
	}
}

// TraceComponent represents different components that can be traced
type TraceComponent string

const (
	TraceComponentRegistry TraceComponent = "REGISTRY"
	TraceComponentParquet  TraceComponent = "PARQUET"
	TraceComponentSQL      TraceComponent = "SQL"
	TraceComponentOutput   TraceComponent = "OUTPUT"
	TraceComponentCLI      TraceComponent = "CLI"
)

var allComponents = []TraceComponent{
	TraceComponentRegistry, TraceComponentParquet, TraceComponentSQL,
	TraceComponentOutput, TraceComponentCLI,
}

// TraceEntry represents a single trace entry
type TraceEntry struct {
	Timestamp time.Time
	Level     TraceLevel
	Component TraceComponent
	Message   string
	Context   map[string]interface{}
}

// Tracer records component-scoped trace entries and emits them through slog
type Tracer struct {
	level             TraceLevel
	enabledComponents map[TraceComponent]bool
	mutex             sync.RWMutex
	entries           []TraceEntry
	maxEntries        int
	logger            *slog.Logger
}

var globalTracer *Tracer
var tracerOnce sync.Once

// GetTracer returns the global tracer instance
func GetTracer() *Tracer {
	tracerOnce.Do(func() {
		globalTracer = NewTracer()
	})
	return globalTracer
}

// NewTracer creates a tracer writing to stderr, configured from environment variables
func NewTracer() *Tracer {
	return NewTracerWithWriter(os.Stderr)
}

// NewTracerWithWriter creates a tracer that writes text records to w
func NewTracerWithWriter(w io.Writer) *Tracer {
	tracer := &Tracer{
		level:             TraceLevelOff,
		enabledComponents: make(map[TraceComponent]bool),
		maxEntries:        1000,
	}
	tracer.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug - 4,
	}))
	tracer.configureFromEnv()
	return tracer
}

// configureFromEnv reads COLHASH_TRACE_LEVEL and COLHASH_TRACE_COMPONENTS
func (t *Tracer) configureFromEnv() {
	if levelStr := os.Getenv("COLHASH_TRACE_LEVEL"); levelStr != "" {
		t.level = ParseTraceLevel(levelStr)
	}
	if componentsStr := os.Getenv("COLHASH_TRACE_COMPONENTS"); componentsStr != "" {
		t.enableComponents(componentsStr)
	}
}

// Configure sets the level and a comma-separated component list ("ALL" enables every component)
func (t *Tracer) Configure(level TraceLevel, components string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.level = level
	t.enableComponents(components)
}

func (t *Tracer) enableComponents(components string) {
	if strings.EqualFold(strings.TrimSpace(components), "ALL") {
		for _, comp := range allComponents {
			t.enabledComponents[comp] = true
		}
		return
	}
	for _, comp := range strings.Split(components, ",") {
		if comp = strings.TrimSpace(comp); comp != "" {
			t.enabledComponents[TraceComponent(strings.ToUpper(comp))] = true
		}
	}
}

// SetLevel sets the trace level
func (t *Tracer) SetLevel(level TraceLevel) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.level = level
}

// EnableComponent enables tracing for a specific component
func (t *Tracer) EnableComponent(component TraceComponent) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.enabledComponents[component] = true
}

// DisableComponent disables tracing for a specific component
func (t *Tracer) DisableComponent(component TraceComponent) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.enabledComponents[component] = false
}

// IsEnabled checks if tracing is enabled for a given level and component
func (t *Tracer) IsEnabled(level TraceLevel, component TraceComponent) bool {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return t.level >= level && t.enabledComponents[component]
}

func (t *Tracer) trace(level TraceLevel, component TraceComponent, message string, context []map[string]interface{}) {
	if !t.IsEnabled(level, component) {
		return
	}

	entry := TraceEntry{
		Timestamp: time.Now(),
		Level:     level,
		Component: component,
		Message:   message,
		Context:   map[string]interface{}{},
	}
	if len(context) > 0 && context[0] != nil {
		entry.Context = context[0]
	}

	t.mutex.Lock()
	t.entries = append(t.entries, entry)
	if len(t.entries) > t.maxEntries {
		t.entries = t.entries[len(t.entries)-t.maxEntries:]
	}
	t.mutex.Unlock()

	t.emit(entry)
}

// emit writes the entry as one slog record with sorted context attributes
func (t *Tracer) emit(entry TraceEntry) {
	keys := make([]string, 0, len(entry.Context))
	for k := range entry.Context {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	attrs := make([]slog.Attr, 0, len(keys)+1)
	attrs = append(attrs, slog.String("component", string(entry.Component)))
	for _, k := range keys {
		attrs = append(attrs, slog.Any(k, entry.Context[k]))
	}
	t.logger.LogAttrs(context.Background(), entry.Level.slogLevel(), entry.Message, attrs...)
}

// Error logs an error-level trace
func (t *Tracer) Error(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelError, component, message, context)
}

// Warn logs a warning-level trace
func (t *Tracer) Warn(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelWarn, component, message, context)
}

// Info logs an info-level trace
func (t *Tracer) Info(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelInfo, component, message, context)
}

// Debug logs a debug-level trace
func (t *Tracer) Debug(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelDebug, component, message, context)
}

// Verbose logs a verbose-level trace
func (t *Tracer) Verbose(component TraceComponent, message string, context ...map[string]interface{}) {
	t.trace(TraceLevelVerbose, component, message, context)
}

// GetEntries returns a copy of the retained trace entries
func (t *Tracer) GetEntries() []TraceEntry {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	entries := make([]TraceEntry, len(t.entries))
	copy(entries, t.entries)
	return entries
}

// Clear clears all trace entries
func (t *Tracer) Clear() {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	t.entries = nil
}

// TraceContext creates a context map from key/value pairs
func TraceContext(pairs ...interface{}) map[string]interface{} {
	context := make(map[string]interface{})
	for i := 0; i < len(pairs)-1; i += 2 {
		if key, ok := pairs[i].(string); ok {
			context[key] = pairs[i+1]
		}
	}
	return context
}
