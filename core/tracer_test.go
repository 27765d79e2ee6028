package core

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTracerFiltersByLevelAndComponent(t *testing.T) {
	var buf bytes.Buffer
	tracer := NewTracerWithWriter(&buf)
	tracer.Configure(TraceLevelInfo, "registry, parquet")

	tracer.Info(TraceComponentRegistry, "Function invoked", TraceContext("name", "md5", "rows", 3))
	tracer.Debug(TraceComponentRegistry, "too detailed")
	tracer.Info(TraceComponentSQL, "not enabled")

	entries := tracer.GetEntries()
	assert.Len(t, entries, 1)
	assert.Equal(t, "Function invoked", entries[0].Message)
	assert.Equal(t, "md5", entries[0].Context["name"])

	out := buf.String()
	assert.Contains(t, out, "component=REGISTRY")
	assert.Contains(t, out, "name=md5")
	assert.NotContains(t, out, "not enabled")

	tracer.Clear()
	assert.Empty(t, tracer.GetEntries())
}

func TestTracerAllComponents(t *testing.T) {
	tracer := NewTracerWithWriter(&bytes.Buffer{})
	tracer.Configure(TraceLevelVerbose, "ALL")
	for _, c := range allComponents {
		assert.True(t, tracer.IsEnabled(TraceLevelVerbose, c), c)
	}
	assert.Len(t, allComponents, 5)
	assert.False(t, tracer.IsEnabled(TraceLevelVerbose, TraceComponent("EVALUATOR")))
	tracer.DisableComponent(TraceComponentCLI)
	assert.False(t, tracer.IsEnabled(TraceLevelError, TraceComponentCLI))
}

func TestParseTraceLevel(t *testing.T) {
	assert.Equal(t, TraceLevelDebug, ParseTraceLevel("debug"))
	assert.Equal(t, TraceLevelVerbose, ParseTraceLevel("VERBOSE"))
	assert.Equal(t, TraceLevelOff, ParseTraceLevel("loud"))
}

func TestTraceContextSkipsOddKeys(t *testing.T) {
	ctx := TraceContext("a", 1, 2, "b", "dangling")
	assert.Equal(t, map[string]interface{}{"a": 1}, ctx)
}
