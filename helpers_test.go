package edgecontext

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/auth0/go-edge-context/core"
	"github.com/auth0/go-edge-context/envelope"
)

// countingValidator returns canned decisions by token and counts calls.
type countingValidator struct {
	decisions map[string]core.TrustDecision
	calls     atomic.Int32
}

func (v *countingValidator) Validate(_ context.Context, token string) core.TrustDecision {
	v.calls.Add(1)
	if d, ok := v.decisions[token]; ok {
		return d
	}
	return core.Invalid{}
}

// countingCodec wraps a codec and counts decodes.
type countingCodec struct {
	envelope.Codec
	decodes atomic.Int32
}

func (c *countingCodec) Decode(data []byte) (envelope.Envelope, error) {
	c.decodes.Add(1)
	return c.Codec.Decode(data)
}

type logEntry struct {
	level string
	msg   string
	args  []any
}

type mockLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *mockLogger) record(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *mockLogger) Debug(msg string, args ...any) { l.record("debug", msg, args) }
func (l *mockLogger) Info(msg string, args ...any)  { l.record("info", msg, args) }
func (l *mockLogger) Warn(msg string, args ...any)  { l.record("warn", msg, args) }
func (l *mockLogger) Error(msg string, args ...any) { l.record("error", msg, args) }

func (l *mockLogger) messages(level string) []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []string
	for _, e := range l.entries {
		if e.level == level {
			out = append(out, e.msg)
		}
	}
	return out
}

// recordingMetrics counts increments by name and tags.
type recordingMetrics struct {
	mu           sync.Mutex
	counters     map[string]int
	observations map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		counters:     make(map[string]int),
		observations: make(map[string]int),
	}
}

func (m *recordingMetrics) IncCounter(name string, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[metricKey(name, tags)]++
}

func (m *recordingMetrics) ObserveHistogram(name string, _ float64, tags map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observations[metricKey(name, tags)]++
}

func (m *recordingMetrics) counter(name string, tags map[string]string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters[metricKey(name, tags)]
}

func metricKey(name string, tags map[string]string) string {
	return fmt.Sprintf("%s%v", name, keysAndValues(tags))
}

func keysAndValues(tags map[string]string) []string {
	out := make([]string, 0, len(tags))
	for _, k := range keys(tags) {
		out = append(out, k+"="+tags[k])
	}
	return out
}

func int64Ptr(v int64) *int64 { return &v }

func validDecision(subject string, roles ...string) core.Valid {
	return core.NewValid(core.Claims{Subject: subject, Roles: roles})
}
