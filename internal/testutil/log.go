package testutil

import (
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

const (
	logLevelKey   = "level"
	logMessageKey = "msg"
	logTimeKey    = "ts"
)

// LogEntry is a single decoded [zap.Logger] record.
type LogEntry struct {
	Level   zapcore.Level
	Message string
	// Numbers are kept as [json.Number].
	Fields map[string]any
}

// LogBuffer keeps [zap.Logger] records in memory.
type LogBuffer struct {
	t  testing.TB
	mu sync.Mutex
	b  zaptest.Buffer
}

// NewBufferedLogger returns logger writing JSON records into the returned
// buffer. Records below minLevel are dropped.
func NewBufferedLogger(t testing.TB, minLevel zapcore.Level) (*zap.Logger, *LogBuffer) {
	lb := &LogBuffer{t: t}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.LevelKey = logLevelKey
	encCfg.MessageKey = logMessageKey
	encCfg.TimeKey = logTimeKey

	core := zapcore.NewCore(zapcore.NewJSONEncoder(encCfg), lb, minLevel)

	return zap.New(core), lb
}

// Write implements [zapcore.WriteSyncer].
func (x *LogBuffer) Write(p []byte) (int, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	return x.b.Write(p)
}

// Sync implements [zapcore.WriteSyncer].
func (x *LogBuffer) Sync() error {
	return nil
}

// Entries returns all records written so far.
func (x *LogBuffer) Entries() []LogEntry {
	x.mu.Lock()
	lines := x.b.Lines()
	x.mu.Unlock()

	res := make([]LogEntry, len(lines))

	for i := range lines {
		dec := json.NewDecoder(strings.NewReader(lines[i]))
		dec.UseNumber()

		var m map[string]any
		require.NoError(x.t, dec.Decode(&m), i)

		lvl, ok := m[logLevelKey].(string)
		require.True(x.t, ok, i)

		var err error
		res[i].Level, err = zapcore.ParseLevel(lvl)
		require.NoError(x.t, err, i)

		res[i].Message, ok = m[logMessageKey].(string)
		require.True(x.t, ok, i)

		delete(m, logTimeKey)
		delete(m, logLevelKey)
		delete(m, logMessageKey)
		res[i].Fields = m
	}

	return res
}

// AssertEmpty asserts that nothing has been logged.
func (x *LogBuffer) AssertEmpty() {
	require.Empty(x.t, x.Entries())
}

// AssertContains asserts that log has at least one record equal to e.
func (x *LogBuffer) AssertContains(e LogEntry) {
	require.Contains(x.t, x.Entries(), e)
}

// Filter returns records with the given message.
func (x *LogBuffer) Filter(msg string) []LogEntry {
	var res []LogEntry
	for _, e := range x.Entries() {
		if e.Message == msg {
			res = append(res, e)
		}
	}
	return res
}
