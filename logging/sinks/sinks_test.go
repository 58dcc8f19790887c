package sinks

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"paint-bots/client/logging"
)

func sampleEvent() logging.Event {
	return logging.Event{
		Type:     "simulation.netstep",
		Tick:     40,
		Time:     time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		Actor:    logging.EntityRef{Kind: logging.EntityKindContext},
		Severity: logging.SeverityWarn,
		Category: logging.CategorySimulation,
		Payload:  map[string]any{"netstep": 4},
		Extra:    map[string]any{"session": "s1"},
	}
}

func TestJSONWritesOneLinePerEvent(t *testing.T) {
	var buf bytes.Buffer
	sink := NewJSON(&buf, 0)
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	var decoded map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded["type"] != "simulation.netstep" || decoded["severity"] != "warn" || decoded["tick"] != float64(40) {
		t.Fatalf("unexpected payload %v", decoded)
	}
	if decoded["time"] != "2024-01-02T03:04:05Z" {
		t.Fatalf("unexpected time %v", decoded["time"])
	}
}

func TestRotatingJSONWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.jsonl")
	sink := NewRotatingJSON(logging.JSONConfig{FilePath: path, MaxSizeMB: 1})
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := sink.Close(context.Background()); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "simulation.netstep") {
		t.Fatalf("expected event in file, got %q", data)
	}
}

func TestConsoleMapsSeverityAndFields(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	sink := NewConsole(logger)
	if err := sink.Write(sampleEvent()); err != nil {
		t.Fatalf("write: %v", err)
	}

	entry := hook.LastEntry()
	if entry == nil {
		t.Fatalf("expected a log entry")
	}
	if entry.Level != logrus.WarnLevel || entry.Message != "simulation.netstep" {
		t.Fatalf("unexpected entry %v %q", entry.Level, entry.Message)
	}
	if entry.Data["tick"] != uint64(40) || entry.Data["actor"] != "context" || entry.Data["session"] != "s1" {
		t.Fatalf("unexpected fields %v", entry.Data)
	}
}

func TestMemoryFiltersByType(t *testing.T) {
	sink := NewMemory()
	sink.Publish(context.Background(), sampleEvent())
	sink.Publish(context.Background(), logging.Event{Type: "other"})
	if got := len(sink.EventsOfType("simulation.netstep")); got != 1 {
		t.Fatalf("expected one matching event, got %d", got)
	}
	sink.Reset()
	if len(sink.Events()) != 0 {
		t.Fatalf("expected reset to clear events")
	}
}
