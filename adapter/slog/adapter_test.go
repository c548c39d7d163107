package slog

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/trickstertwo/xscope/logx"
)

func TestSlogAppender_JSONHandler_EmitsTSAndFields(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	h := slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	a := New("slog", slog.New(h))

	at := time.Date(2024, 12, 31, 23, 59, 59, 123456789, time.UTC)
	a.Append(logx.Entry{
		At:      at,
		Level:   logx.LevelInfo,
		Logger:  "svc",
		Message: "state changed",
		Fields:  []logx.Field{logx.Str("from", "old"), logx.Int64("count", 2)},
	})

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("json unmarshal: %v; line=%s", err, buf.String())
	}

	// Verify appender-provided timestamp "ts" equals the entry time
	gotTS, _ := m["ts"].(string)
	if wantTS := at.Format(time.RFC3339Nano); gotTS != wantTS {
		t.Fatalf("ts mismatch: got %q want %q", gotTS, wantTS)
	}
	if m["from"] != "old" {
		t.Fatalf("from mismatch: got %v", m["from"])
	}
	// Slog JSON handler numbers become float64 in generic map
	if m["count"] != float64(2) {
		t.Fatalf("count mismatch: got %v", m["count"])
	}
	if m["msg"] != "state changed" || m["logger"] != "svc" {
		t.Fatalf("msg/logger mismatch: %v", m)
	}
}

func TestSlogAppender_NewAppenderDropsHandlerTime(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := NewAppender(Config{Name: "s", Writer: &buf, MinLevel: logx.LevelDebug})
	a.Append(logx.Entry{At: time.Unix(0, 0), Level: logx.LevelWarn, Message: "w"})

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("json unmarshal: %v", err)
	}
	if _, ok := m[slog.TimeKey]; ok {
		t.Fatalf("handler time must be dropped: %v", m)
	}
	if m["level"] != "WARN" {
		t.Fatalf("level: %v", m["level"])
	}
}

func TestSlogAppender_SetMinLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := NewAppender(Config{Name: "s", Writer: &buf, Format: FormatText})
	a.SetMinLevel(logx.LevelError)
	a.Append(logx.Entry{Level: logx.LevelWarn, Message: "dropped"})
	if buf.Len() != 0 {
		t.Fatalf("expected no output: %s", buf.String())
	}
	a.Append(logx.Entry{Level: logx.LevelError, Message: "kept"})
	if !strings.Contains(buf.String(), "msg=kept") {
		t.Fatalf("text output: %q", buf.String())
	}
}

func TestSlogAppender_ConfigType(t *testing.T) {
	t.Parallel()

	r := logx.NewRepository("cfg")
	doc := "appenders: [{name: s, type: slog, format: text, writer: discard, level: info}]\nroot: {appenders: [s]}\n"
	if err := r.ConfigureReader(strings.NewReader(doc), "slog.yaml"); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if a, ok := r.Appender("s"); !ok {
		t.Fatal("slog appender not registered")
	} else if _, ok := a.(*Appender); !ok {
		t.Fatalf("appender type %T", a)
	}
	if _, err := FromSpec(logx.AppenderSpec{Name: "x", Format: "xml"}, nil); err == nil {
		t.Fatal("expected unknown format error")
	}
}
