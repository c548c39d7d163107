package logx

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestConsoleAppender_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := NewConsoleAppender("json", &buf, FormatJSON)
	at := time.Date(2025, 3, 4, 5, 6, 7, 8, time.UTC)
	a.Append(Entry{
		At:      at,
		Level:   LevelWarn,
		Logger:  "svc.db",
		Message: "slow \"query\"\n",
		Fields: []Field{
			Str("table", "orders"),
			Int64("rows", 42),
			Dur("took", 1500*time.Millisecond),
			Err("err", errors.New("boom")),
			Bytes("raw", []byte("hi")),
			Any("tags", []string{"a", "b"}),
		},
	})

	var m map[string]any
	if err := json.Unmarshal(buf.Bytes(), &m); err != nil {
		t.Fatalf("invalid JSON %q: %v", buf.String(), err)
	}
	want := map[string]any{
		"ts":     at.Format(time.RFC3339Nano),
		"level":  "WARN",
		"logger": "svc.db",
		"msg":    "slow \"query\"\n",
		"table":  "orders",
		"rows":   float64(42),
		"took":   "1.5s",
		"err":    "boom",
		"raw":    "aGk=",
	}
	for k, v := range want {
		if m[k] != v {
			t.Fatalf("field %q: got %#v want %#v", k, m[k], v)
		}
	}
	if tags, ok := m["tags"].([]any); !ok || len(tags) != 2 {
		t.Fatalf("tags: %#v", m["tags"])
	}
}

func TestConsoleAppender_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := NewConsoleAppender("text", &buf, FormatText)
	a.Append(Entry{
		At:      time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		Level:   LevelInfo,
		Logger:  "app",
		Message: "hello world",
		Fields:  []Field{Str("user", "ann"), Bool("ok", true)},
	})
	want := `ts=2025-01-01T00:00:00Z level=INFO logger=app msg="hello world" user=ann ok=true` + "\n"
	if buf.String() != want {
		t.Fatalf("got  %q\nwant %q", buf.String(), want)
	}
}

func TestConsoleAppender_MinLevel(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	a := NewConsoleAppender("min", &buf, FormatText)
	a.SetMinLevel(LevelError)
	a.Append(Entry{Level: LevelWarn, Message: "dropped"})
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below threshold, got %q", buf.String())
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestConsoleAppender_WriteErrorsReported(t *testing.T) {
	t.Parallel()

	var got error
	a := NewConsoleAppender("broken", failingWriter{}, FormatJSON)
	a.ErrorHandler = func(err error) { got = err }
	a.Append(Entry{Level: LevelInfo, Message: "x"})
	if got == nil || !strings.Contains(got.Error(), "disk full") {
		t.Fatalf("expected write error, got %v", got)
	}
}

func TestAppendQuoted_InvalidUTF8(t *testing.T) {
	t.Parallel()

	b := appendQuoted(nil, "a\xffé\x01")
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		t.Fatalf("invalid JSON %q: %v", b, err)
	}
	if s != "a�é\x01" {
		t.Fatalf("got %q", s)
	}
}
