package logx

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
	"unicode/utf8"
)

// Format selects the line encoding of a ConsoleAppender.
type Format uint8

const (
	FormatText Format = iota + 1
	FormatJSON
)

// ParseFormat maps "text" (or "") and "json" to a Format.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "text", "TEXT":
		return FormatText, nil
	case "json", "JSON":
		return FormatJSON, nil
	default:
		return 0, fmt.Errorf("logx: unknown format %q", s)
	}
}

// ConsoleAppender writes one line per entry to an io.Writer, as logfmt-style
// text or as JSON. Writes are serialized; formatting is reflection-free except
// for KindAny values in JSON mode.
type ConsoleAppender struct {
	name     string
	format   Format
	minLevel atomic.Int64

	mu sync.Mutex
	w  io.Writer

	// ErrorHandler receives write failures; defaults to stderr.
	ErrorHandler func(error)
}

// NewConsoleAppender returns an appender writing to w (os.Stdout when nil).
func NewConsoleAppender(name string, w io.Writer, format Format) *ConsoleAppender {
	if w == nil {
		w = os.Stdout
	}
	if format == 0 {
		format = FormatText
	}
	a := &ConsoleAppender{name: name, format: format, w: w}
	a.minLevel.Store(int64(LevelAll))
	return a
}

func (a *ConsoleAppender) Name() string { return a.name }

// SetMinLevel applies a threshold of the appender's own.
func (a *ConsoleAppender) SetMinLevel(l Level) { a.minLevel.Store(int64(l)) }

func (a *ConsoleAppender) Append(e Entry) {
	if e.Level < Level(a.minLevel.Load()) {
		return
	}
	buf := getBuf()
	defer putBuf(buf)

	if a.format == FormatJSON {
		buf.b = appendJSONLine(buf.b, e)
	} else {
		buf.b = appendTextLine(buf.b, e)
	}
	buf.b = append(buf.b, '\n')

	a.mu.Lock()
	_, err := a.w.Write(buf.b)
	a.mu.Unlock()
	if err != nil {
		a.reportError(fmt.Errorf("logx: appender %q: write: %w", a.name, err))
	}
}

func (a *ConsoleAppender) reportError(err error) {
	if a.ErrorHandler != nil {
		a.ErrorHandler(err)
		return
	}
	fmt.Fprintf(os.Stderr, "%v\n", err)
}

// ------ Buffer Management ------

type buffer struct{ b []byte }

var bufPool = sync.Pool{
	New: func() any { return &buffer{b: make([]byte, 0, 1024)} },
}

func getBuf() *buffer {
	buf := bufPool.Get().(*buffer)
	buf.b = buf.b[:0]
	return buf
}

func putBuf(buf *buffer) {
	// Keep pool bounded; drop extremely large buffers
	if cap(buf.b) <= 64*1024 {
		bufPool.Put(buf)
	}
}

// ------ Text Encoding ------

func appendTextLine(b []byte, e Entry) []byte {
	b = append(b, "ts="...)
	b = e.At.UTC().AppendFormat(b, time.RFC3339Nano)
	b = append(b, " level="...)
	b = append(b, e.Level.String()...)
	b = append(b, " logger="...)
	b = appendTextString(b, e.Logger)
	b = append(b, " msg="...)
	b = appendTextString(b, e.Message)
	for i := range e.Fields {
		f := &e.Fields[i]
		b = append(b, ' ')
		b = append(b, f.K...)
		b = append(b, '=')
		b = appendTextValue(b, f)
	}
	return b
}

func appendTextValue(b []byte, f *Field) []byte {
	switch f.Kind {
	case KindString:
		return appendTextString(b, f.Str)
	case KindInt64:
		return strconv.AppendInt(b, f.Int64, 10)
	case KindUint64:
		return strconv.AppendUint(b, f.Uint64, 10)
	case KindFloat64:
		return strconv.AppendFloat(b, f.Float64, 'g', -1, 64)
	case KindBool:
		return strconv.AppendBool(b, f.Bool)
	case KindDuration:
		return append(b, f.Dur.String()...)
	case KindTime:
		return f.Time.UTC().AppendFormat(b, time.RFC3339Nano)
	case KindError:
		if f.Err == nil {
			return append(b, "null"...)
		}
		return appendQuoted(b, f.Err.Error())
	case KindBytes:
		b = append(b, "len:"...)
		return strconv.AppendInt(b, int64(len(f.Bytes)), 10)
	case KindAny:
		if f.Any == nil {
			return append(b, "null"...)
		}
		return appendTextString(b, fmt.Sprint(f.Any))
	default:
		return append(b, "null"...)
	}
}

func appendTextString(b []byte, s string) []byte {
	// Quote if control, space, or double-quote is present.
	for i := 0; i < len(s); i++ {
		if c := s[i]; c <= 0x1F || c == ' ' || c == '"' {
			return appendQuoted(b, s)
		}
	}
	if s == "" {
		return append(b, `""`...)
	}
	return append(b, s...)
}

// ------ JSON Encoding ------

func appendJSONLine(b []byte, e Entry) []byte {
	b = append(b, `{"ts":"`...)
	b = e.At.UTC().AppendFormat(b, time.RFC3339Nano)
	b = append(b, `","level":"`...)
	b = append(b, e.Level.String()...)
	b = append(b, `","logger":`...)
	b = appendQuoted(b, e.Logger)
	b = append(b, `,"msg":`...)
	b = appendQuoted(b, e.Message)
	for i := range e.Fields {
		f := &e.Fields[i]
		b = append(b, ',')
		b = appendQuoted(b, f.K)
		b = append(b, ':')
		b = appendJSONValue(b, f)
	}
	return append(b, '}')
}

func appendJSONValue(b []byte, f *Field) []byte {
	switch f.Kind {
	case KindString:
		return appendQuoted(b, f.Str)
	case KindInt64:
		return strconv.AppendInt(b, f.Int64, 10)
	case KindUint64:
		return strconv.AppendUint(b, f.Uint64, 10)
	case KindFloat64:
		// JSON validity: NaN/Inf -> null.
		if math.IsNaN(f.Float64) || math.IsInf(f.Float64, 0) {
			return append(b, "null"...)
		}
		return strconv.AppendFloat(b, f.Float64, 'g', -1, 64)
	case KindBool:
		return strconv.AppendBool(b, f.Bool)
	case KindDuration:
		return appendQuoted(b, f.Dur.String())
	case KindTime:
		b = append(b, '"')
		b = f.Time.UTC().AppendFormat(b, time.RFC3339Nano)
		return append(b, '"')
	case KindError:
		if f.Err == nil {
			return append(b, "null"...)
		}
		return appendQuoted(b, f.Err.Error())
	case KindBytes:
		b = append(b, '"')
		b = base64.StdEncoding.AppendEncode(b, f.Bytes)
		return append(b, '"')
	case KindAny:
		data, err := json.Marshal(f.Any)
		if err != nil {
			return appendQuoted(b, "marshal_error")
		}
		return append(b, data...)
	default:
		return append(b, "null"...)
	}
}

const hexDigits = "0123456789abcdef"

// appendQuoted writes s as a JSON string in a single scan.
func appendQuoted(b []byte, s string) []byte {
	b = append(b, '"')
	start := 0
	for i := 0; i < len(s); {
		c := s[i]
		if c >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(s[i:])
			if r == utf8.RuneError && size == 1 {
				b = append(b, s[start:i]...)
				b = append(b, `\ufffd`...)
				i++
				start = i
				continue
			}
			i += size
			continue
		}
		if c >= 0x20 && c != '\\' && c != '"' {
			i++
			continue
		}
		b = append(b, s[start:i]...)
		switch c {
		case '\\', '"':
			b = append(b, '\\', c)
		case '\n':
			b = append(b, `\n`...)
		case '\r':
			b = append(b, `\r`...)
		case '\t':
			b = append(b, `\t`...)
		default:
			b = append(b, `\u00`...)
			b = append(b, hexDigits[c>>4], hexDigits[c&0xF])
		}
		i++
		start = i
	}
	b = append(b, s[start:]...)
	return append(b, '"')
}
