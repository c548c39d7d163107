package logx

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
)

// DropPolicy decides what an AsyncAppender does when its queue is full.
type DropPolicy uint8

const (
	DropNewest DropPolicy = iota // drop the entry being appended (default)
	DropOldest                   // discard the oldest queued entry to make room
	Block                        // wait for room
)

// ParseDropPolicy maps "drop_newest" (or ""), "drop_oldest" and "block".
func ParseDropPolicy(s string) (DropPolicy, error) {
	switch strings.ToLower(s) {
	case "", "drop_newest":
		return DropNewest, nil
	case "drop_oldest":
		return DropOldest, nil
	case "block":
		return Block, nil
	default:
		return 0, fmt.Errorf("logx: unknown drop policy %q", s)
	}
}

// ErrQueueFull is reported to the ErrorHandler for every dropped entry.
var ErrQueueFull = errors.New("logx: async queue full, dropping entry")

const defaultQueueSize = 1024

// AsyncOptions configures an AsyncAppender.
type AsyncOptions struct {
	QueueSize    int // defaults to 1024
	Policy       DropPolicy
	ErrorHandler func(error) // defaults to stderr
}

// AsyncStats is a point-in-time counters snapshot.
type AsyncStats struct {
	Dropped uint64
	Queued  int
}

// AsyncAppender hands entries to a single goroutine that appends them to the
// wrapped appender. Close drains the queue, then closes the wrapped appender
// when it is an io.Closer.
type AsyncAppender struct {
	inner    Appender
	opts     AsyncOptions
	minLevel atomic.Int64

	mu     sync.RWMutex // closed vs. sends on queue
	closed bool
	queue  chan Entry
	done   chan struct{}

	dropped atomic.Uint64
}

// NewAsyncAppender starts the worker goroutine for inner.
func NewAsyncAppender(inner Appender, opts AsyncOptions) *AsyncAppender {
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = func(err error) { fmt.Fprintf(os.Stderr, "%v\n", err) }
	}
	a := &AsyncAppender{
		inner: inner,
		opts:  opts,
		queue: make(chan Entry, opts.QueueSize),
		done:  make(chan struct{}),
	}
	a.minLevel.Store(int64(LevelAll))
	go a.run()
	return a
}

func (a *AsyncAppender) Name() string { return a.inner.Name() }

func (a *AsyncAppender) SetMinLevel(l Level) { a.minLevel.Store(int64(l)) }

// Append queues e. Entries appended after Close are dropped.
func (a *AsyncAppender) Append(e Entry) {
	if e.Level < Level(a.minLevel.Load()) {
		return
	}
	// The caller may reuse its field slice once Append returns.
	e.Fields = copyFields(nil, e.Fields)

	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.drop()
		return
	}
	select {
	case a.queue <- e:
		return
	default:
	}
	switch a.opts.Policy {
	case Block:
		a.queue <- e
	case DropOldest:
		select {
		case <-a.queue:
			a.drop()
		default:
		}
		select {
		case a.queue <- e:
		default:
			a.drop()
		}
	default:
		a.drop()
	}
}

func (a *AsyncAppender) drop() {
	a.dropped.Add(1)
	a.opts.ErrorHandler(fmt.Errorf("appender %q: %w", a.inner.Name(), ErrQueueFull))
}

func (a *AsyncAppender) run() {
	defer close(a.done)
	for e := range a.queue {
		a.inner.Append(e)
	}
}

// Stats returns the drop counter and the current queue length.
func (a *AsyncAppender) Stats() AsyncStats {
	return AsyncStats{Dropped: a.dropped.Load(), Queued: len(a.queue)}
}

// Close stops accepting entries, waits until queued ones are appended and
// closes the wrapped appender. It is safe to call more than once.
func (a *AsyncAppender) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	if c, ok := a.inner.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func init() {
	RegisterAppenderType("async", newAsyncFromSpec)
}

// newAsyncFromSpec builds type "async". Options:
//
//	inner: <type>        wrapped appender type (default console); gets the same spec
//	queue_size: <n>      queue capacity (default 1024)
//	policy: drop_newest|drop_oldest|block
func newAsyncFromSpec(spec AppenderSpec, w io.Writer) (Appender, error) {
	innerType := spec.Options["inner"]
	if innerType == "" {
		innerType = "console"
	}
	if innerType == "async" {
		return nil, errors.New("async appender cannot wrap another async appender")
	}
	f, ok := lookupAppenderType(innerType)
	if !ok {
		return nil, fmt.Errorf("unknown inner appender type %q", innerType)
	}

	var opts AsyncOptions
	if s := spec.Options["queue_size"]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("invalid queue_size %q", s)
		}
		opts.QueueSize = n
	}
	policy, err := ParseDropPolicy(spec.Options["policy"])
	if err != nil {
		return nil, err
	}
	opts.Policy = policy

	innerSpec := spec
	innerSpec.Type = innerType
	innerSpec.Level = ""
	inner, err := f(innerSpec, w)
	if err != nil {
		return nil, err
	}
	return NewAsyncAppender(inner, opts), nil
}
