package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"
)

const timestampFormat = "2006-01-02 15:04:05.000"

// Logger writes tag-scoped, leveled log lines. It is safe for concurrent use.
type Logger struct {
	Level

	// Tag used to filter and classify log messages, e.g. "srtp/primitive".
	Tag string

	out io.Writer

	// mu prevents messages from different goroutines from interleaving.
	// Shared by all loggers derived from the same root.
	mu *sync.Mutex
}

// DefaultLogger writes to stderr.
var DefaultLogger = &Logger{defaultLevel, "", os.Stderr, new(sync.Mutex)}

// SetDestination overrides the output writer for this logger.
func (log *Logger) SetDestination(out io.Writer) {
	log.out = out
}

// WithTag derives a new logger scoped to tag, looking up its level override.
func (log *Logger) WithTag(tag string) *Logger {
	return &Logger{determineLevel(tag, log.Level), tag, log.out, log.mu}
}

type buffer []byte

func (b *buffer) Write(p []byte) (int, error) {
	*b = append(*b, p...)
	return len(p), nil
}

func (b *buffer) writeByte(c byte) {
	*b = append(*b, c)
}

var bufPool = sync.Pool{
	New: func() interface{} {
		return make(buffer, 256)
	},
}

// Log writes a message at the given level. calldepth is the number of stack
// frames to skip when reporting file:line of the caller.
func (log *Logger) Log(level Level, calldepth int, format string, a ...interface{}) {
	if level > log.Level {
		return
	}

	buf := bufPool.Get().(buffer)
	defer bufPool.Put(buf[:0])

	buf.Write(level.color())
	buf = time.Now().AppendFormat(buf, timestampFormat)
	fmt.Fprintf(&buf, " %c/%s", level.letter(), log.Tag)

	_, file, line, ok := runtime.Caller(calldepth + 1)
	if !ok {
		file = "?"
	}
	fmt.Fprintf(&buf, "[%s:%d] %s", filepath.Base(file), line, ansiReset)
	fmt.Fprintf(&buf, format, a...)

	if n := len(format); n == 0 || format[n-1] != '\n' {
		buf.writeByte('\n')
	}

	log.mu.Lock()
	_, _ = log.out.Write(buf)
	log.mu.Unlock()
}

func (log *Logger) Error(format string, a ...interface{}) { log.Log(Error, 1, format, a...) }
func (log *Logger) Warn(format string, a ...interface{})  { log.Log(Warn, 1, format, a...) }
func (log *Logger) Info(format string, a ...interface{})  { log.Log(Info, 1, format, a...) }
func (log *Logger) Debug(format string, a ...interface{}) { log.Log(Debug, 1, format, a...) }

// Reject logs a packet-transform rejection at a level that depends on which
// side of the connection rejected the packet. A sender-side rejection means
// this process's own outgoing packet failed its own consistency check — a
// local bug or misconfiguration — and is logged at Error. A receiver-side
// rejection is the ordinary, expected cost of a lossy or hostile network
// (reordering past the window, replay, tampering) and is logged at Warn.
func (log *Logger) Reject(isSender bool, format string, a ...interface{}) {
	if isSender {
		log.Log(Error, 1, format, a...)
		return
	}
	log.Log(Warn, 1, format, a...)
}
