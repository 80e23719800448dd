package logsvc

import (
	"sync"

	"github.com/trezcool/masomo-courseware/core"
)

type Entry struct {
	Level string
	Msg   string
	Args  []interface{}
}

// MemoryLogger keeps logged entries in memory. Used by tests.
type MemoryLogger struct {
	mu      sync.Mutex
	entries []Entry
}

var _ core.Logger = (*MemoryLogger)(nil)

func NewMemoryLogger() *MemoryLogger {
	return &MemoryLogger{}
}

func (l *MemoryLogger) log(level, msg string, args []interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
}

func (l *MemoryLogger) Entries(level ...string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(level) == 0 {
		return append([]Entry{}, l.entries...)
	}
	var entries []Entry
	for _, e := range l.entries {
		if e.Level == level[0] {
			entries = append(entries, e)
		}
	}
	return entries
}

func (l *MemoryLogger) Debug(msg string, args ...interface{}) { l.log("debug", msg, args) }
func (l *MemoryLogger) Info(msg string, args ...interface{})  { l.log("info", msg, args) }
func (l *MemoryLogger) Warn(msg string, args ...interface{})  { l.log("warn", msg, args) }
func (l *MemoryLogger) Error(msg string, args ...interface{}) { l.log("error", msg, args) }

// Fatal does not exit.
func (l *MemoryLogger) Fatal(msg string, args ...interface{}) { l.log("fatal", msg, args) }
