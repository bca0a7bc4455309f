package audit

import (
	"fmt"
	"log"
	"os"
	"sync"
	"time"
)

// Logger receives one line per payment-processing step, success or failure.
// Implementations must be safe for concurrent use.
type Logger interface {
	Event(format string, args ...any)
}

// FileLogger appends timestamped events to a plain-text log file, one line
// per event. Each line is written with a single Write call. No rotation.
type FileLogger struct {
	mu   sync.Mutex
	path string
}

func NewFileLogger(path string) *FileLogger {
	return &FileLogger{path: path}
}

func (l *FileLogger) Event(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("audit: failed to open %s: %v", l.path, err)
		return
	}
	defer f.Close()

	line := time.Now().UTC().Format(time.RFC3339) + " " + fmt.Sprintf(format, args...) + "\n"
	if _, err := f.WriteString(line); err != nil {
		log.Printf("audit: failed to write %s: %v", l.path, err)
	}
}

// Nop discards all events.
type Nop struct{}

func (Nop) Event(string, ...any) {}
