package booking

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// QueueFile is the booking log's name inside the data directory.
const QueueFile = "oram_intent_queue.jsonl"

// Appender writes one record durably.
type Appender interface {
	Append(Record) error
}

// Log is an append-only NDJSON file. Appends are serialized so each record
// lands as one whole line.
type Log struct {
	mu   sync.Mutex
	Path string
}

// OpenLog creates the data directory and the log file if they are absent.
func OpenLog(dataDir string) (*Log, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	path := filepath.Join(dataDir, QueueFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create booking log: %w", err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("close booking log: %w", err)
	}
	return &Log{Path: path}, nil
}

// Append writes r as a single line.
func (l *Log) Append(r Record) error {
	line, err := r.Marshal()
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open booking log: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		f.Close()
		return fmt.Errorf("write booking log: %w", err)
	}
	return f.Close()
}
