// Package audit implements the append-only JSONL sink for confirmed
// mutation records. Entries are appended, never updated in place, so
// concurrent writers only need append-atomicity: each record is written
// with a single O_APPEND write.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/toolgate/toolgate/internal/schema"
)

// Log writes one JSON record per line to a durable file.
type Log struct {
	path string
	mu   sync.Mutex
}

var _ schema.AuditSink = (*Log)(nil)

// NewLog creates the sink at path, creating parent directories as needed.
func NewLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}
	return &Log{path: path}, nil
}

// Path returns the active log file path.
func (l *Log) Path() string { return l.path }

// Append writes e as one line, synchronously relative to the caller.
func (l *Log) Append(_ context.Context, e schema.AuditEntry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal audit entry: %w", err)
	}
	data = append(data, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("append audit entry: %w", err)
	}
	return f.Sync()
}

// Tail returns the last n entries from the active log file, oldest first.
func (l *Log) Tail(n int) ([]schema.AuditEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	var entries []schema.AuditEntry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var e schema.AuditEntry
		if err := json.Unmarshal(line, &e); err != nil {
			continue // skip torn or foreign lines
		}
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read audit log: %w", err)
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

// rotate renames the active file with a date suffix; the next append
// recreates it. No-op when the file does not exist.
func (l *Log) rotate(suffix string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err := os.Stat(l.path); os.IsNotExist(err) {
		return nil
	}
	dst := l.path + "." + suffix
	if _, err := os.Stat(dst); err == nil {
		return fmt.Errorf("rotation target %s already exists", dst)
	}
	return os.Rename(l.path, dst)
}
