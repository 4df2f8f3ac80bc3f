// Package querylog records every query sent to the retrieval tools and
// persists the audit trail to timestamped files. The log is the
// reproducibility record for a generation run: which tool was asked what,
// in what order.
package querylog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Entry is one recorded tool query.
type Entry struct {
	Tool  string `json:"tool"`
	Query string `json:"query"`
}

// Log accumulates tool queries in memory. Safe for concurrent use; tool
// adapters from parallel searches record into the same log.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	dir     string
}

// New creates a query log that saves into dir.
func New(dir string) *Log {
	return &Log{dir: dir}
}

// Record appends one query to the log. Queries are trimmed; an empty
// query is ignored rather than recorded as a blank line.
func (l *Log) Record(tool, query string) {
	query = strings.TrimSpace(query)
	if query == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, Entry{Tool: tool, Query: query})
}

// Count returns the number of recorded queries.
func (l *Log) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the recorded queries in order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Queries returns just the query strings, in recording order.
func (l *Log) Queries() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Query
	}
	return out
}

// Save writes the accumulated queries to a timestamped file under the
// log directory and clears the in-memory list. Saving an empty log is a
// no-op. Returns the written file path.
func (l *Log) Save() (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return "", nil
	}

	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return "", fmt.Errorf("create query log dir: %w", err)
	}

	name := time.Now().Format("2006-01-02_15-04-05") + ".txt"
	path := filepath.Join(l.dir, name)

	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.Tool)
		b.WriteString(": ")
		b.WriteString(e.Query)
		b.WriteByte('\n')
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write query log: %w", err)
	}

	l.entries = l.entries[:0]
	return path, nil
}
