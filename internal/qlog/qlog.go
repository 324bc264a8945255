// Package qlog provides the durable, append-only query log. Every answered
// query is recorded as one (timestamp, query, response) record in a CSV file
// with a fixed header; records are never mutated or deleted.
package qlog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// TimeLayout is the timestamp format used in log records.
const TimeLayout = "2006-01-02 15:04:05"

// NoLogs is the sentinel returned when the log store is empty or missing.
const NoLogs = "No query logs yet."

// header is written once when the backing file is created.
var header = []string{"timestamp", "query", "response"}

// ErrNoLogs indicates the log store is empty or does not exist yet.
var ErrNoLogs = errors.New("no query logs yet")

// Entry is one logged interaction.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`
	Query     string    `json:"query"`
	Response  string    `json:"response"`
}

// Logger appends query records to a CSV file. Appends are serialized with a
// mutex so a pipeline driven from multiple goroutines stays safe; each
// append is flushed before returning, so a crash loses at most the
// in-flight entry.
type Logger struct {
	mu   sync.Mutex
	path string
}

// New creates a Logger backed by the CSV file at path. The file and its
// directory are created lazily on first append.
func New(path string) *Logger {
	return &Logger{path: path}
}

// Path returns the backing file location.
func (l *Logger) Path() string { return l.path }

// Append writes one record, creating the file (and header) if absent.
func (l *Logger) Append(timestamp time.Time, query, response string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create query log directory: %w", err)
		}
	}

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open query log: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat query log: %w", err)
	}

	w := csv.NewWriter(f)
	if stat.Size() == 0 {
		if err := w.Write(header); err != nil {
			return fmt.Errorf("write query log header: %w", err)
		}
	}
	if err := w.Write([]string{timestamp.Format(TimeLayout), query, response}); err != nil {
		return fmt.Errorf("write query log record: %w", err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush query log: %w", err)
	}
	return nil
}

// ReadAll replays every logged entry in insertion order. It returns
// ErrNoLogs when the file is missing or holds no records.
func (l *Logger) ReadAll() ([]Entry, error) {
	f, err := os.Open(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoLogs
		}
		return nil, fmt.Errorf("open query log: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = len(header)

	// Skip the header line.
	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoLogs
		}
		return nil, fmt.Errorf("read query log header: %w", err)
	}

	var entries []Entry
	for {
		rec, err := r.Read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read query log record: %w", err)
		}
		entries = append(entries, parseRecord(rec))
	}

	if len(entries) == 0 {
		return nil, ErrNoLogs
	}
	return entries, nil
}

// Render returns the full log as delimited display text, or the NoLogs
// sentinel when the store is empty or missing.
func (l *Logger) Render() (string, error) {
	entries, err := l.ReadAll()
	if err != nil {
		if errors.Is(err, ErrNoLogs) {
			return NoLogs, nil
		}
		return "", err
	}

	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.Timestamp.Format(TimeLayout))
		sb.WriteString(" | Query: ")
		sb.WriteString(e.Query)
		sb.WriteString("\nResponse: ")
		sb.WriteString(e.Response)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat("=", 50))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func parseRecord(rec []string) Entry {
	ts, _ := time.Parse(TimeLayout, rec[0])
	return Entry{Timestamp: ts, Query: rec[1], Response: rec[2]}
}
