package pantryassistant

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// CommandLogger is the interface for recording voice command exchanges.
type CommandLogger interface {
	LogCommand(entry CommandLog) error
}

// NewCommandLogFilePath returns a timestamped file path under dir for one client session.
func NewCommandLogFilePath(dir string) string {
	return filepath.Join(dir, fmt.Sprintf("%d.commands.json", time.Now().Unix()))
}

// CommandSource tells how a command reached the client.
type CommandSource string

const (
	SourceSpeech CommandSource = "speech"
	SourceText   CommandSource = "text"
	SourceScript CommandSource = "script"
)

// CommandLog represents a single command sent to the voice endpoint
type CommandLog struct {
	Timestamp time.Time     `json:"timestamp"`
	Source    CommandSource `json:"source"`
	Text      string        `json:"text"`
	Reply     string        `json:"reply,omitempty"`
	Action    Action        `json:"action,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// FileCommandLogger accumulates entries and writes them out on Flush. It is
// safe for concurrent use.
type FileCommandLogger struct {
	mu      sync.Mutex
	entries []CommandLog
	writer  io.Writer
}

func NewFileCommandLogger(writer io.Writer) *FileCommandLogger {
	return &FileCommandLogger{
		entries: make([]CommandLog, 0),
		writer:  writer,
	}
}

func (l *FileCommandLogger) LogCommand(entry CommandLog) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return nil
}

// Len reports how many entries are waiting to be flushed.
func (l *FileCommandLogger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Flush writes all accumulated entries to the writer as one JSON document.
func (l *FileCommandLogger) Flush() error {
	if l.writer == nil {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(map[string]any{
		"command_session": map[string]any{
			"timestamp": time.Now(),
			"commands":  l.entries,
		},
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal command log: %w", err)
	}

	if _, err := l.writer.Write(data); err != nil {
		return fmt.Errorf("failed to write command log: %w", err)
	}

	l.entries = l.entries[:0]
	return nil
}

// NoOpCommandLogger discards all entries
type NoOpCommandLogger struct{}

func NewNoOpCommandLogger() *NoOpCommandLogger {
	return &NoOpCommandLogger{}
}

func (nop *NoOpCommandLogger) LogCommand(entry CommandLog) error {
	return nil
}

// StdoutCommandLogger writes each entry as a JSON line (for Lambda/CloudWatch)
type StdoutCommandLogger struct {
	mu  sync.Mutex
	out io.Writer
}

func NewStdoutCommandLogger() *StdoutCommandLogger {
	return &StdoutCommandLogger{out: os.Stdout}
}

func (l *StdoutCommandLogger) LogCommand(entry CommandLog) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err = fmt.Fprintln(l.out, string(data))
	return err
}
