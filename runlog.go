package simt

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// RunRecord captures the result of a single benchmark invocation.
type RunRecord struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Version    string    `json:"version"`
	Dim        int       `json:"dim"`
	Alpha      float64   `json:"alpha"`
	Beta       float64   `json:"beta"`
	ElapsedSec float64   `json:"elapsed_sec"`
	Validated  bool      `json:"validated"`
	Device     string    `json:"device,omitempty"`
}

// RunLogger accumulates run records and writes them to a JSON session file.
type RunLogger struct {
	mu          sync.Mutex
	records     []RunRecord
	sessionFile string
}

// NewRunLogger creates a logger writing to a timestamped session file in dir.
func NewRunLogger(dir string) (*RunLogger, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	l := &RunLogger{
		sessionFile: filepath.Join(dir, fmt.Sprintf("gemv_%s.json", timestamp)),
	}

	return l, l.flush()
}

// Log appends a record and flushes the session file.
func (l *RunLogger) Log(rec RunRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}
	l.records = append(l.records, rec)

	// Flush immediately to avoid losing data on crash
	return l.flush()
}

// SessionFile returns the path of the session file.
func (l *RunLogger) SessionFile() string {
	return l.sessionFile
}

// flush writes the accumulated records to disk. Caller must hold mu or have
// exclusive access.
func (l *RunLogger) flush() error {
	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run records: %w", err)
	}

	return os.WriteFile(l.sessionFile, data, 0644)
}
