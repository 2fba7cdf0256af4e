package taxonomy

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// MissingRecord is one unmapped term, written for human review.
type MissingRecord struct {
	Kind      string    `json:"kind"` // category | tag | feature
	RawName   string    `json:"raw_name"`
	Timestamp time.Time `json:"timestamp"`
}

// MissingLog is an append-only JSONL audit log of unmapped taxonomy terms.
// Appends are serialized so concurrent writers never interleave records.
type MissingLog struct {
	mu      sync.Mutex
	file    *os.File
	records []MissingRecord
}

// OpenMissingLog opens (or creates) the audit log at path. An empty path
// keeps records in memory only.
func OpenMissingLog(path string) (*MissingLog, error) {
	if path == "" {
		return &MissingLog{}, nil
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "taxonomy: open missing log %s", path)
	}
	return &MissingLog{file: f}, nil
}

// Record appends one missing-term record. Failures are logged, never
// propagated: the audit log must not block pipeline progress.
func (l *MissingLog) Record(kind, rawName string) {
	rec := MissingRecord{Kind: kind, RawName: rawName, Timestamp: time.Now().UTC()}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)

	if l.file == nil {
		return
	}
	line, err := json.Marshal(rec)
	if err != nil {
		zap.L().Warn("taxonomy: marshal missing record", zap.Error(err))
		return
	}
	if _, err := l.file.Write(append(line, '\n')); err != nil {
		zap.L().Warn("taxonomy: write missing record", zap.Error(err))
	}
}

// Records returns the records accumulated this session.
func (l *MissingLog) Records() []MissingRecord {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]MissingRecord, len(l.records))
	copy(out, l.records)
	return out
}

// Close closes the underlying file, if any.
func (l *MissingLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
