package journal

import (
	"fmt"
	"os"
)

// AuditTimeLayout is the timestamp prefix on every audit line.
const AuditTimeLayout = "2006-01-02-15:04:05"

// AuditLog is the newline-delimited transaction trail. Every transaction
// attempt appends exactly one line, success or failure, so rejected
// operations stay on the record. Lines are human-readable and never parsed
// back by the core.
type AuditLog struct {
	path string
	f    *os.File
}

// OpenAudit opens (creating if needed) the audit file for appending.
// One writer per file; the caller owns the log for its lifetime.
func OpenAudit(path string) (*AuditLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	return &AuditLog{path: path, f: f}, nil
}

func (l *AuditLog) Path() string { return l.path }

// Append writes one line to the trail.
func (l *AuditLog) Append(line string) error {
	if _, err := fmt.Fprintln(l.f, line); err != nil {
		return fmt.Errorf("append audit line: %w", err)
	}
	return nil
}

func (l *AuditLog) Close() error {
	return l.f.Close()
}
