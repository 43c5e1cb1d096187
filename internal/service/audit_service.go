package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/SolYield/yieldgate/internal/model"
	"github.com/SolYield/yieldgate/internal/pkg/logger"
)

// AuditRepo persists audit entries; nil repo means file-only auditing.
type AuditRepo interface {
	Insert(ctx context.Context, entry *model.AuditLog) error
	List(ctx context.Context, caller string, limit int, from, to *time.Time) ([]*model.AuditLog, error)
}

// AuditService fans audit entries out to a daily jsonl file, an
// in-memory ring buffer and (when configured) Postgres, off the request
// path.
type AuditService struct {
	logChan chan *model.AuditLog
	logFile *os.File
	buffer  *auditBuffer
	repo    AuditRepo
	done    chan struct{}
}

func NewAuditService(logDir string, repo AuditRepo) (*AuditService, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, err
	}

	filename := filepath.Join(logDir, "audit-"+time.Now().Format("2006-01-02")+".jsonl")
	f, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	svc := &AuditService{
		logChan: make(chan *model.AuditLog, 1000),
		logFile: f,
		buffer:  newAuditBuffer(1000),
		repo:    repo,
		done:    make(chan struct{}),
	}
	go svc.processLogs()
	return svc, nil
}

func (s *AuditService) Log(entry *model.AuditLog) {
	s.buffer.Add(entry)
	select {
	case s.logChan <- entry:
	default:
		// Buffer full: drop rather than block the request path.
		logger.Warn("audit log buffer full, dropping entry", "id", entry.ID)
	}
}

func (s *AuditService) List(ctx context.Context, caller string, limit int, from, to *time.Time) ([]*model.AuditLog, error) {
	if s.repo != nil {
		if records, err := s.repo.List(ctx, caller, limit, from, to); err == nil {
			return records, nil
		}
	}
	return s.buffer.Snapshot(caller, limit), nil
}

func (s *AuditService) Close() {
	close(s.logChan)
	<-s.done
	_ = s.logFile.Close()
}

func (s *AuditService) processLogs() {
	defer close(s.done)
	for entry := range s.logChan {
		line, err := json.Marshal(entry)
		if err != nil {
			continue
		}
		_, _ = s.logFile.Write(append(line, '\n'))

		if s.repo != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			if err := s.repo.Insert(ctx, entry); err != nil {
				logger.Warn("audit insert failed", "id", entry.ID, "error", err)
			}
			cancel()
		}
	}
}

// auditBuffer is a fixed-size ring of the most recent entries.
type auditBuffer struct {
	mu      sync.RWMutex
	entries []*model.AuditLog
	next    int
	full    bool
}

func newAuditBuffer(size int) *auditBuffer {
	return &auditBuffer{entries: make([]*model.AuditLog, size)}
}

func (b *auditBuffer) Add(entry *model.AuditLog) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[b.next] = entry
	b.next = (b.next + 1) % len(b.entries)
	if b.next == 0 {
		b.full = true
	}
}

// Snapshot returns up to limit entries, newest first, optionally
// filtered by caller.
func (b *auditBuffer) Snapshot(caller string, limit int) []*model.AuditLog {
	if limit <= 0 {
		limit = 100
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	size := b.next
	if b.full {
		size = len(b.entries)
	}
	out := make([]*model.AuditLog, 0, limit)
	for i := 1; i <= size && len(out) < limit; i++ {
		idx := (b.next - i + len(b.entries)) % len(b.entries)
		entry := b.entries[idx]
		if entry == nil {
			continue
		}
		if caller != "" && entry.Caller != caller {
			continue
		}
		out = append(out, entry)
	}
	return out
}
