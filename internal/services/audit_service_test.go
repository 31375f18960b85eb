package services

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly-backend/internal/models"
)

type memAuditStore struct {
	mu      sync.Mutex
	entries []*models.AuditLogEntry
}

func (s *memAuditStore) Insert(ctx context.Context, e *models.AuditLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e.ID = len(s.entries) + 1
	e.CreatedAt = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	s.entries = append(s.entries, e)
	return nil
}

func (s *memAuditStore) List(ctx context.Context, userID, limit int) ([]*models.AuditLogEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.AuditLogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func TestCloseDrainsQueuedEntries(t *testing.T) {
	store := &memAuditStore{}
	svc := NewAuditService(store)

	for i := 0; i < 50; i++ {
		svc.Record(1, models.AuditActionLogin, "10.0.0.1", "test-agent", "")
	}
	svc.Close()

	// Close returns only after everything queued has hit the store
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.entries, 50)
}

func TestExportCSVFormatsTimestamps(t *testing.T) {
	store := &memAuditStore{}
	svc := NewAuditService(store)
	defer svc.Close()

	svc.Record(7, models.AuditActionLogin, "10.0.0.1", "test-agent", "ok")

	// Wait for the async writer to land the entry
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.entries) == 1
	}, time.Second, 10*time.Millisecond)

	var buf bytes.Buffer
	require.NoError(t, svc.ExportCSV(context.Background(), 7, &buf))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "id,action,ip_address,user_agent,details,created_at", lines[0])
	assert.Contains(t, lines[1], "2026-03-15 10:30:00")
}
