package services

import (
	"context"
	"encoding/csv"
	"io"
	"log"
	"strconv"
	"time"

	"ledgerly-backend/internal/models"
	"ledgerly-backend/internal/timeutil"
)

type auditStore interface {
	Insert(ctx context.Context, e *models.AuditLogEntry) error
	List(ctx context.Context, userID, limit int) ([]*models.AuditLogEntry, error)
}

// AuditService records security-relevant actions. Writes go through a
// buffered channel so request handlers never block on the audit table.
type AuditService struct {
	repo    auditStore
	logChan chan *models.AuditLogEntry
	done    chan struct{}
}

func NewAuditService(repo auditStore) *AuditService {
	s := &AuditService{
		repo:    repo,
		logChan: make(chan *models.AuditLogEntry, 1000),
		done:    make(chan struct{}),
	}
	go s.asyncWriter()
	return s
}

func (s *AuditService) asyncWriter() {
	defer close(s.done)
	for entry := range s.logChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Insert(ctx, entry); err != nil {
			log.Printf("[Audit] insert failed: %v", err)
		}
		cancel()
	}
}

// Record queues an audit entry. Entries are dropped when the buffer is
// full rather than blocking the request.
func (s *AuditService) Record(userID int, action, ip, userAgent, details string) {
	entry := &models.AuditLogEntry{
		UserID:    userID,
		Action:    action,
		IPAddress: ip,
		UserAgent: userAgent,
		Details:   details,
	}
	select {
	case s.logChan <- entry:
	default:
		log.Printf("[Audit] buffer full, dropping %s for user %d", action, userID)
	}
}

// List returns the most recent entries for a user
func (s *AuditService) List(ctx context.Context, userID, limit int) ([]*models.AuditLogEntry, error) {
	return s.repo.List(ctx, userID, limit)
}

// ExportCSV writes the user's audit trail as CSV
func (s *AuditService) ExportCSV(ctx context.Context, userID int, w io.Writer) error {
	entries, err := s.repo.List(ctx, userID, 500)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "action", "ip_address", "user_agent", "details", "created_at"}); err != nil {
		return err
	}
	for _, e := range entries {
		record := []string{
			strconv.Itoa(e.ID),
			e.Action,
			e.IPAddress,
			e.UserAgent,
			e.Details,
			e.CreatedAt.UTC().Format(timeutil.DateTimeLayout),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// Close stops accepting entries and waits for the writer to drain the
// buffer. Record must not be called after Close.
func (s *AuditService) Close() {
	close(s.logChan)
	<-s.done
}
