package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerly-backend/internal/models"
)

type memNotificationStore struct {
	mu    sync.Mutex
	saved []*models.Notification
}

func (s *memNotificationStore) Create(ctx context.Context, n *models.Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	n.ID = len(s.saved) + 1
	s.saved = append(s.saved, n)
	return nil
}

func (s *memNotificationStore) List(ctx context.Context, userID int, unreadOnly bool) ([]*models.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.Notification, 0, len(s.saved))
	for _, n := range s.saved {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *memNotificationStore) MarkRead(ctx context.Context, userID, id int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.saved {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return true, nil
		}
	}
	return false, nil
}

func (s *memNotificationStore) MarkAllRead(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range s.saved {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func TestCloseDrainsQueuedNotifications(t *testing.T) {
	store := &memNotificationStore{}
	svc := NewNotificationService(store)

	for i := 0; i < 40; i++ {
		svc.Push(1, models.NotificationInvoiceSent, "Invoice sent", "Invoice INV-0001 was marked as sent.")
	}
	svc.Close()

	// Close returns only after the writer has stored everything queued
	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.saved, 40)
}

func TestMarkReadScopedToUser(t *testing.T) {
	store := &memNotificationStore{}
	svc := NewNotificationService(store)

	svc.Push(1, models.NotificationQuotaWarning, "Almost out", "4 of 5 invoices used.")
	svc.Close()

	ctx := context.Background()
	ok, err := svc.MarkRead(ctx, 2, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.MarkRead(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	unread, err := svc.List(ctx, 1, true)
	require.NoError(t, err)
	assert.Empty(t, unread)
}
