package services

import (
	"context"
	"log"
	"time"

	"ledgerly-backend/internal/models"
)

type notificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	List(ctx context.Context, userID int, unreadOnly bool) ([]*models.Notification, error)
	MarkRead(ctx context.Context, userID, id int) (bool, error)
	MarkAllRead(ctx context.Context, userID int) error
}

// NotificationService stores in-app notifications. Pushes go through a
// buffered channel so callers never wait on the insert.
type NotificationService struct {
	repo notificationStore
	ch   chan *models.Notification
	done chan struct{}
}

func NewNotificationService(repo notificationStore) *NotificationService {
	s := &NotificationService{
		repo: repo,
		ch:   make(chan *models.Notification, 256),
		done: make(chan struct{}),
	}
	go s.asyncWriter()
	return s
}

func (s *NotificationService) asyncWriter() {
	defer close(s.done)
	for n := range s.ch {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := s.repo.Create(ctx, n); err != nil {
			log.Printf("[Notify] insert failed: %v", err)
		}
		cancel()
	}
}

// Push queues a notification, dropping it when the buffer is full
func (s *NotificationService) Push(userID int, typ, title, message string) {
	n := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
	}
	select {
	case s.ch <- n:
	default:
		log.Printf("[Notify] buffer full, dropping %s for user %d", typ, userID)
	}
}

func (s *NotificationService) List(ctx context.Context, userID int, unreadOnly bool) ([]*models.Notification, error) {
	return s.repo.List(ctx, userID, unreadOnly)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id int) (bool, error) {
	return s.repo.MarkRead(ctx, userID, id)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID int) error {
	return s.repo.MarkAllRead(ctx, userID)
}

// Close stops accepting notifications and waits for the writer to
// drain the buffer. Push must not be called after Close.
func (s *NotificationService) Close() {
	close(s.ch)
	<-s.done
}
