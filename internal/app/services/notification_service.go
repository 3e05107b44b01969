package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/scholarlink/internal/app/auth"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/app/repositories"
	"github.com/yigit/scholarlink/internal/pkg/helpers"
	"github.com/yigit/scholarlink/internal/pkg/metrics"
)

// NotificationDraft is what a workflow hands to the outbox
type NotificationDraft struct {
	Recipient   models.NotificationParty
	Sender      models.NotificationParty
	Type        models.NotificationType
	Title       string
	Message     string
	RelatedID   *uuid.UUID
	RelatedKind *string
	ActionURL   *string
}

// NotificationService defines the interface for the notification center
type NotificationService interface {
	// Notify writes a draft through the given store so it commits with the caller's unit
	Notify(ctx context.Context, tx repositories.Store, draft NotificationDraft) (*models.Notification, error)
	List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, size int) (*dto.NotificationListResponse, error)
	UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error)
	MarkRead(ctx context.Context, notificationID, actorID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	store  repositories.Store
	clock  Clock
	logger zerolog.Logger
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(store repositories.Store, clock Clock, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		store:  store,
		clock:  clock,
		logger: logger,
	}
}

// Notify persists a notification
func (s *notificationServiceImpl) Notify(ctx context.Context, tx repositories.Store, draft NotificationDraft) (*models.Notification, error) {
	if tx == nil {
		tx = s.store
	}
	n := &models.Notification{
		ID:          uuid.New(),
		Recipient:   draft.Recipient,
		Sender:      draft.Sender,
		Type:        draft.Type,
		Title:       draft.Title,
		Message:     draft.Message,
		RelatedID:   draft.RelatedID,
		RelatedKind: draft.RelatedKind,
		IsRead:      false,
		ActionURL:   draft.ActionURL,
		CreatedAt:   s.clock.Now(),
	}
	if err := tx.Notifications().Create(ctx, n); err != nil {
		s.logger.Error().Err(err).
			Str("recipientId", draft.Recipient.ID.String()).
			Str("type", string(draft.Type)).
			Msg("Failed to create notification")
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(string(n.Type)).Inc()
	return n, nil
}

// List returns one page of the recipient's notifications, newest first
func (s *notificationServiceImpl) List(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, page, size int) (*dto.NotificationListResponse, error) {
	offset, limit := helpers.CalculateOffsetLimit(page, size)
	items, total, err := s.store.Notifications().List(ctx, recipientID, models.NotificationFilter{
		UnreadOnly: unreadOnly,
		Offset:     offset,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	return &dto.NotificationListResponse{
		Notifications: items,
		Pagination:    helpers.NewPaginationInfo(total, page, limit),
	}, nil
}

// UnreadCount counts the recipient's unread notifications
func (s *notificationServiceImpl) UnreadCount(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, recipientID)
}

// MarkRead flags one of the recipient's notifications as read
func (s *notificationServiceImpl) MarkRead(ctx context.Context, notificationID, actorID uuid.UUID) error {
	n, err := s.store.Notifications().GetByID(ctx, notificationID)
	if err != nil {
		return err
	}
	if err := auth.RequireNotificationRecipient(n, actorID); err != nil {
		return err
	}
	if n.IsRead {
		return nil
	}
	return s.store.Notifications().MarkRead(ctx, notificationID)
}

// MarkAllRead flags every unread notification of the recipient as read
func (s *notificationServiceImpl) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	updated, err := s.store.Notifications().MarkAllRead(ctx, recipientID)
	if err != nil {
		return 0, err
	}
	s.logger.Debug().Str("recipientId", recipientID.String()).Int64("updated", updated).Msg("Notifications marked read")
	return updated, nil
}
