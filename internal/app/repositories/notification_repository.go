package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/logger"
)

var notificationColumns = []string{
	"id", "recipient_id", "recipient_kind", "sender_id", "sender_kind", "type", "title", "message",
	"related_id", "related_kind", "is_read", "action_url", "created_at",
}

type notificationRepository struct {
	db DBTX
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db DBTX) NotificationRepository {
	return &notificationRepository{db: db}
}

func scanNotification(row pgx.Row) (*models.Notification, error) {
	var n models.Notification
	err := row.Scan(
		&n.ID, &n.Recipient.ID, &n.Recipient.Kind, &n.Sender.ID, &n.Sender.Kind,
		&n.Type, &n.Title, &n.Message, &n.RelatedID, &n.RelatedKind, &n.IsRead, &n.ActionURL, &n.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// Create inserts a notification
func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	sql, args, err := psql.Insert("notifications").Columns(notificationColumns...).
		Values(n.ID, n.Recipient.ID, n.Recipient.Kind, n.Sender.ID, n.Sender.Kind, n.Type, n.Title, n.Message,
			n.RelatedID, n.RelatedKind, n.IsRead, n.ActionURL, n.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create notification query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("recipientId", n.Recipient.ID.String()).Msg("Error creating notification")
		return fmt.Errorf("error creating notification: %w", err)
	}
	return nil
}

// GetByID retrieves a notification by ID
func (r *notificationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Notification, error) {
	sql, args, err := psql.Select(notificationColumns...).From("notifications").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get notification query: %w", err)
	}

	n, err := scanNotification(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotificationNotFound
		}
		return nil, fmt.Errorf("error retrieving notification: %w", err)
	}
	return n, nil
}

// List returns one page of the recipient's notifications, newest first, and the total
func (r *notificationRepository) List(ctx context.Context, recipientID uuid.UUID, filter models.NotificationFilter) ([]models.Notification, int64, error) {
	where := squirrel.Eq{"recipient_id": recipientID}
	if filter.UnreadOnly {
		where["is_read"] = false
	}

	countSQL, countArgs, err := psql.Select("COUNT(*)").From("notifications").Where(where).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build notification count query: %w", err)
	}
	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("error counting notifications: %w", err)
	}

	qb := psql.Select(notificationColumns...).From("notifications").
		Where(where).
		OrderBy("created_at DESC", "id DESC").
		Offset(filter.Offset)
	if filter.Limit > 0 {
		qb = qb.Limit(uint64(filter.Limit))
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build notification list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("error querying notifications: %w", err)
	}
	defer rows.Close()

	notifications := []models.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("error scanning notification: %w", err)
		}
		notifications = append(notifications, *n)
	}
	return notifications, total, rows.Err()
}

// CountUnread counts the recipient's unread notifications
func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting unread notifications: %w", err)
	}
	return count, nil
}

// MarkRead flags one notification as read
func (r *notificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("error marking notification read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead flags every unread notification of the recipient as read
func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE recipient_id = $1 AND is_read = FALSE`, recipientID)
	if err != nil {
		return 0, fmt.Errorf("error marking notifications read: %w", err)
	}
	return tag.RowsAffected(), nil
}
