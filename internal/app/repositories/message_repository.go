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

var messageColumns = []string{
	"id", "conversation_id", "sender_id", "sender_kind", "sender_name", "content", "read", "created_at",
}

type messageRepository struct {
	db DBTX
}

// NewMessageRepository creates a new MessageRepository
func NewMessageRepository(db DBTX) MessageRepository {
	return &messageRepository{db: db}
}

func scanMessage(row pgx.Row) (*models.Message, error) {
	var m models.Message
	err := row.Scan(
		&m.ID, &m.ConversationID, &m.Sender.ID, &m.Sender.Kind, &m.Sender.DisplayName,
		&m.Content, &m.Read, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a message
func (r *messageRepository) Create(ctx context.Context, msg *models.Message) error {
	sql, args, err := psql.Insert("messages").Columns(messageColumns...).
		Values(msg.ID, msg.ConversationID, msg.Sender.ID, msg.Sender.Kind, msg.Sender.DisplayName,
			msg.Content, msg.Read, msg.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create message query: %w", err)
	}
	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		logger.Error().Err(err).Str("conversationId", msg.ConversationID.String()).Msg("Error creating message")
		return fmt.Errorf("error creating message: %w", err)
	}
	return nil
}

// GetByID retrieves a message by ID
func (r *messageRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Message, error) {
	sql, args, err := psql.Select(messageColumns...).From("messages").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get message query: %w", err)
	}

	m, err := scanMessage(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrMessageNotFound
		}
		return nil, fmt.Errorf("error retrieving message: %w", err)
	}
	return m, nil
}

// ListByConversation returns the thread oldest first
func (r *messageRepository) ListByConversation(ctx context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	sql, args, err := psql.Select(messageColumns...).From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build message list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying messages: %w", err)
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning message: %w", err)
		}
		messages = append(messages, *m)
	}
	return messages, rows.Err()
}

// MarkReadFor marks the counterpart's unread messages as read
func (r *messageRepository) MarkReadFor(ctx context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	sql, args, err := psql.Update("messages").
		Set("read", true).
		Where(squirrel.Eq{"conversation_id": conversationID, "read": false}).
		Where(squirrel.NotEq{"sender_id": readerID}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build mark read query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("conversationId", conversationID.String()).Msg("Error marking messages read")
		return 0, fmt.Errorf("error marking messages read: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Latest returns the newest remaining message of the conversation
func (r *messageRepository) Latest(ctx context.Context, conversationID uuid.UUID) (*models.Message, error) {
	sql, args, err := psql.Select(messageColumns...).From("messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build latest message query: %w", err)
	}

	m, err := scanMessage(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("error retrieving latest message: %w", err)
	}
	return m, nil
}

// Delete removes one message
func (r *messageRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Str("messageId", id.String()).Msg("Error deleting message")
		return fmt.Errorf("error deleting message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrMessageNotFound
	}
	return nil
}

// DeleteByConversation removes every message of a conversation
func (r *messageRepository) DeleteByConversation(ctx context.Context, conversationID uuid.UUID) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM messages WHERE conversation_id = $1`, conversationID)
	if err != nil {
		logger.Error().Err(err).Str("conversationId", conversationID.String()).Msg("Error clearing messages")
		return 0, fmt.Errorf("error clearing messages: %w", err)
	}
	return tag.RowsAffected(), nil
}
