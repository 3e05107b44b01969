package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/logger"
)

var conversationColumns = []string{
	"id",
	"participant_a_id", "participant_a_kind", "participant_a_name", "participant_a_avatar",
	"participant_b_id", "participant_b_kind", "participant_b_name", "participant_b_avatar",
	"last_message_id", "last_message_content", "last_message_sender", "last_message_at",
	"created_at", "updated_at",
}

type conversationRepository struct {
	db DBTX
}

// NewConversationRepository creates a new ConversationRepository
func NewConversationRepository(db DBTX) ConversationRepository {
	return &conversationRepository{db: db}
}

func scanConversation(row pgx.Row) (*models.Conversation, error) {
	var (
		c             models.Conversation
		lastID        *uuid.UUID
		lastContent   *string
		lastSender    *uuid.UUID
		lastTimestamp *time.Time
	)
	a, b := &c.Participants[0], &c.Participants[1]
	err := row.Scan(
		&c.ID,
		&a.ID, &a.Kind, &a.DisplayName, &a.AvatarRef,
		&b.ID, &b.Kind, &b.DisplayName, &b.AvatarRef,
		&lastID, &lastContent, &lastSender, &lastTimestamp,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if lastID != nil && lastContent != nil && lastSender != nil && lastTimestamp != nil {
		c.LastMessage = &models.LastMessage{
			MessageID: *lastID,
			Content:   *lastContent,
			SenderID:  *lastSender,
			Timestamp: *lastTimestamp,
		}
	}
	return &c, nil
}

func (r *conversationRepository) getByPair(ctx context.Context, low, high uuid.UUID) (*models.Conversation, error) {
	sql, args, err := psql.Select(conversationColumns...).From("conversations").
		Where(squirrel.Eq{"pair_low": low, "pair_high": high}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build conversation pair query: %w", err)
	}

	c, err := scanConversation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}
	return c, nil
}

// GetOrCreate inserts conv unless the pair already has a conversation. Concurrent
// callers converge on the same row through the pair constraint.
func (r *conversationRepository) GetOrCreate(ctx context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	a, b := conv.Participants[0], conv.Participants[1]
	low, high := models.CanonicalPair(a.ID, b.ID)

	sql, args, err := psql.Insert("conversations").
		Columns(
			"id",
			"participant_a_id", "participant_a_kind", "participant_a_name", "participant_a_avatar",
			"participant_b_id", "participant_b_kind", "participant_b_name", "participant_b_avatar",
			"pair_low", "pair_high", "created_at", "updated_at",
		).
		Values(
			conv.ID,
			a.ID, a.Kind, a.DisplayName, a.AvatarRef,
			b.ID, b.Kind, b.DisplayName, b.AvatarRef,
			low, high, conv.CreatedAt, conv.UpdatedAt,
		).
		Suffix("ON CONFLICT (pair_low, pair_high) DO NOTHING").
		ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build create conversation query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("conversationId", conv.ID.String()).Msg("Error creating conversation")
		return nil, false, fmt.Errorf("error creating conversation: %w", err)
	}

	stored, err := r.getByPair(ctx, low, high)
	if err != nil {
		return nil, false, err
	}
	return stored, tag.RowsAffected() == 1, nil
}

// GetByID retrieves a conversation by ID
func (r *conversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Conversation, error) {
	sql, args, err := psql.Select(conversationColumns...).From("conversations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get conversation query: %w", err)
	}

	c, err := scanConversation(r.db.QueryRow(ctx, sql, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrConversationNotFound
		}
		return nil, fmt.Errorf("error retrieving conversation: %w", err)
	}
	return c, nil
}

// ListByParticipant returns the user's conversations, most recently active first
func (r *conversationRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	sql, args, err := psql.Select(conversationColumns...).From("conversations").
		Where(squirrel.Or{squirrel.Eq{"participant_a_id": userID}, squirrel.Eq{"participant_b_id": userID}}).
		OrderBy("last_message_at DESC NULLS LAST", "updated_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build conversation list query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("error querying conversations: %w", err)
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		c, err := scanConversation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning conversation: %w", err)
		}
		conversations = append(conversations, *c)
	}
	return conversations, rows.Err()
}

// SetLastMessage replaces the preview; a nil last clears it
func (r *conversationRepository) SetLastMessage(ctx context.Context, id uuid.UUID, last *models.LastMessage, at time.Time) error {
	qb := psql.Update("conversations").Set("updated_at", at).Where(squirrel.Eq{"id": id})
	if last == nil {
		qb = qb.Set("last_message_id", nil).
			Set("last_message_content", nil).
			Set("last_message_sender", nil).
			Set("last_message_at", nil)
	} else {
		qb = qb.Set("last_message_id", last.MessageID).
			Set("last_message_content", last.Content).
			Set("last_message_sender", last.SenderID).
			Set("last_message_at", last.Timestamp)
	}

	sql, args, err := qb.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build last message query: %w", err)
	}
	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("conversationId", id.String()).Msg("Error updating last message")
		return fmt.Errorf("error updating last message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}

// Delete removes a conversation. Remaining messages are removed by the foreign key cascade.
func (r *conversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Str("conversationId", id.String()).Msg("Error deleting conversation")
		return fmt.Errorf("error deleting conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrConversationNotFound
	}
	return nil
}
