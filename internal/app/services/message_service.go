package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/scholarlink/internal/app/auth"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/app/repositories"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
	"github.com/yigit/scholarlink/internal/pkg/metrics"
)

// MessageService defines the interface for conversation and message operations
type MessageService interface {
	GetOrCreateConversation(ctx context.Context, actor Actor, otherID uuid.UUID, otherKind models.PrincipalKind) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID, requesterID uuid.UUID) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, content string) (*models.Message, error)
	DeleteMessage(ctx context.Context, messageID, actorID uuid.UUID) error
	ClearMessages(ctx context.Context, conversationID, actorID uuid.UUID) error
	DeleteConversation(ctx context.Context, conversationID, actorID uuid.UUID) error
	ListUsersToMessage(ctx context.Context, userID uuid.UUID, kind models.PrincipalKind) ([]dto.MessagingUserResponse, error)
}

// messageServiceImpl implements MessageService
type messageServiceImpl struct {
	store             repositories.Store
	clock             Clock
	requireConnection bool
	logger            zerolog.Logger
}

// NewMessageService creates a new MessageService
func NewMessageService(store repositories.Store, opts Options, logger zerolog.Logger) MessageService {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock
	}
	return &messageServiceImpl{
		store:             store,
		clock:             clock,
		requireConnection: opts.RequireConnection,
		logger:            logger,
	}
}

// ensureConnected enforces the accepted-connection guard when it is enabled
func (s *messageServiceImpl) ensureConnected(ctx context.Context, connections repositories.ConnectionRepository, a, b uuid.UUID) error {
	if !s.requireConnection {
		return nil
	}
	latest, err := connections.FindLatestBetween(ctx, a, b)
	if err != nil {
		return fmt.Errorf("error checking connection: %w", err)
	}
	if latest == nil || latest.Status != models.ConnectionAccepted {
		return apperrors.ErrNotConnected
	}
	return nil
}

// loadForParticipant fetches a conversation and checks the actor is in it
func loadForParticipant(ctx context.Context, conversations repositories.ConversationRepository, conversationID, actorID uuid.UUID) (*models.Conversation, error) {
	conv, err := conversations.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if err := auth.RequireParticipant(conv, actorID); err != nil {
		return nil, err
	}
	return conv, nil
}

// GetOrCreateConversation returns the pair's conversation, creating it on first use
func (s *messageServiceImpl) GetOrCreateConversation(ctx context.Context, actor Actor, otherID uuid.UUID, otherKind models.PrincipalKind) (*models.Conversation, error) {
	if actor.ID == otherID {
		return nil, apperrors.NewBadRequestError("Cannot start a conversation with yourself")
	}
	if err := s.ensureConnected(ctx, s.store.Connections(), actor.ID, otherID); err != nil {
		return nil, err
	}

	principals := s.store.Principals()
	self, err := resolveRef(ctx, principals, actor.ID, actor.Kind)
	if err != nil {
		return nil, err
	}
	other, err := resolveRef(ctx, principals, otherID, otherKind)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	conv, created, err := s.store.Conversations().GetOrCreate(ctx, &models.Conversation{
		ID:           uuid.New(),
		Participants: [2]models.PrincipalRef{self, other},
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info().
			Str("conversationId", conv.ID.String()).
			Str("userId", actor.ID.String()).
			Str("otherUserId", otherID.String()).
			Msg("Conversation created")
	}
	return conv, nil
}

// ListConversations returns the user's conversations, most recently active first
func (s *messageServiceImpl) ListConversations(ctx context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	return s.store.Conversations().ListByParticipant(ctx, userID)
}

// ListMessages returns the thread oldest first and marks the counterpart's messages read
func (s *messageServiceImpl) ListMessages(ctx context.Context, conversationID, requesterID uuid.UUID) ([]models.Message, error) {
	var messages []models.Message
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if _, err := loadForParticipant(ctx, tx.Conversations(), conversationID, requesterID); err != nil {
			return err
		}
		marked, err := tx.Messages().MarkReadFor(ctx, conversationID, requesterID)
		if err != nil {
			return err
		}
		if marked > 0 {
			s.logger.Debug().
				Str("conversationId", conversationID.String()).
				Int64("marked", marked).
				Msg("Messages marked read")
		}
		messages, err = tx.Messages().ListByConversation(ctx, conversationID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage appends a message and refreshes the conversation preview
func (s *messageServiceImpl) SendMessage(ctx context.Context, conversationID, senderID uuid.UUID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.ErrEmptyMessage
	}

	var msg *models.Message
	err := s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		conv, err := loadForParticipant(ctx, tx.Conversations(), conversationID, senderID)
		if err != nil {
			return err
		}
		self, _ := conv.Participant(senderID)
		for _, p := range conv.Participants {
			if p.ID != senderID {
				if err := s.ensureConnected(ctx, tx.Connections(), senderID, p.ID); err != nil {
					return err
				}
			}
		}

		msg = &models.Message{
			ID:             uuid.New(),
			ConversationID: conversationID,
			Sender: models.MessageSender{
				ID:          self.ID,
				Kind:        self.Kind,
				DisplayName: self.DisplayName,
			},
			Content:   content,
			Read:      false,
			CreatedAt: s.clock.Now(),
		}
		if err := tx.Messages().Create(ctx, msg); err != nil {
			return err
		}
		return tx.Conversations().SetLastMessage(ctx, conversationID, msg.Preview(), msg.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	metrics.MessagesSent.Inc()
	s.logger.Debug().
		Str("conversationId", conversationID.String()).
		Str("messageId", msg.ID.String()).
		Msg("Message sent")
	return msg, nil
}

// DeleteMessage removes the sender's own message and recomputes the preview if needed
func (s *messageServiceImpl) DeleteMessage(ctx context.Context, messageID, actorID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		msg, err := tx.Messages().GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if err := auth.RequireMessageSender(msg, actorID); err != nil {
			return err
		}
		if err := tx.Messages().Delete(ctx, messageID); err != nil {
			return err
		}

		conv, err := tx.Conversations().GetByID(ctx, msg.ConversationID)
		if err != nil {
			return err
		}
		if conv.LastMessage == nil || conv.LastMessage.MessageID != messageID {
			return nil
		}

		latest, err := tx.Messages().Latest(ctx, msg.ConversationID)
		if err != nil {
			return err
		}
		var preview *models.LastMessage
		if latest != nil {
			preview = latest.Preview()
		}
		return tx.Conversations().SetLastMessage(ctx, msg.ConversationID, preview, s.clock.Now())
	})
}

// ClearMessages deletes every message of the conversation
func (s *messageServiceImpl) ClearMessages(ctx context.Context, conversationID, actorID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if _, err := loadForParticipant(ctx, tx.Conversations(), conversationID, actorID); err != nil {
			return err
		}
		deleted, err := tx.Messages().DeleteByConversation(ctx, conversationID)
		if err != nil {
			return err
		}
		s.logger.Info().
			Str("conversationId", conversationID.String()).
			Int64("deleted", deleted).
			Msg("Conversation cleared")
		return tx.Conversations().SetLastMessage(ctx, conversationID, nil, s.clock.Now())
	})
}

// DeleteConversation deletes the messages and then the conversation in one unit
func (s *messageServiceImpl) DeleteConversation(ctx context.Context, conversationID, actorID uuid.UUID) error {
	return s.store.WithinTx(ctx, func(ctx context.Context, tx repositories.Store) error {
		if _, err := loadForParticipant(ctx, tx.Conversations(), conversationID, actorID); err != nil {
			return err
		}
		if _, err := tx.Messages().DeleteByConversation(ctx, conversationID); err != nil {
			return err
		}
		if err := tx.Conversations().Delete(ctx, conversationID); err != nil {
			return err
		}
		s.logger.Info().Str("conversationId", conversationID.String()).Msg("Conversation deleted")
		return nil
	})
}

// ListUsersToMessage returns the counterpart-kind principals the user is connected with
func (s *messageServiceImpl) ListUsersToMessage(ctx context.Context, userID uuid.UUID, kind models.PrincipalKind) ([]dto.MessagingUserResponse, error) {
	if !kind.Valid() {
		return nil, apperrors.ErrInvalidKind
	}

	accepted, err := s.store.Connections().ListAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}

	want := kind.Counterpart()
	var ids []uuid.UUID
	for i := range accepted {
		other := accepted[i].Counterpart(userID)
		if other.Kind == want {
			ids = append(ids, other.ID)
		}
	}

	users := []dto.MessagingUserResponse{}
	principals := s.store.Principals()
	if want == models.KindAlumni {
		alumni, err := principals.GetAlumniByIDs(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range alumni {
			users = append(users, dto.FromAlumni(&alumni[i]))
		}
		return users, nil
	}

	students, err := principals.GetStudentsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range students {
		users = append(users, dto.FromStudent(&students[i]))
	}
	return users, nil
}
