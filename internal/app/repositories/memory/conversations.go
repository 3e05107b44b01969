package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

type conversationRepo struct{ s *Store }

func (r *conversationRepo) GetOrCreate(_ context.Context, conv *models.Conversation) (*models.Conversation, bool, error) {
	var (
		out     *models.Conversation
		created bool
	)
	a, b := conv.Participants[0].ID, conv.Participants[1].ID
	err := r.s.view(func(st *state) error {
		for _, c := range st.conversations {
			if c.IsParticipant(a) && c.IsParticipant(b) {
				out = &c
				return nil
			}
		}
		stored := *conv
		st.conversations[conv.ID] = stored
		st.track(conv.ID)
		out = &stored
		created = true
		return nil
	})
	return out, created, err
}

func (r *conversationRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Conversation, error) {
	var out *models.Conversation
	err := r.s.view(func(st *state) error {
		c, ok := st.conversations[id]
		if !ok {
			return apperrors.ErrConversationNotFound
		}
		out = &c
		return nil
	})
	return out, err
}

// activity compares conversations by last message time, conversations without
// messages sorting after every conversation that has one.
func activity(a, b models.Conversation) int {
	switch {
	case a.LastMessage != nil && b.LastMessage != nil:
		if c := a.LastMessage.Timestamp.Compare(b.LastMessage.Timestamp); c != 0 {
			return c
		}
	case a.LastMessage != nil:
		return 1
	case b.LastMessage != nil:
		return -1
	}
	return a.UpdatedAt.Compare(b.UpdatedAt)
}

func (r *conversationRepo) ListByParticipant(_ context.Context, userID uuid.UUID) ([]models.Conversation, error) {
	out := []models.Conversation{}
	err := r.s.view(func(st *state) error {
		for _, c := range st.conversations {
			if c.IsParticipant(userID) {
				out = append(out, c)
			}
		}
		newestFirst(st, out, func(c models.Conversation) uuid.UUID { return c.ID }, activity)
		return nil
	})
	return out, err
}

func (r *conversationRepo) SetLastMessage(_ context.Context, id uuid.UUID, last *models.LastMessage, at time.Time) error {
	return r.s.view(func(st *state) error {
		c, ok := st.conversations[id]
		if !ok {
			return apperrors.ErrConversationNotFound
		}
		if last != nil {
			copied := *last
			last = &copied
		}
		c.LastMessage = last
		c.UpdatedAt = at
		st.conversations[id] = c
		return nil
	})
}

func (r *conversationRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.view(func(st *state) error {
		if _, ok := st.conversations[id]; !ok {
			return apperrors.ErrConversationNotFound
		}
		for mid, m := range st.messages {
			if m.ConversationID == id {
				delete(st.messages, mid)
			}
		}
		delete(st.conversations, id)
		return nil
	})
}
