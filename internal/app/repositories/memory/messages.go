package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

type messageRepo struct{ s *Store }

func messageID(m models.Message) uuid.UUID { return m.ID }

func messageTime(a, b models.Message) int { return a.CreatedAt.Compare(b.CreatedAt) }

func (r *messageRepo) Create(_ context.Context, msg *models.Message) error {
	return r.s.view(func(st *state) error {
		if _, ok := st.conversations[msg.ConversationID]; !ok {
			return apperrors.ErrConversationNotFound
		}
		st.messages[msg.ID] = *msg
		st.track(msg.ID)
		return nil
	})
}

func (r *messageRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Message, error) {
	var out *models.Message
	err := r.s.view(func(st *state) error {
		m, ok := st.messages[id]
		if !ok {
			return apperrors.ErrMessageNotFound
		}
		out = &m
		return nil
	})
	return out, err
}

func (r *messageRepo) ListByConversation(_ context.Context, conversationID uuid.UUID) ([]models.Message, error) {
	out := []models.Message{}
	err := r.s.view(func(st *state) error {
		for _, m := range st.messages {
			if m.ConversationID == conversationID {
				out = append(out, m)
			}
		}
		oldestFirst(st, out, messageID, messageTime)
		return nil
	})
	return out, err
}

func (r *messageRepo) MarkReadFor(_ context.Context, conversationID, readerID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.view(func(st *state) error {
		for id, m := range st.messages {
			if m.ConversationID == conversationID && m.Sender.ID != readerID && !m.Read {
				m.Read = true
				st.messages[id] = m
				n++
			}
		}
		return nil
	})
	return n, err
}

func (r *messageRepo) Latest(_ context.Context, conversationID uuid.UUID) (*models.Message, error) {
	var out *models.Message
	err := r.s.view(func(st *state) error {
		var thread []models.Message
		for _, m := range st.messages {
			if m.ConversationID == conversationID {
				thread = append(thread, m)
			}
		}
		if len(thread) == 0 {
			return nil
		}
		newestFirst(st, thread, messageID, messageTime)
		out = &thread[0]
		return nil
	})
	return out, err
}

func (r *messageRepo) Delete(_ context.Context, id uuid.UUID) error {
	return r.s.view(func(st *state) error {
		if _, ok := st.messages[id]; !ok {
			return apperrors.ErrMessageNotFound
		}
		delete(st.messages, id)
		return nil
	})
}

func (r *messageRepo) DeleteByConversation(_ context.Context, conversationID uuid.UUID) (int64, error) {
	var n int64
	err := r.s.view(func(st *state) error {
		for id, m := range st.messages {
			if m.ConversationID == conversationID {
				delete(st.messages, id)
				n++
			}
		}
		return nil
	})
	return n, err
}
