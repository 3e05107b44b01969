package models

import (
	"time"

	"github.com/google/uuid"
)

// LastMessage is the conversation preview. MessageID identifies the message it was
// copied from so deletions can tell whether the preview must be recomputed.
type LastMessage struct {
	MessageID uuid.UUID `json:"messageId"`
	Content   string    `json:"content"`
	SenderID  uuid.UUID `json:"sender"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is the thread between exactly two principals.
type Conversation struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Participants [2]PrincipalRef `json:"participants"`
	LastMessage  *LastMessage    `json:"lastMessage"`
	CreatedAt    time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time       `json:"updatedAt" db:"updated_at"`
}

// Participant returns the participant entry for userID.
func (c *Conversation) Participant(userID uuid.UUID) (PrincipalRef, bool) {
	for _, p := range c.Participants {
		if p.ID == userID {
			return p, true
		}
	}
	return PrincipalRef{}, false
}

// IsParticipant reports whether userID is one of the two participants.
func (c *Conversation) IsParticipant(userID uuid.UUID) bool {
	_, ok := c.Participant(userID)
	return ok
}

// Message is one entry in a conversation. Only Read ever changes after creation.
type Message struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	ConversationID uuid.UUID     `json:"conversationId" db:"conversation_id"`
	Sender         MessageSender `json:"sender"`
	Content        string        `json:"content" db:"content"`
	Read           bool          `json:"read" db:"read"`
	CreatedAt      time.Time     `json:"createdAt" db:"created_at"`
}

// MessageSender is the subset of PrincipalRef stored on a message.
type MessageSender struct {
	ID          uuid.UUID     `json:"userId"`
	Kind        PrincipalKind `json:"userType"`
	DisplayName string        `json:"username"`
}

// Preview builds the LastMessage copy of m.
func (m *Message) Preview() *LastMessage {
	return &LastMessage{
		MessageID: m.ID,
		Content:   m.Content,
		SenderID:  m.Sender.ID,
		Timestamp: m.CreatedAt,
	}
}
