package dto

import (
	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
)

// GetOrCreateConversationRequest is the body of POST /conversations
type GetOrCreateConversationRequest struct {
	OtherUserID   string `json:"otherUserId" binding:"required,uuid"`
	OtherUserType string `json:"otherUserType" binding:"required,oneof=Student Alumni"`
}

// SendMessageRequest is the body of POST /conversations/:id/messages
type SendMessageRequest struct {
	Content string `json:"content" binding:"required,max=5000"`
}

// MessagingUserResponse is a connected counterpart the user can start a conversation with
type MessagingUserResponse struct {
	ID             uuid.UUID            `json:"id"`
	Username       string               `json:"username"`
	Email          string               `json:"email"`
	ProfilePicture *string              `json:"profilePicture,omitempty"`
	UserType       models.PrincipalKind `json:"userType"`
	Company        *string              `json:"company,omitempty"`
	Designation    *string              `json:"designation,omitempty"`
	CurrentDegree  *string              `json:"currentDegree,omitempty"`
	Branch         *string              `json:"branch,omitempty"`
}

// FromAlumni converts an alumni profile to a messaging entry
func FromAlumni(a *models.Alumni) MessagingUserResponse {
	return MessagingUserResponse{
		ID:             a.ID,
		Username:       a.DisplayName,
		Email:          a.Email,
		ProfilePicture: a.AvatarRef,
		UserType:       models.KindAlumni,
		Company:        a.Company,
		Designation:    a.Designation,
	}
}

// FromStudent converts a student profile to a messaging entry
func FromStudent(s *models.Student) MessagingUserResponse {
	return MessagingUserResponse{
		ID:             s.ID,
		Username:       s.DisplayName,
		Email:          s.Email,
		ProfilePicture: s.AvatarRef,
		UserType:       models.KindStudent,
		CurrentDegree:  s.CurrentDegree,
		Branch:         s.Branch,
	}
}

// ConversationListResponse wraps the user's conversations
type ConversationListResponse struct {
	Conversations []models.Conversation `json:"conversations"`
}

// MessageListResponse wraps the messages of one conversation
type MessageListResponse struct {
	Messages []models.Message `json:"messages"`
}
