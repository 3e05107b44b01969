package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/app/services"
	"github.com/yigit/scholarlink/internal/middleware"
)

// MessageController handles conversation and message operations
type MessageController struct {
	messageService services.MessageService
}

// NewMessageController creates a new MessageController
func NewMessageController(messageService services.MessageService) *MessageController {
	return &MessageController{
		messageService: messageService,
	}
}

// GetConversations godoc
// @Summary List the user's conversations
// @Description Conversations ordered by latest message, conversations without messages last
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConversationListResponse}
// @Router /conversations [get]
func (c *MessageController) GetConversations(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	conversations, err := c.messageService.ListConversations(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if conversations == nil {
		conversations = []models.Conversation{}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.ConversationListResponse{Conversations: conversations}))
}

// GetOrCreateConversation godoc
// @Summary Get or create the conversation with another user
// @Tags messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.GetOrCreateConversationRequest true "Counterpart"
// @Success 200 {object} dto.APIResponse{data=models.Conversation}
// @Failure 403 {object} dto.ErrorResponse "No accepted connection"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /conversations [post]
func (c *MessageController) GetOrCreateConversation(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.GetOrCreateConversationRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	conv, err := c.messageService.GetOrCreateConversation(ctx, actor, uuid.MustParse(req.OtherUserID), models.PrincipalKind(req.OtherUserType))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(conv))
}

// GetMessages godoc
// @Summary List a conversation's messages
// @Description Oldest first. Messages from the other participant are marked read.
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} dto.APIResponse{data=dto.MessageListResponse}
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Failure 404 {object} dto.ErrorResponse "Conversation not found"
// @Router /conversations/{id}/messages [get]
func (c *MessageController) GetMessages(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	conversationID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	messages, err := c.messageService.ListMessages(ctx, conversationID, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if messages == nil {
		messages = []models.Message{}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.MessageListResponse{Messages: messages}))
}

// SendMessage godoc
// @Summary Send a message
// @Tags messaging
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Param request body dto.SendMessageRequest true "Message content"
// @Success 201 {object} dto.APIResponse{data=models.Message}
// @Failure 400 {object} dto.ErrorResponse "Empty content"
// @Failure 403 {object} dto.ErrorResponse "Not a participant"
// @Router /conversations/{id}/messages [post]
func (c *MessageController) SendMessage(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	conversationID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	var req dto.SendMessageRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	msg, err := c.messageService.SendMessage(ctx, conversationID, actor.ID, req.Content)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(msg))
}

// ClearMessages godoc
// @Summary Delete every message of a conversation
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} dto.APIResponse
// @Router /conversations/{id}/messages [delete]
func (c *MessageController) ClearMessages(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	conversationID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.messageService.ClearMessages(ctx, conversationID, actor.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("Conversation cleared successfully", nil))
}

// DeleteConversation godoc
// @Summary Delete a conversation and its messages
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param id path string true "Conversation ID"
// @Success 200 {object} dto.APIResponse
// @Router /conversations/{id} [delete]
func (c *MessageController) DeleteConversation(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	conversationID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	if err := c.messageService.DeleteConversation(ctx, conversationID, actor.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("Conversation deleted successfully", nil))
}

// DeleteMessage godoc
// @Summary Delete one of the user's own messages
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Param messageId path string true "Message ID"
// @Success 200 {object} dto.APIResponse
// @Failure 403 {object} dto.ErrorResponse "Not the sender"
// @Router /messages/{messageId} [delete]
func (c *MessageController) DeleteMessage(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	messageID, ok := parseIDParam(ctx, "messageId")
	if !ok {
		return
	}

	if err := c.messageService.DeleteMessage(ctx, messageID, actor.ID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("Message deleted successfully", nil))
}

// GetUsersToMessage godoc
// @Summary Connected users of the opposite kind
// @Tags messaging
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=[]dto.MessagingUserResponse}
// @Router /messaging/users [get]
func (c *MessageController) GetUsersToMessage(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	users, err := c.messageService.ListUsersToMessage(ctx, actor.ID, actor.Kind)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(users))
}
