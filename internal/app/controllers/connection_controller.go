package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/app/services"
	"github.com/yigit/scholarlink/internal/middleware"
)

// ConnectionController handles connection request operations
type ConnectionController struct {
	connectionService services.ConnectionService
}

// NewConnectionController creates a new ConnectionController
func NewConnectionController(connectionService services.ConnectionService) *ConnectionController {
	return &ConnectionController{
		connectionService: connectionService,
	}
}

// SendRequest godoc
// @Summary Send a connection request
// @Description Sends a pending connection request to another student or alumni
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.SendConnectionRequest true "Receiver and optional message"
// @Success 201 {object} dto.APIResponse{data=models.ConnectionRequest}
// @Failure 400 {object} dto.ErrorResponse "Invalid request or self connection"
// @Failure 404 {object} dto.ErrorResponse "Receiver not found"
// @Failure 409 {object} dto.ErrorResponse "Request already sent or already connected"
// @Router /connections [post]
func (c *ConnectionController) SendRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.SendConnectionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	created, err := c.connectionService.SendRequest(ctx, actor, uuid.MustParse(req.ReceiverID), models.PrincipalKind(req.ReceiverType), req.Message)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessMessageResponse("Connection request sent successfully", created))
}

// GetPendingRequests godoc
// @Summary List pending requests addressed to the user
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionListResponse}
// @Router /connections/pending [get]
func (c *ConnectionController) GetPendingRequests(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	requests, err := c.connectionService.ListPending(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewConnectionListResponse(requests)))
}

// GetSentRequests godoc
// @Summary List requests the user has sent
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionListResponse}
// @Router /connections/sent [get]
func (c *ConnectionController) GetSentRequests(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	requests, err := c.connectionService.ListSent(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewConnectionListResponse(requests)))
}

// GetConnections godoc
// @Summary List accepted connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.ConnectionListResponse}
// @Router /connections [get]
func (c *ConnectionController) GetConnections(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	connections, err := c.connectionService.ListConnections(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.NewConnectionListResponse(connections)))
}

// CheckStatus godoc
// @Summary Connection status with another user
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param otherUserId path string true "Other user ID"
// @Success 200 {object} dto.APIResponse{data=models.ConnectionStatusView}
// @Router /connections/status/{otherUserId} [get]
func (c *ConnectionController) CheckStatus(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	otherID, ok := parseIDParam(ctx, "otherUserId")
	if !ok {
		return
	}

	status, err := c.connectionService.CheckStatus(ctx, actor.ID, otherID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(status))
}

// AcceptRequest godoc
// @Summary Accept a pending request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param requestId path string true "Connection request ID"
// @Success 200 {object} dto.APIResponse{data=models.ConnectionRequest}
// @Failure 403 {object} dto.ErrorResponse "Only the receiver can respond"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request already answered"
// @Router /connections/{requestId}/accept [put]
func (c *ConnectionController) AcceptRequest(ctx *gin.Context) {
	c.respond(ctx, c.connectionService.Accept, "Connection request accepted")
}

// RejectRequest godoc
// @Summary Reject a pending request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param requestId path string true "Connection request ID"
// @Success 200 {object} dto.APIResponse{data=models.ConnectionRequest}
// @Failure 403 {object} dto.ErrorResponse "Only the receiver can respond"
// @Failure 404 {object} dto.ErrorResponse "Request not found"
// @Failure 409 {object} dto.ErrorResponse "Request already answered"
// @Router /connections/{requestId}/reject [put]
func (c *ConnectionController) RejectRequest(ctx *gin.Context) {
	c.respond(ctx, c.connectionService.Reject, "Connection request rejected")
}

type respondFn func(ctx context.Context, requestID, actorID uuid.UUID) (*models.ConnectionRequest, error)

func (c *ConnectionController) respond(ctx *gin.Context, fn respondFn, message string) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(ctx, "requestId")
	if !ok {
		return
	}

	updated, err := fn(ctx, requestID, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse(message, updated))
}
