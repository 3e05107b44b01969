package dto

import (
	"github.com/yigit/scholarlink/internal/app/models"
)

// SendConnectionRequest is the body of POST /connections
type SendConnectionRequest struct {
	ReceiverID   string `json:"receiverId" binding:"required,uuid"`
	ReceiverType string `json:"receiverType" binding:"required,oneof=Student Alumni"`
	Message      string `json:"message" binding:"max=1000"`
}

// ConnectionListResponse wraps a list of connection records
type ConnectionListResponse struct {
	Requests []models.ConnectionRequest `json:"requests"`
}

// NewConnectionListResponse never returns a nil list so clients always get []
func NewConnectionListResponse(reqs []models.ConnectionRequest) ConnectionListResponse {
	if reqs == nil {
		reqs = []models.ConnectionRequest{}
	}
	return ConnectionListResponse{Requests: reqs}
}
