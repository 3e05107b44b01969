package auth

import (
	"github.com/google/uuid"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/pkg/apperrors"
)

// Party checks. Each returns a Forbidden error naming what the actor is not.

// RequireConnectionReceiver allows only the receiver to respond to a request
func RequireConnectionReceiver(req *models.ConnectionRequest, actorID uuid.UUID) error {
	if req.Receiver.ID != actorID {
		return apperrors.NewForbiddenError("Only the receiver can respond to this connection request")
	}
	return nil
}

// RequireParticipant allows only one of the two participants
func RequireParticipant(conv *models.Conversation, actorID uuid.UUID) error {
	if !conv.IsParticipant(actorID) {
		return apperrors.NewForbiddenError("You are not a participant in this conversation")
	}
	return nil
}

// RequireMessageSender allows only the author of a message
func RequireMessageSender(msg *models.Message, actorID uuid.UUID) error {
	if msg.Sender.ID != actorID {
		return apperrors.NewForbiddenError("You can only delete your own messages")
	}
	return nil
}

// RequirePaymentRecipient allows only the student the request was sent to
func RequirePaymentRecipient(req *models.PaymentRequest, studentID uuid.UUID) error {
	if req.RecipientID != studentID {
		return apperrors.NewForbiddenError("This payment request was not sent to you")
	}
	return nil
}

// RequirePaymentSender allows only the alumni that created the request
func RequirePaymentSender(req *models.PaymentRequest, alumniID uuid.UUID) error {
	if req.SenderID != alumniID {
		return apperrors.NewForbiddenError("This payment request was not created by you")
	}
	return nil
}

// RequireNotificationRecipient allows only the recipient of a notification
func RequireNotificationRecipient(n *models.Notification, actorID uuid.UUID) error {
	if n.Recipient.ID != actorID {
		return apperrors.NewForbiddenError("This notification does not belong to you")
	}
	return nil
}
