package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/scholarlink/internal/app/controllers"
	"github.com/yigit/scholarlink/internal/app/models"
	"github.com/yigit/scholarlink/internal/app/models/dto"
	"github.com/yigit/scholarlink/internal/middleware"
)

// Controllers groups the HTTP handlers mounted under /api/v1
type Controllers struct {
	Connections   *controllers.ConnectionController
	Messages      *controllers.MessageController
	Payments      *controllers.PaymentController
	Notifications *controllers.NotificationController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, ctrl Controllers, authMiddleware *middleware.AuthMiddleware) {
	// API version group
	v1 := router.Group("/api/v1")

	// Health check endpoint (public)
	v1.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"status": "ok"}))
	})

	// --- Authenticated Routes Group ---
	authenticated := v1.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	connections := authenticated.Group("/connections")
	{
		connections.POST("", ctrl.Connections.SendRequest)
		connections.GET("", ctrl.Connections.GetConnections)
		connections.GET("/pending", ctrl.Connections.GetPendingRequests)
		connections.GET("/sent", ctrl.Connections.GetSentRequests)
		connections.GET("/status/:otherUserId", ctrl.Connections.CheckStatus)
		connections.PUT("/:requestId/accept", ctrl.Connections.AcceptRequest)
		connections.PUT("/:requestId/reject", ctrl.Connections.RejectRequest)
	}

	conversations := authenticated.Group("/conversations")
	{
		conversations.GET("", ctrl.Messages.GetConversations)
		conversations.POST("", ctrl.Messages.GetOrCreateConversation)
		conversations.DELETE("/:id", ctrl.Messages.DeleteConversation)
		conversations.GET("/:id/messages", ctrl.Messages.GetMessages)
		conversations.POST("/:id/messages", ctrl.Messages.SendMessage)
		conversations.DELETE("/:id/messages", ctrl.Messages.ClearMessages) // clear the thread
	}
	authenticated.DELETE("/messages/:messageId", ctrl.Messages.DeleteMessage)
	authenticated.GET("/messaging/users", ctrl.Messages.GetUsersToMessage)

	payments := authenticated.Group("/payments")
	{
		// Alumni side of the workflow
		alumni := payments.Group("")
		alumni.Use(authMiddleware.KindRequired(models.KindAlumni))
		{
			alumni.POST("", ctrl.Payments.CreateRequest)
			alumni.GET("/sent", ctrl.Payments.GetSentRequests)
			alumni.GET("/dashboard-stats", ctrl.Payments.GetDashboardStats)
			alumni.GET("/:id/details", ctrl.Payments.GetPaymentDetails)
			alumni.POST("/:id/complete", ctrl.Payments.CompleteRequest)
		}

		// Student side of the workflow
		students := payments.Group("")
		students.Use(authMiddleware.KindRequired(models.KindStudent))
		{
			students.GET("/received", ctrl.Payments.GetReceivedRequests)
			students.POST("/:id/approve", ctrl.Payments.ApproveRequest)
			students.POST("/:id/reject", ctrl.Payments.RejectRequest)
		}
	}

	notifications := authenticated.Group("/notifications")
	{
		notifications.GET("", ctrl.Notifications.GetNotifications)
		notifications.GET("/unread-count", ctrl.Notifications.GetUnreadCount)
		notifications.PUT("/read-all", ctrl.Notifications.MarkAllRead)
		notifications.PUT("/:id/read", ctrl.Notifications.MarkRead)
	}
}
