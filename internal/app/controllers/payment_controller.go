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

// PaymentController handles the payment request workflow
type PaymentController struct {
	paymentService services.PaymentService
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService services.PaymentService) *PaymentController {
	return &PaymentController{
		paymentService: paymentService,
	}
}

func paymentList(items []models.PaymentRequest) dto.PaymentRequestListResponse {
	if items == nil {
		items = []models.PaymentRequest{}
	}
	return dto.PaymentRequestListResponse{PaymentRequests: items}
}

// CreateRequest godoc
// @Summary Pledge an amount to a student
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreatePaymentRequest true "Student, amount and optional message"
// @Success 201 {object} dto.APIResponse{data=models.PaymentRequest}
// @Failure 400 {object} dto.ErrorResponse "Invalid amount"
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Router /payments [post]
func (c *PaymentController) CreateRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	var req dto.CreatePaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	created, err := c.paymentService.CreateRequest(ctx, actor.ID, uuid.MustParse(req.StudentID), req.Amount, req.Message)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessMessageResponse("Payment request created successfully", created))
}

// GetSentRequests godoc
// @Summary List the alumni's payment requests
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PaymentRequestListResponse}
// @Router /payments/sent [get]
func (c *PaymentController) GetSentRequests(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	items, err := c.paymentService.ListSent(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paymentList(items)))
}

// GetReceivedRequests godoc
// @Summary List the student's payment requests
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.PaymentRequestListResponse}
// @Router /payments/received [get]
func (c *PaymentController) GetReceivedRequests(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	items, err := c.paymentService.ListReceived(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(paymentList(items)))
}

// ApproveRequest godoc
// @Summary Approve a pledge and share a UPI id
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment request ID"
// @Param request body dto.ApprovePaymentRequest true "UPI id"
// @Success 200 {object} dto.APIResponse{data=models.PaymentRequest}
// @Failure 400 {object} dto.ErrorResponse "UPI id missing"
// @Failure 403 {object} dto.ErrorResponse "Not the recipient"
// @Failure 409 {object} dto.ErrorResponse "Request already answered"
// @Router /payments/{id}/approve [post]
func (c *PaymentController) ApproveRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	// A missing body is reported by the service after the ownership and status checks
	var req dto.ApprovePaymentRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	approved, err := c.paymentService.Approve(ctx, requestID, actor.ID, req.UPIID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("Payment request approved", approved))
}

// RejectRequest godoc
// @Summary Reject a pledge
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment request ID"
// @Param request body dto.RejectPaymentRequest false "Optional reason"
// @Success 200 {object} dto.APIResponse{data=models.PaymentRequest}
// @Failure 403 {object} dto.ErrorResponse "Not the recipient"
// @Failure 409 {object} dto.ErrorResponse "Request already answered"
// @Router /payments/{id}/reject [post]
func (c *PaymentController) RejectRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	// The body is optional
	var req dto.RejectPaymentRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	rejected, err := c.paymentService.Reject(ctx, requestID, actor.ID, req.Reason)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("Payment request rejected", rejected))
}

// CompleteRequest godoc
// @Summary Record the out-of-band transfer
// @Description Retrying with the same transaction id returns the stored record
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment request ID"
// @Param request body dto.CompletePaymentRequest true "Transaction id"
// @Success 200 {object} dto.APIResponse{data=models.PaymentRequest}
// @Failure 400 {object} dto.ErrorResponse "Transaction id missing"
// @Failure 403 {object} dto.ErrorResponse "Not the sender"
// @Failure 409 {object} dto.ErrorResponse "Request not approved"
// @Router /payments/{id}/complete [post]
func (c *PaymentController) CompleteRequest(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	// A missing body is reported by the service after the ownership and status checks
	var req dto.CompletePaymentRequest
	if !middleware.BindOptionalJSON(ctx, &req) {
		return
	}

	completed, err := c.paymentService.Complete(ctx, requestID, actor.ID, req.TransactionID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessMessageResponse("Payment completed", completed))
}

// GetPaymentDetails godoc
// @Summary Where to pay an approved request
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Payment request ID"
// @Success 200 {object} dto.APIResponse{data=models.PaymentDetails}
// @Failure 403 {object} dto.ErrorResponse "Not the sender"
// @Failure 409 {object} dto.ErrorResponse "Request not approved or UPI id missing"
// @Router /payments/{id}/details [get]
func (c *PaymentController) GetPaymentDetails(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	requestID, ok := parseIDParam(ctx, "id")
	if !ok {
		return
	}

	details, err := c.paymentService.GetDetailsForAlumni(ctx, requestID, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(details))
}

// GetDashboardStats godoc
// @Summary Alumni dashboard counters
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=models.DashboardStats}
// @Router /payments/dashboard-stats [get]
func (c *PaymentController) GetDashboardStats(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}

	stats, err := c.paymentService.DashboardStats(ctx, actor.ID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats))
}
