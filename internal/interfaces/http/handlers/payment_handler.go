package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/infrastructure/gateway"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/internal/usecases"
)

// PaystackSignatureHeader carries the HMAC the gateway computed over the body
const PaystackSignatureHeader = "X-Paystack-Signature"

type depositService interface {
	InitializeDeposit(ctx context.Context, userID uuid.UUID, amount string) (*gateway.InitializeData, error)
	HandleWebhook(ctx context.Context, rawBody []byte, signature string) error
	VerifyDeposit(ctx context.Context, userID uuid.UUID, reference string) (*entities.Transaction, error)
}

// PaymentHandler handles deposit initialization and gateway reconciliation
type PaymentHandler struct {
	deposits depositService
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(depositUsecase *usecases.DepositUsecase) *PaymentHandler {
	return &PaymentHandler{deposits: depositUsecase}
}

// InitializeDeposit starts a hosted checkout session for a wallet top-up
// POST /api/v1/payments/deposit
func (h *PaymentHandler) InitializeDeposit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input struct {
		Amount string `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	data, err := h.deposits.InitializeDeposit(c.Request.Context(), userID, input.Amount)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"authorizationUrl": data.AuthorizationURL,
		"accessCode":       data.AccessCode,
		"reference":        data.Reference,
	})
}

// VerifyDeposit reconciles a deposit against the gateway on demand
// GET /api/v1/payments/verify/:reference
func (h *PaymentHandler) VerifyDeposit(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	reference := c.Param("reference")
	if reference == "" {
		response.Error(c, domainerrors.BadRequest("reference is required"))
		return
	}

	tx, err := h.deposits.VerifyDeposit(c.Request.Context(), userID, reference)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "deposit confirmed",
		"transaction": tx,
	})
}

// PaystackWebhook ingests gateway events. The raw body goes to the usecase
// untouched; the signature must be checked over the exact bytes sent.
// POST /api/v1/payments/webhook/paystack
func (h *PaymentHandler) PaystackWebhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		response.Error(c, domainerrors.BadRequest("unreadable body"))
		return
	}

	signature := c.GetHeader(PaystackSignatureHeader)
	if err := h.deposits.HandleWebhook(c.Request.Context(), rawBody, signature); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"received": true})
}
