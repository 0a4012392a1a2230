package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/internal/usecases"
)

type checkoutService interface {
	Checkout(ctx context.Context, buyerID uuid.UUID, input *entities.CheckoutInput) ([]entities.Transaction, error)
	InitiatePurchase(ctx context.Context, buyerID uuid.UUID, input *entities.PurchaseInput) (*entities.Transaction, error)
}

type escrowService interface {
	ConfirmReceipt(ctx context.Context, buyerID, txID uuid.UUID) (*entities.Transaction, error)
	Dispute(ctx context.Context, buyerID, txID uuid.UUID, input *entities.DisputeInput) (*entities.Dispute, error)
}

// EscrowHandler handles checkout and escrow lifecycle endpoints
type EscrowHandler struct {
	checkout checkoutService
	escrow   escrowService
}

// NewEscrowHandler creates a new escrow handler
func NewEscrowHandler(checkoutUsecase *usecases.CheckoutUsecase, escrowUsecase *usecases.EscrowUsecase) *EscrowHandler {
	return &EscrowHandler{checkout: checkoutUsecase, escrow: escrowUsecase}
}

// Checkout holds funds for a multi-item cart in one atomic step
// POST /api/v1/escrow/checkout
func (h *EscrowHandler) Checkout(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	txs, err := h.checkout.Checkout(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":      "funds held in escrow",
		"transactions": txs,
	})
}

// InitiatePurchase holds funds for a single listing
// POST /api/v1/escrow/purchase
func (h *EscrowHandler) InitiatePurchase(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.PurchaseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	tx, err := h.checkout.InitiatePurchase(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":     "funds held in escrow",
		"transaction": tx,
	})
}

// ConfirmReceipt releases held funds to the seller
// POST /api/v1/escrow/transactions/:id/confirm
func (h *EscrowHandler) ConfirmReceipt(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx, err := h.escrow.ConfirmReceipt(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "payment released to seller",
		"transaction": tx,
	})
}

// Dispute freezes a held purchase pending an admin ruling
// POST /api/v1/escrow/transactions/:id/dispute
func (h *EscrowHandler) Dispute(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input entities.DisputeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	dispute, err := h.escrow.Dispute(c.Request.Context(), userID, txID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message": "dispute opened",
		"dispute": dispute,
	})
}
