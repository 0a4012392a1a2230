package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/internal/usecases"
)

type orderService interface {
	ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]entities.Transaction, error)
	ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]entities.Transaction, error)
	MarkDelivered(ctx context.Context, sellerID, txID uuid.UUID) (*entities.Transaction, error)
}

// OrderHandler handles buyer/seller order views and delivery confirmation
type OrderHandler struct {
	orders orderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(escrowUsecase *usecases.EscrowUsecase) *OrderHandler {
	return &OrderHandler{orders: escrowUsecase}
}

// ListBuying lists purchases the caller has made
// GET /api/v1/orders/buying
func (h *OrderHandler) ListBuying(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListBuyerOrders(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"orders": orders})
}

// ListSelling lists sales of the caller's listings
// GET /api/v1/orders/selling
func (h *OrderHandler) ListSelling(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	orders, err := h.orders.ListSellerOrders(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"orders": orders})
}

// MarkDelivered stamps a held order as delivered by the seller
// POST /api/v1/orders/:id/delivered
func (h *OrderHandler) MarkDelivered(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx, err := h.orders.MarkDelivered(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":     "order marked as delivered",
		"transaction": tx,
	})
}
