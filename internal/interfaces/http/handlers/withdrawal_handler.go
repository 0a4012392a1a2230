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
	"campus-market.backend/pkg/utils"
)

type withdrawalService interface {
	RequestWithdrawal(ctx context.Context, userID uuid.UUID, input *entities.RequestWithdrawalInput) (*entities.Withdrawal, error)
	ListWithdrawals(ctx context.Context, userID uuid.UUID, page, limit int) ([]entities.Withdrawal, utils.PaginationMeta, error)
	GetWithdrawal(ctx context.Context, userID, withdrawalID uuid.UUID) (*entities.Withdrawal, error)
}

// WithdrawalHandler handles payout endpoints
type WithdrawalHandler struct {
	withdrawals withdrawalService
}

// NewWithdrawalHandler creates a new withdrawal handler
func NewWithdrawalHandler(withdrawalUsecase *usecases.WithdrawalUsecase) *WithdrawalHandler {
	return &WithdrawalHandler{withdrawals: withdrawalUsecase}
}

// RequestWithdrawal debits the wallet and queues a payout
// POST /api/v1/withdrawals
func (h *WithdrawalHandler) RequestWithdrawal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.RequestWithdrawalInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	withdrawal, err := h.withdrawals.RequestWithdrawal(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":    "withdrawal requested",
		"withdrawal": withdrawal,
	})
}

// ListWithdrawals lists the caller's payout requests
// GET /api/v1/withdrawals
func (h *WithdrawalHandler) ListWithdrawals(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	withdrawals, meta, err := h.withdrawals.ListWithdrawals(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"withdrawals": withdrawals,
		"meta":        meta,
	})
}

// GetWithdrawal returns one payout request owned by the caller
// GET /api/v1/withdrawals/:id
func (h *WithdrawalHandler) GetWithdrawal(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	withdrawalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	withdrawal, err := h.withdrawals.GetWithdrawal(c.Request.Context(), userID, withdrawalID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"withdrawal": withdrawal})
}
