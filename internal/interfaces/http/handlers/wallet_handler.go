package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/internal/usecases"
	"campus-market.backend/pkg/utils"
)

type walletService interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error)
	ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]entities.Transaction, utils.PaginationMeta, error)
	GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error)
	SetupPin(ctx context.Context, userID uuid.UUID, input *entities.SetupPinInput) error
	UpdatePin(ctx context.Context, userID uuid.UUID, input *entities.UpdatePinInput) error
	VerifyPin(ctx context.Context, userID uuid.UUID, input *entities.VerifyPinInput) error
	PinStatus(ctx context.Context, userID uuid.UUID) (bool, *time.Time, error)
}

// WalletHandler handles wallet and PIN endpoints
type WalletHandler struct {
	wallet walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase *usecases.WalletUsecase) *WalletHandler {
	return &WalletHandler{wallet: walletUsecase}
}

// GetBalance returns the caller's wallet, creating it on first touch
// GET /api/v1/wallet/balance
func (h *WalletHandler) GetBalance(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	wallet, err := h.wallet.GetBalance(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"wallet":    wallet,
		"available": wallet.Available(),
	})
}

// ListTransactions lists the caller's ledger entries, newest first
// GET /api/v1/wallet/transactions
func (h *WalletHandler) ListTransactions(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	page, limit := pageParams(c)
	txs, meta, err := h.wallet.ListTransactions(c.Request.Context(), userID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"transactions": txs,
		"meta":         meta,
	})
}

// GetTransaction returns one ledger entry owned by the caller
// GET /api/v1/wallet/transactions/:id
func (h *WalletHandler) GetTransaction(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	txID, ok := pathID(c, "id")
	if !ok {
		return
	}

	tx, err := h.wallet.GetTransaction(c.Request.Context(), userID, txID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"transaction": tx})
}

// SetupPin sets the transaction PIN
// POST /api/v1/wallet/pin
func (h *WalletHandler) SetupPin(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.SetupPinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.wallet.SetupPin(c.Request.Context(), userID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "transaction pin set"})
}

// UpdatePin rotates the transaction PIN after re-authentication
// PUT /api/v1/wallet/pin
func (h *WalletHandler) UpdatePin(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.UpdatePinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.wallet.UpdatePin(c.Request.Context(), userID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "transaction pin updated"})
}

// VerifyPin checks a PIN without moving money
// POST /api/v1/wallet/pin/verify
func (h *WalletHandler) VerifyPin(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.VerifyPinInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	if err := h.wallet.VerifyPin(c.Request.Context(), userID, &input); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"valid": true})
}

// PinStatus reports whether a PIN has been set
// GET /api/v1/wallet/pin/status
func (h *WalletHandler) PinStatus(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	hasPin, setAt, err := h.wallet.PinStatus(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"hasPin":   hasPin,
		"pinSetAt": setAt,
	})
}
