package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/interfaces/http/middleware"
	"campus-market.backend/internal/interfaces/http/response"
	"campus-market.backend/internal/usecases"
)

type contractService interface {
	Create(ctx context.Context, buyerID uuid.UUID, input *entities.CreateContractInput) (*entities.SmartContract, error)
	Sign(ctx context.Context, userID, contractID uuid.UUID) (*entities.SmartContract, error)
	Get(ctx context.Context, userID uuid.UUID, isAdmin bool, contractID uuid.UUID) (*entities.SmartContract, []entities.ContractAudit, error)
	Release(ctx context.Context, userID uuid.UUID, isAdmin bool, contractID uuid.UUID) (*entities.SmartContract, error)
	MarkDisputed(ctx context.Context, userID, contractID uuid.UUID) (*entities.SmartContract, error)
}

// ContractHandler handles bilateral sale agreement endpoints
type ContractHandler struct {
	contracts contractService
}

// NewContractHandler creates a new contract handler
func NewContractHandler(contractUsecase *usecases.ContractUsecase) *ContractHandler {
	return &ContractHandler{contracts: contractUsecase}
}

// Create drafts an agreement between the caller (buyer) and a seller
// POST /api/v1/contracts
func (h *ContractHandler) Create(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var input entities.CreateContractInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	contract, err := h.contracts.Create(c.Request.Context(), userID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"message":  "contract created",
		"contract": contract,
	})
}

// Get returns an agreement with its audit trail
// GET /api/v1/contracts/:id
func (h *ContractHandler) Get(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	contract, trail, err := h.contracts.Get(c.Request.Context(), userID, middleware.IsAdmin(c), contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"contract":   contract,
		"auditTrail": trail,
	})
}

// Sign records the caller's signature
// POST /api/v1/contracts/:id/sign
func (h *ContractHandler) Sign(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	contract, err := h.contracts.Sign(c.Request.Context(), userID, contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":  "contract signed",
		"contract": contract,
	})
}

// Release completes the agreement and settles any backing escrow
// POST /api/v1/contracts/:id/release
func (h *ContractHandler) Release(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	contract, err := h.contracts.Release(c.Request.Context(), userID, middleware.IsAdmin(c), contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":  "funds released",
		"contract": contract,
	})
}

// MarkDisputed freezes the agreement pending an admin ruling
// POST /api/v1/contracts/:id/dispute
func (h *ContractHandler) MarkDisputed(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}
	contractID, ok := pathID(c, "id")
	if !ok {
		return
	}

	contract, err := h.contracts.MarkDisputed(c.Request.Context(), userID, contractID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":  "contract disputed",
		"contract": contract,
	})
}
