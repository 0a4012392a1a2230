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

type disputeAdminService interface {
	ListOpenDisputes(ctx context.Context, page, limit int) ([]entities.Dispute, int64, error)
	ResolveDispute(ctx context.Context, adminID, disputeID uuid.UUID, input *entities.ResolveDisputeInput) (*entities.Dispute, error)
}

type withdrawalAdminService interface {
	UpdateStatus(ctx context.Context, withdrawalID uuid.UUID, input *entities.UpdateWithdrawalStatusInput) (*entities.Withdrawal, error)
}

type dashboardService interface {
	GetEscrowDashboard(ctx context.Context) (*usecases.EscrowDashboard, error)
}

// AdminHandler handles back-office endpoints. Routes are mounted behind
// RequireAdmin; handlers still read the caller for audit attribution.
type AdminHandler struct {
	disputes    disputeAdminService
	withdrawals withdrawalAdminService
	dashboard   dashboardService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(escrowUsecase *usecases.EscrowUsecase, withdrawalUsecase *usecases.WithdrawalUsecase, dashboardUsecase *usecases.DashboardUsecase) *AdminHandler {
	return &AdminHandler{
		disputes:    escrowUsecase,
		withdrawals: withdrawalUsecase,
		dashboard:   dashboardUsecase,
	}
}

// EscrowDashboard reports held/disputed aggregates and extended holds
// GET /api/v1/admin/escrow/dashboard
func (h *AdminHandler) EscrowDashboard(c *gin.Context) {
	dash, err := h.dashboard.GetEscrowDashboard(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"dashboard": dash})
}

// ListDisputes lists open disputes awaiting a ruling
// GET /api/v1/admin/disputes
func (h *AdminHandler) ListDisputes(c *gin.Context) {
	page, limit := pageParams(c)
	disputes, total, err := h.disputes.ListOpenDisputes(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"disputes":   disputes,
		"totalCount": total,
	})
}

// ResolveDispute rules RELEASE or REFUND on an open dispute
// POST /api/v1/admin/disputes/:id/resolve
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	adminID, ok := requireUser(c)
	if !ok {
		return
	}
	disputeID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input entities.ResolveDisputeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	dispute, err := h.disputes.ResolveDispute(c.Request.Context(), adminID, disputeID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message": "dispute resolved",
		"dispute": dispute,
	})
}

// UpdateWithdrawalStatus reconciles a payout with its external outcome
// PUT /api/v1/admin/withdrawals/:id/status
func (h *AdminHandler) UpdateWithdrawalStatus(c *gin.Context) {
	withdrawalID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var input entities.UpdateWithdrawalStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	withdrawal, err := h.withdrawals.UpdateStatus(c.Request.Context(), withdrawalID, &input)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"message":    "withdrawal status updated",
		"withdrawal": withdrawal,
	})
}
