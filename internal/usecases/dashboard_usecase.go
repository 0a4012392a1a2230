package usecases

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/cache"
	"campus-market.backend/pkg/logger"
)

const (
	dashboardCacheKey = "escrow:dashboard"
	dashboardCacheTTL = 30 * time.Second
)

// EscrowDashboard is the admin's operational view of money in flight
type EscrowDashboard struct {
	HeldCount      int64           `json:"heldCount"`
	HeldTotal      decimal.Decimal `json:"heldTotal"`
	DisputedCount  int64           `json:"disputedCount"`
	DisputedTotal  decimal.Decimal `json:"disputedTotal"`
	ReleasedCount  int64           `json:"releasedCount"`
	RefundedCount  int64           `json:"refundedCount"`
	DisputeRate    float64         `json:"disputeRate"`
	ExtendedHolds  []ExtendedHold  `json:"extendedHolds"`
	GeneratedAt    time.Time       `json:"generatedAt"`
	HoldAlertAfter string          `json:"holdAlertAfter"`
}

// ExtendedHold flags a purchase stuck in escrow past the alert age
type ExtendedHold struct {
	TransactionID string          `json:"transactionId"`
	Amount        decimal.Decimal `json:"amount"`
	HeldSince     time.Time       `json:"heldSince"`
}

// DashboardUsecase aggregates escrow figures for the admin dashboard, cached
// briefly so a busy admin screen does not hammer the aggregate queries.
type DashboardUsecase struct {
	txRepo repositories.TransactionRepository
	cache  cache.Cache
	alert  time.Duration
}

// NewDashboardUsecase creates a new dashboard usecase
func NewDashboardUsecase(txRepo repositories.TransactionRepository, c cache.Cache, platform config.PlatformConfig) *DashboardUsecase {
	return &DashboardUsecase{txRepo: txRepo, cache: c, alert: platform.HoldAlertAge}
}

// GetEscrowDashboard returns the current escrow aggregates
func (u *DashboardUsecase) GetEscrowDashboard(ctx context.Context) (*EscrowDashboard, error) {
	if u.cache != nil {
		var cached EscrowDashboard
		if err := u.cache.Get(ctx, dashboardCacheKey, &cached); err == nil {
			return &cached, nil
		}
	}

	dash, err := u.build(ctx)
	if err != nil {
		return nil, err
	}

	if u.cache != nil {
		if err := u.cache.Set(ctx, dashboardCacheKey, dash, dashboardCacheTTL); err != nil {
			logger.Warn(ctx, "could not cache dashboard", zap.Error(err))
		}
	}
	return dash, nil
}

func (u *DashboardUsecase) build(ctx context.Context) (*EscrowDashboard, error) {
	heldTotal, err := u.txRepo.SumAmountByEscrowStatus(ctx, entities.EscrowStatusHeld)
	if err != nil {
		return nil, err
	}
	heldCount, err := u.txRepo.CountByEscrowStatus(ctx, entities.EscrowStatusHeld)
	if err != nil {
		return nil, err
	}
	disputedTotal, err := u.txRepo.SumAmountByEscrowStatus(ctx, entities.EscrowStatusDisputed)
	if err != nil {
		return nil, err
	}
	disputedCount, err := u.txRepo.CountByEscrowStatus(ctx, entities.EscrowStatusDisputed)
	if err != nil {
		return nil, err
	}
	releasedCount, err := u.txRepo.CountByEscrowStatus(ctx, entities.EscrowStatusReleased)
	if err != nil {
		return nil, err
	}
	refundedCount, err := u.txRepo.CountByEscrowStatus(ctx, entities.EscrowStatusRefunded)
	if err != nil {
		return nil, err
	}

	stuck, err := u.txRepo.ListHeldOlderThan(ctx, time.Now().Add(-u.alert))
	if err != nil {
		return nil, err
	}
	extended := make([]ExtendedHold, 0, len(stuck))
	for i := range stuck {
		extended = append(extended, ExtendedHold{
			TransactionID: stuck[i].ID.String(),
			Amount:        stuck[i].Amount,
			HeldSince:     stuck[i].CreatedAt,
		})
	}

	var rate float64
	if active := heldCount + disputedCount; active > 0 {
		rate = float64(disputedCount) / float64(active)
	}

	return &EscrowDashboard{
		HeldCount:      heldCount,
		HeldTotal:      heldTotal,
		DisputedCount:  disputedCount,
		DisputedTotal:  disputedTotal,
		ReleasedCount:  releasedCount,
		RefundedCount:  refundedCount,
		DisputeRate:    rate,
		ExtendedHolds:  extended,
		GeneratedAt:    time.Now(),
		HoldAlertAfter: u.alert.String(),
	}, nil
}
