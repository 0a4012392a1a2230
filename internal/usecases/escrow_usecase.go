package usecases

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/internal/realtime"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/money"
)

// EscrowUsecase drives held purchases through delivery, release, dispute and
// refund. Funds only ever leave escrow through releaseFunds or refundFunds,
// both of which run under a unit of work against guarded state transitions,
// so double release and double refund are structurally impossible.
type EscrowUsecase struct {
	uow         repositories.UnitOfWork
	walletRepo  repositories.WalletRepository
	listingRepo repositories.ListingRepository
	txRepo      repositories.TransactionRepository
	disputeRepo repositories.DisputeRepository
	userRepo    repositories.UserRepository
	notifier    Notifier
	platform    config.PlatformConfig
}

// NewEscrowUsecase creates a new escrow usecase
func NewEscrowUsecase(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	listingRepo repositories.ListingRepository,
	txRepo repositories.TransactionRepository,
	disputeRepo repositories.DisputeRepository,
	userRepo repositories.UserRepository,
	notifier Notifier,
	platform config.PlatformConfig,
) *EscrowUsecase {
	return &EscrowUsecase{
		uow:         uow,
		walletRepo:  walletRepo,
		listingRepo: listingRepo,
		txRepo:      txRepo,
		disputeRepo: disputeRepo,
		userRepo:    userRepo,
		notifier:    notifier,
		platform:    platform,
	}
}

// MarkDelivered records that the seller handed the item over. Only the
// listing's seller may call it, and only while the purchase is HELD.
func (u *EscrowUsecase) MarkDelivered(ctx context.Context, sellerID, txID uuid.UUID) (*entities.Transaction, error) {
	tx, err := u.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	listing, err := u.requireListing(ctx, tx)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, domainerrors.ErrForbidden
	}

	now := time.Now()
	err = u.txRepo.TransitionEscrow(ctx, tx.ID, entities.EscrowStatusHeld, entities.EscrowStatusDelivered, map[string]interface{}{
		"delivered_at": now,
		"delivered_by": sellerID,
	})
	if err != nil {
		return nil, err
	}

	buyerID, err := u.walletOwner(ctx, tx.WalletID)
	if err == nil {
		u.notifier.Notify(ctx, buyerID, entities.NotificationTypeOrderDelivered,
			"Order delivered",
			fmt.Sprintf("%s was marked delivered. Confirm receipt to release payment.", listing.Title),
			map[string]interface{}{"transactionId": tx.ID.String()})
		u.notifier.Emit(buyerID, realtime.EventOrderDelivered, map[string]interface{}{
			"transactionId": tx.ID.String(),
		})
	}

	return u.txRepo.GetByID(ctx, txID)
}

// ConfirmReceipt is the buyer's sign-off: it releases the held amount to the
// seller minus the platform fee. Requires the purchase to be DELIVERED; a
// disputed purchase cannot be confirmed past its dispute.
func (u *EscrowUsecase) ConfirmReceipt(ctx context.Context, buyerID, txID uuid.UUID) (*entities.Transaction, error) {
	tx, err := u.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	owner, err := u.walletOwner(ctx, tx.WalletID)
	if err != nil {
		return nil, err
	}
	if owner != buyerID {
		return nil, domainerrors.ErrForbidden
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		return u.releaseFunds(txCtx, tx, buyerID, entities.EscrowStatusDelivered)
	})
	if err != nil {
		return nil, err
	}
	return u.txRepo.GetByID(ctx, txID)
}

// Dispute freezes a HELD or DELIVERED purchase and opens a case for an admin
func (u *EscrowUsecase) Dispute(ctx context.Context, buyerID, txID uuid.UUID, input *entities.DisputeInput) (*entities.Dispute, error) {
	tx, err := u.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	owner, err := u.walletOwner(ctx, tx.WalletID)
	if err != nil {
		return nil, err
	}
	if owner != buyerID {
		return nil, domainerrors.ErrForbidden
	}

	dispute := &entities.Dispute{
		TransactionID: tx.ID,
		InitiatorID:   buyerID,
		Reason:        input.Reason,
		Status:        entities.DisputeStatusOpen,
	}
	if input.Evidence != "" {
		dispute.Evidence.SetValid(input.Evidence)
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		err := u.txRepo.TransitionEscrow(txCtx, tx.ID, entities.EscrowStatusHeld, entities.EscrowStatusDisputed, nil)
		if errors.Is(err, domainerrors.ErrInvalidState) {
			err = u.txRepo.TransitionEscrow(txCtx, tx.ID, entities.EscrowStatusDelivered, entities.EscrowStatusDisputed, nil)
		}
		if err != nil {
			return err
		}
		return u.disputeRepo.Create(txCtx, dispute)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "dispute opened",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("initiator_id", buyerID.String()))

	if listing, lerr := u.requireListing(ctx, tx); lerr == nil {
		u.notifier.Notify(ctx, listing.SellerID, entities.NotificationTypeDisputeOpened,
			"Dispute opened",
			fmt.Sprintf("The buyer disputed the sale of %s. Payment stays frozen until an admin rules.", listing.Title),
			map[string]interface{}{"transactionId": tx.ID.String(), "disputeId": dispute.ID.String()})
	}

	return dispute, nil
}

// ResolveDispute applies an admin ruling: RELEASE pays the seller as a normal
// confirmation would, REFUND returns the full amount to the buyer and puts
// the stock back.
func (u *EscrowUsecase) ResolveDispute(ctx context.Context, adminID, disputeID uuid.UUID, input *entities.ResolveDisputeInput) (*entities.Dispute, error) {
	dispute, err := u.disputeRepo.GetByID(ctx, disputeID)
	if err != nil {
		return nil, err
	}
	tx, err := u.txRepo.GetByID(ctx, dispute.TransactionID)
	if err != nil {
		return nil, err
	}
	resolution := entities.DisputeResolution(input.Resolution)

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		// Resolve is guarded on OPEN, so two admins ruling at once cannot
		// both move money.
		if err := u.disputeRepo.Resolve(txCtx, dispute.ID, resolution, input.Note, adminID); err != nil {
			return err
		}
		switch resolution {
		case entities.DisputeResolutionRelease:
			return u.releaseFunds(txCtx, tx, adminID, entities.EscrowStatusDisputed)
		case entities.DisputeResolutionRefund:
			return u.refundFunds(txCtx, tx)
		default:
			return domainerrors.BadRequest("unknown resolution")
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "dispute resolved",
		zap.String("dispute_id", dispute.ID.String()),
		zap.String("resolution", string(resolution)),
		zap.String("admin_id", adminID.String()))

	u.notifyResolution(ctx, tx, dispute.InitiatorID, resolution)
	return u.disputeRepo.GetByID(ctx, disputeID)
}

// ListOpenDisputes returns open cases for the admin queue
func (u *EscrowUsecase) ListOpenDisputes(ctx context.Context, page, limit int) ([]entities.Dispute, int64, error) {
	page, limit = clampPage(page, limit)
	return u.disputeRepo.ListOpen(ctx, limit, (page-1)*limit)
}

// ListBuyerOrders returns the caller's purchases with listing details
func (u *EscrowUsecase) ListBuyerOrders(ctx context.Context, buyerID uuid.UUID) ([]entities.Transaction, error) {
	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	return u.txRepo.ListPurchasesByBuyer(ctx, wallet.ID)
}

// ListSellerOrders returns purchases made against the caller's listings
func (u *EscrowUsecase) ListSellerOrders(ctx context.Context, sellerID uuid.UUID) ([]entities.Transaction, error) {
	return u.txRepo.ListPurchasesBySeller(ctx, sellerID)
}

// ReleaseHeldFunds settles an escrow purchase on behalf of a smart contract
// release, whatever delivery state the purchase is in.
func (u *EscrowUsecase) ReleaseHeldFunds(ctx context.Context, txID, actorID uuid.UUID) error {
	tx, err := u.txRepo.GetByID(ctx, txID)
	if err != nil {
		return err
	}
	return u.uow.Do(ctx, func(txCtx context.Context) error {
		for _, from := range []entities.EscrowStatus{
			entities.EscrowStatusDelivered,
			entities.EscrowStatusHeld,
			entities.EscrowStatusDisputed,
		} {
			err := u.releaseFunds(txCtx, tx, actorID, from)
			if err == nil {
				return nil
			}
			if !errors.Is(err, domainerrors.ErrInvalidState) {
				return err
			}
		}
		return domainerrors.ErrInvalidState
	})
}

// releaseFunds settles a purchase: the guarded transition to RELEASED is the
// linearization point, after which the seller is credited net of the platform
// fee and the buyer's reserve marker drops. Callers must run it inside a unit
// of work.
func (u *EscrowUsecase) releaseFunds(ctx context.Context, tx *entities.Transaction, actorID uuid.UUID, from entities.EscrowStatus) error {
	listing, err := u.requireListing(ctx, tx)
	if err != nil {
		return err
	}

	fee, net := money.SplitFee(tx.Amount, u.platform.EffectiveFeeRate())

	now := time.Now()
	err = u.txRepo.TransitionEscrow(ctx, tx.ID, from, entities.EscrowStatusReleased, map[string]interface{}{
		"status":       string(entities.TransactionStatusSuccess),
		"platform_fee": fee,
		"received_at":  now,
		"received_by":  actorID,
	})
	if err != nil {
		return err
	}

	sellerWallet, err := u.walletRepo.GetOrCreateByUserID(ctx, listing.SellerID)
	if err != nil {
		return err
	}
	if err := u.walletRepo.Credit(ctx, sellerWallet.ID, net); err != nil {
		return err
	}

	sale := entities.Transaction{
		WalletID:     sellerWallet.ID,
		Amount:       net,
		Type:         entities.TransactionTypeSale,
		Status:       entities.TransactionStatusSuccess,
		EscrowStatus: entities.EscrowStatusNone,
		Reference:    saleReference(tx.ID),
		ListingID:    tx.ListingID,
		Quantity:     tx.Quantity,
		PlatformFee:  fee,
	}
	sale.Description.SetValid(fmt.Sprintf("Sale of %s", listing.Title))
	if err := u.txRepo.Create(ctx, &sale); err != nil {
		return err
	}

	if fee.IsPositive() {
		if err := u.creditPlatform(ctx, fee); err != nil {
			return err
		}
	}

	if err := u.walletRepo.ReleaseReserved(ctx, tx.WalletID, tx.Amount); err != nil {
		return err
	}

	qty := tx.Quantity
	if qty < 1 {
		qty = 1
	}
	if err := u.listingRepo.IncrementSoldCount(ctx, listing.ID, qty); err != nil {
		return err
	}

	logger.Info(ctx, "escrow released",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("seller_id", listing.SellerID.String()),
		zap.String("net", net.StringFixed(2)),
		zap.String("fee", fee.StringFixed(2)))

	u.notifier.Notify(ctx, listing.SellerID, entities.NotificationTypePaymentReleased,
		"Payment released",
		fmt.Sprintf("%s has been credited to your wallet for %s.", net.StringFixed(2), listing.Title),
		map[string]interface{}{"transactionId": tx.ID.String()})
	u.notifier.Emit(listing.SellerID, realtime.EventPaymentReleased, map[string]interface{}{
		"transactionId": tx.ID.String(),
		"amount":        net.StringFixed(2),
	})
	u.notifier.Emit(listing.SellerID, realtime.EventBalanceUpdate, nil)

	return nil
}

// refundFunds returns a disputed purchase to the buyer in full and restores
// the listing's stock. Runs inside the caller's unit of work.
func (u *EscrowUsecase) refundFunds(ctx context.Context, tx *entities.Transaction) error {
	err := u.txRepo.TransitionEscrow(ctx, tx.ID, entities.EscrowStatusDisputed, entities.EscrowStatusRefunded, map[string]interface{}{
		"status": string(entities.TransactionStatusFailed),
	})
	if err != nil {
		return err
	}

	if err := u.walletRepo.Credit(ctx, tx.WalletID, tx.Amount); err != nil {
		return err
	}
	if err := u.walletRepo.ReleaseReserved(ctx, tx.WalletID, tx.Amount); err != nil {
		return err
	}

	if tx.ListingID != nil {
		qty := tx.Quantity
		if qty < 1 {
			qty = 1
		}
		if err := u.listingRepo.RestoreStock(ctx, *tx.ListingID, qty); err != nil {
			return err
		}
		if err := u.listingRepo.UpdateStatus(ctx, *tx.ListingID, entities.ListingStatusActive); err != nil {
			return err
		}
	}

	logger.Info(ctx, "escrow refunded",
		zap.String("transaction_id", tx.ID.String()),
		zap.String("amount", tx.Amount.StringFixed(2)))
	return nil
}

// creditPlatform routes the fee to the configured platform account. A missing
// account is logged loudly rather than failing the release.
func (u *EscrowUsecase) creditPlatform(ctx context.Context, fee decimal.Decimal) error {
	if u.platform.AccountEmail == "" {
		logger.Warn(ctx, "platform account email not configured, fee not collected",
			zap.String("fee", fee.StringFixed(2)))
		return nil
	}
	platformUser, err := u.userRepo.GetByEmail(ctx, u.platform.AccountEmail)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			logger.Error(ctx, "platform account missing, fee not collected",
				zap.String("email", u.platform.AccountEmail),
				zap.String("fee", fee.StringFixed(2)))
			return nil
		}
		return err
	}
	platformWallet, err := u.walletRepo.GetOrCreateByUserID(ctx, platformUser.ID)
	if err != nil {
		return err
	}
	return u.walletRepo.Credit(ctx, platformWallet.ID, fee)
}

func (u *EscrowUsecase) requireListing(ctx context.Context, tx *entities.Transaction) (*entities.Listing, error) {
	if tx.Listing != nil {
		return tx.Listing, nil
	}
	if tx.ListingID == nil {
		return nil, domainerrors.PreconditionFailed("transaction has no listing", domainerrors.ErrInvalidState)
	}
	return u.listingRepo.GetByID(ctx, *tx.ListingID)
}

func (u *EscrowUsecase) walletOwner(ctx context.Context, walletID uuid.UUID) (uuid.UUID, error) {
	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return uuid.Nil, err
	}
	return wallet.UserID, nil
}

func (u *EscrowUsecase) notifyResolution(ctx context.Context, tx *entities.Transaction, buyerID uuid.UUID, resolution entities.DisputeResolution) {
	switch resolution {
	case entities.DisputeResolutionRefund:
		u.notifier.Notify(ctx, buyerID, entities.NotificationTypePaymentRefunded,
			"Dispute resolved in your favor",
			fmt.Sprintf("%s has been refunded to your wallet.", tx.Amount.StringFixed(2)),
			map[string]interface{}{"transactionId": tx.ID.String()})
		u.notifier.Emit(buyerID, realtime.EventBalanceUpdate, nil)
	case entities.DisputeResolutionRelease:
		u.notifier.Notify(ctx, buyerID, entities.NotificationTypePaymentReleased,
			"Dispute resolved",
			"The dispute was resolved in the seller's favor and payment was released.",
			map[string]interface{}{"transactionId": tx.ID.String()})
	}
}
