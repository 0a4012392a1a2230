package usecases

import (
	"context"
	"errors"
	"fmt"

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
	"campus-market.backend/pkg/utils"
)

// WithdrawalUsecase handles payout requests. The requested amount is debited
// in full when the request is accepted; the fee is taken out of it and the
// remainder is what actually leaves for the bank. A payout that later fails
// is refunded in full.
type WithdrawalUsecase struct {
	uow            repositories.UnitOfWork
	walletRepo     repositories.WalletRepository
	withdrawalRepo repositories.WithdrawalRepository
	txRepo         repositories.TransactionRepository
	notifier       Notifier
	platform       config.PlatformConfig
}

// NewWithdrawalUsecase creates a new withdrawal usecase
func NewWithdrawalUsecase(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	withdrawalRepo repositories.WithdrawalRepository,
	txRepo repositories.TransactionRepository,
	notifier Notifier,
	platform config.PlatformConfig,
) *WithdrawalUsecase {
	return &WithdrawalUsecase{
		uow:            uow,
		walletRepo:     walletRepo,
		withdrawalRepo: withdrawalRepo,
		txRepo:         txRepo,
		notifier:       notifier,
		platform:       platform,
	}
}

// RequestWithdrawal debits the wallet and queues a PENDING payout. Held
// escrow funds are excluded from what a withdrawal may draw on.
func (u *WithdrawalUsecase) RequestWithdrawal(ctx context.Context, userID uuid.UUID, input *entities.RequestWithdrawalInput) (*entities.Withdrawal, error) {
	amount, err := decimal.NewFromString(input.Amount)
	if err != nil || !money.IsPositive(amount) {
		return nil, domainerrors.BadRequest("amount must be a positive number")
	}
	amount = money.Round(amount)

	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := verifyWalletPin(wallet, input.Pin); err != nil {
		return nil, err
	}

	fee := money.WithdrawalFee(amount, u.platform.WithdrawalFeeRate, u.platform.WithdrawalFeeMin)
	net := amount.Sub(fee)
	if !money.IsPositive(net) {
		return nil, domainerrors.BadRequest("amount does not cover the withdrawal fee")
	}

	withdrawal := &entities.Withdrawal{
		WalletID:      wallet.ID,
		Amount:        amount,
		Fee:           fee,
		NetAmount:     net,
		BankCode:      input.BankCode,
		AccountNumber: input.AccountNumber,
		AccountName:   input.AccountName,
		Status:        entities.WithdrawalStatusPending,
		Reference:     withdrawalReference(),
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.walletRepo.DebitAvailable(txCtx, wallet.ID, amount); err != nil {
			return err
		}
		if err := u.withdrawalRepo.Create(txCtx, withdrawal); err != nil {
			return err
		}
		// The ledger entry carries the negative movement under the same
		// reference as the payout row.
		tx := entities.Transaction{
			WalletID:  wallet.ID,
			Amount:    amount.Neg(),
			Type:      entities.TransactionTypeWithdrawal,
			Status:    entities.TransactionStatusPending,
			Reference: withdrawal.Reference,
		}
		tx.Description.SetValid(fmt.Sprintf("Withdrawal to %s (%s)", input.AccountName, input.AccountNumber))
		return u.txRepo.Create(txCtx, &tx)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "withdrawal requested",
		zap.String("user_id", userID.String()),
		zap.String("reference", withdrawal.Reference),
		zap.String("amount", amount.StringFixed(2)),
		zap.String("fee", fee.StringFixed(2)))

	u.notifier.Notify(ctx, userID, entities.NotificationTypeWithdrawal,
		"Withdrawal requested",
		fmt.Sprintf("Your withdrawal of %s is pending. %s will arrive after the %s fee.", amount.StringFixed(2), net.StringFixed(2), fee.StringFixed(2)),
		map[string]interface{}{"withdrawalId": withdrawal.ID.String(), "reference": withdrawal.Reference})
	u.notifier.Emit(userID, realtime.EventBalanceUpdate, nil)

	return withdrawal, nil
}

// UpdateStatus reconciles a payout after the bank transfer settles. COMPLETED
// marks the ledger entry successful; FAILED refunds the full debited amount.
func (u *WithdrawalUsecase) UpdateStatus(ctx context.Context, withdrawalID uuid.UUID, input *entities.UpdateWithdrawalStatusInput) (*entities.Withdrawal, error) {
	withdrawal, err := u.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	target := entities.WithdrawalStatus(input.Status)

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		switch target {
		case entities.WithdrawalStatusProcessing:
			return u.withdrawalRepo.TransitionStatus(txCtx, withdrawal.ID, entities.WithdrawalStatusPending, entities.WithdrawalStatusProcessing)

		case entities.WithdrawalStatusCompleted:
			if err := u.transitionFromActive(txCtx, withdrawal.ID, entities.WithdrawalStatusCompleted); err != nil {
				return err
			}
			return u.markLedger(txCtx, withdrawal.Reference, entities.TransactionStatusSuccess)

		case entities.WithdrawalStatusFailed:
			if err := u.transitionFromActive(txCtx, withdrawal.ID, entities.WithdrawalStatusFailed); err != nil {
				return err
			}
			if err := u.markLedger(txCtx, withdrawal.Reference, entities.TransactionStatusFailed); err != nil {
				return err
			}
			return u.walletRepo.Credit(txCtx, withdrawal.WalletID, withdrawal.Amount)

		default:
			return domainerrors.BadRequest("unknown withdrawal status")
		}
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "withdrawal status updated",
		zap.String("withdrawal_id", withdrawal.ID.String()),
		zap.String("status", string(target)))

	if ownerID, oerr := u.walletOwner(ctx, withdrawal.WalletID); oerr == nil {
		u.notifyStatus(ctx, ownerID, withdrawal, target)
	}

	return u.withdrawalRepo.GetByID(ctx, withdrawalID)
}

// ListWithdrawals returns a page of the caller's payout requests
func (u *WithdrawalUsecase) ListWithdrawals(ctx context.Context, userID uuid.UUID, page, limit int) ([]entities.Withdrawal, utils.PaginationMeta, error) {
	page, limit = clampPage(page, limit)
	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	ws, total, err := u.withdrawalRepo.ListByWallet(ctx, wallet.ID, limit, (page-1)*limit)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return ws, utils.CalculateMeta(total, page, limit), nil
}

// GetWithdrawal returns one payout request, restricted to the wallet owner
func (u *WithdrawalUsecase) GetWithdrawal(ctx context.Context, userID, withdrawalID uuid.UUID) (*entities.Withdrawal, error) {
	withdrawal, err := u.withdrawalRepo.GetByID(ctx, withdrawalID)
	if err != nil {
		return nil, err
	}
	ownerID, err := u.walletOwner(ctx, withdrawal.WalletID)
	if err != nil {
		return nil, err
	}
	if ownerID != userID {
		return nil, domainerrors.ErrForbidden
	}
	return withdrawal, nil
}

// transitionFromActive moves a payout to a terminal state from either active
// state, so reconciliation works whether or not PROCESSING was recorded.
func (u *WithdrawalUsecase) transitionFromActive(ctx context.Context, id uuid.UUID, to entities.WithdrawalStatus) error {
	err := u.withdrawalRepo.TransitionStatus(ctx, id, entities.WithdrawalStatusProcessing, to)
	if errors.Is(err, domainerrors.ErrInvalidState) {
		err = u.withdrawalRepo.TransitionStatus(ctx, id, entities.WithdrawalStatusPending, to)
	}
	return err
}

func (u *WithdrawalUsecase) markLedger(ctx context.Context, reference string, status entities.TransactionStatus) error {
	tx, err := u.txRepo.GetByReference(ctx, reference)
	if err != nil {
		return err
	}
	return u.txRepo.UpdateStatus(ctx, tx.ID, status)
}

func (u *WithdrawalUsecase) walletOwner(ctx context.Context, walletID uuid.UUID) (uuid.UUID, error) {
	wallet, err := u.walletRepo.GetByID(ctx, walletID)
	if err != nil {
		return uuid.Nil, err
	}
	return wallet.UserID, nil
}

func (u *WithdrawalUsecase) notifyStatus(ctx context.Context, userID uuid.UUID, w *entities.Withdrawal, status entities.WithdrawalStatus) {
	switch status {
	case entities.WithdrawalStatusCompleted:
		u.notifier.Notify(ctx, userID, entities.NotificationTypeWithdrawal,
			"Withdrawal completed",
			fmt.Sprintf("%s was sent to %s.", w.NetAmount.StringFixed(2), w.AccountNumber),
			map[string]interface{}{"withdrawalId": w.ID.String()})
	case entities.WithdrawalStatusFailed:
		u.notifier.Notify(ctx, userID, entities.NotificationTypeWithdrawal,
			"Withdrawal failed",
			fmt.Sprintf("Your withdrawal of %s failed and the full amount was returned to your wallet.", w.Amount.StringFixed(2)),
			map[string]interface{}{"withdrawalId": w.ID.String()})
		u.notifier.Emit(userID, realtime.EventBalanceUpdate, nil)
	case entities.WithdrawalStatusProcessing:
		u.notifier.Notify(ctx, userID, entities.NotificationTypeWithdrawal,
			"Withdrawal processing",
			"Your withdrawal is on its way to the bank.",
			map[string]interface{}{"withdrawalId": w.ID.String()})
	}
}
