package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/pkg/crypto"
	"campus-market.backend/pkg/utils"
)

// WalletUsecase handles balance reads, transaction history and PIN management
type WalletUsecase struct {
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
	userRepo   repositories.UserRepository
}

// NewWalletUsecase creates a new wallet usecase
func NewWalletUsecase(
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	userRepo repositories.UserRepository,
) *WalletUsecase {
	return &WalletUsecase{walletRepo: walletRepo, txRepo: txRepo, userRepo: userRepo}
}

// GetBalance returns the caller's wallet, provisioning it on first touch
func (u *WalletUsecase) GetBalance(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	return u.walletRepo.GetOrCreateByUserID(ctx, userID)
}

// ListTransactions returns a page of the caller's ledger entries, newest first
func (u *WalletUsecase) ListTransactions(ctx context.Context, userID uuid.UUID, page, limit int) ([]entities.Transaction, utils.PaginationMeta, error) {
	page, limit = clampPage(page, limit)

	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}

	offset := (page - 1) * limit
	txs, total, err := u.txRepo.ListByWallet(ctx, wallet.ID, limit, offset)
	if err != nil {
		return nil, utils.PaginationMeta{}, err
	}
	return txs, utils.CalculateMeta(total, page, limit), nil
}

// GetTransaction returns one ledger entry, restricted to the wallet owner
func (u *WalletUsecase) GetTransaction(ctx context.Context, userID, txID uuid.UUID) (*entities.Transaction, error) {
	tx, err := u.txRepo.GetByID(ctx, txID)
	if err != nil {
		return nil, err
	}
	wallet, err := u.walletRepo.GetByID(ctx, tx.WalletID)
	if err != nil {
		return nil, err
	}
	if wallet.UserID != userID {
		return nil, domainerrors.ErrForbidden
	}
	return tx, nil
}

// SetupPin sets the transaction PIN. Once a PIN exists the current one must
// be presented to replace it; rotation with the account password goes through
// UpdatePin.
func (u *WalletUsecase) SetupPin(ctx context.Context, userID uuid.UUID, input *entities.SetupPinInput) error {
	if !crypto.ValidatePinFormat(input.Pin) {
		return domainerrors.BadRequest("pin must be 4 to 6 digits")
	}

	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return err
	}

	if wallet.HasPin() {
		if input.CurrentPin == "" {
			return domainerrors.ErrInvalidPin
		}
		if !crypto.CheckPin(input.CurrentPin, wallet.TransactionPin.String) {
			return domainerrors.ErrInvalidPin
		}
	}

	hash, err := crypto.HashPin(input.Pin)
	if err != nil {
		return err
	}
	return u.walletRepo.SetPin(ctx, wallet.ID, hash)
}

// UpdatePin rotates the PIN after re-authenticating with the account password
func (u *WalletUsecase) UpdatePin(ctx context.Context, userID uuid.UUID, input *entities.UpdatePinInput) error {
	if !crypto.ValidatePinFormat(input.NewPin) {
		return domainerrors.BadRequest("pin must be 4 to 6 digits")
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !crypto.CheckPassword(input.Password, user.PasswordHash) {
		return domainerrors.ErrUnauthorized
	}

	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	if err := verifyWalletPin(wallet, input.OldPin); err != nil {
		return err
	}

	hash, err := crypto.HashPin(input.NewPin)
	if err != nil {
		return err
	}
	return u.walletRepo.SetPin(ctx, wallet.ID, hash)
}

// VerifyPin checks a PIN without performing any operation. Clients use it to
// pre-validate before showing a confirmation screen.
func (u *WalletUsecase) VerifyPin(ctx context.Context, userID uuid.UUID, input *entities.VerifyPinInput) error {
	wallet, err := u.walletRepo.GetByUserID(ctx, userID)
	if err != nil {
		return err
	}
	return verifyWalletPin(wallet, input.Pin)
}

// PinStatus reports whether a PIN is configured and when it was last set
func (u *WalletUsecase) PinStatus(ctx context.Context, userID uuid.UUID) (bool, *time.Time, error) {
	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, userID)
	if err != nil {
		return false, nil, err
	}
	return wallet.HasPin(), wallet.PinSetAt, nil
}
