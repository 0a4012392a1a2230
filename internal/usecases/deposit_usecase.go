package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/internal/infrastructure/gateway"
	"campus-market.backend/internal/realtime"
	"campus-market.backend/pkg/logger"
	"campus-market.backend/pkg/money"
)

const depositMetadataType = "wallet_deposit"

// DepositUsecase funds wallets through the payment processor. Crediting is
// idempotent on the processor reference: the webhook and the client-initiated
// verify path can both fire, in any order and any number of times, and the
// wallet is credited exactly once.
type DepositUsecase struct {
	uow        repositories.UnitOfWork
	walletRepo repositories.WalletRepository
	txRepo     repositories.TransactionRepository
	userRepo   repositories.UserRepository
	gateway    gateway.Client
	secretKey  string
	notifier   Notifier
}

// NewDepositUsecase creates a new deposit usecase
func NewDepositUsecase(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	txRepo repositories.TransactionRepository,
	userRepo repositories.UserRepository,
	gw gateway.Client,
	secretKey string,
	notifier Notifier,
) *DepositUsecase {
	return &DepositUsecase{
		uow:        uow,
		walletRepo: walletRepo,
		txRepo:     txRepo,
		userRepo:   userRepo,
		gateway:    gw,
		secretKey:  secretKey,
		notifier:   notifier,
	}
}

// InitializeDeposit starts a checkout session with the processor and returns
// the authorization URL the client should redirect to.
func (u *DepositUsecase) InitializeDeposit(ctx context.Context, userID uuid.UUID, amountStr string) (*gateway.InitializeData, error) {
	amount, err := decimal.NewFromString(amountStr)
	if err != nil || !money.IsPositive(amount) {
		return nil, domainerrors.BadRequest("amount must be a positive number")
	}
	amount = money.Round(amount)

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	data, err := u.gateway.InitializeTransaction(ctx, user.Email, money.ToMinorUnits(amount), gateway.Metadata{
		UserID: userID.String(),
		Type:   depositMetadataType,
	})
	if err != nil {
		return nil, domainerrors.BadGateway("could not start deposit", err)
	}

	logger.Info(ctx, "deposit initialized",
		zap.String("user_id", userID.String()),
		zap.String("reference", data.Reference),
		zap.String("amount", amount.StringFixed(2)))
	return data, nil
}

// HandleWebhook processes a processor callback. The signature is checked
// against the raw body before anything is parsed; unrecognized events are
// acknowledged and dropped.
func (u *DepositUsecase) HandleWebhook(ctx context.Context, rawBody []byte, signature string) error {
	if !gateway.VerifySignature(u.secretKey, rawBody, signature) {
		return domainerrors.ErrInvalidSignature
	}

	var event gateway.WebhookEvent
	if err := json.Unmarshal(rawBody, &event); err != nil {
		return domainerrors.BadRequest("malformed webhook payload")
	}
	if event.Event != gateway.WebhookEventChargeSuccess {
		logger.Debug(ctx, "ignoring webhook event", zap.String("event", event.Event))
		return nil
	}
	if event.Data.Metadata.Type != depositMetadataType {
		logger.Debug(ctx, "ignoring non-deposit charge", zap.String("reference", event.Data.Reference))
		return nil
	}

	userID, err := uuid.Parse(event.Data.Metadata.UserID)
	if err != nil {
		logger.Error(ctx, "webhook charge carries no usable user id",
			zap.String("reference", event.Data.Reference))
		return domainerrors.BadRequest("invalid metadata")
	}

	_, err = u.credit(ctx, userID, event.Data.Reference, event.Data.Amount)
	return err
}

// VerifyDeposit is the client-initiated settlement path: the caller hands
// back the reference and the ledger asks the processor whether it was paid.
// Only the user the deposit was initialized for may verify it.
func (u *DepositUsecase) VerifyDeposit(ctx context.Context, userID uuid.UUID, reference string) (*entities.Transaction, error) {
	if reference == "" {
		return nil, domainerrors.BadRequest("reference is required")
	}

	data, err := u.gateway.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, domainerrors.BadGateway("could not verify deposit", err)
	}
	if data.Metadata.UserID != userID.String() {
		return nil, domainerrors.ErrForbidden
	}
	if data.Status != "success" {
		return nil, domainerrors.PreconditionFailed("deposit not settled yet", domainerrors.ErrInvalidState)
	}

	return u.credit(ctx, userID, data.Reference, data.Amount)
}

// credit applies a settled charge to the wallet exactly once. The unique
// reference column is the idempotency key: a replay either finds the existing
// entry up front or loses the insert race and maps to the same outcome.
func (u *DepositUsecase) credit(ctx context.Context, userID uuid.UUID, reference string, amountMinor int64) (*entities.Transaction, error) {
	if existing, err := u.txRepo.GetByReference(ctx, reference); err == nil {
		return existing, nil
	} else if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, err
	}

	amount := money.FromMinorUnits(amountMinor)
	var created entities.Transaction

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		wallet, err := u.walletRepo.GetOrCreateByUserID(txCtx, userID)
		if err != nil {
			return err
		}
		created = entities.Transaction{
			WalletID:  wallet.ID,
			Amount:    amount,
			Type:      entities.TransactionTypeDeposit,
			Status:    entities.TransactionStatusSuccess,
			Reference: reference,
		}
		created.Description.SetValid("Wallet deposit")
		if err := u.txRepo.Create(txCtx, &created); err != nil {
			return err
		}
		return u.walletRepo.Credit(txCtx, wallet.ID, amount)
	})
	if errors.Is(err, domainerrors.ErrAlreadyExists) {
		// Lost a race against a concurrent replay; the other writer credited.
		return u.txRepo.GetByReference(ctx, reference)
	}
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "deposit credited",
		zap.String("user_id", userID.String()),
		zap.String("reference", reference),
		zap.String("amount", amount.StringFixed(2)))

	u.notifier.Notify(ctx, userID, entities.NotificationTypeDeposit,
		"Deposit received",
		fmt.Sprintf("%s has been added to your wallet.", amount.StringFixed(2)),
		map[string]interface{}{"reference": reference})
	u.notifier.Emit(userID, realtime.EventBalanceUpdate, nil)

	return &created, nil
}
