package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/internal/realtime"
	"campus-market.backend/pkg/logger"
)

// escrowReleaser settles the held purchase backing a contract. EscrowUsecase
// provides the production implementation.
type escrowReleaser interface {
	ReleaseHeldFunds(ctx context.Context, txID, actorID uuid.UUID) error
}

// ContractUsecase manages bilateral sale agreements. Every mutation lands in
// an append-only audit trail with a content hash, and funds only move once
// both parties have signed.
type ContractUsecase struct {
	uow          repositories.UnitOfWork
	contractRepo repositories.SmartContractRepository
	auditRepo    repositories.ContractAuditRepository
	listingRepo  repositories.ListingRepository
	txRepo       repositories.TransactionRepository
	walletRepo   repositories.WalletRepository
	releaser     escrowReleaser
	notifier     Notifier
}

// NewContractUsecase creates a new contract usecase
func NewContractUsecase(
	uow repositories.UnitOfWork,
	contractRepo repositories.SmartContractRepository,
	auditRepo repositories.ContractAuditRepository,
	listingRepo repositories.ListingRepository,
	txRepo repositories.TransactionRepository,
	walletRepo repositories.WalletRepository,
	releaser escrowReleaser,
	notifier Notifier,
) *ContractUsecase {
	return &ContractUsecase{
		uow:          uow,
		contractRepo: contractRepo,
		auditRepo:    auditRepo,
		listingRepo:  listingRepo,
		txRepo:       txRepo,
		walletRepo:   walletRepo,
		releaser:     releaser,
		notifier:     notifier,
	}
}

// Create opens an agreement between the caller (buyer) and a seller over a
// listing
func (u *ContractUsecase) Create(ctx context.Context, buyerID uuid.UUID, input *entities.CreateContractInput) (*entities.SmartContract, error) {
	sellerID, err := uuid.Parse(input.SellerID)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid seller id")
	}
	listingID, err := uuid.Parse(input.ListingID)
	if err != nil {
		return nil, domainerrors.BadRequest("invalid listing id")
	}
	if sellerID == buyerID {
		return nil, domainerrors.ErrSelfPurchase
	}

	listing, err := u.listingRepo.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.SellerID != sellerID {
		return nil, domainerrors.BadRequest("seller does not own this listing")
	}

	contract := &entities.SmartContract{
		BuyerID:    buyerID,
		SellerID:   sellerID,
		ListingID:  listingID,
		Terms:      input.Terms,
		Status:     entities.ContractStatusCreated,
		Signatures: []entities.ContractSignature{},
	}

	auditPayload := map[string]interface{}{
		"listingId": listingID.String(),
		"sellerId":  sellerID.String(),
		"terms":     input.Terms,
	}
	if input.TransactionID != "" {
		txID, err := u.resolveBackingTransaction(ctx, buyerID, listingID, input.TransactionID)
		if err != nil {
			return nil, err
		}
		contract.TransactionID = &txID
		auditPayload["transactionId"] = txID.String()
	}

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		if err := u.contractRepo.Create(txCtx, contract); err != nil {
			return err
		}
		return u.appendAudit(txCtx, contract.ID, entities.ContractActionCreated, buyerID, auditPayload)
	})
	if err != nil {
		return nil, err
	}

	u.notifier.Notify(ctx, sellerID, entities.NotificationTypeContract,
		"New sale agreement",
		"A buyer opened a sale agreement with you. Review and sign it.",
		map[string]interface{}{"contractId": contract.ID.String()})

	return contract, nil
}

// resolveBackingTransaction validates that the named transaction is the
// buyer's own held purchase of the listing before the contract binds to it.
func (u *ContractUsecase) resolveBackingTransaction(ctx context.Context, buyerID, listingID uuid.UUID, raw string) (uuid.UUID, error) {
	txID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, domainerrors.BadRequest("invalid transaction id")
	}
	tx, err := u.txRepo.GetByID(ctx, txID)
	if err != nil {
		return uuid.Nil, err
	}
	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, buyerID)
	if err != nil {
		return uuid.Nil, err
	}
	if tx.WalletID != wallet.ID {
		return uuid.Nil, domainerrors.ErrForbidden
	}
	if tx.Type != entities.TransactionTypePurchase || tx.ListingID == nil || *tx.ListingID != listingID {
		return uuid.Nil, domainerrors.BadRequest("transaction does not match this listing")
	}
	if tx.EscrowStatus != entities.EscrowStatusHeld && tx.EscrowStatus != entities.EscrowStatusDelivered {
		return uuid.Nil, domainerrors.ErrInvalidState
	}
	return txID, nil
}

// Sign records a party's sign-off. Each party may sign once, in either
// order; the second signature moves the contract to SIGNED.
func (u *ContractUsecase) Sign(ctx context.Context, userID, contractID uuid.UUID) (*entities.SmartContract, error) {
	var contract *entities.SmartContract

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = u.contractRepo.GetByID(txCtx, contractID)
		if err != nil {
			return err
		}
		role := contract.PartyRole(userID)
		if role == "" {
			return domainerrors.ErrForbidden
		}
		var action string
		switch role {
		case "BUYER":
			if contract.BuyerSigned {
				return domainerrors.ErrAlreadySigned
			}
			contract.BuyerSigned = true
			action = entities.ContractActionBuyerSigned
		case "SELLER":
			if contract.SellerSigned {
				return domainerrors.ErrAlreadySigned
			}
			contract.SellerSigned = true
			action = entities.ContractActionSellerSigned
		}
		if contract.Status != entities.ContractStatusCreated {
			return domainerrors.ErrInvalidState
		}

		contract.Signatures = append(contract.Signatures, entities.ContractSignature{
			UserID:   userID,
			Role:     role,
			SignedAt: time.Now(),
		})
		if contract.FullySigned() {
			contract.Status = entities.ContractStatusSigned
		}

		if err := u.contractRepo.Save(txCtx, contract); err != nil {
			return err
		}
		return u.appendAudit(txCtx, contract.ID, action, userID, map[string]interface{}{
			"role":        role,
			"fullySigned": contract.FullySigned(),
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "contract signed",
		zap.String("contract_id", contract.ID.String()),
		zap.String("signer_id", userID.String()),
		zap.String("status", string(contract.Status)))

	u.broadcastUpdate(contract)
	return contract, nil
}

// Get returns the agreement with its audit trail. Only the parties and
// admins may read it.
func (u *ContractUsecase) Get(ctx context.Context, userID uuid.UUID, isAdmin bool, contractID uuid.UUID) (*entities.SmartContract, []entities.ContractAudit, error) {
	contract, err := u.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	if !isAdmin && contract.PartyRole(userID) == "" {
		return nil, nil, domainerrors.ErrForbidden
	}
	trail, err := u.auditRepo.ListByContract(ctx, contractID)
	if err != nil {
		return nil, nil, err
	}
	return contract, trail, nil
}

// Release completes a fully signed (or disputed, for an admin ruling)
// agreement. Only the buyer or an admin may release; when the contract is
// backed by a held purchase the escrow settles inside the same unit of work.
func (u *ContractUsecase) Release(ctx context.Context, userID uuid.UUID, isAdmin bool, contractID uuid.UUID) (*entities.SmartContract, error) {
	var contract *entities.SmartContract

	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = u.contractRepo.GetByID(txCtx, contractID)
		if err != nil {
			return err
		}
		if !isAdmin && contract.BuyerID != userID {
			return domainerrors.ErrForbidden
		}
		if contract.Status != entities.ContractStatusSigned && contract.Status != entities.ContractStatusDisputed {
			return domainerrors.ErrInvalidState
		}

		if contract.TransactionID != nil {
			if err := u.releaser.ReleaseHeldFunds(txCtx, *contract.TransactionID, userID); err != nil {
				return err
			}
		}

		now := time.Now()
		contract.Status = entities.ContractStatusCompleted
		contract.ReleasedAt = &now
		contract.ReleasedBy = &userID
		if err := u.contractRepo.Save(txCtx, contract); err != nil {
			return err
		}
		return u.appendAudit(txCtx, contract.ID, entities.ContractActionFundsReleased, userID, map[string]interface{}{
			"releasedBy": userID.String(),
			"admin":      isAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "contract released",
		zap.String("contract_id", contract.ID.String()),
		zap.String("released_by", userID.String()))

	u.notifier.Notify(ctx, contract.SellerID, entities.NotificationTypeContract,
		"Agreement completed",
		"The agreement was completed and funds were released.",
		map[string]interface{}{"contractId": contract.ID.String()})
	u.broadcastUpdate(contract)
	return contract, nil
}

// MarkDisputed freezes a contract pending an admin ruling
func (u *ContractUsecase) MarkDisputed(ctx context.Context, userID, contractID uuid.UUID) (*entities.SmartContract, error) {
	var contract *entities.SmartContract
	err := u.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		contract, err = u.contractRepo.GetByID(txCtx, contractID)
		if err != nil {
			return err
		}
		if contract.PartyRole(userID) == "" {
			return domainerrors.ErrForbidden
		}
		if contract.Status != entities.ContractStatusCreated && contract.Status != entities.ContractStatusSigned {
			return domainerrors.ErrInvalidState
		}
		contract.Status = entities.ContractStatusDisputed
		return u.contractRepo.Save(txCtx, contract)
	})
	if err != nil {
		return nil, err
	}
	u.broadcastUpdate(contract)
	return contract, nil
}

// appendAudit writes one trail entry with a sha256 content hash
func (u *ContractUsecase) appendAudit(ctx context.Context, contractID uuid.UUID, action string, actorID uuid.UUID, payload map[string]interface{}) error {
	return u.auditRepo.Append(ctx, &entities.ContractAudit{
		ContractID: contractID,
		Action:     action,
		ActorID:    actorID,
		Payload:    payload,
		Hash:       auditHash(action, actorID, payload),
	})
}

func auditHash(action string, actorID uuid.UUID, payload map[string]interface{}) string {
	raw, _ := json.Marshal(map[string]interface{}{
		"action":  action,
		"actorId": actorID.String(),
		"payload": payload,
	})
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (u *ContractUsecase) broadcastUpdate(contract *entities.SmartContract) {
	data := map[string]interface{}{
		"contractId": contract.ID.String(),
		"status":     string(contract.Status),
	}
	u.notifier.Emit(contract.BuyerID, realtime.EventContractUpdated, data)
	u.notifier.Emit(contract.SellerID, realtime.EventContractUpdated, data)
}
