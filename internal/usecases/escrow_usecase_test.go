package usecases_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"campus-market.backend/internal/config"
	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/usecases"
	"campus-market.backend/pkg/utils"
)

type escrowFixture struct {
	uow      *MockUnitOfWork
	wallets  *MockWalletRepository
	listings *MockListingRepository
	txs      *MockTransactionRepository
	disputes *MockDisputeRepository
	users    *MockUserRepository
	notifier *stubNotifier
	usecase  *usecases.EscrowUsecase
}

func newEscrowFixture(t *testing.T, platform config.PlatformConfig) *escrowFixture {
	t.Helper()
	f := &escrowFixture{
		uow:      new(MockUnitOfWork),
		wallets:  new(MockWalletRepository),
		listings: new(MockListingRepository),
		txs:      new(MockTransactionRepository),
		disputes: new(MockDisputeRepository),
		users:    new(MockUserRepository),
		notifier: &stubNotifier{},
	}
	f.usecase = usecases.NewEscrowUsecase(f.uow, f.wallets, f.listings, f.txs, f.disputes, f.users, f.notifier, platform)
	return f
}

func marketplaceFees(t *testing.T) config.PlatformConfig {
	t.Helper()
	return config.PlatformConfig{
		FeeEnabled:   true,
		FeeRate:      dec(t, "0.05"),
		AccountEmail: "platform@campusmarket.test",
	}
}

// heldPurchase builds a purchase entry in the given escrow state with its
// listing attached.
func heldPurchase(t *testing.T, buyerWallet *entities.Wallet, listing *entities.Listing, amount string, state entities.EscrowStatus) *entities.Transaction {
	t.Helper()
	listingID := listing.ID
	return &entities.Transaction{
		ID:           utils.GenerateUUIDv7(),
		WalletID:     buyerWallet.ID,
		Amount:       dec(t, amount),
		Type:         entities.TransactionTypePurchase,
		Status:       entities.TransactionStatusPending,
		EscrowStatus: state,
		Reference:    usecases.CheckoutRefPrefix + utils.GenerateUUIDv7().String(),
		ListingID:    &listingID,
		Quantity:     1,
		Listing:      listing,
	}
}

func TestConfirmReceipt_SplitsFeeAndPaysSeller(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	buyerID := utils.GenerateUUIDv7()
	sellerID := utils.GenerateUUIDv7()
	platformID := utils.GenerateUUIDv7()

	buyerWallet := bareWallet(buyerID, dec(t, "3000"))
	sellerWallet := bareWallet(sellerID, dec(t, "0"))
	platformWallet := bareWallet(platformID, dec(t, "0"))
	listing := activeListing(t, sellerID, "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusDelivered)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.wallets.On("GetByID", mock.Anything, buyerWallet.ID).Return(buyerWallet, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusDelivered, entities.EscrowStatusReleased, mock.Anything).Return(nil)
	f.wallets.On("GetOrCreateByUserID", mock.Anything, sellerID).Return(sellerWallet, nil)
	f.wallets.On("Credit", mock.Anything, sellerWallet.ID, decEq(t, "1900")).Return(nil)
	f.txs.On("Create", mock.Anything, mock.MatchedBy(func(sale *entities.Transaction) bool {
		return sale.Type == entities.TransactionTypeSale &&
			sale.Amount.Equal(dec(t, "1900")) &&
			sale.PlatformFee.Equal(dec(t, "100")) &&
			strings.HasPrefix(sale.Reference, usecases.SaleRefPrefix)
	})).Return(nil)
	f.users.On("GetByEmail", mock.Anything, "platform@campusmarket.test").Return(&entities.User{ID: platformID}, nil)
	f.wallets.On("GetOrCreateByUserID", mock.Anything, platformID).Return(platformWallet, nil)
	f.wallets.On("Credit", mock.Anything, platformWallet.ID, decEq(t, "100")).Return(nil)
	f.wallets.On("ReleaseReserved", mock.Anything, buyerWallet.ID, decEq(t, "2000")).Return(nil)
	f.listings.On("IncrementSoldCount", mock.Anything, listing.ID, 1).Return(nil)

	_, err := f.usecase.ConfirmReceipt(context.Background(), buyerID, tx.ID)

	require.NoError(t, err)
	f.wallets.AssertExpectations(t)
	f.txs.AssertExpectations(t)
	assert.NotEmpty(t, f.notifier.noticesFor(sellerID))
}

func TestConfirmReceipt_FeeDisabledPaysFullAmount(t *testing.T) {
	f := newEscrowFixture(t, config.PlatformConfig{FeeEnabled: false, FeeRate: dec(t, "0.05")})
	buyerID := utils.GenerateUUIDv7()
	sellerID := utils.GenerateUUIDv7()

	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	sellerWallet := bareWallet(sellerID, dec(t, "0"))
	listing := activeListing(t, sellerID, "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusDelivered)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.wallets.On("GetByID", mock.Anything, buyerWallet.ID).Return(buyerWallet, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusDelivered, entities.EscrowStatusReleased, mock.Anything).Return(nil)
	f.wallets.On("GetOrCreateByUserID", mock.Anything, sellerID).Return(sellerWallet, nil)
	f.wallets.On("Credit", mock.Anything, sellerWallet.ID, decEq(t, "2000")).Return(nil)
	f.txs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.wallets.On("ReleaseReserved", mock.Anything, buyerWallet.ID, decEq(t, "2000")).Return(nil)
	f.listings.On("IncrementSoldCount", mock.Anything, listing.ID, 1).Return(nil)

	_, err := f.usecase.ConfirmReceipt(context.Background(), buyerID, tx.ID)

	require.NoError(t, err)
	f.users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestConfirmReceipt_RequiresDelivery(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	buyerID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	listing := activeListing(t, utils.GenerateUUIDv7(), "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusHeld)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.wallets.On("GetByID", mock.Anything, buyerWallet.ID).Return(buyerWallet, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusDelivered, entities.EscrowStatusReleased, mock.Anything).Return(domainerrors.ErrInvalidState)

	_, err := f.usecase.ConfirmReceipt(context.Background(), buyerID, tx.ID)

	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
	f.wallets.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmReceipt_OnlyBuyer(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	buyerID := utils.GenerateUUIDv7()
	stranger := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	listing := activeListing(t, utils.GenerateUUIDv7(), "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusDelivered)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.wallets.On("GetByID", mock.Anything, buyerWallet.ID).Return(buyerWallet, nil)

	_, err := f.usecase.ConfirmReceipt(context.Background(), stranger, tx.ID)

	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
}

func TestMarkDelivered_SellerStampsTransaction(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	buyerID := utils.GenerateUUIDv7()
	sellerID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	listing := activeListing(t, sellerID, "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusHeld)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusHeld, entities.EscrowStatusDelivered,
		mock.MatchedBy(func(extra map[string]interface{}) bool {
			_, hasAt := extra["delivered_at"]
			return hasAt && extra["delivered_by"] == sellerID
		})).Return(nil)
	f.wallets.On("GetByID", mock.Anything, buyerWallet.ID).Return(buyerWallet, nil)

	_, err := f.usecase.MarkDelivered(context.Background(), sellerID, tx.ID)

	require.NoError(t, err)
	assert.NotEmpty(t, f.notifier.noticesFor(buyerID))
}

func TestMarkDelivered_OnlySeller(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	buyerID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	listing := activeListing(t, utils.GenerateUUIDv7(), "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusHeld)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)

	_, err := f.usecase.MarkDelivered(context.Background(), buyerID, tx.ID)

	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	f.txs.AssertNotCalled(t, "TransitionEscrow", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestDispute_FreezesHeldPurchase(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	buyerID := utils.GenerateUUIDv7()
	sellerID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	listing := activeListing(t, sellerID, "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusHeld)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.wallets.On("GetByID", mock.Anything, buyerWallet.ID).Return(buyerWallet, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusHeld, entities.EscrowStatusDisputed, mock.Anything).Return(nil)
	f.disputes.On("Create", mock.Anything, mock.MatchedBy(func(d *entities.Dispute) bool {
		return d.TransactionID == tx.ID && d.InitiatorID == buyerID && d.Status == entities.DisputeStatusOpen
	})).Return(nil)

	dispute, err := f.usecase.Dispute(context.Background(), buyerID, tx.ID, &entities.DisputeInput{
		Reason: "item never arrived",
	})

	require.NoError(t, err)
	assert.Equal(t, entities.DisputeStatusOpen, dispute.Status)
	assert.NotEmpty(t, f.notifier.noticesFor(sellerID))
}

func TestDispute_FallsBackToDeliveredState(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	buyerID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	listing := activeListing(t, utils.GenerateUUIDv7(), "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusDelivered)

	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.wallets.On("GetByID", mock.Anything, buyerWallet.ID).Return(buyerWallet, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusHeld, entities.EscrowStatusDisputed, mock.Anything).Return(domainerrors.ErrInvalidState)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusDelivered, entities.EscrowStatusDisputed, mock.Anything).Return(nil)
	f.disputes.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.listings.On("GetByID", mock.Anything, listing.ID).Return(listing, nil)

	_, err := f.usecase.Dispute(context.Background(), buyerID, tx.ID, &entities.DisputeInput{Reason: "wrong item"})

	require.NoError(t, err)
}

func TestResolveDispute_RefundReturnsMoneyAndStock(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	adminID := utils.GenerateUUIDv7()
	buyerID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	listing := activeListing(t, utils.GenerateUUIDv7(), "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusDisputed)
	dispute := &entities.Dispute{
		ID:            utils.GenerateUUIDv7(),
		TransactionID: tx.ID,
		InitiatorID:   buyerID,
		Status:        entities.DisputeStatusOpen,
	}

	f.disputes.On("GetByID", mock.Anything, dispute.ID).Return(dispute, nil)
	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.disputes.On("Resolve", mock.Anything, dispute.ID, entities.DisputeResolutionRefund, "buyer is right", adminID).Return(nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusDisputed, entities.EscrowStatusRefunded, mock.Anything).Return(nil)
	f.wallets.On("Credit", mock.Anything, buyerWallet.ID, decEq(t, "2000")).Return(nil)
	f.wallets.On("ReleaseReserved", mock.Anything, buyerWallet.ID, decEq(t, "2000")).Return(nil)
	f.listings.On("RestoreStock", mock.Anything, listing.ID, 1).Return(nil)
	f.listings.On("UpdateStatus", mock.Anything, listing.ID, entities.ListingStatusActive).Return(nil)

	_, err := f.usecase.ResolveDispute(context.Background(), adminID, dispute.ID, &entities.ResolveDisputeInput{
		Resolution: "REFUND",
		Note:       "buyer is right",
	})

	require.NoError(t, err)
	f.wallets.AssertExpectations(t)
	f.listings.AssertExpectations(t)
	assert.NotEmpty(t, f.notifier.noticesFor(buyerID))
}

func TestResolveDispute_ReleasePaysSeller(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	adminID := utils.GenerateUUIDv7()
	buyerID := utils.GenerateUUIDv7()
	sellerID := utils.GenerateUUIDv7()
	platformID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(buyerID, dec(t, "0"))
	sellerWallet := bareWallet(sellerID, dec(t, "0"))
	listing := activeListing(t, sellerID, "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusDisputed)
	dispute := &entities.Dispute{
		ID:            utils.GenerateUUIDv7(),
		TransactionID: tx.ID,
		InitiatorID:   buyerID,
		Status:        entities.DisputeStatusOpen,
	}

	f.disputes.On("GetByID", mock.Anything, dispute.ID).Return(dispute, nil)
	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.disputes.On("Resolve", mock.Anything, dispute.ID, entities.DisputeResolutionRelease, "", adminID).Return(nil)
	f.txs.On("TransitionEscrow", mock.Anything, tx.ID, entities.EscrowStatusDisputed, entities.EscrowStatusReleased, mock.Anything).Return(nil)
	f.wallets.On("GetOrCreateByUserID", mock.Anything, sellerID).Return(sellerWallet, nil)
	f.wallets.On("Credit", mock.Anything, sellerWallet.ID, decEq(t, "1900")).Return(nil)
	f.txs.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.users.On("GetByEmail", mock.Anything, "platform@campusmarket.test").Return(&entities.User{ID: platformID}, nil)
	f.wallets.On("GetOrCreateByUserID", mock.Anything, platformID).Return(bareWallet(platformID, dec(t, "0")), nil)
	f.wallets.On("Credit", mock.Anything, mock.Anything, decEq(t, "100")).Return(nil)
	f.wallets.On("ReleaseReserved", mock.Anything, buyerWallet.ID, decEq(t, "2000")).Return(nil)
	f.listings.On("IncrementSoldCount", mock.Anything, listing.ID, 1).Return(nil)

	_, err := f.usecase.ResolveDispute(context.Background(), adminID, dispute.ID, &entities.ResolveDisputeInput{
		Resolution: "RELEASE",
	})

	require.NoError(t, err)
	f.wallets.AssertExpectations(t)
}

func TestResolveDispute_AlreadyResolved(t *testing.T) {
	f := newEscrowFixture(t, marketplaceFees(t))
	adminID := utils.GenerateUUIDv7()
	buyerWallet := bareWallet(utils.GenerateUUIDv7(), dec(t, "0"))
	listing := activeListing(t, utils.GenerateUUIDv7(), "2000", 0)
	tx := heldPurchase(t, buyerWallet, listing, "2000", entities.EscrowStatusDisputed)
	dispute := &entities.Dispute{ID: utils.GenerateUUIDv7(), TransactionID: tx.ID, Status: entities.DisputeStatusResolved}

	f.disputes.On("GetByID", mock.Anything, dispute.ID).Return(dispute, nil)
	f.txs.On("GetByID", mock.Anything, tx.ID).Return(tx, nil)
	f.uow.On("Do", mock.Anything, mock.Anything).Return(nil)
	f.disputes.On("Resolve", mock.Anything, dispute.ID, entities.DisputeResolutionRefund, "", adminID).Return(domainerrors.ErrInvalidState)

	_, err := f.usecase.ResolveDispute(context.Background(), adminID, dispute.ID, &entities.ResolveDisputeInput{Resolution: "REFUND"})

	assert.ErrorIs(t, err, domainerrors.ErrInvalidState)
	f.wallets.AssertNotCalled(t, "Credit", mock.Anything, mock.Anything, mock.Anything)
}
