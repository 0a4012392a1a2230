package usecases

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/internal/domain/repositories"
	"campus-market.backend/internal/realtime"
	"campus-market.backend/pkg/logger"
)

// CheckoutUsecase moves buyer funds into escrow against one or more listings.
// The whole cart settles atomically: either every item is held and every
// stock line decremented, or nothing moved.
type CheckoutUsecase struct {
	uow         repositories.UnitOfWork
	walletRepo  repositories.WalletRepository
	listingRepo repositories.ListingRepository
	txRepo      repositories.TransactionRepository
	notifier    Notifier
}

// NewCheckoutUsecase creates a new checkout usecase
func NewCheckoutUsecase(
	uow repositories.UnitOfWork,
	walletRepo repositories.WalletRepository,
	listingRepo repositories.ListingRepository,
	txRepo repositories.TransactionRepository,
	notifier Notifier,
) *CheckoutUsecase {
	return &CheckoutUsecase{
		uow:         uow,
		walletRepo:  walletRepo,
		listingRepo: listingRepo,
		txRepo:      txRepo,
		notifier:    notifier,
	}
}

type cartLine struct {
	listing  entities.Listing
	quantity int
	subtotal decimal.Decimal
}

// Checkout debits the buyer for the full cart, reserves the amount as held,
// decrements stock, and writes one HELD purchase entry per listing.
func (u *CheckoutUsecase) Checkout(ctx context.Context, buyerID uuid.UUID, input *entities.CheckoutInput) ([]entities.Transaction, error) {
	if len(input.Items) == 0 {
		return nil, domainerrors.BadRequest("cart is empty")
	}

	wallet, err := u.walletRepo.GetOrCreateByUserID(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if err := verifyWalletPin(wallet, input.Pin); err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(input.Items))
	quantities := make(map[uuid.UUID]int, len(input.Items))
	for _, item := range input.Items {
		id, err := uuid.Parse(item.ListingID)
		if err != nil {
			return nil, domainerrors.BadRequest("invalid listing id")
		}
		if item.Quantity < 1 {
			return nil, domainerrors.BadRequest("quantity must be at least 1")
		}
		if _, dup := quantities[id]; dup {
			return nil, domainerrors.BadRequest("duplicate listing in cart")
		}
		ids = append(ids, id)
		quantities[id] = item.Quantity
	}

	var created []entities.Transaction

	err = u.uow.Do(ctx, func(txCtx context.Context) error {
		listings, err := u.listingRepo.GetByIDs(txCtx, ids)
		if err != nil {
			return err
		}
		byID := make(map[uuid.UUID]entities.Listing, len(listings))
		for _, l := range listings {
			byID[l.ID] = l
		}

		lines := make([]cartLine, 0, len(ids))
		total := decimal.Zero
		for _, id := range ids {
			l, ok := byID[id]
			if !ok {
				return domainerrors.NotFound("listing not found")
			}
			if l.SellerID == buyerID {
				return domainerrors.ErrSelfPurchase
			}
			if !l.Purchasable() {
				return domainerrors.ErrListingUnavailable
			}
			qty := quantities[id]
			if l.Quantity < qty {
				return domainerrors.ErrInsufficientStock
			}
			subtotal := l.Price.Mul(decimal.NewFromInt(int64(qty)))
			lines = append(lines, cartLine{listing: l, quantity: qty, subtotal: subtotal})
			total = total.Add(subtotal)
		}

		// The guarded debit is the real balance check; everything above is
		// for error quality.
		if err := u.walletRepo.Debit(txCtx, wallet.ID, total); err != nil {
			return err
		}
		if err := u.walletRepo.Reserve(txCtx, wallet.ID, total); err != nil {
			return err
		}

		created = created[:0]
		for _, line := range lines {
			// Guarded against concurrent carts; a parallel buyer taking the
			// last unit rolls this whole checkout back. The repository also
			// flips a depleted listing to SOLD inside the same statement, so
			// no stale quantity read can leave it ACTIVE at zero.
			if err := u.listingRepo.DecrementStock(txCtx, line.listing.ID, line.quantity); err != nil {
				return err
			}

			listingID := line.listing.ID
			tx := entities.Transaction{
				WalletID:     wallet.ID,
				Amount:       line.subtotal,
				Type:         entities.TransactionTypePurchase,
				Status:       entities.TransactionStatusPending,
				EscrowStatus: entities.EscrowStatusHeld,
				Reference:    checkoutReference(),
				ListingID:    &listingID,
				Quantity:     line.quantity,
			}
			tx.Description.SetValid(fmt.Sprintf("Purchase of %s", line.listing.Title))
			if err := u.txRepo.Create(txCtx, &tx); err != nil {
				return err
			}
			created = append(created, tx)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "checkout held",
		zap.String("buyer_id", buyerID.String()),
		zap.Int("items", len(created)))

	for i := range created {
		line := created[i]
		u.notifier.Notify(ctx, buyerID, entities.NotificationTypeOrderPlaced,
			"Order placed",
			fmt.Sprintf("Your payment of %s is held in escrow until you confirm delivery.", line.Amount.StringFixed(2)),
			map[string]interface{}{"transactionId": line.ID.String()})
	}
	u.notifySellers(ctx, created)
	u.notifier.Emit(buyerID, realtime.EventBalanceUpdate, nil)

	return created, nil
}

// InitiatePurchase is single-listing checkout
func (u *CheckoutUsecase) InitiatePurchase(ctx context.Context, buyerID uuid.UUID, input *entities.PurchaseInput) (*entities.Transaction, error) {
	qty := input.Quantity
	if qty == 0 {
		qty = 1
	}
	txs, err := u.Checkout(ctx, buyerID, &entities.CheckoutInput{
		Items: []entities.CheckoutItem{{ListingID: input.ListingID, Quantity: qty}},
		Pin:   input.Pin,
	})
	if err != nil {
		return nil, err
	}
	return &txs[0], nil
}

func (u *CheckoutUsecase) notifySellers(ctx context.Context, txs []entities.Transaction) {
	for i := range txs {
		if txs[i].ListingID == nil {
			continue
		}
		listing, err := u.listingRepo.GetByID(ctx, *txs[i].ListingID)
		if err != nil {
			logger.Warn(ctx, "could not load listing for seller notification",
				zap.String("listing_id", txs[i].ListingID.String()),
				zap.Error(err))
			continue
		}
		u.notifier.Notify(ctx, listing.SellerID, entities.NotificationTypeOrderPlaced,
			"New order",
			fmt.Sprintf("%s sold for %s. Mark it delivered once handed over.", listing.Title, txs[i].Amount.StringFixed(2)),
			map[string]interface{}{"transactionId": txs[i].ID.String(), "listingId": listing.ID.String()})
	}
}
