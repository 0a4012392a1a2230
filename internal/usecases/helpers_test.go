package usecases_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/pkg/crypto"
	"campus-market.backend/pkg/utils"
)

const testPin = "1234"

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

// decEq matches a decimal argument by numeric value rather than
// representation, since 100 and 100.00 are distinct to reflect.DeepEqual.
func decEq(t *testing.T, s string) interface{} {
	t.Helper()
	want := dec(t, s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

// pinnedWallet builds a wallet with the test PIN already hashed in
func pinnedWallet(t *testing.T, userID uuid.UUID, balance string) *entities.Wallet {
	t.Helper()
	hash, err := crypto.HashPin(testPin)
	require.NoError(t, err)
	return &entities.Wallet{
		ID:             utils.GenerateUUIDv7(),
		UserID:         userID,
		Balance:        dec(t, balance),
		TransactionPin: null.StringFrom(hash),
	}
}

func bareWallet(userID uuid.UUID, balance decimal.Decimal) *entities.Wallet {
	return &entities.Wallet{
		ID:      utils.GenerateUUIDv7(),
		UserID:  userID,
		Balance: balance,
	}
}

func activeListing(t *testing.T, sellerID uuid.UUID, price string, qty int) *entities.Listing {
	t.Helper()
	return &entities.Listing{
		ID:       utils.GenerateUUIDv7(),
		SellerID: sellerID,
		Title:    "Calculus Textbook",
		Price:    dec(t, price),
		Quantity: qty,
		Status:   entities.ListingStatusActive,
	}
}
