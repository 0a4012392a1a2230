package handlers

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"campus-market.backend/internal/domain/entities"
	domainerrors "campus-market.backend/internal/domain/errors"
	"campus-market.backend/pkg/utils"
)

type checkoutServiceStub struct {
	txs []entities.Transaction
	err error
}

func (s *checkoutServiceStub) Checkout(context.Context, uuid.UUID, *entities.CheckoutInput) ([]entities.Transaction, error) {
	return s.txs, s.err
}

func (s *checkoutServiceStub) InitiatePurchase(context.Context, uuid.UUID, *entities.PurchaseInput) (*entities.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &s.txs[0], nil
}

type escrowServiceStub struct {
	tx      *entities.Transaction
	dispute *entities.Dispute
	err     error
}

func (s *escrowServiceStub) ConfirmReceipt(context.Context, uuid.UUID, uuid.UUID) (*entities.Transaction, error) {
	return s.tx, s.err
}

func (s *escrowServiceStub) Dispute(context.Context, uuid.UUID, uuid.UUID, *entities.DisputeInput) (*entities.Dispute, error) {
	return s.dispute, s.err
}

func escrowRouter(checkout *checkoutServiceStub, escrow *escrowServiceStub, userID uuid.UUID) *gin.Engine {
	h := &EscrowHandler{checkout: checkout, escrow: escrow}
	r := newTestRouter()
	auth := asUser(userID, "USER")
	r.POST("/escrow/checkout", auth, h.Checkout)
	r.POST("/escrow/purchase", auth, h.InitiatePurchase)
	r.POST("/escrow/transactions/:id/confirm", auth, h.ConfirmReceipt)
	r.POST("/escrow/transactions/:id/dispute", auth, h.Dispute)
	return r
}

func cartBody(listingID string) map[string]interface{} {
	return map[string]interface{}{
		"items": []map[string]interface{}{{"listingId": listingID, "quantity": 1}},
		"pin":   "1234",
	}
}

func TestEscrowHandler_CheckoutCreated(t *testing.T) {
	userID := utils.GenerateUUIDv7()
	stub := &checkoutServiceStub{txs: []entities.Transaction{{
		ID:           utils.GenerateUUIDv7(),
		EscrowStatus: entities.EscrowStatusHeld,
		Reference:    "CH-test",
	}}}
	r := escrowRouter(stub, &escrowServiceStub{}, userID)

	w := performJSON(t, r, http.MethodPost, "/escrow/checkout", cartBody(utils.GenerateUUIDv7().String()))

	assertStatus(t, w, http.StatusCreated)
	assert.Contains(t, w.Body.String(), "CH-test")
}

func TestEscrowHandler_CheckoutRequiresItemsAndPin(t *testing.T) {
	r := escrowRouter(&checkoutServiceStub{}, &escrowServiceStub{}, utils.GenerateUUIDv7())

	w := performJSON(t, r, http.MethodPost, "/escrow/checkout", map[string]interface{}{"items": []interface{}{}})

	assertStatus(t, w, http.StatusBadRequest)
}

func TestEscrowHandler_CheckoutInsufficientFunds(t *testing.T) {
	r := escrowRouter(&checkoutServiceStub{err: domainerrors.ErrInsufficientFunds}, &escrowServiceStub{}, utils.GenerateUUIDv7())

	w := performJSON(t, r, http.MethodPost, "/escrow/checkout", cartBody(utils.GenerateUUIDv7().String()))

	assertStatus(t, w, http.StatusUnprocessableEntity)
}

func TestEscrowHandler_ConfirmReceipt(t *testing.T) {
	userID := utils.GenerateUUIDv7()
	stub := &escrowServiceStub{tx: &entities.Transaction{
		ID:           utils.GenerateUUIDv7(),
		EscrowStatus: entities.EscrowStatusReleased,
	}}
	r := escrowRouter(&checkoutServiceStub{}, stub, userID)

	w := performJSON(t, r, http.MethodPost, "/escrow/transactions/"+utils.GenerateUUIDv7().String()+"/confirm", nil)

	assertStatus(t, w, http.StatusOK)
	assert.Contains(t, w.Body.String(), "RELEASED")
}

func TestEscrowHandler_ConfirmBeforeDeliveryConflicts(t *testing.T) {
	r := escrowRouter(&checkoutServiceStub{}, &escrowServiceStub{err: domainerrors.ErrInvalidState}, utils.GenerateUUIDv7())

	w := performJSON(t, r, http.MethodPost, "/escrow/transactions/"+utils.GenerateUUIDv7().String()+"/confirm", nil)

	assertStatus(t, w, http.StatusConflict)
}

func TestEscrowHandler_DisputeNeedsReason(t *testing.T) {
	r := escrowRouter(&checkoutServiceStub{}, &escrowServiceStub{}, utils.GenerateUUIDv7())

	w := performJSON(t, r, http.MethodPost, "/escrow/transactions/"+utils.GenerateUUIDv7().String()+"/dispute", map[string]string{})

	assertStatus(t, w, http.StatusBadRequest)
}

func TestEscrowHandler_DisputeOpened(t *testing.T) {
	userID := utils.GenerateUUIDv7()
	stub := &escrowServiceStub{dispute: &entities.Dispute{
		ID:     utils.GenerateUUIDv7(),
		Status: entities.DisputeStatusOpen,
	}}
	r := escrowRouter(&checkoutServiceStub{}, stub, userID)

	w := performJSON(t, r, http.MethodPost, "/escrow/transactions/"+utils.GenerateUUIDv7().String()+"/dispute",
		map[string]string{"reason": "item never arrived"})

	assertStatus(t, w, http.StatusCreated)
	assert.Contains(t, w.Body.String(), "OPEN")
}
