package usecases_test

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"campus-market.backend/internal/domain/entities"
	"campus-market.backend/internal/infrastructure/gateway"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, fn func(context.Context) error) error {
	m.Called(ctx, fn)
	return fn(ctx)
}

// Mock WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetOrCreateByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Wallet, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) DebitAvailable(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Reserve(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) ReleaseReserved(ctx context.Context, walletID uuid.UUID, amount decimal.Decimal) error {
	args := m.Called(ctx, walletID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) SetPin(ctx context.Context, walletID uuid.UUID, pinHash string) error {
	args := m.Called(ctx, walletID, pinHash)
	return args.Error(0)
}

// Mock TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Create(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByReference(ctx context.Context, reference string) (*entities.Transaction, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) TransitionEscrow(ctx context.Context, id uuid.UUID, from, to entities.EscrowStatus, extra map[string]interface{}) error {
	args := m.Called(ctx, id, from, to, extra)
	return args.Error(0)
}

func (m *MockTransactionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.TransactionStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]entities.Transaction, int64, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Transaction), args.Get(1).(int64), args.Error(2)
}

func (m *MockTransactionRepository) ListPurchasesByBuyer(ctx context.Context, walletID uuid.UUID) ([]entities.Transaction, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListPurchasesBySeller(ctx context.Context, sellerID uuid.UUID) ([]entities.Transaction, error) {
	args := m.Called(ctx, sellerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) SumAmountByEscrowStatus(ctx context.Context, status entities.EscrowStatus) (decimal.Decimal, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockTransactionRepository) CountByEscrowStatus(ctx context.Context, status entities.EscrowStatus) (int64, error) {
	args := m.Called(ctx, status)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepository) ListHeldOlderThan(ctx context.Context, cutoff time.Time) ([]entities.Transaction, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Transaction), args.Error(1)
}

// Mock ListingRepository
type MockListingRepository struct {
	mock.Mock
}

func (m *MockListingRepository) Create(ctx context.Context, listing *entities.Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockListingRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Listing), args.Error(1)
}

func (m *MockListingRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entities.Listing, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Listing), args.Error(1)
}

func (m *MockListingRepository) DecrementStock(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockListingRepository) RestoreStock(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockListingRepository) IncrementSoldCount(ctx context.Context, id uuid.UUID, qty int) error {
	args := m.Called(ctx, id, qty)
	return args.Error(0)
}

func (m *MockListingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.ListingStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// Mock DisputeRepository
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) Create(ctx context.Context, dispute *entities.Dispute) error {
	args := m.Called(ctx, dispute)
	return args.Error(0)
}

func (m *MockDisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) GetOpenByTransactionID(ctx context.Context, txID uuid.UUID) (*entities.Dispute, error) {
	args := m.Called(ctx, txID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Dispute), args.Error(1)
}

func (m *MockDisputeRepository) ListOpen(ctx context.Context, limit, offset int) ([]entities.Dispute, int64, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Dispute), args.Get(1).(int64), args.Error(2)
}

func (m *MockDisputeRepository) Resolve(ctx context.Context, id uuid.UUID, resolution entities.DisputeResolution, note string, adminID uuid.UUID) error {
	args := m.Called(ctx, id, resolution, note, adminID)
	return args.Error(0)
}

// Mock WithdrawalRepository
type MockWithdrawalRepository struct {
	mock.Mock
}

func (m *MockWithdrawalRepository) Create(ctx context.Context, w *entities.Withdrawal) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

func (m *MockWithdrawalRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Withdrawal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Withdrawal), args.Error(1)
}

func (m *MockWithdrawalRepository) ListByWallet(ctx context.Context, walletID uuid.UUID, limit, offset int) ([]entities.Withdrawal, int64, error) {
	args := m.Called(ctx, walletID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]entities.Withdrawal), args.Get(1).(int64), args.Error(2)
}

func (m *MockWithdrawalRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to entities.WithdrawalStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

// Mock SmartContractRepository
type MockSmartContractRepository struct {
	mock.Mock
}

func (m *MockSmartContractRepository) Create(ctx context.Context, contract *entities.SmartContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockSmartContractRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.SmartContract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.SmartContract), args.Error(1)
}

func (m *MockSmartContractRepository) Save(ctx context.Context, contract *entities.SmartContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

// Mock ContractAuditRepository
type MockContractAuditRepository struct {
	mock.Mock
}

func (m *MockContractAuditRepository) Append(ctx context.Context, audit *entities.ContractAudit) error {
	args := m.Called(ctx, audit)
	return args.Error(0)
}

func (m *MockContractAuditRepository) ListByContract(ctx context.Context, contractID uuid.UUID) ([]entities.ContractAudit, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ContractAudit), args.Error(1)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

// Mock gateway client
type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) InitializeTransaction(ctx context.Context, email string, amountMinor int64, metadata gateway.Metadata) (*gateway.InitializeData, error) {
	args := m.Called(ctx, email, amountMinor, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.InitializeData), args.Error(1)
}

func (m *MockGatewayClient) VerifyTransaction(ctx context.Context, reference string) (*gateway.TransactionData, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.TransactionData), args.Error(1)
}

// Mock escrow releaser for contract tests
type MockReleaser struct {
	mock.Mock
}

func (m *MockReleaser) ReleaseHeldFunds(ctx context.Context, txID, actorID uuid.UUID) error {
	args := m.Called(ctx, txID, actorID)
	return args.Error(0)
}

// stubNotifier records deliveries instead of asserting on them; notification
// wiring is best-effort and tests only care that the right users were told.
// Mock NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *entities.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]entities.Notification, int64, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]entities.Notification), args.Get(1).(int64), args.Error(2)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

type stubNotifier struct {
	mu      sync.Mutex
	notices []stubNotice
	events  []stubEvent
}

type stubNotice struct {
	UserID uuid.UUID
	Type   string
	Title  string
}

type stubEvent struct {
	UserID uuid.UUID
	Event  string
}

func (s *stubNotifier) Notify(_ context.Context, userID uuid.UUID, notifType, title, _ string, _ map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notices = append(s.notices, stubNotice{UserID: userID, Type: notifType, Title: title})
}

func (s *stubNotifier) Emit(userID uuid.UUID, event string, _ interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, stubEvent{UserID: userID, Event: event})
}

func (s *stubNotifier) noticesFor(userID uuid.UUID) []stubNotice {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []stubNotice
	for _, n := range s.notices {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}
