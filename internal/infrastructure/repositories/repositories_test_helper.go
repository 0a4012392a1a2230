package repositories

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err, "open sqlite")
	return db
}

func mustExec(t *testing.T, db *gorm.DB, q string, args ...interface{}) {
	t.Helper()
	require.NoError(t, db.Exec(q, args...).Error, "exec failed: query=%s", q)
}

func createUserTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT 'USER',
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`)
}

func createWalletTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE wallets (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL UNIQUE,
		balance DECIMAL(20,2) NOT NULL DEFAULT 0,
		reserved_balance DECIMAL(20,2) NOT NULL DEFAULT 0,
		transaction_pin TEXT,
		pin_set_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createListingTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE listings (
		id TEXT PRIMARY KEY,
		seller_id TEXT NOT NULL,
		title TEXT NOT NULL,
		price DECIMAL(20,2) NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		sold_count INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL DEFAULT 'ACTIVE',
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createTransactionTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE transactions (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL,
		amount DECIMAL(20,2) NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL,
		escrow_status TEXT NOT NULL DEFAULT 'NONE',
		reference TEXT NOT NULL UNIQUE,
		listing_id TEXT,
		quantity INTEGER NOT NULL DEFAULT 0,
		platform_fee DECIMAL(20,2) NOT NULL DEFAULT 0,
		description TEXT,
		delivered_at DATETIME,
		delivered_by TEXT,
		received_at DATETIME,
		received_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createDisputeTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE disputes (
		id TEXT PRIMARY KEY,
		transaction_id TEXT NOT NULL,
		initiator_id TEXT NOT NULL,
		reason TEXT NOT NULL,
		evidence TEXT,
		status TEXT NOT NULL DEFAULT 'OPEN',
		resolution TEXT,
		resolved_by TEXT,
		resolved_at DATETIME,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createWithdrawalTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE withdrawals (
		id TEXT PRIMARY KEY,
		wallet_id TEXT NOT NULL,
		amount DECIMAL(20,2) NOT NULL,
		fee DECIMAL(20,2) NOT NULL,
		net_amount DECIMAL(20,2) NOT NULL,
		bank_code TEXT NOT NULL,
		account_number TEXT NOT NULL,
		account_name TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'PENDING',
		reference TEXT NOT NULL UNIQUE,
		created_at DATETIME,
		updated_at DATETIME
	);`)
}

func createSmartContractTables(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE smart_contracts (
		id TEXT PRIMARY KEY,
		buyer_id TEXT NOT NULL,
		seller_id TEXT NOT NULL,
		listing_id TEXT NOT NULL,
		transaction_id TEXT,
		terms TEXT NOT NULL,
		buyer_signed BOOLEAN NOT NULL DEFAULT 0,
		seller_signed BOOLEAN NOT NULL DEFAULT 0,
		signatures TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'CREATED',
		released_at DATETIME,
		released_by TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`)
	mustExec(t, db, `CREATE TABLE contract_audits (
		id TEXT PRIMARY KEY,
		contract_id TEXT NOT NULL,
		action TEXT NOT NULL,
		actor_id TEXT NOT NULL,
		payload TEXT NOT NULL,
		hash TEXT NOT NULL,
		created_at DATETIME
	);`)
}

func createNotificationTable(t *testing.T, db *gorm.DB) {
	mustExec(t, db, `CREATE TABLE notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL,
		body TEXT NOT NULL,
		metadata TEXT,
		read BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME
	);`)
}

// createLedgerTables sets up everything the money-path tests need.
func createLedgerTables(t *testing.T, db *gorm.DB) {
	createUserTable(t, db)
	createWalletTable(t, db)
	createListingTable(t, db)
	createTransactionTable(t, db)
}
