package models

import "time"

type TransactionType string

const (
	TransactionTypeDeposit    TransactionType = "Deposit"
	TransactionTypeWithdrawal TransactionType = "Withdrawal"
	TransactionTypeDuelWager  TransactionType = "Duel Wager"
	TransactionTypeDuelWin    TransactionType = "Duel Win"
	TransactionTypeDuelRefund TransactionType = "Duel Refund"
)

type Wallet struct {
	UserID    string    `json:"userId" db:"user_id"`
	Balance   int64     `json:"balance" db:"balance"`
	Currency  string    `json:"currency" db:"currency"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// 최근 거래 내역 (조회 시에만 채워짐)
	Transactions []Transaction `json:"transactions,omitempty" db:"-"`
}

// Transaction 지갑 거래 기록 (append-only)
type Transaction struct {
	ID          string          `json:"id" db:"id"`
	UserID      string          `json:"userId" db:"user_id"`
	Amount      int64           `json:"amount" db:"amount"` // 음수면 차감
	Type        TransactionType `json:"type" db:"type"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
}
