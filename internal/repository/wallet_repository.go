package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/database"
)

type WalletRepository struct {
	db *database.DB
}

func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// Get 지갑 조회 (없으면 잔액 0으로 생성)
func (r *WalletRepository) Get(userID string) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, balance, currency)
		VALUES ($1, 0, 'INR')
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING user_id, balance, currency, created_at, updated_at
	`

	wallet := &models.Wallet{}
	err := r.db.QueryRow(query, userID).Scan(
		&wallet.UserID,
		&wallet.Balance,
		&wallet.Currency,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}

	transactions, err := r.RecentTransactions(userID, 20)
	if err != nil {
		return nil, err
	}
	wallet.Transactions = transactions

	return wallet, nil
}

// Credit 잔액 무조건 증가 + 거래 기록
func (r *WalletRepository) Credit(userID string, amount int64, txType models.TransactionType, description string) error {
	query := `
		INSERT INTO wallets (user_id, balance, currency)
		VALUES ($1, $2, 'INR')
		ON CONFLICT (user_id) DO UPDATE
		SET balance = wallets.balance + $2, updated_at = NOW()
	`

	if _, err := r.db.Exec(query, userID, amount); err != nil {
		return fmt.Errorf("failed to credit wallet: %w", err)
	}

	return r.appendTransaction(userID, amount, txType, description)
}

// Debit 조건부 차감: 잔액이 충분할 때만 원자적으로 차감
// 잔액 부족은 에러가 아니라 false로 반환 (정상적인 비즈니스 결과)
func (r *WalletRepository) Debit(userID string, amount int64, txType models.TransactionType, description string) (bool, error) {
	query := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = NOW()
		WHERE user_id = $2 AND balance >= $1
	`

	result, err := r.db.Exec(query, amount, userID)
	if err != nil {
		return false, fmt.Errorf("failed to debit wallet: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check debit result: %w", err)
	}
	if affected == 0 {
		return false, nil // 잔액 부족 또는 지갑 없음
	}

	if err := r.appendTransaction(userID, -amount, txType, description); err != nil {
		return true, err
	}

	return true, nil
}

// Balance 현재 잔액 조회
func (r *WalletRepository) Balance(userID string) (int64, error) {
	query := `SELECT balance FROM wallets WHERE user_id = $1`

	var balance int64
	err := r.db.QueryRow(query, userID).Scan(&balance)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}

	return balance, nil
}

// RecentTransactions 최근 거래 내역 (최신순)
func (r *WalletRepository) RecentTransactions(userID string, limit int) ([]models.Transaction, error) {
	query := `
		SELECT id, user_id, amount, type, description, created_at
		FROM transactions
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var transactions []models.Transaction
	for rows.Next() {
		tx := models.Transaction{}
		err := rows.Scan(&tx.ID, &tx.UserID, &tx.Amount, &tx.Type, &tx.Description, &tx.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, tx)
	}

	return transactions, rows.Err()
}

func (r *WalletRepository) appendTransaction(userID string, amount int64, txType models.TransactionType, description string) error {
	query := `
		INSERT INTO transactions (id, user_id, amount, type, description)
		VALUES ($1, $2, $3, $4, $5)
	`

	if _, err := r.db.Exec(query, uuid.NewString(), userID, amount, txType, description); err != nil {
		return fmt.Errorf("failed to append transaction: %w", err)
	}

	return nil
}
