package service

import (
	"fmt"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/internal/repository"
)

// WalletService 지갑 원장 클라이언트 어댑터
// 멱등성은 보장하지 않는다: 같은 논리적 이벤트에 대해 debit/credit을
// 두 번 호출하지 않는 것은 호출자(듀얼 엔진)의 책임
type WalletService struct {
	walletRepo *repository.WalletRepository
}

func NewWalletService(walletRepo *repository.WalletRepository) *WalletService {
	return &WalletService{walletRepo: walletRepo}
}

// Get 지갑 + 최근 거래 내역 조회
func (s *WalletService) Get(userID string) (*models.Wallet, error) {
	return s.walletRepo.Get(userID)
}

// Debit 조건부 차감 (잔액 부족이면 ok=false, 에러 아님)
func (s *WalletService) Debit(userID string, amount int64, txType models.TransactionType, description string) (bool, error) {
	if amount <= 0 {
		return false, fmt.Errorf("%w: debit amount must be positive", ErrInvalidInput)
	}
	return s.walletRepo.Debit(userID, amount, txType, description)
}

// Credit 무조건 증가
func (s *WalletService) Credit(userID string, amount int64, txType models.TransactionType, description string) error {
	if amount <= 0 {
		return fmt.Errorf("%w: credit amount must be positive", ErrInvalidInput)
	}
	return s.walletRepo.Credit(userID, amount, txType, description)
}

// Balance 현재 잔액
func (s *WalletService) Balance(userID string) (int64, error) {
	return s.walletRepo.Balance(userID)
}

// Deposit 직접 입금 (보너스 등 외부 결제 플로우를 타지 않는 경로)
func (s *WalletService) Deposit(userID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("%w: deposit amount must be positive", ErrInvalidInput)
	}
	description := fmt.Sprintf("Deposit of %d", amount)
	return s.walletRepo.Credit(userID, amount, models.TransactionTypeDeposit, description)
}
