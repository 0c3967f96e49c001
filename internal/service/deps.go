package service

import (
	"context"
	"time"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/judge"
)

// DuelStore 듀얼 저장소 (조건부 전환 포함)
// 조건부 메서드들은 경쟁에서 밀린 경우 (nil, nil)을 반환한다
type DuelStore interface {
	Create(duel *models.Duel) (*models.Duel, error)
	FindByID(id string) (*models.Duel, error)
	FindByStatus(status models.DuelStatus) ([]*models.Duel, error)
	FindActiveByUser(userID string) ([]*models.Duel, error)
	FindInProgressBefore(before time.Time) ([]*models.Duel, error)
	AttemptJoin(duelID, player2ID string) (*models.Duel, error)
	AttemptFinish(duelID string, winnerID *string, finalStatus models.DuelStatus) (*models.Duel, error)
	AttemptCancel(duelID string) (*models.Duel, error)
	UpdateSubmissions(duelID string, submissions []models.DuelSubmission) error
	SetSummary(duelID string, finalStatus models.SubmissionStatus, finalCode string) error
	UpdateState(duelID string, status models.DuelStatus, winnerID *string) (*models.Duel, error)
}

// UserStore 사용자 디렉터리 (신원/밴 상태/레이팅 영속화)
type UserStore interface {
	FindByID(id string) (*models.User, error)
	UpdateDuelStats(id string, newElo int, won bool) error
}

// ProblemStore 문제 카탈로그 (읽기 전용)
type ProblemStore interface {
	FindByID(id string) (*models.Problem, error)
	FindRandomByDifficulty(difficulty models.Difficulty) (*models.Problem, error)
}

// WalletLedger 지갑 원장 클라이언트
// Debit은 잔액 부족 시 에러가 아닌 ok=false를 반환한다
type WalletLedger interface {
	Debit(userID string, amount int64, txType models.TransactionType, description string) (bool, error)
	Credit(userID string, amount int64, txType models.TransactionType, description string) error
	Balance(userID string) (int64, error)
}

// JudgeRunner 외부 채점 서비스
type JudgeRunner interface {
	Execute(ctx context.Context, req *judge.ExecuteRequest) (*judge.ExecuteResponse, error)
}

// Broadcaster 듀얼 스냅샷 관찰자 알림 (fire-and-forget)
type Broadcaster interface {
	PublishDuel(duel *models.Duel)
}
