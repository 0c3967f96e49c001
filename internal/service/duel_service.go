package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/judge"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/logger"
)

// DuelService 듀얼 생성/참가/채점/정산 오케스트레이터
// 상태 전환과 돈의 이동은 저장소의 조건부 전환(AttemptJoin/Finish/Cancel) 뒤에서만 일어난다
type DuelService struct {
	duels          DuelStore
	problems       ProblemStore
	users          UserStore
	wallet         WalletLedger
	judgeClient    JudgeRunner
	eloService     *ELOService
	verdictService *VerdictService
	broadcaster    Broadcaster
}

func NewDuelService(
	duels DuelStore,
	problems ProblemStore,
	users UserStore,
	wallet WalletLedger,
	judgeClient JudgeRunner,
	eloService *ELOService,
	verdictService *VerdictService,
	broadcaster Broadcaster,
) *DuelService {
	return &DuelService{
		duels:          duels,
		problems:       problems,
		users:          users,
		wallet:         wallet,
		judgeClient:    judgeClient,
		eloService:     eloService,
		verdictService: verdictService,
		broadcaster:    broadcaster,
	}
}

// Create 두 사용자가 미리 정해진 듀얼 생성
func (s *DuelService) Create(difficulty models.Difficulty, wager int64, player1ID, player2ID string) (*models.Duel, error) {
	problem, err := s.problems.FindRandomByDifficulty(difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to select problem: %w", err)
	}
	if problem == nil {
		return nil, ErrNoProblemsAvailable
	}

	player1, err := s.users.FindByID(player1ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player1: %w", err)
	}
	player2, err := s.users.FindByID(player2ID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player2: %w", err)
	}
	if player1 == nil || player2 == nil {
		return nil, ErrUsersNotFound
	}
	if player1.IsBanned || player2.IsBanned {
		return nil, ErrUserBanned
	}

	// 양쪽 모두 판돈 차감. 한쪽이라도 실패하면 이미 차감된 쪽을 되돌린다
	if wager > 0 {
		ok, err := s.wallet.Debit(player1ID, wager, models.TransactionTypeDuelWager, "Duel wager")
		if err != nil {
			return nil, fmt.Errorf("failed to debit player1: %w", err)
		}
		if !ok {
			return nil, ErrInsufficientFunds
		}

		ok, err = s.wallet.Debit(player2ID, wager, models.TransactionTypeDuelWager, "Duel wager")
		if err != nil {
			s.refund(player1ID, wager, "Duel wager reversal")
			return nil, fmt.Errorf("failed to debit player2: %w", err)
		}
		if !ok {
			s.refund(player1ID, wager, "Duel wager reversal")
			return nil, ErrInsufficientFunds
		}
	}

	duel := &models.Duel{
		ID:              uuid.NewString(),
		Problem:         *problem,
		Player1ID:       player1ID,
		Player2ID:       &player2ID,
		Status:          models.DuelStatusWaiting,
		StartTime:       time.Now(),
		Wager:           wager,
		Submissions:     []models.DuelSubmission{},
		Player1Warnings: 0,
		Player2Warnings: 0,
	}

	created, err := s.duels.Create(duel)
	if err != nil {
		// 듀얼이 생성되지 않았으므로 에스크로를 되돌린다
		if wager > 0 {
			s.refund(player1ID, wager, "Duel wager reversal")
			s.refund(player2ID, wager, "Duel wager reversal")
		}
		return nil, fmt.Errorf("failed to create duel: %w", err)
	}

	logger.Info("Duel created",
		"duelId", created.ID,
		"player1", player1ID,
		"player2", player2ID,
		"wager", wager,
		"difficulty", difficulty,
	)

	s.broadcaster.PublishDuel(created)
	return created, nil
}

// CreateOpen 상대를 기다리는 오픈 챌린지 생성 (player2는 참가 시점에 결정)
func (s *DuelService) CreateOpen(difficulty models.Difficulty, wager int64, playerID string) (*models.Duel, error) {
	problem, err := s.problems.FindRandomByDifficulty(difficulty)
	if err != nil {
		return nil, fmt.Errorf("failed to select problem: %w", err)
	}
	if problem == nil {
		return nil, ErrNoProblemsAvailable
	}

	player, err := s.users.FindByID(playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player: %w", err)
	}
	if player == nil {
		return nil, ErrUserNotFound
	}
	if player.IsBanned {
		return nil, ErrUserBanned
	}

	if wager > 0 {
		ok, err := s.wallet.Debit(playerID, wager, models.TransactionTypeDuelWager, "Duel wager")
		if err != nil {
			return nil, fmt.Errorf("failed to debit player: %w", err)
		}
		if !ok {
			return nil, ErrInsufficientFunds
		}
	}

	duel := &models.Duel{
		ID:          uuid.NewString(),
		Problem:     *problem,
		Player1ID:   playerID,
		Player2ID:   nil,
		Status:      models.DuelStatusWaiting,
		StartTime:   time.Now(),
		Wager:       wager,
		Submissions: []models.DuelSubmission{},
	}

	created, err := s.duels.Create(duel)
	if err != nil {
		if wager > 0 {
			s.refund(playerID, wager, "Duel wager reversal")
		}
		return nil, fmt.Errorf("failed to create open duel: %w", err)
	}

	logger.Info("Open challenge created",
		"duelId", created.ID,
		"player1", playerID,
		"wager", wager,
		"difficulty", difficulty,
	)

	s.broadcaster.PublishDuel(created)
	return created, nil
}

// Join 오픈 챌린지 참가
// 판돈을 먼저 차감한 뒤 조건부 참가를 시도하고, 경쟁에서 밀리면 즉시 환불한다
func (s *DuelService) Join(duelID, playerID string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}
	if duel.Status != models.DuelStatusWaiting {
		return nil, ErrAlreadyStarted
	}
	if duel.Player1ID == playerID {
		return nil, ErrCannotJoinOwnDuel
	}

	// 사전 매칭 듀얼은 초대된 상대만 수락할 수 있다
	invited := duel.Player2ID != nil
	if invited && *duel.Player2ID != playerID {
		return nil, ErrNotAParticipant
	}

	player, err := s.users.FindByID(playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve player: %w", err)
	}
	if player == nil {
		return nil, ErrUserNotFound
	}
	if player.IsBanned {
		return nil, ErrUserBanned
	}

	// 초대된 플레이어의 판돈은 생성 시점에 이미 에스크로에 들어가 있다
	debited := false
	if duel.Wager > 0 && !invited {
		ok, err := s.wallet.Debit(playerID, duel.Wager, models.TransactionTypeDuelWager, "Duel wager")
		if err != nil {
			return nil, fmt.Errorf("failed to debit joiner: %w", err)
		}
		if !ok {
			return nil, ErrInsufficientFunds
		}
		debited = true
	}

	joined, err := s.duels.AttemptJoin(duelID, playerID)
	if err != nil {
		if debited {
			s.refund(playerID, duel.Wager, "Duel wager reversal")
		}
		return nil, fmt.Errorf("failed to join duel: %w", err)
	}
	if joined == nil {
		// 동시에 다른 참가자가 선점했거나 취소됨
		if debited {
			s.refund(playerID, duel.Wager, "Duel wager reversal")
		}
		return nil, ErrAlreadyStarted
	}

	logger.Info("Player joined duel", "duelId", duelID, "player2", playerID)

	s.broadcaster.PublishDuel(joined)
	return joined, nil
}

// Detail 듀얼 조회
func (s *DuelService) Detail(duelID string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}
	return duel, nil
}

// ListOpen 참가 대기 중인 듀얼 목록
func (s *DuelService) ListOpen() ([]*models.Duel, error) {
	return s.duels.FindByStatus(models.DuelStatusWaiting)
}

// ListActive 해당 사용자가 참가 중인 진행 중 듀얼 목록
func (s *DuelService) ListActive(userID string) ([]*models.Duel, error) {
	return s.duels.FindActiveByUser(userID)
}

// SubmitSolution 코드 제출 및 채점
// 이미 종료된 듀얼에 대한 제출은 에러가 아니라 그대로 반환 (멱등)
func (s *DuelService) SubmitSolution(ctx context.Context, duelID, playerID, userCode string) (*models.Duel, *judge.ExecuteResponse, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, nil, ErrDuelNotFound
	}
	if duel.Status == models.DuelStatusFinished {
		return duel, nil, nil
	}
	if duel.Status != models.DuelStatusInProgress {
		return nil, nil, ErrDuelNotInProgress
	}
	if !duel.IsParticipant(playerID) {
		return nil, nil, ErrNotAParticipant
	}

	// 스냅샷에 레퍼런스 솔루션이 없으면 카탈로그에서 전체 레코드 조회
	problem := duel.Problem
	if problem.Solution == nil {
		full, err := s.problems.FindByID(problem.ID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve problem: %w", err)
		}
		if full != nil {
			problem = *full
		}
	}
	if problem.Solution == nil {
		return nil, nil, ErrNoReferenceSolution
	}

	result, err := s.judgeClient.Execute(ctx, &judge.ExecuteRequest{
		UserCode:     userCode,
		SolutionCode: problem.Solution.Code,
		TestCases:    problem.TestCases,
		FunctionName: problem.FunctionName,
		Language:     problem.Solution.Language,
	})
	if err != nil {
		// 채점 호출은 멱등하지 않으므로 이 레이어에서 재시도하지 않는다
		return nil, nil, fmt.Errorf("%w: %v", ErrJudgeExecutionFailed, err)
	}

	finalStatus := result.OverallStatus
	if duel.WarningsOf(playerID) >= models.DisqualifyWarningLimit {
		finalStatus = models.SubmissionStatusDisqualified
	}

	attempts := 1
	if prev := duel.SubmissionOf(playerID); prev != nil {
		attempts = prev.Attempts + 1
	}

	submission := models.DuelSubmission{
		UserID:        playerID,
		Status:        finalStatus,
		UserCode:      userCode,
		ExecutionTime: result.ExecutionTime,
		MemoryUsage:   result.MemoryUsage,
		Attempts:      attempts,
		CodeHash:      hashCode(userCode),
		SubmittedAt:   time.Now().UnixMilli(),
	}

	// 같은 플레이어의 이전 라이브 제출은 대체됨
	submissions := make([]models.DuelSubmission, 0, 2)
	for _, sub := range duel.Submissions {
		if sub.UserID != playerID {
			submissions = append(submissions, sub)
		}
	}
	submissions = append(submissions, submission)

	if err := s.duels.UpdateSubmissions(duelID, submissions); err != nil {
		return nil, nil, fmt.Errorf("failed to record submission: %w", err)
	}
	duel.Submissions = submissions

	// Accepted면 즉시 승리 시도 (조건부 종료가 동시 제출 경쟁을 해소한다)
	if finalStatus == models.SubmissionStatusAccepted {
		latest, err := s.duels.FindByID(duelID)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to re-check duel: %w", err)
		}
		if latest != nil && latest.Status == models.DuelStatusFinished {
			// 상대가 먼저 Accepted로 끝냄
			return latest, result, nil
		}

		settled, err := s.settle(duel, &playerID, &finalStatus, &userCode)
		if err != nil {
			return nil, nil, err
		}
		if settled == nil {
			// 종료 경쟁에서 밀림: 반드시 Finished 상태를 다시 관찰해야 한다
			return s.refetchFinished(duelID, result)
		}
		return settled, result, nil
	}

	// 불합격이더라도 상대가 이미 제출했다면 비교로 결판
	if opponentID := duel.OpponentOf(playerID); opponentID != nil {
		if opponentSub := duel.SubmissionOf(*opponentID); opponentSub != nil {
			sub1 := duel.SubmissionOf(duel.Player1ID)
			sub2 := duel.SubmissionOf(*duel.Player2ID)
			winnerID, decided := s.verdictService.DecideWinner(sub1, sub2)
			if decided {
				settled, err := s.settle(duel, winnerID, nil, nil)
				if err != nil {
					return nil, nil, err
				}
				if settled == nil {
					return s.refetchFinished(duelID, result)
				}
				return settled, result, nil
			}
		}
	}

	// 상대의 제출을 기다림: 제출만 기록된 상태로 반환
	s.broadcaster.PublishDuel(duel)
	return duel, result, nil
}

// Finish 듀얼 종료 (관리자/직접 호출용)
// In Progress가 아니면 명시적 에러
func (s *DuelService) Finish(duelID string, winnerID *string, finalStatus *models.SubmissionStatus, finalCode *string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}

	settled, err := s.settle(duel, winnerID, finalStatus, finalCode)
	if err != nil {
		return nil, err
	}
	if settled == nil {
		return nil, ErrDuelNotInProgress
	}
	return settled, nil
}

// FinishDraw 무승부 종료: 양쪽 판돈 전액 환불 (수수료 없음)
// 이미 종료된 듀얼이면 그대로 반환 (멱등)
func (s *DuelService) FinishDraw(duelID string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}
	if duel.Status == models.DuelStatusFinished {
		return duel, nil
	}
	if duel.Status != models.DuelStatusInProgress {
		return nil, ErrDuelNotInProgress
	}

	settled, err := s.settle(duel, nil, nil, nil)
	if err != nil {
		return nil, err
	}
	if settled == nil {
		// 동시에 다른 경로로 종료됨
		refetched, err := s.duels.FindByID(duelID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-fetch duel: %w", err)
		}
		return refetched, nil
	}
	return settled, nil
}

// Forfeit 기권: 상대 플레이어 승리로 종료
func (s *DuelService) Forfeit(duelID, playerID string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}
	if duel.Status != models.DuelStatusInProgress {
		return nil, ErrDuelNotInProgress
	}
	if !duel.IsParticipant(playerID) {
		return nil, ErrNotAParticipant
	}

	winnerID := duel.OpponentOf(playerID)

	settled, err := s.settle(duel, winnerID, nil, nil)
	if err != nil {
		return nil, err
	}
	if settled == nil {
		refetched, err := s.duels.FindByID(duelID)
		if err != nil {
			return nil, fmt.Errorf("failed to re-fetch duel: %w", err)
		}
		return refetched, nil
	}

	logger.Info("Duel forfeited", "duelId", duelID, "forfeitedBy", playerID)
	return settled, nil
}

// Cancel 듀얼 취소: 생성자만, Waiting 상태에서만 가능
func (s *DuelService) Cancel(duelID, playerID string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}
	if duel.Player1ID != playerID {
		return nil, ErrOnlyCreatorCanCancel
	}
	if duel.Status != models.DuelStatusWaiting {
		return nil, ErrCannotCancelNotWaiting
	}

	cancelled, err := s.duels.AttemptCancel(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to cancel duel: %w", err)
	}
	if cancelled == nil {
		// 취소 직전에 누군가 참가함
		return nil, ErrCannotCancelNotWaiting
	}

	// 상태 전환이 확정된 뒤에만 환불. 사전 매칭 듀얼이면 양쪽 모두 돌려준다
	if cancelled.Wager > 0 {
		s.refund(cancelled.Player1ID, cancelled.Wager, "Duel Refund")
		if cancelled.Player2ID != nil {
			s.refund(*cancelled.Player2ID, cancelled.Wager, "Duel Refund")
		}
	}

	logger.Info("Duel cancelled", "duelId", duelID, "by", playerID)

	s.broadcaster.PublishDuel(cancelled)
	return cancelled, nil
}

// UpdateState 관리자용 상태/승자 강제 변경. 정산은 수행하지 않는다
func (s *DuelService) UpdateState(duelID string, status models.DuelStatus, winnerID *string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}

	if winnerID != nil {
		winner, err := s.users.FindByID(*winnerID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve winner: %w", err)
		}
		if winner == nil {
			return nil, ErrUserNotFound
		}
	}

	updated, err := s.duels.UpdateState(duelID, status, winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to update duel state: %w", err)
	}

	logger.Warn("Duel state overridden", "duelId", duelID, "status", status, "winnerId", winnerID)

	s.broadcaster.PublishDuel(updated)
	return updated, nil
}

// SetSummary 결과 화면용 요약 저장
func (s *DuelService) SetSummary(duelID string, finalStatus models.SubmissionStatus, finalCode string) (*models.Duel, error) {
	duel, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get duel: %w", err)
	}
	if duel == nil {
		return nil, ErrDuelNotFound
	}

	if err := s.duels.SetSummary(duelID, finalStatus, finalCode); err != nil {
		return nil, err
	}

	return s.duels.FindByID(duelID)
}

// settle 공유 정산 경로
// AttemptFinish가 성공한 호출자만 돈을 움직일 수 있다. 경쟁에서 밀리면 (nil, nil)
func (s *DuelService) settle(duel *models.Duel, winnerID *string, finalStatus *models.SubmissionStatus, finalCode *string) (*models.Duel, error) {
	finished, err := s.duels.AttemptFinish(duel.ID, winnerID, models.DuelStatusFinished)
	if err != nil {
		return nil, fmt.Errorf("failed to finish duel: %w", err)
	}
	if finished == nil {
		return nil, nil
	}

	// 에스크로 해소: 승자에게 전액 지급, 승자가 없으면 양쪽 환불
	if finished.Wager > 0 {
		if winnerID != nil {
			err := s.wallet.Credit(*winnerID, finished.Wager*2, models.TransactionTypeDuelWin, "Duel winnings")
			if err != nil {
				logger.Error("Failed to credit duel winnings",
					"duelId", finished.ID,
					"winnerId", *winnerID,
					"amount", finished.Wager*2,
					"error", err,
				)
				return nil, fmt.Errorf("failed to credit winnings: %w", err)
			}
		} else {
			s.refund(finished.Player1ID, finished.Wager, "Duel draw refund")
			if finished.Player2ID != nil {
				s.refund(*finished.Player2ID, finished.Wager, "Duel draw refund")
			}
		}
	}

	// 레이팅/전적 업데이트는 정산에 종속되지 않는 best-effort: 실패해도 돈은 되돌리지 않는다
	if winnerID != nil {
		s.updateRatings(finished, *winnerID)
	}

	if finalStatus != nil || finalCode != nil {
		status := models.SubmissionStatus("")
		if finalStatus != nil {
			status = *finalStatus
		}
		code := ""
		if finalCode != nil {
			code = *finalCode
		}
		if err := s.duels.SetSummary(finished.ID, status, code); err != nil {
			logger.Error("Failed to set duel summary", "duelId", finished.ID, "error", err)
		}
	}

	logger.Info("Duel finished",
		"duelId", finished.ID,
		"winnerId", winnerID,
		"wager", finished.Wager,
	)

	s.broadcaster.PublishDuel(finished)
	return finished, nil
}

// updateRatings 승자/패자 ELO 및 전적 갱신 (실패는 로그만)
func (s *DuelService) updateRatings(duel *models.Duel, winnerID string) {
	loserID := duel.Player1ID
	if winnerID == duel.Player1ID {
		if duel.Player2ID == nil {
			return
		}
		loserID = *duel.Player2ID
	}

	winner, err := s.users.FindByID(winnerID)
	if err != nil || winner == nil {
		logger.Error("Failed to resolve winner for rating update", "duelId", duel.ID, "winnerId", winnerID, "error", err)
		return
	}
	loser, err := s.users.FindByID(loserID)
	if err != nil || loser == nil {
		logger.Error("Failed to resolve loser for rating update", "duelId", duel.ID, "loserId", loserID, "error", err)
		return
	}

	newWinnerElo, newLoserElo := s.eloService.CalculateNewRatings(winner.Elo, loser.Elo)

	if err := s.users.UpdateDuelStats(winnerID, newWinnerElo, true); err != nil {
		logger.Error("Failed to update winner stats", "duelId", duel.ID, "winnerId", winnerID, "error", err)
	}
	if err := s.users.UpdateDuelStats(loserID, newLoserElo, false); err != nil {
		logger.Error("Failed to update loser stats", "duelId", duel.ID, "loserId", loserID, "error", err)
	}
}

// refund 보상 트랜잭션 (실패는 로그로 남기고 운영자가 수동 복구)
func (s *DuelService) refund(userID string, amount int64, description string) {
	if err := s.wallet.Credit(userID, amount, models.TransactionTypeDuelRefund, description); err != nil {
		logger.Error("Failed to refund wager",
			"userId", userID,
			"amount", amount,
			"error", err,
		)
	}
}

// refetchFinished 종료 경쟁에서 밀린 쪽이 Finished 상태를 다시 관찰
func (s *DuelService) refetchFinished(duelID string, result *judge.ExecuteResponse) (*models.Duel, *judge.ExecuteResponse, error) {
	refetched, err := s.duels.FindByID(duelID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-fetch duel: %w", err)
	}
	if refetched == nil {
		return nil, nil, ErrDuelNotFound
	}
	return refetched, result, nil
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
