package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
)

func TestDuelService_CreateEscrowsBothWagers(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	require.NotNil(t, duel)

	assert.Equal(t, models.DuelStatusWaiting, duel.Status)
	assert.Equal(t, "p1", duel.Player1ID)
	require.NotNil(t, duel.Player2ID)
	assert.Equal(t, "p2", *duel.Player2ID)

	// 양쪽 판돈이 에스크로로 이동
	assert.Equal(t, int64(400), fx.ledger.balance("p1"))
	assert.Equal(t, int64(400), fx.ledger.balance("p2"))
}

func TestDuelService_CreateRefundsWhenOpponentBroke(t *testing.T) {
	fx := newEngineFixture(t)
	fx.ledger.balances["p2"] = 50

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.ErrorIs(t, err, ErrInsufficientFunds)
	assert.Nil(t, duel)

	// 먼저 차감된 p1의 판돈은 되돌아와야 한다
	assert.Equal(t, int64(500), fx.ledger.balance("p1"))
	assert.Equal(t, int64(50), fx.ledger.balance("p2"))
}

func TestDuelService_CannotJoinOwnDuel(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.CreateOpen(models.DifficultyEasy, 100, "p1")
	require.NoError(t, err)

	_, err = fx.svc.Join(duel.ID, "p1")
	require.ErrorIs(t, err, ErrCannotJoinOwnDuel)
}

func TestDuelService_JoinRace(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.CreateOpen(models.DifficultyEasy, 100, "p1")
	require.NoError(t, err)
	assert.Equal(t, int64(400), fx.ledger.balance("p1"))

	// 두 명이 동시에 참가 시도: 정확히 한 명만 성공해야 한다
	var wg sync.WaitGroup
	errs := make(map[string]error, 2)
	var mu sync.Mutex
	for _, joiner := range []string{"p2", "p3"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := fx.svc.Join(duel.ID, id)
			mu.Lock()
			errs[id] = err
			mu.Unlock()
		}(joiner)
	}
	wg.Wait()

	var winners, losers int
	for _, err := range errs {
		if err == nil {
			winners++
		} else {
			require.ErrorIs(t, err, ErrAlreadyStarted)
			losers++
		}
	}
	assert.Equal(t, 1, winners)
	assert.Equal(t, 1, losers)

	// 진 쪽은 전액 환불, 이긴 쪽만 에스크로에 묶임
	joined, err := fx.duels.FindByID(duel.ID)
	require.NoError(t, err)
	require.NotNil(t, joined.Player2ID)
	winner := *joined.Player2ID
	loser := "p2"
	if winner == "p2" {
		loser = "p3"
	}
	assert.Equal(t, int64(400), fx.ledger.balance(winner))
	assert.Equal(t, int64(500), fx.ledger.balance(loser))
	assert.Equal(t, models.DuelStatusInProgress, joined.Status)
}

func TestDuelService_InvitedPlayerJoinsWithoutSecondDebit(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)

	// 제3자는 사전 매칭 듀얼에 끼어들 수 없다
	_, err = fx.svc.Join(duel.ID, "p3")
	require.ErrorIs(t, err, ErrNotAParticipant)

	joined, err := fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusInProgress, joined.Status)

	// 초대된 플레이어는 생성 시점에 이미 차감됨: 이중 차감 금지
	assert.Equal(t, int64(400), fx.ledger.balance("p2"))
}

func TestDuelService_AcceptedSubmissionWinsAndSettles(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	finished, result, err := fx.svc.SubmitSolution(context.Background(), duel.ID, "p1", "function twoSum() { return [0,1] }")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, models.SubmissionStatusAccepted, result.OverallStatus)

	require.NotNil(t, finished)
	assert.Equal(t, models.DuelStatusFinished, finished.Status)
	require.NotNil(t, finished.WinnerID)
	assert.Equal(t, "p1", *finished.WinnerID)

	// 승자가 판돈 전액(2x)을 가져간다
	assert.Equal(t, int64(600), fx.ledger.balance("p1"))
	assert.Equal(t, int64(400), fx.ledger.balance("p2"))

	// 레이팅/전적 업데이트 (동일 레이팅, K=32 → ±16)
	winner, _ := fx.users.FindByID("p1")
	loser, _ := fx.users.FindByID("p2")
	assert.Equal(t, 1216, winner.Elo)
	assert.Equal(t, 1, winner.DuelsWon)
	assert.Equal(t, 1184, loser.Elo)
	assert.Equal(t, 1, loser.DuelsLost)
}

func TestDuelService_SubmitAfterFinishIsIdempotent(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	_, _, err = fx.svc.SubmitSolution(context.Background(), duel.ID, "p1", "winning code")
	require.NoError(t, err)

	// 종료 후 상대의 제출은 에러가 아니라 종료된 듀얼 그대로 반환
	late, result, err := fx.svc.SubmitSolution(context.Background(), duel.ID, "p2", "late code")
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.Equal(t, models.DuelStatusFinished, late.Status)

	// 돈이 다시 움직이면 안 된다
	assert.Equal(t, int64(600), fx.ledger.balance("p1"))
	assert.Equal(t, int64(400), fx.ledger.balance("p2"))
}

func TestDuelService_BothRejectedEndsInDrawWithRefunds(t *testing.T) {
	fx := newEngineFixture(t)
	fx.judge.set(models.SubmissionStatusWrongAnswer, 50, 2)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	// 첫 번째 불합격: 상대가 아직 제출하지 않았으므로 듀얼은 계속 진행
	inProgress, _, err := fx.svc.SubmitSolution(context.Background(), duel.ID, "p1", "bad code 1")
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusInProgress, inProgress.Status)

	// 두 번째 불합격: 비교 판정 → 무승부 종료
	finished, _, err := fx.svc.SubmitSolution(context.Background(), duel.ID, "p2", "bad code 2")
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusFinished, finished.Status)
	assert.Nil(t, finished.WinnerID)

	// 무승부: 양쪽 판돈 전액 환불
	assert.Equal(t, int64(500), fx.ledger.balance("p1"))
	assert.Equal(t, int64(500), fx.ledger.balance("p2"))
}

func TestDuelService_WarningsForceDisqualification(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	fx.duels.setWarnings(duel.ID, models.DisqualifyWarningLimit, 0)

	// 채점 결과가 Accepted여도 경고 한도를 넘긴 플레이어는 실격
	updated, _, err := fx.svc.SubmitSolution(context.Background(), duel.ID, "p1", "copied code")
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusInProgress, updated.Status)

	sub := updated.SubmissionOf("p1")
	require.NotNil(t, sub)
	assert.Equal(t, models.SubmissionStatusDisqualified, sub.Status)
}

func TestDuelService_SingleWinnerRace(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	// 둘 다 동시에 Accepted 제출: 정확히 한 번만 정산되어야 한다
	var wg sync.WaitGroup
	for _, player := range []string{"p1", "p2"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, _, err := fx.svc.SubmitSolution(context.Background(), duel.ID, id, "code by "+id)
			assert.NoError(t, err)
		}(player)
	}
	wg.Wait()

	finished, err := fx.duels.FindByID(duel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusFinished, finished.Status)
	require.NotNil(t, finished.WinnerID)

	// 총액 보존: 에스크로 200이 정확히 한 명에게만 지급됨
	p1 := fx.ledger.balance("p1")
	p2 := fx.ledger.balance("p2")
	assert.Equal(t, int64(1000), p1+p2)
	if *finished.WinnerID == "p1" {
		assert.Equal(t, int64(600), p1)
	} else {
		assert.Equal(t, int64(600), p2)
	}
}

func TestDuelService_ForfeitAwardsOpponent(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	finished, err := fx.svc.Forfeit(duel.ID, "p2")
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusFinished, finished.Status)
	require.NotNil(t, finished.WinnerID)
	assert.Equal(t, "p1", *finished.WinnerID)

	assert.Equal(t, int64(600), fx.ledger.balance("p1"))
	assert.Equal(t, int64(400), fx.ledger.balance("p2"))
}

func TestDuelService_CancelRefundsEscrow(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)

	// 생성자가 아니면 취소 불가
	_, err = fx.svc.Cancel(duel.ID, "p2")
	require.ErrorIs(t, err, ErrOnlyCreatorCanCancel)

	cancelled, err := fx.svc.Cancel(duel.ID, "p1")
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusCancelled, cancelled.Status)

	// 양쪽 에스크로 모두 환불
	assert.Equal(t, int64(500), fx.ledger.balance("p1"))
	assert.Equal(t, int64(500), fx.ledger.balance("p2"))

	// 취소된 듀얼은 다시 취소할 수 없다
	_, err = fx.svc.Cancel(duel.ID, "p1")
	require.ErrorIs(t, err, ErrCannotCancelNotWaiting)
}

func TestDuelService_FinishDrawRefundsBoth(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 100, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	finished, err := fx.svc.FinishDraw(duel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusFinished, finished.Status)
	assert.Nil(t, finished.WinnerID)

	assert.Equal(t, int64(500), fx.ledger.balance("p1"))
	assert.Equal(t, int64(500), fx.ledger.balance("p2"))

	// 이미 종료된 듀얼에 대한 호출은 멱등
	again, err := fx.svc.FinishDraw(duel.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusFinished, again.Status)
	assert.Equal(t, int64(500), fx.ledger.balance("p1"))
	assert.Equal(t, int64(500), fx.ledger.balance("p2"))
}

func TestDuelService_FreeDuelMovesNoMoney(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 0, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	finished, _, err := fx.svc.SubmitSolution(context.Background(), duel.ID, "p1", "free duel code")
	require.NoError(t, err)
	assert.Equal(t, models.DuelStatusFinished, finished.Status)

	assert.Equal(t, int64(500), fx.ledger.balance("p1"))
	assert.Equal(t, int64(500), fx.ledger.balance("p2"))
}

func TestDuelService_SubmitRequiresParticipant(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.Create(models.DifficultyEasy, 0, "p1", "p2")
	require.NoError(t, err)
	_, err = fx.svc.Join(duel.ID, "p2")
	require.NoError(t, err)

	_, _, err = fx.svc.SubmitSolution(context.Background(), duel.ID, "p3", "intruder code")
	require.ErrorIs(t, err, ErrNotAParticipant)
}

func TestDuelService_SubmitBeforeStartRejected(t *testing.T) {
	fx := newEngineFixture(t)

	duel, err := fx.svc.CreateOpen(models.DifficultyEasy, 0, "p1")
	require.NoError(t, err)

	_, _, err = fx.svc.SubmitSolution(context.Background(), duel.ID, "p1", "too early")
	require.ErrorIs(t, err, ErrDuelNotInProgress)
}
