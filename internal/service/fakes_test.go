package service

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/judge"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/logger"
)

func TestMain(m *testing.M) {
	logger.Init("test", "error")
	os.Exit(m.Run())
}

// memDuelStore 조건부 전환 의미론을 그대로 재현하는 인메모리 듀얼 저장소
type memDuelStore struct {
	mu    sync.Mutex
	duels map[string]*models.Duel
}

func newMemDuelStore() *memDuelStore {
	return &memDuelStore{duels: make(map[string]*models.Duel)}
}

func cloneDuel(d *models.Duel) *models.Duel {
	cp := *d
	cp.Submissions = append([]models.DuelSubmission(nil), d.Submissions...)
	if d.Player2ID != nil {
		p2 := *d.Player2ID
		cp.Player2ID = &p2
	}
	if d.WinnerID != nil {
		w := *d.WinnerID
		cp.WinnerID = &w
	}
	return &cp
}

func (s *memDuelStore) Create(duel *models.Duel) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duels[duel.ID] = cloneDuel(duel)
	return cloneDuel(duel), nil
}

func (s *memDuelStore) FindByID(id string) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.duels[id]
	if !ok {
		return nil, nil
	}
	return cloneDuel(d), nil
}

func (s *memDuelStore) FindByStatus(status models.DuelStatus) ([]*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Duel
	for _, d := range s.duels {
		if d.Status == status {
			out = append(out, cloneDuel(d))
		}
	}
	return out, nil
}

func (s *memDuelStore) FindActiveByUser(userID string) ([]*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Duel
	for _, d := range s.duels {
		if d.Status == models.DuelStatusInProgress && d.IsParticipant(userID) {
			out = append(out, cloneDuel(d))
		}
	}
	return out, nil
}

func (s *memDuelStore) FindInProgressBefore(before time.Time) ([]*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Duel
	for _, d := range s.duels {
		if d.Status == models.DuelStatusInProgress && d.StartTime.Before(before) {
			out = append(out, cloneDuel(d))
		}
	}
	return out, nil
}

func (s *memDuelStore) AttemptJoin(duelID, player2ID string) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.duels[duelID]
	if !ok || d.Status != models.DuelStatusWaiting {
		return nil, nil
	}
	p2 := player2ID
	d.Player2ID = &p2
	d.Status = models.DuelStatusInProgress
	d.StartTime = time.Now()
	return cloneDuel(d), nil
}

func (s *memDuelStore) AttemptFinish(duelID string, winnerID *string, finalStatus models.DuelStatus) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.duels[duelID]
	if !ok || d.Status != models.DuelStatusInProgress {
		return nil, nil
	}
	d.Status = finalStatus
	if winnerID != nil {
		w := *winnerID
		d.WinnerID = &w
	} else {
		d.WinnerID = nil
	}
	return cloneDuel(d), nil
}

func (s *memDuelStore) AttemptCancel(duelID string) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.duels[duelID]
	if !ok || d.Status != models.DuelStatusWaiting {
		return nil, nil
	}
	d.Status = models.DuelStatusCancelled
	return cloneDuel(d), nil
}

func (s *memDuelStore) UpdateSubmissions(duelID string, submissions []models.DuelSubmission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.duels[duelID]; ok {
		d.Submissions = append([]models.DuelSubmission(nil), submissions...)
	}
	return nil
}

func (s *memDuelStore) SetSummary(duelID string, finalStatus models.SubmissionStatus, finalCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.duels[duelID]; ok {
		d.FinalOverallStatus = &finalStatus
		d.FinalUserCode = &finalCode
	}
	return nil
}

func (s *memDuelStore) UpdateState(duelID string, status models.DuelStatus, winnerID *string) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.duels[duelID]
	if !ok {
		return nil, nil
	}
	d.Status = status
	if winnerID != nil {
		w := *winnerID
		d.WinnerID = &w
	}
	return cloneDuel(d), nil
}

// setWarnings 테스트용 직접 조작
func (s *memDuelStore) setWarnings(duelID string, player1Warnings, player2Warnings int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.duels[duelID]; ok {
		d.Player1Warnings = player1Warnings
		d.Player2Warnings = player2Warnings
	}
}

type memUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: make(map[string]*models.User)}
}

func (s *memUserStore) add(user *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *user
	s.users[user.ID] = &cp
}

func (s *memUserStore) FindByID(id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *memUserStore) UpdateDuelStats(id string, newElo int, won bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.Elo = newElo
		if won {
			u.DuelsWon++
		} else {
			u.DuelsLost++
		}
	}
	return nil
}

type memProblemStore struct {
	problems []*models.Problem
}

func (s *memProblemStore) FindByID(id string) (*models.Problem, error) {
	for _, p := range s.problems {
		if p.ID == id {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *memProblemStore) FindRandomByDifficulty(difficulty models.Difficulty) (*models.Problem, error) {
	for _, p := range s.problems {
		if p.Difficulty == difficulty {
			cp := *p
			return &cp, nil
		}
	}
	if len(s.problems) > 0 {
		cp := *s.problems[0]
		return &cp, nil
	}
	return nil, nil
}

type memLedger struct {
	mu       sync.Mutex
	balances map[string]int64
}

func newMemLedger() *memLedger {
	return &memLedger{balances: make(map[string]int64)}
}

func (l *memLedger) Debit(userID string, amount int64, txType models.TransactionType, description string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.balances[userID] < amount {
		return false, nil
	}
	l.balances[userID] -= amount
	return true, nil
}

func (l *memLedger) Credit(userID string, amount int64, txType models.TransactionType, description string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[userID] += amount
	return nil
}

func (l *memLedger) Balance(userID string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[userID], nil
}

func (l *memLedger) balance(userID string) int64 {
	b, _ := l.Balance(userID)
	return b
}

type stubJudge struct {
	mu     sync.Mutex
	status models.SubmissionStatus
	execMs int
	memMB  float64
	err    error
}

func (j *stubJudge) set(status models.SubmissionStatus, execMs int, memMB float64) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.status = status
	j.execMs = execMs
	j.memMB = memMB
}

func (j *stubJudge) Execute(ctx context.Context, req *judge.ExecuteRequest) (*judge.ExecuteResponse, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.err != nil {
		return nil, j.err
	}
	return &judge.ExecuteResponse{
		OverallStatus: j.status,
		ExecutionTime: j.execMs,
		MemoryUsage:   j.memMB,
	}, nil
}

type countBroadcaster struct {
	mu    sync.Mutex
	count int
}

func (b *countBroadcaster) PublishDuel(duel *models.Duel) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.count++
}

type engineFixture struct {
	duels  *memDuelStore
	users  *memUserStore
	ledger *memLedger
	judge  *stubJudge
	bc     *countBroadcaster
	svc    *DuelService
}

func newEngineFixture(t *testing.T) *engineFixture {
	t.Helper()

	users := newMemUserStore()
	for _, id := range []string{"p1", "p2", "p3"} {
		users.add(&models.User{ID: id, Username: id, Elo: models.DefaultElo})
	}

	ledger := newMemLedger()
	ledger.balances["p1"] = 500
	ledger.balances["p2"] = 500
	ledger.balances["p3"] = 500

	problems := &memProblemStore{problems: []*models.Problem{
		{
			ID:         "prob-1",
			Title:      "Two Sum",
			Difficulty: models.DifficultyEasy,
			Solution:   &models.Solution{Language: "javascript", Code: "function twoSum() {}"},
			TestCases:  []models.TestCase{{Input: "[2,7,11,15], 9", Output: "[0,1]"}},
		},
	}}

	duels := newMemDuelStore()
	judgeStub := &stubJudge{status: models.SubmissionStatusAccepted, execMs: 100, memMB: 5}
	bc := &countBroadcaster{}

	svc := NewDuelService(
		duels,
		problems,
		users,
		ledger,
		judgeStub,
		NewELOService(),
		NewVerdictService(),
		bc,
	)

	return &engineFixture{
		duels:  duels,
		users:  users,
		ledger: ledger,
		judge:  judgeStub,
		bc:     bc,
		svc:    svc,
	}
}
