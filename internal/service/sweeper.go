package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vaishnav-mv/LudusCode-Backend/pkg/distributed"
	"github.com/vaishnav-mv/LudusCode-Backend/pkg/logger"
)

const sweepLockKey = "lock:duel-sweep"

// DuelSweeper 제한 시간을 넘긴 진행 중 듀얼을 무승부로 정리하는 백그라운드 루프
// 여러 인스턴스가 동시에 돌 수 있으므로 Redis 분산 락으로 한 인스턴스만 스윕한다
type DuelSweeper struct {
	duels       DuelStore
	duelService *DuelService
	lockManager *distributed.RedisLockManager
	maxDuration time.Duration
	interval    time.Duration
	stopChan    chan struct{}
	wg          sync.WaitGroup
	running     bool
	mu          sync.Mutex
}

func NewDuelSweeper(
	duels DuelStore,
	duelService *DuelService,
	lockManager *distributed.RedisLockManager,
	maxDuration time.Duration,
	interval time.Duration,
) *DuelSweeper {
	return &DuelSweeper{
		duels:       duels,
		duelService: duelService,
		lockManager: lockManager,
		maxDuration: maxDuration,
		interval:    interval,
		stopChan:    make(chan struct{}),
	}
}

// Start 스위퍼 시작
func (s *DuelSweeper) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.mu.Unlock()

	logger.Info("Starting DuelSweeper", "interval", s.interval, "maxDuration", s.maxDuration)

	s.wg.Add(1)
	go s.sweepLoop()
}

// Stop 스위퍼 중지
func (s *DuelSweeper) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	logger.Info("Stopping DuelSweeper")
	close(s.stopChan)
	s.wg.Wait()
	logger.Info("DuelSweeper stopped")
}

// sweepLoop 주기적 스윕 실행
func (s *DuelSweeper) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runSweep()
		case <-s.stopChan:
			return
		}
	}
}

// runSweep 만료된 듀얼들을 무승부로 종료
func (s *DuelSweeper) runSweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	lock, err := s.lockManager.AcquireLock(ctx, sweepLockKey, uuid.NewString(), s.interval)
	if err != nil {
		if err != distributed.ErrLockNotAcquired {
			logger.Error("Failed to acquire sweep lock", "error", err)
		}
		// 다른 인스턴스가 스윕 중
		return
	}
	defer func() {
		if err := lock.Release(ctx); err != nil {
			logger.Warn("Failed to release sweep lock", "error", err)
		}
	}()

	cutoff := time.Now().Add(-s.maxDuration)
	expired, err := s.duels.FindInProgressBefore(cutoff)
	if err != nil {
		logger.Error("Failed to find expired duels", "error", err)
		return
	}

	for _, duel := range expired {
		// FinishDraw는 멱등: 동시에 다른 경로로 끝나도 안전하다
		if _, err := s.duelService.FinishDraw(duel.ID); err != nil {
			logger.Error("Failed to sweep expired duel", "duelId", duel.ID, "error", err)
			continue
		}
		logger.Info("Expired duel finished as draw", "duelId", duel.ID, "startTime", duel.StartTime)
	}
}
