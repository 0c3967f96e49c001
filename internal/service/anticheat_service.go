package service

import (
	"time"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
)

// CollusionWindow 제출 시각이 이 범위 안이면서 코드 해시가 같으면 의심 플래그
const CollusionWindow = 120 * time.Second

// AntiCheatService 담합/복붙 의심 제출 탐지 (순수 함수)
// 리포팅 용도로만 쓰이며 듀얼 결과에는 관여하지 않는다
type AntiCheatService struct {
	window time.Duration
}

func NewAntiCheatService() *AntiCheatService {
	return &AntiCheatService{window: CollusionWindow}
}

// IsSuspect 두 제출의 코드 해시가 같고 제출 시각 차가 window 이내면 true
func (s *AntiCheatService) IsSuspect(sub1, sub2 *models.DuelSubmission) bool {
	if sub1 == nil || sub2 == nil {
		return false
	}
	if sub1.CodeHash == "" || sub1.CodeHash != sub2.CodeHash {
		return false
	}

	delta := sub1.SubmittedAt - sub2.SubmittedAt
	if delta < 0 {
		delta = -delta
	}
	return delta <= s.window.Milliseconds()
}

// CollusionReport 수동 검토용 의심 사례 리포트
type CollusionReport struct {
	DuelID      string `json:"duelId"`
	Player1ID   string `json:"player1Id"`
	Player2ID   string `json:"player2Id"`
	CodeHash    string `json:"codeHash"`
	DeltaMillis int64  `json:"deltaMillis"`
}

// ScanDuel 듀얼의 두 제출을 검사해 의심 사례 리포트 반환 (의심 없으면 nil)
func (s *AntiCheatService) ScanDuel(duel *models.Duel) *CollusionReport {
	if duel == nil || duel.Player2ID == nil {
		return nil
	}

	sub1 := duel.SubmissionOf(duel.Player1ID)
	sub2 := duel.SubmissionOf(*duel.Player2ID)
	if !s.IsSuspect(sub1, sub2) {
		return nil
	}

	delta := sub1.SubmittedAt - sub2.SubmittedAt
	if delta < 0 {
		delta = -delta
	}

	return &CollusionReport{
		DuelID:      duel.ID,
		Player1ID:   duel.Player1ID,
		Player2ID:   *duel.Player2ID,
		CodeHash:    sub1.CodeHash,
		DeltaMillis: delta,
	}
}
