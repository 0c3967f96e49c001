package service

import (
	"math"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
)

// ELOService ELO 레이팅 계산 서비스
type ELOService struct {
	kFactor float64 // K-factor: 레이팅 변동 폭
}

// NewELOService ELO 서비스 생성
func NewELOService() *ELOService {
	return &ELOService{
		kFactor: 32,
	}
}

// CalculateNewRatings 듀얼 결과에 따른 새로운 ELO 레이팅 계산
// 레이팅이 0이면 기본값(1200)으로 취급
func (s *ELOService) CalculateNewRatings(winnerElo, loserElo int) (newWinnerElo, newLoserElo int) {
	w := normalizeElo(winnerElo)
	l := normalizeElo(loserElo)

	// 기대 승률 계산
	expectedWinner := s.expectedScore(float64(w), float64(l))
	expectedLoser := s.expectedScore(float64(l), float64(w))

	// 새 레이팅 계산 (승자 actual=1, 패자 actual=0)
	newWinnerElo = int(math.Round(float64(w) + s.kFactor*(1.0-expectedWinner)))
	newLoserElo = int(math.Round(float64(l) + s.kFactor*(0.0-expectedLoser)))

	return
}

// expectedScore ELO에 기반한 기대 승률 계산
func (s *ELOService) expectedScore(ratingA, ratingB float64) float64 {
	return 1.0 / (1.0 + math.Pow(10, (ratingB-ratingA)/400.0))
}

func normalizeElo(elo int) int {
	if elo <= 0 {
		return models.DefaultElo
	}
	return elo
}
