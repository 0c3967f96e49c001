package service

import "github.com/vaishnav-mv/LudusCode-Backend/internal/models"

// VerdictService 두 제출을 비교해 승자를 결정하는 순수 로직
// 타이브레이크 순서: Accepted 여부 → 실행 시간 → 메모리 사용량 → 시도 횟수 → 제출 시각
type VerdictService struct{}

func NewVerdictService() *VerdictService {
	return &VerdictService{}
}

// DecideWinner 양쪽 제출이 모두 존재할 때 승자를 결정
// 반환: (승자 userID, 승부 결정 여부). 둘 다 불합격이면 (nil, true) — 무승부로 종료
// 한쪽이라도 제출이 없으면 (nil, false) — 아직 결정할 수 없음
func (s *VerdictService) DecideWinner(sub1, sub2 *models.DuelSubmission) (*string, bool) {
	if sub1 == nil || sub2 == nil {
		return nil, false
	}

	accepted1 := sub1.Status == models.SubmissionStatusAccepted
	accepted2 := sub2.Status == models.SubmissionStatusAccepted

	// 한쪽만 Accepted면 그쪽이 승리
	if accepted1 != accepted2 {
		if accepted1 {
			return &sub1.UserID, true
		}
		return &sub2.UserID, true
	}

	// 둘 다 불합격이면 무승부
	if !accepted1 && !accepted2 {
		return nil, true
	}

	// 둘 다 Accepted: 고정된 타이브레이크 순서 적용
	if sub1.ExecutionTime != sub2.ExecutionTime {
		return pickLower(sub1, sub2, float64(sub1.ExecutionTime), float64(sub2.ExecutionTime)), true
	}
	if sub1.MemoryUsage != sub2.MemoryUsage {
		return pickLower(sub1, sub2, sub1.MemoryUsage, sub2.MemoryUsage), true
	}
	if sub1.Attempts != sub2.Attempts {
		return pickLower(sub1, sub2, float64(sub1.Attempts), float64(sub2.Attempts)), true
	}

	// 전부 동률이면 먼저 제출한 쪽이 승리
	return pickLower(sub1, sub2, float64(sub1.SubmittedAt), float64(sub2.SubmittedAt)), true
}

func pickLower(sub1, sub2 *models.DuelSubmission, v1, v2 float64) *string {
	if v1 <= v2 {
		return &sub1.UserID
	}
	return &sub2.UserID
}
