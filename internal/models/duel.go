package models

import "time"

type DuelStatus string

const (
	DuelStatusWaiting    DuelStatus = "Waiting"
	DuelStatusInProgress DuelStatus = "In Progress"
	DuelStatusFinished   DuelStatus = "Finished"
	DuelStatusCancelled  DuelStatus = "Cancelled"
)

type SubmissionStatus string

const (
	SubmissionStatusAccepted          SubmissionStatus = "Accepted"
	SubmissionStatusWrongAnswer       SubmissionStatus = "Wrong Answer"
	SubmissionStatusTimeLimitExceeded SubmissionStatus = "Time Limit Exceeded"
	SubmissionStatusRuntimeError      SubmissionStatus = "Runtime Error"
	SubmissionStatusDisqualified      SubmissionStatus = "Disqualified"
)

// DisqualifyWarningLimit 이 경고 횟수 이상이면 제출이 무조건 Disqualified 처리됨
const DisqualifyWarningLimit = 3

// DuelSubmission 듀얼에 포함된 플레이어별 라이브 제출 (플레이어당 최대 1개)
type DuelSubmission struct {
	UserID        string           `json:"userId"`
	Status        SubmissionStatus `json:"status"`
	UserCode      string           `json:"userCode"`
	ExecutionTime int              `json:"executionTime"` // ms
	MemoryUsage   float64          `json:"memoryUsage"`   // MB
	Attempts      int              `json:"attempts"`
	CodeHash      string           `json:"codeHash"`
	SubmittedAt   int64            `json:"submittedAt"` // unix ms
}

type Duel struct {
	ID string `json:"id" db:"id"`

	// 생성 시점의 문제 스냅샷 (이후 문제가 수정되어도 채점은 이 스냅샷 기준)
	Problem Problem `json:"problem" db:"problem"`

	Player1ID       string  `json:"player1Id" db:"player1_id"`
	Player1Warnings int     `json:"player1Warnings" db:"player1_warnings"`
	Player2ID       *string `json:"player2Id,omitempty" db:"player2_id"` // nil이면 오픈 챌린지
	Player2Warnings int     `json:"player2Warnings" db:"player2_warnings"`

	Status    DuelStatus `json:"status" db:"status"`
	StartTime time.Time  `json:"startTime" db:"start_time"`
	WinnerID  *string    `json:"winnerId,omitempty" db:"winner_id"`
	Wager     int64      `json:"wager" db:"wager"`

	Submissions []DuelSubmission `json:"submissions" db:"submissions"`

	FinalOverallStatus *SubmissionStatus `json:"finalOverallStatus,omitempty" db:"final_overall_status"`
	FinalUserCode      *string           `json:"finalUserCode,omitempty" db:"final_user_code"`

	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// IsParticipant 해당 사용자가 듀얼 참가자인지 확인
func (d *Duel) IsParticipant(userID string) bool {
	if d.Player1ID == userID {
		return true
	}
	return d.Player2ID != nil && *d.Player2ID == userID
}

// OpponentOf 상대 플레이어 ID 반환 (상대가 없으면 nil)
func (d *Duel) OpponentOf(userID string) *string {
	if d.Player1ID == userID {
		return d.Player2ID
	}
	if d.Player2ID != nil && *d.Player2ID == userID {
		p1 := d.Player1ID
		return &p1
	}
	return nil
}

// SubmissionOf 해당 플레이어의 라이브 제출 반환 (없으면 nil)
func (d *Duel) SubmissionOf(userID string) *DuelSubmission {
	for i := range d.Submissions {
		if d.Submissions[i].UserID == userID {
			return &d.Submissions[i]
		}
	}
	return nil
}

// WarningsOf 해당 플레이어의 누적 경고 횟수
func (d *Duel) WarningsOf(userID string) int {
	if d.Player1ID == userID {
		return d.Player1Warnings
	}
	if d.Player2ID != nil && *d.Player2ID == userID {
		return d.Player2Warnings
	}
	return 0
}
