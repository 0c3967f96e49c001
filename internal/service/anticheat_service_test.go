package service

import (
	"testing"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
)

func hashedSub(userID, codeHash string, submittedAt int64) models.DuelSubmission {
	return models.DuelSubmission{
		UserID:      userID,
		Status:      models.SubmissionStatusAccepted,
		CodeHash:    codeHash,
		SubmittedAt: submittedAt,
	}
}

func TestAntiCheatService_IsSuspect(t *testing.T) {
	ac := NewAntiCheatService()
	windowMs := CollusionWindow.Milliseconds()

	tests := []struct {
		name string
		sub1 *models.DuelSubmission
		sub2 *models.DuelSubmission
		want bool
	}{
		{
			name: "Same hash within window",
			sub1: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000},
			sub2: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000 + windowMs/2},
			want: true,
		},
		{
			name: "Same hash outside window",
			sub1: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000},
			sub2: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000 + windowMs + 1},
			want: false,
		},
		{
			name: "Different hashes",
			sub1: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000},
			sub2: &models.DuelSubmission{CodeHash: "def", SubmittedAt: 1000},
			want: false,
		},
		{
			name: "Empty hashes never match",
			sub1: &models.DuelSubmission{CodeHash: "", SubmittedAt: 1000},
			sub2: &models.DuelSubmission{CodeHash: "", SubmittedAt: 1000},
			want: false,
		},
		{
			name: "Missing submission",
			sub1: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000},
			sub2: nil,
			want: false,
		},
		{
			name: "Order does not matter",
			sub1: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000 + windowMs/2},
			sub2: &models.DuelSubmission{CodeHash: "abc", SubmittedAt: 1000},
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ac.IsSuspect(tt.sub1, tt.sub2); got != tt.want {
				t.Errorf("IsSuspect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAntiCheatService_ScanDuel(t *testing.T) {
	ac := NewAntiCheatService()
	p2 := "p2"

	duel := &models.Duel{
		ID:        "duel-1",
		Player1ID: "p1",
		Player2ID: &p2,
		Submissions: []models.DuelSubmission{
			hashedSub("p1", "samehash", 1000),
			hashedSub("p2", "samehash", 2000),
		},
	}

	report := ac.ScanDuel(duel)
	if report == nil {
		t.Fatal("expected a collusion report")
	}
	if report.DuelID != "duel-1" || report.Player1ID != "p1" || report.Player2ID != "p2" {
		t.Errorf("unexpected report identity: %+v", report)
	}
	if report.DeltaMillis != 1000 {
		t.Errorf("DeltaMillis = %d, want 1000", report.DeltaMillis)
	}

	// 한쪽만 제출한 듀얼은 의심 없음
	duel.Submissions = duel.Submissions[:1]
	if ac.ScanDuel(duel) != nil {
		t.Error("expected no report with a single submission")
	}

	// 오픈 챌린지(상대 없음)는 스캔 대상이 아님
	if ac.ScanDuel(&models.Duel{ID: "open", Player1ID: "p1"}) != nil {
		t.Error("expected no report without player2")
	}
}
