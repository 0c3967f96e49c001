package service

import (
	"testing"

	"github.com/vaishnav-mv/LudusCode-Backend/internal/models"
)

func sub(userID string, status models.SubmissionStatus, execMs int, memMB float64, attempts int, submittedAt int64) *models.DuelSubmission {
	return &models.DuelSubmission{
		UserID:        userID,
		Status:        status,
		ExecutionTime: execMs,
		MemoryUsage:   memMB,
		Attempts:      attempts,
		SubmittedAt:   submittedAt,
	}
}

func TestVerdictService_DecideWinner(t *testing.T) {
	verdict := NewVerdictService()

	tests := []struct {
		name        string
		sub1        *models.DuelSubmission
		sub2        *models.DuelSubmission
		wantWinner  string // "" = 무승부
		wantDecided bool
	}{
		{
			name:        "Missing submission cannot decide",
			sub1:        sub("p1", models.SubmissionStatusAccepted, 100, 5, 1, 1000),
			sub2:        nil,
			wantDecided: false,
		},
		{
			name:        "Only player1 accepted",
			sub1:        sub("p1", models.SubmissionStatusAccepted, 500, 50, 9, 9000),
			sub2:        sub("p2", models.SubmissionStatusWrongAnswer, 10, 1, 1, 1000),
			wantWinner:  "p1",
			wantDecided: true,
		},
		{
			name:        "Only player2 accepted",
			sub1:        sub("p1", models.SubmissionStatusTimeLimitExceeded, 10, 1, 1, 1000),
			sub2:        sub("p2", models.SubmissionStatusAccepted, 500, 50, 9, 9000),
			wantWinner:  "p2",
			wantDecided: true,
		},
		{
			name:        "Neither accepted is a draw",
			sub1:        sub("p1", models.SubmissionStatusWrongAnswer, 100, 5, 1, 1000),
			sub2:        sub("p2", models.SubmissionStatusRuntimeError, 100, 5, 1, 1000),
			wantWinner:  "",
			wantDecided: true,
		},
		{
			name:        "Faster execution wins",
			sub1:        sub("p1", models.SubmissionStatusAccepted, 80, 10, 5, 9000),
			sub2:        sub("p2", models.SubmissionStatusAccepted, 100, 1, 1, 1000),
			wantWinner:  "p1",
			wantDecided: true,
		},
		{
			name:        "Equal time, lower memory wins",
			sub1:        sub("p1", models.SubmissionStatusAccepted, 100, 5, 1, 1000),
			sub2:        sub("p2", models.SubmissionStatusAccepted, 100, 3, 9, 9000),
			wantWinner:  "p2",
			wantDecided: true,
		},
		{
			name:        "Equal time and memory, fewer attempts wins",
			sub1:        sub("p1", models.SubmissionStatusAccepted, 100, 5, 1, 9000),
			sub2:        sub("p2", models.SubmissionStatusAccepted, 100, 5, 2, 1000),
			wantWinner:  "p1",
			wantDecided: true,
		},
		{
			name:        "All equal, earlier submission wins",
			sub1:        sub("p1", models.SubmissionStatusAccepted, 100, 5, 1, 5000),
			sub2:        sub("p2", models.SubmissionStatusAccepted, 100, 5, 1, 4000),
			wantWinner:  "p2",
			wantDecided: true,
		},
		{
			name:        "Perfect tie favors player1",
			sub1:        sub("p1", models.SubmissionStatusAccepted, 100, 5, 1, 5000),
			sub2:        sub("p2", models.SubmissionStatusAccepted, 100, 5, 1, 5000),
			wantWinner:  "p1",
			wantDecided: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			winnerID, decided := verdict.DecideWinner(tt.sub1, tt.sub2)

			if decided != tt.wantDecided {
				t.Fatalf("decided = %v, want %v", decided, tt.wantDecided)
			}
			if !decided {
				return
			}

			got := ""
			if winnerID != nil {
				got = *winnerID
			}
			if got != tt.wantWinner {
				t.Errorf("winner = %q, want %q", got, tt.wantWinner)
			}
		})
	}
}

func TestVerdictService_Deterministic(t *testing.T) {
	verdict := NewVerdictService()

	sub1 := sub("p1", models.SubmissionStatusAccepted, 100, 5, 2, 3000)
	sub2 := sub("p2", models.SubmissionStatusAccepted, 100, 5, 1, 4000)

	first, _ := verdict.DecideWinner(sub1, sub2)
	for i := 0; i < 100; i++ {
		again, _ := verdict.DecideWinner(sub1, sub2)
		if *first != *again {
			t.Fatalf("verdict changed between runs: %q vs %q", *first, *again)
		}
	}
}
