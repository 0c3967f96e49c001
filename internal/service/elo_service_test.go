package service

import (
	"testing"
)

func TestELOService_CalculateNewRatings(t *testing.T) {
	eloService := NewELOService()

	tests := []struct {
		name          string
		winnerElo     int
		loserElo      int
		wantWinnerElo int
		wantLoserElo  int
		description   string
	}{
		{
			name:          "Equal ratings",
			winnerElo:     1200,
			loserElo:      1200,
			wantWinnerElo: 1216,
			wantLoserElo:  1184,
			description:   "Even match moves each side by K/2",
		},
		{
			name:          "Favorite wins",
			winnerElo:     1400,
			loserElo:      1200,
			wantWinnerElo: 1408,
			wantLoserElo:  1192,
			description:   "Expected winner gains little",
		},
		{
			name:          "Underdog wins",
			winnerElo:     1200,
			loserElo:      1400,
			wantWinnerElo: 1224,
			wantLoserElo:  1376,
			description:   "Upset moves ratings the most",
		},
		{
			name:          "Unrated players fall back to default",
			winnerElo:     0,
			loserElo:      -5,
			wantWinnerElo: 1216,
			wantLoserElo:  1184,
			description:   "Non-positive ratings are treated as 1200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotWinner, gotLoser := eloService.CalculateNewRatings(tt.winnerElo, tt.loserElo)
			if gotWinner != tt.wantWinnerElo || gotLoser != tt.wantLoserElo {
				t.Errorf("CalculateNewRatings(%d, %d) = (%d, %d), want (%d, %d) (%s)",
					tt.winnerElo, tt.loserElo, gotWinner, gotLoser,
					tt.wantWinnerElo, tt.wantLoserElo, tt.description)
			}
		})
	}
}

func TestELOService_WinnerAlwaysGains(t *testing.T) {
	eloService := NewELOService()

	for _, pair := range [][2]int{{800, 2200}, {1200, 1200}, {2200, 800}} {
		newWinner, newLoser := eloService.CalculateNewRatings(pair[0], pair[1])
		if newWinner < pair[0] {
			t.Errorf("winner rating dropped: %d -> %d", pair[0], newWinner)
		}
		if newLoser > pair[1] {
			t.Errorf("loser rating rose: %d -> %d", pair[1], newLoser)
		}
	}
}
