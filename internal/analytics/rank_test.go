package analytics

import (
	"fmt"
	"testing"
	"time"

	"github.com/mockexam/backend/internal/models"
	"github.com/shopspring/decimal"
)

func attempt(id, userID int64, score string, timeRemaining int) models.CompletedAttempt {
	return models.CompletedAttempt{
		AttemptID:     id,
		UserID:        userID,
		StudentName:   fmt.Sprintf("Student %d", userID),
		Score:         decimal.RequireFromString(score),
		TimeRemaining: timeRemaining,
		CompletedAt:   time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC),
		Attempted:     10,
		Correct:       8,
	}
}

func TestBestPerUser(t *testing.T) {
	attempts := []models.CompletedAttempt{
		attempt(1, 1, "40", 100),
		attempt(2, 1, "55", 0), // user 1's best
		attempt(3, 2, "55", 200),
		attempt(5, 2, "55", 999), // same score, later attempt: earlier wins
	}

	best := BestPerUser(attempts)
	if len(best) != 2 {
		t.Fatalf("got %d rows, want one per user", len(best))
	}

	byUser := make(map[int64]models.CompletedAttempt)
	for _, a := range best {
		byUser[a.UserID] = a
	}
	if byUser[1].AttemptID != 2 {
		t.Errorf("user 1 best = attempt %d, want 2", byUser[1].AttemptID)
	}
	if byUser[2].AttemptID != 3 {
		t.Errorf("user 2 best = attempt %d, want the earlier of the tied pair", byUser[2].AttemptID)
	}
}

func TestBuildLeaderboardOrdering(t *testing.T) {
	attempts := []models.CompletedAttempt{
		attempt(1, 1, "80", 120),
		attempt(2, 2, "95", 0),
		attempt(3, 3, "80", 300), // ties user 1 on score, more time left
		attempt(4, 4, "80", 120), // full tie with user 1, higher attempt id
	}

	rows := BuildLeaderboard(attempts, LeaderboardLimit)
	if len(rows) != 4 {
		t.Fatalf("got %d rows, want 4", len(rows))
	}

	wantNames := []string{"Student 2.", "Student 3.", "Student 1.", "Student 4."}
	for i, want := range wantNames {
		if rows[i].StudentName != want {
			t.Errorf("rows[%d].StudentName = %q, want %q", i, rows[i].StudentName, want)
		}
	}
	for i, row := range rows {
		if row.Rank != i+1 {
			t.Errorf("rows[%d].Rank = %d, want %d", i, row.Rank, i+1)
		}
	}
}

func TestBuildLeaderboardLimit(t *testing.T) {
	var attempts []models.CompletedAttempt
	for i := int64(1); i <= 60; i++ {
		attempts = append(attempts, attempt(i, i, fmt.Sprintf("%d", i), 0))
	}

	rows := BuildLeaderboard(attempts, LeaderboardLimit)
	if len(rows) != LeaderboardLimit {
		t.Errorf("got %d rows, want %d", len(rows), LeaderboardLimit)
	}
	if !rows[0].Score.Equal(decimal.RequireFromString("60")) {
		t.Errorf("top row score = %s, want 60", rows[0].Score)
	}
}

func TestBuildLeaderboardOneRowPerUser(t *testing.T) {
	attempts := []models.CompletedAttempt{
		attempt(1, 1, "50", 0),
		attempt(2, 1, "70", 0),
		attempt(3, 1, "60", 0),
	}

	rows := BuildLeaderboard(attempts, LeaderboardLimit)
	if len(rows) != 1 {
		t.Fatalf("got %d rows for one user, want 1", len(rows))
	}
	if !rows[0].Score.Equal(decimal.RequireFromString("70")) {
		t.Errorf("score = %s, want the user's best (70)", rows[0].Score)
	}
}

func TestPercentile(t *testing.T) {
	attempts := []models.CompletedAttempt{
		attempt(1, 1, "40", 0),
		attempt(2, 2, "60", 0),
		attempt(3, 3, "80", 0),
		attempt(4, 4, "80", 0),
	}

	tests := []struct {
		name  string
		score string
		want  float64
	}{
		{"top score ties", "80", 50.00}, // outranks 40 and 60 of 4 users
		{"middle", "60", 25.00},
		{"bottom", "40", 0.00},
		{"above everyone", "100", 100.00},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Percentile(attempts, decimal.RequireFromString(tt.score))
			if got != tt.want {
				t.Errorf("Percentile(%s) = %v, want %v", tt.score, got, tt.want)
			}
		})
	}
}

func TestPercentileSoloParticipant(t *testing.T) {
	attempts := []models.CompletedAttempt{attempt(1, 1, "12.5", 0)}
	if got := Percentile(attempts, decimal.RequireFromString("12.5")); got != 100.00 {
		t.Errorf("solo percentile = %v, want 100.00", got)
	}
}

func TestPercentileUsesBestPerUser(t *testing.T) {
	// User 2 has a weak retake; only their best attempt should count.
	attempts := []models.CompletedAttempt{
		attempt(1, 1, "50", 0),
		attempt(2, 2, "90", 0),
		attempt(3, 2, "10", 0),
	}

	got := Percentile(attempts, decimal.RequireFromString("50"))
	if got != 0.00 {
		t.Errorf("Percentile(50) = %v, want 0.00 (90 is not outranked)", got)
	}
}
