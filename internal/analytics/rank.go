package analytics

import (
	"math"
	"sort"

	"github.com/mockexam/backend/internal/models"
	"github.com/shopspring/decimal"
)

// LeaderboardLimit caps how many rows a leaderboard returns.
const LeaderboardLimit = 50

// BestPerUser reduces completed attempts to each user's single best
// one: highest score, ties between a user's own attempts broken by the
// earlier attempt id.
func BestPerUser(attempts []models.CompletedAttempt) []models.CompletedAttempt {
	best := make(map[int64]models.CompletedAttempt)
	for _, a := range attempts {
		cur, ok := best[a.UserID]
		if !ok {
			best[a.UserID] = a
			continue
		}
		if a.Score.GreaterThan(cur.Score) ||
			(a.Score.Equal(cur.Score) && a.AttemptID < cur.AttemptID) {
			best[a.UserID] = a
		}
	}

	out := make([]models.CompletedAttempt, 0, len(best))
	for _, a := range best {
		out = append(out, a)
	}
	return out
}

// BuildLeaderboard ranks the best attempt of every user: score
// descending, then time remaining descending (more time left among
// equal scores ranks higher), then attempt id ascending so equal rows
// order deterministically. Ranks are dense 1-based positions.
func BuildLeaderboard(attempts []models.CompletedAttempt, limit int) []models.LeaderboardRow {
	best := BestPerUser(attempts)

	sort.Slice(best, func(i, j int) bool {
		if !best[i].Score.Equal(best[j].Score) {
			return best[i].Score.GreaterThan(best[j].Score)
		}
		if best[i].TimeRemaining != best[j].TimeRemaining {
			return best[i].TimeRemaining > best[j].TimeRemaining
		}
		return best[i].AttemptID < best[j].AttemptID
	})

	if limit > 0 && len(best) > limit {
		best = best[:limit]
	}

	rows := make([]models.LeaderboardRow, 0, len(best))
	for i, a := range best {
		rows = append(rows, models.LeaderboardRow{
			Rank:          i + 1,
			StudentName:   models.FormatDisplayName(a.StudentName),
			Score:         a.Score,
			Accuracy:      roundAccuracy(a.Correct, a.Attempted),
			TimeRemaining: a.TimeRemaining,
			CompletedAt:   a.CompletedAt,
		})
	}
	return rows
}

// Percentile is the share of best-attempt users the given score
// strictly outranks, over all distinct users with a completed attempt
// on the test, rounded to two decimals. A solo participant is the
// 100th percentile.
func Percentile(attempts []models.CompletedAttempt, score decimal.Decimal) float64 {
	best := BestPerUser(attempts)
	total := len(best)
	if total <= 1 {
		return 100.00
	}

	lower := 0
	for _, a := range best {
		if a.Score.LessThan(score) {
			lower++
		}
	}
	return math.Round(float64(lower)/float64(total)*10000) / 100
}

func roundAccuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(attempted)*1000) / 10
}
