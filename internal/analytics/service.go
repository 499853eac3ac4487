package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/mockexam/backend/internal/models"
	"github.com/shopspring/decimal"
)

type Service struct {
	store *Store
}

func NewService(store *Store) *Service {
	return &Service{store: store}
}

// PercentileForScore ranks a score against every other user's best
// completed attempt on the test.
func (s *Service) PercentileForScore(testID int64, score decimal.Decimal) (float64, error) {
	attempts, err := s.store.CompletedAttemptsForTest(testID)
	if err != nil {
		return 0, fmt.Errorf("load completed attempts: %w", err)
	}
	return Percentile(attempts, score), nil
}

func (s *Service) Leaderboard(testID int64) (*models.LeaderboardResponse, error) {
	exists, err := s.store.TestExists(testID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrTestNotFound
	}

	attempts, err := s.store.CompletedAttemptsForTest(testID)
	if err != nil {
		return nil, fmt.Errorf("load completed attempts: %w", err)
	}

	rows := BuildLeaderboard(attempts, LeaderboardLimit)
	if rows == nil {
		rows = []models.LeaderboardRow{}
	}
	return &models.LeaderboardResponse{TestID: testID, Entries: rows}, nil
}

func (s *Service) Streak(userID int64) (int, error) {
	dates, err := s.store.CompletionDates(userID)
	if err != nil {
		return 0, err
	}
	return Streak(dates, time.Now()), nil
}

// Dashboard composes the read-side rollups: totals, averages, the
// accuracy trend by day, the streak, the resumable attempt, and
// per-series progress. Empty history yields zeros, not errors.
func (s *Service) Dashboard(userID int64) (*models.DashboardResponse, error) {
	attempts, err := s.store.CompletedAttemptsForUser(userID)
	if err != nil {
		return nil, fmt.Errorf("load user attempts: %w", err)
	}

	resp := &models.DashboardResponse{
		TestsTaken:     len(attempts),
		AverageScore:   decimal.Zero,
		AccuracyTrend:  []models.DailyAccuracy{},
		SeriesProgress: []models.SeriesProgress{},
	}

	totalAttempted, totalCorrect := 0, 0
	scoreSum := decimal.Zero
	for _, a := range attempts {
		scoreSum = scoreSum.Add(a.Score)
		totalAttempted += a.Attempted
		totalCorrect += a.Correct
	}
	if len(attempts) > 0 {
		resp.AverageScore = scoreSum.Div(decimal.NewFromInt(int64(len(attempts)))).Round(2)
	}
	resp.OverallAccuracy = roundAccuracy(totalCorrect, totalAttempted)
	resp.AccuracyTrend = accuracyTrend(attempts)

	streak, err := s.Streak(userID)
	if err != nil {
		return nil, err
	}
	resp.Streak = streak

	resumable, err := s.store.LatestActiveAttempt(userID)
	if err != nil {
		return nil, err
	}
	resp.Resumable = resumable

	progress, err := s.store.SeriesProgress(userID)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		resp.SeriesProgress = progress
	}

	return resp, nil
}

// accuracyTrend groups completed attempts by calendar day (UTC) and
// reports per-day accuracy, oldest first.
func accuracyTrend(attempts []models.CompletedAttempt) []models.DailyAccuracy {
	type tally struct{ attempted, correct int }
	byDay := make(map[string]*tally)
	for _, a := range attempts {
		day := a.CompletedAt.UTC().Format("2006-01-02")
		t, ok := byDay[day]
		if !ok {
			t = &tally{}
			byDay[day] = t
		}
		t.attempted += a.Attempted
		t.correct += a.Correct
	}

	days := make([]string, 0, len(byDay))
	for day := range byDay {
		days = append(days, day)
	}
	sort.Strings(days)

	trend := make([]models.DailyAccuracy, 0, len(days))
	for _, day := range days {
		t := byDay[day]
		trend = append(trend, models.DailyAccuracy{
			Date:      day,
			Attempted: t.attempted,
			Correct:   t.correct,
			Accuracy:  roundAccuracy(t.correct, t.attempted),
		})
	}
	return trend
}
