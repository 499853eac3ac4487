package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Analytics Types ─────────────────────────────────────

type SectionAnalysis struct {
	SectionID      int64   `json:"section_id"`
	Name           string  `json:"name"`
	TotalQuestions int     `json:"total_questions"`
	Attempted      int     `json:"attempted"`
	Correct        int     `json:"correct"`
	Incorrect      int     `json:"incorrect"`
	Skipped        int     `json:"skipped"`
	Accuracy       float64 `json:"accuracy"`
}

// CompletedAttempt is the ranking service's working row: one completed
// attempt joined with its owner and response counts.
type CompletedAttempt struct {
	AttemptID     int64
	UserID        int64
	StudentName   string
	Score         decimal.Decimal
	TimeRemaining int
	CompletedAt   time.Time
	Attempted     int
	Correct       int
}

type LeaderboardRow struct {
	Rank          int             `json:"rank"`
	StudentName   string          `json:"student_name"`
	Score         decimal.Decimal `json:"score"`
	Accuracy      float64         `json:"accuracy"`
	TimeRemaining int             `json:"time_remaining"`
	CompletedAt   time.Time       `json:"completed_at"`
}

type LeaderboardResponse struct {
	TestID  int64            `json:"test_id"`
	Entries []LeaderboardRow `json:"entries"`
}

// ── Dashboard Types ─────────────────────────────────────

type DailyAccuracy struct {
	Date      string  `json:"date"`
	Attempted int     `json:"attempted"`
	Correct   int     `json:"correct"`
	Accuracy  float64 `json:"accuracy"`
}

type SeriesProgress struct {
	SeriesID   int64  `json:"series_id"`
	SeriesName string `json:"series_name"`
	TotalTests int    `json:"total_tests"`
	Completed  int    `json:"completed"`
}

type ResumableAttempt struct {
	ResultID      int64     `json:"result_id"`
	TestID        int64     `json:"test_id"`
	TestTitle     string    `json:"test_title"`
	TimeRemaining int       `json:"time_remaining"`
	LastUpdated   time.Time `json:"last_updated"`
}

type DashboardResponse struct {
	TestsTaken      int               `json:"tests_taken"`
	AverageScore    decimal.Decimal   `json:"average_score"`
	OverallAccuracy float64           `json:"overall_accuracy"`
	Streak          int               `json:"streak"`
	AccuracyTrend   []DailyAccuracy   `json:"accuracy_trend"`
	Resumable       *ResumableAttempt `json:"resumable,omitempty"`
	SeriesProgress  []SeriesProgress  `json:"series_progress"`
}
