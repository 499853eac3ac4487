package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ── Attempt Entities ────────────────────────────────────

// TestResult is one user's attempt at one test. At most one row per
// (user, test) may have IsCompleted == false; the partial unique index
// idx_results_one_active enforces this at the storage layer.
type TestResult struct {
	ID            int64           `json:"id"`
	UserID        int64           `json:"user_id"`
	TestID        int64           `json:"test_id"`
	Score         decimal.Decimal `json:"score"`
	IsCompleted   bool            `json:"is_completed"`
	TimeRemaining int             `json:"time_remaining"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
	LastUpdated   time.Time       `json:"last_updated"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Response records a user's answer (or lack of one) to a single
// question within an attempt. Correctness is always computed at
// scoring time, never taken from the client.
type Response struct {
	ID              int64   `json:"id"`
	ResultID        int64   `json:"result_id"`
	QuestionID      int64   `json:"question_id"`
	SelectedAnswer  *string `json:"selected_answer"`
	MarkedForReview bool    `json:"marked_for_review"`
	IsCorrect       bool    `json:"is_correct"`
}

// ── Request Types ───────────────────────────────────────

type ResponseEntry struct {
	QuestionID      int64  `json:"question_id"`
	SelectedAnswer  string `json:"selected_answer,omitempty"`
	MarkedForReview bool   `json:"marked_for_review,omitempty"`
}

type SaveProgressRequest struct {
	TimeRemaining *int            `json:"time_remaining,omitempty"`
	Responses     []ResponseEntry `json:"responses,omitempty"`
}

type SubmitRequest struct {
	Responses []ResponseEntry `json:"responses"`
}

// ── Response Types ──────────────────────────────────────

type SaveProgressResponse struct {
	Status string `json:"status"`
}

// ResumeResponse restores an in-progress attempt on a new device or
// tab: the checkpointed timer plus every saved answer. Correctness and
// the answer key are withheld until submission.
type ResumeResponse struct {
	ResultID      int64           `json:"result_id"`
	TestID        int64           `json:"test_id"`
	TimeRemaining int             `json:"time_remaining"`
	LastUpdated   time.Time       `json:"last_updated"`
	Responses     []SavedResponse `json:"responses"`
}

type SavedResponse struct {
	QuestionID      int64   `json:"question_id"`
	SelectedAnswer  *string `json:"selected_answer"`
	MarkedForReview bool    `json:"marked_for_review"`
}

// ResultDetail is the full scored report, returned by submit and by
// the results endpoint. Built once from the finalized attempt.
type ResultDetail struct {
	ID              int64             `json:"id"`
	TestID          int64             `json:"test_id"`
	TestTitle       string            `json:"test_title"`
	Score           decimal.Decimal   `json:"score"`
	TimeRemaining   int               `json:"time_remaining"`
	CompletedAt     *time.Time        `json:"completed_at"`
	TotalQuestions  int               `json:"total_questions"`
	CorrectCount    int               `json:"correct_count"`
	IncorrectCount  int               `json:"incorrect_count"`
	UnansweredCount int               `json:"unanswered_count"`
	AttemptedCount  int               `json:"attempted_count"`
	Accuracy        float64           `json:"accuracy"`
	MarksCorrect    decimal.Decimal   `json:"marks_correct"`
	MarksIncorrect  decimal.Decimal   `json:"marks_incorrect"`
	Percentile      float64           `json:"percentile"`
	SectionAnalysis []SectionAnalysis `json:"section_analysis"`
	Responses       []ReviewResponse  `json:"responses"`
}

// ReviewResponse pairs the full question (key and explanation
// included) with what the user answered, for the post-test review UI.
type ReviewResponse struct {
	Question        Question `json:"question"`
	SelectedAnswer  *string  `json:"selected_answer"`
	IsCorrect       bool     `json:"is_correct"`
	MarkedForReview bool     `json:"marked_for_review"`
}
