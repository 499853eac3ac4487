package models

import "github.com/shopspring/decimal"

// ── Catalog Entities ────────────────────────────────────

// Test is a single mock test within a series. Marks are decimal so
// fractional negative marking (e.g. -0.25 per wrong answer) stays exact.
type Test struct {
	ID              int64           `json:"id"`
	SeriesID        int64           `json:"series_id"`
	StageID         *int64          `json:"stage_id,omitempty"`
	Title           string          `json:"title"`
	DurationSeconds int             `json:"duration_seconds"`
	IsFree          bool            `json:"is_free"`
	MarksCorrect    decimal.Decimal `json:"marks_correct"`
	MarksIncorrect  decimal.Decimal `json:"marks_incorrect"`
}

type TestSeries struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

type TestStage struct {
	ID        int64  `json:"id"`
	SeriesID  int64  `json:"series_id"`
	Name      string `json:"name"`
	SortOrder int    `json:"sort_order"`
}

type Section struct {
	ID            int64  `json:"id"`
	TestID        int64  `json:"test_id"`
	Name          string `json:"name"`
	QuestionCount int    `json:"question_count"`
}

// Question carries the answer key. It never leaves the server in this
// form while a test is in progress — serve AttemptQuestion instead.
type Question struct {
	ID            int64  `json:"id"`
	SectionID     int64  `json:"section_id"`
	QuestionText  string `json:"question_text"`
	OptionA       string `json:"option_a"`
	OptionB       string `json:"option_b"`
	OptionC       string `json:"option_c"`
	OptionD       string `json:"option_d"`
	CorrectOption string `json:"correct_option"`
	Explanation   string `json:"explanation"`
}

// ToAttemptQuestion strips the answer key for serving.
func (q Question) ToAttemptQuestion() AttemptQuestion {
	return AttemptQuestion{
		ID:           q.ID,
		QuestionText: q.QuestionText,
		OptionA:      q.OptionA,
		OptionB:      q.OptionB,
		OptionC:      q.OptionC,
		OptionD:      q.OptionD,
	}
}

// ── Serving Types ───────────────────────────────────────

type AttemptQuestion struct {
	ID           int64  `json:"id"`
	QuestionText string `json:"question_text"`
	OptionA      string `json:"option_a"`
	OptionB      string `json:"option_b"`
	OptionC      string `json:"option_c"`
	OptionD      string `json:"option_d"`
}

type SectionDetail struct {
	ID            int64             `json:"id"`
	Name          string            `json:"name"`
	QuestionCount int               `json:"question_count"`
	Questions     []AttemptQuestion `json:"questions"`
}

type TestDetail struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	DurationSeconds int             `json:"duration_seconds"`
	IsFree          bool            `json:"is_free"`
	MarksCorrect    decimal.Decimal `json:"marks_correct"`
	MarksIncorrect  decimal.Decimal `json:"marks_incorrect"`
	Sections        []SectionDetail `json:"sections"`
}

type TestSummary struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	DurationSeconds int    `json:"duration_seconds"`
	IsFree          bool   `json:"is_free"`
	StageName       string `json:"stage_name,omitempty"`
}

type SeriesListing struct {
	TestSeries
	Tests []TestSummary `json:"tests"`
}
