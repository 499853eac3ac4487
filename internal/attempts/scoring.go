package attempts

import (
	"math"
	"strings"

	"github.com/mockexam/backend/internal/models"
	"github.com/shopspring/decimal"
)

// ScoredSubmission is the outcome of scoring one submission against a
// test's answer key: the final score, the correctness buckets, and one
// staged response row per question of the test.
type ScoredSubmission struct {
	Score           decimal.Decimal
	TotalQuestions  int
	CorrectCount    int
	IncorrectCount  int
	UnansweredCount int
	Responses       []models.Response
}

func (sc ScoredSubmission) AttemptedCount() int {
	return sc.CorrectCount + sc.IncorrectCount
}

// Accuracy is correct/attempted as a percentage, rounded to one
// decimal. Zero when nothing was attempted.
func (sc ScoredSubmission) Accuracy() float64 {
	return RoundAccuracy(sc.CorrectCount, sc.AttemptedCount())
}

func RoundAccuracy(correct, attempted int) float64 {
	if attempted == 0 {
		return 0
	}
	return math.Round(float64(correct)/float64(attempted)*1000) / 10
}

// ScoreSubmission walks every question of the test, not just the ones
// the client sent, so omitted questions still count as unanswered and
// the buckets always sum to the question count. Option comparison is
// case-insensitive and correctness is computed here regardless of
// anything the client claimed. Marks use decimal arithmetic; the score
// can go negative under negative marking.
func ScoreSubmission(test *models.Test, questions []models.Question, submitted []models.ResponseEntry) ScoredSubmission {
	byQuestion := make(map[int64]models.ResponseEntry, len(submitted))
	for _, entry := range submitted {
		byQuestion[entry.QuestionID] = entry
	}

	scored := ScoredSubmission{
		Score:          decimal.Zero,
		TotalQuestions: len(questions),
		Responses:      make([]models.Response, 0, len(questions)),
	}

	for _, q := range questions {
		resp := models.Response{QuestionID: q.ID}

		entry, answered := byQuestion[q.ID]
		selected := strings.ToLower(strings.TrimSpace(entry.SelectedAnswer))
		if answered {
			resp.MarkedForReview = entry.MarkedForReview
		}

		switch {
		case !answered || selected == "":
			scored.UnansweredCount++
		case strings.EqualFold(selected, q.CorrectOption):
			resp.SelectedAnswer = &selected
			resp.IsCorrect = true
			scored.CorrectCount++
			scored.Score = scored.Score.Add(test.MarksCorrect)
		default:
			resp.SelectedAnswer = &selected
			scored.IncorrectCount++
			scored.Score = scored.Score.Sub(test.MarksIncorrect)
		}

		scored.Responses = append(scored.Responses, resp)
	}

	return scored
}
