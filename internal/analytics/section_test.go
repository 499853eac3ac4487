package analytics

import (
	"testing"

	"github.com/mockexam/backend/internal/models"
)

func strPtr(s string) *string { return &s }

func TestAnalyzeSections(t *testing.T) {
	sections := []models.Section{
		{ID: 1, TestID: 1, Name: "Quant", QuestionCount: 3},
		{ID: 2, TestID: 1, Name: "Verbal", QuestionCount: 2},
	}
	questions := []models.Question{
		{ID: 10, SectionID: 1},
		{ID: 11, SectionID: 1},
		{ID: 12, SectionID: 1},
		{ID: 20, SectionID: 2},
		{ID: 21, SectionID: 2},
	}
	responses := []models.Response{
		{QuestionID: 10, SelectedAnswer: strPtr("a"), IsCorrect: true},
		{QuestionID: 11, SelectedAnswer: strPtr("b"), IsCorrect: false},
		{QuestionID: 12, SelectedAnswer: nil}, // unanswered
		{QuestionID: 20, SelectedAnswer: strPtr("c"), IsCorrect: true},
	}

	analysis := AnalyzeSections(sections, questions, responses)
	if len(analysis) != 2 {
		t.Fatalf("got %d sections, want 2", len(analysis))
	}

	quant := analysis[0]
	if quant.Attempted != 2 || quant.Correct != 1 || quant.Incorrect != 1 || quant.Skipped != 1 {
		t.Errorf("quant = attempted %d correct %d incorrect %d skipped %d, want 2/1/1/1",
			quant.Attempted, quant.Correct, quant.Incorrect, quant.Skipped)
	}
	if quant.Accuracy != 50.0 {
		t.Errorf("quant accuracy = %v, want 50.0", quant.Accuracy)
	}

	verbal := analysis[1]
	if verbal.Attempted != 1 || verbal.Correct != 1 || verbal.Skipped != 1 {
		t.Errorf("verbal = attempted %d correct %d skipped %d, want 1/1/1",
			verbal.Attempted, verbal.Correct, verbal.Skipped)
	}
	if verbal.Accuracy != 100.0 {
		t.Errorf("verbal accuracy = %v, want 100.0", verbal.Accuracy)
	}
}

func TestAnalyzeSectionsNoResponses(t *testing.T) {
	sections := []models.Section{{ID: 1, Name: "Quant", QuestionCount: 4}}
	questions := []models.Question{{ID: 1, SectionID: 1}}

	analysis := AnalyzeSections(sections, questions, nil)
	if len(analysis) != 1 {
		t.Fatalf("got %d sections, want 1", len(analysis))
	}
	got := analysis[0]
	if got.Attempted != 0 || got.Skipped != 4 || got.Accuracy != 0 {
		t.Errorf("empty attempt: attempted %d skipped %d accuracy %v, want 0/4/0",
			got.Attempted, got.Skipped, got.Accuracy)
	}
}

func TestAnalyzeSectionsSkippedNeverNegative(t *testing.T) {
	// Declared count undershoots the real question list.
	sections := []models.Section{{ID: 1, Name: "Quant", QuestionCount: 1}}
	questions := []models.Question{
		{ID: 1, SectionID: 1},
		{ID: 2, SectionID: 1},
	}
	responses := []models.Response{
		{QuestionID: 1, SelectedAnswer: strPtr("a"), IsCorrect: true},
		{QuestionID: 2, SelectedAnswer: strPtr("b"), IsCorrect: true},
	}

	analysis := AnalyzeSections(sections, questions, responses)
	if analysis[0].Skipped != 0 {
		t.Errorf("Skipped = %d, want floor at 0", analysis[0].Skipped)
	}
}
