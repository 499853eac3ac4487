package analytics

import "github.com/mockexam/backend/internal/models"

// AnalyzeSections buckets an attempt's responses by section and
// computes attempted/correct/incorrect/skipped plus accuracy per
// section. Skipped is measured against the section's declared question
// count, floored at zero in case the catalog undercounts.
func AnalyzeSections(sections []models.Section, questions []models.Question, responses []models.Response) []models.SectionAnalysis {
	sectionOf := make(map[int64]int64, len(questions))
	for _, q := range questions {
		sectionOf[q.ID] = q.SectionID
	}

	type tally struct{ attempted, correct int }
	tallies := make(map[int64]*tally, len(sections))
	for _, sec := range sections {
		tallies[sec.ID] = &tally{}
	}

	for _, r := range responses {
		secID, ok := sectionOf[r.QuestionID]
		if !ok {
			continue
		}
		t, ok := tallies[secID]
		if !ok {
			continue
		}
		if r.SelectedAnswer != nil && *r.SelectedAnswer != "" {
			t.attempted++
			if r.IsCorrect {
				t.correct++
			}
		}
	}

	analysis := make([]models.SectionAnalysis, 0, len(sections))
	for _, sec := range sections {
		t := tallies[sec.ID]
		skipped := sec.QuestionCount - t.attempted
		if skipped < 0 {
			skipped = 0
		}
		analysis = append(analysis, models.SectionAnalysis{
			SectionID:      sec.ID,
			Name:           sec.Name,
			TotalQuestions: sec.QuestionCount,
			Attempted:      t.attempted,
			Correct:        t.correct,
			Incorrect:      t.attempted - t.correct,
			Skipped:        skipped,
			Accuracy:       roundAccuracy(t.correct, t.attempted),
		})
	}
	return analysis
}
