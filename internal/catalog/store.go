package catalog

import (
	"database/sql"
	"fmt"

	"github.com/mockexam/backend/internal/models"
)

// Store is the read side of the exam catalog. Attempt scoring treats
// everything here as an immutable answer key; writes happen through
// admin tooling outside this service.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetTest(testID int64) (*models.Test, error) {
	var t models.Test
	err := s.db.QueryRow(
		`SELECT id, series_id, stage_id, title, duration_seconds, is_free, marks_correct, marks_incorrect
		 FROM tests WHERE id = $1`,
		testID,
	).Scan(&t.ID, &t.SeriesID, &t.StageID, &t.Title, &t.DurationSeconds,
		&t.IsFree, &t.MarksCorrect, &t.MarksIncorrect)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *Store) GetSections(testID int64) ([]models.Section, error) {
	rows, err := s.db.Query(
		`SELECT id, test_id, name, question_count FROM sections WHERE test_id = $1 ORDER BY id`,
		testID,
	)
	if err != nil {
		return nil, fmt.Errorf("get sections: %w", err)
	}
	defer rows.Close()

	var sections []models.Section
	for rows.Next() {
		var sec models.Section
		if err := rows.Scan(&sec.ID, &sec.TestID, &sec.Name, &sec.QuestionCount); err != nil {
			return nil, fmt.Errorf("scan section: %w", err)
		}
		sections = append(sections, sec)
	}
	return sections, rows.Err()
}

// GetQuestions returns every question of the test, answer key included.
// Server-side use only.
func (s *Store) GetQuestions(testID int64) ([]models.Question, error) {
	rows, err := s.db.Query(
		`SELECT q.id, q.section_id, q.question_text, q.option_a, q.option_b, q.option_c, q.option_d,
		        q.correct_option, q.explanation
		 FROM questions q
		 JOIN sections sec ON sec.id = q.section_id
		 WHERE sec.test_id = $1
		 ORDER BY q.id`,
		testID,
	)
	if err != nil {
		return nil, fmt.Errorf("get questions: %w", err)
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.SectionID, &q.QuestionText,
			&q.OptionA, &q.OptionB, &q.OptionC, &q.OptionD,
			&q.CorrectOption, &q.Explanation); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

// GetQuestionIDs returns the set of question ids belonging to the
// test. Cheaper than GetQuestions when only membership matters.
func (s *Store) GetQuestionIDs(testID int64) (map[int64]bool, error) {
	rows, err := s.db.Query(
		`SELECT q.id FROM questions q
		 JOIN sections sec ON sec.id = q.section_id
		 WHERE sec.test_id = $1`,
		testID,
	)
	if err != nil {
		return nil, fmt.Errorf("get question ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan question id: %w", err)
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *Store) ListSeries() ([]models.SeriesListing, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, category FROM test_series ORDER BY id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list series: %w", err)
	}
	defer rows.Close()

	var listings []models.SeriesListing
	for rows.Next() {
		var l models.SeriesListing
		if err := rows.Scan(&l.ID, &l.Name, &l.Description, &l.Category); err != nil {
			return nil, fmt.Errorf("scan series: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range listings {
		tests, err := s.listSeriesTests(listings[i].ID)
		if err != nil {
			return nil, err
		}
		listings[i].Tests = tests
	}
	return listings, nil
}

func (s *Store) listSeriesTests(seriesID int64) ([]models.TestSummary, error) {
	rows, err := s.db.Query(
		`SELECT t.id, t.title, t.duration_seconds, t.is_free, COALESCE(st.name, '')
		 FROM tests t
		 LEFT JOIN test_stages st ON st.id = t.stage_id
		 WHERE t.series_id = $1
		 ORDER BY COALESCE(st.sort_order, 0), t.id`,
		seriesID,
	)
	if err != nil {
		return nil, fmt.Errorf("list series tests: %w", err)
	}
	defer rows.Close()

	tests := []models.TestSummary{}
	for rows.Next() {
		var t models.TestSummary
		if err := rows.Scan(&t.ID, &t.Title, &t.DurationSeconds, &t.IsFree, &t.StageName); err != nil {
			return nil, fmt.Errorf("scan test summary: %w", err)
		}
		tests = append(tests, t)
	}
	return tests, rows.Err()
}

// GetTestDetail assembles the nested test → sections → questions shape
// served to a client starting an attempt. Answer keys are stripped.
func (s *Store) GetTestDetail(testID int64) (*models.TestDetail, error) {
	test, err := s.GetTest(testID)
	if err != nil {
		return nil, err
	}

	sections, err := s.GetSections(testID)
	if err != nil {
		return nil, err
	}

	questions, err := s.GetQuestions(testID)
	if err != nil {
		return nil, err
	}

	bySection := make(map[int64][]models.AttemptQuestion)
	for _, q := range questions {
		bySection[q.SectionID] = append(bySection[q.SectionID], q.ToAttemptQuestion())
	}

	detail := &models.TestDetail{
		ID:              test.ID,
		Title:           test.Title,
		DurationSeconds: test.DurationSeconds,
		IsFree:          test.IsFree,
		MarksCorrect:    test.MarksCorrect,
		MarksIncorrect:  test.MarksIncorrect,
		Sections:        []models.SectionDetail{},
	}
	for _, sec := range sections {
		qs := bySection[sec.ID]
		if qs == nil {
			qs = []models.AttemptQuestion{}
		}
		detail.Sections = append(detail.Sections, models.SectionDetail{
			ID:            sec.ID,
			Name:          sec.Name,
			QuestionCount: sec.QuestionCount,
			Questions:     qs,
		})
	}
	return detail, nil
}
