package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/mockexam/backend/internal/analytics"
	"github.com/mockexam/backend/internal/catalog"
	"github.com/mockexam/backend/internal/models"
	"github.com/shopspring/decimal"
)

// attemptStore is the storage surface the service depends on. *Store
// satisfies it.
type attemptStore interface {
	GetActiveAttempt(userID, testID int64) (*models.TestResult, error)
	GetOrCreateActiveAttempt(userID, testID int64, initialTimeRemaining int) (*models.TestResult, error)
	UpdateTimeRemaining(resultID int64, seconds int) error
	TouchAttempt(resultID int64) error
	UpsertResponse(resultID, questionID int64, selected *string, markedForReview bool) error
	SubmitTx(ctx context.Context, resultID, userID, testID int64, score decimal.Decimal, staged []models.Response) (*models.TestResult, error)
	GetResultForUser(resultID, userID int64) (*models.TestResult, error)
	GetResponses(resultID int64) ([]models.Response, error)
}

type catalogReader interface {
	GetTest(testID int64) (*models.Test, error)
	GetSections(testID int64) ([]models.Section, error)
	GetQuestions(testID int64) ([]models.Question, error)
	GetQuestionIDs(testID int64) (map[int64]bool, error)
}

type Service struct {
	store     attemptStore
	catalog   catalogReader
	analytics *analytics.Service
}

func NewService(store *Store, cat *catalog.Store) *Service {
	return &Service{store: store, catalog: cat}
}

// SetAnalyticsService injects the ranking service so scored results
// carry percentile and section analysis.
func (s *Service) SetAnalyticsService(as *analytics.Service) {
	s.analytics = as
}

func (s *Service) getTest(testID int64) (*models.Test, error) {
	test, err := s.catalog.GetTest(testID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load test: %w", err)
	}
	return test, nil
}

// validateEntries rejects a malformed batch before anything is
// written, so a failed request never partially applies.
func validateEntries(entries []models.ResponseEntry) error {
	for _, e := range entries {
		if e.QuestionID <= 0 {
			return fmt.Errorf("%w: response entry is missing question_id", ErrInvalidInput)
		}
		selected := strings.ToLower(strings.TrimSpace(e.SelectedAnswer))
		switch selected {
		case "", "a", "b", "c", "d":
		default:
			return fmt.Errorf("%w: selected_answer must be one of a, b, c, d", ErrInvalidInput)
		}
	}
	return nil
}

// validateMembership rejects entries whose question does not belong to
// the test, so an autosave can neither attach another test's questions
// to the attempt nor hit a foreign-key failure on a bogus id.
func validateMembership(entries []models.ResponseEntry, questionIDs map[int64]bool) error {
	for _, e := range entries {
		if !questionIDs[e.QuestionID] {
			return fmt.Errorf("%w: question %d does not belong to this test", ErrInvalidInput, e.QuestionID)
		}
	}
	return nil
}

// SaveProgress checkpoints an in-progress attempt: the remaining time
// if supplied, and each submitted answer. The attempt is created
// lazily on the first checkpoint, seeded with the full test duration.
func (s *Service) SaveProgress(ctx context.Context, userID, testID int64, req models.SaveProgressRequest) error {
	test, err := s.getTest(testID)
	if err != nil {
		return err
	}
	if err := validateEntries(req.Responses); err != nil {
		return err
	}
	if len(req.Responses) > 0 {
		ids, err := s.catalog.GetQuestionIDs(testID)
		if err != nil {
			return fmt.Errorf("load question ids: %w", err)
		}
		if err := validateMembership(req.Responses, ids); err != nil {
			return err
		}
	}

	attempt, err := s.store.GetOrCreateActiveAttempt(userID, testID, test.DurationSeconds)
	if err != nil {
		return err
	}

	if req.TimeRemaining != nil {
		if err := s.store.UpdateTimeRemaining(attempt.ID, *req.TimeRemaining); err != nil {
			return fmt.Errorf("save time remaining: %w", err)
		}
	} else if err := s.store.TouchAttempt(attempt.ID); err != nil {
		return fmt.Errorf("touch attempt: %w", err)
	}

	for _, entry := range req.Responses {
		var selected *string
		if v := strings.ToLower(strings.TrimSpace(entry.SelectedAnswer)); v != "" {
			selected = &v
		}
		if err := s.store.UpsertResponse(attempt.ID, entry.QuestionID, selected, entry.MarkedForReview); err != nil {
			return err
		}
	}
	return nil
}

// Resume returns the active attempt's checkpoint for (user, test).
func (s *Service) Resume(ctx context.Context, userID, testID int64) (*models.ResumeResponse, error) {
	if _, err := s.getTest(testID); err != nil {
		return nil, err
	}

	attempt, err := s.store.GetActiveAttempt(userID, testID)
	if err != nil {
		return nil, err
	}
	if attempt == nil {
		return nil, ErrNoActiveAttempt
	}

	responses, err := s.store.GetResponses(attempt.ID)
	if err != nil {
		return nil, err
	}

	saved := make([]models.SavedResponse, 0, len(responses))
	for _, r := range responses {
		saved = append(saved, models.SavedResponse{
			QuestionID:      r.QuestionID,
			SelectedAnswer:  r.SelectedAnswer,
			MarkedForReview: r.MarkedForReview,
		})
	}

	return &models.ResumeResponse{
		ResultID:      attempt.ID,
		TestID:        attempt.TestID,
		TimeRemaining: attempt.TimeRemaining,
		LastUpdated:   attempt.LastUpdated,
		Responses:     saved,
	}, nil
}

// Submit is the terminal state transition for an attempt. Scoring runs
// against the full question set of the test and the whole finalization
// commits atomically. Submitting a test whose previous attempt is
// already completed starts and scores a fresh attempt.
func (s *Service) Submit(ctx context.Context, userID, testID int64, req models.SubmitRequest) (*models.ResultDetail, error) {
	test, err := s.getTest(testID)
	if err != nil {
		return nil, err
	}
	if err := validateEntries(req.Responses); err != nil {
		return nil, err
	}

	questions, err := s.catalog.GetQuestions(testID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	ids := make(map[int64]bool, len(questions))
	for _, q := range questions {
		ids[q.ID] = true
	}
	if err := validateMembership(req.Responses, ids); err != nil {
		return nil, err
	}

	scored := ScoreSubmission(test, questions, req.Responses)

	// A submit racing another tab's submit can lose its attempt row to
	// the other finalization; the loser scores a fresh attempt instead
	// of mutating the completed record.
	for try := 0; try < 2; try++ {
		attempt, err := s.store.GetOrCreateActiveAttempt(userID, testID, test.DurationSeconds)
		if err != nil {
			return nil, err
		}

		final, err := s.store.SubmitTx(ctx, attempt.ID, userID, testID, scored.Score, scored.Responses)
		if errors.Is(err, ErrAttemptFinalized) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("finalize submission: %w", err)
		}
		return s.buildResultDetail(test, final, questions, scored.Responses)
	}
	return nil, fmt.Errorf("finalize submission: %w", ErrAttemptFinalized)
}

// GetResult rebuilds the scored report for a completed attempt.
func (s *Service) GetResult(ctx context.Context, userID, resultID int64) (*models.ResultDetail, error) {
	res, err := s.store.GetResultForUser(resultID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	if !res.IsCompleted {
		return nil, ErrResultNotFound
	}

	test, err := s.getTest(res.TestID)
	if err != nil {
		return nil, err
	}

	questions, err := s.catalog.GetQuestions(res.TestID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}

	responses, err := s.store.GetResponses(res.ID)
	if err != nil {
		return nil, err
	}

	return s.buildResultDetail(test, res, questions, responses)
}

// buildResultDetail assembles the fixed report shape once from the
// finalized attempt and its stored responses.
func (s *Service) buildResultDetail(test *models.Test, res *models.TestResult, questions []models.Question, responses []models.Response) (*models.ResultDetail, error) {
	correct, incorrect, unanswered := 0, 0, 0
	byQuestion := make(map[int64]models.Response, len(responses))
	for _, r := range responses {
		byQuestion[r.QuestionID] = r
		switch {
		case r.SelectedAnswer == nil || *r.SelectedAnswer == "":
			unanswered++
		case r.IsCorrect:
			correct++
		default:
			incorrect++
		}
	}

	detail := &models.ResultDetail{
		ID:              res.ID,
		TestID:          test.ID,
		TestTitle:       test.Title,
		Score:           res.Score,
		TimeRemaining:   res.TimeRemaining,
		CompletedAt:     res.CompletedAt,
		TotalQuestions:  len(questions),
		CorrectCount:    correct,
		IncorrectCount:  incorrect,
		UnansweredCount: unanswered,
		AttemptedCount:  correct + incorrect,
		Accuracy:        RoundAccuracy(correct, correct+incorrect),
		MarksCorrect:    test.MarksCorrect,
		MarksIncorrect:  test.MarksIncorrect,
		SectionAnalysis: []models.SectionAnalysis{},
		Responses:       make([]models.ReviewResponse, 0, len(questions)),
	}

	sections, err := s.catalog.GetSections(test.ID)
	if err != nil {
		return nil, fmt.Errorf("load sections: %w", err)
	}
	detail.SectionAnalysis = analytics.AnalyzeSections(sections, questions, responses)

	if s.analytics != nil {
		percentile, err := s.analytics.PercentileForScore(test.ID, res.Score)
		if err != nil {
			return nil, fmt.Errorf("compute percentile: %w", err)
		}
		detail.Percentile = percentile
	}

	for _, q := range questions {
		r := byQuestion[q.ID]
		detail.Responses = append(detail.Responses, models.ReviewResponse{
			Question:        q,
			SelectedAnswer:  r.SelectedAnswer,
			IsCorrect:       r.IsCorrect,
			MarkedForReview: r.MarkedForReview,
		})
	}

	return detail, nil
}
