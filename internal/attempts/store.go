package attempts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mockexam/backend/internal/models"
	"github.com/shopspring/decimal"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const resultColumns = `id, user_id, test_id, score, is_completed, time_remaining,
	        completed_at, last_updated, created_at`

func scanResult(row *sql.Row) (*models.TestResult, error) {
	var res models.TestResult
	err := row.Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.IsCompleted,
		&res.TimeRemaining, &res.CompletedAt, &res.LastUpdated, &res.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// GetActiveAttempt returns the non-completed attempt for (user, test),
// or nil when there is none.
func (s *Store) GetActiveAttempt(userID, testID int64) (*models.TestResult, error) {
	res, err := scanResult(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM test_results
		 WHERE user_id = $1 AND test_id = $2 AND NOT is_completed`, resultColumns),
		userID, testID,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active attempt: %w", err)
	}
	return res, nil
}

// GetOrCreateActiveAttempt atomically creates the active attempt if
// none exists. The conditional insert targets the partial unique index
// on (user_id, test_id) WHERE NOT is_completed, so two racing callers
// end up reading the same row instead of creating two.
func (s *Store) GetOrCreateActiveAttempt(userID, testID int64, initialTimeRemaining int) (*models.TestResult, error) {
	// A concurrent submit can finalize the row between the insert and
	// the read-back; one more round creates a fresh attempt instead of
	// failing the request.
	for try := 0; try < 2; try++ {
		_, err := s.db.Exec(
			`INSERT INTO test_results (user_id, test_id, score, time_remaining)
			 VALUES ($1, $2, 0, $3)
			 ON CONFLICT (user_id, test_id) WHERE NOT is_completed DO NOTHING`,
			userID, testID, initialTimeRemaining,
		)
		if err != nil {
			return nil, fmt.Errorf("create attempt: %w", err)
		}

		res, err := s.GetActiveAttempt(userID, testID)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	return nil, fmt.Errorf("attempt vanished after create for user %d test %d", userID, testID)
}

// UpdateTimeRemaining overwrites the checkpointed timer. The client is
// the time authority while the attempt is in progress; negative values
// are clamped to zero.
func (s *Store) UpdateTimeRemaining(resultID int64, seconds int) error {
	if seconds < 0 {
		seconds = 0
	}
	_, err := s.db.Exec(
		`UPDATE test_results SET time_remaining = $2, last_updated = NOW() WHERE id = $1`,
		resultID, seconds,
	)
	return err
}

// UpsertResponse saves one answer checkpoint. Correctness stays false
// until final scoring so the answer key never leaks mid-attempt.
func (s *Store) UpsertResponse(resultID, questionID int64, selected *string, markedForReview bool) error {
	_, err := s.db.Exec(
		`INSERT INTO responses (result_id, question_id, selected_answer, marked_for_review, is_correct)
		 VALUES ($1, $2, $3, $4, FALSE)
		 ON CONFLICT (result_id, question_id)
		 DO UPDATE SET selected_answer = $3, marked_for_review = $4`,
		resultID, questionID, selected, markedForReview,
	)
	if err != nil {
		return fmt.Errorf("upsert response: %w", err)
	}
	return nil
}

// TouchAttempt bumps last_updated after an autosave batch.
func (s *Store) TouchAttempt(resultID int64) error {
	_, err := s.db.Exec(
		`UPDATE test_results SET last_updated = NOW() WHERE id = $1`,
		resultID,
	)
	return err
}

// SubmitTx finalizes an attempt in one transaction: the existing
// response rows are replaced wholesale with the scored set, duplicate
// active attempts left behind by racing autosaves are pruned, and the
// attempt is marked completed. A crash mid-way leaves the
// pre-submission state intact. Returns ErrAttemptFinalized when a
// concurrent submission already completed the attempt.
func (s *Store) SubmitTx(ctx context.Context, resultID, userID, testID int64, score decimal.Decimal, staged []models.Response) (*models.TestResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM responses WHERE result_id = $1`, resultID); err != nil {
		return nil, fmt.Errorf("clear responses: %w", err)
	}

	for _, resp := range staged {
		_, err := tx.Exec(
			`INSERT INTO responses (result_id, question_id, selected_answer, marked_for_review, is_correct)
			 VALUES ($1, $2, $3, $4, $5)`,
			resultID, resp.QuestionID, resp.SelectedAnswer, resp.MarkedForReview, resp.IsCorrect,
		)
		if err != nil {
			return nil, fmt.Errorf("insert response: %w", err)
		}
	}

	// Reconcile the one-active-attempt invariant before finalizing.
	if _, err := tx.Exec(
		`DELETE FROM test_results
		 WHERE user_id = $1 AND test_id = $2 AND NOT is_completed AND id <> $3`,
		userID, testID, resultID,
	); err != nil {
		return nil, fmt.Errorf("prune duplicate attempts: %w", err)
	}

	// The NOT is_completed guard keeps a racing double-submit from
	// rewriting a record another transaction already finalized.
	var res models.TestResult
	err = tx.QueryRow(
		fmt.Sprintf(`UPDATE test_results
		 SET score = $2, is_completed = TRUE, time_remaining = 0,
		     completed_at = NOW(), last_updated = NOW()
		 WHERE id = $1 AND NOT is_completed
		 RETURNING %s`, resultColumns),
		resultID, score,
	).Scan(&res.ID, &res.UserID, &res.TestID, &res.Score, &res.IsCompleted,
		&res.TimeRemaining, &res.CompletedAt, &res.LastUpdated, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAttemptFinalized
	}
	if err != nil {
		return nil, fmt.Errorf("finalize attempt: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit submission: %w", err)
	}
	return &res, nil
}

func (s *Store) GetResultForUser(resultID, userID int64) (*models.TestResult, error) {
	res, err := scanResult(s.db.QueryRow(
		fmt.Sprintf(`SELECT %s FROM test_results WHERE id = $1 AND user_id = $2`, resultColumns),
		resultID, userID,
	))
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Store) GetResponses(resultID int64) ([]models.Response, error) {
	rows, err := s.db.Query(
		`SELECT id, result_id, question_id, selected_answer, marked_for_review, is_correct
		 FROM responses WHERE result_id = $1 ORDER BY question_id`,
		resultID,
	)
	if err != nil {
		return nil, fmt.Errorf("get responses: %w", err)
	}
	defer rows.Close()

	var responses []models.Response
	for rows.Next() {
		var r models.Response
		if err := rows.Scan(&r.ID, &r.ResultID, &r.QuestionID,
			&r.SelectedAnswer, &r.MarkedForReview, &r.IsCorrect); err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		responses = append(responses, r)
	}
	return responses, rows.Err()
}
