package analytics

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mockexam/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) TestExists(testID int64) (bool, error) {
	var exists bool
	err := s.db.QueryRow(
		`SELECT EXISTS(SELECT 1 FROM tests WHERE id = $1)`,
		testID,
	).Scan(&exists)
	return exists, err
}

const completedAttemptQuery = `
	SELECT r.id, r.user_id, u.name, r.score, r.time_remaining, r.completed_at,
	       COUNT(resp.id) FILTER (WHERE resp.selected_answer IS NOT NULL) AS attempted,
	       COUNT(resp.id) FILTER (WHERE resp.is_correct) AS correct
	FROM test_results r
	JOIN users u ON u.id = r.user_id
	LEFT JOIN responses resp ON resp.result_id = r.id
	WHERE r.is_completed AND %s
	GROUP BY r.id, u.name
	ORDER BY r.id`

func (s *Store) scanCompletedAttempts(rows *sql.Rows) ([]models.CompletedAttempt, error) {
	var attempts []models.CompletedAttempt
	for rows.Next() {
		var a models.CompletedAttempt
		if err := rows.Scan(&a.AttemptID, &a.UserID, &a.StudentName, &a.Score,
			&a.TimeRemaining, &a.CompletedAt, &a.Attempted, &a.Correct); err != nil {
			return nil, fmt.Errorf("scan completed attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// CompletedAttemptsForTest returns every completed attempt on a test,
// joined with the owner and response counts. Ranking reads are
// snapshots; they tolerate submissions landing concurrently.
func (s *Store) CompletedAttemptsForTest(testID int64) ([]models.CompletedAttempt, error) {
	rows, err := s.db.Query(fmt.Sprintf(completedAttemptQuery, "r.test_id = $1"), testID)
	if err != nil {
		return nil, fmt.Errorf("completed attempts for test: %w", err)
	}
	defer rows.Close()
	return s.scanCompletedAttempts(rows)
}

func (s *Store) CompletedAttemptsForUser(userID int64) ([]models.CompletedAttempt, error) {
	rows, err := s.db.Query(fmt.Sprintf(completedAttemptQuery, "r.user_id = $1"), userID)
	if err != nil {
		return nil, fmt.Errorf("completed attempts for user: %w", err)
	}
	defer rows.Close()
	return s.scanCompletedAttempts(rows)
}

// CompletionDates returns the distinct calendar dates (UTC) on which
// the user completed at least one attempt.
func (s *Store) CompletionDates(userID int64) ([]time.Time, error) {
	rows, err := s.db.Query(
		`SELECT DISTINCT DATE(completed_at AT TIME ZONE 'UTC')
		 FROM test_results
		 WHERE user_id = $1 AND is_completed
		 ORDER BY 1 DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("completion dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan completion date: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// LatestActiveAttempt returns the user's most recently touched
// in-progress attempt, or nil when nothing is resumable.
func (s *Store) LatestActiveAttempt(userID int64) (*models.ResumableAttempt, error) {
	var ra models.ResumableAttempt
	err := s.db.QueryRow(
		`SELECT r.id, r.test_id, t.title, r.time_remaining, r.last_updated
		 FROM test_results r
		 JOIN tests t ON t.id = r.test_id
		 WHERE r.user_id = $1 AND NOT r.is_completed
		 ORDER BY r.last_updated DESC
		 LIMIT 1`,
		userID,
	).Scan(&ra.ResultID, &ra.TestID, &ra.TestTitle, &ra.TimeRemaining, &ra.LastUpdated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest active attempt: %w", err)
	}
	return &ra, nil
}

// SeriesProgress counts completed tests per series for the user.
func (s *Store) SeriesProgress(userID int64) ([]models.SeriesProgress, error) {
	rows, err := s.db.Query(
		`SELECT ts.id, ts.name, COUNT(DISTINCT t.id),
		        COUNT(DISTINCT r.test_id)
		 FROM test_series ts
		 JOIN tests t ON t.series_id = ts.id
		 LEFT JOIN test_results r ON r.test_id = t.id AND r.user_id = $1 AND r.is_completed
		 GROUP BY ts.id, ts.name
		 ORDER BY ts.id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("series progress: %w", err)
	}
	defer rows.Close()

	var progress []models.SeriesProgress
	for rows.Next() {
		var p models.SeriesProgress
		if err := rows.Scan(&p.SeriesID, &p.SeriesName, &p.TotalTests, &p.Completed); err != nil {
			return nil, fmt.Errorf("scan series progress: %w", err)
		}
		progress = append(progress, p)
	}
	return progress, rows.Err()
}
