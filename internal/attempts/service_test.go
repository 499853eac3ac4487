package attempts

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/mockexam/backend/internal/models"
	"github.com/shopspring/decimal"
)

func TestValidateEntries(t *testing.T) {
	tests := []struct {
		name    string
		entries []models.ResponseEntry
		wantErr bool
	}{
		{"empty batch", nil, false},
		{"valid answers", []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: "a"},
			{QuestionID: 2, SelectedAnswer: "D"},
		}, false},
		{"blank answer allowed", []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: ""},
		}, false},
		{"whitespace trimmed", []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: " b "},
		}, false},
		{"missing question id", []models.ResponseEntry{
			{SelectedAnswer: "a"},
		}, true},
		{"option out of range", []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: "e"},
		}, true},
		{"one bad entry rejects batch", []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: "a"},
			{QuestionID: 2, SelectedAnswer: "x"},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateEntries(tt.entries)
			if tt.wantErr && !errors.Is(err, ErrInvalidInput) {
				t.Errorf("validateEntries() = %v, want ErrInvalidInput", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("validateEntries() = %v, want nil", err)
			}
		})
	}
}

func TestValidateMembership(t *testing.T) {
	ids := map[int64]bool{1: true, 2: true}

	if err := validateMembership([]models.ResponseEntry{{QuestionID: 1}, {QuestionID: 2}}, ids); err != nil {
		t.Errorf("validateMembership() = %v, want nil for test's own questions", err)
	}
	err := validateMembership([]models.ResponseEntry{{QuestionID: 1}, {QuestionID: 99}}, ids)
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("validateMembership() = %v, want ErrInvalidInput for foreign question", err)
	}
}

// ── fakes ───────────────────────────────────────────────

type fakeCatalog struct {
	test      *models.Test
	sections  []models.Section
	questions []models.Question
	ids       map[int64]bool
}

func (f *fakeCatalog) GetTest(int64) (*models.Test, error)           { return f.test, nil }
func (f *fakeCatalog) GetSections(int64) ([]models.Section, error)   { return f.sections, nil }
func (f *fakeCatalog) GetQuestions(int64) ([]models.Question, error) { return f.questions, nil }
func (f *fakeCatalog) GetQuestionIDs(int64) (map[int64]bool, error)  { return f.ids, nil }

type fakeStore struct {
	nextID      int64
	submitErrs  []error
	createCalls int
	submitCalls int
	upserts     []int64
	touched     int
}

func (f *fakeStore) GetActiveAttempt(userID, testID int64) (*models.TestResult, error) {
	return nil, nil
}

func (f *fakeStore) GetOrCreateActiveAttempt(userID, testID int64, initialTimeRemaining int) (*models.TestResult, error) {
	f.createCalls++
	f.nextID++
	return &models.TestResult{
		ID: f.nextID, UserID: userID, TestID: testID, TimeRemaining: initialTimeRemaining,
	}, nil
}

func (f *fakeStore) UpdateTimeRemaining(int64, int) error { return nil }
func (f *fakeStore) TouchAttempt(int64) error             { f.touched++; return nil }

func (f *fakeStore) UpsertResponse(resultID, questionID int64, selected *string, markedForReview bool) error {
	f.upserts = append(f.upserts, questionID)
	return nil
}

func (f *fakeStore) SubmitTx(_ context.Context, resultID, userID, testID int64, score decimal.Decimal, staged []models.Response) (*models.TestResult, error) {
	f.submitCalls++
	if len(f.submitErrs) > 0 {
		err := f.submitErrs[0]
		f.submitErrs = f.submitErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	now := time.Now()
	return &models.TestResult{
		ID: resultID, UserID: userID, TestID: testID,
		Score: score, IsCompleted: true, CompletedAt: &now,
	}, nil
}

func (f *fakeStore) GetResultForUser(int64, int64) (*models.TestResult, error) {
	return nil, sql.ErrNoRows
}

func (f *fakeStore) GetResponses(int64) ([]models.Response, error) { return nil, nil }

func fakeCatalogTwoQuestions() *fakeCatalog {
	return &fakeCatalog{
		test:      sampleTest("1", "0.5"),
		sections:  []models.Section{{ID: 1, TestID: 1, Name: "General", QuestionCount: 2}},
		questions: sampleQuestions("a", "b"),
		ids:       map[int64]bool{1: true, 2: true},
	}
}

// ── service behavior ────────────────────────────────────

func TestSubmitScoresFreshAttemptAfterRacingFinalize(t *testing.T) {
	// The first finalize loses to a concurrent submit; the second run
	// must score a new attempt rather than fail or mutate the winner.
	store := &fakeStore{submitErrs: []error{ErrAttemptFinalized}}
	svc := &Service{store: store, catalog: fakeCatalogTwoQuestions()}

	detail, err := svc.Submit(context.Background(), 7, 1, models.SubmitRequest{
		Responses: []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: "a"},
			{QuestionID: 2, SelectedAnswer: "c"},
		},
	})
	if err != nil {
		t.Fatalf("Submit() = %v, want recovery on retry", err)
	}

	if store.createCalls != 2 || store.submitCalls != 2 {
		t.Errorf("create/submit calls = %d/%d, want 2/2", store.createCalls, store.submitCalls)
	}
	if detail.ID != 2 {
		t.Errorf("result attempt id = %d, want the fresh attempt (2)", detail.ID)
	}
	if !detail.Score.Equal(decimal.RequireFromString("0.5")) {
		t.Errorf("Score = %s, want 0.5", detail.Score)
	}
}

func TestSubmitConflictSurfacesAfterRetry(t *testing.T) {
	store := &fakeStore{submitErrs: []error{ErrAttemptFinalized, ErrAttemptFinalized}}
	svc := &Service{store: store, catalog: fakeCatalogTwoQuestions()}

	_, err := svc.Submit(context.Background(), 7, 1, models.SubmitRequest{
		Responses: []models.ResponseEntry{{QuestionID: 1, SelectedAnswer: "a"}},
	})
	if !errors.Is(err, ErrAttemptFinalized) {
		t.Errorf("Submit() = %v, want ErrAttemptFinalized after exhausted retry", err)
	}
	if store.submitCalls != 2 {
		t.Errorf("submit calls = %d, want exactly one retry", store.submitCalls)
	}
}

func TestSubmitRejectsForeignQuestion(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{store: store, catalog: fakeCatalogTwoQuestions()}

	_, err := svc.Submit(context.Background(), 7, 1, models.SubmitRequest{
		Responses: []models.ResponseEntry{{QuestionID: 99, SelectedAnswer: "a"}},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Submit() = %v, want ErrInvalidInput for foreign question", err)
	}
	if store.createCalls != 0 {
		t.Errorf("createCalls = %d, want no attempt created for rejected batch", store.createCalls)
	}
}

func TestSaveProgressRejectsForeignQuestion(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{store: store, catalog: fakeCatalogTwoQuestions()}

	err := svc.SaveProgress(context.Background(), 7, 1, models.SaveProgressRequest{
		Responses: []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: "a"},
			{QuestionID: 99, SelectedAnswer: "b"},
		},
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Errorf("SaveProgress() = %v, want ErrInvalidInput for foreign question", err)
	}
	if store.createCalls != 0 || len(store.upserts) != 0 {
		t.Errorf("createCalls = %d, upserts = %v; rejected batch must not write",
			store.createCalls, store.upserts)
	}
}

func TestSaveProgressUpsertsValidEntries(t *testing.T) {
	store := &fakeStore{}
	svc := &Service{store: store, catalog: fakeCatalogTwoQuestions()}

	err := svc.SaveProgress(context.Background(), 7, 1, models.SaveProgressRequest{
		Responses: []models.ResponseEntry{
			{QuestionID: 1, SelectedAnswer: "a"},
			{QuestionID: 2, SelectedAnswer: "", MarkedForReview: true},
		},
	})
	if err != nil {
		t.Fatalf("SaveProgress() = %v, want nil", err)
	}
	if len(store.upserts) != 2 {
		t.Errorf("upserts = %v, want both entries saved", store.upserts)
	}
	if store.touched != 1 {
		t.Errorf("touched = %d, want last_updated bumped when no timer sent", store.touched)
	}
}
