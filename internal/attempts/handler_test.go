package attempts

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteServiceErrorMapping(t *testing.T) {
	h := &Handler{}

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"test not found", ErrTestNotFound, http.StatusNotFound},
		{"result not found", ErrResultNotFound, http.StatusNotFound},
		{"no active attempt", ErrNoActiveAttempt, http.StatusNotFound},
		{"invalid input wrapped", fmt.Errorf("%w: bad option", ErrInvalidInput), http.StatusBadRequest},
		{"finalize conflict wrapped", fmt.Errorf("finalize submission: %w", ErrAttemptFinalized), http.StatusConflict},
		{"unknown error", errors.New("connection reset"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.writeServiceError(rec, "Submit", tt.err)
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
