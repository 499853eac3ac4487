package attempts

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/mockexam/backend/internal/models"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// getUserID extracts the authenticated user ID from the request context.
func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (h *Handler) SaveProgress(w http.ResponseWriter, r *http.Request) {
	testID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid test ID"})
		return
	}

	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SaveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if err := h.service.SaveProgress(r.Context(), userID, testID, req); err != nil {
		h.writeServiceError(w, "SaveProgress", err)
		return
	}

	writeJSON(w, http.StatusOK, models.SaveProgressResponse{Status: "saved"})
}

func (h *Handler) Resume(w http.ResponseWriter, r *http.Request) {
	testID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid test ID"})
		return
	}

	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	resume, err := h.service.Resume(r.Context(), userID, testID)
	if err != nil {
		h.writeServiceError(w, "Resume", err)
		return
	}

	writeJSON(w, http.StatusOK, resume)
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	testID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid test ID"})
		return
	}

	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	result, err := h.service.Submit(r.Context(), userID, testID, req)
	if err != nil {
		h.writeServiceError(w, "Submit", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) GetResult(w http.ResponseWriter, r *http.Request) {
	resultID, err := pathID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid result ID"})
		return
	}

	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	result, err := h.service.GetResult(r.Context(), userID, resultID)
	if err != nil {
		h.writeServiceError(w, "GetResult", err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrTestNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Test not found"})
	case errors.Is(err, ErrResultNotFound):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Result not found"})
	case errors.Is(err, ErrNoActiveAttempt):
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "No attempt in progress"})
	case errors.Is(err, ErrInvalidInput):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, ErrAttemptFinalized):
		writeJSON(w, http.StatusConflict, models.ErrorResponse{Error: "Submission conflict, please retry"})
	default:
		log.Printf("[attempts] %s: %v", op, err)
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
