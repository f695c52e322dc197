// Package http exposes the question bank, evaluation, and progress
// operations over REST and websocket.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"gatebank/internal/answers"
	"gatebank/internal/bank"
	"gatebank/internal/domain"
	"gatebank/internal/filter"
	"gatebank/internal/progress"
)

// Handler serves the REST API.
type Handler struct {
	bank    *bank.Service
	answers *answers.Store
	tracker *progress.Tracker
}

func NewHandler(bankSvc *bank.Service, store *answers.Store, tracker *progress.Tracker) *Handler {
	return &Handler{bank: bankSvc, answers: store, tracker: tracker}
}

// Register wires all routes onto the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", h.handleHealth)
	mux.HandleFunc("GET /questions", h.handleQuestions)
	mux.HandleFunc("GET /questions/{uid}", h.handleQuestion)
	mux.HandleFunc("GET /facets", h.handleFacets)
	mux.HandleFunc("POST /evaluate", h.handleEvaluate)
	mux.HandleFunc("GET /progress", h.handleProgress)
	mux.HandleFunc("POST /progress/solved", h.handleToggleSolved)
	mux.HandleFunc("POST /progress/bookmark", h.handleToggleBookmark)
	mux.HandleFunc("GET /progress/export", h.handleExport)
	mux.HandleFunc("POST /progress/import", h.handleImport)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type questionsResponse struct {
	Total     int                        `json:"total"`
	Count     int                        `json:"count"`
	Questions []domain.CanonicalQuestion `json:"questions"`
}

func (h *Handler) handleQuestions(w http.ResponseWriter, r *http.Request) {
	state := filter.DecodeQuery(r.URL.Query())
	matched := filter.Apply(h.bank.Questions(), state, h.tracker)
	writeJSON(w, http.StatusOK, questionsResponse{
		Total:     h.bank.Len(),
		Count:     len(matched),
		Questions: matched,
	})
}

func (h *Handler) handleQuestion(w http.ResponseWriter, r *http.Request) {
	q, err := h.bank.GetByUID(r.PathValue("uid"))
	if errors.Is(err, domain.ErrQuestionNotFound) {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (h *Handler) handleFacets(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.bank.Facets())
}

type evaluateRequest struct {
	UID    string   `json:"uid"`
	Value  string   `json:"value,omitempty"`
	Values []string `json:"values,omitempty"`
}

type evaluateResponse struct {
	UID    string            `json:"uid"`
	Result domain.EvalResult `json:"result"`
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	q, err := h.bank.GetByUID(req.UID)
	if errors.Is(err, domain.ErrQuestionNotFound) {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	record := h.answers.LookupQuestion(q)
	result := answers.Evaluate(record, answers.Submission{Value: req.Value, Values: req.Values})
	if result.Status == domain.EvalEvaluated && result.Correct {
		if err := h.tracker.MarkSolved(r.Context(), q.UID); err != nil {
			log.Printf("mark solved %s: %v", q.UID, err)
		}
	}
	writeJSON(w, http.StatusOK, evaluateResponse{UID: q.UID, Result: result})
}

func (h *Handler) handleProgress(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.tracker.Snapshot())
}

type toggleRequest struct {
	UID string `json:"uid"`
}

func (h *Handler) handleToggleSolved(w http.ResponseWriter, r *http.Request) {
	h.handleToggle(w, r, h.tracker.ToggleSolved)
}

func (h *Handler) handleToggleBookmark(w http.ResponseWriter, r *http.Request) {
	h.handleToggle(w, r, h.tracker.ToggleBookmark)
}

func (h *Handler) handleToggle(w http.ResponseWriter, r *http.Request, toggle func(ctx context.Context, uid string) (bool, error)) {
	var req toggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UID == "" {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := h.bank.GetByUID(req.UID); err != nil {
		writeError(w, http.StatusNotFound, "question not found")
		return
	}
	on, err := toggle(r.Context(), req.UID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"uid": req.UID, "on": on})
}

func (h *Handler) handleExport(w http.ResponseWriter, _ *http.Request) {
	payload, err := h.tracker.Export()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="progress.json"`)
	_, _ = w.Write(payload)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "payload too large")
		return
	}
	mode := progress.ImportMode(r.URL.Query().Get("mode"))

	result, err := h.tracker.Import(r.Context(), payload, mode)
	if err != nil {
		var transferErr *progress.TransferError
		if errors.As(err, &transferErr) {
			writeJSON(w, importStatus(transferErr.Reason), map[string]string{"error": transferErr.Reason})
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func importStatus(reason string) int {
	switch reason {
	case progress.ReasonInvalidJSON, progress.ReasonUnsupportedSchema:
		return http.StatusBadRequest
	case progress.ReasonStorageUnavailable:
		return http.StatusServiceUnavailable
	case progress.ReasonQuotaExceeded:
		return http.StatusInsufficientStorage
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
