package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/salutethegenius/bahamasopendata/internal/rag"
	"github.com/salutethegenius/bahamasopendata/pkg/logging"
)

// AskRequest is the question payload.
type AskRequest struct {
	Question   string `json:"question"`
	FiscalYear string `json:"fiscal_year,omitempty"`
}

type AskHandler struct {
	service *rag.Service
	log     *logging.Logger
}

func NewAskHandler(service *rag.Service) *AskHandler {
	return &AskHandler{
		service: service,
		log:     logging.New("ask_handler"),
	}
}

// Ask answers a natural-language question about the budget.
//
// @Summary      Ask a budget question
// @Description  Retrieval-augmented answer with citations to the source PDF page
// @Accept       json
// @Produce      json
// @Param        request body AskRequest true "question"
// @Success      200 {object} answer.Answer
// @Failure      400 {string} string "bad request"
// @Router       /api/ask [post]
func (h *AskHandler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	result := h.service.Ask(r.Context(), req.Question, req.FiscalYear)
	writeJSON(w, http.StatusOK, result)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
