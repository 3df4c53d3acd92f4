package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nwade/leadvault/internal/api/dto"
	"github.com/nwade/leadvault/internal/api/middleware"
	"github.com/nwade/leadvault/internal/leads"
)

// BulkLeadsRequest represents the body of POST /api/leads/bulk. Records are
// not validated up front beyond the mandatory-field pre-pass; a record that
// the store rejects only fails its own row.
type BulkLeadsRequest struct {
	Leads []LeadRequest `json:"leads"`
}

type BulkResults struct {
	Total           int      `json:"total"`
	Successful      int      `json:"successful"`
	Failed          int      `json:"failed"`
	DuplicateEmails []string `json:"duplicateEmails"`
	DuplicateCount  int      `json:"duplicateCount"`
}

type BulkLeadsResponse struct {
	Message string      `json:"message"`
	Results BulkResults `json:"results"`
}

// BulkCreate handles POST /api/leads/bulk
func (h *LeadHandler) BulkCreate(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	var req BulkLeadsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if len(req.Leads) == 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Please provide an array of leads"})
		return
	}
	if len(req.Leads) > leads.MaxBulkSize {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
			Error: fmt.Sprintf("Maximum %d leads can be created at once", leads.MaxBulkSize),
		})
		return
	}

	inputs := make([]leads.LeadInput, len(req.Leads))
	for i, record := range req.Leads {
		inputs[i] = record.toInput()
	}

	outcome, err := h.service.BulkCreate(r.Context(), ownerID, inputs)
	if err != nil {
		var fieldErr *leads.BatchFieldError
		if errors.As(err, &fieldErr) {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{
				Error: fmt.Sprintf("Lead at index %d: first_name and email are required", fieldErr.Index),
			})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to bulk create leads"})
		return
	}

	message := fmt.Sprintf("Successfully created %d leads", outcome.Successful)
	if outcome.Failed > 0 {
		message += fmt.Sprintf(", %d failed", outcome.Failed)
		if outcome.DuplicateCount > 0 {
			message += fmt.Sprintf(" (%d duplicate emails)", outcome.DuplicateCount)
		}
	}

	duplicates := outcome.DuplicateEmails
	if duplicates == nil {
		duplicates = []string{}
	}

	writeJSON(w, http.StatusCreated, BulkLeadsResponse{
		Message: message,
		Results: BulkResults{
			Total:           outcome.Total,
			Successful:      outcome.Successful,
			Failed:          outcome.Failed,
			DuplicateEmails: duplicates,
			DuplicateCount:  outcome.DuplicateCount,
		},
	})
}
