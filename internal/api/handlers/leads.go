package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/nwade/leadvault/internal/api/dto"
	"github.com/nwade/leadvault/internal/api/middleware"
	"github.com/nwade/leadvault/internal/api/validation"
	"github.com/nwade/leadvault/internal/database/models"
	"github.com/nwade/leadvault/internal/leads"
)

type LeadHandler struct {
	service *leads.Service
}

func NewLeadHandler(service *leads.Service) *LeadHandler {
	return &LeadHandler{service: service}
}

// LeadRequest represents the body of create and update requests.
type LeadRequest struct {
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Company        string  `json:"company"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Source         string  `json:"source"`
	Status         string  `json:"status,omitempty"`
	Score          int     `json:"score"`
	LeadValue      float64 `json:"lead_value"`
	LastActivityAt *string `json:"last_activity_at,omitempty"`
	IsQualified    bool    `json:"is_qualified,omitempty"`
}

func (r LeadRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if strings.TrimSpace(r.FirstName) == "" {
		errors["first_name"] = "First name is required"
	}
	if strings.TrimSpace(r.LastName) == "" {
		errors["last_name"] = "Last name is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	} else if !validation.IsValidEmail(strings.TrimSpace(r.Email)) {
		errors["email"] = "Please provide a valid email"
	}
	if strings.TrimSpace(r.Phone) == "" {
		errors["phone"] = "Phone number is required"
	}
	if strings.TrimSpace(r.Company) == "" {
		errors["company"] = "Company is required"
	}
	if strings.TrimSpace(r.City) == "" {
		errors["city"] = "City is required"
	}
	if strings.TrimSpace(r.State) == "" {
		errors["state"] = "State is required"
	}
	if !models.IsValidLeadSource(r.Source) {
		errors["source"] = "Source must be one of: website, facebook_ads, google_ads, referral, events, other"
	}
	if r.Status != "" && !models.IsValidLeadStatus(r.Status) {
		errors["status"] = "Status must be one of: new, contacted, qualified, lost, won"
	}
	if r.Score < 0 || r.Score > 100 {
		errors["score"] = "Score must be an integer between 0 and 100"
	}
	if r.LeadValue < 0 {
		errors["lead_value"] = "Lead value must be a positive number"
	}
	if r.LastActivityAt != nil && *r.LastActivityAt != "" {
		if _, err := time.Parse(time.RFC3339, *r.LastActivityAt); err != nil {
			errors["last_activity_at"] = "Last activity date must be a valid RFC 3339 timestamp"
		}
	}

	return errors
}

func (r LeadRequest) toInput() leads.LeadInput {
	in := leads.LeadInput{
		FirstName:   r.FirstName,
		LastName:    r.LastName,
		Email:       r.Email,
		Phone:       r.Phone,
		Company:     r.Company,
		City:        r.City,
		State:       r.State,
		Source:      r.Source,
		Status:      r.Status,
		Score:       r.Score,
		LeadValue:   r.LeadValue,
		IsQualified: r.IsQualified,
	}
	if r.LastActivityAt != nil && *r.LastActivityAt != "" {
		if t, err := time.Parse(time.RFC3339, *r.LastActivityAt); err == nil {
			in.LastActivityAt = &t
		}
	}
	return in
}

// LeadResponse represents a lead in API responses.
type LeadResponse struct {
	ID             string  `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Email          string  `json:"email"`
	Phone          string  `json:"phone"`
	Company        string  `json:"company"`
	City           string  `json:"city"`
	State          string  `json:"state"`
	Source         string  `json:"source"`
	Status         string  `json:"status"`
	Score          int     `json:"score"`
	LeadValue      float64 `json:"lead_value"`
	LastActivityAt *string `json:"last_activity_at"`
	IsQualified    bool    `json:"is_qualified"`
	CreatedBy      string  `json:"created_by"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

func leadToResponse(lead *models.Lead) LeadResponse {
	resp := LeadResponse{
		ID:          lead.ID.String(),
		FirstName:   lead.FirstName,
		LastName:    lead.LastName,
		Email:       lead.Email,
		Phone:       lead.Phone,
		Company:     lead.Company,
		City:        lead.City,
		State:       lead.State,
		Source:      string(lead.Source),
		Status:      string(lead.Status),
		Score:       lead.Score,
		LeadValue:   lead.LeadValue,
		IsQualified: lead.IsQualified,
		CreatedBy:   lead.CreatedBy.String(),
		CreatedAt:   lead.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   lead.UpdatedAt.Format(time.RFC3339),
	}
	if lead.LastActivityAt != nil {
		s := lead.LastActivityAt.Format(time.RFC3339)
		resp.LastActivityAt = &s
	}
	return resp
}

// parseLeadID validates the {id} URL parameter before parsing it.
func parseLeadID(r *http.Request) (uuid.UUID, bool) {
	id := chi.URLParam(r, "id")
	if !validation.IsValidUUID(id) {
		return uuid.Nil, false
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, false
	}
	return parsed, true
}

// Create handles POST /api/leads
func (h *LeadHandler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	var req LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	lead, err := h.service.Create(r.Context(), ownerID, req.toInput())
	if err != nil {
		switch err {
		case leads.ErrDuplicateEmail:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "A lead with this email already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to create lead"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, leadToResponse(lead))
}

// List handles GET /api/leads
func (h *LeadHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	query, err := leads.ParseListQuery(r.URL.Query())
	if err != nil {
		if qe, ok := err.(*leads.QueryError); ok {
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: qe.Fields})
			return
		}
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid query parameters"})
		return
	}

	result, err := h.service.List(r.Context(), ownerID, query)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch leads"})
		return
	}

	data := make([]LeadResponse, len(result.Leads))
	for i := range result.Leads {
		data[i] = leadToResponse(&result.Leads[i])
	}

	writeJSON(w, http.StatusOK, dto.PaginatedResponse{
		Data:       data,
		Page:       result.Page,
		Limit:      result.Limit,
		Total:      result.Total,
		TotalPages: result.TotalPages,
	})
}

// Get handles GET /api/leads/:id
func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	leadID, ok := parseLeadID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lead ID"})
		return
	}

	lead, err := h.service.Get(r.Context(), ownerID, leadID)
	if err != nil {
		switch err {
		case leads.ErrLeadNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Lead not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to fetch lead"})
		}
		return
	}

	writeJSON(w, http.StatusOK, leadToResponse(lead))
}

// Update handles PUT /api/leads/:id
func (h *LeadHandler) Update(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	leadID, ok := parseLeadID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lead ID"})
		return
	}

	var req LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errors})
		return
	}

	lead, err := h.service.Update(r.Context(), ownerID, leadID, req.toInput())
	if err != nil {
		switch err {
		case leads.ErrLeadNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Lead not found"})
		case leads.ErrDuplicateEmail:
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "A lead with this email already exists"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to update lead"})
		}
		return
	}

	writeJSON(w, http.StatusOK, leadToResponse(lead))
}

// Delete handles DELETE /api/leads/:id
func (h *LeadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ownerID := middleware.GetUserID(r.Context())

	leadID, ok := parseLeadID(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid lead ID"})
		return
	}

	if err := h.service.Delete(r.Context(), ownerID, leadID); err != nil {
		switch err {
		case leads.ErrLeadNotFound:
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Lead not found"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: "Failed to delete lead"})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.SuccessResponse{Message: "Lead deleted successfully"})
}
