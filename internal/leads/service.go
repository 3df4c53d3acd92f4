package leads

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nwade/leadvault/internal/api/validation"
	"github.com/nwade/leadvault/internal/database/models"
	"gorm.io/gorm"
)

var (
	ErrLeadNotFound   = errors.New("lead not found")
	ErrDuplicateEmail = errors.New("a lead with this email already exists")
)

// MaxBulkSize caps a single bulk ingestion request.
const MaxBulkSize = 1000

type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// LeadInput carries the writable lead fields. Zero values for Status,
// Source, Score, LeadValue and IsQualified mean "apply the default".
type LeadInput struct {
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Company        string
	City           string
	State          string
	Source         string
	Status         string
	Score          int
	LeadValue      float64
	LastActivityAt *time.Time
	IsQualified    bool
}

// BatchFieldError rejects a whole bulk batch because one record is missing
// a mandatory field. No records are inserted when it is returned.
type BatchFieldError struct {
	Index int
}

func (e *BatchFieldError) Error() string {
	return fmt.Sprintf("lead at index %d: first_name and email are required", e.Index)
}

type ListResult struct {
	Leads      []models.Lead
	Page       int
	Limit      int
	Total      int64
	TotalPages int
}

// BulkOutcome summarizes a best-effort bulk insert. DuplicateEmails holds at
// most the first ten conflicting addresses; DuplicateCount is the full count.
type BulkOutcome struct {
	Total           int
	Successful      int
	Failed          int
	DuplicateEmails []string
	DuplicateCount  int
}

// cleanText strips control characters and surrounding whitespace before a
// value is stored.
func cleanText(s string) string {
	return strings.TrimSpace(validation.SanitizeString(s))
}

func (in LeadInput) toModel(owner uuid.UUID) models.Lead {
	lead := models.Lead{
		FirstName:      cleanText(in.FirstName),
		LastName:       cleanText(in.LastName),
		Email:          strings.ToLower(cleanText(in.Email)),
		Phone:          cleanText(in.Phone),
		Company:        cleanText(in.Company),
		City:           cleanText(in.City),
		State:          cleanText(in.State),
		Source:         models.LeadSource(in.Source),
		Status:         models.LeadStatus(in.Status),
		Score:          in.Score,
		LeadValue:      in.LeadValue,
		LastActivityAt: in.LastActivityAt,
		IsQualified:    in.IsQualified,
		CreatedBy:      owner,
	}
	if lead.Status == "" {
		lead.Status = models.LeadStatusNew
	}
	if lead.Source == "" {
		lead.Source = models.LeadSourceOther
	}
	return lead
}

func (s *Service) Create(ctx context.Context, owner uuid.UUID, in LeadInput) (*models.Lead, error) {
	lead := in.toModel(owner)

	if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &lead, nil
}

// Get returns the lead only when owner created it. Foreign ids and absent
// ids are indistinguishable to the caller.
func (s *Service) Get(ctx context.Context, owner, id uuid.UUID) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, owner).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}
	return &lead, nil
}

func (s *Service) List(ctx context.Context, owner uuid.UUID, q *ListQuery) (*ListResult, error) {
	query := q.apply(s.db.WithContext(ctx).Model(&models.Lead{}).Where("created_by = ?", owner))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	var records []models.Lead
	if err := query.
		Order(q.order()).
		Offset(q.offset()).
		Limit(q.Limit).
		Find(&records).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))

	return &ListResult{
		Leads:      records,
		Page:       q.Page,
		Limit:      q.Limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}

func (s *Service) Update(ctx context.Context, owner, id uuid.UUID, in LeadInput) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, owner).
		First(&lead).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeadNotFound
		}
		return nil, err
	}

	updated := in.toModel(owner)
	updated.Base = lead.Base

	if err := s.db.WithContext(ctx).Save(&updated).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &updated, nil
}

func (s *Service) Delete(ctx context.Context, owner, id uuid.UUID) error {
	result := s.db.WithContext(ctx).
		Where("id = ? AND created_by = ?", id, owner).
		Delete(&models.Lead{})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// BulkCreate validates mandatory fields across the whole batch first, then
// inserts record by record, continuing past duplicate-email conflicts. The
// two failure policies are intentionally different: a missing mandatory
// field rejects the entire batch, a conflict only fails its own row.
// rowValid applies the full record rules to a single bulk row. A violation
// fails only that row; the missing first_name/email pre-pass in BulkCreate
// rejects the whole batch before any row is attempted.
func (in LeadInput) rowValid() bool {
	for _, field := range []string{in.LastName, in.Phone, in.Company, in.City, in.State} {
		if strings.TrimSpace(field) == "" {
			return false
		}
	}
	if !validation.IsValidEmail(strings.TrimSpace(in.Email)) {
		return false
	}
	if in.Score < 0 || in.Score > 100 {
		return false
	}
	return in.LeadValue >= 0
}

func (s *Service) BulkCreate(ctx context.Context, owner uuid.UUID, inputs []LeadInput) (*BulkOutcome, error) {
	for i, in := range inputs {
		if strings.TrimSpace(in.FirstName) == "" || strings.TrimSpace(in.Email) == "" {
			return nil, &BatchFieldError{Index: i}
		}
	}

	outcome := &BulkOutcome{Total: len(inputs)}
	var duplicates []string

	for _, in := range inputs {
		if !in.rowValid() {
			outcome.Failed++
			continue
		}

		lead := in.toModel(owner)

		if lead.Status != "" && !models.IsValidLeadStatus(string(lead.Status)) {
			outcome.Failed++
			continue
		}
		if lead.Source != "" && !models.IsValidLeadSource(string(lead.Source)) {
			outcome.Failed++
			continue
		}

		if err := s.db.WithContext(ctx).Create(&lead).Error; err != nil {
			outcome.Failed++
			if isDuplicateKey(err) {
				duplicates = append(duplicates, lead.Email)
			}
			continue
		}
		outcome.Successful++
	}

	outcome.DuplicateCount = len(duplicates)
	if len(duplicates) > 10 {
		duplicates = duplicates[:10]
	}
	outcome.DuplicateEmails = duplicates

	return outcome, nil
}

// isDuplicateKey recognizes unique-constraint violations. TranslateError
// covers postgres; the string checks cover drivers that predate it.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
