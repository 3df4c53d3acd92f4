package models

import (
	"time"

	"github.com/google/uuid"
)

type LeadSource string

const (
	LeadSourceWebsite     LeadSource = "website"
	LeadSourceFacebookAds LeadSource = "facebook_ads"
	LeadSourceGoogleAds   LeadSource = "google_ads"
	LeadSourceReferral    LeadSource = "referral"
	LeadSourceEvents      LeadSource = "events"
	LeadSourceOther       LeadSource = "other"
)

type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusQualified LeadStatus = "qualified"
	LeadStatusLost      LeadStatus = "lost"
	LeadStatusWon       LeadStatus = "won"
)

var leadSources = map[LeadSource]bool{
	LeadSourceWebsite:     true,
	LeadSourceFacebookAds: true,
	LeadSourceGoogleAds:   true,
	LeadSourceReferral:    true,
	LeadSourceEvents:      true,
	LeadSourceOther:       true,
}

var leadStatuses = map[LeadStatus]bool{
	LeadStatusNew:       true,
	LeadStatusContacted: true,
	LeadStatusQualified: true,
	LeadStatusLost:      true,
	LeadStatusWon:       true,
}

func IsValidLeadSource(s string) bool {
	return leadSources[LeadSource(s)]
}

func IsValidLeadStatus(s string) bool {
	return leadStatuses[LeadStatus(s)]
}

type Lead struct {
	Base
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`

	// Uniqueness is global across all owners, not per owner.
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	Phone   string `gorm:"not null" json:"phone"`
	Company string `gorm:"not null;index" json:"company"`
	City    string `gorm:"not null" json:"city"`
	State   string `gorm:"not null" json:"state"`

	Source LeadSource `gorm:"not null;index" json:"source"`
	Status LeadStatus `gorm:"not null;index;default:'new'" json:"status"`

	Score          int        `gorm:"default:0" json:"score"`
	LeadValue      float64    `gorm:"default:0" json:"lead_value"`
	LastActivityAt *time.Time `json:"last_activity_at"`
	IsQualified    bool       `gorm:"default:false" json:"is_qualified"`

	CreatedBy uuid.UUID `gorm:"type:uuid;index;not null" json:"created_by"`

	// Relationships
	Creator *User `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (Lead) TableName() string {
	return "leads"
}
