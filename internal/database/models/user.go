package models

type User struct {
	Base
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`

	// Relationships
	Leads []Lead `gorm:"foreignKey:CreatedBy" json:"-"`
}

func (User) TableName() string {
	return "users"
}
