package domain

import (
	"time"

	"gorm.io/gorm"
)

// Submission is a lead captured by the public contact form.
type Submission struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	Name           string          `gorm:"size:200;not null" json:"name"`
	Email          string          `gorm:"size:254;not null;index" json:"email"`
	Phone          string          `gorm:"size:20;not null" json:"phone"`
	InvestmentType *InvestmentType `gorm:"size:20" json:"investment_type"`
	Message        string          `gorm:"type:text" json:"message"`
	Status         Status          `gorm:"size:20;not null;default:'new';index" json:"status"`
	Notes          string          `gorm:"type:text" json:"notes"`
	IPAddress      *string         `gorm:"size:45" json:"ip_address"`
	UserAgent      string          `gorm:"type:text" json:"user_agent"`
	Referrer       string          `gorm:"size:500" json:"referrer"`
	CreatedAt      time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
	// ContactedAt is stamped by the bulk "mark as contacted" action only.
	ContactedAt *time.Time `json:"contacted_at"`
}

// TableName specifies the table name for Submission
func (Submission) TableName() string {
	return "contact_submissions"
}

// BeforeCreate hook
func (s *Submission) BeforeCreate(tx *gorm.DB) error {
	if s.Status == "" {
		s.Status = StatusNew
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = tx.Statement.DB.NowFunc()
	}
	if s.UpdatedAt.Before(s.CreatedAt) {
		s.UpdatedAt = s.CreatedAt
	}
	return nil
}

// InvestmentLabel returns the display label or "N/A" when no type was chosen.
func (s *Submission) InvestmentLabel() string {
	if s.InvestmentType == nil || *s.InvestmentType == "" {
		return "N/A"
	}
	return s.InvestmentType.Label()
}
