package domain

import (
	"time"

	"gorm.io/gorm"
)

// PageView is one recorded render of a public page. Rows are append-only.
type PageView struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	PagePath   string    `gorm:"size:500;not null;index" json:"page_path"`
	PageTitle  string    `gorm:"size:200" json:"page_title"`
	IPAddress  *string   `gorm:"size:45;index" json:"ip_address"`
	UserAgent  string    `gorm:"type:text" json:"user_agent"`
	Referrer   string    `gorm:"size:500" json:"referrer"`
	SessionKey string    `gorm:"size:100" json:"session_key"`
	Language   string    `gorm:"size:10" json:"language"`
	ViewedAt   time.Time `gorm:"not null;index" json:"viewed_at"`
}

// TableName specifies the table name for PageView
func (PageView) TableName() string {
	return "page_views"
}

// BeforeCreate hook
func (v *PageView) BeforeCreate(tx *gorm.DB) error {
	if v.ViewedAt.IsZero() {
		v.ViewedAt = tx.Statement.DB.NowFunc()
	}
	return nil
}
