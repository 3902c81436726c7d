package domain

import "time"

// SettingContactFormEnabled gates whether the public form accepts submissions.
const SettingContactFormEnabled = "ENABLE_CONTACT_FORM"

// SiteSetting is a runtime-editable key/value setting.
type SiteSetting struct {
	Key       string    `gorm:"primaryKey;size:100" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for SiteSetting
func (SiteSetting) TableName() string {
	return "site_settings"
}
