package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ajei/internal/domain"
	apperrors "ajei/pkg/errors"
)

// SettingsService reads and writes runtime site settings.
type SettingsService struct {
	db                 *gorm.DB
	contactFormDefault bool
	log                *slog.Logger
}

// NewSettingsService creates the service. contactFormDefault applies until a
// value is stored.
func NewSettingsService(db *gorm.DB, contactFormDefault bool) *SettingsService {
	return &SettingsService{
		db:                 db,
		contactFormDefault: contactFormDefault,
		log:                slog.Default().With("component", "settings"),
	}
}

// ContactFormEnabled returns the current value of the contact-form flag.
func (s *SettingsService) ContactFormEnabled(ctx context.Context) (bool, error) {
	var setting domain.SiteSetting
	err := s.db.WithContext(ctx).Where("key = ?", domain.SettingContactFormEnabled).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return s.contactFormDefault, nil
	}
	if err != nil {
		return false, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to read contact form setting", err)
	}
	enabled, err := strconv.ParseBool(setting.Value)
	if err != nil {
		s.log.Warn("invalid stored setting, using default", "key", setting.Key, "value", setting.Value)
		return s.contactFormDefault, nil
	}
	return enabled, nil
}

// SetContactFormEnabled stores the flag.
func (s *SettingsService) SetContactFormEnabled(ctx context.Context, enabled bool) error {
	setting := domain.SiteSetting{
		Key:   domain.SettingContactFormEnabled,
		Value: strconv.FormatBool(enabled),
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to save contact form setting", err)
	}
	s.log.Info("contact form setting changed", "enabled", enabled)
	return nil
}
