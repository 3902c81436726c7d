package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"ajei/internal/config"
	"ajei/internal/database"
	"ajei/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := database.Open(&config.DatabaseConfig{URL: "sqlite:///" + filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(conn) })
	return conn
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func seedSubmission(t *testing.T, db *gorm.DB, sub domain.Submission) domain.Submission {
	t.Helper()
	if sub.Name == "" {
		sub.Name = "Visitor"
	}
	if sub.Email == "" {
		sub.Email = "visitor@example.com"
	}
	if sub.Phone == "" {
		sub.Phone = "0500000000"
	}
	require.NoError(t, db.Create(&sub).Error)
	return sub
}

func seedView(t *testing.T, db *gorm.DB, path, ip, lang string, at time.Time) {
	t.Helper()
	view := domain.PageView{PagePath: path, Language: lang, ViewedAt: at.UTC()}
	if ip != "" {
		view.IPAddress = &ip
	}
	require.NoError(t, db.Create(&view).Error)
}

func investment(t domain.InvestmentType) *domain.InvestmentType {
	return &t
}
