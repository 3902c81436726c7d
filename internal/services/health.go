package services

import (
	"context"
	"log/slog"

	"gorm.io/gorm"

	"ajei/internal/database"
)

// HealthResult is the body of GET /health.
type HealthResult struct {
	Status   string `json:"status"`
	Service  string `json:"service"`
	Version  string `json:"version"`
	Database string `json:"database"`
}

// HealthService reports process and database liveness.
type HealthService struct {
	db      *gorm.DB
	service string
	version string
}

// NewHealthService creates a new health service
func NewHealthService(db *gorm.DB, service, version string) *HealthService {
	return &HealthService{db: db, service: service, version: version}
}

// Check pings the database. Healthy reports whether every dependency answered.
func (s *HealthService) Check(ctx context.Context) (result *HealthResult, healthy bool) {
	result = &HealthResult{
		Status:   "healthy",
		Service:  s.service,
		Version:  s.version,
		Database: "ok",
	}
	if err := database.HealthCheck(s.db.WithContext(ctx)); err != nil {
		slog.Default().Warn("health check failed", "component", "db", "error", err)
		result.Status = "unhealthy"
		result.Database = "unreachable"
		return result, false
	}
	return result, true
}
