package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"

	"ajei/internal/domain"
	"ajei/internal/metrics"
	apperrors "ajei/pkg/errors"
)

// ContactsPerPage is the dashboard list page size.
const ContactsPerPage = 25

// ContactFilter selects submissions for the dashboard list.
type ContactFilter struct {
	Status string
	Search string
	Page   int
}

// ContactPage is one page of the filtered list.
type ContactPage struct {
	Items  []domain.Submission
	Total  int64
	Page   int
	Pages  int
	Status domain.Status
	Search string
}

// HasPrev reports whether a previous page exists.
func (p *ContactPage) HasPrev() bool { return p.Page > 1 }

// HasNext reports whether a following page exists.
func (p *ContactPage) HasNext() bool { return p.Page < p.Pages }

// ContactService serves the dashboard's submission views and status changes.
type ContactService struct {
	db  *gorm.DB
	now func() time.Time
	log *slog.Logger
}

// NewContactService creates a new contact service
func NewContactService(db *gorm.DB) *ContactService {
	return &ContactService{
		db:  db,
		now: time.Now,
		log: slog.Default().With("component", "contact"),
	}
}

// List returns one page of submissions, newest first. Unknown status values
// are ignored; search matches name, email or phone case-insensitively.
func (s *ContactService) List(ctx context.Context, f ContactFilter) (*ContactPage, error) {
	q := s.db.WithContext(ctx).Model(&domain.Submission{})

	page := &ContactPage{Search: strings.TrimSpace(f.Search)}
	if st, ok := domain.ParseStatus(f.Status); ok {
		page.Status = st
		q = q.Where("status = ?", st)
	}
	if page.Search != "" {
		like := "%" + strings.ToLower(page.Search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR LOWER(phone) LIKE ?", like, like, like)
	}

	q = q.Session(&gorm.Session{})

	if err := q.Count(&page.Total).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to count submissions", err)
	}

	page.Pages = int((page.Total + ContactsPerPage - 1) / ContactsPerPage)
	if page.Pages < 1 {
		page.Pages = 1
	}
	page.Page = f.Page
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Page > page.Pages {
		page.Page = page.Pages
	}

	page.Items = []domain.Submission{}
	err := q.Order("created_at DESC").Order("id DESC").
		Offset((page.Page - 1) * ContactsPerPage).
		Limit(ContactsPerPage).
		Find(&page.Items).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to fetch submissions", err)
	}
	return page, nil
}

// Get returns one submission.
func (s *ContactService) Get(ctx context.Context, id uint) (*domain.Submission, error) {
	var sub domain.Submission
	err := s.db.WithContext(ctx).First(&sub, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.New(apperrors.ErrCodeNotFound, "submission not found")
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to load submission", err)
	}
	return &sub, nil
}

// UpdateStatus sets the status of one submission. Notes are replaced only
// when non-blank. ContactedAt is left as is.
func (s *ContactService) UpdateStatus(ctx context.Context, id uint, status, notes string) (*domain.Submission, error) {
	st, ok := domain.ParseStatus(status)
	if !ok {
		return nil, apperrors.New(apperrors.ErrCodeValidation, "invalid status")
	}

	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"status":     st,
		"updated_at": now,
	}
	n := strings.TrimSpace(notes)
	if n != "" {
		updates["notes"] = n
	}

	if err := s.db.WithContext(ctx).Model(&domain.Submission{}).Where("id = ?", sub.ID).Updates(updates).Error; err != nil {
		s.log.Error("status update failed", "id", id, "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to update submission", err)
	}

	sub.Status = st
	sub.UpdatedAt = now
	if n != "" {
		sub.Notes = n
	}

	metrics.RecordStatusTransition(string(st))
	s.log.Info("submission status updated", "id", id, "status", st)
	return sub, nil
}

// BulkSetStatus applies status to every id. Marking as contacted also stamps
// ContactedAt. Returns the number of rows changed.
func (s *ContactService) BulkSetStatus(ctx context.Context, ids []uint, status string) (int64, error) {
	st, ok := domain.ParseStatus(status)
	if !ok {
		return 0, apperrors.New(apperrors.ErrCodeValidation, "invalid status")
	}
	if len(ids) == 0 {
		return 0, apperrors.New(apperrors.ErrCodeValidation, "no submissions selected")
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"status":     st,
		"updated_at": now,
	}
	if st == domain.StatusContacted {
		updates["contacted_at"] = now
	}

	res := s.db.WithContext(ctx).Model(&domain.Submission{}).Where("id IN ?", ids).Updates(updates)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to update submissions", res.Error)
	}

	for i := int64(0); i < res.RowsAffected; i++ {
		metrics.RecordStatusTransition(string(st))
	}
	s.log.Info("bulk status update", "status", st, "count", res.RowsAffected)
	return res.RowsAffected, nil
}
