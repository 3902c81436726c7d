package services

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"gorm.io/gorm"

	"ajei/internal/domain"
	"ajei/internal/metrics"
	"ajei/internal/util"
	apperrors "ajei/pkg/errors"
)

// SubmissionInput is the raw contact form plus request metadata.
type SubmissionInput struct {
	Name           string
	Email          string
	Phone          string
	Message        string
	InvestmentType string
	IPAddress      string
	UserAgent      string
	Referrer       string
}

// Notifier is told about each stored submission.
type Notifier interface {
	NotifySubmission(ctx context.Context, s *domain.Submission) error
}

// IntakeService turns contact form posts into Submission rows.
type IntakeService struct {
	db       *gorm.DB
	notifier Notifier
	pending  sync.WaitGroup
	log      *slog.Logger
}

// NewIntakeService creates the intake service. notifier may be nil.
func NewIntakeService(db *gorm.DB, notifier Notifier) *IntakeService {
	return &IntakeService{
		db:       db,
		notifier: notifier,
		log:      slog.Default().With("component", "contact"),
	}
}

// Submit validates in and stores it. enabled is the current contact-form flag.
// Errors carry ErrCodeDisabled, ErrCodeValidation or ErrCodeInternalError.
func (s *IntakeService) Submit(ctx context.Context, in SubmissionInput, enabled bool) (*domain.Submission, error) {
	if !enabled {
		metrics.RecordContactSubmission("disabled")
		return nil, apperrors.New(apperrors.ErrCodeDisabled, "contact form is disabled")
	}

	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	phone := strings.TrimSpace(in.Phone)
	if name == "" || email == "" || phone == "" {
		metrics.RecordContactSubmission("invalid")
		return nil, apperrors.New(apperrors.ErrCodeValidation, "name, email and phone are required")
	}

	sub := &domain.Submission{
		Name:           name,
		Email:          email,
		Phone:          phone,
		InvestmentType: s.investmentType(in.InvestmentType),
		Message:        strings.TrimSpace(in.Message),
		Status:         domain.StatusNew,
		IPAddress:      util.StringPtr(in.IPAddress),
		UserAgent:      util.Truncate(in.UserAgent, util.MaxMetaLength),
		Referrer:       util.Truncate(in.Referrer, util.MaxMetaLength),
	}

	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		metrics.RecordContactSubmission("error")
		s.log.Error("submission not saved", "error", err)
		return nil, apperrors.Wrap(apperrors.ErrCodeInternalError, "failed to save submission", err)
	}

	metrics.RecordContactSubmission("created")
	s.log.Info("submission saved", "id", sub.ID)

	if s.notifier != nil {
		s.pending.Add(1)
		go func() {
			defer s.pending.Done()
			s.notify(context.WithoutCancel(ctx), sub)
		}()
	}
	return sub, nil
}

func (s *IntakeService) investmentType(raw string) *domain.InvestmentType {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	it, ok := domain.ParseInvestmentType(raw)
	if !ok {
		s.log.Warn("unknown investment type dropped", "value", raw)
		return nil
	}
	return &it
}

func (s *IntakeService) notify(ctx context.Context, sub *domain.Submission) {
	if err := s.notifier.NotifySubmission(ctx, sub); err != nil {
		s.log.Warn("failed to send notification email", "id", sub.ID, "error", err)
		return
	}
	s.log.Info("notification email sent", "id", sub.ID)
}

// Drain waits for in-flight notifications. It returns ctx.Err() if ctx ends
// first; those notifications are abandoned.
func (s *IntakeService) Drain(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.pending.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.log.Warn("pending notifications abandoned", "error", ctx.Err())
		return ctx.Err()
	}
}
