package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ajei/internal/database"
	"ajei/internal/domain"
	apperrors "ajei/pkg/errors"
)

type recordingNotifier struct {
	got chan *domain.Submission
}

func (n *recordingNotifier) NotifySubmission(_ context.Context, s *domain.Submission) error {
	n.got <- s
	return nil
}

func validInput() SubmissionInput {
	return SubmissionInput{
		Name:           "  Sara Ahmed ",
		Email:          " sara@example.com",
		Phone:          "0551234567 ",
		Message:        " Interested in the pharmacy unit ",
		InvestmentType: "pharmacy",
		IPAddress:      "203.0.113.7",
		UserAgent:      "Mozilla/5.0",
		Referrer:       "https://google.com/",
	}
}

func countSubmissions(t *testing.T, svc *IntakeService) int64 {
	t.Helper()
	var n int64
	require.NoError(t, svc.db.Model(&domain.Submission{}).Count(&n).Error)
	return n
}

func TestSubmitDisabledStoresNothing(t *testing.T) {
	svc := NewIntakeService(newTestDB(t), nil)

	_, err := svc.Submit(context.Background(), validInput(), false)
	require.Error(t, err)
	assert.True(t, apperrors.IsDisabled(err))
	assert.Equal(t, int64(0), countSubmissions(t, svc))
}

func TestSubmitRequiresNameEmailPhone(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SubmissionInput)
	}{
		{"blank name", func(in *SubmissionInput) { in.Name = "   " }},
		{"missing email", func(in *SubmissionInput) { in.Email = "" }},
		{"blank phone", func(in *SubmissionInput) { in.Phone = "\t" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewIntakeService(newTestDB(t), nil)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.Submit(context.Background(), in, true)
			require.Error(t, err)
			assert.True(t, apperrors.IsValidation(err))
			assert.Equal(t, int64(0), countSubmissions(t, svc))
		})
	}
}

func TestSubmitStoresTrimmedSubmission(t *testing.T) {
	svc := NewIntakeService(newTestDB(t), nil)
	in := validInput()
	in.UserAgent = strings.Repeat("a", 600)

	sub, err := svc.Submit(context.Background(), in, true)
	require.NoError(t, err)
	assert.Equal(t, int64(1), countSubmissions(t, svc))

	var stored domain.Submission
	require.NoError(t, svc.db.First(&stored, sub.ID).Error)
	assert.Equal(t, "Sara Ahmed", stored.Name)
	assert.Equal(t, "sara@example.com", stored.Email)
	assert.Equal(t, "0551234567", stored.Phone)
	assert.Equal(t, "Interested in the pharmacy unit", stored.Message)
	require.NotNil(t, stored.InvestmentType)
	assert.Equal(t, domain.InvestmentPharmacy, *stored.InvestmentType)
	assert.Equal(t, domain.StatusNew, stored.Status)
	require.NotNil(t, stored.IPAddress)
	assert.Equal(t, "203.0.113.7", *stored.IPAddress)
	assert.Len(t, stored.UserAgent, 500)
	assert.Equal(t, "https://google.com/", stored.Referrer)
	assert.Nil(t, stored.ContactedAt)
}

func TestSubmitOptionalFields(t *testing.T) {
	svc := NewIntakeService(newTestDB(t), nil)
	in := validInput()
	in.Message = ""
	in.InvestmentType = "villa"
	in.IPAddress = ""

	sub, err := svc.Submit(context.Background(), in, true)
	require.NoError(t, err)
	assert.Nil(t, sub.InvestmentType)
	assert.Nil(t, sub.IPAddress)
	assert.Equal(t, "", sub.Message)
	assert.Equal(t, "N/A", sub.InvestmentLabel())
}

func TestSubmitPersistenceFailure(t *testing.T) {
	db := newTestDB(t)
	svc := NewIntakeService(db, nil)
	require.NoError(t, database.Close(db))

	_, err := svc.Submit(context.Background(), validInput(), true)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeInternalError, apperrors.CodeOf(err))
}

func TestSubmitNotifiesAsynchronously(t *testing.T) {
	notifier := &recordingNotifier{got: make(chan *domain.Submission, 1)}
	svc := NewIntakeService(newTestDB(t), notifier)

	sub, err := svc.Submit(context.Background(), validInput(), true)
	require.NoError(t, err)

	select {
	case got := <-notifier.got:
		assert.Equal(t, sub.ID, got.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("notifier was not called")
	}
}

type blockingNotifier struct {
	release chan struct{}
	sent    chan uint
}

func (n *blockingNotifier) NotifySubmission(_ context.Context, s *domain.Submission) error {
	<-n.release
	n.sent <- s.ID
	return nil
}

func TestDrainWaitsForNotifications(t *testing.T) {
	notifier := &blockingNotifier{release: make(chan struct{}), sent: make(chan uint, 1)}
	svc := NewIntakeService(newTestDB(t), notifier)

	sub, err := svc.Submit(context.Background(), validInput(), true)
	require.NoError(t, err)

	short, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, svc.Drain(short), context.DeadlineExceeded)

	close(notifier.release)
	ctx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	require.NoError(t, svc.Drain(ctx))

	select {
	case id := <-notifier.sent:
		assert.Equal(t, sub.ID, id)
	default:
		t.Fatal("notification was not sent before Drain returned")
	}
}

func TestDrainWithoutNotifier(t *testing.T) {
	svc := NewIntakeService(newTestDB(t), nil)
	_, err := svc.Submit(context.Background(), validInput(), true)
	require.NoError(t, err)
	require.NoError(t, svc.Drain(context.Background()))
}

func TestSubmissionRoundTripThroughDetail(t *testing.T) {
	db := newTestDB(t)
	intake := NewIntakeService(db, nil)
	contacts := NewContactService(db)

	created, err := intake.Submit(context.Background(), validInput(), true)
	require.NoError(t, err)

	got, err := contacts.Get(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, got.Name)
	assert.Equal(t, created.Email, got.Email)
	assert.Equal(t, created.Phone, got.Phone)
	assert.Equal(t, created.Message, got.Message)
	assert.Equal(t, created.InvestmentType, got.InvestmentType)
	assert.Equal(t, created.IPAddress, got.IPAddress)
	assert.Equal(t, created.UserAgent, got.UserAgent)
	assert.Equal(t, created.Referrer, got.Referrer)
	assert.Equal(t, created.Status, got.Status)
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
}
