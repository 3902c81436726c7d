package services

import (
	"context"
	"net/smtp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ajei/internal/config"
	"ajei/internal/database"
	"ajei/internal/domain"
)

type sentMail struct {
	addr string
	from string
	to   []string
	msg  string
}

func newCapturingEmail(enabled bool) (*EmailService, *[]sentMail) {
	var sent []sentMail
	svc := NewEmailService(&config.EmailConfig{
		Enabled:   enabled,
		SMTPHost:  "smtp.example.com",
		SMTPPort:  587,
		Username:  "user",
		Password:  "pass",
		FromEmail: "noreply@ajei.sa",
		FromName:  "Ajei",
	})
	svc.send = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		sent = append(sent, sentMail{addr: addr, from: from, to: to, msg: string(msg)})
		return nil
	}
	return svc, &sent
}

func TestNotifySubmissionSendsRenderedMail(t *testing.T) {
	email, sent := newCapturingEmail(true)
	n, err := NewSubmissionNotifier(email, "sales@ajei.sa", "https://ajei.sa")
	require.NoError(t, err)

	sub := &domain.Submission{
		ID:             7,
		Name:           "Sara",
		Email:          "sara@example.com",
		Phone:          "0551234567",
		InvestmentType: investment(domain.InvestmentRestaurant),
		Message:        "<b>hello</b>",
		CreatedAt:      time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, n.NotifySubmission(context.Background(), sub))

	require.Len(t, *sent, 1)
	mail := (*sent)[0]
	assert.Equal(t, "smtp.example.com:587", mail.addr)
	assert.Equal(t, []string{"sales@ajei.sa"}, mail.to)
	assert.Contains(t, mail.msg, "Subject: New contact form submission from Sara")
	assert.Contains(t, mail.msg, "Investment type: Restaurant/Cafe")
	assert.Contains(t, mail.msg, "&lt;b&gt;hello&lt;/b&gt;")
	assert.Contains(t, mail.msg, "https://ajei.sa/dashboard/contact/7/")
}

func TestNotifySubmissionSkipsWithoutRecipient(t *testing.T) {
	email, sent := newCapturingEmail(true)
	n, err := NewSubmissionNotifier(email, "", "https://ajei.sa")
	require.NoError(t, err)

	require.NoError(t, n.NotifySubmission(context.Background(), &domain.Submission{Name: "x"}))
	assert.Empty(t, *sent)
}

func TestEmailDisabledDoesNotSend(t *testing.T) {
	email, sent := newCapturingEmail(false)
	require.NoError(t, email.SendHTMLEmail("a@example.com", "hi", "", "body"))
	assert.Empty(t, *sent)
}

func TestHealthCheck(t *testing.T) {
	db := newTestDB(t)
	svc := NewHealthService(db, "Ajei", "1.0.0")

	result, healthy := svc.Check(context.Background())
	assert.True(t, healthy)
	assert.Equal(t, "healthy", result.Status)

	require.NoError(t, database.Close(db))
	result, healthy = svc.Check(context.Background())
	assert.False(t, healthy)
	assert.Equal(t, "unreachable", result.Database)
}
