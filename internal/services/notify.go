package services

import (
	"context"
	"fmt"

	"github.com/osteele/liquid"

	"ajei/internal/domain"
)

const notifySubjectTemplate = `New contact form submission from {{ name }}`

const notifyTextTemplate = `New contact form submission

Name: {{ name }}
Email: {{ email }}
Phone: {{ phone }}
Investment type: {{ investment_type }}
Submitted: {{ submitted }}

Message:
{{ message }}

Dashboard: {{ link }}`

const notifyHTMLTemplate = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>New contact form submission</title></head>
<body style="font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #334155;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #0f5132;">New contact form submission</h2>
    <div style="background: #f8fafc; padding: 20px; border-radius: 8px;">
      <p><strong>Name:</strong> {{ name | escape }}</p>
      <p><strong>Email:</strong> <a href="mailto:{{ email | escape }}">{{ email | escape }}</a></p>
      <p><strong>Phone:</strong> {{ phone | escape }}</p>
      <p><strong>Investment type:</strong> {{ investment_type | escape }}</p>
      <p><strong>Submitted:</strong> {{ submitted }}</p>
    </div>
    {% if message != "" %}
    <div style="padding: 20px; border-left: 4px solid #0f5132; margin: 20px 0;">
      <p style="white-space: pre-wrap;">{{ message | escape }}</p>
    </div>
    {% endif %}
    <p><a href="{{ link }}">Open in dashboard</a></p>
  </div>
</body>
</html>`

// SubmissionNotifier mails operators about new submissions.
type SubmissionNotifier struct {
	email   *EmailService
	to      string
	baseURL string
	subject *liquid.Template
	text    *liquid.Template
	html    *liquid.Template
}

// NewSubmissionNotifier parses the notification templates. An empty to
// disables sending.
func NewSubmissionNotifier(email *EmailService, to, baseURL string) (*SubmissionNotifier, error) {
	engine := liquid.NewEngine()
	n := &SubmissionNotifier{email: email, to: to, baseURL: baseURL}
	for _, t := range []struct {
		dst **liquid.Template
		src string
	}{
		{&n.subject, notifySubjectTemplate},
		{&n.text, notifyTextTemplate},
		{&n.html, notifyHTMLTemplate},
	} {
		tpl, err := engine.ParseString(t.src)
		if err != nil {
			return nil, fmt.Errorf("parse notification template: %w", err)
		}
		*t.dst = tpl
	}
	return n, nil
}

// NotifySubmission renders and sends the notification for sub.
func (n *SubmissionNotifier) NotifySubmission(_ context.Context, sub *domain.Submission) error {
	if n.to == "" {
		return nil
	}
	bindings := map[string]interface{}{
		"name":            sub.Name,
		"email":           sub.Email,
		"phone":           sub.Phone,
		"investment_type": sub.InvestmentLabel(),
		"message":         sub.Message,
		"submitted":       sub.CreatedAt.Format("2006-01-02 15:04 MST"),
		"link":            fmt.Sprintf("%s/dashboard/contact/%d/", n.baseURL, sub.ID),
	}

	subject, err := n.subject.RenderString(bindings)
	if err != nil {
		return fmt.Errorf("render subject: %w", err)
	}
	text, err := n.text.RenderString(bindings)
	if err != nil {
		return fmt.Errorf("render text body: %w", err)
	}
	html, err := n.html.RenderString(bindings)
	if err != nil {
		return fmt.Errorf("render html body: %w", err)
	}
	return n.email.SendHTMLEmail(n.to, subject, html, text)
}
