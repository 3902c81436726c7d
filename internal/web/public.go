package web

import (
	"encoding/json"
	"net/http"

	"ajei/internal/i18n"
	"ajei/internal/services"
	"ajei/internal/session"
	"ajei/internal/util"
	apperrors "ajei/pkg/errors"
)

// Visitor-facing flash messages. The Arabic text is the catalog msgid.
const (
	msgFormDisabled  = "نعتذر، نموذج الاتصال غير متاح حالياً."
	msgMissingFields = "يرجى ملء جميع الحقول المطلوبة."
	msgSubmitted     = "شكراً لتواصلك معنا! سنقوم بالرد عليك قريباً."
	msgSubmitFailed  = "حدث خطأ في إرسال الرسالة. يرجى المحاولة مرة أخرى."
)

type landingData struct {
	ContactFormEnabled bool
}

// flash queues msgid translated into the request language.
func (s *Server) flash(w http.ResponseWriter, r *http.Request, level, msgid string) {
	s.sessions.Flash(w, r, level, s.bundle.T(i18n.LanguageFromContext(r.Context()), msgid))
}

func (s *Server) handleLanding(page string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if lang := r.URL.Query().Get("lang"); lang != "" && s.bundle.Has(lang) {
			i18n.SetLanguageCookie(w, lang, secureCookies(s.cfg))
			q := r.URL.Query()
			q.Del("lang")
			target := r.URL.Path
			if enc := q.Encode(); enc != "" {
				target += "?" + enc
			}
			http.Redirect(w, r, target, http.StatusFound)
			return
		}

		enabled, err := s.settings.ContactFormEnabled(r.Context())
		if err != nil {
			s.log.Error("failed to read contact form setting", "error", err)
			enabled = false
		}
		s.render(w, r, http.StatusOK, page, &View{
			Title: "أجيء",
			Data:  landingData{ContactFormEnabled: enabled},
		})
	}
}

func (s *Server) handleContactSubmit(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/", http.StatusSeeOther)

	if err := r.ParseForm(); err != nil {
		s.flash(w, r, session.LevelError, msgMissingFields)
		return
	}
	in := services.SubmissionInput{
		Name:           r.PostForm.Get("name"),
		Email:          r.PostForm.Get("email"),
		Phone:          r.PostForm.Get("phone"),
		Message:        r.PostForm.Get("message"),
		InvestmentType: r.PostForm.Get("investment_type"),
		IPAddress:      util.ClientIP(r),
		UserAgent:      util.UserAgent(r),
		Referrer:       util.Referrer(r),
	}

	enabled, err := s.settings.ContactFormEnabled(r.Context())
	if err == nil {
		_, err = s.intake.Submit(r.Context(), in, enabled)
	}

	switch {
	case err == nil:
		s.flash(w, r, session.LevelSuccess, msgSubmitted)
	case apperrors.IsDisabled(err):
		s.flash(w, r, session.LevelWarning, msgFormDisabled)
	case apperrors.IsValidation(err):
		s.flash(w, r, session.LevelError, msgMissingFields)
	default:
		s.log.Error("error saving contact submission", "error", err)
		s.flash(w, r, session.LevelError, msgSubmitFailed)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	result, healthy := s.health.Check(r.Context())
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(result)
}
