package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ajei/internal/i18n"
	"ajei/internal/services"
	"ajei/internal/session"
	apperrors "ajei/pkg/errors"
)

// Operator-facing flash messages.
const (
	msgStatusUpdated     = "Contact status updated successfully."
	msgContactNotFound   = "Contact submission not found."
	msgInvalidStatus     = "Invalid status."
	msgErrorPrefix       = "Error: %s"
	msgBulkUpdated       = "%d submissions updated."
	msgNothingSelected   = "No submissions selected."
	msgFormEnabled       = "Contact form enabled."
	msgFormDisabledAdmin = "Contact form disabled."
	msgStatsUnavailable  = "Statistics are temporarily unavailable."
)

type dashboardData struct {
	Stats              *services.DashboardStats
	ContactFormEnabled bool
}

type translationsData struct {
	Locales   []i18n.LocaleInfo
	EditorURL string
}

func (s *Server) flashf(w http.ResponseWriter, r *http.Request, level, format string, args ...any) {
	text := s.bundle.T(i18n.LanguageFromContext(r.Context()), format)
	s.sessions.Flash(w, r, level, fmt.Sprintf(text, args...))
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.dashboard.Stats(r.Context())
	if err != nil {
		s.log.Error("dashboard stats failed", "error", err)
		stats = &services.DashboardStats{}
		s.flash(w, r, session.LevelError, msgStatsUnavailable)
	}
	enabled, err := s.settings.ContactFormEnabled(r.Context())
	if err != nil {
		s.log.Error("failed to read contact form setting", "error", err)
	}
	s.render(w, r, http.StatusOK, "dashboard.html", &View{
		Title: "Dashboard",
		Data:  dashboardData{Stats: stats, ContactFormEnabled: enabled},
	})
}

func (s *Server) handleContactList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))

	result, err := s.contacts.List(r.Context(), services.ContactFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Page:   page,
	})
	if err != nil {
		s.log.Error("contact list failed", "error", err)
		s.flashf(w, r, session.LevelError, msgErrorPrefix, detailOf(err))
		http.Redirect(w, r, "/dashboard/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "contacts.html", &View{Title: "Contact Submissions", Data: result})
}

func submissionID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func (s *Server) handleContactDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := submissionID(r)
	if !ok {
		s.flash(w, r, session.LevelError, msgContactNotFound)
		http.Redirect(w, r, "/dashboard/", http.StatusFound)
		return
	}
	sub, err := s.contacts.Get(r.Context(), id)
	if err != nil {
		if apperrors.IsNotFound(err) {
			s.flash(w, r, session.LevelError, msgContactNotFound)
		} else {
			s.log.Error("contact detail failed", "id", id, "error", err)
			s.flashf(w, r, session.LevelError, msgErrorPrefix, detailOf(err))
		}
		http.Redirect(w, r, "/dashboard/", http.StatusFound)
		return
	}
	s.render(w, r, http.StatusOK, "contact_detail.html", &View{Title: sub.Name, Data: sub})
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)

	id, ok := submissionID(r)
	if !ok {
		s.flash(w, r, session.LevelError, msgContactNotFound)
		return
	}
	if err := r.ParseForm(); err != nil {
		s.flash(w, r, session.LevelError, msgInvalidStatus)
		return
	}

	_, err := s.contacts.UpdateStatus(r.Context(), id, r.PostForm.Get("status"), r.PostForm.Get("notes"))
	switch {
	case err == nil:
		s.flash(w, r, session.LevelSuccess, msgStatusUpdated)
	case apperrors.IsNotFound(err):
		s.flash(w, r, session.LevelError, msgContactNotFound)
	case apperrors.IsValidation(err):
		s.flash(w, r, session.LevelError, msgInvalidStatus)
	default:
		s.log.Error("status update failed", "id", id, "error", err)
		s.flashf(w, r, session.LevelError, msgErrorPrefix, detailOf(err))
	}
}

func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/dashboard/contacts/", http.StatusSeeOther)

	if err := r.ParseForm(); err != nil {
		s.flash(w, r, session.LevelError, msgNothingSelected)
		return
	}
	var ids []uint
	for _, raw := range r.PostForm["ids"] {
		if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
			ids = append(ids, uint(id))
		}
	}
	if len(ids) == 0 {
		s.flash(w, r, session.LevelWarning, msgNothingSelected)
		return
	}

	n, err := s.contacts.BulkSetStatus(r.Context(), ids, r.PostForm.Get("status"))
	switch {
	case err == nil:
		s.flashf(w, r, session.LevelSuccess, msgBulkUpdated, n)
	case apperrors.IsValidation(err):
		s.flash(w, r, session.LevelError, msgInvalidStatus)
	default:
		s.log.Error("bulk status update failed", "error", err)
		s.flashf(w, r, session.LevelError, msgErrorPrefix, detailOf(err))
	}
}

func (s *Server) handleContactFormToggle(w http.ResponseWriter, r *http.Request) {
	defer http.Redirect(w, r, "/dashboard/", http.StatusSeeOther)

	if err := r.ParseForm(); err != nil {
		s.flashf(w, r, session.LevelError, msgErrorPrefix, err.Error())
		return
	}
	enabled, err := strconv.ParseBool(r.PostForm.Get("enabled"))
	if err != nil {
		s.flashf(w, r, session.LevelError, msgErrorPrefix, "enabled must be true or false")
		return
	}
	if err := s.settings.SetContactFormEnabled(r.Context(), enabled); err != nil {
		s.log.Error("contact form toggle failed", "error", err)
		s.flashf(w, r, session.LevelError, msgErrorPrefix, detailOf(err))
		return
	}
	if enabled {
		s.flash(w, r, session.LevelSuccess, msgFormEnabled)
	} else {
		s.flash(w, r, session.LevelSuccess, msgFormDisabledAdmin)
	}
}

func (s *Server) handleTranslations(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "translations.html", &View{
		Title: "Translations",
		Data: translationsData{
			Locales:   s.bundle.Info(),
			EditorURL: s.cfg.Site.TranslationEditorURL,
		},
	})
}

// handleTranslationPick keeps old editor links working.
func (s *Server) handleTranslationPick(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard/translations/", http.StatusFound)
}

func detailOf(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.Detail()
	}
	return err.Error()
}
