package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gorilla/csrf"

	"ajei/internal/domain"
	"ajei/internal/i18n"
	"ajei/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// View is the context every page template receives.
type View struct {
	Lang    string
	Dir     string
	Path    string
	Title   string
	User    *domain.User
	Flashes []session.Flash
	Data    any
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, page string, view *View) {
	lang := i18n.LanguageFromContext(r.Context())
	if lang == "" {
		lang = s.bundle.Default()
	}
	view.Lang = lang
	view.Dir = s.bundle.Direction(lang)
	view.Path = r.URL.Path
	view.User = userFromContext(r.Context())
	view.Flashes = s.sessions.TakeFlashes(w, r)

	tpl, err := template.New("layout.html").
		Funcs(s.funcs(r, lang)).
		ParseFS(templateFS, "templates/layout.html", "templates/partials.html", "templates/"+page)
	if err != nil {
		s.log.Error("template parse failed", "page", page, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, view); err != nil {
		s.log.Error("template render failed", "page", page, "error", err)
		http.Error(w, "Render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (s *Server) funcs(r *http.Request, lang string) template.FuncMap {
	return template.FuncMap{
		"t":         func(msgid string) string { return s.bundle.T(lang, msgid) },
		"csrfField": func() template.HTML { return csrf.TemplateField(r) },
		"languages": func() []string { return s.bundle.Codes() },
		"when": func(v any) string {
			switch t := v.(type) {
			case time.Time:
				return t.In(s.loc).Format("2006-01-02 15:04")
			case *time.Time:
				if t == nil {
					return "-"
				}
				return t.In(s.loc).Format("2006-01-02 15:04")
			}
			return ""
		},
		"date": func(t time.Time) string { return t.In(s.loc).Format("2006-01-02") },
		"hour": func(t time.Time) string { return t.In(s.loc).Format("15:00") },
		"deref": func(p *string) string {
			if p == nil {
				return ""
			}
			return *p
		},
		"statuses":        func() []domain.Status { return domain.Statuses },
		"investmentTypes": func() []domain.InvestmentType { return domain.InvestmentTypes },
		"add":             func(a, b int) int { return a + b },
	}
}
