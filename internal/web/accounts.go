package web

import (
	"net/http"
	"strings"
	"time"

	apperrors "ajei/pkg/errors"
)

type loginData struct {
	Username string
	Next     string
	Error    string
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/dashboard/"
	}
	return next
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "login.html", &View{
		Title: "Log in",
		Data:  loginData{Next: safeNext(r.URL.Query().Get("next"))},
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	username := r.PostForm.Get("username")
	next := safeNext(r.PostForm.Get("next"))

	token, _, err := s.auth.Login(r.Context(), username, r.PostForm.Get("password"))
	if err != nil {
		msg := "Please enter a correct username and password."
		switch {
		case apperrors.IsForbidden(err):
			msg = "This account cannot access the dashboard."
		case !apperrors.IsUnauthorized(err):
			s.log.Error("login failed", "error", err)
			msg = "Something went wrong. Please try again."
		}
		s.render(w, r, http.StatusOK, "login.html", &View{
			Title: "Log in",
			Data:  loginData{Username: username, Next: next, Error: msg},
		})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int((time.Duration(s.cfg.Auth.TokenExpiryMinutes) * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   secureCookies(s.cfg),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.cfg.Auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secureCookies(s.cfg),
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/accounts/login/", http.StatusSeeOther)
}
