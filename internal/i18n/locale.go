package i18n

import (
	"context"
	"net/http"

	"golang.org/x/text/language"
)

// CookieName stores the visitor's chosen language.
const CookieName = "site_language"

// Fallback is used when no locale could be resolved at all.
const Fallback = "ar"

type ctxKey struct{}

// WithLanguage stores the active language in ctx.
func WithLanguage(ctx context.Context, lang string) context.Context {
	return context.WithValue(ctx, ctxKey{}, lang)
}

// LanguageFromContext returns the active language, or "" when none was set.
func LanguageFromContext(ctx context.Context) string {
	lang, _ := ctx.Value(ctxKey{}).(string)
	return lang
}

// Resolve picks the language for r: cookie, then Accept-Language, then the
// bundle default.
func (b *Bundle) Resolve(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && b.Has(c.Value) {
		return c.Value
	}
	if accept := r.Header.Get("Accept-Language"); accept != "" {
		if lang, ok := b.match(accept); ok {
			return lang
		}
	}
	return b.fallback
}

func (b *Bundle) match(accept string) (string, bool) {
	prefs, _, err := language.ParseAcceptLanguage(accept)
	if err != nil || len(prefs) == 0 {
		return "", false
	}
	// Default goes first so that it wins on no match.
	codes := []string{b.fallback}
	for _, c := range b.order {
		if c != b.fallback {
			codes = append(codes, c)
		}
	}
	tags := make([]language.Tag, len(codes))
	for i, c := range codes {
		tags[i] = language.Make(c)
	}
	_, idx, conf := language.NewMatcher(tags).Match(prefs...)
	if conf == language.No {
		return "", false
	}
	return codes[idx], true
}

// Middleware stores the resolved language in the request context.
func (b *Bundle) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := b.Resolve(r)
		next.ServeHTTP(w, r.WithContext(WithLanguage(r.Context(), lang)))
	})
}

// SetLanguageCookie persists lang for a year.
func SetLanguageCookie(w http.ResponseWriter, lang string, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    lang,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
