package view

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/diewo77/dealflow/i18n"
)

const flashCookie = "flash"

// Flash sets a translated flash message cookie using translation code (or literal if missing).
func Flash(w http.ResponseWriter, r *http.Request, code string) {
	setFlash(w, i18n.T(i18n.LangFromContext(r.Context()), code))
}

// Flashf is Flash for catalog entries that carry fmt verbs.
func Flashf(w http.ResponseWriter, r *http.Request, code string, args ...any) {
	setFlash(w, fmt.Sprintf(i18n.T(i18n.LangFromContext(r.Context()), code), args...))
}

func setFlash(w http.ResponseWriter, msg string) {
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: url.QueryEscape(msg), Path: "/", HttpOnly: true})
}

// PopFlash returns the pending flash message and clears it.
func PopFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1})
	msg, err := url.QueryUnescape(c.Value)
	if err != nil {
		return ""
	}
	return msg
}
