package view

import (
	"errors"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/diewo77/dealflow/auth"
	"github.com/diewo77/dealflow/i18n"
)

var (
	baseDir  string
	once     sync.Once
	tplCache = struct {
		sync.RWMutex
		m map[string]*template.Template
	}{m: map[string]*template.Template{}}

	langResolver = func(r *http.Request) string { return i18n.LangFromContext(r.Context()) }
	// canResolver lets templates ask whether the current user holds resource:action.
	canResolver func(*http.Request, string, string) bool
	devMode     bool
)

// SetCanResolver sets the callback used by the "can" template func.
func SetCanResolver(f func(*http.Request, string, string) bool) {
	if f != nil {
		canResolver = f
	}
}

// SetLangResolver allows the host app to provide a custom language resolver.
func SetLangResolver(f func(*http.Request) string) {
	if f != nil {
		langResolver = f
	}
}

// SetDev disables the template cache so edits show up without a restart.
func SetDev(dev bool) { devMode = dev }

// detectBase fills baseDir unless SetBaseDir already chose one.
func detectBase() {
	if baseDir != "" {
		return
	}
	candidates := []string{"templates", "../templates", "../../templates"}
	for _, c := range candidates {
		if fi, err := os.Stat(filepath.Clean(c)); err == nil && fi.IsDir() {
			baseDir = filepath.Clean(c)
			return
		}
	}
	baseDir = "templates"
}

// Funcs returns the standard func map including i18n and simple helpers.
func Funcs(r *http.Request) template.FuncMap {
	lang := langResolver(r)
	return template.FuncMap{
		"t":    func(code string) string { return i18n.T(lang, code) },
		"lang": func() string { return lang },
		// can checks a "resource", "action" pair for the current user
		"can": func(resource, action string) bool {
			if canResolver == nil {
				return false
			}
			return canResolver(r, resource, action)
		},
		"year": func() int { return time.Now().Year() },
		"join": strings.Join,
		// dict creates a map from key-value pairs for passing to sub-templates.
		// Usage: {{ template "partial" (dict "Key1" val1 "Key2" val2) }}
		"dict": func(values ...any) map[string]any {
			if len(values)%2 != 0 {
				return nil
			}
			m := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					continue
				}
				m[key] = values[i+1]
			}
			return m
		},
	}
}

// SetBaseDir overrides the template base directory (useful for tests or custom setups).
func SetBaseDir(path string) {
	if path == "" {
		return
	}
	baseDir = filepath.Clean(path)
	once = sync.Once{}
}

// ResetForTests clears caches and forces base dir detection to rerun.
func ResetForTests() {
	tplCache.Lock()
	tplCache.m = map[string]*template.Template{}
	tplCache.Unlock()
	baseDir = ""
	once = sync.Once{}
}

// Render executes name wrapped in layout.html with the shared funcs.
// name is relative to the templates root (e.g. "manager/dashboard.html").
// Common keys (Year, IsLoggedIn, Flash) are injected when absent.
func Render(w http.ResponseWriter, r *http.Request, name string, data map[string]any) error {
	once.Do(detectBase)
	if data == nil {
		data = map[string]any{}
	}
	if _, exists := data["Year"]; !exists {
		data["Year"] = time.Now().Year()
	}
	if _, exists := data["IsLoggedIn"]; !exists {
		_, loggedIn := auth.UserIDFromContext(r.Context())
		data["IsLoggedIn"] = loggedIn
	}
	if _, exists := data["Flash"]; !exists {
		data["Flash"] = PopFlash(w, r)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	// Funcs close over the request, so cached templates get fresh funcs per execution.
	funcs := Funcs(r)
	tplCache.RLock()
	t, ok := tplCache.m[name]
	tplCache.RUnlock()
	if ok && !devMode {
		clone, err := t.Clone()
		if err != nil {
			return err
		}
		return clone.Funcs(funcs).ExecuteTemplate(w, "layout.html", data)
	}

	mainPath := filepath.Join(baseDir, filepath.FromSlash(name))
	if _, err := os.Stat(mainPath); err != nil {
		return err
	}
	layoutPath := filepath.Join(baseDir, "layout.html")
	files := []string{layoutPath, mainPath}
	if partials, _ := filepath.Glob(filepath.Join(baseDir, "partials", "*.html")); len(partials) > 0 {
		files = append(files, partials...)
	}
	parsed, err := template.New("layout.html").Funcs(funcs).ParseFiles(files...)
	if err != nil {
		return err
	}
	if parsed == nil {
		return errors.New("template not parsed")
	}
	if !devMode {
		tplCache.Lock()
		tplCache.m[name] = parsed
		tplCache.Unlock()
		clone, err := parsed.Clone()
		if err != nil {
			return err
		}
		parsed = clone
	}
	return parsed.ExecuteTemplate(w, "layout.html", data)
}
