package http

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/harara-heat/harara-dashboard/internal/domain"
	"github.com/harara-heat/harara-dashboard/internal/views"
	"github.com/harara-heat/harara-dashboard/internal/widgets"
)

//go:embed templates/*.html
var templateFS embed.FS

type pages map[string]*template.Template

var funcs = template.FuncMap{
	"levelColor": func(l domain.Level) string { return l.Color() },
	"riskColor":  func(p float64) string { return domain.Classify(p).Color() },
	"riskName":   func(p float64) string { return domain.Classify(p).String() },
}

// parsePages pairs each page template with the shared layout.
func parsePages() pages {
	p := make(pages)
	for _, name := range []string{"login", "dashboard", "predictions", "alerts", "users", "export", "settings"} {
		p[name] = template.Must(template.New("layout.html").Funcs(funcs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html"))
	}
	return p
}

// pageData is what the layout renders around a page.
type pageData struct {
	Title         string
	ShellTitle    string
	ShellSubtitle string
	Nav           []widgets.NavItem
	Operator      string
	Flash         *views.Notice
	CSRF          template.HTML
	Refresh       int
	Page          any
}

func (s *Server) newPageData(w http.ResponseWriter, r *http.Request, title string, page any) pageData {
	d := pageData{
		Title:         title,
		ShellTitle:    widgets.ShellTitle,
		ShellSubtitle: widgets.ShellSubtitle,
		Nav:           widgets.Nav(r.URL.Path),
		Flash:         s.flashes.pop(w, r),
		CSRF:          csrf.TemplateField(r),
		Page:          page,
	}
	if sess := sessionFrom(r.Context()); sess != nil {
		d.Operator = sess.Operator()
	}
	return d
}

// render executes a page into a buffer so template errors never leave a
// half-written response.
func (s *Server) render(w http.ResponseWriter, name string, status int, data pageData) {
	var buf bytes.Buffer
	if err := s.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.logger.Error("render page", "page", name, "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail answers a handler error: a rejected session goes back to login,
// anything else is a server error.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, domain.ErrUnauthorized) {
		toLogin(w, r)
		return
	}
	s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// notify queues n and redirects to path.
func (s *Server) notify(w http.ResponseWriter, r *http.Request, path string, n views.Notice) {
	if err := s.flashes.add(w, r, n); err != nil {
		s.logger.Warn("save flash", "error", err)
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}
