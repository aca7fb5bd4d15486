package httpserver

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/bryanwahyu/enquiry-console/internal/application/console"
	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
)

//go:embed templates/*.html
var templateFS embed.FS

const dateLayout = "02 Jan 2006 15:04"

type pages struct {
	tmpl *template.Template
}

func newPages() *pages {
	funcs := template.FuncMap{
		"date": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format(dateLayout)
		},
	}
	return &pages{
		tmpl: template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")),
	}
}

type consoleView struct {
	console.Snapshot
	Notices []console.Notice
}

type confirmView struct {
	ID      domain.ID
	Prompt  string
	Enquiry *domain.Enquiry
	Notices []console.Notice
}

// render executes into a buffer first so a template error never leaves a
// half-written page behind
func (p *pages) render(w http.ResponseWriter, req *http.Request, name string, data any) {
	var buf bytes.Buffer
	if err := p.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		logger.C(req.Context()).Error().Err(err).Str("template", name).Msg("render failed")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}
