package webapp

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"taskboard.org/internal/obs"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("webapp").Funcs(template.FuncMap{
	"deref": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
}).ParseFS(templateFS, "templates/*.html"))

// page is the data every template receives.
type page struct {
	Title    string
	Gate     Gate
	UserName string
	Flash    *Flash
	Token    string
	Data     any
}

// render executes the named page template. Output is buffered so a template
// error becomes a clean 500 instead of a half-written page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, code int, name, title string, data any) {
	id := s.sessions.Identity()
	p := page{
		Title: title,
		Gate:  NewGate(id),
		Flash: popFlash(w, r),
		Token: s.tokens.Issue(),
		Data:  data,
	}
	if id != nil {
		p.UserName = id.Name
	}

	var buf bytes.Buffer
	if err := pageTemplates.ExecuteTemplate(&buf, name, p); err != nil {
		s.log.Error().Err(err).
			Str("template", name).
			Str("request_id", obs.RequestIDFromContext(r.Context())).
			Msg("render failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	_, _ = buf.WriteTo(w)
}
