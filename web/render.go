package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"agentskill/i18n"
	"agentskill/models"
	"agentskill/seo"
	"agentskill/textfmt"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

// Page templates, each executed through the shared layout.
const (
	tmplListing  = "listing"
	tmplDetail   = "detail"
	tmplNotFound = "notfound"
)

var templateFuncs = template.FuncMap{
	"number": func(lang i18n.Language, n int) string { return textfmt.Number(string(lang), n) },
}

func parseTemplates() (map[string]*template.Template, error) {
	layout, err := template.New("layout.gohtml").Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.gohtml")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	out := make(map[string]*template.Template)
	for _, name := range []string{tmplListing, tmplDetail, tmplNotFound} {
		clone, err := layout.Clone()
		if err != nil {
			return nil, fmt.Errorf("clone layout for %s: %w", name, err)
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+name+".gohtml"); err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		out[name] = clone
	}
	return out, nil
}

// navLinks are the localized header links.
type navLinks struct {
	Home     string
	Latest   string
	Openclaw string
}

type umami struct {
	ScriptURL string
	WebsiteID string
}

// page is the data every template receives.
type page struct {
	Lang         i18n.Language
	T            i18n.Messages
	Meta         seo.Meta
	Verification []seo.MetaTag
	JSONLD       []any
	Nav          navLinks
	Toggle       string
	ToggleLabel  string
	Umami        umami
	Body         any
}

// newPage fills the chrome shared by every HTML response. currentPath and
// query produce the language toggle target.
func (s *Server) newPage(lang i18n.Language, meta seo.Meta, currentPath string, query url.Values, body any) page {
	m := i18n.For(lang)
	other := lang.Other()

	toggle := i18n.SwapPrefix(currentPath, other)
	if q := i18n.StripOverrides(query).Encode(); q != "" {
		toggle += "?" + q
	}
	toggleLabel := m.English
	if other == i18n.Chinese {
		toggleLabel = m.Chinese
	}

	return page{
		Lang:         lang,
		T:            m,
		Meta:         meta,
		Verification: s.opts.Verification.Tags(),
		Nav: navLinks{
			Home:     seo.LocalizedPath(lang, ""),
			Latest:   seo.LocalizedPath(lang, "/latest"),
			Openclaw: seo.LocalizedPath(lang, "/openclaw"),
		},
		Toggle:      toggle,
		ToggleLabel: toggleLabel,
		Umami:       umami{ScriptURL: s.opts.UmamiScriptURL, WebsiteID: s.opts.UmamiWebsiteID},
		Body:        body,
	}
}

// render executes a page template into a buffer first so a template failure
// still produces a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	tmpl, ok := s.templates[name]
	if !ok {
		s.log.Error("Unknown template", zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", p); err != nil {
		s.log.Error("Failed to render template",
			zap.String("template", name),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// skillCard is one entry of a listing grid.
type skillCard struct {
	FullName    string
	DetailURL   string
	HTMLURL     string
	Description string
	Stars       int
	Forks       int
	Language    string
	LanguageURL string
	Topics      []link
}

type link struct {
	Label string
	URL   string
}

func newSkillCard(lang i18n.Language, s models.Skill) skillCard {
	detail, _ := seo.SkillPath(lang, s)
	card := skillCard{
		FullName:    s.FullName,
		DetailURL:   detail,
		HTMLURL:     s.HTMLURL,
		Description: textfmt.FirstNonEmpty(seo.LocalizedDescription(lang, s), i18n.For(lang).DetailNoDescription),
		Stars:       s.Stars,
		Forks:       s.Forks,
		Language:    s.Language,
	}
	if s.Language != "" {
		card.LanguageURL = seo.FacetPath(lang, models.FacetLanguages, s.Language)
	}
	for _, topic := range textfmt.SplitTopics(s.Topics) {
		card.Topics = append(card.Topics, link{Label: topic, URL: seo.FacetPath(lang, models.FacetTopics, topic)})
	}
	return card
}
