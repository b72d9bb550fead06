package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"agentskill/i18n"
	"agentskill/seo"
	"agentskill/sitemap"
)

func (s *Server) handleRobots(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", cacheSitemap)
	_, _ = w.Write([]byte(seo.RobotsTxt(s.opts.SiteOrigin)))
}

func (s *Server) handleSitemapIndex(w http.ResponseWriter, r *http.Request) {
	s.writeXML(w, r, sitemap.BuildIndex(r.Context(), s.fetcher, s.opts.SiteOrigin, s.now()))
}

func (s *Server) handleSitemapPages(w http.ResponseWriter, r *http.Request) {
	s.writeXML(w, r, sitemap.Pages(s.opts.SiteOrigin, s.now()))
}

func (s *Server) handleSitemapFacets(w http.ResponseWriter, r *http.Request) {
	s.writeXML(w, r, sitemap.Facets(r.Context(), s.fetcher, s.opts.SiteOrigin, s.now()))
}

func (s *Server) handleSitemapSkills(w http.ResponseWriter, r *http.Request) {
	page, redirect, err := sitemap.ParseSkillsPage(chi.URLParam(r, "page"))
	if err != nil {
		s.handleNotFound(w, r)
		return
	}
	if redirect {
		http.Redirect(w, r, sitemap.SkillsPath(page), http.StatusPermanentRedirect)
		return
	}

	set, err := sitemap.Skills(r.Context(), s.fetcher, s.opts.SiteOrigin, page, s.now())
	switch {
	case errors.Is(err, sitemap.ErrNotFound):
		s.handleNotFound(w, r)
		return
	case err != nil:
		s.log.Warn("Skills sitemap unavailable", zap.Int("page", page), zap.Error(err))
		w.Header().Set("Cache-Control", cacheNone)
		http.Error(w, http.StatusText(http.StatusBadGateway), http.StatusBadGateway)
		return
	}
	s.writeXML(w, r, set)
}

func (s *Server) writeXML(w http.ResponseWriter, r *http.Request, v any) {
	body, err := sitemap.Render(v)
	if err != nil {
		s.log.Error("Failed to render sitemap", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", cacheSitemap)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// handleLegacyRedirect moves an unprefixed URL under the resolved language,
// keeping every query parameter except the language overrides.
func (s *Server) handleLegacyRedirect(w http.ResponseWriter, r *http.Request) {
	lang := LanguageFrom(r.Context())
	target := seo.LocalizedPath(lang, r.URL.EscapedPath())
	if q := i18n.StripOverrides(r.URL.Query()).Encode(); q != "" {
		target += "?" + q
	}
	http.Redirect(w, r, target, http.StatusPermanentRedirect)
}
