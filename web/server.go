// Package web serves the bilingual skills directory: listings, detail pages,
// Open Graph cards and the crawler endpoints.
package web

import (
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"agentskill/api"
	"agentskill/logger"
	"agentskill/seo"
)

// VisitRecorder receives visit beacons. Implementations must not block the
// request.
type VisitRecorder interface {
	RecordVisit(visitorID string)
	RecordSkillVisit(skillID int64, visitorID string)
}

// Options configures the public site.
type Options struct {
	SiteOrigin     string
	Verification   seo.Verification
	UmamiScriptURL string
	UmamiWebsiteID string
}

// Server wires handlers, templates and the skills API together.
type Server struct {
	opts      Options
	fetcher   api.Fetcher
	visits    VisitRecorder
	templates map[string]*template.Template
	router    chi.Router
	log       *zap.Logger
	now       func() time.Time
}

// NewServer constructs an HTTP handler ready to serve the site. visits may be
// nil, in which case no beacons are sent.
func NewServer(opts Options, fetcher api.Fetcher, visits VisitRecorder) (*Server, error) {
	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	if visits == nil {
		visits = noopVisits{}
	}

	s := &Server{
		opts:      opts,
		fetcher:   fetcher,
		visits:    visits,
		templates: tmpl,
		log:       logger.Named("web"),
		now:       time.Now,
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP satisfies http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(accessLog(s.log))
	r.Use(chimiddleware.Recoverer)
	r.Use(privateWhenCookie)
	r.Use(s.resolveLanguage)

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Crawler endpoints
	r.Get("/robots.txt", s.handleRobots)
	r.Get("/sitemap.xml", s.handleSitemapIndex)
	r.Get("/sitemap-pages.xml", s.handleSitemapPages)
	r.Get("/sitemap-facets.xml", s.handleSitemapFacets)
	r.Get("/sitemap-skills/{page}", s.handleSitemapSkills)
	r.Get("/opengraph-image", s.handleDefaultOGImage)

	// Legacy unprefixed routes
	r.Get("/", s.handleLegacyRedirect)
	r.Get("/latest", s.handleLegacyRedirect)
	r.Get("/openclaw", s.handleLegacyRedirect)
	r.Get("/topics/{value}", s.handleLegacyRedirect)
	r.Get("/languages/{value}", s.handleLegacyRedirect)
	r.Get("/owners/{value}", s.handleLegacyRedirect)
	r.Get("/skills/{owner}/{repo}", s.handleLegacyRedirect)

	// Localized pages
	r.Route("/{lang}", func(r chi.Router) {
		r.Get("/", s.listingHandler(homeListing))
		r.Get("/latest", s.listingHandler(latestListing))
		r.Get("/openclaw", s.listingHandler(openclawListing))
		r.Get("/topics/{value}", s.listingHandler(topicListing))
		r.Get("/languages/{value}", s.listingHandler(languageListing))
		r.Get("/owners/{value}", s.listingHandler(ownerListing))
		r.Get("/skills/{owner}/{repo}", s.handleDetail)
		r.Get("/skills/{owner}/{repo}/opengraph-image", s.handleSkillOGImage)
	})

	r.NotFound(s.handleNotFound)
	return r
}

type noopVisits struct{}

func (noopVisits) RecordVisit(string)             {}
func (noopVisits) RecordSkillVisit(int64, string) {}
