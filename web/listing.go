package web

import (
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"agentskill/api"
	"agentskill/i18n"
	"agentskill/models"
	"agentskill/pagination"
	"agentskill/seo"
)

// listingKind configures the shared listing handler for one route.
type listingKind struct {
	name  string
	facet models.FacetKind
	sort  string
	// strict turns a malformed offset into a 404 instead of page one.
	strict    bool
	noSearch  bool
	baseQuery string
	// about renders the info cards and FAQ under the grid.
	about bool
}

var (
	homeListing     = listingKind{name: "home", about: true}
	latestListing   = listingKind{name: "latest", sort: api.SortNewest, strict: true, noSearch: true, about: true}
	openclawListing = listingKind{name: "openclaw", baseQuery: "openclaw"}
	topicListing    = listingKind{name: "topic", facet: models.FacetTopics}
	languageListing = listingKind{name: "language", facet: models.FacetLanguages}
	ownerListing    = listingKind{name: "owner", facet: models.FacetOwners}
)

// path is the page path below the language prefix.
func (k listingKind) path(value string) string {
	switch {
	case k.facet != "":
		return "/" + string(k.facet) + "/" + url.PathEscape(value)
	case k.name == "home":
		return ""
	default:
		return "/" + k.name
	}
}

// query merges the fixed base query with what the visitor typed.
func (k listingKind) query(user string) string {
	return strings.TrimSpace(k.baseQuery + " " + user)
}

func (k listingKind) options(value string, offset int) api.Options {
	opts := api.Options{Limit: pagination.PageSize, Offset: offset, Sort: k.sort}
	switch k.facet {
	case models.FacetTopics:
		opts.Topic = value
	case models.FacetLanguages:
		opts.Language = value
	case models.FacetOwners:
		opts.Owner = value
	}
	return opts
}

// listingCopy is the localized text of one listing page.
type listingCopy struct {
	Title       string
	Heading     string
	Subtitle    string
	Description string
}

func (k listingKind) copy(lang i18n.Language, value string) listingCopy {
	m := i18n.For(lang)
	switch k.facet {
	case models.FacetTopics, models.FacetLanguages, models.FacetOwners:
		heading := facetHeading(m, k.facet)
		return listingCopy{
			Title:       i18n.FacetTitle(lang, heading, value),
			Heading:     i18n.FacetHeading(lang, heading, value),
			Subtitle:    i18n.FacetIntro(lang, heading, value),
			Description: i18n.FacetDescription(lang, heading, value),
		}
	}
	switch k.name {
	case "latest":
		return listingCopy{Title: m.LatestTitle, Heading: m.LatestTitle, Subtitle: m.LatestSubtitle, Description: m.LatestSubtitle}
	case "openclaw":
		return listingCopy{Title: m.OpenclawTitle, Heading: m.OpenclawTitle, Subtitle: m.OpenclawSubtitle, Description: m.OpenclawSubtitle}
	default:
		return listingCopy{Title: m.Title, Heading: m.Title, Subtitle: m.Subtitle, Description: m.Subtitle}
	}
}

func facetHeading(m i18n.Messages, kind models.FacetKind) string {
	switch kind {
	case models.FacetLanguages:
		return m.LanguageHeading
	case models.FacetOwners:
		return m.OwnerHeading
	default:
		return m.TopicHeading
	}
}

// listingView is the body of the listing template.
type listingView struct {
	listingCopy
	Kind       string
	Search     bool
	SearchPath string
	Query      string
	Items      []skillCard
	Total      int
	First      int
	Last       int
	Prev       string
	Next       string
	Error      string
	Metrics    *metricsView
	About      bool
}

type metricsView struct {
	PV int
	UV int
}

func (s *Server) listingHandler(kind listingKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang, ok := s.routeLanguage(w, r)
		if !ok {
			return
		}

		var value string
		if kind.facet != "" {
			value = strings.TrimSpace(pathParam(r, "value"))
			if value == "" {
				s.handleNotFound(w, r)
				return
			}
		}

		params := r.URL.Query()
		userQuery := params.Get("q")
		if kind.noSearch {
			userQuery = ""
		}
		win := pagination.ResolveWindow(userQuery, params.Get("offset"), pagination.PageSize, kind.strict)
		if win.Invalid {
			s.handleNotFound(w, r)
			return
		}

		text := kind.copy(lang, value)
		relPath := kind.path(value)
		pagePath := seo.LocalizedPath(lang, relPath)
		view := listingView{
			listingCopy: text,
			Kind:        kind.name,
			Search:      !kind.noSearch,
			SearchPath:  pagePath,
			Query:       win.Query,
			About:       kind.about,
		}

		status := http.StatusOK
		resp, err := s.fetcher.FetchSkills(r.Context(), kind.query(win.Query), kind.options(value, win.Offset))
		switch {
		case err != nil:
			s.log.Warn("Failed to fetch listing",
				zap.String("kind", kind.name),
				zap.String("value", value),
				zap.Int("offset", win.Offset),
				zap.Error(err),
			)
			status = http.StatusBadGateway
			view.Error = i18n.For(lang).Error
		case pagination.NotFound(win.Offset, len(resp.Items)):
			s.handleNotFound(w, r)
			return
		default:
			view.Total = resp.Total
			view.First, view.Last = pagination.Range(win.Offset, len(resp.Items))
			for _, item := range resp.Items {
				view.Items = append(view.Items, newSkillCard(lang, item))
			}
		}

		title := text.Title
		if page := pagination.PageNumber(win.Offset, pagination.PageSize); page > 1 {
			title += i18n.PageSuffix(lang, page)
		}
		meta := seo.NewMeta(seo.PageInput{
			Origin:      s.opts.SiteOrigin,
			Lang:        lang,
			Title:       title,
			Description: text.Description,
			PathFor: func(l i18n.Language) string {
				return seo.WithOffset(seo.LocalizedPath(l, relPath), win.Offset)
			},
			Indexable: win.Indexable,
		})

		if win.Query == "" && err == nil {
			if win.Offset > 0 {
				view.Prev = seo.WithOffset(pagePath, win.Offset-pagination.PageSize)
				meta.Prev = seo.AbsoluteURL(s.opts.SiteOrigin, view.Prev)
			}
			if pagination.HasMore(win.Offset, len(resp.Items), resp.Total) {
				view.Next = seo.WithOffset(pagePath, pagination.NextOffset(win.Offset, pagination.PageSize))
				meta.Next = seo.AbsoluteURL(s.opts.SiteOrigin, view.Next)
			}
		}

		jsonld := s.listingStructuredData(kind, lang, text, meta.Canonical)
		if err == nil && len(resp.Items) > 0 {
			jsonld = append(jsonld, seo.NewItemList(s.opts.SiteOrigin, lang, meta.Canonical, win.Offset, resp.Total, resp.Items))
		}

		if kind.name == "home" {
			view.Metrics = s.metrics(r)
		}

		switch {
		case status != http.StatusOK || win.Query != "":
			w.Header().Set("Cache-Control", cacheNone)
		default:
			w.Header().Set("Cache-Control", cacheListing)
		}

		rememberLanguage(w, r, lang)
		s.visits.RecordVisit(visitorID(w, r))

		p := s.newPage(lang, meta, r.URL.Path, params, view)
		p.JSONLD = jsonld
		s.render(w, r, status, tmplListing, p)
	}
}

// listingStructuredData returns the page-level entities: the site and its FAQ
// on the home page, a breadcrumb trail everywhere else.
func (s *Server) listingStructuredData(kind listingKind, lang i18n.Language, text listingCopy, canonical string) []any {
	m := i18n.For(lang)
	if kind.name == "home" {
		return []any{
			seo.NewWebSite(s.opts.SiteOrigin, lang),
			seo.NewFAQPage(m.FAQItems),
		}
	}
	home := seo.Crumb{Name: m.HomeLabel, URL: seo.AbsoluteURL(s.opts.SiteOrigin, seo.LocalizedPath(lang, ""))}
	return []any{seo.NewBreadcrumbList(home, seo.Crumb{Name: text.Heading, URL: canonical})}
}

// metrics loads the site counters for the footer. Failures hide the footer.
func (s *Server) metrics(r *http.Request) *metricsView {
	m, err := s.fetcher.FetchMetrics(r.Context())
	if err != nil {
		s.log.Debug("Metrics unavailable", zap.Error(err))
		return nil
	}
	return &metricsView{PV: int(m.PV), UV: int(m.UV)}
}
