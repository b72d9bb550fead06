package web

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"agentskill/api"
	"agentskill/i18n"
	"agentskill/models"
	"agentskill/ogimage"
	"agentskill/seo"
	"agentskill/textfmt"
)

type fact struct {
	Label string
	Value string
	URL   string
}

// detailView is the body of the detail template.
type detailView struct {
	FullName       string
	HTMLURL        string
	Description    string
	Secondary      string
	SecondaryLabel string
	Summary        string
	KeyFeatures    []string
	UseCases       []string
	Stats          []fact
	Facts          []fact
	Topics         []link
	Synced         string
	Home           string
}

func newDetailView(lang i18n.Language, owner, repo string, s models.Skill) detailView {
	m := i18n.For(lang)

	primary := seo.LocalizedDescription(lang, s)
	secondary := s.DescriptionZh
	secondaryLabel := m.DetailTranslated
	summary := textfmt.FirstNonEmpty(s.SummaryEn, s.SummaryZh)
	features, useCases := s.KeyFeaturesEn, s.UseCasesEn
	if lang == i18n.Chinese {
		secondary = s.Description
		secondaryLabel = m.DetailOriginal
		summary = textfmt.NormalizeClaudeSkill(textfmt.FirstNonEmpty(s.SummaryZh, s.SummaryEn))
		if len(s.KeyFeaturesZh) > 0 {
			features = s.KeyFeaturesZh
		}
		if len(s.UseCasesZh) > 0 {
			useCases = s.UseCasesZh
		}
	} else {
		if len(features) == 0 {
			features = s.KeyFeaturesZh
		}
		if len(useCases) == 0 {
			useCases = s.UseCasesZh
		}
	}
	if strings.TrimSpace(secondary) == "" || secondary == primary {
		secondary = ""
	}

	unknown := func(v string) string { return textfmt.FirstNonEmpty(v, m.DetailUnknown) }
	synced := unknown(textfmt.OptionalDate(s.FetchedAt.Time))

	view := detailView{
		FullName:       s.FullName,
		HTMLURL:        s.HTMLURL,
		Description:    textfmt.FirstNonEmpty(primary, m.DetailNoDescription),
		Secondary:      secondary,
		SecondaryLabel: secondaryLabel,
		Summary:        summary,
		KeyFeatures:    features,
		UseCases:       useCases,
		Stats: []fact{
			{Label: m.DetailStars, Value: textfmt.Number(string(lang), s.Stars)},
			{Label: m.DetailForks, Value: textfmt.Number(string(lang), s.Forks)},
			{Label: m.DetailLanguage, Value: unknown(s.Language)},
			{Label: m.DetailLastPushed, Value: unknown(textfmt.OptionalDate(s.LastPushedAt.Time))},
			{Label: m.DetailLastSynced, Value: synced},
		},
		Facts: []fact{
			{Label: m.DetailOwner, Value: owner},
			{Label: m.DetailRepo, Value: repo},
			{Label: m.DetailFullName, Value: s.FullName},
			{Label: m.DetailRepoID, Value: textfmt.Number(string(lang), int(s.RepoID))},
			{Label: m.DetailGitHub, Value: s.HTMLURL, URL: s.HTMLURL},
		},
		Synced: synced,
		Home:   seo.LocalizedPath(lang, ""),
	}
	if s.Language != "" {
		view.Stats[2].URL = seo.FacetPath(lang, models.FacetLanguages, s.Language)
	}
	view.Facts[0].URL = seo.FacetPath(lang, models.FacetOwners, owner)
	for _, topic := range textfmt.SplitTopics(s.Topics) {
		view.Topics = append(view.Topics, link{Label: topic, URL: seo.FacetPath(lang, models.FacetTopics, topic)})
	}
	return view
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	lang, ok := s.routeLanguage(w, r)
	if !ok {
		return
	}
	owner, repo := pathParam(r, "owner"), pathParam(r, "repo")

	skill, err := s.fetcher.FetchSkill(r.Context(), owner, repo)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			s.handleNotFound(w, r)
			return
		}
		s.log.Warn("Failed to fetch skill",
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Error(err),
		)
		s.renderUnavailable(w, r, lang)
		return
	}

	m := i18n.For(lang)
	title := skill.FullName + " - " + m.SiteName
	description := textfmt.Snippet(textfmt.FirstNonEmpty(seo.LocalizedDescription(lang, *skill), m.DetailFallbackDesc), 200)
	meta := seo.NewMeta(seo.PageInput{
		Origin:      s.opts.SiteOrigin,
		Lang:        lang,
		Title:       title,
		Description: description,
		PathFor: func(l i18n.Language) string {
			return seo.DetailPath(l, owner, repo)
		},
		Indexable: true,
		OGType:    "article",
		ImagePath: seo.OGImagePath(lang, owner, repo),
	})

	home := seo.Crumb{Name: m.HomeLabel, URL: seo.AbsoluteURL(s.opts.SiteOrigin, seo.LocalizedPath(lang, ""))}
	p := s.newPage(lang, meta, r.URL.Path, r.URL.Query(), newDetailView(lang, owner, repo, *skill))
	p.JSONLD = []any{
		seo.NewSoftwareSourceCode(lang, *skill),
		seo.NewBreadcrumbList(home, seo.Crumb{Name: skill.FullName, URL: meta.Canonical}),
	}

	rememberLanguage(w, r, lang)
	if skill.ID > 0 {
		s.visits.RecordSkillVisit(skill.ID, visitorID(w, r))
	}
	w.Header().Set("Cache-Control", cacheDetail)
	s.render(w, r, http.StatusOK, tmplDetail, p)
}

// renderUnavailable answers a failed upstream lookup with 502 and the
// localized notice.
func (s *Server) renderUnavailable(w http.ResponseWriter, r *http.Request, lang i18n.Language) {
	m := i18n.For(lang)
	meta := seo.NewMeta(seo.PageInput{
		Origin:      s.opts.SiteOrigin,
		Lang:        lang,
		Title:       m.DetailUnavailable + " - " + m.SiteName,
		Description: m.DetailUnavailable,
		PathFor:     func(l i18n.Language) string { return i18n.SwapPrefix(r.URL.Path, l) },
	})
	p := s.newPage(lang, meta, r.URL.Path, r.URL.Query(), notFoundView{
		Title: m.DetailUnavailable,
		Body:  m.Error,
		Home:  seo.LocalizedPath(lang, ""),
	})
	w.Header().Set("Cache-Control", cacheNone)
	s.render(w, r, http.StatusBadGateway, tmplNotFound, p)
}

type notFoundView struct {
	Title string
	Body  string
	Home  string
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	lang := LanguageFrom(r.Context())
	m := i18n.For(lang)
	meta := seo.NewMeta(seo.PageInput{
		Origin:      s.opts.SiteOrigin,
		Lang:        lang,
		Title:       m.NotFoundTitle + " - " + m.SiteName,
		Description: m.NotFoundBody,
		PathFor:     func(l i18n.Language) string { return seo.LocalizedPath(l, "") },
	})
	p := s.newPage(lang, meta, seo.LocalizedPath(lang, ""), nil, notFoundView{
		Title: m.NotFoundTitle,
		Body:  m.NotFoundBody,
		Home:  seo.LocalizedPath(lang, ""),
	})
	w.Header().Set("Cache-Control", cacheNone)
	s.render(w, r, http.StatusNotFound, tmplNotFound, p)
}

func (s *Server) handleSkillOGImage(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.routeLanguage(w, r); !ok {
		return
	}
	owner, repo := pathParam(r, "owner"), pathParam(r, "repo")

	card := ogimage.Card{
		Eyebrow:     "agentskill.work",
		Title:       "Claude Skill",
		Description: i18n.For(i18n.English).DetailUnavailable,
	}
	cacheControl := cacheNone
	skill, err := s.fetcher.FetchSkill(r.Context(), owner, repo)
	switch {
	case err == nil:
		card = ogimage.SkillCard(*skill)
		cacheControl = cacheImage
	case !errors.Is(err, api.ErrNotFound):
		s.log.Warn("Open Graph image falling back",
			zap.String("owner", owner),
			zap.String("repo", repo),
			zap.Error(err),
		)
	}
	s.writePNG(w, r, card, cacheControl)
}

func (s *Server) handleDefaultOGImage(w http.ResponseWriter, r *http.Request) {
	s.writePNG(w, r, ogimage.DefaultCard(), cacheImage)
}

func (s *Server) writePNG(w http.ResponseWriter, r *http.Request, card ogimage.Card, cacheControl string) {
	var buf bytes.Buffer
	if err := ogimage.Render(&buf, card); err != nil {
		s.log.Error("Failed to render Open Graph image", zap.String("path", r.URL.Path), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", cacheControl)
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
