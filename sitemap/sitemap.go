// Package sitemap generates the XML sitemaps crawlers use to discover every
// listing, facet and skill page.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"agentskill/api"
	"agentskill/i18n"
	"agentskill/logger"
	"agentskill/models"
	"agentskill/pagination"
	"agentskill/seo"
	"agentskill/textfmt"
)

// Facet value limits requested from the API.
var facetLimits = map[models.FacetKind]int{
	models.FacetTopics:    100,
	models.FacetLanguages: 50,
	models.FacetOwners:    50,
}

// Pages lists the static entry points in both languages.
func Pages(origin string, today time.Time) URLSet {
	stamp := textfmt.DateStamp(today)
	pages := []struct {
		path     string
		freq     string
		priority string
	}{
		{path: "", freq: Hourly, priority: "0.9"},
		{path: "/latest", freq: Hourly, priority: "0.7"},
		{path: "/openclaw", freq: Daily, priority: "0.6"},
	}

	var urls []URL
	for _, p := range pages {
		for _, lang := range i18n.All {
			urls = append(urls, URL{
				Loc:        seo.AbsoluteURL(origin, seo.LocalizedPath(lang, p.path)),
				LastMod:    stamp,
				ChangeFreq: p.freq,
				Priority:   p.priority,
			})
		}
	}
	return newURLSet(urls)
}

// Facets lists every facet value page, plus its extra pages, in both
// languages. A facet kind the API fails to return contributes nothing.
func Facets(ctx context.Context, fetcher api.Fetcher, origin string, today time.Time) URLSet {
	results := make([][]models.FacetItem, len(models.FacetKinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, kind := range models.FacetKinds {
		g.Go(func() error {
			list, err := fetcher.FetchFacets(gctx, kind, facetLimits[kind])
			if err != nil {
				logger.Warn("Skipping facet in sitemap",
					zap.String("kind", string(kind)),
					zap.Error(err))
				return nil
			}
			results[i] = list.Items
			return nil
		})
	}
	_ = g.Wait()

	stamp := textfmt.DateStamp(today)
	var urls []URL
	for i, kind := range models.FacetKinds {
		for _, item := range results[i] {
			pages := pagination.TotalPages(item.Count, pagination.PageSize)
			for _, lang := range i18n.All {
				path := seo.FacetPath(lang, kind, item.Value)
				urls = append(urls, URL{
					Loc:        seo.AbsoluteURL(origin, path),
					LastMod:    stamp,
					ChangeFreq: Weekly,
					Priority:   "0.6",
				})
				for k := 1; k < pages; k++ {
					urls = append(urls, URL{
						Loc:        seo.AbsoluteURL(origin, seo.WithOffset(path, k*pagination.PageSize)),
						LastMod:    stamp,
						ChangeFreq: Weekly,
						Priority:   "0.4",
					})
				}
			}
		}
	}
	return newURLSet(urls)
}

var skillsPagePattern = regexp.MustCompile(`^([0-9]+)\.xml$`)

// ParseSkillsPage reads the "{n}.xml" route segment. A bare number is
// accepted with redirect set, so the caller can send the canonical form.
func ParseSkillsPage(raw string) (page int, redirect bool, err error) {
	digits := raw
	if m := skillsPagePattern.FindStringSubmatch(raw); m != nil {
		digits = m[1]
	} else {
		redirect = true
	}
	n, ok := pagination.ParseOffset(digits)
	if raw == "" || digits == "" || !ok || n < 1 {
		return 0, false, fmt.Errorf("%w: skills page %q", ErrNotFound, raw)
	}
	return n, redirect, nil
}

// SkillsPath is the route of the n-th skills sitemap.
func SkillsPath(page int) string {
	return "/sitemap-skills/" + strconv.Itoa(page) + ".xml"
}

// Skills lists detail pages for one batch of skills. Page is 1-based.
func Skills(ctx context.Context, fetcher api.Fetcher, origin string, page int, today time.Time) (URLSet, error) {
	if page < 1 {
		return URLSet{}, fmt.Errorf("%w: page %d", ErrNotFound, page)
	}
	list, err := fetcher.FetchSkills(ctx, "", api.Options{
		Limit:  pagination.SitemapBatch,
		Offset: (page - 1) * pagination.SitemapBatch,
	})
	if err != nil {
		return URLSet{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if len(list.Items) == 0 {
		return URLSet{}, fmt.Errorf("%w: skills page %d is empty", ErrNotFound, page)
	}

	stamp := textfmt.DateStamp(today)
	var urls []URL
	for _, skill := range list.Items {
		owner, repo, ok := skill.OwnerRepo()
		if !ok {
			continue
		}
		lastmod := textfmt.FirstNonEmpty(
			textfmt.OptionalDate(skill.LastPushedAt.Time),
			textfmt.OptionalDate(skill.FetchedAt.Time),
			stamp,
		)
		for _, lang := range i18n.All {
			urls = append(urls, URL{
				Loc:        seo.AbsoluteURL(origin, seo.DetailPath(lang, owner, repo)),
				LastMod:    lastmod,
				ChangeFreq: Daily,
				Priority:   "0.8",
			})
		}
	}
	return newURLSet(urls), nil
}

// SkillsPageCount asks the API for the collection size and derives the number
// of skills sitemaps. Failure counts as an empty collection.
func SkillsPageCount(ctx context.Context, fetcher api.Fetcher) int {
	list, err := fetcher.FetchSkills(ctx, "", api.Options{Limit: 1})
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			logger.Warn("Sitemap index could not read skill total", zap.Error(err))
		}
		return 0
	}
	return pagination.TotalPages(list.Total, pagination.SitemapBatch)
}

// BuildIndex points at the pages, facets and every skills sitemap.
func BuildIndex(ctx context.Context, fetcher api.Fetcher, origin string, today time.Time) Index {
	stamp := textfmt.DateStamp(today)
	paths := []string{"/sitemap-pages.xml", "/sitemap-facets.xml"}
	pages := SkillsPageCount(ctx, fetcher)
	for page := 1; page <= pages; page++ {
		paths = append(paths, SkillsPath(page))
	}

	idx := Index{Xmlns: Namespace, Sitemaps: make([]Entry, 0, len(paths))}
	for _, p := range paths {
		idx.Sitemaps = append(idx.Sitemaps, Entry{Loc: seo.AbsoluteURL(origin, p), LastMod: stamp})
	}
	return idx
}
