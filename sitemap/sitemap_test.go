package sitemap

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agentskill/api"
	"agentskill/api/apitest"
	"agentskill/models"
)

const origin = "https://www.agentskill.work"

var today = time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

func TestPages(t *testing.T) {
	set := Pages(origin, today)

	assert.Equal(t, []string{
		origin + "/zh",
		origin + "/en",
		origin + "/zh/latest",
		origin + "/en/latest",
		origin + "/zh/openclaw",
		origin + "/en/openclaw",
	}, set.Locations())
	assert.Equal(t, "0.9", set.URLs[0].Priority)
	assert.Equal(t, Hourly, set.URLs[2].ChangeFreq)
	assert.Equal(t, Daily, set.URLs[5].ChangeFreq)
	assert.Equal(t, "2026-03-15", set.URLs[0].LastMod)
}

func facetFetcher() *apitest.MockFetcher {
	fetcher := new(apitest.MockFetcher)
	fetcher.On("FetchFacets", mock.Anything, models.FacetTopics, 100).
		Return(&models.FacetList{Items: []models.FacetItem{{Value: "mcp", Count: 50}, {Value: "claude code", Count: 3}}}, nil)
	fetcher.On("FetchFacets", mock.Anything, models.FacetLanguages, 50).
		Return(nil, api.ErrUpstream)
	fetcher.On("FetchFacets", mock.Anything, models.FacetOwners, 50).
		Return(&models.FacetList{Items: []models.FacetItem{{Value: "acme", Count: 24}}}, nil)
	return fetcher
}

func TestFacets(t *testing.T) {
	fetcher := facetFetcher()
	set := Facets(context.Background(), fetcher, origin, today)

	assert.Equal(t, []string{
		origin + "/zh/topics/mcp",
		origin + "/zh/topics/mcp?offset=24",
		origin + "/zh/topics/mcp?offset=48",
		origin + "/en/topics/mcp",
		origin + "/en/topics/mcp?offset=24",
		origin + "/en/topics/mcp?offset=48",
		origin + "/zh/topics/claude%20code",
		origin + "/en/topics/claude%20code",
		origin + "/zh/owners/acme",
		origin + "/en/owners/acme",
	}, set.Locations())
	assert.Equal(t, "0.6", set.URLs[0].Priority)
	assert.Equal(t, "0.4", set.URLs[1].Priority)
	assert.Equal(t, Weekly, set.URLs[1].ChangeFreq)
	fetcher.AssertExpectations(t)
}

func TestFacetsIdempotent(t *testing.T) {
	fetcher := facetFetcher()
	first := Facets(context.Background(), fetcher, origin, today)
	second := Facets(context.Background(), fetcher, origin, today.Add(48*time.Hour))

	assert.Equal(t, first.Locations(), second.Locations())

	a, err := Render(first)
	require.NoError(t, err)
	b, err := Render(Facets(context.Background(), fetcher, origin, today))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestParseSkillsPage(t *testing.T) {
	testCases := []struct {
		raw      string
		page     int
		redirect bool
		err      error
	}{
		{raw: "1.xml", page: 1},
		{raw: "12.xml", page: 12},
		{raw: "7", page: 7, redirect: true},
		{raw: "0.xml", err: ErrNotFound},
		{raw: "x.xml", err: ErrNotFound},
		{raw: "1.json", err: ErrNotFound},
		{raw: "", err: ErrNotFound},
		{raw: "9007199254740992.xml", err: ErrNotFound},
	}

	for _, tc := range testCases {
		t.Run(tc.raw, func(t *testing.T) {
			page, redirect, err := ParseSkillsPage(tc.raw)
			if tc.err != nil {
				assert.ErrorIs(t, err, tc.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.page, page)
			assert.Equal(t, tc.redirect, redirect)
		})
	}
}

func TestSkills(t *testing.T) {
	pushed := time.Date(2026, 1, 2, 23, 0, 0, 0, time.UTC)
	fetched := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	fetcher := new(apitest.MockFetcher)
	fetcher.On("FetchSkills", mock.Anything, "", api.Options{Limit: 100, Offset: 100}).
		Return(&models.SkillListResponse{Total: 203, Items: []models.Skill{
			{FullName: "a/b", HTMLURL: "https://github.com/a/b", LastPushedAt: models.Timestamp{Time: pushed}, FetchedAt: models.Timestamp{Time: fetched}},
			{FullName: "c/d", HTMLURL: "https://github.com/c/d", FetchedAt: models.Timestamp{Time: fetched}},
			{FullName: "e/f", HTMLURL: "https://github.com/e/f"},
		}}, nil)

	set, err := Skills(context.Background(), fetcher, origin, 2, today)
	require.NoError(t, err)
	require.Len(t, set.URLs, 6)

	assert.Equal(t, origin+"/zh/skills/a/b", set.URLs[0].Loc)
	assert.Equal(t, origin+"/en/skills/a/b", set.URLs[1].Loc)
	assert.Equal(t, "2026-01-02", set.URLs[0].LastMod)
	assert.Equal(t, "2026-02-03", set.URLs[2].LastMod)
	assert.Equal(t, "2026-03-15", set.URLs[4].LastMod)
	assert.Equal(t, Daily, set.URLs[0].ChangeFreq)
	assert.Equal(t, "0.8", set.URLs[0].Priority)
}

func TestSkillsErrors(t *testing.T) {
	fetcher := new(apitest.MockFetcher)
	fetcher.On("FetchSkills", mock.Anything, "", api.Options{Limit: 100, Offset: 900}).
		Return(&models.SkillListResponse{Total: 203, Items: []models.Skill{}}, nil)
	fetcher.On("FetchSkills", mock.Anything, "", api.Options{Limit: 100, Offset: 0}).
		Return(nil, errors.New("connection refused"))

	_, err := Skills(context.Background(), fetcher, origin, 10, today)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = Skills(context.Background(), fetcher, origin, 1, today)
	assert.ErrorIs(t, err, ErrUpstream)

	_, err = Skills(context.Background(), fetcher, origin, 0, today)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuildIndex(t *testing.T) {
	fetcher := new(apitest.MockFetcher)
	fetcher.On("FetchSkills", mock.Anything, "", api.Options{Limit: 1}).
		Return(&models.SkillListResponse{Total: 250, Items: []models.Skill{}}, nil)

	idx := BuildIndex(context.Background(), fetcher, origin, today)
	var locs []string
	for _, e := range idx.Sitemaps {
		locs = append(locs, e.Loc)
	}
	assert.Equal(t, []string{
		origin + "/sitemap-pages.xml",
		origin + "/sitemap-facets.xml",
		origin + "/sitemap-skills/1.xml",
		origin + "/sitemap-skills/2.xml",
		origin + "/sitemap-skills/3.xml",
	}, locs)
	fetcher.AssertNumberOfCalls(t, "FetchSkills", 1)
}

func TestBuildIndexUpstreamFailure(t *testing.T) {
	fetcher := new(apitest.MockFetcher)
	fetcher.On("FetchSkills", mock.Anything, "", api.Options{Limit: 1}).Return(nil, api.ErrUpstream)

	idx := BuildIndex(context.Background(), fetcher, origin, today)
	assert.Len(t, idx.Sitemaps, 2)
}

func TestRender(t *testing.T) {
	out, err := Render(Pages(origin, today))
	require.NoError(t, err)
	body := string(out)

	assert.True(t, strings.HasPrefix(body, `<?xml version="1.0" encoding="UTF-8"?>`))
	assert.Contains(t, body, `<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">`)
	assert.Contains(t, body, "<loc>https://www.agentskill.work/zh</loc>")
	assert.Contains(t, body, "<changefreq>hourly</changefreq>")

	idx, err := Render(Index{Xmlns: Namespace, Sitemaps: []Entry{{Loc: origin + "/sitemap-pages.xml", LastMod: "2026-03-15"}}})
	require.NoError(t, err)
	assert.Contains(t, string(idx), "<sitemapindex")
}

func TestRenderEscapesLoc(t *testing.T) {
	out, err := Render(URLSet{Xmlns: Namespace, URLs: []URL{{Loc: origin + "/zh?a=1&offset=24", LastMod: "2026-03-15"}}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "?a=1&amp;offset=24")
}
