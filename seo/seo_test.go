package seo

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agentskill/i18n"
	"agentskill/models"
)

const origin = "https://www.agentskill.work"

func TestAbsoluteURL(t *testing.T) {
	assert.Equal(t, origin+"/zh", AbsoluteURL(origin+"/", "/zh"))
	assert.Equal(t, origin+"/en", AbsoluteURL(origin, "en"))
}

func TestDetailPathRoundTrip(t *testing.T) {
	testCases := []struct {
		fullName string
	}{
		{fullName: "anthropics/skills"},
		{fullName: "my org/repo name"},
		{fullName: "a%2Fb/c?d"},
		{fullName: "中文/技能"},
		{fullName: "dots.and-dashes/under_score"},
	}

	for _, tc := range testCases {
		t.Run(tc.fullName, func(t *testing.T) {
			skill := models.Skill{FullName: tc.fullName}
			wantOwner, wantRepo, ok := skill.OwnerRepo()
			require.True(t, ok)

			for _, lang := range i18n.All {
				path, ok := SkillPath(lang, skill)
				require.True(t, ok)

				gotLang, owner, repo, ok := ParseDetailPath(path)
				require.True(t, ok, path)
				assert.Equal(t, lang, gotLang)
				assert.Equal(t, wantOwner, owner)
				assert.Equal(t, wantRepo, repo)
			}
		})
	}
}

func TestSkillPathFallsBackToRoot(t *testing.T) {
	path, ok := SkillPath(i18n.English, models.Skill{FullName: "broken"})
	assert.False(t, ok)
	assert.Equal(t, "/en", path)
}

func TestParseDetailPathRejects(t *testing.T) {
	for _, path := range []string{"/fr/skills/a/b", "/en/skills/a", "/en/topics/a/b", "/en/skills/a/b/c", "/en/skills//b"} {
		_, _, _, ok := ParseDetailPath(path)
		assert.False(t, ok, path)
	}
}

func TestFacetPathAndOffset(t *testing.T) {
	assert.Equal(t, "/zh/topics/claude%20code", FacetPath(i18n.Chinese, models.FacetTopics, "claude code"))
	assert.Equal(t, "/en/owners/acme?offset=48", WithOffset(FacetPath(i18n.English, models.FacetOwners, "acme"), 48))
	assert.Equal(t, "/en", WithOffset("/en", 0))
	assert.Equal(t, "/en?x=1&offset=24", WithOffset("/en?x=1", 24))
}

func TestAlternates(t *testing.T) {
	alts := Alternates(origin, func(l i18n.Language) string {
		return WithOffset(LocalizedPath(l, "/latest"), 24)
	})

	assert.Equal(t, []Alternate{
		{Hreflang: "zh-CN", Href: origin + "/zh/latest?offset=24"},
		{Hreflang: "en-US", Href: origin + "/en/latest?offset=24"},
		{Hreflang: "x-default", Href: origin + "/zh/latest?offset=24"},
	}, alts)
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(PageInput{
		Origin:      origin,
		Lang:        i18n.English,
		Title:       "AgentSkill Hub - Page 3",
		Description: "desc",
		PathFor:     func(l i18n.Language) string { return WithOffset(LocalizedPath(l, ""), 48) },
		Indexable:   true,
	})

	assert.Equal(t, origin+"/en?offset=48", meta.Canonical)
	assert.Equal(t, RobotsIndex, meta.Robots)
	assert.Equal(t, "website", meta.OGType)
	assert.Equal(t, origin+DefaultOGImagePath, meta.Image)
	assert.Equal(t, "en_US", meta.OGLocale())
	assert.Equal(t, "zh_CN", meta.OGAlternateLocale())
	assert.Len(t, meta.Alternates, 3)

	noindex := NewMeta(PageInput{Origin: origin, Lang: i18n.Chinese, PathFor: func(l i18n.Language) string { return LocalizedPath(l, "") }})
	assert.Equal(t, RobotsNoIndex, noindex.Robots)
}

func TestVerificationTags(t *testing.T) {
	assert.Empty(t, Verification{}.Tags())
	tags := Verification{Google: "g", Baidu: "b"}.Tags()
	assert.Equal(t, []MetaTag{
		{Name: "google-site-verification", Content: "g"},
		{Name: "baidu-site-verification", Content: "b"},
	}, tags)
}

func TestRobotsTxt(t *testing.T) {
	txt := RobotsTxt(origin + "/")
	assert.True(t, strings.HasPrefix(txt, "User-agent: *\nAllow: /\n"))
	assert.Contains(t, txt, "Sitemap: "+origin+"/sitemap.xml")
}

func TestLocalizedDescription(t *testing.T) {
	s := models.Skill{Description: "A skill", DescriptionZh: "一个 Claude  技能 工具"}
	assert.Equal(t, "一个 Claude Skill 工具", LocalizedDescription(i18n.Chinese, s))
	assert.Equal(t, "A skill", LocalizedDescription(i18n.English, s))

	onlyEn := models.Skill{Description: "Only english"}
	assert.Equal(t, "Only english", LocalizedDescription(i18n.Chinese, onlyEn))
	onlyZh := models.Skill{DescriptionZh: "仅中文"}
	assert.Equal(t, "仅中文", LocalizedDescription(i18n.English, onlyZh))
}

func TestItemList(t *testing.T) {
	long := strings.Repeat("x", 300)
	skills := []models.Skill{
		{FullName: "a/b", HTMLURL: "https://github.com/a/b", Description: long, Language: "Go"},
		{FullName: "c/d", HTMLURL: "https://github.com/c/d"},
	}

	list := NewItemList(origin, i18n.English, origin+"/en?offset=24", 24, 0, skills)
	assert.Equal(t, 25, list.StartIndex)
	assert.Equal(t, 2, list.NumberOfItems)
	require.Len(t, list.ItemListElement, 2)

	first := list.ItemListElement[0]
	assert.Equal(t, 25, first.Position)
	assert.Equal(t, origin+"/en/skills/a/b", first.URL)
	assert.Equal(t, 200, len([]rune(first.Item.Description)))
	assert.True(t, strings.HasSuffix(first.Item.Description, "..."))
	assert.Equal(t, 26, list.ItemListElement[1].Position)

	raw, err := JSON(list)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, "ItemList", decoded["@type"])
	assert.NotContains(t, raw, `"programmingLanguage":""`)
}

func TestWebSiteAndFAQ(t *testing.T) {
	site := NewWebSite(origin, i18n.Chinese)
	assert.Equal(t, origin+"/zh?q={search_term_string}", site.PotentialAction.Target)
	assert.Equal(t, []string{"zh-CN", "en-US"}, site.InLanguage)

	faq := NewFAQPage(i18n.For(i18n.English).FAQItems)
	assert.Len(t, faq.MainEntity, len(i18n.For(i18n.English).FAQItems))
	assert.Equal(t, "Question", faq.MainEntity[0].Type)
}

func TestBreadcrumbsAndSourceCode(t *testing.T) {
	crumbs := NewBreadcrumbList(Crumb{Name: "Home", URL: origin + "/en"}, Crumb{Name: "a/b", URL: origin + "/en/skills/a/b"})
	require.Len(t, crumbs.ItemListElement, 2)
	assert.Equal(t, 2, crumbs.ItemListElement[1].Position)

	pushed := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	code := NewSoftwareSourceCode(i18n.English, models.Skill{FullName: "a/b", HTMLURL: "https://github.com/a/b", LastPushedAt: models.Timestamp{Time: pushed}})
	assert.Equal(t, "2026-01-05T08:00:00Z", code.DateModified)
	assert.Equal(t, schemaContext, code.Context)
}
