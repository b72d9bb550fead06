package seo

import (
	"fmt"
	"strings"

	"agentskill/i18n"
)

// Robots directives.
const (
	RobotsIndex   = "index,follow"
	RobotsNoIndex = "noindex,follow"
)

// RobotsFor returns the directive for a listing: query-bearing pages are kept
// out of the index but their links are still followed.
func RobotsFor(indexable bool) string {
	if indexable {
		return RobotsIndex
	}
	return RobotsNoIndex
}

// Verification holds search engine ownership tokens. Empty tokens emit no tag.
type Verification struct {
	Google string
	Bing   string
	Baidu  string
}

// MetaTag is a <meta name content> pair.
type MetaTag struct {
	Name    string
	Content string
}

// Tags returns the verification meta tags in a stable order.
func (v Verification) Tags() []MetaTag {
	var tags []MetaTag
	if v.Google != "" {
		tags = append(tags, MetaTag{Name: "google-site-verification", Content: v.Google})
	}
	if v.Bing != "" {
		tags = append(tags, MetaTag{Name: "msvalidate.01", Content: v.Bing})
	}
	if v.Baidu != "" {
		tags = append(tags, MetaTag{Name: "baidu-site-verification", Content: v.Baidu})
	}
	return tags
}

// Meta is everything rendered into a page's <head>.
type Meta struct {
	Lang        i18n.Language
	Title       string
	Description string
	Canonical   string
	Alternates  []Alternate
	Robots      string
	SiteName    string
	// OGType is "website" for listings and "article" for detail pages.
	OGType      string
	Image       string
	TwitterCard string
	Prev        string
	Next        string
}

// OGLocale and OGAlternateLocale feed og:locale and og:locale:alternate.
func (m Meta) OGLocale() string          { return m.Lang.OGLocale() }
func (m Meta) OGAlternateLocale() string { return m.Lang.Other().OGLocale() }

// PageInput describes a page for NewMeta.
type PageInput struct {
	Origin      string
	Lang        i18n.Language
	Title       string
	Description string
	// PathFor returns the localized path of this page, offset included.
	PathFor   func(i18n.Language) string
	Indexable bool
	OGType    string
	ImagePath string
}

// NewMeta fills the derived fields: canonical and alternates from PathFor,
// robots from Indexable, absolute image URL.
func NewMeta(in PageInput) Meta {
	ogType := in.OGType
	if ogType == "" {
		ogType = "website"
	}
	image := in.ImagePath
	if image == "" {
		image = DefaultOGImagePath
	}
	return Meta{
		Lang:        in.Lang,
		Title:       in.Title,
		Description: in.Description,
		Canonical:   AbsoluteURL(in.Origin, in.PathFor(in.Lang)),
		Alternates:  Alternates(in.Origin, in.PathFor),
		Robots:      RobotsFor(in.Indexable),
		SiteName:    i18n.For(in.Lang).SiteName,
		OGType:      ogType,
		Image:       AbsoluteURL(in.Origin, image),
		TwitterCard: "summary_large_image",
	}
}

// RobotsTxt allows every crawler and points at the sitemap index.
func RobotsTxt(origin string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	fmt.Fprintf(&b, "\nSitemap: %s\n", AbsoluteURL(origin, "/sitemap.xml"))
	return b.String()
}
