// Package seo builds canonical URLs, page metadata, structured data and
// robots rules for the public site.
package seo

import (
	"net/url"
	"strconv"
	"strings"

	"agentskill/i18n"
	"agentskill/models"
)

// AbsoluteURL joins origin and an absolute or relative path.
func AbsoluteURL(origin, path string) string {
	origin = strings.TrimRight(origin, "/")
	if !strings.HasPrefix(path, "/") {
		return origin + "/" + path
	}
	return origin + path
}

// LocalizedPath prefixes path with the language segment. An empty path is
// the language root.
func LocalizedPath(lang i18n.Language, path string) string {
	if path == "" || path == "/" {
		return "/" + string(lang)
	}
	return "/" + string(lang) + path
}

// DetailPath is the localized detail page of owner/repo, each segment escaped.
func DetailPath(lang i18n.Language, owner, repo string) string {
	return LocalizedPath(lang, "/skills/"+url.PathEscape(owner)+"/"+url.PathEscape(repo))
}

// SkillPath is DetailPath for a record; ok is false when FullName is not
// owner/repo, in which case the language root is returned.
func SkillPath(lang i18n.Language, s models.Skill) (string, bool) {
	owner, repo, ok := s.OwnerRepo()
	if !ok {
		return LocalizedPath(lang, ""), false
	}
	return DetailPath(lang, owner, repo), true
}

// ParseDetailPath is the inverse of DetailPath.
func ParseDetailPath(path string) (lang i18n.Language, owner, repo string, ok bool) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != 4 || parts[1] != "skills" {
		return "", "", "", false
	}
	lang, ok = i18n.Parse(parts[0])
	if !ok {
		return "", "", "", false
	}
	owner, err := url.PathUnescape(parts[2])
	if err != nil || owner == "" {
		return "", "", "", false
	}
	repo, err = url.PathUnescape(parts[3])
	if err != nil || repo == "" {
		return "", "", "", false
	}
	return lang, owner, repo, true
}

// FacetPath is the localized listing of one facet value.
func FacetPath(lang i18n.Language, kind models.FacetKind, value string) string {
	return LocalizedPath(lang, "/"+string(kind)+"/"+url.PathEscape(value))
}

// OGImagePath is the Open Graph card of a detail page.
func OGImagePath(lang i18n.Language, owner, repo string) string {
	return DetailPath(lang, owner, repo) + "/opengraph-image"
}

// DefaultOGImagePath is the site-wide Open Graph card.
const DefaultOGImagePath = "/opengraph-image"

// WithOffset appends the page cursor when past the first page.
func WithOffset(path string, offset int) string {
	if offset <= 0 {
		return path
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + "offset=" + strconv.Itoa(offset)
}

// Alternate is one hreflang link.
type Alternate struct {
	Hreflang string
	Href     string
}

// XDefault is the hreflang of the fallback alternate.
const XDefault = "x-default"

// Alternates lists the zh-CN, en-US and x-default links for a page whose
// localized path is produced by pathFor. x-default points at the default
// language.
func Alternates(origin string, pathFor func(i18n.Language) string) []Alternate {
	out := make([]Alternate, 0, len(i18n.All)+1)
	for _, lang := range i18n.All {
		out = append(out, Alternate{Hreflang: lang.Hreflang(), Href: AbsoluteURL(origin, pathFor(lang))})
	}
	out = append(out, Alternate{Hreflang: XDefault, Href: AbsoluteURL(origin, pathFor(i18n.Default))})
	return out
}
