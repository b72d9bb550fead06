// Package i18n resolves the request language and holds the localized copy.
package i18n

import (
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Language is one of the two locales the site is rendered in.
type Language string

const (
	English Language = "en"
	Chinese Language = "zh"
)

// Default is served when nothing about the request expresses a preference.
const Default = Chinese

// Header propagates the resolved language to downstream handlers.
const Header = "X-Agentskill-Lang"

// StorageKey names the cookie (and CLI settings key) holding the stored preference.
const StorageKey = "agentskill_lang"

// All lists the supported languages in sitemap/alternate order.
var All = []Language{Chinese, English}

// Parse accepts only an exact route segment.
func Parse(segment string) (Language, bool) {
	switch segment {
	case "en":
		return English, true
	case "zh":
		return Chinese, true
	}
	return "", false
}

// Normalize maps a loose language hint such as "en-US" or "zh-Hans" to a Language.
func Normalize(value string) Language {
	if strings.HasPrefix(strings.ToLower(strings.TrimSpace(value)), "en") {
		return English
	}
	return Chinese
}

// Other returns the opposite language, used by the toggle.
func (l Language) Other() Language {
	if l == English {
		return Chinese
	}
	return English
}

// HTMLLang is the value of the <html lang> attribute.
func (l Language) HTMLLang() string {
	if l == English {
		return "en"
	}
	return "zh-CN"
}

// Hreflang is the alternate-link code advertised to search engines.
func (l Language) Hreflang() string {
	if l == English {
		return "en-US"
	}
	return "zh-CN"
}

// OGLocale is the Open Graph locale.
func (l Language) OGLocale() string {
	if l == English {
		return "en_US"
	}
	return "zh_CN"
}

func (l Language) String() string { return string(l) }

// FromPath reads a leading /en or /zh segment.
func FromPath(path string) (Language, bool) {
	for _, lang := range All {
		prefix := "/" + string(lang)
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return lang, true
		}
	}
	return "", false
}

// OverrideParams are the query parameters that force a language.
var OverrideParams = []string{"lang", "hl"}

// FromQuery reads the lang (then hl) override parameter.
func FromQuery(values url.Values) (Language, bool) {
	for _, key := range OverrideParams {
		if v := strings.TrimSpace(values.Get(key)); v != "" {
			return Normalize(v), true
		}
	}
	return "", false
}

// FromStored accepts a previously persisted preference. Anything other than the
// literal codes is ignored.
func FromStored(value string) (Language, bool) {
	return Parse(value)
}

// ParseAcceptLanguage negotiates between en and zh. An absent header yields the
// site default (zh) while a header with no recognizable entry yields en.
func ParseAcceptLanguage(header string) Language {
	if strings.TrimSpace(header) == "" {
		return Default
	}

	var (
		best  Language
		bestQ float64
		found bool
	)
	for _, part := range strings.Split(header, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ";")
		tag := strings.ToLower(strings.TrimSpace(fields[0]))

		var lang Language
		switch {
		case strings.HasPrefix(tag, "zh"):
			lang = Chinese
		case strings.HasPrefix(tag, "en"):
			lang = English
		default:
			continue
		}

		q := 1.0
		for _, param := range fields[1:] {
			key, raw, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || key != "q" || raw == "" {
				continue
			}
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil && !math.IsNaN(parsed) {
				q = parsed
			}
		}

		// Strictly greater keeps the earliest entry on ties.
		if !found || q > bestQ {
			best, bestQ, found = lang, q, true
		}
	}

	if !found {
		return English
	}
	return best
}

// Request carries every signal the resolver considers.
type Request struct {
	Path           string
	Query          url.Values
	Stored         string
	AcceptLanguage string
}

// Resolve applies the precedence path > query override > stored preference >
// Accept-Language > default.
func Resolve(r Request) Language {
	if lang, ok := FromPath(r.Path); ok {
		return lang
	}
	if lang, ok := FromQuery(r.Query); ok {
		return lang
	}
	if lang, ok := FromStored(r.Stored); ok {
		return lang
	}
	return ParseAcceptLanguage(r.AcceptLanguage)
}

// StripOverrides returns a copy of values without lang/hl.
func StripOverrides(values url.Values) url.Values {
	out := url.Values{}
	for key, vals := range values {
		if key == "lang" || key == "hl" {
			continue
		}
		out[key] = append([]string(nil), vals...)
	}
	return out
}

// SwapPrefix rewrites a language-prefixed path to another language. Paths
// without a prefix get one.
func SwapPrefix(path string, to Language) string {
	if from, ok := FromPath(path); ok {
		return "/" + string(to) + strings.TrimPrefix(path, "/"+string(from))
	}
	if path == "" || path == "/" {
		return "/" + string(to)
	}
	return "/" + string(to) + path
}
