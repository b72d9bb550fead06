// Package textfmt cleans upstream text for display and SEO metadata.
package textfmt

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Ellipsis marks a truncated snippet.
const Ellipsis = "..."

const canonicalTerm = "Claude Skill"

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	// Machine translation renders "Claude Skill" as one of these.
	mistranslations = []*regexp.Regexp{
		regexp.MustCompile(`(?i)Claude\s*技能`),
		regexp.MustCompile(`克劳德技能`),
	}
)

// CompactWhitespace trims and collapses every whitespace run to one space.
func CompactWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// NormalizeClaudeSkill restores the product term in translated text and
// compacts whitespace. Other text passes through unchanged.
func NormalizeClaudeSkill(s string) string {
	for _, re := range mistranslations {
		s = re.ReplaceAllString(s, canonicalTerm)
	}
	return CompactWhitespace(s)
}

// Truncate cuts s to at most max runes, ending in Ellipsis when cut.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	if max <= len(Ellipsis) {
		return string([]rune(s)[:max])
	}
	runes := []rune(s)
	return string(runes[:max-len(Ellipsis)]) + Ellipsis
}

// Snippet compacts whitespace then truncates, for meta descriptions and
// structured data.
func Snippet(s string, max int) string {
	return Truncate(CompactWhitespace(s), max)
}

// FirstNonEmpty returns the first argument that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// SplitTopics turns the comma-joined topics field into a list.
func SplitTopics(topics string) []string {
	var out []string
	for _, t := range strings.Split(topics, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// DateStamp renders the YYYY-MM-DD form used by sitemaps and the detail page.
func DateStamp(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// OptionalDate formats t or returns "" for the zero time.
func OptionalDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return DateStamp(t)
}

var printers = map[string]*message.Printer{
	"en": message.NewPrinter(language.English),
	"zh": message.NewPrinter(language.SimplifiedChinese),
}

// Number groups digits the way the locale expects ("12,345").
func Number(lang string, n int) string {
	p, ok := printers[lang]
	if !ok {
		p = printers["en"]
	}
	return p.Sprintf("%d", n)
}

// Compact abbreviates large counts for the Open Graph card: 12.3K, 1.2M.
func Compact(n int) string {
	switch {
	case n >= 1_000_000:
		return message.NewPrinter(language.English).Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 10_000:
		return message.NewPrinter(language.English).Sprintf("%.1fK", float64(n)/1_000)
	default:
		return Number("en", n)
	}
}
