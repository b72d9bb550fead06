package seo

import (
	"encoding/json"
	"strings"

	"agentskill/i18n"
	"agentskill/models"
	"agentskill/textfmt"
)

const (
	schemaContext      = "https://schema.org"
	orderDescending    = "https://schema.org/ItemListOrderDescending"
	siteBrand          = "agentskill.work"
	snippetLength      = 200
	searchTermTemplate = "{search_term_string}"
)

// Organization is the schema.org publisher.
type Organization struct {
	Type string `json:"@type"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// SearchAction advertises the site search box.
type SearchAction struct {
	Type       string `json:"@type"`
	Target     string `json:"target"`
	QueryInput string `json:"query-input"`
}

// WebSite is the home page entity.
type WebSite struct {
	Context         string       `json:"@context"`
	Type            string       `json:"@type"`
	Name            string       `json:"name"`
	URL             string       `json:"url"`
	Description     string       `json:"description"`
	InLanguage      []string     `json:"inLanguage"`
	About           string       `json:"about"`
	Publisher       Organization `json:"publisher"`
	PotentialAction SearchAction `json:"potentialAction"`
}

// NewWebSite describes the site with a search action bound to lang.
func NewWebSite(origin string, lang i18n.Language) WebSite {
	origin = strings.TrimRight(origin, "/")
	return WebSite{
		Context:     schemaContext,
		Type:        "WebSite",
		Name:        siteBrand,
		URL:         origin,
		Description: i18n.For(lang).Subtitle,
		InLanguage:  []string{i18n.Chinese.Hreflang(), i18n.English.Hreflang()},
		About:       "Claude Skill projects on GitHub",
		Publisher:   Organization{Type: "Organization", Name: siteBrand, URL: origin},
		PotentialAction: SearchAction{
			Type:       "SearchAction",
			Target:     AbsoluteURL(origin, LocalizedPath(lang, "")) + "?q=" + searchTermTemplate,
			QueryInput: "required name=search_term_string",
		},
	}
}

type answer struct {
	Type string `json:"@type"`
	Text string `json:"text"`
}

type question struct {
	Type           string `json:"@type"`
	Name           string `json:"name"`
	AcceptedAnswer answer `json:"acceptedAnswer"`
}

// FAQPage mirrors the FAQ section of the home page.
type FAQPage struct {
	Context    string     `json:"@context"`
	Type       string     `json:"@type"`
	MainEntity []question `json:"mainEntity"`
}

func NewFAQPage(items []i18n.FAQ) FAQPage {
	page := FAQPage{Context: schemaContext, Type: "FAQPage", MainEntity: make([]question, 0, len(items))}
	for _, item := range items {
		page.MainEntity = append(page.MainEntity, question{
			Type:           "Question",
			Name:           item.Question,
			AcceptedAnswer: answer{Type: "Answer", Text: item.Answer},
		})
	}
	return page
}

// Crumb is one breadcrumb step.
type Crumb struct {
	Name string
	URL  string
}

type crumbItem struct {
	Type     string `json:"@type"`
	Position int    `json:"position"`
	Name     string `json:"name"`
	Item     string `json:"item"`
}

// BreadcrumbList is the navigation trail of facet and detail pages.
type BreadcrumbList struct {
	Context         string      `json:"@context"`
	Type            string      `json:"@type"`
	ItemListElement []crumbItem `json:"itemListElement"`
}

func NewBreadcrumbList(crumbs ...Crumb) BreadcrumbList {
	list := BreadcrumbList{Context: schemaContext, Type: "BreadcrumbList"}
	for i, c := range crumbs {
		list.ItemListElement = append(list.ItemListElement, crumbItem{
			Type:     "ListItem",
			Position: i + 1,
			Name:     c.Name,
			Item:     c.URL,
		})
	}
	return list
}

// SoftwareSourceCode describes one skill repository.
type SoftwareSourceCode struct {
	Context             string `json:"@context,omitempty"`
	Type                string `json:"@type"`
	Name                string `json:"name"`
	URL                 string `json:"url,omitempty"`
	CodeRepository      string `json:"codeRepository"`
	Description         string `json:"description,omitempty"`
	ProgrammingLanguage string `json:"programmingLanguage,omitempty"`
	DateModified        string `json:"dateModified,omitempty"`
	Keywords            string `json:"keywords,omitempty"`
}

// LocalizedDescription picks the description shown for lang: Chinese pages
// prefer the corrected translation, English pages the original.
func LocalizedDescription(lang i18n.Language, s models.Skill) string {
	if lang == i18n.Chinese {
		return textfmt.NormalizeClaudeSkill(textfmt.FirstNonEmpty(s.DescriptionZh, s.Description))
	}
	return textfmt.FirstNonEmpty(s.Description, s.DescriptionZh)
}

// NewSoftwareSourceCode is the standalone entity embedded on a detail page.
func NewSoftwareSourceCode(lang i18n.Language, s models.Skill) SoftwareSourceCode {
	code := SoftwareSourceCode{
		Context:             schemaContext,
		Type:                "SoftwareSourceCode",
		Name:                s.FullName,
		CodeRepository:      s.HTMLURL,
		Description:         LocalizedDescription(lang, s),
		ProgrammingLanguage: s.Language,
		Keywords:            s.Topics,
	}
	if !s.LastPushedAt.IsZero() {
		code.DateModified = s.LastPushedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	return code
}

type listItem struct {
	Type     string             `json:"@type"`
	Position int                `json:"position"`
	URL      string             `json:"url"`
	Item     SoftwareSourceCode `json:"item"`
}

// ItemList enumerates the skills on a listing page.
type ItemList struct {
	Context         string     `json:"@context"`
	Type            string     `json:"@type"`
	URL             string     `json:"url"`
	ItemListOrder   string     `json:"itemListOrder"`
	NumberOfItems   int        `json:"numberOfItems"`
	StartIndex      int        `json:"startIndex"`
	ItemListElement []listItem `json:"itemListElement"`
}

// NewItemList lists skills starting at position offset+1. total falls back to
// the page length when zero.
func NewItemList(origin string, lang i18n.Language, pageURL string, offset, total int, skills []models.Skill) ItemList {
	if total <= 0 {
		total = len(skills)
	}
	list := ItemList{
		Context:         schemaContext,
		Type:            "ItemList",
		URL:             pageURL,
		ItemListOrder:   orderDescending,
		NumberOfItems:   total,
		StartIndex:      offset + 1,
		ItemListElement: make([]listItem, 0, len(skills)),
	}
	for i, s := range skills {
		path, _ := SkillPath(lang, s)
		detail := AbsoluteURL(origin, path)
		list.ItemListElement = append(list.ItemListElement, listItem{
			Type:     "ListItem",
			Position: offset + i + 1,
			URL:      detail,
			Item: SoftwareSourceCode{
				Type:                "SoftwareSourceCode",
				Name:                s.FullName,
				URL:                 detail,
				CodeRepository:      s.HTMLURL,
				Description:         textfmt.Snippet(LocalizedDescription(lang, s), snippetLength),
				ProgrammingLanguage: s.Language,
				Keywords:            s.Topics,
			},
		})
	}
	return list
}

// JSON renders a structured data value. html/template escapes the same value
// itself when placed inside a ld+json script; this is for non-template users.
func JSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
