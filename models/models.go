// Package models defines the upstream records rendered by the site and the
// boundary rules applied to them.
package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidSkill marks a record missing one of its required fields.
var ErrInvalidSkill = errors.New("invalid skill record")

// Skill represents one indexed GitHub repository.
//
// Required: FullName (owner/repo). Every other field is optional and defaults
// to its zero value; display fallbacks are applied by the caller.
type Skill struct {
	ID               int64     `json:"id"`
	RepoID           int64     `json:"repo_id"`
	Name             string    `json:"name"`
	FullName         string    `json:"full_name"`
	Description      string    `json:"description"`
	DescriptionZh    string    `json:"description_zh"`
	SummaryEn        string    `json:"summary_en"`
	SummaryZh        string    `json:"summary_zh"`
	SEOTitleEn       string    `json:"seo_title_en"`
	SEOTitleZh       string    `json:"seo_title_zh"`
	SEODescriptionEn string    `json:"seo_description_en"`
	SEODescriptionZh string    `json:"seo_description_zh"`
	KeyFeaturesEn    []string  `json:"key_features_en"`
	KeyFeaturesZh    []string  `json:"key_features_zh"`
	UseCasesEn       []string  `json:"use_cases_en"`
	UseCasesZh       []string  `json:"use_cases_zh"`
	HTMLURL          string    `json:"html_url"`
	Stars            int       `json:"stars"`
	Forks            int       `json:"forks"`
	Language         string    `json:"language"`
	Topics           string    `json:"topics"`
	LastPushedAt     Timestamp `json:"last_pushed_at"`
	FetchedAt        Timestamp `json:"fetched_at"`
	ContentUpdatedAt Timestamp `json:"content_updated_at"`
}

// OwnerRepo splits FullName. ok is false unless both halves are non-empty.
func (s Skill) OwnerRepo() (owner, repo string, ok bool) {
	owner, repo, found := strings.Cut(s.FullName, "/")
	owner = strings.TrimSpace(owner)
	repo = strings.TrimSpace(repo)
	if !found || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", false
	}
	return owner, repo, true
}

// GitHubURL is the repository page derived from an owner/repo pair.
func GitHubURL(owner, repo string) string {
	return "https://github.com/" + owner + "/" + repo
}

// Validate enforces the required field and fills or clamps the optional ones.
func (s *Skill) Validate() error {
	owner, repo, ok := s.OwnerRepo()
	if !ok {
		return fmt.Errorf("%w: full_name %q is not owner/repo", ErrInvalidSkill, s.FullName)
	}
	if strings.TrimSpace(s.HTMLURL) == "" {
		s.HTMLURL = GitHubURL(owner, repo)
	}
	if s.Stars < 0 {
		s.Stars = 0
	}
	if s.Forks < 0 {
		s.Forks = 0
	}
	if s.Name == "" {
		s.Name = repo
	}
	return nil
}

// SkillListResponse is one page of skills plus the total matching count.
type SkillListResponse struct {
	Total int     `json:"total"`
	Items []Skill `json:"items"`
}

// Sanitize drops invalid records and keeps Total consistent with the page. It
// returns the number of records dropped.
func (r *SkillListResponse) Sanitize() int {
	kept := r.Items[:0]
	dropped := 0
	for _, item := range r.Items {
		if err := item.Validate(); err != nil {
			dropped++
			continue
		}
		kept = append(kept, item)
	}
	r.Items = kept
	if r.Items == nil {
		r.Items = []Skill{}
	}
	if r.Total < len(r.Items) {
		r.Total = len(r.Items)
	}
	return dropped
}

// FacetKind is a filterable dimension over the skill collection.
type FacetKind string

const (
	FacetTopics    FacetKind = "topics"
	FacetLanguages FacetKind = "languages"
	FacetOwners    FacetKind = "owners"
)

// FacetKinds lists the facets in sitemap order.
var FacetKinds = []FacetKind{FacetTopics, FacetLanguages, FacetOwners}

// Valid reports whether k is one of the known facets.
func (k FacetKind) Valid() bool {
	switch k {
	case FacetTopics, FacetLanguages, FacetOwners:
		return true
	}
	return false
}

// FacetItem is a distinct facet value and how many skills carry it.
type FacetItem struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// FacetList is the upstream facet enumeration.
type FacetList struct {
	Items []FacetItem `json:"items"`
}

// Sanitize removes blank values and negative counts.
func (f *FacetList) Sanitize() {
	kept := make([]FacetItem, 0, len(f.Items))
	for _, item := range f.Items {
		item.Value = strings.TrimSpace(item.Value)
		if item.Value == "" {
			continue
		}
		if item.Count < 0 {
			item.Count = 0
		}
		kept = append(kept, item)
	}
	f.Items = kept
}

// Metrics are the site-wide visit counters.
type Metrics struct {
	PV int64 `json:"pv"`
	UV int64 `json:"uv"`
}
