// Package api talks to the skills HTTP API.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"agentskill/logger"
	"agentskill/models"
)

// Sort orders accepted by the skills listing.
const (
	SortStars  = "stars"
	SortNewest = "newest"
)

// VisitorHeader carries the anonymous visitor id on tracking calls.
const VisitorHeader = "X-Visitor-Id"

const defaultTimeout = 15 * time.Second

// Options narrows a skills listing. Zero values are omitted from the request.
type Options struct {
	Limit    int
	Offset   int
	Topic    string
	Language string
	Owner    string
	Sort     string
}

// Fetcher is the read side of the skills API.
type Fetcher interface {
	FetchSkills(ctx context.Context, query string, opts Options) (*models.SkillListResponse, error)
	FetchSkill(ctx context.Context, owner, repo string) (*models.Skill, error)
	FetchFacets(ctx context.Context, kind models.FacetKind, limit int) (*models.FacetList, error)
	FetchMetrics(ctx context.Context) (*models.Metrics, error)
}

// Tracker records page visits.
type Tracker interface {
	TrackVisit(ctx context.Context, visitorID string) error
	TrackSkillVisit(ctx context.Context, skillID int64, visitorID string) error
}

// Client represents a skills API client
type Client struct {
	restyClient *resty.Client
	baseURL     string
}

// NewClient creates a client rooted at baseURL. Requests are never retried.
func NewClient(baseURL string) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	logger.Info("Initializing skills API client", zap.String("base_url", baseURL))

	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(defaultTimeout)
	client.SetRetryCount(0)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "agentskill-web/1.0")

	return &Client{
		restyClient: client,
		baseURL:     baseURL,
	}
}

// BaseURL reports the API root this client was built with.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SkillsParams renders the query string for a listing, keeping only present
// values.
func SkillsParams(query string, opts Options) map[string]string {
	params := make(map[string]string)
	if q := strings.TrimSpace(query); q != "" {
		params["q"] = q
	}
	if opts.Topic != "" {
		params["topic"] = opts.Topic
	}
	if opts.Language != "" {
		params["language"] = opts.Language
	}
	if opts.Owner != "" {
		params["owner"] = opts.Owner
	}
	if opts.Sort != "" {
		params["sort"] = opts.Sort
	}
	if opts.Limit > 0 {
		params["limit"] = strconv.Itoa(opts.Limit)
	}
	if opts.Offset > 0 {
		params["offset"] = strconv.Itoa(opts.Offset)
	}
	return params
}

func (c *Client) FetchSkills(ctx context.Context, query string, opts Options) (*models.SkillListResponse, error) {
	if opts.Sort != "" && opts.Sort != SortStars && opts.Sort != SortNewest {
		return nil, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, opts.Sort)
	}
	if opts.Limit < 0 || opts.Offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", ErrInvalidInput)
	}

	params := SkillsParams(query, opts)
	logger.Debug("Fetching skills", zap.Any("params", params))

	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get("/skills")
	if err := checkResponse(resp, err, "skills"); err != nil {
		return nil, err
	}

	var list models.SkillListResponse
	if err := decode(resp, &list, "skills"); err != nil {
		return nil, err
	}
	if dropped := list.Sanitize(); dropped > 0 {
		logger.Warn("Dropped invalid skill records", zap.Int("dropped", dropped))
	}
	return &list, nil
}

func (c *Client) FetchSkill(ctx context.Context, owner, repo string) (*models.Skill, error) {
	if owner == "" || repo == "" {
		return nil, fmt.Errorf("%w: owner and repo required", ErrInvalidInput)
	}

	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetPathParams(map[string]string{"owner": owner, "repo": repo}).
		Get("/skills/{owner}/{repo}")
	if err := checkResponse(resp, err, "skill"); err != nil {
		return nil, err
	}

	var skill models.Skill
	if err := decode(resp, &skill, "skill"); err != nil {
		return nil, err
	}
	if err := skill.Validate(); err != nil {
		logger.Error("Upstream returned invalid skill",
			zap.Error(err),
			zap.String("owner", owner),
			zap.String("repo", repo))
		return nil, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return &skill, nil
}

func (c *Client) FetchFacets(ctx context.Context, kind models.FacetKind, limit int) (*models.FacetList, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown facet %q", ErrInvalidInput, kind)
	}

	req := c.restyClient.R().
		SetContext(ctx).
		SetPathParam("kind", string(kind))
	if limit > 0 {
		req.SetQueryParam("limit", strconv.Itoa(limit))
	}
	resp, err := req.Get("/facets/{kind}")
	if err := checkResponse(resp, err, "facets"); err != nil {
		return nil, err
	}

	var list models.FacetList
	if err := decode(resp, &list, "facets"); err != nil {
		return nil, err
	}
	list.Sanitize()
	return &list, nil
}

func (c *Client) FetchMetrics(ctx context.Context) (*models.Metrics, error) {
	resp, err := c.restyClient.R().
		SetContext(ctx).
		Get("/metrics")
	if err := checkResponse(resp, err, "metrics"); err != nil {
		return nil, err
	}

	var metrics models.Metrics
	if err := decode(resp, &metrics, "metrics"); err != nil {
		return nil, err
	}
	return &metrics, nil
}

func (c *Client) TrackVisit(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return fmt.Errorf("%w: visitor id required", ErrInvalidInput)
	}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeader(VisitorHeader, visitorID).
		Post("/metrics/track")
	return checkResponse(resp, err, "track visit")
}

func (c *Client) TrackSkillVisit(ctx context.Context, skillID int64, visitorID string) error {
	if skillID <= 0 || visitorID == "" {
		return fmt.Errorf("%w: skill id and visitor id required", ErrInvalidInput)
	}
	resp, err := c.restyClient.R().
		SetContext(ctx).
		SetHeader(VisitorHeader, visitorID).
		SetPathParam("id", strconv.FormatInt(skillID, 10)).
		Post("/metrics/skills/{id}/track")
	return checkResponse(resp, err, "track skill visit")
}

// checkResponse maps transport failures and non-2xx statuses onto the package
// errors.
func checkResponse(resp *resty.Response, err error, what string) error {
	if err != nil {
		logger.Error("Skills API request failed",
			zap.Error(err),
			zap.String("resource", what))
		return fmt.Errorf("%w: %s: %v", ErrUpstream, what, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	if !resp.IsSuccess() {
		logger.Error("Skills API returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("resource", what),
			zap.String("url", resp.Request.URL))
		return fmt.Errorf("%w: %s: status code %d", ErrUpstream, what, resp.StatusCode())
	}
	return nil
}

func decode(resp *resty.Response, v any, what string) error {
	if err := json.Unmarshal(resp.Body(), v); err != nil {
		logger.Error("Failed to decode skills API response",
			zap.Error(err),
			zap.String("resource", what))
		return fmt.Errorf("%w: decode %s: %v", ErrUpstream, what, err)
	}
	return nil
}
