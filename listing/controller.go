package listing

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"agentskill/api"
	"agentskill/i18n"
	"agentskill/logger"
	"agentskill/models"
	"agentskill/pagination"
)

// Preferences persists the language chosen with the toggle.
type Preferences interface {
	SetLanguage(lang i18n.Language) error
}

// Config fixes the listing being driven.
type Config struct {
	// BaseQuery is prepended to every user query (the openclaw listing).
	BaseQuery string
	// Options carries the facet filter or sort order. Limit and Offset are
	// managed by the controller.
	Options  api.Options
	PageSize int
}

// Snapshot is a consistent copy of the controller state.
type Snapshot struct {
	State  State
	Query  string
	Items  []models.Skill
	Total  int
	Offset int
	Err    error
}

// HasMore reports whether a load-more could return anything.
func (s Snapshot) HasMore() bool {
	return pagination.HasMore(s.Offset, len(s.Items), s.Total)
}

// Controller owns one listing. It is safe for concurrent use; when fetches
// overlap, only the most recently started search may commit.
type Controller struct {
	fetcher api.Fetcher
	prefs   Preferences
	cfg     Config
	log     *zap.Logger

	mu     sync.Mutex
	state  State
	query  string
	items  []models.Skill
	total  int
	offset int
	err    error
	// token increases with every fetch; searchToken is the latest search.
	token       uint64
	searchToken uint64
}

// NewController starts Idle with the server-rendered first page.
func NewController(fetcher api.Fetcher, prefs Preferences, cfg Config, initial models.SkillListResponse, initialOffset int) *Controller {
	if cfg.PageSize <= 0 {
		cfg.PageSize = pagination.PageSize
	}
	items := initial.Items
	if items == nil {
		items = []models.Skill{}
	}
	return &Controller{
		fetcher: fetcher,
		prefs:   prefs,
		cfg:     cfg,
		log:     logger.Named("listing"),
		state:   Idle,
		items:   items,
		total:   initial.Total,
		offset:  initialOffset,
	}
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:  c.state,
		Query:  c.query,
		Items:  append([]models.Skill(nil), c.items...),
		Total:  c.total,
		Offset: c.offset,
		Err:    c.err,
	}
}

// combine joins the configured base query with the user's.
func (c *Controller) combine(query string) string {
	return strings.TrimSpace(strings.TrimSpace(c.cfg.BaseQuery) + " " + strings.TrimSpace(query))
}

func (c *Controller) options(offset int) api.Options {
	opts := c.cfg.Options
	opts.Limit = c.cfg.PageSize
	opts.Offset = offset
	return opts
}

// Search replaces the listing with the first page for query. A result that
// arrives after a newer search started is discarded and reported as not
// committed.
func (c *Controller) Search(ctx context.Context, query string) (committed bool, err error) {
	query = strings.TrimSpace(query)

	c.mu.Lock()
	next, _ := Next(c.state, SearchStarted)
	c.state = next
	c.token++
	token := c.token
	c.searchToken = token
	c.mu.Unlock()

	list, err := c.fetcher.FetchSkills(ctx, c.combine(query), c.options(0))

	c.mu.Lock()
	defer c.mu.Unlock()
	if token != c.searchToken {
		c.log.Debug("Discarding superseded search", zap.String("query", query))
		return false, nil
	}
	if err != nil {
		c.state, _ = Next(c.state, FetchFailed)
		c.err = err
		return true, err
	}
	c.state, _ = Next(c.state, FetchSucceeded)
	c.err = nil
	c.query = query
	c.items = list.Items
	c.total = list.Total
	c.offset = 0
	return true, nil
}

// LoadMore appends the next page of the last executed query. It does nothing
// when everything is shown or a fetch is already in flight.
func (c *Controller) LoadMore(ctx context.Context) (committed bool, err error) {
	c.mu.Lock()
	if !pagination.HasMore(c.offset, len(c.items), c.total) {
		c.mu.Unlock()
		return false, nil
	}
	next, terr := Next(c.state, MoreStarted)
	if terr != nil {
		c.mu.Unlock()
		return false, nil
	}
	c.state = next
	c.token++
	searchToken := c.searchToken
	query := c.query
	nextOffset := c.offset + len(c.items)
	c.mu.Unlock()

	list, err := c.fetcher.FetchSkills(ctx, c.combine(query), c.options(nextOffset))

	c.mu.Lock()
	defer c.mu.Unlock()
	if searchToken != c.searchToken || c.state != LoadingMore {
		c.log.Debug("Discarding load-more superseded by a search")
		return false, nil
	}
	if err != nil {
		c.state, _ = Next(c.state, FetchFailed)
		c.err = err
		return true, err
	}
	c.state, _ = Next(c.state, FetchSucceeded)
	c.err = nil
	c.items = append(c.items, list.Items...)
	c.total = list.Total
	return true, nil
}

// SwitchLanguage stores lang and returns the URL to navigate to: current
// (a path with an optional query) with its language segment swapped and the
// lang/hl override parameters removed.
func (c *Controller) SwitchLanguage(current string, lang i18n.Language) (string, error) {
	u, err := url.Parse(current)
	if err != nil {
		return "", fmt.Errorf("switch language: %w", err)
	}
	if c.prefs != nil {
		if err := c.prefs.SetLanguage(lang); err != nil {
			return "", err
		}
	}
	target := i18n.SwapPrefix(u.EscapedPath(), lang)
	if q := i18n.StripOverrides(u.Query()).Encode(); q != "" {
		target += "?" + q
	}
	return target, nil
}
