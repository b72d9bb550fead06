package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"agentskill/cache"
	"agentskill/logger"
	"agentskill/models"
)

// Cache lifetimes per resource category.
const (
	SkillsTTL      = 10 * time.Minute
	FacetsTTL      = time.Hour
	MetricsTTL     = 5 * time.Minute
	SkillDetailTTL = 24 * time.Hour
)

// sharedFetchTimeout bounds a collapsed upstream call, which no longer
// follows the cancellation of the caller that started it.
const sharedFetchTimeout = defaultTimeout

// Policy decides whether a call may be served from the cache.
type Policy int

const (
	// TimeBoxed results are reused until their TTL elapses.
	TimeBoxed Policy = iota
	// AlwaysRevalidate results go straight to the API and are never stored.
	AlwaysRevalidate
)

// PolicyFor returns AlwaysRevalidate for any call carrying a free-text query.
func PolicyFor(query string) Policy {
	if strings.TrimSpace(query) != "" {
		return AlwaysRevalidate
	}
	return TimeBoxed
}

// CachedClient is a Fetcher that keeps upstream results in a cache.Store.
type CachedClient struct {
	next  Fetcher
	store cache.Store
	group singleflight.Group
	log   *zap.Logger
}

var _ Fetcher = (*CachedClient)(nil)

// NewCachedClient wraps next with store.
func NewCachedClient(next Fetcher, store cache.Store) *CachedClient {
	return &CachedClient{
		next:  next,
		store: store,
		log:   logger.Named("api-cache"),
	}
}

// SkillsKey is the cache key of a listing request.
func SkillsKey(query string, opts Options) string {
	values := url.Values{}
	for k, v := range SkillsParams(query, opts) {
		values.Set(k, v)
	}
	return "skills?" + values.Encode()
}

func (c *CachedClient) FetchSkills(ctx context.Context, query string, opts Options) (*models.SkillListResponse, error) {
	if PolicyFor(query) == AlwaysRevalidate {
		return c.next.FetchSkills(ctx, query, opts)
	}
	var out models.SkillListResponse
	err := c.load(ctx, SkillsKey(query, opts), SkillsTTL, &out, func(ctx context.Context) (any, error) {
		return c.next.FetchSkills(ctx, query, opts)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CachedClient) FetchSkill(ctx context.Context, owner, repo string) (*models.Skill, error) {
	key := "skill/" + url.PathEscape(owner) + "/" + url.PathEscape(repo)
	var out models.Skill
	err := c.load(ctx, key, SkillDetailTTL, &out, func(ctx context.Context) (any, error) {
		return c.next.FetchSkill(ctx, owner, repo)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CachedClient) FetchFacets(ctx context.Context, kind models.FacetKind, limit int) (*models.FacetList, error) {
	key := "facets/" + string(kind) + "?limit=" + strconv.Itoa(limit)
	var out models.FacetList
	err := c.load(ctx, key, FacetsTTL, &out, func(ctx context.Context) (any, error) {
		return c.next.FetchFacets(ctx, kind, limit)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *CachedClient) FetchMetrics(ctx context.Context) (*models.Metrics, error) {
	var out models.Metrics
	err := c.load(ctx, "metrics", MetricsTTL, &out, func(ctx context.Context) (any, error) {
		return c.next.FetchMetrics(ctx)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// load serves key from the store, or runs fetch once for all concurrent
// callers and stores the result. Errors are never stored.
func (c *CachedClient) load(ctx context.Context, key string, ttl time.Duration, out any, fetch func(context.Context) (any, error)) error {
	body, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(body, out); err == nil {
			return nil
		}
		c.log.Warn("Discarding corrupt cache entry", zap.String("key", key))
	case !errors.Is(err, cache.ErrCacheMiss):
		c.log.Warn("Cache read failed", zap.String("key", key), zap.Error(err))
	}

	// The shared fetch outlives any single caller: a disconnecting visitor
	// must not fail the others waiting on the same key.
	ch := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		result, err := fetch(fetchCtx)
		if err != nil {
			return nil, err
		}
		encoded, err := json.Marshal(result)
		if err != nil {
			return nil, fmt.Errorf("%w: encode %s: %v", ErrUpstream, key, err)
		}
		if err := c.store.Set(fetchCtx, key, encoded, ttl); err != nil {
			c.log.Warn("Cache write failed", zap.String("key", key), zap.Error(err))
		}
		return encoded, nil
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return res.Err
		}
		if res.Shared {
			c.log.Debug("Collapsed concurrent fetch", zap.String("key", key))
		}
		return json.Unmarshal(res.Val.([]byte), out)
	}
}
