// Package apitest provides test doubles for the api package interfaces.
package apitest

import (
	"context"

	"github.com/stretchr/testify/mock"

	"agentskill/api"
	"agentskill/models"
)

// MockFetcher is a mock implementation of api.Fetcher
type MockFetcher struct {
	mock.Mock
}

var _ api.Fetcher = (*MockFetcher)(nil)

func (m *MockFetcher) FetchSkills(ctx context.Context, query string, opts api.Options) (*models.SkillListResponse, error) {
	args := m.Called(ctx, query, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SkillListResponse), args.Error(1)
}

func (m *MockFetcher) FetchSkill(ctx context.Context, owner, repo string) (*models.Skill, error) {
	args := m.Called(ctx, owner, repo)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Skill), args.Error(1)
}

func (m *MockFetcher) FetchFacets(ctx context.Context, kind models.FacetKind, limit int) (*models.FacetList, error) {
	args := m.Called(ctx, kind, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FacetList), args.Error(1)
}

func (m *MockFetcher) FetchMetrics(ctx context.Context) (*models.Metrics, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Metrics), args.Error(1)
}

// MockTracker is a mock implementation of api.Tracker
type MockTracker struct {
	mock.Mock
}

var _ api.Tracker = (*MockTracker)(nil)

func (m *MockTracker) TrackVisit(ctx context.Context, visitorID string) error {
	args := m.Called(ctx, visitorID)
	return args.Error(0)
}

func (m *MockTracker) TrackSkillVisit(ctx context.Context, skillID int64, visitorID string) error {
	args := m.Called(ctx, skillID, visitorID)
	return args.Error(0)
}
