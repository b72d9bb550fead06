package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"agentskill/api"
	"agentskill/logger"
)

const (
	trackerSlots   = 8
	trackerTimeout = 3 * time.Second
)

// Tracker forwards visit beacons to the skills API without blocking the
// request that produced them. At most slots beacons are in flight; extra
// beacons are dropped.
type Tracker struct {
	client  api.Tracker
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
	log     *zap.Logger
}

// NewTracker creates a tracker with the given concurrency and per-call timeout.
func NewTracker(client api.Tracker, slots int, timeout time.Duration) *Tracker {
	if slots <= 0 {
		slots = trackerSlots
	}
	if timeout <= 0 {
		timeout = trackerTimeout
	}
	return &Tracker{
		client:  client,
		sem:     make(chan struct{}, slots),
		timeout: timeout,
		log:     logger.Named("tracker"),
	}
}

// RecordVisit counts a site visit.
func (t *Tracker) RecordVisit(visitorID string) {
	t.dispatch("visit", []zap.Field{zap.String("visitor_id", visitorID)}, func(ctx context.Context) error {
		return t.client.TrackVisit(ctx, visitorID)
	})
}

// RecordSkillVisit counts a detail page view.
func (t *Tracker) RecordSkillVisit(skillID int64, visitorID string) {
	t.dispatch("skill_visit", []zap.Field{zap.Int64("skill_id", skillID), zap.String("visitor_id", visitorID)}, func(ctx context.Context) error {
		return t.client.TrackSkillVisit(ctx, skillID, visitorID)
	})
}

func (t *Tracker) dispatch(kind string, fields []zap.Field, call func(context.Context) error) {
	select {
	case t.sem <- struct{}{}: // Acquire semaphore
	default:
		t.log.Debug("Tracker saturated, dropping beacon", append(fields, zap.String("kind", kind))...)
		return
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer func() { <-t.sem }() // Release semaphore

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()
		if err := call(ctx); err != nil {
			t.log.Debug("Beacon failed", append(fields, zap.String("kind", kind), zap.Error(err))...)
		}
	}()
}

// Wait blocks until in-flight beacons finish or ctx is done.
func (t *Tracker) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
