package service

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"agentskill/api/apitest"
	"agentskill/cache"
	"agentskill/config"
)

func TestTrackerForwardsBeacons(t *testing.T) {
	client := new(apitest.MockTracker)
	client.On("TrackVisit", mock.Anything, "visitor-1").Return(nil).Once()
	client.On("TrackSkillVisit", mock.Anything, int64(42), "visitor-1").Return(errors.New("boom")).Once()

	tracker := NewTracker(client, 2, time.Second)
	tracker.RecordVisit("visitor-1")
	tracker.RecordSkillVisit(42, "visitor-1")

	require.NoError(t, tracker.Wait(context.Background()))
	client.AssertExpectations(t)
}

func TestTrackerDropsWhenSaturated(t *testing.T) {
	release := make(chan time.Time)
	client := new(apitest.MockTracker)
	client.On("TrackVisit", mock.Anything, "first").Return(nil).WaitUntil(release).Once()

	tracker := NewTracker(client, 1, time.Second)
	tracker.RecordVisit("first")
	tracker.RecordVisit("second")
	close(release)

	require.NoError(t, tracker.Wait(context.Background()))
	client.AssertNumberOfCalls(t, "TrackVisit", 1)
	client.AssertNotCalled(t, "TrackVisit", mock.Anything, "second")
}

func TestTrackerWaitHonoursContext(t *testing.T) {
	release := make(chan time.Time)
	defer close(release)
	client := new(apitest.MockTracker)
	client.On("TrackVisit", mock.Anything, "slow").Return(nil).WaitUntil(release)

	tracker := NewTracker(client, 1, time.Second)
	tracker.RecordVisit("slow")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, tracker.Wait(ctx), context.DeadlineExceeded)
}

func TestOpenStore(t *testing.T) {
	store, err := OpenStore(context.Background(), &config.Config{CacheBackend: config.CacheMemory})
	require.NoError(t, err)
	assert.IsType(t, &cache.Memory{}, store)

	_, err = OpenStore(context.Background(), &config.Config{CacheBackend: "redis"})
	assert.ErrorIs(t, err, ErrServiceInit)
}

func testService(t *testing.T, store cache.Store) *Service {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	cfg := &config.Config{SiteOrigin: "https://www.agentskill.work", Port: "0", CacheBackend: config.CacheMemory}
	s, err := newService(ctx, cancel, cfg, store, new(apitest.MockFetcher), new(apitest.MockTracker))
	require.NoError(t, err)
	return s
}

func TestServeAndGracefulShutdown(t *testing.T) {
	s := testService(t, cache.NewMemory(0))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	stop := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- s.serve(ln, stop) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	stop <- syscall.SIGTERM
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("service did not shut down")
	}
	assert.Error(t, s.ctx.Err())
	assert.NoError(t, s.Close())
}

type countingPurger struct {
	cache.Store
	calls atomic.Int32
}

func (p *countingPurger) PurgeExpired(context.Context) (int64, error) {
	p.calls.Add(1)
	return 3, nil
}

func TestCachePurgingRunsUntilCancelled(t *testing.T) {
	store := &countingPurger{Store: cache.NewMemory(0)}
	s := testService(t, store)

	s.startPurging(store, 5*time.Millisecond)
	require.Eventually(t, func() bool { return store.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)

	s.cancel()
	time.Sleep(20 * time.Millisecond)
	settled := store.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, store.calls.Load())
}
