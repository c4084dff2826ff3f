package activity

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionStartsIdle(t *testing.T) {
	session := NewSession(Config{}, &gatedService{}, newTestLogger())
	state := session.Snapshot()
	require.Equal(t, StateIdle, state.State)
	require.Nil(t, state.View)
	require.Empty(t, state.Selection)
}

func TestSessionLoadSuccess(t *testing.T) {
	svc := newGatedService()
	svc.views["paris"] = View{City: "paris", Weather: WeatherView{CityDisplay: "Paris"}}
	session := newTestSession(Config{}, svc)

	state, err := session.Load(context.Background(), "paris")
	require.NoError(t, err)
	require.Equal(t, StateLoaded, state.State)
	require.Equal(t, "paris", state.Selection)
	require.NotNil(t, state.View)
	require.Equal(t, "Paris", state.View.Weather.CityDisplay)
	require.Equal(t, "load-1", state.LoadID)
	require.NotNil(t, state.LoadedAt)
	require.Empty(t, state.ErrorMessage)
}

func TestSessionFailureKeepsPreviousView(t *testing.T) {
	svc := newGatedService()
	svc.views["paris"] = View{City: "paris"}
	svc.errs["lyon"] = errors.New("Failed to load data for lyon")
	session := newTestSession(Config{}, svc)

	_, err := session.Load(context.Background(), "paris")
	require.NoError(t, err)
	previous := session.Snapshot()

	state, err := session.Load(context.Background(), "lyon")
	require.Error(t, err)
	require.Equal(t, StateError, state.State)
	require.Equal(t, "Error loading city data: Failed to load data for lyon", state.ErrorMessage)
	require.Empty(t, state.Selection, "selection resets after a failed load")
	require.Same(t, previous.View, state.View)
	require.Equal(t, "paris", state.View.City)
	require.Equal(t, previous.LoadedAt, state.LoadedAt)
}

func TestSessionFailureFromIdleHasNoView(t *testing.T) {
	svc := newGatedService()
	svc.errs["lyon"] = errors.New("boom")
	session := newTestSession(Config{}, svc)

	state, err := session.Load(context.Background(), "lyon")
	require.Error(t, err)
	require.Equal(t, StateError, state.State)
	require.NotEmpty(t, state.ErrorMessage)
	require.Nil(t, state.View)
}

func TestSessionSelectShowsLoadingUntilDone(t *testing.T) {
	svc := newGatedService()
	svc.views["paris"] = View{City: "paris"}
	gate := svc.gate("paris")
	session := newTestSession(Config{}, svc)

	id := session.Select(context.Background(), "paris")
	require.Equal(t, "load-1", id)
	state := session.Snapshot()
	require.Equal(t, StateLoading, state.State)
	require.Equal(t, "paris", state.Selection)
	require.Nil(t, state.View)

	close(gate)
	session.Wait()
	require.Equal(t, StateLoaded, session.Snapshot().State)
}

func TestSessionSelectSurvivesCallerCancellation(t *testing.T) {
	svc := newGatedService()
	svc.views["paris"] = View{City: "paris"}
	gate := svc.gate("paris")
	session := newTestSession(Config{}, svc)

	ctx, cancel := context.WithCancel(context.Background())
	session.Select(ctx, "paris")
	cancel()
	close(gate)
	session.Wait()

	require.Equal(t, StateLoaded, session.Snapshot().State)
	require.NoError(t, svc.lastCtxErr())
}

func TestSessionIgnoresStaleCompletion(t *testing.T) {
	svc := newGatedService()
	svc.views["paris"] = View{City: "paris"}
	svc.views["lyon"] = View{City: "lyon"}
	slow := svc.gate("paris")
	session := newTestSession(Config{StalePolicy: IgnoreStale}, svc)

	session.Select(context.Background(), "paris")
	session.Select(context.Background(), "lyon")
	require.Eventually(t, func() bool {
		return session.Snapshot().State == StateLoaded
	}, time.Second, 5*time.Millisecond)

	close(slow)
	session.Wait()

	state := session.Snapshot()
	require.Equal(t, StateLoaded, state.State)
	require.Equal(t, "lyon", state.Selection)
	require.Equal(t, "lyon", state.View.City)
	require.Equal(t, "load-2", state.LoadID)
}

func TestSessionLastWriteWins(t *testing.T) {
	svc := newGatedService()
	svc.views["paris"] = View{City: "paris"}
	svc.views["lyon"] = View{City: "lyon"}
	slow := svc.gate("paris")
	session := newTestSession(Config{StalePolicy: LastWriteWins}, svc)

	session.Select(context.Background(), "paris")
	session.Select(context.Background(), "lyon")
	require.Eventually(t, func() bool {
		return session.Snapshot().State == StateLoaded
	}, time.Second, 5*time.Millisecond)

	close(slow)
	session.Wait()

	state := session.Snapshot()
	require.Equal(t, "paris", state.Selection)
	require.Equal(t, "paris", state.View.City)
	require.Equal(t, "load-1", state.LoadID)
}

func TestSessionStaleFailureDoesNotClobberNewerLoad(t *testing.T) {
	svc := newGatedService()
	svc.errs["paris"] = errors.New("timeout")
	svc.views["lyon"] = View{City: "lyon"}
	slow := svc.gate("paris")
	session := newTestSession(Config{}, svc)

	session.Select(context.Background(), "paris")
	session.Select(context.Background(), "lyon")
	require.Eventually(t, func() bool {
		return session.Snapshot().State == StateLoaded
	}, time.Second, 5*time.Millisecond)
	close(slow)
	session.Wait()

	state := session.Snapshot()
	require.Equal(t, StateLoaded, state.State)
	require.Empty(t, state.ErrorMessage)
}

func newTestSession(cfg Config, svc Service) *Session {
	session := NewSession(cfg, svc, newTestLogger())
	var n int
	var mu sync.Mutex
	session.newID = func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("load-%d", n)
	}
	session.now = func() time.Time {
		return time.Date(2024, 3, 15, 14, 31, 0, 0, time.UTC)
	}
	return session
}

type gatedService struct {
	mu      sync.Mutex
	views   map[string]View
	errs    map[string]error
	gates   map[string]chan struct{}
	ctxErrs []error
}

func newGatedService() *gatedService {
	return &gatedService{
		views: map[string]View{},
		errs:  map[string]error{},
		gates: map[string]chan struct{}{},
	}
}

func (g *gatedService) gate(city string) chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch := make(chan struct{})
	g.gates[city] = ch
	return ch
}

func (g *gatedService) View(ctx context.Context, city string) (View, error) {
	g.mu.Lock()
	gate := g.gates[city]
	g.mu.Unlock()
	if gate != nil {
		<-gate
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ctxErrs = append(g.ctxErrs, ctx.Err())
	if err := g.errs[city]; err != nil {
		return View{}, err
	}
	return g.views[city], nil
}

func (g *gatedService) lastCtxErr() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.ctxErrs) == 0 {
		return errors.New("service never called")
	}
	return g.ctxErrs[len(g.ctxErrs)-1]
}
