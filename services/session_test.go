package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"
)

func activeExperience(assetCount int) *models.Experience {
	exp := &models.Experience{Title: "Demo", Slug: "demo", IsActive: true}
	exp.ID = 42
	for i := 0; i < assetCount; i++ {
		exp.Assets = append(exp.Assets, models.Asset{
			Name: "foto", Kind: models.AssetKindImage,
			URL: "/uploads/images/a.jpg", Position: i,
		})
	}
	return exp
}

// collectingSink records events thread-safely so fire-and-forget goroutines
// can be asserted on.
type collectingSink struct {
	mu     sync.Mutex
	events []string
	metas  []map[string]interface{}
}

func (c *collectingSink) sink(eventType string, _ *uint, metadata map[string]interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, eventType)
	c.metas = append(c.metas, metadata)
}

func (c *collectingSink) wait(n int) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		c.mu.Lock()
		got := len(c.events)
		c.mu.Unlock()
		if got >= n {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return false
}

func readySession(assetCount int, sink AnalyticsSink) *ARSession {
	s := NewARSession(sink)
	s.ResolveExperience(activeExperience(assetCount), nil)
	s.SetCapabilities(CapabilityRecord{WebXRAR: true})
	return s
}

func TestResolveExperienceTransitions(t *testing.T) {
	s := NewARSession(nil)
	if s.State() != StateLoading {
		t.Fatalf("new session must start loading, got %s", s.State())
	}
	s.ResolveExperience(activeExperience(1), nil)
	if s.State() != StateIntro {
		t.Fatalf("active experience with assets must reach intro, got %s", s.State())
	}

	s = NewARSession(nil)
	s.ResolveExperience(nil, errors.New("connection refused"))
	if s.State() != StateError {
		t.Fatalf("fetch error must reach error, got %s", s.State())
	}

	s = NewARSession(nil)
	s.ResolveExperience(nil, nil)
	if s.State() != StateNotFound {
		t.Fatalf("missing experience must reach not-found, got %s", s.State())
	}

	inactive := activeExperience(1)
	inactive.IsActive = false
	s = NewARSession(nil)
	s.ResolveExperience(inactive, nil)
	if s.State() != StateError || s.LastError() != MsgUnavailable {
		t.Fatalf("inactive experience: state=%s err=%q", s.State(), s.LastError())
	}

	s = NewARSession(nil)
	s.ResolveExperience(activeExperience(0), nil)
	if s.State() != StateError {
		t.Fatalf("experience without assets must reach error, got %s", s.State())
	}
}

func TestStartARRequiresCapabilities(t *testing.T) {
	s := NewARSession(nil)
	s.ResolveExperience(activeExperience(1), nil)

	// capability probe has not settled yet
	if err := s.StartAR(); !errors.Is(err, ErrNotReady) {
		t.Fatalf("expected ErrNotReady before capabilities settle, got %v", err)
	}

	// zero capability: the higher tier must never be attempted
	s.SetCapabilities(CapabilityRecord{})
	if err := s.StartAR(); !errors.Is(err, ErrNoCapability) {
		t.Fatalf("expected ErrNoCapability, got %v", err)
	}
	if s.State() != StateIntro {
		t.Fatalf("failed start must stay in intro, got %s", s.State())
	}

	s.SetCapabilities(CapabilityRecord{Camera: true})
	if err := s.StartAR(); err != nil {
		t.Fatalf("camera overlay tier should start: %v", err)
	}
	if s.State() != StateARActive {
		t.Fatalf("expected ar-active, got %s", s.State())
	}
	if s.Strategy() != StrategyCameraOverlay {
		t.Fatalf("expected camera-overlay strategy, got %s", s.Strategy())
	}
}

func TestExitARRevertsToIntro(t *testing.T) {
	s := readySession(1, nil)
	if err := s.StartAR(); err != nil {
		t.Fatal(err)
	}
	s.ExitAR("WebGL context lost")
	if s.State() != StateIntro {
		t.Fatalf("AR error must revert to intro, got %s", s.State())
	}
	if s.LastError() != "WebGL context lost" {
		t.Fatalf("runtime error not captured: %q", s.LastError())
	}

	// the session can re-enter AR after a revert
	if err := s.StartAR(); err != nil {
		t.Fatalf("re-entry after revert failed: %v", err)
	}
}

func TestNavigationWrapsCircularly(t *testing.T) {
	const n = 5
	s := readySession(n, nil)

	// previous from index 0 lands on n-1
	idx, err := s.Previous()
	if err != nil {
		t.Fatal(err)
	}
	if idx != n-1 {
		t.Fatalf("previous from 0: got %d, want %d", idx, n-1)
	}
	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}

	// n nexts from 0 return to 0
	for i := 0; i < n; i++ {
		if _, err := s.Next(); err != nil {
			t.Fatal(err)
		}
	}
	if got := s.AssetIndex(); got != 0 {
		t.Fatalf("after %d nexts expected index 0, got %d", n, got)
	}
}

func TestNavigationFiresAnalytics(t *testing.T) {
	c := &collectingSink{}
	s := readySession(3, c.sink)
	if _, err := s.Next(); err != nil {
		t.Fatal(err)
	}
	// capabilities event + navigation event
	if !c.wait(2) {
		t.Fatal("analytics events never arrived")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	var navMeta map[string]interface{}
	for i, ev := range c.events {
		if ev == models.EventAssetNav {
			navMeta = c.metas[i]
		}
	}
	if navMeta == nil {
		t.Fatal("no asset_navigation event recorded")
	}
	if navMeta["from"] != 0 || navMeta["to"] != 1 {
		t.Fatalf("navigation metadata wrong: %+v", navMeta)
	}
}

// mockTrack mimics a MediaStreamTrack; Release maps to track.stop().
type mockTrack struct {
	mu      sync.Mutex
	stopped bool
}

func (m *mockTrack) Release() {
	m.mu.Lock()
	m.stopped = true
	m.mu.Unlock()
}

func (m *mockTrack) wasStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

func TestCloseReleasesEveryTrack(t *testing.T) {
	s := readySession(1, nil)
	if err := s.StartAR(); err != nil {
		t.Fatal(err)
	}

	tracks := []*mockTrack{{}, {}}
	for _, tr := range tracks {
		if err := s.Acquire(tr); err != nil {
			t.Fatal(err)
		}
	}

	// navigating away tears the session down
	s.Close()
	for i, tr := range tracks {
		if !tr.wasStopped() {
			t.Fatalf("track %d was not stopped on close", i)
		}
	}

	// closed session refuses further work
	if err := s.StartAR(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	s.Close() // idempotent
}

func TestAcquireOutsideAR(t *testing.T) {
	s := readySession(1, nil)
	if err := s.Acquire(&mockTrack{}); !errors.Is(err, ErrNotInAR) {
		t.Fatalf("expected ErrNotInAR, got %v", err)
	}
}

func TestExitARReleasesResources(t *testing.T) {
	s := readySession(1, nil)
	if err := s.StartAR(); err != nil {
		t.Fatal(err)
	}
	tr := &mockTrack{}
	if err := s.Acquire(tr); err != nil {
		t.Fatal(err)
	}
	s.ExitAR("")
	if !tr.wasStopped() {
		t.Fatal("leaving AR must stop the camera stream")
	}
}

func TestRegistryReapsIdleSessions(t *testing.T) {
	reg := NewSessionRegistry()
	reg.ttl = 20 * time.Millisecond

	stale := reg.Create(nil)
	stale.ResolveExperience(activeExperience(1), nil)
	stale.SetCapabilities(CapabilityRecord{Camera: true})
	if err := stale.StartAR(); err != nil {
		t.Fatal(err)
	}
	tr := &mockTrack{}
	if err := stale.Acquire(tr); err != nil {
		t.Fatal(err)
	}

	time.Sleep(50 * time.Millisecond)

	// a client that never sends the teardown DELETE must not pin the
	// session: the next create sweeps it out and stops its tracks
	fresh := reg.Create(nil)
	if reg.Get(stale.ID) != nil {
		t.Fatal("idle session survived the sweep")
	}
	if !tr.wasStopped() {
		t.Fatal("reaped session must release its camera stream")
	}
	if reg.Get(fresh.ID) == nil {
		t.Fatal("fresh session must stay registered")
	}
	if err := stale.StartAR(); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("expected ErrSessionClosed, got %v", err)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected 1 live session, got %d", reg.Len())
	}
}

func TestRegistryDeleteCloses(t *testing.T) {
	reg := NewSessionRegistry()
	s := reg.Create(nil)
	s.ResolveExperience(activeExperience(1), nil)
	s.SetCapabilities(CapabilityRecord{WebXRAR: true})
	if err := s.StartAR(); err != nil {
		t.Fatal(err)
	}
	tr := &mockTrack{}
	if err := s.Acquire(tr); err != nil {
		t.Fatal(err)
	}

	reg.Delete(s.ID)
	if !tr.wasStopped() {
		t.Fatal("registry delete must close the session")
	}
	if reg.Get(s.ID) != nil {
		t.Fatal("deleted session still in registry")
	}
}
