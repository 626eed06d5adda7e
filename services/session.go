package services

import (
	"errors"
	"log"
	"sync"
	"time"

	"github.com/JuanPabloTorres/QuickAR-sub005/models"

	"github.com/google/uuid"
)

// AR session states. loading resolves to intro, error or not-found; intro
// and ar-active toggle; error and not-found are terminal.
const (
	StateLoading  = "loading"
	StateIntro    = "intro"
	StateARActive = "ar-active"
	StateError    = "error"
	StateNotFound = "not-found"
)

// Message shown when an experience exists but cannot be viewed.
const MsgUnavailable = "Esta experiencia no está disponible"

var (
	ErrNotReady      = errors.New("session is not ready to start AR")
	ErrNoCapability  = errors.New("no AR capability available on this device")
	ErrNoAssets      = errors.New("experience has no assets")
	ErrSessionClosed = errors.New("session already closed")
	ErrNotInAR       = errors.New("session is not in AR")
)

// Releasable is a scoped resource the session owns: a camera MediaStream
// track, an open XRSession. Whatever the session acquired it must release
// on teardown. A leaked track leaves the camera LED on.
type Releasable interface {
	Release()
}

// AnalyticsSink receives session events. Implementations must be
// fire-and-forget: never block, never surface failures to the session.
type AnalyticsSink func(eventType string, experienceID *uint, metadata map[string]interface{})

// ARSession owns the viewer state machine for one shell instance. State is
// explicit and lives here, not in an ambient store; handlers and the page
// shell drive it through these methods.
type ARSession struct {
	ID uuid.UUID

	mu           sync.Mutex
	state        string
	experience   *models.Experience
	capabilities *CapabilityRecord
	strategy     Strategy
	assetIndex   int
	lastError    string
	resources    []Releasable
	closed       bool
	analytics    AnalyticsSink
	lastTouch    time.Time
}

func NewARSession(analytics AnalyticsSink) *ARSession {
	if analytics == nil {
		analytics = func(string, *uint, map[string]interface{}) {}
	}
	return &ARSession{
		ID:        uuid.New(),
		state:     StateLoading,
		analytics: analytics,
		lastTouch: time.Now(),
	}
}

func (s *ARSession) touchLocked() {
	s.lastTouch = time.Now()
}

func (s *ARSession) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastTouch)
}

func (s *ARSession) State() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *ARSession) AssetIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assetIndex
}

func (s *ARSession) Strategy() Strategy {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.strategy
}

func (s *ARSession) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *ARSession) Experience() *models.Experience {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.experience
}

// ResolveExperience settles the loading state from the fetch outcome:
// fetch failure → error, missing → not-found, inactive or empty → error
// with the unavailable message, otherwise → intro.
func (s *ARSession) ResolveExperience(exp *models.Experience, fetchErr error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return
	}
	s.touchLocked()
	switch {
	case fetchErr != nil:
		s.state = StateError
		s.lastError = fetchErr.Error()
	case exp == nil:
		s.state = StateNotFound
	case !exp.IsActive || len(exp.Assets) == 0:
		s.state = StateError
		s.lastError = MsgUnavailable
	default:
		s.experience = exp
		s.state = StateIntro
	}
}

// SetCapabilities records the probe result and fixes the rendering
// strategy. Experience load and capability detection run concurrently;
// StartAR refuses until both have settled.
func (s *ARSession) SetCapabilities(rec CapabilityRecord) {
	s.mu.Lock()
	s.touchLocked()
	s.capabilities = &rec
	s.strategy = PickStrategy(rec)
	expID := s.experienceIDLocked()
	s.mu.Unlock()

	go s.analytics(models.EventCapabilities, expID, map[string]interface{}{
		"webxrAR":  rec.WebXRAR,
		"camera":   rec.Camera,
		"strategy": string(PickStrategy(rec)),
	})
}

// StartAR moves intro → ar-active. Requires a loaded experience with at
// least one asset and a settled capability record reporting some AR tier;
// with zero capability the transition is refused, never attempted.
func (s *ARSession) StartAR() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	if s.state != StateIntro {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.capabilities == nil {
		s.mu.Unlock()
		return ErrNotReady
	}
	if s.experience == nil || len(s.experience.Assets) == 0 {
		s.mu.Unlock()
		return ErrNoAssets
	}
	if s.strategy == StrategyStatic {
		s.mu.Unlock()
		return ErrNoCapability
	}
	s.state = StateARActive
	s.touchLocked()
	expID := s.experienceIDLocked()
	strategy := s.strategy
	s.mu.Unlock()

	go s.analytics(models.EventARStart, expID, map[string]interface{}{
		"strategy": string(strategy),
	})
	return nil
}

// ExitAR reverts ar-active → intro. A runtime AR error lands here too: the
// message is captured and surfaced inline, the session never terminates.
func (s *ARSession) ExitAR(runtimeErr string) {
	s.mu.Lock()
	if s.state != StateARActive {
		s.mu.Unlock()
		return
	}
	s.state = StateIntro
	s.lastError = runtimeErr
	s.touchLocked()
	s.releaseLocked()
	expID := s.experienceIDLocked()
	s.mu.Unlock()

	go s.analytics(models.EventARExit, expID, map[string]interface{}{
		"error": runtimeErr,
	})
}

// Next advances the asset index, wrapping circularly, and fires a
// navigation event with the from/to indices without blocking the update.
func (s *ARSession) Next() (int, error) {
	return s.navigate(1)
}

func (s *ARSession) Previous() (int, error) {
	return s.navigate(-1)
}

func (s *ARSession) navigate(delta int) (int, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return 0, ErrSessionClosed
	}
	if s.experience == nil || len(s.experience.Assets) == 0 {
		s.mu.Unlock()
		return 0, ErrNoAssets
	}
	s.touchLocked()
	n := len(s.experience.Assets)
	from := s.assetIndex
	s.assetIndex = (s.assetIndex + delta + n) % n
	to := s.assetIndex
	expID := s.experienceIDLocked()
	s.mu.Unlock()

	go s.analytics(models.EventAssetNav, expID, map[string]interface{}{
		"from": from,
		"to":   to,
	})
	return to, nil
}

// Acquire registers a scoped resource. Only valid while in AR; one shell
// holds at most one camera stream and one XR session at a time, and only
// the session that acquired a resource may release it.
func (s *ARSession) Acquire(r Releasable) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSessionClosed
	}
	if s.state != StateARActive {
		return ErrNotInAR
	}
	s.touchLocked()
	s.resources = append(s.resources, r)
	return nil
}

// Close tears the session down and releases every acquired resource
// exactly once. Mandatory on navigation away, idempotent.
func (s *ARSession) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.releaseLocked()
	s.mu.Unlock()
}

func (s *ARSession) releaseLocked() {
	for _, r := range s.resources {
		r.Release()
	}
	s.resources = nil
}

func (s *ARSession) experienceIDLocked() *uint {
	if s.experience == nil {
		return nil
	}
	id := s.experience.ID
	return &id
}

// Sessions whose client went away without the teardown DELETE (killed tab,
// lost connectivity) are reaped after this much inactivity.
const SessionIdleTTL = 10 * time.Minute

// SessionRegistry tracks the live AR sessions by ID. One per open viewer
// shell; deleting a session closes it. Creation is anonymous, so every
// Create also sweeps sessions idle past the TTL to keep the map bounded.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*ARSession
	ttl      time.Duration
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]*ARSession),
		ttl:      SessionIdleTTL,
	}
}

func (r *SessionRegistry) Create(analytics AnalyticsSink) *ARSession {
	r.sweep(time.Now())

	s := NewARSession(analytics)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

func (r *SessionRegistry) sweep(now time.Time) {
	var expired []*ARSession
	r.mu.Lock()
	for id, s := range r.sessions {
		if s.idleSince(now) > r.ttl {
			delete(r.sessions, id)
			expired = append(expired, s)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
		log.Printf("AR session %s reaped after %s idle", s.ID, r.ttl)
	}
}

func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *SessionRegistry) Get(id uuid.UUID) *ARSession {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

func (r *SessionRegistry) Delete(id uuid.UUID) {
	r.mu.Lock()
	s := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if s != nil {
		s.Close()
		log.Printf("AR session %s closed", id)
	}
}
