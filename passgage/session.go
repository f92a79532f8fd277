package passgage

import (
	"sync"
	"time"
)

// State describes where the facade is in its session lifecycle.
type State string

const (
	// StateUnauthenticated means no session is held.
	StateUnauthenticated State = "unauthenticated"
	// StateAuthenticating means a login call is in flight.
	StateAuthenticating State = "authenticating"
	// StateAuthenticated means a session is held and usable.
	StateAuthenticated State = "authenticated"
	// StateRefreshing means the held access token is being replaced.
	StateRefreshing State = "refreshing"
)

// Session is an immutable snapshot of the stored credentials. The facade
// hands out copies only; callers can never mutate the live session.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// sessionState guards the session record and the lifecycle state behind one
// mutex. All transitions go through its methods.
type sessionState struct {
	mu      sync.Mutex
	state   State
	session *Session
}

func newSessionState() *sessionState {
	return &sessionState{state: StateUnauthenticated}
}

// current returns the state and a copy of the session, if any.
func (s *sessionState) current() (State, *Session) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return s.state, nil
	}
	copied := *s.session

	return s.state, &copied
}

// accessToken returns the held access token, or false when unauthenticated.
func (s *sessionState) accessToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return "", false
	}

	return s.session.AccessToken, true
}

// refreshToken returns the held refresh token, or false when unauthenticated.
func (s *sessionState) refreshToken() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return "", false
	}

	return s.session.RefreshToken, true
}

func (s *sessionState) transition(next State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = next
}

// set installs a new session record and moves to authenticated.
func (s *sessionState) set(session Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
	s.state = StateAuthenticated
}

// replaceAccessToken swaps the access token after a refresh. The refresh
// token itself is never rotated. Expiry only moves forward; a stale refresh
// response can not shorten the session.
func (s *sessionState) replaceAccessToken(accessToken string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.session == nil {
		return
	}
	s.session.AccessToken = accessToken
	if expiresAt.After(s.session.ExpiresAt) {
		s.session.ExpiresAt = expiresAt
	}
	s.state = StateAuthenticated
}

// clear drops the session and returns to unauthenticated.
func (s *sessionState) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
	s.state = StateUnauthenticated
}
