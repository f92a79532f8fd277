package passgage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout = 15 * time.Second

	codeTokenExpired = "TOKEN_EXPIRED"
	codeTokenInvalid = "TOKEN_INVALID"

	errNoSession = "not authenticated: no active session"
)

// Config configures a Client. BaseURL is required; everything else has a
// usable default.
type Config struct {
	// BaseURL is the server root, e.g. "https://api.passgage.example".
	BaseURL string
	// APIKey is sent as X-Api-Key on every request.
	APIKey string
	// Timeout bounds each call. Defaults to 15 seconds.
	Timeout time.Duration
	// RememberSession persists the session via SessionStore across runs.
	RememberSession bool
	// SessionStore holds the persisted session. Required when
	// RememberSession is set.
	SessionStore SessionStore
	// Logger receives debug request logging. Discarded when nil.
	Logger *slog.Logger
	// OnUnauthorized fires when the session is cleared without the caller
	// asking, e.g. the refresh token was rejected.
	OnUnauthorized func()
}

// Client is the facade over the Passgage API. It exclusively owns the
// session; callers never see or touch raw tokens. All methods are safe for
// concurrent use and return a Result instead of an error.
type Client struct {
	transport      *transport
	session        *sessionState
	store          SessionStore
	remember       bool
	logger         *slog.Logger
	onUnauthorized func()
	events         events
	refreshGroup   singleflight.Group
}

// New creates a Client. When RememberSession is set and the store holds a
// session, it is restored silently; restore failures are logged and ignored.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("passgage: BaseURL is required")
	}
	if cfg.RememberSession && cfg.SessionStore == nil {
		return nil, fmt.Errorf("passgage: RememberSession requires a SessionStore")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	c := &Client{
		transport:      newTransport(cfg.BaseURL, cfg.APIKey, timeout, logger),
		session:        newSessionState(),
		store:          cfg.SessionStore,
		remember:       cfg.RememberSession,
		logger:         logger,
		onUnauthorized: cfg.OnUnauthorized,
	}

	if cfg.RememberSession {
		c.restoreSession()
	}

	return c, nil
}

// State returns the current session lifecycle state.
func (c *Client) State() State {
	state, _ := c.session.current()

	return state
}

// Session returns a copy of the held session, or nil when unauthenticated.
func (c *Client) Session() *Session {
	_, session := c.session.current()

	return session
}

// Subscribe returns a channel of session lifecycle events, e.g. to route the
// user back to the login screen on a forced logout.
func (c *Client) Subscribe() <-chan Event {
	return c.events.Subscribe()
}

// --- Auth operations ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Login authenticates with email and password and installs the session. A
// failed login from an authenticated state keeps the previous session.
func (c *Client) Login(ctx context.Context, email, password string) LoginResult {
	_, prior := c.session.current()
	c.session.transition(StateAuthenticating)
	c.events.publish(Event{State: StateAuthenticating})

	var resp loginResponse
	err := c.transport.do(ctx, http.MethodPost, "/auth/login", loginRequest{
		Email:    email,
		Password: password,
	}, "", &resp)
	if err != nil {
		if prior != nil {
			c.session.set(*prior)
			c.events.publish(Event{State: StateAuthenticated})
		} else {
			c.session.clear()
			c.events.publish(Event{State: StateUnauthenticated})
		}

		return fail[*LoginData](err.Error())
	}

	c.session.set(Session{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresAt:    resp.ExpiresAt,
	})
	c.persistSession()
	c.events.publish(Event{State: StateAuthenticated})

	return ok(&LoginData{User: resp.User, ExpiresAt: resp.ExpiresAt})
}

type logoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout revokes the session server-side and clears it locally. The local
// session is dropped even when the server call fails.
func (c *Client) Logout(ctx context.Context) LogoutResult {
	refreshToken, held := c.session.refreshToken()
	if !held {
		return fail[struct{}](errNoSession)
	}

	err := c.transport.do(ctx, http.MethodPost, "/auth/logout", logoutRequest{
		RefreshToken: refreshToken,
	}, "", nil)

	c.clearSession(false)

	if err != nil {
		return fail[struct{}](err.Error())
	}

	return ok(struct{}{})
}

// Profile fetches the authenticated user's profile.
func (c *Client) Profile(ctx context.Context) ProfileResult {
	return doAuthorized[*User](c, ctx, http.MethodGet, "/auth/profile", nil)
}

// --- Access operations ---

type scanRequest struct {
	Code      string   `json:"code"`
	Device    string   `json:"device,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

// ScanOptions carries the optional context of a QR or NFC scan.
type ScanOptions struct {
	Device    string
	Latitude  *float64
	Longitude *float64
}

// ValidateQR validates a scanned QR payload and records the access event.
func (c *Client) ValidateQR(ctx context.Context, code string, opts ScanOptions) ScanResult {
	return c.scan(ctx, "/api/v1/access/qr", code, opts)
}

// ValidateNFC validates a read NFC tag and records the access event.
func (c *Client) ValidateNFC(ctx context.Context, tagID string, opts ScanOptions) ScanResult {
	return c.scan(ctx, "/api/v1/access/nfc", tagID, opts)
}

func (c *Client) scan(ctx context.Context, path, code string, opts ScanOptions) ScanResult {
	return doAuthorized[*Scan](c, ctx, http.MethodPost, path, scanRequest{
		Code:      code,
		Device:    opts.Device,
		Latitude:  opts.Latitude,
		Longitude: opts.Longitude,
	})
}

// AccessHistory lists the user's recent access events, newest first.
// A zero limit uses the server default.
func (c *Client) AccessHistory(ctx context.Context, limit int) Result[[]Entrance] {
	path := "/api/v1/access/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	return doAuthorized[[]Entrance](c, ctx, http.MethodGet, path, nil)
}

// --- Branch operations ---

// NearbyBranches lists active company branches within radiusM meters of the
// given position, closest first. A zero radius uses the server default.
func (c *Client) NearbyBranches(ctx context.Context, latitude, longitude, radiusM float64) BranchListResult {
	query := url.Values{}
	query.Set("latitude", fmt.Sprintf("%g", latitude))
	query.Set("longitude", fmt.Sprintf("%g", longitude))
	if radiusM > 0 {
		query.Set("radius_m", fmt.Sprintf("%g", radiusM))
	}

	return doAuthorized[[]Branch](c, ctx, http.MethodGet, "/api/v1/branches/nearby?"+query.Encode(), nil)
}

type checkInRequest struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CheckInEntry records a geofenced entry at the branch.
func (c *Client) CheckInEntry(ctx context.Context, branchID string, latitude, longitude float64) CheckInResult {
	return c.checkIn(ctx, branchID, "entry", latitude, longitude)
}

// CheckInExit records a geofenced exit from the branch.
func (c *Client) CheckInExit(ctx context.Context, branchID string, latitude, longitude float64) CheckInResult {
	return c.checkIn(ctx, branchID, "exit", latitude, longitude)
}

func (c *Client) checkIn(ctx context.Context, branchID, direction string, latitude, longitude float64) CheckInResult {
	path := "/api/v1/branches/" + url.PathEscape(branchID) + "/" + direction

	return doAuthorized[*Entrance](c, ctx, http.MethodPost, path, checkInRequest{
		Latitude:  latitude,
		Longitude: longitude,
	})
}

// --- Work log operations ---

type workLogRequest struct {
	Description string `json:"description,omitempty"`
}

// LogWorkEntry starts a remote-work session.
func (c *Client) LogWorkEntry(ctx context.Context, description string) WorkLogResult {
	return doAuthorized[*WorkLogRecord](c, ctx, http.MethodPost, "/api/v1/worklog/entry", workLogRequest{
		Description: description,
	})
}

// LogWorkExit stops the open remote-work session.
func (c *Client) LogWorkExit(ctx context.Context, description string) WorkLogResult {
	return doAuthorized[*WorkLogRecord](c, ctx, http.MethodPost, "/api/v1/worklog/exit", workLogRequest{
		Description: description,
	})
}

// WorkHistory lists the user's recent remote-work events, newest first.
// A zero limit uses the server default.
func (c *Client) WorkHistory(ctx context.Context, limit int) Result[[]WorkLogRecord] {
	path := "/api/v1/worklog/history"
	if limit > 0 {
		path = fmt.Sprintf("%s?limit=%d", path, limit)
	}

	return doAuthorized[[]WorkLogRecord](c, ctx, http.MethodGet, path, nil)
}

// --- Session plumbing ---

// doAuthorized performs an authenticated call with at most one internal
// refresh-and-retry cycle on an expired access token.
func doAuthorized[T any](c *Client, ctx context.Context, method, path string, body any) Result[T] {
	accessToken, held := c.session.accessToken()
	if !held {
		return fail[T](errNoSession)
	}

	var out T
	err := c.transport.do(ctx, method, path, body, accessToken, &out)
	if err == nil {
		return ok(out)
	}

	apiErr, isAPIErr := asAPIError(err)
	if !isAPIErr {
		return fail[T](err.Error())
	}

	switch apiErr.Code {
	case codeTokenExpired:
		// Skip the refresh when a concurrent call already replaced the token.
		if current, stillHeld := c.session.accessToken(); !stillHeld || current == accessToken {
			if refreshErr := c.refresh(ctx); refreshErr != nil {
				return fail[T](refreshErr.Error())
			}
		}
	case codeTokenInvalid:
		// The token we sent may have gone stale mid-flight under a concurrent
		// refresh. Retry with the current one; a genuinely bad token fails.
		current, stillHeld := c.session.accessToken()
		if !stillHeld || current == accessToken {
			return fail[T](err.Error())
		}
	default:
		return fail[T](err.Error())
	}

	accessToken, held = c.session.accessToken()
	if !held {
		return fail[T](errNoSession)
	}

	var retried T
	if err := c.transport.do(ctx, method, path, body, accessToken, &retried); err != nil {
		return fail[T](err.Error())
	}

	return ok(retried)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// refresh replaces the access token. Concurrent callers share one flight;
// any failed refresh force-clears the session.
func (c *Client) refresh(ctx context.Context) error {
	_, err, _ := c.refreshGroup.Do("refresh", func() (any, error) {
		refreshToken, held := c.session.refreshToken()
		if !held {
			return nil, fmt.Errorf("%s", errNoSession)
		}

		c.session.transition(StateRefreshing)
		c.events.publish(Event{State: StateRefreshing})

		var resp refreshResponse
		err := c.transport.do(ctx, http.MethodPost, "/auth/refresh", refreshRequest{
			RefreshToken: refreshToken,
		}, "", &resp)
		if err != nil {
			// Any failed refresh ends the session, a dropped connection the
			// same as a rejected token. The caller must log in again.
			c.clearSession(true)

			return nil, err
		}

		c.session.replaceAccessToken(resp.AccessToken, resp.ExpiresAt)
		c.persistSession()
		c.events.publish(Event{State: StateAuthenticated})

		return nil, nil
	})

	return err
}

func (c *Client) restoreSession() {
	stored, err := c.store.Load()
	if err != nil {
		c.logger.Debug("session restore failed", slog.Any("error", err))

		return
	}
	if stored == nil {
		return
	}

	c.session.set(*stored)
	c.events.publish(Event{State: StateAuthenticated})
}

func (c *Client) persistSession() {
	if !c.remember {
		return
	}

	_, session := c.session.current()
	if session == nil {
		return
	}

	if err := c.store.Save(*session); err != nil {
		c.logger.Debug("session persist failed", slog.Any("error", err))
	}
}

func (c *Client) clearSession(forced bool) {
	c.session.clear()

	if c.remember {
		if err := c.store.Clear(); err != nil {
			c.logger.Debug("session clear failed", slog.Any("error", err))
		}
	}

	c.events.publish(Event{State: StateUnauthenticated, Forced: forced})

	if forced && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
}
