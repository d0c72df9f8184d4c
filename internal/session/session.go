// Copyright (c) 2025 Vishal Bharadwaj
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/api"
	"github.com/vishalbharadwaj2406/ai-reddit-tui/internal/model"
)

// State is the session lifecycle position.
type State int

const (
	StateUninitialized State = iota
	StateInitializing
	StateProcessingPostAuth
	StateAuthenticated
	StateUnauthenticated
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitializing:
		return "initializing"
	case StateProcessingPostAuth:
		return "processing-post-auth"
	case StateAuthenticated:
		return "authenticated"
	case StateUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// ExchangeTimeout bounds the backend token exchange.
const ExchangeTimeout = 15 * time.Second

// BannerDuration is how long an auth error banner stays visible before
// it auto-clears.
const BannerDuration = 5 * time.Second

// authErrorMessages maps provider/backend error codes to user-facing
// text. Unknown codes fall through to a generic template.
var authErrorMessages = map[string]string{
	"invalid_state":      "Security validation failed. Please try signing in again.",
	"oauth_failed":       "Google sign-in failed. Please try again.",
	"server_error":       "Something went wrong on our end. Please try again.",
	"security_violation": "Your sign-in attempt was blocked for security reasons.",
}

// AuthError is a sign-in failure identified by a provider error code.
type AuthError struct {
	Code string
}

func (e *AuthError) Error() string {
	return "auth error: " + e.Code
}

// Message returns the user-facing text for the code.
func (e *AuthError) Message() string {
	return AuthErrorMessage(e.Code)
}

// AuthErrorMessage resolves an error code through the fixed table.
func AuthErrorMessage(code string) string {
	if msg, ok := authErrorMessages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Sign-in error (%s). Please try again.", code)
}

// exchangeRequest is the backend exchange body.
type exchangeRequest struct {
	GoogleToken string `json:"google_token"`
}

// exchangeResponse is the backend exchange result. ExpiresIn is in
// seconds.
type exchangeResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// signInFlow abstracts the provider flow so tests can stub it.
type signInFlow interface {
	SignIn(ctx context.Context) (*SignInResult, error)
}

// Manager drives the session state machine and serves as the token
// source for the API client. Every token use re-reads the cache file
// and re-checks expiry instead of trusting an in-memory copy.
type Manager struct {
	backendURL string
	flow       signInFlow
	tokens     *TokenCache
	httpClient *http.Client
	log        *logrus.Entry

	mu       sync.Mutex
	state    State
	profile  *model.UserProfile
	banner   string
	bannerAt time.Time
	onChange func(State)
	now      func() time.Time
}

// NewManager creates the session manager. onChange (may be nil) fires
// on every state transition, outside the manager lock.
func NewManager(backendURL string, flow *OAuthFlow, tokens *TokenCache, onChange func(State)) *Manager {
	return &Manager{
		backendURL: backendURL,
		flow:       flow,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: ExchangeTimeout},
		log:        logrus.WithField("component", "session"),
		state:      StateUninitialized,
		onChange:   onChange,
		now:        time.Now,
	}
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Profile returns the signed-in user, or nil.
func (m *Manager) Profile() *model.UserProfile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	prev := m.state
	m.state = s
	cb := m.onChange
	m.mu.Unlock()

	if prev != s {
		m.log.WithField("from", prev.String()).WithField("to", s.String()).Debug("session state changed")
		if cb != nil {
			cb(s)
		}
	}
}

// =============================================================================
// TOKEN SOURCE
// =============================================================================

// AccessToken implements api.TokenSource. The cache file is re-read on
// every call; a token is invalid the instant now >= its expiry.
func (m *Manager) AccessToken(ctx context.Context) (string, error) {
	tok, err := m.tokens.Load()
	if err != nil {
		return "", api.ErrNoSession
	}
	if !tok.ValidAt(m.now()) {
		return "", api.ErrNoSession
	}
	return tok.AccessToken, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Initialize resolves the starting state from the persisted token.
// It never leaves the manager in a loading state.
func (m *Manager) Initialize(ctx context.Context) State {
	m.setState(StateInitializing)

	tok, err := m.tokens.Load()
	if err == nil && tok.ValidAt(m.now()) {
		m.setState(StateAuthenticated)
	} else {
		m.setState(StateUnauthenticated)
	}
	return m.State()
}

// SignIn runs the provider flow and the backend exchange. While the
// redirect is being processed the manager sits in
// StateProcessingPostAuth, which suppresses the normal
// authenticated-landing navigation.
func (m *Manager) SignIn(ctx context.Context) error {
	m.setState(StateInitializing)

	result, err := m.flow.SignIn(ctx)
	if err != nil {
		m.setState(StateUnauthenticated)
		var ae *AuthError
		if errors.As(err, &ae) {
			m.ShowBanner(ae.Code)
		}
		return err
	}

	m.setState(StateProcessingPostAuth)

	tok, err := m.Exchange(ctx, result.IDToken)
	if err != nil {
		m.setState(StateUnauthenticated)
		return err
	}

	if err := m.tokens.Save(tok); err != nil {
		m.setState(StateUnauthenticated)
		return err
	}

	m.mu.Lock()
	profile := result.Profile
	m.profile = &profile
	m.mu.Unlock()

	m.setState(StateAuthenticated)
	return nil
}

// SignOut clears the token cache first, then drops the in-memory
// session. A failed cache removal still signs the session out locally.
func (m *Manager) SignOut(ctx context.Context) error {
	err := m.tokens.Clear()

	m.mu.Lock()
	m.profile = nil
	m.mu.Unlock()
	m.setState(StateUnauthenticated)

	return err
}

// =============================================================================
// BACKEND EXCHANGE
// =============================================================================

// Exchange trades the provider id token for a backend access token.
// The call is bounded at ExchangeTimeout; expiry is persisted as an
// absolute epoch-milliseconds deadline.
func (m *Manager) Exchange(ctx context.Context, googleToken string) (Token, error) {
	ctx, cancel := context.WithTimeout(ctx, ExchangeTimeout)
	defer cancel()

	raw, err := json.Marshal(exchangeRequest{GoogleToken: googleToken})
	if err != nil {
		return Token{}, fmt.Errorf("encode exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.backendURL+"/auth/google", bytes.NewReader(raw))
	if err != nil {
		return Token{}, fmt.Errorf("build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return Token{}, classifyExchangeErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return Token{}, &ExchangeError{
			Message: "Your session could not be verified. Please sign out and sign back in.",
			Err:     fmt.Errorf("exchange rejected: http %d", resp.StatusCode),
		}
	}
	if resp.StatusCode != http.StatusOK {
		return Token{}, &ExchangeError{
			Message: fmt.Sprintf("Sign-in failed (http %d). Please try again.", resp.StatusCode),
			Err:     fmt.Errorf("exchange failed: http %d", resp.StatusCode),
		}
	}

	var body exchangeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Token{}, &ExchangeError{
			Message: "Sign-in failed: unexpected server response. Please try again.",
			Err:     err,
		}
	}
	if body.AccessToken == "" {
		return Token{}, &ExchangeError{
			Message: "Sign-in failed: the server returned no token. Please try again.",
			Err:     errors.New("empty access token"),
		}
	}

	return Token{
		AccessToken:   body.AccessToken,
		ExpiryEpochMs: m.now().UnixMilli() + body.ExpiresIn*1000,
	}, nil
}

// ExchangeError is a backend exchange failure with user-facing text.
// It always resolves to a terminal error presented with a retry, never
// a stuck loading state.
type ExchangeError struct {
	Message string
	Err     error
}

func (e *ExchangeError) Error() string {
	return e.Message
}

func (e *ExchangeError) Unwrap() error {
	return e.Err
}

func classifyExchangeErr(err error) *ExchangeError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return &ExchangeError{Message: "The server is taking too long to respond. Please try again.", Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &ExchangeError{Message: "The server is taking too long to respond. Please try again.", Err: err}
	case errors.As(err, &netErr):
		return &ExchangeError{Message: "The server is down. Please try again later.", Err: err}
	default:
		return &ExchangeError{Message: fmt.Sprintf("Sign-in failed: %v. Please try again.", err), Err: err}
	}
}

// =============================================================================
// ERROR BANNER
// =============================================================================

// ShowBanner displays the message for an auth error code and schedules
// the auto-clear. A newer banner supersedes the pending clear of an
// older one.
func (m *Manager) ShowBanner(code string) {
	shownAt := m.now()

	m.mu.Lock()
	m.banner = AuthErrorMessage(code)
	m.bannerAt = shownAt
	m.mu.Unlock()

	time.AfterFunc(BannerDuration, func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Only clear the banner this timer belongs to.
		if m.bannerAt.Equal(shownAt) {
			m.banner = ""
		}
	})
}

// Banner returns the active auth error message, or "".
func (m *Manager) Banner() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.banner
}

// ClearBanner removes the banner immediately.
func (m *Manager) ClearBanner() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.banner = ""
	m.bannerAt = time.Time{}
}
