// Package auth holds the two credential concerns of the application: the
// OAuth grant used to reach the remote document store, and the admin
// password gate for the dashboard itself.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drivev3 "google.golang.org/api/drive/v3"
)

// ErrNotConnected is returned when a token is requested with no active grant.
var ErrNotConnected = errors.New("auth: no active grant")

const revokeURL = "https://oauth2.googleapis.com/revoke"

// Ensure Session can back an oauth2 http client directly.
var _ oauth2.TokenSource = (*Session)(nil)

// Session owns the OAuth grant lifecycle: obtain on Connect, hold (with
// automatic refresh) while connected, drop on Disconnect or Invalidate.
// The grant lives in memory only; a restart means reconnecting.
type Session struct {
	mu     sync.Mutex
	cfg    *oauth2.Config
	source oauth2.TokenSource

	httpClient *http.Client // revocation calls; overridable in tests
}

// NewSession creates a disconnected session for the given OAuth client.
// Scope is restricted to files created by this application.
func NewSession(clientID, clientSecret, redirectURL string) *Session {
	return &Session{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{drivev3.DriveFileScope},
			Endpoint:     google.Endpoint,
		},
		httpClient: http.DefaultClient,
	}
}

// AuthURL returns the consent URL the admin visits to authorize the app.
func (s *Session) AuthURL(state string) string {
	return s.cfg.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Connect exchanges the authorization code for a grant and marks the session
// usable. The caller is expected to trigger the sync engine's initial pull
// on success.
func (s *Session) Connect(ctx context.Context, code string) error {
	tok, err := s.cfg.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	s.mu.Lock()
	s.source = s.cfg.TokenSource(context.Background(), tok)
	s.mu.Unlock()

	slog.Info("Remote store authorized")
	return nil
}

// Connected reports whether a usable grant is held.
func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.source != nil
}

// Token returns the current access token, refreshing it when needed.
// Implements oauth2.TokenSource so the Drive client can be built once at
// startup against the session itself.
func (s *Session) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	source := s.source
	s.mu.Unlock()
	if source == nil {
		return nil, ErrNotConnected
	}
	return source.Token()
}

// HTTPClient returns an http client that authorizes every request with the
// session's grant.
func (s *Session) HTTPClient() *http.Client {
	return &http.Client{Transport: &oauth2.Transport{Source: s}}
}

// Invalidate drops the grant without telling the provider. Used when the
// provider has already rejected the credential; revoking it would fail too.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.source = nil
	s.mu.Unlock()
}

// Disconnect revokes the grant with the provider and clears it. Calling it
// with no active grant is a no-op, not an error. Revocation failures are
// logged and do not keep the grant alive.
func (s *Session) Disconnect(ctx context.Context) error {
	s.mu.Lock()
	source := s.source
	s.source = nil
	s.mu.Unlock()

	if source == nil {
		return nil
	}

	tok, err := source.Token()
	if err != nil {
		slog.Warn("Skipping revocation, grant already unusable", "error", err)
		return nil
	}
	if err := s.revoke(ctx, tok.AccessToken); err != nil {
		slog.Warn("Failed to revoke grant", "error", err)
	}

	slog.Info("Remote store disconnected")
	return nil
}

func (s *Session) revoke(ctx context.Context, accessToken string) error {
	form := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("revocation endpoint returned %s", res.Status)
	}
	return nil
}
