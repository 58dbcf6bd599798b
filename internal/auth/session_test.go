package auth

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"golang.org/x/oauth2"
)

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) { return f(req) }

func newTestSession() *Session {
	return NewSession("client-id", "client-secret", "http://localhost/callback")
}

func TestAuthURLCarriesOfflineConsent(t *testing.T) {
	u := newTestSession().AuthURL("state-123")
	for _, want := range []string{"state=state-123", "access_type=offline", "prompt=consent", "client_id=client-id"} {
		if !strings.Contains(u, want) {
			t.Errorf("auth url missing %q: %s", want, u)
		}
	}
}

func TestTokenWithoutGrant(t *testing.T) {
	s := newTestSession()
	if s.Connected() {
		t.Error("fresh session should not be connected")
	}
	if _, err := s.Token(); !errors.Is(err, ErrNotConnected) {
		t.Fatalf("expected ErrNotConnected, got %v", err)
	}
}

func TestInvalidateDropsGrant(t *testing.T) {
	s := newTestSession()
	s.source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})

	if !s.Connected() {
		t.Fatal("session should be connected")
	}
	s.Invalidate()
	if s.Connected() {
		t.Error("Invalidate should drop the grant")
	}
}

func TestDisconnectRevokesAndClears(t *testing.T) {
	s := newTestSession()
	s.source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})

	var revoked int
	s.httpClient = &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		revoked++
		body, _ := io.ReadAll(req.Body)
		if !strings.Contains(string(body), "token=tok") {
			t.Errorf("revocation request missing token: %s", body)
		}
		return &http.Response{StatusCode: http.StatusOK, Body: io.NopCloser(strings.NewReader(""))}, nil
	})}

	if err := s.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect failed: %v", err)
	}
	if revoked != 1 {
		t.Errorf("expected 1 revocation call, got %d", revoked)
	}
	if s.Connected() {
		t.Error("grant should be cleared")
	}
}

func TestDisconnectIdempotent(t *testing.T) {
	s := newTestSession()
	s.httpClient = &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		t.Error("no revocation call expected without a grant")
		return nil, errors.New("unreachable")
	})}

	if err := s.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect on fresh session failed: %v", err)
	}
	if err := s.Disconnect(context.Background()); err != nil {
		t.Fatalf("second Disconnect failed: %v", err)
	}
}

func TestDisconnectSurvivesRevocationFailure(t *testing.T) {
	s := newTestSession()
	s.source = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: "tok"})
	s.httpClient = &http.Client{Transport: roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusBadRequest, Body: io.NopCloser(strings.NewReader(""))}, nil
	})}

	if err := s.Disconnect(context.Background()); err != nil {
		t.Fatalf("Disconnect should swallow revocation failures, got %v", err)
	}
	if s.Connected() {
		t.Error("grant should be cleared even when revocation fails")
	}
}
