package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/coacherp/coacherp/internal/auth"
	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/sync"
)

// SyncService glues the auth session and the sync engine behind the
// settings-page controls: connect, disconnect, manual sync, status.
type SyncService struct {
	session *auth.Session
	engine  *sync.Engine
}

// NewSyncService creates a SyncService.
func NewSyncService(session *auth.Session, engine *sync.Engine) *SyncService {
	return &SyncService{session: session, engine: engine}
}

// SyncInfo is the sync indicator shown in the UI: status and last-synced
// time, nothing more.
type SyncInfo struct {
	Connected  bool              `json:"connected"`
	Status     models.SyncStatus `json:"status"`
	LastSynced *time.Time        `json:"lastSynced"`
}

// AuthURL returns the provider consent URL for the connect button.
func (s *SyncService) AuthURL(state string) string {
	return s.session.AuthURL(state)
}

// Connect exchanges the authorization code and triggers the initial pull.
// A pull failure is not returned: it is already reflected in the sync status
// and must not block the sign-in itself.
func (s *SyncService) Connect(ctx context.Context, code string) error {
	if err := s.session.Connect(ctx, code); err != nil {
		slog.Error("Connect failed", "error", err)
		return err
	}
	if err := s.engine.Connect(ctx); err != nil {
		slog.Warn("Initial pull failed", "error", err)
	}
	return nil
}

// Disconnect stops the engine, then revokes and clears the grant.
// Idempotent: disconnecting a disconnected session is a no-op.
func (s *SyncService) Disconnect(ctx context.Context) error {
	s.engine.Disconnect()
	return s.session.Disconnect(ctx)
}

// SyncNow forces an immediate push, bypassing the debounce. Returns
// sync.ErrDisconnected when no grant is held.
func (s *SyncService) SyncNow(ctx context.Context) error {
	return s.engine.SyncNow(ctx)
}

// Status returns the current sync indicator.
func (s *SyncService) Status() SyncInfo {
	status, lastSynced := s.engine.Status()
	info := SyncInfo{
		Connected: s.session.Connected(),
		Status:    status,
	}
	if !lastSynced.IsZero() {
		t := lastSynced
		info.LastSynced = &t
	}
	return info
}
