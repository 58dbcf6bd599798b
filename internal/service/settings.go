package service

import (
	"log/slog"
	"time"

	"github.com/coacherp/coacherp/internal/models"
	"github.com/coacherp/coacherp/internal/state"
)

// SettingsService manages team members, batch names and the profile picture.
type SettingsService struct {
	store *state.Store
}

// NewSettingsService creates a SettingsService over the given store.
func NewSettingsService(store *state.Store) *SettingsService {
	return &SettingsService{store: store}
}

// TeamMembers returns the team list.
func (s *SettingsService) TeamMembers() []models.TeamMember {
	return s.store.TeamMembers()
}

// AddTeamMember adds a member and returns the created record.
func (s *SettingsService) AddTeamMember(name, role string) models.TeamMember {
	tm := models.TeamMember{
		ID:   models.NewTeamMemberID(time.Now()),
		Name: name,
		Role: role,
	}
	s.store.AddTeamMember(tm)
	slog.Info("Team member added", "member_id", tm.ID, "role", tm.Role)
	return tm
}

// RemoveTeamMember removes a member by id.
func (s *SettingsService) RemoveTeamMember(id string) {
	s.store.RemoveTeamMember(id)
	slog.Info("Team member removed", "member_id", id)
}

// Batches returns the batch name list.
func (s *SettingsService) Batches() []string {
	return s.store.Batches()
}

// AddBatch adds a batch name; duplicates are ignored. Reports whether the
// name was added.
func (s *SettingsService) AddBatch(name string) bool {
	added := s.store.AddBatch(name)
	if added {
		slog.Info("Batch added", "batch", name)
	}
	return added
}

// RemoveBatch removes a batch name. Students keep their label; removal never
// cascades.
func (s *SettingsService) RemoveBatch(name string) {
	s.store.RemoveBatch(name)
	slog.Info("Batch removed", "batch", name)
}

// ProfilePicture returns the institute profile image.
func (s *SettingsService) ProfilePicture() string {
	return s.store.ProfilePicture()
}

// SetProfilePicture replaces the institute profile image.
func (s *SettingsService) SetProfilePicture(pic string) {
	s.store.SetProfilePicture(pic)
	slog.Info("Profile picture updated", "bytes", len(pic))
}
