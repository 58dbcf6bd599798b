package models

import (
	"fmt"
	"time"
)

// TeamMember is a faculty or staff member. Team members have no relation to
// students or payments; the admin adds and removes them directly.
type TeamMember struct {
	// ID is the unique identifier, format "TM<unix millis>".
	ID string `json:"id"`

	// Name is the member's full name.
	Name string `json:"name"`

	// Role is a free-form role description, e.g. "Physics Faculty".
	Role string `json:"role"`
}

// NewTeamMemberID returns an id for a newly added team member.
func NewTeamMemberID(now time.Time) string {
	return fmt.Sprintf("TM%d", now.UnixMilli())
}
