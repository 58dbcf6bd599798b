package models

// AppState is the complete persisted snapshot of the institute: this exact
// shape is what gets written to (and read from) the remote document. A field
// that is nil after decoding means the key was absent from the document, and
// hydration leaves the corresponding local collection untouched.
type AppState struct {
	Students       []Student    `json:"students"`
	TeamMembers    []TeamMember `json:"teamMembers"`
	Batches        []string     `json:"batches"`
	ProfilePicture string       `json:"profilePicture"`
}

// Clone returns a deep copy of the snapshot.
func (a AppState) Clone() AppState {
	out := a
	if a.Students != nil {
		out.Students = make([]Student, len(a.Students))
		for i, s := range a.Students {
			out.Students[i] = s.Clone()
		}
	}
	if a.TeamMembers != nil {
		out.TeamMembers = make([]TeamMember, len(a.TeamMembers))
		copy(out.TeamMembers, a.TeamMembers)
	}
	if a.Batches != nil {
		out.Batches = make([]string, len(a.Batches))
		copy(out.Batches, a.Batches)
	}
	return out
}
