package core

// System privileged principals and deployment identity, injected at
// construction. Never ambient global state.
type System struct {
	Admins    []string
	Guardians []string
	Genesis   int64
	Version   string
}

// IsAdmin check if the user is admin
func (s *System) IsAdmin(userID string) bool {
	for _, a := range s.Admins {
		if a == userID {
			return true
		}
	}

	return false
}

// IsGuardian guardians may pause, only admins unpause
func (s *System) IsGuardian(userID string) bool {
	for _, g := range s.Guardians {
		if g == userID {
			return true
		}
	}

	return s.IsAdmin(userID)
}
