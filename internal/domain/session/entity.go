// Package session contains the authenticated session model: the pairing of
// an opaque access token and the user identity verified for it.
package session

import "strings"

// ══════════════════════════════════════════════════════════════════════════════
// USER
// ══════════════════════════════════════════════════════════════════════════════

// Role is the account role reported by the identity backend.
type Role string

const (
	RoleStudent Role = "student"
	RoleAdmin   Role = "admin"
)

// IsValid reports whether the role is one the registration endpoint accepts.
func (r Role) IsValid() bool {
	return r == RoleStudent || r == RoleAdmin
}

// User is the verified identity. Immutable once fetched; replaced wholesale
// on re-authentication.
type User struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// DisplayName returns the local part of the e-mail address, or "Student"
// when the address is empty.
func (u *User) DisplayName() string {
	if u == nil || u.Email == "" {
		return "Student"
	}
	local, _, _ := strings.Cut(u.Email, "@")
	if local == "" {
		return "Student"
	}
	return local
}

// ══════════════════════════════════════════════════════════════════════════════
// SESSION
// ══════════════════════════════════════════════════════════════════════════════

// Session is a read-only view of the current credentials.
// User is non-nil only when Token was validated by the identity endpoint.
type Session struct {
	Token string
	User  *User
}

// IsAuthenticated is true iff both the token and the user are present.
func (s Session) IsAuthenticated() bool {
	return s.Token != "" && s.User != nil
}

// HasToken reports whether a token is held, verified or not.
func (s Session) HasToken() bool {
	return s.Token != ""
}

// ══════════════════════════════════════════════════════════════════════════════
// STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// State is the authentication lifecycle state.
type State int

const (
	StateUnauthenticated State = iota
	StateRestoring
	StateAuthenticated
)

// String returns the string representation of the state.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateRestoring:
		return "restoring"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// CanTransitionTo reports whether the lifecycle allows moving to next.
func (s State) CanTransitionTo(next State) bool {
	switch s {
	case StateUnauthenticated:
		return next == StateRestoring || next == StateAuthenticated
	case StateRestoring:
		return next == StateAuthenticated || next == StateUnauthenticated
	case StateAuthenticated:
		return next == StateUnauthenticated || next == StateAuthenticated
	default:
		return false
	}
}
