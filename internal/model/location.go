// Package model defines the core data types shared across the front desk client.
package model

import "time"

// Location is a single business location (salon, studio).
type Location struct {
	Name       string
	Address    string
	ID         int64
	BusinessID int64
}

// Role is the role claim carried by a session identity.
type Role string

// Supported roles.
const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// Profile holds the identity fields common to every authenticated session.
type Profile struct {
	ExpiresAt   time.Time
	UserID      string
	DisplayName string
	Email       string
	BusinessID  int64
}

// Identity is the decoded session identity. It is one of Unauthenticated,
// Staff or Owner; the concrete type decides whether the active location may
// be changed at runtime.
type Identity interface {
	identity()
	// Role returns the role claim, or "" for unauthenticated sessions.
	Role() Role
}

// Unauthenticated is the identity of a session without a usable credential.
type Unauthenticated struct{}

func (Unauthenticated) identity() {}

// Role implements Identity.
func (Unauthenticated) Role() Role { return "" }

// Staff is pinned to exactly one location for the lifetime of the session.
type Staff struct {
	Profile
	AssignedLocation int64
}

func (Staff) identity() {}

// Role implements Identity.
func (Staff) Role() Role { return RoleStaff }

// Owner may switch between every location of the business.
type Owner struct {
	Profile
	// HomeLocation is the location named in the credential, if any. It is
	// only a hint; the persisted choice wins.
	HomeLocation int64
}

func (Owner) identity() {}

// Role implements Identity.
func (Owner) Role() Role { return RoleOwner }

// ProfileOf returns the profile of an authenticated identity.
func ProfileOf(id Identity) (Profile, bool) {
	switch v := id.(type) {
	case Staff:
		return v.Profile, true
	case Owner:
		return v.Profile, true
	default:
		return Profile{}, false
	}
}
