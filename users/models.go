// Package users defines the Yurt Market user and dorm domain model and
// the storage abstraction the auth API persists them through.
package users

import "time"

// Role is the primary capability tier of a user.
type Role string

const (
	RoleStudent Role = "student"
	RoleSeller  Role = "seller"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the three enumerated roles.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// Dorm is a residence hall. It is the catalog-partitioning key: students
// only ever see sellers registered in their own dorm.
type Dorm struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Address string `json:"address,omitempty"`
}

// Profile is the public shape of a user as returned by GET /users/me.
// Field names follow the wire format consumed by the web client.
type Profile struct {
	ID         int64     `json:"id"`
	Email      string    `json:"email"`
	DormID     int64     `json:"dorm_id"`
	Role       Role      `json:"role"`
	DateJoined time.Time `json:"date_joined,omitzero"`
	Phone      string    `json:"phone,omitempty"`
	RoomNumber string    `json:"room_number,omitempty"`
	Block      string    `json:"block,omitempty"`

	// IBAN is the seller payout account; empty for students.
	IBAN string `json:"iban,omitempty"`

	// SellerStoreIsOpen is nil for non-sellers.
	SellerStoreIsOpen *bool `json:"seller_store_is_open,omitempty"`

	IsStaff     bool `json:"is_staff,omitempty"`
	IsSuperuser bool `json:"is_superuser,omitempty"`
}

// AdminEquivalent reports whether the user is granted administrative
// override for access decisions: either the admin role proper or one of
// the staff/superuser flags.
func (p *Profile) AdminEquivalent() bool {
	return p.Role == RoleAdmin || p.IsStaff || p.IsSuperuser
}

// Clone returns a deep copy of the profile.
func (p *Profile) Clone() *Profile {
	if p == nil {
		return nil
	}
	cp := *p
	if p.SellerStoreIsOpen != nil {
		open := *p.SellerStoreIsOpen
		cp.SellerStoreIsOpen = &open
	}
	return &cp
}

// User is the server-side record: a profile plus the password hash.
// The hash never leaves the store layer in serialized responses.
type User struct {
	Profile
	PasswordHash string `json:"-"`
}

// Clone returns a deep copy of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	cp := &User{PasswordHash: u.PasswordHash}
	cp.Profile = *u.Profile.Clone()
	return cp
}
