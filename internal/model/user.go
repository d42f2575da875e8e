package model

import "time"

// UserRole is the global application role of a user, independent of any
// per-business membership role.
type UserRole string

const (
	UserRoleOwner UserRole = "OWNER" // can create and own businesses
	UserRoleStaff UserRole = "STAFF" // regular account
)

// User represents an application user record as stored in the `users`
// table. Email, phone and document number are alternate unique keys; a
// user may be looked up by any of the three when authenticating.
// Soft deletion is modelled with InactivatedAt: NULL means active, and
// every read query filters on it explicitly.
//
// Fields:
//  ID             – primary key identifier of the user.
//  FirstName      – given name.
//  LastName       – family name.
//  Email          – unique email address (may be empty).
//  Phone          – unique phone number (may be empty).
//  DocumentNumber – unique identity document number.
//  PasswordHash   – bcrypt hashed password.
//  Role           – global role (OWNER or STAFF).
//  InactivatedAt  – when the account was inactivated (nil while active).
//  CreatedAt      – timestamp of creation.
//  UpdatedAt      – timestamp of last update.
type User struct {
	ID             uint64     // users.id
	FirstName      string     // users.first_name
	LastName       string     // users.last_name
	Email          string     // users.email (nullable, unique)
	Phone          string     // users.phone (nullable, unique)
	DocumentNumber string     // users.document_number (nullable, unique)
	PasswordHash   string     // users.password_hash
	Role           UserRole   // users.role
	InactivatedAt  *time.Time // users.inactivated_at (nullable)
	CreatedAt      time.Time  // users.created_at
	UpdatedAt      time.Time  // users.updated_at
}

// Active reports whether the user may authenticate and appear in listings.
func (u *User) Active() bool { return u.InactivatedAt == nil }

// RefreshToken models an entry in the `refresh_tokens` table. Each token
// belongs to a user and is optionally scoped to a device. The plain secret
// is never stored; only its bcrypt hash. Rows are deleted on logout and
// never updated in place.
//
// Fields:
//  ID         – primary key identifier.
//  UserID     – owner of the token.
//  TokenHash  – bcrypt hash of the raw 64-byte secret.
//  DeviceInfo – optional device scoping key (nil when not provided).
//  ExpiresAt  – expiration timestamp of the token.
//  CreatedAt  – timestamp of creation.
type RefreshToken struct {
	ID         uint64    // refresh_tokens.id
	UserID     uint64    // refresh_tokens.user_id
	TokenHash  string    // refresh_tokens.token_hash
	DeviceInfo *string   // refresh_tokens.device_info (nullable)
	ExpiresAt  time.Time // refresh_tokens.expires_at
	CreatedAt  time.Time // refresh_tokens.created_at
}

// Expired reports whether the token is past its expiry at the given instant.
func (t *RefreshToken) Expired(now time.Time) bool { return now.After(t.ExpiresAt) }
