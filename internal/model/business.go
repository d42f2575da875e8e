package model

import "time"

// BusinessRole is the membership role of a user inside one business. It is
// a closed enumeration, distinct from the user's global role.
type BusinessRole string

const (
	BusinessRoleOwner   BusinessRole = "OWNER"
	BusinessRoleAdmin   BusinessRole = "ADMIN"
	BusinessRoleCashier BusinessRole = "CASHIER"
	BusinessRoleViewer  BusinessRole = "VIEWER"
)

// ValidBusinessRole reports whether s names a known membership role.
func ValidBusinessRole(s string) bool {
	switch BusinessRole(s) {
	case BusinessRoleOwner, BusinessRoleAdmin, BusinessRoleCashier, BusinessRoleViewer:
		return true
	}
	return false
}

// Business represents a row in the `businesses` table. Every business is
// owned by exactly one user and carries the currency all of its debts are
// denominated in. Creation is transactional together with the owner's
// ADMIN membership row.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user who owns the business.
//  Name      – display name.
//  Address   – street address (may be empty).
//  Currency  – ISO currency code, defaulted from configuration.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Business struct {
	ID        uint64    // businesses.id
	OwnerID   uint64    // businesses.owner_id
	Name      string    // businesses.name
	Address   string    // businesses.address
	Currency  string    // businesses.currency
	CreatedAt time.Time // businesses.created_at
	UpdatedAt time.Time // businesses.updated_at
}

// BusinessUser is the membership join row in the `business_users` table,
// unique on (business_id, user_id). The owner's membership and the acting
// caller's own membership may never be the target of a role change or a
// removal.
//
// Fields:
//  ID         – primary key identifier.
//  BusinessID – business the membership belongs to.
//  UserID     – member user.
//  Role       – membership role within the business.
//  CreatedAt  – creation timestamp.
type BusinessUser struct {
	ID         uint64       // business_users.id
	BusinessID uint64       // business_users.business_id
	UserID     uint64       // business_users.user_id
	Role       BusinessRole // business_users.role
	CreatedAt  time.Time    // business_users.created_at
}
