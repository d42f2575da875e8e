package model

import "time"

// InvitationStatus tracks whether an invitation code has been consumed.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "PENDING"
	InvitationStatusAccepted InvitationStatus = "ACCEPTED"
)

// Invitation represents a row in the `invitations` table. An invitation
// belongs to a business, optionally targets a debtor, and is consumed
// exactly once: acceptance links the accepting user to the target debtor
// and flips the status to ACCEPTED.
//
// Fields:
//  ID         – primary key identifier.
//  BusinessID – issuing business.
//  DebtorID   – targeted debtor (nil when the invite is generic).
//  Code       – short unique random code presented by the invitee.
//  Email      – invitee email (may be empty).
//  Phone      – invitee phone (may be empty).
//  Status     – PENDING until accepted.
//  ExpiresAt  – expiry instant, defaulted to 7 days after creation.
//  CreatedAt  – creation timestamp.
type Invitation struct {
	ID         uint64           // invitations.id
	BusinessID uint64           // invitations.business_id
	DebtorID   *uint64          // invitations.debtor_id (nullable)
	Code       string           // invitations.code (unique)
	Email      string           // invitations.email
	Phone      string           // invitations.phone
	Status     InvitationStatus // invitations.status
	ExpiresAt  time.Time        // invitations.expires_at
	CreatedAt  time.Time        // invitations.created_at
}
