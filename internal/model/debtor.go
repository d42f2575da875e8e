package model

import "time"

// Debtor represents a person who owes money to one business, stored in the
// `debtors` table. A debtor is optionally linked to an application user
// when a matching identity (by phone or document number) exists or later
// registers. Phone and document number are unique per business, not
// globally.
//
// Fields:
//  ID             – primary key identifier.
//  BusinessID     – business the debtor belongs to.
//  UserID         – linked application user (nil while unlinked).
//  Name           – display name.
//  Phone          – phone number, unique within the business.
//  DocumentNumber – identity document number, unique within the business.
//  CreatedAt      – creation timestamp.
//  UpdatedAt      – last update timestamp.
type Debtor struct {
	ID             uint64    // debtors.id
	BusinessID     uint64    // debtors.business_id
	UserID         *uint64   // debtors.user_id (nullable)
	Name           string    // debtors.name
	Phone          string    // debtors.phone (nullable)
	DocumentNumber string    // debtors.document_number (nullable)
	CreatedAt      time.Time // debtors.created_at
	UpdatedAt      time.Time // debtors.updated_at
}
