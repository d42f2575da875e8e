// Package repository implements data access over MySQL using database/sql.
// Each aggregate gets its own repository struct bound to a *sql.DB. Missing
// rows and unique-key violations are translated into the apperr taxonomy at
// this boundary so services never inspect driver errors.
package repository

import (
	"database/sql"
	"strings"
	"time"
)

// isDuplicate reports whether err is a MySQL duplicate-entry violation
// (error 1062 on a unique key).
func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "1062")
}

// nullStr maps an empty string to SQL NULL so unique indexes on optional
// columns ignore absent values.
func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullTime maps a nil *time.Time to SQL NULL.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// nullUint64 maps a nil *uint64 to SQL NULL.
func nullUint64(v *uint64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func strOrEmpty(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time
	return &t
}

func uint64Ptr(ni sql.NullInt64) *uint64 {
	if !ni.Valid {
		return nil
	}
	v := uint64(ni.Int64)
	return &v
}
