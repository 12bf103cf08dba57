// Package store persists user identities, employee profiles, and form
// submissions in PostgreSQL.
package store

import "time"

// User is one Telegram end-user identity record. Created on first contact,
// mutated on every interaction, never deleted.
type User struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	PrefLang     string
	Login        string
	Verified     bool
	IsBot        bool
	FirstSeen    time.Time
	LastSeen     time.Time
	MsgCount     int64
	ClickCount   int64
}

// TrackRequest carries the identity fields refreshed on each interaction.
// Counter increments are additive, not overwriting.
type TrackRequest struct {
	ID           int64
	Username     string
	FirstName    string
	LastName     string
	LanguageCode string
	IsBot        bool
	IncMsg       int64
	IncClick     int64
}

// Stats aggregates the user table for the admin report.
type Stats struct {
	TotalUsers int64
	ActiveWeek int64
	MsgTotal   int64
	ClickTotal int64
}
