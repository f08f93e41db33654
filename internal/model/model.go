// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// User represents an account stored on the server. The password hash never
// leaves the service layer; JSON marshalling excludes it.
type User struct {
	ID           uuid.UUID  `json:"id"`
	Username     string     `json:"username"` // unique
	Email        string     `json:"email"`    // unique, compared case-insensitively
	PasswordHash []byte     `json:"-"`        // bcrypt; empty for federated-identity accounts
	ExternalID   string     `json:"-"`        // optional federated-identity id
	AvatarURL    string     `json:"avatarUrl,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

// Session is the server-side state behind one bearer token. It lives only in
// the in-memory session store; a process restart invalidates all sessions.
type Session struct {
	Token        string    `json:"-"`
	UserID       uuid.UUID `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
	LastAccessed time.Time `json:"lastAccessed"`
}

// Note is a single user-owned note. Every mutation verifies ownership first.
type Note struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Type      string    `json:"type"`   // e.g. "text", "handwriting"
	Status    string    `json:"status"` // "processing" or "ready"
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteUpdate carries the mutable fields of a note. Nil pointers mean
// "leave unchanged"; id and userId are not representable here on purpose.
type NoteUpdate struct {
	Title   *string
	Content *string
	Type    *string
	Status  *string
}

// Default values applied when a note is created without them.
const (
	DefaultNoteTitle  = "Untitled Note"
	DefaultNoteType   = "text"
	NoteStatusReady   = "ready"
	NoteStatusPending = "processing"
)
