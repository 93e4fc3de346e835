package model

import "time"

// Package model contains the domain types shared across layers.
// Pure data, no persistence tags beyond JSON.

// User is an account created on demand. Immutable once created; there are
// no update or delete operations for users.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// SharedDocument is the single snippet shared by a deployment. Exactly one
// logical instance exists at a time; it is overwritten in place on update
// and created lazily with defaults on first read.
type SharedDocument struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Language  string    `json:"language"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DefaultLanguage is used when a document is created without an explicit
// language tag.
const DefaultLanguage = "text"

// FileRecord describes an uploaded file. The byte payload lives in object
// storage under ObjectPath; this is metadata only. FileSize is kept as a
// decimal string because it round-trips through JSON clients untouched.
type FileRecord struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	ObjectPath string    `json:"objectPath"`
	FileSize   string    `json:"fileSize"`
	UploadedAt time.Time `json:"uploadedAt"`
}
