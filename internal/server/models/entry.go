// Package models defines the leaderboard data model.
package models

import "time"

// Entry is one leaderboard record.
type Entry struct {
	// Identity is the normalized display name, unique among live entries.
	Identity string
	// Score is the ranking key; higher is better.
	Score float64
	// CreatedAt is stamped at insert and never changed.
	CreatedAt time.Time
	// SecretHash authorizes self-service deletion. See cryptox.HashSecret.
	SecretHash string
	// ImageRef is the public URL of the attached image, empty when none.
	ImageRef string

	// Row is the 1-based sheet position observed when the entry was read.
	// It is not persisted and is only meaningful within one snapshot.
	Row int
}

// HasImage reports whether the entry owns a blob.
func (e Entry) HasImage() bool { return e.ImageRef != "" }
