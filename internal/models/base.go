// Package models contains the persisted entities and API shapes of vibe-tweet.
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

// BeforeCreate assigns a client-side UUID so inserts work on every dialect.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	ensureID(&u.ID)
	return nil
}

// BeforeCreate assigns a client-side UUID so inserts work on every dialect.
func (p *Preferences) BeforeCreate(_ *gorm.DB) error {
	ensureID(&p.ID)
	return nil
}

// BeforeCreate assigns a client-side UUID so inserts work on every dialect.
func (t *TweetHistory) BeforeCreate(_ *gorm.DB) error {
	ensureID(&t.ID)
	return nil
}

// BeforeCreate assigns a client-side UUID so inserts work on every dialect.
func (s *StyleProfile) BeforeCreate(_ *gorm.DB) error {
	ensureID(&s.ID)
	return nil
}
