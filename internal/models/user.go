package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an account that owns preferences, tweet history and a style profile.
type User struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string         `gorm:"size:50;not null;uniqueIndex" json:"username"`
	Email        *string        `gorm:"size:255;uniqueIndex" json:"email"`
	Preferences  *Preferences   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Tweets       []TweetHistory `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	StyleProfile *StyleProfile  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM.
func (User) TableName() string {
	return "users"
}

// UserCreate is the payload for creating a user.
type UserCreate struct {
	Username string  `json:"username"`
	Email    *string `json:"email,omitempty"`
}

// UserUpdate is a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
}

// UserResponse is the public representation of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     *string   `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UserWithPreferences embeds the user's preferences when they exist.
type UserWithPreferences struct {
	UserResponse
	Preferences *PreferencesResponse `json:"preferences"`
}

// ToResponse converts a user to its public shape.
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToResponseWithPreferences converts a user and its loaded preferences.
func (u *User) ToResponseWithPreferences() UserWithPreferences {
	out := UserWithPreferences{UserResponse: u.ToResponse()}
	if u.Preferences != nil {
		p := u.Preferences.ToResponse()
		out.Preferences = &p
	}
	return out
}
