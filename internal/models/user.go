package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role controls what a user is allowed to do. Moderators can act on reports
// and warnings; admins can additionally manage users, books, and settings.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// ReadingHistoryEntry is embedded per user and mutated on every progress
// update. Concurrent updates to the same entry are last-writer-wins.
type ReadingHistoryEntry struct {
	Book      primitive.ObjectID `bson:"book" json:"book"`
	LastPage  int                `bson:"last_page" json:"last_page"`
	ReadCount int                `bson:"read_count" json:"read_count"`
	LastRead  time.Time          `bson:"last_read" json:"last_read"`
}

// Bookmark marks a page in a book, optionally with a note.
type Bookmark struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Book      primitive.ObjectID `bson:"book" json:"book"`
	Page      int                `bson:"page" json:"page"`
	Note      string             `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Preferences is the per-user settings bag.
type Preferences struct {
	EmailNotifications bool   `bson:"email_notifications" json:"email_notifications"`
	Theme              string `bson:"theme" json:"theme"` // "light" or "dark"
	FontSize           int    `bson:"font_size" json:"font_size"`
	ReadingHistory     bool   `bson:"reading_history" json:"reading_history"`
}

// DefaultPreferences returns the preferences applied at registration.
func DefaultPreferences() Preferences {
	return Preferences{
		EmailNotifications: true,
		Theme:              "light",
		FontSize:           16,
		ReadingHistory:     true,
	}
}

type ProfilePicture struct {
	Key string `bson:"key,omitempty" json:"key,omitempty"`
	URL string `bson:"url,omitempty" json:"url,omitempty"`
}

type Address struct {
	Street  string `bson:"street,omitempty" json:"street,omitempty"`
	City    string `bson:"city,omitempty" json:"city,omitempty"`
	State   string `bson:"state,omitempty" json:"state,omitempty"`
	ZipCode string `bson:"zip_code,omitempty" json:"zip_code,omitempty"`
	Country string `bson:"country,omitempty" json:"country,omitempty"`
}

// User is the principal for every authenticated request. The password field
// holds the bcrypt hash and is never serialized to JSON. IsActive=false
// blocks all authenticated access regardless of token validity.
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Name     string `bson:"name" json:"name"`
	Email    string `bson:"email" json:"email"`
	Password string `bson:"password" json:"-"`

	ProfilePicture ProfilePicture `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
	Address        Address        `bson:"address,omitempty" json:"address,omitempty"`

	Role     Role `bson:"role" json:"role"`
	IsActive bool `bson:"is_active" json:"is_active"`

	Preferences    Preferences           `bson:"preferences" json:"preferences"`
	ReadingHistory []ReadingHistoryEntry `bson:"reading_history,omitempty" json:"reading_history,omitempty"`
	Favorites      []primitive.ObjectID  `bson:"favorites,omitempty" json:"favorites,omitempty"`
	Bookmarks      []Bookmark            `bson:"bookmarks,omitempty" json:"bookmarks,omitempty"`
}

// IsModerator reports whether the user can act as a moderator (admins can).
func (u *User) IsModerator() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
