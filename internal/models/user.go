package models

import "time"

// User represents a reader and their cached plan score
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Name            string    `json:"name"`
	GroupName       string    `json:"groupName"`
	Avatar          string    `json:"avatar,omitempty"`
	Points          int       `json:"points"`
	ProgressPercent int       `json:"progressPercent"`
	OAuthProvider   string    `json:"oauthProvider,omitempty"`
	OAuthSubject    string    `json:"-"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ApplyScore copies derived score fields onto the user
func (u *User) ApplyScore(s Score) {
	u.Points = s.Points
	u.ProgressPercent = s.ProgressPercent
}

// ProfileUpdate is a partial profile edit; nil fields are left untouched
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	GroupName *string `json:"groupName,omitempty"`
	Avatar    *string `json:"avatar,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (p ProfileUpdate) IsEmpty() bool {
	return p.Name == nil && p.GroupName == nil && p.Avatar == nil
}

// Session represents an authenticated session
type Session struct {
	ID        string    `json:"id"`
	UserID    int64     `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Preferences holds the UI flags a reader can toggle
type Preferences struct {
	UserID               int64     `json:"-"`
	DarkMode             bool      `json:"darkMode"`
	NotificationsEnabled bool      `json:"notificationsEnabled"`
	LastReminderDate     string    `json:"-"`
	UpdatedAt            time.Time `json:"updatedAt"`
}
