package models

import "time"

// Alias maps a short slug to a full share token until ExpiresAt.
type Alias struct {
	Slug      string    `json:"slug"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// Active reports whether the alias may still be served at now.
func (a *Alias) Active(now time.Time) bool {
	return now.Before(a.ExpiresAt)
}
