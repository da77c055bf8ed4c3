// Package models defines the data types exchanged with the candidate portal
// API and cached locally.
package models

import "time"

// Track is the professional specialization a candidate registers under.
type Track string

const (
	TrackMedicine  Track = "medicine"
	TrackPharmacy  Track = "pharmacy"
	TrackDentistry Track = "dentistry"
)

// Valid reports whether t is one of the known tracks.
func (t Track) Valid() bool {
	switch t {
	case TrackMedicine, TrackPharmacy, TrackDentistry:
		return true
	}
	return false
}

// User is the candidate record as returned by the server. It is a display
// projection of server state: refreshed by profile fetches and never used
// for authorization decisions.
type User struct {
	ID            string    `json:"id"`
	GivenName     string    `json:"name"`
	FamilyName    string    `json:"surname"`
	Email         string    `json:"email"`
	Track         Track     `json:"track"`
	EmailVerified bool      `json:"emailVerified"`
	CreatedAt     time.Time `json:"createdAt"`
}

// FullName returns "GivenName FamilyName" for display.
func (u *User) FullName() string {
	if u.GivenName == "" {
		return u.FamilyName
	}
	if u.FamilyName == "" {
		return u.GivenName
	}
	return u.GivenName + " " + u.FamilyName
}
