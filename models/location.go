package models

import "time"

// LocationSample is a single client-reported GPS fix. Samples are ephemeral;
// only the last *accepted* one per user is persisted (see UserLocation).
type LocationSample struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ObservedAt time.Time `json:"observed_at"`
}

// UserLocation is the movement-validation baseline: the last sample that
// passed validation for this user. Rejected samples never advance it.
type UserLocation struct {
	UserID     string    `gorm:"primaryKey;type:uuid" json:"user_id"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	ObservedAt time.Time `json:"observed_at"`

	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}
