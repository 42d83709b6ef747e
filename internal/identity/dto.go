package identity

import "time"

// Location is a best-effort geolocation fix attached to a session.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"`
}

// Credential is the persisted record created at registration. Records are
// never deleted; login mutates lastLoginAt and device in place.
type Credential struct {
	UserID              string     `json:"userId"`
	Username            string     `json:"username"`
	EncodedSecret       string     `json:"encodedSecret"`
	BiometricRegistered bool       `json:"biometricRegistered"`
	Device              string     `json:"device"`
	CreatedAt           time.Time  `json:"createdAt"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	Location            *Location  `json:"location,omitempty"`
}

// Session is the single current-session slot. A successful login overwrites
// it; logout destroys it.
type Session struct {
	UserID      string     `json:"userId"`
	Username    string     `json:"username"`
	Device      string     `json:"device"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
	Location    *Location  `json:"location,omitempty"`
}

// UserSummary is the admin-panel view of a credential record.
type UserSummary struct {
	UserID              string     `json:"user_id"`
	Username            string     `json:"username"`
	Device              string     `json:"device"`
	BiometricRegistered bool       `json:"biometric_registered"`
	CreatedAt           time.Time  `json:"created_at"`
	LastLoginAt         *time.Time `json:"last_login_at,omitempty"`
	Location            *Location  `json:"location,omitempty"`
}

// RegisterRequest captures the fields sent to the register endpoint.
type RegisterRequest struct {
	Username     string `json:"username" validate:"required,min=1,max=64"`
	Secret       string `json:"secret" validate:"required,min=1"`
	UseBiometric bool   `json:"use_biometric"`
	Device       string `json:"device"`
}

// LoginRequest captures the fields sent to the login endpoint. Secret may be
// empty when the biometric path is used.
type LoginRequest struct {
	Username     string `json:"username" validate:"required"`
	Secret       string `json:"secret"`
	UseBiometric bool   `json:"use_biometric"`
	Device       string `json:"device"`
}
