package auth

import "time"

// Config drives service token behavior.
type Config struct {
	Secret   string
	TokenTTL time.Duration
}

// Claims is the validated content of a service token.
type Claims struct {
	Subject   string    `json:"subject"`
	TokenID   string    `json:"tokenId"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// IssuedToken is a freshly signed token.
type IssuedToken struct {
	Token     string    `json:"token"`
	Subject   string    `json:"subject"`
	ExpiresAt time.Time `json:"expiresAt"`
}
