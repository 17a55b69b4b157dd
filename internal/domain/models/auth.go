package models

import "github.com/golang-jwt/jwt/v5"

// Claims are the JWT claims the service cares about. Subject carries the
// user ID; Username is included for presence events.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Principal is the authenticated caller attached to a request or a
// realtime connection.
type Principal struct {
	UserID   string
	Username string
}
