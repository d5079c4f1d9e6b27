package jwt

import "github.com/golang-jwt/jwt"

// Payload defines the JWT claims binding a session to a user account.
type Payload struct {
	// StandardClaims embeds the standard JWT fields (Exp, Iat, Iss) required
	// for validity checks.
	jwt.StandardClaims `json:"standard_claims"`

	// UserID is the numeric account identifier the session is bound to.
	UserID int64 `json:"uid"`

	// Name is the display name at token issue time. Informational only; the
	// store remains the source of truth.
	Name string `json:"name"`

	// Avatar is the avatar storage key at token issue time.
	Avatar string `json:"avatar,omitempty"`
}
