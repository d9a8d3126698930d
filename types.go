package goToken

import (
	"time"

	"github.com/MrEthical07/goToken/principal"
)

// TokenTypeBearer is the only token type the Engine hands out.
const TokenTypeBearer = "Bearer"

// TokenPair is returned by [Engine.Login] and [Engine.Refresh].
type TokenPair struct {
	TokenType    string `json:"tokenType"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	// ExpiresIn is the access token lifetime in seconds.
	ExpiresIn int64 `json:"expiresIn"`

	AccessExpiresAt  time.Time `json:"-"`
	RefreshExpiresAt time.Time `json:"-"`
}

// Identity is the verified caller behind an access token.
type Identity struct {
	Subject string
	// Role is zero when the token carries a role this service does not know.
	Role      principal.Role
	ExpiresAt time.Time
}

// HasRole reports whether the identity holds one of roles.
func (id *Identity) HasRole(roles ...principal.Role) bool {
	if id == nil {
		return false
	}
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}
