package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/acervohq/acervo-backend/pkg/enums"
)

// SessionTokenPayload captures the data available when minting a session JWT.
type SessionTokenPayload struct {
	UserID uuid.UUID
	Role   enums.Role
	JTI    string
}

// SessionTokenClaims represents the typed JWT carried inside the session cookie.
// The registered ID (jti) doubles as the Redis session key, so revoking the
// Redis entry kills the cookie even before the token expires.
type SessionTokenClaims struct {
	UserID uuid.UUID  `json:"user_id"`
	Role   enums.Role `json:"role"`
	jwt.RegisteredClaims
}
