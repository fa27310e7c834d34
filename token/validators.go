package token

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Opaque tokens are 32 random bytes, hex encoded.
const opaqueTokenLength = 64

func isOpaqueToken(raw string) bool {
	if len(raw) != opaqueTokenLength {
		return false
	}
	_, err := hex.DecodeString(raw)
	return err == nil
}

// IsJWT reports whether raw is structurally a JWT. The signature is not checked.
func IsJWT(raw string) bool {
	if strings.Count(raw, ".") != 2 {
		return false
	}
	_, _, err := jwt.NewParser().ParseUnverified(raw, jwt.MapClaims{})
	return err == nil
}

// IsAccessToken reports whether raw has the shape of an access token.
// Access tokens are either opaque or JWTs.
func IsAccessToken(raw string) bool {
	return isOpaqueToken(raw) || IsJWT(raw)
}

// IsRefreshToken reports whether raw has the shape of a refresh token.
func IsRefreshToken(raw string) bool {
	return isOpaqueToken(raw)
}

// ID returns the identifier stored for an opaque token: the hex SHA-256 of
// the token value. Stores never keep the token itself.
func ID(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
