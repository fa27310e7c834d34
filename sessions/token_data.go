package sessions

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/pkg/errors"
	"golang.org/x/crypto/hkdf"
)

const (
	tokenDataLength = 32
	sessionTokenKDF = "identity.mozilla.com/picl/v1/sessionToken"
)

// NewTokenData generates fresh session token data and its derived id.
func NewTokenData() (data string, id string, err error) {
	raw := make([]byte, tokenDataLength)
	if _, err := rand.Read(raw); err != nil {
		return "", "", errors.Wrap(err, "[NewTokenData] rand.Read")
	}
	data = hex.EncodeToString(raw)
	id, err = DeriveTokenID(data)
	if err != nil {
		return "", "", err
	}
	return data, id, nil
}

// DeriveTokenID derives the public token id from hex-encoded token data.
// The first half of the HKDF output is the id; the second half is reserved
// for request signing and never leaves the store.
func DeriveTokenID(data string) (string, error) {
	raw, err := hex.DecodeString(data)
	if err != nil {
		return "", errors.Wrap(err, "[DeriveTokenID] token data is not hex")
	}
	out := make([]byte, 2*tokenDataLength)
	if _, err := io.ReadFull(hkdf.New(sha256.New, raw, nil, []byte(sessionTokenKDF)), out); err != nil {
		return "", errors.Wrap(err, "[DeriveTokenID] hkdf")
	}
	return hex.EncodeToString(out[:tokenDataLength]), nil
}
