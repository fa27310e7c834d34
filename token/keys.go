package token

import (
	"crypto"
	"encoding/json"

	"github.com/go-jose/go-jose/v4"
	"github.com/pkg/errors"
)

// RS256 is the only algorithm ID tokens are signed with.
const RS256 = "RS256"

// ParsePublicKeys extracts the public keys from a JSON Web Key Set document.
// Private key material in the set is reduced to its public half.
func ParsePublicKeys(jwks []byte) ([]crypto.PublicKey, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(jwks, &set); err != nil {
		return nil, errors.Wrap(err, "[ParsePublicKeys] invalid JWKS")
	}
	keys := make([]crypto.PublicKey, 0, len(set.Keys))
	for _, k := range set.Keys {
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		pub := k.Public()
		if !pub.Valid() {
			continue
		}
		keys = append(keys, pub.Key)
	}
	if len(keys) == 0 {
		return nil, errors.New("[ParsePublicKeys] no usable signing keys")
	}
	return keys, nil
}
