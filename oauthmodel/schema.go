package oauthmodel

import (
	"bytes"
	"encoding/json"
	"fmt"

	apperrors "github.com/jrsteele09/go-oauth-grants/internal/errors"
	"github.com/jrsteele09/go-oauth-grants/oauth2"
	"github.com/xeipuuv/gojsonschema"
)

// Shared property definitions. Unknown properties are rejected everywhere,
// which is also how "assertion" and "resource" are forbidden where they do
// not belong.
const (
	clientIDProp      = `{"type": "string", "pattern": "^[0-9a-fA-F]{16}$"}`
	clientSecretProp  = `{"type": "string", "pattern": "^[0-9a-fA-F]{64}$"}`
	hexTokenProp      = `{"type": "string", "pattern": "^[0-9a-fA-F]{64}$"}`
	scopeProp         = `{"type": "string", "maxLength": 256, "pattern": "^[a-zA-Z0-9 _/.:+-]+$"}`
	redirectURIProp   = `{"type": "string", "maxLength": 256, "format": "uri", "pattern": "^https?://"}`
	resourceProp      = `{"type": "string", "maxLength": 256, "format": "uri"}`
	jweProp           = `{"type": "string", "maxLength": 1024, "pattern": "^[A-Za-z0-9_-]+\\.[A-Za-z0-9_-]*\\.[A-Za-z0-9_-]+\\.[A-Za-z0-9_-]+\\.[A-Za-z0-9_-]+$"}`
	challengeProp     = `{"type": "string", "pattern": "^[A-Za-z0-9_-]{43}$"}`
	verifierProp      = `{"type": "string", "pattern": "^[A-Za-z0-9._~-]{43,128}$"}`
	ttlProp           = `{"type": "integer", "minimum": 1}`
	ppidSeedProp      = `{"type": "integer", "minimum": 0, "maximum": 1024}`
	accessTypeProp    = `{"type": "string", "enum": ["online", "offline"]}`
	challengeMethProp = `{"type": "string", "enum": ["S256"]}`
)

var authorizationSchema = mustCompile(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["client_id", "state"],
	"properties": {
		"response_type": {"type": "string", "enum": ["code"]},
		"client_id": ` + clientIDProp + `,
		"redirect_uri": ` + redirectURIProp + `,
		"scope": ` + scopeProp + `,
		"state": {"type": "string", "maxLength": 512},
		"access_type": ` + accessTypeProp + `,
		"code_challenge_method": ` + challengeMethProp + `,
		"code_challenge": ` + challengeProp + `,
		"keys_jwe": ` + jweProp + `,
		"acr_values": {"type": ["string", "null"], "maxLength": 256}
	},
	"dependencies": {
		"code_challenge": ["code_challenge_method"],
		"code_challenge_method": ["code_challenge"]
	}
}`)

var scopedKeyDataSchema = mustCompile(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["client_id", "scope"],
	"properties": {
		"client_id": ` + clientIDProp + `,
		"scope": ` + scopeProp + `
	}
}`)

var idTokenVerifySchema = mustCompile(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["client_id", "id_token"],
	"properties": {
		"client_id": {"type": "string", "minLength": 1},
		"id_token": {"type": "string", "minLength": 1},
		"expiry_grace_period": {"type": "integer", "minimum": 0}
	}
}`)

var revocationSchema = mustCompile(`{
	"type": "object",
	"additionalProperties": false,
	"required": ["token"],
	"properties": {
		"client_id": ` + clientIDProp + `,
		"client_secret": ` + clientSecretProp + `,
		"token": {"type": "string", "minLength": 1, "maxLength": 4096},
		"token_type_hint": {"type": "string", "maxLength": 64}
	}
}`)

var tokenSchemas = map[oauth2.GrantType]*compiledSchema{
	oauth2.AuthorizationCodeGrant: mustCompile(`{
		"type": "object",
		"additionalProperties": false,
		"required": ["client_id", "code"],
		"properties": {
			"grant_type": {"type": "string", "enum": ["authorization_code"]},
			"client_id": ` + clientIDProp + `,
			"client_secret": ` + clientSecretProp + `,
			"code": ` + hexTokenProp + `,
			"code_verifier": ` + verifierProp + `,
			"redirect_uri": ` + redirectURIProp + `,
			"ttl": ` + ttlProp + `,
			"ppid_seed": ` + ppidSeedProp + `,
			"resource": ` + resourceProp + `
		},
		"oneOf": [
			{"required": ["client_secret"]},
			{"required": ["code_verifier"]}
		]
	}`),
	oauth2.RefreshTokenGrant: mustCompile(`{
		"type": "object",
		"additionalProperties": false,
		"required": ["grant_type", "client_id", "refresh_token"],
		"properties": {
			"grant_type": {"type": "string", "enum": ["refresh_token"]},
			"client_id": ` + clientIDProp + `,
			"client_secret": ` + clientSecretProp + `,
			"refresh_token": ` + hexTokenProp + `,
			"scope": ` + scopeProp + `,
			"ttl": ` + ttlProp + `,
			"ppid_seed": ` + ppidSeedProp + `,
			"resource": ` + resourceProp + `
		}
	}`),
	oauth2.CredentialsGrant: mustCompile(`{
		"type": "object",
		"additionalProperties": false,
		"required": ["client_id"],
		"properties": {
			"grant_type": {"type": "string", "enum": ["fxa-credentials"]},
			"client_id": ` + clientIDProp + `,
			"scope": ` + scopeProp + `,
			"access_type": ` + accessTypeProp + `,
			"ttl": ` + ttlProp + `,
			"resource": ` + resourceProp + `
		}
	}`),
}

type compiledSchema struct {
	schema *gojsonschema.Schema
}

func mustCompile(src string) *compiledSchema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("oauthmodel: invalid schema: %v", err))
	}
	return &compiledSchema{schema: s}
}

func validate(s *compiledSchema, doc map[string]any) error {
	result, err := s.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return invalidParameter(err.Error())
	}
	if result.Valid() {
		return nil
	}
	reasons := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		reasons = append(reasons, e.String())
	}
	return invalidParameter(reasons...)
}

func decodeObject(body []byte) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, invalidParameter("body must be a JSON object")
	}
	if doc == nil {
		return nil, invalidParameter("body must be a JSON object")
	}
	return doc, nil
}

func invalidParameter(reasons ...string) error {
	return apperrors.InvalidParameter(reasons...)
}
