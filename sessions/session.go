package sessions

import (
	"time"
)

// UserAgentInfo describes the device a session token is used from.
type UserAgentInfo struct {
	Browser        string `json:"uaBrowser,omitempty"`
	BrowserVersion string `json:"uaBrowserVersion,omitempty"`
	OS             string `json:"uaOS,omitempty"`
	OSVersion      string `json:"uaOSVersion,omitempty"`
	DeviceType     string `json:"uaDeviceType,omitempty"`
	FormFactor     string `json:"uaFormFactor,omitempty"`
}

// TokenState is the persisted state of a session token that can be carried
// over to a new token.
type TokenState struct {
	UID                string        `json:"uid"`
	Email              string        `json:"email"`
	EmailVerified      bool          `json:"emailVerified"`
	TokenVerified      bool          `json:"tokenVerified"`
	MustVerify         bool          `json:"mustVerify"`
	VerificationMethod string        `json:"verificationMethod,omitempty"`
	Locale             string        `json:"locale,omitempty"`
	AuthAt             time.Time     `json:"authAt"`
	VerifierSetAt      time.Time     `json:"verifierSetAt"`
	UserAgent          UserAgentInfo `json:"userAgent"`
}

// WithUserAgent returns a copy of the state with the device descriptors replaced.
func (ts TokenState) WithUserAgent(ua UserAgentInfo) TokenState {
	ts.UserAgent = ua
	return ts
}

// SessionToken is an authenticated user session, independent of OAuth.
type SessionToken struct {
	TokenState

	// ID is derived from Data and is what other records refer to.
	ID string `json:"id"`
	// Data is the opaque token secret handed to the client. It is never logged.
	Data      string    `json:"data"`
	DeviceID  string    `json:"deviceId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// CopyTokenState returns the state needed to create a sibling token.
// Identity fields (ID, Data, DeviceID, CreatedAt) are not part of it.
func (s *SessionToken) CopyTokenState() TokenState {
	return s.TokenState
}

// Account is the subset of the account record used when granting tokens.
type Account struct {
	UID             string    `json:"uid"`
	Email           string    `json:"email"`
	Locale          string    `json:"locale,omitempty"`
	EcosystemAnonID string    `json:"ecosystemAnonId,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}
