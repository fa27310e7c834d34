package auth

import (
	"github.com/jrsteele09/go-oauth-grants/geo"
	"github.com/jrsteele09/go-oauth-grants/sessions"
)

// RequestContext is what the transport knows about the calling device.
type RequestContext struct {
	// UserAgent is the parsed User-Agent header.
	UserAgent sessions.UserAgentInfo
	// UserAgentString is the raw User-Agent header.
	UserAgentString string
	Location        geo.Location
}
