package useragent

import (
	"strings"

	"github.com/jrsteele09/go-oauth-grants/sessions"
	"github.com/mssola/useragent"
)

// Device types
const (
	DeviceMobile  = "mobile"
	DeviceTablet  = "tablet"
	DeviceDesktop = ""
)

// Form factors. Unlike the device type, every recognised agent has one.
const (
	FormFactorPhone   = "phone"
	FormFactorTablet  = "tablet"
	FormFactorDesktop = "desktop"
)

// Parse extracts the device descriptors stored on session tokens from a
// User-Agent header. Unknown agents produce an empty result.
func Parse(header string) sessions.UserAgentInfo {
	header = strings.TrimSpace(header)
	if header == "" {
		return sessions.UserAgentInfo{}
	}
	ua := useragent.New(header)
	if ua.Bot() {
		return sessions.UserAgentInfo{}
	}

	info := sessions.UserAgentInfo{}
	info.Browser, info.BrowserVersion = ua.Browser()
	info.BrowserVersion = majorMinor(info.BrowserVersion)

	os := ua.OSInfo()
	info.OS = os.Name
	info.OSVersion = majorMinor(os.Version)

	switch {
	case isTablet(header):
		info.DeviceType = DeviceTablet
		info.FormFactor = FormFactorTablet
	case ua.Mobile():
		info.DeviceType = DeviceMobile
		info.FormFactor = FormFactorPhone
	default:
		info.DeviceType = DeviceDesktop
		info.FormFactor = FormFactorDesktop
	}
	return info
}

func isTablet(header string) bool {
	lower := strings.ToLower(header)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
		return true
	}
	return strings.Contains(lower, "android") && !strings.Contains(lower, "mobile")
}

func majorMinor(version string) string {
	parts := strings.SplitN(version, ".", 3)
	if len(parts) > 2 {
		parts = parts[:2]
	}
	return strings.Join(parts, ".")
}
