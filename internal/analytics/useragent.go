package analytics

import "strings"

// DeviceInfo is what can be read off a User-Agent header without a full
// parser: coarse device class, browser family and OS family.
type DeviceInfo struct {
	DeviceType string
	Browser    string
	OS         string
}

// ParseUserAgent classifies a raw User-Agent string. Unknown signals leave
// the corresponding field empty.
func ParseUserAgent(ua string) DeviceInfo {
	if ua == "" {
		return DeviceInfo{}
	}
	lower := strings.ToLower(ua)
	info := DeviceInfo{DeviceType: "desktop"}

	switch {
	case strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet"):
		info.DeviceType = "tablet"
	case strings.Contains(lower, "mobi") || strings.Contains(lower, "android") || strings.Contains(lower, "iphone"):
		info.DeviceType = "mobile"
	case strings.Contains(lower, "bot") || strings.Contains(lower, "crawler") || strings.Contains(lower, "spider"):
		info.DeviceType = "bot"
	}

	switch {
	case strings.Contains(lower, "edg/") || strings.Contains(lower, "edge"):
		info.Browser = "Edge"
	case strings.Contains(lower, "opr/") || strings.Contains(lower, "opera"):
		info.Browser = "Opera"
	case strings.Contains(lower, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(lower, "safari"):
		info.Browser = "Safari"
	case strings.Contains(lower, "firefox"):
		info.Browser = "Firefox"
	}

	switch {
	case strings.Contains(lower, "windows"):
		info.OS = "Windows"
	case strings.Contains(lower, "android"):
		info.OS = "Android"
	case strings.Contains(lower, "iphone") || strings.Contains(lower, "ipad") || strings.Contains(lower, "ios"):
		info.OS = "iOS"
	case strings.Contains(lower, "mac os"):
		info.OS = "macOS"
	case strings.Contains(lower, "linux"):
		info.OS = "Linux"
	}

	return info
}
