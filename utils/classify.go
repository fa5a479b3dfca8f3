package utils

import (
	"strings"

	"visitcounter/api/models"
)

const unknown = "Unknown"

// Classify derives a best-effort OS/browser/device triple from a raw
// User-Agent header by substring matching. Anything unmatched comes back
// as "Unknown"; a malformed or empty header is never an error.
func Classify(userAgent string) models.VisitorInfo {
	ua := strings.ToLower(userAgent)

	info := models.VisitorInfo{OS: unknown, Browser: unknown, Device: unknown}

	switch {
	case strings.Contains(ua, "windows"):
		info.OS = "Windows"
	case strings.Contains(ua, "android"):
		info.OS = "Android"
	case strings.Contains(ua, "iphone"), strings.Contains(ua, "ipad"), strings.Contains(ua, "ios"):
		info.OS = "iOS"
	case strings.Contains(ua, "mac os"), strings.Contains(ua, "macintosh"):
		info.OS = "macOS"
	case strings.Contains(ua, "linux"):
		info.OS = "Linux"
	}

	// Order matters: Edge and Opera embed "chrome", Chrome embeds "safari".
	switch {
	case strings.Contains(ua, "edg"):
		info.Browser = "Edge"
	case strings.Contains(ua, "opr"), strings.Contains(ua, "opera"):
		info.Browser = "Opera"
	case strings.Contains(ua, "firefox"):
		info.Browser = "Firefox"
	case strings.Contains(ua, "chrome"):
		info.Browser = "Chrome"
	case strings.Contains(ua, "safari"):
		info.Browser = "Safari"
	}

	switch {
	case strings.Contains(ua, "mobile"), strings.Contains(ua, "iphone"), strings.Contains(ua, "android"):
		info.Device = "Mobile"
	case strings.Contains(ua, "ipad"), strings.Contains(ua, "tablet"):
		info.Device = "Tablet"
	case info.OS == "Windows" || info.OS == "macOS" || info.OS == "Linux":
		info.Device = "Desktop"
	}

	return info
}
