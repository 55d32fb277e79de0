package redemption

import "strings"

// Device classifies a user agent as Mobile, Tablet or Desktop.
func Device(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "mobile"):
		return "Mobile"
	case strings.Contains(ua, "tablet"):
		return "Tablet"
	default:
		return "Desktop"
	}
}

// Browser classifies a user agent by browser family. The first match wins,
// so Edge and most Android browsers report as Chrome.
func Browser(userAgent string) string {
	ua := strings.ToLower(userAgent)

	switch {
	case strings.Contains(ua, "chrome"):
		return "Chrome"
	case strings.Contains(ua, "firefox"):
		return "Firefox"
	case strings.Contains(ua, "safari"):
		return "Safari"
	case strings.Contains(ua, "edge"):
		return "Edge"
	case strings.Contains(ua, "msie"), strings.Contains(ua, "trident"):
		return "Internet Explorer"
	default:
		return "Other"
	}
}
