package redemption_test

import (
	"testing"

	"github.com/serroba/paylink/internal/redemption"
	"github.com/stretchr/testify/assert"
)

func TestDevice(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (iPhone; CPU iPhone OS 17_0) Mobile/15E148", "Mobile"},
		{"Mozilla/5.0 (Linux; Android 13; Tablet)", "Tablet"},
		{"Mozilla/5.0 (X11; Linux x86_64)", "Desktop"},
		{"", "Desktop"},
	}

	for _, tt := range tests {
		t.Run(tt.want+" "+tt.ua, func(t *testing.T) {
			assert.Equal(t, tt.want, redemption.Device(tt.ua))
		})
	}
}

func TestBrowser(t *testing.T) {
	tests := []struct {
		ua   string
		want string
	}{
		{"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", "Chrome"},
		{"Mozilla/5.0 (X11; Linux x86_64; rv:121.0) Gecko/20100101 Firefox/121.0", "Firefox"},
		{"Mozilla/5.0 (Macintosh) AppleWebKit/605.1.15 Version/17.0 Safari/605.1.15", "Safari"},
		{"Mozilla/5.0 (Windows NT 10.0) Edge/18.19045", "Edge"},
		{"Mozilla/5.0 (Windows NT 6.1; Trident/7.0; rv:11.0) like Gecko", "Internet Explorer"},
		{"Mozilla/4.0 (compatible; MSIE 8.0)", "Internet Explorer"},
		{"curl/8.4.0", "Other"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, redemption.Browser(tt.ua))
		})
	}
}
