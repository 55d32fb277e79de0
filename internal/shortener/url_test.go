package shortener_test

import (
	"testing"

	"github.com/serroba/paylink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"drops default http port", "http://example.com:80/a", "http://example.com/a"},
		{"drops default https port", "https://example.com:443/a", "https://example.com/a"},
		{"keeps other ports", "https://example.com:8443/a", "https://example.com:8443/a"},
		{"strips trailing slash", "https://example.com/a/", "https://example.com/a"},
		{"keeps root slash", "https://example.com/", "https://example.com/"},
		{"strips fragment", "https://example.com/a#top", "https://example.com/a"},
		{"keeps query", "https://example.com/a?b=1", "https://example.com/a?b=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := shortener.NormalizeURL(tt.input)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestValidateURL(t *testing.T) {
	t.Run("accepts and normalizes http urls", func(t *testing.T) {
		got, err := shortener.ValidateURL("  https://Example.com/a/  ")

		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", got)
	})

	for _, input := range []string{"", "example.com", "ftp://example.com", "https://", "javascript:alert(1)"} {
		t.Run("rejects "+input, func(t *testing.T) {
			_, err := shortener.ValidateURL(input)

			assert.ErrorIs(t, err, shortener.ErrValidation)
		})
	}
}

func TestValidateAlias(t *testing.T) {
	for _, ok := range []string{"abc", "my-link", "My_Link_2", "a234567890123456789012345678901b"} {
		assert.NoError(t, shortener.ValidateAlias(ok), ok)
	}

	for _, bad := range []string{"ab", "has space", "slash/y", "ünï", "a2345678901234567890123456789012x"} {
		assert.ErrorIs(t, shortener.ValidateAlias(bad), shortener.ErrInvalidAlias, bad)
	}
}
