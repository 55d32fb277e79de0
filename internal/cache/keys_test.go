package cache_test

import (
	"testing"

	"github.com/serroba/paylink/internal/cache"
	"github.com/stretchr/testify/assert"
)

func TestKeys(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{name: "link", got: cache.LinkKey("ABC123"), want: "link:ABC123"},
		{name: "token", got: cache.TokenKey("ABC123", "f00d"), want: "token:ABC123:f00d"},
		{name: "legacy token", got: cache.LegacyTokenKey("ABC123"), want: "token:ABC123"},
		{name: "alias check", got: cache.AliasCheckKey("promo"), want: "alias_check:promo"},
		{name: "rate", got: cache.RateKey("10.0.0.1", "ABC123"), want: "rate:10.0.0.1:ABC123"},
		{name: "redeem rate", got: cache.RedeemRateKey("10.0.0.1", "ABC123"), want: "rate:10.0.0.1:ABC123:redeem"},
		{name: "preview count", got: cache.PreviewCountKey("ABC123"), want: "preview:ABC123:count"},
		{name: "stats", got: cache.StatsKey(42), want: "stats:42"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got)
		})
	}
}
