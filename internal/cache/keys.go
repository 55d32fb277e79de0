package cache

import "fmt"

// Key formats are read by the external reconciliation job; keep them stable.

// LinkKey holds a link snapshot.
func LinkKey(code string) string {
	return "link:" + code
}

// TokenKey holds the redemption token issued to one client fingerprint.
func TokenKey(code, fingerprint string) string {
	return fmt.Sprintf("token:%s:%s", code, fingerprint)
}

// LegacyTokenKey holds a redemption token not scoped to a client.
func LegacyTokenKey(code string) string {
	return "token:" + code
}

// AliasCheckKey memoizes an alias availability answer.
func AliasCheckKey(alias string) string {
	return "alias_check:" + alias
}

// RateKey counts token issuances for a client and link.
func RateKey(ip, code string) string {
	return fmt.Sprintf("rate:%s:%s", ip, code)
}

// RedeemRateKey counts redemption attempts for a client and link.
func RedeemRateKey(ip, code string) string {
	return RateKey(ip, code) + ":redeem"
}

// PreviewCountKey counts interstitial views of a link.
func PreviewCountKey(code string) string {
	return fmt.Sprintf("preview:%s:count", code)
}

// StatsKey memoizes a link stats report.
func StatsKey(linkID int64) string {
	return fmt.Sprintf("stats:%d", linkID)
}
