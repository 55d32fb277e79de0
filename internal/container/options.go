package container

import "fmt"

// Options are the service settings. Every flag can also be set through a
// SERVICE_* environment variable.
type Options struct {
	Port        int    `default:"8888"           help:"Port to listen on"                                         short:"p"`
	BaseURL     string `default:""               help:"Public base URL of short links (default http://localhost:<port>)"`
	CodeLength  int    `default:"7"              help:"Length of generated short codes"                           short:"c"`
	RedisAddr   string `default:"localhost:6379" help:"Redis server address; empty keeps the cache in memory"    short:"r"`
	DatabaseURL string `default:""               help:"Postgres connection string; empty keeps links in memory"  short:"d"`
	LogFormat   string `default:"console"        help:"Log format: console or json"`
	JWTSecret   string `default:""               help:"HS256 secret used to verify bearer tokens"`
	GeoIPPath   string `default:""               help:"Path to a GeoLite2 country database"`

	EarnPerClickCents       int  `default:"5"   help:"Cents credited per valid view of an owned link"`
	TokenTTLSeconds         int  `default:"180" help:"Lifetime of a redemption token in the cache"`
	RedemptionWindowSeconds int  `default:"120" help:"Maximum age of a token at redemption"`
	WaitSeconds             int  `default:"10"  help:"Interstitial wait before a token may be redeemed"`
	EnforceWait             bool `default:"true" help:"Reject redemptions made before the wait elapsed"`
	IssueLimit              int  `default:"3"   help:"Token issuances per client and link per minute"`
	RedeemLimit             int  `default:"3"   help:"Redemption attempts per client and link per minute"`
}

// PublicBaseURL returns the base URL used to build short links.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}
