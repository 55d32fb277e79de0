package handlers

import "time"

// CreateLinkRequest is the request body for creating a short link.
type CreateLinkRequest struct {
	Body struct {
		OriginalURL string     `doc:"The URL to shorten"                  example:"https://example.com/very/long/path" json:"original_url"`
		Alias       string     `doc:"Custom short code"                   example:"my-link"                            json:"alias,omitempty"      required:"false"`
		Title       string     `doc:"Human readable title"                json:"title,omitempty"                       required:"false"`
		Password    string     `doc:"Password required to continue"       json:"password,omitempty"                    required:"false"`
		ExpiredAt   *time.Time `doc:"When the link stops redirecting"     json:"expired_at,omitempty"                  required:"false"`
	}
}

// CreateLinkResponse is the response for a successfully created link.
type CreateLinkResponse struct {
	Headers struct {
		Location string `doc:"The short URL location" header:"Location"`
	}
	Body struct {
		Code         string  `doc:"The short code"                    example:"abc1234"                       json:"code"`
		ShortURL     string  `doc:"The full short URL"                example:"http://localhost:8888/abc1234" json:"short_url"`
		EarnPerClick float64 `doc:"Amount credited per valid view"    example:"0.05"                          json:"earn_per_click"`
		IsGuest      bool    `doc:"Whether the link has no owner"     json:"is_guest"`
		UserID       *int64  `doc:"Owner of the link"                 json:"user_id"`
		Message      string  `doc:"Human readable outcome"            json:"message"`
	}
}

// CheckAliasRequest asks whether an alias is in use.
type CheckAliasRequest struct {
	Alias string `doc:"Alias to check" example:"my-link" path:"alias"`
}

// CheckAliasResponse reports alias availability.
type CheckAliasResponse struct {
	Body struct {
		Exists bool `doc:"Whether the alias is taken" json:"exists"`
	}
}

// ShowLinkRequest is the request for the interstitial page.
type ShowLinkRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
}

// ShowLinkResponse carries the redemption token and interstitial content.
type ShowLinkResponse struct {
	Body struct {
		Token            string   `doc:"Single-use redemption token"            json:"token"`
		WaitTime         int      `doc:"Seconds to wait before continuing"      example:"10"  json:"wait_time"`
		Ads              []string `doc:"Ads shown on the interstitial"          json:"ads"`
		PasswordRequired bool     `doc:"Whether continuing requires a password" json:"password_required"`
		Message          string   `doc:"Human readable instruction"             json:"message"`
	}
}

// ContinueLinkRequest redeems a token.
type ContinueLinkRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
	Body struct {
		Token    string `doc:"Token issued by the interstitial" json:"token"              required:"false"`
		Password string `doc:"Link password"                    json:"password,omitempty" required:"false"`
	}
}

// ContinueLinkResponse is the outcome of a successful redemption.
type ContinueLinkResponse struct {
	Body struct {
		OriginalURL string  `doc:"Destination URL"                       json:"original_url"`
		IsGuestLink bool    `doc:"Whether the link has no owner"         json:"is_guest_link"`
		Earned      float64 `doc:"Amount credited for this view"         json:"earned"`
		Message     string  `doc:"Human readable outcome"                json:"message"`
	}
}

// StatsRequest asks for the view aggregates of a link.
type StatsRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
}

// StatsResponse reports view aggregates.
type StatsResponse struct {
	Body struct {
		TotalViews  int64   `json:"total_views"`
		UniqueViews int64   `json:"unique_views"`
		ValidViews  int64   `json:"valid_views"`
		EarnedTotal float64 `json:"earned_total"`
	}
}

// UpdateLinkRequest holds owner edits. Omitted fields are left unchanged.
type UpdateLinkRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
	Body struct {
		OriginalURL *string    `json:"original_url,omitempty" required:"false"`
		Title       *string    `json:"title,omitempty"        required:"false"`
		Password    *string    `doc:"Empty string removes the password" json:"password,omitempty" required:"false"`
		ExpiredAt   *time.Time `json:"expired_at,omitempty"   required:"false"`
		ClearExpiry bool       `doc:"Removes the expiry" json:"clear_expiry,omitempty" required:"false"`
	}
}

// ModerateLinkRequest holds admin changes.
type ModerateLinkRequest struct {
	Code string `doc:"The short code" example:"abc1234" path:"code"`
	Body struct {
		Status       *string `doc:"active or disabled" json:"status,omitempty" required:"false"`
		AdminComment *string `json:"admin_comment,omitempty" required:"false"`
	}
}

// LinkBody is the public representation of a link.
type LinkBody struct {
	Code         string     `json:"code"`
	ShortURL     string     `json:"short_url"`
	OriginalURL  string     `json:"original_url"`
	Title        string     `json:"title"`
	HasPassword  bool       `json:"has_password"`
	ExpiredAt    *time.Time `json:"expired_at,omitempty"`
	Status       string     `json:"status"`
	AdminComment string     `json:"admin_comment,omitempty"`
	UserID       *int64     `json:"user_id"`
	EarnPerClick float64    `json:"earn_per_click"`
	TotalEarned  float64    `json:"total_earned"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// LinkResponse wraps a link representation.
type LinkResponse struct {
	Body LinkBody
}
