package types

import "time"

// ShortURL is a stored short-link record. ShortCode is globally unique and
// immutable after creation; ClickCount is maintained by an atomic counter in
// the store and reconciled with the click log at read time.
type ShortURL struct {
	ID          string     `json:"id"`
	ShortCode   string     `json:"short_code"`
	OriginalURL string     `json:"original_url"`
	OwnerUserID string     `json:"owner_user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiryAt    *time.Time `json:"expiry_at,omitempty"`
	ClickCount  int64      `json:"click_count"`
}

// IsExpired reports whether the link has passed its expiry. Expiry is lazy:
// expired records stay in the store and are rejected on resolve.
func (u *ShortURL) IsExpired(now time.Time) bool {
	return u.ExpiryAt != nil && now.After(*u.ExpiryAt)
}

// ShortenParams are the inputs to a shorten request.
type ShortenParams struct {
	OriginalURL string `json:"original_url"`
	OwnerUserID string `json:"owner_user_id"`
	CustomAlias string `json:"custom_alias,omitempty"`
	ExpiryDays  int    `json:"expiry_days,omitempty"`
}
