package types

import "time"

// SubscriptionPlan is the billing tier of a user account.
type SubscriptionPlan string

const (
	PlanFree SubscriptionPlan = "Free"
	PlanPro  SubscriptionPlan = "Pro"
)

// NotificationPrefs holds per-channel notification toggles.
type NotificationPrefs struct {
	Email     bool `json:"email"`
	SMS       bool `json:"sms"`
	Marketing bool `json:"marketing"`
}

// User is a stored account record. PasswordDigest never crosses the
// repository boundary: results are sanitized before being returned.
type User struct {
	ID               string            `json:"id"`
	Email            string            `json:"email"`
	Name             string            `json:"name"`
	FirstName        string            `json:"first_name"`
	LastName         string            `json:"last_name"`
	PasswordDigest   string            `json:"password_digest,omitempty"`
	SubscriptionPlan SubscriptionPlan  `json:"subscription_plan"`
	CreatedAt        time.Time         `json:"created_at"`
	Notifications    NotificationPrefs `json:"notifications"`
	TwoFactorEnabled bool              `json:"two_factor_enabled"`
	ProfileImageURL  string            `json:"profile_image_url,omitempty"`
}

// Sanitized returns a copy with the password digest stripped.
func (u User) Sanitized() User {
	u.PasswordDigest = ""
	return u
}

// Credentials are the inputs to signup and login.
type Credentials struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// ProfileUpdate carries the mutable profile fields.
type ProfileUpdate struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	ProfileImageURL string `json:"profile_image_url"`
}

// SettingsUpdate carries the mutable settings fields. Nil pointers mean
// "leave unchanged".
type SettingsUpdate struct {
	Notifications    *NotificationPrefs `json:"notifications,omitempty"`
	TwoFactorEnabled *bool              `json:"two_factor_enabled,omitempty"`
	SubscriptionPlan *SubscriptionPlan  `json:"subscription_plan,omitempty"`
}
