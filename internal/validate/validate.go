// Package validate checks entity shapes before they are persisted or
// returned. Every validator collects all violations, not just the first,
// and reports them as a single ValidationError.
package validate

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"shortlink/internal/apperror"
	"shortlink/internal/types"
)

const (
	PasswordMinLen = 8
	PasswordMaxLen = 64
	AliasMinLen    = 3
	AliasMaxLen    = 32
	ExpiryDaysMin  = 1
	ExpiryDaysMax  = 365
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	aliasRe = regexp.MustCompile(`^[a-zA-Z0-9_\-]+$`)
)

type violations []apperror.FieldError

func (v *violations) add(path, message string) {
	*v = append(*v, apperror.FieldError{Path: path, Message: message})
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return apperror.Validation(v)
}

// Email reports whether s looks like a deliverable address.
func Email(s string) bool {
	return emailRe.MatchString(s)
}

// URL reports whether s is an absolute http(s) URL with a host.
func URL(s string) bool {
	u, err := url.ParseRequestURI(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// Password enforces the complexity policy: 8-64 characters with at least
// one letter, one digit and one symbol.
func Password(s string) bool {
	if len(s) < PasswordMinLen || len(s) > PasswordMaxLen {
		return false
	}
	var letter, digit, symbol bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	return letter && digit && symbol
}

// Credentials validates a signup or login request.
func Credentials(c types.Credentials) error {
	var v violations
	if !Email(c.Email) {
		v.add("email", "invalid email format")
	}
	if !Password(c.Password) {
		v.add("password", "password must be 8-64 characters and include a letter, a digit and a symbol")
	}
	if strings.TrimSpace(c.FirstName) == "" {
		v.add("first_name", "first name is required")
	}
	if strings.TrimSpace(c.LastName) == "" {
		v.add("last_name", "last name is required")
	}
	return v.err()
}

// Profile validates a profile update.
func Profile(p types.ProfileUpdate) error {
	var v violations
	if strings.TrimSpace(p.FirstName) == "" {
		v.add("first_name", "first name is required")
	}
	if strings.TrimSpace(p.LastName) == "" {
		v.add("last_name", "last name is required")
	}
	if p.ProfileImageURL != "" && !URL(p.ProfileImageURL) {
		v.add("profile_image_url", "invalid URL format")
	}
	return v.err()
}

// ShortenParams validates a shorten request. A zero ExpiryDays means
// "use the default" and is accepted.
func ShortenParams(p types.ShortenParams) error {
	var v violations
	if !URL(p.OriginalURL) {
		v.add("original_url", "invalid URL format")
	}
	if p.OwnerUserID == "" {
		v.add("owner_user_id", "owner user id is required")
	}
	if p.CustomAlias != "" {
		if len(p.CustomAlias) < AliasMinLen || len(p.CustomAlias) > AliasMaxLen {
			v.add("custom_alias", "alias must be 3-32 characters")
		} else if !aliasRe.MatchString(p.CustomAlias) {
			v.add("custom_alias", "alias may only contain letters, digits, '-' and '_'")
		}
	}
	if p.ExpiryDays != 0 && (p.ExpiryDays < ExpiryDaysMin || p.ExpiryDays > ExpiryDaysMax) {
		v.add("expiry_days", "expiry days must be between 1 and 365")
	}
	return v.err()
}

// User validates a full account record before it is written.
func User(u types.User) error {
	var v violations
	if u.ID == "" {
		v.add("id", "id is required")
	}
	if !Email(u.Email) {
		v.add("email", "invalid email format")
	}
	if u.PasswordDigest == "" {
		v.add("password_digest", "password digest is required")
	}
	if u.SubscriptionPlan != types.PlanFree && u.SubscriptionPlan != types.PlanPro {
		v.add("subscription_plan", "subscription plan must be Free or Pro")
	}
	if u.CreatedAt.IsZero() {
		v.add("created_at", "creation time is required")
	}
	return v.err()
}

// ShortURL validates a full short-link record before it is written.
func ShortURL(u types.ShortURL) error {
	var v violations
	if u.ID == "" {
		v.add("id", "id is required")
	}
	if u.ShortCode == "" {
		v.add("short_code", "short code is required")
	}
	if !URL(u.OriginalURL) {
		v.add("original_url", "invalid URL format")
	}
	if u.OwnerUserID == "" {
		v.add("owner_user_id", "owner user id is required")
	}
	if u.ClickCount < 0 {
		v.add("click_count", "click count cannot be negative")
	}
	if u.CreatedAt.IsZero() {
		v.add("created_at", "creation time is required")
	}
	return v.err()
}
