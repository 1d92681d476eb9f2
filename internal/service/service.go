// Package service is the single entry point for the web layer. It applies
// cross-cutting policy (default expiry, link composition, lazy expiry on
// resolve) and maps every failure into the apperror taxonomy before it
// crosses the boundary.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"shortlink/internal/analytics"
	"shortlink/internal/apperror"
	"shortlink/internal/repo"
	"shortlink/internal/types"
	"shortlink/internal/validate"
)

type Service struct {
	repo    *repo.Repo
	geo     *analytics.Geo
	baseURL string
	now     func() time.Time
}

type Option func(*Service)

// WithClock swaps the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(r *repo.Repo, geo *analytics.Geo, baseURL string, opts ...Option) *Service {
	s := &Service{
		repo:    r,
		geo:     geo,
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateUser registers an account from signup credentials.
func (s *Service) CreateUser(ctx context.Context, creds types.Credentials) (types.User, error) {
	user, err := s.repo.CreateUser(ctx, creds)
	if err != nil {
		return types.User{}, s.fail(err)
	}
	return user, nil
}

// Authenticate checks credentials for the session provider.
func (s *Service) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.AuthenticateUser(ctx, email, password)
	if err != nil {
		return types.User{}, s.fail(err)
	}
	return user, nil
}

// UpdateProfile, UpdateSettings and ChangePassword expose the account
// mutations the dashboard needs.
func (s *Service) UpdateProfile(ctx context.Context, userID string, upd types.ProfileUpdate) (types.User, error) {
	user, err := s.repo.UpdateProfile(ctx, userID, upd)
	if err != nil {
		return types.User{}, s.fail(err)
	}
	return user, nil
}

func (s *Service) UpdateSettings(ctx context.Context, userID string, upd types.SettingsUpdate) (types.User, error) {
	user, err := s.repo.UpdateSettings(ctx, userID, upd)
	if err != nil {
		return types.User{}, s.fail(err)
	}
	return user, nil
}

func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	return s.fail(s.repo.ChangePassword(ctx, userID, current, next))
}

// Shorten creates a short link for an owner. A malformed destination is
// reported as InvalidUrl; everything else about the params surfaces as a
// field-level validation failure from the repository.
func (s *Service) Shorten(ctx context.Context, params types.ShortenParams) (types.ShortURL, error) {
	if !validate.URL(params.OriginalURL) {
		return types.ShortURL{}, s.fail(apperror.New(apperror.KindInvalidURL, "invalid URL format"))
	}
	rec, err := s.repo.CreateShortURL(ctx, params)
	if err != nil {
		return types.ShortURL{}, s.fail(err)
	}
	return rec, nil
}

// ShortLink composes the public URL for a code.
func (s *Service) ShortLink(code string) string {
	return s.baseURL + "/" + code
}

// Resolve looks a short code up for redirecting. Expiry is lazy: an
// expired link behaves as if it does not exist.
func (s *Service) Resolve(ctx context.Context, shortCode string) (types.ShortURL, error) {
	rec, err := s.repo.GetURLByCode(ctx, shortCode)
	if err != nil {
		return types.ShortURL{}, s.fail(err)
	}
	if rec.IsExpired(s.now()) {
		return types.ShortURL{}, apperror.New(apperror.KindURLNotFound, "url has expired")
	}
	return rec, nil
}

// RecordClick enriches the raw click context (geo from IP, device family
// from the user agent) and appends it to the URL's click log.
func (s *Service) RecordClick(ctx context.Context, shortCode string, click types.ClickContext) (types.ShortURL, error) {
	rec, err := s.Resolve(ctx, shortCode)
	if err != nil {
		return types.ShortURL{}, err
	}

	country, city := click.Country, click.City
	if country == "" && city == "" {
		country, city = s.geo.Locate(click.IP)
	}
	device := analytics.ParseUserAgent(click.UserAgent)

	detail := types.ClickDetail{
		Timestamp:  s.now(),
		IPAddress:  click.IP,
		Country:    country,
		City:       city,
		Referrer:   click.Referrer,
		DeviceType: device.DeviceType,
		Browser:    device.Browser,
		OS:         device.OS,
	}

	updated, err := s.repo.AppendClick(ctx, rec.ID, detail)
	if err != nil {
		return types.ShortURL{}, s.fail(err)
	}
	return updated, nil
}

// GetAnalytics summarizes the click log of a short code. Expired links
// still report their history.
func (s *Service) GetAnalytics(ctx context.Context, shortCode string) (types.AnalyticsSummary, error) {
	rec, err := s.repo.GetURLByCode(ctx, shortCode)
	if err != nil {
		return types.AnalyticsSummary{}, s.fail(err)
	}
	details, err := s.repo.ListClicks(ctx, rec.ID)
	if err != nil {
		return types.AnalyticsSummary{}, s.fail(err)
	}
	return analytics.Summarize(rec, details), nil
}

// ListForOwner returns every short link owned by a user.
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]types.ShortURL, error) {
	urls, err := s.repo.ListURLsForOwner(ctx, ownerID)
	if err != nil {
		return nil, s.fail(err)
	}
	return urls, nil
}

// fail applies the propagation policy: operational errors pass through
// unchanged, anything else is wrapped as Internal. Every error is logged
// with its kind before crossing the boundary.
func (s *Service) fail(err error) error {
	if err == nil {
		return nil
	}
	var appErr *apperror.Error
	if !errors.As(err, &appErr) {
		appErr = apperror.Internal(err)
	}
	apperror.Log(appErr)
	return appErr
}
