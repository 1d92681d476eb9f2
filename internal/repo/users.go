package repo

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"shortlink/internal/apperror"
	"shortlink/internal/store"
	"shortlink/internal/types"
	"shortlink/internal/validate"
)

// CreateUser registers a new account. The record write precedes the index
// writes, so a half-completed create leaves an orphan record rather than a
// dangling index; the SetNX on the email index is the authoritative
// uniqueness claim.
func (r *Repo) CreateUser(ctx context.Context, creds types.Credentials) (types.User, error) {
	if err := validate.Credentials(creds); err != nil {
		return types.User{}, err
	}

	// Fast path only. Two concurrent creates can both miss here; the
	// conditional index write below settles the race.
	if _, err := r.findUserIDByEmail(ctx, creds.Email); err == nil {
		return types.User{}, apperror.New(apperror.KindUserAlreadyExists, "user already exists")
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, err
	}

	digest, err := r.hasher.Hash(creds.Password)
	if err != nil {
		return types.User{}, apperror.Internal(err)
	}

	user := types.User{
		ID:               uuid.NewString(),
		Email:            creds.Email,
		Name:             creds.FirstName + " " + creds.LastName,
		FirstName:        creds.FirstName,
		LastName:         creds.LastName,
		PasswordDigest:   digest,
		SubscriptionPlan: types.PlanFree,
		CreatedAt:        r.now(),
		Notifications:    types.NotificationPrefs{Email: true},
		ProfileImageURL:  defaultProfileImage(creds.FirstName, creds.LastName),
	}
	if err := validate.User(user); err != nil {
		return types.User{}, err
	}

	if err := r.setJSON(ctx, userKey(user.ID), user); err != nil {
		return types.User{}, err
	}

	won, err := r.store.SetNX(ctx, emailKey(user.Email), []byte(user.ID))
	if err != nil {
		return types.User{}, apperror.StoreUnavailable(err)
	}
	if !won {
		// Lost the claim: drop the orphan record, best effort.
		_ = r.store.Delete(ctx, userKey(user.ID))
		return types.User{}, apperror.New(apperror.KindUserAlreadyExists, "user already exists")
	}

	if err := r.store.SAdd(ctx, usersSetKey, user.ID); err != nil {
		return types.User{}, apperror.StoreUnavailable(err)
	}

	return user.Sanitized(), nil
}

// FindUserByEmail resolves a user through the email index, never a scan.
// The digest is stripped from the result.
func (r *Repo) FindUserByEmail(ctx context.Context, email string) (types.User, error) {
	user, err := r.findUserByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	return user.Sanitized(), nil
}

func (r *Repo) findUserByEmail(ctx context.Context, email string) (types.User, error) {
	id, err := r.findUserIDByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperror.New(apperror.KindUserNotFound, "user not found")
		}
		return types.User{}, err
	}
	return r.getUser(ctx, id)
}

// GetUser fetches a user by id with the digest stripped.
func (r *Repo) GetUser(ctx context.Context, id string) (types.User, error) {
	user, err := r.getUser(ctx, id)
	if err != nil {
		return types.User{}, err
	}
	return user.Sanitized(), nil
}

// AuthenticateUser checks credentials and returns the account with the
// digest stripped. The digest never leaves the repository boundary.
func (r *Repo) AuthenticateUser(ctx context.Context, email, password string) (types.User, error) {
	user, err := r.findUserByEmail(ctx, email)
	if err != nil {
		return types.User{}, err
	}
	if !r.hasher.Verify(password, user.PasswordDigest) {
		return types.User{}, apperror.New(apperror.KindInvalidCredentials, "invalid credentials")
	}
	return user.Sanitized(), nil
}

// UpdateProfile rewrites the mutable profile fields.
func (r *Repo) UpdateProfile(ctx context.Context, userID string, upd types.ProfileUpdate) (types.User, error) {
	if err := validate.Profile(upd); err != nil {
		return types.User{}, err
	}
	user, err := r.getUser(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	user.FirstName = upd.FirstName
	user.LastName = upd.LastName
	user.Name = upd.FirstName + " " + upd.LastName
	if upd.ProfileImageURL != "" {
		user.ProfileImageURL = upd.ProfileImageURL
	}
	if err := validate.User(user); err != nil {
		return types.User{}, err
	}
	if err := r.setJSON(ctx, userKey(user.ID), user); err != nil {
		return types.User{}, err
	}
	return user.Sanitized(), nil
}

// UpdateSettings applies the non-nil settings fields.
func (r *Repo) UpdateSettings(ctx context.Context, userID string, upd types.SettingsUpdate) (types.User, error) {
	user, err := r.getUser(ctx, userID)
	if err != nil {
		return types.User{}, err
	}
	if upd.Notifications != nil {
		user.Notifications = *upd.Notifications
	}
	if upd.TwoFactorEnabled != nil {
		user.TwoFactorEnabled = *upd.TwoFactorEnabled
	}
	if upd.SubscriptionPlan != nil {
		user.SubscriptionPlan = *upd.SubscriptionPlan
	}
	if err := validate.User(user); err != nil {
		return types.User{}, err
	}
	if err := r.setJSON(ctx, userKey(user.ID), user); err != nil {
		return types.User{}, err
	}
	return user.Sanitized(), nil
}

// ChangePassword verifies the current password before storing a new digest.
func (r *Repo) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := r.getUser(ctx, userID)
	if err != nil {
		return err
	}
	if !r.hasher.Verify(current, user.PasswordDigest) {
		return apperror.New(apperror.KindCurrentPasswordIncorrect, "current password is incorrect")
	}
	if !validate.Password(next) {
		return apperror.Validation([]apperror.FieldError{{
			Path:    "password",
			Message: "password must be 8-64 characters and include a letter, a digit and a symbol",
		}})
	}
	digest, err := r.hasher.Hash(next)
	if err != nil {
		return apperror.Internal(err)
	}
	user.PasswordDigest = digest
	return r.setJSON(ctx, userKey(user.ID), user)
}

func (r *Repo) getUser(ctx context.Context, id string) (types.User, error) {
	var user types.User
	if err := r.getJSON(ctx, userKey(id), &user); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, apperror.New(apperror.KindUserNotFound, "user not found")
		}
		return types.User{}, err
	}
	return user, nil
}

func (r *Repo) findUserIDByEmail(ctx context.Context, email string) (string, error) {
	raw, err := r.store.Get(ctx, emailKey(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", err
		}
		return "", apperror.StoreUnavailable(err)
	}
	return string(raw), nil
}

func defaultProfileImage(firstName, lastName string) string {
	return fmt.Sprintf("https://ui-avatars.com/api/?name=%s+%s",
		url.QueryEscape(firstName), url.QueryEscape(lastName))
}
