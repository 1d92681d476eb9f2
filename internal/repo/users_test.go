package repo

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/apperror"
	"shortlink/internal/store"
	"shortlink/internal/store/mock"
	"shortlink/internal/types"
)

// fakeHasher keeps user tests fast; bcrypt itself is covered by
// TestBcryptHasher below.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "digest:" + password, nil }
func (fakeHasher) Verify(password, digest string) bool  { return digest == "digest:"+password }

func newTestRepo() (*Repo, *store.Memory) {
	mem := store.NewMemory()
	return New(mem, WithHasher(fakeHasher{})), mem
}

func validCreds() types.Credentials {
	return types.Credentials{
		Email:     "alice@example.com",
		Password:  "Passw0rd!",
		FirstName: "Alice",
		LastName:  "Smith",
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()

	t.Run("create then authenticate succeeds", func(t *testing.T) {
		r, _ := newTestRepo()
		created, err := r.CreateUser(ctx, validCreds())
		require.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, "alice@example.com", created.Email)
		assert.Equal(t, "Alice Smith", created.Name)
		assert.Equal(t, types.PlanFree, created.SubscriptionPlan)
		assert.Empty(t, created.PasswordDigest, "digest must not leave the repository")

		user, err := r.AuthenticateUser(ctx, "alice@example.com", "Passw0rd!")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
		assert.Empty(t, user.PasswordDigest)
	})

	t.Run("wrong password fails with InvalidCredentials", func(t *testing.T) {
		r, _ := newTestRepo()
		_, err := r.CreateUser(ctx, validCreds())
		require.NoError(t, err)

		_, err = r.AuthenticateUser(ctx, "alice@example.com", "WrongPass1!")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidCredentials))
	})

	t.Run("unknown email fails with UserNotFound", func(t *testing.T) {
		r, _ := newTestRepo()
		_, err := r.AuthenticateUser(ctx, "nobody@example.com", "Passw0rd!")
		assert.True(t, apperror.IsKind(err, apperror.KindUserNotFound))
	})

	t.Run("duplicate email fails and first record is unchanged", func(t *testing.T) {
		r, _ := newTestRepo()
		first, err := r.CreateUser(ctx, validCreds())
		require.NoError(t, err)

		dup := validCreds()
		dup.FirstName = "Impostor"
		_, err = r.CreateUser(ctx, dup)
		assert.True(t, apperror.IsKind(err, apperror.KindUserAlreadyExists))

		kept, err := r.FindUserByEmail(ctx, "alice@example.com")
		require.NoError(t, err)
		assert.Equal(t, first.ID, kept.ID)
		assert.Equal(t, "Alice", kept.FirstName)
	})

	t.Run("email uniqueness is case-insensitive", func(t *testing.T) {
		r, _ := newTestRepo()
		_, err := r.CreateUser(ctx, validCreds())
		require.NoError(t, err)

		dup := validCreds()
		dup.Email = "ALICE@Example.COM"
		_, err = r.CreateUser(ctx, dup)
		assert.True(t, apperror.IsKind(err, apperror.KindUserAlreadyExists))
	})

	t.Run("weak password creates no record", func(t *testing.T) {
		r, mem := newTestRepo()
		creds := validCreds()
		creds.Password = "short"
		_, err := r.CreateUser(ctx, creds)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))

		ids, err := mem.SMembers(ctx, usersSetKey)
		require.NoError(t, err)
		assert.Empty(t, ids, "failed signup must not register an id")
	})

	t.Run("pre-claimed email fails before writing a record", func(t *testing.T) {
		r, mem := newTestRepo()
		won, err := mem.SetNX(ctx, emailKey("alice@example.com"), []byte("other-id"))
		require.NoError(t, err)
		require.True(t, won)

		_, err = r.CreateUser(ctx, validCreds())
		assert.True(t, apperror.IsKind(err, apperror.KindUserAlreadyExists))

		keys, err := mem.KeysByPrefix(ctx, userKeyPrefix)
		require.NoError(t, err)
		assert.Empty(t, keys)
	})

	t.Run("losing the index claim deletes the orphan record", func(t *testing.T) {
		// The fast-path existence check misses, a concurrent create
		// claims the index in between, and our SetNX loses.
		ctrl := gomock.NewController(t)
		st := mock.NewMockStore(ctrl)

		st.EXPECT().Get(gomock.Any(), emailKey("alice@example.com")).Return(nil, store.ErrNotFound)
		st.EXPECT().Set(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)
		st.EXPECT().SetNX(gomock.Any(), emailKey("alice@example.com"), gomock.Any()).Return(false, nil)
		st.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil)

		r := New(st, WithHasher(fakeHasher{}))
		_, err := r.CreateUser(ctx, validCreds())
		assert.True(t, apperror.IsKind(err, apperror.KindUserAlreadyExists))
	})
}

func TestFindUserByEmail(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo()

	created, err := r.CreateUser(ctx, validCreds())
	require.NoError(t, err)

	found, err := r.FindUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	assert.Empty(t, found.PasswordDigest)

	_, err = r.FindUserByEmail(ctx, "missing@example.com")
	assert.True(t, apperror.IsKind(err, apperror.KindUserNotFound))
}

func TestUpdateProfileAndSettings(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo()

	created, err := r.CreateUser(ctx, validCreds())
	require.NoError(t, err)

	updated, err := r.UpdateProfile(ctx, created.ID, types.ProfileUpdate{
		FirstName: "Alicia",
		LastName:  "Smith",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alicia Smith", updated.Name)

	pro := types.PlanPro
	twoFactor := true
	updated, err = r.UpdateSettings(ctx, created.ID, types.SettingsUpdate{
		SubscriptionPlan: &pro,
		TwoFactorEnabled: &twoFactor,
	})
	require.NoError(t, err)
	assert.Equal(t, types.PlanPro, updated.SubscriptionPlan)
	assert.True(t, updated.TwoFactorEnabled)

	_, err = r.UpdateProfile(ctx, created.ID, types.ProfileUpdate{})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo()

	created, err := r.CreateUser(ctx, validCreds())
	require.NoError(t, err)

	t.Run("wrong current password", func(t *testing.T) {
		err := r.ChangePassword(ctx, created.ID, "WrongPass1!", "NewPassw0rd!")
		assert.True(t, apperror.IsKind(err, apperror.KindCurrentPasswordIncorrect))
	})

	t.Run("weak new password", func(t *testing.T) {
		err := r.ChangePassword(ctx, created.ID, "Passw0rd!", "weak")
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})

	t.Run("round trip", func(t *testing.T) {
		require.NoError(t, r.ChangePassword(ctx, created.ID, "Passw0rd!", "NewPassw0rd!"))

		_, err := r.AuthenticateUser(ctx, "alice@example.com", "Passw0rd!")
		assert.True(t, apperror.IsKind(err, apperror.KindInvalidCredentials))

		user, err := r.AuthenticateUser(ctx, "alice@example.com", "NewPassw0rd!")
		require.NoError(t, err)
		assert.Equal(t, created.ID, user.ID)
	})
}

func TestBcryptHasher(t *testing.T) {
	h := BcryptHasher{}
	digest, err := h.Hash("Passw0rd!")
	require.NoError(t, err)
	assert.NotEqual(t, "Passw0rd!", digest)
	assert.True(t, h.Verify("Passw0rd!", digest))
	assert.False(t, h.Verify("other", digest))
}
