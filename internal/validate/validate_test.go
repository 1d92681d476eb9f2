package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/apperror"
	"shortlink/internal/types"
)

func TestPassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		ok       bool
	}{
		{"valid", "Passw0rd!", true},
		{"too short", "P0rd!", false},
		{"no digit", "Password!", false},
		{"no symbol", "Passw0rdd", false},
		{"no letter", "12345678!", false},
		{"too long", "Aa1!" + strings.Repeat("a", 70), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, Password(tt.password))
		})
	}
}

func TestEmailAndURL(t *testing.T) {
	assert.True(t, Email("alice@example.com"))
	assert.False(t, Email("alice"))
	assert.False(t, Email("alice@"))

	assert.True(t, URL("https://example.com/very/long/path"))
	assert.True(t, URL("http://example.com"))
	assert.False(t, URL("example.com"))
	assert.False(t, URL("ftp://example.com"))
	assert.False(t, URL("https://"))
}

func TestCredentialsCollectsAllViolations(t *testing.T) {
	err := Credentials(types.Credentials{Email: "bad", Password: "short"})
	require.Error(t, err)

	var appErr *apperror.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.True(t, appErr.Operational)

	paths := make([]string, 0, len(appErr.Fields))
	for _, f := range appErr.Fields {
		paths = append(paths, f.Path)
	}
	assert.ElementsMatch(t, []string{"email", "password", "first_name", "last_name"}, paths)
}

func TestShortenParams(t *testing.T) {
	valid := types.ShortenParams{
		OriginalURL: "https://example.com/page",
		OwnerUserID: "owner-1",
	}
	assert.NoError(t, ShortenParams(valid))

	t.Run("expiry days out of bounds", func(t *testing.T) {
		p := valid
		p.ExpiryDays = 366
		err := ShortenParams(p)
		require.Error(t, err)
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))

		p.ExpiryDays = -1
		assert.Error(t, ShortenParams(p))

		p.ExpiryDays = 365
		assert.NoError(t, ShortenParams(p))
	})

	t.Run("alias charset and length", func(t *testing.T) {
		p := valid
		p.CustomAlias = "my-link_1"
		assert.NoError(t, ShortenParams(p))

		p.CustomAlias = "no"
		assert.Error(t, ShortenParams(p))

		p.CustomAlias = "bad alias!"
		assert.Error(t, ShortenParams(p))
	})

	t.Run("invalid url", func(t *testing.T) {
		p := valid
		p.OriginalURL = "not-a-url"
		assert.Error(t, ShortenParams(p))
	})
}
