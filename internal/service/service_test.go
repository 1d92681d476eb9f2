package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shortlink/internal/analytics"
	"shortlink/internal/apperror"
	"shortlink/internal/repo"
	"shortlink/internal/store"
	"shortlink/internal/types"
)

type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) { return "digest:" + password, nil }
func (fakeHasher) Verify(password, digest string) bool  { return digest == "digest:"+password }

func newTestService(opts ...Option) *Service {
	mem := store.NewMemory()
	r := repo.New(mem, repo.WithHasher(fakeHasher{}))
	return New(r, analytics.NoGeo(), "https://sho.rt", opts...)
}

func TestSignupShortenClickScenario(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	// Signup and login.
	created, err := svc.CreateUser(ctx, types.Credentials{
		Email:     "alice@example.com",
		Password:  "Passw0rd!",
		FirstName: "Alice",
		LastName:  "Smith",
	})
	require.NoError(t, err)

	user, err := svc.Authenticate(ctx, "alice@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, types.PlanFree, user.SubscriptionPlan)

	// Shorten without an alias.
	rec, err := svc.Shorten(ctx, types.ShortenParams{
		OriginalURL: "https://example.com/very/long/path",
		OwnerUserID: user.ID,
	})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rec.ShortCode), 7)
	assert.LessOrEqual(t, len(rec.ShortCode), 8)
	assert.Equal(t, int64(0), rec.ClickCount)
	assert.Equal(t, "https://sho.rt/"+rec.ShortCode, svc.ShortLink(rec.ShortCode))

	// Three clicks: US, US, FR.
	for _, country := range []string{"US", "US", "FR"} {
		updated, err := svc.RecordClick(ctx, rec.ShortCode, types.ClickContext{
			IP:       "203.0.113.7",
			Country:  country,
			Referrer: "https://google.com",
		})
		require.NoError(t, err)
		assert.NotZero(t, updated.ClickCount)
	}

	summary, err := svc.GetAnalytics(ctx, rec.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalClicks)
	assert.Equal(t, map[string]int64{"US": 2, "FR": 1}, summary.ClicksByCountry)
	assert.Equal(t, map[string]int64{"https://google.com": 3}, summary.ClicksByReferrer)
	assert.Equal(t, int64(1), summary.UniqueVisitors)

	// Analytics are idempotent while no clicks arrive.
	again, err := svc.GetAnalytics(ctx, rec.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, summary, again)

	// The owner sees the link with its current count.
	urls, err := svc.ListForOwner(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, urls, 1)
	assert.Equal(t, int64(3), urls[0].ClickCount)
}

func TestRecordClickDerivesDeviceInfo(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	rec, err := svc.Shorten(ctx, types.ShortenParams{
		OriginalURL: "https://example.com/a",
		OwnerUserID: "owner-1",
	})
	require.NoError(t, err)

	_, err = svc.RecordClick(ctx, rec.ShortCode, types.ClickContext{
		UserAgent: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) Mobile Safari/604.1",
	})
	require.NoError(t, err)

	summary, err := svc.GetAnalytics(ctx, rec.ShortCode)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"mobile": 1}, summary.ClicksByDevice)
	assert.Equal(t, map[string]int64{"Safari": 1}, summary.ClicksByBrowser)
}

func TestResolveExpiredURL(t *testing.T) {
	ctx := context.Background()

	now := time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	mem := store.NewMemory()
	r := repo.New(mem, repo.WithHasher(fakeHasher{}), repo.WithClock(func() time.Time { return now }))
	svc := New(r, analytics.NoGeo(), "https://sho.rt", WithClock(func() time.Time { return now }))

	rec, err := svc.Shorten(ctx, types.ShortenParams{
		OriginalURL: "https://example.com/a",
		OwnerUserID: "owner-1",
		ExpiryDays:  1,
	})
	require.NoError(t, err)

	// Still valid just before expiry.
	_, err = svc.Resolve(ctx, rec.ShortCode)
	require.NoError(t, err)

	// Jump past expiry: resolve and click both behave as not found.
	later := now.Add(48 * time.Hour)
	svc2 := New(r, analytics.NoGeo(), "https://sho.rt", WithClock(func() time.Time { return later }))

	_, err = svc2.Resolve(ctx, rec.ShortCode)
	assert.True(t, apperror.IsKind(err, apperror.KindURLNotFound))

	_, err = svc2.RecordClick(ctx, rec.ShortCode, types.ClickContext{})
	assert.True(t, apperror.IsKind(err, apperror.KindURLNotFound))

	// History stays readable.
	_, err = svc2.GetAnalytics(ctx, rec.ShortCode)
	require.NoError(t, err)
}

func TestErrorsCrossTheBoundaryClassified(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	_, err := svc.Shorten(ctx, types.ShortenParams{OriginalURL: "nope", OwnerUserID: "o"})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidURL))

	_, err = svc.Shorten(ctx, types.ShortenParams{
		OriginalURL: "https://example.com/a",
		OwnerUserID: "o",
		ExpiryDays:  400,
	})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))

	_, err = svc.GetAnalytics(ctx, "missing")
	assert.True(t, apperror.IsKind(err, apperror.KindURLNotFound))

	_, err = svc.Authenticate(ctx, "nobody@example.com", "Passw0rd!")
	assert.True(t, apperror.IsKind(err, apperror.KindUserNotFound))
}

func TestExportAnalytics(t *testing.T) {
	ctx := context.Background()
	svc := newTestService()

	rec, err := svc.Shorten(ctx, types.ShortenParams{
		OriginalURL: "https://example.com/a",
		OwnerUserID: "owner-1",
		CustomAlias: "launch",
	})
	require.NoError(t, err)

	_, err = svc.RecordClick(ctx, rec.ShortCode, types.ClickContext{IP: "1.1.1.1", Country: "US"})
	require.NoError(t, err)

	t.Run("json", func(t *testing.T) {
		out, err := svc.ExportAnalytics(ctx, "launch", ExportJSON)
		require.NoError(t, err)

		var rows []URLExport
		require.NoError(t, json.Unmarshal(out, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "launch", rows[0].ShortCode)
		assert.Equal(t, int64(1), rows[0].Summary.TotalClicks)
	})

	t.Run("csv", func(t *testing.T) {
		out, err := svc.ExportOwnerAnalytics(ctx, "owner-1", ExportCSV)
		require.NoError(t, err)

		lines := strings.Split(strings.TrimSpace(string(out)), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "short_code,short_link,original_url,total_clicks,unique_visitors", lines[0])
		assert.True(t, strings.HasPrefix(lines[1], "launch,https://sho.rt/launch,"))
	})

	t.Run("unsupported format", func(t *testing.T) {
		_, err := svc.ExportAnalytics(ctx, "launch", ExportFormat("xlsx"))
		assert.True(t, apperror.IsKind(err, apperror.KindValidation))
	})
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"single address", "203.0.113.7", "203.0.113.7"},
		{"proxy chain", "203.0.113.7, 10.0.0.1, 10.0.0.2", "203.0.113.7"},
		{"chain with padding", " 203.0.113.7 ,10.0.0.1", "203.0.113.7"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, clientIP(tt.in))
		})
	}
}

func TestQRCode(t *testing.T) {
	svc := newTestService()
	png, err := svc.QRCode("launch", 128)
	require.NoError(t, err)
	// PNG magic bytes.
	require.Greater(t, len(png), 8)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, png[:4])
}
