package repo

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"shortlink/internal/apperror"
	"shortlink/internal/store"
	"shortlink/internal/types"
	"shortlink/internal/validate"
)

// URL-safe alphabet for generated codes. 64^7 keeps the collision
// probability low at any plausible scale.
const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789-_"

const (
	GeneratedCodeLength = 7
	DefaultExpiryDays   = 30

	maxCodeAttempts = 5
)

// CreateShortURL stores a new short link. The record write precedes the
// code-index claim; a rejected SetNX on the index is the authoritative
// "alias taken" signal and triggers best-effort cleanup of the record.
func (r *Repo) CreateShortURL(ctx context.Context, params types.ShortenParams) (types.ShortURL, error) {
	if err := validate.ShortenParams(params); err != nil {
		return types.ShortURL{}, err
	}

	expiryDays := params.ExpiryDays
	if expiryDays == 0 {
		expiryDays = DefaultExpiryDays
	}
	now := r.now()
	expiry := now.Add(time.Duration(expiryDays) * 24 * time.Hour)

	code := params.CustomAlias
	if code == "" {
		var err error
		code, err = generateCode(GeneratedCodeLength)
		if err != nil {
			return types.ShortURL{}, apperror.Internal(err)
		}
	}

	rec := types.ShortURL{
		ID:          uuid.NewString(),
		ShortCode:   code,
		OriginalURL: params.OriginalURL,
		OwnerUserID: params.OwnerUserID,
		CreatedAt:   now,
		ExpiryAt:    &expiry,
	}
	if err := validate.ShortURL(rec); err != nil {
		return types.ShortURL{}, err
	}
	if err := r.setJSON(ctx, urlKey(rec.ID), rec); err != nil {
		return types.ShortURL{}, err
	}

	for attempt := 0; ; attempt++ {
		won, err := r.store.SetNX(ctx, codeKey(rec.ShortCode), []byte(rec.ID))
		if err != nil {
			return types.ShortURL{}, apperror.StoreUnavailable(err)
		}
		if won {
			break
		}
		if params.CustomAlias != "" {
			_ = r.store.Delete(ctx, urlKey(rec.ID))
			return types.ShortURL{}, apperror.New(apperror.KindCustomAliasTaken, "custom alias is already taken")
		}
		if attempt+1 >= maxCodeAttempts {
			_ = r.store.Delete(ctx, urlKey(rec.ID))
			return types.ShortURL{}, apperror.New(apperror.KindShortCodeExhausted, "could not allocate a unique short code")
		}
		next, err := generateCode(GeneratedCodeLength)
		if err != nil {
			return types.ShortURL{}, apperror.Internal(err)
		}
		rec.ShortCode = next
		if err := r.setJSON(ctx, urlKey(rec.ID), rec); err != nil {
			return types.ShortURL{}, err
		}
	}

	if err := r.store.SAdd(ctx, ownerKey(rec.OwnerUserID), rec.ID); err != nil {
		return types.ShortURL{}, apperror.StoreUnavailable(err)
	}

	return rec, nil
}

// GetURL fetches a short link by id, merging in the atomic click counter.
func (r *Repo) GetURL(ctx context.Context, id string) (types.ShortURL, error) {
	var rec types.ShortURL
	if err := r.getJSON(ctx, urlKey(id), &rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ShortURL{}, apperror.New(apperror.KindURLNotFound, "url not found")
		}
		return types.ShortURL{}, err
	}
	count, err := r.clickCount(ctx, id)
	if err != nil {
		return types.ShortURL{}, err
	}
	if count > rec.ClickCount {
		rec.ClickCount = count
	}
	return rec, nil
}

// GetURLByCode resolves the code index, then the record.
func (r *Repo) GetURLByCode(ctx context.Context, code string) (types.ShortURL, error) {
	raw, err := r.store.Get(ctx, codeKey(code))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ShortURL{}, apperror.New(apperror.KindURLNotFound, "url not found")
		}
		return types.ShortURL{}, apperror.StoreUnavailable(err)
	}
	return r.GetURL(ctx, string(raw))
}

// AppendClick records one visit. The counter bump is atomic and doubles as
// the sequence for the click's log key, so concurrent clicks never collide
// and never lose updates; there is no read-modify-write of the record.
func (r *Repo) AppendClick(ctx context.Context, urlID string, detail types.ClickDetail) (types.ShortURL, error) {
	var rec types.ShortURL
	if err := r.getJSON(ctx, urlKey(urlID), &rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.ShortURL{}, apperror.New(apperror.KindURLNotFound, "url not found")
		}
		return types.ShortURL{}, err
	}

	seq, err := r.store.HIncrBy(ctx, statsKey(urlID), clicksField, 1)
	if err != nil {
		return types.ShortURL{}, apperror.StoreUnavailable(err)
	}
	if err := r.setJSON(ctx, clickKey(urlID, seq), detail); err != nil {
		return types.ShortURL{}, err
	}

	rec.ClickCount = seq
	return rec, nil
}

// ListClicks returns the full click log in insertion order. The store does
// not guarantee any enumeration order, so the zero-padded sequence keys are
// sorted here. Entries whose key exists but whose record is gone are
// skipped.
func (r *Repo) ListClicks(ctx context.Context, urlID string) ([]types.ClickDetail, error) {
	keys, err := r.store.KeysByPrefix(ctx, clickLogPrefix(urlID))
	if err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	sort.Strings(keys)
	details := make([]types.ClickDetail, 0, len(keys))
	for _, key := range keys {
		var d types.ClickDetail
		if err := r.getJSON(ctx, key, &d); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, err
		}
		details = append(details, d)
	}
	return details, nil
}

// ListURLsForOwner resolves the owner's id set and batch-fetches records.
// Dangling index entries are skipped rather than failing the whole call.
func (r *Repo) ListURLsForOwner(ctx context.Context, ownerID string) ([]types.ShortURL, error) {
	ids, err := r.store.SMembers(ctx, ownerKey(ownerID))
	if err != nil {
		return nil, apperror.StoreUnavailable(err)
	}
	urls := make([]types.ShortURL, 0, len(ids))
	for _, id := range ids {
		rec, err := r.GetURL(ctx, id)
		if err != nil {
			if apperror.IsKind(err, apperror.KindURLNotFound) {
				continue
			}
			return nil, err
		}
		urls = append(urls, rec)
	}
	return urls, nil
}

func (r *Repo) clickCount(ctx context.Context, urlID string) (int64, error) {
	stats, err := r.store.HGetAll(ctx, statsKey(urlID))
	if err != nil {
		return 0, apperror.StoreUnavailable(err)
	}
	raw, ok := stats[clicksField]
	if !ok {
		return 0, nil
	}
	count, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperror.Internal(err)
	}
	return count, nil
}

func generateCode(length int) (string, error) {
	max := big.NewInt(int64(len(codeAlphabet)))
	buf := make([]byte, length)
	for i := range buf {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		buf[i] = codeAlphabet[n.Int64()]
	}
	return string(buf), nil
}
