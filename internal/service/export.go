package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"sort"
	"strconv"

	"shortlink/internal/analytics"
	"shortlink/internal/apperror"
	"shortlink/internal/types"
)

// ExportFormat selects the serialization of an analytics export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportJSON ExportFormat = "json"
)

// URLExport is one exported row: a short link plus its summary.
type URLExport struct {
	ShortCode   string                 `json:"short_code"`
	ShortLink   string                 `json:"short_link"`
	OriginalURL string                 `json:"original_url"`
	Summary     types.AnalyticsSummary `json:"summary"`
}

// ExportAnalytics renders the analytics of one short code.
func (s *Service) ExportAnalytics(ctx context.Context, shortCode string, format ExportFormat) ([]byte, error) {
	rec, err := s.repo.GetURLByCode(ctx, shortCode)
	if err != nil {
		return nil, s.fail(err)
	}
	details, err := s.repo.ListClicks(ctx, rec.ID)
	if err != nil {
		return nil, s.fail(err)
	}
	rows := []URLExport{{
		ShortCode:   rec.ShortCode,
		ShortLink:   s.ShortLink(rec.ShortCode),
		OriginalURL: rec.OriginalURL,
		Summary:     analytics.Summarize(rec, details),
	}}
	return s.render(rows, format)
}

// ExportOwnerAnalytics renders the analytics of every link a user owns,
// one row per link, in stable short-code order.
func (s *Service) ExportOwnerAnalytics(ctx context.Context, ownerID string, format ExportFormat) ([]byte, error) {
	urls, err := s.repo.ListURLsForOwner(ctx, ownerID)
	if err != nil {
		return nil, s.fail(err)
	}
	sort.Slice(urls, func(i, j int) bool { return urls[i].ShortCode < urls[j].ShortCode })

	rows := make([]URLExport, 0, len(urls))
	for _, rec := range urls {
		details, err := s.repo.ListClicks(ctx, rec.ID)
		if err != nil {
			return nil, s.fail(err)
		}
		rows = append(rows, URLExport{
			ShortCode:   rec.ShortCode,
			ShortLink:   s.ShortLink(rec.ShortCode),
			OriginalURL: rec.OriginalURL,
			Summary:     analytics.Summarize(rec, details),
		})
	}
	return s.render(rows, format)
}

func (s *Service) render(rows []URLExport, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportJSON:
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return nil, s.fail(err)
		}
		return out, nil
	case ExportCSV:
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"short_code", "short_link", "original_url", "total_clicks", "unique_visitors"})
		for _, row := range rows {
			_ = w.Write([]string{
				row.ShortCode,
				row.ShortLink,
				row.OriginalURL,
				strconv.FormatInt(row.Summary.TotalClicks, 10),
				strconv.FormatInt(row.Summary.UniqueVisitors, 10),
			})
		}
		w.Flush()
		if err := w.Error(); err != nil {
			return nil, s.fail(err)
		}
		return buf.Bytes(), nil
	default:
		return nil, apperror.Validation([]apperror.FieldError{{
			Path:    "format",
			Message: "unsupported export format",
		}})
	}
}
