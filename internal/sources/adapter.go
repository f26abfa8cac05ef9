package sources

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"pricewatch/internal/domain"
)

// RawProduct is one listing as a marketplace client produced it, before
// normalization. Price fields are loosely typed because sources disagree
// on both naming and encoding (number vs "1,234원" strings).
type RawProduct struct {
	ID           string `json:"id,omitempty"`
	Name         string `json:"name"`
	Price        any    `json:"price,omitempty"`
	CurrentPrice any    `json:"current_price,omitempty"`
	Brand        string `json:"brand,omitempty"`
	ImageURL     string `json:"image_url,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Pagination mirrors the paging block returned by a search collaborator.
type Pagination struct {
	CurrentPage  int  `json:"current_page"`
	TotalPages   int  `json:"total_pages"`
	TotalResults int  `json:"total_results"`
	HasNext      bool `json:"has_next"`
}

// SearchResult is one page of raw listings plus the source's paging state.
type SearchResult struct {
	Products   []RawProduct `json:"products"`
	Pagination Pagination   `json:"pagination"`
}

// Searcher is the search collaborator contract the engine consumes.
type Searcher interface {
	Search(ctx context.Context, source domain.Source, keyword string, page, limit int) (*SearchResult, error)
}

// Normalize converts raw listings into canonical records. A listing with
// a missing name or no usable price is dropped and counted; one bad row
// never fails the batch. current_price wins over price when both exist.
func Normalize(source domain.Source, raws []RawProduct) ([]domain.ProductRecord, int) {
	records := make([]domain.ProductRecord, 0, len(raws))
	dropped := 0
	for _, raw := range raws {
		name := strings.TrimSpace(raw.Name)
		price, ok := coercePrice(raw.CurrentPrice)
		if !ok {
			price, ok = coercePrice(raw.Price)
		}
		if name == "" || !ok || price <= 0 {
			dropped++
			continue
		}
		records = append(records, domain.ProductRecord{
			ID:        raw.ID,
			Name:      name,
			Price:     price,
			Brand:     strings.TrimSpace(raw.Brand),
			ImageURL:  strings.TrimSpace(raw.ImageURL),
			SourceURL: strings.TrimSpace(raw.URL),
			Source:    source,
		})
	}
	return records, dropped
}

func coercePrice(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		return int(t), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return int(f), true
	case string:
		s := strings.TrimSpace(t)
		s = strings.ReplaceAll(s, ",", "")
		s = strings.TrimSuffix(s, "원")
		if s == "" {
			return 0, false
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
