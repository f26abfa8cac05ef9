package domain

import "time"

// Source identifies one external marketplace search provider.
type Source string

const (
	SourceSSG      Source = "SSG"
	SourceNaver    Source = "NAVER"
	SourceEleventh Source = "ELEVENTH_STREET"
)

// Valid reports whether s is one of the known marketplaces.
func (s Source) Valid() bool {
	switch s {
	case SourceSSG, SourceNaver, SourceEleventh:
		return true
	}
	return false
}

// ProductRecord is a canonical search result. ID is empty for freshly
// scraped results that do not exist in storage yet.
type ProductRecord struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	Price     int    `json:"price"` // KRW
	Brand     string `json:"brand,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	SourceURL string `json:"url,omitempty"`
	Source    Source `json:"source"`
}

// PageCursor tracks per-source, per-keyword pagination progress.
// HasNext must always equal CurrentPage < TotalPages.
type PageCursor struct {
	Source       Source `json:"source"`
	CurrentPage  int    `json:"current_page"`
	TotalPages   int    `json:"total_pages"`
	HasNext      bool   `json:"has_next"`
	TotalResults int    `json:"total_results"`
}

// Watchlist entry lifecycle states. Activation is one-directional:
// once ACTIVATED an entry never reverts to TEMP.
const (
	StateTemp      = "TEMP"
	StateActivated = "ACTIVATED"
)

// PlaceholderEmail marks entries staged before email activation.
const PlaceholderEmail = "temp@temp.com"

type WatchlistEntry struct {
	ID           string `db:"id" json:"id"`
	ProductName  string `db:"product_name" json:"product_name"`
	ProductURL   string `db:"product_url" json:"product_url"`
	ImageURL     string `db:"image_url" json:"image_url,omitempty"`
	Source       Source `db:"source" json:"source"`
	CurrentPrice int    `db:"current_price" json:"current_price"`
	TargetPrice  int    `db:"target_price" json:"target_price,omitempty"`
	UserEmail    string `db:"user_email" json:"-"`
	State        string `db:"state" json:"state"`
	CreatedAt    string `db:"created_at" json:"created_at"`
}

// PriceObservation is one point of an append-only price series. The
// series is owned by storage; the stats engine only reads it.
type PriceObservation struct {
	ProductID  string    `db:"product_id" json:"product_id"`
	Price      int       `db:"price" json:"price"`
	RecordedAt time.Time `db:"recorded_at" json:"recorded_at"`
}

// PriceStats is derived from an observation series, never stored.
type PriceStats struct {
	Min          int     `json:"min_price"`
	Max          int     `json:"max_price"`
	Current      int     `json:"current_price"`
	First        int     `json:"first_price"`
	Delta        int     `json:"price_change"`
	DeltaPercent float64 `json:"price_change_percent"`
	SampleCount  int     `json:"data_points"`
}
