package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pricewatch/internal/domain"
)

// MaxActivatedPerEmail caps how many entries one email may track.
const MaxActivatedPerEmail = 30

var ErrEntryNotFound = errors.New("watchlist entry not found")

// ProductSnapshot is what the caller captured from a search result when
// promoting it into the watchlist.
type ProductSnapshot struct {
	Name        string        `json:"name"`
	URL         string        `json:"url"`
	ImageURL    string        `json:"image_url"`
	Source      domain.Source `json:"source"`
	Price       int           `json:"price"`
	TargetPrice int           `json:"target_price"`
}

// WatchlistStore is the persistence contract the lifecycle manager
// requires; the engine never assumes a specific storage engine.
type WatchlistStore interface {
	UpsertTemp(entry domain.WatchlistEntry) (domain.WatchlistEntry, error)
	Get(id string) (domain.WatchlistEntry, error)
	ListTemp() ([]domain.WatchlistEntry, error)
	ListActivated(email string) ([]domain.WatchlistEntry, error)
	ListAllActivated() ([]domain.WatchlistEntry, error)
	CountActivated(email string) (int, error)
	// Activate rebinds a TEMP entry to email; reports false when the
	// entry was no longer TEMP (already activated or gone).
	Activate(id, email string) (bool, error)
	UpdatePrice(id string, price int) error
	Delete(id string) error
}

// PriceLog is the append-only price observation series.
type PriceLog interface {
	Append(productID string, price int, at time.Time) error
	History(productID string, days int) ([]domain.PriceObservation, error)
}

// ActivationResult reports a bulk activation. Each entry activates
// independently, so a partial success is a valid outcome.
type ActivationResult struct {
	ActivatedCount int `json:"activated_count"`
	RejectedCount  int `json:"rejected_count,omitempty"`
}

// WatchlistService owns the TEMP -> ACTIVATED lifecycle for tracked
// products. Activation is one-directional: an activated entry is bound
// to exactly one email and never reverts.
type WatchlistService struct {
	Store WatchlistStore
	Log   PriceLog

	activateMu sync.Mutex
}

func NewWatchlistService(store WatchlistStore, log PriceLog) *WatchlistService {
	return &WatchlistService{Store: store, Log: log}
}

// AddTemporary stages a product for tracking under the placeholder
// email. Re-adding a product already staged (same URL) refreshes its
// price instead of duplicating it. The first price observation is
// seeded so charts have a baseline.
func (s *WatchlistService) AddTemporary(p ProductSnapshot) (domain.WatchlistEntry, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" || p.Price <= 0 || !p.Source.Valid() {
		return domain.WatchlistEntry{}, fmt.Errorf("invalid product snapshot: name, price and source are required")
	}
	url := strings.TrimSpace(p.URL)
	if url == "" {
		url = "#"
	}
	target := p.TargetPrice
	if target <= 0 {
		target = p.Price * 9 / 10
	}

	entry, err := s.Store.UpsertTemp(domain.WatchlistEntry{
		ID:           uuid.NewString(),
		ProductName:  name,
		ProductURL:   url,
		ImageURL:     strings.TrimSpace(p.ImageURL),
		Source:       p.Source,
		CurrentPrice: p.Price,
		TargetPrice:  target,
		UserEmail:    domain.PlaceholderEmail,
		State:        domain.StateTemp,
		CreatedAt:    time.Now().Format(time.RFC3339),
	})
	if err != nil {
		return domain.WatchlistEntry{}, fmt.Errorf("stage watch entry: %w", err)
	}
	if err := s.Log.Append(entry.ID, p.Price, time.Now()); err != nil {
		return domain.WatchlistEntry{}, fmt.Errorf("seed price history: %w", err)
	}
	return entry, nil
}

// ActivateAll converts every TEMP entry to ACTIVATED bound to email.
// Safe to call twice: already-activated entries are untouched and a
// second call with no staged entries reports zero. Entries that would
// push the email past MaxActivatedPerEmail are rejected, not truncated:
// the result still counts what did activate and the returned error is a
// CapacityError the caller surfaces as a user-facing limit.
func (s *WatchlistService) ActivateAll(email string) (ActivationResult, error) {
	s.activateMu.Lock()
	defer s.activateMu.Unlock()

	var res ActivationResult
	staged, err := s.Store.ListTemp()
	if err != nil {
		return res, fmt.Errorf("list staged entries: %w", err)
	}
	active, err := s.Store.CountActivated(email)
	if err != nil {
		return res, fmt.Errorf("count activated entries: %w", err)
	}

	for _, entry := range staged {
		if active >= MaxActivatedPerEmail {
			res.RejectedCount++
			continue
		}
		ok, err := s.Store.Activate(entry.ID, email)
		if err != nil {
			return res, fmt.Errorf("activate entry %s: %w", entry.ID, err)
		}
		if ok {
			res.ActivatedCount++
			active++
		}
	}
	if res.RejectedCount > 0 {
		return res, &domain.CapacityError{Email: email, Limit: MaxActivatedPerEmail}
	}
	return res, nil
}

// Remove deletes an entry. TEMP entries go unconditionally; ACTIVATED
// entries only when the caller's email matches the bound one.
func (s *WatchlistService) Remove(id, email string) error {
	entry, err := s.Store.Get(id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrEntryNotFound
		}
		return fmt.Errorf("load entry %s: %w", id, err)
	}
	if entry.State == domain.StateActivated && entry.UserEmail != email {
		return &domain.AuthorizationError{EntryID: id}
	}
	return s.Store.Delete(id)
}

// ListTemporary returns the anonymous staging area. Staged entries are
// not bound to any email until activation.
func (s *WatchlistService) ListTemporary() ([]domain.WatchlistEntry, error) {
	return s.Store.ListTemp()
}

// ListActivated returns only entries bound to email; one user never
// observes another's activated entries.
func (s *WatchlistService) ListActivated(email string) ([]domain.WatchlistEntry, error) {
	return s.Store.ListActivated(email)
}

// PriceHistory returns the windowed observation series for an entry
// along with derived statistics; stats are nil for an empty series.
func (s *WatchlistService) PriceHistory(id string, days int) ([]domain.PriceObservation, *domain.PriceStats, error) {
	if _, err := s.Store.Get(id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, ErrEntryNotFound
		}
		return nil, nil, fmt.Errorf("load entry %s: %w", id, err)
	}
	series, err := s.Log.History(id, days)
	if err != nil {
		return nil, nil, fmt.Errorf("load price history: %w", err)
	}
	stats, ok := ComputeStats(series)
	if !ok {
		return series, nil, nil
	}
	return series, &stats, nil
}
