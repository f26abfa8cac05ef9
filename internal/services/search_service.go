package services

import (
	"context"
	"errors"

	"pricewatch/internal/domain"
	"pricewatch/internal/sources"
)

// ErrNoActiveSearch is returned by LoadMore when the session has not
// issued a first search yet.
var ErrNoActiveSearch = errors.New("no active search for this session")

// SearchView is a snapshot of a session's accumulated results.
type SearchView struct {
	Keyword string                 `json:"keyword"`
	Source  domain.Source          `json:"source"`
	Records []domain.ProductRecord `json:"products"`
	Cursor  domain.PageCursor      `json:"pagination"`
	Dropped int                    `json:"dropped"`
}

// ComparePriceStats summarizes one compare batch.
type ComparePriceStats struct {
	MinPrice   int `json:"min_price"`
	MaxPrice   int `json:"max_price"`
	AvgPrice   int `json:"avg_price"`
	PriceRange int `json:"price_range"`
}

// CompareResult is a one-shot search with batch price statistics.
type CompareResult struct {
	Keyword  string                 `json:"keyword"`
	Source   domain.Source          `json:"source"`
	Products []domain.ProductRecord `json:"products"`
	Stats    *ComparePriceStats     `json:"price_stats,omitempty"`
}

// SearchService merges paginated marketplace results into per-session
// record sets and drives incremental fetch-more requests.
type SearchService struct {
	source   sources.Searcher
	sessions SessionStore
}

func NewSearchService(src sources.Searcher, store SessionStore) *SearchService {
	return &SearchService{source: src, sessions: store}
}

// Search starts a fresh result set for the session and fetches page 1.
// Any accumulated state for a previous keyword or source is discarded,
// and an in-flight fetch for it is abandoned.
func (s *SearchService) Search(ctx context.Context, sid string, source domain.Source, keyword string, limit int) (*SearchView, error) {
	sess := s.sessions.Session(sid)
	sess.mu.Lock()
	sess.resetLocked(source, keyword, limit)
	return s.fetchLocked(ctx, sess, 1)
}

// LoadMore fetches the next page for the session's active search and
// folds it into the accumulated records. While a fetch for the same
// session is in flight the call does not issue a duplicate request; it
// waits and observes the in-flight fetch's result. When the cursor is
// exhausted it returns the current snapshot unchanged.
func (s *SearchService) LoadMore(ctx context.Context, sid string) (*SearchView, error) {
	sess := s.sessions.Session(sid)
	sess.mu.Lock()
	if sess.keyword == "" {
		sess.mu.Unlock()
		return nil, ErrNoActiveSearch
	}
	if ch := sess.inflight; ch != nil {
		sess.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		sess.mu.Lock()
		view := sess.viewLocked()
		sess.mu.Unlock()
		return view, nil
	}
	if sess.cursor.CurrentPage > 0 && !sess.cursor.HasNext {
		view := sess.viewLocked()
		sess.mu.Unlock()
		return view, nil
	}
	return s.fetchLocked(ctx, sess, sess.cursor.CurrentPage+1)
}

// Snapshot returns the session's current state without fetching.
func (s *SearchService) Snapshot(sid string) *SearchView {
	sess := s.sessions.Session(sid)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.viewLocked()
}

// fetchLocked is entered holding sess.mu and returns with it released.
// The cursor advances only when the fetch confirms success; on failure
// or on a stale completion the session is left byte-identical, so the
// caller may safely retry (nothing here retries on its own).
func (s *SearchService) fetchLocked(ctx context.Context, sess *Session, page int) (*SearchView, error) {
	gen := sess.gen
	source, keyword, limit := sess.source, sess.keyword, sess.limit
	ch := make(chan struct{})
	sess.inflight = ch
	sess.mu.Unlock()

	res, err := s.source.Search(ctx, source, keyword, page, limit)

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.inflight == ch {
		sess.inflight = nil
		close(ch)
	}
	if sess.gen != gen {
		// session was reset mid-flight; the page belongs to an
		// abandoned search and is discarded
		return sess.viewLocked(), nil
	}
	if err != nil {
		return nil, &domain.FetchError{Source: source, Keyword: keyword, Page: page, Err: err}
	}

	records, dropped := sources.Normalize(source, res.Products)
	sess.records = Dedupe(sess.records, records)
	sess.dropped += dropped
	sess.cursor = domain.PageCursor{
		Source:       source,
		CurrentPage:  page,
		TotalPages:   res.Pagination.TotalPages,
		TotalResults: res.Pagination.TotalResults,
		HasNext:      res.Pagination.HasNext,
	}
	return sess.viewLocked(), nil
}

// Compare runs a one-shot search and derives min/max/avg across the
// batch. It does not touch session state.
func (s *SearchService) Compare(ctx context.Context, source domain.Source, keyword string, limit int) (*CompareResult, error) {
	res, err := s.source.Search(ctx, source, keyword, 1, limit)
	if err != nil {
		return nil, &domain.FetchError{Source: source, Keyword: keyword, Page: 1, Err: err}
	}
	records, _ := sources.Normalize(source, res.Products)

	out := &CompareResult{Keyword: keyword, Source: source, Products: records}
	if len(records) == 0 {
		return out, nil
	}
	min, max, sum := records[0].Price, records[0].Price, 0
	for _, r := range records {
		if r.Price < min {
			min = r.Price
		}
		if r.Price > max {
			max = r.Price
		}
		sum += r.Price
	}
	out.Stats = &ComparePriceStats{
		MinPrice:   min,
		MaxPrice:   max,
		AvgPrice:   sum / len(records),
		PriceRange: max - min,
	}
	return out, nil
}
