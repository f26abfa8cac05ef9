package services

import (
	"context"
	"sync"
	"time"

	"pricewatch/internal/domain"
	applog "pricewatch/internal/log"
)

// PriceFetcher reads the live price for a tracked product. Scrape
// internals belong to the collaborator behind this interface.
type PriceFetcher interface {
	FetchPrice(ctx context.Context, source domain.Source, productURL string) (int, error)
}

// Mailer delivers price alerts. Delivery internals are not the
// engine's concern.
type Mailer interface {
	SendPriceAlert(to, productName string, oldPrice, newPrice int, productURL string) error
}

// CheckReport summarizes one price-check sweep.
type CheckReport struct {
	Checked int `json:"checked"`
	Updated int `json:"updated"`
	Alerted int `json:"alerted"`
	Failed  int `json:"failed"`
}

// TrackerService sweeps all activated entries, records price changes
// and mails an alert when a product hits a new all-time low.
type TrackerService struct {
	Store   WatchlistStore
	Log     PriceLog
	Fetcher PriceFetcher
	Mailer  Mailer
	Delay   time.Duration // pause between marketplace requests

	mu      sync.Mutex
	running bool
}

func NewTrackerService(store WatchlistStore, priceLog PriceLog, fetcher PriceFetcher, mailer Mailer) *TrackerService {
	return &TrackerService{Store: store, Log: priceLog, Fetcher: fetcher, Mailer: mailer, Delay: 2 * time.Second}
}

// CheckAll runs one sweep. A sweep already in progress makes the call a
// no-op so a manual trigger cannot stack on top of the scheduler.
func (t *TrackerService) CheckAll(ctx context.Context) (CheckReport, error) {
	t.mu.Lock()
	if t.running {
		t.mu.Unlock()
		return CheckReport{}, nil
	}
	t.running = true
	t.mu.Unlock()
	defer func() {
		t.mu.Lock()
		t.running = false
		t.mu.Unlock()
	}()

	var report CheckReport
	entries, err := t.Store.ListAllActivated()
	if err != nil {
		return report, err
	}

	for i, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if i > 0 && t.Delay > 0 {
			time.Sleep(t.Delay)
		}
		report.Checked++

		price, err := t.Fetcher.FetchPrice(ctx, entry.Source, entry.ProductURL)
		if err != nil {
			report.Failed++
			continue
		}
		if price == entry.CurrentPrice {
			continue
		}

		// all-time low check against the series before this point
		series, err := t.Log.History(entry.ID, 0)
		if err != nil {
			report.Failed++
			continue
		}
		prev, hasPrev := ComputeStats(series)

		if err := t.Log.Append(entry.ID, price, time.Now()); err != nil {
			report.Failed++
			continue
		}
		if err := t.Store.UpdatePrice(entry.ID, price); err != nil {
			report.Failed++
			continue
		}
		report.Updated++

		if t.Mailer != nil && hasPrev && price <= prev.Min && entry.UserEmail != domain.PlaceholderEmail {
			if err := t.Mailer.SendPriceAlert(entry.UserEmail, entry.ProductName, entry.CurrentPrice, price, entry.ProductURL); err != nil {
				applog.Job("tracker.alert.fail", err, map[string]any{"entry": entry.ID})
			} else {
				report.Alerted++
			}
		}
	}
	return report, nil
}

// RunEvery sweeps on a fixed interval until ctx is cancelled.
func (t *TrackerService) RunEvery(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if report, err := t.CheckAll(ctx); err != nil {
				applog.Job("tracker.sweep.fail", err, nil)
			} else {
				applog.Job("tracker.sweep", nil, map[string]any{
					"checked": report.Checked, "updated": report.Updated,
					"alerted": report.Alerted, "failed": report.Failed,
				})
			}
		}
	}
}
