package handlers

import (
	"pricewatch/internal/repos"
	"pricewatch/internal/services"
	"pricewatch/internal/sources"

	"github.com/jmoiron/sqlx"
)

type Deps struct {
	SearchHandler    *SearchHandler
	WatchlistHandler *WatchlistHandler
	PriceHandler     *PriceHandler
	DashboardHandler *DashboardHandler
	HealthHandler    *HealthHandler

	// Tracker is exposed so main can run the periodic sweep.
	Tracker *services.TrackerService
}

func NewDeps(db *sqlx.DB, searcher sources.Searcher, fetcher services.PriceFetcher, mailer services.Mailer) *Deps {
	watchRepo := repos.NewWatchlistRepo(db)
	priceRepo := repos.NewPriceRepo(db)

	searchSvc := services.NewSearchService(searcher, services.NewMemorySessionStore())
	watchSvc := services.NewWatchlistService(watchRepo, priceRepo)
	trackerSvc := services.NewTrackerService(watchRepo, priceRepo, fetcher, mailer)

	return &Deps{
		SearchHandler:    &SearchHandler{Search: searchSvc},
		WatchlistHandler: &WatchlistHandler{Watch: watchSvc},
		PriceHandler:     &PriceHandler{Watch: watchSvc, Tracker: trackerSvc},
		DashboardHandler: &DashboardHandler{Prices: priceRepo},
		HealthHandler:    &HealthHandler{DB: db},
		Tracker:          trackerSvc,
	}
}
