package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"

	"pricewatch/internal/domain"
	"pricewatch/internal/http/handlers"
	"pricewatch/internal/repos"
	"pricewatch/internal/sources"
)

type scriptedSearcher struct {
	totalPages int
}

func (s *scriptedSearcher) Search(ctx context.Context, source domain.Source, keyword string, page, limit int) (*sources.SearchResult, error) {
	return &sources.SearchResult{
		Products: []sources.RawProduct{
			{Name: fmt.Sprintf("%s 추천 상품 %d", keyword, page), Price: 10000 * page, URL: fmt.Sprintf("https://ssg.com/%s/%d", keyword, page)},
		},
		Pagination: sources.Pagination{
			CurrentPage: page,
			TotalPages:  s.totalPages,
			HasNext:     page < s.totalPages,
		},
	}, nil
}

type noopFetcher struct{}

func (noopFetcher) FetchPrice(ctx context.Context, source domain.Source, url string) (int, error) {
	return 0, fmt.Errorf("not wired in tests")
}

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	deps := handlers.NewDeps(db, &scriptedSearcher{totalPages: 3}, noopFetcher{}, nil)

	app := fiber.New()
	api := app.Group("/api")
	api.Get("/health", deps.HealthHandler.Check)
	api.Get("/search", deps.SearchHandler.Query)
	api.Post("/search/more", deps.SearchHandler.More)
	api.Get("/compare", deps.SearchHandler.Compare)
	api.Post("/watchlist/temp", deps.WatchlistHandler.AddTemp)
	api.Get("/watchlist/temp", deps.WatchlistHandler.ListTemp)
	api.Post("/watchlist/activate", deps.WatchlistHandler.Activate)
	api.Get("/watchlist", deps.WatchlistHandler.ListActivated)
	api.Delete("/watchlist/:id", deps.WatchlistHandler.Remove)
	api.Get("/price-history/:id", deps.PriceHandler.History)
	api.Get("/dashboard", deps.DashboardHandler.Stats)
	return app
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, out); err != nil {
		t.Fatalf("bad json %q: %v", b, err)
	}
}

func sidCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c.Value
		}
	}
	return ""
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/health", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
}

func TestSearchThenLoadMore(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/search?keyword=버즈&source=SSG", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("search: want 200, got %d", resp.StatusCode)
	}
	sid := sidCookie(resp)
	if sid == "" {
		t.Fatal("search must set a sid cookie")
	}
	var view struct {
		Products   []json.RawMessage `json:"products"`
		Pagination struct {
			CurrentPage int  `json:"current_page"`
			HasNext     bool `json:"has_next"`
		} `json:"pagination"`
	}
	decodeBody(t, resp, &view)
	if view.Pagination.CurrentPage != 1 || !view.Pagination.HasNext {
		t.Fatalf("cursor wrong: %+v", view.Pagination)
	}

	req := httptest.NewRequest("POST", "/api/search/more", nil)
	req.AddCookie(&http.Cookie{Name: "sid", Value: sid})
	resp, err = app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("more: want 200, got %d", resp.StatusCode)
	}
	decodeBody(t, resp, &view)
	if view.Pagination.CurrentPage != 2 {
		t.Fatalf("more did not advance: %+v", view.Pagination)
	}
	if len(view.Products) != 2 {
		t.Fatalf("want 2 accumulated products, got %d", len(view.Products))
	}
}

func TestLoadMoreWithoutSearch(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("POST", "/api/search/more", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("want 409, got %d", resp.StatusCode)
	}
}

func TestSearchValidation(t *testing.T) {
	app := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/search", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing keyword: want 400, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("GET", "/api/search?keyword=버즈&source=GMARKET", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("unknown source: want 400, got %d", resp.StatusCode)
	}
}

func TestWatchlistLifecycleOverHTTP(t *testing.T) {
	app := newTestApp(t)

	stage := func(name string) string {
		t.Helper()
		body, _ := json.Marshal(map[string]any{
			"name": name, "url": "https://ssg.com/" + name, "source": "SSG", "price": 50000,
		})
		req := httptest.NewRequest("POST", "/api/watchlist/temp", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != fiber.StatusCreated {
			t.Fatalf("stage: want 201, got %d", resp.StatusCode)
		}
		var entry struct {
			ID string `json:"id"`
		}
		decodeBody(t, resp, &entry)
		return entry.ID
	}

	id := stage("버즈3 프로")

	// activate everything staged
	body, _ := json.Marshal(map[string]string{"user_email": "owner@example.com"})
	req := httptest.NewRequest("POST", "/api/watchlist/activate", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("activate: want 200, got %d", resp.StatusCode)
	}
	var result struct {
		ActivatedCount int `json:"activated_count"`
	}
	decodeBody(t, resp, &result)
	if result.ActivatedCount != 1 {
		t.Fatalf("want 1 activated, got %d", result.ActivatedCount)
	}

	// wrong email cannot delete an activated entry
	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/watchlist/"+id+"?user_email=intruder@example.com", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusForbidden {
		t.Fatalf("foreign delete: want 403, got %d", resp.StatusCode)
	}

	// owner can
	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/watchlist/"+id+"?user_email=owner@example.com", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("owner delete: want 200, got %d", resp.StatusCode)
	}

	resp, err = app.Test(httptest.NewRequest("DELETE", "/api/watchlist/"+id+"?user_email=owner@example.com", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("second delete: want 404, got %d", resp.StatusCode)
	}
}

func TestPriceHistoryUnknownEntry(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/price-history/no-such-id", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("want 404, got %d", resp.StatusCode)
	}
}

func TestDashboardStats(t *testing.T) {
	app := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest("GET", "/api/dashboard", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("want 200, got %d", resp.StatusCode)
	}
	var out struct {
		Summary struct {
			TempCount int `json:"temp_count"`
		} `json:"summary"`
	}
	decodeBody(t, resp, &out)
	if out.Summary.TempCount != 0 {
		t.Fatalf("fresh db must report zero staged entries: %+v", out.Summary)
	}
}
