package services_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jmoiron/sqlx"

	"pricewatch/internal/domain"
	"pricewatch/internal/repos"
	"pricewatch/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newWatchService(t *testing.T) *services.WatchlistService {
	t.Helper()
	db := memdb(t)
	return services.NewWatchlistService(repos.NewWatchlistRepo(db), repos.NewPriceRepo(db))
}

func snapshot(name string, price int) services.ProductSnapshot {
	return services.ProductSnapshot{
		Name:   name,
		URL:    "https://ssg.com/" + name,
		Source: domain.SourceSSG,
		Price:  price,
	}
}

func TestAddTemporary_Defaults(t *testing.T) {
	svc := newWatchService(t)

	entry, err := svc.AddTemporary(snapshot("버즈3 프로", 200000))
	if err != nil {
		t.Fatal(err)
	}
	if entry.State != domain.StateTemp {
		t.Fatalf("want TEMP, got %s", entry.State)
	}
	if entry.UserEmail != domain.PlaceholderEmail {
		t.Fatalf("staged entry must use placeholder email, got %q", entry.UserEmail)
	}
	if entry.TargetPrice != 180000 {
		t.Fatalf("default target must be 90%% of price, got %d", entry.TargetPrice)
	}

	// first observation is seeded so history starts non-empty
	series, stats, err := svc.PriceHistory(entry.ID, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(series) != 1 || stats == nil || stats.Current != 200000 {
		t.Fatalf("seed observation missing: series=%d stats=%+v", len(series), stats)
	}
}

func TestAddTemporary_SameURLRefreshes(t *testing.T) {
	svc := newWatchService(t)

	first, err := svc.AddTemporary(snapshot("버즈3 프로", 200000))
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.AddTemporary(snapshot("버즈3 프로", 190000))
	if err != nil {
		t.Fatal(err)
	}
	if first.ID != second.ID {
		t.Fatalf("re-staging same URL duplicated the entry: %s vs %s", first.ID, second.ID)
	}
	if second.CurrentPrice != 190000 {
		t.Fatalf("price not refreshed: %d", second.CurrentPrice)
	}

	staged, err := svc.ListTemporary()
	if err != nil {
		t.Fatal(err)
	}
	if len(staged) != 1 {
		t.Fatalf("want 1 staged entry, got %d", len(staged))
	}
}

func TestActivateAll_Idempotent(t *testing.T) {
	svc := newWatchService(t)
	for i := 0; i < 3; i++ {
		if _, err := svc.AddTemporary(snapshot(fmt.Sprintf("상품-%d", i), 10000)); err != nil {
			t.Fatal(err)
		}
	}

	res, err := svc.ActivateAll("user@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if res.ActivatedCount != 3 {
		t.Fatalf("want 3 activated, got %d", res.ActivatedCount)
	}

	// second call has nothing staged left
	res, err = svc.ActivateAll("user@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if res.ActivatedCount != 0 {
		t.Fatalf("second activation re-activated entries: %d", res.ActivatedCount)
	}

	mine, err := svc.ListActivated("user@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(mine) != 3 {
		t.Fatalf("want 3 activated entries, got %d", len(mine))
	}
}

func TestActivateAll_CapacityCeiling(t *testing.T) {
	svc := newWatchService(t)
	for i := 0; i < services.MaxActivatedPerEmail+1; i++ {
		if _, err := svc.AddTemporary(snapshot(fmt.Sprintf("상품-%d", i), 10000)); err != nil {
			t.Fatal(err)
		}
	}

	res, err := svc.ActivateAll("hoarder@example.com")
	var ce *domain.CapacityError
	if !errors.As(err, &ce) {
		t.Fatalf("want CapacityError, got %v", err)
	}
	if res.ActivatedCount != services.MaxActivatedPerEmail || res.RejectedCount != 1 {
		t.Fatalf("partial result wrong: %+v", res)
	}
	if ce.Limit != services.MaxActivatedPerEmail {
		t.Fatalf("error limit wrong: %d", ce.Limit)
	}
}

func TestActivateAll_PerEmailIsolation(t *testing.T) {
	svc := newWatchService(t)
	if _, err := svc.AddTemporary(snapshot("상품-가", 10000)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ActivateAll("alice@example.com"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddTemporary(snapshot("상품-나", 20000)); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ActivateAll("bob@example.com"); err != nil {
		t.Fatal(err)
	}

	alice, err := svc.ListActivated("alice@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(alice) != 1 || alice[0].ProductName != "상품-가" {
		t.Fatalf("alice sees wrong entries: %+v", alice)
	}
	bob, err := svc.ListActivated("bob@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if len(bob) != 1 || bob[0].ProductName != "상품-나" {
		t.Fatalf("bob sees wrong entries: %+v", bob)
	}
}

func TestRemove_Authorization(t *testing.T) {
	svc := newWatchService(t)
	entry, err := svc.AddTemporary(snapshot("상품-가", 10000))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ActivateAll("owner@example.com"); err != nil {
		t.Fatal(err)
	}

	err = svc.Remove(entry.ID, "intruder@example.com")
	var ae *domain.AuthorizationError
	if !errors.As(err, &ae) {
		t.Fatalf("want AuthorizationError, got %v", err)
	}

	if err := svc.Remove(entry.ID, "owner@example.com"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Remove(entry.ID, "owner@example.com"); !errors.Is(err, services.ErrEntryNotFound) {
		t.Fatalf("want ErrEntryNotFound on second delete, got %v", err)
	}
}

func TestRemove_TempIsUnconditional(t *testing.T) {
	svc := newWatchService(t)
	entry, err := svc.AddTemporary(snapshot("상품-가", 10000))
	if err != nil {
		t.Fatal(err)
	}
	// no email needed for staged entries
	if err := svc.Remove(entry.ID, ""); err != nil {
		t.Fatal(err)
	}
}

func TestPriceHistory_UnknownEntry(t *testing.T) {
	svc := newWatchService(t)
	if _, _, err := svc.PriceHistory("no-such-id", 7); !errors.Is(err, services.ErrEntryNotFound) {
		t.Fatalf("want ErrEntryNotFound, got %v", err)
	}
}
