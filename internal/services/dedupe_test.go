package services_test

import (
	"testing"

	"pricewatch/internal/domain"
	"pricewatch/internal/services"
)

func rec(name, url string, price int) domain.ProductRecord {
	return domain.ProductRecord{Name: name, SourceURL: url, Price: price, Source: domain.SourceSSG}
}

func TestDedupe_FirstOccurrenceWins(t *testing.T) {
	existing := []domain.ProductRecord{
		rec("갤럭시 버즈3 프로", "https://ssg.com/a", 219000),
	}
	incoming := []domain.ProductRecord{
		rec("갤럭시 버즈3 프로", "https://ssg.com/a", 199000), // same identity, cheaper
		rec("갤럭시 버즈3 라이브", "https://ssg.com/b", 159000),
	}

	out := services.Dedupe(existing, incoming)
	if len(out) != 2 {
		t.Fatalf("want 2 records, got %d", len(out))
	}
	if out[0].Price != 219000 {
		t.Fatalf("duplicate replaced the first occurrence: %+v", out[0])
	}
	if out[1].SourceURL != "https://ssg.com/b" {
		t.Fatalf("order not preserved: %+v", out[1])
	}
}

func TestDedupe_SameURLDifferentName(t *testing.T) {
	// bundle listings share a URL; name makes them distinct
	out := services.Dedupe(nil, []domain.ProductRecord{
		rec("에어팟 프로 2세대", "https://ssg.com/x", 300000),
		rec("에어팟 프로 2세대 케이스 포함", "https://ssg.com/x", 330000),
	})
	if len(out) != 2 {
		t.Fatalf("want 2 distinct records, got %d", len(out))
	}
}

func TestDedupe_ShortNamesDropped(t *testing.T) {
	out := services.Dedupe(nil, []domain.ProductRecord{
		rec("버즈", "https://ssg.com/a", 1000),      // 2 runes
		rec("  버즈3 프로  ", "https://ssg.com/b", 2000), // 6 runes after trim
		rec("abcde", "https://ssg.com/c", 3000),    // exactly 5, dropped
	})
	if len(out) != 1 {
		t.Fatalf("want 1 record, got %d: %+v", len(out), out)
	}
	if out[0].SourceURL != "https://ssg.com/b" {
		t.Fatalf("wrong survivor: %+v", out[0])
	}
}

func TestDedupe_Idempotent(t *testing.T) {
	batch := []domain.ProductRecord{
		rec("갤럭시 버즈3 프로", "https://ssg.com/a", 219000),
		rec("갤럭시 버즈3 라이브", "https://ssg.com/b", 159000),
	}
	once := services.Dedupe(nil, batch)
	twice := services.Dedupe(once, batch)
	if len(twice) != len(once) {
		t.Fatalf("re-feeding output grew the set: %d -> %d", len(once), len(twice))
	}
	for i := range once {
		if once[i] != twice[i] {
			t.Fatalf("record %d changed on second pass", i)
		}
	}
}
