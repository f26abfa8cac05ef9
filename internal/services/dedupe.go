package services

import (
	"strings"
	"unicode/utf8"

	"pricewatch/internal/domain"
)

// minNameLen filters adapter noise: placeholder rows and truncated
// listings come through with very short names.
const minNameLen = 5

// dedupeKey is the identity of a listing across pages and sources.
func dedupeKey(r domain.ProductRecord) string {
	return r.SourceURL + "|" + strings.TrimSpace(r.Name)
}

// Dedupe merges incoming records into existing, keeping the first
// occurrence of each (url, name) identity in original order. Records
// whose trimmed name is minNameLen runes or shorter are dropped.
// Idempotent: feeding the output back in with new records yields the
// same result as deduping the originals against those records. O(n).
func Dedupe(existing, incoming []domain.ProductRecord) []domain.ProductRecord {
	out := make([]domain.ProductRecord, 0, len(existing)+len(incoming))
	seen := make(map[string]struct{}, len(existing)+len(incoming))
	for _, batch := range [2][]domain.ProductRecord{existing, incoming} {
		for _, r := range batch {
			name := strings.TrimSpace(r.Name)
			if utf8.RuneCountInString(name) <= minNameLen {
				continue
			}
			key := dedupeKey(r)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}
