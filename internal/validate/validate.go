package validate

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"pricewatch/internal/domain"
)

var (
	reEmail = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reID    = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)
)

// Keyword validates a search keyword: trims and enforces a max length.
// Hangul and other non-ASCII text is allowed, control characters are not.
func Keyword(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || utf8.RuneCountInString(s) > 50 {
		return "", false
	}
	for _, r := range s {
		if r < 0x20 || r == 0x7f {
			return "", false
		}
	}
	return s, true
}

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 100 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// ID validates an entry identifier (uuid or legacy numeric id).
func ID(s string) (string, bool) {
	s = strings.TrimSpace(s)
	return s, s != "" && reID.MatchString(s)
}

// Source validates a marketplace tag, defaulting to SSG when absent.
func Source(s string) (domain.Source, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return domain.SourceSSG, true
	}
	src := domain.Source(s)
	return src, src.Valid()
}

// Limit clamps a result-count parameter into [1, 50].
func Limit(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 20
	}
	if n > 50 {
		return 50
	}
	return n
}

// Days clamps a history window into [1, 90].
func Days(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 7
	}
	if n > 90 {
		return 90
	}
	return n
}

// TargetPrice parses an optional target price; zero means unset.
func TargetPrice(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
