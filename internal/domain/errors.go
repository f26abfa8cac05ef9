package domain

import "fmt"

// FetchError reports a failed page fetch from a marketplace. The cursor
// the caller holds is untouched, so a retry is safe; nothing in the
// engine retries automatically.
type FetchError struct {
	Source  Source
	Keyword string
	Page    int
	Err     error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s %q page %d: %v", e.Source, e.Keyword, e.Page, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// AuthorizationError is returned when a caller tries to remove an
// activated entry bound to a different email.
type AuthorizationError struct {
	EntryID string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("entry %s is bound to a different email", e.EntryID)
}

// CapacityError is returned when activation would push one email's
// activated count above the ceiling. Other entries in the same batch
// may still have activated.
type CapacityError struct {
	Email string
	Limit int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("watchlist for %s is full (limit %d)", e.Email, e.Limit)
}
