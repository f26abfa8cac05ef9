package services

import (
	"sync"

	"pricewatch/internal/domain"
)

// Session accumulates search state for one caller: the active keyword
// and source, the deduplicated records gathered so far, and the paging
// cursor. The generation counter guards against a fetch that was
// abandoned by a keyword or source switch landing on fresh state.
type Session struct {
	mu       sync.Mutex
	keyword  string
	source   domain.Source
	limit    int
	records  []domain.ProductRecord
	cursor   domain.PageCursor
	dropped  int
	gen      uint64
	inflight chan struct{} // non-nil while a page fetch is running
}

func (sess *Session) resetLocked(source domain.Source, keyword string, limit int) {
	sess.gen++
	sess.keyword = keyword
	sess.source = source
	sess.limit = limit
	sess.records = nil
	sess.cursor = domain.PageCursor{}
	sess.dropped = 0
	if sess.inflight != nil {
		// release anyone waiting on the superseded fetch
		close(sess.inflight)
		sess.inflight = nil
	}
}

func (sess *Session) viewLocked() *SearchView {
	return &SearchView{
		Keyword: sess.keyword,
		Source:  sess.source,
		Records: append([]domain.ProductRecord(nil), sess.records...),
		Cursor:  sess.cursor,
		Dropped: sess.dropped,
	}
}

// SessionStore hands out search sessions by caller id. The engine never
// assumes a storage medium; any caller (web client, CLI, test harness)
// supplies its own store and owns its lifetime.
type SessionStore interface {
	Session(id string) *Session
}

// MemorySessionStore keeps sessions in process memory.
type MemorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]*Session)}
}

func (s *MemorySessionStore) Session(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		sess = &Session{}
		s.sessions[id] = sess
	}
	return sess
}
