package sources

import (
	"context"
	"fmt"

	"pricewatch/internal/domain"
)

// Client is the per-marketplace search surface the registry dispatches to.
type Client interface {
	Search(ctx context.Context, keyword string, page, limit int) (*SearchResult, error)
}

// Registry routes a search to the client for the requested marketplace.
// It implements Searcher.
type Registry struct {
	clients map[domain.Source]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[domain.Source]Client)}
}

func (r *Registry) Register(source domain.Source, c Client) {
	r.clients[source] = c
}

func (r *Registry) Search(ctx context.Context, source domain.Source, keyword string, page, limit int) (*SearchResult, error) {
	c, ok := r.clients[source]
	if !ok {
		return nil, fmt.Errorf("no client registered for source %s", source)
	}
	return c.Search(ctx, keyword, page, limit)
}
