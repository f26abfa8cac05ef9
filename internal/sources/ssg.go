package sources

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

// SSGClient talks to the SSG crawler collaborator, which exposes already
// scraped listings as JSON. The crawler owns caching and scrape internals.
type SSGClient struct {
	http    *resty.Client
	baseURL string
}

func NewSSGClient(baseURL string) *SSGClient {
	return &SSGClient{
		http:    resty.New().SetTimeout(15 * time.Second),
		baseURL: baseURL,
	}
}

type ssgSearchResponse struct {
	Products   []RawProduct `json:"products"`
	SearchInfo struct {
		Page         int `json:"page"`
		Limit        int `json:"limit"`
		TotalResults int `json:"total_results"`
		TotalPages   int `json:"total_pages"`
	} `json:"search_info"`
}

func (c *SSGClient) Search(ctx context.Context, keyword string, page, limit int) (*SearchResult, error) {
	var out ssgSearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"keyword": keyword,
			"page":    strconv.Itoa(page),
			"limit":   strconv.Itoa(limit),
		}).
		SetResult(&out).
		Get(c.baseURL + "/api/search")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("ssg crawler: %s", resp.Status())
	}

	pg := paginationFromTotal(page, limit, out.SearchInfo.TotalResults)
	if out.SearchInfo.TotalPages > 0 {
		pg.TotalPages = out.SearchInfo.TotalPages
		pg.HasNext = page < pg.TotalPages
	} else if pg.TotalPages == 0 && len(out.Products) == limit {
		// crawler omits totals while a deep scrape is still running;
		// a full page means at least one more is worth asking for
		pg.TotalPages = page + 1
		pg.HasNext = true
	}
	return &SearchResult{Products: out.Products, Pagination: pg}, nil
}
