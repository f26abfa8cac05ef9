package sources

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const naverSearchURL = "https://openapi.naver.com/v1/search/shop.json"

var reHTMLTag = regexp.MustCompile(`<[^>]*>`)

// NaverClient searches the Naver Shopping open API.
type NaverClient struct {
	http         *resty.Client
	clientID     string
	clientSecret string
}

func NewNaverClient(clientID, clientSecret string) *NaverClient {
	return &NaverClient{
		http:         resty.New().SetTimeout(10 * time.Second),
		clientID:     clientID,
		clientSecret: clientSecret,
	}
}

type naverSearchResponse struct {
	Total   int `json:"total"`
	Start   int `json:"start"`
	Display int `json:"display"`
	Items   []struct {
		Title     string `json:"title"`
		Link      string `json:"link"`
		Image     string `json:"image"`
		LPrice    string `json:"lprice"`
		MallName  string `json:"mallName"`
		ProductID string `json:"productId"`
	} `json:"items"`
}

func (c *NaverClient) Search(ctx context.Context, keyword string, page, limit int) (*SearchResult, error) {
	var out naverSearchResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Naver-Client-Id", c.clientID).
		SetHeader("X-Naver-Client-Secret", c.clientSecret).
		SetQueryParams(map[string]string{
			"query":   keyword,
			"display": strconv.Itoa(limit),
			"start":   strconv.Itoa((page-1)*limit + 1),
			"sort":    "sim",
		}).
		SetResult(&out).
		Get(naverSearchURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("naver shopping api: %s", resp.Status())
	}

	raws := make([]RawProduct, 0, len(out.Items))
	for _, item := range out.Items {
		raws = append(raws, RawProduct{
			ID:           item.ProductID,
			Name:         stripHTMLTags(item.Title),
			CurrentPrice: item.LPrice,
			Brand:        item.MallName,
			ImageURL:     item.Image,
			URL:          item.Link,
		})
	}
	return &SearchResult{
		Products:   raws,
		Pagination: paginationFromTotal(page, limit, out.Total),
	}, nil
}

// stripHTMLTags drops the <b> highlighting Naver wraps around matched terms.
func stripHTMLTags(s string) string {
	return strings.TrimSpace(reHTMLTag.ReplaceAllString(s, ""))
}

func paginationFromTotal(page, limit, total int) Pagination {
	totalPages := 0
	if total > 0 && limit > 0 {
		totalPages = (total + limit - 1) / limit
	}
	return Pagination{
		CurrentPage:  page,
		TotalPages:   totalPages,
		TotalResults: total,
		HasNext:      page < totalPages,
	}
}
