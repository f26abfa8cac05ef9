package sources

import (
	"context"
	"encoding/xml"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
)

const eleventhSearchURL = "https://openapi.11st.co.kr/openapi/OpenApiService.tmall"

// EleventhClient searches the 11st OpenAPI (XML product search).
type EleventhClient struct {
	http   *resty.Client
	apiKey string
}

func NewEleventhClient(apiKey string) *EleventhClient {
	return &EleventhClient{
		http:   resty.New().SetTimeout(10 * time.Second),
		apiKey: apiKey,
	}
}

type eleventhSearchResponse struct {
	XMLName    xml.Name `xml:"ProductSearchResponse"`
	TotalCount int      `xml:"Request>Arguments>TotalCount"`
	Products   []struct {
		ProductCode  string `xml:"ProductCode"`
		ProductName  string `xml:"ProductName"`
		ProductPrice string `xml:"ProductPrice"`
		SalePrice    string `xml:"SalePrice"`
		ProductImage string `xml:"ProductImage300"`
		DetailURL    string `xml:"DetailPageUrl"`
		SellerNick   string `xml:"SellerNick"`
	} `xml:"Products>Product"`
}

func (c *EleventhClient) Search(ctx context.Context, keyword string, page, limit int) (*SearchResult, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"key":        c.apiKey,
			"apiCode":    "ProductSearch",
			"keyword":    keyword,
			"pageNum":    strconv.Itoa(page),
			"pageSize":   strconv.Itoa(limit),
			"sortCd":     "CP", // popularity
			"targetType": "recommend",
		}).
		Get(eleventhSearchURL)
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, fmt.Errorf("11st api: %s", resp.Status())
	}

	var out eleventhSearchResponse
	if err := xml.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("11st api: decode response: %w", err)
	}

	raws := make([]RawProduct, 0, len(out.Products))
	for _, p := range out.Products {
		raws = append(raws, RawProduct{
			ID:           p.ProductCode,
			Name:         p.ProductName,
			Price:        p.ProductPrice,
			CurrentPrice: p.SalePrice,
			Brand:        p.SellerNick, // 11st exposes sellers, not brands
			ImageURL:     p.ProductImage,
			URL:          p.DetailURL,
		})
	}
	return &SearchResult{
		Products:   raws,
		Pagination: paginationFromTotal(page, limit, out.TotalCount),
	}, nil
}
