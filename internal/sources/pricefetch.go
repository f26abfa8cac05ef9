package sources

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"

	"pricewatch/internal/domain"
)

const browserUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// priceSelectors maps each marketplace to the CSS selector of the price
// node on its product detail page.
var priceSelectors = map[domain.Source]string{
	domain.SourceSSG:      ".ssg_price .blind",
	domain.SourceNaver:    ".price_num",
	domain.SourceEleventh: ".price",
}

// PageFetcher reads the live price off a product detail page. It is the
// concrete collaborator behind the tracker's price checks.
type PageFetcher struct {
	http *resty.Client
}

func NewPageFetcher() *PageFetcher {
	return &PageFetcher{
		http: resty.New().
			SetTimeout(10 * time.Second).
			SetHeader("User-Agent", browserUA),
	}
}

func (f *PageFetcher) FetchPrice(ctx context.Context, source domain.Source, productURL string) (int, error) {
	sel, ok := priceSelectors[source]
	if !ok {
		return 0, fmt.Errorf("no price selector for source %s", source)
	}

	resp, err := f.http.R().SetContext(ctx).Get(productURL)
	if err != nil {
		return 0, err
	}
	if resp.IsError() {
		return 0, fmt.Errorf("fetch %s: %s", productURL, resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", productURL, err)
	}

	text := strings.TrimSpace(doc.Find(sel).First().Text())
	price, ok := coercePrice(text)
	if !ok || price <= 0 {
		return 0, fmt.Errorf("no price found at %s (selector %q)", productURL, sel)
	}
	return price, nil
}
