package boxoffice

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"go-title-enrich/internal/model"
	"go-title-enrich/internal/source"
)

const (
	defaultBaseURL = "https://www.the-numbers.com"
	pageSize       = 500
	requestTimeout = 15 * time.Second
)

// Client scrapes the paged production-budget table of the box-office
// database. Rows are keyed later against film records by folded title.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func New() *Client {
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
	}
}

// NewWithBase points the client at a different host; used by tests.
func NewWithBase(base string) *Client {
	c := New()
	c.baseURL = strings.TrimRight(base, "/")
	return c
}

// pageURL returns the URL for a 1-based page of the budget table. The site
// pages by row offset: page 1 is the bare URL, page 2 starts at row 501.
func (c *Client) pageURL(page int) string {
	base := c.baseURL + "/movie/budgets/all"
	if page <= 1 {
		return base
	}
	return fmt.Sprintf("%s/%d", base, (page-1)*pageSize+1)
}

// FetchPage scrapes one page of the table. An empty slice with no error
// means the table has run out; callers stop paging there.
func (c *Client) FetchPage(ctx context.Context, page int) ([]model.BoxOfficeRow, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(page), nil)
	if err != nil {
		return nil, &source.PermanentError{Err: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &source.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if err := source.CheckStatus(resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &source.PermanentError{Err: fmt.Errorf("parse budgets page %d: %w", page, err)}
	}

	var rows []model.BoxOfficeRow
	doc.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
		title := strings.TrimSpace(tr.Find("b a").Text())
		if title == "" {
			return
		}
		titleURL, _ := tr.Find("b a").Attr("href")
		rows = append(rows, model.BoxOfficeRow{
			RowUUID:     uuid.New().String(),
			Rank:        strings.TrimSpace(tr.Find("td:nth-of-type(1)").Text()),
			ReleaseDate: strings.TrimSpace(tr.Find("td > a").First().Text()),
			Title:       title,
			TitleURL:    c.baseURL + titleURL,
			ProdBudget:  strings.TrimSpace(tr.Find("td:nth-of-type(4)").Text()),
			DomGross:    strings.TrimSpace(tr.Find("td:nth-of-type(5)").Text()),
			WorldGross:  strings.TrimSpace(tr.Find("td:nth-of-type(6)").Text()),
		})
	})

	return rows, nil
}
