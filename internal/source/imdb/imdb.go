package imdb

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"go-title-enrich/internal/dates"
	"go-title-enrich/internal/model"
	"go-title-enrich/internal/source"
)

const (
	defaultBaseURL = "https://www.imdb.com"
	requestTimeout = 15 * time.Second
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Client scrapes the film/TV database. All page-layout knowledge lives in
// this package; the pipeline only sees the source.Client contract.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// New returns a client with the standard request timeout.
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

func (c *Client) Name() string { return "imdb" }

// get fetches a page and classifies failures into the retry taxonomy.
func (c *Client) get(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &source.PermanentError{Err: err}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Timeouts and resets surface here; both are worth a retry.
		return nil, &source.TransientError{Err: err}
	}
	defer resp.Body.Close()

	if err := source.CheckStatus(resp); err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, &source.PermanentError{Err: fmt.Errorf("parse %s: %w", pageURL, err)}
	}
	return doc, nil
}

// Search runs the find page for a query and returns the first result, or
// nil when the source has nothing for it.
func (c *Client) Search(ctx context.Context, query string) (*model.Candidate, error) {
	searchURL := fmt.Sprintf("%s/find?q=%s", c.baseURL, url.QueryEscape(query))
	doc, err := c.get(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	first := doc.Find(`[data-testid="find-results-section-title"] li.ipc-metadata-list-summary-item`).First()
	if first.Length() == 0 {
		return nil, nil
	}

	link := first.Find("a").First()
	matchedTitle := strings.TrimSpace(link.Text())
	href, _ := link.Attr("href")
	id := titleIDFromHref(href)
	if matchedTitle == "" || id == "" {
		return nil, nil
	}

	releaseDate := strings.TrimSpace(first.Find(".ipc-metadata-list-summary-item__tl li:nth-of-type(1) span").Text())
	typeHint := strings.TrimSpace(first.Find("li:nth-of-type(2) span").First().Text())
	shape := dates.Classify(releaseDate)

	// The find page omits the type label for films; a bare single year is
	// enough to call it one.
	if typeHint == "" && shape.SingleDate {
		typeHint = "Film"
	}

	return &model.Candidate{
		MatchedTitle:    matchedTitle,
		SourceID:        id,
		SourceLink:      fmt.Sprintf("%s/title/%s/", c.baseURL, id),
		ReleaseDateText: releaseDate,
		TypeHint:        typeHint,
		Dates:           shape,
	}, nil
}

// titleIDFromHref pulls the title id out of hrefs like
// "/title/tt1234567/?ref_=fn_al_tt_1".
func titleIDFromHref(href string) string {
	parts := strings.Split(strings.TrimPrefix(href, "/"), "/")
	if len(parts) < 2 || parts[0] != "title" {
		return ""
	}
	return parts[1]
}

// FetchDetail scrapes the title page. Every selector is allowed to miss:
// a sparse page yields empty fields, not an error.
func (c *Client) FetchDetail(ctx context.Context, link string) (*model.Detail, error) {
	doc, err := c.get(ctx, link)
	if err != nil {
		return nil, err
	}

	detail := &model.Detail{
		Title:       strings.TrimSpace(doc.Find("span.hero__primary-text").First().Text()),
		Description: strings.TrimSpace(doc.Find(`[data-testid="plot"] span`).First().Text()),
		Length:      strings.TrimSpace(doc.Find(".sc-d8941411-2 li:nth-of-type(4)").First().Text()),
		Cover:       strings.TrimSpace(doc.Find(".ipc-media--poster-l img").First().AttrOr("src", "")),
		UserRating: model.UserRating{
			Rating:     strings.TrimSpace(doc.Find(".sc-69e49b85-1 div.sc-bde20123-0 span.sc-bde20123-1").First().Text()),
			NumRatings: strings.TrimSpace(doc.Find(".sc-69e49b85-1 div.sc-bde20123-3").First().Text()),
			OutOf:      strings.TrimSpace(doc.Find(".sc-69e49b85-1 div.sc-bde20123-0 span:nth-of-type(2)").First().Text()),
		},
	}

	dateText := strings.TrimSpace(doc.Find(".sc-d8941411-2 li:nth-of-type(2) a").First().Text())
	detail.Dates = dates.Classify(dateText)
	detail.ContentRating = strings.TrimSpace(doc.Find(".sc-d8941411-2 li:nth-of-type(3) a").First().Text())

	doc.Find(".ipc-chip-list--baseAlt div.ipc-chip-list__scroller span").Each(func(_ int, sel *goquery.Selection) {
		if g := strings.TrimSpace(sel.Text()); g != "" {
			detail.Genres = append(detail.Genres, g)
		}
	})

	return detail, nil
}

var episodesRe = regexp.MustCompile(`(\d+)\s+episodes?,\s+(\d{4})(?:[-–—](\d{4}))?`)

// FetchCredits scrapes the full-credits page. Categories come from the
// section headers; rows that don't parse are skipped rather than failing
// the whole call.
func (c *Client) FetchCredits(ctx context.Context, link string) (model.CreditGroups, error) {
	doc, err := c.get(ctx, strings.TrimRight(link, "/")+"/fullcredits")
	if err != nil {
		return nil, err
	}

	groups := make(model.CreditGroups)
	doc.Find("h4.dataHeaderWithBorder").Each(func(_ int, header *goquery.Selection) {
		category, _ := header.Attr("name")
		if category == "" {
			return
		}
		table := header.NextFiltered("table")
		var people []model.PersonCredit

		if category == "cast" {
			table.Find("tbody > tr").Each(func(_ int, row *goquery.Selection) {
				if row.Find("td[colspan]").Length() > 0 {
					return
				}
				if p, ok := c.castMember(row); ok {
					people = append(people, p)
				}
			})
		} else {
			table.Find("tbody > tr").Each(func(_ int, row *goquery.Selection) {
				if p, ok := c.crewMember(row); ok {
					people = append(people, p)
				}
			})
		}
		if len(people) > 0 {
			groups[category] = people
		}
	})

	return groups, nil
}

func (c *Client) castMember(row *goquery.Selection) (model.PersonCredit, bool) {
	nameElem := row.Find("td:not(.primary_photo) a").First()
	if nameElem.Length() == 0 {
		return model.PersonCredit{}, false
	}
	credit := model.PersonCredit{
		UUID:       uuid.New().String(),
		Name:       strings.TrimSpace(nameElem.Text()),
		SourceLink: c.personLink(nameElem.AttrOr("href", "")),
		Role:       "actor",
		Character:  strings.TrimSpace(row.Find("td.character a").First().Text()),
	}
	creditText := cleanCreditText(row.Find("td.character a.toggle-episodes").Text())
	credit.NumEpisodes, credit.Years = parseEpisodeYears(creditText)
	return credit, credit.Name != ""
}

func (c *Client) crewMember(row *goquery.Selection) (model.PersonCredit, bool) {
	nameElem := row.Find("td.name a").First()
	if nameElem.Length() == 0 {
		return model.PersonCredit{}, false
	}
	credit := model.PersonCredit{
		UUID:       uuid.New().String(),
		Name:       strings.TrimSpace(nameElem.Text()),
		SourceLink: c.personLink(nameElem.AttrOr("href", "")),
	}
	creditText := cleanCreditText(row.Find("td.credit").Text())
	if i := strings.IndexByte(creditText, '('); i >= 0 {
		credit.Role = strings.TrimSpace(creditText[:i])
	} else {
		credit.Role = creditText
	}
	credit.NumEpisodes, credit.Years = parseEpisodeYears(creditText)
	return credit, credit.Name != ""
}

func (c *Client) personLink(href string) string {
	if href == "" {
		return ""
	}
	return c.baseURL + strings.SplitN(href, "?", 2)[0]
}

func cleanCreditText(text string) string {
	text = strings.NewReplacer("/", "", "\\", "").Replace(text)
	return strings.Join(strings.Fields(text), " ")
}

func parseEpisodeYears(text string) (int, model.CreditYears) {
	m := episodesRe.FindStringSubmatch(text)
	if m == nil {
		return 0, model.CreditYears{}
	}
	n, _ := strconv.Atoi(m[1])
	years := model.CreditYears{Start: m[2], End: m[3]}
	if years.End == "" {
		years.End = years.Start
	}
	return n, years
}
