package imdb

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"go-title-enrich/internal/source"
)

const findPage = `<html><body>
<section data-testid="find-results-section-title">
  <ul>
    <li class="ipc-metadata-list-summary-item">
      <a href="/title/tt5180504/?ref_=fn_al_tt_1">The Witcher</a>
      <ul class="ipc-metadata-list-summary-item__tl">
        <li><span>2019–</span></li>
        <li><span>TV Series</span></li>
      </ul>
    </li>
    <li class="ipc-metadata-list-summary-item">
      <a href="/title/tt0000001/">Something Else</a>
    </li>
  </ul>
</section>
</body></html>`

const findPageFilm = `<html><body>
<section data-testid="find-results-section-title">
  <ul>
    <li class="ipc-metadata-list-summary-item">
      <a href="/title/tt1160419/">Dune</a>
      <ul class="ipc-metadata-list-summary-item__tl">
        <li><span>2021</span></li>
      </ul>
    </li>
  </ul>
</section>
</body></html>`

const emptyFindPage = `<html><body>
<section data-testid="find-results-section-title"><ul></ul></section>
</body></html>`

const creditsPage = `<html><body>
<h4 class="dataHeaderWithBorder" name="directors">Directed by</h4>
<table><tbody>
  <tr><td class="name"><a href="/name/nm0000001/?ref_=x">Alice Director</a></td>
      <td class="credit">(8 episodes, 2019-2021)</td></tr>
</tbody></table>
<h4 class="dataHeaderWithBorder" name="cast">Cast</h4>
<table class="cast_list"><tbody>
  <tr><td colspan="4">Series Cast</td></tr>
  <tr><td class="primary_photo"><a href="/name/nm0000002/"><img/></a></td>
      <td><a href="/name/nm0000002/?ref_=y">Bob Actor</a></td>
      <td class="character"><a href="/c/1">Geralt</a> <a class="toggle-episodes" href="#">24 episodes, 2019-2023</a></td></tr>
</tbody></table>
</body></html>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewWithBase(srv.URL)
}

func TestSearchSeries(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q := r.URL.Query().Get("q"); q != "The Witcher" {
			t.Errorf("unexpected query %q", q)
		}
		w.Write([]byte(findPage))
	})

	got, err := c.Search(context.Background(), "The Witcher")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil {
		t.Fatal("Search returned nil candidate")
	}
	if got.MatchedTitle != "The Witcher" {
		t.Errorf("MatchedTitle = %q", got.MatchedTitle)
	}
	if got.SourceID != "tt5180504" {
		t.Errorf("SourceID = %q", got.SourceID)
	}
	if got.TypeHint != "TV Series" {
		t.Errorf("TypeHint = %q", got.TypeHint)
	}
	if !got.Dates.SeriesOngoing || got.Dates.StartDate != "2019" {
		t.Errorf("Dates = %+v, want ongoing from 2019", got.Dates)
	}
}

func TestSearchInfersFilmFromSingleDate(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(findPageFilm))
	})
	got, err := c.Search(context.Background(), "Dune")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got.TypeHint != "Film" {
		t.Errorf("TypeHint = %q, want Film", got.TypeHint)
	}
}

func TestSearchNoResult(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyFindPage))
	})
	got, err := c.Search(context.Background(), "zzzzz")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got != nil {
		t.Errorf("Search = %+v, want nil", got)
	}
}

func TestSearchRateLimited(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	_, err := c.Search(context.Background(), "anything")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := source.Classify(err); kind != source.KindRateLimited {
		t.Errorf("Classify = %v, want rate-limited", kind)
	}
}

func TestFetchCredits(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(creditsPage))
	})
	groups, err := c.FetchCredits(context.Background(), c.baseURL+"/title/tt5180504/")
	if err != nil {
		t.Fatalf("FetchCredits: %v", err)
	}

	directors := groups["directors"]
	if len(directors) != 1 {
		t.Fatalf("directors = %+v, want 1 entry", directors)
	}
	if directors[0].Name != "Alice Director" || directors[0].NumEpisodes != 8 {
		t.Errorf("director = %+v", directors[0])
	}
	if directors[0].Years.Start != "2019" || directors[0].Years.End != "2021" {
		t.Errorf("director years = %+v", directors[0].Years)
	}

	cast := groups["cast"]
	if len(cast) != 1 {
		t.Fatalf("cast = %+v, want 1 entry", cast)
	}
	if cast[0].Name != "Bob Actor" || cast[0].Character != "Geralt" || cast[0].NumEpisodes != 24 {
		t.Errorf("cast = %+v", cast[0])
	}
}

func TestTitleIDFromHref(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"/title/tt5180504/?ref_=fn_al_tt_1", "tt5180504"},
		{"/title/tt0000001/", "tt0000001"},
		{"/name/nm0000001/", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := titleIDFromHref(tt.href); got != tt.want {
			t.Errorf("titleIDFromHref(%q) = %q, want %q", tt.href, got, tt.want)
		}
	}
}
