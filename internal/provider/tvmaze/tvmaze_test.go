package tvmaze

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ebrainte/rd-dav-server/internal/provider"
)

func TestSearchSeriesSingleSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/singlesearch/shows" {
			t.Errorf("path = %q, want /singlesearch/shows", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "Gen V" {
			t.Errorf("q = %q, want Gen V", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id": 59438, "name": "Gen V", "premiered": "2023-09-29"}`))
	}))
	defer srv.Close()

	prov := NewWithBaseURL(srv.Client(), srv.URL)
	got, err := prov.SearchSeries(context.Background(), "Gen V")
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if got.Title != "Gen V" || got.Year != 2023 {
		t.Errorf("match = %+v, want Gen V (2023)", got)
	}
}

func TestSearchSeriesFallsBackToFullSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/singlesearch/shows":
			http.NotFound(w, r)
		case "/search/shows":
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[
                {"score": 0.6, "show": {"name": "The Boys Presents: Diabolical", "premiered": "2022-03-04"}},
                {"score": 0.9, "show": {"name": "The Boys", "premiered": "2019-07-26"}}
            ]`))
		default:
			t.Errorf("unexpected path %q", r.URL.Path)
		}
	}))
	defer srv.Close()

	prov := NewWithBaseURL(srv.Client(), srv.URL)
	got, err := prov.SearchSeries(context.Background(), "The Boys")
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if got.Title != "The Boys" {
		t.Errorf("Title = %q, want highest scored entry", got.Title)
	}
	if got.Year != 2019 {
		t.Errorf("Year = %d, want 2019", got.Year)
	}
}

func TestSearchSeriesNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search/shows" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`[]`))
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	prov := NewWithBaseURL(srv.Client(), srv.URL)
	_, err := prov.SearchSeries(context.Background(), "No Such Show")
	if !errors.Is(err, provider.ErrNoResults) {
		t.Errorf("SearchSeries() error = %v, want ErrNoResults", err)
	}
}

func TestSearchSeriesCachesHits(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name": "Gen V", "premiered": "2023-09-29"}`))
	}))
	defer srv.Close()

	prov := NewWithBaseURL(srv.Client(), srv.URL)
	prov.SearchSeries(context.Background(), "Gen V")
	prov.SearchSeries(context.Background(), "Gen V")

	if calls != 1 {
		t.Errorf("API calls = %d, want 1 (second lookup served from cache)", calls)
	}
}

func TestSearchMovieAlwaysMisses(t *testing.T) {
	prov := NewWithBaseURL(nil, "http://127.0.0.1:0")
	_, err := prov.SearchMovie(context.Background(), "Furiosa", 2024)
	if !errors.Is(err, provider.ErrNoResults) {
		t.Errorf("SearchMovie() error = %v, want ErrNoResults", err)
	}
}
