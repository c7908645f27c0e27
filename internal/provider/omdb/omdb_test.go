package omdb

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/ebrainte/rd-dav-server/internal/provider"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func jsonResponse(status int, body string) *http.Response {
	resp := &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func TestSearchMovie(t *testing.T) {
	prov := New("testing", newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{
            "Title": "Furiosa: A Mad Max Saga",
            "Year": "2024",
            "imdbID": "tt12037194",
            "Type": "movie",
            "Response": "True"
        }`), nil
	}))

	got, err := prov.SearchMovie(context.Background(), "Furiosa A Mad Max Saga", 2024)
	if err != nil {
		t.Fatalf("SearchMovie() error = %v", err)
	}
	if got.Title != "Furiosa: A Mad Max Saga" {
		t.Errorf("Title = %q, want canonical colon form", got.Title)
	}
	if got.Year != 2024 {
		t.Errorf("Year = %d, want 2024", got.Year)
	}
}

func TestSearchMovieRetriesWithoutYear(t *testing.T) {
	calls := 0
	prov := New("testing", newTestClient(func(req *http.Request) (*http.Response, error) {
		calls++
		if calls == 1 {
			return jsonResponse(200, `{"Response": "False", "Error": "Movie not found!"}`), nil
		}
		return jsonResponse(200, `{
            "Title": "Blade Runner",
            "Year": "1982",
            "Type": "movie",
            "Response": "True"
        }`), nil
	}))

	got, err := prov.SearchMovie(context.Background(), "Blade Runner", 2019)
	if err != nil {
		t.Fatalf("SearchMovie() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("API calls = %d, want 2 (year then no year)", calls)
	}
	if got.Title != "Blade Runner" || got.Year != 1982 {
		t.Errorf("match = %+v, want Blade Runner (1982)", got)
	}
}

func TestSearchSeries(t *testing.T) {
	prov := New("testing", newTestClient(func(req *http.Request) (*http.Response, error) {
		if got := req.URL.Query().Get("type"); got != "series" {
			t.Errorf("type = %q, want series", got)
		}
		return jsonResponse(200, `{
            "Title": "Gen V",
            "Year": "2023–",
            "imdbID": "tt13159924",
            "Type": "series",
            "Response": "True"
        }`), nil
	}))

	got, err := prov.SearchSeries(context.Background(), "Gen V")
	if err != nil {
		t.Fatalf("SearchSeries() error = %v", err)
	}
	if got.Title != "Gen V" {
		t.Errorf("Title = %q, want Gen V", got.Title)
	}
	if got.Year != 2023 {
		t.Errorf("Year = %d, want first year of range", got.Year)
	}
}

func TestSearchSeriesNotFound(t *testing.T) {
	prov := New("testing", newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(200, `{"Response": "False", "Error": "Series not found!"}`), nil
	}))

	_, err := prov.SearchSeries(context.Background(), "No Such Show")
	if !errors.Is(err, provider.ErrNoResults) {
		t.Errorf("SearchSeries() error = %v, want ErrNoResults", err)
	}
}

func TestSearchMovieAuthError(t *testing.T) {
	prov := New("bad", newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(401, `{"Response": "False", "Error": "Invalid API key!"}`), nil
	}))

	_, err := prov.SearchMovie(context.Background(), "Anything", 0)
	var perr *provider.Error
	if !errors.As(err, &perr) || perr.Code != "AUTH_FAILED" {
		t.Errorf("SearchMovie() error = %v, want AUTH_FAILED provider error", err)
	}
}
