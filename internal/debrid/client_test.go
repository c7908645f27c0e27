package debrid

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"
)

const torrentsMultistatus = `<?xml version="1.0" encoding="utf-8"?>
<D:multistatus xmlns:D="DAV:">
  <D:response>
    <D:href>/torrents/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
  <D:response>
    <D:href>/torrents/Furiosa.A.Mad.Max.Saga.2024.2160p.BluRay.x265-GROUP/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
  <D:response>
    <D:href>/torrents/Generace%20V_S01E07_Virus.mkv</D:href>
    <D:propstat><D:prop>
      <D:resourcetype/>
      <D:getcontentlength>734003200</D:getcontentlength>
    </D:prop></D:propstat>
  </D:response>
</D:multistatus>`

const furiosaMultistatus = `<?xml version="1.0" encoding="utf-8"?>
<D:multistatus xmlns:D="DAV:">
  <D:response>
    <D:href>/torrents/Furiosa.A.Mad.Max.Saga.2024.2160p.BluRay.x265-GROUP/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
  <D:response>
    <D:href>/torrents/Furiosa.A.Mad.Max.Saga.2024.2160p.BluRay.x265-GROUP/Furiosa.2024.mkv</D:href>
    <D:propstat><D:prop>
      <D:resourcetype/>
      <D:getcontentlength>4294967296</D:getcontentlength>
    </D:prop></D:propstat>
  </D:response>
  <D:response>
    <D:href>/torrents/Furiosa.A.Mad.Max.Saga.2024.2160p.BluRay.x265-GROUP/sample/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
</D:multistatus>`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "alice" || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		switch {
		case r.Method == "PROPFIND" && r.URL.Path == "/torrents":
			if got := r.Header.Get("Depth"); got != "1" {
				t.Errorf("Depth = %q, want 1", got)
			}
			w.WriteHeader(http.StatusMultiStatus)
			io.WriteString(w, torrentsMultistatus)
		case r.Method == "PROPFIND" && r.URL.Path == "/torrents/Furiosa.A.Mad.Max.Saga.2024.2160p.BluRay.x265-GROUP":
			w.WriteHeader(http.StatusMultiStatus)
			io.WriteString(w, furiosaMultistatus)
		case r.Method == http.MethodGet:
			content := "0123456789"
			if rng := r.Header.Get("Range"); rng != "" {
				w.Header().Set("Content-Range", rng)
				w.WriteHeader(http.StatusPartialContent)
				switch rng {
				case "bytes=4-":
					content = "456789"
				case "bytes=2-4":
					content = "234"
				}
			}
			io.WriteString(w, content)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
}

func TestListTorrents(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "alice", "hunter2")
	got, err := c.ListTorrents(context.Background())
	if err != nil {
		t.Fatalf("ListTorrents() error = %v", err)
	}

	want := []Torrent{
		{
			Name: "Furiosa.A.Mad.Max.Saga.2024.2160p.BluRay.x265-GROUP",
			Files: []File{
				{
					Name: "Furiosa.2024.mkv",
					Href: "/torrents/Furiosa.A.Mad.Max.Saga.2024.2160p.BluRay.x265-GROUP/Furiosa.2024.mkv",
					Size: 4294967296,
				},
			},
		},
		{
			Name: "Generace V_S01E07_Virus.mkv",
			Files: []File{
				{
					Name: "Generace V_S01E07_Virus.mkv",
					Href: "/torrents/Generace%20V_S01E07_Virus.mkv",
					Size: 734003200,
				},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListTorrents() mismatch (-want +got):\n%s", diff)
	}
}

func TestListTorrentsSkipsUnlistableFolder(t *testing.T) {
	const listing = `<?xml version="1.0" encoding="utf-8"?>
<D:multistatus xmlns:D="DAV:">
  <D:response>
    <D:href>/torrents/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
  <D:response>
    <D:href>/torrents/Bad.Torrent/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
  <D:response>
    <D:href>/torrents/Good.Movie.2020/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
</D:multistatus>`

	const goodListing = `<?xml version="1.0" encoding="utf-8"?>
<D:multistatus xmlns:D="DAV:">
  <D:response>
    <D:href>/torrents/Good.Movie.2020/</D:href>
    <D:propstat><D:prop><D:resourcetype><D:collection/></D:resourcetype></D:prop></D:propstat>
  </D:response>
  <D:response>
    <D:href>/torrents/Good.Movie.2020/movie.mkv</D:href>
    <D:propstat><D:prop>
      <D:resourcetype/>
      <D:getcontentlength>100</D:getcontentlength>
    </D:prop></D:propstat>
  </D:response>
</D:multistatus>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/torrents":
			w.WriteHeader(http.StatusMultiStatus)
			io.WriteString(w, listing)
		case "/torrents/Bad.Torrent":
			w.WriteHeader(http.StatusInternalServerError)
		case "/torrents/Good.Movie.2020":
			w.WriteHeader(http.StatusMultiStatus)
			io.WriteString(w, goodListing)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "alice", "hunter2")
	got, err := c.ListTorrents(context.Background())
	if err != nil {
		t.Fatalf("ListTorrents() error = %v, want the bad folder skipped", err)
	}

	want := []Torrent{
		{
			Name: "Good.Movie.2020",
			Files: []File{
				{Name: "movie.mkv", Href: "/torrents/Good.Movie.2020/movie.mkv", Size: 100},
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ListTorrents() mismatch (-want +got):\n%s", diff)
	}
}

func TestListTorrentsAuthFailure(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "alice", "wrong")
	if _, err := c.ListTorrents(context.Background()); err == nil {
		t.Fatal("ListTorrents() error = nil, want auth failure")
	}
}

func TestOpenFull(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()

	c := NewClient(srv.URL, "alice", "hunter2")
	body, err := c.Open(context.Background(), "/torrents/some.mkv", 0, 0)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "0123456789" {
		t.Errorf("content = %q, want full body", data)
	}
}

func TestOpenRanges(t *testing.T) {
	srv := newTestServer(t)
	defer srv.Close()
	c := NewClient(srv.URL, "alice", "hunter2")

	tests := []struct {
		name           string
		offset, length int64
		want           string
	}{
		{name: "OffsetToEnd", offset: 4, want: "456789"},
		{name: "OffsetAndLength", offset: 2, length: 3, want: "234"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, err := c.Open(context.Background(), "/torrents/some.mkv", tt.offset, tt.length)
			if err != nil {
				t.Fatalf("Open() error = %v", err)
			}
			defer body.Close()

			data, _ := io.ReadAll(body)
			if string(data) != tt.want {
				t.Errorf("content = %q, want %q", data, tt.want)
			}
		})
	}
}

func TestParseMultistatusSkipsParent(t *testing.T) {
	entries, err := parseMultistatus([]byte(torrentsMultistatus), "/torrents")
	if err != nil {
		t.Fatalf("parseMultistatus() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len(entries) = %d, want 2 (parent skipped)", len(entries))
	}
	if !entries[0].isDir {
		t.Error("first entry should be a collection")
	}
	if entries[1].name != "Generace V_S01E07_Virus.mkv" {
		t.Errorf("name = %q, want decoded file name", entries[1].name)
	}
}
