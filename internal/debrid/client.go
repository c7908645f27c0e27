// Package debrid is a client for a debrid service's WebDAV surface. It
// lists the flat torrent collection and streams file content with range
// requests; it never writes to the remote.
package debrid

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ebrainte/rd-dav-server/internal/log"
)

// TorrentsPath is where the service exposes the torrent collection.
const TorrentsPath = "/torrents"

// File is a single file inside a torrent.
type File struct {
	Name string
	// Href is the URL-encoded path on the remote server, used verbatim
	// for streaming.
	Href string
	Size int64
}

// Torrent is one torrent folder with its files.
type Torrent struct {
	Name  string
	Files []File
}

// Client talks to the remote WebDAV server. Listing and streaming use
// separate HTTP clients: directory listings should fail fast, while a
// media stream can legitimately stay open for hours.
type Client struct {
	baseURL      string
	username     string
	password     string
	listClient   *http.Client
	streamClient *http.Client
}

// NewClient creates a client for the given endpoint and credentials.
func NewClient(baseURL, username, password string) *Client {
	return &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		username:     username,
		password:     password,
		listClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
}

// ListTorrents fetches the torrent collection: one PROPFIND for the
// collection itself, then one per torrent folder for its files. A
// torrent that is a bare file (no folder) becomes a single-file
// torrent. A folder whose listing fails is logged and skipped so one
// bad torrent cannot take down the rest of the catalog; only a failure
// of the collection listing itself is returned.
func (c *Client) ListTorrents(ctx context.Context) ([]Torrent, error) {
	entries, err := c.propfind(ctx, TorrentsPath)
	if err != nil {
		return nil, fmt.Errorf("list torrents: %w", err)
	}

	torrents := make([]Torrent, 0, len(entries))
	for _, e := range entries {
		if !e.isDir {
			torrents = append(torrents, Torrent{
				Name:  e.name,
				Files: []File{{Name: e.name, Href: e.href, Size: e.size}},
			})
			continue
		}

		files, err := c.listFiles(ctx, e)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("list torrents: %w", ctx.Err())
			}
			log.Warn("skipping unlistable torrent", "torrent", e.name, "error", err)
			continue
		}
		torrents = append(torrents, Torrent{Name: e.name, Files: files})
	}
	return torrents, nil
}

func (c *Client) listFiles(ctx context.Context, torrent entry) ([]File, error) {
	decoded, err := url.PathUnescape(torrent.href)
	if err != nil {
		decoded = torrent.href
	}

	entries, err := c.propfind(ctx, decoded)
	if err != nil {
		return nil, err
	}

	// The remote keeps torrents flat, so subdirectories are skipped.
	files := make([]File, 0, len(entries))
	for _, e := range entries {
		if e.isDir {
			continue
		}
		files = append(files, File{Name: e.name, Href: e.href, Size: e.size})
	}
	return files, nil
}

// Open streams file content starting at offset. A length of zero or
// less means "to the end". The caller owns the returned body.
func (c *Client) Open(ctx context.Context, href string, offset, length int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+href, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)

	if offset > 0 || length > 0 {
		if length > 0 {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", offset, offset+length-1))
		} else {
			req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
		}
	}

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", href, err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		resp.Body.Close()
		return nil, fmt.Errorf("open %s: unexpected status %d", href, resp.StatusCode)
	}
	return resp.Body, nil
}

// entry is one parsed multistatus response element.
type entry struct {
	name  string
	href  string
	isDir bool
	size  int64
}

// multistatus mirrors the WebDAV PROPFIND response shape.
type multistatus struct {
	Responses []msResponse `xml:"response"`
}

type msResponse struct {
	Href      string       `xml:"href"`
	Propstats []msPropstat `xml:"propstat"`
}

type msPropstat struct {
	Prop msProp `xml:"prop"`
}

type msProp struct {
	ResourceType  msResourceType `xml:"resourcetype"`
	ContentLength string         `xml:"getcontentlength"`
}

type msResourceType struct {
	Collection *struct{} `xml:"collection"`
}

func (c *Client) propfind(ctx context.Context, path string) ([]entry, error) {
	escaped := (&url.URL{Path: path}).EscapedPath()
	req, err := http.NewRequestWithContext(ctx, "PROPFIND", c.baseURL+escaped, nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.username, c.password)
	req.Header.Set("Depth", "1")
	req.Header.Set("Content-Type", "application/xml")

	resp, err := c.listClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMultiStatus && resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("propfind %s: unexpected status %d", path, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return parseMultistatus(body, path)
}

// parseMultistatus extracts child entries from a multistatus document,
// skipping the response for the queried collection itself.
func parseMultistatus(body []byte, parentPath string) ([]entry, error) {
	var ms multistatus
	if err := xml.Unmarshal(body, &ms); err != nil {
		return nil, fmt.Errorf("parse multistatus: %w", err)
	}

	parent := strings.TrimRight(parentPath, "/")
	entries := make([]entry, 0, len(ms.Responses))

	for _, r := range ms.Responses {
		href := strings.TrimRight(strings.TrimSpace(r.Href), "/")
		if href == "" {
			continue
		}
		decoded, err := url.PathUnescape(href)
		if err != nil {
			decoded = href
		}
		if decoded == parent {
			continue
		}

		e := entry{
			href: href,
			name: decoded[strings.LastIndex(decoded, "/")+1:],
		}
		for _, ps := range r.Propstats {
			if ps.Prop.ResourceType.Collection != nil {
				e.isDir = true
			}
			if ps.Prop.ContentLength != "" {
				if size, err := strconv.ParseInt(strings.TrimSpace(ps.Prop.ContentLength), 10, 64); err == nil {
					e.size = size
				}
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}
