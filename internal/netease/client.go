package netease

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	maxCoverBytes = 20 << 20
	// serviceCodeOK is the API-level "code" reported by successful responses.
	serviceCodeOK = 200
)

// Song is a single search match.
type Song struct {
	ID       int64
	Name     string
	Artists  []string
	Album    string
	CoverURL string
}

// ArtistNames joins the credited artists with "/".
func (s Song) ArtistNames() string {
	return strings.Join(s.Artists, "/")
}

// Searcher defines the lookups the metadata resolver depends on.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Song, error)
	Lyric(ctx context.Context, songID int64) (string, error)
	CoverURL(ctx context.Context, songID int64) (string, error)
	FetchCover(ctx context.Context, coverURL string) ([]byte, error)
}

// Client talks to the music search service over HTTP.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Searcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// New creates a search client rooted at baseURL.
func New(baseURL, userAgent string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("search base url required")
	}
	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search runs a keyword song search and returns at most limit matches in
// service order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Song, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 {
		limit = 1
	}
	params := url.Values{}
	params.Set("s", query)
	params.Set("type", "1")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", "0")

	body, err := c.getJSON(ctx, "/api/cloudsearch/pc", params)
	if err != nil {
		return nil, err
	}

	songs := gjson.GetBytes(body, "result.songs").Array()
	out := make([]Song, 0, len(songs))
	for _, item := range songs {
		song := Song{
			ID:       item.Get("id").Int(),
			Name:     item.Get("name").String(),
			Album:    item.Get("al.name").String(),
			CoverURL: item.Get("al.picUrl").String(),
		}
		for _, artist := range item.Get("ar").Array() {
			if name := strings.TrimSpace(artist.Get("name").String()); name != "" {
				song.Artists = append(song.Artists, name)
			}
		}
		out = append(out, song)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Lyric returns the LRC text for songID, or "" when the song has none.
func (c *Client) Lyric(ctx context.Context, songID int64) (string, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(songID, 10))
	params.Set("lv", "-1")
	params.Set("kv", "-1")
	params.Set("tv", "-1")

	body, err := c.getJSON(ctx, "/api/song/lyric", params)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "lrc.lyric").String(), nil
}

// CoverURL looks up the album art URL from the track detail endpoint.
func (c *Client) CoverURL(ctx context.Context, songID int64) (string, error) {
	params := url.Values{}
	params.Set("c", fmt.Sprintf(`[{"id":%d}]`, songID))

	body, err := c.getJSON(ctx, "/api/v3/song/detail", params)
	if err != nil {
		return "", err
	}
	return gjson.GetBytes(body, "songs.0.al.picUrl").String(), nil
}

// FetchCover downloads image bytes from coverURL.
func (c *Client) FetchCover(ctx context.Context, coverURL string) ([]byte, error) {
	coverURL = strings.TrimSpace(coverURL)
	if coverURL == "" {
		return nil, errors.New("cover url must not be empty")
	}
	resp, latency, err := c.do(ctx, coverURL)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cover fetch returned %d (latency=%v)", resp.StatusCode, latency)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxCoverBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read cover: %w", err)
	}
	if len(data) > maxCoverBytes {
		return nil, fmt.Errorf("cover exceeds %d bytes", maxCoverBytes)
	}
	if len(data) == 0 {
		return nil, errors.New("cover response was empty")
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values) ([]byte, error) {
	endpoint, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("parse search url: %w", err)
	}
	endpoint.RawQuery = params.Encode()

	resp, latency, err := c.do(ctx, endpoint.String())
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned %d (latency=%v)", path, resp.StatusCode, latency)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s returned invalid JSON", path)
	}
	if code := gjson.GetBytes(body, "code"); code.Exists() && code.Int() != serviceCodeOK {
		return nil, fmt.Errorf("%s returned service code %d", path, code.Int())
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, target string) (*http.Response, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Referer", c.baseURL+"/")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, latency, fmt.Errorf("execute request (latency=%v): %w", latency, err)
	}
	return resp, latency, nil
}
