package netease_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ncmplay/internal/netease"
)

func TestSearchParsesSongs(t *testing.T) {
	var gotQuery, gotLimit, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/cloudsearch/pc" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("s")
		gotLimit = r.URL.Query().Get("limit")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"code":200,"result":{"songs":[
			{"id":186016,"name":"晴天","ar":[{"name":"周杰伦"},{"name":" "}],"al":{"name":"叶惠美","picUrl":"http://img/1.jpg"}},
			{"id":2,"name":"other"}
		]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := netease.New(server.URL+"/", "ncmplay-test")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	songs, err := client.Search(context.Background(), "晴天 周杰伦", 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if gotQuery != "晴天 周杰伦" || gotLimit != "1" || gotAgent != "ncmplay-test" {
		t.Fatalf("unexpected request query=%q limit=%q agent=%q", gotQuery, gotLimit, gotAgent)
	}
	if len(songs) != 1 {
		t.Fatalf("expected limit to cap results, got %d", len(songs))
	}
	song := songs[0]
	if song.ID != 186016 || song.Name != "晴天" || song.Album != "叶惠美" || song.CoverURL != "http://img/1.jpg" {
		t.Fatalf("unexpected song %+v", song)
	}
	if song.ArtistNames() != "周杰伦" {
		t.Fatalf("expected blank artist names to be skipped, got %q", song.ArtistNames())
	}
}

func TestSearchEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"result":{}}`))
	}))
	t.Cleanup(server.Close)

	client, _ := netease.New(server.URL, "")
	songs, err := client.Search(context.Background(), "nothing", 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(songs) != 0 {
		t.Fatalf("expected no songs, got %d", len(songs))
	}
}

func TestSearchRejectsBadResponses(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{name: "http status", status: http.StatusBadGateway, body: `{}`, want: "returned 502"},
		{name: "invalid json", status: http.StatusOK, body: `{"result":`, want: "invalid JSON"},
		{name: "service code", status: http.StatusOK, body: `{"code":-460}`, want: "service code -460"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			t.Cleanup(server.Close)

			client, _ := netease.New(server.URL, "")
			_, err := client.Search(context.Background(), "q", 1)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLyricAndCoverURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/song/lyric":
			if r.URL.Query().Get("id") != "42" || r.URL.Query().Get("lv") != "-1" {
				t.Errorf("unexpected lyric query %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"code":200,"lrc":{"lyric":"[00:01.00]hello"}}`))
		case "/api/v3/song/detail":
			if r.URL.Query().Get("c") != `[{"id":42}]` {
				t.Errorf("unexpected detail query %s", r.URL.RawQuery)
			}
			_, _ = w.Write([]byte(`{"code":200,"songs":[{"al":{"picUrl":"http://img/42.jpg"}}]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	client, _ := netease.New(server.URL, "")
	lyric, err := client.Lyric(context.Background(), 42)
	if err != nil || lyric != "[00:01.00]hello" {
		t.Fatalf("Lyric = %q, %v", lyric, err)
	}
	cover, err := client.CoverURL(context.Background(), 42)
	if err != nil || cover != "http://img/42.jpg" {
		t.Fatalf("CoverURL = %q, %v", cover, err)
	}
}

func TestLyricMissingIsEmpty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"code":200,"nolyric":true}`))
	}))
	t.Cleanup(server.Close)

	client, _ := netease.New(server.URL, "")
	lyric, err := client.Lyric(context.Background(), 7)
	if err != nil || lyric != "" {
		t.Fatalf("expected empty lyric, got %q, %v", lyric, err)
	}
}

func TestFetchCover(t *testing.T) {
	image := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 1, 2, 3}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.jpg" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write(image)
	}))
	t.Cleanup(server.Close)

	client, _ := netease.New("http://unused.invalid", "", netease.WithHTTPClient(server.Client()))
	data, err := client.FetchCover(context.Background(), server.URL+"/cover.png")
	if err != nil {
		t.Fatalf("FetchCover: %v", err)
	}
	if !bytes.Equal(data, image) {
		t.Fatalf("unexpected cover bytes %v", data)
	}
	if _, err := client.FetchCover(context.Background(), server.URL+"/missing.jpg"); err == nil {
		t.Fatal("expected error for 404 cover")
	}
	if _, err := client.FetchCover(context.Background(), " "); err == nil {
		t.Fatal("expected error for blank url")
	}
}

func TestNewRequiresBaseURL(t *testing.T) {
	if _, err := netease.New("  ", ""); err == nil {
		t.Fatal("expected error for empty base url")
	}
}
