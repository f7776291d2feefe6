package resolver_test

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ncmplay/internal/netease"
	"ncmplay/internal/resolver"
	"ncmplay/internal/testsupport"
)

type fakeSearcher struct {
	mu        sync.Mutex
	songs     []netease.Song
	searchErr error
	lyric     string
	lyricErr  error
	coverURL  string
	coverErr  error
	cover     []byte
	fetchErr  error
	block     bool

	keywords []string
	lyricIDs []int64
}

func (f *fakeSearcher) Search(ctx context.Context, query string, limit int) ([]netease.Song, error) {
	f.mu.Lock()
	f.keywords = append(f.keywords, query)
	f.mu.Unlock()
	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return f.songs, f.searchErr
}

func (f *fakeSearcher) Lyric(_ context.Context, id int64) (string, error) {
	f.mu.Lock()
	f.lyricIDs = append(f.lyricIDs, id)
	f.mu.Unlock()
	return f.lyric, f.lyricErr
}

func (f *fakeSearcher) CoverURL(context.Context, int64) (string, error) {
	return f.coverURL, f.coverErr
}

func (f *fakeSearcher) FetchCover(context.Context, string) ([]byte, error) {
	return f.cover, f.fetchErr
}

func TestParseFilename(t *testing.T) {
	cases := []struct {
		hint, title, artist string
	}{
		{"Artist - Title.mp3", "Title", "Artist"},
		{"justtitle.mp3", "justtitle", ""},
		{"/music/周杰伦 - 晴天.flac", "晴天", "周杰伦"},
		{"Some_Band-Song_Name.mp3", "Song Name", "Some Band"},
		{"A - B - C.mp3", "B - C", "A"},
		{"Ａｒｔｉｓｔ－Ｔｉｔｌｅ.mp3", "Title", "Artist"},
		{"", "", ""},
	}
	for _, tc := range cases {
		title, artist := resolver.ParseFilename(tc.hint)
		if title != tc.title || artist != tc.artist {
			t.Errorf("ParseFilename(%q) = (%q, %q), want (%q, %q)", tc.hint, title, artist, tc.title, tc.artist)
		}
	}
}

func TestResolveUsesFirstMatch(t *testing.T) {
	cover := testsupport.PNG(t, color.RGBA{R: 200, A: 255})
	searcher := &fakeSearcher{
		songs: []netease.Song{
			{ID: 9, Name: "晴天", Artists: []string{"周杰伦", "Guest"}, Album: "叶惠美"},
			{ID: 10, Name: "wrong"},
		},
		lyric:    "[00:01.00]line",
		coverURL: "http://img/9.png",
		cover:    cover,
	}
	r := resolver.New(searcher)

	tags := r.Resolve(context.Background(), resolver.Query{FilenameHint: "周杰伦 - 晴天.mp3"})
	if tags.Title != "晴天" || tags.Artist != "周杰伦/Guest" || tags.Album != "叶惠美" {
		t.Fatalf("unexpected tags %+v", tags)
	}
	if tags.Lyrics != "[00:01.00]line" {
		t.Fatalf("unexpected lyrics %q", tags.Lyrics)
	}
	if !bytes.Equal(tags.Cover, cover) || tags.CoverMIME != "image/png" {
		t.Fatalf("unexpected cover mime %q", tags.CoverMIME)
	}
	if len(searcher.keywords) != 1 || searcher.keywords[0] != "晴天 周杰伦" {
		t.Fatalf("unexpected keywords %v", searcher.keywords)
	}
	if len(searcher.lyricIDs) != 1 || searcher.lyricIDs[0] != 9 {
		t.Fatalf("expected lyric lookup for first match, got %v", searcher.lyricIDs)
	}
}

func TestResolveTitleOnlyFallsBackToQueryArtist(t *testing.T) {
	searcher := &fakeSearcher{songs: []netease.Song{{ID: 1, Name: "justtitle"}}}
	r := resolver.New(searcher)

	tags := r.Resolve(context.Background(), resolver.Query{FilenameHint: "justtitle.mp3", Artist: "Known"})
	if searcher.keywords[0] != "justtitle Known" {
		t.Fatalf("unexpected keyword %q", searcher.keywords[0])
	}
	if tags.Artist != "Known" {
		t.Fatalf("expected query artist fallback, got %q", tags.Artist)
	}
}

func TestResolveLyricFailureIsIsolated(t *testing.T) {
	searcher := &fakeSearcher{
		songs:    []netease.Song{{ID: 3, Name: "Title", Artists: []string{"Artist"}}},
		lyricErr: errors.New("lyric service down"),
		coverURL: "http://img/3.jpg",
		cover:    []byte{0xFF, 0xD8, 0xFF, 0xE0, 0, 0x10, 'J', 'F', 'I', 'F'},
	}
	tags := resolver.New(searcher).Resolve(context.Background(), resolver.Query{FilenameHint: "Artist - Title.mp3"})
	if tags.Title != "Title" || tags.Artist != "Artist" {
		t.Fatalf("expected title and artist despite lyric failure, got %+v", tags)
	}
	if tags.Lyrics != "" {
		t.Fatalf("expected empty lyrics, got %q", tags.Lyrics)
	}
	if len(tags.Cover) == 0 || tags.CoverMIME != "image/jpeg" {
		t.Fatalf("expected cover despite lyric failure, mime %q", tags.CoverMIME)
	}
}

func TestResolveCoverDetailFailureFallsBackToSearchURL(t *testing.T) {
	searcher := &fakeSearcher{
		songs:    []netease.Song{{ID: 4, Name: "T", Artists: []string{"A"}, CoverURL: "http://img/search.jpg"}},
		coverErr: errors.New("detail failed"),
		cover:    []byte("GIF89a"),
	}
	tags := resolver.New(searcher).Resolve(context.Background(), resolver.Query{FilenameHint: "A - T.mp3"})
	if string(tags.Cover) != "GIF89a" {
		t.Fatalf("expected cover from search url, got %q", tags.Cover)
	}
}

func TestResolveSearchFailureYieldsEmptyTags(t *testing.T) {
	searcher := &fakeSearcher{searchErr: errors.New("boom")}
	tags := resolver.New(searcher).Resolve(context.Background(), resolver.Query{FilenameHint: "A - T.mp3"})
	if !tags.Empty() {
		t.Fatalf("expected empty tags, got %+v", tags)
	}
}

func TestResolveNoMatchYieldsEmptyTags(t *testing.T) {
	tags := resolver.New(&fakeSearcher{}).Resolve(context.Background(), resolver.Query{FilenameHint: "nothing.mp3"})
	if !tags.Empty() {
		t.Fatalf("expected empty tags, got %+v", tags)
	}
}

func TestResolveSearchTimeout(t *testing.T) {
	searcher := &fakeSearcher{block: true}
	r := resolver.New(searcher, resolver.WithTimeout(20*time.Millisecond))

	start := time.Now()
	tags := r.Resolve(context.Background(), resolver.Query{FilenameHint: "slow.mp3"})
	if !tags.Empty() {
		t.Fatalf("expected empty tags, got %+v", tags)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout not applied, took %v", elapsed)
	}
}

func TestResolveCompleteTagsIssuesNoLookup(t *testing.T) {
	searcher := &fakeSearcher{lyric: "[00:02.00]x"}
	r := resolver.New(searcher)

	for _, q := range []resolver.Query{
		{Title: "T", Artist: "A"},
		{Title: "T", Artist: "A", TrackID: 77},
	} {
		if tags := r.Resolve(context.Background(), q); !tags.Empty() {
			t.Fatalf("expected empty tags for %+v, got %+v", q, tags)
		}
	}
	if len(searcher.keywords) != 0 || len(searcher.lyricIDs) != 0 {
		t.Fatalf("expected no lookups, got keywords=%v lyricIDs=%v", searcher.keywords, searcher.lyricIDs)
	}
}

func TestResolveTaggedLyrics(t *testing.T) {
	searcher := &fakeSearcher{lyric: "[00:02.00]x"}
	cfg := testsupport.NewConfig(t, testsupport.WithTaggedLyrics())
	r := resolver.NewFromConfig(cfg, searcher, nil)

	tags := r.Resolve(context.Background(), resolver.Query{Title: "T", Artist: "A"})
	if !tags.Empty() || len(searcher.keywords) != 0 || len(searcher.lyricIDs) != 0 {
		t.Fatalf("expected no lookups without a track id, got tags=%+v keywords=%v", tags, searcher.keywords)
	}

	tags = r.Resolve(context.Background(), resolver.Query{Title: "T", Artist: "A", TrackID: 77})
	if tags.Lyrics != "[00:02.00]x" || tags.Title != "" || len(searcher.keywords) != 0 {
		t.Fatalf("expected lyric-only lookup, got %+v", tags)
	}
	if len(searcher.lyricIDs) != 1 || searcher.lyricIDs[0] != 77 {
		t.Fatalf("expected lyric lookup by track id, got %v", searcher.lyricIDs)
	}
}

func TestResolveDisabled(t *testing.T) {
	searcher := &fakeSearcher{songs: []netease.Song{{ID: 1, Name: "x"}}}
	cfg := testsupport.NewConfig(t, testsupport.WithResolverDisabled())
	tags := resolver.NewFromConfig(cfg, searcher, nil).Resolve(context.Background(), resolver.Query{FilenameHint: "a - b.mp3"})
	if !tags.Empty() || len(searcher.keywords) != 0 {
		t.Fatalf("expected disabled resolver to do nothing, got %+v", tags)
	}
}

func TestResolveAgainstHTTPService(t *testing.T) {
	cover := testsupport.PNG(t, color.RGBA{B: 90, A: 255})
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/cloudsearch/pc":
			_, _ = w.Write([]byte(`{"code":200,"result":{"songs":[{"id":5,"name":"Title","ar":[{"name":"Artist"}],"al":{"name":"Album"}}]}}`))
		case "/api/song/lyric":
			w.WriteHeader(http.StatusInternalServerError)
		case "/api/v3/song/detail":
			_, _ = w.Write([]byte(`{"code":200,"songs":[{"al":{"picUrl":"` + server.URL + `/cover.png"}}]}`))
		case "/cover.png":
			_, _ = w.Write(cover)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t, testsupport.WithSearchBaseURL(server.URL))
	client, err := netease.New(cfg.Search.BaseURL, cfg.Search.UserAgent)
	if err != nil {
		t.Fatalf("netease.New: %v", err)
	}
	tags := resolver.NewFromConfig(cfg, client, nil).Resolve(context.Background(), resolver.Query{FilenameHint: "Artist - Title.mp3"})
	if tags.Title != "Title" || tags.Artist != "Artist" || tags.Album != "Album" {
		t.Fatalf("unexpected tags %+v", tags)
	}
	if tags.Lyrics != "" {
		t.Fatalf("expected empty lyrics after lyric failure, got %q", tags.Lyrics)
	}
	if !bytes.Equal(tags.Cover, cover) {
		t.Fatal("expected cover bytes from detail lookup")
	}
}
