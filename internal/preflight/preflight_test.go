package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"ncmplay/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckSearchService_Reachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	result := CheckSearchService(context.Background(), srv.URL+"/")
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckSearchService_BadURL(t *testing.T) {
	for _, raw := range []string{"", "ftp://example.com", "not a url"} {
		if result := CheckSearchService(context.Background(), raw); result.Passed {
			t.Fatalf("expected failure for %q", raw)
		}
	}
}

func TestCheckSearchService_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	if result := CheckSearchService(context.Background(), url); result.Passed {
		t.Fatal("expected failure for closed server")
	}
}

func TestCheckLookupCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache", "lookup.db")
	result := CheckLookupCache(context.Background(), path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected cache file to be created: %v", err)
	}
}

func TestRunAllRespectsToggles(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithResolverDisabled())
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories: %v", err)
	}

	results := RunAll(context.Background(), cfg)
	if len(results) != 2 {
		t.Fatalf("expected only directory checks, got %+v", results)
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures %+v", failed)
	}

	cfg.LookupCache.Enabled = true
	results = RunAll(context.Background(), cfg)
	if len(results) != 3 || results[2].Name != "Lookup cache" || !results[2].Passed {
		t.Fatalf("expected passing lookup cache check, got %+v", results)
	}
}
