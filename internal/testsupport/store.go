package testsupport

import (
	"context"
	"testing"

	"ncmplay/internal/config"
	"ncmplay/internal/lookupcache"
)

// MustOpenLookupCache opens the lookup cache configured in cfg and closes it
// when the test finishes.
func MustOpenLookupCache(t testing.TB, cfg *config.Config) *lookupcache.Store {
	t.Helper()

	store, err := lookupcache.Open(context.Background(), cfg.LookupCache.Path)
	if err != nil {
		t.Fatalf("lookupcache.Open: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}
