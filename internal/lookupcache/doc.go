// Package lookupcache keeps search candidates and lyric text in a small
// SQLite database so repeat conversions do not hit the search service again.
//
// Store owns the connection and schema; Searcher wraps any netease.Searcher
// and consults the Store first. Cache errors are logged and treated as misses.
// The database only holds derived data, so a schema change is handled by
// deleting the file.
package lookupcache
