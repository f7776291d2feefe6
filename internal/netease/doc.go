// Package netease provides the minimal music search client used to resolve
// missing track metadata.
//
// It exposes keyword song search, lyric retrieval by song id, the track
// detail lookup that yields album art URLs, and a plain cover download.
// Responses are read with gjson so absent fields degrade to zero values
// instead of failing the lookup. Options allow tests to supply custom HTTP
// clients.
package netease
