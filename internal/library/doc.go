// Package library holds converted tracks and the playlist that orders them.
//
// LoadDirectory rebuilds Tracks from the tagged files already in the output
// directory. Playlist is a plain single-owner collection with playback-mode
// navigation and a search filter that understands pinyin, so "zjl" finds
// 周杰伦.
package library
