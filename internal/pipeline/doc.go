// Package pipeline converts NCM containers into tagged audio files.
//
// A Coordinator owns the output directory (through a lock file), bounds the
// number of concurrent conversion units with a weighted semaphore and hands
// each finished unit to the caller over a single results channel. The caller
// remains the only goroutine that touches the playlist. Every unit carries
// its own request id so its log lines can be correlated.
//
// Container and decode failures end a unit without a track. Tag failures
// still yield the track, with the error attached, because the audio file is
// usable. Lookup failures never surface.
package pipeline
