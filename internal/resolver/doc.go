// Package resolver completes track metadata from the online search service.
//
// A Resolver derives a search keyword from known tags or from the file name,
// takes the first search match and then looks up lyrics and cover art as two
// independent lookups, each under its own timeout. Failures are logged and
// swallowed so callers always receive a (possibly empty) Tags value.
package resolver
