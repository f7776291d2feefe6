// Package textutil provides small text helpers for terminal output and
// file naming.
//
// Width calculations follow East Asian width classes so mixed Chinese and
// Latin titles line up in fixed-width progress labels.
package textutil
