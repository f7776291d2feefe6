package resolver

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// ParseFilename guesses title and artist from a file name of the form
// "Artist - Title.ext". Underscores count as spaces and only the first
// hyphen splits. Without a hyphen the whole stem is the title and artist is
// empty. Full-width forms are folded first so "周杰伦－晴天" splits too.
func ParseFilename(hint string) (title, artist string) {
	base := filepath.Base(strings.TrimSpace(hint))
	if base == "." || base == string(filepath.Separator) {
		return "", ""
	}
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = norm.NFC.String(width.Fold.String(stem))
	stem = strings.ReplaceAll(stem, "_", " ")

	before, after, found := strings.Cut(stem, "-")
	if !found {
		return strings.TrimSpace(stem), ""
	}
	return strings.TrimSpace(after), strings.TrimSpace(before)
}

func searchKeyword(title, artist string) string {
	return strings.TrimSpace(strings.TrimSpace(title) + " " + strings.TrimSpace(artist))
}
