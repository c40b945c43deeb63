package normalize

import (
	"strings"
	"unicode"

	"github.com/okian/ratecards/internal/domain/model"
)

// levelSeparators may follow the one-character level code.
const levelSeparators = ".):-"

// SplitLevel splits a level cell such as "A. Follow" into its code ("A") and
// name ("Follow"). Periods are dropped from the name, line breaks become
// spaces and runs of space collapse. A cell that does not start with a single
// alphanumeric code and a separator is rejected.
func SplitLevel(cell string) (code, name string, err error) {
	s := strings.TrimSpace(cell)
	runes := []rune(s)
	if len(runes) < 3 || !isCodeRune(runes[0]) || !isSeparator(runes[1]) {
		return "", "", &model.UnrecognizedLayoutError{Cell: cell, Reason: "level cell is not <code><sep> <name>"}
	}

	rest := strings.TrimLeftFunc(string(runes[2:]), func(r rune) bool {
		return isSeparator(r)
	})
	rest = strings.ReplaceAll(rest, ".", "")
	name = strings.Join(strings.Fields(rest), " ")
	if name == "" {
		return "", "", &model.UnrecognizedLayoutError{Cell: cell, Reason: "level cell has no name"}
	}
	return string(runes[0]), name, nil
}

func isCodeRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || strings.ContainsRune(levelSeparators, r)
}
