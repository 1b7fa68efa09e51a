// Package textnorm folds free text into a comparison form: Unicode case
// folding plus removal of combining marks, so "Lóbo", "LOBO" and "lobo"
// compare equal.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold returns the case-folded, accent-stripped form of s with surrounding
// whitespace removed and inner whitespace runs collapsed to a single space.
func Fold(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	// Chains and Casers are stateful; build them per call.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return cases.Fold().String(stripped)
}

// LikeEscape is the escape character EscapeLike uses. Queries pair it with
// `ESCAPE '!'`, which reads the same in SQLite and MySQL.
const LikeEscape = "!"

var likeReplacer = strings.NewReplacer(`!`, `!!`, `%`, `!%`, `_`, `!_`)

// EscapeLike escapes the LIKE wildcards in s.
func EscapeLike(s string) string {
	return likeReplacer.Replace(s)
}
