// Package identity folds author strings and decides whether a feed
// event's author is the polled user.
//
// Fold pipeline
// 1 UTF-8 repair drop invalid bytes
// 2 Unicode NFKD decomposition so marks split from their base letters
// 3 Case folding
// 4 Remove zero-width and combining marks
// 5 Width fold fullwidth to ASCII
// 6 NFC recomposition
// 7 Collapse whitespace to single spaces and trim
package identity

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// pool of fresh transformer chains
var chainPool = sync.Pool{
	New: func() any {
		// order matters and mirrors the documented pipeline; the
		// decomposition must run before the mark strip or precomposed
		// letters keep their accents
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),                       // unicode case folding
			runes.Remove(runes.In(unicode.Mn)), // strip combining marks
			runes.Remove(runes.In(unicode.Cf)), // strip format chars ZWJ ZWNJ FEFF etc
			width.Fold,                         // map fullwidth forms to ASCII
			norm.NFC,
		)
	},
}

// Fold returns the canonical matching form of an author name, handle
// or email address
func Fold(s string) string {
	if s == "" {
		return ""
	}

	s = strings.ToValidUTF8(s, "")

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	return strings.Join(strings.Fields(ns), " ")
}

// NameMatches reports whether the author string contains both the
// user's first and last name after folding. Substring containment is
// deliberate: commit author fields carry middle names, suffixes and
// arbitrary decoration, and a stricter equality check would drop
// legitimate work.
func NameMatches(author, firstName, lastName string) bool {
	if firstName == "" || lastName == "" {
		return false
	}
	a := Fold(author)
	return strings.Contains(a, Fold(firstName)) && strings.Contains(a, Fold(lastName))
}

// EmailMatches reports whether the author email contains the user's
// registered email after folding
func EmailMatches(authorEmail, email string) bool {
	if email == "" {
		return false
	}
	return strings.Contains(Fold(authorEmail), Fold(email))
}
