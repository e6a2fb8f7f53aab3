package trailers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Kind is the classification of a single message line.
type Kind int

// Line kinds.
const (
	KindOther Kind = iota
	KindTrailer
	KindContinuation
	KindBlank
)

func (k Kind) String() string {
	switch k {
	case KindTrailer:
		return "trailer"
	case KindContinuation:
		return "continuation"
	case KindBlank:
		return "blank"
	default:
		return "other"
	}
}

// Line is a classified line. Key and Value are only set for KindTrailer.
type Line struct {
	Kind  Kind
	Key   string
	Value string
	// Sep is the byte offset of the separator within the line, -1 if none.
	Sep int
}

// Classify decides whether line is a trailer, a continuation, blank or
// anything else. The line must not contain the trailing newline.
//
// A trailer line is a token (a run of non-whitespace, non-separator
// characters) followed by one of the separators, optionally surrounded by
// whitespace. The first separator wins. An indented non-blank line is a
// continuation only if afterTrailer is set, i.e. the previous accepted line
// belongs to a trailer; otherwise it is KindOther.
//
// Classify never fails.
func Classify(line, separators string, afterTrailer bool) Line {
	if separators == "" {
		separators = DefaultSeparators
	}
	if isBlank(line) {
		return Line{Kind: KindBlank, Sep: -1}
	}
	if startsWithSpace(line) {
		if afterTrailer {
			return Line{Kind: KindContinuation, Sep: -1}
		}

		return Line{Kind: KindOther, Sep: -1}
	}

	pos := findSeparator(line, separators)
	if pos < 1 {
		return Line{Kind: KindOther, Sep: -1}
	}
	_, size := utf8.DecodeRuneInString(line[pos:])

	return Line{
		Kind:  KindTrailer,
		Key:   strings.TrimSpace(line[:pos]),
		Value: strings.TrimSpace(line[pos+size:]),
		Sep:   pos,
	}
}

// findSeparator returns the offset of the key/value separator or -1.
func findSeparator(line, separators string) int {
	var spaceSeen bool
	for i, r := range line {
		if strings.ContainsRune(separators, r) {
			return i
		}
		if r == ' ' || r == '\t' {
			if i == 0 {
				return -1
			}
			spaceSeen = true

			continue
		}
		// whitespace may only separate the token from the separator
		if spaceSeen || unicode.IsSpace(r) {
			return -1
		}
	}

	return -1
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}

func startsWithSpace(line string) bool {
	return line != "" && (line[0] == ' ' || line[0] == '\t')
}

// keyBase strips surrounding whitespace and any trailing separator
// characters from a key, so "Bug #" and "Bug" compare equal.
func keyBase(key, separators string) string {
	key = strings.TrimSpace(key)
	key = strings.TrimRight(key, separators+" \t")

	return key
}

// sameKey compares two keys case-insensitively, ignoring trailing separators.
func sameKey(a, b, separators string) bool {
	return strings.EqualFold(keyBase(a, separators), keyBase(b, separators))
}
