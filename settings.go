package trailers

import (
	"regexp"
	"strings"

	"github.com/gopasspw/gopass/pkg/set"
)

const (
	// DefaultSeparators is the set of characters accepted between key and value.
	DefaultSeparators = ":"
	// DefaultCommentPrefix marks comment lines in a commit message.
	DefaultCommentPrefix = "#"
)

var (
	reURL       = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.-]*://\S`)
	fencePrefix = []string{"```", "~~~"}
)

// Item is a configured trailer alias, i.e. one trailer.<name> section.
//
// Policies left at their default value fall back to the Settings defaults.
type Item struct {
	// Name is the <name> part of trailer.<name>.*.
	Name string
	// Key replaces tokens matching Name or Key. May end in a separator
	// (e.g. "Bug #"), in which case it is rendered as-is.
	Key       string
	Where     Where
	IfExists  IfExists
	IfMissing IfMissing
	// Command is a shell command whose output becomes the value. "$ARG" is
	// replaced by the value given on the command line.
	Command string
	// Cmd is a shell command that receives the value as its first argument.
	Cmd string
}

// token returns the key used when this item produces a trailer.
func (i Item) token() string {
	if i.Key != "" {
		return i.Key
	}

	return i.Name
}

// Settings is an immutable snapshot of trailer configuration. It is built
// once (DefaultSettings or Configs.Settings) and shared read-only by every
// operation that needs defaults. Do not modify a Settings after handing it
// to any function of this package.
type Settings struct {
	Where     Where
	IfExists  IfExists
	IfMissing IfMissing
	// Separators lists the characters accepted between key and value.
	Separators string
	// CommentPrefix marks comment lines. Empty disables comment handling.
	CommentPrefix string
	// Items are the configured aliases in configuration order.
	Items []Item
	// Exclude rejects a trailer block that consists of a single line for
	// which it returns true. Nil disables the exclusion.
	Exclude func(line string) bool
}

// DefaultSettings returns the settings git uses without any configuration:
// append at the end, add unless the neighbor is identical, add if missing.
func DefaultSettings() *Settings {
	return &Settings{
		Where:         WhereEnd,
		IfExists:      IfExistsAddIfDifferentNeighbor,
		IfMissing:     IfMissingAdd,
		Separators:    DefaultSeparators,
		CommentPrefix: DefaultCommentPrefix,
		Exclude:       LooksLikeURLOrFence,
	}
}

// LooksLikeURLOrFence is the default single-line exclusion. It matches
// lines starting with a URL (scheme://...) or a markdown code fence, both of
// which would otherwise pass as a one-line trailer block.
func LooksLikeURLOrFence(line string) bool {
	line = strings.TrimSpace(line)
	for _, p := range fencePrefix {
		if strings.HasPrefix(line, p) {
			return true
		}
	}

	return reURL.MatchString(line)
}

func orDefault(s *Settings) *Settings {
	if s == nil {
		return DefaultSettings()
	}

	return s
}

func (s *Settings) separators() string {
	if s.Separators == "" {
		return DefaultSeparators
	}

	return s.Separators
}

func (s *Settings) where(w Where) Where {
	if w != WhereDefault {
		return w
	}
	if s.Where != WhereDefault {
		return s.Where
	}

	return WhereEnd
}

func (s *Settings) ifExists(e IfExists) IfExists {
	if e != IfExistsDefault {
		return e
	}
	if s.IfExists != IfExistsDefault {
		return s.IfExists
	}

	return IfExistsAddIfDifferentNeighbor
}

func (s *Settings) ifMissing(m IfMissing) IfMissing {
	if m != IfMissingDefault {
		return m
	}
	if s.IfMissing != IfMissingDefault {
		return s.IfMissing
	}

	return IfMissingAdd
}

func (s *Settings) isComment(line string) bool {
	return s.CommentPrefix != "" && strings.HasPrefix(line, s.CommentPrefix)
}

// findItem returns the first item whose name or key starts with the given
// token, compared case-insensitively. This mirrors git, which lets
// "sign: x" pick up trailer.sign.key and lets abbreviations match.
func (s *Settings) findItem(token string) (Item, bool) {
	token = keyBase(token, s.separators())
	if token == "" {
		return Item{}, false
	}
	for _, it := range s.Items {
		if hasPrefixFold(it.Name, token) {
			return it, true
		}
		if it.Key != "" && hasPrefixFold(keyBase(it.Key, s.separators()), token) {
			return it, true
		}
	}

	return Item{}, false
}

// Names returns the sorted names of all configured aliases.
func (s *Settings) Names() []string {
	names := make([]string, 0, len(s.Items))
	for _, it := range s.Items {
		names = append(names, it.Name)
	}

	return set.Sorted(names)
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}
