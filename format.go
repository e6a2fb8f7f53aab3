package trailers

import (
	"strings"
	"unicode/utf8"

	"github.com/gobwas/glob"
)

// Options controls parsing, merging and rendering of one operation. An
// Options value is read-only while an operation runs; the zero value
// selects the defaults.
type Options struct {
	// InPlace asks the caller to write the result back to the input file.
	InPlace bool
	// TrimEmpty drops trailers whose value is empty or whitespace.
	TrimEmpty bool
	// OnlyTrailers drops non-trailer records and, in Process, the message
	// around the block.
	OnlyTrailers bool
	// OnlyInput emits the records as found, without merging new trailers
	// and without reformatting. It takes precedence over TrimEmpty.
	OnlyInput bool
	// Unfold joins continuation lines with a single space.
	Unfold bool
	// NoDivider suppresses the blank line Process inserts between the
	// message body and a trailer block that had none.
	NoDivider bool
	// KeepPatch stops treating a "---" line as the end of the message.
	KeepPatch bool
	KeyOnly   bool
	ValueOnly bool
	// Separator is written between rendered entries. If empty each entry
	// is terminated by a newline instead.
	Separator string
	// KeyValueSeparator is written between key and value. If empty the
	// first separator character and a space are used, unless the key
	// already ends in a separator.
	KeyValueSeparator string
	// Separators overrides Settings.Separators for rendering.
	Separators string
	// Filter, if set, receives every rendered line together with the
	// record it was rendered from and drops the line by returning false.
	Filter func(line string, r Record) bool
}

// Format renders records as text.
//
// Behavior:
// - trailers are written as key, separator, value (or only the key or
// value with KeyOnly or ValueOnly)
// - multi-line values are written with indented continuation lines
// - non-trailer records are written verbatim unless OnlyTrailers is set
// - OnlyInput writes every record's Raw text unchanged, TrimEmpty is
// ignored then
// - lines rejected by Filter are dropped
func Format(records []Record, opts *Options) string {
	if opts == nil {
		opts = &Options{}
	}
	seps := opts.Separators
	if seps == "" {
		seps = DefaultSeparators
	}

	var sb strings.Builder
	var n int
	emit := func(line string, r Record) {
		if opts.Filter != nil && !opts.Filter(line, r) {
			return
		}
		if opts.Separator != "" && n > 0 {
			sb.WriteString(opts.Separator)
		}
		sb.WriteString(line)
		if opts.Separator == "" {
			sb.WriteString("\n")
		}
		n++
	}

	for _, r := range records {
		if !r.IsTrailer {
			if opts.OnlyTrailers {
				continue
			}
			emit(r.Raw, r)

			continue
		}
		if opts.OnlyInput && r.Raw != "" {
			emit(r.Raw, r)

			continue
		}
		if opts.TrimEmpty && strings.TrimSpace(r.Value) == "" {
			continue
		}
		emit(formatTrailer(r, opts, seps), r)
	}

	return sb.String()
}

func formatTrailer(r Record, opts *Options, seps string) string {
	switch {
	case opts.KeyOnly:
		return keyBase(r.Key, seps)
	case opts.ValueOnly:
		return r.Value
	}

	kvsep := opts.KeyValueSeparator
	if kvsep == "" {
		kvsep = firstSeparator(seps) + " "
		if endsWithSeparator(r.Key, seps) {
			kvsep = ""
		}
	}

	return r.Key + kvsep + strings.ReplaceAll(r.Value, "\n", "\n ")
}

// firstSeparator returns the first separator character, which may be
// longer than one byte.
func firstSeparator(seps string) string {
	_, size := utf8.DecodeRuneInString(seps)

	return seps[:size]
}

// endsWithSeparator reports whether key, ignoring trailing whitespace, ends
// in one of the separator characters.
func endsWithSeparator(key, seps string) bool {
	k := strings.TrimRight(key, " \t")
	if k == "" {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(k)

	return strings.ContainsRune(seps, r)
}

// FormatFromMessage renders the trailers found in msg. Nothing is written
// if msg has no trailer block.
func FormatFromMessage(s *Settings, msg string, opts *Options) string {
	s = orDefault(s)
	b := Parse(s, msg, opts)

	return Format(b.Records, withSeparators(s, opts))
}

// withSeparators returns opts with Separators taken from s if unset.
func withSeparators(s *Settings, opts *Options) *Options {
	o := Options{}
	if opts != nil {
		o = *opts
	}
	if o.Separators == "" {
		o.Separators = s.separators()
	}

	return &o
}

// KeyFilter builds a Filter that keeps the lines of trailer records whose
// key matches one of the glob patterns, compared case-insensitively and
// without trailing separators. The key is taken from the record, so the
// rendering options do not matter. Lines of non-trailer records are
// dropped. With no patterns every line is kept.
func KeyFilter(separators string, patterns ...string) (func(string, Record) bool, error) {
	if len(patterns) == 0 {
		return func(string, Record) bool { return true }, nil
	}
	if separators == "" {
		separators = DefaultSeparators
	}

	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(strings.ToLower(p))
		if err != nil {
			return nil, err
		}
		globs = append(globs, g)
	}

	return func(_ string, r Record) bool {
		if !r.IsTrailer {
			return false
		}
		key := strings.ToLower(keyBase(r.Key, separators))
		for _, g := range globs {
			if g.Match(key) {
				return true
			}
		}

		return false
	}, nil
}
