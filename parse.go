package trailers

import (
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// Record is one entry of a trailer block.
//
// Trailer records carry the key and the folded value. Non-trailer records
// (lines kept verbatim from a mixed block, comments, key-less additions)
// have IsTrailer unset and only Raw (and Value, set to the same text).
type Record struct {
	Key   string
	Value string
	// Raw holds the source line(s) exactly as found, joined by newlines and
	// without the final newline.
	Raw       string
	IsTrailer bool
}

// Block is the parse result of one message: where the trailer block sits
// and the records it holds, in source order.
//
// A Block is never modified by this package after it has been returned.
// Merge builds a new record slice, so Start and End stay valid for
// splicing output back into the source text.
type Block struct {
	Start int
	End   int
	// BlankLineBefore is set if the line before Start is blank.
	BlankLineBefore bool
	// Found is unset if the message has no trailer block. Start and End
	// are then both at the end of the message.
	Found   bool
	Records []Record
}

// Bounds returns the block offsets for splicing.
func (b *Block) Bounds() Bounds {
	return Bounds{Start: b.Start, End: b.End}
}

// Trailers returns only the trailer records, skipping verbatim lines.
func (b *Block) Trailers() []Record {
	out := make([]Record, 0, len(b.Records))
	for _, r := range b.Records {
		if r.IsTrailer {
			out = append(out, r)
		}
	}

	return out
}

// Parse locates and parses the trailer block of text. It never fails; a
// message without trailers yields a Block with Found unset.
//
// Example:
//
//	b := trailers.Parse(nil, msg, nil)
//	if b.Found {
//	  for _, t := range b.Trailers() {
//	    fmt.Printf("%s => %s\n", t.Key, t.Value)
//	  }
//	}
func Parse(s *Settings, text string, opts *Options) *Block {
	s = orDefault(s)
	bounds, found := Locate(s, text, opts)
	if !found {
		return &Block{
			Start:           bounds.Start,
			End:             bounds.End,
			BlankLineBefore: endsWithBlankLine(text[:bounds.Start]),
		}
	}

	b := ParseBlock(s, text, bounds, opts)
	b.Found = true

	return b
}

// ParseBlock parses the lines in [b.Start, b.End) of text into records.
//
// Continuation lines are folded into the preceding trailer, joined by a
// newline, or by a single space when opts.Unfold is set. Lines that are
// not trailers are kept as non-trailer records. Keys matching a configured
// alias are replaced by the alias key.
func ParseBlock(s *Settings, text string, b Bounds, opts *Options) *Block {
	s = orDefault(s)
	if opts == nil {
		opts = &Options{}
	}
	b.Start = max(0, min(b.Start, len(text)))
	b.End = max(b.Start, min(b.End, len(text)))

	out := &Block{
		Start:           b.Start,
		End:             b.End,
		BlankLineBefore: endsWithBlankLine(text[:b.Start]),
		Records:         make([]Record, 0, 8),
	}

	var last *Record
	var cont []string
	flush := func() {
		if last == nil {
			return
		}
		if len(cont) > 0 {
			last.Value = joinContinuations(last.Value, cont, opts.Unfold)
			cont = cont[:0]
		}
		out.Records = append(out.Records, *last)
		last = nil
	}

	for _, l := range splitLines(text, b.Start, b.End) {
		line := Classify(l.text, s.separators(), last != nil)
		switch {
		case line.Kind == KindContinuation:
			last.Raw += "\n" + l.text
			cont = append(cont, strings.TrimSpace(l.text))

			continue
		case line.Kind == KindTrailer && !s.isComment(l.text):
			flush()
			key := line.Key
			if it, ok := s.findItem(key); ok {
				debug.V(3).Log("key %q resolved to alias %q", key, it.Name)
				key = it.token()
			}
			last = &Record{Key: key, Value: line.Value, Raw: l.text, IsTrailer: true}

			continue
		}

		flush()
		out.Records = append(out.Records, Record{Value: l.text, Raw: l.text})
	}
	flush()

	debug.V(3).Log("parsed %d records from [%d, %d)", len(out.Records), b.Start, b.End)

	return out
}

// joinContinuations appends the continuation lines to value, one per line
// or, if unfold is set, separated by a single space. Whitespace within the
// lines is kept.
func joinContinuations(value string, cont []string, unfold bool) string {
	lines := append([]string{value}, cont...)
	if unfold {
		return strings.TrimSpace(strings.Join(lines, " "))
	}

	return strings.Join(lines, "\n")
}

// endsWithBlankLine reports whether the last line of prefix is blank. The
// prefix is expected to end at a line boundary.
func endsWithBlankLine(prefix string) bool {
	if prefix == "" {
		return false
	}
	prefix = strings.TrimSuffix(prefix, "\n")

	return isBlank(prefix[strings.LastIndexByte(prefix, '\n')+1:])
}
