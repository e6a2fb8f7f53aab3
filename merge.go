package trailers

import (
	"slices"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// NewTrailer is a trailer to apply to a block, e.g. from --trailer.
//
// Text is "key<sep>value". Policies left at their default value resolve to
// the Settings defaults when merging.
type NewTrailer struct {
	Text      string
	Where     Where
	IfExists  IfExists
	IfMissing IfMissing
}

// Merge applies specs to the existing records and returns the result. The
// existing slice is not modified.
//
// Specs are applied in order and each one sees the effect of the ones
// before it. For every spec the records sharing its key (compared
// case-insensitively) decide between the IfMissing and the IfExists
// policy:
//
//   - IfMissing add inserts at the end (Where end or after) or the start
//     (Where start or before), doNothing skips.
//   - IfExists add always inserts, doNothing skips, replace substitutes the
//     last same-key record in place, addIfDifferent inserts unless a
//     same-key record has the same value, addIfDifferentNeighbor inserts
//     unless the record next to the insertion point is identical.
//
// Insertion for Where end/start is after the last / before the first
// record, for after/before behind the last / ahead of the first same-key
// record. Unrelated records keep their relative order.
//
// Spec text without a separator is appended verbatim as a non-trailer
// record regardless of policies.
func Merge(s *Settings, existing []Record, specs []NewTrailer) []Record {
	s = orDefault(s)
	out := slices.Clone(existing)
	for _, nt := range specs {
		out = applyTrailer(s, out, nt)
	}

	return out
}

func applyTrailer(s *Settings, recs []Record, nt NewTrailer) []Record {
	seps := s.separators()
	text := strings.TrimSpace(nt.Text)
	line := Classify(text, seps, false)
	if line.Kind != KindTrailer {
		debug.V(2).Log("no key in %q, appending verbatim", text)

		return append(recs, Record{Value: text, Raw: text})
	}
	rec := Record{Key: line.Key, Value: line.Value, Raw: text, IsTrailer: true}
	if it, ok := s.findItem(rec.Key); ok {
		rec.Key = it.token()
	}
	where := s.where(nt.Where)

	first, last := -1, -1
	for i, r := range recs {
		if r.IsTrailer && sameKey(r.Key, rec.Key, seps) {
			if first < 0 {
				first = i
			}
			last = i
		}
	}

	if first < 0 {
		if s.ifMissing(nt.IfMissing) == IfMissingDoNothing {
			debug.V(3).Log("%q missing, ifMissing doNothing", rec.Key)

			return recs
		}
		if where.afterOrEnd() {
			return append(recs, rec)
		}

		return slices.Insert(recs, 0, rec)
	}

	pos := insertPos(where, first, last, len(recs))
	switch ifExists := s.ifExists(nt.IfExists); ifExists {
	case IfExistsDoNothing:
		debug.V(3).Log("%q exists, ifExists doNothing", rec.Key)

		return recs
	case IfExistsReplace:
		recs[last] = rec

		return recs
	case IfExistsAddIfDifferent:
		for _, r := range recs[first : last+1] {
			if r.IsTrailer && sameKey(r.Key, rec.Key, seps) && r.Value == rec.Value {
				debug.V(3).Log("%q with value %q exists, skipping", rec.Key, rec.Value)

				return recs
			}
		}
	case IfExistsAddIfDifferentNeighbor:
		n := neighborPos(where, first, last, len(recs))
		if r := recs[n]; r.IsTrailer && sameKey(r.Key, rec.Key, seps) && r.Value == rec.Value {
			debug.V(3).Log("neighbor of %q has value %q, skipping", rec.Key, rec.Value)

			return recs
		}
	case IfExistsAdd:
	default:
		debug.V(1).Log("unhandled ifExists %s", ifExists)

		return recs
	}

	return slices.Insert(recs, pos, rec)
}

func insertPos(where Where, first, last, n int) int {
	switch where {
	case WhereStart:
		return 0
	case WhereBefore:
		return first
	case WhereAfter:
		return last + 1
	default:
		return n
	}
}

// neighborPos returns the record a new trailer would be placed next to.
func neighborPos(where Where, first, last, n int) int {
	switch where {
	case WhereStart:
		return 0
	case WhereBefore:
		return first
	case WhereAfter:
		return last
	default:
		return n - 1
	}
}

// Process applies specs to the trailer block of text and returns the whole
// message with the block replaced. Untouched prose before and after the
// block is reproduced byte for byte.
//
// OnlyTrailers returns just the rendered block, OnlyInput skips merging.
// A blank line is inserted before the block if the message body did not
// end with one, unless NoDivider is set.
func Process(s *Settings, text string, specs []NewTrailer, opts *Options) string {
	s = orDefault(s)
	if opts == nil {
		opts = &Options{}
	}

	b := Parse(s, text, opts)
	records := b.Records
	if !opts.OnlyInput {
		records = Merge(s, records, specs)
	}
	block := Format(records, withSeparators(s, opts))

	if opts.OnlyTrailers {
		return block
	}

	var sb strings.Builder
	head := text[:b.Start]
	sb.WriteString(head)
	if block != "" && head != "" {
		if !strings.HasSuffix(head, "\n") {
			sb.WriteString("\n")
		}
		if !b.BlankLineBefore && !opts.NoDivider {
			sb.WriteString("\n")
		}
	}
	sb.WriteString(block)
	sb.WriteString(text[b.End:])

	debug.V(1).Log("processed message: %d records, block at [%d, %d)", len(records), b.Start, b.End)

	return sb.String()
}
