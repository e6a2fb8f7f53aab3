package trailers

import (
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

// gitGeneratedPrefixes always count as trailer lines during detection,
// even when they do not match the key-separator-value pattern.
var gitGeneratedPrefixes = []string{
	"Signed-off-by: ",
	"(cherry picked from commit ",
}

// Bounds are byte offsets of a trailer block in a message. End is exclusive.
type Bounds struct {
	Start int
	End   int
}

// span is one line of a message. text excludes the newline, next is the
// offset of the following line.
type span struct {
	start int
	next  int
	text  string
}

func splitLines(text string, start, end int) []span {
	lines := make([]span, 0, 32)
	for pos := start; pos < end; {
		nl := strings.IndexByte(text[pos:end], '\n')
		next := end
		lineEnd := end
		if nl >= 0 {
			lineEnd = pos + nl
			next = lineEnd + 1
		}
		lines = append(lines, span{start: pos, next: next, text: text[pos:lineEnd]})
		pos = next
	}

	return lines
}

func isDivider(line string) bool {
	return strings.TrimRight(line, " \t\r") == "---"
}

// messageEnd returns the offset where the log message ends. Everything from
// the first patch divider on is cut (unless keepPatch is set), then trailing
// blank and comment lines are dropped.
func messageEnd(s *Settings, text string, keepPatch bool) int {
	end := len(text)
	lines := splitLines(text, 0, end)
	if !keepPatch {
		for i, l := range lines {
			if isDivider(l.text) {
				end = l.start
				lines = lines[:i]
				debug.V(3).Log("patch divider at offset %d", end)

				break
			}
		}
	}

	for i := len(lines) - 1; i >= 0; i-- {
		if !isBlank(lines[i].text) && !s.isComment(lines[i].text) {
			break
		}
		end = lines[i].start
	}

	return end
}

// titleEnd returns the offset of the blank line that ends the first
// paragraph. The title is never part of a trailer block.
func titleEnd(s *Settings, text string, end int) int {
	for _, l := range splitLines(text, 0, end) {
		if s.isComment(l.text) {
			continue
		}
		if isBlank(l.text) {
			return l.start
		}
	}

	return end
}

// Locate finds the trailer block of a message.
//
// The block is the last paragraph of the message (the run of non-blank
// lines after the last blank line, stopping at a "---" patch divider). It
// qualifies if all of its lines are trailers or continuations, or if at
// least 25% of its lines are trailers (with their continuation lines), in
// which case the remaining lines are kept as non-trailer records. Comment
// lines are not counted.
//
// If no block is found the returned bounds are empty and placed at the end
// of the message, which is where new trailers go. Locate never fails.
func Locate(s *Settings, text string, opts *Options) (Bounds, bool) {
	s = orDefault(s)
	if opts == nil {
		opts = &Options{}
	}

	end := messageEnd(s, text, opts.KeepPatch)
	none := Bounds{Start: end, End: end}
	first := titleEnd(s, text, end)
	if first >= end {
		debug.V(3).Log("no paragraph after the title")

		return none, false
	}

	lines := splitLines(text, first, end)
	var trailers, others, pending, counted int
	for i := len(lines) - 1; i >= 0; i-- {
		l := lines[i].text
		if s.isComment(l) {
			others += pending
			pending = 0

			continue
		}
		if isBlank(l) {
			others += pending
			start := lines[i].next
			if trailers == 0 {
				debug.V(3).Log("last paragraph has no trailers")

				return none, false
			}
			if counted == 1 && s.Exclude != nil && s.Exclude(firstCounted(s, lines[i+1:])) {
				debug.V(2).Log("single line block excluded: %q", firstCounted(s, lines[i+1:]))

				return none, false
			}
			if others == 0 || trailers*3 >= others {
				debug.V(3).Log("trailer block at [%d, %d): %d trailers, %d other lines", start, end, trailers, others)

				return Bounds{Start: start, End: end}, true
			}
			debug.V(3).Log("trailer density too low: %d trailers, %d other lines", trailers, others)

			return none, false
		}

		counted++
		if hasGeneratedPrefix(l) {
			trailers += 1 + pending
			pending = 0

			continue
		}
		switch Classify(l, s.separators(), true).Kind {
		case KindTrailer:
			// continuations count toward their trailer
			trailers += 1 + pending
			pending = 0
		case KindContinuation:
			// owner is not known yet when scanning backwards
			pending++
		default:
			others += 1 + pending
			pending = 0
		}
	}

	return none, false
}

func firstCounted(s *Settings, lines []span) string {
	for _, l := range lines {
		if !s.isComment(l.text) {
			return l.text
		}
	}

	return ""
}

func hasGeneratedPrefix(line string) bool {
	for _, p := range gitGeneratedPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}

	return false
}
