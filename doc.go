// Package trailers implements a pure Go reader and writer for the trailer
// block of git commit messages, i.e. the "Key: value" lines at the end of a
// message such as Signed-off-by or Co-authored-by. It follows the behavior
// of git interpret-trailers: detection of the block, parsing with
// continuation lines, merging of new trailers under the configured
// policies and rendering.
//
// The reference for this implementation is https://git-scm.com/docs/git-interpret-trailers
//
// # Detection
//
// The trailer block is the last paragraph of the message. The message ends
// at the first "---" line (the start of a patch) and trailing comment and
// blank lines are ignored. The first paragraph is the title and never holds
// trailers. The last paragraph is a trailer block if all of its lines are
// trailers (with their indented continuation lines), or if at least 25% of
// its lines are trailers, counting continuation lines with their trailer.
// Lines of such a mixed block that are not trailers are kept verbatim.
//
// # Usage
//
// Parse a message and walk its trailers:
//
//	b := trailers.Parse(nil, msg, nil)
//	for _, t := range b.Trailers() {
//		fmt.Printf("%s: %s\n", t.Key, t.Value)
//	}
//
// Or use the Iterator, which skips non-trailer lines:
//
//	it := trailers.NewIterator(nil, msg)
//	for it.Next() {
//		fmt.Println(it.Key(), it.Value())
//	}
//	it.Release()
//
// Add trailers to a message, keeping everything else byte for byte:
//
//	out := trailers.Process(nil, msg, []trailers.NewTrailer{
//		{Text: "Reviewed-by: Jane <jane@example.com>"},
//		{Text: "Cc: list@example.com", Where: trailers.WhereStart},
//	}, nil)
//
// # Configuration
//
// A nil *Settings means git's defaults (where end, ifExists
// addIfDifferentNeighbor, ifMissing add, separator ":"). Settings can be
// read from the usual git config files:
//
//	cfg := trailers.NewConfigs().LoadAll(".")
//	s, err := cfg.Settings()
//	if err != nil {
//		if errors.Is(err, trailers.ErrUnknownWhere) {
//			// bad trailer.where or trailer.<name>.where
//		}
//	}
//
// The keys are those of git: trailer.where, trailer.ifexists,
// trailer.ifmissing, trailer.separators and the per-alias
// trailer.<name>.key, .where, .ifexists, .ifmissing, .command and .cmd.
// Command line style arguments ("key=value") are turned into NewTrailer
// specs with ResolveArgs, which applies aliases and runs commands.
//
// Settings are an immutable snapshot. All functions of this package are
// safe for concurrent use as long as nobody modifies a Settings or Options
// value while it is in use. An Iterator must not be shared.
//
// # Known limitations
//
// * The "Conflicts:" block of old merge messages is not skipped
// * Trailer values are not validated (e.g. email addresses)
// * Continuation lines are re-indented with a single space when rendered
package trailers
