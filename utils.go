package trailers

import "strings"

// splitKey splits a fully qualified gitconfig key into two or three parts.
// A valid key consists of either a section and a key separated by a dot
// or section, subsection and key, all separated by a dot. Note that
// the subsection might contain dots itself.
//
// Valid examples:
// - trailer.where
// - trailer.sign.key
// - trailer.see.also.key (subsection "see.also").
func splitKey(key string) (section, subsection, skey string) { //nolint:nonamedreturns
	n := strings.Index(key, ".")
	if n > 0 {
		section = key[:n]
	}

	if m := strings.LastIndex(key, "."); n != m && m > 0 && len(key) > m+1 {
		subsection = key[n+1 : m]
		skey = key[m+1:]

		return
	}

	skey = key[n+1:]

	return
}

func canonicalizeKey(key string) string {
	if key == "" {
		// invalid key, return empty string
		return ""
	}

	section, subsection, skey := splitKey(key)
	// "Section names are case-insensitive.""
	section = strings.ToLower(section)
	// "Subsection names are case sensitive."
	// "The variable names are case-insensitive."
	skey = strings.ToLower(skey)

	if section == "" || skey == "" {
		// invalid key, return empty string
		return ""
	}

	if subsection == "" {
		return section + "." + skey
	}

	return section + "." + subsection + "." + skey
}

// parseLineForComment separates a quoted value from a trailing comment.
// The first # or ; outside of double quotes starts the comment. The value
// is trimmed and stripped of its surrounding quotes, the comment is
// returned without its delimiter.
func parseLineForComment(line string) (string, string) {
	line = strings.TrimSpace(line)

	var inQuotes bool
	for i, r := range line {
		switch r {
		case '"':
			inQuotes = !inQuotes
		case '#', ';':
			if inQuotes {
				continue
			}

			return strings.Trim(strings.TrimSpace(line[:i]), `"`), strings.TrimSpace(line[i+1:])
		}
	}

	return strings.Trim(line, `"`), ""
}
