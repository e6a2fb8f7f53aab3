package trailers

import (
	"bufio"
	"io"
	"os"
	"path"
	"regexp"
	"strings"

	"github.com/gopasspw/gopass/pkg/debug"
)

var (
	reQuotedComment = regexp.MustCompile(`"[^"]*[#;][^"]*"`)
	// "The variable names are case-insensitive, allow only alphanumeric characters and -, and must start with an alphabetic character."".
	reValidKey = regexp.MustCompile(`^[a-z]+[a-z0-9-]*$`)
)

// Config is a single git configuration file, read-only.
//
// Only what trailer handling needs is kept: the variables in file order
// (aliases are matched in configuration order) and a map for lookups.
// Included files (include.path) are merged in at the position of the
// include directive.
type Config struct {
	path    string
	entries []entry
	vars    map[string][]string
}

type entry struct {
	key   string
	value string
}

// IsEmpty returns true if no variables were loaded.
func (c *Config) IsEmpty() bool {
	return c == nil || len(c.entries) == 0
}

// Get returns the last value of the key, i.e. the one that takes effect.
//
// The key is case-insensitive for sections and key names but case-sensitive
// for subsection names (per git-config specification).
func (c *Config) Get(key string) (string, bool) {
	vs, found := c.GetAll(key)
	if !found || len(vs) < 1 {
		return "", false
	}

	return vs[len(vs)-1], true
}

// GetAll returns all values of the key in file order.
func (c *Config) GetAll(key string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	vs, found := c.vars[canonicalizeKey(key)]

	return vs, found
}

// IsSet returns true if the key was set in this config.
func (c *Config) IsSet(key string) bool {
	_, found := c.GetAll(key)

	return found
}

func (c *Config) add(key, value string) {
	if c.vars == nil {
		c.vars = make(map[string][]string, 16)
	}
	c.entries = append(c.entries, entry{key: key, value: value})
	c.vars[key] = append(c.vars[key], value)
}

// ParseConfig parses a git config from r. It never fails, invalid lines
// are skipped. Include directives are recorded but not followed; use
// LoadConfig for that.
func ParseConfig(r io.Reader) *Config {
	c := &Config{
		vars: make(map[string][]string, 16),
	}
	parseConfig(r, c.add)

	debug.V(3).Log("parsed config: %d entries", len(c.entries))

	return c
}

// parseConfig implements a simple parser for the gitconfig subset we need.
// Comments and section headers are tracked, every valid key-value pair is
// passed to cb with its fully qualified, canonical key.
func parseConfig(in io.Reader, cb func(key, value string)) {
	s := bufio.NewScanner(in)

	var section string
	var subsection string
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		if strings.HasPrefix(line, "[") {
			header, rest, _ := strings.Cut(line, "]")
			sec, subs, skip := parseSectionHeader(header + "]")
			if skip {
				continue
			}
			section = strings.ToLower(sec)
			subsection = subs
			// "[section] key = value" on one line
			line = strings.TrimSpace(rest)
			if line == "" {
				continue
			}
		}
		if section == "" {
			debug.V(3).Log("key outside of any section: %q", line)

			continue
		}

		// Reference: https://git-scm.com/docs/git-config#_syntax.
		k, v, found := strings.Cut(line, "=")
		if !found {
			// a bare boolean
			v = "true"
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if !reValidKey.MatchString(k) {
			debug.V(3).Log("invalid key %q in line: %q", k, line)

			continue
		}

		value, _ := splitValueComment(strings.TrimSpace(v))
		value = unescapeValue(value)

		fKey := section + "."
		if subsection != "" {
			fKey += subsection + "."
		}
		fKey += k

		cb(fKey, value)
	}
}

func parseSectionHeader(line string) (section, subsection string, skip bool) { //nolint:nonamedreturns
	line = strings.Trim(line, "[]")
	if line == "" {
		return "", "", true
	}
	wsp := strings.Index(line, " ")
	if wsp < 0 {
		return line, "", false
	}

	section = line[:wsp]
	subsection = line[wsp+1:]
	subsection = strings.ReplaceAll(subsection, "\\", "")
	subsection = strings.TrimPrefix(subsection, "\"")
	subsection = strings.TrimSuffix(subsection, "\"")

	return section, subsection, false
}

func splitValueComment(rValue string) (string, string) {
	// Trivial case: no comment. Return early, do not alter anything.
	if !strings.ContainsAny(rValue, "#;") {
		// "If value needs to contain leading or trailing whitespace characters, it must be enclosed in double quotation marks (")."
		return strings.Trim(rValue, "\""), ""
	}

	// Medium case: comment present, but not quoted.
	if !reQuotedComment.MatchString(rValue) {
		idx := strings.IndexAny(rValue, "#;")
		comment := strings.TrimSpace(rValue[idx+1:])
		rValue = strings.TrimSpace(rValue[:idx])

		return strings.Trim(rValue, "\""), comment
	}

	// Hard case: comment present and quoted.
	return parseLineForComment(rValue)
}

func unescapeValue(value string) string {
	// The following escape sequences (beside \" and \\) are recognized:
	// \n for newline character (NL),
	// \t for horizontal tabulation (HT, TAB) and
	// \b for backspace (BS).
	value = strings.ReplaceAll(value, `\\`, `\`)
	value = strings.ReplaceAll(value, `\"`, `"`)
	value = strings.ReplaceAll(value, `\n`, "\n")
	value = strings.ReplaceAll(value, `\t`, "\t")
	value = strings.ReplaceAll(value, `\b`, "\b")

	return value
}

// LoadConfig loads a git config file and the files it includes through
// include.path. Includes that cannot be read are skipped, a missing top
// level file is an error.
func LoadConfig(fn string) (*Config, error) {
	fh, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer fh.Close() //nolint:errcheck

	c := &Config{
		path: fn,
		vars: make(map[string][]string, 16),
	}
	seen := map[string]struct{}{fn: {}}
	c.loadInto(fh, fn, seen)

	debug.V(2).Log("loaded %s: %d entries", c.path, len(c.entries))

	return c, nil
}

// loadInto parses r and follows include.path directives recursively. seen
// guards against include cycles.
func (c *Config) loadInto(r io.Reader, fn string, seen map[string]struct{}) {
	parseConfig(r, func(key, value string) {
		c.add(key, value)
		if key != "include.path" {
			return
		}

		inc := includePath(value, fn)
		if inc == "" {
			return
		}
		if _, ok := seen[inc]; ok {
			debug.V(3).Log("skipping already loaded config %q", inc)

			return
		}
		seen[inc] = struct{}{}

		fh, err := os.Open(inc)
		if err != nil {
			debug.V(1).Log("failed to load included config %q: %s", inc, err)

			return
		}
		defer fh.Close() //nolint:errcheck

		debug.V(2).Log("loading included config %q", inc)
		c.loadInto(fh, inc, seen)
	})
}

// includePath converts the path of an included config ('/absolute',
// '~/from/home', 'relative/to/base') to an absolute path.
func includePath(inc, base string) string {
	if path.IsAbs(inc) {
		return inc
	}
	if strings.HasPrefix(inc, "~/") {
		home, exists := os.LookupEnv("HOME")
		if !exists {
			debug.V(3).Log("cannot resolve home directory, skipping %q", inc)

			return ""
		}

		return path.Join(home, strings.TrimPrefix(inc, "~/"))
	}

	return path.Clean(path.Join(path.Dir(base), inc))
}
