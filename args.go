package trailers

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"unicode/utf8"

	"github.com/gopasspw/gopass/pkg/debug"
)

// argPlaceholder is replaced by the argument value in Item.Command.
const argPlaceholder = "$ARG"

// Runner runs a derivation command and returns its output. Args are passed
// as positional parameters to the command.
type Runner func(command string, args ...string) (string, error)

// ShellRunner runs command with "sh -c". Extra args are available to the
// command as "$@".
func ShellRunner(command string, args ...string) (string, error) {
	if len(args) > 0 {
		command += ` "$@"`
	}
	cmd := exec.Command("sh", append([]string{"-c", command, "sh"}, args...)...) //nolint:gosec

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w (%s)", ErrCommand, command, err, strings.TrimSpace(stderr.String()))
	}

	return string(out), nil
}

// ResolveArgs turns raw trailer arguments, as given with --trailer, into
// specs ready for Merge.
//
// Behavior:
// - "=" is accepted as separator in addition to the configured ones
// - an argument without separator is a key with an empty value
// - an argument with an empty key fails with ErrEmptyKey
// - keys matching a configured alias are replaced by the alias key and
// inherit its policies where the argument leaves them at default
// - aliases with a command get their value from run; every such alias is
// also applied automatically, ahead of the explicit arguments
//
// A nil run uses ShellRunner.
func ResolveArgs(s *Settings, args []NewTrailer, run Runner) ([]NewTrailer, error) {
	s = orDefault(s)
	if run == nil {
		run = ShellRunner
	}
	seps := s.separators()

	out := make([]NewTrailer, 0, len(args)+len(s.Items))
	for _, it := range s.Items {
		if it.Command == "" && it.Cmd == "" {
			continue
		}
		value, err := runItem(it, "", false, run)
		if err != nil {
			return nil, err
		}
		debug.V(2).Log("alias %q adds %q from its command", it.Name, value)
		out = append(out, newTrailer(it, it.token(), value, NewTrailer{}, seps))
	}

	for _, arg := range args {
		text := strings.TrimSpace(arg.Text)
		key, value := text, ""
		pos := findSeparator(text, "="+seps)
		if pos == 0 {
			return nil, fmt.Errorf("%w in %q", ErrEmptyKey, arg.Text)
		}
		if pos > 0 {
			key = strings.TrimSpace(text[:pos])
			_, size := utf8.DecodeRuneInString(text[pos:])
			value = strings.TrimSpace(text[pos+size:])
		}

		it, ok := s.findItem(key)
		if !ok {
			out = append(out, newTrailer(Item{}, key, value, arg, seps))

			continue
		}
		if it.Command != "" || it.Cmd != "" {
			v, err := runItem(it, value, true, run)
			if err != nil {
				return nil, err
			}
			value = v
		}
		out = append(out, newTrailer(it, it.token(), value, arg, seps))
	}

	return out, nil
}

func runItem(it Item, value string, explicit bool, run Runner) (string, error) {
	var out string
	var err error
	if it.Cmd != "" {
		var args []string
		if explicit {
			args = []string{value}
		}
		out, err = run(it.Cmd, args...)
	} else {
		out, err = run(strings.ReplaceAll(it.Command, argPlaceholder, value))
	}
	if err != nil {
		return "", fmt.Errorf("trailer %q: %w", it.Name, err)
	}

	return strings.TrimSpace(out), nil
}

func newTrailer(it Item, key, value string, arg NewTrailer, seps string) NewTrailer {
	nt := NewTrailer{
		Text:      joinKeyValue(key, value, seps),
		Where:     arg.Where,
		IfExists:  arg.IfExists,
		IfMissing: arg.IfMissing,
	}
	if nt.Where == WhereDefault {
		nt.Where = it.Where
	}
	if nt.IfExists == IfExistsDefault {
		nt.IfExists = it.IfExists
	}
	if nt.IfMissing == IfMissingDefault {
		nt.IfMissing = it.IfMissing
	}

	return nt
}

// joinKeyValue writes key and value with the first separator, unless the
// key already ends in one.
func joinKeyValue(key, value, seps string) string {
	if endsWithSeparator(key, seps) {
		return key + value
	}

	return key + firstSeparator(seps) + " " + value
}
