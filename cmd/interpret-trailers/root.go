package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gopasspw/gopass/pkg/debug"
	"github.com/gopasspw/trailers"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Version information (set at build time).
var Version = "0.1.0"

var errNoInPlaceFile = errors.New("no input file given for in-place editing")

// argState collects --trailer arguments together with the policies that
// were in effect when each of them was given.
type argState struct {
	where     trailers.Where
	ifExists  trailers.IfExists
	ifMissing trailers.IfMissing
	trailers  []trailers.NewTrailer
}

type trailerValue struct{ st *argState }

func (v trailerValue) String() string { return "" }
func (v trailerValue) Type() string   { return "key=value" }
func (v trailerValue) Set(s string) error {
	v.st.trailers = append(v.st.trailers, trailers.NewTrailer{
		Text:      s,
		Where:     v.st.where,
		IfExists:  v.st.ifExists,
		IfMissing: v.st.ifMissing,
	})

	return nil
}

type whereValue struct{ st *argState }

func (v whereValue) String() string { return v.st.where.String() }
func (v whereValue) Type() string   { return "placement" }
func (v whereValue) Set(s string) error {
	w, err := trailers.ParseWhere(s)
	if err != nil {
		return err
	}
	v.st.where = w

	return nil
}

type ifExistsValue struct{ st *argState }

func (v ifExistsValue) String() string { return v.st.ifExists.String() }
func (v ifExistsValue) Type() string   { return "action" }
func (v ifExistsValue) Set(s string) error {
	e, err := trailers.ParseIfExists(s)
	if err != nil {
		return err
	}
	v.st.ifExists = e

	return nil
}

type ifMissingValue struct{ st *argState }

func (v ifMissingValue) String() string { return v.st.ifMissing.String() }
func (v ifMissingValue) Type() string   { return "action" }
func (v ifMissingValue) Set(s string) error {
	m, err := trailers.ParseIfMissing(s)
	if err != nil {
		return err
	}
	v.st.ifMissing = m

	return nil
}

var (
	_ pflag.Value = trailerValue{}
	_ pflag.Value = whereValue{}
	_ pflag.Value = ifExistsValue{}
	_ pflag.Value = ifMissingValue{}
)

// newRootCmd creates the interpret-trailers command. load provides the
// trailer settings, it is called once per invocation.
func newRootCmd(load func() (*trailers.Settings, error)) *cobra.Command {
	st := &argState{}
	opts := &trailers.Options{}
	var parse, listAliases bool
	var keys []string

	cmd := &cobra.Command{
		Use:   "interpret-trailers [flags] [<file>...]",
		Short: "Add or parse structured information in commit messages",
		Long: `interpret-trailers adds trailers (lines like "Signed-off-by: A <a@example.com>")
to commit messages, or prints the trailers a message already has.

Without files the message is read from stdin and written to stdout. Each
--trailer is applied with the --where, --if-exists and --if-missing values
given before it on the command line.`,
		Example: `  interpret-trailers --trailer "Reviewed-by: Jane <jane@example.com>" msg.txt
  git log -1 --format=%B | interpret-trailers --parse
  interpret-trailers --in-place --where start --trailer "Cc=list@example.com" msg.txt`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if parse {
				// normalized trailers of the input, without additions
				opts.OnlyTrailers = true
				opts.Unfold = true
			}
			if opts.InPlace && len(args) == 0 {
				return errNoInPlaceFile
			}

			s, err := load()
			if err != nil {
				return fmt.Errorf("failed to load trailer config: %w", err)
			}
			if listAliases {
				for _, n := range s.Names() {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), n)
				}

				return nil
			}
			if len(keys) > 0 {
				filter, err := trailers.KeyFilter(s.Separators, keys...)
				if err != nil {
					return fmt.Errorf("invalid --key pattern: %w", err)
				}
				opts.Filter = filter
			}

			var specs []trailers.NewTrailer
			if !opts.OnlyInput && !parse {
				specs, err = trailers.ResolveArgs(s, st.trailers, nil)
				if err != nil {
					return err
				}
			}

			if len(args) == 0 {
				return process(s, specs, opts, cmd.InOrStdin(), cmd.OutOrStdout())
			}
			for _, fn := range args {
				if err := processFile(s, specs, opts, fn, cmd.OutOrStdout()); err != nil {
					return err
				}
			}

			return nil
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.InPlace, "in-place", false, "edit files in place")
	f.BoolVar(&opts.TrimEmpty, "trim-empty", false, "trim empty trailers")
	f.Var(whereValue{st}, "where", "where to place the new trailer (end, after, before, start)")
	f.Var(ifExistsValue{st}, "if-exists", "action if trailer already exists (addIfDifferentNeighbor, addIfDifferent, add, replace, doNothing)")
	f.Var(ifMissingValue{st}, "if-missing", "action if trailer is missing (add, doNothing)")
	f.BoolVar(&opts.OnlyTrailers, "only-trailers", false, "output only the trailers")
	f.BoolVar(&opts.OnlyInput, "only-input", false, "print the input trailers unchanged, ignoring --trailer")
	f.BoolVar(&opts.Unfold, "unfold", false, "join whitespace-continued values")
	f.BoolVar(&parse, "parse", false, "print the unfolded input trailers only, ignoring --trailer")
	f.BoolVar(&opts.KeepPatch, "no-divider", false, `do not treat "---" as the end of input`)
	f.BoolVar(&opts.NoDivider, "no-blank-line", false, "do not insert a blank line before a new trailer block")
	f.BoolVar(&opts.KeyOnly, "key-only", false, "output only the keys")
	f.BoolVar(&opts.ValueOnly, "value-only", false, "output only the values")
	f.StringVar(&opts.Separator, "separator", "", "separator between trailers (default: newline)")
	f.StringVar(&opts.KeyValueSeparator, "key-value-separator", "", `separator between key and value (default: ": ")`)
	f.StringSliceVar(&keys, "key", nil, "only output trailers whose key matches one of these globs")
	f.BoolVar(&listAliases, "list-aliases", false, "print the configured trailer aliases and exit")
	f.Var(trailerValue{st}, "trailer", "trailer(s) to add, as key=value or key:value")

	cmd.MarkFlagsMutuallyExclusive("key-only", "value-only")

	return cmd
}

func process(s *trailers.Settings, specs []trailers.NewTrailer, opts *trailers.Options, in io.Reader, out io.Writer) error {
	msg, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("failed to read input: %w", err)
	}

	_, err = io.WriteString(out, trailers.Process(s, string(msg), specs, opts))

	return err
}

func processFile(s *trailers.Settings, specs []trailers.NewTrailer, opts *trailers.Options, fn string, out io.Writer) error {
	msg, err := os.ReadFile(fn)
	if err != nil {
		return fmt.Errorf("could not read input file %q: %w", fn, err)
	}

	result := trailers.Process(s, string(msg), specs, opts)
	if !opts.InPlace {
		_, err := io.WriteString(out, result)

		return err
	}

	return writeInPlace(fn, result)
}

// writeInPlace replaces fn atomically by writing to a temporary file in the
// same directory first.
func writeInPlace(fn, content string) error {
	fi, err := os.Stat(fn)
	if err != nil {
		return fmt.Errorf("could not stat %q: %w", fn, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(fn), "."+filepath.Base(fn)+".*")
	if err != nil {
		return fmt.Errorf("could not create temporary file for %q: %w", fn, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()

		return fmt.Errorf("could not write %q: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("could not write %q: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), fi.Mode().Perm()); err != nil {
		return fmt.Errorf("could not set mode of %q: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), fn); err != nil {
		return fmt.Errorf("could not replace %q: %w", fn, err)
	}

	debug.V(1).Log("rewrote %s in place", fn)

	return nil
}
