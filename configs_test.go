package trailers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gopasspw/gopass/pkg/appdir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testEnvPrefix = "TRAILERS_CFG_TEST"

func writeConfig(t *testing.T, fn, content string) {
	t.Helper()

	require.NoError(t, os.MkdirAll(filepath.Dir(fn), 0o755))
	require.NoError(t, os.WriteFile(fn, []byte(content), 0o644))
}

func testConfigs(t *testing.T) (*Configs, string) {
	t.Helper()

	td := t.TempDir()
	t.Setenv("GOPASS_HOMEDIR", td)

	xdg := filepath.Join(appdir.New(name).UserConfig(), "config")
	require.True(t, strings.HasPrefix(xdg, td), xdg)

	writeConfig(t, filepath.Join(td, "system"), "[trailer]\n\twhere = start\n\tifmissing = doNothing\n")
	writeConfig(t, xdg, "[trailer]\n\twhere = before\n\tseparators = \":#\"\n")
	writeConfig(t, filepath.Join(td, ".gitconfig"), "[trailer]\n\twhere = after\n[trailer \"sign\"]\n\tkey = Signed-off-by\n")
	writeConfig(t, filepath.Join(td, "repo", ".git", "config"), "[trailer \"sign\"]\n\tifexists = replace\n[trailer \"cc\"]\n\tkey = Cc\n")
	writeConfig(t, filepath.Join(td, "repo", ".git", "config.worktree"), "[trailer]\n\tifexists = add\n")

	t.Setenv(testEnvPrefix+"_COUNT", "1")
	t.Setenv(testEnvPrefix+"_KEY_0", "trailer.sign.where")
	t.Setenv(testEnvPrefix+"_VALUE_0", "end")

	cs := NewConfigs()
	cs.SystemConfig = filepath.Join(td, "system")
	cs.EnvPrefix = testEnvPrefix

	return cs, td
}

func TestConfigsLoadAll(t *testing.T) {
	cs, td := testConfigs(t)
	cs.LoadAll(filepath.Join(td, "repo"))

	v, ok := cs.Get("trailer.where")
	require.True(t, ok)
	assert.Equal(t, "after", v)

	v, ok = cs.Get("trailer.sign.where")
	require.True(t, ok)
	assert.Equal(t, "end", v)

	_, ok = cs.Get("trailer.nope")
	assert.False(t, ok)

	s, err := cs.Settings()
	require.NoError(t, err)
	assert.Equal(t, WhereAfter, s.Where)
	assert.Equal(t, IfExistsAdd, s.IfExists)
	assert.Equal(t, IfMissingDoNothing, s.IfMissing)
	assert.Equal(t, ":#", s.Separators)
	assert.Equal(t, []Item{
		{Name: "sign", Key: "Signed-off-by", IfExists: IfExistsReplace, Where: WhereEnd},
		{Name: "cc", Key: "Cc"},
	}, s.Items)
	assert.Equal(t, []string{"cc", "sign"}, s.Names())
	// the single line exclusion survives loading
	assert.NotNil(t, s.Exclude)

	assert.Contains(t, cs.String(), "Name: git")
}

func TestConfigsNoSystem(t *testing.T) {
	cs, td := testConfigs(t)
	t.Setenv(testEnvPrefix+"_NOSYSTEM", "1")
	cs.LoadAll(filepath.Join(td, "repo"))

	s, err := cs.Settings()
	require.NoError(t, err)
	assert.Equal(t, IfMissingAdd, s.IfMissing)
}

func TestConfigsNoWorkdir(t *testing.T) {
	cs, _ := testConfigs(t)
	cs.LoadAll("")

	s, err := cs.Settings()
	require.NoError(t, err)
	assert.Equal(t, IfExistsAddIfDifferentNeighbor, s.IfExists)
	assert.Equal(t, []string{"sign"}, s.Names())
}

func TestConfigsEmpty(t *testing.T) {
	td := t.TempDir()
	t.Setenv("GOPASS_HOMEDIR", td)

	cs := NewConfigs()
	cs.SystemConfig = ""
	cs.EnvPrefix = testEnvPrefix + "_UNSET"
	cs.LoadAll(td)

	s, err := cs.Settings()
	require.NoError(t, err)
	assert.Equal(t, DefaultSettings().Where, s.Where)
	assert.Equal(t, DefaultSeparators, s.Separators)
	assert.Empty(t, s.Items)
}

func TestSettingsFromConfigErrors(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		in   string
		err  error
		text string
	}{
		{
			in:   "[trailer]\n\twhere = middle\n",
			err:  ErrUnknownWhere,
			text: "trailer.where",
		},
		{
			in:   "[trailer]\n\tifexists = default\n",
			err:  ErrUnknownIfExists,
			text: "trailer.ifexists",
		},
		{
			in:   "[trailer \"sign\"]\n\tifexists = bogus\n",
			err:  ErrUnknownIfExists,
			text: "trailer.sign.ifexists",
		},
		{
			in:   "[trailer \"sign\"]\n\tifmissing = replace\n",
			err:  ErrUnknownIfMissing,
			text: "trailer.sign.ifmissing",
		},
		{
			in:   "[trailer \"sign\"]\n\twhere = top\n",
			err:  ErrUnknownWhere,
			text: `"top"`,
		},
	} {
		_, err := SettingsFromConfig(ParseConfig(strings.NewReader(tc.in)))
		require.ErrorIs(t, err, tc.err, tc.in)
		assert.Contains(t, err.Error(), tc.text)
	}
}

func TestSettingsFromConfig(t *testing.T) {
	t.Parallel()

	s, err := SettingsFromConfig(ParseConfig(strings.NewReader(`[core]
	commentChar = %
[trailer "see"]
	key = See-also
	command = git log -1 --format=%h
	cmd = ./lookup.sh
	where = before
	ifmissing = doNothing
	unknown = ignored
[trailer "see"]
	key = See
[trailer]
	unknown = ignored
`)))
	require.NoError(t, err)
	assert.Equal(t, "%", s.CommentPrefix)
	assert.Equal(t, []Item{{
		Name:      "see",
		Key:       "See",
		Where:     WhereBefore,
		IfMissing: IfMissingDoNothing,
		Command:   "git log -1 --format=%h",
		Cmd:       "./lookup.sh",
	}}, s.Items)
}

func TestCommentPrefix(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "#", commentPrefix(""))
	assert.Equal(t, "#", commentPrefix("auto"))
	assert.Equal(t, "%", commentPrefix("%"))
	assert.Equal(t, "//", commentPrefix("//"))
}
