package trailers

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gopasspw/gopass/pkg/appdir"
	"github.com/gopasspw/gopass/pkg/debug"
)

const (
	name           = "git"
	systemConfig   = "/etc/gitconfig"
	globalConfig   = ".gitconfig"
	localConfig    = ".git/config"
	worktreeConfig = ".git/config.worktree"
	envPrefix      = "GIT_CONFIG"
)

// Configs are the git configuration files trailer settings are read from.
//
// Scope priority (later ones override earlier ones):
// 1. System config (/etc/gitconfig), skipped if <EnvPrefix>_NOSYSTEM is set
// 2. Global config ($XDG_CONFIG_HOME/git/config, then ~/.gitconfig)
// 3. Local config (<workdir>/.git/config)
// 4. Worktree config (<workdir>/.git/config.worktree)
// 5. Environment (<EnvPrefix>_COUNT, <EnvPrefix>_KEY_<n>, <EnvPrefix>_VALUE_<n>)
//
// Missing files are not an error. The file locations can be changed before
// calling LoadAll:
//
//	cfg := trailers.NewConfigs()
//	cfg.SystemConfig = ""
//	cfg.LoadAll(".")
//	s, err := cfg.Settings()
type Configs struct {
	system   *Config
	global   []*Config
	local    *Config
	worktree *Config
	env      *Config
	workdir  string

	Name           string
	SystemConfig   string
	GlobalConfig   string
	LocalConfig    string
	WorktreeConfig string
	EnvPrefix      string
}

// NewConfigs creates a Configs with git's default locations. Nothing is
// loaded until LoadAll is called.
func NewConfigs() *Configs {
	return &Configs{
		Name:           name,
		SystemConfig:   systemConfig,
		GlobalConfig:   globalConfig,
		LocalConfig:    localConfig,
		WorktreeConfig: worktreeConfig,
		EnvPrefix:      envPrefix,
	}
}

// String implements fmt.Stringer for debugging.
func (cs *Configs) String() string {
	return fmt.Sprintf("TrailerConfigs{Name: %s - Workdir: %s - Env: %s - System: %s - Global: %s - Local: %s - Worktree: %s}", cs.Name, cs.workdir, cs.EnvPrefix, cs.SystemConfig, cs.GlobalConfig, cs.LocalConfig, cs.WorktreeConfig)
}

// LoadAll loads all configuration files from their configured locations.
// workdir is the repository root; if empty, the local and worktree configs
// are skipped. Files that are missing or unreadable are ignored.
func (cs *Configs) LoadAll(workdir string) *Configs {
	cs.workdir = workdir

	debug.Log("Loading trailer configs for %s", cs.Name)

	cs.system = nil
	if cs.SystemConfig != "" && os.Getenv(cs.EnvPrefix+"_NOSYSTEM") == "" {
		cs.system = cs.load("system", cs.SystemConfig)
	}

	cs.global = cs.global[:0]
	for _, p := range cs.globalLocations() {
		if c := cs.load("global", p); c != nil {
			cs.global = append(cs.global, c)
		}
	}

	cs.local, cs.worktree = nil, nil
	if workdir != "" {
		if cs.LocalConfig != "" {
			cs.local = cs.load("local", filepath.Join(workdir, cs.LocalConfig))
		}
		if cs.WorktreeConfig != "" {
			cs.worktree = cs.load("worktree", filepath.Join(workdir, cs.WorktreeConfig))
		}
	}

	cs.env = LoadConfigFromEnv(cs.EnvPrefix)

	return cs
}

func (cs *Configs) load(scope, fn string) *Config {
	c, err := LoadConfig(fn)
	if err != nil {
		debug.V(1).Log("[%s] failed to load %s config from %s: %s", cs.Name, scope, fn, err)

		return nil
	}
	debug.V(1).Log("[%s] loaded %s config from %s", cs.Name, scope, fn)

	return c
}

// globalLocations returns the per-user config files in load order. Like git
// both are read, ~/.gitconfig wins over the XDG location.
func (cs *Configs) globalLocations() []string {
	locs := []string{
		filepath.Join(appdir.New(cs.Name).UserConfig(), "config"),
	}
	if cs.GlobalConfig != "" {
		locs = append(locs, filepath.Join(appdir.UserHome(), cs.GlobalConfig))
	}

	return locs
}

// scopes returns all loaded configs, lowest priority first.
func (cs *Configs) scopes() []*Config {
	out := make([]*Config, 0, 6)
	out = append(out, cs.system)
	out = append(out, cs.global...)
	out = append(out, cs.local, cs.worktree, cs.env)

	return out
}

// Get returns the effective value of key across all scopes.
func (cs *Configs) Get(key string) (string, bool) {
	all := cs.scopes()
	for i := len(all) - 1; i >= 0; i-- {
		if v, found := all[i].Get(key); found {
			return v, true
		}
	}

	return "", false
}

// Settings builds the trailer settings snapshot from all scopes.
//
// Recognized keys:
// - trailer.where, trailer.ifexists, trailer.ifmissing, trailer.separators
// - trailer.<name>.key, .where, .ifexists, .ifmissing, .command, .cmd
// - core.commentchar
//
// Values are applied in scope order, so later scopes override earlier
// ones. Aliases keep the order in which their name first appeared. An
// unrecognized policy value fails with ErrUnknownWhere, ErrUnknownIfExists
// or ErrUnknownIfMissing.
func (cs *Configs) Settings() (*Settings, error) {
	b := settingsBuilder{s: DefaultSettings(), items: map[string]int{}}
	for _, c := range cs.scopes() {
		if c == nil {
			continue
		}
		for _, e := range c.entries {
			if err := b.apply(e.key, e.value); err != nil {
				return nil, err
			}
		}
	}

	debug.V(1).Log("[%s] trailer settings: where %s, ifExists %s, ifMissing %s, %d aliases", cs.Name, b.s.Where, b.s.IfExists, b.s.IfMissing, len(b.s.Items))

	return b.s, nil
}

// SettingsFromConfig builds settings from a single config.
func SettingsFromConfig(c *Config) (*Settings, error) {
	cs := &Configs{Name: name, env: c}

	return cs.Settings()
}

type settingsBuilder struct {
	s     *Settings
	items map[string]int
}

func (b *settingsBuilder) apply(key, value string) error {
	section, sub, skey := splitKey(key)
	switch section {
	case "core":
		if skey == "commentchar" && sub == "" {
			b.s.CommentPrefix = commentPrefix(value)
		}

		return nil
	case "trailer":
	default:
		return nil
	}

	if sub == "" {
		return b.applyGlobal(skey, value)
	}

	idx, ok := b.items[sub]
	if !ok {
		idx = len(b.s.Items)
		b.items[sub] = idx
		b.s.Items = append(b.s.Items, Item{Name: sub})
	}
	it := &b.s.Items[idx]

	var err error
	switch skey {
	case "key":
		it.Key = value
	case "command":
		it.Command = value
	case "cmd":
		it.Cmd = value
	case "where":
		it.Where, err = ParseWhere(value)
	case "ifexists":
		it.IfExists, err = ParseIfExists(value)
	case "ifmissing":
		it.IfMissing, err = ParseIfMissing(value)
	default:
		debug.V(2).Log("unknown trailer config key %q", key)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}

	return nil
}

func (b *settingsBuilder) applyGlobal(skey, value string) error {
	var err error
	switch skey {
	case "where":
		b.s.Where, err = ParseWhere(value)
	case "ifexists":
		b.s.IfExists, err = ParseIfExists(value)
	case "ifmissing":
		b.s.IfMissing, err = ParseIfMissing(value)
	case "separators":
		b.s.Separators = value
	default:
		debug.V(2).Log("unknown trailer config key %q", skey)
	}
	if err != nil {
		return fmt.Errorf("trailer.%s: %w", skey, err)
	}

	return nil
}

// commentPrefix maps core.commentChar to a comment prefix. "auto" picks
// the default, as there is no message to inspect at config time.
func commentPrefix(value string) string {
	if value == "" || strings.EqualFold(value, "auto") {
		return DefaultCommentPrefix
	}

	return value
}

// LoadConfigFromEnv parses an overlay config from the environment, the
// way git reads GIT_CONFIG_COUNT, GIT_CONFIG_KEY_<n> and GIT_CONFIG_VALUE_<n>.
// An incomplete set of variables results in an empty config.
func LoadConfigFromEnv(envPrefix string) *Config {
	c := &Config{}

	count, err := strconv.Atoi(os.Getenv(envPrefix + "_COUNT"))
	if err != nil || count < 1 {
		return c
	}

	for i := range count {
		key := os.Getenv(fmt.Sprintf("%s_KEY_%d", envPrefix, i))
		value, found := os.LookupEnv(fmt.Sprintf("%s_VALUE_%d", envPrefix, i))
		if key == "" || !found {
			debug.V(1).Log("incomplete %s_* variables at index %d", envPrefix, i)

			return &Config{}
		}

		key = canonicalizeKey(key)
		if key == "" {
			debug.V(1).Log("invalid key in %s_KEY_%d", envPrefix, i)

			continue
		}
		c.add(key, value)
		debug.V(3).Log("added %s from env", key)
	}

	return c
}
