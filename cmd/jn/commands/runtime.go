package commands

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/jnproject/jn/internal/config"
	"github.com/jnproject/jn/internal/obslog"
	"github.com/jnproject/jn/internal/projectroot"
	"github.com/jnproject/jn/pkg/cache"
	"github.com/jnproject/jn/pkg/discovery"
	"github.com/jnproject/jn/pkg/pipeline"
	"github.com/jnproject/jn/pkg/plugin"
	"github.com/jnproject/jn/pkg/profile"
	"github.com/jnproject/jn/pkg/registry"
	"github.com/jnproject/jn/pkg/resolver"
)

// runtime bundles the core components a command needs, wired the same way
// for every entry point (the reader itself and every diagnostic subcommand).
type runtime struct {
	cfg         *config.Config
	fs          afero.Fs
	log         *obslog.Logger
	installRoot string
	projectRoot string

	registry *registry.Registry
	profiles *profile.Service
	loader   *profile.Loader
	cache    *cache.Cache
	resolver *resolver.Resolver
	orch     *pipeline.Orchestrator
}

func defaultInstallRoot() string {
	if root := os.Getenv("JN_INSTALL_ROOT"); root != "" {
		return root
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "jn-install")
	}
	return filepath.Join(home, ".local", "jn")
}

// newRuntime loads configuration, runs plugin discovery (consulting the
// cache first), and wires the Registry/Service/Resolver/Orchestrator quartet.
func newRuntime(verbosity int) (*runtime, error) {
	cfg, err := config.LoadConfigFromDefaultLocations()
	if err != nil {
		return nil, err
	}

	log, err := obslog.SetupFromVerbosity(verbosity)
	if err != nil {
		return nil, err
	}

	fs := afero.NewOsFs()
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	projectRoot := projectroot.Find(wd, cfg.ProjectRoot)

	installRoot := cfg.InstallRoot
	if installRoot == "" {
		installRoot = defaultInstallRoot()
	}

	pluginDirs := pluginTierDirs(projectRoot, installRoot)
	cachePath := cache.DefaultPath(installRoot)
	pluginCache := cache.New(fs, cachePath)

	var plugins []plugin.Info
	if !cfg.Cache.Disabled {
		if cached, err := pluginCache.Load(); err == nil {
			plugins = cached
		}
	}
	if plugins == nil {
		d := discovery.New(fs, log)
		timeout := discoveryTimeout(cfg)
		plugins = d.DiscoverAll(context.Background(), discovery.Config{Dirs: pluginDirs, Timeout: timeout})
		if !cfg.Cache.Disabled {
			_ = pluginCache.Save(plugins)
		}
	}

	reg := registry.New()
	for _, p := range plugins {
		reg.Register(p)
	}

	profileRoots := profileTierRoots(projectRoot, installRoot)
	svc := profile.NewService(fs, profileRoots)
	loader := profile.NewLoader(fs, true)

	return &runtime{
		cfg:         cfg,
		fs:          fs,
		log:         log,
		installRoot: installRoot,
		projectRoot: projectRoot,
		registry:    reg,
		profiles:    svc,
		loader:      loader,
		cache:       pluginCache,
		resolver:    resolver.New(fs, reg, svc, loader),
		orch:        pipeline.New(log),
	}, nil
}

func discoveryTimeout(cfg *config.Config) time.Duration {
	ms := cfg.Discovery.TimeoutMillis
	if ms <= 0 {
		ms = 5000
	}
	return time.Duration(ms) * time.Millisecond
}

// pluginTierDirs lists every (project, user, bundled) x (native, script)
// directory Discovery should scan.
func pluginTierDirs(projectRoot, installRoot string) []plugin.Dir {
	home, _ := os.UserHomeDir()
	tiers := []struct {
		base string
		tier plugin.Tier
	}{
		{filepath.Join(projectRoot, ".jn", "plugins"), plugin.TierProject},
		{filepath.Join(home, ".local", "jn", "plugins"), plugin.TierUser},
		{filepath.Join(installRoot, "plugins"), plugin.TierBundled},
	}
	var dirs []plugin.Dir
	for _, t := range tiers {
		dirs = append(dirs,
			plugin.Dir{Path: filepath.Join(t.base, "native"), Tier: t.tier, Language: plugin.LanguageNative},
			plugin.Dir{Path: filepath.Join(t.base, "script"), Tier: t.tier, Language: plugin.LanguageScript},
		)
	}
	return dirs
}

// profileTierRoots returns tiered profile roots in ASCENDING priority
// (bundled, user, project), matching profile.NewService's documented
// convention so the highest-tier root shadows the rest.
func profileTierRoots(projectRoot, installRoot string) []profile.Root {
	home, _ := os.UserHomeDir()
	return []profile.Root{
		{Path: filepath.Join(installRoot, "profiles"), Tier: profile.TierBundled},
		{Path: filepath.Join(home, ".local", "jn", "profiles"), Tier: profile.TierUser},
		{Path: filepath.Join(projectRoot, ".jn", "profiles"), Tier: profile.TierProject},
	}
}
