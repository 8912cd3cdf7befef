package cli

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"botdrop/internal/channels"
	"botdrop/internal/config"
	"botdrop/internal/credentials"
	"botdrop/internal/document"
	"botdrop/internal/kv"
	"botdrop/internal/logx"
	"botdrop/internal/models"
	"botdrop/internal/npm"
	"botdrop/internal/paths"
	"botdrop/internal/resolver"
	"botdrop/internal/shell"
	"botdrop/internal/versioncache"
)

// newRunner builds the command runner. Tests replace it with a fake.
var newRunner = func(cfg config.Config, log zerolog.Logger) shell.Runner {
	return shell.ShellRunner{
		Shell:   cfg.OpenClaw.Shell,
		Timeout: cfg.Versions.CommandTimeout,
		Log:     log,
	}
}

// environment is everything a command needs, built once per invocation.
type environment struct {
	paths  paths.StatePaths
	cfg    config.Config
	log    zerolog.Logger
	store  kv.Store
	runner shell.Runner

	// versions is built once per invocation; picker reloads and the
	// installed-version probe share its request group.
	versions *resolver.Resolver

	closers []io.Closer
}

func loadConfig() (paths.StatePaths, config.Config, error) {
	sp, err := paths.Resolve(stateDir)
	if err != nil {
		return paths.StatePaths{}, config.Config{}, err
	}
	if strings.TrimSpace(configFile) != "" {
		sp.ConfigFile = paths.ExpandHome(configFile)
	}
	cfg, err := config.Load(sp.ConfigFile)
	if err != nil {
		return paths.StatePaths{}, config.Config{}, err
	}
	if strings.TrimSpace(logLevel) != "" {
		cfg.Log.Level = logLevel
	}
	return paths.ApplyConfig(sp, cfg), cfg, nil
}

func openEnvironment(cmd *cobra.Command) (*environment, error) {
	sp, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if results := cfg.Validate(); config.HasErrors(results) {
		for _, r := range results {
			if r.Level == "error" {
				return nil, errors.New("invalid configuration: " + r.Message)
			}
		}
	}
	if err := sp.EnsureRoot(); err != nil {
		return nil, err
	}

	env := &environment{paths: sp, cfg: cfg}
	logger, closer, err := logx.New(cfg.Log, sp, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}
	env.log = logger
	env.closers = append(env.closers, closer)

	store, err := kv.Open(cfg.Store.Driver, sp.StoreFile)
	if err != nil {
		_ = env.Close()
		return nil, err
	}
	env.store = store
	if c, ok := store.(io.Closer); ok {
		env.closers = append(env.closers, c)
	}

	env.runner = newRunner(cfg, logger.With().Str("component", "shell").Logger())
	env.versionResolver()
	return env, nil
}

// Close releases the store and log file.
func (e *environment) Close() error {
	var errs []error
	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	e.closers = nil
	return errors.Join(errs...)
}

func (e *environment) component(name string) zerolog.Logger {
	return e.log.With().Str("component", name).Logger()
}

func (e *environment) registry() npm.RegistrySelector {
	switch e.cfg.Registry.Mode {
	case config.RegistryNone:
		return npm.NoRegistry{}
	case config.RegistryFixed:
		return npm.FixedRegistry{URL: e.cfg.Registry.URL}
	default:
		probe := npm.DefaultProbeSelector()
		probe.Default = e.cfg.Registry.Default
		probe.Mirror = e.cfg.Registry.Mirror
		probe.TTL = e.cfg.Registry.CacheTTL
		return probe
	}
}

func (e *environment) commands() npm.Commands {
	return npm.NewCommands(e.cfg.OpenClaw.Package, e.registry())
}

func (e *environment) versionResolver() *resolver.Resolver {
	if e.versions != nil {
		return e.versions
	}
	cache := versioncache.New(e.store, versioncache.VersionsPrefix, e.cfg.Versions.CacheTTL)
	cache.Log = e.component("versioncache")
	e.versions = resolver.New(resolver.Options{
		Runner:   e.runner,
		Commands: e.commands(),
		Cache:    cache,
		Log:      e.component("resolver"),
	})
	return e.versions
}

func (e *environment) modelResolver() (*models.Resolver, error) {
	cache := versioncache.New(e.store, versioncache.ModelsPrefix, e.cfg.Models.CacheTTL)
	cache.Log = e.component("versioncache")
	return models.New(models.Options{
		Runner:        e.runner,
		Cache:         cache,
		Catalog:       models.CatalogFor(e.cfg.Models.CatalogFile),
		MemoryEntries: e.cfg.Models.MemoryEntries,
		Log:           e.component("models"),
	})
}

// installedVersion prefers the configured override, then asks the agent. An
// agent that is missing or fails yields "".
func (e *environment) installedVersion(ctx context.Context) string {
	if v := strings.TrimSpace(e.cfg.OpenClaw.InstalledVersion); v != "" {
		return v
	}
	v, err := e.versionResolver().InstalledVersion(ctx)
	if err != nil {
		e.log.Debug().Err(err).Msg("installed version unavailable")
		return ""
	}
	return v
}

func (e *environment) synthesizer() *channels.Synthesizer {
	store := document.NewStore(e.paths.OpenClawConfig)
	return channels.NewSynthesizer(store, e.component("channels"))
}

func (e *environment) credentials() *credentials.Cache {
	return credentials.New(e.store, e.component("credentials"))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
