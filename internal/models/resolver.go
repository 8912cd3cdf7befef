// Package models resolves the list of models the installed agent supports,
// preferring the agent's own answer and falling back to a bundled catalog.
package models

import (
	"context"
	"errors"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog"

	"botdrop/internal/npm"
	"botdrop/internal/shell"
	"botdrop/internal/versioncache"
)

// ErrNoModels is returned when neither the agent, the cache nor the catalog
// produced a model.
var ErrNoModels = errors.New("no model list available")

const defaultMemoryEntries = 8

// Advisories attached to catalog results.
const (
	AdvisoryNoRunner    = "Fallback to bundled catalog"
	AdvisoryLoadFailed  = "Failed to load from OpenClaw; using bundled catalog"
	AdvisoryParseFailed = "Failed to parse command output; using bundled catalog"
)

// Source records where a Result came from.
type Source string

const (
	SourceMemory     Source = "memory"
	SourceCache      Source = "cache"
	SourceLive       Source = "live"
	SourceStaleCache Source = "stale-cache"
	SourceCatalog    Source = "catalog"
)

// Result is a sorted model list.
type Result struct {
	Models   []Model
	Advisory string
	Source   Source
	// Scope is the canonical cache key of the agent version.
	Scope string
}

// Options configures a Resolver.
type Options struct {
	Runner        shell.Runner
	Cache         *versioncache.Store
	Catalog       Catalog
	MemoryEntries int
	Log           zerolog.Logger
}

// Resolver caches model lists per agent version in memory and in the
// persistent store.
type Resolver struct {
	runner  shell.Runner
	cache   *versioncache.Store
	catalog Catalog
	memory  *lru.Cache[string, []Model]
	log     zerolog.Logger
}

// New builds a Resolver.
func New(opts Options) (*Resolver, error) {
	size := opts.MemoryEntries
	if size <= 0 {
		size = defaultMemoryEntries
	}
	memory, err := lru.New[string, []Model](size)
	if err != nil {
		return nil, err
	}
	catalog := opts.Catalog
	if catalog == nil {
		catalog = BundledCatalog{}
	}
	return &Resolver{
		runner:  opts.Runner,
		cache:   opts.Cache,
		catalog: catalog,
		memory:  memory,
		log:     opts.Log,
	}, nil
}

// Resolve returns the models for the given agent version. An empty version
// is scoped as "unknown".
func (r *Resolver) Resolve(ctx context.Context, openclawVersion string, force bool) (Result, error) {
	scope := versioncache.ScopeKey(openclawVersion)
	log := r.log.With().Str("scope", scope).Logger()

	if !force {
		if models, ok := r.memory.Get(scope); ok && len(models) > 0 {
			return Result{Models: slices.Clone(models), Source: SourceMemory, Scope: scope}, nil
		}
		if models := r.readCache(scope); len(models) > 0 {
			r.memory.Add(scope, models)
			return Result{Models: slices.Clone(models), Source: SourceCache, Scope: scope}, nil
		}
	}

	if r.runner == nil {
		return r.fromCatalog(scope, AdvisoryNoRunner)
	}

	res, err := r.runner.Run(ctx, npm.ModelsCommand)
	if err != nil || !res.Success {
		log.Warn().Err(err).Int("exit_code", res.ExitCode).Msg("model list command failed")
		if models := r.readCache(scope); len(models) > 0 {
			r.memory.Add(scope, models)
			return Result{Models: slices.Clone(models), Source: SourceStaleCache, Scope: scope}, nil
		}
		return r.fromCatalog(scope, AdvisoryLoadFailed)
	}

	models := ParseList(res.Stdout)
	if len(models) == 0 {
		log.Warn().Msg("model list command returned nothing usable")
		return r.fromCatalog(scope, AdvisoryParseFailed)
	}

	SortDescending(models)
	if r.cache != nil {
		if err := r.cache.Write(scope, Names(models)); err != nil {
			log.Warn().Err(err).Msg("persist model list")
		}
	}
	r.memory.Add(scope, models)
	log.Info().Int("count", len(models)).Msg("models loaded from openclaw")
	return Result{Models: slices.Clone(models), Source: SourceLive, Scope: scope}, nil
}

// Forget drops the in-memory and persisted lists for a version.
func (r *Resolver) Forget(openclawVersion string) error {
	scope := versioncache.ScopeKey(openclawVersion)
	r.memory.Remove(scope)
	if r.cache == nil {
		return nil
	}
	return r.cache.Delete(scope)
}

func (r *Resolver) readCache(scope string) []Model {
	if r.cache == nil {
		return nil
	}
	entry, ok := r.cache.Read(scope)
	if !ok {
		return nil
	}
	var models []Model
	for _, token := range entry.Tokens {
		if m, ok := ParseModel(token); ok {
			models = append(models, m)
		}
	}
	return models
}

func (r *Resolver) fromCatalog(scope, advisory string) (Result, error) {
	models, err := r.catalog.Models()
	if err != nil {
		r.log.Warn().Err(err).Msg("read model catalog")
	}
	if len(models) == 0 {
		return Result{Scope: scope}, ErrNoModels
	}
	r.log.Info().Int("count", len(models)).Str("advisory", advisory).Msg("using static model catalog")
	return Result{Models: models, Advisory: advisory, Source: SourceCatalog, Scope: scope}, nil
}
