// Package resolver produces the ranked list of installable OpenClaw versions
// from the registry, the local cache, or a static fallback, in that order of
// preference.
package resolver

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"botdrop/internal/npm"
	"botdrop/internal/shell"
	"botdrop/internal/version"
	"botdrop/internal/versioncache"
)

// DefaultScope is the cache scope used when the caller does not name one.
const DefaultScope = "npm"

// Source records where a Result came from.
type Source string

const (
	SourceCache      Source = "cache"
	SourceLive       Source = "live"
	SourceStaleCache Source = "stale-cache"
	SourceFallback   Source = "fallback"
)

// Request asks for a version list.
type Request struct {
	ScopeKey       string
	CurrentVersion string
	ForceRefresh   bool
}

// Result is a ranked list plus an advisory. Advisory is empty exactly when
// the list came from a fresh cache entry or a successful live query.
type Result struct {
	Versions []string
	Advisory string
	Source   Source
	// Err is the fetch failure behind a degraded result.
	Err error
}

// Degraded reports whether the result came from a fallback path.
func (r Result) Degraded() bool {
	return r.Advisory != ""
}

// Options configures a Resolver.
type Options struct {
	// Runner executes the version query. Nil degrades every request.
	Runner   shell.Runner
	Commands npm.Commands
	Cache    *versioncache.Store
	Log      zerolog.Logger
}

// Resolver implements the cache, live, stale cache, fallback chain.
type Resolver struct {
	runner   shell.Runner
	commands npm.Commands
	cache    *versioncache.Store
	log      zerolog.Logger

	group singleflight.Group
}

// New builds a resolver. Cache is required.
func New(opts Options) *Resolver {
	return &Resolver{
		runner:   opts.Runner,
		commands: opts.Commands,
		cache:    opts.Cache,
		log:      opts.Log,
	}
}

// Resolve returns the version list for req. It never fails; every degraded
// path yields a smaller valid list and an advisory. Concurrent calls for the
// same scope share one execution.
func (r *Resolver) Resolve(ctx context.Context, req Request) Result {
	scope := scopeOf(req)
	key := scope + "|" + strconv.FormatBool(req.ForceRefresh) + "|" + strings.TrimSpace(req.CurrentVersion)
	v, _, _ := r.group.Do(key, func() (any, error) {
		return r.resolve(ctx, scope, req), nil
	})
	res := v.(Result)
	res.Versions = slices.Clone(res.Versions)
	return res
}

// ResolveAsync runs Resolve on a new goroutine and calls done exactly once.
func (r *Resolver) ResolveAsync(ctx context.Context, req Request, done func(Result)) {
	go func() {
		done(r.Resolve(ctx, req))
	}()
}

func scopeOf(req Request) string {
	if strings.TrimSpace(req.ScopeKey) == "" {
		return DefaultScope
	}
	return versioncache.ScopeKey(req.ScopeKey)
}

func (r *Resolver) resolve(ctx context.Context, scope string, req Request) Result {
	log := r.log.With().Str("scope", scope).Bool("force", req.ForceRefresh).Logger()

	if !req.ForceRefresh {
		if entry, ok := r.cache.ReadFresh(scope); ok {
			if list := version.NormalizeList(entry.Tokens); len(list) > 0 {
				log.Debug().Int("count", len(list)).Msg("versions from fresh cache")
				return Result{Versions: list, Source: SourceCache}
			}
		}
	}

	list, fetchErr := r.fetch(ctx)
	if fetchErr == nil {
		if err := r.cache.Write(scope, list); err != nil {
			log.Warn().Err(err).Msg("persist version list")
		}
		log.Info().Int("count", len(list)).Msg("versions fetched")
		return Result{Versions: list, Source: SourceLive}
	}

	log.Warn().Str("reason", fetchErr.Error()).Msg("version fetch degraded")

	if entry, ok := r.cache.Read(scope); ok {
		if list := version.NormalizeList(entry.Tokens); len(list) > 0 {
			return Result{
				Versions: list,
				Advisory: fetchErr.Error() + ", using cache",
				Source:   SourceStaleCache,
				Err:      fetchErr,
			}
		}
	}

	return Result{
		Versions: version.Fallback(req.CurrentVersion),
		Advisory: fetchErr.Error(),
		Source:   SourceFallback,
		Err:      fetchErr,
	}
}

func (r *Resolver) fetch(ctx context.Context) ([]string, *FetchError) {
	if r.runner == nil {
		return nil, &FetchError{Err: ErrNoRunner}
	}
	res, err := r.runner.Run(ctx, r.commands.Versions())
	if err != nil {
		return nil, &FetchError{ExitCode: res.ExitCode, Err: err}
	}
	if !res.Success {
		return nil, &FetchError{ExitCode: res.ExitCode}
	}
	list := version.ParseOutput(res.Stdout)
	if len(list) == 0 {
		return nil, &FetchError{Empty: true}
	}
	return list, nil
}

// Latest asks the registry for the current "latest" dist-tag.
func (r *Resolver) Latest(ctx context.Context) (string, error) {
	if r.runner == nil {
		return "", &FetchError{Err: ErrNoRunner}
	}
	res, err := r.runner.Run(ctx, r.commands.Latest())
	if err != nil {
		return "", &FetchError{ExitCode: res.ExitCode, Err: err}
	}
	if !res.Success {
		return "", &FetchError{ExitCode: res.ExitCode}
	}
	latest, ok := version.Normalize(firstLine(res.Stdout))
	if !ok || !version.ClassifyStable(latest) {
		return "", &FetchError{Empty: true}
	}
	return latest, nil
}

// ErrNotInstalled is returned by InstalledVersion when the agent binary is
// missing or prints nothing recognizable.
var ErrNotInstalled = errors.New("openclaw is not installed")

// InstalledVersion runs "openclaw --version" and returns the normalized
// version from the last field of its first line.
func (r *Resolver) InstalledVersion(ctx context.Context) (string, error) {
	if r.runner == nil {
		return "", ErrNoRunner
	}
	res, err := r.runner.Run(ctx, npm.InstalledVersionCommand)
	if err != nil {
		return "", err
	}
	if !res.Success {
		return "", ErrNotInstalled
	}
	fields := strings.Fields(firstLine(strings.TrimSpace(res.Stdout)))
	if len(fields) == 0 {
		return "", ErrNotInstalled
	}
	installed, ok := version.Normalize(fields[len(fields)-1])
	if !ok {
		return "", ErrNotInstalled
	}
	return installed, nil
}

func firstLine(text string) string {
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return strings.TrimSpace(text)
}
