package resolver

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"botdrop/internal/kv"
	"botdrop/internal/npm"
	"botdrop/internal/shell"
	"botdrop/internal/shell/shelltest"
	"botdrop/internal/versioncache"
)

type fixture struct {
	runner *shelltest.FakeRunner
	cache  *versioncache.Store
	now    time.Time
	res    *Resolver
}

func newFixture(t *testing.T, withRunner bool) *fixture {
	t.Helper()
	f := &fixture{
		runner: &shelltest.FakeRunner{},
		now:    time.Date(2026, 2, 6, 9, 0, 0, 0, time.UTC),
	}
	f.cache = versioncache.New(kv.NewMemory(), versioncache.VersionsPrefix, time.Hour)
	f.cache.Now = func() time.Time { return f.now }

	opts := Options{Commands: npm.NewCommands("openclaw", nil), Cache: f.cache}
	if withRunner {
		opts.Runner = f.runner
	}
	f.res = New(opts)
	return f
}

const versionsCmd = "npm view 'openclaw' versions --json"

func TestResolveLiveThenCached(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(versionsCmd, shelltest.Ok(`["1.0.0","1.1.0","1.2.0-beta.1","1.2.0"]`))

	res := f.res.Resolve(context.Background(), Request{})
	assert.Equal(t, []string{"1.2.0", "1.1.0", "1.0.0"}, res.Versions)
	assert.Empty(t, res.Advisory)
	assert.Equal(t, SourceLive, res.Source)
	assert.False(t, res.Degraded())

	res = f.res.Resolve(context.Background(), Request{})
	assert.Equal(t, []string{"1.2.0", "1.1.0", "1.0.0"}, res.Versions)
	assert.Empty(t, res.Advisory)
	assert.Equal(t, SourceCache, res.Source)
	assert.Len(t, f.runner.Calls(), 1, "fresh cache must short-circuit the command")
}

func TestResolveForceRefreshBypassesCache(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.cache.Write(DefaultScope, []string{"1.0.0"}))
	f.runner.On(versionsCmd, shelltest.Ok(`["2.0.0"]`))

	res := f.res.Resolve(context.Background(), Request{ForceRefresh: true})
	assert.Equal(t, []string{"2.0.0"}, res.Versions)
	assert.Equal(t, SourceLive, res.Source)

	entry, ok := f.cache.Read(DefaultScope)
	require.True(t, ok)
	assert.Equal(t, []string{"2.0.0"}, entry.Tokens)
}

func TestResolveFailureWithoutCacheFallsBack(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(versionsCmd, shelltest.Exit(1, "npm ERR! network"))

	res := f.res.Resolve(context.Background(), Request{CurrentVersion: "2026.2.6"})
	assert.Equal(t, []string{"latest", "2026.2.6"}, res.Versions)
	assert.Equal(t, "Failed to fetch versions (exit 1)", res.Advisory)
	assert.Equal(t, SourceFallback, res.Source)

	var fetchErr *FetchError
	require.True(t, errors.As(res.Err, &fetchErr))
	assert.Equal(t, 1, fetchErr.ExitCode)
}

func TestResolveFailureUsesStaleCache(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.cache.Write(DefaultScope, []string{"1.1.0", "1.0.0"}))
	f.now = f.now.Add(2 * time.Hour)
	f.runner.On(versionsCmd, shelltest.Exit(7, ""))

	res := f.res.Resolve(context.Background(), Request{CurrentVersion: "1.0.0"})
	assert.Equal(t, []string{"1.1.0", "1.0.0"}, res.Versions)
	assert.Equal(t, "Failed to fetch versions (exit 7), using cache", res.Advisory)
	assert.Equal(t, SourceStaleCache, res.Source)
}

func TestResolveEmptyOutput(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(versionsCmd, shelltest.Ok(`["1.0.0-rc.1"]`))

	res := f.res.Resolve(context.Background(), Request{})
	assert.Equal(t, []string{"latest"}, res.Versions)
	assert.Equal(t, "No versions found", res.Advisory)

	require.NoError(t, f.cache.Write(DefaultScope, []string{"0.9.0"}))
	f.now = f.now.Add(2 * time.Hour)
	res = f.res.Resolve(context.Background(), Request{})
	assert.Equal(t, []string{"0.9.0"}, res.Versions)
	assert.Equal(t, "No versions found, using cache", res.Advisory)
}

func TestResolveWithoutRunner(t *testing.T) {
	f := newFixture(t, false)

	res := f.res.Resolve(context.Background(), Request{CurrentVersion: "v1.4.0"})
	assert.Equal(t, []string{"latest", "1.4.0"}, res.Versions)
	assert.Equal(t, "Command runner unavailable", res.Advisory)
	assert.ErrorIs(t, res.Err, ErrNoRunner)
}

func TestResolveFallbackOmitsPreReleaseCurrent(t *testing.T) {
	f := newFixture(t, false)
	res := f.res.Resolve(context.Background(), Request{CurrentVersion: "2.0.0-beta.3"})
	assert.Equal(t, []string{"latest"}, res.Versions)
}

func TestResolveCommandError(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(versionsCmd, shelltest.Response{Result: shell.Result{ExitCode: -1}, Err: context.DeadlineExceeded})

	res := f.res.Resolve(context.Background(), Request{})
	assert.Equal(t, "Failed to fetch versions: context deadline exceeded", res.Advisory)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestResolveScopesAreSeparate(t *testing.T) {
	f := newFixture(t, true)
	require.NoError(t, f.cache.Write("mirror", []string{"3.0.0"}))
	f.runner.On(versionsCmd, shelltest.Ok(`["1.0.0"]`))

	res := f.res.Resolve(context.Background(), Request{ScopeKey: "mirror"})
	assert.Equal(t, []string{"3.0.0"}, res.Versions)
	res = f.res.Resolve(context.Background(), Request{ScopeKey: "npm"})
	assert.Equal(t, []string{"1.0.0"}, res.Versions)
}

func TestResolveEmptyScopeUsesDefault(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(versionsCmd, shelltest.Ok(`["1.0.0"]`))

	f.res.Resolve(context.Background(), Request{ScopeKey: "  "})
	entry, ok := f.cache.Read(DefaultScope)
	require.True(t, ok)
	assert.Equal(t, []string{"1.0.0"}, entry.Tokens)

	res := f.res.Resolve(context.Background(), Request{ScopeKey: DefaultScope})
	assert.Equal(t, SourceCache, res.Source)
}

// gatedRunner holds the first command until release is closed.
type gatedRunner struct {
	*shelltest.FakeRunner
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatedRunner) Run(ctx context.Context, command string) (shell.Result, error) {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return g.FakeRunner.Run(ctx, command)
}

func TestResolveConcurrentCallsShareOneFetch(t *testing.T) {
	fake := (&shelltest.FakeRunner{}).On(versionsCmd, shelltest.Ok(`["1.0.0","2.0.0"]`))
	gated := &gatedRunner{FakeRunner: fake, entered: make(chan struct{}), release: make(chan struct{})}
	cache := versioncache.New(kv.NewMemory(), versioncache.VersionsPrefix, time.Hour)
	res := New(Options{Runner: gated, Commands: npm.NewCommands("openclaw", nil), Cache: cache})

	var wg sync.WaitGroup
	results := make([]Result, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0] = res.Resolve(context.Background(), Request{ForceRefresh: true})
	}()
	<-gated.entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1] = res.Resolve(context.Background(), Request{ForceRefresh: true})
	}()
	time.Sleep(50 * time.Millisecond)
	close(gated.release)
	wg.Wait()

	assert.Len(t, fake.Calls(), 1)
	for _, r := range results {
		assert.Equal(t, []string{"2.0.0", "1.0.0"}, r.Versions)
		assert.Equal(t, SourceLive, r.Source)
	}
}

func TestResolveResultIsCallerOwned(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(versionsCmd, shelltest.Ok(`["1.0.0"]`))

	res := f.res.Resolve(context.Background(), Request{})
	res.Versions[0] = "mutated"

	res = f.res.Resolve(context.Background(), Request{})
	assert.Equal(t, []string{"1.0.0"}, res.Versions)
}

func TestResolveAsyncDeliversOnce(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(versionsCmd, shelltest.Ok(`["1.0.0"]`))

	var mu sync.Mutex
	var got []Result
	done := make(chan struct{})
	f.res.ResolveAsync(context.Background(), Request{}, func(res Result) {
		mu.Lock()
		got = append(got, res)
		mu.Unlock()
		close(done)
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("no result delivered")
	}
	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, []string{"1.0.0"}, got[0].Versions)
}

func TestLatest(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On("npm view 'openclaw' version 2>/dev/null", shelltest.Ok("2026.2.6"))

	latest, err := f.res.Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026.2.6", latest)

	f.runner.On("npm view 'openclaw' version 2>/dev/null", shelltest.Exit(1, ""))
	_, err = f.res.Latest(context.Background())
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, fetchErr.ExitCode)
}

func TestInstalledVersion(t *testing.T) {
	f := newFixture(t, true)
	f.runner.On(npm.InstalledVersionCommand, shelltest.Ok("openclaw v2026.2.6\nextra\n"))

	installed, err := f.res.InstalledVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026.2.6", installed)

	f.runner.On(npm.InstalledVersionCommand, shelltest.Exit(127, "not found"))
	_, err = f.res.InstalledVersion(context.Background())
	assert.ErrorIs(t, err, ErrNotInstalled)
}

func TestGeneration(t *testing.T) {
	var g Generation
	assert.False(t, g.IsCurrent(0))

	first := g.Next()
	assert.True(t, g.IsCurrent(first))

	second := g.Next()
	assert.Greater(t, second, first)
	assert.False(t, g.IsCurrent(first))
	assert.True(t, g.IsCurrent(second))

	g.Invalidate()
	assert.False(t, g.IsCurrent(second))
	assert.Greater(t, g.Current(), second)
}
