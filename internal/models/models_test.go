package models

import (
	"context"
	"errors"
	"os"
	"path/filepath"
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

const plainOutput = `# models known to openclaw
Model                          Context
openai/gpt-4o                  128k
anthropic/claude-opus-4.6      200k

not-a-model
google/gemini-2.0-flash-exp
openrouter/meta-llama/llama-3.3:free
bad token/with space
`

func TestParseModel(t *testing.T) {
	m, ok := ParseModel(" openrouter/meta-llama/llama-3.3:free ")
	require.True(t, ok)
	assert.Equal(t, Model{FullName: "openrouter/meta-llama/llama-3.3:free", Provider: "openrouter", Name: "meta-llama/llama-3.3:free"}, m)

	for _, bad := range []string{"", "gpt-4o", "/gpt-4o", "openai/", "open ai/gpt", "openai/gpt 4"} {
		_, ok := ParseModel(bad)
		assert.Falsef(t, ok, "%q should be rejected", bad)
	}
}

func TestParseList(t *testing.T) {
	got := Names(ParseList(plainOutput))
	assert.Equal(t, []string{
		"openai/gpt-4o",
		"anthropic/claude-opus-4.6",
		"google/gemini-2.0-flash-exp",
		"openrouter/meta-llama/llama-3.3:free",
	}, got)

	assert.Empty(t, ParseList("Model Context\n# nothing\n"))
}

func TestProvidersAndFilters(t *testing.T) {
	list := ParseList("openai/gpt-4o\nAnthropic/claude-x\nopenai/o1\ndeepseek/deepseek-chat\n")

	assert.Equal(t, []string{"Anthropic", "deepseek", "openai"}, Providers(list))
	assert.Equal(t, []string{"openai/o1", "openai/gpt-4o"}, Names(ForProvider(list, "openai")))
	assert.Equal(t, []string{"deepseek/deepseek-chat"}, Names(Filter(list, "DEEP")))
	assert.Len(t, Filter(list, "  "), 4)
}

func TestBundledCatalog(t *testing.T) {
	models, err := BundledCatalog{}.Models()
	require.NoError(t, err)
	assert.NotEmpty(t, models)
	assert.Contains(t, Names(models), "anthropic/claude-opus-4.6")
}

func TestFileCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.keys")
	require.NoError(t, os.WriteFile(path, []byte("custom/model-a\n\nnot a model\n"), 0o644))

	models, err := CatalogFor(path).Models()
	require.NoError(t, err)
	assert.Equal(t, []string{"custom/model-a"}, Names(models))

	_, err = FileCatalog{Path: filepath.Join(t.TempDir(), "missing")}.Models()
	require.Error(t, err)
}

type emptyCatalog struct{}

func (emptyCatalog) Models() ([]Model, error) { return nil, errors.New("gone") }

func newResolver(t *testing.T, runner shell.Runner, catalog Catalog) (*Resolver, *versioncache.Store) {
	t.Helper()
	cache := versioncache.New(kv.NewMemory(), versioncache.ModelsPrefix, 0)
	r, err := New(Options{Runner: runner, Cache: cache, Catalog: catalog})
	require.NoError(t, err)
	return r, cache
}

func TestResolveLiveSortsAndCaches(t *testing.T) {
	runner := (&shelltest.FakeRunner{}).On(npm.ModelsCommand, shelltest.Ok(plainOutput))
	r, cache := newResolver(t, runner, nil)

	res, err := r.Resolve(context.Background(), "2026.2.6", false)
	require.NoError(t, err)
	assert.Equal(t, SourceLive, res.Source)
	assert.Empty(t, res.Advisory)
	assert.Equal(t, []string{
		"openrouter/meta-llama/llama-3.3:free",
		"openai/gpt-4o",
		"google/gemini-2.0-flash-exp",
		"anthropic/claude-opus-4.6",
	}, Names(res.Models))

	entry, ok := cache.Read("2026.2.6")
	require.True(t, ok)
	assert.Equal(t, Names(res.Models), entry.Tokens)

	res, err = r.Resolve(context.Background(), "2026.2.6", false)
	require.NoError(t, err)
	assert.Equal(t, SourceMemory, res.Source)
	assert.Len(t, runner.Calls(), 1)
}

func TestResolveReadsPersistedCache(t *testing.T) {
	runner := &shelltest.FakeRunner{}
	r, cache := newResolver(t, runner, nil)
	require.NoError(t, cache.Write("2026.2.6", []string{"openai/gpt-4o"}))

	res, err := r.Resolve(context.Background(), "2026.2.6", false)
	require.NoError(t, err)
	assert.Equal(t, SourceCache, res.Source)
	assert.Equal(t, []string{"openai/gpt-4o"}, Names(res.Models))
	assert.Empty(t, runner.Calls())
}

func TestResolveForceFailureFallsBackToCacheSilently(t *testing.T) {
	runner := (&shelltest.FakeRunner{}).On(npm.ModelsCommand, shelltest.Exit(1, "boom"))
	r, cache := newResolver(t, runner, nil)
	require.NoError(t, cache.Write("2026.2.6", []string{"openai/gpt-4o"}))

	res, err := r.Resolve(context.Background(), "2026.2.6", true)
	require.NoError(t, err)
	assert.Equal(t, SourceStaleCache, res.Source)
	assert.Empty(t, res.Advisory)
}

func TestResolveFailureUsesCatalog(t *testing.T) {
	runner := (&shelltest.FakeRunner{}).On(npm.ModelsCommand, shelltest.Exit(1, "boom"))
	r, _ := newResolver(t, runner, nil)

	res, err := r.Resolve(context.Background(), "", false)
	require.NoError(t, err)
	assert.Equal(t, "unknown", res.Scope)
	assert.Equal(t, SourceCatalog, res.Source)
	assert.Equal(t, AdvisoryLoadFailed, res.Advisory)
	assert.NotEmpty(t, res.Models)
}

func TestResolveUnparseableOutputUsesCatalog(t *testing.T) {
	runner := (&shelltest.FakeRunner{}).On(npm.ModelsCommand, shelltest.Ok("Model Context\n"))
	r, _ := newResolver(t, runner, nil)

	res, err := r.Resolve(context.Background(), "1.0.0", false)
	require.NoError(t, err)
	assert.Equal(t, AdvisoryParseFailed, res.Advisory)
}

func TestResolveWithoutRunner(t *testing.T) {
	r, _ := newResolver(t, nil, nil)
	res, err := r.Resolve(context.Background(), "1.0.0", false)
	require.NoError(t, err)
	assert.Equal(t, AdvisoryNoRunner, res.Advisory)

	r, _ = newResolver(t, nil, emptyCatalog{})
	_, err = r.Resolve(context.Background(), "1.0.0", false)
	assert.ErrorIs(t, err, ErrNoModels)
}

func TestForget(t *testing.T) {
	runner := (&shelltest.FakeRunner{}).On(npm.ModelsCommand, shelltest.Ok("openai/gpt-4o\n"))
	r, cache := newResolver(t, runner, nil)

	_, err := r.Resolve(context.Background(), "1.0.0", false)
	require.NoError(t, err)
	require.NoError(t, r.Forget("1.0.0"))

	_, ok := cache.Read("1.0.0")
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, err = r.Resolve(ctx, "1.0.0", false)
	require.NoError(t, err)
	assert.Len(t, runner.Calls(), 2)
}
