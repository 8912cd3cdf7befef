package version

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortAndLimitDeduplicates(t *testing.T) {
	got := SortAndLimit([]string{"1.0.0", "1.0.0", "1.1.0"})
	require.Len(t, got, 2)
	assert.Equal(t, "1.1.0", got[0])
}

func TestSortAndLimitLatestFirst(t *testing.T) {
	assert.Equal(t, []string{"latest", "2.0.0", "1.0.0"}, SortAndLimit([]string{"1.0.0", "latest", "2.0.0"}))
}

func TestSortAndLimitDedupesAfterNormalizing(t *testing.T) {
	got := SortAndLimit([]string{"v1.0.0", "openclaw@1.0.0", "1.0.0", ""})
	assert.Equal(t, []string{"1.0.0"}, got)
}

func TestSortAndLimitCaps(t *testing.T) {
	var tokens []string
	for i := 0; i < 30; i++ {
		tokens = append(tokens, fmt.Sprintf("1.0.%d", i))
	}
	got := SortAndLimit(tokens)
	require.Len(t, got, ListLimit)
	assert.Equal(t, "1.0.29", got[0])
	assert.Equal(t, "1.0.10", got[ListLimit-1])
}

func TestParseOutputJSONArray(t *testing.T) {
	got := ParseOutput(`["1.0.0", "1.1.0", "2.0.0-beta.1", "1.2.0"]`)
	assert.Equal(t, []string{"1.2.0", "1.1.0", "1.0.0"}, got)
}

func TestParseOutputPrettyJSON(t *testing.T) {
	out := "[\n  \"2026.1.30\",\n  \"2026.2.6\",\n  \"2026.2.6-beta.2\"\n]\n"
	assert.Equal(t, []string{"2026.2.6", "2026.1.30"}, ParseOutput(out))
}

func TestParseOutputSingleJSONString(t *testing.T) {
	assert.Equal(t, []string{"1.0.0"}, ParseOutput(`"1.0.0"`))
}

func TestParseOutputLineFallback(t *testing.T) {
	got := ParseOutput("1.0.0\r\n1.1.0\nnot a version\n1.2.0-rc.1\nv1.2.0")
	assert.Equal(t, []string{"1.2.0", "1.1.0", "1.0.0"}, got)
}

func TestParseOutputKeepsLatest(t *testing.T) {
	assert.Equal(t, []string{"latest", "1.0.0"}, ParseOutput("latest\n1.0.0"))
}

func TestParseOutputEmpty(t *testing.T) {
	assert.Empty(t, ParseOutput(""))
	assert.Empty(t, ParseOutput("   "))
	assert.Empty(t, ParseOutput("npm ERR! 404"))
}

func TestFallback(t *testing.T) {
	assert.Equal(t, []string{"latest", "2026.2.6"}, Fallback("2026.2.6"))
	assert.Equal(t, []string{"latest", "2026.2.6"}, Fallback("openclaw@v2026.2.6"))
	assert.Equal(t, []string{"latest"}, Fallback(""))
	assert.Equal(t, []string{"latest"}, Fallback("1.0.0-beta"))
}

func TestNormalizeListFiltersPreRelease(t *testing.T) {
	got := NormalizeList([]string{"1.0.0", "2.0.0-alpha", "1.1.0", "latest"})
	assert.Equal(t, []string{"latest", "1.1.0", "1.0.0"}, got)
}

func TestWithInstalled(t *testing.T) {
	list := []string{"latest", "2.0.0", "1.0.0"}
	assert.Equal(t, []string{"latest", "2.0.0", "1.5.0", "1.0.0"}, WithInstalled(list, "v1.5.0"))
	assert.Equal(t, list, WithInstalled(list, "2.0.0"))
	assert.Equal(t, list, WithInstalled(list, ""))
	assert.False(t, strings.Contains(strings.Join(list, ","), "1.5.0"), "input must not be mutated")
}
