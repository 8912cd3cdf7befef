package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticLoader(pages ...Page) (Loader, *[]bool) {
	var calls []bool
	return func(_ context.Context, force bool) Page {
		calls = append(calls, force)
		if len(calls) <= len(pages) {
			return pages[len(calls)-1]
		}
		return pages[len(pages)-1]
	}, &calls
}

func apply(t *testing.T, m PickerModel, msg tea.Msg) PickerModel {
	t.Helper()
	next, _ := m.Update(msg)
	pm, ok := next.(PickerModel)
	require.True(t, ok)
	return pm
}

func key(k tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: k} }

func typed(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func versionsPage() Page {
	return Page{
		Items: []Item{
			{Value: "2.1.0"},
			{Value: "2.0.3", Note: "installed"},
			{Value: "1.9.0"},
		},
		Source: "live",
	}
}

func TestPickerAppliesCurrentLoad(t *testing.T) {
	load, calls := staticLoader(versionsPage())
	m := NewPicker(context.Background(), "OpenClaw version", load)

	m = apply(t, m, m.loadCmd(false)())
	assert.False(t, m.loading)
	assert.Equal(t, []bool{false}, *calls)
	assert.Contains(t, m.View(), "2.0.3  ")
	assert.Contains(t, m.View(), "← installed")
	assert.Contains(t, m.View(), "[live]")
}

func TestPickerDropsStaleLoad(t *testing.T) {
	stale := Page{Items: []Item{{Value: "0.0.1"}}}
	fresh := versionsPage()
	load, _ := staticLoader(stale, fresh)
	m := NewPicker(context.Background(), "OpenClaw version", load)

	first := m.loadCmd(false)
	second := m.loadCmd(true)
	m = apply(t, m, first())
	assert.True(t, m.loading, "stale result must not be applied")
	assert.Empty(t, m.items)

	m = apply(t, m, second())
	assert.False(t, m.loading)
	require.Len(t, m.items, 3)
	assert.Equal(t, "2.1.0", m.items[0].Value)
}

func TestPickerDropsLoadAfterCancel(t *testing.T) {
	load, _ := staticLoader(versionsPage())
	m := NewPicker(context.Background(), "OpenClaw version", load)
	pending := m.loadCmd(false)

	m = apply(t, m, key(tea.KeyEsc))
	m = apply(t, m, pending())
	assert.Empty(t, m.items)
	_, ok := m.Chosen()
	assert.False(t, ok)
}

func TestPickerNavigateAndSelect(t *testing.T) {
	load, _ := staticLoader(versionsPage())
	m := NewPicker(context.Background(), "OpenClaw version", load)
	m = apply(t, m, m.loadCmd(false)())

	m = apply(t, m, key(tea.KeyDown))
	m = apply(t, m, key(tea.KeyDown))
	m = apply(t, m, key(tea.KeyDown))
	m = apply(t, m, key(tea.KeyUp))
	m = apply(t, m, key(tea.KeyEnter))

	value, ok := m.Chosen()
	assert.True(t, ok)
	assert.Equal(t, "2.0.3", value)
}

func TestPickerFilter(t *testing.T) {
	load, _ := staticLoader(versionsPage())
	m := NewPicker(context.Background(), "OpenClaw version", load)
	m = apply(t, m, m.loadCmd(false)())

	m = apply(t, m, typed("1.9"))
	require.Len(t, m.visible, 1)
	m = apply(t, m, key(tea.KeyEnter))
	value, ok := m.Chosen()
	assert.True(t, ok)
	assert.Equal(t, "1.9.0", value)
}

func TestPickerFilterWithoutMatches(t *testing.T) {
	load, _ := staticLoader(versionsPage())
	m := NewPicker(context.Background(), "OpenClaw version", load)
	m = apply(t, m, m.loadCmd(false)())

	m = apply(t, m, typed("zzz"))
	assert.Contains(t, m.View(), "No matches")
	m = apply(t, m, key(tea.KeyEnter))
	_, ok := m.Chosen()
	assert.False(t, ok)
}

func TestPickerShowsErrorAndAdvisory(t *testing.T) {
	load, _ := staticLoader(
		Page{Err: errors.New("No versions found")},
		Page{Items: []Item{{Value: "2.1.0"}}, Advisory: "Failed to fetch versions (exit 1), using cache", Source: "stale-cache"},
	)
	m := NewPicker(context.Background(), "OpenClaw version", load)
	m = apply(t, m, m.loadCmd(false)())
	assert.EqualError(t, m.Err(), "No versions found")
	assert.Contains(t, m.View(), "No versions found")

	next, cmd := m.Update(key(tea.KeyCtrlR))
	require.NotNil(t, cmd)
	m = next.(PickerModel)
	assert.True(t, m.loading)

	m = apply(t, m, m.loadCmd(true)())
	assert.NoError(t, m.Err())
	assert.Contains(t, m.View(), "using cache")
}
