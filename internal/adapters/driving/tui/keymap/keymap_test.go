package keymap

import (
	"testing"

	"github.com/charmbracelet/bubbles/key"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
}

func TestDefaultKeyMap_SubmitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Submit.Keys()
	assert.Contains(t, keys, "enter")
}

func TestDefaultKeyMap_QuitBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Quit.Keys()
	assert.Contains(t, keys, "esc")
	assert.Contains(t, keys, "ctrl+c")
}

func TestDefaultKeyMap_ScrollUpBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.ScrollUp.Keys()
	assert.Contains(t, keys, "up")
	assert.Contains(t, keys, "pgup")
}

func TestDefaultKeyMap_ScrollDownBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.ScrollDown.Keys()
	assert.Contains(t, keys, "down")
	assert.Contains(t, keys, "pgdown")
}

func TestDefaultKeyMap_ClearBinding(t *testing.T) {
	km := DefaultKeyMap()

	keys := km.Clear.Keys()
	assert.Contains(t, keys, "ctrl+l")
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.ShortHelp()

	assert.Len(t, bindings, 4)
	assert.Equal(t, km.Submit, bindings[0])
	assert.Equal(t, km.Quit, bindings[3])
}

func TestFullHelp(t *testing.T) {
	km := DefaultKeyMap()

	bindings := km.FullHelp()

	assert.Len(t, bindings, 3)    // 3 groups
	assert.Len(t, bindings[0], 2) // Submit, Clear
	assert.Len(t, bindings[1], 2) // ScrollUp, ScrollDown
	assert.Len(t, bindings[2], 1) // Quit
}

func TestMatches_True(t *testing.T) {
	km := DefaultKeyMap()

	assert.True(t, Matches("enter", km.Submit))
	assert.True(t, Matches("esc", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("up", km.ScrollUp))
	assert.True(t, Matches("pgdown", km.ScrollDown))
}

func TestMatches_False(t *testing.T) {
	km := DefaultKeyMap()

	assert.False(t, Matches("x", km.Quit))
	assert.False(t, Matches("enter", km.Clear))
	assert.False(t, Matches("down", km.ScrollUp))
}

func TestBindings_HaveHelp(t *testing.T) {
	km := DefaultKeyMap()

	testCases := []struct {
		name    string
		binding key.Binding
	}{
		{"Submit", km.Submit},
		{"Quit", km.Quit},
		{"ScrollUp", km.ScrollUp},
		{"ScrollDown", km.ScrollDown},
		{"Clear", km.Clear},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			help := tc.binding.Help()
			assert.NotEmpty(t, help.Key, "binding should have help key")
		})
	}
}
