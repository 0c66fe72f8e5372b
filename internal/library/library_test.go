package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBuiltin(t *testing.T) {
	lib, err := Load("")
	require.NoError(t, err)

	var names []string
	for _, c := range lib.Categories() {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Creative Content", "Business", "Code Generation"}, names)
	assert.Equal(t, 8, lib.Count())

	tpl, ok := lib.Find("swot analysis")
	require.True(t, ok)
	assert.Equal(t, "Business", tpl.Category)
	assert.Empty(t, tpl.Source)
	assert.Contains(t, tpl.Prompt, "markdown table")
}

func TestTechniques(t *testing.T) {
	lib, err := Load("")
	require.NoError(t, err)

	assert.Len(t, lib.Techniques(Foundational), 8)
	assert.Len(t, lib.Techniques(Advanced), 3)
	all := lib.Techniques("")
	assert.Len(t, all, 11)
	assert.Equal(t, "Role Prompting", all[0].Name)
	assert.Equal(t, "Self-Ask Prompting", all[10].Name)
	assert.Contains(t, all[2].Example, "\nFrench: Merci beaucoup.")
}

func TestLoadMergesUserTemplates(t *testing.T) {
	dir := t.TempDir()
	user := `
categories:
  - name: business
    templates:
      - title: Meeting Agenda
        description: Plan a meeting
        prompt: Draft an agenda for [meeting].
      - title: SWOT Analysis
        prompt: My own SWOT prompt.
  - name: Data Analysis
    templates:
      - title: Pivot Summary
        prompt: Summarize this pivot table.
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "mine.yaml"), []byte(user), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	lib, err := Load(dir)
	require.NoError(t, err)
	assert.Empty(t, lib.Problems)
	assert.Equal(t, dir, lib.Dir())

	var business Category
	for _, c := range lib.Categories() {
		if c.Name == "Business" {
			business = c
		}
	}
	assert.Len(t, business.Templates, 4)

	swot, ok := lib.Find("SWOT Analysis")
	require.True(t, ok)
	assert.Equal(t, "My own SWOT prompt.", swot.Prompt)
	assert.Equal(t, "Business", swot.Category)
	assert.Equal(t, filepath.Join(dir, "mine.yaml"), swot.Source)

	pivot, ok := lib.Find("Pivot Summary")
	require.True(t, ok)
	assert.Equal(t, "Data Analysis", pivot.Category)
}

func TestLoadSkipsBadFiles(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"broken.yaml":   "categories: [unterminated",
		"empty.yml":     "other: 1\n",
		"untitled.yaml": "categories:\n  - name: X\n    templates:\n      - prompt: no title\n",
		"good.yaml":     "categories:\n  - name: Roleplay\n    templates:\n      - title: Tavern Keeper\n        prompt: You run a tavern.\n",
	}
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
	}

	lib, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, lib.Problems, 3)

	_, ok := lib.Find("Tavern Keeper")
	assert.True(t, ok)
	_, ok = lib.Find("no title")
	assert.False(t, ok)
}

func TestLoadMissingDir(t *testing.T) {
	lib, err := Load(filepath.Join(t.TempDir(), "absent"))
	require.NoError(t, err)
	assert.Equal(t, 8, lib.Count())
}
