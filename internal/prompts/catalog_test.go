package prompts

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/local-mcps/devtools-mcp/internal/common"
)

func TestLoadEmbedded(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	names := make([]string, 0)
	for _, p := range catalog.List() {
		names = append(names, p.Name)
		assert.NotEmpty(t, p.Description, p.Name)
		assert.NotEmpty(t, p.Category, p.Name)
		assert.NotEmpty(t, p.Text, p.Name)
		assert.NotContains(t, p.Text, "---\nname:", p.Name)
	}

	assert.Equal(t, []string{
		"api_development",
		"backend_developer",
		"code_review",
		"ddd_architect",
		"debugging",
		"git_workflow",
		"project_structure",
		"quality_specialist",
	}, names)
}

func TestGet(t *testing.T) {
	catalog, err := Load()
	require.NoError(t, err)

	t.Run("known prompt", func(t *testing.T) {
		p, err := catalog.Get("code_review")
		require.NoError(t, err)
		assert.Equal(t, "development", p.Category)
		assert.Contains(t, p.Text, "# Code Review Checklist")
	})

	t.Run("text is stable across calls", func(t *testing.T) {
		first, err := catalog.Get("debugging")
		require.NoError(t, err)
		second, err := catalog.Get("debugging")
		require.NoError(t, err)
		assert.Equal(t, first.Text, second.Text)
	})

	t.Run("unknown prompt", func(t *testing.T) {
		_, err := catalog.Get("nope")
		require.Error(t, err)
		assert.True(t, common.IsNotFound(err))
		assert.Contains(t, err.Error(), "nope")
	})
}

func TestLoadFS(t *testing.T) {
	t.Run("body is returned verbatim", func(t *testing.T) {
		fsys := fstest.MapFS{
			"t/hello.md": {Data: []byte("---\nname: hello\ndescription: greets\ncategory: misc\n---\nHello {name}!\n")},
		}
		catalog, err := LoadFS(fsys, "t")
		require.NoError(t, err)
		p, err := catalog.Get("hello")
		require.NoError(t, err)
		assert.Equal(t, "Hello {name}!\n", p.Text)
	})

	t.Run("missing description", func(t *testing.T) {
		fsys := fstest.MapFS{
			"t/bad.md": {Data: []byte("---\nname: bad\n---\nbody\n")},
		}
		_, err := LoadFS(fsys, "t")
		assert.Error(t, err)
	})

	t.Run("duplicate names", func(t *testing.T) {
		doc := []byte("---\nname: same\ndescription: d\n---\nbody\n")
		fsys := fstest.MapFS{
			"t/a.md": {Data: doc},
			"t/b.md": {Data: doc},
		}
		_, err := LoadFS(fsys, "t")
		assert.Error(t, err)
	})
}
