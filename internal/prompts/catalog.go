// Package prompts serves a fixed catalog of prompt templates embedded in
// the binary. Each template is a markdown file whose YAML frontmatter
// carries its name, description and category.
package prompts

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/adrg/frontmatter"

	"github.com/local-mcps/devtools-mcp/internal/common"
)

//go:embed templates/*.md
var templateFS embed.FS

type Prompt struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
	Category    string `yaml:"category" json:"category"`
	Text        string `yaml:"-" json:"-"`
}

// Catalog is immutable once loaded.
type Catalog struct {
	prompts map[string]Prompt
}

func Load() (*Catalog, error) {
	return LoadFS(templateFS, "templates")
}

func LoadFS(fsys fs.FS, dir string) (*Catalog, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("failed to list prompt templates: %w", err)
	}

	catalog := &Catalog{prompts: make(map[string]Prompt, len(files))}
	for _, file := range files {
		prompt, err := parseTemplate(fsys, file)
		if err != nil {
			return nil, err
		}
		if _, dup := catalog.prompts[prompt.Name]; dup {
			return nil, fmt.Errorf("duplicate prompt %s in %s", prompt.Name, file)
		}
		catalog.prompts[prompt.Name] = prompt
	}
	return catalog, nil
}

func parseTemplate(fsys fs.FS, file string) (Prompt, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return Prompt{}, fmt.Errorf("failed to read prompt template %s: %w", file, err)
	}

	var prompt Prompt
	body, err := frontmatter.Parse(bytes.NewReader(data), &prompt)
	if err != nil {
		return Prompt{}, fmt.Errorf("invalid frontmatter in %s: %w", file, err)
	}
	if prompt.Name == "" || prompt.Description == "" {
		return Prompt{}, fmt.Errorf("prompt template %s needs a name and a description", file)
	}
	prompt.Text = strings.TrimSpace(string(body)) + "\n"
	return prompt, nil
}

func (c *Catalog) Get(name string) (Prompt, error) {
	prompt, ok := c.prompts[name]
	if !ok {
		return Prompt{}, fmt.Errorf("%w: unknown prompt '%s'", common.ErrNotFound, name)
	}
	return prompt, nil
}

func (c *Catalog) List() []Prompt {
	prompts := make([]Prompt, 0, len(c.prompts))
	for _, p := range c.prompts {
		prompts = append(prompts, p)
	}
	sort.Slice(prompts, func(i, j int) bool { return prompts[i].Name < prompts[j].Name })
	return prompts
}
