// Package library serves ready-made prompt templates and a guide to
// prompting techniques. Built-in entries ship with the binary and users can
// add their own YAML files.
package library

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var builtinTemplates []byte

//go:embed techniques.yaml
var builtinTechniques []byte

type Template struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	Prompt      string `yaml:"prompt"`
	// Category is filled from the enclosing category on load.
	Category string `yaml:"-"`
	// Source is the file a user template came from; empty for built-ins.
	Source string `yaml:"-"`
}

type Category struct {
	Name      string     `yaml:"name"`
	Templates []Template `yaml:"templates"`
}

type templateFile struct {
	Categories []Category `yaml:"categories"`
}

type Level string

const (
	Foundational Level = "foundational"
	Advanced     Level = "advanced"
)

type Technique struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Example     string `yaml:"example"`
}

type techniqueFile struct {
	Foundational []Technique `yaml:"foundational"`
	Advanced     []Technique `yaml:"advanced"`
}

// Library is the merged set of built-in and user templates.
type Library struct {
	categories []Category
	techniques techniqueFile
	dir        string

	// Problems lists user files that were skipped.
	Problems []error
}

// Load reads the built-in library and merges every *.yaml file in userDir
// into it. A missing userDir is not an error. Unreadable or malformed user
// files are skipped and recorded in Problems.
func Load(userDir string) (*Library, error) {
	lib := &Library{dir: userDir}

	var base templateFile
	if err := yaml.Unmarshal(builtinTemplates, &base); err != nil {
		return nil, fmt.Errorf("built-in templates: %w", err)
	}
	if err := yaml.Unmarshal(builtinTechniques, &lib.techniques); err != nil {
		return nil, fmt.Errorf("built-in techniques: %w", err)
	}
	for _, c := range base.Categories {
		lib.merge(c, "")
	}

	if userDir == "" {
		return lib, nil
	}

	entries, err := os.ReadDir(userDir)
	if err != nil {
		if os.IsNotExist(err) {
			return lib, nil
		}
		return nil, err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		path := filepath.Join(userDir, entry.Name())
		if err := lib.loadFile(path); err != nil {
			lib.Problems = append(lib.Problems, err)
		}
	}

	return lib, nil
}

func (l *Library) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var f templateFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	if len(f.Categories) == 0 {
		return fmt.Errorf("%s: no categories", filepath.Base(path))
	}

	for _, c := range f.Categories {
		if strings.TrimSpace(c.Name) == "" {
			return fmt.Errorf("%s: category without a name", filepath.Base(path))
		}
		for _, t := range c.Templates {
			if strings.TrimSpace(t.Title) == "" || strings.TrimSpace(t.Prompt) == "" {
				return fmt.Errorf("%s: template in %q needs a title and a prompt", filepath.Base(path), c.Name)
			}
		}
	}

	for _, c := range f.Categories {
		l.merge(c, path)
	}
	return nil
}

// merge appends c's templates to the category of the same name, creating it
// when needed. A template whose title already exists in that category
// replaces it.
func (l *Library) merge(c Category, source string) {
	idx := -1
	for i := range l.categories {
		if strings.EqualFold(l.categories[i].Name, c.Name) {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.categories = append(l.categories, Category{Name: c.Name})
		idx = len(l.categories) - 1
	}

	dst := &l.categories[idx]
	for _, t := range c.Templates {
		t.Category = dst.Name
		t.Source = source
		replaced := false
		for i := range dst.Templates {
			if strings.EqualFold(dst.Templates[i].Title, t.Title) {
				dst.Templates[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			dst.Templates = append(dst.Templates, t)
		}
	}
}

// Categories returns the template categories in load order.
func (l *Library) Categories() []Category {
	if l == nil {
		return nil
	}
	return l.categories
}

// Templates returns every template across all categories.
func (l *Library) Templates() []Template {
	if l == nil {
		return nil
	}
	var out []Template
	for _, c := range l.categories {
		out = append(out, c.Templates...)
	}
	return out
}

// Find looks a template up by title, ignoring case.
func (l *Library) Find(title string) (Template, bool) {
	for _, t := range l.Templates() {
		if strings.EqualFold(t.Title, title) {
			return t, true
		}
	}
	return Template{}, false
}

// Techniques returns the techniques at level, or all of them when level is empty.
func (l *Library) Techniques(level Level) []Technique {
	if l == nil {
		return nil
	}
	switch level {
	case Foundational:
		return l.techniques.Foundational
	case Advanced:
		return l.techniques.Advanced
	default:
		all := make([]Technique, 0, len(l.techniques.Foundational)+len(l.techniques.Advanced))
		all = append(all, l.techniques.Foundational...)
		return append(all, l.techniques.Advanced...)
	}
}

// Dir returns the user template directory.
func (l *Library) Dir() string {
	return l.dir
}

// Count returns the number of templates.
func (l *Library) Count() int {
	return len(l.Templates())
}

// Titles returns all template titles, sorted.
func (l *Library) Titles() []string {
	var titles []string
	for _, t := range l.Templates() {
		titles = append(titles, t.Title)
	}
	sort.Strings(titles)
	return titles
}
