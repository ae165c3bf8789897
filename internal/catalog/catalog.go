// Package catalog holds the course templates learners can enroll in.
// Templates are authored as YAML, one per file.
package catalog

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/skillpath/internal/course"
)

//go:embed builtin/*.yaml
var builtinFS embed.FS

// ErrTemplateNotFound is returned for unknown template IDs.
var ErrTemplateNotFound = errors.New("course template not found")

// Catalog is a concurrency-safe template registry.
type Catalog struct {
	mu        sync.RWMutex
	templates map[string]*course.Template
}

func New() *Catalog {
	return &Catalog{templates: make(map[string]*course.Template)}
}

// Builtin returns a catalog preloaded with the bundled templates.
func Builtin() (*Catalog, error) {
	c := New()
	if err := c.LoadFS(builtinFS, "builtin"); err != nil {
		return nil, err
	}
	return c, nil
}

// Add validates tmpl and registers it, replacing any template with the
// same ID.
func (c *Catalog) Add(tmpl *course.Template) error {
	if err := tmpl.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	c.templates[tmpl.ID] = tmpl
	c.mu.Unlock()
	return nil
}

// Get returns the template with the given ID.
func (c *Catalog) Get(id string) (*course.Template, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.templates[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	return t, nil
}

// List returns all templates ordered by ID.
func (c *Catalog) List() []*course.Template {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*course.Template, 0, len(c.templates))
	for _, t := range c.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LoadDir loads every .yaml or .yml file in dir.
func (c *Catalog) LoadDir(dir string) error {
	return c.LoadFS(os.DirFS(dir), ".")
}

// LoadFS loads every .yaml or .yml file under root in fsys.
func (c *Catalog) LoadFS(fsys fs.FS, root string) error {
	return fs.WalkDir(fsys, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !isYAML(path) {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if err := c.load(data); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		return nil
	})
}

// LoadFile loads one template file.
func (c *Catalog) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := c.load(data); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Catalog) load(data []byte) error {
	tmpl, err := Parse(data)
	if err != nil {
		return err
	}
	return c.Add(tmpl)
}

// Parse decodes a YAML template. Unknown fields are rejected.
func Parse(data []byte) (*course.Template, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var tmpl course.Template
	if err := dec.Decode(&tmpl); err != nil {
		return nil, fmt.Errorf("parse template: %w", err)
	}
	return &tmpl, nil
}

// Marshal encodes a template as YAML.
func Marshal(tmpl *course.Template) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(tmpl); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
