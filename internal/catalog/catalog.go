package catalog

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"
)

var (
	ErrEmpty         = errors.New("catalog has no parameters")
	ErrEmptyName     = errors.New("parameter name is empty")
	ErrNegativeID    = errors.New("parameter id is negative")
	ErrDuplicateID   = errors.New("duplicate parameter id")
	ErrDuplicateName = errors.New("duplicate parameter name")
	ErrUnknownKey    = errors.New("unknown parameter")
)

// Entry is one tag of the historian table.
type Entry struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"-"`
}

// Catalog maps tag indexes to display names and back. It is built once and
// never mutated, so a single instance is shared by every request.
type Catalog struct {
	entries []Entry
	byID    map[int]int
	byName  map[string]int
	bySlug  map[string]int
}

var defaultEntries = []Entry{
	{ID: 0, Name: "Set V"},
	{ID: 1, Name: "Work V"},
	{ID: 2, Name: "Avg. V"},
	{ID: 3, Name: "Noise"},
	{ID: 4, Name: "ALF. Q"},
	{ID: 5, Name: "AE. Frq"},
	{ID: 6, Name: "ALO. Q"},
	{ID: 7, Name: "Act. Tap"},
	{ID: 8, Name: "Ex. ALF3"},
	{ID: 9, Name: "Bath. T"},
	{ID: 10, Name: "Bath. L"},
	{ID: 11, Name: "AL. L"},
	{ID: 12, Name: "Fe"},
	{ID: 13, Name: "Si"},
	{ID: 14, Name: "AE. Max V"},
}

// Default returns the catalog of the reduction line historian (tags 0..14).
func Default() *Catalog {
	c, err := New(defaultEntries)
	if err != nil {
		panic(fmt.Sprintf("default catalog: %v", err))
	}
	return c
}

// New validates entries and builds a catalog ordered by id.
// Names must be unique, and so must their slugs.
func New(entries []Entry) (*Catalog, error) {
	if len(entries) == 0 {
		return nil, ErrEmpty
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	c := &Catalog{
		entries: sorted,
		byID:    make(map[int]int, len(sorted)),
		byName:  make(map[string]int, len(sorted)),
		bySlug:  make(map[string]int, len(sorted)),
	}
	for i := range c.entries {
		e := &c.entries[i]
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("%w: id %d", ErrEmptyName, e.ID)
		}
		if e.ID < 0 {
			return nil, fmt.Errorf("%w: %d", ErrNegativeID, e.ID)
		}
		if _, ok := c.byID[e.ID]; ok {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateID, e.ID)
		}
		e.Slug = slug.Make(e.Name)
		if _, ok := c.byName[e.Name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateName, e.Name)
		}
		if _, ok := c.bySlug[e.Slug]; ok {
			return nil, fmt.Errorf("%w: %q collides with another name as %q", ErrDuplicateName, e.Name, e.Slug)
		}
		c.byID[e.ID] = i
		c.byName[e.Name] = i
		c.bySlug[e.Slug] = i
	}
	return c, nil
}

type fileFormat struct {
	Parameters []Entry `yaml:"parameters"`
}

// Load reads a catalog YAML file. An empty path yields the default catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %q: %w", path, err)
	}
	var f fileFormat
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse catalog %q: %w", path, err)
	}
	c, err := New(f.Parameters)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return c, nil
}

func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy of the entries ordered by id.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// IDs returns every tag index in ascending order.
func (c *Catalog) IDs() []int {
	out := make([]int, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.ID
	}
	return out
}

func (c *Catalog) Has(id int) bool {
	_, ok := c.byID[id]
	return ok
}

func (c *Catalog) Name(id int) (string, bool) {
	i, ok := c.byID[id]
	if !ok {
		return "", false
	}
	return c.entries[i].Name, true
}

func (c *Catalog) ID(name string) (int, bool) {
	i, ok := c.byName[strings.TrimSpace(name)]
	if !ok {
		return 0, false
	}
	return c.entries[i].ID, true
}

// Resolve finds an entry by tag index ("2"), display name ("Avg. V")
// or slug ("avg-v"). Name matching goes through the slug, so case and
// punctuation do not matter.
func (c *Catalog) Resolve(key string) (Entry, error) {
	key = strings.TrimSpace(key)
	if id, err := strconv.Atoi(key); err == nil {
		if i, ok := c.byID[id]; ok {
			return c.entries[i], nil
		}
		return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
	}
	if i, ok := c.byName[key]; ok {
		return c.entries[i], nil
	}
	if i, ok := c.bySlug[slug.Make(key)]; ok {
		return c.entries[i], nil
	}
	return Entry{}, fmt.Errorf("%w: %q", ErrUnknownKey, key)
}
