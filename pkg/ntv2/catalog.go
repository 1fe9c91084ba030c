package ntv2

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Catalog lists the grid files available to an application.
//
// It is read from YAML:
//
//	grids:
//	  - name: BETA2007
//	    path: de/BETA2007.gsb
//	    source: DHDN
//	    target: ETRS89
//	    description: Germany, BKG national transformation
//	  - name: NTV2_0
//	    path: ca/ntv2_0.gsb
//	    source: NAD27
//	    target: NAD83
//	    priority: 10
//
// Relative paths are resolved against the catalog's directory. Entries with
// a lower priority come first when several grids serve the same datum pair.
type Catalog struct {
	Grids []CatalogEntry `yaml:"grids"`

	dir string
}

// CatalogEntry describes one grid file.
type CatalogEntry struct {
	Name        string `yaml:"name"`
	Path        string `yaml:"path"`
	Source      string `yaml:"source"`
	Target      string `yaml:"target"`
	Description string `yaml:"description,omitempty"`
	Priority    int    `yaml:"priority,omitempty"`
}

// LoadCatalog reads a catalog file.
//
// Example:
//
//	catalog, err := ntv2.LoadCatalog("/data/grids/catalog.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	grid, err := catalog.Open("BETA2007", cache, ntv2.DefaultParseOptions())
func LoadCatalog(path string) (*Catalog, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	return ParseCatalog(file, filepath.Dir(path))
}

// ParseCatalog decodes a catalog and resolves relative paths against baseDir.
func ParseCatalog(r io.Reader, baseDir string) (*Catalog, error) {
	var c Catalog
	if err := yaml.NewDecoder(r).Decode(&c); err != nil && err != io.EOF {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	c.dir = baseDir

	seen := make(map[string]bool, len(c.Grids))
	for i, e := range c.Grids {
		if e.Name == "" {
			return nil, fmt.Errorf("catalog entry %d has no name", i)
		}
		if e.Path == "" {
			return nil, fmt.Errorf("catalog entry %q has no path", e.Name)
		}
		if seen[e.Name] {
			return nil, fmt.Errorf("catalog entry %q is listed twice", e.Name)
		}
		seen[e.Name] = true
	}

	return &c, nil
}

// Entry looks up a grid by name.
func (c *Catalog) Entry(name string) (CatalogEntry, bool) {
	for _, e := range c.Grids {
		if e.Name == name {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// ResolvePath returns the file path of an entry.
func (c *Catalog) ResolvePath(e CatalogEntry) string {
	if filepath.IsAbs(e.Path) || c.dir == "" {
		return e.Path
	}
	return filepath.Join(c.dir, e.Path)
}

// For returns the entries shifting source to target, ordered by priority
// and then catalog order. Datum names match case-insensitively.
func (c *Catalog) For(source, target string) []CatalogEntry {
	var result []CatalogEntry
	for _, e := range c.Grids {
		if strings.EqualFold(e.Source, source) && strings.EqualFold(e.Target, target) {
			result = append(result, e)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority < result[j].Priority
	})
	return result
}

// Open loads the named grid, going through cache when one is given.
func (c *Catalog) Open(name string, cache *GridCache, opts ParseOptions) (*GridFile, error) {
	e, ok := c.Entry(name)
	if !ok {
		return nil, fmt.Errorf("grid %q not in catalog", name)
	}
	if opts.Name == "" {
		opts.Name = e.Name
	}

	load := func() (*GridFile, error) {
		return Open(c.ResolvePath(e), opts)
	}
	if cache == nil {
		return load()
	}
	return cache.Get(e.Name, load)
}

// OpenSet loads every grid for a datum pair into a GridSet in priority order.
func (c *Catalog) OpenSet(source, target string, opts LoadOptions) (*GridSet, []error) {
	entries := c.For(source, target)
	if len(entries) == 0 {
		return NewGridSet(), []error{fmt.Errorf("no grids for %s -> %s", source, target)}
	}

	paths := make([]string, len(entries))
	for i, e := range entries {
		paths[i] = c.ResolvePath(e)
	}
	return LoadGridFilesParallel(paths, opts)
}
