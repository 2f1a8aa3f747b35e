// Package datatype maps free-text data type names onto canonical type ids.
package datatype

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"gopkg.in/yaml.v3"
)

var ErrTypeNotFound = errors.New("data type not found")

// TypeNotFoundError reports a name that neither the catalog nor the
// secondary name table knows.
type TypeNotFoundError struct {
	Name string
}

func (e *TypeNotFoundError) Error() string {
	return fmt.Sprintf("type corresponding to %q was not found", e.Name)
}

func (e *TypeNotFoundError) Is(target error) bool {
	return target == ErrTypeNotFound
}

const cacheSize = 256

// Resolver resolves type names in two tiers: catalog names first, then the
// secondary name table through the kind->id table.
type Resolver struct {
	catalog *Catalog

	mu      sync.RWMutex
	aliases map[string]ValueKind

	cache *lru.Cache[string, ID]
}

func NewResolver(c *Catalog) *Resolver {
	if c == nil {
		c = DefaultCatalog()
	}
	cache, _ := lru.New[string, ID](cacheSize) // only fails for size <= 0
	return &Resolver{
		catalog: c,
		aliases: make(map[string]ValueKind),
		cache:   cache,
	}
}

// Catalog returns the catalog backing the resolver.
func (r *Resolver) Catalog() *Catalog {
	return r.catalog
}

// AddAliases extends the secondary name table. Alias entries take precedence
// over the built-in table.
func (r *Resolver) AddAliases(aliases map[string]ValueKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, kind := range aliases {
		r.aliases[strings.ToUpper(strings.TrimSpace(name))] = kind
	}
	r.cache.Purge()
}

// Resolve returns the canonical id for typeName.
func (r *Resolver) Resolve(typeName string) (ID, error) {
	typeName = strings.TrimSpace(typeName)
	if id, ok := r.cache.Get(typeName); ok {
		return id, nil
	}
	id, err := r.resolve(typeName)
	if err != nil {
		return 0, err
	}
	r.cache.Add(typeName, id)
	return id, nil
}

func (r *Resolver) resolve(typeName string) (ID, error) {
	if id, ok := r.catalog.Match(typeName); ok {
		return id, nil
	}
	kind, ok := r.lookupKind(typeName)
	if !ok {
		return 0, &TypeNotFoundError{Name: typeName}
	}
	if id, ok := kindIDs[kind]; ok {
		return id, nil
	}
	return BaseDataType, nil
}

func (r *Resolver) lookupKind(typeName string) (ValueKind, bool) {
	key := strings.ToUpper(typeName)
	r.mu.RLock()
	kind, ok := r.aliases[key]
	r.mu.RUnlock()
	if ok {
		return kind, true
	}
	kind, ok = nameTable[key]
	return kind, ok
}

type aliasFile struct {
	Aliases map[string]string `yaml:"aliases"`
}

// LoadAliases reads a YAML document of the form
//
//	aliases:
//	  TIMER: duration
//	  FLOAT32: float
//
// and returns the name -> kind table it declares.
func LoadAliases(r io.Reader) (map[string]ValueKind, error) {
	var f aliasFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]ValueKind{}, nil
		}
		return nil, fmt.Errorf("decode aliases: %w", err)
	}
	out := make(map[string]ValueKind, len(f.Aliases))
	for name, kindName := range f.Aliases {
		kind, err := ParseValueKind(kindName)
		if err != nil {
			return nil, fmt.Errorf("alias %s: %w", name, err)
		}
		out[name] = kind
	}
	return out, nil
}
