package strictmodel

import (
	"log/slog"
	"sort"
	"sync"
)

// constructor builds a record for one registered key. It is bound once at
// registration so resolution is a single table lookup.
type constructor func(c *composer, raw any, path Path, depth int, tagField string) (*Record, bool)

type entry struct {
	key    string
	schema *Schema
	build  constructor
}

// Registry maps keys (discriminator values or caller-chosen identifiers) to
// schemas. Registration is expected during initialization; after Seal every
// further Register fails, so resolution can run on any goroutine.
type Registry struct {
	mu        sync.RWMutex
	entries   map[string]entry
	field     string
	overwrite bool
	sealed    bool
	log       *slog.Logger
}

// NewRegistry returns an empty registry configured from the last Options:
// DiscriminatorField (default "type"), OverwriteOnRegister and Logger.
func NewRegistry(opts ...Options) *Registry {
	o := pickOptions(opts)
	field := o.DiscriminatorField
	if field == "" {
		field = DefaultDiscriminatorField
	}
	return &Registry{
		entries:   map[string]entry{},
		field:     field,
		overwrite: o.OverwriteOnRegister,
		log:       o.logger(),
	}
}

// Register associates key with s. An existing key fails with duplicate_key
// unless the registry was created with OverwriteOnRegister.
func (r *Registry) Register(key string, s *Schema) error {
	p := Path{}
	if key == "" {
		return Issues{invalidSchema(p, "empty registry key")}
	}
	if s == nil {
		return Issues{invalidSchema(p, "nil schema for key "+key)}
	}
	data := map[string]string{"key": key}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return singleIssue(p, CodeRegistrySealed, data)
	}
	prev, exists := r.entries[key]
	if exists && !r.overwrite {
		return singleIssue(p, CodeDuplicateKey, data)
	}
	r.entries[key] = entry{
		key:    key,
		schema: s,
		build: func(c *composer, raw any, path Path, depth int, tagField string) (*Record, bool) {
			return c.record(raw, s, path, depth, tagField, key)
		},
	}
	if exists {
		r.log.Info("registry entry replaced", "key", key, "previous", prev.schema.Name(), "schema", s.Name())
	} else {
		r.log.Debug("registry entry added", "key", key, "schema", s.Name())
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(key string, s *Schema) {
	if err := r.Register(key, s); err != nil {
		panic(err)
	}
}

// Resolve returns the schema registered for key.
func (r *Registry) Resolve(key string) (*Schema, error) {
	e, ok := r.lookup(key)
	if !ok {
		return nil, singleIssue(Path{}, CodeUnknownKey, map[string]string{"key": key})
	}
	return e.schema, nil
}

// ResolveByShape reads the registry's discriminator field from a keyed input
// and resolves its value. A missing, non-string or unregistered
// discriminator fails with ambiguous_input.
func (r *Registry) ResolveByShape(raw any) (*Schema, error) {
	e, iss := r.resolveShape(raw, r.field, Path{})
	if len(iss) > 0 {
		return nil, iss
	}
	return e.schema, nil
}

func (r *Registry) lookup(key string) (entry, bool) {
	r.mu.RLock()
	e, ok := r.entries[key]
	r.mu.RUnlock()
	return e, ok
}

func (r *Registry) resolveShape(raw any, field string, path Path) (entry, Issues) {
	src, ok := asKeyed(raw)
	if !ok {
		return entry{}, Issues{mismatch(path, CodeStructureMismatch, "object with "+field, describe(raw))}
	}
	fp := path.Field(field)
	data := map[string]string{"field": field}
	tv, present := src[field]
	if !present || tv == nil {
		return entry{}, singleIssue(fp, CodeAmbiguousInput, data)
	}
	tag, isString := tv.(string)
	if !isString || tag == "" {
		it := IssueAt(fp, CodeAmbiguousInput, data)
		it.Expected, it.Actual = "string", describe(tv)
		return entry{}, Issues{it}
	}
	e, ok := r.lookup(tag)
	if !ok {
		it := IssueAt(fp, CodeAmbiguousInput, data)
		it.Actual = tag
		it.Cause = singleIssue(fp, CodeUnknownKey, map[string]string{"key": tag})
		return entry{}, Issues{it}
	}
	r.log.Debug("registry resolved by shape", "field", field, "key", tag, "schema", e.schema.Name())
	return e, nil
}

// discriminatorFor returns the per-call override or the registry's field.
func (r *Registry) discriminatorFor(o Options) string {
	if o.DiscriminatorField != "" {
		return o.DiscriminatorField
	}
	return r.field
}

// DiscriminatorField returns the reserved field read by ResolveByShape.
func (r *Registry) DiscriminatorField() string { return r.field }

// Keys returns the registered keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Len returns the number of registered keys.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Seal ends the registration phase.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the process-wide registry. It is created on first
// use from DefaultOptions.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() { defaultRegistry = NewRegistry(DefaultOptions()) })
	return defaultRegistry
}

// Register adds key to the process-wide registry.
func Register(key string, s *Schema) error { return DefaultRegistry().Register(key, s) }

// Resolve looks key up in the process-wide registry.
func Resolve(key string) (*Schema, error) { return DefaultRegistry().Resolve(key) }
