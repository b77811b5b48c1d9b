package registry

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownAlgorithm is matched by every error returned from a failed lookup.
var ErrUnknownAlgorithm = errors.New("unknown algorithm")

// ErrInvalidTable is returned by New when a category table cannot be registered.
var ErrInvalidTable = errors.New("invalid algorithm table")

// Func is an opaque pure algorithm. It receives the call's parameters positionally
// and returns a plain structured value, or an error describing invalid input.
type Func func(args []any) (any, error)

// Category is one named table of algorithms, keyed by method name.
type Category map[string]Func

// UnknownAlgorithmError reports a path that does not resolve to a function.
type UnknownAlgorithmError struct {
	Path string
}

func (e *UnknownAlgorithmError) Error() string {
	return fmt.Sprintf("unknown algorithm %q", e.Path)
}

// Is lets errors.Is(err, ErrUnknownAlgorithm) match.
func (e *UnknownAlgorithmError) Is(target error) bool {
	return target == ErrUnknownAlgorithm
}

// AlgorithmInfo describes one registered path.
type AlgorithmInfo struct {
	Path     string `json:"path"`
	Category string `json:"category"`
	Method   string `json:"method"`
}

// Registry resolves algorithm paths. It has no mutating methods, so concurrent
// lookups need no locking.
type Registry struct {
	categories map[string]Category
	infos      []AlgorithmInfo
}

// New validates tables and builds a registry from them. Names must be non-empty
// and must not contain '.', and every function must be non-nil.
func New(tables map[string]Category) (*Registry, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidTable)
	}

	r := &Registry{categories: make(map[string]Category, len(tables))}
	for name, table := range tables {
		if err := validName(name); err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidTable, name, err)
		}
		if len(table) == 0 {
			return nil, fmt.Errorf("%w: category %q is empty", ErrInvalidTable, name)
		}

		copied := make(Category, len(table))
		for method, fn := range table {
			if err := validName(method); err != nil {
				return nil, fmt.Errorf("%w: %s.%s: %v", ErrInvalidTable, name, method, err)
			}
			if fn == nil {
				return nil, fmt.Errorf("%w: %s.%s has a nil function", ErrInvalidTable, name, method)
			}
			copied[method] = fn
			r.infos = append(r.infos, AlgorithmInfo{
				Path:     name + "." + method,
				Category: name,
				Method:   method,
			})
		}
		r.categories[name] = copied
	}

	sort.Slice(r.infos, func(i, j int) bool {
		return r.infos[i].Path < r.infos[j].Path
	})
	return r, nil
}

func validName(s string) error {
	if s == "" {
		return errors.New("empty name")
	}
	if strings.Contains(s, ".") {
		return errors.New("name contains '.'")
	}
	return nil
}

// Lookup resolves path to a function. The path is split on its first '.'; the
// first segment selects a category and the rest selects a method. A bare category
// name resolves to a dispatcher that takes the method name as its first argument.
// Matching is exact and case-sensitive.
func (r *Registry) Lookup(path string) (Func, error) {
	category, method, found := strings.Cut(path, ".")

	table, ok := r.categories[category]
	if !ok {
		return nil, &UnknownAlgorithmError{Path: path}
	}
	if !found {
		return dispatcher(category, table), nil
	}

	fn, ok := table[method]
	if !ok {
		return nil, &UnknownAlgorithmError{Path: path}
	}
	return fn, nil
}

// LookupCategory returns a copy of the named category table.
func (r *Registry) LookupCategory(name string) (Category, bool) {
	table, ok := r.categories[name]
	if !ok {
		return nil, false
	}
	copied := make(Category, len(table))
	for k, v := range table {
		copied[k] = v
	}
	return copied, true
}

// dispatcher invokes a category as a whole: args[0] names the method.
func dispatcher(category string, table Category) Func {
	return func(args []any) (any, error) {
		if len(args) == 0 {
			return nil, fmt.Errorf("%s: method name required", category)
		}
		method, ok := args[0].(string)
		if !ok {
			return nil, fmt.Errorf("%s: method name must be a string, got %T", category, args[0])
		}
		fn, ok := table[method]
		if !ok {
			return nil, &UnknownAlgorithmError{Path: category + "." + method}
		}
		return fn(args[1:])
	}
}

// Has reports whether path resolves.
func (r *Registry) Has(path string) bool {
	_, err := r.Lookup(path)
	return err == nil
}

// List returns every registered method path, sorted for a stable API response.
func (r *Registry) List() []AlgorithmInfo {
	out := make([]AlgorithmInfo, len(r.infos))
	copy(out, r.infos)
	return out
}

// Categories returns the registered category names, sorted.
func (r *Registry) Categories() []string {
	names := make([]string, 0, len(r.categories))
	for name := range r.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
