package resolver

import (
	"fmt"

	"github.com/tsawler/pdfchunk/core"
)

// ObjectReader allows the resolver to work with any object source.
type ObjectReader interface {
	GetObject(objNum int) (core.Object, error)
}

// ObjectResolver resolves indirect references in PDF objects. It can
// recursively resolve references in dictionaries and arrays, turning a
// graph of indirect objects into a self-contained owned tree.
type ObjectResolver struct {
	reader   ObjectReader
	maxDepth int

	visited map[int]bool
	depth   int
}

// Option configures the resolver.
type Option func(*ObjectResolver)

// WithMaxDepth sets the maximum recursion depth (default: 100).
func WithMaxDepth(depth int) Option {
	return func(r *ObjectResolver) {
		r.maxDepth = depth
	}
}

// NewResolver creates a new object resolver.
func NewResolver(reader ObjectReader, opts ...Option) *ObjectResolver {
	r := &ObjectResolver{
		reader:   reader,
		visited:  make(map[int]bool),
		maxDepth: 100,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve follows an indirect reference one step. Non-reference objects
// are returned unchanged.
func (r *ObjectResolver) Resolve(obj core.Object) (core.Object, error) {
	ref, ok := obj.(core.IndirectRef)
	if !ok {
		return obj, nil
	}
	resolved, err := r.reader.GetObject(ref.Number)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reference %d %d R: %w", ref.Number, ref.Generation, err)
	}
	return resolved, nil
}

// ResolveDeep recursively resolves every indirect reference inside obj,
// producing a tree with no references left. A reference back into an
// object already on the resolution path would make the tree infinite, so
// cycles are cut by substituting null. Unresolvable references also become
// null, matching how PDF readers treat a missing object.
func (r *ObjectResolver) ResolveDeep(obj core.Object) (core.Object, error) {
	if r.depth == 0 {
		r.visited = make(map[int]bool)
	}
	return r.resolveDeep(obj)
}

func (r *ObjectResolver) resolveDeep(obj core.Object) (core.Object, error) {
	if r.depth >= r.maxDepth {
		return nil, fmt.Errorf("maximum recursion depth (%d) exceeded", r.maxDepth)
	}

	switch v := obj.(type) {
	case core.IndirectRef:
		if r.visited[v.Number] {
			return core.Null{}, nil
		}
		r.visited[v.Number] = true
		defer delete(r.visited, v.Number)

		resolved, err := r.reader.GetObject(v.Number)
		if err != nil {
			return core.Null{}, nil
		}

		r.depth++
		out, err := r.resolveDeep(resolved)
		r.depth--
		return out, err

	case core.Dict:
		resolved := make(core.Dict, len(v))
		for key, value := range v {
			r.depth++
			rv, err := r.resolveDeep(value)
			r.depth--
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dict key %s: %w", key, err)
			}
			resolved[key] = rv
		}
		return resolved, nil

	case core.Array:
		resolved := make(core.Array, len(v))
		for i, elem := range v {
			r.depth++
			rv, err := r.resolveDeep(elem)
			r.depth--
			if err != nil {
				return nil, fmt.Errorf("failed to resolve array element %d: %w", i, err)
			}
			resolved[i] = rv
		}
		return resolved, nil

	case *core.Stream:
		r.depth++
		rd, err := r.resolveDeep(v.Dict)
		r.depth--
		if err != nil {
			return nil, fmt.Errorf("failed to resolve stream dict: %w", err)
		}
		return &core.Stream{Dict: rd.(core.Dict), Data: v.Data}, nil

	default:
		return obj, nil
	}
}
