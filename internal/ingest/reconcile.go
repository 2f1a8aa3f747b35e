package ingest

import (
	"fmt"

	"github.com/agentic-research/tagsync/internal/driver"
	"github.com/agentic-research/tagsync/internal/graph"
)

// Outcome is what Reconcile did with a mapped node.
type Outcome int

const (
	Skipped Outcome = iota
	Created
	Updated
	// Unchanged is an existing structure; structures are never updated.
	Unchanged
)

func (o Outcome) String() string {
	switch o {
	case Created:
		return "created"
	case Updated:
		return "updated"
	case Unchanged:
		return "unchanged"
	default:
		return "skipped"
	}
}

// Reconcile attaches mapped.Node under owner, or merges it into the existing
// child of the same browse name. The existing tag is only touched when kind
// and value type agree; then every declared property set on the mapped node
// is copied across.
func Reconcile(owner *graph.Node, mapped *graph.Node) (Outcome, error) {
	if owner == nil {
		return Skipped, ErrNoDestination
	}

	existing := owner.Child(mapped.BrowseName())
	if existing == nil {
		if err := owner.Add(mapped); err != nil {
			return Skipped, err
		}
		return Created, nil
	}
	if mapped.IsStructure() {
		return Unchanged, nil
	}

	if existing.Kind() != mapped.Kind() || existing.ValueType() != mapped.ValueType() {
		return Skipped, &TypeMismatchError{
			BrowseName:   existing.BrowseName(),
			ExistingKind: existing.Kind(),
			ImportedKind: mapped.Kind(),
			Existing:     existing.ValueType(),
			Imported:     mapped.ValueType(),
		}
	}

	for _, p := range driver.Schema(mapped.Kind()) {
		if !p.Settable() {
			continue
		}
		v, ok := p.Get(mapped)
		if !ok || v == nil {
			continue
		}
		if err := p.Set(existing, v); err != nil {
			return Skipped, fmt.Errorf("update %s.%s: %w", existing.BrowseName(), p.Name, err)
		}
	}
	return Updated, nil
}
