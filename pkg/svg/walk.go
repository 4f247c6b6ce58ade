package svg

import (
	"iter"

	"github.com/matzehuels/xkcdify/pkg/errors"
)

// FindRecursive returns a lazy depth-first pre-order traversal of roots and
// their descendants that yields every element matching pred. A matching
// element is yielded before its children are searched. Comments and
// processing instructions are never passed to pred.
//
// The sequence is single pass: each range over it walks the tree again.
// Breaking out of the range loop stops the walk.
func FindRecursive(roots []*Element, pred func(*Element) bool) iter.Seq[*Element] {
	return func(yield func(*Element) bool) {
		findRecursive(roots, pred, yield)
	}
}

func findRecursive(els []*Element, pred func(*Element) bool, yield func(*Element) bool) bool {
	for _, e := range els {
		if !e.IsElement() {
			continue
		}
		if pred(e) && !yield(e) {
			return false
		}
		if !findRecursive(e.Children, pred, yield) {
			return false
		}
	}
	return true
}

// All matches every element.
func All(*Element) bool { return true }

// IsPath matches <path> elements.
func IsPath(e *Element) bool { return e.Kind == KindPath }

// ByID returns the first element with the given id, or nil.
func (d *Document) ByID(id string) *Element {
	for e := range FindRecursive([]*Element{d.Root}, func(e *Element) bool { return e.ID() == id }) {
		return e
	}
	return nil
}

// Selection resolves element ids to the roots of a traversal, in the order
// given. No ids selects the whole document. Duplicate ids, and elements inside
// another selected element, are dropped so no element is visited twice.
func (d *Document) Selection(ids []string) ([]*Element, error) {
	if len(ids) == 0 {
		return []*Element{d.Root}, nil
	}

	index := make(map[string]*Element)
	for e := range FindRecursive([]*Element{d.Root}, func(e *Element) bool { return e.Has("id") }) {
		if _, ok := index[e.ID()]; !ok {
			index[e.ID()] = e
		}
	}

	picked := make(map[*Element]bool, len(ids))
	var sel []*Element
	for _, id := range ids {
		if err := errors.ValidateElementID(id); err != nil {
			return nil, err
		}
		e, ok := index[id]
		if !ok {
			return nil, errors.New(errors.ErrCodeNotFound, "no element with id %q", id)
		}
		if picked[e] {
			continue
		}
		picked[e] = true
		sel = append(sel, e)
	}

	out := sel[:0]
	for _, e := range sel {
		if !hasPickedAncestor(e, picked) {
			out = append(out, e)
		}
	}
	return out, nil
}

func hasPickedAncestor(e *Element, picked map[*Element]bool) bool {
	for p := e.parent; p != nil; p = p.parent {
		if picked[p] {
			return true
		}
	}
	return false
}
