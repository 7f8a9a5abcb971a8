// Package selection tracks which items of a list the operator has chosen.
package selection

import "sort"

// Set is an immutable selection bound to one list. Toggle, SelectAll and
// Reset return a new Set and leave the receiver untouched, so a previous
// value can be kept around for undo. The zero value is an empty selection
// over an empty list.
type Set struct {
	ids    []int
	member map[int]struct{}
	chosen map[int]struct{}
}

// New binds an empty selection to the list identified by ids. Duplicate
// ids are collapsed.
func New(ids []int) Set {
	s := Set{
		ids:    make([]int, 0, len(ids)),
		member: make(map[int]struct{}, len(ids)),
	}
	for _, id := range ids {
		if _, dup := s.member[id]; dup {
			continue
		}
		s.member[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Indexed binds an empty selection to a list of n positions 0..n-1.
func Indexed(n int) Set {
	ids := make([]int, n)
	for i := range ids {
		ids[i] = i
	}
	return New(ids)
}

// Reset discards the selection and binds to a new list. It is called
// whenever the underlying list is replaced so stale ids never carry over.
func (s Set) Reset(ids []int) Set {
	return New(ids)
}

// Toggle flips membership of id. Ids that are not part of the list are
// ignored.
func (s Set) Toggle(id int) Set {
	if _, ok := s.member[id]; !ok {
		return s
	}
	next := s.with(len(s.chosen) + 1)
	for c := range s.chosen {
		next.chosen[c] = struct{}{}
	}
	if _, on := next.chosen[id]; on {
		delete(next.chosen, id)
	} else {
		next.chosen[id] = struct{}{}
	}
	return next
}

// SelectAll is the combined "select all / clear" control: when every item
// is already chosen the selection is cleared, otherwise every item is
// chosen.
func (s Set) SelectAll() Set {
	if len(s.chosen) == len(s.ids) {
		return s.with(0)
	}
	next := s.with(len(s.ids))
	for _, id := range s.ids {
		next.chosen[id] = struct{}{}
	}
	return next
}

// Has reports whether id is chosen.
func (s Set) Has(id int) bool {
	_, ok := s.chosen[id]
	return ok
}

// Len is the number of chosen items.
func (s Set) Len() int { return len(s.chosen) }

// Size is the length of the bound list.
func (s Set) Size() int { return len(s.ids) }

// AllSelected reports whether a non-empty list is fully chosen.
func (s Set) AllSelected() bool {
	return len(s.ids) > 0 && len(s.chosen) == len(s.ids)
}

// Empty reports whether nothing is chosen.
func (s Set) Empty() bool { return len(s.chosen) == 0 }

// IDs returns the chosen ids in ascending order.
func (s Set) IDs() []int {
	out := make([]int, 0, len(s.chosen))
	for id := range s.chosen {
		out = append(out, id)
	}
	sort.Ints(out)
	return out
}

// Universe returns a copy of the ids of the bound list, in list order.
func (s Set) Universe() []int {
	return append([]int(nil), s.ids...)
}

// Filter returns the elements of items whose position is chosen. It is
// meant for indexed selections; items must be the bound list.
func Filter[T any](s Set, items []T) []T {
	out := make([]T, 0, s.Len())
	for i, item := range items {
		if s.Has(i) {
			out = append(out, item)
		}
	}
	return out
}

func (s Set) with(capacity int) Set {
	return Set{
		ids:    s.ids,
		member: s.member,
		chosen: make(map[int]struct{}, capacity),
	}
}
