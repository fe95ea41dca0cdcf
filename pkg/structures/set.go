// Package structures provides the generic set used for commit reachability.
package structures

// A Set is an unordered collection of distinct elements.
type Set[Elem comparable] map[Elem]struct{}

// NewSet makes a set holding the provided elements.
func NewSet[Elem comparable](elems ...Elem) Set[Elem] {
	s := make(Set[Elem], len(elems))
	s.Add(elems...)
	return s
}

// Add adds each element not already in the set.
func (s Set[Elem]) Add(elems ...Elem) {
	for _, e := range elems {
		s[e] = struct{}{}
	}
}

// Has checks whether the element is in the set.
func (s Set[Elem]) Has(e Elem) bool {
	_, ok := s[e]
	return ok
}

// Difference makes a new set with the elements of s which are not in t. Neither s nor t is
// modified.
func (s Set[Elem]) Difference(t Set[Elem]) Set[Elem] {
	difference := make(Set[Elem])
	for e := range s {
		if !t.Has(e) {
			difference.Add(e)
		}
	}
	return difference
}
