package fic

import "strings"

// OrderedSet is an insertion-ordered list of distinct, non-empty strings.
// Equality ignores order.
type OrderedSet []string

// NewOrderedSet builds a set from items, trimming whitespace and keeping the
// first occurrence of each value.
func NewOrderedSet(items ...string) OrderedSet {
	set := make(OrderedSet, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		set = append(set, item)
	}
	return set
}

func (s OrderedSet) index() map[string]struct{} {
	idx := make(map[string]struct{}, len(s))
	for _, item := range s {
		idx[item] = struct{}{}
	}
	return idx
}

// Contains reports whether item is a member.
func (s OrderedSet) Contains(item string) bool {
	for _, v := range s {
		if v == item {
			return true
		}
	}
	return false
}

// Difference returns the members of s that are not in other, in s's order.
func (s OrderedSet) Difference(other OrderedSet) OrderedSet {
	exclude := other.index()
	var diff OrderedSet
	for _, item := range s {
		if _, ok := exclude[item]; !ok {
			diff = append(diff, item)
		}
	}
	return diff
}

// Equal reports whether both sets hold the same members, in any order.
func (s OrderedSet) Equal(other OrderedSet) bool {
	a, b := s.index(), other.index()
	if len(a) != len(b) {
		return false
	}
	for item := range a {
		if _, ok := b[item]; !ok {
			return false
		}
	}
	return true
}
