// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package sets implement set types with better ergonomics than a bare `map[T]struct{}`.
//
// Set is unordered. Ordered remembers insertion order, which the scheduler needs to stay deterministic
// regardless of Go's map iteration order.
package sets

import "iter"

// Set implements a Set for the key type T.
type Set[T comparable] map[T]struct{}

// Make returns an empty Set of the given type. Size is optional, and if given
// will reserve the expected size.
func Make[T comparable](size ...int) Set[T] {
	if len(size) == 0 {
		return make(Set[T])
	}
	return make(Set[T], size[0])
}

// MakeWith creates a Set[T] with the given elements inserted.
func MakeWith[T comparable](elements ...T) Set[T] {
	s := Make[T](len(elements))
	s.Insert(elements...)
	return s
}

// Has returns true if Set s has the given key.
func (s Set[T]) Has(key T) bool {
	_, found := s[key]
	return found
}

// Insert keys into set.
func (s Set[T]) Insert(keys ...T) {
	for _, key := range keys {
		s[key] = struct{}{}
	}
}

// Ordered is a set that iterates in insertion order.
//
// The zero value is not usable, create it with MakeOrdered.
type Ordered[T comparable] struct {
	index map[T]int
	keys  []T
}

// MakeOrdered returns an empty Ordered set with the given elements inserted.
func MakeOrdered[T comparable](elements ...T) *Ordered[T] {
	s := &Ordered[T]{index: make(map[T]int, len(elements))}
	for _, e := range elements {
		s.Insert(e)
	}
	return s
}

// Insert key, and returns whether it was not yet present.
func (s *Ordered[T]) Insert(key T) bool {
	if _, found := s.index[key]; found {
		return false
	}
	s.index[key] = len(s.keys)
	s.keys = append(s.keys, key)
	return true
}

// Has returns whether key was inserted.
func (s *Ordered[T]) Has(key T) bool {
	_, found := s.index[key]
	return found
}

// Len returns the number of elements.
func (s *Ordered[T]) Len() int { return len(s.keys) }

// Keys returns the elements in insertion order. The returned slice must not be modified.
func (s *Ordered[T]) Keys() []T { return s.keys }

// All iterates over the elements in insertion order.
// Elements inserted during the iteration are also visited.
func (s *Ordered[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for ii := 0; ii < len(s.keys); ii++ {
			if !yield(s.keys[ii]) {
				return
			}
		}
	}
}
