// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package, mostly the integer
// shape arithmetic used by views and the lazy graph.
package xslices

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Prod returns the product of all elements, 1 for an empty slice.
func Prod[T constraints.Integer | constraints.Float](values []T) T {
	var p T = 1
	for _, v := range values {
		p *= v
	}
	return p
}

// Iota returns a slice of incremental int values, starting with start and of length len.
// Eg: Iota(3, 2) -> []int{3, 4}
func Iota[T constraints.Integer](start T, len int) (slice []T) {
	slice = make([]T, len)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return
}

// Argsort returns the indices that would sort values in increasing order. It is stable.
func Argsort[T constraints.Ordered](values []T) []int {
	indices := Iota(0, len(values))
	slices.SortStableFunc(indices, func(a, b int) int {
		switch {
		case values[a] < values[b]:
			return -1
		case values[a] > values[b]:
			return 1
		}
		return 0
	})
	return indices
}

// Dedup returns the elements of values without repetitions, keeping the first occurrence order.
func Dedup[T comparable](values []T) []T {
	out := make([]T, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

// Pop last element of the slice, and returns slice with one less element.
// If slice is empty it returns the zero value for `T` and returns slice unchanged.
func Pop[T any](slice []T) (T, []T) {
	var value T
	if len(slice) == 0 {
		return value, slice
	}
	value = slice[len(slice)-1]
	slice = slice[:len(slice)-1]
	return value, slice
}
