// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package views

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Unbound is the value of a variable that is referenced by name only.
const Unbound = -1

// AxisBindings maps symbolic dimension (variable) names to their bound values.
type AxisBindings map[string]int

// Key returns a canonical string representation for map keying.
// Format: "name1=val1,name2=val2" with names sorted alphabetically.
// Returns empty string for empty or nil bindings.
func (ab AxisBindings) Key() string {
	if len(ab) == 0 {
		return ""
	}
	names := ab.Names()
	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = fmt.Sprintf("%s=%d", name, ab[name])
	}
	return strings.Join(parts, ",")
}

// Names returns the sorted variable names.
func (ab AxisBindings) Names() []string {
	names := make([]string, 0, len(ab))
	for name := range ab {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of the bindings.
func (ab AxisBindings) Clone() AxisBindings {
	if ab == nil {
		return nil
	}
	clone := make(AxisBindings, len(ab))
	for k, v := range ab {
		clone[k] = v
	}
	return clone
}

// Merge combines bindings from another AxisBindings into this one.
// An Unbound value never conflicts with a bound one, the bound value wins.
// Returns an error if there are conflicting bound values for the same variable.
func (ab AxisBindings) Merge(other AxisBindings) error {
	for name, val := range other {
		existing, ok := ab[name]
		switch {
		case !ok || existing == Unbound:
			ab[name] = val
		case val == Unbound || existing == val:
		default:
			return errors.Errorf("conflicting values for variable %q: %d vs %d", name, existing, val)
		}
	}
	return nil
}
