// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package benchmark

import (
	"fmt"
	"slices"
	"sort"
	"strings"
)

// Sorter is a sort implementation under test.
type Sorter struct {
	Name        string
	Description string
	Sort        func([]int)
}

var sorters = map[string]Sorter{
	"sort": {
		Name:        "sort",
		Description: "sort.Ints (pattern-defeating quicksort via sort.Interface)",
		Sort:        sort.Ints,
	},
	"slices": {
		Name:        "slices",
		Description: "slices.Sort (generic pattern-defeating quicksort)",
		Sort: func(v []int) {
			slices.Sort(v)
		},
	},
	"stable": {
		Name:        "stable",
		Description: "sort.Stable (insertion sort blocks + symmerge)",
		Sort: func(v []int) {
			sort.Stable(sort.IntSlice(v))
		},
	},
}

// LookupSorter returns the sorter registered under name.
func LookupSorter(name string) (Sorter, error) {
	s, ok := sorters[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Sorter{}, fmt.Errorf("unknown implementation %q (available: %s)", name, strings.Join(SorterNames(), ", "))
	}
	return s, nil
}

// SorterNames returns the registered implementation names, sorted.
func SorterNames() []string {
	names := make([]string, 0, len(sorters))
	for name := range sorters {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
