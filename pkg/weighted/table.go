// Package weighted implements categorical sampling over labelled weights.
package weighted

import (
	"errors"
	"fmt"
	"sort"
)

// ErrEmptyTable is returned when a table has no entries.
var ErrEmptyTable = errors.New("weighted table is empty")

// Source is the randomness a Table draws from. *rand.Rand satisfies it.
type Source interface {
	Float64() float64
}

// Table maps a label to a positive weight. Tables are read-only once built
// and safe to share between goroutines.
type Table map[string]float64

// Validate checks that the table is non-empty and every weight is positive.
func (t Table) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTable
	}
	for k, w := range t {
		if w <= 0 {
			return fmt.Errorf("weight for %q must be positive, got %v", k, w)
		}
	}
	return nil
}

// Keys returns the labels in sorted order.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Without returns a copy of the table minus the given labels.
func (t Table) Without(labels ...string) Table {
	out := make(Table, len(t))
	for k, w := range t {
		out[k] = w
	}
	for _, l := range labels {
		delete(out, l)
	}
	return out
}

// Choice draws one label with probability weight/sum(weights).
// Labels are visited in sorted order so a seeded Source is reproducible.
// It returns "" for an empty table.
func Choice(src Source, t Table) string {
	keys := t.Keys()
	if len(keys) == 0 {
		return ""
	}
	var total float64
	for _, k := range keys {
		total += t[k]
	}
	r := src.Float64() * total
	for _, k := range keys {
		r -= t[k]
		if r < 0 {
			return k
		}
	}
	return keys[len(keys)-1]
}
