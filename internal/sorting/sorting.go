// Package sorting orders dashboard table rows by a single column.
//
// Sorts are stable: rows with equal keys keep their input order in both
// directions, so flipping direction reverses the order of tie blocks but not
// the rows inside them. Missing numeric values always sort after present ones,
// whatever the direction.
package sorting

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is a column sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
	None Direction = "none"
)

// ParseDirection maps user input to a Direction. Unknown values mean None.
func ParseDirection(s string) Direction {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc
	case Desc:
		return Desc
	default:
		return None
	}
}

// Field is one sortable column of T. Exactly one of Text or Number is set.
// Number returns ok=false when the row has no value for the column.
type Field[T any] struct {
	Name   string
	Text   func(T) string
	Number func(T) (float64, bool)
}

// TextField is a string column compared with locale-aware collation.
func TextField[T any](name string, get func(T) string) Field[T] {
	return Field[T]{Name: name, Text: get}
}

// NumberField is a numeric column that is always present.
func NumberField[T any](name string, get func(T) float64) Field[T] {
	return Field[T]{Name: name, Number: func(row T) (float64, bool) { return get(row), true }}
}

// OptionalNumberField is a numeric column whose missing values sort last.
func OptionalNumberField[T any](name string, get func(T) (float64, bool)) Field[T] {
	return Field[T]{Name: name, Number: get}
}

// Registry is the set of sortable columns of one table.
type Registry[T any] map[string]Field[T]

// NewRegistry indexes fields by name.
func NewRegistry[T any](fields ...Field[T]) Registry[T] {
	r := make(Registry[T], len(fields))
	for _, f := range fields {
		r[f.Name] = f
	}
	return r
}

// Sort looks up the named column and sorts by it. An unknown column or
// direction None returns the rows in input order.
func (r Registry[T]) Sort(rows []T, name string, dir Direction) []T {
	f, ok := r[name]
	if !ok {
		return slices.Clone(rows)
	}
	return Sort(rows, f, dir)
}

// Sort returns a sorted copy of rows. The input slice is not modified.
func Sort[T any](rows []T, field Field[T], dir Direction) []T {
	out := slices.Clone(rows)
	if dir != Asc && dir != Desc {
		return out
	}

	if field.Number != nil {
		slices.SortStableFunc(out, func(a, b T) int {
			av, aok := field.Number(a)
			bv, bok := field.Number(b)
			switch {
			case !aok && !bok:
				return 0
			case !aok:
				return 1
			case !bok:
				return -1
			}
			c := sign(av - bv)
			if dir == Desc {
				c = -c
			}
			return c
		})
		return out
	}

	if field.Text == nil {
		return out
	}

	// Collators carry buffers and are not safe for concurrent use.
	col := collate.New(language.English)
	slices.SortStableFunc(out, func(a, b T) int {
		c := col.CompareString(field.Text(a), field.Text(b))
		if dir == Desc {
			c = -c
		}
		return c
	})
	return out
}

func sign(d float64) int {
	switch {
	case d < 0:
		return -1
	case d > 0:
		return 1
	default:
		return 0
	}
}
