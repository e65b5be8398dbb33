package store

import "errors"

// ErrNotFound is returned when no row matches the requested id.
var ErrNotFound = errors.New("record not found")

// Op is a predicate comparison operator.
type Op int

const (
	// OpEq matches rows whose column equals the value.
	OpEq Op = iota
	// OpContainsFold matches rows whose column contains the value, ignoring case.
	OpContainsFold
)

// Predicate is a single filter condition on a column.
type Predicate struct {
	Column string
	Op     Op
	Value  any
}

// Eq builds an equality predicate.
func Eq(column string, value any) Predicate {
	return Predicate{Column: column, Op: OpEq, Value: value}
}

// ContainsFold builds a case-insensitive substring predicate.
func ContainsFold(column, value string) Predicate {
	return Predicate{Column: column, Op: OpContainsFold, Value: value}
}

// Query selects a page of rows. Predicates are applied conjunctively.
// A Limit of zero or less returns every matching row.
type Query struct {
	Predicates []Predicate
	Offset     int
	Limit      int
}

// Fields holds column assignments for a partial update.
type Fields map[string]any
