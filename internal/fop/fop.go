// Package fop implements the filter-order-page query contract: it compiles
// untrusted filter, order and page parameters into a validated plan that can
// be applied to any whitelisted entity collection.
package fop

import (
	"fmt"

	"gorm.io/gorm"
)

// FieldType is the declared type of a filterable field.
type FieldType int

const (
	String FieldType = iota
	Int
	Float
	Bool
)

// Field declares one filterable/orderable field: the column it maps to and
// the literal type it accepts.
type Field struct {
	Column string
	Type   FieldType
}

// Fields is the whitelist of fields a query may reference. Field names not
// present here fail parsing.
type Fields map[string]Field

// ParseError is a descriptive filter/order/page validation failure. It is
// reported to the caller as a validation outcome, never as a panic.
type ParseError struct {
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func parseErrorf(field, format string, args ...interface{}) *ParseError {
	return &ParseError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Query is a validated query plan produced by Build.
type Query struct {
	Filter     Condition
	Order      []OrderClause
	PageNumber int
	PageSize   int
}

// Build parses the three inputs against the field whitelist. An empty filter
// matches everything and an empty order falls back to the stable identity
// order. Page numbering starts at 1.
func Build(fields Fields, filter, order string, pageNumber, pageSize int) (*Query, error) {
	if pageNumber < 1 {
		return nil, parseErrorf("pageNumber", "must be greater than or equal to 1")
	}
	if pageSize < 1 {
		return nil, parseErrorf("pageSize", "must be greater than or equal to 1")
	}

	condition, err := ParseFilter(fields, filter)
	if err != nil {
		return nil, err
	}

	orderBy, err := ParseOrder(fields, order)
	if err != nil {
		return nil, err
	}

	return &Query{
		Filter:     condition,
		Order:      orderBy,
		PageNumber: pageNumber,
		PageSize:   pageSize,
	}, nil
}

// Offset returns the number of rows to skip before the requested page.
func (q *Query) Offset() int {
	return (q.PageNumber - 1) * q.PageSize
}

// Scope applies the filter predicate to a gorm query. Counting and paging
// against the same scope keeps TotalCount and the page consistent.
func (q *Query) Scope(db *gorm.DB) *gorm.DB {
	if q.Filter.Clause != "" {
		db = db.Where(q.Filter.Clause, q.Filter.Params...)
	}
	return db
}

// Page applies the sort keys and the page window on top of Scope.
func (q *Query) Page(db *gorm.DB) *gorm.DB {
	db = q.Scope(db)
	for _, clause := range q.Order {
		db = db.Order(clause.SQL())
	}
	return db.Offset(q.Offset()).Limit(q.PageSize)
}
