// Package query defines parameterized store queries. Conditions are written as
// templates with ? placeholders and values are bound separately, so a caller
// supplied value can never change the shape of a query.
package query

import (
	"fmt"
	"strings"

	"github.com/viant/toolbox"
)

// Row represents a single query result row
type Row map[Column]string

// Rows represents query results
type Rows []Row

// Values returns the column value of every row
func (r Rows) Values(column Column) []string {
	var result = make([]string, 0, len(r))
	for _, row := range r {
		result = append(result, row[column])
	}
	return result
}

// Query represents a select of columns filtered by bound conditions
type Query struct {
	Columns    []Column
	Conditions []*Condition
}

// Select creates a query returning the supplied columns
func Select(columns ...Column) *Query {
	return &Query{Columns: columns}
}

// Where parses template and binds args to its placeholders in order; conditions
// are appended with AND semantics. A []string argument expands into consecutive
// placeholders.
func (q *Query) Where(template string, args ...interface{}) (*Query, error) {
	conditions, err := parse(template)
	if err != nil {
		return nil, fmt.Errorf("invalid condition %q: %w", template, err)
	}
	values := make([]string, 0, len(args))
	for _, arg := range args {
		switch actual := arg.(type) {
		case string:
			values = append(values, actual)
		case []string:
			values = append(values, actual...)
		default:
			values = append(values, toolbox.AsString(actual))
		}
	}
	expected := 0
	for _, condition := range conditions {
		expected += condition.arity
	}
	if expected != len(values) {
		return nil, fmt.Errorf("invalid condition %q: expected %d values, but had %d", template, expected, len(values))
	}
	offset := 0
	for _, condition := range conditions {
		condition.Values = values[offset : offset+condition.arity]
		offset += condition.arity
	}
	q.Conditions = append(q.Conditions, conditions...)
	return q, nil
}

// Domain returns the domain shared by every referenced column
func (q *Query) Domain() (Domain, error) {
	if len(q.Columns) == 0 {
		return DomainUnknown, fmt.Errorf("query has no columns")
	}
	domain := DomainUnknown
	check := func(column Column) error {
		columnDomain := column.Domain()
		if columnDomain == DomainUnknown {
			return fmt.Errorf("unsupported column: %v", column)
		}
		if domain != DomainUnknown && domain != columnDomain {
			return fmt.Errorf("column %v can not be combined with other query columns", column)
		}
		domain = columnDomain
		return nil
	}
	for _, column := range q.Columns {
		if err := check(column); err != nil {
			return DomainUnknown, err
		}
	}
	for _, condition := range q.Conditions {
		if err := check(condition.Column); err != nil {
			return DomainUnknown, err
		}
	}
	return domain, nil
}

// HasMeta reports whether the query reads attribute rows
func (q *Query) HasMeta() bool {
	for _, column := range q.Columns {
		if column.IsMeta() {
			return true
		}
	}
	for _, condition := range q.Conditions {
		if condition.Column.IsMeta() {
			return true
		}
	}
	return false
}

// Match reports whether all conditions hold for the row
func (q *Query) Match(row Row) bool {
	for _, condition := range q.Conditions {
		if !condition.Match(row) {
			return false
		}
	}
	return true
}

// Project returns a row with the selected columns only
func (q *Query) Project(row Row) Row {
	result := make(Row, len(q.Columns))
	for _, column := range q.Columns {
		result[column] = row[column]
	}
	return result
}

// String renders the query with quoted literals, for logging only
func (q *Query) String() string {
	builder := strings.Builder{}
	builder.WriteString("SELECT ")
	for i, column := range q.Columns {
		if i > 0 {
			builder.WriteString(", ")
		}
		builder.WriteString(string(column))
	}
	for i, condition := range q.Conditions {
		if i == 0 {
			builder.WriteString(" WHERE ")
		} else {
			builder.WriteString(" AND ")
		}
		builder.WriteString(condition.String())
	}
	return builder.String()
}
