package fop

import (
	"strings"
)

// OrderClause is a single sort key.
type OrderClause struct {
	Column string
	Desc   bool
}

// SQL renders the clause for an ORDER BY. Column comes from the whitelist,
// never from request text.
func (c OrderClause) SQL() string {
	if c.Desc {
		return c.Column + " DESC"
	}
	return c.Column + " ASC"
}

// ParseOrder parses a comma-separated list of `field[:asc|desc]` clauses.
// Clauses apply in listed sequence as primary, secondary, ... sort keys.
// The identity column is always appended as the final key so that repeated
// requests over unchanged data return identical ordering, with or without
// an explicit order.
func ParseOrder(fields Fields, order string) ([]OrderClause, error) {
	var clauses []OrderClause

	if strings.TrimSpace(order) != "" {
		for _, raw := range strings.Split(order, ",") {
			clause, err := parseOrderClause(fields, raw)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, clause)
		}
	}

	// Stable tie-break by identity.
	for _, clause := range clauses {
		if clause.Column == "id" {
			return clauses, nil
		}
	}
	return append(clauses, OrderClause{Column: "id"}), nil
}

func parseOrderClause(fields Fields, raw string) (OrderClause, error) {
	name := strings.TrimSpace(raw)
	desc := false

	if idx := strings.Index(name, ":"); idx >= 0 {
		direction := strings.TrimSpace(name[idx+1:])
		name = strings.TrimSpace(name[:idx])
		switch strings.ToLower(direction) {
		case "asc":
		case "desc":
			desc = true
		default:
			return OrderClause{}, parseErrorf("order", "invalid direction %q, expected asc or desc", direction)
		}
	}

	if name == "" {
		return OrderClause{}, parseErrorf("order", "empty order clause")
	}

	field, ok := fields[name]
	if !ok {
		return OrderClause{}, parseErrorf("order", "unknown field: %s", name)
	}

	return OrderClause{Column: field.Column, Desc: desc}, nil
}
