package dto

import (
	"fmt"
	"maps"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorLike      = "like"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
}

// Filter is a single condition on Field. ArgName names the bound parameter and
// defaults to Field, so it must be set when a group tests one column twice.
type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq like not_eq less_eq greater_eq"`
	Table    string
}

func (f Filter) GetWhereClause() (string, map[string]any) {
	column := f.Field
	if f.Table != "" {
		column = f.Table + "." + f.Field
	}

	argName := f.ArgName
	if argName == "" {
		argName = f.Field
	}

	if f.Operator == FilterOperatorLike {
		return fmt.Sprintf("LOWER(%s) LIKE LOWER(:%s)", column, argName), map[string]any{argName: fmt.Sprintf("%%%v%%", f.Value)}
	}

	comparison, ok := comparisons[f.Operator]
	if !ok {
		return "", map[string]any{}
	}

	return fmt.Sprintf("%s %s :%s", column, comparison, argName), map[string]any{argName: f.Value}
}

// FilterGroup joins Filters and nested FilterGroups with Operator, AND by default.
type FilterGroup struct {
	Filters  []any
	Operator string
}

func And(filters ...any) FilterGroup {
	return FilterGroup{Filters: filters, Operator: FilterGroupOperatorAnd}
}

func Or(filters ...any) FilterGroup {
	return FilterGroup{Filters: filters, Operator: FilterGroupOperatorOr}
}

func (g FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	clauses := make([]string, 0, len(g.Filters))

	for _, item := range g.Filters {
		var (
			where string
			arg   map[string]any
		)

		switch condition := item.(type) {
		case Filter:
			where, arg = condition.GetWhereClause()
		case FilterGroup:
			where, arg = condition.GetWhereClause()
		default:
			continue
		}

		if where == "" {
			continue
		}

		clauses = append(clauses, where)
		maps.Copy(args, arg)
	}

	if len(clauses) == 0 {
		return "", args
	}

	operator := g.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return fmt.Sprintf("(%s)", strings.Join(clauses, " "+operator+" ")), args
}
