package query

import (
	"fmt"
	"strings"
)

// Stage is one named step of a pipeline
type Stage interface {
	stageName() string
}

// MatchStage filters rows
type MatchStage struct {
	Cond Cond
}

// Match builds a MatchStage
func Match(c Cond) MatchStage {
	return MatchStage{Cond: c}
}

func (MatchStage) stageName() string { return "match" }

// SearchStage filters rows by full-text search over Columns. An empty query
// does not filter.
type SearchStage struct {
	Query   string
	Columns []string
}

// Search builds a SearchStage
func Search(q string, columns ...string) SearchStage {
	return SearchStage{Query: strings.TrimSpace(q), Columns: columns}
}

func (SearchStage) stageName() string { return "search" }

// LookupStage joins one related row. Unwound lookups drop rows without a
// match; others keep them with null fields.
type LookupStage struct {
	Table        string
	As           string
	LocalField   string
	ForeignField string
	Unwind       bool
}

// Lookup joins table AS as ON as.foreignField = localField
func Lookup(table, as, localField, foreignField string) LookupStage {
	return LookupStage{Table: table, As: as, LocalField: localField, ForeignField: foreignField}
}

// Unwound returns the lookup as an inner join
func (l LookupStage) Unwound() LookupStage {
	l.Unwind = true
	return l
}

func (LookupStage) stageName() string { return "lookup" }

func (l LookupStage) render(r *renderer) (string, error) {
	if !identPattern.MatchString(l.Table) || !identPattern.MatchString(l.As) || !identPattern.MatchString(l.ForeignField) {
		return "", fmt.Errorf("query: invalid lookup %s AS %s", l.Table, l.As)
	}
	local, err := Col(l.LocalField).render(r)
	if err != nil {
		return "", err
	}
	join := "LEFT JOIN"
	if l.Unwind {
		join = "JOIN"
	}
	return fmt.Sprintf("%s %s %s ON %s.%s = %s", join, l.Table, l.As, l.As, l.ForeignField, local), nil
}

// Aggregate reduces the rows of a LookupMany stage to one value
type Aggregate interface {
	aggName() string
	render(r *renderer) (string, error)
}

type countAgg struct{ name string }

// CountAgg counts the related rows
func CountAgg(name string) Aggregate { return countAgg{name: name} }

func (a countAgg) aggName() string                   { return a.name }
func (a countAgg) render(*renderer) (string, error) { return "COUNT(*)", nil }

type sumAgg struct {
	name string
	expr Expr
}

// SumAgg sums expr over the related rows, zero when there are none
func SumAgg(name string, expr Expr) Aggregate { return sumAgg{name: name, expr: expr} }

func (a sumAgg) aggName() string { return a.name }

func (a sumAgg) render(r *renderer) (string, error) {
	sql, err := a.expr.render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("COALESCE(SUM(%s), 0)", sql), nil
}

type containsAgg struct {
	name   string
	column string
	viewer string
}

// ContainsAgg is true when a related row has column equal to viewer. It is
// always false for an anonymous viewer.
func ContainsAgg(name, column, viewer string) Aggregate {
	return containsAgg{name: name, column: column, viewer: viewer}
}

func (a containsAgg) aggName() string { return a.name }

func (a containsAgg) render(r *renderer) (string, error) {
	if a.viewer == "" {
		return "FALSE", nil
	}
	sql, err := ColEq(a.column, a.viewer).render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("COALESCE(bool_or%s, FALSE)", sql), nil
}

type collectAgg struct {
	name  string
	item  Expr
	order []SortKey
}

// CollectAgg collects item over the related rows into a JSON array, empty
// when there are none.
func CollectAgg(name string, item Expr, order ...SortKey) Aggregate {
	return collectAgg{name: name, item: item, order: order}
}

func (a collectAgg) aggName() string { return a.name }

func (a collectAgg) render(r *renderer) (string, error) {
	item, err := a.item.render(r)
	if err != nil {
		return "", err
	}
	orderBy := ""
	if len(a.order) > 0 {
		keys, err := renderSortKeys(r, a.order)
		if err != nil {
			return "", err
		}
		orderBy = " ORDER BY " + keys
	}
	return fmt.Sprintf("COALESCE(json_agg(%s%s), '[]'::json)", item, orderBy), nil
}

// LookupManyStage joins the rows of From correlated on
// From.ForeignField = LocalField and reduces them with Aggregates. From may
// carry its own Match and Lookup stages.
type LookupManyStage struct {
	As           string
	From         *Pipeline
	ForeignField string
	LocalField   string
	Aggregates   []Aggregate
}

// LookupMany builds a LookupManyStage
func LookupMany(as string, from *Pipeline, foreignField, localField string, aggs ...Aggregate) LookupManyStage {
	return LookupManyStage{As: as, From: from, ForeignField: foreignField, LocalField: localField, Aggregates: aggs}
}

func (LookupManyStage) stageName() string { return "lookupMany" }

func (l LookupManyStage) render(r *renderer) (string, error) {
	if !identPattern.MatchString(l.As) {
		return "", fmt.Errorf("query: invalid lookup alias %q", l.As)
	}
	if l.From == nil {
		return "", fmt.Errorf("query: lookup %s has no source", l.As)
	}
	if len(l.Aggregates) == 0 {
		return "", fmt.Errorf("query: lookup %s has no aggregates", l.As)
	}

	aggs := make([]string, 0, len(l.Aggregates))
	seen := make(map[string]bool, len(l.Aggregates))
	for _, a := range l.Aggregates {
		if !keyPattern.MatchString(a.aggName()) || seen[a.aggName()] {
			return "", fmt.Errorf("query: invalid aggregate name %q in lookup %s", a.aggName(), l.As)
		}
		seen[a.aggName()] = true
		sql, err := a.render(r)
		if err != nil {
			return "", fmt.Errorf("lookup %s: %w", l.As, err)
		}
		aggs = append(aggs, fmt.Sprintf(`%s AS "%s"`, sql, a.aggName()))
	}

	from, joins, where, err := l.From.renderSource(r)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", l.As, err)
	}
	correlation, err := Eq(Col(l.ForeignField), Col(l.LocalField)).render(r)
	if err != nil {
		return "", fmt.Errorf("lookup %s: %w", l.As, err)
	}
	where = append([]string{correlation}, where...)

	var b strings.Builder
	b.WriteString("LEFT JOIN LATERAL (SELECT ")
	b.WriteString(strings.Join(aggs, ", "))
	b.WriteString(" FROM ")
	b.WriteString(from)
	for _, j := range joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(where, " AND "))
	b.WriteString(") AS ")
	b.WriteString(l.As)
	b.WriteString(" ON TRUE")
	return b.String(), nil
}

// AddFieldsStage declares named expressions later stages can Ref
type AddFieldsStage struct {
	Fields []Field
}

// AddFields builds an AddFieldsStage
func AddFields(fields ...Field) AddFieldsStage {
	return AddFieldsStage{Fields: fields}
}

func (AddFieldsStage) stageName() string { return "addFields" }

// ProjectStage shapes each row into a JSON document
type ProjectStage struct {
	Fields []Field
}

// Project builds a ProjectStage
func Project(fields ...Field) ProjectStage {
	return ProjectStage{Fields: fields}
}

func (ProjectStage) stageName() string { return "project" }

// SortKey orders rows by Expr
type SortKey struct {
	Expr Expr
	Desc bool
}

// Asc sorts ascending
func Asc(expr Expr) SortKey { return SortKey{Expr: expr} }

// Desc sorts descending
func Desc(expr Expr) SortKey { return SortKey{Expr: expr, Desc: true} }

// By sorts by expr in the given direction
func By(expr Expr, desc bool) SortKey { return SortKey{Expr: expr, Desc: desc} }

func renderSortKeys(r *renderer, keys []SortKey) (string, error) {
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		sql, err := k.Expr.render(r)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if k.Desc {
			dir = "DESC"
		}
		parts = append(parts, sql+" "+dir)
	}
	return strings.Join(parts, ", "), nil
}

// SortStage orders the result
type SortStage struct {
	Keys []SortKey
}

// Sort builds a SortStage
func Sort(keys ...SortKey) SortStage {
	return SortStage{Keys: keys}
}

func (SortStage) stageName() string { return "sort" }

// PageStage limits the result to one page
type PageStage struct {
	Page  int
	Limit int
}

// Paged builds a PageStage for a 1-based page
func Paged(page, limit int) PageStage {
	return PageStage{Page: page, Limit: limit}
}

// Skip returns the number of rows before the page
func (p PageStage) Skip() int {
	return (p.Page - 1) * p.Limit
}

func (PageStage) stageName() string { return "paginate" }
