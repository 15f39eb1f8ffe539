// Package query composes read models as typed pipelines of named stages
// (match, search, lookup, lookup-many, add-fields, project, sort, paginate)
// and renders each pipeline to one PostgreSQL statement that returns one JSON
// document per row, plus a separate count statement for pagination.
package query

import (
	"fmt"
	"strings"
)

// Pipeline is a named, ordered list of stages over a root table
type Pipeline struct {
	Name   string
	Table  string
	Alias  string
	Stages []Stage
}

// New creates a pipeline over table AS alias
func New(name, table, alias string, stages ...Stage) *Pipeline {
	return &Pipeline{Name: name, Table: table, Alias: alias, Stages: stages}
}

// With returns a copy of the pipeline with stages appended
func (p *Pipeline) With(stages ...Stage) *Pipeline {
	next := make([]Stage, 0, len(p.Stages)+len(stages))
	next = append(next, p.Stages...)
	next = append(next, stages...)
	return &Pipeline{Name: p.Name, Table: p.Table, Alias: p.Alias, Stages: next}
}

// Page returns the pagination stage, if any
func (p *Pipeline) Page() (PageStage, bool) {
	for _, s := range p.Stages {
		if ps, ok := s.(PageStage); ok {
			return ps, true
		}
	}
	return PageStage{}, false
}

type mode int

const (
	modeFull mode = iota
	modeCount
	modeSource
)

type compiled struct {
	from    string
	joins   []string
	where   []string
	project string
	orderBy string
	page    *PageStage
}

func (p *Pipeline) compile(r *renderer, m mode) (*compiled, error) {
	if !identPattern.MatchString(p.Table) || !identPattern.MatchString(p.Alias) {
		return nil, fmt.Errorf("query: invalid root %s AS %s", p.Table, p.Alias)
	}
	out := &compiled{from: p.Table + " " + p.Alias}
	aliases := map[string]bool{p.Alias: true}

	addAlias := func(as string) error {
		if aliases[as] {
			return fmt.Errorf("query: duplicate alias %q", as)
		}
		aliases[as] = true
		return nil
	}

	for i, stage := range p.Stages {
		wrap := func(err error) error {
			return fmt.Errorf("pipeline %s stage %d (%s): %w", p.Name, i, stage.stageName(), err)
		}

		switch s := stage.(type) {
		case MatchStage:
			if s.Cond == nil {
				return nil, wrap(fmt.Errorf("nil condition"))
			}
			sql, err := s.Cond.render(r)
			if err != nil {
				return nil, wrap(err)
			}
			out.where = append(out.where, sql)

		case SearchStage:
			if s.Query == "" {
				continue
			}
			sql, err := TextSearch(s.Query, s.Columns...).render(r)
			if err != nil {
				return nil, wrap(err)
			}
			out.where = append(out.where, sql)

		case LookupStage:
			if err := addAlias(s.As); err != nil {
				return nil, wrap(err)
			}
			sql, err := s.render(r)
			if err != nil {
				return nil, wrap(err)
			}
			out.joins = append(out.joins, sql)

		case LookupManyStage:
			if m == modeCount {
				continue
			}
			if err := addAlias(s.As); err != nil {
				return nil, wrap(err)
			}
			sql, err := s.render(r)
			if err != nil {
				return nil, wrap(err)
			}
			out.joins = append(out.joins, sql)

		case AddFieldsStage:
			if m == modeSource {
				return nil, wrap(fmt.Errorf("not allowed in a lookup source"))
			}
			if m == modeCount {
				continue
			}
			for _, f := range s.Fields {
				if !keyPattern.MatchString(f.Key) {
					return nil, wrap(fmt.Errorf("invalid field name %q", f.Key))
				}
				if _, exists := r.derived[f.Key]; exists {
					return nil, wrap(fmt.Errorf("field %q declared twice", f.Key))
				}
				r.derived[f.Key] = f.Expr
			}

		case ProjectStage:
			if m == modeSource {
				return nil, wrap(fmt.Errorf("not allowed in a lookup source"))
			}
			if m == modeCount {
				continue
			}
			if out.project != "" {
				return nil, wrap(fmt.Errorf("pipeline already has a projection"))
			}
			sql, err := Obj(s.Fields...).render(r)
			if err != nil {
				return nil, wrap(err)
			}
			out.project = sql

		case SortStage:
			if m == modeSource {
				return nil, wrap(fmt.Errorf("not allowed in a lookup source"))
			}
			if m == modeCount {
				continue
			}
			if out.orderBy != "" {
				return nil, wrap(fmt.Errorf("pipeline already has a sort"))
			}
			if len(s.Keys) == 0 {
				return nil, wrap(fmt.Errorf("empty sort"))
			}
			keys := append(append([]SortKey{}, s.Keys...), By(Col(p.Alias+".id"), s.Keys[len(s.Keys)-1].Desc))
			sql, err := renderSortKeys(r, keys)
			if err != nil {
				return nil, wrap(err)
			}
			out.orderBy = sql

		case PageStage:
			if m == modeSource {
				return nil, wrap(fmt.Errorf("not allowed in a lookup source"))
			}
			if m == modeCount {
				continue
			}
			if out.page != nil {
				return nil, wrap(fmt.Errorf("pipeline already paginated"))
			}
			if s.Page < 1 || s.Limit < 1 {
				return nil, wrap(fmt.Errorf("invalid page %d/%d", s.Page, s.Limit))
			}
			page := s
			out.page = &page

		default:
			return nil, wrap(fmt.Errorf("unsupported stage %T", stage))
		}
	}

	if m == modeFull {
		if out.project == "" {
			return nil, fmt.Errorf("pipeline %s: missing projection", p.Name)
		}
		if out.orderBy == "" {
			sql, err := renderSortKeys(r, []SortKey{
				Desc(Col(p.Alias + ".created_at")),
				Desc(Col(p.Alias + ".id")),
			})
			if err != nil {
				return nil, err
			}
			out.orderBy = sql
		}
	}

	return out, nil
}

// renderSource renders the FROM, JOIN and WHERE parts for use inside a
// lookup-many subquery.
func (p *Pipeline) renderSource(r *renderer) (string, []string, []string, error) {
	c, err := p.compile(r, modeSource)
	if err != nil {
		return "", nil, nil, err
	}
	return c.from, c.joins, c.where, nil
}

func (c *compiled) writeFrom(b *strings.Builder) {
	b.WriteString(" FROM ")
	b.WriteString(c.from)
	for _, j := range c.joins {
		b.WriteString(" ")
		b.WriteString(j)
	}
	if len(c.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(c.where, " AND "))
	}
}

// Render returns the statement selecting one JSON document per row in a
// column named doc, and its arguments.
func (p *Pipeline) Render() (string, []interface{}, error) {
	r := newRenderer()
	c, err := p.compile(r, modeFull)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT ")
	b.WriteString(c.project)
	b.WriteString(" AS doc")
	c.writeFrom(&b)
	b.WriteString(" ORDER BY ")
	b.WriteString(c.orderBy)
	if c.page != nil {
		fmt.Fprintf(&b, " LIMIT %d OFFSET %d", c.page.Limit, c.page.Skip())
	}
	return b.String(), r.args, nil
}

// RenderCount returns a statement counting the rows the pipeline yields
// before pagination. Lookup-many, add-fields, project, sort and paginate
// stages do not change the count and are left out.
func (p *Pipeline) RenderCount() (string, []interface{}, error) {
	r := newRenderer()
	c, err := p.compile(r, modeCount)
	if err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT COUNT(*)")
	c.writeFrom(&b)
	return b.String(), r.args, nil
}
