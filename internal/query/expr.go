package query

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	identPattern     = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)
	qualifiedPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*\.[a-z_][a-z0-9_]*$`)
	keyPattern       = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// renderer accumulates bind arguments and the derived fields declared by
// AddFields stages while a pipeline is rendered.
type renderer struct {
	args      []interface{}
	derived   map[string]Expr
	expanding map[string]bool
}

func newRenderer() *renderer {
	return &renderer{derived: make(map[string]Expr), expanding: make(map[string]bool)}
}

func (r *renderer) bind(v interface{}) string {
	r.args = append(r.args, v)
	return fmt.Sprintf("$%d", len(r.args))
}

// Expr is a SQL expression
type Expr interface {
	render(r *renderer) (string, error)
}

// Cond is a boolean SQL expression
type Cond interface {
	Expr
	cond()
}

type column string

// Col references a column as alias.name
func Col(qualified string) Expr {
	return column(qualified)
}

func (c column) render(*renderer) (string, error) {
	if !qualifiedPattern.MatchString(string(c)) {
		return "", fmt.Errorf("query: invalid column %q", string(c))
	}
	return string(c), nil
}

type value struct{ v interface{} }

// Val binds v as a query argument
func Val(v interface{}) Expr {
	return value{v: v}
}

func (v value) render(r *renderer) (string, error) {
	return r.bind(v.v), nil
}

type literal string

func (l literal) render(*renderer) (string, error) { return string(l), nil }
func (literal) cond()                              {}

// Boolean literals
var (
	True  Cond = literal("TRUE")
	False Cond = literal("FALSE")
)

// Field is one key of a projected JSON object
type Field struct {
	Key  string
	Expr Expr
}

// F builds a Field
func F(key string, expr Expr) Field {
	return Field{Key: key, Expr: expr}
}

type object []Field

// Obj builds a JSON object from fields
func Obj(fields ...Field) Expr {
	return object(fields)
}

func (o object) render(r *renderer) (string, error) {
	if len(o) == 0 {
		return "", fmt.Errorf("query: empty object")
	}
	parts := make([]string, 0, len(o)*2)
	for _, f := range o {
		if !keyPattern.MatchString(f.Key) {
			return "", fmt.Errorf("query: invalid field key %q", f.Key)
		}
		sql, err := f.Expr.render(r)
		if err != nil {
			return "", fmt.Errorf("field %s: %w", f.Key, err)
		}
		parts = append(parts, fmt.Sprintf("'%s', %s", f.Key, sql))
	}
	return "json_build_object(" + strings.Join(parts, ", ") + ")", nil
}

type ref string

// Ref references a field declared by an earlier AddFields stage
func Ref(name string) Expr {
	return ref(name)
}

// Derived fields are expanded at each use, so declared but unused fields bind
// no arguments.
func (f ref) render(r *renderer) (string, error) {
	name := string(f)
	expr, ok := r.derived[name]
	if !ok {
		return "", fmt.Errorf("query: unknown field %q", name)
	}
	if r.expanding[name] {
		return "", fmt.Errorf("query: field %q refers to itself", name)
	}
	r.expanding[name] = true
	defer delete(r.expanding, name)
	return expr.render(r)
}

type aggRef struct{ as, name string }

// Agg references an aggregate produced by the LookupMany stage named as
func Agg(as, name string) Expr {
	return aggRef{as: as, name: name}
}

func (a aggRef) render(*renderer) (string, error) {
	if !identPattern.MatchString(a.as) || !keyPattern.MatchString(a.name) {
		return "", fmt.Errorf("query: invalid aggregate reference %s.%s", a.as, a.name)
	}
	return fmt.Sprintf(`%s."%s"`, a.as, a.name), nil
}

type coalesce []Expr

// Coalesce returns the first non-null expression
func Coalesce(exprs ...Expr) Expr {
	return coalesce(exprs)
}

func (c coalesce) render(r *renderer) (string, error) {
	parts, err := renderAll(r, c)
	if err != nil {
		return "", err
	}
	return "COALESCE(" + strings.Join(parts, ", ") + ")", nil
}

type caseWhen struct {
	when Cond
	then Expr
}

// When yields then where c holds and NULL otherwise
func When(c Cond, then Expr) Expr {
	return caseWhen{when: c, then: then}
}

func (c caseWhen) render(r *renderer) (string, error) {
	when, err := c.when.render(r)
	if err != nil {
		return "", err
	}
	then, err := c.then.render(r)
	if err != nil {
		return "", err
	}
	return "CASE WHEN " + when + " THEN " + then + " END", nil
}

func renderAll(r *renderer, exprs []Expr) ([]string, error) {
	if len(exprs) == 0 {
		return nil, fmt.Errorf("query: empty expression list")
	}
	parts := make([]string, 0, len(exprs))
	for _, e := range exprs {
		sql, err := e.render(r)
		if err != nil {
			return nil, err
		}
		parts = append(parts, sql)
	}
	return parts, nil
}

type binary struct {
	op          string
	left, right Expr
}

func (b binary) cond() {}

func (b binary) render(r *renderer) (string, error) {
	left, err := b.left.render(r)
	if err != nil {
		return "", err
	}
	right, err := b.right.render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("(%s %s %s)", left, b.op, right), nil
}

// Eq compares two expressions for equality
func Eq(left, right Expr) Cond {
	return binary{op: "=", left: left, right: right}
}

// ColEq compares a column with a bound value
func ColEq(qualified string, v interface{}) Cond {
	return Eq(Col(qualified), Val(v))
}

type junction struct {
	op    string
	empty literal
	conds []Cond
}

func (j junction) cond() {}

func (j junction) render(r *renderer) (string, error) {
	if len(j.conds) == 0 {
		return string(j.empty), nil
	}
	parts := make([]string, 0, len(j.conds))
	for _, c := range j.conds {
		sql, err := c.render(r)
		if err != nil {
			return "", err
		}
		parts = append(parts, sql)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return "(" + strings.Join(parts, " "+j.op+" ") + ")", nil
}

// And is true when every condition holds. And() is TRUE.
func And(conds ...Cond) Cond {
	return junction{op: "AND", empty: "TRUE", conds: conds}
}

// Or is true when any condition holds. Or() is FALSE.
func Or(conds ...Cond) Cond {
	return junction{op: "OR", empty: "FALSE", conds: conds}
}

type unary struct {
	format string
	expr   Expr
}

func (u unary) cond() {}

func (u unary) render(r *renderer) (string, error) {
	sql, err := u.expr.render(r)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(u.format, sql), nil
}

// Not negates a condition
func Not(c Cond) Cond {
	return unary{format: "(NOT %s)", expr: c}
}

// IsTrue holds when expr is TRUE (not FALSE or NULL)
func IsTrue(expr Expr) Cond {
	return unary{format: "(%s IS TRUE)", expr: expr}
}

// IsNull holds when expr is NULL
func IsNull(expr Expr) Cond {
	return unary{format: "(%s IS NULL)", expr: expr}
}

// IsNotNull holds when expr is not NULL
func IsNotNull(expr Expr) Cond {
	return unary{format: "(%s IS NOT NULL)", expr: expr}
}

// ViewerEq compares a column with the viewer id. An anonymous viewer (empty
// id) never matches.
func ViewerEq(qualified, viewer string) Cond {
	if viewer == "" {
		return False
	}
	return ColEq(qualified, viewer)
}

type textSearch struct {
	query   string
	columns []string
}

func (t textSearch) cond() {}

func (t textSearch) render(r *renderer) (string, error) {
	if len(t.columns) == 0 {
		return "", fmt.Errorf("query: text search needs at least one column")
	}
	cols := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		sql, err := Col(c).render(r)
		if err != nil {
			return "", err
		}
		cols = append(cols, sql)
	}
	return fmt.Sprintf("(to_tsvector('simple', concat_ws(' ', %s)) @@ plainto_tsquery('simple', %s))",
		strings.Join(cols, ", "), r.bind(t.query)), nil
}

// TextSearch matches rows whose columns contain every word of q
func TextSearch(q string, columns ...string) Cond {
	return textSearch{query: q, columns: columns}
}
