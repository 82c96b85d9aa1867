// Package querysql compiles queryir filters to parameterised SQLite.
package querysql

import (
	"fmt"
	"strings"

	"github.com/roach88/invitations/internal/queryir"
)

// Table is the name of the invitations table.
const Table = "invitations"

// SelectColumns is the column list every read uses, in scan order.
var SelectColumns = func() string {
	cols := make([]string, len(queryir.Columns))
	for i, c := range queryir.Columns {
		cols[i] = string(c)
	}
	return strings.Join(cols, ", ")
}()

// Compiled is a filter lowered to SQL fragments.
//
// Where is always a valid boolean expression ("1 = 1" when unconstrained).
// Tail holds ORDER BY and, for paginated filters, LIMIT/OFFSET.
type Compiled struct {
	Where  string
	Tail   string
	Params []any
}

// Select assembles a full SELECT over the invitations table.
func (c Compiled) Select() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s%s", SelectColumns, Table, c.Where, c.Tail)
}

// Compile lowers f to SQL.
//
// All values are parameterised; column names only ever come from the
// queryir.Column whitelist. Every query is ordered with "id ASC" as the final
// key and text columns use COLLATE BINARY, so the row order matches
// queryir.Apply.
func Compile(f queryir.Filter) (Compiled, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return Compiled{}, err
	}

	where, params, err := compilePredicate(f.Predicate())
	if err != nil {
		return Compiled{}, err
	}

	tail := " ORDER BY " + orderKey(f.OrderBy, f.SortOrder)
	if f.Paginated() {
		tail += " LIMIT ? OFFSET ?"
		params = append(params, f.PerPage, f.Offset())
	}

	return Compiled{Where: where, Tail: tail, Params: params}, nil
}

// CompileWhere lowers only the predicates of f, for UPDATE and DELETE.
func CompileWhere(f queryir.Filter) (string, []any, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return "", nil, err
	}
	return compilePredicate(f.Predicate())
}

func orderKey(col queryir.Column, order queryir.SortOrder) string {
	if col == queryir.ColID {
		return "id " + string(order)
	}
	key := string(col)
	if col.Text() {
		key += " COLLATE BINARY"
	}
	return key + " " + string(order) + ", id ASC"
}

func compilePredicate(p queryir.Predicate) (string, []any, error) {
	switch pred := p.(type) {
	case nil:
		return "1 = 1", nil, nil
	case queryir.And:
		return compileAnd(pred)
	case *queryir.And:
		return compileAnd(*pred)
	case queryir.In:
		return compileIn(pred)
	case *queryir.In:
		return compileIn(*pred)
	case queryir.Equals:
		return compileEquals(pred)
	case *queryir.Equals:
		return compileEquals(*pred)
	case queryir.Search:
		return compileSearch(pred)
	case *queryir.Search:
		return compileSearch(*pred)
	default:
		return "", nil, fmt.Errorf("unsupported predicate type: %T", p)
	}
}

func compileAnd(and queryir.And) (string, []any, error) {
	if len(and.Predicates) == 0 {
		return "1 = 1", nil, nil
	}

	parts := make([]string, 0, len(and.Predicates))
	var params []any
	for _, sub := range and.Predicates {
		sql, ps, err := compilePredicate(sub)
		if err != nil {
			return "", nil, err
		}
		parts = append(parts, sql)
		params = append(params, ps...)
	}
	return strings.Join(parts, " AND "), params, nil
}

func compileIn(in queryir.In) (string, []any, error) {
	if !in.Column.Valid() {
		return "", nil, fmt.Errorf("unknown column %q", in.Column)
	}
	if len(in.Values) == 0 {
		return "1 = 0", nil, nil
	}
	if len(in.Values) == 1 {
		return fmt.Sprintf("%s = ?", in.Column), []any{in.Values[0]}, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?, ", len(in.Values)), ", ")
	params := make([]any, len(in.Values))
	copy(params, in.Values)
	return fmt.Sprintf("%s IN (%s)", in.Column, marks), params, nil
}

func compileEquals(eq queryir.Equals) (string, []any, error) {
	if !eq.Column.Valid() {
		return "", nil, fmt.Errorf("unknown column %q", eq.Column)
	}
	return fmt.Sprintf("%s = ?", eq.Column), []any{eq.Value}, nil
}

// compileSearch uses instr() rather than LIKE: LIKE is case-insensitive for
// ASCII and treats % and _ as wildcards, instr() matches strings.Contains.
func compileSearch(s queryir.Search) (string, []any, error) {
	if len(s.Columns) == 0 {
		return "1 = 0", nil, nil
	}
	parts := make([]string, len(s.Columns))
	params := make([]any, len(s.Columns))
	for i, col := range s.Columns {
		if !col.Valid() {
			return "", nil, fmt.Errorf("unknown column %q", col)
		}
		parts[i] = fmt.Sprintf("instr(%s, ?) > 0", col)
		params[i] = s.Term
	}
	return "(" + strings.Join(parts, " OR ") + ")", params, nil
}
