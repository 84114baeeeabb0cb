package tables

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnknownColumn is returned when a row is given a value for a column
// that is not part of its table's declared schema. This always indicates
// a mismatch between extractor code and the table's shape, so callers
// must not swallow it.
var ErrUnknownColumn = errors.New("column not in table schema")

// listSeparator joins list-valued cells inside a single CSV field.
const listSeparator = "|"

// timeLayout is the cell format for timestamp columns.
const timeLayout = time.RFC3339

// Schema is the immutable, ordered column set of one table. A schema is
// built once per entity type; variants for different parent types are
// separate schemas, never mutations of a shared one.
type Schema struct {
	name    string
	columns []string
	index   map[string]int
}

// NewSchema creates a schema with the given table name and column order.
func NewSchema(name string, columns ...string) *Schema {
	index := make(map[string]int, len(columns))
	for i, col := range columns {
		if _, dup := index[col]; dup {
			panic(fmt.Sprintf("tables: duplicate column %q in schema %s", col, name))
		}
		index[col] = i
	}
	return &Schema{
		name:    name,
		columns: append([]string(nil), columns...),
		index:   index,
	}
}

// Name returns the table name this schema belongs to.
func (s *Schema) Name() string {
	return s.name
}

// Columns returns the ordered column names as a copy.
func (s *Schema) Columns() []string {
	return append([]string(nil), s.columns...)
}

// Has reports whether the column is part of the schema.
func (s *Schema) Has(column string) bool {
	_, ok := s.index[column]
	return ok
}

// Row is one record of a table. Values are restricted to the schema's
// columns; setting anything else fails with ErrUnknownColumn. A nil
// value means "not applicable" and round-trips as an empty cell.
type Row struct {
	schema *Schema
	values map[string]interface{}
}

// NewRow creates an empty row bound to the given schema.
func NewRow(schema *Schema) *Row {
	return &Row{
		schema: schema,
		values: make(map[string]interface{}),
	}
}

// Schema returns the schema this row is bound to.
func (r *Row) Schema() *Schema {
	return r.schema
}

// Set assigns a value to a column. The column must belong to the row's
// schema; the row is left unmodified otherwise.
func (r *Row) Set(column string, value interface{}) error {
	if !r.schema.Has(column) {
		return fmt.Errorf("%w: %q in table %s", ErrUnknownColumn, column, r.schema.name)
	}
	r.values[column] = value
	return nil
}

// MustSet is Set for columns known at compile time. It panics on a
// schema mismatch, which is a programming error by contract.
func (r *Row) MustSet(column string, value interface{}) {
	if err := r.Set(column, value); err != nil {
		panic(err)
	}
}

// Get returns the raw value of a column, nil if absent.
func (r *Row) Get(column string) interface{} {
	return r.values[column]
}

// String returns the column as a string and whether it is present.
func (r *Row) String(column string) (string, bool) {
	v := r.values[column]
	if v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Int returns the column as an int, 0 if absent or unparsable.
func (r *Row) Int(column string) int {
	switch v := r.values[column].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Int64 returns the column as an int64, 0 if absent or unparsable.
func (r *Row) Int64(column string) int64 {
	switch v := r.values[column].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

// Bool returns the column as a bool, false if absent or unparsable.
func (r *Row) Bool(column string) bool {
	switch v := r.values[column].(type) {
	case bool:
		return v
	case string:
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false
		}
		return b
	default:
		return false
	}
}

// Time returns the column as a timestamp and whether one is present.
func (r *Row) Time(column string) (time.Time, bool) {
	switch v := r.values[column].(type) {
	case time.Time:
		return v, true
	case string:
		t, err := time.Parse(timeLayout, v)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	default:
		return time.Time{}, false
	}
}

// StringList returns the column as a list of strings, nil if absent.
func (r *Row) StringList(column string) []string {
	switch v := r.values[column].(type) {
	case []string:
		return v
	case string:
		if v == "" {
			return nil
		}
		return strings.Split(v, listSeparator)
	default:
		return nil
	}
}

// encodeCell renders one value as a CSV cell.
func encodeCell(value interface{}) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.UTC().Format(timeLayout), nil
	case []string:
		return strings.Join(v, listSeparator), nil
	default:
		return "", fmt.Errorf("tables: unsupported cell type %T", value)
	}
}
