package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/ligolw"
	"github.com/FocuswithJustin/ligolw/core/xml"
)

// ColumnsTable records the LIGOLW column types of every exported table so
// a table can be read back with its original cell types.
const ColumnsTable = "ligolw_columns"

const createColumnsTable = `CREATE TABLE IF NOT EXISTS ligolw_columns (
	table_name  TEXT    NOT NULL,
	position    INTEGER NOT NULL,
	column_name TEXT    NOT NULL,
	type        TEXT    NOT NULL,
	PRIMARY KEY (table_name, position)
)`

// Store reads and writes LIGOLW tables in a SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore returns a Store over db and creates the column metadata table
// if it does not exist.
func NewStore(ctx context.Context, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, createColumnsTable); err != nil {
		return nil, errors.NewIO("create", ColumnsTable, err)
	}
	return &Store{db: db}, nil
}

// ExportDocument exports every Table element of doc, each in its own
// transaction. It returns the number of tables and rows written.
func (s *Store) ExportDocument(ctx context.Context, doc *xml.Document) (tables, rows int, err error) {
	elems, err := ligolw.FindTables(doc)
	if err != nil {
		return 0, 0, err
	}
	for _, elem := range elems {
		_, n, err := s.ExportTable(ctx, elem)
		if err != nil {
			return tables, rows, err
		}
		tables++
		rows += n
	}
	return tables, rows, nil
}

// ExportTable decodes a Table element directly into the database, one
// INSERT per row inside a single transaction. Rows are not retained in
// memory; the returned table carries the name and columns only.
//
// Exporting into a table that already exists appends rows, provided the
// columns match those recorded when it was created.
func (s *Store) ExportTable(ctx context.Context, elem *xml.Node) (*ligolw.Table, int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, errors.NewIO("begin", "", err)
	}
	defer tx.Rollback()

	var (
		stmt *sql.Stmt
		n    int
	)
	insert := func(t *ligolw.Table, row ligolw.Row) error {
		if stmt == nil {
			var err error
			if stmt, err = prepareTable(ctx, tx, t); err != nil {
				return err
			}
		}
		args, err := rowArgs(t, row)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return errors.NewIO("insert", t.Name, err)
		}
		n++
		return nil
	}

	table, err := ligolw.DecodeTable(elem, insert)
	if stmt != nil {
		defer stmt.Close()
	}
	if err != nil {
		return nil, 0, err
	}
	if stmt == nil {
		// No rows: the table is still created so it can be read back.
		if stmt, err = prepareTable(ctx, tx, table); err != nil {
			return nil, 0, err
		}
		defer stmt.Close()
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, errors.NewIO("commit", table.Name, err)
	}
	return table, n, nil
}

// prepareTable creates the SQL table for t, or checks it against the
// recorded columns if it exists, and prepares its INSERT statement.
func prepareTable(ctx context.Context, tx *sql.Tx, t *ligolw.Table) (*sql.Stmt, error) {
	if t.Name == "" {
		return nil, errors.NewValidation("table", "table has no name")
	}
	if len(t.Columns) == 0 {
		return nil, errors.NewValidation("table", fmt.Sprintf("table %q has no columns", t.Name))
	}

	existing, err := recordedColumns(ctx, tx, t.Name)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		if err := createTable(ctx, tx, t); err != nil {
			return nil, err
		}
	} else if err := sameColumns(t, existing); err != nil {
		return nil, err
	}

	names := make([]string, len(t.Columns))
	marks := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = quoteIdent(col.Name)
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(t.Name), strings.Join(names, ", "), strings.Join(marks, ", "))
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, errors.NewIO("prepare", t.Name, err)
	}
	return stmt, nil
}

func createTable(ctx context.Context, tx *sql.Tx, t *ligolw.Table) error {
	defs := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		defs[i] = quoteIdent(col.Name) + " " + ColumnAffinity(col.Type)
	}
	query := fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(t.Name), strings.Join(defs, ", "))
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return errors.NewIO("create", t.Name, err)
	}

	for i, col := range t.Columns {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO ligolw_columns (table_name, position, column_name, type) VALUES (?, ?, ?, ?)",
			t.Name, i, col.Name, col.Type.String()); err != nil {
			return errors.NewIO("insert", ColumnsTable, err)
		}
	}
	return nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// recordedColumns returns the columns stored for table, or nil if the
// table was never exported.
func recordedColumns(ctx context.Context, q queryer, table string) ([]ligolw.Column, error) {
	rows, err := q.QueryContext(ctx,
		"SELECT column_name, type FROM ligolw_columns WHERE table_name = ? ORDER BY position", table)
	if err != nil {
		return nil, errors.NewIO("query", ColumnsTable, err)
	}
	defer rows.Close()

	var cols []ligolw.Column
	for rows.Next() {
		var name, typeName string
		if err := rows.Scan(&name, &typeName); err != nil {
			return nil, errors.NewIO("scan", ColumnsTable, err)
		}
		typ := parseStoredType(typeName)
		if typ == ligolw.TypeUnknown {
			return nil, errors.NewMalformed("Column", name, "Type",
				fmt.Sprintf("unknown stored type %q in table %q", typeName, table))
		}
		cols = append(cols, ligolw.Column{Name: name, Type: typ})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query", ColumnsTable, err)
	}
	return cols, nil
}

func sameColumns(t *ligolw.Table, existing []ligolw.Column) error {
	if len(existing) != len(t.Columns) {
		return errors.NewValidation("table", fmt.Sprintf(
			"table %q exists with %d columns, document declares %d", t.Name, len(existing), len(t.Columns)))
	}
	for i, col := range t.Columns {
		if col != existing[i] {
			return &errors.SchemaMismatchError{
				Index:    i + 1,
				Column:   existing[i].Name,
				Missing:  col.Name != existing[i].Name,
				Expected: existing[i].Type.String(),
				Actual:   col.Type.String(),
			}
		}
	}
	return nil
}

// Tables lists the exported tables in name order.
func (s *Store) Tables(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT table_name FROM ligolw_columns ORDER BY table_name")
	if err != nil {
		return nil, errors.NewIO("query", ColumnsTable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, errors.NewIO("scan", ColumnsTable, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query", ColumnsTable, err)
	}
	return names, nil
}

// ReadTable loads an exported table back into a decoded Table, rows in
// insertion order, with the column types recorded at export.
func (s *Store) ReadTable(ctx context.Context, name string) (*ligolw.Table, error) {
	cols, err := recordedColumns(ctx, s.db, name)
	if err != nil {
		return nil, err
	}
	if cols == nil {
		return nil, errors.NewNotFound("table", name)
	}

	names := make([]string, len(cols))
	for i, col := range cols {
		names[i] = quoteIdent(col.Name)
	}
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY rowid",
		strings.Join(names, ", "), quoteIdent(name)))
	if err != nil {
		return nil, errors.NewIO("query", name, err)
	}
	defer rows.Close()

	t := &ligolw.Table{Name: name, Delimiter: ',', Columns: cols}
	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, errors.NewIO("scan", name, err)
		}
		cells := make([]ligolw.Cell, len(cols))
		for i, col := range cols {
			c, err := valueCell(values[i], col.Type)
			if err != nil {
				return nil, errors.Wrapf(err, "table %q, row %d, column %q", name, len(t.Rows), col.Name)
			}
			cells[i] = c
		}
		t.Rows = append(t.Rows, ligolw.Row{Table: t, Cells: cells})
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIO("query", name, err)
	}
	return t, nil
}

// ColumnAffinity returns the SQLite column type used to store cells of
// type t. Complex values are stored as their LIGOLW text form.
func ColumnAffinity(t ligolw.CellType) string {
	switch t {
	case ligolw.TypeBlob:
		return "BLOB"
	case ligolw.TypeInt2S, ligolw.TypeInt2U, ligolw.TypeInt4S, ligolw.TypeInt4U,
		ligolw.TypeInt8S, ligolw.TypeInt8U:
		return "INTEGER"
	case ligolw.TypeReal4, ligolw.TypeReal8:
		return "REAL"
	}
	return "TEXT"
}

func rowArgs(t *ligolw.Table, row ligolw.Row) ([]any, error) {
	args := make([]any, len(row.Cells))
	for i, c := range row.Cells {
		v, err := cellValue(c)
		if err != nil {
			return nil, errors.Wrapf(err, "column %q", t.Columns[i].Name)
		}
		args[i] = v
	}
	return args, nil
}

// cellValue converts a cell to a database/sql argument.
func cellValue(c ligolw.Cell) (any, error) {
	switch t := c.Type(); t {
	case ligolw.TypeBlob:
		return c.Blob(), nil
	case ligolw.TypeInt2S, ligolw.TypeInt4S, ligolw.TypeInt8S:
		return c.Int(), nil
	case ligolw.TypeInt2U, ligolw.TypeInt4U, ligolw.TypeInt8U:
		if c.Uint() > math.MaxInt64 {
			return nil, errors.NewValidation("value", fmt.Sprintf("%d does not fit a SQLite INTEGER", c.Uint()))
		}
		return int64(c.Uint()), nil
	case ligolw.TypeReal4, ligolw.TypeReal8:
		return c.Float(), nil
	case ligolw.TypeComplex8, ligolw.TypeComplex16:
		return ligolw.EncodeCell(c, t)
	default:
		if t.IsString() {
			return c.Text(), nil
		}
		return nil, errors.NewUnsupported("cell type", t.String())
	}
}

// valueCell converts a scanned column value back to a cell of type t.
// NULL becomes the zero value of t.
func valueCell(v any, t ligolw.CellType) (ligolw.Cell, error) {
	switch t {
	case ligolw.TypeInt2S, ligolw.TypeInt4S, ligolw.TypeInt8S:
		i, err := asInt64(v)
		return ligolw.IntCell(t, i), err
	case ligolw.TypeInt2U, ligolw.TypeInt4U, ligolw.TypeInt8U:
		i, err := asInt64(v)
		if err == nil && i < 0 {
			err = errors.NewValidation("value", fmt.Sprintf("negative value %d for unsigned type %v", i, t))
		}
		return ligolw.UintCell(t, uint64(i)), err
	case ligolw.TypeReal4, ligolw.TypeReal8:
		f, err := asFloat64(v)
		return ligolw.RealCell(t, f), err
	case ligolw.TypeComplex8, ligolw.TypeComplex16:
		return ligolw.DecodeCell(t, asText(v))
	}
	return ligolw.StringCell(t, asText(v)), nil
}

func asInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case float64:
		if x != math.Trunc(x) {
			return 0, errors.NewValidation("value", fmt.Sprintf("%v is not an integer", x))
		}
		return int64(x), nil
	}
	return 0, errors.NewValidation("value", fmt.Sprintf("unexpected %T for an integer column", v))
}

func asFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case float64:
		return x, nil
	case int64:
		return float64(x), nil
	}
	return 0, errors.NewValidation("value", fmt.Sprintf("unexpected %T for a real column", v))
}

func asText(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func parseStoredType(name string) ligolw.CellType {
	if name == ligolw.TypeBlob.String() {
		return ligolw.TypeBlob
	}
	return ligolw.ParseCellType(name)
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
