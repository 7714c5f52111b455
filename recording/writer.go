// Package recording persists simulation results into SQLite databases.
// A Writer buffers rows in memory and writes them in batched
// transactions; an AccessRecorder adapts the Writer to the replay loop.
package recording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/fatih/structs"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

const defaultBatchSize = 100000

// Writer records rows into tables of one SQLite database file. Tables
// are declared from sample structs; rows buffer in memory and flush in
// batches, plus once more at process exit. Misusing the schema, such as
// inserting into a table that was never created, is a programming error
// and panics.
type Writer struct {
	db *sql.DB

	filename  string
	tables    map[string]*table
	batchSize int
	pending   int
}

type table struct {
	structType reflect.Type
	entries    []any
}

// NewWriter creates the database file and registers a flush at process
// exit. path names the file without its .sqlite3 suffix; an empty path
// picks a unique generated name. An existing file is refused, never
// overwritten.
func NewWriter(path string) (*Writer, error) {
	if path == "" {
		path = "cachesim_" + xid.New().String()
	}

	filename := path + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("recording database %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open recording database: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Recording to %s\n", filename)

	w := &Writer{
		db:        db,
		filename:  filename,
		tables:    make(map[string]*table),
		batchSize: defaultBatchSize,
	}

	atexit.Register(w.Flush)

	return w, nil
}

// Filename returns the name of the database file, suffix included.
func (w *Writer) Filename() string {
	return w.filename
}

// CreateTable declares a table whose columns are the fields of
// sampleEntry, which must be a flat struct of scalars and strings.
func (w *Writer) CreateTable(name string, sampleEntry any) {
	if err := checkStructFields(sampleEntry); err != nil {
		panic(err)
	}

	fields := strings.Join(structs.Names(sampleEntry), ", \n\t")
	w.mustExecute(`CREATE TABLE ` + name + ` (` + "\n\t" + fields + "\n" + `);`)

	w.tables[name] = &table{
		structType: reflect.TypeOf(sampleEntry),
		entries:    []any{},
	}
}

// Insert buffers one row for a previously created table. The buffer
// flushes itself when it grows past the batch size.
func (w *Writer) Insert(name string, entry any) {
	t, exists := w.tables[name]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", name))
	}

	t.entries = append(t.entries, entry)

	w.pending++
	if w.pending >= w.batchSize {
		w.Flush()
	}
}

// ListTables returns the names of all created tables.
func (w *Writer) ListTables() []string {
	names := make([]string, 0, len(w.tables))
	for name := range w.tables {
		names = append(names, name)
	}

	return names
}

// Flush writes every buffered row inside one transaction.
func (w *Writer) Flush() {
	if w.pending == 0 {
		return
	}

	w.mustExecute("BEGIN TRANSACTION")
	defer w.mustExecute("COMMIT TRANSACTION")

	for name, t := range w.tables {
		if len(t.entries) == 0 {
			continue
		}

		stmt := w.prepareInsert(name, t.entries[0])

		for _, entry := range t.entries {
			value := reflect.ValueOf(entry)

			row := make([]any, 0, value.NumField())
			for i := 0; i < value.NumField(); i++ {
				row = append(row, value.Field(i).Interface())
			}

			if _, err := stmt.Exec(row...); err != nil {
				panic(err)
			}
		}

		t.entries = nil
		stmt.Close()
	}

	w.pending = 0
}

// Close flushes buffered rows and closes the database.
func (w *Writer) Close() error {
	w.Flush()
	return w.db.Close()
}

func (w *Writer) mustExecute(query string) sql.Result {
	res, err := w.db.Exec(query)
	if err != nil {
		panic(fmt.Errorf("failed to execute %q: %w", query, err))
	}

	return res
}

func (w *Writer) prepareInsert(name string, sampleEntry any) *sql.Stmt {
	marks := structs.Names(sampleEntry)
	for i := range marks {
		marks[i] = "?"
	}

	stmt, err := w.db.Prepare(
		"INSERT INTO " + name + " VALUES (" + strings.Join(marks, ", ") + ")")
	if err != nil {
		panic(err)
	}

	return stmt
}

func checkStructFields(entry any) error {
	types := reflect.TypeOf(entry)

	for i := 0; i < types.NumField(); i++ {
		if !isAllowedType(types.Field(i).Type.Kind()) {
			return fmt.Errorf("field %s cannot be recorded", types.Field(i).Name)
		}
	}

	return nil
}

func isAllowedType(kind reflect.Kind) bool {
	switch kind {
	case
		reflect.Bool,
		reflect.Int,
		reflect.Int8,
		reflect.Int16,
		reflect.Int32,
		reflect.Int64,
		reflect.Uint,
		reflect.Uint8,
		reflect.Uint16,
		reflect.Uint32,
		reflect.Uint64,
		reflect.Float32,
		reflect.Float64,
		reflect.String:
		return true
	default:
		return false
	}
}
