package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend writes rows into SQLite tables.
//
// Every table has the columns osm_id, geom (JSON array of x, y pairs),
// nodes (JSON array of node ids), members (JSON array), one TEXT column per
// Options.Columns entry, a JSON tags column unless Hstore is HstoreNone, and
// one JSON column per Options.HstoreColumns prefix.
//
// Everything between Start and a Flush (or Stop) is one transaction. After
// a Flush, the next transaction begins with the next event, so the
// connection is free for queries on DB until then. Stop creates the osm_id
// indexes.
type SQLiteBackend struct {
	db      *sql.DB
	tx      *sql.Tx
	started bool
	opt     *Options
	rb      rowBuilder

	insertSQL map[Table]string
	args      []any
}

// OpenSQLite opens or creates an SQLite database at path.
func OpenSQLite(path string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps the transaction and ":memory:" databases
	// on one handle.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma %q: %w", p, err)
		}
	}
	return &SQLiteBackend{db: db}, nil
}

// DB returns the underlying database handle.
func (sb *SQLiteBackend) DB() *sql.DB {
	return sb.db
}

func (sb *SQLiteBackend) Start(ctx context.Context, opt *Options) error {
	if sb.started {
		return errors.New("already started")
	}
	sb.opt = opt
	sb.insertSQL = make(map[Table]string, len(AllTables))

	tx, err := sb.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	cols := sb.columns()
	for _, t := range AllTables {
		name := quoteIdent(opt.TableName(t))
		var stmts []string
		if !opt.Append {
			stmts = append(stmts, "DROP TABLE IF EXISTS "+name)
		}
		stmts = append(stmts, fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (osm_id INTEGER NOT NULL, %s)", name, columnDefs(cols[1:])))
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s); err != nil {
				tx.Rollback()
				return fmt.Errorf("%s: %w", s, err)
			}
		}

		quoted := make([]string, len(cols))
		for i, c := range cols {
			quoted[i] = quoteIdent(c)
		}
		sb.insertSQL[t] = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", name, strings.Join(quoted, ", "), strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	}
	sb.tx = tx
	sb.started = true
	return nil
}

func (sb *SQLiteBackend) columns() []string {
	cols := []string{"osm_id", "geom", "nodes", "members"}
	cols = append(cols, sb.opt.Columns...)
	if sb.opt.Hstore != HstoreNone {
		cols = append(cols, "tags")
	}
	cols = append(cols, sb.opt.HstoreColumns...)
	return cols
}

func columnDefs(cols []string) string {
	defs := make([]string, len(cols))
	for i, c := range cols {
		defs[i] = quoteIdent(c) + " TEXT"
	}
	return strings.Join(defs, ", ")
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func (sb *SQLiteBackend) Handle(ctx context.Context, ev *Event) error {
	if !sb.started {
		return ErrNotStarted
	}
	if sb.tx == nil {
		tx, err := sb.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		sb.tx = tx
	}
	switch ev.Op {
	case OpAdd:
		return sb.insert(ctx, ev)
	case OpModify:
		if err := sb.delete(ctx, ev); err != nil {
			return err
		}
		return sb.insert(ctx, ev)
	case OpDelete:
		return sb.delete(ctx, ev)
	default:
		return fmt.Errorf("unsupported op %v", ev.Op)
	}
}

func (sb *SQLiteBackend) insert(ctx context.Context, ev *Event) error {
	row, keep := sb.rb.build(sb.opt, ev)
	if !keep {
		return nil
	}
	args := append(sb.args[:0], row.ID, jsonOrNull(row.Coords), jsonOrNull(row.Nodes), jsonOrNull(row.Members))
	for _, c := range sb.opt.Columns {
		if v, ok := row.Columns[c]; ok {
			args = append(args, v)
		} else {
			args = append(args, nil)
		}
	}
	if sb.opt.Hstore != HstoreNone {
		args = append(args, jsonMapOrNull(row.Tags))
	}
	for _, prefix := range sb.opt.HstoreColumns {
		args = append(args, jsonMapOrNull(row.Hstores[prefix]))
	}
	sb.args = args

	_, err := sb.tx.ExecContext(ctx, sb.insertSQL[ev.Table()], args...)
	clear(sb.args)
	return err
}

func (sb *SQLiteBackend) delete(ctx context.Context, ev *Event) error {
	for _, t := range tablesOf(ev.Type) {
		q := fmt.Sprintf("DELETE FROM %s WHERE osm_id = ?", quoteIdent(sb.opt.TableName(t)))
		if _, err := sb.tx.ExecContext(ctx, q, ev.ID); err != nil {
			return err
		}
	}
	return nil
}

// jsonOrNull returns nil for empty values, so they are stored as NULL.
func jsonOrNull[T any](v []T) any {
	if len(v) == 0 {
		return nil
	}
	return encodeJSON(v)
}

func jsonMapOrNull[V any](m map[string]V) any {
	if len(m) == 0 {
		return nil
	}
	return encodeJSON(m)
}

func encodeJSON(v any) string {
	buf := jsonBytesPool.Get().([]byte)
	buf = JSON.EncodeValue(buf, v)
	s := string(buf)
	releaseJSONBytes(buf)
	return s
}

func (sb *SQLiteBackend) Flush(ctx context.Context) error {
	if !sb.started {
		return ErrNotStarted
	}
	return sb.commit()
}

func (sb *SQLiteBackend) commit() error {
	tx := sb.tx
	if tx == nil {
		return nil
	}
	sb.tx = nil
	return tx.Commit()
}

func (sb *SQLiteBackend) Stop(ctx context.Context) error {
	if !sb.started {
		return ErrNotStarted
	}
	sb.started = false
	if err := sb.commit(); err != nil {
		return err
	}
	for _, t := range AllTables {
		name := sb.opt.TableName(t)
		q := fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s (osm_id)", quoteIdent(name+"_osm_id"), quoteIdent(name))
		if _, err := sb.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Close discards uncommitted changes and closes the database.
func (sb *SQLiteBackend) Close() error {
	if sb.tx != nil {
		sb.tx.Rollback()
		sb.tx = nil
	}
	sb.started = false
	return sb.db.Close()
}
